// Package usertest provides an in-memory user.Repository for tests.
package usertest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/inkwell/inkwell/internal/identity"
	"github.com/inkwell/inkwell/internal/user"
)

// FakeRepository is a thread-safe in-memory user.Repository. Its fingerprint
// rotation honors the same compare-and-swap semantics as the postgres
// implementation.
type FakeRepository struct {
	mu    sync.Mutex
	users map[uuid.UUID]user.User
}

// NewFakeRepository creates an empty FakeRepository.
func NewFakeRepository() *FakeRepository {
	return &FakeRepository{users: make(map[uuid.UUID]user.User)}
}

// Seed inserts a user directly, assigning an id if absent, and returns it.
func (f *FakeRepository) Seed(u user.User) user.User {
	f.mu.Lock()
	defer f.mu.Unlock()

	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	f.users[u.ID] = u
	return u
}

// Get returns a copy of the stored user, if any.
func (f *FakeRepository) Get(id uuid.UUID) (user.User, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[id]
	return u, ok
}

func (f *FakeRepository) UpsertFromIdentity(_ context.Context, ident *identity.Identity, role user.Role) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	avatarURL := nullable(ident.AvatarURL)
	googleID := nullable(ident.SubjectID)

	for id, u := range f.users {
		if u.Email == ident.Email {
			u.Name = ident.Name
			u.AvatarURL = avatarURL
			u.GoogleID = googleID
			f.users[id] = u
			return &u, nil
		}
	}

	if googleID != nil {
		for id, u := range f.users {
			if u.GoogleID != nil && *u.GoogleID == *googleID {
				u.Email = ident.Email
				u.Name = ident.Name
				u.AvatarURL = avatarURL
				f.users[id] = u
				return &u, nil
			}
		}
	}

	u := user.User{
		ID:        uuid.New(),
		Email:     ident.Email,
		GoogleID:  googleID,
		Name:      ident.Name,
		AvatarURL: avatarURL,
		Role:      role,
		IsActive:  true,
		CreatedAt: time.Now(),
	}
	f.users[u.ID] = u
	return &u, nil
}

func (f *FakeRepository) GetActiveByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[id]
	if !ok || !u.IsActive {
		return nil, user.ErrUserNotFound
	}
	return &u, nil
}

func (f *FakeRepository) GetByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return &u, nil
}

func (f *FakeRepository) SetRefreshFingerprint(_ context.Context, id uuid.UUID, fingerprint *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[id]
	if !ok {
		return user.ErrUserNotFound
	}
	u.RefreshFingerprint = fingerprint
	f.users[id] = u
	return nil
}

func (f *FakeRepository) RotateRefreshFingerprint(_ context.Context, id uuid.UUID, oldFingerprint, newFingerprint string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[id]
	if !ok || !u.IsActive || u.RefreshFingerprint == nil || *u.RefreshFingerprint != oldFingerprint {
		return user.ErrFingerprintMismatch
	}
	u.RefreshFingerprint = &newFingerprint
	f.users[id] = u
	return nil
}

func (f *FakeRepository) UpdateProfile(_ context.Context, id uuid.UUID, name string, avatarURL *string) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	u.Name = name
	if avatarURL != nil {
		u.AvatarURL = avatarURL
	}
	f.users[id] = u
	return &u, nil
}

func (f *FakeRepository) List(_ context.Context, page, limit int) ([]user.User, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	all := make([]user.User, 0, len(f.users))
	for _, u := range f.users {
		all = append(all, u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	start := (page - 1) * limit
	if start > len(all) {
		start = len(all)
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}

	return all[start:end], len(all), nil
}

func (f *FakeRepository) AdminUpdate(_ context.Context, id uuid.UUID, update user.AdminUpdate) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	if update.Role != nil {
		u.Role = *update.Role
	}
	if update.IsActive != nil {
		u.IsActive = *update.IsActive
		if !u.IsActive {
			u.RefreshFingerprint = nil
		}
	}
	f.users[id] = u
	return &u, nil
}

func (f *FakeRepository) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.users[id]; !ok {
		return user.ErrUserNotFound
	}
	delete(f.users, id)
	return nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
