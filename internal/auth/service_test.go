package auth_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwell/inkwell/internal/auth"
	"github.com/inkwell/inkwell/internal/identity"
	"github.com/inkwell/inkwell/internal/token"
	"github.com/inkwell/inkwell/internal/user"
	"github.com/inkwell/inkwell/internal/user/usertest"
)

const adminEmail = "admin@example.com"

type stubVerifier struct {
	ident *identity.Identity
	err   error
}

func (s *stubVerifier) Verify(_ context.Context, _ string) (*identity.Identity, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.ident, nil
}

func aliceIdentity() *identity.Identity {
	return &identity.Identity{
		SubjectID: "google-sub-alice",
		Email:     "alice@example.com",
		Name:      "Alice",
		AvatarURL: "https://lh3.example.com/alice.png",
	}
}

func newService(verifier identity.Verifier, repo user.Repository) (*auth.Service, *token.Service) {
	tokens := token.NewService("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
	return auth.NewService(verifier, repo, tokens, adminEmail), tokens
}

func TestLogin_CreatesUserWithDefaultRole(t *testing.T) {
	repo := usertest.NewFakeRepository()
	svc, _ := newService(&stubVerifier{ident: aliceIdentity()}, repo)

	u, pair, err := svc.Login(context.Background(), "credential")
	require.NoError(t, err)

	assert.Equal(t, "alice@example.com", u.Email)
	assert.Equal(t, user.RoleUser, u.Role)
	assert.True(t, u.IsActive)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	stored, ok := repo.Get(u.ID)
	require.True(t, ok)
	require.NotNil(t, stored.RefreshFingerprint)
	assert.Equal(t, token.Fingerprint(pair.RefreshToken), *stored.RefreshFingerprint)
}

func TestLogin_AdminEmailGetsAdminRole(t *testing.T) {
	repo := usertest.NewFakeRepository()
	ident := aliceIdentity()
	ident.Email = "Admin@Example.com" // case-insensitive match
	svc, _ := newService(&stubVerifier{ident: ident}, repo)

	u, _, err := svc.Login(context.Background(), "credential")
	require.NoError(t, err)
	assert.Equal(t, user.RoleAdmin, u.Role)
}

func TestLogin_RefreshesDisplayClaimsOnly(t *testing.T) {
	repo := usertest.NewFakeRepository()
	seeded := repo.Seed(user.User{
		Email:    "alice@example.com",
		Name:     "Old Name",
		Role:     user.RoleAdmin, // role must survive the upsert
		IsActive: true,
	})

	svc, _ := newService(&stubVerifier{ident: aliceIdentity()}, repo)

	u, _, err := svc.Login(context.Background(), "credential")
	require.NoError(t, err)

	assert.Equal(t, seeded.ID, u.ID)
	assert.Equal(t, "Alice", u.Name)
	assert.Equal(t, user.RoleAdmin, u.Role)
}

func TestLogin_InvalidCredential(t *testing.T) {
	repo := usertest.NewFakeRepository()
	svc, _ := newService(&stubVerifier{err: identity.ErrInvalidCredential}, repo)

	_, _, err := svc.Login(context.Background(), "bad")
	assert.ErrorIs(t, err, identity.ErrInvalidCredential)
}

func TestLogin_InactiveUser(t *testing.T) {
	repo := usertest.NewFakeRepository()
	repo.Seed(user.User{Email: "alice@example.com", Name: "Alice", Role: user.RoleUser, IsActive: false})
	svc, _ := newService(&stubVerifier{ident: aliceIdentity()}, repo)

	_, _, err := svc.Login(context.Background(), "credential")
	assert.ErrorIs(t, err, auth.ErrUserNotFoundOrInactive)
}

func TestRefresh_RotatesAndInvalidatesOldToken(t *testing.T) {
	repo := usertest.NewFakeRepository()
	svc, _ := newService(&stubVerifier{ident: aliceIdentity()}, repo)

	_, pair, err := svc.Login(context.Background(), "credential")
	require.NoError(t, err)

	newPair, err := svc.Refresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, newPair.RefreshToken)

	// Reusing the superseded token must fail.
	_, err = svc.Refresh(context.Background(), pair.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrInvalidRefreshToken)

	// The rotated token still works.
	_, err = svc.Refresh(context.Background(), newPair.RefreshToken)
	assert.NoError(t, err)
}

func TestRefresh_RejectsAccessToken(t *testing.T) {
	repo := usertest.NewFakeRepository()
	svc, _ := newService(&stubVerifier{ident: aliceIdentity()}, repo)

	_, pair, err := svc.Login(context.Background(), "credential")
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), pair.AccessToken)
	assert.ErrorIs(t, err, auth.ErrInvalidRefreshToken)
}

func TestRefresh_AfterLogout(t *testing.T) {
	repo := usertest.NewFakeRepository()
	svc, _ := newService(&stubVerifier{ident: aliceIdentity()}, repo)

	u, pair, err := svc.Login(context.Background(), "credential")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), u.ID))

	_, err = svc.Refresh(context.Background(), pair.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrInvalidRefreshToken)
}

func TestRefresh_InactiveUser(t *testing.T) {
	repo := usertest.NewFakeRepository()
	svc, _ := newService(&stubVerifier{ident: aliceIdentity()}, repo)

	u, pair, err := svc.Login(context.Background(), "credential")
	require.NoError(t, err)

	inactive := false
	_, err = repo.AdminUpdate(context.Background(), u.ID, user.AdminUpdate{IsActive: &inactive})
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), pair.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrInvalidRefreshToken)
}

func TestRefresh_ConcurrentSameToken(t *testing.T) {
	repo := usertest.NewFakeRepository()
	svc, _ := newService(&stubVerifier{ident: aliceIdentity()}, repo)

	_, pair, err := svc.Login(context.Background(), "credential")
	require.NoError(t, err)

	const attempts = 8
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Refresh(context.Background(), pair.RefreshToken)
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
		} else {
			assert.ErrorIs(t, err, auth.ErrInvalidRefreshToken)
		}
	}
	assert.Equal(t, 1, successes, "exactly one concurrent refresh may succeed")
}

func TestLogout_Idempotent(t *testing.T) {
	repo := usertest.NewFakeRepository()
	svc, _ := newService(&stubVerifier{ident: aliceIdentity()}, repo)

	u, _, err := svc.Login(context.Background(), "credential")
	require.NoError(t, err)

	assert.NoError(t, svc.Logout(context.Background(), u.ID))
	assert.NoError(t, svc.Logout(context.Background(), u.ID))

	stored, ok := repo.Get(u.ID)
	require.True(t, ok)
	assert.Nil(t, stored.RefreshFingerprint)
}

func TestAuthenticate_Valid(t *testing.T) {
	repo := usertest.NewFakeRepository()
	svc, _ := newService(&stubVerifier{ident: aliceIdentity()}, repo)

	u, pair, err := svc.Login(context.Background(), "credential")
	require.NoError(t, err)

	ident, err := svc.Authenticate(context.Background(), pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, ident.ID)
	assert.Equal(t, u.Email, ident.Email)
	assert.Equal(t, user.RoleUser, ident.Role)
}

func TestAuthenticate_RejectsRefreshToken(t *testing.T) {
	repo := usertest.NewFakeRepository()
	svc, _ := newService(&stubVerifier{ident: aliceIdentity()}, repo)

	_, pair, err := svc.Login(context.Background(), "credential")
	require.NoError(t, err)

	_, err = svc.Authenticate(context.Background(), pair.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrInvalidAccessToken)
}

func TestAuthenticate_InactiveUserLockedOut(t *testing.T) {
	repo := usertest.NewFakeRepository()
	svc, _ := newService(&stubVerifier{ident: aliceIdentity()}, repo)

	u, pair, err := svc.Login(context.Background(), "credential")
	require.NoError(t, err)

	inactive := false
	_, err = repo.AdminUpdate(context.Background(), u.ID, user.AdminUpdate{IsActive: &inactive})
	require.NoError(t, err)

	// The access token is still unexpired, but the account is gone.
	_, err = svc.Authenticate(context.Background(), pair.AccessToken)
	assert.ErrorIs(t, err, auth.ErrUserNotFoundOrInactive)
}
