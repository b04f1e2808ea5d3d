package user

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/inkwell/inkwell/internal/identity"
)

// ErrUserNotFound is returned when a user record is not found.
var ErrUserNotFound = errors.New("user not found")

// ErrFingerprintMismatch is returned when a conditional fingerprint rotation
// matches no row, meaning the presented refresh token was already superseded,
// cleared, or never issued.
var ErrFingerprintMismatch = errors.New("refresh fingerprint mismatch")

// AdminUpdate carries the fields an admin may change on another user.
// Nil fields are left untouched.
type AdminUpdate struct {
	Role     *Role
	IsActive *bool
}

// Repository provides operations on the users table.
type Repository interface {
	// UpsertFromIdentity finds a user by email (primary merge key), falling
	// back to the provider subject id, refreshing display claims either way;
	// when no user exists it creates one with the given role.
	UpsertFromIdentity(ctx context.Context, ident *identity.Identity, role Role) (*User, error)

	// GetActiveByID loads a user filtered on is_active as part of the lookup.
	GetActiveByID(ctx context.Context, id uuid.UUID) (*User, error)

	GetByID(ctx context.Context, id uuid.UUID) (*User, error)

	// SetRefreshFingerprint overwrites the stored fingerprint unconditionally.
	// Passing nil clears it; clearing an already-null fingerprint succeeds.
	SetRefreshFingerprint(ctx context.Context, id uuid.UUID, fingerprint *string) error

	// RotateRefreshFingerprint replaces old with new only if old is the
	// currently stored value and the user is active. The compare-and-swap is
	// a single conditional UPDATE so concurrent rotations with the same token
	// cannot both succeed.
	RotateRefreshFingerprint(ctx context.Context, id uuid.UUID, oldFingerprint, newFingerprint string) error

	UpdateProfile(ctx context.Context, id uuid.UUID, name string, avatarURL *string) (*User, error)

	List(ctx context.Context, page, limit int) ([]User, int, error)
	AdminUpdate(ctx context.Context, id uuid.UUID, update AdminUpdate) (*User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
