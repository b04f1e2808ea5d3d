package auth

import (
	"github.com/google/uuid"

	"github.com/inkwell/inkwell/internal/user"
)

// Identity is the minimal projection of an authenticated user stored in the
// request context. It deliberately excludes the refresh fingerprint and any
// other secret material.
type Identity struct {
	ID        uuid.UUID
	Email     string
	Name      string
	AvatarURL *string
	Role      user.Role
}

// IsAdmin reports whether the identity carries the privileged role.
func (i *Identity) IsAdmin() bool {
	return i.Role == user.RoleAdmin
}
