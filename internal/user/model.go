package user

import (
	"time"

	"github.com/google/uuid"
)

// Role is the platform role of a user. Exactly one privileged role exists.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// User represents a row in the users table.
type User struct {
	ID                 uuid.UUID
	Email              string
	GoogleID           *string
	Name               string
	AvatarURL          *string
	Role               Role
	IsActive           bool
	RefreshFingerprint *string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
