package identity

import (
	"context"
	"errors"
)

// ErrInvalidCredential is returned when a credential fails signature,
// audience, or expiry checks.
var ErrInvalidCredential = errors.New("invalid identity credential")

// ErrVerificationUnavailable is returned when the identity provider cannot be
// reached for key discovery. Callers must not treat this as a bad login.
var ErrVerificationUnavailable = errors.New("identity verification unavailable")

// Identity is the verified claim set extracted from a provider credential.
type Identity struct {
	SubjectID string
	Email     string
	Name      string
	AvatarURL string
}

// Verifier exchanges an externally issued credential for a verified Identity.
// Implementations are pure: they perform no side effects beyond key discovery.
type Verifier interface {
	Verify(ctx context.Context, rawCredential string) (*Identity, error)
}
