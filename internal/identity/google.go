package identity

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"google.golang.org/api/idtoken"
)

// GoogleVerifier validates Google-issued ID tokens against Google's public
// keys, requiring the audience to match the registered OAuth client ID.
type GoogleVerifier struct {
	clientID  string
	validator *idtoken.Validator
}

// NewGoogleVerifier creates a GoogleVerifier for the given OAuth client ID.
func NewGoogleVerifier(ctx context.Context, clientID string) (*GoogleVerifier, error) {
	validator, err := idtoken.NewValidator(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating idtoken validator: %w", err)
	}
	return &GoogleVerifier{clientID: clientID, validator: validator}, nil
}

// Verify implements Verifier. Signature, audience and expiry are all checked
// by the validator; key-discovery transport failures map to
// ErrVerificationUnavailable so callers can distinguish outage from bad login.
func (v *GoogleVerifier) Verify(ctx context.Context, rawCredential string) (*Identity, error) {
	payload, err := v.validator.Validate(ctx, rawCredential, v.clientID)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) || errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", ErrVerificationUnavailable, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}

	email, _ := payload.Claims["email"].(string)
	if email == "" {
		return nil, fmt.Errorf("%w: credential carries no email claim", ErrInvalidCredential)
	}

	name, _ := payload.Claims["name"].(string)
	avatarURL, _ := payload.Claims["picture"].(string)

	return &Identity{
		SubjectID: payload.Subject,
		Email:     email,
		Name:      name,
		AvatarURL: avatarURL,
	}, nil
}
