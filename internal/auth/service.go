package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/inkwell/inkwell/internal/identity"
	"github.com/inkwell/inkwell/internal/token"
	"github.com/inkwell/inkwell/internal/user"
)

// ErrInvalidAccessToken covers every access-token verification failure.
// Callers must not learn whether the token was missing a signature, expired,
// or of the wrong kind.
var ErrInvalidAccessToken = errors.New("invalid or expired access token")

// ErrInvalidRefreshToken covers expired, forged, wrong-kind, reused and
// superseded refresh tokens. Deliberately undifferentiated.
var ErrInvalidRefreshToken = errors.New("invalid refresh token")

// ErrUserNotFoundOrInactive is returned when a verified token's subject does
// not resolve to an active user.
var ErrUserNotFoundOrInactive = errors.New("user not found or inactive")

// Service provides authentication operations: login, session refresh, logout
// and per-request authentication.
type Service struct {
	verifier   identity.Verifier
	users      user.Repository
	tokens     *token.Service
	adminEmail string
}

// NewService creates a new auth Service. adminEmail, when non-empty, is the
// address that is granted the ADMIN role at first login.
func NewService(verifier identity.Verifier, users user.Repository, tokens *token.Service, adminEmail string) *Service {
	return &Service{
		verifier:   verifier,
		users:      users,
		tokens:     tokens,
		adminEmail: adminEmail,
	}
}

// Login verifies an identity-provider credential, upserts the user record and
// issues a fresh token pair. The new refresh token replaces any previously
// stored fingerprint, so older sessions are invalidated.
func (s *Service) Login(ctx context.Context, rawCredential string) (*user.User, token.Pair, error) {
	ident, err := s.verifier.Verify(ctx, rawCredential)
	if err != nil {
		return nil, token.Pair{}, err
	}

	role := user.RoleUser
	if s.adminEmail != "" && strings.EqualFold(ident.Email, s.adminEmail) {
		role = user.RoleAdmin
	}

	u, err := s.users.UpsertFromIdentity(ctx, ident, role)
	if err != nil {
		return nil, token.Pair{}, fmt.Errorf("upserting user: %w", err)
	}

	if !u.IsActive {
		return nil, token.Pair{}, ErrUserNotFoundOrInactive
	}

	pair, err := s.tokens.IssuePair(u.ID)
	if err != nil {
		return nil, token.Pair{}, fmt.Errorf("issuing token pair: %w", err)
	}

	fingerprint := token.Fingerprint(pair.RefreshToken)
	if err := s.users.SetRefreshFingerprint(ctx, u.ID, &fingerprint); err != nil {
		return nil, token.Pair{}, fmt.Errorf("storing refresh fingerprint: %w", err)
	}

	return u, pair, nil
}

// Refresh rotates a session: it verifies the presented refresh token, mints a
// new pair and swaps the stored fingerprint in one conditional update. A
// mismatch means the token was already used, superseded, or cleared — the old
// token is dead either way.
func (s *Service) Refresh(ctx context.Context, rawRefreshToken string) (token.Pair, error) {
	claims, err := s.tokens.Verify(rawRefreshToken, token.KindRefresh)
	if err != nil {
		return token.Pair{}, ErrInvalidRefreshToken
	}

	userID, err := claims.UserID()
	if err != nil {
		return token.Pair{}, ErrInvalidRefreshToken
	}

	pair, err := s.tokens.IssuePair(userID)
	if err != nil {
		return token.Pair{}, fmt.Errorf("issuing token pair: %w", err)
	}

	err = s.users.RotateRefreshFingerprint(ctx, userID,
		token.Fingerprint(rawRefreshToken), token.Fingerprint(pair.RefreshToken))
	if err != nil {
		if errors.Is(err, user.ErrFingerprintMismatch) {
			return token.Pair{}, ErrInvalidRefreshToken
		}
		return token.Pair{}, fmt.Errorf("rotating refresh fingerprint: %w", err)
	}

	return pair, nil
}

// Logout clears the stored refresh fingerprint. It is idempotent: logging out
// an already logged-out or deleted user succeeds.
func (s *Service) Logout(ctx context.Context, userID uuid.UUID) error {
	err := s.users.SetRefreshFingerprint(ctx, userID, nil)
	if err != nil && !errors.Is(err, user.ErrUserNotFound) {
		return fmt.Errorf("clearing refresh fingerprint: %w", err)
	}
	return nil
}

// Authenticate resolves a raw access token to an Identity. It never triggers
// a refresh; verify-or-reject only.
func (s *Service) Authenticate(ctx context.Context, rawAccessToken string) (*Identity, error) {
	claims, err := s.tokens.Verify(rawAccessToken, token.KindAccess)
	if err != nil {
		return nil, ErrInvalidAccessToken
	}

	userID, err := claims.UserID()
	if err != nil {
		return nil, ErrInvalidAccessToken
	}

	u, err := s.users.GetActiveByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, ErrUserNotFoundOrInactive
		}
		return nil, fmt.Errorf("loading user: %w", err)
	}

	return &Identity{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		AvatarURL: u.AvatarURL,
		Role:      u.Role,
	}, nil
}
