package token

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Kind discriminates the two token kinds. It is carried as a claim so a
// validly signed token of one kind cannot be presented as the other.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

// ErrInvalidToken is returned when a token fails signature or format checks.
var ErrInvalidToken = errors.New("invalid token")

// ErrExpiredToken is returned when a token is past its expiry.
var ErrExpiredToken = errors.New("token expired")

// ErrWrongKind is returned when a validly signed token carries the wrong kind.
var ErrWrongKind = errors.New("wrong token kind")

// Claims is the signed claim set of both token kinds.
type Claims struct {
	TokenType string `json:"type"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim as the owning user's UUID.
func (c *Claims) UserID() (uuid.UUID, error) {
	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: subject is not a valid user id", ErrInvalidToken)
	}
	return id, nil
}

// Pair holds an access/refresh token pair minted together. An access token is
// never issued without also rotating the refresh token.
type Pair struct {
	AccessToken  string
	RefreshToken string
}

// Service issues and verifies access and refresh tokens. The two kinds are
// signed with distinct secrets.
type Service struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewService creates a token Service.
func NewService(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *Service {
	return &Service{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// IssuePair mints a fresh access/refresh pair for the given user.
func (s *Service) IssuePair(userID uuid.UUID) (Pair, error) {
	now := time.Now()

	accessToken, err := s.sign(userID, KindAccess, now, s.accessTTL, s.accessSecret)
	if err != nil {
		return Pair{}, fmt.Errorf("signing access token: %w", err)
	}

	refreshToken, err := s.sign(userID, KindRefresh, now, s.refreshTTL, s.refreshSecret)
	if err != nil {
		return Pair{}, fmt.Errorf("signing refresh token: %w", err)
	}

	return Pair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Verify validates signature, expiry and kind of a raw token.
func (s *Service) Verify(raw string, kind Kind) (*Claims, error) {
	secret := s.accessSecret
	if kind == KindRefresh {
		secret = s.refreshSecret
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	if claims.TokenType != string(kind) {
		return nil, ErrWrongKind
	}

	return &claims, nil
}

// AccessTTL returns the access token lifetime.
func (s *Service) AccessTTL() time.Duration {
	return s.accessTTL
}

// RefreshTTL returns the refresh token lifetime.
func (s *Service) RefreshTTL() time.Duration {
	return s.refreshTTL
}

func (s *Service) sign(userID uuid.UUID, kind Kind, now time.Time, ttl time.Duration, secret []byte) (string, error) {
	claims := Claims{
		TokenType: string(kind),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// Fingerprint returns the hex-encoded SHA-256 digest of a raw token. Only the
// fingerprint of the current refresh token is ever persisted.
func Fingerprint(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
