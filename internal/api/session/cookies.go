// Package session binds issued tokens to httpOnly cookies. Cookie lifetimes
// mirror token lifetimes exactly so a stale cookie is never trusted past its
// token's expiry.
package session

import (
	"net/http"
	"time"

	"github.com/inkwell/inkwell/internal/token"
)

// Cookie names are part of the wire contract.
const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

// Manager sets and clears the session cookie pair with environment-dependent
// security attributes: Secure and SameSite=Strict in production, SameSite=Lax
// otherwise so the local dev client on another port can send credentials.
type Manager struct {
	production bool
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewManager creates a session cookie Manager.
func NewManager(production bool, accessTTL, refreshTTL time.Duration) *Manager {
	return &Manager{
		production: production,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// Attach sets both session cookies for the given token pair.
func (m *Manager) Attach(w http.ResponseWriter, pair token.Pair) {
	http.SetCookie(w, m.cookie(AccessTokenCookie, pair.AccessToken, int(m.accessTTL.Seconds())))
	http.SetCookie(w, m.cookie(RefreshTokenCookie, pair.RefreshToken, int(m.refreshTTL.Seconds())))
}

// Clear expires both session cookies.
func (m *Manager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, m.cookie(AccessTokenCookie, "", -1))
	http.SetCookie(w, m.cookie(RefreshTokenCookie, "", -1))
}

func (m *Manager) cookie(name, value string, maxAge int) *http.Cookie {
	sameSite := http.SameSiteLaxMode
	if m.production {
		sameSite = http.SameSiteStrictMode
	}

	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.production,
		SameSite: sameSite,
	}
}
