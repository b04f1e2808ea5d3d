package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/inkwell/inkwell/internal/api/response"
	"github.com/inkwell/inkwell/internal/api/session"
	"github.com/inkwell/inkwell/internal/auth"
)

const identityKey contextKey = "identity"

// All authentication failures share one message so callers cannot tell a
// missing token from an expired, reused, or wrong-kind one.
const unauthorizedMessage = "Authentication required"

// Auth is middleware that extracts the access token — httpOnly cookie first,
// bearer header as a fallback for non-browser clients — and resolves it to an
// Identity. It never triggers a refresh; that is a distinct client-initiated
// operation.
func Auth(authService *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rawToken := extractAccessToken(r)
			if rawToken == "" {
				response.Err(w, http.StatusUnauthorized, unauthorizedMessage)
				return
			}

			identity, err := authService.Authenticate(r.Context(), rawToken)
			if err != nil {
				if errors.Is(err, auth.ErrInvalidAccessToken) || errors.Is(err, auth.ErrUserNotFoundOrInactive) {
					response.Err(w, http.StatusUnauthorized, unauthorizedMessage)
					return
				}
				// Directory failures must not masquerade as logouts.
				slog.Error("authentication failed", "error", err, "requestId", GetRequestID(r.Context()))
				response.Err(w, http.StatusInternalServerError, "Authentication failed")
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetIdentity retrieves the authenticated Identity from the request context.
func GetIdentity(ctx context.Context) *auth.Identity {
	if id, ok := ctx.Value(identityKey).(*auth.Identity); ok {
		return id
	}
	return nil
}

// WithIdentity returns a context carrying the given identity. Intended for
// handler tests that bypass the middleware.
func WithIdentity(ctx context.Context, identity *auth.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

func extractAccessToken(r *http.Request) string {
	if c, err := r.Cookie(session.AccessTokenCookie); err == nil && c.Value != "" {
		return c.Value
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}
