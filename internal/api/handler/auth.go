package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/inkwell/inkwell/internal/api/middleware"
	"github.com/inkwell/inkwell/internal/api/response"
	"github.com/inkwell/inkwell/internal/api/session"
	"github.com/inkwell/inkwell/internal/auth"
	"github.com/inkwell/inkwell/internal/identity"
	"github.com/inkwell/inkwell/internal/user"
)

type googleLoginRequest struct {
	Credential string `json:"credential"`
}

type userResponse struct {
	ID        string  `json:"id"`
	Email     string  `json:"email"`
	Name      string  `json:"name"`
	Avatar    *string `json:"avatar,omitempty"`
	Role      string  `json:"role"`
	IsActive  bool    `json:"isActive"`
	CreatedAt string  `json:"createdAt"`
}

func toUserResponse(u *user.User) userResponse {
	return userResponse{
		ID:        u.ID.String(),
		Email:     u.Email,
		Name:      u.Name,
		Avatar:    u.AvatarURL,
		Role:      string(u.Role),
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt.UTC().Format(time.RFC3339),
	}
}

type identityResponse struct {
	ID     string  `json:"id"`
	Email  string  `json:"email"`
	Name   string  `json:"name"`
	Avatar *string `json:"avatar,omitempty"`
	Role   string  `json:"role"`
}

// AuthHandler handles the /auth endpoints.
type AuthHandler struct {
	authService *auth.Service
	sessions    *session.Manager
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *auth.Service, sessions *session.Manager) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		sessions:    sessions,
	}
}

// GoogleLogin handles POST /auth/google.
func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req googleLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "Request body must be valid JSON")
		return
	}

	if req.Credential == "" {
		response.Err(w, http.StatusBadRequest, "Google credential is required")
		return
	}

	u, pair, err := h.authService.Login(r.Context(), req.Credential)
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrInvalidCredential):
			response.Err(w, http.StatusUnauthorized, "Google authentication failed")
		case errors.Is(err, auth.ErrUserNotFoundOrInactive):
			response.Err(w, http.StatusUnauthorized, "User account is deactivated")
		case errors.Is(err, identity.ErrVerificationUnavailable):
			slog.Error("identity provider unavailable", "error", err)
			response.Err(w, http.StatusInternalServerError, "Authentication is temporarily unavailable")
		default:
			slog.Error("login failed", "error", err)
			response.Err(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	h.sessions.Attach(w, pair)

	response.Success(w, http.StatusOK, map[string]any{"user": toUserResponse(u)})
}

// Refresh handles POST /auth/refresh. Rotation is the only path besides login
// and logout that replaces the stored fingerprint.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(session.RefreshTokenCookie)
	if err != nil || cookie.Value == "" {
		response.Err(w, http.StatusUnauthorized, "Refresh token required")
		return
	}

	pair, err := h.authService.Refresh(r.Context(), cookie.Value)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidRefreshToken) {
			response.Err(w, http.StatusUnauthorized, "Invalid or expired refresh token")
			return
		}
		slog.Error("token refresh failed", "error", err)
		response.Err(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.sessions.Attach(w, pair)

	response.SuccessMessage(w, http.StatusOK, "Token refreshed successfully")
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	ident := middleware.GetIdentity(r.Context())

	response.Success(w, http.StatusOK, map[string]any{"user": identityResponse{
		ID:     ident.ID.String(),
		Email:  ident.Email,
		Name:   ident.Name,
		Avatar: ident.AvatarURL,
		Role:   string(ident.Role),
	}})
}

// Logout handles POST /auth/logout. Idempotent: a second logout clears
// nothing but still succeeds.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ident := middleware.GetIdentity(r.Context())

	if err := h.authService.Logout(r.Context(), ident.ID); err != nil {
		slog.Error("logout failed", "error", err, "userId", ident.ID)
		response.Err(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.sessions.Clear(w)

	response.SuccessMessage(w, http.StatusOK, "Logged out successfully")
}
