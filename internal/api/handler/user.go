package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/inkwell/inkwell/internal/api/middleware"
	"github.com/inkwell/inkwell/internal/api/response"
	"github.com/inkwell/inkwell/internal/api/validation"
	"github.com/inkwell/inkwell/internal/user"
)

type updateProfileRequest struct {
	Name   string  `json:"name"`
	Avatar *string `json:"avatar"`
}

// UserHandler handles the /users endpoints.
type UserHandler struct {
	users user.Repository
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users user.Repository) *UserHandler {
	return &UserHandler{users: users}
}

// UpdateProfile handles PATCH /users/profile.
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "Request body must be valid JSON")
		return
	}

	if fieldErrors := validation.ValidateUpdateProfileRequest(validation.UpdateProfileRequest{
		Name: req.Name,
	}); len(fieldErrors) > 0 {
		response.Err(w, http.StatusBadRequest, validation.Message(fieldErrors))
		return
	}

	ident := middleware.GetIdentity(r.Context())

	u, err := h.users.UpdateProfile(r.Context(), ident.ID, strings.TrimSpace(req.Name), req.Avatar)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			response.Err(w, http.StatusNotFound, "User not found")
			return
		}
		slog.Error("failed to update profile", "error", err, "userId", ident.ID)
		response.Err(w, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	response.Success(w, http.StatusOK, map[string]any{"user": toUserResponse(u)})
}
