package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/inkwell/inkwell/internal/api/middleware"
	"github.com/inkwell/inkwell/internal/api/response"
	"github.com/inkwell/inkwell/internal/api/validation"
	"github.com/inkwell/inkwell/internal/user"
)

type adminUpdateUserRequest struct {
	Role     *string `json:"role"`
	IsActive *bool   `json:"isActive"`
}

type paginationResponse struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// AdminHandler handles the /admin user-management endpoints.
type AdminHandler struct {
	users user.Repository
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(users user.Repository) *AdminHandler {
	return &AdminHandler{users: users}
}

// ListUsers handles GET /admin/users.
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 10)

	users, total, err := h.users.List(r.Context(), page, limit)
	if err != nil {
		slog.Error("failed to list users", "error", err)
		response.Err(w, http.StatusInternalServerError, "Failed to list users")
		return
	}

	items := make([]userResponse, 0, len(users))
	for i := range users {
		items = append(items, toUserResponse(&users[i]))
	}

	pages := (total + limit - 1) / limit

	response.Success(w, http.StatusOK, map[string]any{
		"users": items,
		"pagination": paginationResponse{
			Page:  page,
			Limit: limit,
			Total: total,
			Pages: pages,
		},
	})
}

// UpdateUser handles PATCH /admin/users/{id}. Admins cannot deactivate their
// own account through this path.
func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.Err(w, http.StatusBadRequest, "id must be a valid UUID")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req adminUpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "Request body must be valid JSON")
		return
	}

	if fieldErrors := validation.ValidateAdminUpdateUserRequest(validation.AdminUpdateUserRequest{
		Role: req.Role,
	}); len(fieldErrors) > 0 {
		response.Err(w, http.StatusBadRequest, validation.Message(fieldErrors))
		return
	}

	ident := middleware.GetIdentity(r.Context())
	if ident.ID == id && req.IsActive != nil && !*req.IsActive {
		response.Err(w, http.StatusBadRequest, "Cannot deactivate your own account")
		return
	}

	update := user.AdminUpdate{IsActive: req.IsActive}
	if req.Role != nil {
		role := user.Role(*req.Role)
		update.Role = &role
	}

	u, err := h.users.AdminUpdate(r.Context(), id, update)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			response.Err(w, http.StatusNotFound, "User not found")
			return
		}
		slog.Error("failed to update user", "error", err, "id", id)
		response.Err(w, http.StatusInternalServerError, "Failed to update user")
		return
	}

	response.Success(w, http.StatusOK, map[string]any{"user": toUserResponse(u)})
}

// DeleteUser handles DELETE /admin/users/{id}. Admins cannot delete their own
// account.
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.Err(w, http.StatusBadRequest, "id must be a valid UUID")
		return
	}

	ident := middleware.GetIdentity(r.Context())
	if ident.ID == id {
		response.Err(w, http.StatusBadRequest, "Cannot delete your own account")
		return
	}

	if err := h.users.Delete(r.Context(), id); err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			response.Err(w, http.StatusNotFound, "User not found")
			return
		}
		slog.Error("failed to delete user", "error", err, "id", id)
		response.Err(w, http.StatusInternalServerError, "Failed to delete user")
		return
	}

	response.SuccessMessage(w, http.StatusOK, "User deleted successfully")
}

func queryInt(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
