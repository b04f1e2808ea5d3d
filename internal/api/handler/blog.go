package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/inkwell/inkwell/internal/api/middleware"
	"github.com/inkwell/inkwell/internal/api/response"
	"github.com/inkwell/inkwell/internal/api/validation"
	"github.com/inkwell/inkwell/internal/blog"
)

type blogRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type blogResponse struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	AuthorID  string `json:"authorId"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

func toBlogResponse(b *blog.Blog) blogResponse {
	return blogResponse{
		ID:        b.ID.String(),
		Title:     b.Title,
		Content:   b.Content,
		AuthorID:  b.AuthorID.String(),
		CreatedAt: b.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: b.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// BlogHandler handles the /blogs endpoints.
type BlogHandler struct {
	blogs blog.Repository
}

// NewBlogHandler creates a new BlogHandler.
func NewBlogHandler(blogs blog.Repository) *BlogHandler {
	return &BlogHandler{blogs: blogs}
}

// Create handles POST /blogs.
func (h *BlogHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeBlogRequest(w, r)
	if !ok {
		return
	}

	ident := middleware.GetIdentity(r.Context())

	b := &blog.Blog{
		Title:    strings.TrimSpace(req.Title),
		Content:  req.Content,
		AuthorID: ident.ID,
	}

	if err := h.blogs.Create(r.Context(), b); err != nil {
		slog.Error("failed to create blog", "error", err)
		response.Err(w, http.StatusInternalServerError, "Failed to create blog")
		return
	}

	response.Success(w, http.StatusCreated, map[string]any{"blog": toBlogResponse(b)})
}

// Get handles GET /blogs/{id}.
func (h *BlogHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.Err(w, http.StatusBadRequest, "id must be a valid UUID")
		return
	}

	b, err := h.blogs.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, blog.ErrBlogNotFound) {
			response.Err(w, http.StatusNotFound, "Blog not found")
			return
		}
		slog.Error("failed to get blog", "error", err, "id", id)
		response.Err(w, http.StatusInternalServerError, "Failed to get blog")
		return
	}

	response.Success(w, http.StatusOK, map[string]any{"blog": toBlogResponse(b)})
}

// Update handles PUT /blogs/{id}. Ownership is enforced by middleware.
func (h *BlogHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.Err(w, http.StatusBadRequest, "id must be a valid UUID")
		return
	}

	req, ok := decodeBlogRequest(w, r)
	if !ok {
		return
	}

	b, err := h.blogs.Update(r.Context(), id, strings.TrimSpace(req.Title), req.Content)
	if err != nil {
		if errors.Is(err, blog.ErrBlogNotFound) {
			response.Err(w, http.StatusNotFound, "Blog not found")
			return
		}
		slog.Error("failed to update blog", "error", err, "id", id)
		response.Err(w, http.StatusInternalServerError, "Failed to update blog")
		return
	}

	response.Success(w, http.StatusOK, map[string]any{"blog": toBlogResponse(b)})
}

// Delete handles DELETE /blogs/{id}. Ownership is enforced by middleware.
func (h *BlogHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.Err(w, http.StatusBadRequest, "id must be a valid UUID")
		return
	}

	if err := h.blogs.Delete(r.Context(), id); err != nil {
		if errors.Is(err, blog.ErrBlogNotFound) {
			response.Err(w, http.StatusNotFound, "Blog not found")
			return
		}
		slog.Error("failed to delete blog", "error", err, "id", id)
		response.Err(w, http.StatusInternalServerError, "Failed to delete blog")
		return
	}

	response.SuccessMessage(w, http.StatusOK, "Blog deleted successfully")
}

func decodeBlogRequest(w http.ResponseWriter, r *http.Request) (blogRequest, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	var req blogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "Request body must be valid JSON")
		return blogRequest{}, false
	}

	if fieldErrors := validation.ValidateBlogRequest(validation.BlogRequest{
		Title:   req.Title,
		Content: req.Content,
	}); len(fieldErrors) > 0 {
		response.Err(w, http.StatusBadRequest, validation.Message(fieldErrors))
		return blogRequest{}, false
	}

	return req, true
}
