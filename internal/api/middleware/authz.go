package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/inkwell/inkwell/internal/api/response"
	"github.com/inkwell/inkwell/internal/blog"
)

// RequireAdmin returns middleware that rejects non-admin identities with 403.
func RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := GetIdentity(r.Context())
			if identity == nil {
				response.Err(w, http.StatusUnauthorized, unauthorizedMessage)
				return
			}

			if !identity.IsAdmin() {
				response.Err(w, http.StatusForbidden, "Admin access required")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireBlogAuthor returns middleware that allows only the blog's author or
// an admin through. An unknown blog id yields 404 before any authorization
// verdict, so error codes never reveal whether a forbidden resource exists.
func RequireBlogAuthor(blogs blog.OwnerLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := GetIdentity(r.Context())
			if identity == nil {
				response.Err(w, http.StatusUnauthorized, unauthorizedMessage)
				return
			}

			id, err := uuid.Parse(chi.URLParam(r, "id"))
			if err != nil {
				response.Err(w, http.StatusBadRequest, "id must be a valid UUID")
				return
			}

			authorID, err := blogs.GetAuthorID(r.Context(), id)
			if err != nil {
				if errors.Is(err, blog.ErrBlogNotFound) {
					response.Err(w, http.StatusNotFound, "Blog not found")
					return
				}
				slog.Error("failed to resolve blog author", "error", err, "blogId", id)
				response.Err(w, http.StatusInternalServerError, "Authorization check failed")
				return
			}

			if identity.ID != authorID && !identity.IsAdmin() {
				response.Err(w, http.StatusForbidden, "Not authorized to modify this blog")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
