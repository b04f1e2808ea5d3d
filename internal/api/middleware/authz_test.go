package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/inkwell/inkwell/internal/api/middleware"
	"github.com/inkwell/inkwell/internal/auth"
	"github.com/inkwell/inkwell/internal/blog"
	"github.com/inkwell/inkwell/internal/user"
)

type fakeOwnerLookup map[uuid.UUID]uuid.UUID

func (f fakeOwnerLookup) GetAuthorID(_ context.Context, id uuid.UUID) (uuid.UUID, error) {
	owner, ok := f[id]
	if !ok {
		return uuid.Nil, blog.ErrBlogNotFound
	}
	return owner, nil
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func identityOf(role user.Role) *auth.Identity {
	return &auth.Identity{ID: uuid.New(), Email: "someone@example.com", Role: role}
}

func requestAs(target string, ident *auth.Identity) *http.Request {
	req := httptest.NewRequest(http.MethodPut, target, nil)
	if ident != nil {
		req = req.WithContext(middleware.WithIdentity(req.Context(), ident))
	}
	return req
}

func TestRequireAdmin(t *testing.T) {
	handler := middleware.RequireAdmin()(okHandler())

	tests := []struct {
		name     string
		identity *auth.Identity
		want     int
	}{
		{"no identity", nil, http.StatusUnauthorized},
		{"regular user", identityOf(user.RoleUser), http.StatusForbidden},
		{"admin", identityOf(user.RoleAdmin), http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, requestAs("/admin/users", tt.identity))
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestRequireBlogAuthor(t *testing.T) {
	owner := identityOf(user.RoleUser)
	stranger := identityOf(user.RoleUser)
	admin := identityOf(user.RoleAdmin)

	blogID := uuid.New()
	lookup := fakeOwnerLookup{blogID: owner.ID}

	router := chi.NewRouter()
	router.With(middleware.RequireBlogAuthor(lookup)).Put("/blogs/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name     string
		identity *auth.Identity
		target   string
		want     int
	}{
		{"owner allowed", owner, "/blogs/" + blogID.String(), http.StatusOK},
		{"stranger forbidden", stranger, "/blogs/" + blogID.String(), http.StatusForbidden},
		{"admin allowed", admin, "/blogs/" + blogID.String(), http.StatusOK},
		{"unknown blog is 404 for owner", owner, "/blogs/" + uuid.NewString(), http.StatusNotFound},
		{"unknown blog is 404 for stranger", stranger, "/blogs/" + uuid.NewString(), http.StatusNotFound},
		{"unknown blog is 404 for admin", admin, "/blogs/" + uuid.NewString(), http.StatusNotFound},
		{"invalid id", owner, "/blogs/not-a-uuid", http.StatusBadRequest},
		{"no identity", nil, "/blogs/" + blogID.String(), http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, requestAs(tt.target, tt.identity))
			assert.Equal(t, tt.want, w.Code)
		})
	}
}
