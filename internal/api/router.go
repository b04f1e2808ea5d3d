package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/inkwell/inkwell/internal/api/handler"
	"github.com/inkwell/inkwell/internal/api/middleware"
	"github.com/inkwell/inkwell/internal/api/session"
	"github.com/inkwell/inkwell/internal/auth"
	"github.com/inkwell/inkwell/internal/blog"
	"github.com/inkwell/inkwell/internal/user"
)

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	AuthService  *auth.Service
	Sessions     *session.Manager
	Users        user.Repository
	Blogs        blog.Repository
	DBPinger     handler.DBPinger
	ClientOrigin string
	Production   bool
	Version      string
}

// NewRouter creates and configures a Chi router with all middleware and routes.
func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery)
	r.Use(chimiddleware.Logger)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{deps.ClientOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if deps.Production {
		r.Use(rateLimiter())
	}

	authenticate := middleware.Auth(deps.AuthService)

	healthHandler := handler.NewHealthHandler(deps.DBPinger, deps.Version)
	r.Get("/health", healthHandler.ServeHTTP)

	authHandler := handler.NewAuthHandler(deps.AuthService, deps.Sessions)
	r.Route("/auth", func(r chi.Router) {
		r.Post("/google", authHandler.GoogleLogin)
		r.Post("/refresh", authHandler.Refresh)
		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Get("/me", authHandler.Me)
			r.Post("/logout", authHandler.Logout)
		})
	})

	userHandler := handler.NewUserHandler(deps.Users)
	r.Route("/users", func(r chi.Router) {
		r.Use(authenticate)
		r.Patch("/profile", userHandler.UpdateProfile)
	})

	adminHandler := handler.NewAdminHandler(deps.Users)
	r.Route("/admin", func(r chi.Router) {
		r.Use(authenticate)
		r.Use(middleware.RequireAdmin())
		r.Get("/users", adminHandler.ListUsers)
		r.Patch("/users/{id}", adminHandler.UpdateUser)
		r.Delete("/users/{id}", adminHandler.DeleteUser)
	})

	blogHandler := handler.NewBlogHandler(deps.Blogs)
	r.Route("/blogs", func(r chi.Router) {
		r.Get("/{id}", blogHandler.Get)
		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/", blogHandler.Create)
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireBlogAuthor(deps.Blogs))
				r.Put("/{id}", blogHandler.Update)
				r.Delete("/{id}", blogHandler.Delete)
			})
		})
	})

	return r
}

// rateLimiter limits by client IP. Refresh and me are exempt so a page load
// fanning out many authenticated requests cannot lock a user out of session
// renewal.
func rateLimiter() func(http.Handler) http.Handler {
	limit := httprate.Limit(2000, 15*time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP))

	return func(next http.Handler) http.Handler {
		limited := limit(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, "/auth/refresh") || strings.HasPrefix(r.URL.Path, "/auth/me") {
				next.ServeHTTP(w, r)
				return
			}
			limited.ServeHTTP(w, r)
		})
	}
}
