// Package router sets up all HTTP routes and middleware chains for the
// Inkwell API. It organizes routes into public and authenticated groups
// with appropriate middleware stacks.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"inkwell/internal/handlers"
	"inkwell/internal/middleware"
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up. uploadDir is served under /uploads/ for
// locally stored images; pass "" to disable the static route.
func New(
	jwtSecret string,
	limiter *middleware.RateLimiter,
	auth *handlers.Auth,
	categories *handlers.Categories,
	posts *handlers.Posts,
	uploads *handlers.Uploads,
	uploadDir string,
) chi.Router {
	r := chi.NewRouter()

	// Global middleware — applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.LoadUser(jwtSecret))

	// Health check — no auth.
	r.Get("/health", healthHandler)

	// Auth routes. Register and login are rate limited to slow down
	// credential stuffing; /me needs a valid token.
	r.Route("/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(limiter.Middleware)
			r.Post("/register", auth.Register)
			r.Post("/login", auth.Login)
		})
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Get("/me", auth.Me)
		})
	})

	// Categories — listing is public, creation is admin only.
	r.Route("/categories", func(r chi.Router) {
		r.Get("/", categories.List)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Use(middleware.RequireAdmin)
			r.Post("/", categories.Create)
		})
	})

	// Posts — reads are public, writes need authentication. Per-post
	// authorization (author or admin) happens in the handlers.
	r.Route("/posts", func(r chi.Router) {
		r.Get("/", posts.List)
		r.Get("/{idOrSlug}", posts.Get)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Post("/", posts.Create)
			r.Put("/{id}", posts.Update)
			r.Delete("/{id}", posts.Delete)
			r.Post("/{id}/comments", posts.AddComment)
		})
	})

	// Image uploads.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/uploads", uploads.Create)
	})

	// Locally stored images are served straight from disk.
	if uploadDir != "" {
		fs := http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadDir)))
		r.Get("/uploads/*", fs.ServeHTTP)
	}

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
