// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// blogdesk dashboard API. Routes are split into the auth endpoints and the
// role-gated /dashboard group.
package router

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"blogdesk/internal/handlers"
	"blogdesk/internal/middleware"
	"blogdesk/internal/models"
)

// compressMinSize is the smallest response body worth gzipping.
const compressMinSize = 1024

// Config wires the router.
type Config struct {
	Sessions      middleware.SessionLoader
	Dashboard     *handlers.Dashboard
	Auth          *handlers.Auth
	LoginLimiter  *middleware.RateLimiter // optional
	UploadLimiter *middleware.RateLimiter // optional, guards image staging
	Logger        *slog.Logger
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(cfg Config) (chi.Router, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	compress, err := middleware.Compress(compressMinSize)
	if err != nil {
		return nil, fmt.Errorf("router: %w", err)
	}

	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecureHeaders)
	r.Use(compress)
	r.Use(middleware.LoadSession(cfg.Sessions))

	r.Get("/health", healthHandler)

	auth, dash := cfg.Auth, cfg.Dashboard

	r.Route("/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if cfg.LoginLimiter != nil {
				r.Use(cfg.LoginLimiter.Middleware)
			}
			r.Post("/login", auth.Login)
		})
		r.Post("/logout", auth.Logout)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Get("/me", auth.Me)
			r.Patch("/password", auth.ChangePassword)
		})
	})

	r.Route("/dashboard", func(r chi.Router) {
		r.Use(middleware.RequireRole(models.RoleAdmin, models.RoleEditor, models.RoleAuthor))

		r.Route("/editor/sessions", func(r chi.Router) {
			r.Post("/", dash.OpenSession)
			r.Route("/{sid}", func(r chi.Router) {
				r.Get("/", dash.GetSession)
				r.Delete("/", dash.CloseSession)
				r.Patch("/draft", dash.UpdateDraft)
				r.Group(func(r chi.Router) {
					if cfg.UploadLimiter != nil {
						r.Use(cfg.UploadLimiter.Middleware)
					}
					r.Post("/cover", dash.StageCover)
					r.Post("/images", dash.StageImage)
				})
				r.Delete("/cover", dash.ClearCover)
				r.Get("/staged/{handle}", dash.StagedFile)
				r.Post("/save", dash.Save)
			})
		})

		r.Route("/posts", func(r chi.Router) {
			r.Get("/", dash.ListPosts)
			r.Get("/slug/{slug}", dash.GetPostBySlug)
			r.Get("/{id}", dash.GetPost)
			r.Delete("/{id}", dash.DeletePost)
			r.Patch("/{id}/status", dash.ChangePostStatus)
			r.Post("/{id}/tags", dash.AddPostTags)
			r.Delete("/{id}/tags", dash.RemovePostTags)
		})

		// Taxonomy reads are open to authors; writes need an editor.
		r.Route("/categories", func(r chi.Router) {
			r.Get("/", dash.ListCategories)
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(models.RoleAdmin, models.RoleEditor))
				r.Post("/", dash.CreateCategory)
				r.Patch("/{id}", dash.UpdateCategory)
				r.Delete("/{id}", dash.DeleteCategory)
			})
		})
		r.Route("/tags", func(r chi.Router) {
			r.Get("/", dash.ListTags)
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(models.RoleAdmin, models.RoleEditor))
				r.Post("/", dash.CreateTag)
				r.Patch("/{id}", dash.UpdateTag)
				r.Delete("/{id}", dash.DeleteTag)
			})
		})

		r.Route("/comments", func(r chi.Router) {
			r.Use(middleware.RequireRole(models.RoleAdmin, models.RoleEditor))
			r.Get("/post/{postId}", dash.ListPostComments)
			r.Patch("/{id}/moderate", dash.ModerateComment)
			r.Delete("/{id}", dash.DeleteComment)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(middleware.RequireRole(models.RoleAdmin))
			r.Get("/", dash.ListUsers)
			r.Post("/", dash.CreateUser)
			r.Get("/{uuid}", dash.GetUser)
			r.Patch("/{uuid}/status", dash.ChangeUserStatus)
			r.Patch("/{uuid}/password", dash.ChangeUserPassword)
		})

		r.Get("/profile", dash.GetProfile)
		r.Patch("/profile", dash.UpdateProfile)

		r.Route("/orphans", func(r chi.Router) {
			r.Use(middleware.RequireRole(models.RoleAdmin, models.RoleEditor))
			r.Get("/", dash.ListOrphans)
			r.Post("/{id}/retry", dash.RetryOrphan)
		})
	})

	return r, nil
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
