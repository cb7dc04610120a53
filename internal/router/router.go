// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// blog. Routes are split into public pages, pages that need a logged-in
// user, and the rate-limited authentication forms.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"inkpost/internal/handlers"
	"inkpost/internal/middleware"
	"inkpost/internal/render"
	"inkpost/internal/session"
)

// Options carries the router settings that come from configuration.
type Options struct {
	// SecureCookies marks the CSRF cookie HTTPS-only.
	SecureCookies bool

	// LoginLimiter throttles submissions of the login, sign-up and
	// second-factor forms. Nil disables throttling.
	LoginLimiter *middleware.RateLimiter
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(sessions *session.Store, blog *handlers.Blog, auth *handlers.Auth, opts Options) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(chimw.StripSlashes)

	r.NotFound(blog.NotFound)

	// Health check and assets: no session, no CSRF.
	r.Get("/health", healthHandler)
	r.Handle("/static/*", render.StaticHandler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.LoadSession(sessions))
		r.Use(middleware.NewCSRF(opts.SecureCookies))

		// Authentication forms.
		r.Group(func(r chi.Router) {
			if opts.LoginLimiter != nil {
				r.Use(opts.LoginLimiter.Middleware)
			}
			r.Get("/create_user", auth.RegisterPage)
			r.Post("/create_user", auth.RegisterSubmit)
			r.Get(middleware.LoginPath, auth.LoginPage)
			r.Post(middleware.LoginPath, auth.LoginSubmit)
			r.Get(middleware.SecondFactorPath, auth.SecondFactorPage)
			r.Post(middleware.SecondFactorPath, auth.SecondFactorSubmit)
		})
		r.Post("/logout", auth.Logout)

		// Public pages.
		r.Get("/", blog.Home)
		r.Get("/post_detail/{id}", blog.PostDetail)
		r.Post("/post_detail/{id}", blog.PostLike)
		r.Get("/most_commented", blog.MostCommented)
		r.Get("/most_liked", blog.MostLiked)
		r.Get("/drafts/{id}", blog.DraftDetail)
		r.Get("/comments/{id}", blog.Comments)
		r.Get("/comment_update/{id}", blog.UpdateCommentPage)
		r.Post("/comment_update/{id}", blog.UpdateCommentSubmit)
		r.Get("/category", blog.Categories)
		r.Get("/create_category", blog.CreateCategoryPage)
		r.Post("/create_category", blog.CreateCategorySubmit)

		// Pages that need a logged-in user.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(sessions))

			r.Get("/create_post", blog.CreatePostPage)
			r.Post("/create_post", blog.CreatePostSubmit)
			r.Get("/post_update/{id}", blog.UpdatePostPage)
			r.Post("/post_update/{id}", blog.UpdatePostSubmit)
			r.Get("/post_delete/{id}", blog.DeletePostPage)
			r.Post("/post_delete/{id}", blog.DeletePostSubmit)
			r.Get("/drafts", blog.Drafts)
			r.Get("/post_detail/{id}/create-comment", blog.CreateCommentPage)
			r.Post("/post_detail/{id}/create-comment", blog.CreateCommentSubmit)
			r.Get("/comments/{id}/reply_to_comment", blog.ReplyPage)
			r.Post("/comments/{id}/reply_to_comment", blog.ReplySubmit)

			r.Get("/account/2fa", auth.TwoFASetupPage)
			r.Post("/account/2fa", auth.TwoFASetupSubmit)
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
