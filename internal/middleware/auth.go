// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"inkpost/internal/session"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

const (
	// SessionKey is the context key for the session data.
	SessionKey contextKey = "session"

	// LoginPath is where unauthenticated visitors are sent.
	LoginPath = "/login"

	// SecondFactorPath is where visitors with a pending TOTP check are sent.
	SecondFactorPath = "/login/2fa"

	// LoginRequiredMessage is flashed when the auth gate turns a visitor away.
	LoginRequiredMessage = "Please log in to continue."
)

// Flasher queues one-shot notices. *session.Store implements it.
type Flasher interface {
	AddFlash(ctx context.Context, w http.ResponseWriter, r *http.Request, f session.Flash) error
}

// LoadSession retrieves the session from Valkey and stores it in the
// request context. It does not enforce authentication.
func LoadSession(store *session.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			data, err := store.Get(r.Context(), r)
			if err != nil {
				slog.Warn("session load failed", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			if data != nil {
				ctx := context.WithValue(r.Context(), SessionKey, data)
				r = r.WithContext(ctx)
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth turns away visitors without a fully authenticated session.
// Anonymous visitors get a flash and a redirect to the login page carrying
// the current path as next; a session still waiting on its second factor
// is sent to the TOTP form. Must run after LoadSession.
func RequireAuth(flash Flasher) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := SessionFromCtx(r.Context())
			if sess.Authenticated() {
				next.ServeHTTP(w, r)
				return
			}
			if sess != nil {
				http.Redirect(w, r, SecondFactorPath, http.StatusSeeOther)
				return
			}
			RedirectToLogin(w, r, flash)
		})
	}
}

// RedirectToLogin flashes the login-required notice and redirects to the
// login page with the request path as next. flash may be nil.
func RedirectToLogin(w http.ResponseWriter, r *http.Request, flash Flasher) {
	if flash != nil {
		err := flash.AddFlash(r.Context(), w, r, session.Flash{Type: "error", Message: LoginRequiredMessage})
		if err != nil {
			slog.Warn("flash failed", "error", err)
		}
	}
	http.Redirect(w, r, LoginURL(r.URL.RequestURI()), http.StatusSeeOther)
}

// LoginURL builds the login path that returns to next afterwards.
func LoginURL(next string) string {
	if next == "" || next == "/" {
		return LoginPath
	}
	return LoginPath + "?next=" + url.QueryEscape(next)
}

// SessionFromCtx extracts the session data from the request context.
// The session may still be waiting on its second factor; use
// UserFromCtx for the logged-in user.
func SessionFromCtx(ctx context.Context) *session.Data {
	data, _ := ctx.Value(SessionKey).(*session.Data)
	return data
}

// UserFromCtx returns the session of the logged-in user, or nil for
// anonymous visitors and pending second-factor sessions.
func UserFromCtx(ctx context.Context) *session.Data {
	if data := SessionFromCtx(ctx); data.Authenticated() {
		return data
	}
	return nil
}
