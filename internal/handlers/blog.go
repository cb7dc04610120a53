// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers implements the HTTP handlers for the blog. Handlers
// translate requests into blog operations, turn operation outcomes into
// redirects with flash notices, and render pages through the renderer.
package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"inkpost/internal/blog"
	"inkpost/internal/middleware"
	"inkpost/internal/render"
	"inkpost/internal/session"
)

// PageCache is the rendered-page cache used for the anonymous listing
// pages. *cache.PageCache implements it.
type PageCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, html []byte)
	InvalidateAll(ctx context.Context)
}

// Blog groups the post, comment and category handlers.
type Blog struct {
	renderer *render.Renderer
	blog     *blog.Service
	flash    middleware.Flasher
	pages    PageCache
}

// NewBlog creates the blog handler group. flash and pages may be nil, in
// which case notices are dropped and nothing is cached.
func NewBlog(renderer *render.Renderer, svc *blog.Service, flash middleware.Flasher, pages PageCache) *Blog {
	return &Blog{
		renderer: renderer,
		blog:     svc,
		flash:    flash,
		pages:    pages,
	}
}

// actorFrom returns the authenticated user as a blog actor, or nil.
func actorFrom(r *http.Request) *blog.Actor {
	u := middleware.UserFromCtx(r.Context())
	if u == nil {
		return nil
	}
	return &blog.Actor{ID: u.UserID, Username: u.Username, Email: u.Email}
}

// idParam parses the {id} URL parameter. Malformed ids are reported as
// not found since no entity can carry them.
func idParam(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, blog.ErrNotFound
	}
	return id, nil
}

// outcomeURL maps the view a write operation hands over to onto its path.
func outcomeURL(out blog.Outcome) string {
	switch out.View {
	case blog.ViewPostDetail:
		return "/post_detail/" + out.ID.String()
	case blog.ViewDraftList:
		return "/drafts"
	case blog.ViewCommentList:
		return "/comments/" + out.ID.String()
	case blog.ViewCategoryList:
		return "/category"
	case blog.ViewLogin:
		if out.ID != uuid.Nil {
			return middleware.LoginURL("/post_detail/" + out.ID.String())
		}
		return middleware.LoginPath
	default:
		return "/"
	}
}

// follow completes a successful write: the listing cache is cleared, the
// notice is queued and the client is redirected to the outcome's view.
func (h *Blog) follow(w http.ResponseWriter, r *http.Request, out blog.Outcome) {
	if h.pages != nil {
		h.pages.InvalidateAll(r.Context())
	}
	if out.Notice != nil {
		h.notify(w, r, string(out.Notice.Level), out.Notice.Message)
	}
	http.Redirect(w, r, outcomeURL(out), http.StatusSeeOther)
}

func (h *Blog) notify(w http.ResponseWriter, r *http.Request, level, msg string) {
	if h.flash == nil {
		return
	}
	if err := h.flash.AddFlash(r.Context(), w, r, session.Flash{Type: level, Message: msg}); err != nil {
		slog.Warn("flash failed", "error", err)
	}
}

// fail answers a failed operation. Validation errors are handed to
// rerender with their field messages; rerender may be nil when the
// operation has no form.
func (h *Blog) fail(w http.ResponseWriter, r *http.Request, err error, rerender func(fields map[string]string)) {
	var verr *blog.ValidationError
	switch {
	case errors.Is(err, blog.ErrUnauthorized):
		middleware.RedirectToLogin(w, r, h.flash)
	case errors.Is(err, blog.ErrNotFound):
		errorPage(h.renderer, w, r, http.StatusNotFound, "The page you requested does not exist.")
	case errors.Is(err, blog.ErrForbidden):
		errorPage(h.renderer, w, r, http.StatusForbidden, "You can only change your own posts and comments.")
	case errors.As(err, &verr) && rerender != nil:
		rerender(verr.Fields)
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		errorPage(h.renderer, w, r, http.StatusInternalServerError, "Something went wrong. Please try again later.")
	}
}

// errorPage renders the error template with the given status.
func errorPage(rn *render.Renderer, w http.ResponseWriter, r *http.Request, status int, msg string) {
	rn.PageStatus(w, r, status, "error", &render.PageData{
		Title: http.StatusText(status),
		Data:  map[string]any{"Status": status, "Message": msg},
	})
}

// NotFound renders the 404 page for unmatched routes.
func (h *Blog) NotFound(w http.ResponseWriter, r *http.Request) {
	errorPage(h.renderer, w, r, http.StatusNotFound, "The page you requested does not exist.")
}

// cachedPage serves a listing page from the page cache when the visitor is
// anonymous and has no pending notices, filling the cache on a miss.
// Everyone else gets a fresh render.
func (h *Blog) cachedPage(w http.ResponseWriter, r *http.Request, key, name string, load func() (*render.PageData, error)) {
	ctx := r.Context()
	cacheable := h.pages != nil &&
		middleware.UserFromCtx(ctx) == nil &&
		!hasFlashCookie(r)

	if cacheable {
		if cached, ok := h.pages.Get(ctx, key); ok {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Write(cached)
			return
		}
	}

	data, err := load()
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}

	if cacheable {
		rendered, err := h.renderer.Bytes(r, name, data)
		if err == nil {
			h.pages.Set(ctx, key, rendered)
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Write(rendered)
			return
		}
		slog.Warn("cacheable render failed", "template", name, "error", err)
	}

	h.renderer.Page(w, r, name, data)
}

func hasFlashCookie(r *http.Request) bool {
	c, err := r.Cookie(session.FlashCookieName)
	return err == nil && c.Value != ""
}
