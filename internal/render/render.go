// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render provides HTML template rendering for the blog. Every page
// defines a "content" block that the base layout wraps.
package render

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"inkpost/internal/markdown"
	"inkpost/internal/middleware"
	"inkpost/internal/models"
	"inkpost/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// PageData holds all data passed to templates.
type PageData struct {
	Title     string            // Page title for <title> tag
	Section   string            // Active nav section (e.g., "home", "drafts")
	User      *session.Data     // Logged-in user (nil if anonymous)
	CSRFToken string            // CSRF token for forms
	Data      map[string]any    // Page-specific data
	Errors    map[string]string // Field errors of a rejected form
	Flashes   []session.Flash   // One-time notification messages
}

// FlashSource hands out the visitor's pending notices. *session.Store
// implements it.
type FlashSource interface {
	PopFlashes(ctx context.Context, w http.ResponseWriter, r *http.Request) ([]session.Flash, error)
}

// Renderer handles template parsing and execution.
type Renderer struct {
	templates map[string]*template.Template
	flashes   FlashSource
}

var funcMap = template.FuncMap{
	"markdown": markdown.Render,
	"deref": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
	// uuidEq reports whether ptr is set and equal to val.
	"uuidEq": func(ptr *uuid.UUID, val uuid.UUID) bool {
		return ptr != nil && *ptr == val
	},
	"statusLabel": func(s models.PostStatus) string {
		return s.Label()
	},
	"statuses": func() []models.PostStatus {
		return models.PostStatuses
	},
	"date": func(t time.Time) string {
		return t.Format("Jan 2, 2006 15:04")
	},
	"plural": func(n int, word string) string {
		if n == 1 {
			return fmt.Sprintf("%d %s", n, word)
		}
		return fmt.Sprintf("%d %ss", n, word)
	},
	// dict builds a map from alternating keys and values, for passing
	// several values to a partial.
	"dict": func(kv ...any) (map[string]any, error) {
		if len(kv)%2 != 0 {
			return nil, fmt.Errorf("dict: odd number of arguments")
		}
		m := make(map[string]any, len(kv)/2)
		for i := 0; i < len(kv); i += 2 {
			k, ok := kv[i].(string)
			if !ok {
				return nil, fmt.Errorf("dict: key %v is not a string", kv[i])
			}
			m[k] = kv[i+1]
		}
		return m, nil
	},
	"excerpt": func(s string, n int) string {
		r := []rune(strings.TrimSpace(s))
		if len(r) <= n {
			return string(r)
		}
		return strings.TrimSpace(string(r[:n])) + "…"
	},
}

// layoutFiles are parsed into every page rather than being pages themselves.
var layoutFiles = map[string]bool{
	"base.html":     true,
	"partials.html": true,
}

// New parses every page template from the embedded filesystem, each paired
// with the base layout. flashes may be nil, in which case pages show only
// the flashes passed in PageData.
func New(flashes FlashSource) (*Renderer, error) {
	r := &Renderer{
		templates: make(map[string]*template.Template),
		flashes:   flashes,
	}

	entries, err := templateFS.ReadDir("templates")
	if err != nil {
		return nil, fmt.Errorf("read embedded templates: %w", err)
	}

	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || layoutFiles[name] || !strings.HasSuffix(name, ".html") {
			continue
		}

		tmpl, err := template.New("base.html").Funcs(funcMap).ParseFS(
			templateFS, "templates/base.html", "templates/partials.html", "templates/"+name,
		)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}

		r.templates[strings.TrimSuffix(name, ".html")] = tmpl
	}

	return r, nil
}

// Page renders a page with status 200.
func (rn *Renderer) Page(w http.ResponseWriter, r *http.Request, name string, data *PageData) {
	rn.PageStatus(w, r, http.StatusOK, name, data)
}

// PageStatus renders a full page with the given status code. The body is
// buffered so a template error still produces a clean 500.
func (rn *Renderer) PageStatus(w http.ResponseWriter, r *http.Request, status int, name string, data *PageData) {
	if data == nil {
		data = &PageData{}
	}
	rn.prepare(w, r, data)

	var buf bytes.Buffer
	if err := rn.execute(&buf, name, data); err != nil {
		slog.Error("render failed", "template", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

// Bytes renders a full page into memory, for the page cache. It does not
// consume flashes.
func (rn *Renderer) Bytes(r *http.Request, name string, data *PageData) ([]byte, error) {
	if data == nil {
		data = &PageData{}
	}
	identify(r, data)

	var buf bytes.Buffer
	if err := rn.execute(&buf, name, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func identify(r *http.Request, data *PageData) {
	data.CSRFToken = middleware.CSRFTokenFromCtx(r.Context())
	if data.User == nil {
		data.User = middleware.UserFromCtx(r.Context())
	}
}

func (rn *Renderer) prepare(w http.ResponseWriter, r *http.Request, data *PageData) {
	identify(r, data)
	if rn.flashes != nil {
		popped, err := rn.flashes.PopFlashes(r.Context(), w, r)
		if err != nil {
			slog.Warn("pop flashes failed", "error", err)
		}
		data.Flashes = append(data.Flashes, popped...)
	}
}

func (rn *Renderer) execute(w io.Writer, name string, data *PageData) error {
	tmpl, ok := rn.templates[name]
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}
	return tmpl.ExecuteTemplate(w, "base.html", data)
}

// StaticHandler serves the embedded stylesheet and other assets. Mount it
// under /static/.
func StaticHandler() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}
