// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler integration
// tests. Tests are skipped when PostgreSQL or Valkey are unavailable.
package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	"inkpost/internal/blog"
	"inkpost/internal/cache"
	"inkpost/internal/database"
	"inkpost/internal/middleware"
	"inkpost/internal/models"
	"inkpost/internal/render"
	"inkpost/internal/session"
	"inkpost/internal/store"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "inkpost")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "inkpost")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testValkeyClient returns a Redis client for handler tests on DB 15.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		// Clean up test session, flash and cache keys.
		for _, pattern := range []string{"session:*", "flash:*", "page:*"} {
			keys, _ := client.Keys(ctx, pattern).Result()
			if len(keys) > 0 {
				client.Del(ctx, keys...)
			}
		}
		client.Close()
	})

	return client
}

// testEnv holds all dependencies for handler integration tests.
type testEnv struct {
	DB        *sql.DB
	Valkey    *redis.Client
	Renderer  *render.Renderer
	Sessions  *session.Store
	UserStore *store.UserStore
	PageCache *cache.PageCache
	Service   *blog.Service
	Blog      *Blog
	Auth      *Auth
}

// newTestEnv creates a complete test environment with all handler dependencies.
func newTestEnv(t *testing.T, opts blog.Options) *testEnv {
	t.Helper()

	db := testDB(t)
	vk := testValkeyClient(t)

	sessions := session.NewStore(vk, false)
	renderer, err := render.New(sessions)
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}

	userStore := store.NewUserStore(db)
	pageCache := cache.NewPageCache(vk, time.Minute)
	svc := blog.New(store.NewPostStore(db), store.NewCommentStore(db), store.NewCategoryStore(db), opts)

	return &testEnv{
		DB:        db,
		Valkey:    vk,
		Renderer:  renderer,
		Sessions:  sessions,
		UserStore: userStore,
		PageCache: pageCache,
		Service:   svc,
		Blog:      NewBlog(renderer, svc, sessions, pageCache),
		Auth:      NewAuth(renderer, sessions, userStore),
	}
}

// createUser inserts a throwaway user removed, with everything it owns,
// in cleanup.
func (e *testEnv) createUser(t *testing.T, password string) *models.User {
	t.Helper()
	u, err := e.UserStore.Create("handler-"+uuid.NewString()[:8], "handler@test.local", password)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	t.Cleanup(func() { e.DB.Exec("DELETE FROM users WHERE id = $1", u.ID) })
	return u
}

// actor returns the blog actor for a user.
func actor(u *models.User) *blog.Actor {
	return &blog.Actor{ID: u.ID, Username: u.Username, Email: u.Email}
}

// ctxWithSession adds session data to a context using the middleware key.
func ctxWithSession(ctx context.Context, data *session.Data) context.Context {
	return context.WithValue(ctx, middleware.SessionKey, data)
}

// userSession builds the session a logged-in user carries.
func userSession(u *models.User, twoFADone bool) *session.Data {
	return &session.Data{
		UserID:    u.ID,
		Username:  u.Username,
		Email:     u.Email,
		TwoFADone: twoFADone,
	}
}

// withChiURLParam adds a chi URL parameter to a request.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// request builds a request, optionally as a logged-in user and with an
// {id} URL parameter. A non-nil form makes it a form POST.
func request(method, target string, form url.Values, sess *session.Data, id string) *http.Request {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if id != "" {
		req = withChiURLParam(req, "id", id)
	}
	if sess != nil {
		req = req.WithContext(ctxWithSession(req.Context(), sess))
	}
	return req
}

// flashesFrom reads the notices queued by a response, using its flash cookie.
func (e *testEnv) flashesFrom(t *testing.T, rec *httptest.ResponseRecorder) []session.Flash {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.FlashCookieName {
			req.AddCookie(c)
		}
	}
	flashes, err := e.Sessions.PopFlashes(context.Background(), nil, req)
	if err != nil {
		t.Fatalf("pop flashes: %v", err)
	}
	return flashes
}
