package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"inkpost/internal/session"
)

// newTestSession creates a session.Data value suitable for testing.
func newTestSession(twoFADone bool) *session.Data {
	return &session.Data{
		UserID:    uuid.New(),
		Username:  "tester",
		Email:     "test@inkpost.local",
		TwoFADone: twoFADone,
	}
}

// ctxWithSession returns a context carrying the given session data using
// the same context key the middleware uses, simulating LoadSession.
func ctxWithSession(ctx context.Context, data *session.Data) context.Context {
	return context.WithValue(ctx, SessionKey, data)
}

// okHandler is a simple handler that records whether it was invoked.
func okHandler() (http.Handler, *bool) {
	var called bool
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})
	return h, &called
}

// recordingFlasher captures flashes instead of writing them to Valkey.
type recordingFlasher struct {
	flashes []session.Flash
	err     error
}

func (f *recordingFlasher) AddFlash(_ context.Context, _ http.ResponseWriter, _ *http.Request, fl session.Flash) error {
	f.flashes = append(f.flashes, fl)
	return f.err
}

// ---------- SessionFromCtx / UserFromCtx ----------

func TestSessionFromCtx(t *testing.T) {
	t.Run("returns session when present", func(t *testing.T) {
		sess := newTestSession(true)
		got := SessionFromCtx(ctxWithSession(context.Background(), sess))
		if got == nil {
			t.Fatal("expected non-nil session, got nil")
		}
		if got.Username != sess.Username {
			t.Errorf("Username: got %q, want %q", got.Username, sess.Username)
		}
	})

	t.Run("returns nil when not present", func(t *testing.T) {
		if got := SessionFromCtx(context.Background()); got != nil {
			t.Errorf("expected nil session, got %+v", got)
		}
	})

	t.Run("returns nil for wrong type in context", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), SessionKey, "not-a-session")
		if got := SessionFromCtx(ctx); got != nil {
			t.Errorf("expected nil for wrong type, got %+v", got)
		}
	})
}

func TestUserFromCtx(t *testing.T) {
	if UserFromCtx(context.Background()) != nil {
		t.Error("anonymous visitor has no user")
	}
	if UserFromCtx(ctxWithSession(context.Background(), newTestSession(false))) != nil {
		t.Error("pending 2FA session must not count as a user")
	}
	if UserFromCtx(ctxWithSession(context.Background(), newTestSession(true))) == nil {
		t.Error("authenticated session should be returned")
	}
}

// ---------- RequireAuth ----------

func TestRequireAuth(t *testing.T) {
	t.Run("anonymous is flashed and sent to login with next", func(t *testing.T) {
		flash := &recordingFlasher{}
		inner, called := okHandler()
		handler := RequireAuth(flash)(inner)

		req := httptest.NewRequest(http.MethodGet, "/drafts?page=2", nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if *called {
			t.Error("next handler should NOT have been called")
		}
		if rr.Code != http.StatusSeeOther {
			t.Errorf("status: got %d, want %d", rr.Code, http.StatusSeeOther)
		}
		want := "/login?next=%2Fdrafts%3Fpage%3D2"
		if loc := rr.Header().Get("Location"); loc != want {
			t.Errorf("redirect location: got %q, want %q", loc, want)
		}
		if len(flash.flashes) != 1 || flash.flashes[0].Message != LoginRequiredMessage {
			t.Errorf("flashes = %+v", flash.flashes)
		}
	})

	t.Run("flash failure still redirects", func(t *testing.T) {
		flash := &recordingFlasher{err: errors.New("valkey down")}
		inner, _ := okHandler()
		handler := RequireAuth(flash)(inner)

		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/create_post", nil))
		if rr.Code != http.StatusSeeOther {
			t.Errorf("status: got %d, want 303", rr.Code)
		}
	})

	t.Run("pending second factor goes to the TOTP form", func(t *testing.T) {
		inner, called := okHandler()
		handler := RequireAuth(nil)(inner)

		req := httptest.NewRequest(http.MethodGet, "/create_post", nil)
		req = req.WithContext(ctxWithSession(req.Context(), newTestSession(false)))
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if *called {
			t.Error("next handler should NOT have been called")
		}
		if loc := rr.Header().Get("Location"); loc != SecondFactorPath {
			t.Errorf("redirect location: got %q, want %q", loc, SecondFactorPath)
		}
	})

	t.Run("passes through when authenticated", func(t *testing.T) {
		inner, called := okHandler()
		handler := RequireAuth(nil)(inner)

		req := httptest.NewRequest(http.MethodGet, "/create_post", nil)
		req = req.WithContext(ctxWithSession(req.Context(), newTestSession(true)))
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if !*called {
			t.Error("next handler should have been called")
		}
		if rr.Code != http.StatusOK {
			t.Errorf("status: got %d, want 200", rr.Code)
		}
	})
}

func TestLoginURL(t *testing.T) {
	tests := []struct {
		next string
		want string
	}{
		{"", "/login"},
		{"/", "/login"},
		{"/drafts", "/login?next=%2Fdrafts"},
		{"/post_detail/abc", "/login?next=%2Fpost_detail%2Fabc"},
	}
	for _, tt := range tests {
		if got := LoginURL(tt.next); got != tt.want {
			t.Errorf("LoginURL(%q) = %q, want %q", tt.next, got, tt.want)
		}
	}
}
