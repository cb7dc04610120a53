// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/base64"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"

	"inkpost/internal/middleware"
	"inkpost/internal/models"
	"inkpost/internal/render"
	"inkpost/internal/session"
	"inkpost/internal/store"
)

// totpIssuer labels the account in authenticator apps.
const totpIssuer = "Inkpost"

// Auth groups all authentication-related HTTP handlers.
type Auth struct {
	renderer  *render.Renderer
	sessions  *session.Store
	userStore *store.UserStore
}

// NewAuth creates a new Auth handler group.
func NewAuth(renderer *render.Renderer, sessions *session.Store, userStore *store.UserStore) *Auth {
	return &Auth{
		renderer:  renderer,
		sessions:  sessions,
		userStore: userStore,
	}
}

func (a *Auth) flash(w http.ResponseWriter, r *http.Request, level, msg string) {
	if err := a.sessions.AddFlash(r.Context(), w, r, session.Flash{Type: level, Message: msg}); err != nil {
		slog.Warn("flash failed", "error", err)
	}
}

func (a *Auth) internalError(w http.ResponseWriter, r *http.Request) {
	errorPage(a.renderer, w, r, http.StatusInternalServerError, "Something went wrong. Please try again later.")
}

// RegisterPage renders the sign-up form.
func (a *Auth) RegisterPage(w http.ResponseWriter, r *http.Request) {
	if middleware.UserFromCtx(r.Context()) != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	a.renderer.Page(w, r, "register", &render.PageData{Title: "Sign up"})
}

// RegisterSubmit creates an account and sends the new user to log in.
func (a *Auth) RegisterSubmit(w http.ResponseWriter, r *http.Request) {
	in := registration{
		Username:  strings.TrimSpace(r.FormValue("username")),
		Email:     strings.TrimSpace(r.FormValue("email")),
		Password1: r.FormValue("password1"),
		Password2: r.FormValue("password2"),
	}

	errs := validateRegistration(in)
	if _, taken := errs["username"]; !taken {
		existing, err := a.userStore.FindByUsername(in.Username)
		if err != nil {
			slog.Error("username lookup failed", "error", err)
			a.internalError(w, r)
			return
		}
		if existing != nil {
			errs["username"] = "A user with that username already exists."
		}
	}

	if len(errs) > 0 {
		a.renderer.PageStatus(w, r, http.StatusUnprocessableEntity, "register", &render.PageData{
			Title:  "Sign up",
			Errors: errs,
			Data:   map[string]any{"Username": in.Username, "Email": in.Email},
		})
		return
	}

	user, err := a.userStore.Create(in.Username, in.Email, in.Password1)
	if err != nil {
		slog.Error("create user failed", "error", err)
		a.internalError(w, r)
		return
	}

	slog.Info("user registered", "user_id", user.ID, "username", user.Username)
	a.flash(w, r, "success", "Your account has been created. You can now log in.")
	http.Redirect(w, r, middleware.LoginPath, http.StatusSeeOther)
}

// LoginPage renders the login form.
func (a *Auth) LoginPage(w http.ResponseWriter, r *http.Request) {
	next := safeNext(r.URL.Query().Get("next"))
	if middleware.UserFromCtx(r.Context()) != nil {
		http.Redirect(w, r, next, http.StatusSeeOther)
		return
	}

	a.renderer.Page(w, r, "login", &render.PageData{
		Title: "Log in",
		Data:  map[string]any{"Next": next},
	})
}

// LoginSubmit checks the credentials and opens a session. Accounts with
// TOTP enabled get a pending session and continue at the second factor.
func (a *Auth) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")
	next := safeNext(r.FormValue("next"))

	user, err := a.userStore.FindByUsername(username)
	if err != nil {
		slog.Error("login lookup failed", "error", err)
		a.internalError(w, r)
		return
	}

	if user == nil || !a.userStore.CheckPassword(user, password) {
		a.renderer.PageStatus(w, r, http.StatusUnauthorized, "login", &render.PageData{
			Title: "Log in",
			Data: map[string]any{
				"Error":    "Please enter a correct username and password. Note that both fields may be case-sensitive.",
				"Next":     next,
				"Username": username,
			},
		})
		return
	}

	// Drop any previous session so its id is not reused after login.
	if err := a.sessions.Destroy(r.Context(), w, r); err != nil {
		slog.Warn("destroy previous session failed", "error", err)
	}

	_, err = a.sessions.Create(r.Context(), w, &session.Data{
		UserID:    user.ID,
		Username:  user.Username,
		Email:     user.Email,
		TwoFADone: !user.Requires2FA(),
	})
	if err != nil {
		slog.Error("session create failed", "error", err)
		a.internalError(w, r)
		return
	}

	if user.Requires2FA() {
		target := middleware.SecondFactorPath
		if next != "/" {
			target += "?next=" + url.QueryEscape(next)
		}
		http.Redirect(w, r, target, http.StatusSeeOther)
		return
	}

	slog.Info("user logged in", "user_id", user.ID)
	http.Redirect(w, r, next, http.StatusSeeOther)
}

// SecondFactorPage renders the TOTP code form for a pending session.
func (a *Auth) SecondFactorPage(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		http.Redirect(w, r, middleware.LoginPath, http.StatusSeeOther)
		return
	}
	next := safeNext(r.URL.Query().Get("next"))
	if sess.Authenticated() {
		http.Redirect(w, r, next, http.StatusSeeOther)
		return
	}

	a.renderer.Page(w, r, "2fa_verify", &render.PageData{
		Title: "Two-factor authentication",
		Data:  map[string]any{"Next": next},
	})
}

// SecondFactorSubmit validates the TOTP code and completes the login.
func (a *Auth) SecondFactorSubmit(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		http.Redirect(w, r, middleware.LoginPath, http.StatusSeeOther)
		return
	}
	next := safeNext(r.FormValue("next"))
	if sess.Authenticated() {
		http.Redirect(w, r, next, http.StatusSeeOther)
		return
	}

	user, err := a.userStore.FindByID(sess.UserID)
	if err != nil {
		slog.Error("user lookup for 2fa failed", "error", err)
		a.internalError(w, r)
		return
	}
	if user == nil {
		a.sessions.Destroy(r.Context(), w, r)
		http.Redirect(w, r, middleware.LoginPath, http.StatusSeeOther)
		return
	}

	if user.Requires2FA() && !totp.Validate(strings.TrimSpace(r.FormValue("code")), *user.TOTPSecret) {
		a.renderer.PageStatus(w, r, http.StatusUnauthorized, "2fa_verify", &render.PageData{
			Title: "Two-factor authentication",
			Data:  map[string]any{"Error": "Invalid code. Please try again.", "Next": next},
		})
		return
	}

	sess.TwoFADone = true
	if err := a.sessions.Update(r.Context(), r, sess); err != nil {
		slog.Error("session update failed", "error", err)
		a.internalError(w, r)
		return
	}

	slog.Info("user logged in", "user_id", user.ID, "second_factor", true)
	http.Redirect(w, r, next, http.StatusSeeOther)
}

// TwoFASetupPage shows the enrolment QR code, generating a fresh secret
// for accounts that have not enabled TOTP yet.
func (a *Auth) TwoFASetupPage(w http.ResponseWriter, r *http.Request) {
	u := middleware.UserFromCtx(r.Context())
	user, err := a.userStore.FindByID(u.UserID)
	if err != nil || user == nil {
		slog.Error("user lookup for 2fa setup failed", "error", err)
		a.internalError(w, r)
		return
	}

	if user.TOTPEnabled {
		a.renderer.Page(w, r, "2fa_setup", &render.PageData{
			Title: "Two-factor authentication",
			Data:  map[string]any{"Enabled": true},
		})
		return
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: user.Username,
	})
	if err != nil {
		slog.Error("totp generate failed", "error", err)
		a.internalError(w, r)
		return
	}

	if err := a.userStore.SetTOTPSecret(user.ID, key.Secret()); err != nil {
		slog.Error("save totp secret failed", "error", err)
		a.internalError(w, r)
		return
	}

	a.renderSetup(w, r, http.StatusOK, key, "")
}

// TwoFASetupSubmit enables TOTP once the user proves the app is set up.
func (a *Auth) TwoFASetupSubmit(w http.ResponseWriter, r *http.Request) {
	u := middleware.UserFromCtx(r.Context())
	user, err := a.userStore.FindByID(u.UserID)
	if err != nil || user == nil {
		slog.Error("user lookup for 2fa setup failed", "error", err)
		a.internalError(w, r)
		return
	}
	if user.TOTPEnabled || user.TOTPSecret == nil {
		http.Redirect(w, r, "/account/2fa", http.StatusSeeOther)
		return
	}

	if !totp.Validate(strings.TrimSpace(r.FormValue("code")), *user.TOTPSecret) {
		key, err := totpKey(user)
		if err != nil {
			slog.Error("rebuild totp key failed", "error", err)
			a.internalError(w, r)
			return
		}
		a.renderSetup(w, r, http.StatusUnprocessableEntity, key, "Invalid code. Please try again.")
		return
	}

	if err := a.userStore.EnableTOTP(user.ID); err != nil {
		slog.Error("enable totp failed", "error", err)
		a.internalError(w, r)
		return
	}

	slog.Info("totp enabled", "user_id", user.ID)
	a.flash(w, r, "success", "Two-factor authentication is now enabled.")
	http.Redirect(w, r, "/account/2fa", http.StatusSeeOther)
}

func (a *Auth) renderSetup(w http.ResponseWriter, r *http.Request, status int, key *otp.Key, errMsg string) {
	png, err := qrcode.Encode(key.URL(), qrcode.Medium, 256)
	if err != nil {
		slog.Error("qr code generation failed", "error", err)
		a.internalError(w, r)
		return
	}

	data := map[string]any{
		"QRCode": base64.StdEncoding.EncodeToString(png),
		"Secret": key.Secret(),
	}
	if errMsg != "" {
		data["Error"] = errMsg
	}
	a.renderer.PageStatus(w, r, status, "2fa_setup", &render.PageData{
		Title: "Set up two-factor authentication",
		Data:  data,
	})
}

// totpKey rebuilds the enrolment key from a user's stored secret.
func totpKey(user *models.User) (*otp.Key, error) {
	return otp.NewKeyFromURL("otpauth://totp/" + url.PathEscape(totpIssuer+":"+user.Username) +
		"?secret=" + url.QueryEscape(*user.TOTPSecret) + "&issuer=" + url.QueryEscape(totpIssuer))
}

// Logout destroys the session and returns to the front page.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.Destroy(r.Context(), w, r); err != nil {
		slog.Warn("session destroy failed", "error", err)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
