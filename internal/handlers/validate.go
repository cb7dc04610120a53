// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Validation limits for account fields.
const (
	maxUsernameLen = 150
	maxEmailLen    = 254
	minPasswordLen = 8
	// maxPasswordBytes is the most bcrypt will hash.
	maxPasswordBytes = 72
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9@.+_-]+$`)

// registration is the submitted sign-up form.
type registration struct {
	Username  string
	Email     string
	Password1 string
	Password2 string
}

// validateRegistration checks a sign-up form and returns field messages
// keyed by form field name. An empty map means the form is valid.
func validateRegistration(in registration) map[string]string {
	errs := make(map[string]string)

	username := strings.TrimSpace(in.Username)
	switch {
	case username == "":
		errs["username"] = "This field is required."
	case utf8.RuneCountInString(username) > maxUsernameLen:
		errs["username"] = "Ensure this value has at most 150 characters."
	case !usernamePattern.MatchString(username):
		errs["username"] = "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	}

	if email := strings.TrimSpace(in.Email); email != "" {
		addr, err := mail.ParseAddress(email)
		switch {
		case err != nil || addr.Address != email:
			errs["email"] = "Enter a valid email address."
		case len(email) > maxEmailLen:
			errs["email"] = "Ensure this value has at most 254 characters."
		}
	}

	switch {
	case in.Password1 == "":
		errs["password1"] = "This field is required."
	case utf8.RuneCountInString(in.Password1) < minPasswordLen:
		errs["password1"] = "This password is too short. It must contain at least 8 characters."
	case len(in.Password1) > maxPasswordBytes:
		errs["password1"] = "This password is too long. It must be at most 72 bytes."
	}

	switch {
	case in.Password2 == "":
		errs["password2"] = "This field is required."
	case in.Password1 != in.Password2:
		errs["password2"] = "The two password fields didn't match."
	}

	return errs
}

// safeNext returns next when it is a local path, "/" otherwise, so the
// login redirect cannot be pointed at another site.
func safeNext(next string) string {
	if next == "" || next[0] != '/' {
		return "/"
	}
	if strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	if strings.ContainsAny(next, "\r\n") {
		return "/"
	}
	return next
}
