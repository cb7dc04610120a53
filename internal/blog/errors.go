// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package blog

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrUnauthorized means the operation needs a logged-in user.
	ErrUnauthorized = errors.New("blog: authentication required")

	// ErrForbidden means the actor is logged in but does not own the entity.
	// Only returned when Options.EnforceOwnership is set.
	ErrForbidden = errors.New("blog: not the owner")

	// ErrNotFound means a referenced entity does not exist or is not
	// visible to the actor.
	ErrNotFound = errors.New("blog: not found")
)

// ValidationError carries per-field messages for a rejected input. Nothing
// has been written when it is returned.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "blog: invalid input (" + strings.Join(parts, "; ") + ")"
}

// add records msg for field unless the field already has a message.
func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

// orNil returns e when it has messages, nil otherwise.
func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}
