// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package blog

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"inkpost/internal/models"
)

// Validation limits.
const (
	MaxTitleLen         = 250
	MaxCategoryTitleLen = 250
	MaxBodyLen          = 100_000
	MaxCommentLen       = 10_000
)

// PostInput is the whitelisted field set for creating or updating a post.
// Values arrive as submitted; Category is a category UUID or empty.
type PostInput struct {
	Category string
	Title    string
	Body     string
	Status   string
}

// postFields is a validated PostInput.
type postFields struct {
	categoryID *uuid.UUID
	title      string
	body       string
	status     models.PostStatus
}

func (s *Service) validatePost(in PostInput) (*postFields, error) {
	verr := &ValidationError{}
	out := &postFields{
		title:  strings.TrimSpace(in.Title),
		body:   in.Body,
		status: models.PostStatus(in.Status),
	}

	switch n := utf8.RuneCountInString(out.title); {
	case n == 0:
		verr.add("title", "This field is required.")
	case n > MaxTitleLen:
		verr.add("title", fmt.Sprintf("Ensure this value has at most %d characters (it has %d).", MaxTitleLen, n))
	}

	switch n := utf8.RuneCountInString(out.body); {
	case strings.TrimSpace(out.body) == "":
		verr.add("body", "This field is required.")
	case n > MaxBodyLen:
		verr.add("body", fmt.Sprintf("Ensure this value has at most %d characters (it has %d).", MaxBodyLen, n))
	}

	if out.status == "" {
		out.status = models.PostStatusDraft
	}
	if !out.status.Valid() {
		verr.add("status", fmt.Sprintf("Select a valid choice. %s is not one of the available choices.", in.Status))
	}

	if raw := strings.TrimSpace(in.Category); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			verr.add("category", "Select a valid choice. That choice is not one of the available choices.")
		} else {
			cat, err := s.categories.FindByID(id)
			if err != nil {
				return nil, err
			}
			if cat == nil {
				verr.add("category", "Select a valid choice. That choice is not one of the available choices.")
			} else {
				out.categoryID = &cat.ID
			}
		}
	}

	if err := verr.orNil(); err != nil {
		return nil, err
	}
	return out, nil
}

// CommentInput is the whitelisted field set for a comment.
type CommentInput struct {
	Body string
}

// ReplyInput is the whitelisted field set for a reply.
type ReplyInput struct {
	Body string
}

// CategoryInput is the whitelisted field set for a category.
type CategoryInput struct {
	Title string
}

// validateText checks a required free-text field against a rune limit.
func validateText(field, value string, max int) error {
	verr := &ValidationError{}
	switch n := utf8.RuneCountInString(value); {
	case strings.TrimSpace(value) == "":
		verr.add(field, "This field is required.")
	case n > max:
		verr.add(field, fmt.Sprintf("Ensure this value has at most %d characters (it has %d).", max, n))
	}
	return verr.orNil()
}
