// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// PostStatus represents the publishing state of a post. The two-letter
// codes are what gets persisted.
type PostStatus string

const (
	PostStatusDraft     PostStatus = "DF"
	PostStatusPublished PostStatus = "PB"
)

// Label returns the human-readable name of the status.
func (s PostStatus) Label() string {
	switch s {
	case PostStatusDraft:
		return "Draft"
	case PostStatusPublished:
		return "Published"
	}
	return string(s)
}

// Valid reports whether s is one of the known statuses.
func (s PostStatus) Valid() bool {
	return s == PostStatusDraft || s == PostStatusPublished
}

// PostStatuses lists the statuses in display order, for form selects.
var PostStatuses = []PostStatus{PostStatusDraft, PostStatusPublished}

// Post is an authored article. The author reference is mandatory and
// cascades on delete; the category reference is optional and is cleared
// when the category goes away.
type Post struct {
	ID          uuid.UUID  `json:"id"`
	CategoryID  *uuid.UUID `json:"category_id,omitempty"`
	AuthorID    uuid.UUID  `json:"author_id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Body        string     `json:"body"`
	Status      PostStatus `json:"status"`
	PublishedAt time.Time  `json:"published_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Virtual fields populated by store methods.
	CategoryTitle *string `json:"category_title,omitempty"`
	AuthorName    string  `json:"author_name"`
	LikeCount     int     `json:"like_count"`
	CommentCount  int     `json:"comment_count"`
}

// IsPublished returns true if the post is in published status.
func (p *Post) IsPublished() bool {
	return p.Status == PostStatusPublished
}

// IsDraft returns true if the post is still a draft.
func (p *Post) IsDraft() bool {
	return p.Status == PostStatusDraft
}
