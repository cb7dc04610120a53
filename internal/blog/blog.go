// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package blog implements the blog's read and write operations on top of
// the stores. Every operation receives the authenticated identity as an
// explicit *Actor (nil for anonymous visitors) and whitelisted input
// structs, and write operations report which view should follow them.
package blog

import (
	"github.com/google/uuid"

	"inkpost/internal/models"
)

// Actor is the authenticated user on whose behalf an operation runs.
type Actor struct {
	ID       uuid.UUID
	Username string
	Email    string
}

// PostRepository is the persistence the blog needs for posts and likes.
// *store.PostStore satisfies it.
type PostRepository interface {
	FindByID(id uuid.UUID) (*models.Post, error)
	ListPublished(search string) ([]models.Post, error)
	ListMostCommented(limit int) ([]models.Post, error)
	ListMostLiked() ([]models.Post, error)
	ListDrafts(authorID uuid.UUID, limit, offset int) ([]models.Post, error)
	CountDrafts(authorID uuid.UUID) (int, error)
	FindDraft(authorID, id uuid.UUID) (*models.Post, error)
	Create(p *models.Post) (*models.Post, error)
	Update(p *models.Post) error
	Delete(id uuid.UUID) error
	ToggleLike(postID, userID uuid.UUID) (bool, error)
	HasLiked(postID, userID uuid.UUID) (bool, error)
}

// CommentRepository is the persistence the blog needs for comments and
// replies. *store.CommentStore satisfies it.
type CommentRepository interface {
	ListByPost(postID uuid.UUID) ([]models.Comment, error)
	FindByID(id uuid.UUID) (*models.Comment, error)
	Create(c *models.Comment) (*models.Comment, error)
	UpdateBody(id uuid.UUID, body string) error
	CreateReply(r *models.Reply) (*models.Reply, error)
}

// CategoryRepository is the persistence the blog needs for categories.
// *store.CategoryStore satisfies it.
type CategoryRepository interface {
	List() ([]models.Category, error)
	FindByID(id uuid.UUID) (*models.Category, error)
	Create(title string) (*models.Category, error)
}

// Options tunes authorization behaviour.
type Options struct {
	// EnforceOwnership restricts post update/delete and comment update to
	// the entity's author. Off by default, which lets any logged-in user
	// edit or delete any post and anyone edit any comment.
	EnforceOwnership bool
}

// Page sizes and limits.
const (
	DraftsPerPage      = 3
	MostCommentedLimit = 5
)

// Service runs blog operations against the repositories.
type Service struct {
	posts      PostRepository
	comments   CommentRepository
	categories CategoryRepository
	opts       Options
}

// New creates a Service.
func New(posts PostRepository, comments CommentRepository, categories CategoryRepository, opts Options) *Service {
	return &Service{
		posts:      posts,
		comments:   comments,
		categories: categories,
		opts:       opts,
	}
}
