// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"inkpost/internal/models"
)

// CommentStore handles comments and their replies.
type CommentStore struct {
	db *sql.DB
}

// NewCommentStore creates a new CommentStore with the given database connection.
func NewCommentStore(db *sql.DB) *CommentStore {
	return &CommentStore{db: db}
}

const commentSelect = `
	SELECT cm.id, cm.post_id, cm.author_id, cm.body, cm.email, cm.active,
	       cm.created_at, cm.updated_at, u.username
	FROM comments cm
	JOIN users u ON u.id = cm.author_id`

func scanComment(scanner interface{ Scan(...any) error }) (*models.Comment, error) {
	c := &models.Comment{}
	err := scanner.Scan(
		&c.ID, &c.PostID, &c.AuthorID, &c.Body, &c.Email, &c.Active,
		&c.CreatedAt, &c.UpdatedAt, &c.AuthorName,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ListByPost returns every comment on a post, newest first, each with its
// replies attached. The active flag is not consulted.
func (s *CommentStore) ListByPost(postID uuid.UUID) ([]models.Comment, error) {
	rows, err := s.db.Query(commentSelect+`
		WHERE cm.post_id = $1
		ORDER BY cm.created_at DESC`, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var items []models.Comment
	index := make(map[uuid.UUID]int)
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		index[c.ID] = len(items)
		items = append(items, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return items, nil
	}

	replies, err := s.listRepliesByPost(postID)
	if err != nil {
		return nil, err
	}
	for _, r := range replies {
		if i, ok := index[r.CommentID]; ok {
			items[i].Replies = append(items[i].Replies, r)
		}
	}
	return items, nil
}

// FindByID retrieves a comment by ID. Returns nil if not found.
func (s *CommentStore) FindByID(id uuid.UUID) (*models.Comment, error) {
	c, err := scanComment(s.db.QueryRow(commentSelect+` WHERE cm.id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find comment by id: %w", err)
	}
	return c, nil
}

// Create inserts a new comment and returns it.
func (s *CommentStore) Create(c *models.Comment) (*models.Comment, error) {
	var id uuid.UUID
	err := s.db.QueryRow(`
		INSERT INTO comments (post_id, author_id, body, email)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, c.PostID, c.AuthorID, c.Body, c.Email).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return s.FindByID(id)
}

// UpdateBody replaces the comment body and refreshes updated_at.
func (s *CommentStore) UpdateBody(id uuid.UUID, body string) error {
	_, err := s.db.Exec(`
		UPDATE comments SET body = $1, updated_at = NOW() WHERE id = $2
	`, body, id)
	if err != nil {
		return fmt.Errorf("update comment: %w", err)
	}
	return nil
}

// Delete removes a comment and, by cascade, its replies.
func (s *CommentStore) Delete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return nil
}

const replySelect = `
	SELECT r.id, r.comment_id, r.author_id, r.body, r.created_at, r.updated_at, u.username
	FROM replies r
	JOIN users u ON u.id = r.author_id`

func (s *CommentStore) listReplies(op, query string, args ...any) ([]models.Reply, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var items []models.Reply
	for rows.Next() {
		var r models.Reply
		if err := rows.Scan(
			&r.ID, &r.CommentID, &r.AuthorID, &r.Body, &r.CreatedAt, &r.UpdatedAt, &r.AuthorName,
		); err != nil {
			return nil, fmt.Errorf("scan reply: %w", err)
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

func (s *CommentStore) listRepliesByPost(postID uuid.UUID) ([]models.Reply, error) {
	return s.listReplies("list replies by post", replySelect+`
		JOIN comments cm ON cm.id = r.comment_id
		WHERE cm.post_id = $1
		ORDER BY r.created_at`, postID)
}

// ListReplies returns the replies to one comment, oldest first.
func (s *CommentStore) ListReplies(commentID uuid.UUID) ([]models.Reply, error) {
	return s.listReplies("list replies", replySelect+`
		WHERE r.comment_id = $1
		ORDER BY r.created_at`, commentID)
}

// CreateReply inserts a reply to a comment.
func (s *CommentStore) CreateReply(r *models.Reply) (*models.Reply, error) {
	result := &models.Reply{}
	err := s.db.QueryRow(`
		INSERT INTO replies (comment_id, author_id, body)
		VALUES ($1, $2, $3)
		RETURNING id, comment_id, author_id, body, created_at, updated_at
	`, r.CommentID, r.AuthorID, r.Body).Scan(
		&result.ID, &result.CommentID, &result.AuthorID, &result.Body,
		&result.CreatedAt, &result.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create reply: %w", err)
	}
	return result, nil
}
