// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"inkpost/internal/models"
)

// PostStore handles all post-related database operations, including the
// likes association.
type PostStore struct {
	db *sql.DB
}

// NewPostStore creates a new PostStore with the given database connection.
func NewPostStore(db *sql.DB) *PostStore {
	return &PostStore{db: db}
}

// postSelect loads a post together with its virtual fields. Queries append
// their WHERE/ORDER BY clauses to it.
const postSelect = `
	SELECT p.id, p.category_id, p.author_id, p.title, p.slug, p.body, p.status,
	       p.published_at, p.created_at, p.updated_at,
	       c.title, u.username,
	       (SELECT COUNT(DISTINCT pl.user_id) FROM post_likes pl WHERE pl.post_id = p.id) AS like_count,
	       (SELECT COUNT(*) FROM comments cm WHERE cm.post_id = p.id) AS comment_count
	FROM posts p
	JOIN users u ON u.id = p.author_id
	LEFT JOIN categories c ON c.id = p.category_id`

func scanPost(scanner interface{ Scan(...any) error }) (*models.Post, error) {
	p := &models.Post{}
	err := scanner.Scan(
		&p.ID, &p.CategoryID, &p.AuthorID, &p.Title, &p.Slug, &p.Body, &p.Status,
		&p.PublishedAt, &p.CreatedAt, &p.UpdatedAt,
		&p.CategoryTitle, &p.AuthorName, &p.LikeCount, &p.CommentCount,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PostStore) list(op, query string, args ...any) ([]models.Post, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var items []models.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}

// FindByID retrieves a post of any status. Returns nil if not found.
func (s *PostStore) FindByID(id uuid.UUID) (*models.Post, error) {
	p, err := scanPost(s.db.QueryRow(postSelect+` WHERE p.id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by id: %w", err)
	}
	return p, nil
}

// ListPublished returns published posts, newest first. A non-empty search
// term keeps posts whose category title or body contains it, ignoring case.
func (s *PostStore) ListPublished(search string) ([]models.Post, error) {
	if search == "" {
		return s.list("list published posts", postSelect+`
			WHERE p.status = 'PB'
			ORDER BY p.published_at DESC`)
	}

	pattern := "%" + escapeLike(search) + "%"
	return s.list("search published posts", postSelect+`
		WHERE p.status = 'PB'
		  AND (c.title ILIKE $1 ESCAPE '\' OR p.body ILIKE $1 ESCAPE '\')
		ORDER BY p.published_at DESC`, pattern)
}

// ListMostCommented returns up to limit posts of any status ordered by
// their number of comments.
func (s *PostStore) ListMostCommented(limit int) ([]models.Post, error) {
	return s.list("list most commented posts", postSelect+`
		ORDER BY comment_count DESC, p.published_at DESC
		LIMIT $1`, limit)
}

// ListMostLiked returns every post ordered by its number of distinct likers.
func (s *PostStore) ListMostLiked() ([]models.Post, error) {
	return s.list("list most liked posts", postSelect+`
		ORDER BY like_count DESC, p.published_at DESC`)
}

// ListDrafts returns one page of the author's drafts, newest first.
func (s *PostStore) ListDrafts(authorID uuid.UUID, limit, offset int) ([]models.Post, error) {
	return s.list("list drafts", postSelect+`
		WHERE p.author_id = $1 AND p.status = 'DF'
		ORDER BY p.published_at DESC
		LIMIT $2 OFFSET $3`, authorID, limit, offset)
}

// CountDrafts returns how many drafts the author has.
func (s *PostStore) CountDrafts(authorID uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM posts WHERE author_id = $1 AND status = 'DF'
	`, authorID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count drafts: %w", err)
	}
	return count, nil
}

// FindDraft retrieves a post only if it is a draft owned by authorID.
// Returns nil otherwise.
func (s *PostStore) FindDraft(authorID, id uuid.UUID) (*models.Post, error) {
	p, err := scanPost(s.db.QueryRow(postSelect+`
		WHERE p.id = $1 AND p.author_id = $2 AND p.status = 'DF'`, id, authorID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find draft: %w", err)
	}
	return p, nil
}

// Create inserts a new post. A zero PublishedAt defaults to the insertion
// time.
func (s *PostStore) Create(p *models.Post) (*models.Post, error) {
	var publishedAt *time.Time
	if !p.PublishedAt.IsZero() {
		publishedAt = &p.PublishedAt
	}

	var id uuid.UUID
	err := s.db.QueryRow(`
		INSERT INTO posts (category_id, author_id, title, slug, body, status, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, COALESCE($7, NOW()))
		RETURNING id
	`, p.CategoryID, p.AuthorID, p.Title, p.Slug, p.Body, p.Status, publishedAt).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return s.FindByID(id)
}

// Update modifies the editable fields of a post and refreshes updated_at.
func (s *PostStore) Update(p *models.Post) error {
	_, err := s.db.Exec(`
		UPDATE posts SET
			category_id = $1, title = $2, slug = $3, body = $4, status = $5,
			updated_at = NOW()
		WHERE id = $6
	`, p.CategoryID, p.Title, p.Slug, p.Body, p.Status, p.ID)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	return nil
}

// Delete removes a post by ID. Comments, their replies and likes are
// removed by ON DELETE CASCADE.
func (s *PostStore) Delete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}

// ToggleLike flips the like of userID on postID inside one transaction and
// reports whether the post is liked afterwards. Toggles of the same pair are
// serialized with a transaction-scoped advisory lock.
func (s *PostStore) ToggleLike(postID, userID uuid.UUID) (bool, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	// Concurrent toggles of the same pair queue here until the holder
	// commits, so each one sees the previous one's result.
	if _, err := tx.Exec(
		`SELECT pg_advisory_xact_lock(hashtextextended($1::text || ':' || $2::text, 0))`,
		postID, userID,
	); err != nil {
		return false, fmt.Errorf("lock like: %w", err)
	}

	res, err := tx.Exec(`DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2`, postID, userID)
	if err != nil {
		return false, fmt.Errorf("unlike post: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("unlike post: %w", err)
	}

	liked := removed == 0
	if liked {
		if _, err := tx.Exec(`
			INSERT INTO post_likes (post_id, user_id) VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, postID, userID); err != nil {
			return false, fmt.Errorf("like post: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit like: %w", err)
	}
	return liked, nil
}

// HasLiked reports whether userID currently likes postID.
func (s *PostStore) HasLiked(postID, userID uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.QueryRow(`
		SELECT EXISTS (SELECT 1 FROM post_likes WHERE post_id = $1 AND user_id = $2)
	`, postID, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("has liked: %w", err)
	}
	return exists, nil
}

// likeEscaper escapes the LIKE metacharacters so a search term matches
// literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
