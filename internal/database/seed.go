// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// Seed credentials for the development user.
const (
	seedUsername = "demo"
	seedPassword = "demo1234"
)

// Seed populates the database with initial development data: one user,
// one category, a published post and a draft. It is a no-op when any user
// already exists.
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed begin: %w", err)
	}
	defer tx.Rollback()

	var userID, categoryID string
	if err := tx.QueryRow(`
		INSERT INTO users (username, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id
	`, seedUsername, "demo@inkpost.local", string(hash)).Scan(&userID); err != nil {
		return fmt.Errorf("seed insert user: %w", err)
	}

	if err := tx.QueryRow(`
		INSERT INTO categories (title) VALUES ($1) RETURNING id
	`, "Technology").Scan(&categoryID); err != nil {
		return fmt.Errorf("seed insert category: %w", err)
	}

	posts := []struct {
		title, slug, body, status string
	}{
		{"Welcome to Inkpost", "welcome-to-inkpost", "Your blog is up and running.\n\nEdit or delete this post, then write your own.", "PB"},
		{"Work in progress", "work-in-progress", "Drafts are only visible to their author.", "DF"},
	}
	for _, p := range posts {
		if _, err := tx.Exec(`
			INSERT INTO posts (category_id, author_id, title, slug, body, status)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, categoryID, userID, p.title, p.slug, p.body, p.status); err != nil {
			return fmt.Errorf("seed insert post: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}

	slog.Info("database seeded with demo user",
		"username", seedUsername,
		"password", seedPassword,
	)

	return nil
}
