// store_test.go provides a shared test database helper for all store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store

import (
	"database/sql"
	"os"
	"testing"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"inkpost/internal/database"
	"inkpost/internal/models"
)

// testDSN returns the PostgreSQL connection string for testing.
// Uses environment variables with defaults matching the config package.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "inkpost")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "inkpost")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database and runs migrations.
// If the database is unavailable, the test is skipped. A cleanup
// function is registered to close the connection when the test finishes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("pgx", testDSN())
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	// Downgrade goose global state.
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testUser creates a throwaway user. Deleting it in cleanup cascades to
// everything the test created on its behalf.
func testUser(t *testing.T, db *sql.DB) *models.User {
	t.Helper()
	u, err := NewUserStore(db).Create("store-test-"+uuid.NewString()[:8], "store@test.local", "testpass123")
	if err != nil {
		t.Fatalf("create test user: %v", err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM users WHERE id = $1", u.ID) })
	return u
}

// testCategory creates a throwaway category removed in cleanup.
func testCategory(t *testing.T, db *sql.DB, title string) *models.Category {
	t.Helper()
	c, err := NewCategoryStore(db).Create(title)
	if err != nil {
		t.Fatalf("create test category: %v", err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM categories WHERE id = $1", c.ID) })
	return c
}

// testPost inserts a post for author with the given status.
func testPost(t *testing.T, db *sql.DB, author uuid.UUID, title, body string, status models.PostStatus, category *uuid.UUID) *models.Post {
	t.Helper()
	p, err := NewPostStore(db).Create(&models.Post{
		CategoryID: category,
		AuthorID:   author,
		Title:      title,
		Slug:       "store-test",
		Body:       body,
		Status:     status,
	})
	if err != nil {
		t.Fatalf("create test post: %v", err)
	}
	return p
}

func containsPost(posts []models.Post, id uuid.UUID) bool {
	for _, p := range posts {
		if p.ID == id {
			return true
		}
	}
	return false
}
