package db

import (
	"database/sql"
	"path/filepath"
	"testing"
)

// NewTestDB creates a fresh in-memory SQLite database with the schema applied.
// It uses a single connection, so it cannot show cross-connection locking.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	return newTestDB(t, ":memory:")
}

// NewTestFileDB creates a WAL database file in a temporary directory. It has
// a connection pool like the production database.
func NewTestFileDB(t *testing.T) *sql.DB {
	t.Helper()
	return newTestDB(t, filepath.Join(t.TempDir(), "gildedrose.sqlite3"))
}

func newTestDB(t *testing.T, path string) *sql.DB {
	t.Helper()

	db, err := Open(path)
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}

	if err := EnsureSchema(db); err != nil {
		db.Close()
		t.Fatalf("creating test database schema: %v", err)
	}

	t.Cleanup(func() { db.Close() })

	return db
}
