// Package testutil provides a migrated SQLite database for package tests.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/panel_api/internal/database"
)

// NewDB opens a fresh SQLite file in t.TempDir() and applies every
// migration. The database is closed when the test ends.
func NewDB(t testing.TB) *sqlx.DB {
	t.Helper()

	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "panel.db"))
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}
