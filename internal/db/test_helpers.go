package db

import (
	"path/filepath"
	"testing"
)

// NewTestDB creates a migrated database in a temporary directory.
func NewTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "specid_test.db"))
	if err != nil {
		t.Fatalf("NewDB failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}
