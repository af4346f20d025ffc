package storage

import (
	"path/filepath"
	"testing"

	"github.com/jonboulle/clockwork"
)

// openTestDB creates a migrated temporary database file and returns it
// with its path, so tests can close and reopen it.
func openTestDB(t *testing.T) (*DB, string) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")

	config := DefaultConfig(dbPath)
	config.AutoMigrate = true

	db, err := Open(config)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Close()
	})

	return db, dbPath
}

// setupTestService creates a service over a migrated temporary database.
func setupTestService(t *testing.T) *Service {
	t.Helper()

	db, _ := openTestDB(t)
	return NewService(db)
}

// setupTestServiceWithClock is setupTestService with a pinned clock.
func setupTestServiceWithClock(t *testing.T, clock clockwork.Clock) *Service {
	t.Helper()

	db, _ := openTestDB(t)
	return NewServiceWithClock(db, clock)
}
