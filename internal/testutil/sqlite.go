package testutil

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// LockDatabase creates the SQLite file at path and holds an exclusive lock
// on it until release is called, so another connection opening the file
// blocks in its busy handler. release is idempotent and runs at cleanup.
func LockDatabase(t *testing.T, path string) (release func()) {
	t.Helper()
	ctx := context.Background()

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	conn, err := db.Conn(ctx)
	if err != nil {
		db.Close()
		t.Fatalf("conn %s: %v", path, err)
	}
	for _, stmt := range []string{
		"CREATE TABLE IF NOT EXISTS lock_holder (id INTEGER)",
		"BEGIN EXCLUSIVE",
	} {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			conn.Close()
			db.Close()
			t.Fatalf("%s: %v", stmt, err)
		}
	}

	var once sync.Once
	release = func() {
		once.Do(func() {
			_, _ = conn.ExecContext(ctx, "ROLLBACK")
			conn.Close()
			db.Close()
		})
	}
	t.Cleanup(release)
	return release
}
