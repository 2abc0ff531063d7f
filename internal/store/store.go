package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"slices"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - Empty database (never opened by this package)
// 1 - daily_meals table keyed by canonical date
const currentSchemaVersion = 1

const driverName = "sqlite3"

// DefaultBusyTimeout is how long a statement waits on a locked database.
const DefaultBusyTimeout = 5 * time.Second

// State is the connection lifecycle of a RecordStore.
type State int

const (
	StateUnopened State = iota
	StateOpening
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUnopened:
		return "unopened"
	case StateOpening:
		return "opening"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Options tunes the SQLite connection.
type Options struct {
	// BusyTimeout defaults to DefaultBusyTimeout when zero.
	BusyTimeout time.Duration

	// MaxPageCount caps the database size in pages. Zero leaves SQLite's
	// default. Writes beyond the cap fail with ErrQuotaExceeded.
	MaxPageCount int
}

// RecordStore is the durable Backend. One RecordStore owns one database
// file and at most one open connection pool for its lifetime.
//
// Thread-safety: all methods are safe for concurrent use.
type RecordStore struct {
	path string
	opts Options

	mu      sync.Mutex
	state   State
	done    chan struct{} // closed when the in-flight open finishes
	openErr error
	db      *sql.DB
}

// NewRecordStore returns an unopened store for the database at path.
func NewRecordStore(path string, opts Options) *RecordStore {
	if opts.BusyTimeout <= 0 {
		opts.BusyTimeout = DefaultBusyTimeout
	}
	return &RecordStore{path: path, opts: opts}
}

// Path is the database file location.
func (s *RecordStore) Path() string {
	return s.path
}

// Supported reports whether the database can be used at all: a path is
// configured and the sqlite3 driver is linked in.
func (s *RecordStore) Supported() bool {
	if s == nil || s.path == "" {
		return false
	}
	return slices.Contains(sql.Drivers(), driverName)
}

// State returns the current lifecycle state.
func (s *RecordStore) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Open connects to the database, applying pragmas and the schema upgrade.
//
// Open is idempotent: once Ready it returns nil immediately, once Failed it
// returns the same error without retrying. Callers arriving while another
// goroutine is opening wait for that attempt and share its outcome.
func (s *RecordStore) Open(ctx context.Context) error {
	s.mu.Lock()
	switch s.state {
	case StateReady:
		s.mu.Unlock()
		return nil
	case StateFailed:
		err := s.openErr
		s.mu.Unlock()
		return err
	case StateOpening:
		done := s.done
		s.mu.Unlock()
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.openErr
	}
	s.state = StateOpening
	s.done = make(chan struct{})
	s.mu.Unlock()

	var db *sql.DB
	err := ErrNotSupported
	if s.Supported() {
		db, err = openDatabase(ctx, s.path, s.opts)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = StateFailed
		s.openErr = fmt.Errorf("open %s: %w", s.path, err)
	} else {
		s.state = StateReady
		s.db = db
	}
	close(s.done)
	return s.openErr
}

// Close closes the connection pool and returns the store to Unopened.
// Closing an unopened store is a no-op.
func (s *RecordStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	s.state = StateUnopened
	s.openErr = nil
	return err
}

// DB returns the underlying sql.DB, or nil before Open succeeds.
// Use with caution - prefer using RecordStore methods when available.
func (s *RecordStore) DB() *sql.DB {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db
}

func (s *RecordStore) conn() (*sql.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateReady || s.db == nil {
		return nil, ErrNotOpen
	}
	return s.db, nil
}

// openDatabase creates or opens the SQLite file and brings its schema up to
// currentSchemaVersion.
func openDatabase(ctx context.Context, path string, opts Options) (*sql.DB, error) {
	// Open database (creates file if doesn't exist)
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Verify connection works
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time. A single connection also
	// keeps per-connection pragmas such as max_page_count in force.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(ctx, db, opts); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := upgradeSchema(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to upgrade schema: %w", err)
	}

	if opts.MaxPageCount > 0 {
		pragma := fmt.Sprintf("PRAGMA max_page_count = %d", opts.MaxPageCount)
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return db, nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(ctx context.Context, db *sql.DB, opts Options) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		fmt.Sprintf("PRAGMA busy_timeout = %d", opts.BusyTimeout.Milliseconds()),
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// upgradeSchema is the single upgrade hook. It runs in one transaction so a
// failed upgrade leaves user_version untouched.
func upgradeSchema(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	var version int
	if err := tx.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	if version > currentSchemaVersion {
		return fmt.Errorf("schema version %d is newer than supported version %d", version, currentSchemaVersion)
	}
	if version == currentSchemaVersion {
		return nil
	}

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// schemaVersion reads PRAGMA user_version.
// Used for testing.
func (s *RecordStore) schemaVersion() (int, error) {
	db, err := s.conn()
	if err != nil {
		return 0, err
	}
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("get user_version: %w", err)
	}
	return version, nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *RecordStore) verifyPragma(name, expected string) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
