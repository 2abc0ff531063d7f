package store

import (
	"context"
	"errors"
	"fmt"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/roach88/nutrilog/internal/datekey"
	"github.com/roach88/nutrilog/internal/meal"
)

// Backend is the capability set shared by the durable and in-memory stores.
type Backend interface {
	// Put replaces the record stored under key.
	Put(ctx context.Context, key datekey.Key, rec meal.DailyMealData) error

	// Get returns the record for key. found is false when nothing is stored.
	Get(ctx context.Context, key datekey.Key) (rec meal.DailyMealData, found bool, err error)

	// Delete removes the record for key. A missing key is not an error.
	Delete(ctx context.Context, key datekey.Key) error

	// ListKeys returns every stored key in ascending order.
	ListKeys(ctx context.Context) ([]datekey.Key, error)

	// ListAll returns every stored record in ascending key order.
	ListAll(ctx context.Context) ([]meal.DailyMealData, error)
}

var (
	// ErrNotSupported means the database cannot be used in this environment.
	ErrNotSupported = errors.New("embedded database not supported")

	// ErrNotOpen is returned by RecordStore operations before a successful Open.
	ErrNotOpen = errors.New("database not open")

	// ErrQuotaExceeded wraps write failures caused by exhausted storage.
	ErrQuotaExceeded = errors.New("storage quota exceeded")

	// ErrCorruptRecord wraps stored rows that cannot be decoded.
	ErrCorruptRecord = errors.New("corrupt stored record")
)

// IsQuotaExceeded reports whether err is, or wraps, a storage-space failure.
func IsQuotaExceeded(err error) bool {
	return errors.Is(err, ErrQuotaExceeded)
}

// classifyWrite tags SQLITE_FULL with ErrQuotaExceeded and leaves every
// other error as it is.
func classifyWrite(err error) error {
	if err == nil {
		return nil
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrFull {
		return fmt.Errorf("%w: %w", ErrQuotaExceeded, err)
	}
	return err
}

// Compile-time assertions
var _ Backend = (*RecordStore)(nil)
var _ Backend = (*MemoryStore)(nil)
