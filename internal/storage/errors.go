package storage

import (
	"errors"
	"fmt"

	"github.com/roach88/nutrilog/internal/datekey"
)

// Kind categorizes storage failures. The remedy a user is offered depends
// on the kind, so quota exhaustion is kept apart from other save failures.
type Kind string

const (
	// KindNotSupported means the embedded database is unavailable here.
	KindNotSupported Kind = "NOT_SUPPORTED"

	// KindOpenFailed means the database exists but could not be opened.
	KindOpenFailed Kind = "OPEN_FAILED"

	// KindSaveFailed is any write failure other than quota.
	KindSaveFailed Kind = "SAVE_FAILED"

	// KindQuotaExceeded means a write ran out of storage space.
	KindQuotaExceeded Kind = "QUOTA_EXCEEDED"

	// KindLoadFailed is a read failure. Reads still return a default.
	KindLoadFailed Kind = "LOAD_FAILED"

	// KindDeleteFailed is a delete failure.
	KindDeleteFailed Kind = "DELETE_FAILED"
)

// Error is the structured failure handed to the error callback and, for
// saves and deletes, returned to the caller.
type Error struct {
	// Kind identifies the failure category.
	Kind Kind

	// Op is the façade operation that hit the failure.
	Op string

	// Date is the affected day, zero for whole-store operations.
	Date datekey.Key

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Date != (datekey.Key{}) {
		return fmt.Sprintf("%s: %s %s: %v", e.Kind, e.Op, e.Date, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Message is a short user-facing description of the kind.
func (e *Error) Message() string {
	switch e.Kind {
	case KindNotSupported:
		return "Local storage is not available; changes will be lost when the app closes."
	case KindOpenFailed:
		return "Could not open local storage; changes will be lost when the app closes."
	case KindQuotaExceeded:
		return "Storage is full. Remove old photos or days to free space."
	case KindSaveFailed:
		return "Could not save your meals. Please try again."
	case KindLoadFailed:
		return "Could not load saved meals."
	case KindDeleteFailed:
		return "Could not delete the saved day. Please try again."
	default:
		return "Storage error."
	}
}

// ErrorHandler receives every storage failure, including ones the façade
// recovers from by falling back.
type ErrorHandler func(*Error)

// KindOf returns the Kind of a storage error, or "" if err is not one.
// Uses errors.As to handle wrapped errors.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}

// IsQuotaExceeded returns true if err is a quota failure.
func IsQuotaExceeded(err error) bool {
	return KindOf(err) == KindQuotaExceeded
}
