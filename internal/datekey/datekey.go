// Package datekey converts calendar dates to and from the canonical
// "YYYY-MM-DD" string used as the storage key for a day's meal records.
//
// A Key carries no time-of-day and no zone. Two keys produce the same
// canonical string iff they name the same calendar date.
package datekey

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalid is returned when a string or triple does not name a calendar date.
var ErrInvalid = errors.New("invalid date key")

// Layout is the canonical key format.
const Layout = "2006-01-02"

// Key identifies one calendar day.
type Key struct {
	Year  int `json:"year" yaml:"year"`
	Month int `json:"month" yaml:"month"`
	Day   int `json:"day" yaml:"day"`
}

// New returns the key for year, month, day after checking it is a real date.
func New(year, month, day int) (Key, error) {
	k := Key{Year: year, Month: month, Day: day}
	if err := k.Validate(); err != nil {
		return Key{}, err
	}
	return k, nil
}

// FromTime extracts the calendar date of t in t's own location.
// Callers pass local times; no zone conversion happens here.
func FromTime(t time.Time) Key {
	y, m, d := t.Date()
	return Key{Year: y, Month: int(m), Day: d}
}

// Time returns midnight of the key's date in the local zone.
func (k Key) Time() time.Time {
	return time.Date(k.Year, time.Month(k.Month), k.Day, 0, 0, 0, 0, time.Local)
}

// String returns the canonical form with a four-digit year and zero-padded
// month and day.
func (k Key) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", k.Year, k.Month, k.Day)
}

// Validate reports whether k names a date the canonical format can carry.
func (k Key) Validate() error {
	if k.Year < 1 || k.Year > 9999 {
		return fmt.Errorf("%w: year %d out of range", ErrInvalid, k.Year)
	}
	if k.Month < 1 || k.Month > 12 {
		return fmt.Errorf("%w: month %d out of range", ErrInvalid, k.Month)
	}
	if k.Day < 1 || k.Day > daysIn(k.Year, k.Month) {
		return fmt.Errorf("%w: day %d out of range for %04d-%02d", ErrInvalid, k.Day, k.Year, k.Month)
	}
	return nil
}

// Before orders keys chronologically.
func (k Key) Before(other Key) bool {
	return k.String() < other.String()
}

// Parse reads a key in the canonical Layout. Other spellings of a date,
// such as unpadded or signed parts, are rejected.
func Parse(s string) (Key, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return Key{}, fmt.Errorf("%w: %q: %v", ErrInvalid, s, err)
	}
	return New(t.Year(), int(t.Month()), t.Day())
}

// MustParse is Parse for constants in tests and fixtures.
func MustParse(s string) Key {
	k, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return k
}

func daysIn(year, month int) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
