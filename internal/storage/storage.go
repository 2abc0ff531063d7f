// Package storage is the single entry point the rest of the app uses to
// read and write meal records.
//
// Storage decides once per session whether records go to the SQLite
// RecordStore or to the in-memory fallback, and enforces two policies:
// a day without real content is deleted rather than saved, and reads never
// fail (they report through the error callback and return an empty default).
package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/roach88/nutrilog/internal/datekey"
	"github.com/roach88/nutrilog/internal/meal"
	"github.com/roach88/nutrilog/internal/store"
)

// Storage routes operations to the active backend.
//
// The switch to the fallback is one-way: once the database is found
// unsupported or fails to open, every later call uses memory for the rest
// of the Storage's life.
//
// Thread-safety: all methods are safe for concurrent use. Overlapping saves
// for the same date are not serialized; the last Put wins.
type Storage struct {
	record   *store.RecordStore
	fallback *store.MemoryStore
	logger   *zap.Logger
	now      func() time.Time

	mu            sync.Mutex
	usingFallback bool
	onError       ErrorHandler
}

// Option configures a Storage.
type Option func(*Storage)

// WithLogger sets the logger. Default: zap.NewNop().
func WithLogger(logger *zap.Logger) Option {
	return func(s *Storage) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock sets the time source used for LastModified. Default: time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Storage) {
		if now != nil {
			s.now = now
		}
	}
}

// WithErrorHandler registers the error callback at construction.
func WithErrorHandler(h ErrorHandler) Option {
	return func(s *Storage) {
		s.onError = h
	}
}

// New creates a Storage over record. A nil record means the embedded
// database is not available in this environment.
func New(record *store.RecordStore, opts ...Option) *Storage {
	s := &Storage{
		record:   record,
		fallback: store.NewMemoryStore(),
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetErrorCallback replaces the error callback. nil disables it.
func (s *Storage) SetErrorCallback(h ErrorHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onError = h
}

// UsingFallback reports whether records are going to memory.
func (s *Storage) UsingFallback() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.usingFallback
}

// Init checks for the database and opens it. Failures are reported through
// the callback and leave Storage on the fallback; Init itself never fails.
func (s *Storage) Init(ctx context.Context) {
	_, _ = s.backend(ctx, "init")
}

// SaveMealRecords stores the meals for date's calendar day.
//
// Meals without real content delete the day instead. Otherwise all seven
// slots are written as one record stamped with the current time. Missing
// slots are stored as empty.
func (s *Storage) SaveMealRecords(ctx context.Context, date time.Time, meals meal.Meals) error {
	key := datekey.FromTime(date)
	if err := meal.Validate(meals); err != nil {
		return s.fail(KindSaveFailed, "save", key, err)
	}
	if !meals.HasContent() {
		return s.DeleteMealRecords(ctx, date)
	}

	rec := meal.DailyMealData{
		Date:         key,
		Meals:        meals.Normalize(),
		LastModified: s.now().UnixMilli(),
	}
	b, err := s.backend(ctx, "save")
	if err != nil {
		return s.fail(KindSaveFailed, "save", key, err)
	}
	if err := b.Put(ctx, key, rec); err != nil {
		kind := KindSaveFailed
		if store.IsQuotaExceeded(err) {
			kind = KindQuotaExceeded
		}
		return s.fail(kind, "save", key, err)
	}
	return nil
}

// LoadMealRecords returns the meals for date's calendar day. A day never
// written, and any read failure, yield all seven slots empty.
func (s *Storage) LoadMealRecords(ctx context.Context, date time.Time) meal.Meals {
	key := datekey.FromTime(date)
	b, err := s.backend(ctx, "load")
	if err != nil {
		s.fail(KindLoadFailed, "load", key, err)
		return meal.Empty()
	}
	rec, found, err := b.Get(ctx, key)
	if err != nil {
		s.fail(KindLoadFailed, "load", key, err)
		return meal.Empty()
	}
	if !found {
		return meal.Empty()
	}
	return rec.Meals.Normalize()
}

// DeleteMealRecords removes date's record. A missing record is not an error.
func (s *Storage) DeleteMealRecords(ctx context.Context, date time.Time) error {
	key := datekey.FromTime(date)
	b, err := s.backend(ctx, "delete")
	if err != nil {
		return s.fail(KindDeleteFailed, "delete", key, err)
	}
	if err := b.Delete(ctx, key); err != nil {
		return s.fail(KindDeleteFailed, "delete", key, err)
	}
	return nil
}

// GetAllDatesWithData returns the dates whose stored record has real
// content. Order is unspecified.
func (s *Storage) GetAllDatesWithData(ctx context.Context) []datekey.Key {
	records := s.listWithContent(ctx, "list dates")
	dates := make([]datekey.Key, 0, len(records))
	for _, rec := range records {
		dates = append(dates, rec.Date)
	}
	return dates
}

// GetAllMealData returns every stored day with real content, ascending by
// date.
func (s *Storage) GetAllMealData(ctx context.Context) []meal.DailyMealData {
	records := s.listWithContent(ctx, "list records")
	for i := range records {
		records[i].Meals = records[i].Meals.Normalize()
	}
	// Zero-padded keys sort lexicographically in date order.
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date.String() < records[j].Date.String()
	})
	return records
}

// StoredDates lists every key the active backend holds, whether or not the
// record has content.
func (s *Storage) StoredDates(ctx context.Context) []datekey.Key {
	b, err := s.backend(ctx, "list keys")
	if err != nil {
		s.fail(KindLoadFailed, "list keys", datekey.Key{}, err)
		return []datekey.Key{}
	}
	keys, err := b.ListKeys(ctx)
	if err != nil {
		s.fail(KindLoadFailed, "list keys", datekey.Key{}, err)
		return []datekey.Key{}
	}
	return keys
}

func (s *Storage) listWithContent(ctx context.Context, op string) []meal.DailyMealData {
	b, err := s.backend(ctx, op)
	if err != nil {
		s.fail(KindLoadFailed, op, datekey.Key{}, err)
		return []meal.DailyMealData{}
	}
	all, err := b.ListAll(ctx)
	if err != nil {
		s.fail(KindLoadFailed, op, datekey.Key{}, err)
		return []meal.DailyMealData{}
	}
	// Empty days are never saved, but filter anyway.
	out := make([]meal.DailyMealData, 0, len(all))
	for _, rec := range all {
		if rec.HasContent() {
			out = append(out, rec)
		}
	}
	return out
}

// backend returns the store to use, opening the database on first use.
//
// An error means this caller stopped waiting for an open still in flight on
// another goroutine. The selector is left alone so the open can still
// succeed; only a failed open moves Storage to the fallback.
func (s *Storage) backend(ctx context.Context, op string) (store.Backend, error) {
	if s.UsingFallback() {
		return s.fallback, nil
	}
	if !s.record.Supported() {
		s.switchToFallback(&Error{Kind: KindNotSupported, Op: op, Err: store.ErrNotSupported})
		return s.fallback, nil
	}
	if err := s.record.Open(ctx); err != nil {
		if s.record.State() != store.StateFailed {
			return nil, err
		}
		s.switchToFallback(&Error{Kind: KindOpenFailed, Op: op, Err: err})
		return s.fallback, nil
	}
	return s.record, nil
}

// switchToFallback flips the selector and reports why. Only the caller that
// flips it reports, so the condition is announced once.
func (s *Storage) switchToFallback(e *Error) {
	s.mu.Lock()
	already := s.usingFallback
	s.usingFallback = true
	s.mu.Unlock()

	if !already {
		s.logger.Warn("falling back to in-memory storage",
			zap.String("kind", string(e.Kind)),
			zap.String("op", e.Op),
			zap.Error(e.Err),
		)
		s.notify(e)
	}
}

func (s *Storage) fail(kind Kind, op string, key datekey.Key, err error) *Error {
	e := &Error{Kind: kind, Op: op, Date: key, Err: err}
	s.logger.Error("storage operation failed",
		zap.String("kind", string(kind)),
		zap.String("op", op),
		zap.Stringer("date", key),
		zap.Error(err),
	)
	s.notify(e)
	return e
}

func (s *Storage) notify(e *Error) {
	s.mu.Lock()
	h := s.onError
	s.mu.Unlock()
	if h != nil {
		h(e)
	}
}
