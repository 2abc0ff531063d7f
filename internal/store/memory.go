package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/roach88/nutrilog/internal/datekey"
	"github.com/roach88/nutrilog/internal/meal"
)

// MemoryStore is the fallback Backend: a map from canonical date string to
// record, alive only as long as the process. Records are copied on the way
// in and out so callers cannot alias stored state.
//
// The only errors it returns are for invalid keys.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]meal.DailyMealData
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]meal.DailyMealData)}
}

func (m *MemoryStore) Put(_ context.Context, key datekey.Key, rec meal.DailyMealData) error {
	if err := key.Validate(); err != nil {
		return fmt.Errorf("put: %w", err)
	}
	rec = rec.Clone()
	rec.Date = key

	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[key.String()] = rec
	return nil
}

func (m *MemoryStore) Get(_ context.Context, key datekey.Key) (meal.DailyMealData, bool, error) {
	if err := key.Validate(); err != nil {
		return meal.DailyMealData{}, false, fmt.Errorf("get: %w", err)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[key.String()]
	if !ok {
		return meal.DailyMealData{}, false, nil
	}
	return rec.Clone(), true, nil
}

func (m *MemoryStore) Delete(_ context.Context, key datekey.Key) error {
	if err := key.Validate(); err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, key.String())
	return nil
}

func (m *MemoryStore) ListKeys(_ context.Context) ([]datekey.Key, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]datekey.Key, 0, len(m.records))
	for _, rec := range m.records {
		keys = append(keys, rec.Date)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })
	return keys, nil
}

func (m *MemoryStore) ListAll(_ context.Context) ([]meal.DailyMealData, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	records := make([]meal.DailyMealData, 0, len(m.records))
	for _, rec := range m.records {
		records = append(records, rec.Clone())
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Date.Before(records[j].Date) })
	return records, nil
}

// Len is the number of stored days.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}
