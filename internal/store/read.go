package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/nutrilog/internal/datekey"
	"github.com/roach88/nutrilog/internal/meal"
)

// Get reads the record stored under key. A missing record returns
// found=false and a nil error.
func (s *RecordStore) Get(ctx context.Context, key datekey.Key) (meal.DailyMealData, bool, error) {
	if err := key.Validate(); err != nil {
		return meal.DailyMealData{}, false, fmt.Errorf("get: %w", err)
	}
	db, err := s.conn()
	if err != nil {
		return meal.DailyMealData{}, false, fmt.Errorf("get %s: %w", key, err)
	}

	var data string
	err = db.QueryRowContext(ctx, `
		SELECT data FROM daily_meals WHERE date_key = ?
	`, key.String()).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return meal.DailyMealData{}, false, nil
	}
	if err != nil {
		return meal.DailyMealData{}, false, fmt.Errorf("get %s: %w", key, err)
	}

	rec, err := unmarshalRecord(data)
	if err != nil {
		return meal.DailyMealData{}, false, fmt.Errorf("get %s: %w", key, err)
	}
	return rec, true, nil
}

// ListKeys returns every stored date, ascending.
// Keys sort chronologically because the canonical form is zero-padded.
func (s *RecordStore) ListKeys(ctx context.Context) ([]datekey.Key, error) {
	db, err := s.conn()
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}

	rows, err := db.QueryContext(ctx, `
		SELECT date_key FROM daily_meals
		ORDER BY date_key COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	defer rows.Close()

	keys := []datekey.Key{}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("list keys: scan: %w", err)
		}
		key, err := datekey.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("list keys: %w: %v", ErrCorruptRecord, err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list keys: iterate: %w", err)
	}
	return keys, nil
}

// ListAll returns every stored record, ascending by date.
func (s *RecordStore) ListAll(ctx context.Context) ([]meal.DailyMealData, error) {
	db, err := s.conn()
	if err != nil {
		return nil, fmt.Errorf("list all: %w", err)
	}

	rows, err := db.QueryContext(ctx, `
		SELECT data FROM daily_meals
		ORDER BY date_key COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list all: %w", err)
	}
	defer rows.Close()

	records := []meal.DailyMealData{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("list all: scan: %w", err)
		}
		rec, err := unmarshalRecord(data)
		if err != nil {
			return nil, fmt.Errorf("list all: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list all: iterate: %w", err)
	}
	return records, nil
}
