package store

import (
	"context"
	"fmt"

	"github.com/roach88/nutrilog/internal/datekey"
	"github.com/roach88/nutrilog/internal/meal"
)

// Put upserts the full record for key in a single transaction. The previous
// record, if any, is replaced wholesale. rec.Date is set to key; the caller
// owns LastModified.
func (s *RecordStore) Put(ctx context.Context, key datekey.Key, rec meal.DailyMealData) error {
	if err := key.Validate(); err != nil {
		return fmt.Errorf("put: %w", err)
	}
	db, err := s.conn()
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}

	rec.Date = key
	data, err := marshalRecord(rec)
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("put %s: begin tx: %w", key, classifyWrite(err))
	}
	defer tx.Rollback() // No-op if committed

	_, err = tx.ExecContext(ctx, `
		INSERT INTO daily_meals (date_key, data, last_modified)
		VALUES (?, ?, ?)
		ON CONFLICT(date_key) DO UPDATE SET
			data = excluded.data,
			last_modified = excluded.last_modified
	`,
		key.String(),
		data,
		rec.LastModified,
	)
	if err != nil {
		return fmt.Errorf("put %s: %w", key, classifyWrite(err))
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("put %s: commit: %w", key, classifyWrite(err))
	}
	return nil
}

// Delete removes the record for key. Deleting a missing key succeeds.
func (s *RecordStore) Delete(ctx context.Context, key datekey.Key) error {
	if err := key.Validate(); err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	db, err := s.conn()
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}

	if _, err := db.ExecContext(ctx, `DELETE FROM daily_meals WHERE date_key = ?`, key.String()); err != nil {
		return fmt.Errorf("delete %s: %w", key, classifyWrite(err))
	}
	return nil
}
