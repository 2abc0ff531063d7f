package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/roach88/nutrilog/internal/meal"
)

// marshalRecord converts a day to JSON TEXT for storage.
// HTML escaping is disabled so image data URIs are stored as given.
func marshalRecord(rec meal.DailyMealData) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(rec); err != nil {
		return "", fmt.Errorf("marshal record: %w", err)
	}
	// Encoder adds a trailing newline, remove it
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// unmarshalRecord parses JSON TEXT back into a day.
func unmarshalRecord(data string) (meal.DailyMealData, error) {
	var rec meal.DailyMealData
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return meal.DailyMealData{}, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	return rec, nil
}
