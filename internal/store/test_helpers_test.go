package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/nutrilog/internal/datekey"
	"github.com/roach88/nutrilog/internal/meal"
)

// createTestStore creates a new opened store in a temp directory.
func createTestStore(t *testing.T) *RecordStore {
	t.Helper()
	return createTestStoreWithOptions(t, Options{})
}

func createTestStoreWithOptions(t *testing.T, opts Options) *RecordStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s := NewRecordStore(path, opts)
	if err := s.Open(context.Background()); err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestDay builds a day with one item in breakfast.
func createTestDay(date string, itemID string) meal.DailyMealData {
	meals := meal.Empty()
	meals[meal.Breakfast] = meal.Record{Items: []meal.FoodItem{{
		ID: itemID, Name: "apple",
		Calories: 95, Carbs: 25, Protein: 0.5, Fat: 0.3, Sugar: 19, Sodium: 2,
	}}}
	return meal.DailyMealData{
		Date:         datekey.MustParse(date),
		Meals:        meals,
		LastModified: 1705312800000,
	}
}
