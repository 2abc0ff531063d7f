package store

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/roach88/nutrilog/internal/datekey"
	"github.com/roach88/nutrilog/internal/meal"
)

// backends runs fn against a fresh RecordStore and a fresh MemoryStore.
func backends(t *testing.T, fn func(t *testing.T, b Backend)) {
	t.Run("sqlite", func(t *testing.T) { fn(t, createTestStore(t)) })
	t.Run("memory", func(t *testing.T) { fn(t, NewMemoryStore()) })
}

func TestBackend_PutGetRoundTrip(t *testing.T) {
	backends(t, func(t *testing.T, b Backend) {
		ctx := context.Background()
		day := createTestDay("2024-01-15", "1")
		day.Meals[meal.Dinner] = meal.Record{
			Items: []meal.FoodItem{{ID: "2", Name: "soup <hot> & salty", Calories: 0.1 + 0.2, Sodium: 1234.5678}},
			Image: "data:image/jpeg;base64,/9j/4AAQSkZJRg+/==",
		}

		if err := b.Put(ctx, day.Date, day); err != nil {
			t.Fatalf("Put() failed: %v", err)
		}
		got, found, err := b.Get(ctx, day.Date)
		if err != nil {
			t.Fatalf("Get() failed: %v", err)
		}
		if !found {
			t.Fatal("Get() found = false after Put")
		}
		if !reflect.DeepEqual(got, day) {
			t.Errorf("Get() = %+v, want %+v", got, day)
		}
	})
}

func TestBackend_GetMissing(t *testing.T) {
	backends(t, func(t *testing.T, b Backend) {
		_, found, err := b.Get(context.Background(), datekey.MustParse("2024-01-16"))
		if err != nil {
			t.Fatalf("Get() failed: %v", err)
		}
		if found {
			t.Error("Get() found = true for a date never written")
		}
	})
}

func TestBackend_PutReplacesWholeRecord(t *testing.T) {
	backends(t, func(t *testing.T, b Backend) {
		ctx := context.Background()
		first := createTestDay("2024-01-15", "1")
		first.Meals[meal.Lunch] = meal.Record{Items: []meal.FoodItem{{ID: "l", Name: "salad"}}}
		if err := b.Put(ctx, first.Date, first); err != nil {
			t.Fatal(err)
		}

		second := createTestDay("2024-01-15", "9")
		second.LastModified = first.LastModified + 1000
		if err := b.Put(ctx, second.Date, second); err != nil {
			t.Fatal(err)
		}

		got, _, err := b.Get(ctx, first.Date)
		if err != nil {
			t.Fatal(err)
		}
		if len(got.Meals[meal.Lunch].Items) != 0 {
			t.Errorf("lunch was merged from the old record: %+v", got.Meals[meal.Lunch])
		}
		if got.Meals[meal.Breakfast].Items[0].ID != "9" {
			t.Errorf("breakfast id = %q, want %q", got.Meals[meal.Breakfast].Items[0].ID, "9")
		}
		if got.LastModified != second.LastModified {
			t.Errorf("LastModified = %d, want %d", got.LastModified, second.LastModified)
		}
	})
}

func TestBackend_PutStoresUnderGivenKey(t *testing.T) {
	backends(t, func(t *testing.T, b Backend) {
		ctx := context.Background()
		day := createTestDay("2024-01-15", "1")
		key := datekey.MustParse("2024-03-01")
		if err := b.Put(ctx, key, day); err != nil {
			t.Fatal(err)
		}
		got, found, err := b.Get(ctx, key)
		if err != nil || !found {
			t.Fatalf("Get() = found %v, err %v", found, err)
		}
		if got.Date != key {
			t.Errorf("Date = %v, want %v", got.Date, key)
		}
	})
}

func TestBackend_Delete(t *testing.T) {
	backends(t, func(t *testing.T, b Backend) {
		ctx := context.Background()
		day := createTestDay("2024-01-15", "1")
		if err := b.Put(ctx, day.Date, day); err != nil {
			t.Fatal(err)
		}
		if err := b.Delete(ctx, day.Date); err != nil {
			t.Fatalf("Delete() failed: %v", err)
		}
		if _, found, _ := b.Get(ctx, day.Date); found {
			t.Error("record still present after Delete")
		}
		// Deleting again is fine.
		if err := b.Delete(ctx, day.Date); err != nil {
			t.Errorf("second Delete() failed: %v", err)
		}
	})
}

func TestBackend_ListKeysAndAllSorted(t *testing.T) {
	backends(t, func(t *testing.T, b Backend) {
		ctx := context.Background()
		for i, date := range []string{"2024-02-01", "2023-12-31", "2024-01-15", "2024-01-09"} {
			day := createTestDay(date, string(rune('a'+i)))
			if err := b.Put(ctx, day.Date, day); err != nil {
				t.Fatal(err)
			}
		}
		want := []string{"2023-12-31", "2024-01-09", "2024-01-15", "2024-02-01"}

		keys, err := b.ListKeys(ctx)
		if err != nil {
			t.Fatalf("ListKeys() failed: %v", err)
		}
		if got := keyStrings(keys); !reflect.DeepEqual(got, want) {
			t.Errorf("ListKeys() = %v, want %v", got, want)
		}

		all, err := b.ListAll(ctx)
		if err != nil {
			t.Fatalf("ListAll() failed: %v", err)
		}
		var got []string
		for _, rec := range all {
			got = append(got, rec.Date.String())
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("ListAll() dates = %v, want %v", got, want)
		}
	})
}

func TestBackend_EmptyListsAreNotNil(t *testing.T) {
	backends(t, func(t *testing.T, b Backend) {
		ctx := context.Background()
		keys, err := b.ListKeys(ctx)
		if err != nil || keys == nil || len(keys) != 0 {
			t.Errorf("ListKeys() = %v, %v; want empty slice", keys, err)
		}
		all, err := b.ListAll(ctx)
		if err != nil || all == nil || len(all) != 0 {
			t.Errorf("ListAll() = %v, %v; want empty slice", all, err)
		}
	})
}

func TestBackend_InvalidKey(t *testing.T) {
	backends(t, func(t *testing.T, b Backend) {
		ctx := context.Background()
		bad := datekey.Key{Year: 2023, Month: 2, Day: 29}
		if err := b.Put(ctx, bad, meal.DailyMealData{}); !errors.Is(err, datekey.ErrInvalid) {
			t.Errorf("Put() = %v, want ErrInvalid", err)
		}
		if _, _, err := b.Get(ctx, bad); !errors.Is(err, datekey.ErrInvalid) {
			t.Errorf("Get() = %v, want ErrInvalid", err)
		}
		if err := b.Delete(ctx, bad); !errors.Is(err, datekey.ErrInvalid) {
			t.Errorf("Delete() = %v, want ErrInvalid", err)
		}
	})
}

func TestRecordStore_QuotaExceeded(t *testing.T) {
	s := createTestStoreWithOptions(t, Options{MaxPageCount: 1})
	ctx := context.Background()

	small := createTestDay("2024-01-15", "1")
	if err := s.Put(ctx, small.Date, small); err != nil {
		t.Fatalf("small Put() failed: %v", err)
	}

	big := createTestDay("2024-01-16", "2")
	big.Meals[meal.Dinner] = meal.Record{
		Items: []meal.FoodItem{},
		Image: "data:image/jpeg;base64," + strings.Repeat("A", 64*1024),
	}
	err := s.Put(ctx, big.Date, big)
	if err == nil {
		t.Fatal("expected Put() to exceed the page cap")
	}
	if !IsQuotaExceeded(err) {
		t.Errorf("Put() = %v, want ErrQuotaExceeded", err)
	}

	// The failed write leaves earlier data intact.
	if _, found, err := s.Get(ctx, small.Date); err != nil || !found {
		t.Errorf("Get() after failed Put = found %v, err %v", found, err)
	}
	if _, found, _ := s.Get(ctx, big.Date); found {
		t.Error("partially written record is visible")
	}
}

func TestRecordStore_GenericWriteErrorIsNotQuota(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	if _, err := s.DB().Exec("DROP TABLE daily_meals"); err != nil {
		t.Fatal(err)
	}

	day := createTestDay("2024-01-15", "1")
	err := s.Put(ctx, day.Date, day)
	if err == nil {
		t.Fatal("expected Put() to fail without its table")
	}
	if IsQuotaExceeded(err) {
		t.Errorf("generic failure classified as quota: %v", err)
	}
}

func TestRecordStore_CorruptRow(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	_, err := s.DB().Exec(
		"INSERT INTO daily_meals (date_key, data, last_modified) VALUES (?, ?, ?)",
		"2024-01-15", "{not json", 0,
	)
	if err != nil {
		t.Fatal(err)
	}

	if _, _, err := s.Get(ctx, datekey.MustParse("2024-01-15")); !errors.Is(err, ErrCorruptRecord) {
		t.Errorf("Get() = %v, want ErrCorruptRecord", err)
	}
	if _, err := s.ListAll(ctx); !errors.Is(err, ErrCorruptRecord) {
		t.Errorf("ListAll() = %v, want ErrCorruptRecord", err)
	}
}

func TestRecordStore_StoredTextKeepsImageBytes(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	img := "data:image/png;base64,<&>+/="
	day := createTestDay("2024-01-15", "1")
	day.Meals[meal.Lunch] = meal.Record{Items: []meal.FoodItem{}, Image: img}
	if err := s.Put(ctx, day.Date, day); err != nil {
		t.Fatal(err)
	}

	var data string
	if err := s.DB().QueryRow("SELECT data FROM daily_meals WHERE date_key = ?", "2024-01-15").Scan(&data); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(data, img) {
		t.Errorf("stored JSON does not contain the image verbatim: %s", data)
	}
}

func TestMemoryStore_CopiesOnPutAndGet(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()
	day := createTestDay("2024-01-15", "1")
	if err := m.Put(ctx, day.Date, day); err != nil {
		t.Fatal(err)
	}

	day.Meals[meal.Breakfast].Items[0].Name = "mutated"
	got, _, _ := m.Get(ctx, day.Date)
	if got.Meals[meal.Breakfast].Items[0].Name != "apple" {
		t.Error("MemoryStore aliased the caller's record")
	}

	got.Meals[meal.Breakfast].Items[0].Name = "mutated again"
	again, _, _ := m.Get(ctx, day.Date)
	if again.Meals[meal.Breakfast].Items[0].Name != "apple" {
		t.Error("MemoryStore returned its internal record")
	}
	if m.Len() != 1 {
		t.Errorf("Len() = %d, want 1", m.Len())
	}
}

func keyStrings(keys []datekey.Key) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k.String()
	}
	return out
}
