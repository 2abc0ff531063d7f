// Package meal defines the records a day's intake is stored as.
//
// A day is divided into seven fixed slots. Every DailyMealData carries all
// seven, and an empty slot is an empty Record rather than a missing key.
// A day has real content when at least one slot holds an item or an image;
// days without real content are never persisted.
package meal

import (
	"github.com/roach88/nutrilog/internal/datekey"
)

// Slot names a time-of-day category. The set is closed.
type Slot string

const (
	PreBreakfastSnack Slot = "preBreakfastSnack"
	Breakfast         Slot = "breakfast"
	MorningSnack      Slot = "morningSnack"
	Lunch             Slot = "lunch"
	AfternoonSnack    Slot = "afternoonSnack"
	Dinner            Slot = "dinner"
	EveningSnack      Slot = "eveningSnack"
)

// Slots lists every slot in time-of-day order.
var Slots = []Slot{
	PreBreakfastSnack,
	Breakfast,
	MorningSnack,
	Lunch,
	AfternoonSnack,
	Dinner,
	EveningSnack,
}

// Valid reports whether s is one of the seven fixed slots.
func (s Slot) Valid() bool {
	for _, known := range Slots {
		if s == known {
			return true
		}
	}
	return false
}

// ParseSlot accepts a slot name as stored.
func ParseSlot(name string) (Slot, bool) {
	s := Slot(name)
	return s, s.Valid()
}

// FoodItem is one logged food. Calories are kcal, sodium and cholesterol mg,
// the rest grams; the store does not enforce units.
type FoodItem struct {
	ID          string  `json:"id" yaml:"id"`
	Name        string  `json:"name" yaml:"name"`
	Calories    float64 `json:"calories" yaml:"calories"`
	Carbs       float64 `json:"carbs" yaml:"carbs"`
	Protein     float64 `json:"protein" yaml:"protein"`
	Fat         float64 `json:"fat" yaml:"fat"`
	Sugar       float64 `json:"sugar" yaml:"sugar"`
	Sodium      float64 `json:"sodium" yaml:"sodium"`
	Cholesterol float64 `json:"cholesterol" yaml:"cholesterol"`
}

// Record is the content of one slot. Image is an encoded photo, normally a
// data URI, kept byte-for-byte; the empty string means no image.
type Record struct {
	Items []FoodItem `json:"items" yaml:"items"`
	Image string     `json:"image,omitempty" yaml:"image,omitempty"`
}

// HasContent reports whether the slot holds an item or an image.
func (r Record) HasContent() bool {
	return len(r.Items) > 0 || r.Image != ""
}

// Clone returns a deep copy. Items is never nil in the copy.
func (r Record) Clone() Record {
	items := make([]FoodItem, len(r.Items))
	copy(items, r.Items)
	return Record{Items: items, Image: r.Image}
}

// Meals maps each slot to its record.
type Meals map[Slot]Record

// Empty returns all seven slots with no items and no image.
func Empty() Meals {
	m := make(Meals, len(Slots))
	for _, s := range Slots {
		m[s] = Record{Items: []FoodItem{}}
	}
	return m
}

// HasContent reports whether any slot has real content.
func (m Meals) HasContent() bool {
	for _, r := range m {
		if r.HasContent() {
			return true
		}
	}
	return false
}

// Normalize returns a deep copy holding exactly the seven slots, with missing
// slots filled in as empty records. Unknown slot keys are dropped; Validate
// rejects them before a save gets this far.
func (m Meals) Normalize() Meals {
	out := make(Meals, len(Slots))
	for _, s := range Slots {
		out[s] = m[s].Clone()
	}
	return out
}

// ItemCount is the number of items across all slots.
func (m Meals) ItemCount() int {
	n := 0
	for _, r := range m {
		n += len(r.Items)
	}
	return n
}

// DailyMealData is the persisted unit: one calendar day, all seven slots.
// LastModified is epoch milliseconds and is set by the caller before a write.
type DailyMealData struct {
	Date         datekey.Key `json:"date"`
	Meals        Meals       `json:"meals"`
	LastModified int64       `json:"lastModified"`
}

// HasContent applies the real-content rule to the day.
func (d DailyMealData) HasContent() bool {
	return d.Meals.HasContent()
}

// Clone returns a deep copy of the day.
func (d DailyMealData) Clone() DailyMealData {
	meals := make(Meals, len(d.Meals))
	for s, r := range d.Meals {
		meals[s] = r.Clone()
	}
	return DailyMealData{Date: d.Date, Meals: meals, LastModified: d.LastModified}
}
