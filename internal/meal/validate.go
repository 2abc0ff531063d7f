package meal

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalid marks a record that must not be stored.
var ErrInvalid = errors.New("invalid meal record")

// Validate checks slot names, item ids, and nutrient values.
//
// Ids are opaque, but a non-empty id must be unique within its slot.
// Nutrients must be finite and non-negative; JSON cannot carry NaN or Inf,
// so they would not survive a round trip anyway.
func Validate(m Meals) error {
	for slot, r := range m {
		if !slot.Valid() {
			return fmt.Errorf("%w: unknown slot %q", ErrInvalid, slot)
		}
		seen := make(map[string]bool, len(r.Items))
		for _, item := range r.Items {
			if item.ID != "" && seen[item.ID] {
				return fmt.Errorf("%w: %s has duplicate item id %q", ErrInvalid, slot, item.ID)
			}
			seen[item.ID] = true
			if err := validateNutrients(item); err != nil {
				return fmt.Errorf("%w: %s item %q: %v", ErrInvalid, slot, item.ID, err)
			}
		}
	}
	return nil
}

func validateNutrients(item FoodItem) error {
	fields := []struct {
		name  string
		value float64
	}{
		{"calories", item.Calories},
		{"carbs", item.Carbs},
		{"protein", item.Protein},
		{"fat", item.Fat},
		{"sugar", item.Sugar},
		{"sodium", item.Sodium},
		{"cholesterol", item.Cholesterol},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return fmt.Errorf("%s is not finite", f.name)
		}
		if f.value < 0 {
			return fmt.Errorf("%s is negative (%v)", f.name, f.value)
		}
	}
	return nil
}
