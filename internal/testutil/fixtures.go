package testutil

import (
	"github.com/roach88/nutrilog/internal/meal"
)

// Apple is the reference breakfast item used across tests.
func Apple() meal.FoodItem {
	return meal.FoodItem{
		ID:          "1",
		Name:        "apple",
		Calories:    95,
		Carbs:       25,
		Protein:     0.5,
		Fat:         0.3,
		Sugar:       19,
		Sodium:      2,
		Cholesterol: 0,
	}
}

// Rice is a second item with round numbers, for totals.
func Rice() meal.FoodItem {
	return meal.FoodItem{
		ID:       "2",
		Name:     "rice",
		Calories: 205,
		Carbs:    45,
		Protein:  4,
		Fat:      0.5,
		Sodium:   2,
	}
}

// MealsWith returns all seven slots empty except slot, which holds items.
func MealsWith(slot meal.Slot, items ...meal.FoodItem) meal.Meals {
	m := meal.Empty()
	m[slot] = meal.Record{Items: append([]meal.FoodItem{}, items...)}
	return m
}
