package meal

// Totals is the sum of every nutrient over a set of items.
type Totals struct {
	Calories    float64 `json:"calories"`
	Carbs       float64 `json:"carbs"`
	Protein     float64 `json:"protein"`
	Fat         float64 `json:"fat"`
	Sugar       float64 `json:"sugar"`
	Sodium      float64 `json:"sodium"`
	Cholesterol float64 `json:"cholesterol"`
}

// Add accumulates one item.
func (t *Totals) Add(item FoodItem) {
	t.Calories += item.Calories
	t.Carbs += item.Carbs
	t.Protein += item.Protein
	t.Fat += item.Fat
	t.Sugar += item.Sugar
	t.Sodium += item.Sodium
	t.Cholesterol += item.Cholesterol
}

// Totals sums the record's items.
func (r Record) Totals() Totals {
	var t Totals
	for _, item := range r.Items {
		t.Add(item)
	}
	return t
}

// Totals sums every slot in time-of-day order so float addition is stable.
func (m Meals) Totals() Totals {
	var t Totals
	for _, s := range Slots {
		for _, item := range m[s].Items {
			t.Add(item)
		}
	}
	return t
}

// Totals sums the whole day.
func (d DailyMealData) Totals() Totals {
	return d.Meals.Totals()
}
