// Package export packages every stored day into a single document for
// sharing: indented JSON for machines, or a plain-text report for people.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/roach88/nutrilog/internal/meal"
)

// Document is the export payload.
type Document struct {
	GeneratedAt time.Time `json:"generatedAt"`
	DayCount    int       `json:"dayCount"`
	Days        []Day     `json:"days"`
}

// Day is one exported calendar day.
type Day struct {
	Date         string      `json:"date"`
	Meals        meal.Meals  `json:"meals"`
	Totals       meal.Totals `json:"totals"`
	LastModified int64       `json:"lastModified"`
}

// Build assembles a Document from stored days, ascending by date. Days
// without real content are skipped.
func Build(days []meal.DailyMealData, generatedAt time.Time) Document {
	out := make([]Day, 0, len(days))
	for _, d := range days {
		if !d.HasContent() {
			continue
		}
		meals := d.Meals.Normalize()
		out = append(out, Day{
			Date:         d.Date.String(),
			Meals:        meals,
			Totals:       meals.Totals(),
			LastModified: d.LastModified,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })

	return Document{
		GeneratedAt: generatedAt.UTC(),
		DayCount:    len(out),
		Days:        out,
	}
}

// WriteJSON writes doc as indented JSON with a trailing newline. Image data
// URIs are written without HTML escaping.
func WriteJSON(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode export: %w", err)
	}
	return nil
}

// WriteText writes a readable report with numbers formatted for tag. Empty
// slots are omitted.
func WriteText(w io.Writer, doc Document, tag language.Tag) error {
	p := message.NewPrinter(tag)
	title := cases.Title(tag)
	var b strings.Builder

	p.Fprintf(&b, "Nutrition log: %d days, generated %s\n", doc.DayCount, doc.GeneratedAt.Format("2006-01-02 15:04 MST"))
	for _, day := range doc.Days {
		fmt.Fprintf(&b, "\n%s\n", day.Date)
		for _, slot := range meal.Slots {
			rec := day.Meals[slot]
			if !rec.HasContent() {
				continue
			}
			fmt.Fprintf(&b, "  %s\n", title.String(SlotLabel(slot)))
			for _, item := range rec.Items {
				fmt.Fprintf(&b, "    - %s: %s\n", item.Name, formatNutrients(p, totalsOf(item)))
			}
			if rec.Image != "" {
				b.WriteString("    (photo)\n")
			}
		}
		fmt.Fprintf(&b, "  Total: %s\n", formatNutrients(p, day.Totals))
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	return nil
}

// SlotLabel splits a slot name into lower-case words, so "morningSnack"
// becomes "morning snack".
func SlotLabel(slot meal.Slot) string {
	var b strings.Builder
	for i, r := range string(slot) {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte(' ')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

func totalsOf(item meal.FoodItem) meal.Totals {
	var t meal.Totals
	t.Add(item)
	return t
}

func formatNutrients(p *message.Printer, t meal.Totals) string {
	return p.Sprintf("%.0f kcal, carbs %.1f g, protein %.1f g, fat %.1f g, sugar %.1f g, sodium %.0f mg, cholesterol %.0f mg",
		t.Calories, t.Carbs, t.Protein, t.Fat, t.Sugar, t.Sodium, t.Cholesterol)
}
