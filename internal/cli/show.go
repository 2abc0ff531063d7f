package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/nutrilog/internal/datekey"
	"github.com/roach88/nutrilog/internal/export"
	"github.com/roach88/nutrilog/internal/meal"
)

// DayView is the JSON shape of one day in command output.
type DayView struct {
	Date   string      `json:"date"`
	Meals  meal.Meals  `json:"meals"`
	Totals meal.Totals `json:"totals"`
}

func newDayView(key datekey.Key, meals meal.Meals) DayView {
	return DayView{Date: key.String(), Meals: meals, Totals: meals.Totals()}
}

// ShowOptions holds flags for the show command.
type ShowOptions struct {
	*RootOptions
	Date string
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ShowOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the meals logged for a day",
		Long: `Show all seven meal slots for a day with per-item nutrients and the
day's totals. A day with nothing logged shows every slot empty.

Example:
  nutrilog show --date 2024-01-15
  nutrilog show --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Date, "date", "d", "today", "day to show (YYYY-MM-DD, today, yesterday)")

	return cmd
}

func runShow(opts *ShowOptions, cmd *cobra.Command) error {
	formatter := newFormatter(cmd, opts.RootOptions)
	date, err := parseDate(opts.Date, opts.now)
	if err != nil {
		return failCommand(formatter, ErrCodeInvalidInput, "invalid date", err)
	}

	s, err := openSession(cmd, opts.RootOptions)
	if err != nil {
		return err
	}
	defer s.Close()

	key := datekey.FromTime(date)
	meals := s.storage.LoadMealRecords(commandContext(cmd), date)
	view := newDayView(key, meals)

	return formatter.Success(view, s.Warnings(), func(w io.Writer) {
		writeDay(w, view)
	})
}

// writeDay prints every slot in time-of-day order.
func writeDay(w io.Writer, view DayView) {
	fmt.Fprintln(w, view.Date)
	for _, slot := range meal.Slots {
		rec := view.Meals[slot]
		fmt.Fprintf(w, "  %s\n", export.SlotLabel(slot))
		if !rec.HasContent() {
			fmt.Fprintln(w, "    (empty)")
			continue
		}
		for _, item := range rec.Items {
			fmt.Fprintf(w, "    - %s [%s]: %s\n", item.Name, item.ID, formatItem(item))
		}
		if rec.Image != "" {
			fmt.Fprintf(w, "    (photo, %d bytes)\n", len(rec.Image))
		}
	}
	t := view.Totals
	fmt.Fprintf(w, "  total: %g kcal, carbs %g g, protein %g g, fat %g g, sugar %g g, sodium %g mg, cholesterol %g mg\n",
		t.Calories, t.Carbs, t.Protein, t.Fat, t.Sugar, t.Sodium, t.Cholesterol)
}

func formatItem(item meal.FoodItem) string {
	return fmt.Sprintf("%g kcal, carbs %g g, protein %g g, fat %g g, sugar %g g, sodium %g mg, cholesterol %g mg",
		item.Calories, item.Carbs, item.Protein, item.Fat, item.Sugar, item.Sodium, item.Cholesterol)
}
