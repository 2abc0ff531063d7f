package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/nutrilog/internal/datekey"
	"github.com/roach88/nutrilog/internal/meal"
)

// AddOptions holds flags for the add command.
type AddOptions struct {
	*RootOptions
	Date string
	Slot string
	Item meal.FoodItem
}

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AddOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a food item to a meal slot",
		Long: `Append a food item to one meal slot of a day. Nutrients default to zero.

Example:
  nutrilog add --date 2024-01-15 --slot breakfast --name apple \
    --calories 95 --carbs 25 --protein 0.5 --fat 0.3 --sugar 19 --sodium 2`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Date, "date", "d", "today", "day (YYYY-MM-DD, today, yesterday)")
	cmd.Flags().StringVarP(&opts.Slot, "slot", "s", "", "meal slot, e.g. breakfast or afternoonSnack")
	cmd.Flags().StringVarP(&opts.Item.Name, "name", "n", "", "food name")
	cmd.Flags().Float64Var(&opts.Item.Calories, "calories", 0, "kcal")
	cmd.Flags().Float64Var(&opts.Item.Carbs, "carbs", 0, "carbohydrates in g")
	cmd.Flags().Float64Var(&opts.Item.Protein, "protein", 0, "protein in g")
	cmd.Flags().Float64Var(&opts.Item.Fat, "fat", 0, "fat in g")
	cmd.Flags().Float64Var(&opts.Item.Sugar, "sugar", 0, "sugar in g")
	cmd.Flags().Float64Var(&opts.Item.Sodium, "sodium", 0, "sodium in mg")
	cmd.Flags().Float64Var(&opts.Item.Cholesterol, "cholesterol", 0, "cholesterol in mg")
	_ = cmd.MarkFlagRequired("slot")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func runAdd(opts *AddOptions, cmd *cobra.Command) error {
	formatter := newFormatter(cmd, opts.RootOptions)

	date, err := parseDate(opts.Date, opts.now)
	if err != nil {
		return failCommand(formatter, ErrCodeInvalidInput, "invalid date", err)
	}
	slot, err := parseSlot(opts.Slot)
	if err != nil {
		return failCommand(formatter, ErrCodeInvalidInput, "invalid slot", err)
	}
	item := opts.Item
	item.Name = strings.TrimSpace(item.Name)
	if item.Name == "" {
		return failCommand(formatter, ErrCodeInvalidInput, "food name must not be empty", nil)
	}

	s, err := openSession(cmd, opts.RootOptions)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := commandContext(cmd)
	meals, err := s.loadForEdit(ctx, date)
	if err != nil {
		return failStorage(formatter, "failed to load day", err)
	}

	item.ID = opts.ids().Generate()
	rec := meals[slot]
	rec.Items = append(rec.Items, item)
	meals[slot] = rec

	if err := s.storage.SaveMealRecords(ctx, date, meals); err != nil {
		if errors.Is(err, meal.ErrInvalid) {
			return failCommand(formatter, ErrCodeInvalidInput, "invalid food item", err)
		}
		return failStorage(formatter, "failed to save day", err)
	}

	result := SaveResult{
		Date:   datekey.FromTime(date).String(),
		Items:  meals.ItemCount(),
		ItemID: item.ID,
	}
	return formatter.Success(result, s.Warnings(), func(w io.Writer) {
		fmt.Fprintf(w, "Added %s to %s on %s (id %s)\n", item.Name, slot, result.Date, item.ID)
	})
}

// RemoveOptions holds flags for the remove command.
type RemoveOptions struct {
	*RootOptions
	Date string
	Slot string
	ID   string
}

// NewRemoveCommand creates the remove command.
func NewRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RemoveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Remove a food item from a meal slot",
		Long: `Remove one food item by id. Removing the last item and photo of a day
deletes the day.

Example:
  nutrilog remove --date 2024-01-15 --slot breakfast --id 0190f3c2-...`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRemove(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Date, "date", "d", "today", "day (YYYY-MM-DD, today, yesterday)")
	cmd.Flags().StringVarP(&opts.Slot, "slot", "s", "", "meal slot")
	cmd.Flags().StringVar(&opts.ID, "id", "", "item id as shown by 'nutrilog show'")
	_ = cmd.MarkFlagRequired("slot")
	_ = cmd.MarkFlagRequired("id")

	return cmd
}

func runRemove(opts *RemoveOptions, cmd *cobra.Command) error {
	formatter := newFormatter(cmd, opts.RootOptions)

	date, err := parseDate(opts.Date, opts.now)
	if err != nil {
		return failCommand(formatter, ErrCodeInvalidInput, "invalid date", err)
	}
	slot, err := parseSlot(opts.Slot)
	if err != nil {
		return failCommand(formatter, ErrCodeInvalidInput, "invalid slot", err)
	}

	s, err := openSession(cmd, opts.RootOptions)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := commandContext(cmd)
	meals, err := s.loadForEdit(ctx, date)
	if err != nil {
		return failStorage(formatter, "failed to load day", err)
	}

	rec := meals[slot]
	idx := -1
	for i, item := range rec.Items {
		if item.ID == opts.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return failCommand(formatter, ErrCodeInvalidInput,
			fmt.Sprintf("no item %q in %s on %s", opts.ID, slot, datekey.FromTime(date)), nil)
	}
	rec.Items = append(rec.Items[:idx], rec.Items[idx+1:]...)
	meals[slot] = rec

	if err := s.storage.SaveMealRecords(ctx, date, meals); err != nil {
		return failStorage(formatter, "failed to save day", err)
	}

	result := SaveResult{
		Date:    datekey.FromTime(date).String(),
		Items:   meals.ItemCount(),
		Cleared: !meals.HasContent(),
	}
	return formatter.Success(result, s.Warnings(), func(w io.Writer) {
		fmt.Fprintf(w, "Removed %s from %s on %s\n", opts.ID, slot, result.Date)
		if result.Cleared {
			fmt.Fprintf(w, "Cleared %s (nothing left to store)\n", result.Date)
		}
	})
}
