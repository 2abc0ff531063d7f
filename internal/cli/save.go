package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/nutrilog/internal/datekey"
	"github.com/roach88/nutrilog/internal/meal"
)

// SaveOptions holds flags for the save command.
type SaveOptions struct {
	*RootOptions
	Date string
	File string
}

// SaveResult is the JSON payload of the save, add and remove commands.
type SaveResult struct {
	Date    string `json:"date"`
	Items   int    `json:"items"`
	Cleared bool   `json:"cleared"` // the day had no content and was deleted
	ItemID  string `json:"item_id,omitempty"`
}

// NewSaveCommand creates the save command.
func NewSaveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SaveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "save",
		Short: "Replace a day's meals from a JSON or YAML document",
		Long: `Replace every meal slot of a day with the contents of a document.

The document has an optional "date" (YYYY-MM-DD) and a "meals" object
keyed by slot name. Slots left out are stored empty, items without an id
get a fresh one, and a document with no items or photos deletes the day.

Example:
  nutrilog save --file day.yaml
  nutrilog save --date 2024-01-15 --file day.json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSave(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "day document (.json, .yaml, .yml)")
	cmd.Flags().StringVarP(&opts.Date, "date", "d", "", "day to save (overrides the document's date)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runSave(opts *SaveOptions, cmd *cobra.Command) error {
	formatter := newFormatter(cmd, opts.RootOptions)

	data, err := os.ReadFile(opts.File)
	if err != nil {
		return failCommand(formatter, ErrCodeInvalidInput, "failed to read document", err)
	}

	validator, err := meal.NewValidator()
	if err != nil {
		return failCommand(formatter, ErrCodeGeneric, "failed to load day schema", err)
	}
	doc, err := validator.Decode(data, meal.FormatFromPath(opts.File), opts.ids())
	if err != nil {
		return failCommand(formatter, ErrCodeInvalidInput, "invalid day document", err)
	}

	dateArg := opts.Date
	if dateArg == "" {
		dateArg = doc.Date
	}
	if dateArg == "" {
		return failCommand(formatter, ErrCodeInvalidInput, "no date: pass --date or set date in the document", nil)
	}
	date, err := parseDate(dateArg, opts.now)
	if err != nil {
		return failCommand(formatter, ErrCodeInvalidInput, "invalid date", err)
	}

	s, err := openSession(cmd, opts.RootOptions)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.storage.SaveMealRecords(commandContext(cmd), date, doc.Meals); err != nil {
		return failStorage(formatter, "failed to save day", err)
	}

	result := SaveResult{
		Date:    datekey.FromTime(date).String(),
		Items:   doc.Meals.ItemCount(),
		Cleared: !doc.Meals.HasContent(),
	}
	return formatter.Success(result, s.Warnings(), func(w io.Writer) {
		writeSaveResult(w, result)
	})
}

func writeSaveResult(w io.Writer, r SaveResult) {
	if r.Cleared {
		fmt.Fprintf(w, "Cleared %s (nothing left to store)\n", r.Date)
		return
	}
	fmt.Fprintf(w, "Saved %s (%d items)\n", r.Date, r.Items)
}
