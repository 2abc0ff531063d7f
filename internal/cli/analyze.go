package cli

import (
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/nutrilog/internal/analysis"
	"github.com/roach88/nutrilog/internal/datekey"
)

// AnalyzeOptions holds flags for the analyze command.
type AnalyzeOptions struct {
	*RootOptions
	Photo string
	Date  string
	Slot  string
	Add   bool
}

// AnalyzeResult is the JSON payload of the analyze command.
type AnalyzeResult struct {
	Foods []analysis.FoodGuess `json:"foods"`
	Saved *SaveResult          `json:"saved,omitempty"`
}

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AnalyzeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Recognize the foods in a meal photo",
		Long: `Send a meal photo to the configured analysis service and print the foods
it recognized. With --add the foods are appended to a meal slot and the
photo is attached to it.

Requires analysis.endpoint (or NUTRILOG_ANALYSIS_URL).

Example:
  nutrilog analyze --photo lunch.jpg
  nutrilog analyze --photo lunch.jpg --date today --slot lunch --add`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Photo, "photo", "p", "", "photo file (JPEG, PNG, ...)")
	cmd.Flags().StringVarP(&opts.Date, "date", "d", "today", "day to add to (YYYY-MM-DD, today, yesterday)")
	cmd.Flags().StringVarP(&opts.Slot, "slot", "s", "", "meal slot to add to")
	cmd.Flags().BoolVar(&opts.Add, "add", false, "append the foods and attach the photo")
	_ = cmd.MarkFlagRequired("photo")

	return cmd
}

func runAnalyze(opts *AnalyzeOptions, cmd *cobra.Command) error {
	formatter := newFormatter(cmd, opts.RootOptions)

	date, err := parseDate(opts.Date, opts.now)
	if err != nil {
		return failCommand(formatter, ErrCodeInvalidInput, "invalid date", err)
	}
	if opts.Add && opts.Slot == "" {
		return failCommand(formatter, ErrCodeInvalidInput, "--add requires --slot", nil)
	}
	slot, err := parseSlot(opts.Slot)
	if opts.Add && err != nil {
		return failCommand(formatter, ErrCodeInvalidInput, "invalid slot", err)
	}

	data, err := os.ReadFile(opts.Photo)
	if err != nil {
		return failCommand(formatter, ErrCodeInvalidInput, "failed to read photo", err)
	}
	photo := analysis.EncodePhoto(http.DetectContentType(data), data)

	s, err := openSession(cmd, opts.RootOptions)
	if err != nil {
		return err
	}
	defer s.Close()

	analyzer := opts.Analyzer
	if analyzer == nil {
		if s.cfg.Analysis.Endpoint == "" {
			return failCommand(formatter, ErrCodeInvalidInput, "analysis is not configured: set analysis.endpoint", nil)
		}
		analyzer = analysis.NewClient(analysis.Config{
			Endpoint: s.cfg.Analysis.Endpoint,
			APIKey:   s.cfg.Analysis.APIKey,
			Timeout:  s.cfg.Analysis.Timeout,
		})
	}

	ctx := commandContext(cmd)
	formatter.VerboseLog("analyzing %s (%d bytes)", opts.Photo, len(data))
	guesses, err := analyzer.Analyze(ctx, photo)
	if err != nil {
		_ = formatter.Error(ErrCodeAnalysis, "photo analysis failed", errDetails(err))
		return WrapExitError(ExitFailure, "photo analysis failed", err)
	}

	result := AnalyzeResult{Foods: guesses}
	if opts.Add {
		meals, err := s.loadForEdit(ctx, date)
		if err != nil {
			return failStorage(formatter, "failed to load day", err)
		}
		rec := meals[slot]
		rec.Items = append(rec.Items, analysis.ToFoodItems(guesses, opts.ids())...)
		rec.Image = photo
		meals[slot] = rec

		if err := s.storage.SaveMealRecords(ctx, date, meals); err != nil {
			return failStorage(formatter, "failed to save day", err)
		}
		result.Saved = &SaveResult{Date: datekey.FromTime(date).String(), Items: meals.ItemCount()}
	}

	return formatter.Success(result, s.Warnings(), func(w io.Writer) {
		if len(result.Foods) == 0 {
			fmt.Fprintln(w, "No foods recognized.")
		}
		for _, g := range result.Foods {
			fmt.Fprintf(w, "- %s: %g kcal, carbs %g g, protein %g g, fat %g g\n", g.Name, g.Calories, g.Carbs, g.Protein, g.Fat)
		}
		if result.Saved != nil {
			fmt.Fprintf(w, "Added %d foods and the photo to %s on %s\n", len(result.Foods), slot, result.Saved.Date)
		}
	})
}
