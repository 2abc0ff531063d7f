package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/nutrilog/internal/export"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	Out  string
	Text bool
}

// ExportResult is the JSON payload of the export command when --out is set.
type ExportResult struct {
	Path string `json:"path"`
	Days int    `json:"days"`
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every logged day",
		Long: `Export every day with meals logged, oldest first, with per-day totals.

The export is JSON unless --text is given, in which case it is a readable
report with numbers formatted for export.locale. Without --out the export
is written to stdout.

Example:
  nutrilog export --out meals.json
  nutrilog export --text`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "write the export to this file")
	cmd.Flags().BoolVar(&opts.Text, "text", false, "write a readable report instead of JSON")

	return cmd
}

func runExport(opts *ExportOptions, cmd *cobra.Command) error {
	formatter := newFormatter(cmd, opts.RootOptions)

	s, err := openSession(cmd, opts.RootOptions)
	if err != nil {
		return err
	}
	defer s.Close()

	doc := export.Build(s.storage.GetAllMealData(commandContext(cmd)), opts.now())
	write := func(w io.Writer) error {
		if opts.Text {
			return export.WriteText(w, doc, s.cfg.Language())
		}
		return export.WriteJSON(w, doc)
	}

	if opts.Out == "" {
		if err := write(formatter.Writer); err != nil {
			return WrapExitError(ExitFailure, "failed to write export", err)
		}
		return nil
	}

	f, err := os.Create(opts.Out)
	if err != nil {
		return failCommand(formatter, ErrCodeInvalidInput, "failed to create export file", err)
	}
	if err := write(f); err != nil {
		f.Close()
		return WrapExitError(ExitFailure, "failed to write export", err)
	}
	if err := f.Close(); err != nil {
		return WrapExitError(ExitFailure, "failed to write export", err)
	}

	result := ExportResult{Path: opts.Out, Days: doc.DayCount}
	return formatter.Success(result, s.Warnings(), func(w io.Writer) {
		fmt.Fprintf(w, "Exported %d days to %s\n", result.Days, result.Path)
	})
}
