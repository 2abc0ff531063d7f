package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// StatusResult is the JSON payload of the status command.
type StatusResult struct {
	Database      string `json:"database"`
	State         string `json:"state"`
	UsingFallback bool   `json:"using_fallback"`
	StoredDays    int    `json:"stored_days"`
	DaysWithData  int    `json:"days_with_data"`
}

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show which storage is in use and how many days it holds",
		Long: `Show the database path and connection state, whether the in-memory
fallback is in use, and how many days are stored.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(rootOpts, cmd)
		},
	}

	return cmd
}

func runStatus(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(cmd, opts)

	s, err := openSession(cmd, opts)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := commandContext(cmd)
	result := StatusResult{
		Database:      s.cfg.Database.Path,
		State:         "disabled",
		UsingFallback: s.storage.UsingFallback(),
		StoredDays:    len(s.storage.StoredDates(ctx)),
		DaysWithData:  len(s.storage.GetAllDatesWithData(ctx)),
	}
	if s.record != nil {
		result.State = s.record.State().String()
	}

	return formatter.Success(result, s.Warnings(), func(w io.Writer) {
		fmt.Fprintf(w, "Database:  %s (%s)\n", result.Database, result.State)
		if result.UsingFallback {
			fmt.Fprintln(w, "Storage:   in-memory (changes are lost on exit)")
		} else {
			fmt.Fprintln(w, "Storage:   database")
		}
		fmt.Fprintf(w, "Days:      %d with meals, %d stored\n", result.DaysWithData, result.StoredDays)
	})
}
