package cli

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"
)

// DatesResult is the JSON payload of the dates command.
type DatesResult struct {
	Dates []string `json:"dates"`
}

// NewDatesCommand creates the dates command.
func NewDatesCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "dates",
		Short:         "List the days that have meals logged",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDates(rootOpts, cmd)
		},
	}

	return cmd
}

func runDates(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(cmd, opts)

	s, err := openSession(cmd, opts)
	if err != nil {
		return err
	}
	defer s.Close()

	keys := s.storage.GetAllDatesWithData(commandContext(cmd))
	result := DatesResult{Dates: make([]string, 0, len(keys))}
	for _, k := range keys {
		result.Dates = append(result.Dates, k.String())
	}
	// Storage leaves order unspecified; display is chronological.
	sort.Strings(result.Dates)

	return formatter.Success(result, s.Warnings(), func(w io.Writer) {
		if len(result.Dates) == 0 {
			fmt.Fprintln(w, "No days logged.")
			return
		}
		for _, d := range result.Dates {
			fmt.Fprintln(w, d)
		}
	})
}
