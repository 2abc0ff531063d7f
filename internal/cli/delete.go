package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/nutrilog/internal/datekey"
)

// DeleteOptions holds flags for the delete command.
type DeleteOptions struct {
	*RootOptions
	Date string
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DeleteOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete everything logged for a day",
		Long: `Delete the stored record for a day. Deleting a day with nothing logged
is not an error.

Example:
  nutrilog delete --date 2024-01-15`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Date, "date", "d", "", "day to delete (YYYY-MM-DD, today, yesterday)")
	_ = cmd.MarkFlagRequired("date")

	return cmd
}

func runDelete(opts *DeleteOptions, cmd *cobra.Command) error {
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

	if err := s.storage.DeleteMealRecords(commandContext(cmd), date); err != nil {
		return failStorage(formatter, "failed to delete day", err)
	}

	key := datekey.FromTime(date).String()
	return formatter.Success(map[string]string{"deleted": key}, s.Warnings(), func(w io.Writer) {
		fmt.Fprintf(w, "Deleted %s\n", key)
	})
}
