package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/cmdtrack/internal/ir"
)

// RecordsOptions holds flags for the records command.
type RecordsOptions struct {
	*RootOptions
	Command string
	Day     string
}

// RecordsResult is the JSON payload of the records command.
type RecordsResult struct {
	Records []ir.InvocationRecord `json:"records"`
	Total   int                   `json:"total"` // records in the store, before filtering
}

// NewRecordsCommand creates the records command.
func NewRecordsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RecordsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "records",
		Short: "List stored invocation records",
		Long: `List the raw invocation records in record id order.

Unlike show, records needs no catalogue: every stored row is listed,
including rows for commands the catalogue no longer knows.

Examples:
  cmdtrack records
  cmdtrack records --command editor:save-file
  cmdtrack records --command editor:save-file --day 2024-01-02 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecords(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Command, "command", "", "only records for this command id")
	cmd.Flags().StringVar(&opts.Day, "day", "", "only records for this day (YYYY-MM-DD)")

	return cmd
}

func runRecords(opts *RecordsOptions, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	var day ir.Day
	if opts.Day != "" {
		d, err := ir.ParseDay(opts.Day)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeInvalidFlag, "invalid --day", err)
		}
		day = d
	}

	sess, err := openSession(opts.RootOptions)
	if err != nil {
		return formatter.Fail(GetExitCode(err), ErrCodeStore, "failed to open store", err)
	}
	defer sess.Close()

	total, err := sess.store.Count(ctx)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeStore, "failed to count records", err)
	}

	var records []ir.InvocationRecord
	if opts.Command != "" && !day.IsZero() {
		rec, found, err := sess.store.FindByDayAndCommand(ctx, day, opts.Command)
		if err != nil {
			return formatter.Fail(ExitFailure, ErrCodeStore, "failed to read records", err)
		}
		records = []ir.InvocationRecord{}
		if found {
			records = append(records, rec)
		}
	} else {
		all, err := sess.store.GetAll(ctx)
		if err != nil {
			return formatter.Fail(ExitFailure, ErrCodeStore, "failed to read records", err)
		}
		records = filterRecords(all, opts.Command, day)
	}

	result := RecordsResult{Records: records, Total: total}
	if opts.Format == "json" {
		return formatter.Success(result, "")
	}

	w := cmd.OutOrStdout()
	if len(records) == 0 {
		fmt.Fprintf(w, "no records (%d stored)\n", total)
		return nil
	}
	fmt.Fprintln(w, renderRecords(w, records))
	fmt.Fprintf(w, "%d of %d records\n", len(records), total)
	return nil
}

func filterRecords(records []ir.InvocationRecord, commandID string, day ir.Day) []ir.InvocationRecord {
	out := []ir.InvocationRecord{}
	for _, rec := range records {
		if commandID != "" && rec.CommandID != commandID {
			continue
		}
		if !day.IsZero() && rec.Day != day {
			continue
		}
		out = append(out, rec)
	}
	return out
}
