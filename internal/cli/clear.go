package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// ClearResult is the JSON payload of the clear command.
type ClearResult struct {
	Deleted int64 `json:"deleted"`
}

// NewClearCommand creates the clear command.
func NewClearCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every recorded invocation",
		Long: `Delete every recorded invocation and keep the (empty) store.

Record ids are never reused, so records written afterwards continue the
old sequence.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClear(rootOpts, cmd)
		},
	}
	return cmd
}

func runClear(opts *RootOptions, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	sess, err := openSession(opts)
	if err != nil {
		return formatter.Fail(GetExitCode(err), ErrCodeStore, "failed to open store", err)
	}
	defer sess.Close()

	n, err := sess.store.ClearAll(ctx)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeStore, "failed to clear records", err)
	}

	newLogger(opts, cmd.ErrOrStderr()).Info("records cleared", "deleted", n)
	return formatter.Success(ClearResult{Deleted: n}, fmt.Sprintf("deleted %d records", n))
}
