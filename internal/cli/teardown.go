package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/cmdtrack/internal/store"
)

// TeardownResult is the JSON payload of the teardown and destroy commands.
type TeardownResult struct {
	Action string `json:"action"` // "closed" or "destroyed"
	Path   string `json:"path"`
}

// NewTeardownCommand creates the teardown command.
func NewTeardownCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "teardown",
		Short: "Run the uninstall hook",
		Long: `Run the uninstall hook.

With protect_data set the store is only closed and the data survives.
Otherwise the store is destroyed, exactly like "cmdtrack destroy".`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTeardown(rootOpts, cmd, false)
		},
	}
	return cmd
}

// DestroyOptions holds flags for the destroy command.
type DestroyOptions struct {
	*RootOptions
	Yes bool
}

// NewDestroyCommand creates the destroy command.
func NewDestroyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DestroyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "destroy",
		Short: "Delete this installation's database",
		Long: `Delete this installation's database files.

Every other open handle is asked to close first. If one refuses, nothing
is deleted and the command fails.

Examples:
  cmdtrack destroy --yes`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !opts.Yes {
				return NewExitError(ExitCommandError, "refusing to destroy without --yes")
			}
			return runTeardown(opts.RootOptions, cmd, true)
		},
	}

	cmd.Flags().BoolVarP(&opts.Yes, "yes", "y", false, "confirm deletion")

	return cmd
}

// runTeardown closes or destroys the store. force ignores protect_data.
func runTeardown(opts *RootOptions, cmd *cobra.Command, force bool) error {
	ctx := context.Background()
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	logger := newLogger(opts, cmd.ErrOrStderr())

	sess, err := openSession(opts)
	if err != nil {
		return formatter.Fail(GetExitCode(err), ErrCodeStore, "failed to open store", err)
	}
	path := sess.store.Path()

	if sess.settings.ProtectData && !force {
		if err := sess.Close(); err != nil {
			return formatter.Fail(ExitFailure, ErrCodeStore, "failed to close store", err)
		}
		logger.Info("store closed, data protected", "path", path)
		return formatter.Success(TeardownResult{Action: "closed", Path: path},
			fmt.Sprintf("closed %s (data protected)", path))
	}

	if err := sess.store.Destroy(ctx); err != nil {
		if store.IsBlockingOpenConflict(err) {
			return formatter.Fail(ExitFailure, ErrCodeBlocked, "store is still open elsewhere", err)
		}
		return formatter.Fail(ExitFailure, ErrCodeStore, "failed to destroy store", err)
	}
	logger.Info("store destroyed", "path", path)
	return formatter.Success(TeardownResult{Action: "destroyed", Path: path},
		fmt.Sprintf("destroyed %s", path))
}
