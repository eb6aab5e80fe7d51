package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/cmdtrack/internal/ir"
	"github.com/roach88/cmdtrack/internal/tracker"
)

// RecordOptions holds flags for the record command.
type RecordOptions struct {
	*RootOptions
	Channel string
}

// RecordResult is the JSON payload of the record command.
type RecordResult struct {
	Recorded bool                 `json:"recorded"`
	Skipped  bool                 `json:"skipped,omitempty"`
	Created  bool                 `json:"created,omitempty"`
	Record   *ir.InvocationRecord `json:"record,omitempty"`
	Evicted  int64                `json:"evicted,omitempty"`
}

// NewRecordCommand creates the record command.
func NewRecordCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RecordOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "record <command-id>",
		Short: "Record one command invocation",
		Long: `Record one invocation of a command.

This is the host integration point: hosts call it from their hotkey and
command palette handlers. Storage failures are logged to stderr and never
change the exit status, so a broken store cannot break the host.

Examples:
  cmdtrack record editor:save-file --channel hotkey
  cmdtrack record app:open-vault --channel palette`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecord(opts, cmd, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.Channel, "channel", "c", string(ir.ChannelHotkey), "trigger channel (hotkey|palette)")

	return cmd
}

func runRecord(opts *RecordOptions, cmd *cobra.Command, commandID string) error {
	ctx := context.Background()
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	channel, err := ir.ParseChannel(opts.Channel)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeInvalidFlag, "invalid --channel", err)
	}

	sess, err := openSession(opts.RootOptions)
	if err != nil {
		logger.Warn("failed to record invocation",
			"command", commandID,
			"channel", string(channel),
			"error", err,
		)
		return formatter.Success(RecordResult{}, "not recorded")
	}
	defer sess.Close()

	tr := tracker.New(sess.store,
		tracker.WithLogger(logger),
		tracker.WithEnabled(func() bool { return sess.settings.TrackingEnabled }),
	)

	res, err := tr.Record(ctx, commandID, channel)
	if err != nil {
		logger.Warn("failed to record invocation",
			"command", commandID,
			"channel", string(channel),
			"error", err,
		)
		return formatter.Success(RecordResult{}, "not recorded")
	}

	if res.Skipped {
		return formatter.Success(RecordResult{Skipped: true}, "tracking disabled, not recorded")
	}

	rec := res.Record
	return formatter.Success(RecordResult{
		Recorded: true,
		Created:  res.Created,
		Record:   &rec,
		Evicted:  res.Retention.Evicted(),
	}, fmt.Sprintf("recorded %s via %s on %s (hotkey=%d palette=%d)",
		rec.CommandID, channel, rec.Day, rec.HotkeyCount, rec.PaletteCount))
}
