package cli

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/roach88/cmdtrack/internal/config"
)

// ConfigResult is the JSON payload of the config commands.
type ConfigResult struct {
	Path     string           `json:"path"`
	Settings *config.Settings `json:"settings"`
}

// NewConfigCommand creates the config command group.
func NewConfigCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change settings",
	}
	cmd.AddCommand(newConfigShowCommand(rootOpts))
	cmd.AddCommand(newConfigSetCommand(rootOpts))
	return cmd
}

func newConfigShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "show",
		Short:         "Print the current settings",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := &OutputFormatter{
				Format:    rootOpts.Format,
				Writer:    cmd.OutOrStdout(),
				ErrWriter: cmd.ErrOrStderr(),
				Verbose:   rootOpts.Verbose,
			}
			settings, path, err := loadSettings(rootOpts)
			if err != nil {
				return formatter.Fail(ExitCommandError, ErrCodeConfig, "failed to load settings", err)
			}
			return outputSettings(formatter, path, settings)
		},
	}
}

func newConfigSetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one setting",
		Long: fmt.Sprintf(`Change one setting and save the settings file.

Keys: %s

Examples:
  cmdtrack config set protect_data true
  cmdtrack config set view per-command-and-day
  cmdtrack config set date_format dd/mm/yyyy`, strings.Join(config.Keys(), ", ")),
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := &OutputFormatter{
				Format:    rootOpts.Format,
				Writer:    cmd.OutOrStdout(),
				ErrWriter: cmd.ErrOrStderr(),
				Verbose:   rootOpts.Verbose,
			}
			settings, path, err := loadSettings(rootOpts)
			if err != nil {
				return formatter.Fail(ExitCommandError, ErrCodeConfig, "failed to load settings", err)
			}
			if err := settings.Set(args[0], args[1]); err != nil {
				return formatter.Fail(ExitCommandError, ErrCodeInvalidFlag, "invalid setting", err)
			}
			if err := config.Save(settings, path); err != nil {
				return formatter.Fail(ExitFailure, ErrCodeConfig, "failed to save settings", err)
			}
			newLogger(rootOpts, cmd.ErrOrStderr()).Info("setting changed", "key", args[0], "value", args[1])
			return outputSettings(formatter, path, settings)
		},
	}
}

func outputSettings(formatter *OutputFormatter, path string, settings *config.Settings) error {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# %s\n", path)
	if err := toml.NewEncoder(&buf).Encode(settings); err != nil {
		return formatter.Fail(ExitFailure, ErrCodeConfig, "failed to encode settings", err)
	}
	return formatter.Success(ConfigResult{Path: path, Settings: settings}, strings.TrimRight(buf.String(), "\n"))
}
