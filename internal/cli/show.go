package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/roach88/cmdtrack/internal/catalogue"
	"github.com/roach88/cmdtrack/internal/ir"
	"github.com/roach88/cmdtrack/internal/projection"
)

// ShowOptions holds flags for the show command.
type ShowOptions struct {
	*RootOptions
	View       string // overrides the view setting
	Catalogue  string // overrides the catalogue setting
	DateFormat string // overrides the date_format setting
	Command    string
	Hotkeys    string
	Date       string // "op:text"
	Lang       string // BCP 47 collation language
}

// ShowRow is one rendered row.
type ShowRow struct {
	CommandID    string `json:"command_id"`
	Command      string `json:"command"`
	Hotkeys      string `json:"hotkeys"`
	Day          ir.Day `json:"day,omitempty"`
	Date         string `json:"date"`
	HotkeyCount  int64  `json:"hotkey_count"`
	PaletteCount int64  `json:"palette_count"`
	TotalCount   int64  `json:"total_count"`
}

// ShowResult is the JSON payload of the show command.
type ShowResult struct {
	View       projection.ViewKind `json:"view"`
	Label      string              `json:"label"`
	DateHeader string              `json:"date_header"`
	Rows       []ShowRow           `json:"rows"`
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ShowOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show usage counts",
		Long: `Show usage counts for every command in the catalogue.

Views:
  per-command          one row per command, lifetime totals, date of last use
  per-command-and-day  one row per command and day of use

Date filters take the form op:text where op is one of contains,
notContains, equals, notEqual, startsWith, endsWith. The text is matched
against the date as displayed.

Examples:
  cmdtrack show --catalogue commands.yaml
  cmdtrack show --view per-command-and-day --date startsWith:2024/01
  cmdtrack show --command save --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.View, "view", "", "view (per-command|per-command-and-day)")
	cmd.Flags().StringVar(&opts.Catalogue, "catalogue", "", "command catalogue (.yaml, .json or .cue)")
	cmd.Flags().StringVar(&opts.DateFormat, "date-format", "", "date display format (yyyy/mm/dd|mm/dd/yyyy|dd/mm/yyyy)")
	cmd.Flags().StringVar(&opts.Command, "command", "", "filter: command name contains")
	cmd.Flags().StringVar(&opts.Hotkeys, "hotkeys", "", "filter: hotkeys contain")
	cmd.Flags().StringVar(&opts.Date, "date", "", "filter: date match (op:text)")
	cmd.Flags().StringVar(&opts.Lang, "lang", "", "collation language for sorting (BCP 47 tag)")

	return cmd
}

func runShow(opts *ShowOptions, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	sess, err := openSession(opts.RootOptions)
	if err != nil {
		return formatter.Fail(GetExitCode(err), ErrCodeStore, "failed to open store", err)
	}
	defer sess.Close()

	view := firstNonEmpty(opts.View, sess.settings.View)
	kind, err := projection.ParseViewKind(view)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeInvalidFlag, "invalid view", err)
	}

	format, err := projection.ParseDateFormat(firstNonEmpty(opts.DateFormat, sess.settings.DateFormat))
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeInvalidFlag, "invalid date format", err)
	}

	filter := projection.Filter{Command: opts.Command, Hotkeys: opts.Hotkeys}
	if opts.Date != "" {
		filter.Date, err = projection.ParseDateMatch(opts.Date)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeInvalidFlag, "invalid --date", err)
		}
	}

	var buildOpts []projection.Option
	if opts.Lang != "" {
		tag, err := language.Parse(opts.Lang)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeInvalidFlag, "invalid --lang", err)
		}
		buildOpts = append(buildOpts, projection.WithLanguage(tag))
	}

	cataloguePath := firstNonEmpty(opts.Catalogue, sess.settings.Catalogue)
	if cataloguePath == "" {
		return formatter.Fail(ExitCommandError, ErrCodeCatalogue,
			"no catalogue: pass --catalogue or set catalogue in the config", nil)
	}
	commands, err := catalogue.Load(cataloguePath)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeCatalogue, "failed to load catalogue", err)
	}

	records, err := sess.store.GetAll(ctx)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeStore, "failed to read records", err)
	}
	formatter.VerboseLog("read %d records, %d catalogue entries", len(records), len(commands))

	rows, err := projection.Build(kind, commands, records, buildOpts...)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeGeneric, "failed to build view", err)
	}
	rows = projection.Apply(rows, filter, format)

	result := ShowResult{
		View:       kind,
		Label:      kind.Label(),
		DateHeader: projection.DateHeader(kind),
		Rows:       toShowRows(rows, format),
	}

	if opts.Format == "json" {
		return formatter.Success(result, "")
	}

	w := cmd.OutOrStdout()
	fmt.Fprintln(w, newStyles(w).Title(result.Label))
	fmt.Fprintln(w, renderRows(w, kind, result.Rows))
	return nil
}

func toShowRows(rows []projection.Row, format projection.DateFormat) []ShowRow {
	out := make([]ShowRow, len(rows))
	for i, r := range rows {
		out[i] = ShowRow{
			CommandID:    r.CommandID,
			Command:      r.Command,
			Hotkeys:      r.Hotkeys,
			Day:          r.Day,
			Date:         projection.FormatDay(r.Day, format),
			HotkeyCount:  r.HotkeyCount,
			PaletteCount: r.PaletteCount,
			TotalCount:   r.Total(),
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
