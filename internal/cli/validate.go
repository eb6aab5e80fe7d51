package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/cmdtrack/internal/catalogue"
	"github.com/roach88/cmdtrack/internal/ir"
)

// ValidationIssue is one problem found in a catalogue.
type ValidationIssue struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	File    string `json:"file,omitempty"`
	Line    int    `json:"line,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool              `json:"valid"`
	Path     string            `json:"path"`
	Commands int               `json:"commands"`
	Errors   []ValidationIssue `json:"errors,omitempty"`
	Warnings []ValidationIssue `json:"warnings,omitempty"`
}

// Catalogue warning codes.
const (
	WarnDuplicateID = "CATALOGUE_DUPLICATE_ID"
	WarnNoHotkeys   = "CATALOGUE_NO_HOTKEYS"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "validate [catalogue]",
		Short: "Validate a command catalogue",
		Long: `Validate a command catalogue without touching the store.

Checks that the file parses, that every entry has an id, and reports
duplicate ids (only the first entry is shown by show). Without an
argument the catalogue from the settings file is validated.

Examples:
  cmdtrack validate commands.yaml
  cmdtrack validate commands.cue --strict
  cmdtrack validate --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, strict, cmd)
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "treat warnings as errors")

	return cmd
}

func runValidate(opts *RootOptions, args []string, strict bool, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	path := ""
	if len(args) == 1 {
		path = args[0]
	} else {
		settings, _, err := loadSettings(opts)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeConfig, "failed to load settings", err)
		}
		path = settings.Catalogue
	}
	if path == "" {
		return formatter.Fail(ExitCommandError, ErrCodeCatalogue,
			"no catalogue: pass a path or set catalogue in the config", nil)
	}

	result := ValidationResult{Path: path}

	commands, err := catalogue.Load(path)
	if err != nil {
		var loadErr *catalogue.LoadError
		if !errors.As(err, &loadErr) {
			return formatter.Fail(ExitCommandError, ErrCodeCatalogue, "failed to load catalogue", err)
		}
		if loadErr.Code == catalogue.ErrCodeRead || loadErr.Code == catalogue.ErrCodeUnsupported {
			return formatter.Fail(ExitCommandError, ErrCodeCatalogue, loadErr.Message, err)
		}
		result.Errors = append(result.Errors, issueFromLoadError(loadErr))
	} else {
		result.Commands = len(commands)
		result.Warnings = catalogueWarnings(commands)
		formatter.VerboseLog("loaded %d commands from %s", len(commands), path)
	}

	if strict {
		result.Errors = append(result.Errors, result.Warnings...)
		result.Warnings = nil
	}
	result.Valid = len(result.Errors) == 0

	return outputValidation(formatter, result)
}

func issueFromLoadError(e *catalogue.LoadError) ValidationIssue {
	issue := ValidationIssue{Code: e.Code, Message: e.Message, File: e.File, Line: e.Line}
	if e.Pos.IsValid() {
		issue.File = e.Pos.Filename()
		issue.Line = e.Pos.Line()
	}
	return issue
}

// catalogueWarnings reports entries that load but will not render as the
// author probably intended.
func catalogueWarnings(commands []ir.CommandDescriptor) []ValidationIssue {
	var warnings []ValidationIssue
	seen := make(map[string]int, len(commands))
	for i, c := range commands {
		if first, ok := seen[c.ID]; ok {
			warnings = append(warnings, ValidationIssue{
				Code:    WarnDuplicateID,
				Message: fmt.Sprintf("commands[%d]: id %q already defined by commands[%d]", i, c.ID, first),
			})
			continue
		}
		seen[c.ID] = i
		if len(c.Hotkeys) == 0 {
			warnings = append(warnings, ValidationIssue{
				Code:    WarnNoHotkeys,
				Message: fmt.Sprintf("commands[%d]: %q has no hotkeys", i, c.ID),
			})
		}
	}
	return warnings
}

// outputValidation writes the result. A failed validation exits with
// ExitFailure.
func outputValidation(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.Format == "json" {
		if err := formatter.Success(result, ""); err != nil {
			return err
		}
	} else {
		w := formatter.Writer
		if result.Valid {
			fmt.Fprintf(w, "✓ %s: %d commands\n", result.Path, result.Commands)
		} else {
			fmt.Fprintf(w, "✗ %s: validation failed\n", result.Path)
		}
		for _, issue := range result.Errors {
			fmt.Fprintf(w, "  error %s\n", formatIssue(issue))
		}
		for _, issue := range result.Warnings {
			fmt.Fprintf(w, "  warning %s\n", formatIssue(issue))
		}
	}

	if !result.Valid {
		return &ExitError{
			Code:     ExitFailure,
			Message:  fmt.Sprintf("validation failed with %d error(s)", len(result.Errors)),
			Reported: true,
		}
	}
	return nil
}

func formatIssue(issue ValidationIssue) string {
	if issue.Line > 0 {
		return fmt.Sprintf("%s (line %d): %s", issue.Code, issue.Line, issue.Message)
	}
	return fmt.Sprintf("%s: %s", issue.Code, issue.Message)
}
