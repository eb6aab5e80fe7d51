package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/cmdtrack/internal/config"
	"github.com/roach88/cmdtrack/internal/store"
)

// session is the per-command view of one installation: its settings and an
// open handle to its store.
type session struct {
	settings   *config.Settings
	configPath string
	dir        *store.Directory
	store      *store.Store
}

// newLogger builds the structured logger commands hand to library code.
// Warnings always reach w; --verbose adds info.
func newLogger(opts *RootOptions, w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if opts.Verbose {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// loadSettings reads the settings file and assigns an installation id on
// first use, persisting it so later runs open the same database.
func loadSettings(opts *RootOptions) (*config.Settings, string, error) {
	path := opts.ConfigPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return nil, "", err
		}
		path = p
	}

	settings, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}

	changed, err := settings.EnsureInstallationID()
	if err != nil {
		return nil, "", err
	}
	if changed {
		if err := config.Save(settings, path); err != nil {
			return nil, "", err
		}
	}
	return settings, path, nil
}

// openSession loads settings and opens the installation's store.
func openSession(opts *RootOptions, storeOpts ...store.Option) (*session, error) {
	settings, path, err := loadSettings(opts)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load settings", err)
	}

	root, err := settings.ResolveDataDir()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to resolve data directory", err)
	}

	dir := store.NewDirectory(root)
	st, err := dir.Open(settings.InstallationID, storeOpts...)
	if err != nil {
		return nil, WrapExitError(ExitFailure, fmt.Sprintf("failed to open store in %s", root), err)
	}

	return &session{
		settings:   settings,
		configPath: path,
		dir:        dir,
		store:      st,
	}, nil
}

// Close releases the store handle.
func (s *session) Close() error {
	return s.store.Close()
}
