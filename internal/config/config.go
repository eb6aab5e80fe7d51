// Package config holds the persisted settings of a cmdtrack installation.
//
// Settings live in a TOML file (default $XDG_CONFIG_HOME/cmdtrack/config.toml,
// overridable with CMDTRACK_CONFIG). A missing file yields defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"
	"github.com/mitchellh/go-homedir"

	"github.com/roach88/cmdtrack/internal/projection"
)

// EnvConfigPath overrides the settings file location.
const EnvConfigPath = "CMDTRACK_CONFIG"

// DefaultDataDir is where databases live unless data_dir says otherwise.
const DefaultDataDir = "~/.cmdtrack"

// Settings is the on-disk configuration.
type Settings struct {
	// InstallationID names this installation's database. Assigned on
	// first use.
	InstallationID string `toml:"installation_id" json:"installation_id"`

	// DataDir is the database root. "~" expands to the home directory.
	DataDir string `toml:"data_dir" json:"data_dir"`

	// Catalogue is the command catalogue read by "show" when no
	// --catalogue flag is given.
	Catalogue string `toml:"catalogue" json:"catalogue"`

	View       string `toml:"view" json:"view"`
	DateFormat string `toml:"date_format" json:"date_format"`

	// TrackingEnabled gates ingestion. When false, invocations are dropped.
	TrackingEnabled bool `toml:"tracking_enabled" json:"tracking_enabled"`

	// ProtectData makes teardown close the store instead of destroying it.
	ProtectData bool `toml:"protect_data" json:"protect_data"`
}

// Default returns the settings used when no file exists.
func Default() *Settings {
	return &Settings{
		DataDir:         DefaultDataDir,
		View:            string(projection.PerCommand),
		DateFormat:      string(projection.FormatYearMonthDay),
		TrackingEnabled: true,
		ProtectData:     false,
	}
}

// DefaultPath returns the settings file location.
func DefaultPath() (string, error) {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("could not determine config directory: %w", err)
	}
	return filepath.Join(dir, "cmdtrack", "config.toml"), nil
}

// Load reads settings from path. Keys absent from the file keep their
// defaults; unknown keys are an error.
func Load(path string) (*Settings, error) {
	s := Default()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return s, nil
	}

	md, err := toml.DecodeFile(path, s)
	if err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return s, nil
}

// Save writes settings to path atomically (temp file + rename) with 0600
// permissions.
func Save(s *Settings, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".config-*.toml")
	if err != nil {
		return fmt.Errorf("failed to create temp config: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // No-op after a successful rename

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set config permissions: %w", err)
	}

	fmt.Fprintln(tmp, "# cmdtrack configuration")
	fmt.Fprintln(tmp, "")
	if err := toml.NewEncoder(tmp).Encode(s); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close config: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to replace config: %w", err)
	}
	return nil
}

// EnsureInstallationID assigns a UUIDv7 installation id if none is set.
// Reports whether the settings changed.
func (s *Settings) EnsureInstallationID() (bool, error) {
	if s.InstallationID != "" {
		return false, nil
	}
	id, err := uuid.NewV7()
	if err != nil {
		return false, fmt.Errorf("generate installation id: %w", err)
	}
	s.InstallationID = id.String()
	return true, nil
}

// ResolveDataDir returns DataDir with "~" expanded.
func (s *Settings) ResolveDataDir() (string, error) {
	dir := s.DataDir
	if dir == "" {
		dir = DefaultDataDir
	}
	expanded, err := homedir.Expand(dir)
	if err != nil {
		return "", fmt.Errorf("expand data_dir %q: %w", dir, err)
	}
	return expanded, nil
}

// ViewKind returns the parsed view setting.
func (s *Settings) ViewKind() (projection.ViewKind, error) {
	return projection.ParseViewKind(s.View)
}

// Format returns the parsed date format setting.
func (s *Settings) Format() (projection.DateFormat, error) {
	return projection.ParseDateFormat(s.DateFormat)
}

// ValidationError is a single invalid setting.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors collects every invalid setting.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Validate checks enumerated values.
func (s *Settings) Validate() error {
	var errs ValidateErrors

	if _, err := s.ViewKind(); err != nil {
		errs = append(errs, ValidationError{Field: "view", Message: err.Error()})
	}
	if _, err := s.Format(); err != nil {
		errs = append(errs, ValidationError{Field: "date_format", Message: err.Error()})
	}
	if s.InstallationID != "" && strings.ContainsAny(s.InstallationID, `/\`) {
		errs = append(errs, ValidationError{Field: "installation_id", Message: "must not contain path separators"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// setters maps setting keys to their string parsers.
var setters = map[string]func(*Settings, string) error{
	"installation_id": func(s *Settings, v string) error { s.InstallationID = v; return nil },
	"data_dir":        func(s *Settings, v string) error { s.DataDir = v; return nil },
	"catalogue":       func(s *Settings, v string) error { s.Catalogue = v; return nil },
	"view": func(s *Settings, v string) error {
		kind, err := projection.ParseViewKind(v)
		if err != nil {
			return err
		}
		s.View = string(kind)
		return nil
	},
	"date_format": func(s *Settings, v string) error {
		f, err := projection.ParseDateFormat(v)
		if err != nil {
			return err
		}
		s.DateFormat = string(f)
		return nil
	},
	"tracking_enabled": func(s *Settings, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("want true or false, got %q", v)
		}
		s.TrackingEnabled = b
		return nil
	},
	"protect_data": func(s *Settings, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("want true or false, got %q", v)
		}
		s.ProtectData = b
		return nil
	},
}

// Keys returns the settable keys in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Set assigns a setting from its string form.
func (s *Settings) Set(key, value string) error {
	set, ok := setters[strings.ToLower(strings.TrimSpace(key))]
	if !ok {
		return fmt.Errorf("unknown config key %q (valid keys: %s)", key, strings.Join(Keys(), ", "))
	}
	if err := set(s, value); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	return nil
}
