package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/cmdtrack/internal/config"
)

const testCatalogueYAML = `commands:
  - id: editor:save-file
    name: Save current file
    hotkeys: ["Ctrl+S"]
  - id: editor:toggle-bold
    name: Toggle bold
    hotkeys: ["Ctrl+B", "Cmd+B"]
  - id: app:open-vault
    name: Open another vault
`

// testEnv is an isolated installation: its own settings file, data
// directory and catalogue.
type testEnv struct {
	ConfigPath    string
	DataDir       string
	CataloguePath string
}

func newTestEnv(t *testing.T, mutate ...func(*config.Settings)) *testEnv {
	t.Helper()
	dir := t.TempDir()

	env := &testEnv{
		ConfigPath:    filepath.Join(dir, "config.toml"),
		DataDir:       filepath.Join(dir, "data"),
		CataloguePath: filepath.Join(dir, "commands.yaml"),
	}
	require.NoError(t, os.WriteFile(env.CataloguePath, []byte(testCatalogueYAML), 0o600))

	settings := config.Default()
	settings.InstallationID = "test-install"
	settings.DataDir = env.DataDir
	settings.Catalogue = env.CataloguePath
	for _, fn := range mutate {
		fn(settings)
	}
	require.NoError(t, config.Save(settings, env.ConfigPath))
	return env
}

func (e *testEnv) DatabasePath() string {
	return filepath.Join(e.DataDir, "test-install-CommandTracker.db")
}

// run executes the root command with --config pointed at the env.
func (e *testEnv) run(args ...string) (stdout, stderr string, err error) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(append([]string{"--config", e.ConfigPath}, args...))
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}
