package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type validateResponse struct {
	Status string           `json:"status"`
	Data   ValidationResult `json:"data"`
}

func TestValidate_SettingsCatalogue(t *testing.T) {
	env := newTestEnv(t)

	out, _, err := env.run("validate")
	require.NoError(t, err)
	assert.Contains(t, out, "✓")
	assert.Contains(t, out, "3 commands")
	assert.Contains(t, out, WarnNoHotkeys, "app:open-vault has no hotkeys")
}

func TestValidate_CataloguesInEveryFormat(t *testing.T) {
	env := newTestEnv(t)
	for _, name := range []string{"commands.yaml", "commands.json", "commands.cue"} {
		t.Run(name, func(t *testing.T) {
			out, _, err := env.run("--format", "json", "validate", filepath.Join("..", "catalogue", "testdata", name))
			require.NoError(t, err)

			var resp validateResponse
			require.NoError(t, json.Unmarshal([]byte(out), &resp))
			assert.Equal(t, "ok", resp.Status)
			assert.True(t, resp.Data.Valid)
			assert.Positive(t, resp.Data.Commands)
		})
	}
}

func TestValidate_MissingID(t *testing.T) {
	env := newTestEnv(t)

	out, _, err := env.run("--format", "json", "validate", filepath.Join("..", "catalogue", "testdata", "missing_id.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp validateResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.False(t, resp.Data.Valid)
	require.Len(t, resp.Data.Errors, 1)
	assert.Equal(t, "CATALOGUE_INVALID", resp.Data.Errors[0].Code)
	assert.Equal(t, 4, resp.Data.Errors[0].Line)
}

func TestValidate_DuplicateIDs(t *testing.T) {
	env := newTestEnv(t)
	path := filepath.Join(t.TempDir(), "dup.yaml")
	writeFile(t, path, `commands:
  - id: a
    name: First
    hotkeys: ["Ctrl+A"]
  - id: a
    name: Second
    hotkeys: ["Ctrl+Shift+A"]
`)

	out, _, err := env.run("validate", path)
	require.NoError(t, err, "duplicates are warnings")
	assert.Contains(t, out, WarnDuplicateID)

	_, _, err = env.run("validate", "--strict", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestValidate_UnreadableCatalogue(t *testing.T) {
	env := newTestEnv(t)

	_, stderr, err := env.run("validate", filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stderr, ErrCodeCatalogue)
}

func TestValidate_UnsupportedExtension(t *testing.T) {
	env := newTestEnv(t)
	path := filepath.Join(t.TempDir(), "commands.txt")
	writeFile(t, path, "commands: []\n")

	_, _, err := env.run("validate", path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
