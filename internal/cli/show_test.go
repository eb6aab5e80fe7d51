package cli

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cmdtrack/internal/config"
	"github.com/roach88/cmdtrack/internal/ir"
	"github.com/roach88/cmdtrack/internal/store"
)

// seed writes records straight into the env's database.
func seed(t *testing.T, env *testEnv, records ...ir.InvocationRecord) {
	t.Helper()
	dir := store.NewDirectory(env.DataDir)
	st, err := dir.Open("test-install")
	require.NoError(t, err)
	defer st.Close()

	for _, rec := range records {
		_, err := st.Insert(context.Background(), rec)
		require.NoError(t, err)
	}
}

type showResponse struct {
	Status string     `json:"status"`
	Data   ShowResult `json:"data"`
	Error  *CLIError  `json:"error"`
}

func runShowJSON(t *testing.T, env *testEnv, args ...string) ShowResult {
	t.Helper()
	out, _, err := env.run(append([]string{"--format", "json", "show"}, args...)...)
	require.NoError(t, err)

	var resp showResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Equal(t, "ok", resp.Status)
	return resp.Data
}

func findRow(rows []ShowRow, commandID string) []ShowRow {
	var out []ShowRow
	for _, r := range rows {
		if r.CommandID == commandID {
			out = append(out, r)
		}
	}
	return out
}

func TestShow_PerCommand(t *testing.T) {
	env := newTestEnv(t)
	seed(t, env,
		ir.InvocationRecord{CommandID: "editor:save-file", Day: 20240101, HotkeyCount: 1},
		ir.InvocationRecord{CommandID: "editor:save-file", Day: 20240102, PaletteCount: 1},
	)

	result := runShowJSON(t, env)
	assert.Equal(t, "per-command", string(result.View))
	assert.Equal(t, "Count per command", result.Label)
	assert.Equal(t, "Date of last use", result.DateHeader)
	require.Len(t, result.Rows, 3)

	saves := findRow(result.Rows, "editor:save-file")
	require.Len(t, saves, 1)
	assert.Equal(t, int64(1), saves[0].HotkeyCount)
	assert.Equal(t, int64(1), saves[0].PaletteCount)
	assert.Equal(t, int64(2), saves[0].TotalCount)
	assert.Equal(t, "2024/01/02", saves[0].Date)

	// Never used: no date.
	vault := findRow(result.Rows, "app:open-vault")
	require.Len(t, vault, 1)
	assert.Equal(t, "", vault[0].Date)
}

func TestShow_PerCommandAndDay(t *testing.T) {
	env := newTestEnv(t)
	seed(t, env,
		ir.InvocationRecord{CommandID: "editor:save-file", Day: 20240101, HotkeyCount: 1},
		ir.InvocationRecord{CommandID: "editor:save-file", Day: 20240102, PaletteCount: 1},
	)

	result := runShowJSON(t, env, "--view", "per-command-and-day", "--date-format", "dd/mm/yyyy")
	assert.Equal(t, "Date of use", result.DateHeader)
	require.Len(t, result.Rows, 4)

	saves := findRow(result.Rows, "editor:save-file")
	require.Len(t, saves, 2)
	assert.Equal(t, "01/01/2024", saves[0].Date)
	assert.Equal(t, "02/01/2024", saves[1].Date)
}

func TestShow_ViewFromSettings(t *testing.T) {
	env := newTestEnv(t, func(s *config.Settings) { s.View = "per-command-and-day" })
	result := runShowJSON(t, env)
	assert.Equal(t, "per-command-and-day", string(result.View))
}

func TestShow_Filters(t *testing.T) {
	env := newTestEnv(t)
	seed(t, env,
		ir.InvocationRecord{CommandID: "editor:save-file", Day: 20240101, HotkeyCount: 1},
		ir.InvocationRecord{CommandID: "editor:toggle-bold", Day: 20231231, HotkeyCount: 3},
	)

	result := runShowJSON(t, env, "--date", "startsWith:2023")
	require.Len(t, result.Rows, 1)
	assert.Equal(t, "editor:toggle-bold", result.Rows[0].CommandID)

	result = runShowJSON(t, env, "--command", "save")
	require.Len(t, result.Rows, 1)
	assert.Equal(t, "editor:save-file", result.Rows[0].CommandID)

	result = runShowJSON(t, env, "--hotkeys", "cmd+b")
	require.Len(t, result.Rows, 1)
	assert.Equal(t, "editor:toggle-bold", result.Rows[0].CommandID)
}

func TestShow_TextTable(t *testing.T) {
	env := newTestEnv(t)
	seed(t, env, ir.InvocationRecord{CommandID: "editor:toggle-bold", Day: 20240101, HotkeyCount: 3})

	out, _, err := env.run("show")
	require.NoError(t, err)
	assert.Contains(t, out, "Count per command")
	assert.Contains(t, out, "Date of last use")
	assert.Contains(t, out, "Toggle bold")
	assert.Contains(t, out, "Ctrl+B or Cmd+B")
	assert.Contains(t, out, "2024/01/01")
	assert.NotContains(t, out, "\x1b[", "no escape codes when not a terminal")
}

func TestShow_CatalogueFlagOverridesSettings(t *testing.T) {
	env := newTestEnv(t)
	other := filepath.Join(filepath.Dir(env.CataloguePath), "other.json")
	writeFile(t, other, `{"commands": [{"id": "x", "name": "Only one"}]}`)

	result := runShowJSON(t, env, "--catalogue", other)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, "Only one", result.Rows[0].Command)
}

func TestShow_NoCatalogue(t *testing.T) {
	env := newTestEnv(t, func(s *config.Settings) { s.Catalogue = "" })

	_, stderr, err := env.run("show")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stderr, "no catalogue")
}

func TestShow_InvalidFlags(t *testing.T) {
	env := newTestEnv(t)

	for _, args := range [][]string{
		{"show", "--view", "weekly"},
		{"show", "--date-format", "yy"},
		{"show", "--date", "between:2024"},
		{"show", "--lang", "not a tag!"},
	} {
		_, _, err := env.run(args...)
		require.Error(t, err, args)
		assert.Equal(t, ExitCommandError, GetExitCode(err), args)
	}
}
