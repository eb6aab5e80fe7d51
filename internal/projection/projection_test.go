package projection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/roach88/cmdtrack/internal/ir"
)

func testCatalogue() []ir.CommandDescriptor {
	return []ir.CommandDescriptor{
		{ID: "editor:save-file", Name: "Save current file", Hotkeys: []string{"Ctrl+S"}},
		{ID: "app:open-vault", Name: "Open another vault"},
		{ID: "editor:toggle-bold", Name: "Toggle bold", Hotkeys: []string{"Ctrl+B", "Cmd+B"}},
	}
}

func rowFor(t *testing.T, rows []Row, commandID string) Row {
	t.Helper()
	for _, r := range rows {
		if r.CommandID == commandID {
			return r
		}
	}
	t.Fatalf("no row for %q", commandID)
	return Row{}
}

func rowsFor(rows []Row, commandID string) []Row {
	var out []Row
	for _, r := range rows {
		if r.CommandID == commandID {
			out = append(out, r)
		}
	}
	return out
}

func TestParseViewKind(t *testing.T) {
	tests := []struct {
		in   string
		want ViewKind
	}{
		{"per-command", PerCommand},
		{"per-command-and-day", PerCommandAndDay},
		{"Count per command", PerCommand},
		{"Count per command and day", PerCommandAndDay},
		{"  PER-COMMAND ", PerCommand},
	}
	for _, tt := range tests {
		got, err := ParseViewKind(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseViewKind("per-week")
	assert.Error(t, err)
}

func TestViewKind_LabelAndHeader(t *testing.T) {
	assert.Equal(t, "Count per command", PerCommand.Label())
	assert.Equal(t, "Count per command and day", PerCommandAndDay.Label())
	assert.Equal(t, "Date of last use", DateHeader(PerCommand))
	assert.Equal(t, "Date of use", DateHeader(PerCommandAndDay))
}

func TestBuild_InvalidKind(t *testing.T) {
	_, err := Build(ViewKind("bogus"), testCatalogue(), nil)
	assert.Error(t, err)
}

func TestBuild_EmptyHistoryListsEveryCommand(t *testing.T) {
	for _, kind := range ValidViewKinds {
		rows, err := Build(kind, testCatalogue(), nil)
		require.NoError(t, err)
		require.Len(t, rows, 3, kind)
		for _, r := range rows {
			assert.Zero(t, r.HotkeyCount)
			assert.Zero(t, r.PaletteCount)
			assert.True(t, r.Day.IsZero())
		}
	}
}

func TestBuild_HotkeysJoined(t *testing.T) {
	rows, err := Build(PerCommand, testCatalogue(), nil)
	require.NoError(t, err)

	assert.Equal(t, "Ctrl+B or Cmd+B", rowFor(t, rows, "editor:toggle-bold").Hotkeys)
	assert.Equal(t, "Ctrl+S", rowFor(t, rows, "editor:save-file").Hotkeys)
	assert.Equal(t, "", rowFor(t, rows, "app:open-vault").Hotkeys)
}

// Two days of use for one command: one lifetime row, two per-day rows.
func TestBuild_TwoDaysOneCommand(t *testing.T) {
	records := []ir.InvocationRecord{
		{RecordID: 1, CommandID: "editor:save-file", Day: 20240101, HotkeyCount: 1},
		{RecordID: 2, CommandID: "editor:save-file", Day: 20240102, PaletteCount: 1},
	}

	lifetime, err := Build(PerCommand, testCatalogue(), records)
	require.NoError(t, err)
	require.Len(t, lifetime, 3)

	row := rowFor(t, lifetime, "editor:save-file")
	assert.Equal(t, int64(1), row.HotkeyCount)
	assert.Equal(t, int64(1), row.PaletteCount)
	assert.Equal(t, int64(2), row.Total())
	assert.Equal(t, ir.Day(20240102), row.Day)

	perDay, err := Build(PerCommandAndDay, testCatalogue(), records)
	require.NoError(t, err)
	require.Len(t, perDay, 4)

	saves := rowsFor(perDay, "editor:save-file")
	require.Len(t, saves, 2)
	assert.Equal(t, ir.Day(20240101), saves[0].Day)
	assert.Equal(t, int64(1), saves[0].HotkeyCount)
	assert.Equal(t, ir.Day(20240102), saves[1].Day)
	assert.Equal(t, int64(1), saves[1].PaletteCount)
	assert.Equal(t, "Save current file", saves[1].Command)
	assert.Equal(t, "Ctrl+S", saves[1].Hotkeys)
}

func TestBuild_LifetimeDayIsMaximum(t *testing.T) {
	records := []ir.InvocationRecord{
		{RecordID: 5, CommandID: "editor:save-file", Day: 20240310, HotkeyCount: 2},
		{RecordID: 6, CommandID: "editor:save-file", Day: 20240301, HotkeyCount: 3},
	}
	rows, err := Build(PerCommand, testCatalogue(), records)
	require.NoError(t, err)

	row := rowFor(t, rows, "editor:save-file")
	assert.Equal(t, ir.Day(20240310), row.Day)
	assert.Equal(t, int64(5), row.HotkeyCount)
}

func TestBuild_UnknownCommandsIgnored(t *testing.T) {
	records := []ir.InvocationRecord{
		{RecordID: 1, CommandID: "plugin:removed", Day: 20240101, HotkeyCount: 9},
		{RecordID: 2, CommandID: "editor:save-file", Day: 20240101, HotkeyCount: 1},
	}
	for _, kind := range ValidViewKinds {
		rows, err := Build(kind, testCatalogue(), records)
		require.NoError(t, err)
		assert.Len(t, rows, 3)
		assert.Empty(t, rowsFor(rows, "plugin:removed"))
	}
}

func TestBuild_DuplicateCatalogueIDKeepsFirst(t *testing.T) {
	catalogue := []ir.CommandDescriptor{
		{ID: "x", Name: "First"},
		{ID: "x", Name: "Second"},
	}
	rows, err := Build(PerCommand, catalogue, []ir.InvocationRecord{
		{RecordID: 1, CommandID: "x", Day: 20240101, HotkeyCount: 1},
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "First", rows[0].Command)
	assert.Equal(t, int64(1), rows[0].HotkeyCount)
}

func TestBuild_SortedByCollatedName(t *testing.T) {
	catalogue := []ir.CommandDescriptor{
		{ID: "z", Name: "Zoom in"},
		{ID: "o", Name: "open file"},
		{ID: "b", Name: "Bold"},
		{ID: "a", Name: "äpfel"},
	}
	rows, err := Build(PerCommand, catalogue, nil)
	require.NoError(t, err)

	var names []string
	for _, r := range rows {
		names = append(names, r.Command)
	}
	assert.Equal(t, []string{"äpfel", "Bold", "open file", "Zoom in"}, names)
}

func TestBuild_WithLanguage(t *testing.T) {
	catalogue := []ir.CommandDescriptor{
		{ID: "1", Name: "zebra"},
		{ID: "2", Name: "alpha"},
	}
	rows, err := Build(PerCommand, catalogue, nil, WithLanguage(language.German))
	require.NoError(t, err)
	assert.Equal(t, "alpha", rows[0].Command)
	assert.Equal(t, "zebra", rows[1].Command)
}

func TestBuild_EqualNamesKeepCatalogueOrder(t *testing.T) {
	catalogue := []ir.CommandDescriptor{
		{ID: "second", Name: "Reload"},
		{ID: "first", Name: "Reload"},
	}
	records := []ir.InvocationRecord{
		{RecordID: 1, CommandID: "second", Day: 20240101, HotkeyCount: 1},
		{RecordID: 2, CommandID: "first", Day: 20240101, HotkeyCount: 1},
		{RecordID: 3, CommandID: "second", Day: 20240102, HotkeyCount: 1},
	}
	rows, err := Build(PerCommandAndDay, catalogue, records)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	// Extra rows stay grouped with their command.
	assert.Equal(t, "second", rows[0].CommandID)
	assert.Equal(t, ir.Day(20240101), rows[0].Day)
	assert.Equal(t, "second", rows[1].CommandID)
	assert.Equal(t, ir.Day(20240102), rows[1].Day)
	assert.Equal(t, "first", rows[2].CommandID)
}

func TestBuild_Idempotent(t *testing.T) {
	records := []ir.InvocationRecord{
		{RecordID: 1, CommandID: "editor:save-file", Day: 20240101, HotkeyCount: 4},
		{RecordID: 2, CommandID: "editor:toggle-bold", Day: 20240101, PaletteCount: 2},
		{RecordID: 3, CommandID: "editor:save-file", Day: 20240103, PaletteCount: 1},
	}
	for _, kind := range ValidViewKinds {
		first, err := Build(kind, testCatalogue(), records)
		require.NoError(t, err)
		second, err := Build(kind, testCatalogue(), records)
		require.NoError(t, err)
		assert.Equal(t, first, second, kind)
	}
}

func TestBuild_DoesNotMutateInputs(t *testing.T) {
	catalogue := testCatalogue()
	records := []ir.InvocationRecord{
		{RecordID: 1, CommandID: "editor:save-file", Day: 20240101, HotkeyCount: 4},
	}
	_, err := Build(PerCommand, catalogue, records)
	require.NoError(t, err)

	assert.Equal(t, testCatalogue(), catalogue)
	assert.Equal(t, int64(4), records[0].HotkeyCount)
}
