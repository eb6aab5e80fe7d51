package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONFieldNaming(t *testing.T) {
	rec := InvocationRecord{
		RecordID:     7,
		CommandID:    "editor:save-file",
		Day:          20240102,
		HotkeyCount:  3,
		PaletteCount: 1,
	}
	data, err := json.Marshal(rec)
	require.NoError(t, err)

	assert.Contains(t, string(data), `"record_id":7`)
	assert.Contains(t, string(data), `"command_id"`)
	assert.Contains(t, string(data), `"day":20240102`)
	assert.Contains(t, string(data), `"hotkey_count"`)
	assert.Contains(t, string(data), `"palette_count"`)

	assert.NotContains(t, string(data), `"recordId"`)
	assert.NotContains(t, string(data), `"cmdPaletteCount"`)
}

func TestInvocationRecord_Total(t *testing.T) {
	rec := InvocationRecord{HotkeyCount: 2, PaletteCount: 5}
	assert.Equal(t, int64(7), rec.Total())
}

func TestParseChannel(t *testing.T) {
	tests := []struct {
		in      string
		want    Channel
		wantErr bool
	}{
		{"hotkey", ChannelHotkey, false},
		{"HOTKEY", ChannelHotkey, false},
		{"palette", ChannelPalette, false},
		{"command-palette", ChannelPalette, false},
		{" palette ", ChannelPalette, false},
		{"", "", true},
		{"mouse", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseChannel(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.Valid())
		})
	}
}

func TestCountersFor(t *testing.T) {
	assert.Equal(t, Counters{Hotkey: 1}, CountersFor(ChannelHotkey))
	assert.Equal(t, Counters{Palette: 1}, CountersFor(ChannelPalette))
	assert.True(t, CountersFor(Channel("bogus")).IsZero())
}
