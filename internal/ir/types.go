package ir

import (
	"fmt"
	"strings"
)

// InvocationRecord holds the counters for one command on one calendar day.
//
// RecordID is assigned by the store on insert and never changes. Ids increase
// in insertion order and are used as an age proxy by count-based eviction.
type InvocationRecord struct {
	RecordID     int64  `json:"record_id"`
	CommandID    string `json:"command_id"`
	Day          Day    `json:"day"`
	HotkeyCount  int64  `json:"hotkey_count"`
	PaletteCount int64  `json:"palette_count"`
}

// Total returns the sum of both counters.
func (r InvocationRecord) Total() int64 {
	return r.HotkeyCount + r.PaletteCount
}

// Channel is the trigger path of an invocation.
type Channel string

const (
	// ChannelHotkey marks an invocation triggered by a bound hotkey.
	ChannelHotkey Channel = "hotkey"

	// ChannelPalette marks an invocation chosen from the command palette.
	ChannelPalette Channel = "palette"
)

// ValidChannels lists the accepted channels in display order.
var ValidChannels = []Channel{ChannelHotkey, ChannelPalette}

// ParseChannel converts a user or host supplied string into a Channel.
// "command-palette" is accepted as an alias of palette.
func ParseChannel(s string) (Channel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hotkey":
		return ChannelHotkey, nil
	case "palette", "command-palette":
		return ChannelPalette, nil
	default:
		return "", fmt.Errorf("invalid channel %q: must be one of %v", s, ValidChannels)
	}
}

// Valid reports whether c is a known channel.
func (c Channel) Valid() bool {
	return c == ChannelHotkey || c == ChannelPalette
}

// Counters is a field-level delta applied to a record's counters.
type Counters struct {
	Hotkey  int64 `json:"hotkey"`
	Palette int64 `json:"palette"`
}

// CountersFor returns the delta for a single invocation on the given channel.
func CountersFor(c Channel) Counters {
	switch c {
	case ChannelHotkey:
		return Counters{Hotkey: 1}
	case ChannelPalette:
		return Counters{Palette: 1}
	default:
		return Counters{}
	}
}

// IsZero reports whether the delta changes nothing.
func (c Counters) IsZero() bool {
	return c.Hotkey == 0 && c.Palette == 0
}

// CommandDescriptor describes a command known to the host. It is supplied by
// the host catalogue and never persisted.
type CommandDescriptor struct {
	ID      string   `json:"id" yaml:"id"`
	Name    string   `json:"name" yaml:"name"`
	Hotkeys []string `json:"hotkeys,omitempty" yaml:"hotkeys,omitempty"`
}
