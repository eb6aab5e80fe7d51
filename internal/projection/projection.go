// Package projection turns the stored records plus the host's command
// catalogue into display rows.
//
// Projections are pure functions of (kind, catalogue, records): they never
// touch the store, and re-running one over the same inputs yields the same
// rows. Showing newer data means reading the records again and rebuilding.
package projection

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/roach88/cmdtrack/internal/ir"
)

// ViewKind selects how records are aggregated.
type ViewKind string

const (
	// PerCommand sums every day into one lifetime row per command.
	PerCommand ViewKind = "per-command"

	// PerCommandAndDay emits one row per (command, day) with usage.
	PerCommandAndDay ViewKind = "per-command-and-day"
)

// ValidViewKinds lists the accepted view kinds.
var ValidViewKinds = []ViewKind{PerCommand, PerCommandAndDay}

// ParseViewKind accepts the canonical names and the long labels used by the
// settings surface ("Count per command", "Count per command and day").
func ParseViewKind(s string) (ViewKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(PerCommand), "count per command", "percmd":
		return PerCommand, nil
	case string(PerCommandAndDay), "count per command and day", "percmdandday":
		return PerCommandAndDay, nil
	default:
		return "", fmt.Errorf("invalid view %q: must be one of %v", s, ValidViewKinds)
	}
}

// Valid reports whether k is a known view kind.
func (k ViewKind) Valid() bool {
	return k == PerCommand || k == PerCommandAndDay
}

// Label returns the human readable name of the view.
func (k ViewKind) Label() string {
	switch k {
	case PerCommand:
		return "Count per command"
	case PerCommandAndDay:
		return "Count per command and day"
	default:
		return string(k)
	}
}

// DateHeader returns the column title for the date column of a view.
func DateHeader(k ViewKind) string {
	if k == PerCommand {
		return "Date of last use"
	}
	return "Date of use"
}

// Row is one display row.
//
// Day is zero for commands that were never used.
type Row struct {
	CommandID    string `json:"command_id"`
	Command      string `json:"command"`
	Hotkeys      string `json:"hotkeys"`
	Day          ir.Day `json:"day,omitempty"`
	HotkeyCount  int64  `json:"hotkey_count"`
	PaletteCount int64  `json:"palette_count"`
}

// Total returns hotkey plus palette count.
func (r Row) Total() int64 {
	return r.HotkeyCount + r.PaletteCount
}

// HotkeySeparator joins multiple hotkeys bound to one command.
const HotkeySeparator = " or "

// Option configures Build.
type Option func(*options)

type options struct {
	lang language.Tag
}

// WithLanguage sets the collation language used to order rows by command
// name. Default: language.Und (root collation).
func WithLanguage(tag language.Tag) Option {
	return func(o *options) {
		o.lang = tag
	}
}

// entry is a row plus the catalogue position of its command.
type entry struct {
	row   Row
	order int
	used  bool
}

// Build produces display rows for kind.
//
// Every catalogued command gets a row, used or not. Records for commands not
// in the catalogue are ignored. Duplicate catalogue ids keep their first
// entry. Rows are ordered by command name under the collation language;
// ties keep catalogue order, and the extra per-day rows of a command follow
// its first row in record order.
func Build(kind ViewKind, catalogue []ir.CommandDescriptor, records []ir.InvocationRecord, opts ...Option) ([]Row, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("build projection: invalid view %q", kind)
	}
	cfg := options{lang: language.Und}
	for _, opt := range opts {
		opt(&cfg)
	}

	entries, index := baseEntries(catalogue)

	switch kind {
	case PerCommand:
		for _, rec := range records {
			i, ok := index[rec.CommandID]
			if !ok {
				continue
			}
			e := &entries[i]
			e.row.HotkeyCount += rec.HotkeyCount
			e.row.PaletteCount += rec.PaletteCount
			if rec.Day > e.row.Day {
				e.row.Day = rec.Day
			}
		}

	case PerCommandAndDay:
		var extra []entry
		for _, rec := range records {
			i, ok := index[rec.CommandID]
			if !ok {
				continue
			}
			e := &entries[i]
			if !e.used {
				e.used = true
				e.row.Day = rec.Day
				e.row.HotkeyCount = rec.HotkeyCount
				e.row.PaletteCount = rec.PaletteCount
				continue
			}
			row := e.row
			row.Day = rec.Day
			row.HotkeyCount = rec.HotkeyCount
			row.PaletteCount = rec.PaletteCount
			extra = append(extra, entry{row: row, order: e.order})
		}
		entries = append(entries, extra...)
	}

	sortEntries(entries, collate.New(cfg.lang))

	rows := make([]Row, len(entries))
	for i, e := range entries {
		rows[i] = e.row
	}
	return rows, nil
}

// baseEntries builds one zero-count entry per distinct catalogue id.
func baseEntries(catalogue []ir.CommandDescriptor) ([]entry, map[string]int) {
	entries := make([]entry, 0, len(catalogue))
	index := make(map[string]int, len(catalogue))
	for _, cmd := range catalogue {
		if _, dup := index[cmd.ID]; dup {
			continue
		}
		index[cmd.ID] = len(entries)
		entries = append(entries, entry{
			row: Row{
				CommandID: cmd.ID,
				Command:   cmd.Name,
				Hotkeys:   strings.Join(cmd.Hotkeys, HotkeySeparator),
			},
			order: len(entries),
		})
	}
	return entries, index
}

func sortEntries(entries []entry, c *collate.Collator) {
	sort.SliceStable(entries, func(i, j int) bool {
		if cmp := c.CompareString(entries[i].row.Command, entries[j].row.Command); cmp != 0 {
			return cmp < 0
		}
		return entries[i].order < entries[j].order
	})
}
