package cli

import (
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"golang.org/x/term"

	"github.com/roach88/cmdtrack/internal/ir"
	"github.com/roach88/cmdtrack/internal/projection"
)

// styles renders colour only when writing to a terminal.
type styles struct {
	enabled bool

	header lipgloss.Style
	cell   lipgloss.Style
	count  lipgloss.Style
	title  lipgloss.Style
	border lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		enabled: shouldStyle(w),
		header:  r.NewStyle().Bold(true).Padding(0, 1),
		cell:    r.NewStyle().Padding(0, 1),
		count:   r.NewStyle().Padding(0, 1).Align(lipgloss.Right),
		title:   r.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#559db6", Dark: "#a3ddef"}),
		border:  r.NewStyle().Faint(true),
	}
}

func shouldStyle(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	if !term.IsTerminal(int(f.Fd())) {
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if strings.EqualFold(strings.TrimSpace(os.Getenv("TERM")), "dumb") {
		return false
	}
	return true
}

func (s styles) Title(text string) string {
	if !s.enabled {
		return text
	}
	return s.title.Render(text)
}

// Columns from firstCountColumn on hold counts and are right-aligned.
const firstCountColumn = 3

// renderRows draws rows as a bordered table.
func renderRows(w io.Writer, kind projection.ViewKind, rows []ShowRow) string {
	st := newStyles(w)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(st.border).
		Headers("Command", "Hotkeys", projection.DateHeader(kind), "Hotkey", "Palette", "Total").
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return st.header
			case col >= firstCountColumn:
				return st.count
			default:
				return st.cell
			}
		})

	for _, r := range rows {
		t.Row(
			r.Command,
			r.Hotkeys,
			r.Date,
			strconv.FormatInt(r.HotkeyCount, 10),
			strconv.FormatInt(r.PaletteCount, 10),
			strconv.FormatInt(r.TotalCount, 10),
		)
	}
	return t.Render()
}

// renderRecords draws raw store rows. Every column but the command is
// numeric.
func renderRecords(w io.Writer, records []ir.InvocationRecord) string {
	st := newStyles(w)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(st.border).
		Headers("ID", "Command", "Day", "Hotkey", "Palette").
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return st.header
			case col == 1:
				return st.cell
			default:
				return st.count
			}
		})

	for _, rec := range records {
		t.Row(
			strconv.FormatInt(rec.RecordID, 10),
			rec.CommandID,
			rec.Day.String(),
			strconv.FormatInt(rec.HotkeyCount, 10),
			strconv.FormatInt(rec.PaletteCount, 10),
		)
	}
	return t.Render()
}
