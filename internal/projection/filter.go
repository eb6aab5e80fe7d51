package projection

import (
	"fmt"
	"strings"
)

// MatchOp is a text comparison used by date filters.
type MatchOp string

const (
	OpContains    MatchOp = "contains"
	OpNotContains MatchOp = "notContains"
	OpEquals      MatchOp = "equals"
	OpNotEqual    MatchOp = "notEqual"
	OpStartsWith  MatchOp = "startsWith"
	OpEndsWith    MatchOp = "endsWith"
)

var validOps = []MatchOp{OpContains, OpNotContains, OpEquals, OpNotEqual, OpStartsWith, OpEndsWith}

// DateMatch matches the formatted date of a row against Text.
type DateMatch struct {
	Op   MatchOp
	Text string
}

// ParseDateMatch parses "op:text", e.g. "startsWith:2024/01". Without an
// op prefix the match is "contains".
func ParseDateMatch(s string) (DateMatch, error) {
	op, text, found := strings.Cut(s, ":")
	if !found {
		return DateMatch{Op: OpContains, Text: s}, nil
	}
	for _, valid := range validOps {
		if strings.EqualFold(op, string(valid)) {
			return DateMatch{Op: valid, Text: text}, nil
		}
	}
	return DateMatch{}, fmt.Errorf("invalid date match op %q: must be one of %v", op, validOps)
}

// IsZero reports whether m filters nothing.
func (m DateMatch) IsZero() bool {
	return m.Op == "" && m.Text == ""
}

// Match reports whether the formatted date satisfies m.
func (m DateMatch) Match(date string) bool {
	switch m.Op {
	case OpContains:
		return strings.Contains(date, m.Text)
	case OpNotContains:
		return !strings.Contains(date, m.Text)
	case OpEquals:
		return date == m.Text
	case OpNotEqual:
		return date != m.Text
	case OpStartsWith:
		return strings.HasPrefix(date, m.Text)
	case OpEndsWith:
		return strings.HasSuffix(date, m.Text)
	default:
		return false
	}
}

// Filter narrows a row set. Zero fields filter nothing.
type Filter struct {
	Command string // case-insensitive substring of the command name
	Hotkeys string // case-insensitive substring of the hotkey labels
	Date    DateMatch
}

// Apply returns the rows matching f. Dates are compared in format.
func Apply(rows []Row, f Filter, format DateFormat) []Row {
	out := make([]Row, 0, len(rows))
	command := strings.ToLower(f.Command)
	hotkeys := strings.ToLower(f.Hotkeys)
	for _, row := range rows {
		if command != "" && !strings.Contains(strings.ToLower(row.Command), command) {
			continue
		}
		if hotkeys != "" && !strings.Contains(strings.ToLower(row.Hotkeys), hotkeys) {
			continue
		}
		if !f.Date.IsZero() && !f.Date.Match(FormatDay(row.Day, format)) {
			continue
		}
		out = append(out, row)
	}
	return out
}
