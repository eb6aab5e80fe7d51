package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/cmdtrack/internal/ir"
	"github.com/roach88/cmdtrack/internal/projection"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string                // Assertion type for categorization
	Expected string                // Human-readable expected outcome
	Actual   string                // Human-readable actual outcome
	Records  []ir.InvocationRecord // Store content for debugging context
}

// maxListedRecords caps the records printed in a failure message.
const maxListedRecords = 20

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	// Header with assertion type
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)

	// Expected vs Actual (most important info)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nRecords (%d):\n", len(e.Records))
	for i, rec := range e.Records {
		if i == maxListedRecords {
			fmt.Fprintf(&buf, "  ... %d more\n", len(e.Records)-maxListedRecords)
			break
		}
		fmt.Fprintf(&buf, "  [%d] %s %s hotkey=%d palette=%d\n",
			rec.RecordID, rec.CommandID, rec.Day, rec.HotkeyCount, rec.PaletteCount)
	}

	return buf.String()
}

// EvaluateAssertions checks every assertion against result and returns the
// failure messages.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluateAssertion(result, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

func evaluateAssertion(result *Result, a Assertion) error {
	switch a.Type {
	case AssertRecordCount:
		return assertRecordCount(result.Records, a)
	case AssertRecord:
		return assertRecord(result.Records, a)
	case AssertNoRecord:
		return assertNoRecord(result.Records, a)
	case AssertRecordIDs:
		return assertRecordIDs(result.Records, a)
	case AssertProjection:
		return assertProjection(result, a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

// assertRecordCount checks the number of stored records.
func assertRecordCount(records []ir.InvocationRecord, a Assertion) error {
	if len(records) == *a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertRecordCount,
		Expected: fmt.Sprintf("%d records", *a.Count),
		Actual:   fmt.Sprintf("%d records", len(records)),
		Records:  records,
	}
}

// assertRecord checks that exactly one record exists for (command, day) and
// that its counters match.
func assertRecord(records []ir.InvocationRecord, a Assertion) error {
	day, _ := ir.ParseDay(a.Day)
	matches := findRecords(records, a.Command, day)

	if len(matches) != 1 {
		return &AssertionError{
			Type:     AssertRecord,
			Expected: fmt.Sprintf("one record for %s on %s", a.Command, day),
			Actual:   fmt.Sprintf("%d records", len(matches)),
			Records:  records,
		}
	}

	if mismatch := counterMismatch(a, matches[0].HotkeyCount, matches[0].PaletteCount); mismatch != "" {
		return &AssertionError{
			Type:     AssertRecord,
			Expected: fmt.Sprintf("%s on %s with %s", a.Command, day, expectedCounters(a)),
			Actual:   mismatch,
			Records:  records,
		}
	}
	return nil
}

// assertNoRecord checks that command has no record (on day, if given).
func assertNoRecord(records []ir.InvocationRecord, a Assertion) error {
	var day ir.Day
	if a.Day != "" {
		day, _ = ir.ParseDay(a.Day)
	}
	matches := findRecords(records, a.Command, day)
	if len(matches) == 0 {
		return nil
	}

	where := "any day"
	if !day.IsZero() {
		where = day.String()
	}
	return &AssertionError{
		Type:     AssertNoRecord,
		Expected: fmt.Sprintf("no record for %s on %s", a.Command, where),
		Actual:   fmt.Sprintf("%d records (first id %d)", len(matches), matches[0].RecordID),
		Records:  records,
	}
}

// assertRecordIDs checks that the retained ids are exactly the contiguous
// range [min_id, max_id].
func assertRecordIDs(records []ir.InvocationRecord, a Assertion) error {
	want := a.MaxID - a.MinID + 1
	fail := func(actual string) error {
		return &AssertionError{
			Type:     AssertRecordIDs,
			Expected: fmt.Sprintf("ids %d..%d (%d records)", a.MinID, a.MaxID, want),
			Actual:   actual,
			Records:  records,
		}
	}

	if int64(len(records)) != want {
		return fail(fmt.Sprintf("%d records", len(records)))
	}
	for i, rec := range records {
		if rec.RecordID != a.MinID+int64(i) {
			return fail(fmt.Sprintf("record %d has id %d", i, rec.RecordID))
		}
	}
	return nil
}

// assertProjection checks a view's rows for one command.
func assertProjection(result *Result, a Assertion) error {
	kind, _ := projection.ParseViewKind(a.View)

	var rows []projection.Row
	for _, row := range result.Projections[kind] {
		if row.CommandID == a.Command {
			rows = append(rows, row)
		}
	}

	fail := func(expected, actual string) error {
		return &AssertionError{
			Type:     AssertProjection,
			Expected: fmt.Sprintf("%s: %s", kind, expected),
			Actual:   actual,
			Records:  result.Records,
		}
	}

	if a.Rows != nil && len(rows) != *a.Rows {
		return fail(fmt.Sprintf("%d rows for %s", *a.Rows, a.Command), fmt.Sprintf("%d rows", len(rows)))
	}

	if a.Day == "" && a.HotkeyCount == nil && a.PaletteCount == nil {
		return nil
	}

	// Counter and day checks apply to the row for Day, or to the only row.
	var target *projection.Row
	if a.Day != "" {
		day, _ := ir.ParseDay(a.Day)
		for i := range rows {
			if rows[i].Day == day {
				target = &rows[i]
				break
			}
		}
		if target == nil {
			return fail(fmt.Sprintf("row for %s on %s", a.Command, day), "not found")
		}
	} else {
		if len(rows) != 1 {
			return fail(fmt.Sprintf("one row for %s", a.Command), fmt.Sprintf("%d rows", len(rows)))
		}
		target = &rows[0]
	}

	if mismatch := counterMismatch(a, target.HotkeyCount, target.PaletteCount); mismatch != "" {
		return fail(fmt.Sprintf("%s with %s", a.Command, expectedCounters(a)), mismatch)
	}
	return nil
}

// findRecords returns the records for command, on day unless day is zero.
func findRecords(records []ir.InvocationRecord, command string, day ir.Day) []ir.InvocationRecord {
	var out []ir.InvocationRecord
	for _, rec := range records {
		if rec.CommandID != command {
			continue
		}
		if !day.IsZero() && rec.Day != day {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func counterMismatch(a Assertion, hotkey, palette int64) string {
	var parts []string
	if a.HotkeyCount != nil && *a.HotkeyCount != hotkey {
		parts = append(parts, fmt.Sprintf("hotkey_count=%d", hotkey))
	}
	if a.PaletteCount != nil && *a.PaletteCount != palette {
		parts = append(parts, fmt.Sprintf("palette_count=%d", palette))
	}
	return strings.Join(parts, ", ")
}

func expectedCounters(a Assertion) string {
	var parts []string
	if a.HotkeyCount != nil {
		parts = append(parts, fmt.Sprintf("hotkey_count=%d", *a.HotkeyCount))
	}
	if a.PaletteCount != nil {
		parts = append(parts, fmt.Sprintf("palette_count=%d", *a.PaletteCount))
	}
	return strings.Join(parts, ", ")
}
