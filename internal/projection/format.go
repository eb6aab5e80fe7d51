package projection

import (
	"fmt"
	"strings"

	"github.com/roach88/cmdtrack/internal/ir"
)

// DateFormat is a display-only rendering of a Day. Stored days are always
// YYYYMMDD integers.
type DateFormat string

const (
	FormatYearMonthDay DateFormat = "yyyy/mm/dd"
	FormatMonthDayYear DateFormat = "mm/dd/yyyy"
	FormatDayMonthYear DateFormat = "dd/mm/yyyy"
)

// ValidDateFormats lists the accepted formats.
var ValidDateFormats = []DateFormat{FormatYearMonthDay, FormatMonthDayYear, FormatDayMonthYear}

// ParseDateFormat validates a format name.
func ParseDateFormat(s string) (DateFormat, error) {
	f := DateFormat(strings.ToLower(strings.TrimSpace(s)))
	for _, valid := range ValidDateFormats {
		if f == valid {
			return f, nil
		}
	}
	return "", fmt.Errorf("invalid date format %q: must be one of %v", s, ValidDateFormats)
}

// FormatDay renders d in format f. A zero day renders as "". Unknown formats
// fall back to yyyy/mm/dd.
func FormatDay(d ir.Day, f DateFormat) string {
	if d.IsZero() {
		return ""
	}
	s := d.String()
	yyyy, mm, dd := s[0:4], s[4:6], s[6:8]
	switch f {
	case FormatMonthDayYear:
		return mm + "/" + dd + "/" + yyyy
	case FormatDayMonthYear:
		return dd + "/" + mm + "/" + yyyy
	default:
		return yyyy + "/" + mm + "/" + dd
	}
}
