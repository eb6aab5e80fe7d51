package ir

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Day is a calendar date encoded as a YYYYMMDD integer.
// The zero Day means "no date".
type Day int64

// DayOf returns the calendar day of t in t's location.
func DayOf(t time.Time) Day {
	y, m, d := t.Date()
	return Day(y*10000 + int(m)*100 + d)
}

// ParseDay parses "YYYYMMDD", "YYYY-MM-DD" or "YYYY/MM/DD".
func ParseDay(s string) (Day, error) {
	digits := strings.NewReplacer("-", "", "/", "").Replace(strings.TrimSpace(s))
	if len(digits) != 8 {
		return 0, fmt.Errorf("invalid day %q: want YYYYMMDD", s)
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid day %q: %w", s, err)
	}
	d := Day(n)
	if !d.Valid() {
		return 0, fmt.Errorf("invalid day %q: not a calendar date", s)
	}
	return d, nil
}

// Year, Month and Date split the encoded value.
func (d Day) Year() int         { return int(d / 10000) }
func (d Day) Month() time.Month { return time.Month(d / 100 % 100) }
func (d Day) Date() int         { return int(d % 100) }

// IsZero reports whether d carries no date.
func (d Day) IsZero() bool {
	return d == 0
}

// Valid reports whether d encodes an existing calendar date.
func (d Day) Valid() bool {
	if d <= 0 {
		return false
	}
	t := d.Time()
	return DayOf(t) == d
}

// Time returns midnight UTC of d.
func (d Day) Time() time.Time {
	return time.Date(d.Year(), d.Month(), d.Date(), 0, 0, 0, 0, time.UTC)
}

// AddDays returns d shifted by n calendar days.
func (d Day) AddDays(n int) Day {
	return DayOf(d.Time().AddDate(0, 0, n))
}

// String returns the eight digit form.
func (d Day) String() string {
	if d.IsZero() {
		return ""
	}
	return fmt.Sprintf("%08d", int64(d))
}
