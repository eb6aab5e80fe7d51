package tracker

import "time"

// Clock supplies the wall time used to pick today's record.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the system time in Location (time.Local when nil).
type SystemClock struct {
	Location *time.Location
}

// Now returns the current time in the clock's location.
func (c SystemClock) Now() time.Time {
	loc := c.Location
	if loc == nil {
		loc = time.Local
	}
	return time.Now().In(loc)
}
