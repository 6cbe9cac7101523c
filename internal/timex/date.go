package timex

import (
	"fmt"
	"time"
)

// DateLayout is the ISO calendar date format used on the wire (yyyy-MM-dd).
const DateLayout = time.DateOnly

// Date returns the calendar day of t as observed in t's location, expressed
// as midnight UTC. Two instants on the same local day yield equal Dates.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NewDate builds a calendar date at midnight UTC.
func NewDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a yyyy-MM-dd string into a calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected yyyy-MM-dd", s)
	}
	return t, nil
}

// FormatDate renders a calendar date as yyyy-MM-dd.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// Today returns the current calendar date in loc. A nil loc means UTC.
func Today(now func() time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return Date(now().In(loc))
}
