package timeutil

import (
	"errors"
	"time"
)

var ErrInvalidDate = errors.New("invalid date")

// DayFormat is the wire format for calendar dates throughout the service.
const DayFormat = "2006-01-02"

// EnsureLocation returns UTC when loc is nil.
func EnsureLocation(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}

// TruncateToDay normalizes the timestamp to midnight in the provided zone.
func TruncateToDay(t time.Time, loc *time.Location) time.Time {
	loc = EnsureLocation(loc)
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// Today returns midnight of the current day in the provided zone.
func Today(now time.Time, loc *time.Location) time.Time {
	return TruncateToDay(now, loc)
}

// ParseDay parses a "YYYY-MM-DD" date into midnight of the provided zone.
func ParseDay(value string, loc *time.Location) (time.Time, error) {
	loc = EnsureLocation(loc)
	t, err := time.ParseInLocation(DayFormat, value, loc)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// FormatDay renders a timestamp's calendar date.
func FormatDay(t time.Time) string { return t.Format(DayFormat) }

// SameDay reports whether two timestamps fall on the same calendar day in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	return TruncateToDay(a, loc).Equal(TruncateToDay(b, loc))
}
