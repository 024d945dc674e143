package engine

import (
	"fmt"
	"time"
)

// HalfHourSlots is the number of half-hour buckets in one day of meter data.
const HalfHourSlots = 48

// Reading is one day of electricity usage for a single meter point.
// HalfHours, when present, holds 48 half-hour bucket values in day order;
// sources without an interval breakdown leave it nil.
type Reading struct {
	Date       time.Time `json:"date"`
	MeterPoint string    `json:"meter_point"`
	UsageKWH   float64   `json:"usage_kwh"`
	HalfHours  []float64 `json:"half_hours,omitempty"`
}

// DateRange is a closed-closed calendar range; Start and End are midnights
// in the reporting timezone and Start never exceeds End.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewDateRange normalizes both bounds to midnight and validates ordering.
func NewDateRange(start, end time.Time) (DateRange, error) {
	start = truncateDay(start)
	end = truncateDay(end)
	if end.Before(start) {
		return DateRange{}, fmt.Errorf("date range start %s after end %s", start.Format(dayFormat), end.Format(dayFormat))
	}
	return DateRange{Start: start, End: end}, nil
}

// Days returns the number of calendar days covered, inclusive of both ends.
// The count runs on civil dates rather than wall-clock durations, so a DST
// transition inside the range cannot skew it.
func (r DateRange) Days() int {
	return int(civilUTC(r.End).Sub(civilUTC(r.Start)).Hours()/24) + 1
}

// Contains reports whether the calendar day of ts falls inside the range,
// regardless of the location ts was built in.
func (r DateRange) Contains(ts time.Time) bool {
	day := civilUTC(ts)
	return !day.Before(civilUTC(r.Start)) && !day.After(civilUTC(r.End))
}

// ShiftYears returns the range moved by the given number of calendar years.
func (r DateRange) ShiftYears(years int) DateRange {
	return DateRange{
		Start: r.Start.AddDate(years, 0, 0),
		End:   r.End.AddDate(years, 0, 0),
	}
}

const dayFormat = "2006-01-02"

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// civilUTC rebuilds the calendar day a timestamp carries as midnight UTC.
// Sources hand back the same date anchored in different zones (database DATE
// columns arrive at midnight UTC, resolver ranges at midnight in the
// reporting zone); comparing civil days keeps them interchangeable.
func civilUTC(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
