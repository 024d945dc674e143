package engine

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrUnknownSelection = errors.New("unknown period selection")

// SelectionKind enumerates the fixed period vocabulary exposed to dashboards.
type SelectionKind int

const (
	SelectionLastNDays SelectionKind = iota
	SelectionYearToDate
	SelectionThisMonth
	SelectionPreviousMonth
	SelectionNamedMonth
	SelectionChallenge
)

// Selection is a parsed period choice. NamedMonth carries Month/Year,
// LastNDays carries Days.
type Selection struct {
	Kind  SelectionKind
	Days  int
	Month time.Month
	Year  int
	label string
}

// Label returns the normalized query token for the selection (e.g. "last_7_days").
func (s Selection) Label() string { return s.label }

// ParseSelection accepts the period tokens used by the dashboard API:
// "last_7_days", "last_30_days", "year_to_date", "this_month",
// "previous_month", "challenge" and named months as "YYYY-MM".
func ParseSelection(raw string) (Selection, error) {
	token := strings.ToLower(strings.TrimSpace(raw))
	switch token {
	case "last_7_days":
		return Selection{Kind: SelectionLastNDays, Days: 7, label: token}, nil
	case "last_30_days":
		return Selection{Kind: SelectionLastNDays, Days: 30, label: token}, nil
	case "year_to_date":
		return Selection{Kind: SelectionYearToDate, label: token}, nil
	case "this_month":
		return Selection{Kind: SelectionThisMonth, label: token}, nil
	case "previous_month":
		return Selection{Kind: SelectionPreviousMonth, label: token}, nil
	case "challenge":
		return Selection{Kind: SelectionChallenge, label: token}, nil
	}
	if month, year, ok := parseNamedMonth(token); ok {
		return Selection{Kind: SelectionNamedMonth, Month: month, Year: year, label: token}, nil
	}
	return Selection{}, fmt.Errorf("%w: %q", ErrUnknownSelection, raw)
}

func parseNamedMonth(token string) (time.Month, int, bool) {
	parts := strings.SplitN(token, "-", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil || year < 1 {
		return 0, 0, false
	}
	monthNum, err := strconv.Atoi(parts[1])
	if err != nil || monthNum < 1 || monthNum > 12 {
		return 0, 0, false
	}
	return time.Month(monthNum), year, true
}

// ResolvedPeriod is the concrete outcome of resolving a Selection.
// Projected is set when the challenge window lies in the future and the
// prior-year window is substituted; callers must present such data as a
// projection, not actuals.
type ResolvedPeriod struct {
	Range     DateRange
	Projected bool
}

// Resolve turns a selection plus "today" into a concrete closed-closed range.
// The challenge window is injected configuration rather than a literal.
func Resolve(sel Selection, today time.Time, challenge DateRange) (ResolvedPeriod, error) {
	day := truncateDay(today)
	switch sel.Kind {
	case SelectionLastNDays:
		if sel.Days <= 0 {
			return ResolvedPeriod{}, fmt.Errorf("%w: non-positive day count", ErrUnknownSelection)
		}
		return ResolvedPeriod{Range: DateRange{Start: day.AddDate(0, 0, -sel.Days), End: day}}, nil
	case SelectionYearToDate:
		start := time.Date(day.Year(), time.January, 1, 0, 0, 0, 0, day.Location())
		return ResolvedPeriod{Range: DateRange{Start: start, End: day}}, nil
	case SelectionThisMonth:
		start := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
		return ResolvedPeriod{Range: DateRange{Start: start, End: day}}, nil
	case SelectionPreviousMonth:
		firstOfCurrent := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
		lastOfPrevious := firstOfCurrent.AddDate(0, 0, -1)
		firstOfPrevious := time.Date(lastOfPrevious.Year(), lastOfPrevious.Month(), 1, 0, 0, 0, 0, day.Location())
		return ResolvedPeriod{Range: DateRange{Start: firstOfPrevious, End: lastOfPrevious}}, nil
	case SelectionNamedMonth:
		start := time.Date(sel.Year, sel.Month, 1, 0, 0, 0, 0, day.Location())
		end := start.AddDate(0, 1, -1)
		return ResolvedPeriod{Range: DateRange{Start: start, End: end}}, nil
	case SelectionChallenge:
		if challenge.Start.IsZero() || challenge.End.IsZero() {
			return ResolvedPeriod{}, fmt.Errorf("%w: challenge window not configured", ErrUnknownSelection)
		}
		if day.Before(challenge.Start) {
			return ResolvedPeriod{Range: challenge.ShiftYears(-1), Projected: true}, nil
		}
		return ResolvedPeriod{Range: challenge}, nil
	}
	return ResolvedPeriod{}, fmt.Errorf("%w: kind %d", ErrUnknownSelection, sel.Kind)
}

// ComparisonRange returns the prior-year window for a current range: the end
// moves back exactly one calendar year and the start is re-anchored to keep
// the current range's day span. Re-anchoring keeps day counts equal across
// leap-year boundaries, which the key-based match policies rely on.
func ComparisonRange(current DateRange) DateRange {
	end := current.End.AddDate(-1, 0, 0)
	return DateRange{Start: end.AddDate(0, 0, -(current.Days() - 1)), End: end}
}
