package engine

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

var ErrUnknownPolicy = errors.New("unknown match policy")

// Policy selects how days in the current period are paired with days in the
// comparison period. The three policies trade fairness criteria against each
// other and are first-class, selectable behavior per dashboard.
type Policy int

const (
	// PolicyExactMonthDay pairs days sharing month and day-of-month,
	// ignoring year. December 25 is only ever compared to December 25.
	PolicyExactMonthDay Policy = iota
	// PolicyWeekdayWeekOfMonth pairs days sharing month, week-of-month
	// bucket and weekday, so the second Tuesday of April lines up across
	// years even when the calendar date differs.
	PolicyWeekdayWeekOfMonth
	// PolicyCalendarOffset pairs each current day with the same date one
	// year earlier, with no filtering beyond data presence.
	PolicyCalendarOffset
)

func (p Policy) String() string {
	switch p {
	case PolicyExactMonthDay:
		return "exact_month_day"
	case PolicyWeekdayWeekOfMonth:
		return "weekday_week_of_month"
	case PolicyCalendarOffset:
		return "calendar_offset"
	}
	return fmt.Sprintf("policy(%d)", int(p))
}

// ParsePolicy maps configuration/query tokens onto a Policy.
func ParsePolicy(raw string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "exact_month_day":
		return PolicyExactMonthDay, nil
	case "weekday_week_of_month":
		return PolicyWeekdayWeekOfMonth, nil
	case "calendar_offset":
		return PolicyCalendarOffset, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPolicy, raw)
}

// MatchedPairSet holds the rows deemed comparable under a policy. For the
// key-based policies CurrentRows and ComparisonRows have equal length; under
// PolicyCalendarOffset both slices are aligned positionally by offset date
// and only positions present on both sides are included.
type MatchedPairSet struct {
	CurrentRows    []Reading
	ComparisonRows []Reading
	MatchedDays    int
	ExpectedDays   int
}

// MatchPercentage quantifies how representative the comparison is: the share
// of expected current-period days for which a valid pair exists.
func (m MatchedPairSet) MatchPercentage() float64 {
	if m.ExpectedDays <= 0 {
		return 0
	}
	return float64(m.MatchedDays) / float64(m.ExpectedDays) * 100
}

// Match applies a policy to one hotel's series over two resolved ranges.
// The series is expected to carry at most one row per date.
func Match(series []Reading, current, comparison DateRange, policy Policy) (MatchedPairSet, error) {
	switch policy {
	case PolicyExactMonthDay, PolicyWeekdayWeekOfMonth:
		return matchByKey(series, current, comparison, policy), nil
	case PolicyCalendarOffset:
		return matchByOffset(series, current), nil
	}
	return MatchedPairSet{}, fmt.Errorf("%w: %s", ErrUnknownPolicy, policy)
}

func matchKey(policy Policy, date time.Time) string {
	if policy == PolicyExactMonthDay {
		return date.Format("01-02")
	}
	weekOfMonth := (date.Day()-1)/7 + 1
	return fmt.Sprintf("%d-%d-%d", int(date.Month()), weekOfMonth, int(date.Weekday()))
}

func matchByKey(series []Reading, current, comparison DateRange, policy Policy) MatchedPairSet {
	currentByKey := make(map[string]Reading)
	comparisonByKey := make(map[string]Reading)
	for _, row := range series {
		switch {
		case current.Contains(row.Date):
			currentByKey[matchKey(policy, row.Date)] = row
		case comparison.Contains(row.Date):
			comparisonByKey[matchKey(policy, row.Date)] = row
		}
	}

	pairs := MatchedPairSet{ExpectedDays: current.Days()}
	for key, row := range currentByKey {
		other, ok := comparisonByKey[key]
		if !ok {
			continue
		}
		pairs.CurrentRows = append(pairs.CurrentRows, row)
		pairs.ComparisonRows = append(pairs.ComparisonRows, other)
	}
	sortPairsByCurrentDate(&pairs)
	pairs.MatchedDays = len(pairs.CurrentRows)
	return pairs
}

// matchByOffset derives the comparison day for each current day directly, so
// the comparison range itself is not consulted.
func matchByOffset(series []Reading, current DateRange) MatchedPairSet {
	byDay := make(map[string]Reading, len(series))
	for _, row := range series {
		byDay[truncateDay(row.Date).Format(dayFormat)] = row
	}

	pairs := MatchedPairSet{ExpectedDays: current.Days()}
	for day := current.Start; !day.After(current.End); day = day.AddDate(0, 0, 1) {
		cur, okCur := byDay[day.Format(dayFormat)]
		cmp, okCmp := byDay[day.AddDate(-1, 0, 0).Format(dayFormat)]
		if !okCur || !okCmp {
			continue
		}
		pairs.CurrentRows = append(pairs.CurrentRows, cur)
		pairs.ComparisonRows = append(pairs.ComparisonRows, cmp)
	}
	pairs.MatchedDays = len(pairs.CurrentRows)
	return pairs
}

func sortPairsByCurrentDate(pairs *MatchedPairSet) {
	idx := make([]int, len(pairs.CurrentRows))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool {
		return pairs.CurrentRows[idx[a]].Date.Before(pairs.CurrentRows[idx[b]].Date)
	})
	current := make([]Reading, len(idx))
	comparison := make([]Reading, len(idx))
	for pos, i := range idx {
		current[pos] = pairs.CurrentRows[i]
		comparison[pos] = pairs.ComparisonRows[i]
	}
	pairs.CurrentRows = current
	pairs.ComparisonRows = comparison
}
