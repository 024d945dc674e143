package comparison

import (
	"context"
	"fmt"
	"sort"

	"github.com/fourcgroup/earthday-backend/internal/engine"
	"github.com/fourcgroup/earthday-backend/internal/timeutil"
)

// LeaderboardEntry is one hotel's standing in the group race.
type LeaderboardEntry struct {
	Rank                 int     `json:"rank"`
	Name                 string  `json:"name"`
	Slug                 string  `json:"slug"`
	CurrentTotalKWH      float64 `json:"current_total_kwh"`
	ComparisonTotalKWH   float64 `json:"comparison_total_kwh"`
	ReductionPercent     float64 `json:"reduction_percent"`
	KWHSaved             float64 `json:"kwh_saved"`
	CO2SavedKG           float64 `json:"co2_saved_kg"`
	TargetProgress       float64 `json:"target_progress"`
	TargetSavingsPercent float64 `json:"target_savings_percent"`
}

// Leaderboard is the group-wide ranking plus combined savings.
type Leaderboard struct {
	Period          PeriodInfo         `json:"period"`
	Comparison      PeriodInfo         `json:"comparison"`
	Entries         []LeaderboardEntry `json:"entries"`
	TotalKWHSaved   float64            `json:"total_kwh_saved"`
	TotalCO2SavedKG float64            `json:"total_co2_saved_kg"`
	TreesEquivalent int                `json:"trees_equivalent"`
	DaysCompared    int                `json:"days_compared"`
	Projected       bool               `json:"projected"`
	Simulated       bool               `json:"simulated"`
	NoData          bool               `json:"no_data"`
}

// RankHotels builds the group leaderboard for a period. To keep the race
// fair, only dates every hotel has data for count, on both sides of the
// comparison, and days are paired by month and day regardless of each
// hotel's own policy.
func (s *Service) RankHotels(ctx context.Context, periodToken string) (Leaderboard, error) {
	all := s.registry.All()
	if len(all) == 0 {
		return Leaderboard{}, fmt.Errorf("no hotels registered")
	}

	req, err := s.resolve(all[0].Slug, periodToken, "")
	if err != nil {
		return Leaderboard{}, err
	}

	board := Leaderboard{
		Period:     periodInfo(req.label, req.current),
		Comparison: periodInfo("comparison", req.comparison),
		Projected:  req.projected,
	}

	// Per-hotel date-indexed usage, split by comparison side.
	type hotelSeries struct {
		current    map[string]float64
		comparison map[string]float64
	}
	series := make([]hotelSeries, len(all))
	for i, hotel := range all {
		snap, err := s.loader.Load(ctx, hotel.MeterPoint, req.span)
		if err != nil {
			return Leaderboard{}, fmt.Errorf("load series for %s: %w", hotel.Slug, err)
		}
		if snap.Simulated {
			board.Simulated = true
		}
		hs := hotelSeries{
			current:    make(map[string]float64),
			comparison: make(map[string]float64),
		}
		for _, row := range snap.Readings {
			day := timeutil.FormatDay(row.Date)
			switch {
			case req.current.Contains(row.Date):
				hs.current[day] += row.UsageKWH
			case req.comparison.Contains(row.Date):
				hs.comparison[day] += row.UsageKWH
			}
		}
		series[i] = hs
	}

	currentDays := sharedDays(series, func(hs hotelSeries) map[string]float64 { return hs.current })
	comparisonDays := sharedDays(series, func(hs hotelSeries) map[string]float64 { return hs.comparison })

	// Month-day keys present on both sides become the comparable set.
	comparisonByKey := make(map[string]string, len(comparisonDays))
	for _, day := range comparisonDays {
		comparisonByKey[day[5:]] = day // "MM-DD" -> "YYYY-MM-DD"
	}
	type dayMatch struct{ current, comparison string }
	var matches []dayMatch
	for _, day := range currentDays {
		if other, ok := comparisonByKey[day[5:]]; ok {
			matches = append(matches, dayMatch{current: day, comparison: other})
		}
	}
	board.DaysCompared = len(matches)
	if len(matches) == 0 {
		board.NoData = true
	}

	for i, hotel := range all {
		var currentTotal, comparisonTotal float64
		for _, m := range matches {
			currentTotal += series[i].current[m.current]
			comparisonTotal += series[i].comparison[m.comparison]
		}

		metrics := engine.Compute(
			engine.Totals{TotalKWH: currentTotal, Days: len(matches)},
			engine.Totals{TotalKWH: comparisonTotal, Days: len(matches)},
			engine.Params{
				ElectricityFactor:    s.opts.ElectricityFactorKGPerKWH,
				TargetSavingsPercent: hotel.TargetSavingsPercent,
				AvgGuestsPerNight:    hotel.AvgGuestsPerNight,
				CO2PerTreePerYearKG:  s.opts.CO2PerTreePerYearKG,
			},
		)

		board.Entries = append(board.Entries, LeaderboardEntry{
			Name:                 hotel.Name,
			Slug:                 hotel.Slug,
			CurrentTotalKWH:      currentTotal,
			ComparisonTotalKWH:   comparisonTotal,
			ReductionPercent:     -metrics.PercentChange,
			KWHSaved:             metrics.KWHSaved,
			CO2SavedKG:           metrics.CO2SavedKG,
			TargetProgress:       metrics.TargetProgress,
			TargetSavingsPercent: hotel.TargetSavingsPercent,
		})
		board.TotalKWHSaved += metrics.KWHSaved
		board.TotalCO2SavedKG += metrics.CO2SavedKG
	}

	sort.SliceStable(board.Entries, func(a, b int) bool {
		return board.Entries[a].ReductionPercent > board.Entries[b].ReductionPercent
	})
	for i := range board.Entries {
		board.Entries[i].Rank = i + 1
	}
	if s.opts.CO2PerTreePerYearKG > 0 {
		board.TreesEquivalent = int(board.TotalCO2SavedKG / s.opts.CO2PerTreePerYearKG)
	}
	return board, nil
}

// sharedDays returns the sorted dates present in every hotel's side.
func sharedDays[T any](series []T, side func(T) map[string]float64) []string {
	if len(series) == 0 {
		return nil
	}
	counts := make(map[string]int)
	for _, hs := range series {
		for day := range side(hs) {
			counts[day]++
		}
	}
	var shared []string
	for day, n := range counts {
		if n == len(series) {
			shared = append(shared, day)
		}
	}
	sort.Strings(shared)
	return shared
}
