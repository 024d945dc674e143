package engine

import "math"

// minProgressDenominator guards the target-progress division against
// near-zero comparison totals; below it the progress is reported as zero.
const minProgressDenominator = 1e-6

// Params carry the tunables of the metric formulas. All of them come from
// configuration; none are hard-coded in the engine.
type Params struct {
	// ElectricityFactor is kg CO2 emitted per kWh of grid electricity.
	ElectricityFactor float64
	// TargetSavingsPercent is the reduction goal versus the comparison
	// period, e.g. 10 for a ten percent target.
	TargetSavingsPercent float64
	// AvgGuestsPerNight converts hotel-level usage into per-guest figures.
	AvgGuestsPerNight float64
	// CO2PerTreePerYearKG is the annual sequestration of one tree, used for
	// the trees equivalency.
	CO2PerTreePerYearKG float64
}

// Metrics is the full KPI block for one hotel and period pair.
type Metrics struct {
	CurrentTotalKWH       float64 `json:"current_total_kwh"`
	ComparisonTotalKWH    float64 `json:"comparison_total_kwh"`
	CurrentDailyAvgKWH    float64 `json:"current_daily_avg_kwh"`
	ComparisonDailyAvgKWH float64 `json:"comparison_daily_avg_kwh"`
	PercentChange         float64 `json:"percent_change"`
	KWHSaved              float64 `json:"kwh_saved"`
	CO2SavedKG            float64 `json:"co2_saved_kg"`
	TreesEquivalent       int     `json:"trees_equivalent"`
	TargetUsageKWH        float64 `json:"target_usage_kwh"`
	TargetProgress        float64 `json:"target_progress"`
	UsagePerGuestKWH      float64 `json:"usage_per_guest_kwh"`
	NoData                bool    `json:"no_data"`
}

// Compute derives the KPI block from the two aggregated sides.
//
// PercentChange is signed (negative means usage fell). The savings figures
// are floored at zero: a hotel that used more than last year saved nothing,
// it did not "save negative kWh". TargetProgress measures how far the actual
// reduction has gone toward the configured target and is clamped to [0, 100].
func Compute(current, comparison Totals, p Params) Metrics {
	m := Metrics{
		CurrentTotalKWH:       current.TotalKWH,
		ComparisonTotalKWH:    comparison.TotalKWH,
		CurrentDailyAvgKWH:    current.DailyAvgKWH,
		ComparisonDailyAvgKWH: comparison.DailyAvgKWH,
	}
	if current.Days == 0 && comparison.Days == 0 {
		m.NoData = true
		return m
	}

	if comparison.TotalKWH > minProgressDenominator {
		m.PercentChange = (current.TotalKWH - comparison.TotalKWH) / comparison.TotalKWH * 100
	} else {
		// A near-zero comparison total cannot anchor a percentage; the
		// caller shows the insufficient-data state instead.
		m.NoData = true
	}

	if current.TotalKWH < comparison.TotalKWH {
		m.KWHSaved = comparison.TotalKWH - current.TotalKWH
		m.CO2SavedKG = m.KWHSaved * p.ElectricityFactor
		if p.CO2PerTreePerYearKG > 0 {
			m.TreesEquivalent = int(m.CO2SavedKG / p.CO2PerTreePerYearKG)
		}
	}

	m.TargetUsageKWH = comparison.TotalKWH * (1 - p.TargetSavingsPercent/100)
	denominator := comparison.TotalKWH - m.TargetUsageKWH
	if current.TotalKWH < comparison.TotalKWH && denominator > minProgressDenominator {
		m.TargetProgress = math.Min(100, (comparison.TotalKWH-current.TotalKWH)/denominator*100)
	}

	if p.AvgGuestsPerNight > 0 {
		m.UsagePerGuestKWH = current.DailyAvgKWH / p.AvgGuestsPerNight
	}
	return m
}
