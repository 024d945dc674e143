package engine

import (
	"math"
	"testing"
)

var testParams = Params{
	ElectricityFactor:    0.20493,
	TargetSavingsPercent: 10,
	AvgGuestsPerNight:    202,
	CO2PerTreePerYearKG:  22,
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestComputeSavings(t *testing.T) {
	current := Totals{TotalKWH: 900, DailyAvgKWH: 90, Days: 10}
	comparison := Totals{TotalKWH: 1000, DailyAvgKWH: 100, Days: 10}

	m := Compute(current, comparison, testParams)
	if m.NoData {
		t.Fatalf("unexpected no-data flag")
	}
	if !almostEqual(m.PercentChange, -10) {
		t.Fatalf("percent change %.4f", m.PercentChange)
	}
	if !almostEqual(m.KWHSaved, 100) {
		t.Fatalf("kwh saved %.4f", m.KWHSaved)
	}
	wantCO2 := 100 * 0.20493
	if !almostEqual(m.CO2SavedKG, wantCO2) {
		t.Fatalf("co2 saved %.4f", m.CO2SavedKG)
	}
	if m.TreesEquivalent != int(wantCO2/22) {
		t.Fatalf("trees %d", m.TreesEquivalent)
	}
	if !almostEqual(m.TargetUsageKWH, 900) {
		t.Fatalf("target usage %.4f", m.TargetUsageKWH)
	}
	// Saved exactly the 10% target: progress must be capped at 100.
	if !almostEqual(m.TargetProgress, 100) {
		t.Fatalf("target progress %.4f", m.TargetProgress)
	}
	if !almostEqual(m.UsagePerGuestKWH, 90.0/202) {
		t.Fatalf("per-guest usage %.6f", m.UsagePerGuestKWH)
	}
}

func TestComputeIncreasedUsage(t *testing.T) {
	current := Totals{TotalKWH: 1100, DailyAvgKWH: 110, Days: 10}
	comparison := Totals{TotalKWH: 1000, DailyAvgKWH: 100, Days: 10}

	m := Compute(current, comparison, testParams)
	if !almostEqual(m.PercentChange, 10) {
		t.Fatalf("percent change must stay signed, got %.4f", m.PercentChange)
	}
	if m.KWHSaved != 0 || m.CO2SavedKG != 0 || m.TreesEquivalent != 0 {
		t.Fatalf("savings must floor at zero: %+v", m)
	}
	if m.TargetProgress != 0 {
		t.Fatalf("no progress when usage rose, got %.4f", m.TargetProgress)
	}
}

func TestComputePartialProgress(t *testing.T) {
	current := Totals{TotalKWH: 950, DailyAvgKWH: 95, Days: 10}
	comparison := Totals{TotalKWH: 1000, DailyAvgKWH: 100, Days: 10}

	m := Compute(current, comparison, testParams)
	// Saved 50 of the 100 kWh target reduction.
	if !almostEqual(m.TargetProgress, 50) {
		t.Fatalf("target progress %.4f", m.TargetProgress)
	}
}

func TestComputeZeroComparison(t *testing.T) {
	current := Totals{TotalKWH: 500, DailyAvgKWH: 50, Days: 10}
	comparison := Totals{}

	m := Compute(current, comparison, testParams)
	if m.PercentChange != 0 {
		t.Fatalf("percent change must be zero with no comparison total, got %.4f", m.PercentChange)
	}
	if m.KWHSaved != 0 || m.TargetProgress != 0 {
		t.Fatalf("no savings against an empty comparison: %+v", m)
	}
	if !m.NoData {
		t.Fatalf("zero comparison total must flag insufficient data")
	}
}

func TestComputeNoData(t *testing.T) {
	m := Compute(Totals{}, Totals{}, testParams)
	if !m.NoData {
		t.Fatalf("expected no-data flag")
	}
	if m.PercentChange != 0 || m.KWHSaved != 0 || m.TargetProgress != 0 {
		t.Fatalf("empty inputs must yield zero metrics: %+v", m)
	}
}

func TestAggregate(t *testing.T) {
	rows := []Reading{
		{UsageKWH: 100},
		{UsageKWH: 150},
		{UsageKWH: 50},
	}
	got := Aggregate(rows)
	if !almostEqual(got.TotalKWH, 300) || !almostEqual(got.DailyAvgKWH, 100) || got.Days != 3 {
		t.Fatalf("unexpected totals %+v", got)
	}

	empty := Aggregate(nil)
	if empty.TotalKWH != 0 || empty.DailyAvgKWH != 0 || empty.Days != 0 {
		t.Fatalf("empty aggregate must be zero: %+v", empty)
	}
}
