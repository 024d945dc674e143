package engine

// Totals are the summed and averaged usage for one side of a comparison.
type Totals struct {
	TotalKWH    float64 `json:"total_kwh"`
	DailyAvgKWH float64 `json:"daily_avg_kwh"`
	Days        int     `json:"days"`
}

// Aggregate reduces one side's matched rows to period totals. An empty row
// set yields zero totals; callers detect the no-data case via Days == 0.
func Aggregate(rows []Reading) Totals {
	t := Totals{Days: len(rows)}
	for _, row := range rows {
		t.TotalKWH += row.UsageKWH
	}
	if t.Days > 0 {
		t.DailyAvgKWH = t.TotalKWH / float64(t.Days)
	}
	return t
}

// AggregatePairs reduces both sides of a matched pair set at once.
func AggregatePairs(pairs MatchedPairSet) (current, comparison Totals) {
	return Aggregate(pairs.CurrentRows), Aggregate(pairs.ComparisonRows)
}
