package readings

import (
	"math"
	"testing"
	"time"

	"github.com/fourcgroup/earthday-backend/internal/engine"
)

func TestSimulatorDeterministic(t *testing.T) {
	sim := NewSimulator()
	start := time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.April, 14, 0, 0, 0, 0, time.UTC)

	a := sim.Series("2500021277783", start, end)
	b := sim.Series("2500021277783", start, end)
	if len(a) != 14 || len(b) != 14 {
		t.Fatalf("expected 14 days, got %d and %d", len(a), len(b))
	}
	for i := range a {
		if a[i].UsageKWH != b[i].UsageKWH {
			t.Fatalf("day %d differs between runs: %f vs %f", i, a[i].UsageKWH, b[i].UsageKWH)
		}
	}

	other := sim.Series("1200051315859", start, end)
	same := true
	for i := range a {
		if a[i].UsageKWH != other[i].UsageKWH {
			same = false
			break
		}
	}
	if same {
		t.Fatalf("different meters must not share a series")
	}
}

func TestSimulatorWeekendUplift(t *testing.T) {
	sim := NewSimulator()
	// A past year avoids the current-year efficiency multiplier.
	start := time.Date(2023, time.June, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2023, time.June, 30, 0, 0, 0, 0, time.UTC)
	series := sim.Series("m1", start, end)

	var weekendSum, weekdaySum float64
	var weekendN, weekdayN int
	for _, r := range series {
		if wd := r.Date.Weekday(); wd == time.Saturday || wd == time.Sunday {
			weekendSum += r.UsageKWH
			weekendN++
		} else {
			weekdaySum += r.UsageKWH
			weekdayN++
		}
	}
	if weekendSum/float64(weekendN) <= weekdaySum/float64(weekdayN) {
		t.Fatalf("expected weekend average above weekday average")
	}
}

func TestSimulatorHalfHoursSumToDaily(t *testing.T) {
	sim := NewSimulator()
	day := time.Date(2024, time.April, 14, 0, 0, 0, 0, time.UTC)
	series := sim.Series("m1", day, day)
	if len(series) != 1 {
		t.Fatalf("expected one day, got %d", len(series))
	}
	r := series[0]
	if len(r.HalfHours) != engine.HalfHourSlots {
		t.Fatalf("expected %d slots, got %d", engine.HalfHourSlots, len(r.HalfHours))
	}
	var sum float64
	for _, v := range r.HalfHours {
		sum += v
	}
	if math.Abs(sum-r.UsageKWH) > 1e-6 {
		t.Fatalf("half hours sum %.6f differs from daily total %.6f", sum, r.UsageKWH)
	}
}
