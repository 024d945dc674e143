package engine

import "sort"

// SlotProfile is the mean usage per half-hour slot across a set of days,
// plus the busiest slots. Slots is nil when no row carried interval data.
type SlotProfile struct {
	Slots     []float64 `json:"slots,omitempty"`
	PeakSlots []int     `json:"peak_slots,omitempty"`
	DaysUsed  int       `json:"days_used"`
}

// peakSlotCount is how many top slots the profile reports.
const peakSlotCount = 3

// Profile averages the half-hour breakdown over the given rows. Rows without
// interval data (nil or short HalfHours) are skipped rather than treated as
// zero usage, so daily-only sources do not drag the profile down.
func Profile(rows []Reading) SlotProfile {
	sums := make([]float64, HalfHourSlots)
	used := 0
	for _, row := range rows {
		if len(row.HalfHours) < HalfHourSlots {
			continue
		}
		for i := 0; i < HalfHourSlots; i++ {
			sums[i] += row.HalfHours[i]
		}
		used++
	}
	if used == 0 {
		return SlotProfile{}
	}

	slots := make([]float64, HalfHourSlots)
	for i := range sums {
		slots[i] = sums[i] / float64(used)
	}

	order := make([]int, HalfHourSlots)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		if slots[order[a]] != slots[order[b]] {
			return slots[order[a]] > slots[order[b]]
		}
		return order[a] < order[b]
	})

	return SlotProfile{
		Slots:     slots,
		PeakSlots: append([]int(nil), order[:peakSlotCount]...),
		DaysUsed:  used,
	}
}
