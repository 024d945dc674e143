package hotels

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/fourcgroup/earthday-backend/internal/config"
	"github.com/fourcgroup/earthday-backend/internal/engine"
)

var ErrUnknownHotel = errors.New("unknown hotel")

// Hotel is one participating property resolved from configuration.
type Hotel struct {
	Name                 string        `json:"name"`
	Slug                 string        `json:"slug"`
	MeterPoint           string        `json:"meter_point"`
	AvgGuestsPerNight    float64       `json:"avg_guests_per_night"`
	TargetSavingsPercent float64       `json:"target_savings_percent"`
	Policy               engine.Policy `json:"-"`
}

// Registry is the single hotel/meter mapping for the service, replacing the
// per-dashboard lookup tables the older displays carried.
type Registry struct {
	bySlug  map[string]Hotel
	byMeter map[string]Hotel
	ordered []Hotel
}

// NewRegistry builds the registry from validated configuration entries.
func NewRegistry(entries []config.HotelConfig) (*Registry, error) {
	r := &Registry{
		bySlug:  make(map[string]Hotel, len(entries)),
		byMeter: make(map[string]Hotel, len(entries)),
	}
	for i, entry := range entries {
		policy, err := engine.ParsePolicy(entry.MatchPolicy)
		if err != nil {
			return nil, fmt.Errorf("hotels[%d] %q: %w", i, entry.Name, err)
		}
		h := Hotel{
			Name:                 entry.Name,
			Slug:                 entry.Slug,
			MeterPoint:           entry.MeterPoint,
			AvgGuestsPerNight:    entry.AvgGuestsPerNight,
			TargetSavingsPercent: entry.TargetSavingsPercent,
			Policy:               policy,
		}
		if _, dup := r.bySlug[h.Slug]; dup {
			return nil, fmt.Errorf("hotels[%d]: duplicate slug %q", i, h.Slug)
		}
		if _, dup := r.byMeter[h.MeterPoint]; dup {
			return nil, fmt.Errorf("hotels[%d]: duplicate meter point %q", i, h.MeterPoint)
		}
		r.bySlug[h.Slug] = h
		r.byMeter[h.MeterPoint] = h
		r.ordered = append(r.ordered, h)
	}
	sort.Slice(r.ordered, func(a, b int) bool { return r.ordered[a].Name < r.ordered[b].Name })
	return r, nil
}

// BySlug resolves a hotel by its URL slug.
func (r *Registry) BySlug(slug string) (Hotel, error) {
	h, ok := r.bySlug[strings.ToLower(strings.TrimSpace(slug))]
	if !ok {
		return Hotel{}, fmt.Errorf("%w: %q", ErrUnknownHotel, slug)
	}
	return h, nil
}

// ByMeterPoint resolves a hotel by its meter point identifier.
func (r *Registry) ByMeterPoint(meterPoint string) (Hotel, error) {
	h, ok := r.byMeter[strings.TrimSpace(meterPoint)]
	if !ok {
		return Hotel{}, fmt.Errorf("%w: meter %q", ErrUnknownHotel, meterPoint)
	}
	return h, nil
}

// All returns every hotel ordered by name.
func (r *Registry) All() []Hotel {
	out := make([]Hotel, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// Len reports the number of registered hotels.
func (r *Registry) Len() int { return len(r.ordered) }
