package comparison

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fourcgroup/earthday-backend/internal/engine"
	"github.com/fourcgroup/earthday-backend/internal/hotels"
	"github.com/fourcgroup/earthday-backend/internal/readings"
	"github.com/fourcgroup/earthday-backend/internal/timeutil"
)

var (
	ErrUnknownHotel     = hotels.ErrUnknownHotel
	ErrUnknownSelection = engine.ErrUnknownSelection
	ErrUnknownPolicy    = engine.ErrUnknownPolicy
)

// A comparison whose match percentage falls below this is flagged so the
// dashboards can caveat the numbers.
const lowConfidenceThreshold = 50.0

// SeriesLoader supplies one meter's full series snapshot; production wiring
// uses readings.Loader, tests use stubs.
type SeriesLoader interface {
	Load(ctx context.Context, meterPoint string, span engine.DateRange) (readings.Snapshot, error)
}

// Options carry the cross-hotel settings the service needs.
type Options struct {
	ElectricityFactorKGPerKWH float64
	CO2PerTreePerYearKG       float64
	DefaultPeriod             string
	DefaultPolicy             engine.Policy
	Challenge                 engine.DateRange
	Location                  *time.Location
	// Now is swapped in tests; defaults to time.Now.
	Now func() time.Time
	// OnPipelineRun, when set, is invoked once per executed comparison.
	OnPipelineRun func(hotelSlug, policy string)
}

// Service orchestrates the comparison pipeline for every dashboard surface.
type Service struct {
	loader   SeriesLoader
	registry *hotels.Registry
	opts     Options
}

func NewService(loader SeriesLoader, registry *hotels.Registry, opts Options) *Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	opts.Location = timeutil.EnsureLocation(opts.Location)
	return &Service{loader: loader, registry: registry, opts: opts}
}

// PeriodInfo describes one resolved side of the comparison.
type PeriodInfo struct {
	Label string `json:"label"`
	Start string `json:"start"`
	End   string `json:"end"`
	Days  int    `json:"days"`
}

// MatchQuality describes how representative the day pairing is.
type MatchQuality struct {
	Percentage   float64 `json:"percentage"`
	MatchedDays  int     `json:"matched_days"`
	ExpectedDays int     `json:"expected_days"`
}

// DayPair is one matched day for charting.
type DayPair struct {
	Date           string  `json:"date"`
	UsageKWH       float64 `json:"usage_kwh"`
	ComparisonDate string  `json:"comparison_date"`
	ComparisonKWH  float64 `json:"comparison_kwh"`
}

// Summary is the full KPI response for one hotel and period.
type Summary struct {
	Hotel         hotels.Hotel   `json:"hotel"`
	Policy        string         `json:"policy"`
	Period        PeriodInfo     `json:"period"`
	Comparison    PeriodInfo     `json:"comparison"`
	Metrics       engine.Metrics `json:"metrics"`
	Match         MatchQuality   `json:"match"`
	Projected     bool           `json:"projected"`
	Simulated     bool           `json:"simulated"`
	LowConfidence bool           `json:"low_confidence"`
}

// SeriesResponse carries the paired day rows for chart rendering.
type SeriesResponse struct {
	Hotel      hotels.Hotel `json:"hotel"`
	Policy     string       `json:"policy"`
	Period     PeriodInfo   `json:"period"`
	Comparison PeriodInfo   `json:"comparison"`
	Pairs      []DayPair    `json:"pairs"`
	Projected  bool         `json:"projected"`
	Simulated  bool         `json:"simulated"`
}

// ProfileResponse is the averaged half-hour load shape for one period.
type ProfileResponse struct {
	Hotel     hotels.Hotel       `json:"hotel"`
	Period    PeriodInfo         `json:"period"`
	Profile   engine.SlotProfile `json:"profile"`
	Simulated bool               `json:"simulated"`
}

// Summarize resolves the period, matches the two years of data and computes
// the KPI block for one hotel. An empty policy override uses the hotel's
// configured policy.
func (s *Service) Summarize(ctx context.Context, hotelSlug, periodToken, policyOverride string) (Summary, error) {
	req, err := s.resolve(hotelSlug, periodToken, policyOverride)
	if err != nil {
		return Summary{}, err
	}

	snap, err := s.loader.Load(ctx, req.hotel.MeterPoint, req.span)
	if err != nil {
		return Summary{}, fmt.Errorf("load series for %s: %w", req.hotel.Slug, err)
	}

	pairs, err := engine.Match(snap.Readings, req.current, req.comparison, req.policy)
	if err != nil {
		return Summary{}, err
	}
	currentTotals, comparisonTotals := engine.AggregatePairs(pairs)
	metrics := engine.Compute(currentTotals, comparisonTotals, engine.Params{
		ElectricityFactor:    s.opts.ElectricityFactorKGPerKWH,
		TargetSavingsPercent: req.hotel.TargetSavingsPercent,
		AvgGuestsPerNight:    req.hotel.AvgGuestsPerNight,
		CO2PerTreePerYearKG:  s.opts.CO2PerTreePerYearKG,
	})
	if pairs.MatchedDays == 0 {
		metrics.NoData = true
	}

	if s.opts.OnPipelineRun != nil {
		s.opts.OnPipelineRun(req.hotel.Slug, req.policy.String())
	}

	match := MatchQuality{
		Percentage:   pairs.MatchPercentage(),
		MatchedDays:  pairs.MatchedDays,
		ExpectedDays: pairs.ExpectedDays,
	}
	return Summary{
		Hotel:         req.hotel,
		Policy:        req.policy.String(),
		Period:        periodInfo(req.label, req.current),
		Comparison:    periodInfo("comparison", req.comparison),
		Metrics:       metrics,
		Match:         match,
		Projected:     req.projected,
		Simulated:     snap.Simulated,
		LowConfidence: match.Percentage < lowConfidenceThreshold,
	}, nil
}

// Series returns the matched day pairs for one hotel and period, ordered by
// current date.
func (s *Service) Series(ctx context.Context, hotelSlug, periodToken, policyOverride string) (SeriesResponse, error) {
	req, err := s.resolve(hotelSlug, periodToken, policyOverride)
	if err != nil {
		return SeriesResponse{}, err
	}

	snap, err := s.loader.Load(ctx, req.hotel.MeterPoint, req.span)
	if err != nil {
		return SeriesResponse{}, fmt.Errorf("load series for %s: %w", req.hotel.Slug, err)
	}

	matched, err := engine.Match(snap.Readings, req.current, req.comparison, req.policy)
	if err != nil {
		return SeriesResponse{}, err
	}

	pairs := make([]DayPair, 0, len(matched.CurrentRows))
	for i, row := range matched.CurrentRows {
		other := matched.ComparisonRows[i]
		pairs = append(pairs, DayPair{
			Date:           timeutil.FormatDay(row.Date),
			UsageKWH:       row.UsageKWH,
			ComparisonDate: timeutil.FormatDay(other.Date),
			ComparisonKWH:  other.UsageKWH,
		})
	}

	return SeriesResponse{
		Hotel:      req.hotel,
		Policy:     req.policy.String(),
		Period:     periodInfo(req.label, req.current),
		Comparison: periodInfo("comparison", req.comparison),
		Pairs:      pairs,
		Projected:  req.projected,
		Simulated:  snap.Simulated,
	}, nil
}

// HourlyProfile averages the half-hour breakdown over the resolved period.
func (s *Service) HourlyProfile(ctx context.Context, hotelSlug, periodToken string) (ProfileResponse, error) {
	req, err := s.resolve(hotelSlug, periodToken, "")
	if err != nil {
		return ProfileResponse{}, err
	}

	snap, err := s.loader.Load(ctx, req.hotel.MeterPoint, req.span)
	if err != nil {
		return ProfileResponse{}, fmt.Errorf("load series for %s: %w", req.hotel.Slug, err)
	}

	var inPeriod []engine.Reading
	for _, row := range snap.Readings {
		if req.current.Contains(row.Date) {
			inPeriod = append(inPeriod, row)
		}
	}

	return ProfileResponse{
		Hotel:     req.hotel,
		Period:    periodInfo(req.label, req.current),
		Profile:   engine.Profile(inPeriod),
		Simulated: snap.Simulated,
	}, nil
}

type resolvedRequest struct {
	hotel      hotels.Hotel
	label      string
	current    engine.DateRange
	comparison engine.DateRange
	span       engine.DateRange
	policy     engine.Policy
	projected  bool
}

func (s *Service) resolve(hotelSlug, periodToken, policyOverride string) (resolvedRequest, error) {
	hotel, err := s.registry.BySlug(hotelSlug)
	if err != nil {
		return resolvedRequest{}, err
	}

	if strings.TrimSpace(periodToken) == "" {
		periodToken = s.opts.DefaultPeriod
	}
	sel, err := engine.ParseSelection(periodToken)
	if err != nil {
		return resolvedRequest{}, err
	}

	policy := hotel.Policy
	if strings.TrimSpace(policyOverride) != "" {
		policy, err = engine.ParsePolicy(policyOverride)
		if err != nil {
			return resolvedRequest{}, err
		}
	}

	today := timeutil.Today(s.opts.Now(), s.opts.Location)
	resolved, err := engine.Resolve(sel, today, s.opts.Challenge)
	if err != nil {
		return resolvedRequest{}, err
	}
	comparison := engine.ComparisonRange(resolved.Range)

	return resolvedRequest{
		hotel:      hotel,
		label:      sel.Label(),
		current:    resolved.Range,
		comparison: comparison,
		span:       engine.DateRange{Start: comparison.Start, End: resolved.Range.End},
		policy:     policy,
		projected:  resolved.Projected,
	}, nil
}

func periodInfo(label string, r engine.DateRange) PeriodInfo {
	return PeriodInfo{
		Label: label,
		Start: timeutil.FormatDay(r.Start),
		End:   timeutil.FormatDay(r.End),
		Days:  r.Days(),
	}
}
