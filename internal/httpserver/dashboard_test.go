package httpserver

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/fourcgroup/earthday-backend/internal/app"
	"github.com/fourcgroup/earthday-backend/internal/config"
	"github.com/fourcgroup/earthday-backend/internal/engine"
	"github.com/fourcgroup/earthday-backend/internal/hotels"
	"github.com/fourcgroup/earthday-backend/internal/readings"
	comparisonsvc "github.com/fourcgroup/earthday-backend/internal/services/comparison"
)

type stubLoader struct {
	snapshots map[string]readings.Snapshot
}

func (s *stubLoader) Load(ctx context.Context, meterPoint string, span engine.DateRange) (readings.Snapshot, error) {
	if snap, ok := s.snapshots[meterPoint]; ok {
		return snap, nil
	}
	return readings.Snapshot{ID: uuid.New()}, nil
}

func testApp(t *testing.T) *fiber.App {
	t.Helper()

	registry, err := hotels.NewRegistry([]config.HotelConfig{
		{Name: "The Westin", Slug: "the-westin", MeterPoint: "m-westin", AvgGuestsPerNight: 202, TargetSavingsPercent: 10, MatchPolicy: "exact_month_day"},
	})
	require.NoError(t, err)

	now := time.Date(2025, time.April, 21, 12, 0, 0, 0, time.UTC)
	current, err := engine.NewDateRange(
		time.Date(2025, time.April, 14, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.April, 21, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	comparison := engine.ComparisonRange(current)

	var rows []engine.Reading
	for d := comparison.Start; !d.After(comparison.End); d = d.AddDate(0, 0, 1) {
		rows = append(rows, engine.Reading{Date: d, MeterPoint: "m-westin", UsageKWH: 100})
	}
	for d := current.Start; !d.After(current.End); d = d.AddDate(0, 0, 1) {
		rows = append(rows, engine.Reading{Date: d, MeterPoint: "m-westin", UsageKWH: 90})
	}

	loader := &stubLoader{snapshots: map[string]readings.Snapshot{
		"m-westin": {ID: uuid.New(), Readings: rows},
	}}
	svc := comparisonsvc.NewService(loader, registry, comparisonsvc.Options{
		ElectricityFactorKGPerKWH: 0.20493,
		CO2PerTreePerYearKG:       22,
		DefaultPeriod:             "last_30_days",
		DefaultPolicy:             engine.PolicyExactMonthDay,
		Challenge:                 current,
		Location:                  time.UTC,
		Now:                       func() time.Time { return now },
	})

	container := &app.Container{
		Hotels:     registry,
		Comparison: svc,
		Loader:     readings.NewLoader(nil, nil, nil),
	}

	fiberApp := fiber.New()
	registerDashboardRoutes(fiberApp, container)
	return fiberApp
}

func TestHotelSummaryEndpoint(t *testing.T) {
	fiberApp := testApp(t)

	req := httptest.NewRequest("GET", "/v1/hotels/the-westin/summary?period=challenge", nil)
	resp, err := fiberApp.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var summary comparisonsvc.Summary
	require.NoError(t, json.Unmarshal(body, &summary))
	require.Equal(t, "the-westin", summary.Hotel.Slug)
	require.InDelta(t, -10, summary.Metrics.PercentChange, 1e-9)
	require.False(t, summary.Metrics.NoData)
}

func TestHotelSummaryUnknownHotel(t *testing.T) {
	fiberApp := testApp(t)

	req := httptest.NewRequest("GET", "/v1/hotels/ritz/summary", nil)
	resp, err := fiberApp.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestHotelSummaryBadPeriod(t *testing.T) {
	fiberApp := testApp(t)

	req := httptest.NewRequest("GET", "/v1/hotels/the-westin/summary?period=fortnight", nil)
	resp, err := fiberApp.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var payload map[string]string
	require.NoError(t, json.Unmarshal(body, &payload))
	require.Contains(t, payload["error"], "period")
}

func TestHotelSummaryBadPolicy(t *testing.T) {
	fiberApp := testApp(t)

	req := httptest.NewRequest("GET", "/v1/hotels/the-westin/summary?period=challenge&policy=vibes", nil)
	resp, err := fiberApp.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestListHotelsEndpoint(t *testing.T) {
	fiberApp := testApp(t)

	req := httptest.NewRequest("GET", "/v1/hotels", nil)
	resp, err := fiberApp.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var payload struct {
		Hotels []hotels.Hotel `json:"hotels"`
	}
	require.NoError(t, json.Unmarshal(body, &payload))
	require.Len(t, payload.Hotels, 1)
	require.Equal(t, "The Westin", payload.Hotels[0].Name)
}

func TestLeaderboardEndpoint(t *testing.T) {
	fiberApp := testApp(t)

	req := httptest.NewRequest("GET", "/v1/leaderboard?period=challenge", nil)
	resp, err := fiberApp.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var board comparisonsvc.Leaderboard
	require.NoError(t, json.Unmarshal(body, &board))
	require.Len(t, board.Entries, 1)
	require.Equal(t, 1, board.Entries[0].Rank)
}

func TestRefreshEndpoint(t *testing.T) {
	fiberApp := testApp(t)

	req := httptest.NewRequest("POST", "/v1/hotels/the-westin/refresh", nil)
	resp, err := fiberApp.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}
