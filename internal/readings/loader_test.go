package readings

import (
	"context"
	"testing"
	"time"

	"github.com/fourcgroup/earthday-backend/internal/engine"
)

type stubStore struct {
	series []engine.Reading
	err    error
	calls  int
}

func (s *stubStore) LoadSeries(ctx context.Context, meterPoint string) ([]engine.Reading, error) {
	s.calls++
	return s.series, s.err
}

func testSpan(t *testing.T) engine.DateRange {
	t.Helper()
	span, err := engine.NewDateRange(
		time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.April, 30, 0, 0, 0, 0, time.UTC),
	)
	if err != nil {
		t.Fatalf("span: %v", err)
	}
	return span
}

func TestLoaderCachesRealData(t *testing.T) {
	cache, cleanup := newTestCache(t)
	defer cleanup()

	store := &stubStore{series: []engine.Reading{
		{Date: time.Date(2025, time.April, 14, 0, 0, 0, 0, time.UTC), MeterPoint: "m1", UsageKWH: 100},
	}}
	loader := NewLoader(store, cache, NewSimulator())

	ctx := context.Background()
	first, err := loader.Load(ctx, "m1", testSpan(t))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if first.Simulated {
		t.Fatalf("real data must not be flagged simulated")
	}

	second, err := loader.Load(ctx, "m1", testSpan(t))
	if err != nil {
		t.Fatalf("second load: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected cached snapshot, got a new one")
	}
	if store.calls != 1 {
		t.Fatalf("store hit %d times, expected 1", store.calls)
	}
}

func TestLoaderFallsBackToSimulator(t *testing.T) {
	cache, cleanup := newTestCache(t)
	defer cleanup()

	store := &stubStore{err: ErrSourceUnavailable}
	loader := NewLoader(store, cache, NewSimulator())
	var flagged []string
	loader.OnSimulated = func(meter string) { flagged = append(flagged, meter) }

	ctx := context.Background()
	snap, err := loader.Load(ctx, "m1", testSpan(t))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !snap.Simulated {
		t.Fatalf("expected simulated snapshot")
	}
	if len(snap.Readings) == 0 {
		t.Fatalf("expected synthetic readings")
	}
	if len(flagged) != 1 || flagged[0] != "m1" {
		t.Fatalf("fallback hook not invoked: %v", flagged)
	}

	// Simulated snapshots are never cached; the store is retried.
	if _, err := loader.Load(ctx, "m1", testSpan(t)); err != nil {
		t.Fatalf("second load: %v", err)
	}
	if store.calls != 2 {
		t.Fatalf("store hit %d times, expected retry", store.calls)
	}
}

func TestLoaderEmptyStoreUsesSimulator(t *testing.T) {
	cache, cleanup := newTestCache(t)
	defer cleanup()

	loader := NewLoader(&stubStore{}, cache, NewSimulator())
	snap, err := loader.Load(context.Background(), "m1", testSpan(t))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !snap.Simulated {
		t.Fatalf("empty store must trigger the simulated fallback")
	}
}

func TestLoaderRefreshInvalidates(t *testing.T) {
	cache, cleanup := newTestCache(t)
	defer cleanup()

	store := &stubStore{series: []engine.Reading{
		{Date: time.Date(2025, time.April, 14, 0, 0, 0, 0, time.UTC), MeterPoint: "m1", UsageKWH: 100},
	}}
	loader := NewLoader(store, cache, NewSimulator())

	ctx := context.Background()
	if _, err := loader.Load(ctx, "m1", testSpan(t)); err != nil {
		t.Fatalf("load: %v", err)
	}
	loader.Refresh(ctx, "m1")
	if _, err := loader.Load(ctx, "m1", testSpan(t)); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if store.calls != 2 {
		t.Fatalf("expected store re-read after refresh, got %d calls", store.calls)
	}
}
