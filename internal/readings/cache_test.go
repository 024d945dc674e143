package readings

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/fourcgroup/earthday-backend/internal/engine"
)

func newTestCache(t *testing.T) (*Cache, func()) {
	t.Helper()
	server, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	cache := NewCache(client, time.Minute)
	cleanup := func() {
		client.Close()
		server.Close()
	}
	return cache, cleanup
}

func TestCacheRoundTrip(t *testing.T) {
	cache, cleanup := newTestCache(t)
	defer cleanup()

	ctx := context.Background()
	snap := Snapshot{
		ID:       uuid.New(),
		LoadedAt: time.Now().UTC().Truncate(time.Second),
		Readings: []engine.Reading{
			{Date: time.Date(2025, time.April, 14, 0, 0, 0, 0, time.UTC), MeterPoint: "m1", UsageKWH: 123.4},
		},
	}
	cache.Set(ctx, "m1", snap)

	got, ok := cache.Get(ctx, "m1")
	if !ok {
		t.Fatalf("expected cache hit")
	}
	if got.ID != snap.ID {
		t.Fatalf("snapshot id changed: %s vs %s", got.ID, snap.ID)
	}
	if len(got.Readings) != 1 || got.Readings[0].UsageKWH != 123.4 {
		t.Fatalf("unexpected readings %+v", got.Readings)
	}

	if _, ok := cache.Get(ctx, "m2"); ok {
		t.Fatalf("unexpected hit for unknown meter")
	}
}

func TestCacheInvalidate(t *testing.T) {
	cache, cleanup := newTestCache(t)
	defer cleanup()

	ctx := context.Background()
	cache.Set(ctx, "m1", Snapshot{ID: uuid.New()})
	cache.Invalidate(ctx, "m1")
	if _, ok := cache.Get(ctx, "m1"); ok {
		t.Fatalf("expected miss after invalidation")
	}
}

func TestCacheNilClientIsMiss(t *testing.T) {
	var cache *Cache
	if _, ok := cache.Get(context.Background(), "m1"); ok {
		t.Fatalf("nil cache must miss")
	}
	cache.Set(context.Background(), "m1", Snapshot{})
	cache.Invalidate(context.Background(), "m1")
}
