package readings

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/fourcgroup/earthday-backend/internal/engine"
)

// Snapshot is one meter's full cached series plus provenance. ID changes on
// every refresh so downstream consumers can detect staleness.
type Snapshot struct {
	ID        uuid.UUID        `json:"id"`
	LoadedAt  time.Time        `json:"loaded_at"`
	Simulated bool             `json:"simulated"`
	Readings  []engine.Reading `json:"readings"`
}

// Cache stores series snapshots in Redis keyed by meter point. Cache
// failures are treated as misses; the loader falls through to the store.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Cache{client: client, ttl: ttl}
}

func (c *Cache) Get(ctx context.Context, meterPoint string) (Snapshot, bool) {
	if c == nil || c.client == nil || meterPoint == "" {
		return Snapshot{}, false
	}
	data, err := c.client.Get(ctx, c.prefixed(meterPoint)).Bytes()
	if err != nil {
		return Snapshot{}, false
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, false
	}
	return snap, true
}

func (c *Cache) Set(ctx context.Context, meterPoint string, snap Snapshot) {
	if c == nil || c.client == nil || meterPoint == "" {
		return
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return
	}
	c.client.Set(ctx, c.prefixed(meterPoint), data, c.ttl)
}

// Invalidate drops the cached snapshot, forcing the next load to hit the store.
func (c *Cache) Invalidate(ctx context.Context, meterPoint string) {
	if c == nil || c.client == nil || meterPoint == "" {
		return
	}
	c.client.Del(ctx, c.prefixed(meterPoint))
}

func (c *Cache) prefixed(meterPoint string) string {
	return "readings:" + meterPoint
}
