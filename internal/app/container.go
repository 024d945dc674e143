package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/fourcgroup/earthday-backend/internal/config"
	"github.com/fourcgroup/earthday-backend/internal/engine"
	"github.com/fourcgroup/earthday-backend/internal/hotels"
	"github.com/fourcgroup/earthday-backend/internal/observability"
	"github.com/fourcgroup/earthday-backend/internal/readings"
	comparisonsvc "github.com/fourcgroup/earthday-backend/internal/services/comparison"
	"github.com/fourcgroup/earthday-backend/internal/timeutil"
)

// Container aggregates runtime dependencies for handlers and services.
type Container struct {
	Config            *config.Config
	DBPool            *pgxpool.Pool
	Redis             *redis.Client
	Hotels            *hotels.Registry
	Store             *readings.Store
	Loader            *readings.Loader
	Comparison        *comparisonsvc.Service
	Observability     *observability.Provider
	ReportingLocation *time.Location
}

// NewContainer builds a dependency container from the provided primitives.
func NewContainer(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, redisClient *redis.Client, obs *observability.Provider) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if pool == nil {
		return nil, fmt.Errorf("db pool is required")
	}
	if redisClient == nil {
		return nil, fmt.Errorf("redis client is required")
	}

	reportingLoc, err := cfg.ReportingLocation()
	if err != nil {
		return nil, fmt.Errorf("load reporting timezone: %w", err)
	}

	registry, err := hotels.NewRegistry(cfg.Hotels)
	if err != nil {
		return nil, fmt.Errorf("build hotel registry: %w", err)
	}

	store := readings.NewStore(pool, reportingLoc)
	cache := readings.NewCache(redisClient, cfg.Redis.CacheTTL)
	loader := readings.NewLoader(store, cache, readings.NewSimulator())
	loader.OnSimulated = obs.RecordSimulatedFallback

	challengeStart, err := timeutil.ParseDay(cfg.Challenge.Start, reportingLoc)
	if err != nil {
		return nil, fmt.Errorf("parse challenge.start: %w", err)
	}
	challengeEnd, err := timeutil.ParseDay(cfg.Challenge.End, reportingLoc)
	if err != nil {
		return nil, fmt.Errorf("parse challenge.end: %w", err)
	}
	challenge, err := engine.NewDateRange(challengeStart, challengeEnd)
	if err != nil {
		return nil, fmt.Errorf("challenge window: %w", err)
	}

	defaultPolicy, err := engine.ParsePolicy(cfg.Defaults.MatchPolicy)
	if err != nil {
		return nil, fmt.Errorf("defaults.match_policy: %w", err)
	}

	comparison := comparisonsvc.NewService(loader, registry, comparisonsvc.Options{
		ElectricityFactorKGPerKWH: cfg.Emissions.ElectricityFactorKGPerKWH,
		CO2PerTreePerYearKG:       cfg.Emissions.CO2PerTreePerYearKG,
		DefaultPeriod:             cfg.Defaults.Period,
		DefaultPolicy:             defaultPolicy,
		Challenge:                 challenge,
		Location:                  reportingLoc,
		OnPipelineRun:             obs.RecordPipelineRun,
	})

	return &Container{
		Config:            cfg,
		DBPool:            pool,
		Redis:             redisClient,
		Hotels:            registry,
		Store:             store,
		Loader:            loader,
		Comparison:        comparison,
		Observability:     obs,
		ReportingLocation: reportingLoc,
	}, nil
}
