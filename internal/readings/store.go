package readings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fourcgroup/earthday-backend/internal/engine"
)

// ErrSourceUnavailable signals that the backing store could not serve the
// query; callers fall back to simulated data and flag the response.
var ErrSourceUnavailable = errors.New("readings source unavailable")

// Store reads daily meter data from Postgres. Scanned dates are pinned to
// midnight in loc so they compare cleanly with resolver ranges built in the
// reporting timezone.
type Store struct {
	pool *pgxpool.Pool
	loc  *time.Location
}

func NewStore(pool *pgxpool.Pool, loc *time.Location) *Store {
	return &Store{pool: pool, loc: loc}
}

// LoadSeries returns the full daily series for one meter point, ordered by
// date ascending. Duplicate rows for the same day are merged by summing the
// totals and the half-hour buckets, so double-ingested days do not double
// the comparison.
func (s *Store) LoadSeries(ctx context.Context, meterPoint string) ([]engine.Reading, error) {
	const query = `
		SELECT reading_date, total_usage_kwh, half_hours
		FROM hh_readings
		WHERE meter_point = $1
		ORDER BY reading_date`

	rows, err := s.pool.Query(ctx, query, meterPoint)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	defer rows.Close()

	var series []engine.Reading
	for rows.Next() {
		var (
			date      time.Time
			total     float64
			halfHours []float64
		)
		if err := rows.Scan(&date, &total, &halfHours); err != nil {
			return nil, fmt.Errorf("scan reading: %w", err)
		}
		date = s.readingDay(date)
		reading := engine.Reading{
			Date:       date,
			MeterPoint: meterPoint,
			UsageKWH:   total,
			HalfHours:  halfHours,
		}
		if n := len(series); n > 0 && series[n-1].Date.Equal(date) {
			series[n-1] = mergeReadings(series[n-1], reading)
			continue
		}
		series = append(series, reading)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	return series, nil
}

// UpsertReading inserts or replaces one day of data for a meter point.
func (s *Store) UpsertReading(ctx context.Context, r engine.Reading) error {
	const query = `
		INSERT INTO hh_readings (meter_point, reading_date, total_usage_kwh, half_hours)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (meter_point, reading_date)
		DO UPDATE SET total_usage_kwh = EXCLUDED.total_usage_kwh,
			half_hours = EXCLUDED.half_hours,
			updated_at = now()`

	if _, err := s.pool.Exec(ctx, query, r.MeterPoint, r.Date, r.UsageKWH, r.HalfHours); err != nil {
		return fmt.Errorf("upsert reading: %w", err)
	}
	return nil
}

// CountReadings reports the number of stored days for a meter point.
func (s *Store) CountReadings(ctx context.Context, meterPoint string) (int64, error) {
	const query = `SELECT COUNT(*) FROM hh_readings WHERE meter_point = $1`

	var count int64
	err := s.pool.QueryRow(ctx, query, meterPoint).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	return count, nil
}

// readingDay rebuilds the calendar day of a scanned DATE at midnight in the
// reporting location. pgx returns DATE columns at midnight UTC, which is an
// hour off a London midnight during BST.
func (s *Store) readingDay(t time.Time) time.Time {
	loc := s.loc
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

func mergeReadings(a, b engine.Reading) engine.Reading {
	merged := a
	merged.UsageKWH += b.UsageKWH
	switch {
	case len(a.HalfHours) == 0:
		merged.HalfHours = b.HalfHours
	case len(b.HalfHours) == len(a.HalfHours):
		sum := make([]float64, len(a.HalfHours))
		for i := range sum {
			sum[i] = a.HalfHours[i] + b.HalfHours[i]
		}
		merged.HalfHours = sum
	}
	return merged
}
