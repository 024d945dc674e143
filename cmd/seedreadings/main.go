package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/fourcgroup/earthday-backend/internal/config"
	"github.com/fourcgroup/earthday-backend/internal/database"
	"github.com/fourcgroup/earthday-backend/internal/readings"
	"github.com/fourcgroup/earthday-backend/internal/timeutil"
)

// seedreadings fills hh_readings with simulated data for every configured
// hotel, so the dashboards have two years of history in fresh environments.
func main() {
	var (
		configFile = flag.String("config", "", "path to the dashboard config file")
		fromFlag   = flag.String("from", "", "first day to seed (YYYY-MM-DD, default two years back)")
		toFlag     = flag.String("to", "", "last day to seed (YYYY-MM-DD, default yesterday)")
	)
	flag.Parse()

	cfg, err := config.Load(config.Options{ConfigFile: *configFile})
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	loc, err := cfg.ReportingLocation()
	if err != nil {
		log.Fatalf("load reporting timezone: %v", err)
	}

	end := timeutil.Today(time.Now(), loc).AddDate(0, 0, -1)
	if *toFlag != "" {
		if end, err = timeutil.ParseDay(*toFlag, loc); err != nil {
			log.Fatalf("parse -to: %v", err)
		}
	}
	start := end.AddDate(-2, 0, 0)
	if *fromFlag != "" {
		if start, err = timeutil.ParseDay(*fromFlag, loc); err != nil {
			log.Fatalf("parse -from: %v", err)
		}
	}
	if end.Before(start) {
		log.Fatalf("-to %s is before -from %s", timeutil.FormatDay(end), timeutil.FormatDay(start))
	}

	ctx := context.Background()
	if err := database.RunMigrations(ctx, cfg.Database); err != nil {
		log.Fatalf("run migrations: %v", err)
	}
	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	defer pool.Close()

	store := readings.NewStore(pool, loc)
	sim := readings.NewSimulator()

	for _, hotel := range cfg.Hotels {
		series := sim.Series(hotel.MeterPoint, start, end)
		for _, row := range series {
			if err := store.UpsertReading(ctx, row); err != nil {
				log.Fatalf("seed %s %s: %v", hotel.Name, timeutil.FormatDay(row.Date), err)
			}
		}
		log.Printf("seeded %s: %d days (%s..%s)", hotel.Name, len(series),
			timeutil.FormatDay(start), timeutil.FormatDay(end))
	}
}
