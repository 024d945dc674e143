package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Config captures the runtime configuration for the dashboard service.
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Reporting     ReportingConfig     `mapstructure:"reporting"`
	Observability ObservabilityConfig `mapstructure:"observability"`
	Emissions     EmissionsConfig     `mapstructure:"emissions"`
	Challenge     ChallengeConfig     `mapstructure:"challenge"`
	Defaults      DefaultsConfig      `mapstructure:"defaults"`
	Hotels        []HotelConfig       `mapstructure:"hotels"`
}

type ServerConfig struct {
	ListenAddr            string        `mapstructure:"listen_addr"`
	BodyLimitMB           int           `mapstructure:"body_limit_mb"`
	ReadTimeout           time.Duration `mapstructure:"read_timeout"`
	WriteTimeout          time.Duration `mapstructure:"write_timeout"`
	GracefulShutdownDelay time.Duration `mapstructure:"graceful_shutdown_delay"`
}

type DatabaseConfig struct {
	URL             string        `mapstructure:"url"`
	RunMigrations   bool          `mapstructure:"run_migrations"`
	MigrationsDir   string        `mapstructure:"migrations_dir"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

type RedisConfig struct {
	URL      string        `mapstructure:"url"`
	DB       int           `mapstructure:"db"`
	PoolSize int           `mapstructure:"pool_size"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

type ReportingConfig struct {
	Timezone string `mapstructure:"timezone"`
}

type ObservabilityConfig struct {
	OTLPEndpoint  string `mapstructure:"otlp_endpoint"`
	EnableOTLP    bool   `mapstructure:"enable_otlp"`
	EnableMetrics bool   `mapstructure:"enable_metrics"`
}

// EmissionsConfig holds the conversion factors for the sustainability
// equivalencies shown on the dashboards.
type EmissionsConfig struct {
	// ElectricityFactorKGPerKWH is kg CO2 per kWh of grid electricity.
	ElectricityFactorKGPerKWH float64 `mapstructure:"electricity_factor_kg_per_kwh"`
	// CO2PerTreePerYearKG is the annual CO2 uptake of one mature tree.
	CO2PerTreePerYearKG float64 `mapstructure:"co2_per_tree_per_year_kg"`
}

// ChallengeConfig bounds the shared savings-challenge week. Dates are
// "YYYY-MM-DD" in the reporting timezone.
type ChallengeConfig struct {
	Start string `mapstructure:"start"`
	End   string `mapstructure:"end"`
}

// DefaultsConfig sets the fallbacks applied when a request or hotel entry
// leaves a choice unspecified.
type DefaultsConfig struct {
	Period               string  `mapstructure:"period"`
	MatchPolicy          string  `mapstructure:"match_policy"`
	TargetSavingsPercent float64 `mapstructure:"target_savings_percent"`
}

// HotelConfig declares one participating hotel and its meter point. The
// registry built from these entries is the only hotel/meter mapping in the
// service.
type HotelConfig struct {
	Name                 string  `mapstructure:"name"`
	Slug                 string  `mapstructure:"slug"`
	MeterPoint           string  `mapstructure:"meter_point"`
	AvgGuestsPerNight    float64 `mapstructure:"avg_guests_per_night"`
	TargetSavingsPercent float64 `mapstructure:"target_savings_percent"`
	MatchPolicy          string  `mapstructure:"match_policy"`
}

// Options controls the config loader behavior.
type Options struct {
	ConfigFile string
	EnvFile    string
}

// Load returns the merged configuration sourced from YAML and environment variables.
func Load(opts Options) (*Config, error) {
	if opts.EnvFile != "" {
		_ = godotenv.Load(opts.EnvFile)
	} else {
		_ = godotenv.Load()
	}

	v := viper.New()
	setDefaults(v)

	explicitFile := false
	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		explicitFile = true
	} else {
		if cfg := os.Getenv("DASHBOARD_CONFIG_FILE"); cfg != "" {
			v.SetConfigFile(cfg)
			explicitFile = true
		}
	}

	if !explicitFile {
		// Allow standard lookup locations when no explicit file is provided.
		v.SetConfigName("dashboard")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix("DASHBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(timeStringToDurationHook())); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate ensures required values are set and normalizes derived fields.
func (c *Config) Validate() error {
	var missing []string

	if c.Database.URL == "" {
		missing = append(missing, "DASHBOARD_DATABASE_URL")
	}
	if c.Redis.URL == "" {
		missing = append(missing, "DASHBOARD_REDIS_URL")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	if c.Database.RunMigrations && c.Database.MigrationsDir == "" {
		return fmt.Errorf("database.migrations_dir must be provided when run_migrations is true")
	}
	if c.Database.MaxConns < 0 {
		return fmt.Errorf("database.max_conns must be >= 0")
	}
	if c.Redis.PoolSize < 0 {
		return fmt.Errorf("redis.pool_size must be >= 0")
	}
	if c.Redis.CacheTTL <= 0 {
		c.Redis.CacheTTL = time.Hour
	}

	reportingTZ := strings.TrimSpace(c.Reporting.Timezone)
	if reportingTZ == "" {
		reportingTZ = "UTC"
	}
	if _, err := time.LoadLocation(reportingTZ); err != nil {
		return fmt.Errorf("invalid reporting.timezone: %w", err)
	}
	c.Reporting.Timezone = reportingTZ

	if c.Emissions.ElectricityFactorKGPerKWH <= 0 {
		return fmt.Errorf("emissions.electricity_factor_kg_per_kwh must be > 0")
	}
	if c.Emissions.CO2PerTreePerYearKG <= 0 {
		return fmt.Errorf("emissions.co2_per_tree_per_year_kg must be > 0")
	}

	if err := validateDay("challenge.start", c.Challenge.Start); err != nil {
		return err
	}
	if err := validateDay("challenge.end", c.Challenge.End); err != nil {
		return err
	}
	if c.Challenge.Start > c.Challenge.End {
		return fmt.Errorf("challenge.start must not be after challenge.end")
	}

	if c.Defaults.TargetSavingsPercent <= 0 || c.Defaults.TargetSavingsPercent >= 100 {
		return fmt.Errorf("defaults.target_savings_percent must be between 0 and 100 exclusive")
	}

	if len(c.Hotels) == 0 {
		return fmt.Errorf("at least one hotel must be configured")
	}
	seenSlugs := make(map[string]struct{}, len(c.Hotels))
	seenMeters := make(map[string]struct{}, len(c.Hotels))
	for i := range c.Hotels {
		h := &c.Hotels[i]
		if strings.TrimSpace(h.Name) == "" {
			return fmt.Errorf("hotels[%d].name must be provided", i)
		}
		if strings.TrimSpace(h.Slug) == "" {
			h.Slug = slugify(h.Name)
		}
		h.Slug = strings.ToLower(strings.TrimSpace(h.Slug))
		if _, dup := seenSlugs[h.Slug]; dup {
			return fmt.Errorf("hotels[%d].slug %q duplicates another hotel", i, h.Slug)
		}
		seenSlugs[h.Slug] = struct{}{}

		h.MeterPoint = strings.TrimSpace(h.MeterPoint)
		if h.MeterPoint == "" {
			return fmt.Errorf("hotels[%d].meter_point must be provided", i)
		}
		if _, dup := seenMeters[h.MeterPoint]; dup {
			return fmt.Errorf("hotels[%d].meter_point %q duplicates another hotel", i, h.MeterPoint)
		}
		seenMeters[h.MeterPoint] = struct{}{}

		if h.AvgGuestsPerNight <= 0 {
			return fmt.Errorf("hotels[%d].avg_guests_per_night must be > 0", i)
		}
		if h.TargetSavingsPercent == 0 {
			h.TargetSavingsPercent = c.Defaults.TargetSavingsPercent
		}
		if h.TargetSavingsPercent < 0 || h.TargetSavingsPercent >= 100 {
			return fmt.Errorf("hotels[%d].target_savings_percent must be between 0 and 100", i)
		}
		if strings.TrimSpace(h.MatchPolicy) == "" {
			h.MatchPolicy = c.Defaults.MatchPolicy
		}
	}

	return nil
}

// ReportingLocation loads the validated reporting timezone.
func (c *Config) ReportingLocation() (*time.Location, error) {
	return time.LoadLocation(c.Reporting.Timezone)
}

func validateDay(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s must be provided", field)
	}
	if _, err := time.Parse("2006-01-02", value); err != nil {
		return fmt.Errorf("invalid %s: %w", field, err)
	}
	return nil
}

func slugify(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			out = append(out, r)
		case r == ' ' || r == '-' || r == '_':
			if len(out) > 0 && out[len(out)-1] != '-' {
				out = append(out, '-')
			}
		}
	}
	return strings.Trim(string(out), "-")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.listen_addr", ":8080")
	v.SetDefault("server.body_limit_mb", 4)
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.graceful_shutdown_delay", "5s")

	// Empty defaults register the keys so AutomaticEnv can override them.
	v.SetDefault("database.url", "")
	v.SetDefault("redis.url", "")

	v.SetDefault("database.run_migrations", true)
	v.SetDefault("database.migrations_dir", "./migrations")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_idle_time", "10m")
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.cache_ttl", "1h")

	v.SetDefault("reporting.timezone", "Europe/London")

	v.SetDefault("observability.enable_otlp", true)
	v.SetDefault("observability.enable_metrics", true)
	v.SetDefault("observability.otlp_endpoint", "http://localhost:4317")

	// DEFRA grid electricity factor, kg CO2e per kWh.
	v.SetDefault("emissions.electricity_factor_kg_per_kwh", 0.20493)
	v.SetDefault("emissions.co2_per_tree_per_year_kg", 22.0)

	v.SetDefault("challenge.start", "2025-04-14")
	v.SetDefault("challenge.end", "2025-04-21")

	v.SetDefault("defaults.period", "last_30_days")
	v.SetDefault("defaults.match_policy", "exact_month_day")
	v.SetDefault("defaults.target_savings_percent", 10.0)
}

func timeStringToDurationHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case time.Duration:
			return v, nil
		case string:
			d, err := time.ParseDuration(v)
			if err != nil {
				return nil, err
			}
			return d, nil
		default:
			return nil, fmt.Errorf("cannot decode %T into time.Duration", data)
		}
	}
}
