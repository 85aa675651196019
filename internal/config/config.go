package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration
type Config struct {
	// api-sports.io basketball API
	APISportsKey     string        `envconfig:"APISPORTS_KEY" required:"true"`
	APISportsBaseURL string        `envconfig:"APISPORTS_BASE_URL" default:"https://v1.basketball.api-sports.io"`
	APISportsTimeout time.Duration `envconfig:"APISPORTS_TIMEOUT" default:"30s"`

	// Requests per second allowed against the API
	APIRateLimit int `envconfig:"API_RATE_LIMIT" default:"10"`

	// League scope
	LeagueID        int    `envconfig:"LEAGUE_ID" default:"12"` // NBA
	SeasonFloor     int    `envconfig:"SEASON_FLOOR" default:"2014"`
	StandingsSeason string `envconfig:"STANDINGS_SEASON" default:"2023-2024"`
	StandingsStage  string `envconfig:"STANDINGS_STAGE" default:"NBA - Regular Season"`

	// Optional team allow-list for game ingestion; empty means all stored
	// teams are allowed
	AllowedTeams []string `envconfig:"ALLOWED_TEAMS"`

	// Database
	DatabaseHost     string `envconfig:"DATABASE_HOST" default:"localhost"`
	DatabasePort     int    `envconfig:"DATABASE_PORT" default:"5432"`
	DatabaseName     string `envconfig:"DATABASE_NAME" default:"nba_insights"`
	DatabaseUser     string `envconfig:"DATABASE_USER" default:"nba_user"`
	DatabasePassword string `envconfig:"DATABASE_PASSWORD" required:"true"`
	DatabaseSSLMode  string `envconfig:"DATABASE_SSL_MODE" default:"disable"`

	// Redis
	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// Standings lookups are the rate-limited hot path during ingestion
	CacheTTLStandings time.Duration `envconfig:"CACHE_TTL_STANDINGS" default:"24h"`

	// Application
	AppEnv   string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Analysis output
	MaxDisplayRows int `envconfig:"MAX_DISPLAY_ROWS" default:"300"`

	// Scheduler: optional cron re-run of the whole batch; the default is a
	// single one-shot run
	EnableScheduler bool   `envconfig:"ENABLE_SCHEDULER" default:"false"`
	RefreshCron     string `envconfig:"REFRESH_CRON" default:"0 2 * * *"`

	// Monitoring
	EnableMetrics bool `envconfig:"ENABLE_METRICS" default:"true"`
	MetricsPort   int  `envconfig:"METRICS_PORT" default:"9090"`
}

// Load loads configuration from environment variables
// It first attempts to load from .env file if in development mode
func Load() (*Config, error) {
	// Try to load .env file (ignore error if doesn't exist)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.APISportsKey == "" {
		return fmt.Errorf("APISPORTS_KEY is required")
	}

	if c.DatabasePassword == "" {
		return fmt.Errorf("DATABASE_PASSWORD is required")
	}

	if c.APIRateLimit < 1 {
		return fmt.Errorf("API_RATE_LIMIT must be at least 1")
	}

	if c.MaxDisplayRows < 1 {
		return fmt.Errorf("MAX_DISPLAY_ROWS must be at least 1")
	}

	return nil
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DatabaseHost,
		c.DatabasePort,
		c.DatabaseUser,
		c.DatabasePassword,
		c.DatabaseName,
		c.DatabaseSSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// MustLoad loads configuration or panics on error
// Use this in main() where we want to fail fast
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}
