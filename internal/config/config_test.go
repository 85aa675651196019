package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("APISPORTS_KEY", "test-key")
	t.Setenv("DATABASE_PASSWORD", "test-password")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://v1.basketball.api-sports.io", cfg.APISportsBaseURL)
	assert.Equal(t, 30*time.Second, cfg.APISportsTimeout)
	assert.Equal(t, 10, cfg.APIRateLimit)
	assert.Equal(t, 12, cfg.LeagueID)
	assert.Equal(t, 2014, cfg.SeasonFloor)
	assert.Equal(t, "2023-2024", cfg.StandingsSeason)
	assert.Equal(t, "NBA - Regular Season", cfg.StandingsStage)
	assert.Empty(t, cfg.AllowedTeams)
	assert.Equal(t, 300, cfg.MaxDisplayRows)
	assert.Equal(t, 24*time.Hour, cfg.CacheTTLStandings)
	assert.False(t, cfg.EnableScheduler)
	assert.True(t, cfg.EnableMetrics)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("LEAGUE_ID", "13")
	t.Setenv("SEASON_FLOOR", "2018")
	t.Setenv("ALLOWED_TEAMS", "Boston Celtics,Miami Heat")
	t.Setenv("MAX_DISPLAY_ROWS", "50")
	t.Setenv("APP_ENV", "production")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 13, cfg.LeagueID)
	assert.Equal(t, 2018, cfg.SeasonFloor)
	assert.Equal(t, []string{"Boston Celtics", "Miami Heat"}, cfg.AllowedTeams)
	assert.Equal(t, 50, cfg.MaxDisplayRows)
	assert.True(t, cfg.IsProduction())
}

func TestLoad_MissingAPIKey(t *testing.T) {
	t.Setenv("APISPORTS_KEY", "")
	t.Setenv("DATABASE_PASSWORD", "test-password")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := Config{
		APISportsKey:     "key",
		DatabasePassword: "password",
		APIRateLimit:     10,
		MaxDisplayRows:   300,
	}

	t.Run("valid", func(t *testing.T) {
		cfg := base
		assert.NoError(t, cfg.Validate())
	})

	t.Run("rate limit below one", func(t *testing.T) {
		cfg := base
		cfg.APIRateLimit = 0
		assert.ErrorContains(t, cfg.Validate(), "API_RATE_LIMIT")
	})

	t.Run("display rows below one", func(t *testing.T) {
		cfg := base
		cfg.MaxDisplayRows = 0
		assert.ErrorContains(t, cfg.Validate(), "MAX_DISPLAY_ROWS")
	})
}

func TestDatabaseDSN(t *testing.T) {
	cfg := Config{
		DatabaseHost:     "db.internal",
		DatabasePort:     5433,
		DatabaseUser:     "nba_user",
		DatabasePassword: "secret",
		DatabaseName:     "nba_insights",
		DatabaseSSLMode:  "require",
	}
	assert.Equal(t,
		"host=db.internal port=5433 user=nba_user password=secret dbname=nba_insights sslmode=require",
		cfg.DatabaseDSN())
}

func TestRedisAddr(t *testing.T) {
	cfg := Config{RedisHost: "cache.internal", RedisPort: 6380}
	assert.Equal(t, "cache.internal:6380", cfg.RedisAddr())
}
