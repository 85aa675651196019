// Command refresh forces a full re-pull of the games and teams snapshot,
// regardless of whether the tables are already populated. Use it to pick up
// newly finished games or corrected scores before the next analysis run.
package main

import (
	"context"
	"strconv"

	"nba_insights/internal/cache"
	"nba_insights/internal/client"
	"nba_insights/internal/config"
	"nba_insights/internal/ingest"
	"nba_insights/internal/repository"

	"github.com/rs/zerolog/log"
)

func main() {
	ctx := context.Background()
	cfg := config.MustLoad()

	db, err := repository.NewDatabase(ctx, repository.Config{
		Host:     cfg.DatabaseHost,
		Port:     strconv.Itoa(cfg.DatabasePort),
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
		Database: cfg.DatabaseName,
		SSLMode:  cfg.DatabaseSSLMode,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	log.Info().Msg("Validating service health...")
	if err := db.Health(ctx); err != nil {
		log.Fatal().Err(err).Msg("Database health check failed")
	}
	if err := db.EnsureSchema(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to ensure database schema")
	}

	apiClient := client.NewClient(
		cfg.APISportsBaseURL,
		cfg.APISportsKey,
		cfg.LeagueID,
		cfg.APIRateLimit,
		cfg.APISportsTimeout,
	)

	var standingsCache ingest.StandingsCache
	redisCache, err := cache.NewRedisCache(ctx, cache.Config{
		Host:     cfg.RedisHost,
		Port:     strconv.Itoa(cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		TTL:      cfg.CacheTTLStandings,
	})
	if err != nil {
		log.Warn().Err(err).Msg("Failed to connect to Redis - continuing without cache")
	} else {
		defer redisCache.Close()
		standingsCache = redisCache
	}

	svc := ingest.NewService(apiClient, db.Teams, db.Games, standingsCache, ingest.Options{
		SeasonFloor:     cfg.SeasonFloor,
		StandingsSeason: cfg.StandingsSeason,
		StandingsStage:  cfg.StandingsStage,
		AllowedTeams:    cfg.AllowedTeams,
	})

	log.Info().Msg("Starting forced snapshot refresh...")
	stats, err := svc.Run(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Snapshot refresh failed")
	}

	log.Info().
		Int("teams", stats.Teams).
		Int("games", stats.Games).
		Int("teams_skipped", stats.TeamsSkipped).
		Int("games_skipped", stats.GamesSkipped).
		Msg("Snapshot refresh complete")
}
