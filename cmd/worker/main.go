package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"nba_insights/internal/cache"
	"nba_insights/internal/client"
	"nba_insights/internal/config"
	"nba_insights/internal/ingest"
	"nba_insights/internal/metrics"
	"nba_insights/internal/repository"
	"nba_insights/internal/scheduler"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Setup logger
	setupLogger()

	log.Info().Msg("Starting NBA Insights analytics worker")

	// Load configuration
	cfg := config.MustLoad()
	log.Info().
		Str("env", cfg.AppEnv).
		Str("log_level", cfg.LogLevel).
		Msg("Configuration loaded")

	// Create context that listens for cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info().Msg("Received shutdown signal, gracefully shutting down...")
		cancel()
	}()

	// Initialize api-sports.io client
	apiClient := client.NewClient(
		cfg.APISportsBaseURL,
		cfg.APISportsKey,
		cfg.LeagueID,
		cfg.APIRateLimit,
		cfg.APISportsTimeout,
	)
	log.Info().Msg("api-sports.io client initialized")

	// Initialize database connection
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

	if err := db.EnsureSchema(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to ensure database schema")
	}
	log.Info().Msg("Database connection established")

	// Initialize Redis cache for standings lookups
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

	// Start metrics HTTP server
	if cfg.EnableMetrics {
		go startMetricsServer(strconv.Itoa(cfg.MetricsPort))

		startTime := time.Now()
		go func() {
			ticker := time.NewTicker(10 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					metrics.SystemUptime.Set(time.Since(startTime).Seconds())
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	syncService := ingest.NewService(apiClient, db.Teams, db.Games, standingsCache, ingest.Options{
		SeasonFloor:     cfg.SeasonFloor,
		StandingsSeason: cfg.StandingsSeason,
		StandingsStage:  cfg.StandingsStage,
		AllowedTeams:    cfg.AllowedTeams,
	})

	// Populate the snapshot if the tables are empty, then run all analyses
	if err := ensureSnapshot(ctx, db, syncService); err != nil {
		log.Fatal().Err(err).Msg("Snapshot ingestion failed")
	}

	if err := runAnalyses(ctx, db, cfg); err != nil {
		log.Fatal().Err(err).Msg("Analysis run failed")
	}

	if !cfg.EnableScheduler {
		log.Info().Msg("Batch complete")
		return
	}

	// Scheduled mode: re-pull the snapshot and re-run analyses on a cron
	sched := scheduler.NewScheduler(cfg.RefreshCron, func(ctx context.Context) error {
		if _, err := syncService.Run(ctx); err != nil {
			return err
		}
		return runAnalyses(ctx, db, cfg)
	})
	if err := sched.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to start scheduler")
	}

	<-ctx.Done()
	sched.Stop()
	log.Info().Msg("Worker shutdown complete")
}

// ensureSnapshot ingests the snapshot when either table is empty. An
// existing snapshot is never re-pulled here; cmd/refresh forces that.
func ensureSnapshot(ctx context.Context, db *repository.Database, svc *ingest.Service) error {
	teamCount, err := db.Teams.Count(ctx)
	if err != nil {
		return err
	}
	gameCount, err := db.Games.Count(ctx)
	if err != nil {
		return err
	}

	if teamCount > 0 && gameCount > 0 {
		log.Info().
			Int("teams", teamCount).
			Int("games", gameCount).
			Msg("Snapshot already present, skipping ingestion")
		metrics.UpdateIngestionStats(teamCount, gameCount)
		return nil
	}

	log.Info().Msg("Snapshot missing or incomplete, running ingestion...")
	stats, err := svc.Run(ctx)
	if err != nil {
		return err
	}
	log.Info().
		Int("teams", stats.Teams).
		Int("games", stats.Games).
		Int("teams_skipped", stats.TeamsSkipped).
		Int("games_skipped", stats.GamesSkipped).
		Msg("Ingestion complete")
	return nil
}

// setupLogger configures the zerolog logger
func setupLogger() {
	// Pretty console logging in development
	if os.Getenv("APP_ENV") == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}

	// Set log level
	level := zerolog.InfoLevel
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		parsedLevel, err := zerolog.ParseLevel(lvl)
		if err == nil {
			level = parsedLevel
		}
	}
	zerolog.SetGlobalLevel(level)

	log.Info().
		Str("level", level.String()).
		Msg("Logger initialized")
}

// startMetricsServer starts the Prometheus metrics HTTP server
func startMetricsServer(port string) {
	http.Handle("/metrics", promhttp.Handler())

	// Health check endpoint
	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	addr := fmt.Sprintf(":%s", port)
	log.Info().Str("port", port).Msg("Starting metrics server")

	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Error().Err(err).Msg("Metrics server failed")
	}
}
