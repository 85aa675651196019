// Package cache provides a Redis-backed cache for per-team standings
// lookups. The standings endpoint is called once per team and dominates the
// rate-limited API budget, so repeated syncs within the TTL skip it.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"nba_insights/internal/metrics"
	"nba_insights/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Config holds Redis cache configuration
type Config struct {
	Host     string
	Port     string
	Password string
	DB       int
	TTL      time.Duration
}

// RedisCache caches standings lookups
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects to Redis and verifies the connection
func NewRedisCache(ctx context.Context, cfg Config) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	log.Info().
		Str("host", cfg.Host).
		Str("port", cfg.Port).
		Msg("Connected to Redis")

	return &RedisCache{client: client, ttl: cfg.TTL}, nil
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}

func standingsKey(teamID int) string {
	return fmt.Sprintf("standings:team:%d", teamID)
}

// GetStandings returns the cached standings groups for a team. A cache miss
// or any Redis error returns false; the caller falls back to the API.
func (c *RedisCache) GetStandings(ctx context.Context, teamID int) ([]models.StandingsGroup, bool) {
	data, err := c.client.Get(ctx, standingsKey(teamID)).Bytes()
	if err == redis.Nil {
		metrics.RecordCacheMiss()
		return nil, false
	}
	if err != nil {
		log.Warn().Err(err).Int("team_id", teamID).Msg("Cache read failed")
		metrics.RecordCacheMiss()
		return nil, false
	}

	var groups []models.StandingsGroup
	if err := json.Unmarshal(data, &groups); err != nil {
		log.Warn().Err(err).Int("team_id", teamID).Msg("Cache entry corrupt, discarding")
		c.client.Del(ctx, standingsKey(teamID))
		metrics.RecordCacheMiss()
		return nil, false
	}

	metrics.RecordCacheHit()
	return groups, true
}

// SetStandings caches the standings groups for a team
func (c *RedisCache) SetStandings(ctx context.Context, teamID int, groups []models.StandingsGroup) {
	data, err := json.Marshal(groups)
	if err != nil {
		log.Warn().Err(err).Int("team_id", teamID).Msg("Failed to marshal standings for cache")
		return
	}

	if err := c.client.Set(ctx, standingsKey(teamID), data, c.ttl).Err(); err != nil {
		log.Warn().Err(err).Int("team_id", teamID).Msg("Cache write failed")
	}
}
