package repository

import (
	"context"
	"fmt"
	"time"

	"nba_insights/internal/metrics"
	"nba_insights/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// GameRepository handles game database operations
type GameRepository struct {
	db *Database
}

// Upsert inserts or updates a game. Games are immutable once played; the
// conflict path only matters when a refresh re-pulls an already stored
// season.
func (r *GameRepository) Upsert(ctx context.Context, game *models.Game) error {
	query := `
		INSERT INTO games (
			game_id, season, game_date, home_team, away_team, home_score, away_score
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (game_id) DO UPDATE SET
			season = EXCLUDED.season,
			game_date = EXCLUDED.game_date,
			home_team = EXCLUDED.home_team,
			away_team = EXCLUDED.away_team,
			home_score = EXCLUDED.home_score,
			away_score = EXCLUDED.away_score
		RETURNING id, created_at
	`

	start := time.Now()
	err := r.db.Pool.QueryRow(
		ctx, query,
		game.GameID, game.Season, game.Date,
		game.HomeTeam, game.AwayTeam, game.HomeScore, game.AwayScore,
	).Scan(&game.ID, &game.CreatedAt)
	metrics.RecordDBQuery("upsert", "games", statusOf(err), time.Since(start).Seconds())

	if err != nil {
		return fmt.Errorf("failed to upsert game: %w", err)
	}

	log.Debug().
		Int("id", game.ID).
		Int("game_id", game.GameID).
		Str("home", game.HomeTeam).
		Str("away", game.AwayTeam).
		Msg("Game saved")

	return nil
}

// GetByGameID retrieves a game by its api-sports.io game id
func (r *GameRepository) GetByGameID(ctx context.Context, gameID int) (*models.Game, error) {
	query := `
		SELECT id, game_id, season, game_date, home_team, away_team,
		       home_score, away_score, created_at
		FROM games
		WHERE game_id = $1
	`

	var game models.Game
	err := r.db.Pool.QueryRow(ctx, query, gameID).Scan(
		&game.ID, &game.GameID, &game.Season, &game.Date,
		&game.HomeTeam, &game.AwayTeam,
		&game.HomeScore, &game.AwayScore, &game.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("game not found: game_id=%d", gameID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return &game, nil
}

// List retrieves all games ordered by date
func (r *GameRepository) List(ctx context.Context) ([]models.Game, error) {
	query := `
		SELECT id, game_id, season, game_date, home_team, away_team,
		       home_score, away_score, created_at
		FROM games
		ORDER BY game_date
	`

	start := time.Now()
	rows, err := r.db.Pool.Query(ctx, query)
	metrics.RecordDBQuery("list", "games", statusOf(err), time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	defer rows.Close()

	games, err := scanGames(rows)
	if err != nil {
		return nil, err
	}

	log.Debug().Int("count", len(games)).Msg("Retrieved games")
	return games, nil
}

// ListBySeason retrieves all games of one season ordered by date
func (r *GameRepository) ListBySeason(ctx context.Context, season string) ([]models.Game, error) {
	query := `
		SELECT id, game_id, season, game_date, home_team, away_team,
		       home_score, away_score, created_at
		FROM games
		WHERE season = $1
		ORDER BY game_date
	`

	rows, err := r.db.Pool.Query(ctx, query, season)
	if err != nil {
		return nil, fmt.Errorf("failed to list games by season: %w", err)
	}
	defer rows.Close()

	return scanGames(rows)
}

// Count returns the total number of games
func (r *GameRepository) Count(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM games`

	var count int
	err := r.db.Pool.QueryRow(ctx, query).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count games: %w", err)
	}

	return count, nil
}

func scanGames(rows pgx.Rows) ([]models.Game, error) {
	var games []models.Game
	for rows.Next() {
		var game models.Game
		err := rows.Scan(
			&game.ID, &game.GameID, &game.Season, &game.Date,
			&game.HomeTeam, &game.AwayTeam,
			&game.HomeScore, &game.AwayScore, &game.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		games = append(games, game)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating games: %w", err)
	}

	return games, nil
}
