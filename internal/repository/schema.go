package repository

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// schema bootstraps the two snapshot tables. Team names are the soft join
// key against game sides; the unique index on LOWER(team_name) backs the
// case-normalized lookup used during ingestion.
const schema = `
CREATE TABLE IF NOT EXISTS teams (
	id SERIAL PRIMARY KEY,
	team_id INTEGER NOT NULL UNIQUE,
	team_name TEXT NOT NULL UNIQUE,
	conference TEXT,
	division TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_teams_name_lower ON teams (LOWER(team_name));

CREATE TABLE IF NOT EXISTS games (
	id SERIAL PRIMARY KEY,
	game_id INTEGER NOT NULL UNIQUE,
	season TEXT NOT NULL,
	game_date TIMESTAMPTZ NOT NULL,
	home_team TEXT NOT NULL,
	away_team TEXT NOT NULL,
	home_score INTEGER NOT NULL CHECK (home_score >= 0),
	away_score INTEGER NOT NULL CHECK (away_score >= 0),
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	CHECK (home_team <> away_team)
);

CREATE INDEX IF NOT EXISTS idx_games_season ON games (season);
CREATE INDEX IF NOT EXISTS idx_games_home_team ON games (home_team);
CREATE INDEX IF NOT EXISTS idx_games_away_team ON games (away_team);
`

// EnsureSchema creates the snapshot tables if they do not exist yet
func (db *Database) EnsureSchema(ctx context.Context) error {
	if _, err := db.Pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}

	log.Debug().Msg("Database schema ensured")
	return nil
}
