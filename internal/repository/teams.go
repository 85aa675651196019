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

// TeamRepository handles team database operations
type TeamRepository struct {
	db *Database
}

// Upsert inserts or updates a team
func (r *TeamRepository) Upsert(ctx context.Context, team *models.Team) error {
	query := `
		INSERT INTO teams (team_id, team_name, conference, division)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (team_id) DO UPDATE SET
			team_name = EXCLUDED.team_name,
			conference = EXCLUDED.conference,
			division = EXCLUDED.division
		RETURNING id, created_at
	`

	start := time.Now()
	err := r.db.Pool.QueryRow(
		ctx, query,
		team.TeamID, team.TeamName, team.Conference, team.Division,
	).Scan(&team.ID, &team.CreatedAt)
	metrics.RecordDBQuery("upsert", "teams", statusOf(err), time.Since(start).Seconds())

	if err != nil {
		return fmt.Errorf("failed to upsert team: %w", err)
	}

	log.Debug().
		Int("id", team.ID).
		Int("team_id", team.TeamID).
		Str("name", team.TeamName).
		Msg("Team saved")

	return nil
}

// GetByTeamID retrieves a team by its api-sports.io team id
func (r *TeamRepository) GetByTeamID(ctx context.Context, teamID int) (*models.Team, error) {
	query := `
		SELECT id, team_id, team_name, conference, division, created_at
		FROM teams
		WHERE team_id = $1
	`

	var team models.Team
	err := r.db.Pool.QueryRow(ctx, query, teamID).Scan(
		&team.ID, &team.TeamID, &team.TeamName,
		&team.Conference, &team.Division, &team.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("team not found: team_id=%d", teamID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}

	return &team, nil
}

// GetByName retrieves a team by name, case-insensitively. Game sides
// reference teams by name only, so this lookup is the join between the two
// tables.
func (r *TeamRepository) GetByName(ctx context.Context, name string) (*models.Team, error) {
	query := `
		SELECT id, team_id, team_name, conference, division, created_at
		FROM teams
		WHERE LOWER(team_name) = LOWER($1)
	`

	var team models.Team
	err := r.db.Pool.QueryRow(ctx, query, name).Scan(
		&team.ID, &team.TeamID, &team.TeamName,
		&team.Conference, &team.Division, &team.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("team not found: name=%s", name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}

	return &team, nil
}

// List retrieves all teams
func (r *TeamRepository) List(ctx context.Context) ([]models.Team, error) {
	query := `
		SELECT id, team_id, team_name, conference, division, created_at
		FROM teams
		ORDER BY team_name
	`

	start := time.Now()
	rows, err := r.db.Pool.Query(ctx, query)
	metrics.RecordDBQuery("list", "teams", statusOf(err), time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	var teams []models.Team
	for rows.Next() {
		var team models.Team
		err := rows.Scan(
			&team.ID, &team.TeamID, &team.TeamName,
			&team.Conference, &team.Division, &team.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, team)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating teams: %w", err)
	}

	return teams, nil
}

// Count returns the total number of teams
func (r *TeamRepository) Count(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM teams`

	var count int
	err := r.db.Pool.QueryRow(ctx, query).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count teams: %w", err)
	}

	return count, nil
}

func statusOf(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
