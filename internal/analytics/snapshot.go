// Package analytics runs the fixed analytical queries over an ingested
// games/teams snapshot. Every query is a pure, stateless read; the snapshot
// is never mutated.
package analytics

import (
	"fmt"

	"nba_insights/internal/models"
)

// Snapshot is the immutable two-table input every query reads. Game sides
// are matched against teams through a case-normalized name index rather
// than raw string equality, so formatting drift between the two tables
// cannot silently drop joins.
type Snapshot struct {
	Games []models.Game
	Teams []models.Team

	byName map[string]*models.Team
}

// NewSnapshot builds a snapshot and its team name index.
func NewSnapshot(games []models.Game, teams []models.Team) *Snapshot {
	s := &Snapshot{
		Games:  games,
		Teams:  teams,
		byName: make(map[string]*models.Team, len(teams)),
	}
	for i := range teams {
		s.byName[models.NormalizeTeamName(teams[i].TeamName)] = &teams[i]
	}
	return s
}

// TeamByName resolves a game-side team name against the teams table.
func (s *Snapshot) TeamByName(name string) (*models.Team, bool) {
	t, ok := s.byName[models.NormalizeTeamName(name)]
	return t, ok
}

// PreconditionError reports a violated query precondition: an empty
// required table or a malformed season label that survived ingestion.
// Queries fail fast with it instead of producing a wrong-shaped result.
type PreconditionError struct {
	Query  string
	Reason string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s: precondition violated: %s", e.Query, e.Reason)
}

func (s *Snapshot) requireGames(query string) error {
	if len(s.Games) == 0 {
		return &PreconditionError{Query: query, Reason: "games table is empty"}
	}
	return nil
}

func (s *Snapshot) requireTeams(query string) error {
	if len(s.Teams) == 0 {
		return &PreconditionError{Query: query, Reason: "teams table is empty"}
	}
	return nil
}
