// Package ingest populates the games and teams tables from the
// api-sports.io basketball API. It runs once when the tables are empty and
// produces the immutable snapshot the analytics layer reads.
package ingest

import (
	"context"
	"fmt"

	"nba_insights/internal/metrics"
	"nba_insights/internal/models"

	"github.com/rs/zerolog/log"
)

// APIClient is the slice of the API client the sync needs.
type APIClient interface {
	FetchSeasons(ctx context.Context) ([]string, error)
	FetchTeams(ctx context.Context, season string) ([]models.TeamInfo, error)
	FetchStandings(ctx context.Context, teamID int, season, stage string) ([]models.StandingsGroup, error)
	FetchGames(ctx context.Context, season string) ([]models.GameResponse, error)
}

// TeamStore persists teams.
type TeamStore interface {
	Upsert(ctx context.Context, team *models.Team) error
}

// GameStore persists games.
type GameStore interface {
	Upsert(ctx context.Context, game *models.Game) error
}

// StandingsCache caches per-team standings lookups. May be nil.
type StandingsCache interface {
	GetStandings(ctx context.Context, teamID int) ([]models.StandingsGroup, bool)
	SetStandings(ctx context.Context, teamID int, groups []models.StandingsGroup)
}

// Options controls what the sync pulls.
type Options struct {
	// SeasonFloor is the earliest season start year to ingest.
	SeasonFloor int

	// StandingsSeason and StandingsStage scope the per-team group lookup.
	StandingsSeason string
	StandingsStage  string

	// AllowedTeams restricts game ingestion to games where both sides are
	// in the list. Empty means all stored teams are allowed.
	AllowedTeams []string
}

// Stats summarizes one sync run.
type Stats struct {
	Teams        int
	TeamsSkipped int
	Games        int
	GamesSkipped int
}

// Service pulls seasons, teams with their groupings, and games.
type Service struct {
	client APIClient
	teams  TeamStore
	games  GameStore
	cache  StandingsCache
	opts   Options
}

// NewService creates a sync service. cache may be nil.
func NewService(client APIClient, teams TeamStore, games GameStore, cache StandingsCache, opts Options) *Service {
	return &Service{
		client: client,
		teams:  teams,
		games:  games,
		cache:  cache,
		opts:   opts,
	}
}

// Run performs a full snapshot sync: teams first, then every season's games,
// with game sides restricted to the allow-list (stored team names when no
// explicit list is configured).
func (s *Service) Run(ctx context.Context) (Stats, error) {
	var stats Stats

	labels, err := s.client.FetchSeasons(ctx)
	if err != nil {
		metrics.RecordSync("failure")
		return stats, fmt.Errorf("failed to fetch seasons: %w", err)
	}
	seasons := filterSeasons(labels, s.opts.SeasonFloor)
	log.Info().Strs("seasons", seasons).Msg("Seasons selected")

	teams, teamStats, err := s.SyncTeams(ctx)
	if err != nil {
		metrics.RecordSync("failure")
		return stats, err
	}
	stats.Teams = teamStats.Teams
	stats.TeamsSkipped = teamStats.TeamsSkipped

	allowed := s.opts.AllowedTeams
	if len(allowed) == 0 {
		for _, t := range teams {
			allowed = append(allowed, t.TeamName)
		}
	}

	for _, season := range seasons {
		saved, skipped, err := s.SyncGames(ctx, season, allowed)
		if err != nil {
			metrics.RecordSync("failure")
			return stats, err
		}
		stats.Games += saved
		stats.GamesSkipped += skipped
		log.Info().
			Str("season", season).
			Int("saved", saved).
			Int("total", stats.Games).
			Msg("Season games synced")
	}

	metrics.RecordSync("success")
	metrics.UpdateIngestionStats(stats.Teams, stats.Games)
	log.Info().
		Int("teams", stats.Teams).
		Int("games", stats.Games).
		Msg("Snapshot sync complete")
	return stats, nil
}

// SyncTeams pulls all teams and their standings groups, storing only teams
// whose group lookup succeeded.
func (s *Service) SyncTeams(ctx context.Context) ([]*models.Team, Stats, error) {
	var stats Stats

	infos, err := s.client.FetchTeams(ctx, s.opts.StandingsSeason)
	if err != nil {
		return nil, stats, fmt.Errorf("failed to fetch teams: %w", err)
	}
	log.Info().Int("count", len(infos)).Msg("Teams fetched")

	var teams []*models.Team
	for _, info := range infos {
		groups, err := s.standings(ctx, info.ID)
		if err != nil {
			log.Error().Err(err).Int("team_id", info.ID).Msg("Failed to fetch standings, skipping team")
			stats.TeamsSkipped++
			continue
		}

		team, ok := models.GroupsToTeam(info, groups)
		if !ok {
			// No conference or division data; the team must not be stored
			log.Info().
				Int("team_id", info.ID).
				Str("name", info.Name).
				Msg("Team has no group data, skipping")
			stats.TeamsSkipped++
			continue
		}

		if err := s.teams.Upsert(ctx, team); err != nil {
			log.Error().Err(err).Int("team_id", info.ID).Msg("Failed to save team")
			stats.TeamsSkipped++
			continue
		}
		teams = append(teams, team)
		stats.Teams++
	}

	log.Info().Int("count", stats.Teams).Msg("Teams saved to database")
	return teams, stats, nil
}

// SyncGames pulls one season's games and stores the playable ones. A game is
// stored only when both sides are in the allow-list and it carries final
// scores; everything else is skipped and logged.
func (s *Service) SyncGames(ctx context.Context, season string, allowed []string) (saved, skipped int, err error) {
	responses, err := s.client.FetchGames(ctx, season)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to fetch games for season %s: %w", season, err)
	}

	allowedSet := allowSet(allowed)
	for i := range responses {
		gr := &responses[i]
		if !allowedSet.permits(gr.Teams.Home.Name, gr.Teams.Away.Name) {
			log.Debug().
				Str("home", gr.Teams.Home.Name).
				Str("away", gr.Teams.Away.Name).
				Msg("Team not allowed, skipping game")
			skipped++
			continue
		}

		game, err := gr.ToGame(season)
		if err != nil {
			log.Debug().Err(err).Int("game_id", gr.ID).Msg("Skipping game")
			skipped++
			continue
		}

		if err := s.games.Upsert(ctx, game); err != nil {
			log.Error().Err(err).Int("game_id", game.GameID).Msg("Failed to save game")
			skipped++
			continue
		}
		saved++
	}
	return saved, skipped, nil
}

// standings resolves a team's groups through the cache when available.
func (s *Service) standings(ctx context.Context, teamID int) ([]models.StandingsGroup, error) {
	if s.cache != nil {
		if groups, ok := s.cache.GetStandings(ctx, teamID); ok {
			return groups, nil
		}
	}

	log.Debug().Int("team_id", teamID).Msg("Fetching standings")
	groups, err := s.client.FetchStandings(ctx, teamID, s.opts.StandingsSeason, s.opts.StandingsStage)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.SetStandings(ctx, teamID, groups)
	}
	return groups, nil
}

// filterSeasons keeps season labels whose leading year parses and is at or
// above the floor. Unparseable labels never reach the tables.
func filterSeasons(labels []string, floor int) []string {
	var seasons []string
	for _, label := range labels {
		year, err := models.SeasonStartYear(label)
		if err != nil {
			log.Debug().Str("season", label).Msg("Skipping unparseable season label")
			continue
		}
		if year >= floor {
			seasons = append(seasons, label)
		}
	}
	return seasons
}

type nameSet map[string]struct{}

func allowSet(names []string) nameSet {
	set := make(nameSet, len(names))
	for _, n := range names {
		set[models.NormalizeTeamName(n)] = struct{}{}
	}
	return set
}

// permits reports whether a game between home and away passes the
// allow-list. An empty list permits everything; otherwise both sides must
// be allowed.
func (s nameSet) permits(home, away string) bool {
	if len(s) == 0 {
		return true
	}
	_, homeOK := s[models.NormalizeTeamName(home)]
	_, awayOK := s[models.NormalizeTeamName(away)]
	return homeOK && awayOK
}
