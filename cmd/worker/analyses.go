package main

import (
	"context"
	"os"
	"time"

	"nba_insights/internal/analytics"
	"nba_insights/internal/config"
	"nba_insights/internal/metrics"
	"nba_insights/internal/render"
	"nba_insights/internal/repository"

	"github.com/rs/zerolog/log"
)

// runAnalyses loads the snapshot and runs all six analyses in order.
// Analyses are independent failure domains: one failing is logged and the
// rest still run.
func runAnalyses(ctx context.Context, db *repository.Database, cfg *config.Config) error {
	teams, err := db.Teams.List(ctx)
	if err != nil {
		return err
	}
	games, err := db.Games.List(ctx)
	if err != nil {
		return err
	}

	snap := analytics.NewSnapshot(games, teams)
	analyzer := analytics.NewAnalyzer(snap, time.Now())

	analyses := []struct {
		name string
		run  func(*analytics.Analyzer) (*render.Table, error)
	}{
		{"top_scoring_games", topScoringGamesTable},
		{"win_loss_records", winLossRecordsTable},
		{"average_season_scores", averageSeasonScoresTable},
		{"conference_wins", conferenceWinsTable},
		{"victory_margins", victoryMarginsTable},
		{"season_points_balance", seasonPointsBalanceTable},
	}

	for _, a := range analyses {
		log.Info().Str("analysis", a.name).Msg("Starting analysis")
		start := time.Now()

		table, err := a.run(analyzer)
		if err != nil {
			metrics.RecordAnalysis(a.name, "failure", time.Since(start).Seconds())
			metrics.RecordError("analytics", a.name)
			log.Error().Err(err).Str("analysis", a.name).Msg("Analysis failed")
			continue
		}
		metrics.RecordAnalysis(a.name, "success", time.Since(start).Seconds())

		if err := table.Write(os.Stdout, cfg.MaxDisplayRows); err != nil {
			log.Error().Err(err).Str("analysis", a.name).Msg("Failed to render result")
		}
	}
	return nil
}

func topScoringGamesTable(a *analytics.Analyzer) (*render.Table, error) {
	rows, err := a.TopScoringGames()
	if err != nil {
		return nil, err
	}

	t := &render.Table{
		Title:   "Top scoring games (last decade)",
		Columns: []string{"game_id", "score"},
	}
	for _, r := range rows {
		t.AddRow(render.Int(r.GameID), render.Int(r.TotalScore))
	}
	return t, nil
}

func winLossRecordsTable(a *analytics.Analyzer) (*render.Table, error) {
	rows, err := a.WinLossRecords()
	if err != nil {
		return nil, err
	}

	t := &render.Table{
		Title:   "Win/loss record per team (all seasons)",
		Columns: []string{"team_name", "wins", "losses"},
	}
	for _, r := range rows {
		t.AddRow(r.TeamName, render.Int(r.Wins), render.Int(r.Losses))
	}
	return t, nil
}

func averageSeasonScoresTable(a *analytics.Analyzer) (*render.Table, error) {
	rows, err := a.AverageSeasonScores()
	if err != nil {
		return nil, err
	}

	t := &render.Table{
		Title:   "Average points scored per team-season (last decade)",
		Columns: []string{"team", "season", "average_score"},
	}
	for _, r := range rows {
		t.AddRow(r.TeamName, r.Season, render.Float(r.AverageScore))
	}
	return t, nil
}

func conferenceWinsTable(a *analytics.Analyzer) (*render.Table, error) {
	rows, err := a.ConferenceWins()
	if err != nil {
		return nil, err
	}

	t := &render.Table{
		Title:   "Conference win totals (last decade)",
		Columns: []string{"conference", "wins"},
	}
	var leader analytics.ConferenceRecord
	for _, r := range rows {
		t.AddRow(r.Conference, render.Int(r.Wins))
		if r.Wins > leader.Wins {
			leader = r
		}
	}
	if leader.Conference != "" {
		log.Info().
			Str("conference", leader.Conference).
			Int("wins", leader.Wins).
			Msg("Conference with most wins")
	}
	return t, nil
}

func victoryMarginsTable(a *analytics.Analyzer) (*render.Table, error) {
	rows, err := a.VictoryMargins()
	if err != nil {
		return nil, err
	}

	t := &render.Table{
		Title:   "Highest average margin of victory (last decade)",
		Columns: []string{"name", "average_margin"},
	}
	for _, r := range rows {
		t.AddRow(r.TeamName, render.Float(r.AverageMargin))
	}
	return t, nil
}

func seasonPointsBalanceTable(a *analytics.Analyzer) (*render.Table, error) {
	rows, err := a.SeasonPointsBalance()
	if err != nil {
		return nil, err
	}

	t := &render.Table{
		Title:   "Points scored vs. allowed per team-season (last decade)",
		Columns: []string{"team_name", "season", "games_played", "avg_points_scored", "avg_points_allowed"},
	}
	for _, r := range rows {
		t.AddRow(
			r.TeamName,
			r.Season,
			render.Int(r.GamesPlayed),
			render.Float(r.AvgPointsScored),
			render.Float(r.AvgPointsAllowed),
		)
	}
	return t, nil
}
