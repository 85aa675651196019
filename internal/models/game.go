package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Game represents a played NBA game. Rows are written once during ingestion
// and never updated afterwards.
type Game struct {
	ID        int       `db:"id"`
	GameID    int       `db:"game_id"`
	Season    string    `db:"season"`
	Date      time.Time `db:"game_date"`
	HomeTeam  string    `db:"home_team"`
	AwayTeam  string    `db:"away_team"`
	HomeScore int       `db:"home_score"`
	AwayScore int       `db:"away_score"`
	CreatedAt time.Time `db:"created_at"`
}

// TotalScore returns the combined final score of both sides.
func (g *Game) TotalScore() int {
	return g.HomeScore + g.AwayScore
}

// GameResponse is the shape of a single game in the api-sports.io
// games endpoint response.
type GameResponse struct {
	ID    int    `json:"id"`
	Date  string `json:"date"`
	Teams struct {
		Home struct {
			Name string `json:"name"`
		} `json:"home"`
		Away struct {
			Name string `json:"name"`
		} `json:"away"`
	} `json:"teams"`
	Scores struct {
		Home struct {
			Total *int `json:"total"`
		} `json:"home"`
		Away struct {
			Total *int `json:"total"`
		} `json:"away"`
	} `json:"scores"`
}

// ToGame converts an API game into a Game model. It rejects games that are
// not usable snapshot rows: missing final scores, identical home and away
// sides, or an unparseable date or season label.
func (gr *GameResponse) ToGame(season string) (*Game, error) {
	if _, err := SeasonStartYear(season); err != nil {
		return nil, err
	}
	if gr.Scores.Home.Total == nil || gr.Scores.Away.Total == nil {
		return nil, fmt.Errorf("game %d has no final score", gr.ID)
	}
	if *gr.Scores.Home.Total < 0 || *gr.Scores.Away.Total < 0 {
		return nil, fmt.Errorf("game %d has a negative score", gr.ID)
	}
	if NormalizeTeamName(gr.Teams.Home.Name) == NormalizeTeamName(gr.Teams.Away.Name) {
		return nil, fmt.Errorf("game %d has the same team on both sides: %q", gr.ID, gr.Teams.Home.Name)
	}

	date, err := time.Parse(time.RFC3339, gr.Date)
	if err != nil {
		return nil, fmt.Errorf("game %d has an invalid date %q: %w", gr.ID, gr.Date, err)
	}

	return &Game{
		GameID:    gr.ID,
		Season:    season,
		Date:      date,
		HomeTeam:  gr.Teams.Home.Name,
		AwayTeam:  gr.Teams.Away.Name,
		HomeScore: *gr.Scores.Home.Total,
		AwayScore: *gr.Scores.Away.Total,
	}, nil
}

// SeasonStartYear extracts the leading 4-digit year from a season label
// such as "2021-2022". The leading year is the comparison key for all
// decade-scoped filtering.
func SeasonStartYear(season string) (int, error) {
	lead, _, _ := strings.Cut(season, "-")
	if len(lead) != 4 {
		return 0, fmt.Errorf("malformed season label %q", season)
	}
	year, err := strconv.Atoi(lead)
	if err != nil {
		return 0, fmt.Errorf("malformed season label %q", season)
	}
	return year, nil
}
