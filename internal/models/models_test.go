package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func validGameResponse() GameResponse {
	var gr GameResponse
	gr.ID = 4242
	gr.Date = "2024-01-15T19:30:00Z"
	gr.Teams.Home.Name = "Boston Celtics"
	gr.Teams.Away.Name = "Miami Heat"
	gr.Scores.Home.Total = intPtr(112)
	gr.Scores.Away.Total = intPtr(104)
	return gr
}

func TestToGame(t *testing.T) {
	gr := validGameResponse()

	game, err := gr.ToGame("2023-2024")
	require.NoError(t, err)
	assert.Equal(t, 4242, game.GameID)
	assert.Equal(t, "2023-2024", game.Season)
	assert.Equal(t, "Boston Celtics", game.HomeTeam)
	assert.Equal(t, "Miami Heat", game.AwayTeam)
	assert.Equal(t, 112, game.HomeScore)
	assert.Equal(t, 104, game.AwayScore)
	assert.Equal(t, time.Date(2024, 1, 15, 19, 30, 0, 0, time.UTC), game.Date.UTC())
	assert.Equal(t, 216, game.TotalScore())
}

func TestToGame_Rejections(t *testing.T) {
	t.Run("missing home score", func(t *testing.T) {
		gr := validGameResponse()
		gr.Scores.Home.Total = nil
		_, err := gr.ToGame("2023-2024")
		assert.ErrorContains(t, err, "no final score")
	})

	t.Run("missing away score", func(t *testing.T) {
		gr := validGameResponse()
		gr.Scores.Away.Total = nil
		_, err := gr.ToGame("2023-2024")
		assert.ErrorContains(t, err, "no final score")
	})

	t.Run("negative score", func(t *testing.T) {
		gr := validGameResponse()
		gr.Scores.Away.Total = intPtr(-3)
		_, err := gr.ToGame("2023-2024")
		assert.ErrorContains(t, err, "negative score")
	})

	t.Run("same team both sides", func(t *testing.T) {
		gr := validGameResponse()
		gr.Teams.Away.Name = "BOSTON  CELTICS" // same team after normalization
		_, err := gr.ToGame("2023-2024")
		assert.ErrorContains(t, err, "same team on both sides")
	})

	t.Run("bad date", func(t *testing.T) {
		gr := validGameResponse()
		gr.Date = "January 15, 2024"
		_, err := gr.ToGame("2023-2024")
		assert.ErrorContains(t, err, "invalid date")
	})

	t.Run("bad season", func(t *testing.T) {
		gr := validGameResponse()
		_, err := gr.ToGame("23-24")
		assert.ErrorContains(t, err, "malformed season label")
	})
}

func TestSeasonStartYear(t *testing.T) {
	tests := []struct {
		season  string
		year    int
		wantErr bool
	}{
		{season: "2023-2024", year: 2023},
		{season: "2014-2015", year: 2014},
		{season: "2024", year: 2024},
		{season: "23-24", wantErr: true},
		{season: "abcd-2024", wantErr: true},
		{season: "", wantErr: true},
		{season: "-2024", wantErr: true},
	}

	for _, tt := range tests {
		year, err := SeasonStartYear(tt.season)
		if tt.wantErr {
			assert.Error(t, err, "season %q", tt.season)
			continue
		}
		require.NoError(t, err, "season %q", tt.season)
		assert.Equal(t, tt.year, year, "season %q", tt.season)
	}
}

func TestGroupsToTeam(t *testing.T) {
	info := TeamInfo{ID: 139, Name: "Denver Nuggets"}

	group := func(name string) StandingsGroup {
		var g StandingsGroup
		g.Group.Name = name
		return g
	}

	t.Run("conference and division", func(t *testing.T) {
		team, ok := GroupsToTeam(info, []StandingsGroup{
			group("Western Conference"),
			group("Northwest"),
		})
		require.True(t, ok)
		assert.Equal(t, 139, team.TeamID)
		assert.Equal(t, "Denver Nuggets", team.TeamName)
		assert.Equal(t, "Western Conference", team.Conference.String)
		assert.True(t, team.Conference.Valid)
		assert.Equal(t, "Northwest", team.Division.String)
		assert.True(t, team.Division.Valid)
	})

	t.Run("conference match is case-insensitive", func(t *testing.T) {
		team, ok := GroupsToTeam(info, []StandingsGroup{group("Eastern CONFERENCE")})
		require.True(t, ok)
		assert.True(t, team.Conference.Valid)
		assert.False(t, team.Division.Valid)
	})

	t.Run("division only", func(t *testing.T) {
		team, ok := GroupsToTeam(info, []StandingsGroup{group("Atlantic")})
		require.True(t, ok)
		assert.False(t, team.Conference.Valid)
		assert.Equal(t, "Atlantic", team.Division.String)
	})

	t.Run("no groups means no team", func(t *testing.T) {
		team, ok := GroupsToTeam(info, nil)
		assert.False(t, ok)
		assert.Nil(t, team)
	})

	t.Run("empty group names are ignored", func(t *testing.T) {
		team, ok := GroupsToTeam(info, []StandingsGroup{group("")})
		require.True(t, ok)
		assert.False(t, team.Conference.Valid)
		assert.False(t, team.Division.Valid)
	})
}

func TestNormalizeTeamName(t *testing.T) {
	assert.Equal(t, "boston celtics", NormalizeTeamName("Boston Celtics"))
	assert.Equal(t, "boston celtics", NormalizeTeamName("  BOSTON   Celtics "))
	assert.Equal(t, "", NormalizeTeamName("   "))
	assert.Equal(t, NormalizeTeamName("LA Clippers"), NormalizeTeamName("la  clippers"))
}
