//go:build integration

package repository

import (
	"testing"
	"time"

	"nba_insights/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStoredGame(gameID int, season string, date time.Time) *models.Game {
	return &models.Game{
		GameID:    gameID,
		Season:    season,
		Date:      date,
		HomeTeam:  "Boston Celtics",
		AwayTeam:  "Miami Heat",
		HomeScore: 112,
		AwayScore: 104,
	}
}

func TestGameRepository_Upsert(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	game := testStoredGame(500100, "2023-2024", time.Date(2024, 1, 15, 19, 30, 0, 0, time.UTC))

	// Insert new game
	err := db.Games.Upsert(ctx, game)
	require.NoError(t, err, "Should successfully insert game")
	assert.NotZero(t, game.ID, "Upsert should populate the surrogate id")

	// Verify game was created
	retrieved, err := db.Games.GetByGameID(ctx, game.GameID)
	require.NoError(t, err, "Should retrieve inserted game")
	assert.Equal(t, "2023-2024", retrieved.Season)
	assert.Equal(t, 112, retrieved.HomeScore)
	assert.Equal(t, 104, retrieved.AwayScore)

	// Re-pulling the season upserts the same row
	game.HomeScore = 115
	err = db.Games.Upsert(ctx, game)
	require.NoError(t, err, "Should successfully update game")

	updated, err := db.Games.GetByGameID(ctx, game.GameID)
	require.NoError(t, err)
	assert.Equal(t, 115, updated.HomeScore, "Score should be updated, not duplicated")

	count, err := db.Games.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "Upsert must not create a second row")
}

func TestGameRepository_ListOrdering(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	// Insert out of date order
	games := []*models.Game{
		testStoredGame(500202, "2023-2024", time.Date(2024, 3, 1, 19, 0, 0, 0, time.UTC)),
		testStoredGame(500201, "2023-2024", time.Date(2023, 11, 1, 19, 0, 0, 0, time.UTC)),
		testStoredGame(500203, "2022-2023", time.Date(2023, 2, 1, 19, 0, 0, 0, time.UTC)),
	}
	for _, g := range games {
		require.NoError(t, db.Games.Upsert(ctx, g), "Should insert game")
	}

	all, err := db.Games.List(ctx)
	require.NoError(t, err, "Should list games")
	require.Len(t, all, 3)
	for i := 1; i < len(all); i++ {
		assert.False(t, all[i].Date.Before(all[i-1].Date), "Games should be ordered by date")
	}

	season, err := db.Games.ListBySeason(ctx, "2023-2024")
	require.NoError(t, err, "Should list games by season")
	require.Len(t, season, 2)
	for _, g := range season {
		assert.Equal(t, "2023-2024", g.Season)
	}
}

func TestGameRepository_ConstraintViolations(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	t.Run("negative score", func(t *testing.T) {
		game := testStoredGame(500301, "2023-2024", time.Date(2024, 1, 15, 19, 0, 0, 0, time.UTC))
		game.HomeScore = -1
		err := db.Games.Upsert(ctx, game)
		assert.Error(t, err, "Negative scores must be rejected by the schema")
	})

	t.Run("same team both sides", func(t *testing.T) {
		game := testStoredGame(500302, "2023-2024", time.Date(2024, 1, 15, 19, 0, 0, 0, time.UTC))
		game.AwayTeam = game.HomeTeam
		err := db.Games.Upsert(ctx, game)
		assert.Error(t, err, "Self-games must be rejected by the schema")
	})
}

func TestGameRepository_GetNotFound(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	_, err := db.Games.GetByGameID(ctx, 999999)
	assert.Error(t, err, "Should return error for non-existent game")
}
