package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(serverURL string) *Client {
	c := NewClient(serverURL, "test-key", 12, 100, 5*time.Second)
	c.retryDelay = time.Millisecond
	return c
}

func TestFetchSeasons(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/seasons", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-rapidapi-key"))
		// The endpoint mixes plain years with season labels
		w.Write([]byte(`{"response": [2008, "2014-2015", "2023-2024", 2024]}`))
	}))
	defer server.Close()

	seasons, err := newTestClient(server.URL).FetchSeasons(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"2014-2015", "2023-2024"}, seasons,
		"Numeric entries must be dropped, string labels kept")
}

func TestFetchTeams(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/teams", r.URL.Path)
		assert.Equal(t, "12", r.URL.Query().Get("league"))
		assert.Equal(t, "2023-2024", r.URL.Query().Get("season"))
		w.Write([]byte(`{"response": [
			{"id": 132, "name": "Boston Celtics"},
			{"id": 139, "name": "Denver Nuggets"}
		]}`))
	}))
	defer server.Close()

	teams, err := newTestClient(server.URL).FetchTeams(context.Background(), "2023-2024")
	require.NoError(t, err)
	require.Len(t, teams, 2)
	assert.Equal(t, 132, teams[0].ID)
	assert.Equal(t, "Boston Celtics", teams[0].Name)
}

func TestFetchStandings(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/standings", r.URL.Path)
		assert.Equal(t, "139", r.URL.Query().Get("team"))
		assert.Equal(t, "NBA - Regular Season", r.URL.Query().Get("stage"))
		// Group entries arrive one list level deeper than documented
		w.Write([]byte(`{"response": [[
			{"group": {"name": "Western Conference"}},
			{"group": {"name": "Northwest"}}
		]]}`))
	}))
	defer server.Close()

	groups, err := newTestClient(server.URL).FetchStandings(context.Background(), 139, "2023-2024", "NBA - Regular Season")
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "Western Conference", groups[0].Group.Name)
	assert.Equal(t, "Northwest", groups[1].Group.Name)
}

func TestFetchStandings_Empty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response": []}`))
	}))
	defer server.Close()

	groups, err := newTestClient(server.URL).FetchStandings(context.Background(), 999, "2023-2024", "NBA - Regular Season")
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestFetchGames(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/games", r.URL.Path)
		w.Write([]byte(`{"response": [{
			"id": 4242,
			"date": "2024-01-15T19:30:00Z",
			"teams": {"home": {"name": "Boston Celtics"}, "away": {"name": "Miami Heat"}},
			"scores": {"home": {"total": 112}, "away": {"total": 104}}
		}, {
			"id": 4243,
			"date": "2024-04-20T19:30:00Z",
			"teams": {"home": {"name": "Miami Heat"}, "away": {"name": "Boston Celtics"}},
			"scores": {"home": {"total": null}, "away": {"total": null}}
		}]}`))
	}))
	defer server.Close()

	games, err := newTestClient(server.URL).FetchGames(context.Background(), "2023-2024")
	require.NoError(t, err)
	require.Len(t, games, 2)

	assert.Equal(t, 4242, games[0].ID)
	require.NotNil(t, games[0].Scores.Home.Total)
	assert.Equal(t, 112, *games[0].Scores.Home.Total)

	assert.Nil(t, games[1].Scores.Home.Total, "Unplayed games keep nil totals")
	assert.Nil(t, games[1].Scores.Away.Total)
}

func TestGet_RetriesRetryableStatus(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"response": ["2023-2024"]}`))
	}))
	defer server.Close()

	seasons, err := newTestClient(server.URL).FetchSeasons(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"2023-2024"}, seasons)
	assert.Equal(t, int32(3), calls.Load())
}

func TestGet_NoRetryOnAuthFailure(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).FetchSeasons(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "authentication failed")
	assert.Equal(t, int32(1), calls.Load(), "Auth failures must not be retried")
}

func TestGet_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := NewClient(server.URL, "test-key", 12, 100, 5*time.Second)
	c.retryDelay = time.Hour // cancellation must interrupt the backoff wait

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	_, err := c.FetchSeasons(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGet_BadEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).FetchSeasons(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "envelope")
}
