package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"nba_insights/internal/metrics"
	"nba_insights/internal/models"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// Client is the api-sports.io basketball API client
type Client struct {
	baseURL    string
	apiKey     string
	leagueID   int
	httpClient *http.Client
	limiter    *rate.Limiter
	maxRetries int
	retryDelay time.Duration
}

// NewClient creates a new api-sports.io client. requestsPerSecond is the
// client-side throttle against the API's rate limit.
func NewClient(baseURL, apiKey string, leagueID, requestsPerSecond int, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		leagueID:   leagueID,
		limiter:    rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond),
		maxRetries: 3,
		retryDelay: 1 * time.Second,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// get performs a GET request to the API with rate limiting and retry logic
func (c *Client) get(ctx context.Context, path string, params map[string]string) ([]byte, error) {
	url := fmt.Sprintf("%s/%s", c.baseURL, path)

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff: 1s, 2s, 4s
			backoff := c.retryDelay * time.Duration(1<<uint(attempt-1))
			log.Info().
				Str("url", url).
				Int("attempt", attempt).
				Dur("backoff", backoff).
				Msg("Retrying API request after backoff")

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		// Throttle before every attempt
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		req.Header.Set("x-rapidapi-key", c.apiKey)
		req.Header.Set("Accept", "application/json")

		if len(params) > 0 {
			q := req.URL.Query()
			for key, value := range params {
				q.Add(key, value)
			}
			req.URL.RawQuery = q.Encode()
		}

		log.Debug().
			Str("url", url).
			Int("attempt", attempt+1).
			Msg("Making API request")

		start := time.Now()
		resp, err := c.httpClient.Do(req)
		if err != nil {
			metrics.RecordAPICall(path, "error", time.Since(start).Seconds())
			lastErr = fmt.Errorf("API request failed: %w", err)
			if attempt < c.maxRetries {
				continue
			}
			return nil, lastErr
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to read response body: %w", err)
			if attempt < c.maxRetries {
				continue
			}
			return nil, lastErr
		}

		metrics.RecordAPICall(path, strconv.Itoa(resp.StatusCode), time.Since(start).Seconds())

		switch resp.StatusCode {
		case http.StatusOK:
			log.Debug().
				Str("url", url).
				Int("status", resp.StatusCode).
				Int("size", len(body)).
				Msg("API request successful")
			return body, nil

		case http.StatusTooManyRequests, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			lastErr = fmt.Errorf("API returned retryable status %d: %s", resp.StatusCode, string(body))
			if attempt < c.maxRetries {
				log.Warn().
					Str("url", url).
					Int("status", resp.StatusCode).
					Int("attempt", attempt+1).
					Msg("Received retryable error, will retry")
				continue
			}
			return nil, lastErr

		case http.StatusUnauthorized, http.StatusForbidden:
			// Don't retry auth errors
			return nil, fmt.Errorf("API authentication failed (status %d): %s", resp.StatusCode, string(body))

		default:
			return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
		}
	}

	return nil, lastErr
}

// envelope is the common wrapper around every api-sports.io response
type envelope struct {
	Response json.RawMessage `json:"response"`
}

func (c *Client) getResponse(ctx context.Context, path string, params map[string]string) (json.RawMessage, error) {
	body, err := c.get(ctx, path, params)
	if err != nil {
		return nil, err
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response envelope: %w", err)
	}
	return env.Response, nil
}

// FetchSeasons fetches all season labels for the league. The endpoint mixes
// plain years with "YYYY-YYYY" labels; only string labels are returned.
func (c *Client) FetchSeasons(ctx context.Context) ([]string, error) {
	raw, err := c.getResponse(ctx, "seasons", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch seasons: %w", err)
	}

	var entries []any
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("failed to unmarshal seasons: %w", err)
	}

	var seasons []string
	for _, entry := range entries {
		if s, ok := entry.(string); ok {
			seasons = append(seasons, s)
		}
	}
	return seasons, nil
}

// FetchTeams fetches all teams in the league for a season
func (c *Client) FetchTeams(ctx context.Context, season string) ([]models.TeamInfo, error) {
	raw, err := c.getResponse(ctx, "teams", map[string]string{
		"league": strconv.Itoa(c.leagueID),
		"season": season,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch teams: %w", err)
	}

	var teams []models.TeamInfo
	if err := json.Unmarshal(raw, &teams); err != nil {
		return nil, fmt.Errorf("failed to unmarshal teams: %w", err)
	}
	return teams, nil
}

// FetchStandings fetches the standings groups for a single team. The API
// wraps the group entries in one extra list level; that level is flattened
// here. An empty result means the team has no group data.
func (c *Client) FetchStandings(ctx context.Context, teamID int, season, stage string) ([]models.StandingsGroup, error) {
	raw, err := c.getResponse(ctx, "standings", map[string]string{
		"league": strconv.Itoa(c.leagueID),
		"season": season,
		"stage":  stage,
		"team":   strconv.Itoa(teamID),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch standings for team %d: %w", teamID, err)
	}

	var nested [][]models.StandingsGroup
	if err := json.Unmarshal(raw, &nested); err != nil {
		return nil, fmt.Errorf("failed to unmarshal standings for team %d: %w", teamID, err)
	}

	if len(nested) == 0 {
		return nil, nil
	}
	return nested[0], nil
}

// FetchGames fetches all games of the league for a season
func (c *Client) FetchGames(ctx context.Context, season string) ([]models.GameResponse, error) {
	raw, err := c.getResponse(ctx, "games", map[string]string{
		"league": strconv.Itoa(c.leagueID),
		"season": season,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch games: %w", err)
	}

	var games []models.GameResponse
	if err := json.Unmarshal(raw, &games); err != nil {
		return nil, fmt.Errorf("failed to unmarshal games: %w", err)
	}
	return games, nil
}
