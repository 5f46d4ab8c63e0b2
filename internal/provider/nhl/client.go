// Package nhl provides the HTTP client and document projections for the NHL
// web API (api-web.nhle.com/v1).
//
// There is no retry: a non-200 response is returned as *StatusError and the
// caller aborts the run. Requests are paced by a token bucket so a long
// schedule never bursts the upstream.
package nhl

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/albapepper/finnkampen/internal/provider"
)

// StatusError is returned for any non-200 upstream response.
type StatusError struct {
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("NHL %s returned %d: %s", e.Path, e.StatusCode, e.Body)
}

// Client is the shared HTTP client for all NHL endpoints.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates an NHL HTTP client. requestsPerMinute <= 0 disables pacing.
func NewClient(baseURL string, requestsPerMinute int, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	limit := rate.Inf
	if requestsPerMinute > 0 {
		limit = rate.Limit(float64(requestsPerMinute) / 60.0)
	}
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		limiter:    rate.NewLimiter(limit, 1),
		logger:     logger,
	}
}

// Schedule returns the games listed for exactly the given date.
func (c *Client) Schedule(ctx context.Context, date string) ([]provider.ScheduledGame, error) {
	doc, err := c.get(ctx, "/schedule/"+date)
	if err != nil {
		return nil, fmt.Errorf("fetch schedule %s: %w", date, err)
	}
	return ScheduledGames(doc, date), nil
}

// Boxscore returns the raw boxscore document for a game.
func (c *Client) Boxscore(ctx context.Context, gameID int64) (provider.Node, error) {
	doc, err := c.get(ctx, "/gamecenter/"+strconv.FormatInt(gameID, 10)+"/boxscore")
	if err != nil {
		return provider.Node{}, fmt.Errorf("fetch boxscore %d: %w", gameID, err)
	}
	return doc, nil
}

// PlayerLanding returns the raw player landing (biography) document.
func (c *Client) PlayerLanding(ctx context.Context, playerID int64) (provider.Node, error) {
	doc, err := c.get(ctx, "/player/"+strconv.FormatInt(playerID, 10)+"/landing")
	if err != nil {
		return provider.Node{}, fmt.Errorf("fetch player %d: %w", playerID, err)
	}
	return doc, nil
}

// get performs a paced GET request and decodes the body into a Node.
func (c *Client) get(ctx context.Context, path string) (provider.Node, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return provider.Node{}, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return provider.Node{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return provider.Node{}, fmt.Errorf("http request %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return provider.Node{}, fmt.Errorf("read response body: %w", err)
	}
	c.logger.Debug("NHL request", "path", path, "status", resp.StatusCode,
		"bytes", len(body), "duration", time.Since(start).Round(time.Millisecond))

	if resp.StatusCode != http.StatusOK {
		return provider.Node{}, &StatusError{Path: path, StatusCode: resp.StatusCode, Body: truncate(body, 200)}
	}

	return provider.Parse(body)
}

// truncate returns a truncated string representation for error messages.
func truncate(b []byte, maxLen int) string {
	if len(b) <= maxLen {
		return string(b)
	}
	return string(b[:maxLen]) + "..."
}
