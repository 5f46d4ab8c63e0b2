// Package external holds clients for outbound third-party services.
package external

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/dghubble/oauth1"
)

// ---------------------------------------------------------------------------
// Constants
// ---------------------------------------------------------------------------

const (
	twitterBaseURL = "https://api.twitter.com/2"
	twitterTimeout = 15 * time.Second
)

// ErrMissingCredentials is returned when posting is enabled without all
// four OAuth 1.0a credentials.
var ErrMissingCredentials = errors.New("twitter credentials missing")

// ---------------------------------------------------------------------------
// Types
// ---------------------------------------------------------------------------

// PublisherConfig carries the posting switch and user-context credentials.
type PublisherConfig struct {
	Enabled      bool
	AppKey       string
	AppSecret    string
	AccessToken  string
	AccessSecret string
	BaseURL      string // defaults to https://api.twitter.com/2
}

func (c PublisherConfig) credentialsSet() bool {
	return c.AppKey != "" && c.AppSecret != "" && c.AccessToken != "" && c.AccessSecret != ""
}

// PublishResult is the outcome of one post attempt.
type PublishResult struct {
	Skipped bool   `json:"skipped"`
	ID      string `json:"id,omitempty"`
	Text    string `json:"text,omitempty"`
}

// APIError is a non-success response from the posting API.
type APIError struct {
	StatusCode     int
	Title          string
	Detail         string
	Type           string
	RateLimitReset string
	Body           string
}

func (e *APIError) Error() string {
	msg := e.Detail
	if msg == "" {
		msg = e.Title
	}
	if msg == "" {
		msg = e.Body
	}
	return fmt.Sprintf("twitter API HTTP %d: %s", e.StatusCode, msg)
}

// ---------------------------------------------------------------------------
// Publisher
// ---------------------------------------------------------------------------

// Publisher posts text through the X API v2 with OAuth 1.0a user context.
type Publisher struct {
	cfg        PublisherConfig
	httpClient *http.Client
	logger     *slog.Logger
}

// NewPublisher creates a publisher. When cfg.Enabled is false every call
// only logs the text.
func NewPublisher(cfg PublisherConfig, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = twitterBaseURL
	}

	oauthCfg := oauth1.NewConfig(cfg.AppKey, cfg.AppSecret)
	token := oauth1.NewToken(cfg.AccessToken, cfg.AccessSecret)
	base := &http.Client{Timeout: twitterTimeout}
	httpClient := oauthCfg.Client(context.WithValue(context.Background(), oauth1.HTTPClient, base), token)
	httpClient.Timeout = twitterTimeout

	return &Publisher{cfg: cfg, httpClient: httpClient, logger: logger}
}

// Enabled reports whether posts are actually sent.
func (p *Publisher) Enabled() bool { return p.cfg.Enabled }

// Post submits text and returns the new post id. Disabled mode returns a
// skipped result and no error.
func (p *Publisher) Post(ctx context.Context, text string) (PublishResult, error) {
	if !p.cfg.Enabled {
		p.logger.Info("Posting disabled (TWITTER_ENABLE not set), skipping", "text", text)
		return PublishResult{Skipped: true, Text: text}, nil
	}
	if !p.cfg.credentialsSet() {
		return PublishResult{}, ErrMissingCredentials
	}

	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return PublishResult{}, fmt.Errorf("encode tweet: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.BaseURL+"/tweets", bytes.NewReader(body))
	if err != nil {
		return PublishResult{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return PublishResult{}, fmt.Errorf("twitter API error: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return PublishResult{}, fmt.Errorf("read twitter response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return PublishResult{}, newAPIError(resp, raw)
	}

	var created struct {
		Data struct {
			ID   string `json:"id"`
			Text string `json:"text"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &created); err != nil {
		return PublishResult{}, fmt.Errorf("twitter decode error: %w", err)
	}
	if created.Data.ID == "" {
		return PublishResult{}, fmt.Errorf("twitter response has no post id: %s", truncate(raw, 200))
	}

	p.logger.Info("Posted", "id", created.Data.ID)
	return PublishResult{ID: created.Data.ID, Text: created.Data.Text}, nil
}

// Publish is Post for the nightly run: failures are logged with diagnostic
// fields and swallowed, since the ingested data is already committed.
func (p *Publisher) Publish(ctx context.Context, text string) PublishResult {
	res, err := p.Post(ctx, text)
	if err != nil {
		p.logFailure(err)
		return PublishResult{Text: text}
	}
	return res
}

func (p *Publisher) logFailure(err error) {
	attrs := []any{"error_type", fmt.Sprintf("%T", err), "error", err.Error()}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		attrs = append(attrs,
			"status", apiErr.StatusCode,
			"title", apiErr.Title,
			"detail", apiErr.Detail,
			"type", apiErr.Type,
		)
		if apiErr.RateLimitReset != "" {
			attrs = append(attrs, "rate_limit_reset", apiErr.RateLimitReset)
		}
	}
	if errors.Is(err, ErrMissingCredentials) {
		attrs = append(attrs,
			"app_key_set", p.cfg.AppKey != "",
			"app_secret_set", p.cfg.AppSecret != "",
			"access_token_set", p.cfg.AccessToken != "",
			"access_secret_set", p.cfg.AccessSecret != "",
		)
	}
	p.logger.Error("Post failed", attrs...)
}

// ---------------------------------------------------------------------------
// Internal
// ---------------------------------------------------------------------------

// newAPIError reads the problem document the v2 API returns on failure.
func newAPIError(resp *http.Response, raw []byte) *APIError {
	apiErr := &APIError{
		StatusCode:     resp.StatusCode,
		RateLimitReset: resp.Header.Get("x-rate-limit-reset"),
		Body:           truncate(raw, 500),
	}
	var problem struct {
		Title  string `json:"title"`
		Detail string `json:"detail"`
		Type   string `json:"type"`
	}
	if json.Unmarshal(raw, &problem) == nil {
		apiErr.Title = problem.Title
		apiErr.Detail = problem.Detail
		apiErr.Type = problem.Type
	}
	return apiErr
}

func truncate(b []byte, maxLen int) string {
	if len(b) <= maxLen {
		return string(b)
	}
	return string(b[:maxLen]) + "..."
}
