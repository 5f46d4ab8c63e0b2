// Package config provides centralized configuration loaded from environment
// variables. Shared by cmd/ingest, cmd/post and cmd/api.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// --------------------------------------------------------------------------
// Table names, matching internal/db/schema.sql
// --------------------------------------------------------------------------

const (
	TeamsTable            = "nhl.teams"
	GamesTable            = "nhl.games"
	PlayersTable          = "nhl.players"
	PlayerGameStatsTable  = "nhl.player_game_stats"
	NightlyNationAggTable = "nhl.nightly_nation_agg"
	SeasonNationAggTable  = "nhl.season_nation_agg"
	NationOverridesTable  = "nhl.nation_overrides"
	NightlyPivotView      = "nhl.mv_nightly_fin_swe"
)

// NightlyUpdatedChannel is the NOTIFY channel fired after a date is re-aggregated.
const NightlyUpdatedChannel = "nightly_agg_updated"

// CAFileCandidates are looked up in the working directory when DB_CA_FILE is unset.
var CAFileCandidates = []string{
	"prod-ca-2021.crt",
	"prod-ca-2021.pem",
	"global-bundle.pem",
	"ca-certificate.crt",
}

// --------------------------------------------------------------------------
// Config struct, populated from environment variables
// --------------------------------------------------------------------------

type Config struct {
	// Database
	DatabaseURL    string
	DBPoolMinConns int
	DBPoolMaxConns int
	DBPoolMaxLife  time.Duration
	DBCAFile       string // resolved CA bundle path; empty = use URL sslmode

	// NHL web API
	NHLBaseURL           string
	NHLRequestsPerMinute int

	// Posting
	TwitterEnabled      bool
	TwitterAppKey       string
	TwitterAppSecret    string
	TwitterAccessToken  string
	TwitterAccessSecret string
	TwitterBaseURL      string

	// Read API
	APIHost     string
	APIPort     int
	Environment string // development, staging, production

	CORSAllowOrigins []string

	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration

	CacheEnabled bool

	MVRefreshInterval time.Duration // 0 disables the periodic view refresh

	LogLevel slog.Level
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	dbURL := envOr("DATABASE_URL", "")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL must be set")
	}

	caFile, err := resolveCAFile(envOr("DB_CA_FILE", ""))
	if err != nil {
		return nil, err
	}

	return &Config{
		DatabaseURL:    dbURL,
		DBPoolMinConns: envInt("DB_POOL_MIN_CONNS", 1),
		DBPoolMaxConns: envInt("DB_POOL_MAX_CONNS", 4),
		DBPoolMaxLife:  time.Duration(envInt("DB_POOL_MAX_LIFE_MINUTES", 30)) * time.Minute,
		DBCAFile:       caFile,

		NHLBaseURL:           strings.TrimRight(envOr("NHL_API_BASE_URL", "https://api-web.nhle.com/v1"), "/"),
		NHLRequestsPerMinute: envInt("NHL_REQUESTS_PER_MINUTE", 120),

		TwitterEnabled:      envBool("TWITTER_ENABLE", false),
		TwitterAppKey:       envOr("TWITTER_APP_KEY", ""),
		TwitterAppSecret:    envOr("TWITTER_APP_SECRET", ""),
		TwitterAccessToken:  envOr("TWITTER_ACCESS_TOKEN", ""),
		TwitterAccessSecret: envOr("TWITTER_ACCESS_SECRET", ""),
		TwitterBaseURL:      strings.TrimRight(envOr("TWITTER_API_BASE_URL", "https://api.twitter.com/2"), "/"),

		APIHost:     envOr("API_HOST", "0.0.0.0"),
		APIPort:     envInt("API_PORT", envInt("PORT", 8000)),
		Environment: envOr("ENVIRONMENT", "development"),

		CORSAllowOrigins: envList("CORS_ALLOW_ORIGINS", []string{
			"http://localhost:3000",
			"http://localhost:5173",
		}),

		RateLimitEnabled:  envBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequests: envInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   time.Duration(envInt("RATE_LIMIT_WINDOW", 60)) * time.Second,

		CacheEnabled: envBool("CACHE_ENABLED", true),

		MVRefreshInterval: time.Duration(envInt("MV_REFRESH_MINUTES", 30)) * time.Minute,

		LogLevel: envLevel("LOG_LEVEL", slog.LevelInfo),
	}, nil
}

// resolveCAFile returns the explicit CA path if given (it must exist), else
// the first candidate present in the working directory, else "".
func resolveCAFile(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("DB_CA_FILE %q: %w", explicit, err)
		}
		return explicit, nil
	}
	for _, name := range CAFileCandidates {
		if st, err := os.Stat(name); err == nil && !st.IsDir() {
			return name, nil
		}
	}
	return "", nil
}

// --------------------------------------------------------------------------
// Env helpers
// --------------------------------------------------------------------------

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// envBool accepts strconv.ParseBool values ("1", "true", "0", "false", ...).
func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err == nil {
			return b
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}

func envLevel(key string, fallback slog.Level) slog.Level {
	if v := os.Getenv(key); v != "" {
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(v)); err == nil {
			return lvl
		}
	}
	return fallback
}
