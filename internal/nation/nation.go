// Package nation resolves players to the two aggregated cohorts, FIN and SWE.
package nation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/albapepper/finnkampen/internal/provider"
	"github.com/albapepper/finnkampen/internal/provider/nhl"
)

// Nation codes. Only these two are ever aggregated.
const (
	FIN = "FIN"
	SWE = "SWE"
)

// FromCountry maps a birth-country string to a cohort by case-insensitive
// prefix. Anything else is not a cohort.
func FromCountry(country string) (string, bool) {
	v := strings.ToUpper(strings.TrimSpace(country))
	switch {
	case strings.HasPrefix(v, FIN):
		return FIN, true
	case strings.HasPrefix(v, SWE):
		return SWE, true
	default:
		return "", false
	}
}

// IsCohort reports whether code is FIN or SWE.
func IsCohort(code string) bool {
	return code == FIN || code == SWE
}

// BioSource fetches a player's landing document.
type BioSource interface {
	PlayerLanding(ctx context.Context, playerID int64) (provider.Node, error)
}

// Resolution is what is known about a player's origin after resolving.
type Resolution struct {
	// BirthCountry is the value stored on the player row: the cohort code
	// for FIN/SWE players, otherwise the upstream code when it is a short
	// country code, otherwise nil.
	BirthCountry *string
	// Nation is FIN or SWE, empty for everyone else.
	Nation string
	// Overridden is set when the manual override table decided.
	Overridden bool
}

// Resolver memoizes landing lookups for the lifetime of one ingestion run.
// Not safe for concurrent use; runs are sequential.
type Resolver struct {
	source    BioSource
	overrides map[int64]string
	cache     map[int64]Resolution
	fetches   int
	logger    *slog.Logger
}

// NewResolver creates a per-run resolver. overrides maps NHL player id to a
// nation code and takes precedence over the landing document.
func NewResolver(source BioSource, overrides map[int64]string, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	if overrides == nil {
		overrides = map[int64]string{}
	}
	return &Resolver{
		source:    source,
		overrides: overrides,
		cache:     make(map[int64]Resolution),
		logger:    logger,
	}
}

// Resolve returns the player's resolution, fetching the landing document at
// most once per player. Fetch errors are returned: an upstream failure aborts
// the run.
func (r *Resolver) Resolve(ctx context.Context, playerID int64) (Resolution, error) {
	if res, ok := r.cache[playerID]; ok {
		return res, nil
	}

	if code, ok := r.overrides[playerID]; ok {
		code = strings.ToUpper(strings.TrimSpace(code))
		res := Resolution{BirthCountry: &code, Overridden: true}
		if IsCohort(code) {
			res.Nation = code
		}
		r.cache[playerID] = res
		return res, nil
	}

	landing, err := r.source.PlayerLanding(ctx, playerID)
	if err != nil {
		return Resolution{}, fmt.Errorf("resolve nation for player %d: %w", playerID, err)
	}
	r.fetches++

	var res Resolution
	if raw, ok := nhl.BirthCountry(landing); ok {
		if code, ok := FromCountry(raw); ok {
			res.Nation = code
			res.BirthCountry = &code
		} else if len(raw) <= 3 {
			res.BirthCountry = &raw
		}
	} else {
		r.logger.Debug("No birth country on landing", "player_id", playerID)
	}
	r.cache[playerID] = res
	return res, nil
}

// Fetches returns how many landing documents were requested.
func (r *Resolver) Fetches() int { return r.fetches }
