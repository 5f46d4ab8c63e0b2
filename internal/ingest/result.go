package ingest

import (
	"fmt"

	"github.com/albapepper/finnkampen/internal/aggregate"
)

// Result tracks counts from one ingestion run.
type Result struct {
	Date             string
	Games            int
	GamesFromSummary int
	Teams            int
	Players          int
	StatRows         int
	NonCohortRows    int
	LandingFetches   int
	Aggregate        aggregate.Result
}

// Summary returns a human-readable summary of the run.
func (r *Result) Summary() string {
	return fmt.Sprintf(
		"date=%s games=%d summary_fallback=%d teams=%d players=%d stat_rows=%d non_cohort=%d landing_fetches=%d winner=%s",
		r.Date, r.Games, r.GamesFromSummary, r.Teams, r.Players,
		r.StatRows, r.NonCohortRows, r.LandingFetches, winnerLabel(r.Aggregate.Night.Winner),
	)
}

func winnerLabel(w aggregate.Winner) string {
	if w == aggregate.NoWinner {
		return "none"
	}
	return string(w)
}
