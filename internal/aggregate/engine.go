package aggregate

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/albapepper/finnkampen/internal/nation"
	"github.com/albapepper/finnkampen/internal/season"
)

// Store is the read/write surface the engine needs. The ingest run passes a
// transaction-bound implementation so every write below commits or rolls
// back together with the ingested rows.
type Store interface {
	// NightlyTotals groups the date's stat rows by cohort nation.
	NightlyTotals(ctx context.Context, date string) ([]NationNight, error)
	// UpsertNightly overwrites one (date, nation) row and clears its winner.
	UpsertNightly(ctx context.Context, date string, row NationNight) error
	// NightlyRows reads back the stored rows for a date.
	NightlyRows(ctx context.Context, date string) ([]NationNight, error)
	// SetNightWinner writes the winner onto every row of the date.
	SetNightWinner(ctx context.Context, date string, w Winner) error

	// SeasonTotals sums goals/assists per game type and nation over the
	// season's games dated on or before upTo.
	SeasonTotals(ctx context.Context, seasonLabel, upTo string) ([]SeasonTotal, error)
	// SeasonGameTypes lists game types played in the season on or before upTo.
	SeasonGameTypes(ctx context.Context, seasonLabel, upTo string) ([]string, error)
	// UpsertSeason overwrites one (season, game type, nation) row's sums.
	UpsertSeason(ctx context.Context, seasonLabel, gameType string, row NationSeason) error
	// NightResults lists stored non-null winners for dates on or before upTo
	// that had a game of the season and game type.
	NightResults(ctx context.Context, seasonLabel, gameType, upTo string) ([]NightResult, error)
	// SetSeasonWins writes a replayed win count.
	SetSeasonWins(ctx context.Context, seasonLabel, gameType, nationCode string, wins int) error
}

// Result is the outcome of one recompute.
type Result struct {
	Night   Night
	Season  string
	Seasons []Season
}

// Summary returns a human-readable summary.
func (r *Result) Summary() string {
	return fmt.Sprintf("date=%s winner=%s fin_pts=%d/%dp swe_pts=%d/%dp season=%s game_types=%d",
		r.Night.Date, winnerLabel(r.Night.Winner),
		r.Night.FIN.Points(), r.Night.FIN.PlayerCount,
		r.Night.SWE.Points(), r.Night.SWE.PlayerCount,
		r.Season, len(r.Seasons))
}

func winnerLabel(w Winner) string {
	if w == NoWinner {
		return "none"
	}
	return string(w)
}

// Recompute rebuilds the nightly rows and winner for date, then the season
// rows and win counts for the season the date belongs to.
func Recompute(ctx context.Context, st Store, date string, logger *slog.Logger) (Result, error) {
	if logger == nil {
		logger = slog.Default()
	}
	seasonLabel, err := season.FromDate(date)
	if err != nil {
		return Result{}, err
	}

	night, err := RecomputeNightly(ctx, st, date)
	if err != nil {
		return Result{}, err
	}
	logger.Info("Nightly aggregate recomputed",
		"date", date, "winner", winnerLabel(night.Winner),
		"fin_points", night.FIN.Points(), "fin_players", night.FIN.PlayerCount,
		"swe_points", night.SWE.Points(), "swe_players", night.SWE.PlayerCount)

	seasons, err := RecomputeSeason(ctx, st, seasonLabel, date)
	if err != nil {
		return Result{}, err
	}
	for _, s := range seasons {
		logger.Info("Season aggregate recomputed",
			"season", s.Season, "game_type", s.GameType,
			"fin_points", s.FIN.Points(), "fin_wins", s.FIN.NightWins,
			"swe_points", s.SWE.Points(), "swe_wins", s.SWE.NightWins)
	}

	return Result{Night: night, Season: seasonLabel, Seasons: seasons}, nil
}

// RecomputeNightly overwrites both nation rows for date and decides the
// winner from what was written.
func RecomputeNightly(ctx context.Context, st Store, date string) (Night, error) {
	totals, err := st.NightlyTotals(ctx, date)
	if err != nil {
		return Night{}, fmt.Errorf("nightly totals %s: %w", date, err)
	}
	fin, swe := PairNights(totals)
	for _, row := range []NationNight{fin, swe} {
		if err := st.UpsertNightly(ctx, date, row); err != nil {
			return Night{}, fmt.Errorf("upsert nightly %s %s: %w", date, row.Nation, err)
		}
	}

	stored, err := st.NightlyRows(ctx, date)
	if err != nil {
		return Night{}, fmt.Errorf("read nightly %s: %w", date, err)
	}
	fin, swe = PairNights(stored)
	w := DecideWinner(fin, swe)
	if err := st.SetNightWinner(ctx, date, w); err != nil {
		return Night{}, fmt.Errorf("set night winner %s: %w", date, err)
	}
	return Night{Date: date, FIN: fin, SWE: swe, Winner: w}, nil
}

// RecomputeSeason overwrites the season sums for every game type played so
// far and replays the nightly winners into win counts. Runs after
// RecomputeNightly so the date being ingested is part of the replay.
func RecomputeSeason(ctx context.Context, st Store, seasonLabel, upTo string) ([]Season, error) {
	totals, err := st.SeasonTotals(ctx, seasonLabel, upTo)
	if err != nil {
		return nil, fmt.Errorf("season totals %s: %w", seasonLabel, err)
	}
	gameTypes, err := st.SeasonGameTypes(ctx, seasonLabel, upTo)
	if err != nil {
		return nil, fmt.Errorf("season game types %s: %w", seasonLabel, err)
	}

	seasons := make([]Season, 0, len(gameTypes))
	for _, gt := range gameTypes {
		fin, swe := PairSeason(totals, gt)

		nights, err := st.NightResults(ctx, seasonLabel, gt, upTo)
		if err != nil {
			return nil, fmt.Errorf("night results %s/%s: %w", seasonLabel, gt, err)
		}
		wins := TallyWins(nights)
		fin.NightWins = wins[nation.FIN]
		swe.NightWins = wins[nation.SWE]

		for _, row := range []NationSeason{fin, swe} {
			if err := st.UpsertSeason(ctx, seasonLabel, gt, row); err != nil {
				return nil, fmt.Errorf("upsert season %s/%s %s: %w", seasonLabel, gt, row.Nation, err)
			}
			if err := st.SetSeasonWins(ctx, seasonLabel, gt, row.Nation, row.NightWins); err != nil {
				return nil, fmt.Errorf("set season wins %s/%s %s: %w", seasonLabel, gt, row.Nation, err)
			}
		}
		seasons = append(seasons, Season{Season: seasonLabel, GameType: gt, FIN: fin, SWE: swe})
	}
	return seasons, nil
}
