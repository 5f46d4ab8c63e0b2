package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/albapepper/finnkampen/internal/aggregate"
	"github.com/albapepper/finnkampen/internal/config"
	"github.com/albapepper/finnkampen/internal/nation"
)

// Nightly reads the stored pair of nightly rows for a date. Returns
// ErrNoNightly when ingest has not run for it.
func (q *Queries) Nightly(ctx context.Context, date string) (aggregate.Night, error) {
	rows, err := q.db.Query(ctx, `
		SELECT nation, goals, assists, player_count, goalie_wins, COALESCE(night_winner, '')
		FROM `+config.NightlyNationAggTable+`
		WHERE game_date = $1`,
		date,
	)
	type row struct {
		n aggregate.NationNight
		w string
	}
	got, err := collect(rows, err, func(rows pgx.Rows) (row, error) {
		var r row
		err := rows.Scan(&r.n.Nation, &r.n.Goals, &r.n.Assists, &r.n.PlayerCount, &r.n.GoalieWins, &r.w)
		return r, err
	})
	if err != nil {
		return aggregate.Night{}, fmt.Errorf("read nightly %s: %w", date, err)
	}
	if len(got) == 0 {
		return aggregate.Night{}, fmt.Errorf("%s: %w", date, ErrNoNightly)
	}

	nights := make([]aggregate.NationNight, 0, len(got))
	var w aggregate.Winner
	for _, r := range got {
		nights = append(nights, r.n)
		if r.w != "" {
			if w, err = parseWinner(r.w); err != nil {
				return aggregate.Night{}, fmt.Errorf("read nightly %s: %w", date, err)
			}
		}
	}
	fin, swe := aggregate.PairNights(nights)
	return aggregate.Night{Date: date, FIN: fin, SWE: swe, Winner: w}, nil
}

// GameTypeOn returns the game type most games on date were played as. ok is
// false when no game is stored for the date.
func (q *Queries) GameTypeOn(ctx context.Context, date string) (gameType string, ok bool, err error) {
	err = q.db.QueryRow(ctx, `
		SELECT game_type
		FROM `+config.GamesTable+`
		WHERE game_date = $1
		GROUP BY game_type
		ORDER BY COUNT(*) DESC, game_type DESC
		LIMIT 1`,
		date,
	).Scan(&gameType)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("game type on %s: %w", date, err)
	}
	return gameType, true, nil
}

// Season reads the season pair for one game type. ok is false when no row
// exists for either nation.
func (q *Queries) Season(ctx context.Context, seasonLabel, gameType string) (aggregate.Season, bool, error) {
	rows, err := q.db.Query(ctx, `
		SELECT nation, goals, assists, night_wins
		FROM `+config.SeasonNationAggTable+`
		WHERE season = $1 AND game_type = $2`,
		seasonLabel, gameType,
	)
	got, err := collect(rows, err, func(rows pgx.Rows) (aggregate.SeasonTotal, error) {
		t := aggregate.SeasonTotal{GameType: gameType}
		err := rows.Scan(&t.Nation, &t.Goals, &t.Assists, &t.NightWins)
		return t, err
	})
	if err != nil {
		return aggregate.Season{}, false, fmt.Errorf("read season %s/%s: %w", seasonLabel, gameType, err)
	}
	if len(got) == 0 {
		return aggregate.Season{}, false, nil
	}
	fin, swe := aggregate.PairSeason(got, gameType)
	return aggregate.Season{Season: seasonLabel, GameType: gameType, FIN: fin, SWE: swe}, true, nil
}

// RecentNights reads the newest dates from the nightly pivot view. The view
// lags the tables until the post-ingest refresh has run.
func (q *Queries) RecentNights(ctx context.Context, limit int) ([]aggregate.Night, error) {
	if limit <= 0 {
		limit = 14
	}
	rows, err := q.db.Query(ctx, `
		SELECT
			to_char(game_date, 'YYYY-MM-DD'),
			fin_goals, fin_assists, fin_players, fin_goalie_wins,
			swe_goals, swe_assists, swe_players, swe_goalie_wins,
			COALESCE(night_winner, '')
		FROM `+config.NightlyPivotView+`
		ORDER BY game_date DESC
		LIMIT $1`,
		limit,
	)
	nights, err := collect(rows, err, func(rows pgx.Rows) (aggregate.Night, error) {
		n := aggregate.Night{
			FIN: aggregate.NationNight{Nation: nation.FIN},
			SWE: aggregate.NationNight{Nation: nation.SWE},
		}
		var w string
		err := rows.Scan(&n.Date,
			&n.FIN.Goals, &n.FIN.Assists, &n.FIN.PlayerCount, &n.FIN.GoalieWins,
			&n.SWE.Goals, &n.SWE.Assists, &n.SWE.PlayerCount, &n.SWE.GoalieWins,
			&w)
		if err != nil {
			return n, err
		}
		n.Winner, err = parseWinner(w)
		return n, err
	})
	if err != nil {
		return nil, fmt.Errorf("read recent nights: %w", err)
	}
	return nights, nil
}

// parseWinner rejects night_winner values outside the four outcomes.
func parseWinner(s string) (aggregate.Winner, error) {
	w := aggregate.Winner(s)
	if !w.Valid() {
		return aggregate.NoWinner, fmt.Errorf("unexpected night_winner %q", s)
	}
	return w, nil
}
