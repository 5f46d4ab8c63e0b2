package store

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/albapepper/finnkampen/internal/aggregate"
	"github.com/albapepper/finnkampen/internal/config"
)

var _ aggregate.Store = (*Queries)(nil)

// NightlyTotals groups the date's stat rows by cohort nation.
func (q *Queries) NightlyTotals(ctx context.Context, date string) ([]aggregate.NationNight, error) {
	rows, err := q.db.Query(ctx, `
		SELECT
			p.birth_country,
			COALESCE(SUM(s.goals), 0),
			COALESCE(SUM(s.assists), 0),
			COUNT(DISTINCT s.player_id),
			COUNT(*) FILTER (WHERE s.is_goalie AND s.decision = 'W')
		FROM `+config.PlayerGameStatsTable+` s
		JOIN `+config.GamesTable+` g ON g.id = s.game_id
		JOIN `+config.PlayersTable+` p ON p.id = s.player_id
		WHERE g.game_date = $1
		  AND p.birth_country IN ('FIN', 'SWE')
		GROUP BY p.birth_country`,
		date,
	)
	return collect(rows, err, scanNationNight)
}

func scanNationNight(rows pgx.Rows) (aggregate.NationNight, error) {
	var n aggregate.NationNight
	err := rows.Scan(&n.Nation, &n.Goals, &n.Assists, &n.PlayerCount, &n.GoalieWins)
	return n, err
}

// UpsertNightly overwrites one (date, nation) row and clears its winner.
func (q *Queries) UpsertNightly(ctx context.Context, date string, row aggregate.NationNight) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO `+config.NightlyNationAggTable+` (
			game_date, nation, goals, assists, player_count, goalie_wins, night_winner
		) VALUES ($1, $2, $3, $4, $5, $6, NULL)
		ON CONFLICT (game_date, nation) DO UPDATE SET
			goals = EXCLUDED.goals,
			assists = EXCLUDED.assists,
			player_count = EXCLUDED.player_count,
			goalie_wins = EXCLUDED.goalie_wins,
			night_winner = NULL,
			updated_at = NOW()`,
		date, row.Nation, row.Goals, row.Assists, row.PlayerCount, row.GoalieWins,
	)
	return err
}

// NightlyRows reads back the stored rows for a date.
func (q *Queries) NightlyRows(ctx context.Context, date string) ([]aggregate.NationNight, error) {
	rows, err := q.db.Query(ctx, `
		SELECT nation, goals, assists, player_count, goalie_wins
		FROM `+config.NightlyNationAggTable+`
		WHERE game_date = $1`,
		date,
	)
	return collect(rows, err, scanNationNight)
}

// SetNightWinner writes the winner onto both rows of the date; NoWinner is
// stored as NULL.
func (q *Queries) SetNightWinner(ctx context.Context, date string, w aggregate.Winner) error {
	_, err := q.db.Exec(ctx, `
		UPDATE `+config.NightlyNationAggTable+`
		SET night_winner = $2, updated_at = NOW()
		WHERE game_date = $1`,
		date, winnerArg(w),
	)
	return err
}

func winnerArg(w aggregate.Winner) *string {
	if w == aggregate.NoWinner {
		return nil
	}
	s := string(w)
	return &s
}

// SeasonTotals sums goals and assists per game type and cohort nation over
// the season's games dated on or before upTo.
func (q *Queries) SeasonTotals(ctx context.Context, seasonLabel, upTo string) ([]aggregate.SeasonTotal, error) {
	rows, err := q.db.Query(ctx, `
		SELECT
			g.game_type,
			p.birth_country,
			COALESCE(SUM(s.goals), 0),
			COALESCE(SUM(s.assists), 0)
		FROM `+config.PlayerGameStatsTable+` s
		JOIN `+config.GamesTable+` g ON g.id = s.game_id
		JOIN `+config.PlayersTable+` p ON p.id = s.player_id
		WHERE g.season = $1
		  AND g.game_date <= $2
		  AND p.birth_country IN ('FIN', 'SWE')
		GROUP BY g.game_type, p.birth_country`,
		seasonLabel, upTo,
	)
	return collect(rows, err, func(rows pgx.Rows) (aggregate.SeasonTotal, error) {
		var t aggregate.SeasonTotal
		err := rows.Scan(&t.GameType, &t.Nation, &t.Goals, &t.Assists)
		return t, err
	})
}

// SeasonGameTypes lists game types played in the season on or before upTo.
func (q *Queries) SeasonGameTypes(ctx context.Context, seasonLabel, upTo string) ([]string, error) {
	rows, err := q.db.Query(ctx, `
		SELECT DISTINCT game_type
		FROM `+config.GamesTable+`
		WHERE season = $1 AND game_date <= $2
		ORDER BY game_type`,
		seasonLabel, upTo,
	)
	return collect(rows, err, func(rows pgx.Rows) (string, error) {
		var gt string
		err := rows.Scan(&gt)
		return gt, err
	})
}

// UpsertSeason overwrites one season row's sums; night_wins is written
// separately by SetSeasonWins.
func (q *Queries) UpsertSeason(ctx context.Context, seasonLabel, gameType string, row aggregate.NationSeason) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO `+config.SeasonNationAggTable+` (season, game_type, nation, goals, assists)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (season, game_type, nation) DO UPDATE SET
			goals = EXCLUDED.goals,
			assists = EXCLUDED.assists,
			updated_at = NOW()`,
		seasonLabel, gameType, row.Nation, row.Goals, row.Assists,
	)
	return err
}

// NightResults lists one non-null winner per date for dates on or before
// upTo that had a game of the season and game type.
func (q *Queries) NightResults(ctx context.Context, seasonLabel, gameType, upTo string) ([]aggregate.NightResult, error) {
	rows, err := q.db.Query(ctx, `
		SELECT DISTINCT ON (n.game_date)
			to_char(n.game_date, 'YYYY-MM-DD'),
			n.night_winner
		FROM `+config.NightlyNationAggTable+` n
		WHERE n.game_date <= $3
		  AND n.night_winner IS NOT NULL
		  AND EXISTS (
			SELECT 1 FROM `+config.GamesTable+` g
			WHERE g.game_date = n.game_date
			  AND g.season = $1
			  AND g.game_type = $2
		  )
		ORDER BY n.game_date`,
		seasonLabel, gameType, upTo,
	)
	return collect(rows, err, func(rows pgx.Rows) (aggregate.NightResult, error) {
		var r aggregate.NightResult
		var w string
		err := rows.Scan(&r.Date, &w)
		r.Winner = aggregate.Winner(w)
		return r, err
	})
}

// SetSeasonWins writes a replayed win count.
func (q *Queries) SetSeasonWins(ctx context.Context, seasonLabel, gameType, nationCode string, wins int) error {
	_, err := q.db.Exec(ctx, `
		UPDATE `+config.SeasonNationAggTable+`
		SET night_wins = $4, updated_at = NOW()
		WHERE season = $1 AND game_type = $2 AND nation = $3`,
		seasonLabel, gameType, nationCode, wins,
	)
	return err
}
