package store

import (
	"context"
	"fmt"

	"github.com/albapepper/finnkampen/internal/config"
	"github.com/albapepper/finnkampen/internal/provider"
)

// Game is a games-table row keyed by the upstream game id.
type Game struct {
	NHLGamePK  int64
	GameDate   string // YYYY-MM-DD
	Season     string
	GameType   string
	HomeTeamID *int64
	AwayTeamID *int64
	Status     *string
}

// UpsertTeam writes a team by upstream id and returns the internal id.
func (q *Queries) UpsertTeam(ctx context.Context, team provider.Team) (int64, error) {
	var id int64
	err := q.db.QueryRow(ctx, `
		INSERT INTO `+config.TeamsTable+` (nhl_id, name, tricode)
		VALUES ($1, $2, $3)
		ON CONFLICT (nhl_id) DO UPDATE SET
			name = EXCLUDED.name,
			tricode = EXCLUDED.tricode,
			updated_at = NOW()
		RETURNING id`,
		team.NHLID, team.Name, team.Tricode,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert team %d: %w", team.NHLID, err)
	}
	return id, nil
}

// UpsertGame writes a game by upstream id and returns the internal id.
func (q *Queries) UpsertGame(ctx context.Context, g Game) (int64, error) {
	var id int64
	err := q.db.QueryRow(ctx, `
		INSERT INTO `+config.GamesTable+` (
			nhl_game_pk, game_date, season, game_type,
			home_team_id, away_team_id, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (nhl_game_pk) DO UPDATE SET
			game_date = EXCLUDED.game_date,
			season = EXCLUDED.season,
			game_type = EXCLUDED.game_type,
			home_team_id = COALESCE(EXCLUDED.home_team_id, `+config.GamesTable+`.home_team_id),
			away_team_id = COALESCE(EXCLUDED.away_team_id, `+config.GamesTable+`.away_team_id),
			status = EXCLUDED.status,
			updated_at = NOW()
		RETURNING id`,
		g.NHLGamePK, g.GameDate, g.Season, g.GameType,
		g.HomeTeamID, g.AwayTeamID, g.Status,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert game %d: %w", g.NHLGamePK, err)
	}
	return id, nil
}

// UnknownPlayerName is stored when a row carries no name. It never replaces
// a real name stored earlier.
const UnknownPlayerName = "?"

// UpsertPlayer writes a player by upstream id and returns the internal id.
// A nil birthCountry never clears a previously stored one.
func (q *Queries) UpsertPlayer(ctx context.Context, nhlID int64, fullName string, birthCountry *string) (int64, error) {
	var id int64
	err := q.db.QueryRow(ctx, `
		INSERT INTO `+config.PlayersTable+` (nhl_id, full_name, birth_country)
		VALUES ($1, $2, $3)
		ON CONFLICT (nhl_id) DO UPDATE SET
			full_name = COALESCE(NULLIF(EXCLUDED.full_name, '`+UnknownPlayerName+`'), `+config.PlayersTable+`.full_name),
			birth_country = COALESCE(EXCLUDED.birth_country, `+config.PlayersTable+`.birth_country),
			updated_at = NOW()
		RETURNING id`,
		nhlID, fullName, birthCountry,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert player %d: %w", nhlID, err)
	}
	return id, nil
}

// UpsertPlayerGameStat writes one player's line for one game. Absent fields
// are stored as NULL.
func (q *Queries) UpsertPlayerGameStat(ctx context.Context, gameID, playerID int64, teamID *int64, row provider.StatRow) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO `+config.PlayerGameStatsTable+` (
			game_id, player_id, team_id, is_goalie,
			goals, assists, shots, pim, toi,
			saves, shots_against, goals_against, decision, shutout
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		ON CONFLICT (game_id, player_id) DO UPDATE SET
			team_id = EXCLUDED.team_id,
			is_goalie = EXCLUDED.is_goalie,
			goals = EXCLUDED.goals,
			assists = EXCLUDED.assists,
			shots = EXCLUDED.shots,
			pim = EXCLUDED.pim,
			toi = EXCLUDED.toi,
			saves = EXCLUDED.saves,
			shots_against = EXCLUDED.shots_against,
			goals_against = EXCLUDED.goals_against,
			decision = EXCLUDED.decision,
			shutout = EXCLUDED.shutout,
			updated_at = NOW()`,
		gameID, playerID, teamID, row.IsGoalie,
		row.Goals, row.Assists, row.Shots, row.PIM, row.TOI,
		row.Saves, row.ShotsAgainst, row.GoalsAgainst, row.Decision, row.Shutout,
	)
	if err != nil {
		return fmt.Errorf("upsert stats game=%d player=%d: %w", gameID, playerID, err)
	}
	return nil
}

// NationOverrides loads the manual override table keyed by upstream player id.
func (q *Queries) NationOverrides(ctx context.Context) (map[int64]string, error) {
	rows, err := q.db.Query(ctx, `SELECT nhl_id, nation FROM `+config.NationOverridesTable)
	if err != nil {
		return nil, fmt.Errorf("load nation overrides: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]string)
	for rows.Next() {
		var id int64
		var code string
		if err := rows.Scan(&id, &code); err != nil {
			return nil, fmt.Errorf("scan nation override: %w", err)
		}
		out[id] = code
	}
	return out, rows.Err()
}

// SetNationOverride inserts or replaces one override.
func (q *Queries) SetNationOverride(ctx context.Context, nhlID int64, nationCode, note string) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO `+config.NationOverridesTable+` (nhl_id, nation, note)
		VALUES ($1, $2, NULLIF($3, ''))
		ON CONFLICT (nhl_id) DO UPDATE SET
			nation = EXCLUDED.nation,
			note = EXCLUDED.note`,
		nhlID, nationCode, note,
	)
	if err != nil {
		return fmt.Errorf("set nation override %d: %w", nhlID, err)
	}
	return nil
}
