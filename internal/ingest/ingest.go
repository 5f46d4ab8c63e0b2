// Package ingest runs one ingestion for a date: schedule, boxscores, player
// nations, stat rows and the aggregate recompute, all in one transaction.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/albapepper/finnkampen/internal/aggregate"
	"github.com/albapepper/finnkampen/internal/nation"
	"github.com/albapepper/finnkampen/internal/provider"
	"github.com/albapepper/finnkampen/internal/provider/nhl"
	"github.com/albapepper/finnkampen/internal/season"
	"github.com/albapepper/finnkampen/internal/store"
)

// Source is the upstream the run reads from.
type Source interface {
	Schedule(ctx context.Context, date string) ([]provider.ScheduledGame, error)
	Boxscore(ctx context.Context, gameID int64) (provider.Node, error)
	nation.BioSource
}

// Writer is the transaction-bound persistence surface.
type Writer interface {
	UpsertTeam(ctx context.Context, team provider.Team) (int64, error)
	UpsertGame(ctx context.Context, g store.Game) (int64, error)
	UpsertPlayer(ctx context.Context, nhlID int64, fullName string, birthCountry *string) (int64, error)
	UpsertPlayerGameStat(ctx context.Context, gameID, playerID int64, teamID *int64, row provider.StatRow) error
	NationOverrides(ctx context.Context) (map[int64]string, error)
	aggregate.Store
}

// TxRunner runs fn inside a transaction, committing on nil and rolling back
// on error.
type TxRunner func(ctx context.Context, fn func(Writer) error) error

// Ingester holds the dependencies of a run.
type Ingester struct {
	source Source
	runTx  TxRunner
	logger *slog.Logger
}

// New creates an Ingester.
func New(source Source, runTx TxRunner, logger *slog.Logger) *Ingester {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingester{source: source, runTx: runTx, logger: logger}
}

// Run ingests every game scheduled on date and recomputes the aggregates.
// Any error aborts the run and nothing is committed.
func (in *Ingester) Run(ctx context.Context, date string) (Result, error) {
	if _, err := season.ParseDate(date); err != nil {
		return Result{}, err
	}
	result := Result{Date: date}

	games, err := in.source.Schedule(ctx, date)
	if err != nil {
		return result, err
	}
	result.Games = len(games)
	in.logger.Info("Schedule loaded", "date", date, "games", len(games))

	err = in.runTx(ctx, func(w Writer) error {
		overrides, err := w.NationOverrides(ctx)
		if err != nil {
			return err
		}
		resolver := nation.NewResolver(in.source, overrides, in.logger)
		players := make(map[int64]bool)

		for i, g := range games {
			in.logger.Info("Processing game",
				"n", i+1, "of", len(games), "game_id", g.ID, "game_type", g.GameType)
			if err := in.ingestGame(ctx, w, resolver, date, g, players, &result); err != nil {
				return err
			}
		}
		result.Players = len(players)
		result.LandingFetches = resolver.Fetches()

		agg, err := aggregate.Recompute(ctx, w, date, in.logger)
		if err != nil {
			return fmt.Errorf("recompute aggregates: %w", err)
		}
		result.Aggregate = agg
		return nil
	})
	if err != nil {
		return result, err
	}

	in.logger.Info("Ingest complete", "date", date, "summary", result.Summary())
	return result, nil
}

func (in *Ingester) ingestGame(
	ctx context.Context,
	w Writer,
	resolver *nation.Resolver,
	date string,
	g provider.ScheduledGame,
	players map[int64]bool,
	result *Result,
) error {
	box, err := in.source.Boxscore(ctx, g.ID)
	if err != nil {
		return err
	}
	meta := nhl.TeamMetaFromBoxscore(box)

	gameDate := meta.GameDate
	if gameDate == "" {
		gameDate = date
	}
	seasonLabel, err := season.FromDate(gameDate)
	if err != nil {
		return fmt.Errorf("game %d: %w", g.ID, err)
	}

	teamIDs := make(map[string]int64, 2)
	var homeID, awayID *int64
	for _, side := range []struct {
		team provider.Team
		dst  **int64
	}{{meta.Home, &homeID}, {meta.Away, &awayID}} {
		if side.team.NHLID == 0 {
			continue
		}
		id, err := w.UpsertTeam(ctx, side.team)
		if err != nil {
			return err
		}
		*side.dst = &id
		result.Teams++
		if side.team.Tricode != "" {
			teamIDs[side.team.Tricode] = id
		}
	}

	var status *string
	if meta.Status != "" {
		status = &meta.Status
	}
	gameID, err := w.UpsertGame(ctx, store.Game{
		NHLGamePK:  g.ID,
		GameDate:   gameDate,
		Season:     seasonLabel,
		GameType:   g.GameType,
		HomeTeamID: homeID,
		AwayTeamID: awayID,
		Status:     status,
	})
	if err != nil {
		return err
	}

	rows, fromSummary := nhl.GameRows(box)
	if fromSummary {
		result.GamesFromSummary++
		in.logger.Info("Boxscore has no player stats, using scoring summary",
			"game_id", g.ID, "players", len(rows))
	}

	wrote := 0
	for _, row := range rows {
		res, err := resolver.Resolve(ctx, row.PlayerID)
		if err != nil {
			return err
		}
		name := row.Name
		if name == "" {
			name = store.UnknownPlayerName
		}
		playerID, err := w.UpsertPlayer(ctx, row.PlayerID, name, res.BirthCountry)
		if err != nil {
			return err
		}
		players[row.PlayerID] = true

		var teamID *int64
		if id, ok := teamIDs[strings.ToUpper(row.TeamAbbrev)]; ok {
			teamID = &id
		}
		if err := w.UpsertPlayerGameStat(ctx, gameID, playerID, teamID, row); err != nil {
			return err
		}
		wrote++
		if res.Nation == "" {
			result.NonCohortRows++
		}
	}
	result.StatRows += wrote
	in.logger.Info("Game stored", "game_id", g.ID, "rows", wrote, "summary_fallback", fromSummary)
	return nil
}
