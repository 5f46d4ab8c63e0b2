package store

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/albapepper/finnkampen/internal/aggregate"
	"github.com/albapepper/finnkampen/internal/config"
	"github.com/albapepper/finnkampen/internal/db"
	"github.com/albapepper/finnkampen/internal/maintenance"
	"github.com/albapepper/finnkampen/internal/nation"
	"github.com/albapepper/finnkampen/internal/provider"
)

var (
	testPool    *pgxpool.Pool
	pgContainer *postgres.PostgresContainer
	skipReason  string
)

// TestMain starts PostgreSQL (or uses TEST_DATABASE_URL) and applies the
// embedded schema. Without Docker the integration tests skip.
func TestMain(m *testing.M) {
	flag.Parse()
	ctx := context.Background()

	if testing.Short() {
		skipReason = "integration tests disabled by -short"
		os.Exit(m.Run())
	}

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		var err error
		pgContainer, err = startContainer(ctx)
		if err != nil {
			skipReason = fmt.Sprintf("postgres container unavailable: %v", err)
			os.Exit(m.Run())
		}
		dsn, err = pgContainer.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			fmt.Printf("Failed to get connection string: %v\n", err)
			terminate(ctx)
			os.Exit(1)
		}
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		fmt.Printf("Failed to connect to database: %v\n", err)
		terminate(ctx)
		os.Exit(1)
	}
	if _, err := pool.Exec(ctx, db.Schema()); err != nil {
		fmt.Printf("Failed to apply schema: %v\n", err)
		pool.Close()
		terminate(ctx)
		os.Exit(1)
	}
	testPool = pool

	code := m.Run()

	pool.Close()
	terminate(ctx)
	os.Exit(code)
}

func startContainer(ctx context.Context) (c *postgres.PostgresContainer, err error) {
	// testcontainers panics when no Docker host can be found.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	return postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("finnkampen_test"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
}

func terminate(ctx context.Context) {
	if pgContainer == nil {
		return
	}
	if err := pgContainer.Terminate(ctx); err != nil {
		fmt.Printf("Failed to terminate PostgreSQL container: %v\n", err)
	}
}

// freshDB skips without a database and empties every table otherwise.
func freshDB(t *testing.T) *Queries {
	t.Helper()
	if testPool == nil {
		t.Skip(skipReason)
	}
	_, err := testPool.Exec(context.Background(), `
		TRUNCATE `+config.PlayerGameStatsTable+`, `+config.GamesTable+`, `+config.PlayersTable+`,
			`+config.TeamsTable+`, `+config.NightlyNationAggTable+`, `+config.SeasonNationAggTable+`,
			`+config.NationOverridesTable+` RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
	return New(testPool)
}

type seedPlayer struct {
	nhlID   int64
	country *string
	goals   int
	assists int
	goalie  string // decision for goalies, "" for skaters
}

// seedGame writes one game with its players and lines.
func seedGame(t *testing.T, q *Queries, pk int64, date, gameType string, players ...seedPlayer) {
	t.Helper()
	ctx := context.Background()

	home, err := q.UpsertTeam(ctx, provider.Team{NHLID: 13, Name: "Florida", Tricode: "FLA"})
	require.NoError(t, err)
	away, err := q.UpsertTeam(ctx, provider.Team{NHLID: 30, Name: "Minnesota", Tricode: "MIN"})
	require.NoError(t, err)
	gameID, err := q.UpsertGame(ctx, Game{
		NHLGamePK: pk, GameDate: date, Season: "20252026", GameType: gameType,
		HomeTeamID: &home, AwayTeamID: &away, Status: provider.StringPtr("OFF"),
	})
	require.NoError(t, err)

	for _, p := range players {
		pid, err := q.UpsertPlayer(ctx, p.nhlID, fmt.Sprintf("Player %d", p.nhlID), p.country)
		require.NoError(t, err)
		row := provider.StatRow{PlayerID: p.nhlID, Goals: provider.IntPtr(p.goals), Assists: provider.IntPtr(p.assists)}
		if p.goalie != "" {
			row = provider.StatRow{PlayerID: p.nhlID, IsGoalie: true, Decision: provider.StringPtr(p.goalie)}
		}
		require.NoError(t, q.UpsertPlayerGameStat(ctx, gameID, pid, &home, row))
	}
}

func TestUpsertsAreIdempotent(t *testing.T) {
	q := freshDB(t)
	ctx := context.Background()

	a, err := q.UpsertTeam(ctx, provider.Team{NHLID: 13, Name: "Florida", Tricode: "FLA"})
	require.NoError(t, err)
	b, err := q.UpsertTeam(ctx, provider.Team{NHLID: 13, Name: "Florida Panthers", Tricode: "FLA"})
	require.NoError(t, err)
	assert.Equal(t, a, b)

	p1, err := q.UpsertPlayer(ctx, 8477493, "Aleksander Barkov", provider.StringPtr(nation.FIN))
	require.NoError(t, err)
	p2, err := q.UpsertPlayer(ctx, 8477493, "Aleksander Barkov", nil)
	require.NoError(t, err)
	assert.Equal(t, p1, p2)

	var country *string
	require.NoError(t, testPool.QueryRow(ctx,
		`SELECT birth_country FROM `+config.PlayersTable+` WHERE nhl_id = $1`, 8477493).Scan(&country))
	require.NotNil(t, country)
	assert.Equal(t, nation.FIN, *country)
}

func TestUnknownNameKeepsStoredName(t *testing.T) {
	q := freshDB(t)
	ctx := context.Background()

	_, err := q.UpsertPlayer(ctx, 8478427, "Sebastian Aho", provider.StringPtr(nation.FIN))
	require.NoError(t, err)
	_, err = q.UpsertPlayer(ctx, 8478427, UnknownPlayerName, nil)
	require.NoError(t, err)

	var name string
	require.NoError(t, testPool.QueryRow(ctx,
		`SELECT full_name FROM `+config.PlayersTable+` WHERE nhl_id = $1`, 8478427).Scan(&name))
	assert.Equal(t, "Sebastian Aho", name)

	_, err = q.UpsertPlayer(ctx, 8478427, "Sebastian Aho Jr", nil)
	require.NoError(t, err)
	require.NoError(t, testPool.QueryRow(ctx,
		`SELECT full_name FROM `+config.PlayersTable+` WHERE nhl_id = $1`, 8478427).Scan(&name))
	assert.Equal(t, "Sebastian Aho Jr", name)
}

func TestStatRowKeepsNulls(t *testing.T) {
	q := freshDB(t)
	ctx := context.Background()
	seedGame(t, q, 2025020004, "2025-10-08", "R")

	var gameID int64
	require.NoError(t, testPool.QueryRow(ctx,
		`SELECT id FROM `+config.GamesTable+` WHERE nhl_game_pk = $1`, 2025020004).Scan(&gameID))
	pid, err := q.UpsertPlayer(ctx, 1, "No Stats", nil)
	require.NoError(t, err)
	require.NoError(t, q.UpsertPlayerGameStat(ctx, gameID, pid, nil, provider.StatRow{PlayerID: 1}))

	var goals *int
	require.NoError(t, testPool.QueryRow(ctx,
		`SELECT goals FROM `+config.PlayerGameStatsTable+` WHERE game_id = $1 AND player_id = $2`,
		gameID, pid).Scan(&goals))
	assert.Nil(t, goals)
}

func TestRecomputeAgainstPostgres(t *testing.T) {
	q := freshDB(t)
	ctx := context.Background()
	fin, swe, usa := provider.StringPtr(nation.FIN), provider.StringPtr(nation.SWE), provider.StringPtr("USA")

	seedGame(t, q, 2025020004, "2025-10-08", "R",
		seedPlayer{nhlID: 1, country: fin, goals: 2, assists: 1},
		seedPlayer{nhlID: 2, country: fin},
		seedPlayer{nhlID: 3, country: swe, goals: 1},
		seedPlayer{nhlID: 4, country: swe, assists: 2},
		seedPlayer{nhlID: 5, country: swe, goalie: "W"},
		seedPlayer{nhlID: 6, country: usa, goals: 3},
	)

	var first aggregate.Result
	err := pgx.BeginFunc(ctx, testPool, func(tx pgx.Tx) error {
		var err error
		first, err = aggregate.Recompute(ctx, New(tx), "2025-10-08", nil)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, aggregate.WinnerFIN, first.Night.Winner)

	night, err := q.Nightly(ctx, "2025-10-08")
	require.NoError(t, err)
	assert.Equal(t, aggregate.NationNight{Nation: nation.FIN, Goals: 2, Assists: 1, PlayerCount: 2}, night.FIN)
	assert.Equal(t, aggregate.NationNight{Nation: nation.SWE, Goals: 1, Assists: 2, PlayerCount: 3, GoalieWins: 1}, night.SWE)
	assert.Equal(t, aggregate.WinnerFIN, night.Winner)

	gt, ok, err := q.GameTypeOn(ctx, "2025-10-08")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "R", gt)

	season, ok, err := q.Season(ctx, "20252026", "R")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, aggregate.NationSeason{Nation: nation.FIN, Goals: 2, Assists: 1, NightWins: 1}, season.FIN)
	assert.Equal(t, aggregate.NationSeason{Nation: nation.SWE, Goals: 1, Assists: 2, NightWins: 0}, season.SWE)

	// A second run over unchanged rows leaves everything as it was.
	second, err := aggregate.Recompute(ctx, q, "2025-10-08", nil)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	again, _, err := q.Season(ctx, "20252026", "R")
	require.NoError(t, err)
	assert.Equal(t, season, again)
}

func TestSeasonReplayAcrossNights(t *testing.T) {
	q := freshDB(t)
	ctx := context.Background()
	fin, swe := provider.StringPtr(nation.FIN), provider.StringPtr(nation.SWE)

	seedGame(t, q, 2025020001, "2025-10-07", "R",
		seedPlayer{nhlID: 1, country: fin, goals: 1},
		seedPlayer{nhlID: 2, country: swe},
	)
	seedGame(t, q, 2025020002, "2025-10-08", "R",
		seedPlayer{nhlID: 1, country: fin},
		seedPlayer{nhlID: 2, country: swe, assists: 1},
	)
	seedGame(t, q, 2025020003, "2025-10-09", "R",
		seedPlayer{nhlID: 1, country: fin},
		seedPlayer{nhlID: 2, country: swe},
	)

	for _, d := range []string{"2025-10-07", "2025-10-08", "2025-10-09"} {
		_, err := aggregate.Recompute(ctx, q, d, nil)
		require.NoError(t, err)
	}

	season, ok, err := q.Season(ctx, "20252026", "R")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, season.FIN.NightWins)
	assert.Equal(t, 1, season.SWE.NightWins)

	night, err := q.Nightly(ctx, "2025-10-09")
	require.NoError(t, err)
	assert.Equal(t, aggregate.WinnerTie, night.Winner)
}

func TestZeroGameNight(t *testing.T) {
	q := freshDB(t)
	ctx := context.Background()

	res, err := aggregate.Recompute(ctx, q, "2025-08-01", nil)
	require.NoError(t, err)
	assert.Equal(t, aggregate.NoWinner, res.Night.Winner)

	night, err := q.Nightly(ctx, "2025-08-01")
	require.NoError(t, err)
	assert.Equal(t, aggregate.NationNight{Nation: nation.FIN}, night.FIN)
	assert.Equal(t, aggregate.NationNight{Nation: nation.SWE}, night.SWE)
	assert.Equal(t, aggregate.NoWinner, night.Winner)

	_, ok, err := q.GameTypeOn(ctx, "2025-08-01")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNightlyMissing(t *testing.T) {
	q := freshDB(t)

	_, err := q.Nightly(context.Background(), "2025-10-08")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoNightly))

	_, ok, err := q.Season(context.Background(), "20252026", "R")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFailedTransactionRollsBack(t *testing.T) {
	freshDB(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := pgx.BeginFunc(ctx, testPool, func(tx pgx.Tx) error {
		if _, err := New(tx).UpsertTeam(ctx, provider.Team{NHLID: 99, Name: "X", Tricode: "XXX"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	var n int
	require.NoError(t, testPool.QueryRow(ctx, `SELECT COUNT(*) FROM `+config.TeamsTable).Scan(&n))
	assert.Zero(t, n)
}

func TestNationOverrides(t *testing.T) {
	q := freshDB(t)
	ctx := context.Background()

	require.NoError(t, q.SetNationOverride(ctx, 8475798, nation.FIN, "bio lists wrong country"))
	require.NoError(t, q.SetNationOverride(ctx, 8475798, nation.SWE, ""))

	got, err := q.NationOverrides(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[int64]string{8475798: nation.SWE}, got)
}

func TestRecentNightsReadsRefreshedView(t *testing.T) {
	q := freshDB(t)
	ctx := context.Background()

	seedGame(t, q, 2025020004, "2025-10-08", "R",
		seedPlayer{nhlID: 1, country: provider.StringPtr(nation.SWE), goals: 1},
	)
	_, err := aggregate.Recompute(ctx, q, "2025-10-08", nil)
	require.NoError(t, err)
	require.NoError(t, maintenance.RefreshMaterializedViews(ctx, testPool, slog.Default()))

	nights, err := q.RecentNights(ctx, 5)
	require.NoError(t, err)
	require.Len(t, nights, 1)
	assert.Equal(t, "2025-10-08", nights[0].Date)
	assert.Equal(t, 1, nights[0].SWE.Goals)
	assert.Equal(t, aggregate.WinnerSWE, nights[0].Winner)
}

func TestAfterIngestNotifiesListeners(t *testing.T) {
	q := freshDB(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	seedGame(t, q, 2025020005, "2025-10-10", "R",
		seedPlayer{nhlID: 2, country: provider.StringPtr(nation.FIN), assists: 1},
	)
	_, err := aggregate.Recompute(ctx, q, "2025-10-10", nil)
	require.NoError(t, err)

	conn, err := pgx.Connect(ctx, testPool.Config().ConnString())
	require.NoError(t, err)
	defer conn.Close(context.Background())
	_, err = conn.Exec(ctx, "LISTEN "+config.NightlyUpdatedChannel)
	require.NoError(t, err)

	maintenance.AfterIngest(ctx, testPool, "2025-10-10", nil)

	n, err := conn.WaitForNotification(ctx)
	require.NoError(t, err)
	assert.Equal(t, config.NightlyUpdatedChannel, n.Channel)
	assert.Equal(t, "2025-10-10", n.Payload)

	nights, err := q.RecentNights(ctx, 1)
	require.NoError(t, err)
	require.Len(t, nights, 1)
	assert.Equal(t, aggregate.WinnerFIN, nights[0].Winner)
}

func TestParseWinner(t *testing.T) {
	for _, s := range []string{"FIN", "SWE", "TIE", ""} {
		w, err := parseWinner(s)
		require.NoError(t, err, s)
		assert.Equal(t, aggregate.Winner(s), w)
	}

	_, err := parseWinner("NOR")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"NOR"`)
}
