// Command ingest loads one night of NHL games into Postgres and recomputes
// the FIN vs SWE aggregates.
//
// Usage:
//
//	finnkampen-ingest                      # today (UTC)
//	finnkampen-ingest --date 2025-10-09
//	finnkampen-ingest migrate
//	finnkampen-ingest dbcheck
//	finnkampen-ingest override --player 8478427 --nation SWE
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/albapepper/finnkampen/internal/config"
	"github.com/albapepper/finnkampen/internal/db"
	"github.com/albapepper/finnkampen/internal/ingest"
	"github.com/albapepper/finnkampen/internal/maintenance"
	"github.com/albapepper/finnkampen/internal/nation"
	"github.com/albapepper/finnkampen/internal/provider/nhl"
	"github.com/albapepper/finnkampen/internal/season"
	"github.com/albapepper/finnkampen/internal/store"
)

var (
	logLevel = new(slog.LevelVar)
	logger   = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
)

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	var date string
	root := &cobra.Command{
		Use:          "finnkampen-ingest",
		Short:        "Ingest one night of NHL games and recompute FIN vs SWE aggregates",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				client := nhl.NewClient(cfg.NHLBaseURL, cfg.NHLRequestsPerMinute, logger)
				start := time.Now()
				result, err := ingest.New(client, ingest.PoolTx(pool), logger).Run(ctx, date)
				if err != nil {
					return fmt.Errorf("ingest %s: %w", date, err)
				}
				logger.Info("Ingest finished",
					"duration", time.Since(start).Round(time.Millisecond),
					"summary", result.Summary())

				maintenance.AfterIngest(ctx, pool, date, logger)
				return nil
			})
		},
	}
	root.Flags().StringVar(&date, "date", time.Now().UTC().Format(season.DateLayout), "Date to ingest (YYYY-MM-DD)")

	root.AddCommand(migrateCmd())
	root.AddCommand(dbcheckCmd())
	root.AddCommand(overrideCmd())

	if err := root.Execute(); err != nil {
		logger.Error("Ingest failed", "error", err)
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// migrate / dbcheck
// --------------------------------------------------------------------------

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the nhl schema, tables and views if missing",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				if err := pool.ApplySchema(ctx); err != nil {
					return err
				}
				logger.Info("Schema applied")
				return nil
			})
		},
	}
}

func dbcheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dbcheck",
		Short: "Verify database connectivity and TLS settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				now, err := pool.Now(ctx)
				if err != nil {
					return err
				}
				logger.Info("Database reachable",
					"server_time", now.UTC().Format(time.RFC3339),
					"ca_file", cfg.DBCAFile,
					"tls_pinned", cfg.DBCAFile != "")
				return nil
			})
		},
	}
}

// --------------------------------------------------------------------------
// override
// --------------------------------------------------------------------------

func overrideCmd() *cobra.Command {
	var (
		playerID int64
		code     string
		note     string
	)
	cmd := &cobra.Command{
		Use:   "override",
		Short: "Pin a player's nation, bypassing the landing lookup",
		RunE: func(cmd *cobra.Command, args []string) error {
			code = strings.ToUpper(strings.TrimSpace(code))
			if playerID <= 0 {
				return fmt.Errorf("--player is required")
			}
			if len(code) == 0 || len(code) > 3 {
				return fmt.Errorf("--nation must be a 3-letter country code, got %q", code)
			}
			return withDB(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				if err := store.New(pool).SetNationOverride(ctx, playerID, code, note); err != nil {
					return err
				}
				logger.Info("Nation override stored",
					"player_id", playerID, "nation", code, "cohort", nation.IsCohort(code))
				return nil
			})
		},
	}
	cmd.Flags().Int64Var(&playerID, "player", 0, "NHL player id")
	cmd.Flags().StringVar(&code, "nation", "", "Country code (FIN, SWE, ...)")
	cmd.Flags().StringVar(&note, "note", "", "Why the override exists")
	return cmd
}

// --------------------------------------------------------------------------
// Helpers
// --------------------------------------------------------------------------

// withDB loads config, applies the log level, opens the pool and hands both
// to fn. The pool is closed when fn returns.
func withDB(fn func(ctx context.Context, cfg *config.Config, pool *db.Pool) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logLevel.Set(cfg.LogLevel)

	pool, err := db.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	return fn(ctx, cfg, pool)
}
