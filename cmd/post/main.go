// Command post renders the stored FIN vs SWE summary for one night and
// publishes it. Publishing failures are logged and never fail the command.
//
// Usage:
//
//	finnkampen-post                        # yesterday (UTC)
//	finnkampen-post --date 2025-10-09
//	TWITTER_ENABLE=0 finnkampen-post       # render and log only
//	finnkampen-post test
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/albapepper/finnkampen/internal/config"
	"github.com/albapepper/finnkampen/internal/db"
	"github.com/albapepper/finnkampen/internal/external"
	"github.com/albapepper/finnkampen/internal/season"
	"github.com/albapepper/finnkampen/internal/store"
	"github.com/albapepper/finnkampen/internal/tweet"
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
		Use:          "finnkampen-post",
		Short:        "Publish the nightly FIN vs SWE summary",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := season.ParseDate(date); err != nil {
				return err
			}
			return withConfig(func(ctx context.Context, cfg *config.Config) error {
				pool, err := db.New(ctx, cfg)
				if err != nil {
					return fmt.Errorf("connect to database: %w", err)
				}
				defer pool.Close()

				post, err := tweet.Compose(ctx, store.New(pool), date)
				if errors.Is(err, store.ErrNoNightly) {
					logger.Warn("No nightly aggregate stored, nothing to post (run ingest first)", "date", date)
					return nil
				}
				if err != nil {
					return fmt.Errorf("compose post for %s: %w", date, err)
				}
				logger.Info("Post rendered",
					"date", date,
					"length", post.Length,
					"winner", string(post.Night.Winner),
					"season_section", post.Season != nil)
				logger.Debug("Post text", "text", post.Text)

				res := publisher(cfg).Publish(ctx, post.Text)
				if res.ID != "" {
					logger.Info("Nightly post published", "date", date, "id", res.ID)
				}
				return nil
			})
		},
	}
	root.Flags().StringVar(&date, "date", time.Now().UTC().AddDate(0, 0, -1).Format(season.DateLayout), "Night to post (YYYY-MM-DD)")

	root.AddCommand(testCmd())

	if err := root.Execute(); err != nil {
		logger.Error("Post failed", "error", err)
		os.Exit(1)
	}
}

// testCmd sends a timestamped message to check credentials end to end.
// Unlike the nightly run, a failure here exits non-zero.
func testCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Publish a timestamped test message",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withConfig(func(ctx context.Context, cfg *config.Config) error {
				text := "Finnkampen test " + time.Now().UTC().Format(time.RFC3339)
				res, err := publisher(cfg).Post(ctx, text)
				if err != nil {
					return fmt.Errorf("test post: %w", err)
				}
				logger.Info("Test post done", "skipped", res.Skipped, "id", res.ID)
				return nil
			})
		},
	}
}

func publisher(cfg *config.Config) *external.Publisher {
	return external.NewPublisher(external.PublisherConfig{
		Enabled:      cfg.TwitterEnabled,
		AppKey:       cfg.TwitterAppKey,
		AppSecret:    cfg.TwitterAppSecret,
		AccessToken:  cfg.TwitterAccessToken,
		AccessSecret: cfg.TwitterAccessSecret,
		BaseURL:      cfg.TwitterBaseURL,
	}, logger)
}

func withConfig(fn func(ctx context.Context, cfg *config.Config) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logLevel.Set(cfg.LogLevel)

	return fn(ctx, cfg)
}
