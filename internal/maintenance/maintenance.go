// Package maintenance holds the work done around ingestion runs: the
// post-ingest hook and the periodic view refresh run by the API server.
package maintenance

import (
	"context"
	"log/slog"
	"time"
)

// Config controls maintenance task intervals. Zero duration disables a task.
type Config struct {
	RefreshInterval time.Duration // Catch-up refresh of materialized views
}

// Start launches the configured tickers. Blocks until ctx is cancelled.
// Intended to be called with `go`.
func Start(ctx context.Context, db Execer, cfg Config, logger *slog.Logger) {
	logger.Info("Maintenance tickers started", "refresh", cfg.RefreshInterval)

	if cfg.RefreshInterval > 0 {
		t := time.NewTicker(cfg.RefreshInterval)
		defer t.Stop()
		go runLoop(ctx, t.C, func() {
			_ = RefreshMaterializedViews(ctx, db, logger)
		})
	}

	<-ctx.Done()
	logger.Info("Maintenance tickers stopped")
}

func runLoop(ctx context.Context, ch <-chan time.Time, fn func()) {
	for {
		select {
		case <-ch:
			fn()
		case <-ctx.Done():
			return
		}
	}
}
