package maintenance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/albapepper/finnkampen/internal/config"
)

// Execer is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Views lists the materialized views built over the aggregate tables.
var Views = []string{
	config.NightlyPivotView,
}

// RefreshMaterializedViews refreshes all materialized views.
// Uses CONCURRENTLY so reads are not blocked during refresh.
func RefreshMaterializedViews(ctx context.Context, db Execer, logger *slog.Logger) error {
	for _, v := range Views {
		start := time.Now()
		_, err := db.Exec(ctx, "REFRESH MATERIALIZED VIEW CONCURRENTLY "+v)
		dur := time.Since(start).Round(time.Millisecond)

		if err != nil {
			logger.Warn("Failed to refresh materialized view",
				"view", v, "duration", dur, "error", err)
			return fmt.Errorf("refresh %s: %w", v, err)
		}
		logger.Info("Refreshed materialized view", "view", v, "duration", dur)
	}
	return nil
}

// NotifyNightlyUpdated announces that date was re-aggregated.
func NotifyNightlyUpdated(ctx context.Context, db Execer, date string) error {
	if _, err := db.Exec(ctx, "SELECT pg_notify($1, $2)", config.NightlyUpdatedChannel, date); err != nil {
		return fmt.Errorf("notify %s: %w", config.NightlyUpdatedChannel, err)
	}
	return nil
}

// AfterIngest runs once the ingestion transaction for date has committed.
// Failures are logged as warnings and never fail the run: the aggregate
// tables are already correct and the view catches up on the next refresh.
func AfterIngest(ctx context.Context, db Execer, date string, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := RefreshMaterializedViews(ctx, db, logger); err != nil {
		logger.Warn("Post-ingest refresh skipped", "date", date, "error", err)
	}
	if err := NotifyNightlyUpdated(ctx, db, date); err != nil {
		logger.Warn("Post-ingest notify failed", "date", date, "error", err)
		return
	}
	logger.Debug("Notified aggregate update", "channel", config.NightlyUpdatedChannel, "date", date)
}
