// Package listener provides a Postgres LISTEN/NOTIFY consumer that keeps the
// read API's cache in step with ingestion. It holds a dedicated pgx
// connection (not from the pool) listening on the `nightly_agg_updated`
// channel; every notification carries the re-aggregated date.
package listener

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/albapepper/finnkampen/internal/config"
	"github.com/albapepper/finnkampen/internal/season"
)

const (
	reconnectBackoff = 5 * time.Second
	maxReconnect     = 30 * time.Second
)

// Invalidator drops cached responses. A re-aggregated date changes that
// night, the season totals and the recent list, so everything goes.
type Invalidator interface {
	Purge() int
}

// Start opens a dedicated connection from connCfg (see db.ConnConfig) and
// listens for aggregate updates. It
// reconnects automatically on connection loss. Blocks until ctx is
// cancelled. Intended to be called with `go`.
func Start(ctx context.Context, connCfg *pgx.ConnConfig, inv Invalidator, logger *slog.Logger) {
	b := newBackOff()

	for {
		connected, err := listenLoop(ctx, connCfg, inv, logger)
		if ctx.Err() != nil {
			logger.Info("Aggregate listener stopped (context cancelled)")
			return
		}
		if connected {
			b.Reset()
		}
		wait := b.NextBackOff()

		logger.Error("Aggregate listener disconnected, reconnecting...",
			"error", err, "backoff", wait.Round(time.Millisecond))

		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return
		}
	}
}

// newBackOff never gives up; the listener lives as long as the server.
func newBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = reconnectBackoff
	b.MaxInterval = maxReconnect
	b.MaxElapsedTime = 0
	b.Multiplier = 2.0
	b.RandomizationFactor = 0.2
	b.Reset()
	return b
}

// listenLoop runs a single listen session. Returns when the connection drops
// or the context is cancelled; connected reports whether LISTEN succeeded.
func listenLoop(ctx context.Context, connCfg *pgx.ConnConfig, inv Invalidator, logger *slog.Logger) (connected bool, err error) {
	conn, err := pgx.ConnectConfig(ctx, connCfg)
	if err != nil {
		return false, fmt.Errorf("connect: %w", err)
	}
	defer conn.Close(context.Background())

	if _, err := conn.Exec(ctx, "LISTEN "+config.NightlyUpdatedChannel); err != nil {
		return false, fmt.Errorf("LISTEN %s: %w", config.NightlyUpdatedChannel, err)
	}
	logger.Info("Aggregate listener connected", "channel", config.NightlyUpdatedChannel)

	// Anything ingested while disconnected was missed.
	inv.Purge()

	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			return true, fmt.Errorf("wait for notification: %w", err)
		}
		Handle(n, inv, logger)
	}
}

// Handle applies one notification to the cache.
func Handle(n *pgconn.Notification, inv Invalidator, logger *slog.Logger) {
	if _, err := season.ParseDate(n.Payload); err != nil {
		logger.Warn("Unexpected aggregate notification payload",
			"channel", n.Channel, "payload", n.Payload)
	}
	dropped := inv.Purge()
	logger.Info("Aggregate update received, cache purged",
		"date", n.Payload, "dropped", dropped)
}
