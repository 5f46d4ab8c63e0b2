package ingest

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/albapepper/finnkampen/internal/db"
	"github.com/albapepper/finnkampen/internal/store"
)

// PoolTx runs each ingestion in one pool transaction with store queries
// bound to it.
func PoolTx(pool *db.Pool) TxRunner {
	return func(ctx context.Context, fn func(Writer) error) error {
		return pool.WithTx(ctx, func(tx pgx.Tx) error {
			return fn(store.New(tx))
		})
	}
}
