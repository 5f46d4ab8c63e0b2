// Package store holds every SQL statement the system runs against the nhl
// schema. Queries work over anything that can Exec/Query, so the same code
// runs on the pool (reads) and inside an ingestion transaction (writes).
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNoNightly is returned when no nightly aggregate exists for a date,
// which means ingest has not run for it.
var ErrNoNightly = errors.New("no nightly aggregate")

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Queries runs the statements of this package on one handle.
type Queries struct {
	db DBTX
}

// New binds queries to a pool, connection or transaction.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func collect[T any](rows pgx.Rows, err error, scan func(pgx.Rows) (T, error)) ([]T, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
