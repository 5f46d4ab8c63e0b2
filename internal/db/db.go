// Package db provides a pgxpool-based connection pool with strict TLS,
// prepared statement registration, transactions and health checking.
package db

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/albapepper/finnkampen/internal/config"
)

//go:embed schema.sql
var schemaSQL string

// Schema returns the embedded DDL.
func Schema() string { return schemaSQL }

// Pool wraps pgxpool.Pool with application-specific helpers.
type Pool struct {
	*pgxpool.Pool
}

// New creates and validates a new connection pool.
func New(ctx context.Context, cfg *config.Config) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolCfg.MinConns = int32(cfg.DBPoolMinConns)
	poolCfg.MaxConns = int32(cfg.DBPoolMaxConns)
	poolCfg.MaxConnLifetime = cfg.DBPoolMaxLife
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	if err := pinCA(poolCfg.ConnConfig, cfg.DBCAFile); err != nil {
		return nil, err
	}

	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return registerPreparedStatements(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// ConnConfig builds the config for a dedicated connection outside the pool,
// with the same CA pinning the pool uses.
func ConnConfig(cfg *config.Config) (*pgx.ConnConfig, error) {
	connCfg, err := pgx.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	if err := pinCA(connCfg, cfg.DBCAFile); err != nil {
		return nil, err
	}
	return connCfg, nil
}

// pinCA replaces the URL's TLS settings with a config verifying against
// caFile. No plaintext or unverified fallbacks remain. A blank caFile leaves
// connCfg as parsed.
func pinCA(connCfg *pgx.ConnConfig, caFile string) error {
	if caFile == "" {
		return nil
	}
	tlsCfg, err := TLSConfig(caFile, connCfg.Host)
	if err != nil {
		return err
	}
	connCfg.TLSConfig = tlsCfg
	connCfg.Fallbacks = nil
	return nil
}

// TLSConfig builds a verifying TLS config that trusts only the CA bundle at
// caFile, TLS 1.2 minimum.
func TLSConfig(caFile, serverName string) (*tls.Config, error) {
	pem, err := os.ReadFile(caFile)
	if err != nil {
		return nil, fmt.Errorf("read CA file %s: %w", caFile, err)
	}
	roots := x509.NewCertPool()
	if !roots.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("no certificates found in %s", caFile)
	}
	return &tls.Config{
		RootCAs:    roots,
		ServerName: serverName,
		MinVersion: tls.VersionTLS12,
	}, nil
}

// WithTx runs fn in a single transaction: committed when fn returns nil,
// rolled back otherwise. The connection is always returned to the pool.
func (p *Pool) WithTx(ctx context.Context, fn func(pgx.Tx) error) error {
	if err := pgx.BeginFunc(ctx, p.Pool, fn); err != nil {
		return fmt.Errorf("transaction: %w", err)
	}
	return nil
}

// ApplySchema creates the nhl schema, tables and views if missing.
func (p *Pool) ApplySchema(ctx context.Context) error {
	if _, err := p.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// HealthCheck runs a trivial query to verify the database is reachable.
func (p *Pool) HealthCheck(ctx context.Context) error {
	var n int
	return p.QueryRow(ctx, "health_check").Scan(&n)
}

// Now returns the server clock; used by the connectivity check.
func (p *Pool) Now(ctx context.Context) (time.Time, error) {
	var now time.Time
	if err := p.QueryRow(ctx, "server_now").Scan(&now); err != nil {
		return time.Time{}, fmt.Errorf("select now: %w", err)
	}
	return now, nil
}

// registerPreparedStatements registers the statements run directly on the
// pool. Store queries rely on pgx's statement cache instead, since they also
// run inside transactions built by other callers.
func registerPreparedStatements(ctx context.Context, conn *pgx.Conn) error {
	stmts := map[string]string{
		"health_check": "SELECT 1",
		"server_now":   "SELECT now()",
	}

	for name, sql := range stmts {
		if _, err := conn.Prepare(ctx, name, sql); err != nil {
			return fmt.Errorf("prepare %q: %w", name, err)
		}
	}
	return nil
}
