// Package pg provides PostgreSQL connection helpers for the crud toolkit.
//
// It builds pgx connection pools and bun database handles from a single
// Config, attaches the debug and OpenTelemetry query hooks, and exposes
// helpers for interpreting PostgreSQL errors.
package pg

import (
	"context"

	"github.com/avast/retry-go/v4"
	"github.com/code19m/errx"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/extra/bundebug"
	"github.com/uptrace/bun/extra/bunotel"
)

// pingAttempts bounds the startup ping retries before giving up.
const pingAttempts = 5

// NewPool creates a pgx connection pool and verifies connectivity with a
// bounded ping retry, so a service does not come up before its database
// accepts connections.
func NewPool(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.dsn())
	if err != nil {
		return nil, errx.Wrap(err)
	}

	poolConfig.MaxConns = cfg.PoolMaxConns
	poolConfig.MinConns = cfg.PoolMinConns
	poolConfig.MaxConnIdleTime = cfg.PoolMaxConnIdleTime
	poolConfig.MaxConnLifetime = cfg.PoolMaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, errx.Wrap(err)
	}

	err = retry.Do(
		func() error { return pool.Ping(ctx) },
		retry.Attempts(pingAttempts),
		retry.Context(ctx),
	)
	if err != nil {
		pool.Close()
		return nil, errx.Wrap(err)
	}

	return pool, nil
}

// NewDB creates a bun database handle backed by a pgx pool.
//
// Two query hooks are attached: bundebug for query logging (active only when
// cfg.Debug is set) and bunotel for tracing, which is always enabled.
func NewDB(ctx context.Context, cfg Config) (*bun.DB, error) {
	pool, err := NewPool(ctx, cfg)
	if err != nil {
		return nil, errx.Wrap(err)
	}

	sqldb := stdlib.OpenDBFromPool(pool)

	db := bun.NewDB(sqldb, pgdialect.New())
	db.AddQueryHook(bundebug.NewQueryHook(
		bundebug.WithEnabled(cfg.Debug),
		bundebug.WithVerbose(cfg.Debug),
	))
	db.AddQueryHook(bunotel.NewQueryHook())

	return db, nil
}
