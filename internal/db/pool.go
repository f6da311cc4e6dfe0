package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"matchday/internal/config"
	"matchday/internal/types"
)

// NewPool creates a pgx connection pool from the database configuration and
// verifies connectivity with a ping. The digest worker is a short-lived
// batch job, so the pool is deliberately small.
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL.Unmask())
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to parse database URL", err)
	}

	poolCfg.MaxConns = int32(cfg.MaxConns)
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	poolCfg.ConnConfig.ConnectTimeout = cfg.AcquireTimeout

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to create database pool", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to ping database", err)
	}

	return pool, nil
}
