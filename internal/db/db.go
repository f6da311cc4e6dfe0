// Package db provides PostgreSQL-backed repository implementations for the
// Matchday digest worker. All repositories accept a DBTX interface that is
// satisfied by both *pgxpool.Pool and pgx.Tx, so the same code works inside
// or outside a transaction.
//
// The worker performs six filtered read queries per run and no writes:
// sports, teams, and broadcasters (full catalog scans), forecasted events on
// the target date, email-type alerts, and users.
package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the minimal interface shared by *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}
