package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of pgx used to execute SQL. It is satisfied by
// *pgxpool.Pool and by pgx.Tx, which lets repositories run both inside
// and outside transactions.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Beginner opens transactions. Satisfied by *pgxpool.Pool.
type Beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Handle is one live pooled connection handle to the relational store.
// *pgxpool.Pool satisfies it; the manager owns exactly one at a time.
type Handle interface {
	Querier
	Beginner
	Ping(ctx context.Context) error
	Close()
}
