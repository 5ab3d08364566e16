package repository

import (
	"context"
	"database/sql"
)

// DBTX is the subset of *sql.DB and *sql.Tx the repositories need. Services
// construct repos over the handle they hold, so the same query code runs
// standalone or inside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ DBTX = (*sql.DB)(nil)
	_ DBTX = (*sql.Tx)(nil)
)

// scanner handles both Row and Rows.
type scanner interface {
	Scan(dest ...any) error
}
