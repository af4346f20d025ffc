// Package repository provides data access layers for scorebook data.
package repository

import (
	"context"
	"database/sql"
)

// Querier is the subset of database/sql the repositories need. Both
// *sql.DB and *sql.Tx satisfy it, so the same repository runs pooled
// reads and transactional writes.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}
