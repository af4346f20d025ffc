package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// TxFunc runs inside a database transaction.
type TxFunc func(*sql.Tx) error

// WithTransaction runs fn inside a transaction. The transaction commits
// when fn returns nil and rolls back when it returns an error or
// panics; panics are re-raised after rollback. A failed commit wraps
// ErrCommit and leaves no partial effects.
func (db *DB) WithTransaction(ctx context.Context, fn TxFunc) (err error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				err = fmt.Errorf("transaction error: %w, rollback error: %v", err, rbErr)
			}
			return
		}
		if commitErr := tx.Commit(); commitErr != nil {
			err = fmt.Errorf("%w: %v", ErrCommit, commitErr)
		}
	}()

	err = fn(tx)
	return err
}
