// Package dbx holds the small DB plumbing shared by repositories: the Querier
// interface implemented by both *sql.DB and *sql.Tx, and a helper to run a
// function inside a transaction.
package dbx

import (
	"context"
	"database/sql"
)

// Querier is the subset of database/sql the repositories use. Passing a
// *sql.Tx instead of a *sql.DB makes a repository transactional without any
// code change on its side.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// InTx begins a transaction, runs fn with the transactional handle, commits on
// success and rolls back on error or panic. Panics are rethrown.
func InTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx Querier) error) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	err = fn(ctx, tx)
	return err
}
