// Package dbx holds the thin database/sql plumbing the note and ledger
// repositories are built on: a query interface satisfied by plain
// connections and transactions alike, and a transactional wrapper.
package dbx

import (
	"context"
	"database/sql"
)

// DBTX is the query surface a repository needs. Passing *sql.DB runs
// statements directly; passing *sql.Tx runs them inside that transaction,
// which is how WithTx hands repositories a transactional handle.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx runs fn inside a transaction: commit when fn returns nil, rollback
// otherwise. A panic inside fn rolls back and is rethrown.
//
//	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
//	    if _, err := tx.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE token = $1`, old); err != nil {
//	        return err
//	    }
//	    _, err := tx.ExecContext(ctx, `INSERT INTO refresh_tokens (token, user_id) VALUES ($1, $2)`, next, uid)
//	    return err
//	})
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) (err error) {
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
