package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type contextKey string

const txKey contextKey = "tx_db"

// sqlxTxRunner implements TxRunner over sqlx. The transaction is injected
// into the context so repositories transparently join it.
type sqlxTxRunner struct {
	db *sqlx.DB
}

func NewTxRunner(db *sqlx.DB) TxRunner {
	return &sqlxTxRunner{db: db}
}

// WithinTx begins a transaction, injects it into the context, and commits if
// fn returns nil. Any error rolls everything back, so a failing origination
// leaves no orphan customer or pawn item behind.
func (r *sqlxTxRunner) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	txCtx := context.WithValue(ctx, txKey, tx)

	if err := fn(txCtx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// getExt returns the transaction bound to the context if one is present,
// otherwise the plain connection pool.
func getExt(ctx context.Context, fallback *sqlx.DB) sqlx.ExtContext {
	if tx, ok := ctx.Value(txKey).(*sqlx.Tx); ok {
		return tx
	}
	return fallback
}
