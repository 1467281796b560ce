package service

import (
	"context"
	"database/sql"

	sessionrepo "booking-platform/auth/internal/session/repository"
	tokenrepo "booking-platform/auth/internal/token/repository"
)

// TxRunner executes fn atomically: every storage write inside fn commits
// together or not at all. fn receives repositories bound to the transaction.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(tokens TokenRepo, sessions SessionRepo) error) error
}

// SQLTxRunner implements TxRunner over a *sql.DB connection pool.
type SQLTxRunner struct {
	pool *sql.DB
}

// NewSQLTxRunner returns a TxRunner that opens one transaction per RunInTx call.
func NewSQLTxRunner(pool *sql.DB) *SQLTxRunner {
	return &SQLTxRunner{pool: pool}
}

// RunInTx begins a transaction, runs fn with transaction-bound repositories,
// and commits. Any error from fn rolls the transaction back and is returned
// unchanged so callers can match sentinel errors.
func (r *SQLTxRunner) RunInTx(ctx context.Context, fn func(tokens TokenRepo, sessions SessionRepo) error) error {
	tx, err := r.pool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tokenrepo.NewPostgresRepository(tx), sessionrepo.NewPostgresRepository(tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
