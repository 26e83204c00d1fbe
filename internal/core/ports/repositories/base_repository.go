package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// TransactionManager defines methods for transaction management
type TransactionManager interface {
	// Begin starts a new database transaction
	Begin(ctx context.Context) (pgx.Tx, error)

	// Commit commits a transaction
	Commit(ctx context.Context, tx pgx.Tx) error

	// Rollback rolls back a transaction
	Rollback(ctx context.Context, tx pgx.Tx) error

	// RunInTx runs fn inside a transaction: begin, fn, commit on nil error,
	// rollback on any error or panic. If ctx already carries a transaction
	// (a caller's RunInTx frame), fn joins it and commit/rollback are left
	// to the outermost frame. This is the single scoped-resource helper
	// every balance-mutating path goes through.
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error
}

// RepositoryWithTx is a marker interface for repositories that support transactions
type RepositoryWithTx interface {
	TransactionManager
}
