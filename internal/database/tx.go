package database

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/trongtien/page-builder-cms-sub000/pkg/logger"
)

// TxFunc is a unit of work executed against one transaction-scoped handle.
// The context carries any deadline set by WithTransactionTimeout.
type TxFunc func(ctx context.Context, tx pgx.Tx) error

// Coordinator runs units of work atomically: commit on normal return,
// rollback and rethrow on any error.
type Coordinator struct {
	db  Beginner
	log *logger.DB
}

// NewCoordinator creates a transaction coordinator over db.
func NewCoordinator(db Beginner, log *logger.DB) *Coordinator {
	return &Coordinator{db: db, log: log}
}

// WithTransaction runs fn inside a transaction. On callback failure the
// transaction is rolled back, the rollback is logged, and the callback's
// error is returned unchanged. The commit path is not separately logged.
func (c *Coordinator) WithTransaction(ctx context.Context, fn TxFunc) error {
	tx, err := c.db.Begin(ctx)
	if err != nil {
		return &TransactionError{Op: "begin", Err: err}
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
	}()

	if err := fn(ctx, tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			c.log.Error("transaction rollback failed", "error", rbErr.Error())
		}
		c.log.Transaction("rollback", "error", err.Error())
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		c.log.Error("transaction commit failed", "error", err.Error())
		return &TransactionError{Op: "commit", Err: err}
	}
	return nil
}

// WithTransactionTimeout is WithTransaction with a deadline after which the
// context aborts the transaction; expiry surfaces through the same
// rollback-logged error path.
func (c *Coordinator) WithTransactionTimeout(ctx context.Context, timeout time.Duration, fn TxFunc) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.WithTransaction(ctx, fn)
}

// InTransaction runs fn inside a transaction and returns its result,
// for callers that need a value out of the unit of work.
func InTransaction[T any](ctx context.Context, c *Coordinator, fn func(ctx context.Context, tx pgx.Tx) (T, error)) (T, error) {
	var out T
	err := c.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var fnErr error
		out, fnErr = fn(ctx, tx)
		return fnErr
	})
	return out, err
}
