package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithTransactionCommits(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO pages").WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	c := NewCoordinator(mock, testLog())
	err = c.WithTransaction(context.Background(), func(ctx context.Context, tx pgx.Tx) error {
		_, execErr := tx.Exec(ctx, "INSERT INTO pages DEFAULT VALUES")
		return execErr
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTransactionRollsBackAndRethrows(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	callbackErr := errors.New("slug already taken")
	c := NewCoordinator(mock, testLog())
	err = c.WithTransaction(context.Background(), func(ctx context.Context, tx pgx.Tx) error {
		return callbackErr
	})

	// The callback's error comes back exactly, never wrapped.
	assert.Same(t, callbackErr, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTransactionBeginFailure(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin().WillReturnError(errors.New("too many connections"))

	c := NewCoordinator(mock, testLog())
	err = c.WithTransaction(context.Background(), func(ctx context.Context, tx pgx.Tx) error {
		t.Fatal("callback must not run when begin fails")
		return nil
	})

	var txErr *TransactionError
	require.ErrorAs(t, err, &txErr)
	assert.Equal(t, "begin", txErr.Op)
}

func TestWithTransactionCommitFailure(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(errors.New("deadlock detected"))

	c := NewCoordinator(mock, testLog())
	err = c.WithTransaction(context.Background(), func(ctx context.Context, tx pgx.Tx) error { return nil })

	var txErr *TransactionError
	require.ErrorAs(t, err, &txErr)
	assert.Equal(t, "commit", txErr.Op)
}

func TestWithTransactionTimeoutExpiry(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	c := NewCoordinator(mock, testLog())
	err = c.WithTransactionTimeout(context.Background(), 10*time.Millisecond, func(ctx context.Context, tx pgx.Tx) error {
		// A unit of work that outlives the deadline observes the expiry.
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
			return nil
		}
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestInTransactionReturnsValue(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectCommit()

	c := NewCoordinator(mock, testLog())
	got, err := InTransaction(context.Background(), c, func(ctx context.Context, tx pgx.Tx) (int, error) {
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, got)
}
