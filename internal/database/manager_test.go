package database

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trongtien/page-builder-cms-sub000/internal/config"
	"github.com/trongtien/page-builder-cms-sub000/pkg/logger"
)

func testLog() *logger.DB {
	return logger.NewDB(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func testConfig() config.PostgresConfig {
	return config.PostgresConfig{
		Host:     "localhost",
		Port:     5432,
		Database: "cms_test",
		User:     "postgres",
		PoolMin:  1,
		PoolMax:  4,
	}
}

// fakeHandle implements Handle without a live connection.
type fakeHandle struct {
	pingErr error
	pings   int
	closed  int
}

func (f *fakeHandle) Ping(ctx context.Context) error {
	f.pings++
	return f.pingErr
}

func (f *fakeHandle) Close() { f.closed++ }

func (f *fakeHandle) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (f *fakeHandle) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeHandle) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}

func (f *fakeHandle) Begin(ctx context.Context) (pgx.Tx, error) {
	return nil, errors.New("not implemented")
}

func fakeDialer(h Handle, dialErr error) func(context.Context, config.PostgresConfig) (Handle, error) {
	return func(context.Context, config.PostgresConfig) (Handle, error) {
		if dialErr != nil {
			return nil, dialErr
		}
		return h, nil
	}
}

func TestManagerConnect(t *testing.T) {
	handle := &fakeHandle{}
	m := NewManager(testConfig(), testLog(), WithDialer(fakeDialer(handle, nil)))

	require.Equal(t, StateDisconnected, m.State())
	require.False(t, m.IsReady())

	require.NoError(t, m.Connect(context.Background()))
	assert.Equal(t, StateConnected, m.State())
	assert.True(t, m.IsReady())
	assert.Equal(t, 1, handle.pings)

	// Already connected: no second dial, no second probe.
	require.NoError(t, m.Connect(context.Background()))
	assert.Equal(t, 1, handle.pings)

	got, err := m.Handle()
	require.NoError(t, err)
	assert.Same(t, Handle(handle), got)
}

func TestManagerConnectDialFailure(t *testing.T) {
	dialErr := errors.New("connection refused")
	m := NewManager(testConfig(), testLog(), WithDialer(fakeDialer(nil, dialErr)))

	err := m.Connect(context.Background())
	require.Error(t, err)

	var connErr *ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.ErrorIs(t, err, dialErr)

	// A failed attempt resets to disconnected; no persistent failed state.
	assert.Equal(t, StateDisconnected, m.State())
	assert.False(t, m.IsReady())
}

func TestManagerConnectProbeFailure(t *testing.T) {
	handle := &fakeHandle{pingErr: errors.New("server not accepting connections")}
	m := NewManager(testConfig(), testLog(), WithDialer(fakeDialer(handle, nil)))

	err := m.Connect(context.Background())
	require.Error(t, err)

	var connErr *ConnectionError
	require.ErrorAs(t, err, &connErr)

	// The handle opened for the failed attempt is discarded.
	assert.Equal(t, 1, handle.closed)
	assert.Equal(t, StateDisconnected, m.State())

	_, err = m.Handle()
	require.ErrorAs(t, err, &connErr)
}

func TestManagerHandleWithoutConnect(t *testing.T) {
	m := NewManager(testConfig(), testLog())

	_, err := m.Handle()
	var connErr *ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Contains(t, err.Error(), "not connected")
}

func TestManagerAcquireHandleConnects(t *testing.T) {
	handle := &fakeHandle{}
	m := NewManager(testConfig(), testLog(), WithDialer(fakeDialer(handle, nil)))

	got, err := m.AcquireHandle(context.Background())
	require.NoError(t, err)
	assert.Same(t, Handle(handle), got)
	assert.True(t, m.IsReady())
}

func TestManagerDisconnectIdempotent(t *testing.T) {
	handle := &fakeHandle{}
	m := NewManager(testConfig(), testLog(), WithDialer(fakeDialer(handle, nil)))
	require.NoError(t, m.Connect(context.Background()))

	m.Disconnect()
	assert.Equal(t, 1, handle.closed)
	assert.Equal(t, StateDisconnected, m.State())

	// Repeated calls never fail and never double-close.
	m.Disconnect()
	m.Disconnect()
	assert.Equal(t, 1, handle.closed)
}

func TestManagerPingNotConnected(t *testing.T) {
	m := NewManager(testConfig(), testLog())
	err := m.Ping(context.Background())
	var connErr *ConnectionError
	require.ErrorAs(t, err, &connErr)
}
