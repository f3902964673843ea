// Package database owns the lifecycle of the pooled Postgres connection:
// connect with a verification probe, health checks with bounded retry,
// transaction coordination, and idempotent disconnect.
package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trongtien/page-builder-cms-sub000/internal/config"
	"github.com/trongtien/page-builder-cms-sub000/pkg/logger"
)

// State is the connection lifecycle state.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

const connectTimeout = 5 * time.Second

// Manager owns one pooled connection handle to Postgres. It is constructed
// once by the composition root and passed to consumers; there is no hidden
// global instance.
type Manager struct {
	cfg  config.PostgresConfig
	log  *logger.DB
	dial func(ctx context.Context, cfg config.PostgresConfig) (Handle, error)

	mu     sync.Mutex
	state  State
	handle Handle
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithDialer replaces the pool constructor, used by tests.
func WithDialer(dial func(ctx context.Context, cfg config.PostgresConfig) (Handle, error)) ManagerOption {
	return func(m *Manager) { m.dial = dial }
}

// NewManager creates a disconnected Manager for the given configuration.
func NewManager(cfg config.PostgresConfig, log *logger.DB, opts ...ManagerOption) *Manager {
	m := &Manager{
		cfg:  cfg,
		log:  log,
		dial: dialPool,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func dialPool(ctx context.Context, cfg config.PostgresConfig) (Handle, error) {
	pc, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	pc.MinConns = cfg.PoolMin
	pc.MaxConns = cfg.PoolMax
	pc.MaxConnIdleTime = cfg.IdleTimeout
	pc.ConnConfig.ConnectTimeout = cfg.AcquireTimeout

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	return pool, nil
}

// Connect opens the pooled handle, verifies it with a probe query and only
// then marks the manager connected. It is a no-op when already connected.
// A failed attempt resets to disconnected and returns a *ConnectionError.
func (m *Manager) Connect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == StateConnected && m.handle != nil {
		return nil
	}

	m.state = StateConnecting
	m.log.Connection("connecting", "target", m.cfg.Redacted())

	handle, err := m.dial(ctx, m.cfg)
	if err != nil {
		m.state = StateDisconnected
		m.log.Error("database connect failed", "target", m.cfg.Redacted(), "error", err.Error())
		return &ConnectionError{Msg: "failed to open connection pool", Err: err}
	}

	probeCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := handle.Ping(probeCtx); err != nil {
		handle.Close()
		m.state = StateDisconnected
		m.log.Error("database probe failed", "target", m.cfg.Redacted(), "error", err.Error())
		return &ConnectionError{Msg: "failed to verify connection", Err: err}
	}

	if m.cfg.MigrationsPath != "" {
		if err := m.runMigrations(); err != nil {
			handle.Close()
			m.state = StateDisconnected
			m.log.Error("database migration failed", "target", m.cfg.Redacted(), "error", err.Error())
			return err
		}
	}

	m.handle = handle
	m.state = StateConnected
	m.log.Connection("connected", "target", m.cfg.Redacted())
	return nil
}

func (m *Manager) runMigrations() error {
	mg, err := migrate.New("file://"+m.cfg.MigrationsPath, m.cfg.DSN())
	if err != nil {
		return &ConnectionError{Msg: "failed to create migration instance", Err: err}
	}
	if err := mg.Up(); err != nil && err != migrate.ErrNoChange {
		return &ConnectionError{Msg: "failed to run migrations", Err: err}
	}
	return nil
}

// Handle returns the live handle without attempting to connect.
func (m *Manager) Handle() (Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateConnected || m.handle == nil {
		return nil, &ConnectionError{Msg: "not connected"}
	}
	return m.handle, nil
}

// AcquireHandle connects first when necessary, then returns the handle.
func (m *Manager) AcquireHandle(ctx context.Context) (Handle, error) {
	if err := m.Connect(ctx); err != nil {
		return nil, err
	}
	return m.Handle()
}

// Disconnect destroys the pooled handle and resets state. It is idempotent
// and never fails on repeated calls.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.handle != nil {
		m.handle.Close()
		m.handle = nil
		m.log.Connection("disconnected", "target", m.cfg.Redacted())
	}
	m.state = StateDisconnected
}

// IsReady reports whether the manager is connected with a live handle.
func (m *Manager) IsReady() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == StateConnected && m.handle != nil
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Ping issues the trivial probe query through the live handle.
func (m *Manager) Ping(ctx context.Context) error {
	handle, err := m.Handle()
	if err != nil {
		return err
	}
	return handle.Ping(ctx)
}
