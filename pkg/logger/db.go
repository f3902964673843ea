package logger

import "log/slog"

// DB is the structured logger used by the persistence layer. It never
// formats human-readable text itself; callers pass key/value metadata
// (table, operation, count, error) and the handler decides on rendering.
type DB struct {
	l *slog.Logger
}

// NewDB wraps an slog.Logger for persistence-layer use.
// A nil logger falls back to the global one.
func NewDB(l *slog.Logger) *DB {
	if l == nil {
		l = Get()
	}
	return &DB{l: l}
}

// Query logs a query-level event for one engine operation.
func (d *DB) Query(table, operation string, args ...any) {
	attrs := append([]any{"table", table, "operation", operation}, args...)
	d.l.Debug("query", attrs...)
}

// Transaction logs a transaction lifecycle event (begin, commit, rollback).
func (d *DB) Transaction(action string, args ...any) {
	attrs := append([]any{"action", action}, args...)
	d.l.Info("transaction", attrs...)
}

// Connection logs a connection lifecycle event (connect, disconnect, probe).
func (d *DB) Connection(event string, args ...any) {
	attrs := append([]any{"event", event}, args...)
	d.l.Info("connection", attrs...)
}

// Error logs a persistence-layer failure with operation context.
func (d *DB) Error(msg string, args ...any) {
	d.l.Error(msg, args...)
}

// Info logs at info level.
func (d *DB) Info(msg string, args ...any) {
	d.l.Info(msg, args...)
}

// Warn logs at warn level.
func (d *DB) Warn(msg string, args ...any) {
	d.l.Warn(msg, args...)
}

// Debug logs at debug level.
func (d *DB) Debug(msg string, args ...any) {
	d.l.Debug(msg, args...)
}
