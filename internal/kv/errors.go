package kv

import (
	"errors"
	"fmt"
)

// ErrNotInitialized is returned when the underlying client is requested
// before Connect.
var ErrNotInitialized = errors.New("redis client not initialized")

// ConnectionError indicates a failure to establish or verify the key-value
// connection. The target description never contains the password.
type ConnectionError struct {
	Target string
	Err    error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("failed to connect to %s: %v", e.Target, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// PipelineError wraps a pipeline exec failure.
type PipelineError struct {
	Err error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("pipeline execution failed: %v", e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }

// TxError wraps an atomic multi-command exec failure.
type TxError struct {
	Err error
}

func (e *TxError) Error() string {
	return fmt.Sprintf("transaction execution failed: %v", e.Err)
}

func (e *TxError) Unwrap() error { return e.Err }
