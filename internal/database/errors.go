package database

import "fmt"

// ConnectionError indicates a failure to establish or verify a pooled
// connection handle.
type ConnectionError struct {
	Msg string
	Err error
}

func (e *ConnectionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// TransactionError indicates a failure to begin or commit a transaction.
// Callback errors are returned unchanged, never wrapped in this type.
type TransactionError struct {
	Op  string // begin, commit
	Err error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("transaction %s: %v", e.Op, e.Err)
}

func (e *TransactionError) Unwrap() error { return e.Err }
