package repository

import "fmt"

// QueryError wraps a failure inside an engine operation with its table and
// operation context. The underlying error is preserved for errors.Is/As.
type QueryError struct {
	Table string
	Op    string
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Table, e.Op, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// RestoreUnsupportedError is returned when Restore is called on an engine
// constructed without soft delete. The store is never touched.
type RestoreUnsupportedError struct {
	Table string
}

func (e *RestoreUnsupportedError) Error() string {
	return fmt.Sprintf("restore is unavailable on table %s: soft delete is disabled", e.Table)
}
