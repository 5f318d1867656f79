package dataset

import (
	"errors"
	"fmt"
)

// ErrTableNotLoaded is returned by Snapshot.Table for a table the snapshot
// does not hold.
var ErrTableNotLoaded = errors.New("table not loaded")

// RetrievalError reports that a source could not be fetched, parsed or
// validated. It aborts the whole load.
type RetrievalError struct {
	Table  Name
	Source string
	Err    error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("retrieve %s from %s: %v", e.Table, e.Source, e.Err)
}

func (e *RetrievalError) Unwrap() error {
	return e.Err
}

// ColumnError reports a column a table is expected to carry but does not.
type ColumnError struct {
	Table  Name
	Column string
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("table %s has no column %q", e.Table, e.Column)
}

// IsRetrievalError reports whether err is or wraps a *RetrievalError.
func IsRetrievalError(err error) bool {
	var re *RetrievalError
	return errors.As(err, &re)
}
