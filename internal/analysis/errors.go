package analysis

import (
	"errors"
	"fmt"

	"ecomdash/internal/dataset"
)

// ErrNoData is wrapped when an input column holds no usable values.
var ErrNoData = errors.New("no usable values")

// ComputationError reports that one analysis could not be computed. It only
// affects its own section.
type ComputationError struct {
	Kind   Kind
	Table  dataset.Name
	Column string
	Err    error
}

func (e *ComputationError) Error() string {
	var colErr *dataset.ColumnError
	if e.Column != "" && !errors.As(e.Err, &colErr) {
		return fmt.Sprintf("%s: column %s.%s: %v", e.Kind, e.Table, e.Column, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *ComputationError) Unwrap() error {
	return e.Err
}

// IsComputationError reports whether err is or wraps a *ComputationError.
func IsComputationError(err error) bool {
	var ce *ComputationError
	return errors.As(err, &ce)
}

// input fetches a table from the snapshot and checks it carries cols.
func input(kind Kind, snap *dataset.Snapshot, name dataset.Name, cols ...string) (*dataset.Table, error) {
	t, err := snap.Table(name)
	if err != nil {
		return nil, &ComputationError{Kind: kind, Table: name, Err: err}
	}
	if err := t.Require(cols...); err != nil {
		var colErr *dataset.ColumnError
		column := ""
		if errors.As(err, &colErr) {
			column = colErr.Column
		}
		return nil, &ComputationError{Kind: kind, Table: name, Column: column, Err: err}
	}
	return t, nil
}

// noData builds the error for a column with nothing to compute on.
func noData(kind Kind, table dataset.Name, column string) error {
	return &ComputationError{Kind: kind, Table: table, Column: column, Err: ErrNoData}
}
