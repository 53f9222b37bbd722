package query

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyResult signals an aggregate over zero usable rows.
	ErrEmptyResult = errors.New("no data")
	// ErrMissingColumn signals a column absent from the table header.
	ErrMissingColumn = errors.New("missing column")
	// ErrColumnType signals a categorical operation on a numeric column or vice versa.
	ErrColumnType = errors.New("wrong column type")
)

// ColumnError reports a caller error about a specific column.
type ColumnError struct {
	Column string
	Err    error
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("%s: %q", e.Err, e.Column)
}

func (e *ColumnError) Unwrap() error {
	return e.Err
}
