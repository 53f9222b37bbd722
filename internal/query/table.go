// Package query filters pitch tables and aggregates the matching rows.
package query

import (
	"github.com/verte-zerg/pitchmap/internal/model"
)

// Table is an immutable set of observations together with the columns
// present in the source header.
type Table struct {
	columns []string
	colSet  map[string]struct{}
	rows    []model.Observation
}

// NewTable builds a table. The rows slice is copied.
func NewTable(columns []string, rows []model.Observation) *Table {
	cols := append([]string(nil), columns...)
	colSet := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		colSet[c] = struct{}{}
	}
	return &Table{
		columns: cols,
		colSet:  colSet,
		rows:    append([]model.Observation(nil), rows...),
	}
}

// derive returns a table with the same header and the given rows.
// The rows slice is owned by the new table.
func (t *Table) derive(rows []model.Observation) *Table {
	return &Table{columns: t.columns, colSet: t.colSet, rows: rows}
}

// Len returns the row count.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// Empty reports whether the table has no rows.
func (t *Table) Empty() bool {
	return t.Len() == 0
}

// Rows returns a copy of the rows.
func (t *Table) Rows() []model.Observation {
	if t == nil {
		return nil
	}
	return append([]model.Observation(nil), t.rows...)
}

// Row returns the i-th row.
func (t *Table) Row(i int) model.Observation {
	return t.rows[i]
}

// Columns returns the header columns.
func (t *Table) Columns() []string {
	if t == nil {
		return nil
	}
	return append([]string(nil), t.columns...)
}

// HasColumn reports whether the header contains the column.
func (t *Table) HasColumn(name string) bool {
	if t == nil {
		return false
	}
	_, ok := t.colSet[name]
	return ok
}

// Float64s returns the values of a numeric column in row order, NaN included.
func (t *Table) Float64s(column string) ([]float64, error) {
	if err := t.checkNumeric(column); err != nil {
		return nil, err
	}
	out := make([]float64, len(t.rows))
	for i, row := range t.rows {
		out[i], _ = numericValue(row, column)
	}
	return out, nil
}

func (t *Table) checkCategorical(column string) error {
	if !isCategorical(column) {
		if isNumeric(column) {
			return &ColumnError{Column: column, Err: ErrColumnType}
		}
		return &ColumnError{Column: column, Err: ErrMissingColumn}
	}
	if !t.HasColumn(column) {
		return &ColumnError{Column: column, Err: ErrMissingColumn}
	}
	return nil
}

func (t *Table) checkNumeric(column string) error {
	if !isNumeric(column) {
		if isCategorical(column) {
			return &ColumnError{Column: column, Err: ErrColumnType}
		}
		return &ColumnError{Column: column, Err: ErrMissingColumn}
	}
	if !t.HasColumn(column) {
		return &ColumnError{Column: column, Err: ErrMissingColumn}
	}
	return nil
}

func isCategorical(column string) bool {
	switch column {
	case model.ColPitchType, model.ColPlayerName, model.ColThrows:
		return true
	default:
		return false
	}
}

func isNumeric(column string) bool {
	_, ok := numericValue(model.Observation{}, column)
	return ok
}

func categoricalValue(o model.Observation, column string) (string, bool) {
	switch column {
	case model.ColPitchType:
		return o.PitchType, true
	case model.ColPlayerName:
		return o.PlayerName, true
	case model.ColThrows:
		return o.Throws, true
	default:
		return "", false
	}
}

func numericValue(o model.Observation, column string) (float64, bool) {
	switch column {
	case model.ColArmAngle:
		return o.ArmAngle, true
	case model.ColHB:
		return o.HB, true
	case model.ColIVB:
		return o.IVB, true
	case model.ColReleaseSpeed:
		return o.ReleaseSpeed, true
	case model.ColReleaseSpinRate:
		return o.ReleaseSpinRate, true
	case model.ColXWOBA:
		return o.XWOBA, true
	case model.ColReleaseExtension:
		return o.ReleaseExtension, true
	case model.ColReleasePosZ:
		return o.ReleasePosZ, true
	default:
		return 0, false
	}
}
