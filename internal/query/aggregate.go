package query

import (
	"errors"
	"math"
)

// ComputeMean returns the arithmetic mean of a numeric column. NaN cells are
// skipped. ErrEmptyResult is returned when no usable value remains.
func ComputeMean(t *Table, column string) (float64, error) {
	if t == nil {
		t = NewTable(nil, nil)
	}
	if err := t.checkNumeric(column); err != nil {
		return 0, err
	}
	var sum float64
	n := 0
	for _, row := range t.rows {
		v, _ := numericValue(row, column)
		if math.IsNaN(v) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return 0, ErrEmptyResult
	}
	return sum / float64(n), nil
}

// Means computes the mean of each column. Columns without usable values are
// left out of the result; only column errors are returned.
func Means(t *Table, columns ...string) (map[string]float64, error) {
	out := make(map[string]float64, len(columns))
	for _, col := range columns {
		mean, err := ComputeMean(t, col)
		if errors.Is(err, ErrEmptyResult) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out[col] = mean
	}
	return out, nil
}

// DeriveSymmetricRange returns (center - radius, center + radius).
func DeriveSymmetricRange(center, radius float64) (lo, hi float64) {
	return center - radius, center + radius
}
