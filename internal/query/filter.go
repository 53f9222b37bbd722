package query

import (
	"fmt"
	"math"

	"github.com/verte-zerg/pitchmap/internal/model"
)

type predicateKind int

const (
	kindEqual predicateKind = iota
	kindBetween
	kindExact
	kindApprox
)

// Predicate is a single row condition on one column.
type Predicate struct {
	column string
	kind   predicateKind
	text   string
	lo     float64
	hi     float64
}

// Equal matches rows whose categorical column equals value.
func Equal(column, value string) Predicate {
	return Predicate{column: column, kind: kindEqual, text: value}
}

// Between matches rows whose numeric column lies in [lo, hi].
func Between(column string, lo, hi float64) Predicate {
	return Predicate{column: column, kind: kindBetween, lo: lo, hi: hi}
}

// Exact matches rows whose numeric column is exactly value.
func Exact(column string, value float64) Predicate {
	return Predicate{column: column, kind: kindExact, lo: value, hi: value}
}

// Approx matches rows whose numeric column is within tolerance of value.
func Approx(column string, value, tolerance float64) Predicate {
	return Predicate{column: column, kind: kindApprox, lo: value, hi: tolerance}
}

// Column returns the column the predicate reads.
func (p Predicate) Column() string {
	return p.column
}

func (p Predicate) String() string {
	switch p.kind {
	case kindEqual:
		return fmt.Sprintf("%s == %q", p.column, p.text)
	case kindBetween:
		return fmt.Sprintf("%s in [%g, %g]", p.column, p.lo, p.hi)
	case kindExact:
		return fmt.Sprintf("%s == %g", p.column, p.lo)
	case kindApprox:
		return fmt.Sprintf("%s == %g ± %g", p.column, p.lo, p.hi)
	default:
		return p.column
	}
}

func (p Predicate) check(t *Table) error {
	if p.kind == kindEqual {
		return t.checkCategorical(p.column)
	}
	return t.checkNumeric(p.column)
}

func (p Predicate) match(o model.Observation) bool {
	if p.kind == kindEqual {
		v, _ := categoricalValue(o, p.column)
		return v == p.text
	}
	v, _ := numericValue(o, p.column)
	switch p.kind {
	case kindBetween:
		// NaN fails both comparisons; an inverted range matches nothing.
		return v >= p.lo && v <= p.hi
	case kindExact:
		return v == p.lo
	case kindApprox:
		if p.hi < 0 {
			return false
		}
		return math.Abs(v-p.lo) <= p.hi
	default:
		return false
	}
}

// FilterByEquality returns rows where the categorical column equals value.
// A value absent from the column yields an empty table.
func FilterByEquality(t *Table, column, value string) (*Table, error) {
	return Combine(t, Equal(column, value))
}

// FilterByRange returns rows where lo <= column <= hi. An inverted range
// (lo > hi) yields an empty table.
func FilterByRange(t *Table, column string, lo, hi float64) (*Table, error) {
	return Combine(t, Between(column, lo, hi))
}

// FilterByExactValue returns rows where the numeric column equals value
// exactly. Values derived from means rarely match raw measurements; see
// FilterByApproxValue.
func FilterByExactValue(t *Table, column string, value float64) (*Table, error) {
	return Combine(t, Exact(column, value))
}

// FilterByApproxValue returns rows where |column - value| <= tolerance.
// A negative tolerance yields an empty table.
func FilterByApproxValue(t *Table, column string, value, tolerance float64) (*Table, error) {
	return Combine(t, Approx(column, value, tolerance))
}

// Combine returns rows matching every predicate. Predicates are evaluated in
// the given order. Column errors are reported before any row is read.
func Combine(t *Table, preds ...Predicate) (*Table, error) {
	if t == nil {
		t = NewTable(nil, nil)
	}
	for _, p := range preds {
		if err := p.check(t); err != nil {
			return nil, err
		}
	}
	rows := make([]model.Observation, 0, len(t.rows))
	for _, row := range t.rows {
		if matchAll(row, preds) {
			rows = append(rows, row)
		}
	}
	return t.derive(rows), nil
}

// MatchAny returns rows matching at least one predicate, in table order.
// With no predicates the result is empty.
func MatchAny(t *Table, preds ...Predicate) (*Table, error) {
	if t == nil {
		t = NewTable(nil, nil)
	}
	for _, p := range preds {
		if err := p.check(t); err != nil {
			return nil, err
		}
	}
	rows := make([]model.Observation, 0, len(t.rows))
	for _, row := range t.rows {
		for _, p := range preds {
			if p.match(row) {
				rows = append(rows, row)
				break
			}
		}
	}
	return t.derive(rows), nil
}

func matchAll(o model.Observation, preds []Predicate) bool {
	for _, p := range preds {
		if !p.match(o) {
			return false
		}
	}
	return true
}

// DistinctValues returns the distinct values of a categorical column in
// first-seen order.
func DistinctValues(t *Table, column string) ([]string, error) {
	if t == nil {
		t = NewTable(nil, nil)
	}
	if err := t.checkCategorical(column); err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, row := range t.rows {
		v, _ := categoricalValue(row, column)
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out, nil
}
