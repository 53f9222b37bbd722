package stats

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// textTable lays out rows in columns sized to the widest cell, measured in
// terminal cells so wide runes stay aligned.
type textTable struct {
	headers []string
	rows    [][]string
	right   map[int]bool
	widths  []int
}

func newTextTable(headers []string, rows [][]string, right map[int]bool) textTable {
	cols := len(headers)
	for _, row := range rows {
		cols = max(cols, len(row))
	}
	t := textTable{headers: headers, rows: rows, right: right, widths: make([]int, cols)}
	t.measure(headers)
	for _, row := range rows {
		t.measure(row)
	}
	return t
}

func (t textTable) measure(row []string) {
	for i, cell := range row {
		t.widths[i] = max(t.widths[i], runewidth.StringWidth(cell))
	}
}

func (t textTable) lines() []string {
	if len(t.widths) == 0 {
		return nil
	}
	out := make([]string, 0, len(t.rows)+1)
	if len(t.headers) > 0 {
		out = append(out, t.line(t.headers))
	}
	for _, row := range t.rows {
		out = append(out, t.line(row))
	}
	return out
}

func (t textTable) line(row []string) string {
	cells := make([]string, len(t.widths))
	for i, width := range t.widths {
		cell := ""
		if i < len(row) {
			cell = row[i]
		}
		if t.right[i] {
			cells[i] = runewidth.FillLeft(cell, width)
		} else {
			cells[i] = runewidth.FillRight(cell, width)
		}
	}
	return strings.Join(cells, " ")
}
