package density

import (
	"math"
	"testing"
)

func TestEstimatePeaksNearCluster(t *testing.T) {
	points := []Point{{X: 10, Y: 10}, {X: 11, Y: 9}, {X: 9, Y: 11}, {X: 10.5, Y: 10.5}}
	grid := Estimate(points, MovementBounds, 30, 30)
	peakCol, peakRow := -1, -1
	peak := -1.0
	for row := range grid.Values {
		for col, v := range grid.Values[row] {
			if v > peak {
				peak = v
				peakCol, peakRow = col, row
			}
		}
	}
	col, row, ok := grid.Cell(10, 10)
	if !ok {
		t.Fatalf("expected (10, 10) to be inside bounds")
	}
	if absInt(peakCol-col) > 1 || absInt(peakRow-row) > 1 {
		t.Fatalf("expected peak near (%d, %d), got (%d, %d)", col, row, peakCol, peakRow)
	}
}

func TestEstimateEmpty(t *testing.T) {
	grid := Estimate(nil, MovementBounds, 4, 3)
	if grid.Width != 4 || grid.Height != 3 {
		t.Fatalf("unexpected grid size %dx%d", grid.Width, grid.Height)
	}
	if grid.Max() != 0 {
		t.Fatalf("expected zero density")
	}
	for _, row := range grid.Levels(5, 0.05) {
		for _, lvl := range row {
			if lvl != -1 {
				t.Fatalf("expected blank levels for empty grid")
			}
		}
	}
}

func TestEstimateSinglePointAndNaN(t *testing.T) {
	points := []Point{{X: 0, Y: 0}, {X: math.NaN(), Y: 3}}
	grid := Estimate(points, MovementBounds, 10, 10)
	if grid.Max() <= 0 {
		t.Fatalf("expected density around single point")
	}
}

func TestLevelsRange(t *testing.T) {
	points := []Point{{X: -5, Y: 5}, {X: -4, Y: 6}, {X: 5, Y: -5}}
	grid := Estimate(points, MovementBounds, 20, 20)
	levels := grid.Levels(10, 0.05)
	sawTop := false
	for _, row := range levels {
		for _, lvl := range row {
			if lvl < -1 || lvl > 9 {
				t.Fatalf("level out of range: %d", lvl)
			}
			if lvl == 9 {
				sawTop = true
			}
		}
	}
	if !sawTop {
		t.Fatalf("expected the peak cell in the top level")
	}
}

func TestCellFor(t *testing.T) {
	tests := []struct {
		x, y     float64
		col, row int
		ok       bool
	}{
		{x: -30, y: 30, col: 0, row: 0, ok: true},
		{x: 30, y: -30, col: 9, row: 9, ok: true},
		{x: 0.1, y: 0.1, col: 5, row: 4, ok: true},
		{x: 31, y: 0, ok: false},
		{x: math.NaN(), y: 0, ok: false},
	}
	for _, tc := range tests {
		col, row, ok := CellFor(MovementBounds, 10, 10, tc.x, tc.y)
		if ok != tc.ok {
			t.Fatalf("(%v, %v): expected ok=%v", tc.x, tc.y, tc.ok)
		}
		if ok && (col != tc.col || row != tc.row) {
			t.Fatalf("(%v, %v): expected (%d, %d), got (%d, %d)", tc.x, tc.y, tc.col, tc.row, col, row)
		}
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
