// Package density estimates 2-D kernel densities on a fixed grid.
package density

import "math"

const fallbackBandwidth = 1.0

// Point is one (x, y) sample.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Bounds is the plotted region.
type Bounds struct {
	XMin float64
	XMax float64
	YMin float64
	YMax float64
}

// MovementBounds covers ±30 inches on both break axes.
var MovementBounds = Bounds{XMin: -30, XMax: 30, YMin: -30, YMax: 30}

// Grid holds density values per cell. Row 0 is the top (largest y).
type Grid struct {
	Bounds Bounds
	Width  int
	Height int
	Values [][]float64
}

// Estimate evaluates a Gaussian KDE of points on a width x height grid.
// Bandwidth per axis follows Scott's rule. NaN points are ignored.
func Estimate(points []Point, bounds Bounds, width, height int) Grid {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	grid := Grid{Bounds: bounds, Width: width, Height: height, Values: make([][]float64, height)}
	for y := range grid.Values {
		grid.Values[y] = make([]float64, width)
	}

	clean := make([]Point, 0, len(points))
	for _, p := range points {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) {
			continue
		}
		clean = append(clean, p)
	}
	if len(clean) == 0 {
		return grid
	}
	bx, by := bandwidths(clean)

	for row := 0; row < height; row++ {
		cy := grid.cellY(row)
		for col := 0; col < width; col++ {
			cx := grid.cellX(col)
			var sum float64
			for _, p := range clean {
				dx := (cx - p.X) / bx
				dy := (cy - p.Y) / by
				sum += math.Exp(-0.5 * (dx*dx + dy*dy))
			}
			grid.Values[row][col] = sum / (float64(len(clean)) * 2 * math.Pi * bx * by)
		}
	}
	return grid
}

func bandwidths(points []Point) (float64, float64) {
	if len(points) < 2 {
		return fallbackBandwidth, fallbackBandwidth
	}
	factor := math.Pow(float64(len(points)), -1.0/6.0)
	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i] = p.X
		ys[i] = p.Y
	}
	bx := stddev(xs) * factor
	by := stddev(ys) * factor
	if bx < 1e-9 {
		bx = fallbackBandwidth
	}
	if by < 1e-9 {
		by = fallbackBandwidth
	}
	return bx, by
}

func stddev(values []float64) float64 {
	var mean float64
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	var ss float64
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(values)-1))
}

func (g Grid) cellX(col int) float64 {
	step := (g.Bounds.XMax - g.Bounds.XMin) / float64(g.Width)
	return g.Bounds.XMin + (float64(col)+0.5)*step
}

func (g Grid) cellY(row int) float64 {
	step := (g.Bounds.YMax - g.Bounds.YMin) / float64(g.Height)
	return g.Bounds.YMax - (float64(row)+0.5)*step
}

// Cell returns the grid cell containing (x, y).
func (g Grid) Cell(x, y float64) (col, row int, ok bool) {
	return CellFor(g.Bounds, g.Width, g.Height, x, y)
}

// CellFor maps (x, y) to a cell of a width x height grid over bounds.
func CellFor(b Bounds, width, height int, x, y float64) (col, row int, ok bool) {
	if math.IsNaN(x) || math.IsNaN(y) || width < 1 || height < 1 {
		return 0, 0, false
	}
	if x < b.XMin || x > b.XMax || y < b.YMin || y > b.YMax {
		return 0, 0, false
	}
	col = int((x - b.XMin) / (b.XMax - b.XMin) * float64(width))
	row = int((b.YMax - y) / (b.YMax - b.YMin) * float64(height))
	if col >= width {
		col = width - 1
	}
	if row >= height {
		row = height - 1
	}
	return col, row, true
}

// Max returns the largest density value.
func (g Grid) Max() float64 {
	var m float64
	for _, row := range g.Values {
		for _, v := range row {
			if v > m {
				m = v
			}
		}
	}
	return m
}

// Levels quantises the grid into bands 0..levels-1 after normalising to the
// peak density. Cells below thresh (a fraction of the peak) are -1.
func (g Grid) Levels(levels int, thresh float64) [][]int {
	if levels < 1 {
		levels = 1
	}
	if thresh < 0 {
		thresh = 0
	}
	if thresh >= 1 {
		thresh = 0.999
	}
	peak := g.Max()
	out := make([][]int, g.Height)
	for y := range out {
		out[y] = make([]int, g.Width)
		for x := range out[y] {
			out[y][x] = -1
			if peak <= 0 {
				continue
			}
			d := g.Values[y][x] / peak
			if d < thresh {
				continue
			}
			lvl := int((d - thresh) / (1 - thresh) * float64(levels))
			if lvl >= levels {
				lvl = levels - 1
			}
			out[y][x] = lvl
		}
	}
	return out
}
