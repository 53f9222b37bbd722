package stats

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/verte-zerg/pitchmap/internal/density"
)

// Layer is one density surface of a heatmap.
type Layer struct {
	Name   string
	Points []density.Point
}

// Marker is a single highlighted point drawn over the density layers.
type Marker struct {
	Label string
	Point density.Point
	// Glyph defaults to 'X'.
	Glyph rune
}

// HeatmapOptions controls heatmap size and shading.
type HeatmapOptions struct {
	Width  int
	Height int
	Levels int
	// Thresh is a fraction of the peak density; 0 uses the default.
	Thresh float64
	// ForceColor enables ANSI colors even when w is not a terminal.
	ForceColor bool
}

type ansiColor struct {
	name string
	code string
}

const (
	shadeChars          = " .:-=+*#%@"
	defaultPlotHeight   = 21
	defaultLevels       = 8
	defaultThresh       = 0.05
	minPlotWidth        = 11
	maxPlotWidth        = 61
	axisSeparator       = " │"
	colorReset          = "\x1b[0m"
	markerColor         = "\x1b[1;31m"
	terminalWidthBackup = 80
	defaultMarkerGlyph  = 'X'
)

var colorPalette = []ansiColor{
	{name: "cyan", code: "\x1b[36m"},
	{name: "magenta", code: "\x1b[35m"},
	{name: "yellow", code: "\x1b[33m"},
	{name: "green", code: "\x1b[32m"},
	{name: "blue", code: "\x1b[34m"},
}

type heatCell struct {
	glyph rune
	layer int
	mark  bool
}

// RenderHeatmap draws the movement plane (HB on x, iVB on y) with one shaded
// density surface per layer and the markers on top.
func RenderHeatmap(w io.Writer, title string, layers []Layer, markers []Marker, opts HeatmapOptions) error {
	height := opts.Height
	if height <= 0 {
		height = defaultPlotHeight
	}
	width := opts.Width
	if width <= 0 {
		width = autoPlotWidth()
	}
	if width < minPlotWidth {
		width = minPlotWidth
	}
	levels := opts.Levels
	if levels <= 0 {
		levels = defaultLevels
	}
	thresh := opts.Thresh
	if thresh <= 0 {
		thresh = defaultThresh
	}
	bounds := density.MovementBounds

	cells := make([][]heatCell, height)
	for y := range cells {
		cells[y] = make([]heatCell, width)
		for x := range cells[y] {
			cells[y][x] = heatCell{glyph: ' ', layer: -1}
		}
	}
	drawZeroAxes(cells, bounds, width, height)

	best := make([][]int, height)
	for y := range best {
		best[y] = make([]int, width)
		for x := range best[y] {
			best[y][x] = -1
		}
	}
	for li, layer := range layers {
		grid := density.Estimate(layer.Points, bounds, width, height)
		bands := grid.Levels(levels, thresh)
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				lvl := bands[y][x]
				if lvl <= best[y][x] {
					continue
				}
				best[y][x] = lvl
				cells[y][x] = heatCell{glyph: shadeGlyph(lvl, levels), layer: li}
			}
		}
	}
	for _, m := range markers {
		col, row, ok := density.CellFor(bounds, width, height, m.Point.X, m.Point.Y)
		if !ok {
			continue
		}
		glyph := m.Glyph
		if glyph == 0 {
			glyph = defaultMarkerGlyph
		}
		cells[row][col] = heatCell{glyph: glyph, layer: -1, mark: true}
	}

	useColor := shouldUseColor(w, opts.ForceColor)
	labels := makeAxisLabels(height, bounds)
	labelWidth := axisLabelWidth(bounds)

	if title != "" {
		if _, err := fmt.Fprintln(w, title); err != nil {
			return err
		}
	}
	for y := 0; y < height; y++ {
		var row strings.Builder
		row.WriteString(runewidth.FillLeft(labels[y], labelWidth))
		row.WriteString(axisSeparator)
		for x := 0; x < width; x++ {
			writeCell(&row, cells[y][x], useColor)
		}
		if _, err := fmt.Fprintln(w, row.String()); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, xAxisLine(bounds, labelWidth, width)); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, renderLegend(layers, markers, useColor)); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	return nil
}

func writeCell(b *strings.Builder, c heatCell, useColor bool) {
	switch {
	case useColor && c.mark:
		b.WriteString(markerColor)
		b.WriteRune(c.glyph)
		b.WriteString(colorReset)
	case useColor && c.layer >= 0:
		b.WriteString(colorPalette[c.layer%len(colorPalette)].code)
		b.WriteRune(c.glyph)
		b.WriteString(colorReset)
	default:
		b.WriteRune(c.glyph)
	}
}

// shadeGlyph maps band lvl of levels onto the shade ramp, skipping blank.
func shadeGlyph(lvl, levels int) rune {
	steps := len(shadeChars) - 2
	idx := 1 + (lvl+1)*steps/levels
	if idx >= len(shadeChars) {
		idx = len(shadeChars) - 1
	}
	return rune(shadeChars[idx])
}

func drawZeroAxes(cells [][]heatCell, b density.Bounds, width, height int) {
	zeroCol, zeroRow, ok := density.CellFor(b, width, height, 0, 0)
	if !ok {
		return
	}
	for x := 0; x < width; x++ {
		cells[zeroRow][x].glyph = '-'
	}
	for y := 0; y < height; y++ {
		cells[y][zeroCol].glyph = '|'
	}
	cells[zeroRow][zeroCol].glyph = '+'
}

func makeAxisLabels(height int, b density.Bounds) []string {
	labels := make([]string, height)
	if height <= 0 {
		return labels
	}
	labels[0] = fmt.Sprintf("%.0f", b.YMax)
	if _, zeroRow, ok := density.CellFor(b, 1, height, b.XMin, 0); ok && zeroRow > 0 && zeroRow < height-1 {
		labels[zeroRow] = "0"
	}
	if height > 1 {
		labels[height-1] = fmt.Sprintf("%.0f", b.YMin)
	}
	return labels
}

func axisLabelWidth(b density.Bounds) int {
	top := runewidth.StringWidth(fmt.Sprintf("%.0f", b.YMax))
	bottom := runewidth.StringWidth(fmt.Sprintf("%.0f", b.YMin))
	if bottom > top {
		return bottom
	}
	return top
}

func xAxisLine(b density.Bounds, labelWidth, width int) string {
	left := fmt.Sprintf("%.0f", b.XMin)
	right := fmt.Sprintf("%.0f", b.XMax)
	line := []rune(strings.Repeat(" ", width))
	copy(line, []rune(left))
	copy(line[width-len([]rune(right)):], []rune(right))
	if zeroCol, _, ok := density.CellFor(b, width, 1, 0, b.YMin); ok && zeroCol > len(left) && zeroCol < width-len(right)-1 {
		line[zeroCol] = '0'
	}
	pad := strings.Repeat(" ", labelWidth+runewidth.StringWidth(axisSeparator))
	return pad + string(line) + "  HB (in)"
}

func renderLegend(layers []Layer, markers []Marker, useColor bool) string {
	parts := make([]string, 0, len(layers)+len(markers))
	for i, l := range layers {
		label := fmt.Sprintf("%c %s (n=%d)", shadeChars[len(shadeChars)-1], l.Name, len(l.Points))
		if useColor {
			label = colorPalette[i%len(colorPalette)].code + label + colorReset
		}
		parts = append(parts, label)
	}
	for _, m := range markers {
		glyph := m.Glyph
		if glyph == 0 {
			glyph = defaultMarkerGlyph
		}
		label := fmt.Sprintf("%c %s (%.1f, %.1f)", glyph, m.Label, m.Point.X, m.Point.Y)
		if useColor {
			label = markerColor + label + colorReset
		}
		parts = append(parts, label)
	}
	return "Legend: " + strings.Join(parts, "  ")
}

func autoPlotWidth() int {
	return PlotWidthFor(terminalWidth())
}

// PlotWidthFor computes a heatmap width that fits within the total available
// width. The result is odd so the zero axis sits in the middle column.
func PlotWidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		return minPlotWidth
	}
	axisWidth := axisLabelWidth(density.MovementBounds) + runewidth.StringWidth(axisSeparator)
	plotWidth := totalWidth - axisWidth
	if plotWidth > maxPlotWidth {
		plotWidth = maxPlotWidth
	}
	if plotWidth%2 == 0 {
		plotWidth--
	}
	if plotWidth < minPlotWidth {
		plotWidth = minPlotWidth
	}
	return plotWidth
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func shouldUseColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
