package explorer

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

const (
	minModalWidth = 40
	maxModalWidth = 80
	// border and padding on both sides
	modalChrome = 6
)

// padLines right-pads every line of a styled block to width cells.
func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	return strings.Join(padEach(strings.Split(s, "\n"), width), "\n")
}

// fitLines pads a block to exactly width x height, cutting extra lines.
func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := padEach(strings.Split(s, "\n"), width)
	if len(lines) > height {
		lines = lines[:height]
	}
	blank := strings.Repeat(" ", width)
	for len(lines) < height {
		lines = append(lines, blank)
	}
	return strings.Join(lines, "\n")
}

func padEach(lines []string, width int) []string {
	for i, line := range lines {
		if gap := width - lipgloss.Width(line); gap > 0 {
			lines[i] = line + strings.Repeat(" ", gap)
		}
	}
	return lines
}

func truncateLine(s string, width int) string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return s
	}
	tail := "..."
	if width <= len(tail) {
		tail = ""
	}
	return runewidth.Truncate(s, width, tail)
}

func modalWidth(width int) int {
	return max(minModalWidth, min(width-4, maxModalWidth))
}

func modalInnerWidth(width int) int {
	return max(10, modalWidth(width)-modalChrome)
}
