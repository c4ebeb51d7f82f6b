package report

import (
	"fmt"
	"math"
	"strings"
)

// Plot dimensions in characters
const (
	DefaultPlotWidth  = 60
	DefaultPlotHeight = 16
)

const (
	pointMark = '*'
	lineMark  = '.'
	gutter    = 11
)

// scatterLines draws points and the line y = slope*x + intercept on a
// width x height character grid with labelled axes. Points are drawn over
// the line.
func scatterLines(points [][2]float64, slope, intercept float64, width, height int) []string {
	if len(points) == 0 || width < 2 || height < 2 {
		return nil
	}

	xmin, xmax := points[0][0], points[0][0]
	ymin, ymax := points[0][1], points[0][1]
	for _, p := range points[1:] {
		xmin, xmax = math.Min(xmin, p[0]), math.Max(xmax, p[0])
		ymin, ymax = math.Min(ymin, p[1]), math.Max(ymax, p[1])
	}
	for _, x := range []float64{xmin, xmax} {
		y := slope*x + intercept
		if !math.IsNaN(y) && !math.IsInf(y, 0) {
			ymin, ymax = math.Min(ymin, y), math.Max(ymax, y)
		}
	}
	xmin, xmax = widen(xmin, xmax)
	ymin, ymax = widen(ymin, ymax)

	col := func(x float64) int {
		return int(math.Round((x - xmin) / (xmax - xmin) * float64(width-1)))
	}
	row := func(y float64) int {
		return height - 1 - int(math.Round((y-ymin)/(ymax-ymin)*float64(height-1)))
	}

	grid := make([][]rune, height)
	for r := range grid {
		grid[r] = []rune(strings.Repeat(" ", width))
	}
	for c := 0; c < width; c++ {
		x := xmin + float64(c)/float64(width-1)*(xmax-xmin)
		if r := row(slope*x + intercept); r >= 0 && r < height {
			grid[r][c] = lineMark
		}
	}
	for _, p := range points {
		r, c := row(p[1]), col(p[0])
		if r >= 0 && r < height && c >= 0 && c < width {
			grid[r][c] = pointMark
		}
	}

	lines := make([]string, 0, height+2)
	for r, cells := range grid {
		label := ""
		switch r {
		case 0:
			label = formatTick(ymax)
		case height - 1:
			label = formatTick(ymin)
		}
		lines = append(lines, fmt.Sprintf("%*s |%s", gutter-2, label, string(cells)))
	}
	lines = append(lines, strings.Repeat(" ", gutter-1)+"+"+strings.Repeat("-", width))

	left, right := formatTick(xmin), formatTick(xmax)
	pad := width - len(left) - len(right)
	if pad < 1 {
		pad = 1
	}
	lines = append(lines, strings.Repeat(" ", gutter)+left+strings.Repeat(" ", pad)+right)
	return lines
}

// widen gives a zero-width range a unit span around its value
func widen(lo, hi float64) (float64, float64) {
	if hi > lo {
		return lo, hi
	}
	return lo - 0.5, hi + 0.5
}

func formatTick(v float64) string {
	return fmt.Sprintf("%.4g", v)
}
