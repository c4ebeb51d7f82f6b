package engine

import (
	"gonum.org/v1/gonum/stat"
)

// FitLine returns the least-squares line y = slope*x + intercept
func FitLine(x, y []float64) (slope, intercept float64) {
	if len(x) == 0 || len(x) != len(y) {
		return 0, 0
	}
	intercept, slope = stat.LinearRegression(x, y, nil, false)
	return slope, intercept
}
