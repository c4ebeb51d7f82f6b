package report

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"corrscreen/app"
	"corrscreen/internal/errors"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Figure size of a saved scatter plot
const (
	FigureWidth  = 8 * vg.Inch
	FigureHeight = 6 * vg.Inch
)

var (
	pointColor = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	lineColor  = color.RGBA{R: 214, G: 39, B: 40, A: 255}
)

// FigureName is the file name of the figure for the n-th selected pair
func FigureName(index int) string {
	return fmt.Sprintf("correlation_%d.png", index)
}

// NewFigure builds the scatter plot of a selected pair with its best fit line.
// The title carries the same statistics as the text report.
func NewFigure(pp app.PairPlot) (*plot.Plot, error) {
	xys := make(plotter.XYs, len(pp.Points))
	for i, pt := range pp.Points {
		xys[i].X, xys[i].Y = pt[0], pt[1]
	}
	scatter, err := plotter.NewScatter(xys)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to plot correlation %d", pp.Index)
	}
	scatter.GlyphStyle.Shape = draw.CircleGlyph{}
	scatter.GlyphStyle.Color = pointColor
	scatter.GlyphStyle.Radius = vg.Points(3)

	slope, intercept := pp.Slope, pp.Intercept
	line := plotter.NewFunction(func(x float64) float64 { return slope*x + intercept })
	line.XMin, line.XMax, _, _ = plotter.XYRange(xys)
	line.Color = lineColor
	line.Width = vg.Points(1.5)

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Scatter Plot - Correlation %d\n%s\nEquation: y = %.5fx + %.5f",
		pp.Index, statsLine(pp.Result), slope, intercept)
	p.X.Label.Text = pp.Result.Pair.X.String()
	p.Y.Label.Text = pp.Result.Pair.Y.String()
	p.Add(plotter.NewGrid(), scatter, line)
	p.Legend.Add("Data points", scatter)
	p.Legend.Add("Best fit line", line)
	p.Legend.Top = true
	p.Legend.Left = true
	return p, nil
}

// SaveFigures writes one PNG per selected pair into dir and returns the paths
// in selection order.
func SaveFigures(dir string, plots []app.PairPlot) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.IOError(dir, err)
	}

	paths := make([]string, 0, len(plots))
	for _, pp := range plots {
		fig, err := NewFigure(pp)
		if err != nil {
			return nil, err
		}
		path := filepath.Join(dir, FigureName(pp.Index))
		if err := fig.Save(FigureWidth, FigureHeight, path); err != nil {
			return nil, errors.IOError(path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
