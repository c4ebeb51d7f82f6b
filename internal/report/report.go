// Package report presents correlation screening results as text or JSON.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"corrscreen/app"
	"corrscreen/domain/correlation"
	"corrscreen/internal/errors"
	"corrscreen/internal/profiling"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Supported output formats
const (
	FormatText = "text"
	FormatJSON = "json"
)

// NoCorrelationsMessage is printed when nothing was selected
const NoCorrelationsMessage = "No correlations found."

// Options controls text rendering
type Options struct {
	ShowAll    bool // list every evaluated pair after the selection
	PlotWidth  int
	PlotHeight int
}

// DefaultOptions returns the standard text layout
func DefaultOptions() Options {
	return Options{PlotWidth: DefaultPlotWidth, PlotHeight: DefaultPlotHeight}
}

// Render writes the report in the given format
func Render(w io.Writer, rep *app.AnalysisReport, format string, opts Options) error {
	switch format {
	case FormatJSON:
		return RenderJSON(w, rep)
	case FormatText, "":
		return RenderText(w, rep, opts)
	default:
		return errors.InvalidInput(fmt.Sprintf("unknown output format %q", format))
	}
}

// RenderJSON writes the report as indented JSON
func RenderJSON(w io.Writer, rep *app.AnalysisReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

// RenderText writes each selected pair with its statistics, regression line,
// scatter plot and leading rows, followed by notices.
func RenderText(w io.Writer, rep *app.AnalysisReport, opts Options) error {
	if opts.PlotWidth <= 0 {
		opts.PlotWidth = DefaultPlotWidth
	}
	if opts.PlotHeight <= 0 {
		opts.PlotHeight = DefaultPlotHeight
	}

	for _, plot := range rep.Plots {
		renderPlot(w, plot, opts)
	}
	for _, notice := range rep.Analysis.Selection.Notices {
		_, _ = fmt.Fprintln(w, notice.Message)
	}
	if rep.Analysis.Selection.Empty() {
		_, _ = fmt.Fprintln(w, NoCorrelationsMessage)
	}

	if opts.ShowAll {
		_, _ = fmt.Fprintln(w)
		RenderResults(w, rep.Analysis.Results)
	}
	return nil
}

func renderPlot(w io.Writer, plot app.PairPlot, opts Options) {
	res := plot.Result
	x, y := res.Pair.X.String(), res.Pair.Y.String()
	stats := statsLine(res)

	_, _ = fmt.Fprintf(w, "Scatter Plot - Correlation %d\n", plot.Index)
	_, _ = fmt.Fprintln(w, stats)
	_, _ = fmt.Fprintf(w, "Equation: y = %.5fx + %.5f\n", plot.Slope, plot.Intercept)
	_, _ = fmt.Fprintf(w, "%s (y) vs %s (x)\n", y, x)
	for _, line := range scatterLines(plot.Points, plot.Slope, plot.Intercept, opts.PlotWidth, opts.PlotHeight) {
		_, _ = fmt.Fprintln(w, line)
	}

	_, _ = fmt.Fprintf(w, "\nData points for correlation between %s and %s:\n", x, y)
	_, _ = fmt.Fprintln(w, stats)

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", x, y})
	for i, p := range plot.Head {
		row := i
		if i < len(plot.HeadIndex) {
			row = plot.HeadIndex[i]
		}
		t.AppendRow(table.Row{row, formatFloat(p[0]), formatFloat(p[1])})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
	})
	t.Render()
	_, _ = fmt.Fprintln(w)
}

// RenderResults lists every evaluated pair, strongest first
func RenderResults(w io.Writer, results []correlation.Result) {
	if len(results) == 0 {
		_, _ = fmt.Fprintln(w, "(0 pairs)")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "X", "Y", "r", "p", "Outcome", "Rows"})
	for i, res := range results {
		t.AppendRow(table.Row{
			i + 1,
			res.Pair.X.String(),
			res.Pair.Y.String(),
			fmt.Sprintf("%.5f", res.Coefficient),
			res.PValue.StringFixed(correlation.PValuePlaces),
			string(res.Outcome),
			res.RowCount,
		})
	}
	t.Render()
	_, _ = fmt.Fprintf(w, "(%d pairs)\n", len(results))
}

// RenderProfiles lists the summary of every numeric column
func RenderProfiles(w io.Writer, profiles []profiling.ColumnProfile) {
	if len(profiles) == 0 {
		_, _ = fmt.Fprintln(w, "(0 numeric columns)")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Column", "Count", "Distinct", "Mean", "Std Dev", "Min", "Median", "Max", "Skew"})
	for _, p := range profiles {
		t.AppendRow(table.Row{
			p.Key.String(),
			p.Count,
			p.Distinct,
			formatTick(p.Mean),
			formatTick(p.StdDev),
			formatTick(p.Min),
			formatTick(p.Median),
			formatTick(p.Max),
			fmt.Sprintf("%.3f", p.Skewness),
		})
	}
	t.Render()
}

func statsLine(res correlation.Result) string {
	return fmt.Sprintf("P-value: %s, Correlation Coefficient: %.5f",
		res.PValue.StringFixed(correlation.PValuePlaces), res.Coefficient)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
