package report

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"corrscreen/adapters/stats/engine"
	"corrscreen/app"
	"corrscreen/domain/correlation"
	"corrscreen/domain/dataset"
	"corrscreen/internal/errors"
	"corrscreen/internal/testkit"
	"corrscreen/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func analyze(t *testing.T, table *dataset.Table) *app.AnalysisReport {
	t.Helper()
	svc := app.NewCorrelationService(engine.NewStatsEngine(), nil)
	rep, err := svc.AnalyzeTable(context.Background(), table, app.AnalyzeRequest{
		Selection: correlation.DefaultSelectionConfig(),
		HeadRows:  4,
	})
	require.NoError(t, err)
	return rep
}

func linearTable(t *testing.T, rows int) *dataset.Table {
	t.Helper()
	x := make([]float64, rows)
	y := make([]float64, rows)
	for i := range x {
		x[i] = float64(i + 1)
		y[i] = 2*x[i] + 1
	}
	table, err := dataset.FromColumns("linear",
		dataset.Column{Key: "x", Values: x},
		dataset.Column{Key: "y", Values: y},
	)
	require.NoError(t, err)
	return table
}

func TestRenderText_SelectedPair(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderText(&buf, analyze(t, linearTable(t, 6)), DefaultOptions()))
	out := buf.String()

	assert.Contains(t, out, "Scatter Plot - Correlation 1\n")
	assert.Contains(t, out, "P-value: 0.00000, Correlation Coefficient: 1.00000\n")
	assert.Contains(t, out, "Equation: y = 2.00000x + 1.00000\n")
	assert.Contains(t, out, "Data points for correlation between x and y:\n")
	assert.Contains(t, out, string(pointMark))
	assert.NotContains(t, out, NoCorrelationsMessage)

	// head table holds 4 rows, indexed from 0
	assert.Contains(t, out, "│ 3 │ 4 │ 9 │")
	assert.NotContains(t, out, "│ 4 │ 5 │ 11 │")
}

func TestRenderText_NothingSelected(t *testing.T) {
	table, err := testkit.OrthogonalTable(4)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, RenderText(&buf, analyze(t, table), DefaultOptions()))
	assert.Equal(t, NoCorrelationsMessage+"\n", buf.String())
}

func TestRenderText_InsufficientRowsNotice(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderText(&buf, analyze(t, linearTable(t, 3)), DefaultOptions()))
	out := buf.String()

	assert.Contains(t, out, "Insufficient data points for correlation between x and y\n")
	assert.NotContains(t, out, "Scatter Plot")
}

func TestRenderText_ShowAll(t *testing.T) {
	table, err := testkit.OrthogonalTable(3)
	require.NoError(t, err)

	var buf bytes.Buffer
	opts := DefaultOptions()
	opts.ShowAll = true
	require.NoError(t, RenderText(&buf, analyze(t, table), opts))

	out := buf.String()
	assert.Contains(t, out, "(3 pairs)")
	assert.Contains(t, out, string(correlation.OutcomeNotSignificant))
}

func TestRenderJSON(t *testing.T) {
	rep := analyze(t, linearTable(t, 6))

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, rep, FormatJSON, DefaultOptions()))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, rep.RunID.String(), decoded["run_id"])

	plots, ok := decoded["plots"].([]any)
	require.True(t, ok)
	require.Len(t, plots, 1)
	plot := plots[0].(map[string]any)
	assert.NotContains(t, plot, "Points")
	assert.Len(t, plot["head"], 4)
	assert.Equal(t, []any{0.0, 1.0, 2.0, 3.0}, plot["head_index"])

	assert.Contains(t, buf.String(), `"p_value": "0.00000"`)
	assert.NotContains(t, buf.String(), `"p_value": "0",`)
}

func TestRender_UnknownFormat(t *testing.T) {
	err := Render(&bytes.Buffer{}, analyze(t, linearTable(t, 6)), "xml", DefaultOptions())
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestRenderResults_Empty(t *testing.T) {
	var buf bytes.Buffer
	RenderResults(&buf, nil)
	assert.Equal(t, "(0 pairs)\n", buf.String())
}

func TestScatterLines_Layout(t *testing.T) {
	points := [][2]float64{{0, 0}, {10, 10}}
	lines := scatterLines(points, 1, 0, 20, 5)
	require.Len(t, lines, 7)

	// top-right and bottom-left corners hold the points
	assert.True(t, strings.HasSuffix(lines[0], string(pointMark)))
	assert.Equal(t, string(pointMark), string([]rune(lines[4])[gutter]))
	assert.True(t, strings.HasPrefix(strings.TrimSpace(lines[0]), "10 |"))
	assert.Contains(t, lines[6], "0")
	assert.Contains(t, lines[6], "10")
	for _, line := range lines[:5] {
		assert.Equal(t, gutter+20, len([]rune(line)))
	}
}

func TestScatterLines_ConstantRangeAndEmpty(t *testing.T) {
	assert.Nil(t, scatterLines(nil, 0, 0, 20, 5))

	lines := scatterLines([][2]float64{{3, 5}, {3, 5}}, 0, 5, 10, 4)
	require.Len(t, lines, 6)
	assert.Contains(t, strings.Join(lines, "\n"), string(pointMark))
}

func TestRenderProfiles(t *testing.T) {
	rep := analyze(t, linearTable(t, 6))

	var buf bytes.Buffer
	RenderProfiles(&buf, rep.Profiles)
	out := buf.String()
	assert.Contains(t, out, "DISTINCT")
	assert.Contains(t, out, "3.5")

	buf.Reset()
	RenderProfiles(&buf, nil)
	assert.Equal(t, "(0 numeric columns)\n", buf.String())
}

func TestRenderRuns(t *testing.T) {
	var buf bytes.Buffer
	RenderRuns(&buf, nil)
	assert.Equal(t, "(0 runs)\n", buf.String())

	buf.Reset()
	RenderRuns(&buf, []ports.RunRecord{{RunID: "r1", Source: "a.csv", CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}})
	out := buf.String()
	assert.Contains(t, out, "r1")
	assert.Contains(t, out, "2026-01-02T03:04:05Z")
	assert.Contains(t, out, "(1 runs)")
}

func TestRenderRun_NoSelection(t *testing.T) {
	var buf bytes.Buffer
	RenderRun(&buf, &ports.RunRecord{RunID: "r1", Source: "a.csv"})
	out := buf.String()
	assert.Contains(t, out, "Run r1\n")
	assert.Contains(t, out, NoCorrelationsMessage)
}
