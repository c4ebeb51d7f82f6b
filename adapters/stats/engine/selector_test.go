package engine

import (
	"testing"

	"corrscreen/domain/core"
	"corrscreen/domain/correlation"
	"corrscreen/internal"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func significant(x, y string, r float64, p string, rows int) correlation.Result {
	return correlation.Result{
		Pair:        correlation.ColumnPair{X: core.VariableKey(x), Y: core.VariableKey(y)},
		Coefficient: r,
		PValue:      decimal.RequireFromString(p),
		Outcome:     correlation.OutcomeSignificant,
		RowCount:    rows,
	}
}

func sentinelFor(x, y string, outcome correlation.Outcome, rows int) correlation.Result {
	return correlation.Result{
		Pair:     correlation.ColumnPair{X: core.VariableKey(x), Y: core.VariableKey(y)},
		PValue:   decimal.Zero,
		Outcome:  outcome,
		RowCount: rows,
	}
}

func pairsOf(results []correlation.Result) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Pair.String()
	}
	return out
}

func TestRankByStrength_StableOnTies(t *testing.T) {
	in := []correlation.Result{
		significant("a", "b", 0.5, "0.01", 10),
		significant("a", "c", -0.9, "0.01", 10),
		significant("a", "d", -0.5, "0.01", 10),
		sentinelFor("b", "c", correlation.OutcomeDegenerate, 10),
		significant("b", "d", 0.9, "0.01", 10),
	}

	ranked := RankByStrength(in)
	assert.Equal(t, []string{"a ~ c", "b ~ d", "a ~ b", "a ~ d", "b ~ c"}, pairsOf(ranked))
	assert.Equal(t, "a ~ b", in[0].Pair.String(), "input must not be reordered")
}

func TestSelect_OrdersAndCaps(t *testing.T) {
	in := []correlation.Result{
		significant("a", "b", 0.61, "0.01", 20),
		significant("a", "c", -0.95, "0.00001", 20),
		sentinelFor("a", "d", correlation.OutcomeNotSignificant, 20),
		significant("b", "c", 0.72, "0.002", 20),
		significant("b", "d", 0.88, "0.0004", 20),
		significant("c", "d", 0.55, "0.03", 20),
	}

	sel, err := NewSelector(nil).Select(in, correlation.DefaultSelectionConfig())
	require.NoError(t, err)

	assert.Equal(t, []string{"a ~ c", "b ~ d", "b ~ c"}, pairsOf(sel.Selected))
	assert.Equal(t, 3, sel.Scanned, "scanning stops at the cap")
	for i := 1; i < len(sel.Selected); i++ {
		assert.GreaterOrEqual(t, sel.Selected[i-1].Strength(), sel.Selected[i].Strength())
	}
}

func TestSelect_ZeroMaxSelectedIsEmpty(t *testing.T) {
	cfg := correlation.DefaultSelectionConfig()
	cfg.MaxSelected = 0

	sel, err := NewSelector(nil).Select([]correlation.Result{significant("a", "b", 0.9, "0.001", 50)}, cfg)
	require.NoError(t, err)
	assert.True(t, sel.Empty())
	assert.Equal(t, 0, sel.Scanned)
}

func TestSelect_InvalidConfig(t *testing.T) {
	cfg := correlation.DefaultSelectionConfig()
	cfg.MaxSelected = -1

	_, err := NewSelector(nil).Select(nil, cfg)
	assert.ErrorIs(t, err, core.ErrInvalidSelection)
}

func TestSelect_EmptyInput(t *testing.T) {
	sel, err := NewSelector(nil).Select(nil, correlation.DefaultSelectionConfig())
	require.NoError(t, err)
	assert.True(t, sel.Empty())
	assert.NotNil(t, sel.Selected)
}

func TestSelect_SentinelsNeverSelected(t *testing.T) {
	in := []correlation.Result{
		sentinelFor("a", "b", correlation.OutcomeDegenerate, 30),
		sentinelFor("a", "c", correlation.OutcomeNotSignificant, 30),
	}
	sel, err := NewSelector(nil).Select(in, correlation.DefaultSelectionConfig())
	require.NoError(t, err)
	assert.True(t, sel.Empty())
	assert.Empty(t, sel.Notices)
}

func TestSelect_QuantizedPAtThresholdIsDropped(t *testing.T) {
	// raw p 0.049996 passes the evaluator but quantizes to 0.05000
	in := []correlation.Result{
		significant("a", "b", 0.4, "0.05000", 30),
		significant("a", "c", 0.3, "0.04999", 30),
	}
	sel, err := NewSelector(nil).Select(in, correlation.DefaultSelectionConfig())
	require.NoError(t, err)
	assert.Equal(t, []string{"a ~ c"}, pairsOf(sel.Selected))
}

func TestSelect_RowGateSkipsWithNotice(t *testing.T) {
	obsCore, logs := observer.New(zapcore.InfoLevel)
	logger := internal.FromZap(zap.New(obsCore), internal.LogLevelInfo)

	in := []correlation.Result{
		significant("a", "b", 1.0, "0.00000", 3),
		significant("c", "d", 0.8, "0.001", 12),
	}
	sel, err := NewSelector(logger).Select(in, correlation.DefaultSelectionConfig())
	require.NoError(t, err)

	assert.Equal(t, []string{"c ~ d"}, pairsOf(sel.Selected))
	require.Len(t, sel.Notices, 1)
	assert.Equal(t, correlation.NoticeInsufficientRows, sel.Notices[0].Reason)
	assert.Equal(t, "Insufficient data points for correlation between a and b", sel.Notices[0].Message)
	assert.Equal(t, 1, logs.FilterMessageSnippet("Insufficient data points").Len())
}

func TestSelect_CapCountsOnlyQualifyingPairs(t *testing.T) {
	cfg := correlation.DefaultSelectionConfig()
	cfg.MaxSelected = 2

	in := []correlation.Result{
		significant("a", "b", 0.99, "0.00001", 4),
		significant("a", "c", 0.98, "0.00001", 4),
		significant("a", "d", 0.97, "0.00001", 40),
		significant("b", "c", 0.96, "0.00001", 40),
		significant("b", "d", 0.95, "0.00001", 40),
	}
	sel, err := NewSelector(nil).Select(in, cfg)
	require.NoError(t, err)

	assert.Equal(t, []string{"a ~ d", "b ~ c"}, pairsOf(sel.Selected))
	assert.Len(t, sel.Notices, 2)
	assert.Equal(t, 4, sel.Scanned)
}

func TestSelect_NoticesCappedAtMaxSelected(t *testing.T) {
	obsCore, logs := observer.New(zapcore.InfoLevel)
	logger := internal.FromZap(zap.New(obsCore), internal.LogLevelInfo)

	in := []correlation.Result{
		significant("a", "b", 0.99, "0.00001", 4),
		significant("a", "c", 0.98, "0.00001", 4),
		significant("a", "d", 0.97, "0.00001", 4),
		significant("b", "c", 0.96, "0.00001", 4),
		significant("b", "d", 0.95, "0.00001", 4),
	}
	sel, err := NewSelector(logger).Select(in, correlation.DefaultSelectionConfig())
	require.NoError(t, err)

	assert.Empty(t, sel.Selected)
	require.Len(t, sel.Notices, 3)
	for i, want := range []string{"a ~ b", "a ~ c", "a ~ d"} {
		assert.Equal(t, want, sel.Notices[i].Pair.String())
	}
	assert.Equal(t, 5, sel.Scanned)
	assert.Equal(t, 3, logs.FilterMessageSnippet("Insufficient data points").Len())
}
