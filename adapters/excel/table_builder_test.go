package excel

import (
	"testing"

	"corrscreen/adapters/datareadiness/coercer"
	"corrscreen/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_DropsRowsMissingAnyColumn(t *testing.T) {
	raw := &RawData{
		Headers: []string{"city", "temp", "sales", "visits"},
		Rows: [][]string{
			{"oslo", "3", "10", "100"},
			{"", "5", "12", "120"},     // missing non-numeric cell
			{"rome", "18", "NA", "90"}, // missing numeric cell
			{"lima", "20", "30", "300"},
			{"nyc", "11", "21", "210"},
		},
	}

	table, report, err := NewTableBuilder(coercer.DefaultCoercionConfig()).Build("cities", raw)
	require.NoError(t, err)

	assert.Equal(t, []core.VariableKey{"temp", "sales", "visits"}, table.VariableKeys())
	assert.Equal(t, 3, table.RowCount())
	temp, _ := table.GetColumnData("temp")
	assert.Equal(t, []float64{3, 20, 11}, temp)
	assert.Equal(t, []int{0, 3, 4}, table.RowLabels())

	assert.Equal(t, 5, report.TotalRows)
	assert.Equal(t, 2, report.DroppedRows)
	assert.Equal(t, []string{"city"}, report.SkippedColumns)
	assert.Equal(t, []string{"temp", "sales", "visits"}, report.NumericColumns)
}

func TestBuild_MixedColumnIsNotNumeric(t *testing.T) {
	raw := &RawData{
		Headers: []string{"a", "b", "c"},
		Rows: [][]string{
			{"1", "x", "4"},
			{"2", "7", "5"},
			{"3", "8", "6"},
		},
	}

	table, report, err := NewTableBuilder(coercer.DefaultCoercionConfig()).Build("t", raw)
	require.NoError(t, err)
	assert.Equal(t, []core.VariableKey{"a", "c"}, table.VariableKeys())
	assert.Equal(t, 3, table.RowCount())
	assert.Equal(t, coercer.ColumnCategorical, report.Analyses["b"].RecommendedType)
}

func TestBuild_NoNumericColumns(t *testing.T) {
	raw := &RawData{
		Headers: []string{"name"},
		Rows:    [][]string{{"ann"}, {"bob"}},
	}

	table, _, err := NewTableBuilder(coercer.DefaultCoercionConfig()).Build("t", raw)
	require.NoError(t, err)
	assert.Equal(t, 0, table.ColumnCount())
	assert.ErrorIs(t, table.Validate(), core.ErrNoNumericColumns)
}

func TestBuild_LenientThresholdDropsStrayText(t *testing.T) {
	cfg := coercer.DefaultCoercionConfig()
	cfg.NumericThreshold = 0.6
	raw := &RawData{
		Headers: []string{"a", "b"},
		Rows: [][]string{
			{"1", "10"},
			{"2", "oops"},
			{"3", "30"},
		},
	}

	table, report, err := NewTableBuilder(cfg).Build("t", raw)
	require.NoError(t, err)
	assert.Equal(t, 2, table.RowCount())
	assert.Equal(t, 1, report.DroppedRows)
	b, _ := table.GetColumnData("b")
	assert.Equal(t, []float64{10, 30}, b)
	assert.Equal(t, []int{0, 2}, table.RowLabels())
}

func TestKeptRows(t *testing.T) {
	raw := &RawData{
		Headers: []string{"a", "b"},
		Rows: [][]string{
			{"1", ""},
			{"2", "20"},
			{"n/a", "30"},
			{"4", "40"},
		},
	}

	assert.Equal(t, []int{1, 3}, NewTableBuilder(coercer.DefaultCoercionConfig()).KeptRows(raw, []int{0, 1}))
}
