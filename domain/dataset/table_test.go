package dataset

import (
	"testing"

	"corrscreen/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromColumns_PreservesOrder(t *testing.T) {
	tbl, err := FromColumns("people",
		Column{Key: "height", Values: []float64{170, 180, 165}},
		Column{Key: "weight", Values: []float64{65, 80, 60}},
		Column{Key: "age", Values: []float64{30, 41, 25}},
	)
	require.NoError(t, err)

	assert.Equal(t, []core.VariableKey{"height", "weight", "age"}, tbl.VariableKeys())
	assert.Equal(t, 3, tbl.RowCount())
	assert.Equal(t, 3, tbl.ColumnCount())

	pos, ok := tbl.GetColumn("age")
	require.True(t, ok)
	assert.Equal(t, 2, pos)
	require.NoError(t, tbl.Validate())
}

func TestAddColumn_RejectsMisalignedColumn(t *testing.T) {
	tbl := NewTable("t")
	require.NoError(t, tbl.AddColumn("a", []float64{1, 2, 3}))

	err := tbl.AddColumn("b", []float64{1, 2})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrLengthMismatch)
	assert.True(t, core.IsContractError(err))
}

func TestAddColumn_RejectsDuplicateName(t *testing.T) {
	tbl := NewTable("t")
	require.NoError(t, tbl.AddColumn("a", []float64{1, 2}))
	assert.ErrorIs(t, tbl.AddColumn("a", []float64{3, 4}), core.ErrDuplicateColumn)
}

func TestAddColumn_CopiesInput(t *testing.T) {
	values := []float64{1, 2, 3}
	tbl := NewTable("t")
	require.NoError(t, tbl.AddColumn("a", values))
	values[0] = 99

	got, ok := tbl.GetColumnData("a")
	require.True(t, ok)
	assert.Equal(t, 1.0, got[0])
}

func TestHead(t *testing.T) {
	tbl, err := FromColumns("t",
		Column{Key: "x", Values: []float64{1, 2, 3, 4}},
		Column{Key: "y", Values: []float64{10, 20, 30, 40}},
	)
	require.NoError(t, err)

	rows, err := tbl.Head("x", "y", 2)
	require.NoError(t, err)
	assert.Equal(t, [][2]float64{{1, 10}, {2, 20}}, rows)

	rows, err = tbl.Head("x", "y", 25)
	require.NoError(t, err)
	assert.Len(t, rows, 4)

	_, err = tbl.Head("x", "missing", 2)
	assert.ErrorIs(t, err, core.ErrColumnNotFound)
}

func TestValidate_EmptyTable(t *testing.T) {
	assert.ErrorIs(t, NewTable("empty").Validate(), core.ErrNoNumericColumns)
	assert.Equal(t, 0, NewTable("empty").RowCount())
}

func TestFingerprint_ChangesWithData(t *testing.T) {
	a, err := FromColumns("a", Column{Key: "x", Values: []float64{1, 2}})
	require.NoError(t, err)
	b, err := FromColumns("b", Column{Key: "x", Values: []float64{1, 3}})
	require.NoError(t, err)
	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())
}

func TestRowLabels(t *testing.T) {
	tbl, err := FromColumns("t", Column{Key: "x", Values: []float64{1, 2, 3}})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, tbl.RowLabels())

	require.NoError(t, tbl.SetRowLabels([]int{2, 5, 9}))
	assert.Equal(t, []int{2, 5, 9}, tbl.RowLabels())
	assert.Equal(t, 5, tbl.RowLabel(1))

	assert.ErrorIs(t, tbl.SetRowLabels([]int{1}), core.ErrLengthMismatch)
}
