package profiling

import (
	"testing"

	"corrscreen/domain/dataset"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileColumn(t *testing.T) {
	profile, err := NewProfiler().ProfileColumn("x", []float64{1, 2, 3, 4, 5})
	require.NoError(t, err)

	assert.Equal(t, 5, profile.Count)
	assert.Equal(t, 5, profile.Distinct)
	assert.Equal(t, 3.0, profile.Mean)
	assert.InDelta(t, 1.41421356, profile.StdDev, 1e-8)
	assert.Equal(t, 1.0, profile.Min)
	assert.Equal(t, 3.0, profile.Median)
	assert.Equal(t, 5.0, profile.Max)
	assert.InDelta(t, 0, profile.Skewness, 1e-12)
	assert.False(t, profile.Constant())
}

func TestProfileColumn_RightSkewed(t *testing.T) {
	profile, err := NewProfiler().ProfileColumn("x", []float64{1, 1, 1, 2, 10})
	require.NoError(t, err)
	assert.Greater(t, profile.Skewness, 1.0)
}

func TestProfileColumn_Constant(t *testing.T) {
	profile, err := NewProfiler().ProfileColumn("c", []float64{7, 7, 7, 7})
	require.NoError(t, err)
	assert.True(t, profile.Constant())
	assert.Equal(t, 0.0, profile.StdDev)
	assert.Equal(t, 0.0, profile.Skewness)
}

func TestProfileColumn_Empty(t *testing.T) {
	profile, err := NewProfiler().ProfileColumn("e", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, profile.Count)
	assert.True(t, profile.Constant())
}

func TestProfileTable_KeepsColumnOrder(t *testing.T) {
	table, err := dataset.FromColumns("t",
		dataset.Column{Key: "b", Values: []float64{1, 2, 3}},
		dataset.Column{Key: "a", Values: []float64{4, 4, 4}},
	)
	require.NoError(t, err)

	profiles, err := NewProfiler().ProfileTable(table)
	require.NoError(t, err)
	require.Len(t, profiles, 2)
	assert.EqualValues(t, "b", profiles[0].Key)
	assert.EqualValues(t, "a", profiles[1].Key)
	assert.True(t, profiles[1].Constant())
}
