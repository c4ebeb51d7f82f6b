package correlation

import (
	"encoding/json"
	"testing"

	"corrscreen/domain/core"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectionConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*SelectionConfig)
		wantErr bool
	}{
		{"defaults", func(c *SelectionConfig) {}, false},
		{"zero max selected", func(c *SelectionConfig) { c.MaxSelected = 0 }, false},
		{"negative max selected", func(c *SelectionConfig) { c.MaxSelected = -1 }, true},
		{"negative min rows", func(c *SelectionConfig) { c.MinRowsForPlot = -2 }, true},
		{"zero threshold", func(c *SelectionConfig) { c.SignificanceThreshold = 0 }, true},
		{"threshold of one", func(c *SelectionConfig) { c.SignificanceThreshold = 1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultSelectionConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, core.ErrInvalidSelection)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestResult_IsSentinel(t *testing.T) {
	assert.True(t, Result{}.IsSentinel())
	assert.True(t, Result{Outcome: OutcomeDegenerate}.IsSentinel())
	assert.False(t, Result{Coefficient: 1, PValue: decimal.Zero}.IsSentinel())
	assert.False(t, Result{PValue: decimal.RequireFromString("0.01")}.IsSentinel())
}

func TestResult_Strength(t *testing.T) {
	r := Result{Pair: ColumnPair{X: "a", Y: "b"}, Coefficient: -0.7}
	assert.Equal(t, 0.7, r.Strength())
	assert.Equal(t, "a ~ b", r.Pair.String())
}

func TestResult_MarshalJSONKeepsFivePlaces(t *testing.T) {
	r := Result{
		Pair:        ColumnPair{X: "a", Y: "b"},
		Coefficient: 1,
		PValue:      decimal.Zero,
		Outcome:     OutcomeSignificant,
	}
	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"p_value":"0.00000"`)

	r.PValue = decimal.RequireFromString("0.0123")
	data, err = json.Marshal(r)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"p_value":"0.01230"`)
	assert.Contains(t, string(data), `"pair":{"x":"a","y":"b"}`)

	var decoded Result
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, decoded.PValue.Equal(r.PValue))
	assert.Equal(t, OutcomeSignificant, decoded.Outcome)
}
