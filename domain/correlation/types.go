package correlation

import (
	"encoding/json"
	"fmt"
	"math"

	"corrscreen/domain/core"

	"github.com/shopspring/decimal"
)

// Defaults for selection
const (
	DefaultSignificanceThreshold = 0.05
	DefaultMaxSelected           = 3
	DefaultMinRowsForPlot        = 5

	// PValuePlaces is the number of fractional digits kept on a significant p-value
	PValuePlaces = 5
)

// ColumnPair is an unordered pair of distinct columns, X positioned before Y
type ColumnPair struct {
	X core.VariableKey `json:"x"`
	Y core.VariableKey `json:"y"`
}

func (p ColumnPair) String() string {
	return fmt.Sprintf("%s ~ %s", p.X, p.Y)
}

// Outcome distinguishes the cases the numeric (0, 0) sentinel conflates
type Outcome string

const (
	OutcomeSignificant    Outcome = "significant"
	OutcomeNotSignificant Outcome = "not_significant"
	OutcomeDegenerate     Outcome = "degenerate"
)

// Result is the evaluated correlation for one column pair.
//
// Degenerate and not-significant pairs carry Coefficient == 0 and a zero PValue.
// Outcome keeps the reason; RawPValue keeps the unquantized test p-value.
type Result struct {
	Pair        ColumnPair      `json:"pair"`
	Coefficient float64         `json:"coefficient"`
	PValue      decimal.Decimal `json:"p_value"`
	Outcome     Outcome         `json:"outcome"`
	RawPValue   float64         `json:"raw_p_value"`
	RowCount    int             `json:"row_count"`
}

// IsSentinel reports whether the result is the (0, 0) sentinel
func (r Result) IsSentinel() bool {
	return r.Coefficient == 0 && r.PValue.IsZero()
}

// MarshalJSON writes PValue with exactly PValuePlaces fractional digits, the
// same form the text report and run ledger use.
func (r Result) MarshalJSON() ([]byte, error) {
	type plain Result
	return json.Marshal(struct {
		plain
		PValue string `json:"p_value"`
	}{
		plain:  plain(r),
		PValue: r.PValue.StringFixed(PValuePlaces),
	})
}

// Strength is the ranking key
func (r Result) Strength() float64 {
	return math.Abs(r.Coefficient)
}

// SelectionConfig bounds which results are handed to presentation
type SelectionConfig struct {
	SignificanceThreshold float64 `json:"significance_threshold"`
	MaxSelected           int     `json:"max_selected"`
	MinRowsForPlot        int     `json:"min_rows_for_plot"`
}

// DefaultSelectionConfig returns the documented defaults (0.05, 3, 5)
func DefaultSelectionConfig() SelectionConfig {
	return SelectionConfig{
		SignificanceThreshold: DefaultSignificanceThreshold,
		MaxSelected:           DefaultMaxSelected,
		MinRowsForPlot:        DefaultMinRowsForPlot,
	}
}

// Validate checks the config. MaxSelected == 0 is allowed and selects nothing.
func (c SelectionConfig) Validate() error {
	if !(c.SignificanceThreshold > 0 && c.SignificanceThreshold < 1) {
		return core.NewSelectionError("significance_threshold", "must be in (0, 1)")
	}
	if c.MaxSelected < 0 {
		return core.NewSelectionError("max_selected", "must not be negative")
	}
	if c.MinRowsForPlot < 0 {
		return core.NewSelectionError("min_rows_for_plot", "must not be negative")
	}
	return nil
}

// NoticeReason explains why a qualifying pair was skipped
type NoticeReason string

const NoticeInsufficientRows NoticeReason = "insufficient_rows"

// Notice is an informational record emitted during selection
type Notice struct {
	Pair     ColumnPair   `json:"pair"`
	Reason   NoticeReason `json:"reason"`
	RowCount int          `json:"row_count"`
	Message  string       `json:"message"`
}

// Selection is the bounded, strength-ordered output of the selector
type Selection struct {
	Selected []Result `json:"selected"`
	Notices  []Notice `json:"notices,omitempty"`
	Scanned  int      `json:"scanned"`
}

// Empty reports whether nothing qualified
func (s Selection) Empty() bool {
	return len(s.Selected) == 0
}
