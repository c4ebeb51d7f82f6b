package engine

import (
	"fmt"
	"sort"

	"corrscreen/domain/correlation"
	"corrscreen/internal"

	"github.com/shopspring/decimal"
)

// Selector ranks evaluated pairs and picks the strongest few worth plotting
type Selector struct {
	logger *internal.Logger
}

// NewSelector creates a selector. A nil logger discards notices.
func NewSelector(logger *internal.Logger) *Selector {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &Selector{logger: logger}
}

// RankByStrength returns a copy of results ordered by |r| descending.
// Equal strengths keep their input order.
func RankByStrength(results []correlation.Result) []correlation.Result {
	ranked := make([]correlation.Result, len(results))
	copy(ranked, results)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Strength() > ranked[j].Strength()
	})
	return ranked
}

// Select ranks results and accumulates at most cfg.MaxSelected of them that
// pass the significance, non-zero and row-count gates. Scanning stops once the
// cap is reached. Pairs failing only the row-count gate produce a notice, at
// most cfg.MaxSelected of them.
func (s *Selector) Select(results []correlation.Result, cfg correlation.SelectionConfig) (correlation.Selection, error) {
	if err := cfg.Validate(); err != nil {
		return correlation.Selection{}, err
	}

	selection := correlation.Selection{Selected: []correlation.Result{}}
	if cfg.MaxSelected == 0 {
		return selection, nil
	}

	threshold := decimal.NewFromFloat(cfg.SignificanceThreshold)
	for _, res := range RankByStrength(results) {
		if len(selection.Selected) >= cfg.MaxSelected {
			break
		}
		selection.Scanned++

		// The sentinel already covers both conditions; they are checked again
		// on the quantized value so a p rounded up to the threshold is dropped.
		if !res.PValue.LessThan(threshold) || res.Coefficient == 0 {
			continue
		}

		if res.RowCount < cfg.MinRowsForPlot {
			if len(selection.Notices) >= cfg.MaxSelected {
				continue
			}
			notice := correlation.Notice{
				Pair:     res.Pair,
				Reason:   correlation.NoticeInsufficientRows,
				RowCount: res.RowCount,
				Message:  fmt.Sprintf("Insufficient data points for correlation between %s and %s", res.Pair.X, res.Pair.Y),
			}
			selection.Notices = append(selection.Notices, notice)
			s.logger.Info("%s (%d rows, need %d)", notice.Message, res.RowCount, cfg.MinRowsForPlot)
			continue
		}

		selection.Selected = append(selection.Selected, res)
	}

	s.logger.Debug("selected %d of %d results after scanning %d", len(selection.Selected), len(results), selection.Scanned)
	return selection, nil
}
