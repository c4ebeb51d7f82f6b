package engine

import (
	"fmt"
	"math"

	"corrscreen/domain/core"
	"corrscreen/domain/correlation"

	"github.com/montanaflynn/stats"
	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat/distuv"
)

// PearsonEvaluator computes Pearson's r with a two-sided t-test p-value and
// collapses degenerate or non-significant pairs to the (0, 0) sentinel.
type PearsonEvaluator struct {
	threshold float64
}

// NewPearsonEvaluator creates an evaluator gating on the given significance threshold
func NewPearsonEvaluator(threshold float64) *PearsonEvaluator {
	return &PearsonEvaluator{threshold: threshold}
}

// Threshold returns the significance threshold
func (e *PearsonEvaluator) Threshold() float64 {
	return e.threshold
}

// Evaluate correlates two row-aligned sequences. The only errors are input
// contract violations: differing lengths or non-finite values.
func (e *PearsonEvaluator) Evaluate(x, y []float64) (correlation.Result, error) {
	if len(x) != len(y) {
		return correlation.Result{}, core.NewLengthMismatchError("y", len(x), len(y))
	}
	if err := checkFinite("x", x); err != nil {
		return correlation.Result{}, err
	}
	if err := checkFinite("y", y); err != nil {
		return correlation.Result{}, err
	}

	n := len(x)
	if !distinctAtLeast(x, 2) || !distinctAtLeast(y, 2) {
		return sentinel(correlation.OutcomeDegenerate, 1, n), nil
	}

	r, p := pearsonTest(x, y)
	if !(p < e.threshold) {
		return sentinel(correlation.OutcomeNotSignificant, p, n), nil
	}

	return correlation.Result{
		Coefficient: r,
		PValue:      QuantizePValue(p),
		Outcome:     correlation.OutcomeSignificant,
		RawPValue:   p,
		RowCount:    n,
	}, nil
}

// EvaluatePair evaluates a pair and stamps it on the result
func (e *PearsonEvaluator) EvaluatePair(pair correlation.ColumnPair, x, y []float64) (correlation.Result, error) {
	res, err := e.Evaluate(x, y)
	if err != nil {
		return correlation.Result{}, fmt.Errorf("evaluate %s: %w", pair, err)
	}
	res.Pair = pair
	return res, nil
}

// QuantizePValue rounds p to five fractional digits, halves rounded up.
// The float is first turned into its shortest decimal representation, so the
// halfway test is applied to the digits a user would see printed.
func QuantizePValue(p float64) decimal.Decimal {
	return decimal.NewFromFloat(p).Round(correlation.PValuePlaces)
}

func sentinel(outcome correlation.Outcome, rawP float64, n int) correlation.Result {
	return correlation.Result{
		Coefficient: 0,
		PValue:      decimal.Zero,
		Outcome:     outcome,
		RawPValue:   rawP,
		RowCount:    n,
	}
}

// pearsonTest returns r (population formulas) and its two-sided p-value under
// Student's t with n-2 degrees of freedom. Both columns must be non-constant.
func pearsonTest(x, y []float64) (float64, float64) {
	r, err := stats.Pearson(x, y)
	if err != nil || math.IsNaN(r) {
		return 0, 1
	}
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}

	n := len(x)
	if n < 3 {
		// Two points always lie on a line; the test has no degrees of freedom.
		return r, 1
	}

	oneMinusR2 := 1 - r*r
	if oneMinusR2 <= 0 {
		return r, 0
	}

	df := float64(n - 2)
	t := r * math.Sqrt(df/oneMinusR2)
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	p := 2 * dist.Survival(math.Abs(t))

	if p < 0 {
		p = 0
	} else if p > 1 {
		p = 1
	}
	return r, p
}

// distinctAtLeast reports whether data holds at least k distinct values
func distinctAtLeast(data []float64, k int) bool {
	if len(data) < k {
		return false
	}
	seen := make(map[float64]struct{}, k)
	for _, v := range data {
		seen[v] = struct{}{}
		if len(seen) >= k {
			return true
		}
	}
	return false
}

func checkFinite(name string, data []float64) error {
	for i, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s[%d]", core.ErrNonFinite, name, i)
		}
	}
	return nil
}
