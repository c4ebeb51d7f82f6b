package engine

import (
	"corrscreen/domain/core"
	"corrscreen/domain/correlation"
)

// EnumeratePairs returns every unordered pair of keys exactly once, in (i<j)
// position order: (k0,k1), (k0,k2), ..., (k1,k2), ...
func EnumeratePairs(keys []core.VariableKey) []correlation.ColumnPair {
	n := len(keys)
	if n < 2 {
		return nil
	}

	pairs := make([]correlation.ColumnPair, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			pairs = append(pairs, correlation.ColumnPair{X: keys[i], Y: keys[j]})
		}
	}
	return pairs
}

// PairCount is n*(n-1)/2
func PairCount(columns int) int {
	if columns < 2 {
		return 0
	}
	return columns * (columns - 1) / 2
}
