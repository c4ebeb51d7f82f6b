package profiling

import (
	"math"

	"corrscreen/domain/core"
	"corrscreen/domain/dataset"

	"github.com/montanaflynn/stats"
)

// ColumnProfile summarises one numeric column
type ColumnProfile struct {
	Key      core.VariableKey `json:"key"`
	Count    int              `json:"count"`
	Distinct int              `json:"distinct"`
	Mean     float64          `json:"mean"`
	StdDev   float64          `json:"std_dev"` // population
	Min      float64          `json:"min"`
	Q25      float64          `json:"q25"`
	Median   float64          `json:"median"`
	Q75      float64          `json:"q75"`
	Max      float64          `json:"max"`
	Skewness float64          `json:"skewness"`
}

// Constant reports whether the column can take part in a correlation.
// Pairs involving a constant column are degenerate.
func (p ColumnProfile) Constant() bool {
	return p.Distinct < 2
}

// Profiler computes column summaries
type Profiler struct{}

// NewProfiler creates a new profiler
func NewProfiler() *Profiler {
	return &Profiler{}
}

// ProfileTable profiles every column of the table, in column order
func (p *Profiler) ProfileTable(table *dataset.Table) ([]ColumnProfile, error) {
	keys := table.VariableKeys()
	profiles := make([]ColumnProfile, 0, len(keys))
	for _, key := range keys {
		data, ok := table.GetColumnData(key)
		if !ok {
			return nil, core.NewColumnNotFoundError(key)
		}
		profile, err := p.ProfileColumn(key, data)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}
	return profiles, nil
}

// ProfileColumn computes the summary of one column. An empty column yields a
// zero profile.
func (p *Profiler) ProfileColumn(key core.VariableKey, data []float64) (ColumnProfile, error) {
	profile := ColumnProfile{Key: key, Count: len(data)}
	if len(data) == 0 {
		return profile, nil
	}

	var err error
	if profile.Mean, err = stats.Mean(data); err != nil {
		return profile, err
	}
	if profile.StdDev, err = stats.StandardDeviation(data); err != nil {
		return profile, err
	}
	if profile.Min, err = stats.Min(data); err != nil {
		return profile, err
	}
	if profile.Max, err = stats.Max(data); err != nil {
		return profile, err
	}
	if profile.Median, err = stats.Median(data); err != nil {
		return profile, err
	}
	if profile.Q25, err = stats.Percentile(data, 25); err != nil {
		return profile, err
	}
	if profile.Q75, err = stats.Percentile(data, 75); err != nil {
		return profile, err
	}

	seen := make(map[float64]struct{}, len(data))
	for _, v := range data {
		seen[v] = struct{}{}
	}
	profile.Distinct = len(seen)
	profile.Skewness = calculateSkewness(data, profile.Mean, profile.StdDev)

	return profile, nil
}

// calculateSkewness computes sample skewness using the adjusted Fisher-Pearson coefficient
func calculateSkewness(data []float64, mean, stdDev float64) float64 {
	if len(data) < 3 || stdDev == 0 {
		return 0
	}

	n := float64(len(data))
	sumCubedDeviations := 0.0
	for _, x := range data {
		deviation := (x - mean) / stdDev
		sumCubedDeviations += deviation * deviation * deviation
	}

	// bias correction for sample skewness
	return sumCubedDeviations / n * math.Sqrt(n*(n-1)) / (n - 2)
}
