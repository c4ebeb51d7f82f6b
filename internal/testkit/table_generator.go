package testkit

import (
	"encoding/csv"
	"fmt"
	"math/bits"
	"math/rand"
	"os"
	"strconv"

	"corrscreen/domain/core"
	"corrscreen/domain/dataset"
)

// ColumnKind selects how a synthetic column is produced
type ColumnKind string

const (
	KindBase     ColumnKind = "base"     // uniform draws
	KindLinear   ColumnKind = "linear"   // slope*source + intercept + noise
	KindNoise    ColumnKind = "noise"    // independent normal draws
	KindConstant ColumnKind = "constant" // a single repeated value
)

// ColumnSpec describes one synthetic column
type ColumnSpec struct {
	Key       core.VariableKey `json:"key"`
	Kind      ColumnKind       `json:"kind"`
	Source    core.VariableKey `json:"source,omitempty"`
	Slope     float64          `json:"slope,omitempty"`
	Intercept float64          `json:"intercept,omitempty"`
	NoiseSD   float64          `json:"noise_sd,omitempty"`
	Min       float64          `json:"min,omitempty"`
	Max       float64          `json:"max,omitempty"`
	Value     float64          `json:"value,omitempty"`
}

// TableGeneratorConfig configures the synthetic table generator
type TableGeneratorConfig struct {
	Name    string       `json:"name"`
	Rows    int          `json:"rows"`
	Seed    int64        `json:"seed"`
	Columns []ColumnSpec `json:"columns"`
}

// DefaultTableConfig returns a marketing-style table with two strong linear
// relationships, one independent column and one constant column.
func DefaultTableConfig() TableGeneratorConfig {
	return TableGeneratorConfig{
		Name: "marketing",
		Rows: 200,
		Seed: 42,
		Columns: []ColumnSpec{
			{Key: "ad_spend", Kind: KindBase, Min: 100, Max: 1000},
			{Key: "revenue", Kind: KindLinear, Source: "ad_spend", Slope: 3, Intercept: 10, NoiseSD: 50},
			{Key: "store_temp", Kind: KindNoise, NoiseSD: 4, Intercept: 21},
			{Key: "returns", Kind: KindLinear, Source: "ad_spend", Slope: -0.8, Intercept: 900, NoiseSD: 60},
			{Key: "tax_rate", Kind: KindConstant, Value: 0.2},
		},
	}
}

// TableGenerator produces deterministic synthetic tables
type TableGenerator struct {
	config TableGeneratorConfig
	rng    *rand.Rand
}

// NewTableGenerator creates a new table generator
func NewTableGenerator(config TableGeneratorConfig) *TableGenerator {
	return &TableGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Generate builds the table. Linear columns must name a source defined earlier.
func (g *TableGenerator) Generate() (*dataset.Table, error) {
	table := dataset.NewTable(g.config.Name)
	for _, spec := range g.config.Columns {
		values, err := g.column(table, spec)
		if err != nil {
			return nil, err
		}
		if err := table.AddColumn(spec.Key, values); err != nil {
			return nil, err
		}
	}
	return table, nil
}

func (g *TableGenerator) column(table *dataset.Table, spec ColumnSpec) ([]float64, error) {
	n := g.config.Rows
	values := make([]float64, n)

	switch spec.Kind {
	case KindBase:
		for i := range values {
			values[i] = spec.Min + g.rng.Float64()*(spec.Max-spec.Min)
		}
	case KindLinear:
		src, ok := table.GetColumnData(spec.Source)
		if !ok {
			return nil, fmt.Errorf("column %s: %w", spec.Key, core.NewColumnNotFoundError(spec.Source))
		}
		for i := range values {
			values[i] = spec.Slope*src[i] + spec.Intercept + g.rng.NormFloat64()*spec.NoiseSD
		}
	case KindNoise:
		for i := range values {
			values[i] = spec.Intercept + g.rng.NormFloat64()*spec.NoiseSD
		}
	case KindConstant:
		for i := range values {
			values[i] = spec.Value
		}
	default:
		return nil, fmt.Errorf("column %s: unknown kind %q", spec.Key, spec.Kind)
	}
	return values, nil
}

// OrthogonalTable returns cols mutually uncorrelated +/-1 columns of 8 rows
// taken from a Sylvester Hadamard matrix. Every pair has r == 0 exactly.
func OrthogonalTable(cols int) (*dataset.Table, error) {
	const order = 8
	if cols < 1 || cols >= order {
		return nil, fmt.Errorf("orthogonal table supports 1..%d columns, got %d", order-1, cols)
	}

	table := dataset.NewTable("orthogonal")
	for k := 1; k <= cols; k++ {
		values := make([]float64, order)
		for j := range values {
			values[j] = 1
			if bits.OnesCount(uint(k&j))%2 == 1 {
				values[j] = -1
			}
		}
		if err := table.AddColumn(core.VariableKey(fmt.Sprintf("h%d", k)), values); err != nil {
			return nil, err
		}
	}
	return table, nil
}

// Records renders a table as CSV records with a header row
func Records(table *dataset.Table) [][]string {
	keys := table.VariableKeys()
	records := make([][]string, 0, table.RowCount()+1)

	header := make([]string, len(keys))
	for i, k := range keys {
		header[i] = k.String()
	}
	records = append(records, header)

	for row := 0; row < table.RowCount(); row++ {
		record := make([]string, len(keys))
		for i, k := range keys {
			values, _ := table.GetColumnData(k)
			record[i] = strconv.FormatFloat(values[row], 'g', -1, 64)
		}
		records = append(records, record)
	}
	return records
}

// WriteCSV writes records to path
func WriteCSV(path string, records [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(records); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
