package excel

import (
	"corrscreen/adapters/datareadiness/coercer"
	"corrscreen/domain/core"
	"corrscreen/domain/dataset"
)

// BuildReport summarises how raw data became a numeric table
type BuildReport struct {
	TotalRows      int                             `json:"total_rows"`
	DroppedRows    int                             `json:"dropped_rows"`
	NumericColumns []string                        `json:"numeric_columns"`
	SkippedColumns []string                        `json:"skipped_columns,omitempty"`
	Analyses       map[string]coercer.TypeAnalysis `json:"analyses"`
}

// TableBuilder infers the schema of raw data, removes incomplete rows and
// keeps the numeric columns
type TableBuilder struct {
	coercer *coercer.TypeCoercer
}

// NewTableBuilder creates a builder using the given coercion rules
func NewTableBuilder(config coercer.CoercionConfig) *TableBuilder {
	return &TableBuilder{coercer: coercer.NewTypeCoercer(config)}
}

// InferNumericColumns returns the positions of numeric columns, in order.
// Types are inferred over all rows, before any row is dropped.
func (b *TableBuilder) InferNumericColumns(raw *RawData) ([]int, map[string]coercer.TypeAnalysis) {
	analyses := make(map[string]coercer.TypeAnalysis, len(raw.Headers))
	var numeric []int
	for i, header := range raw.Headers {
		analysis := b.coercer.AnalyzeColumn(raw.Column(i))
		analyses[header] = analysis
		if analysis.RecommendedType == coercer.ColumnNumeric {
			numeric = append(numeric, i)
		}
	}
	return numeric, analyses
}

// KeptRows returns the positions of the rows that survive cleaning: no missing
// cell in any column, and every numeric cell parses. Stray text only reaches a
// numeric column when the numeric threshold is below 1.
func (b *TableBuilder) KeptRows(raw *RawData, numeric []int) []int {
	kept := make([]int, 0, len(raw.Rows))
	for r, row := range raw.Rows {
		if b.complete(row) && b.parses(row, numeric) {
			kept = append(kept, r)
		}
	}
	return kept
}

func (b *TableBuilder) complete(row []string) bool {
	for _, cell := range row {
		if b.coercer.IsMissing(cell) {
			return false
		}
	}
	return true
}

func (b *TableBuilder) parses(row []string, numeric []int) bool {
	for _, col := range numeric {
		if _, ok := b.coercer.ParseNumeric(row[col]); !ok {
			return false
		}
	}
	return true
}

// Build produces the cleaned numeric table. A table with no numeric columns
// is returned empty, not as an error. Surviving rows keep their source
// positions as row labels.
func (b *TableBuilder) Build(name string, raw *RawData) (*dataset.Table, *BuildReport, error) {
	numeric, analyses := b.InferNumericColumns(raw)
	kept := b.KeptRows(raw, numeric)

	report := &BuildReport{
		TotalRows:   len(raw.Rows),
		DroppedRows: len(raw.Rows) - len(kept),
		Analyses:    analyses,
	}

	isNumeric := make(map[int]bool, len(numeric))
	for _, i := range numeric {
		isNumeric[i] = true
	}
	for i, header := range raw.Headers {
		if !isNumeric[i] {
			report.SkippedColumns = append(report.SkippedColumns, header)
		}
	}

	table := dataset.NewTable(name)
	for _, col := range numeric {
		values := make([]float64, len(kept))
		for i, r := range kept {
			values[i], _ = b.coercer.ParseNumeric(raw.Rows[r][col])
		}
		if err := table.AddColumn(core.VariableKey(raw.Headers[col]), values); err != nil {
			return nil, nil, err
		}
		report.NumericColumns = append(report.NumericColumns, raw.Headers[col])
	}
	if len(numeric) > 0 {
		if err := table.SetRowLabels(kept); err != nil {
			return nil, nil, err
		}
	}

	return table, report, nil
}
