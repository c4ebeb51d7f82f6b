package dataset

import (
	"fmt"

	"corrscreen/domain/core"
)

// Table is the canonical input to correlation screening: named numeric columns
// aligned by row index, already free of missing values.
type Table struct {
	Name    string
	columns []Column
	index   map[core.VariableKey]int
	rows    int
	labels  []int // source row positions; nil means 0..rows-1
}

// Column is one numeric column of a Table
type Column struct {
	Key    core.VariableKey
	Values []float64
}

// NewTable creates an empty table
func NewTable(name string) *Table {
	return &Table{
		Name:  name,
		index: make(map[core.VariableKey]int),
		rows:  -1,
	}
}

// FromColumns builds a table from columns in the given order
func FromColumns(name string, columns ...Column) (*Table, error) {
	t := NewTable(name)
	for _, col := range columns {
		if err := t.AddColumn(col.Key, col.Values); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// AddColumn appends a column. The first column fixes the row count.
func (t *Table) AddColumn(key core.VariableKey, values []float64) error {
	if _, exists := t.index[key]; exists {
		return fmt.Errorf("%w: %s", core.ErrDuplicateColumn, key)
	}
	if t.rows >= 0 && len(values) != t.rows {
		return core.NewLengthMismatchError(fmt.Sprintf("column %s", key), t.rows, len(values))
	}
	if t.rows < 0 {
		t.rows = len(values)
	}

	owned := make([]float64, len(values))
	copy(owned, values)

	t.index[key] = len(t.columns)
	t.columns = append(t.columns, Column{Key: key, Values: owned})
	return nil
}

// GetColumn returns the column position for a variable key
func (t *Table) GetColumn(key core.VariableKey) (int, bool) {
	i, ok := t.index[key]
	return i, ok
}

// GetColumnData returns the values of a column. Callers must not modify the slice.
func (t *Table) GetColumnData(key core.VariableKey) ([]float64, bool) {
	i, ok := t.index[key]
	if !ok {
		return nil, false
	}
	return t.columns[i].Values, true
}

// VariableKeys returns the column keys in position order
func (t *Table) VariableKeys() []core.VariableKey {
	keys := make([]core.VariableKey, len(t.columns))
	for i, col := range t.columns {
		keys[i] = col.Key
	}
	return keys
}

// RowCount returns the number of aligned rows
func (t *Table) RowCount() int {
	if t.rows < 0 {
		return 0
	}
	return t.rows
}

// ColumnCount returns the number of columns
func (t *Table) ColumnCount() int {
	return len(t.columns)
}

// SetRowLabels records the source row position of every row, e.g. the row
// numbers that survived cleaning. The label count must match the row count.
func (t *Table) SetRowLabels(labels []int) error {
	if len(labels) != t.RowCount() {
		return core.NewLengthMismatchError("row labels", t.RowCount(), len(labels))
	}
	t.labels = make([]int, len(labels))
	copy(t.labels, labels)
	return nil
}

// RowLabels returns the source row position of every row
func (t *Table) RowLabels() []int {
	labels := make([]int, t.RowCount())
	for i := range labels {
		labels[i] = t.RowLabel(i)
	}
	return labels
}

// RowLabel returns the source row position of row i
func (t *Table) RowLabel(i int) int {
	if t.labels == nil {
		return i
	}
	return t.labels[i]
}

// Head returns the first n aligned rows of two columns
func (t *Table) Head(x, y core.VariableKey, n int) ([][2]float64, error) {
	xs, ok := t.GetColumnData(x)
	if !ok {
		return nil, core.NewColumnNotFoundError(x)
	}
	ys, ok := t.GetColumnData(y)
	if !ok {
		return nil, core.NewColumnNotFoundError(y)
	}
	if n > len(xs) || n < 0 {
		n = len(xs)
	}
	rows := make([][2]float64, n)
	for i := 0; i < n; i++ {
		rows[i] = [2]float64{xs[i], ys[i]}
	}
	return rows, nil
}

// Fingerprint hashes column names and values for run manifests
func (t *Table) Fingerprint() core.Hash {
	cols := make([][]float64, len(t.columns))
	for i, col := range t.columns {
		cols[i] = col.Values
	}
	return core.ComputeColumnsHash(t.VariableKeys(), cols)
}

// Validate ensures the table is internally consistent
func (t *Table) Validate() error {
	if len(t.columns) == 0 {
		return core.ErrNoNumericColumns
	}
	for _, col := range t.columns {
		if len(col.Values) != t.rows {
			return core.NewLengthMismatchError(fmt.Sprintf("column %s", col.Key), t.rows, len(col.Values))
		}
	}
	return nil
}
