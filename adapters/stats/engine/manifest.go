package engine

import (
	"fmt"
	"sort"

	"corrscreen/domain/core"
	"corrscreen/domain/correlation"
)

// RunManifest captures the inputs and outcome counts of one analysis run
type RunManifest struct {
	RunID            core.RunID                  `json:"run_id"`
	TableName        string                      `json:"table_name"`
	TableFingerprint core.Hash                   `json:"table_fingerprint"`
	RowCount         int                         `json:"row_count"`
	ColumnCount      int                         `json:"column_count"`
	Config           correlation.SelectionConfig `json:"config"`
	PairsEvaluated   int                         `json:"pairs_evaluated"`
	OutcomeCounts    map[correlation.Outcome]int `json:"outcome_counts"`
	SelectedCount    int                         `json:"selected_count"`
	NoticeCount      int                         `json:"notice_count"`
	RuntimeMs        int64                       `json:"runtime_ms"`
	Fingerprint      core.Hash                   `json:"fingerprint"`
	CreatedAt        core.Timestamp              `json:"created_at"`
}

// NewRunManifest creates a manifest for a run over the given table
func NewRunManifest(tableName string, tableFingerprint core.Hash, rows, columns int, cfg correlation.SelectionConfig) *RunManifest {
	return &RunManifest{
		RunID:            core.NewRunID(),
		TableName:        tableName,
		TableFingerprint: tableFingerprint,
		RowCount:         rows,
		ColumnCount:      columns,
		Config:           cfg,
		OutcomeCounts:    make(map[correlation.Outcome]int),
		CreatedAt:        core.Now(),
	}
}

// RecordOutcome counts one evaluated pair
func (m *RunManifest) RecordOutcome(outcome correlation.Outcome) {
	m.OutcomeCounts[outcome]++
	m.PairsEvaluated++
}

// SetSelection records the selection totals
func (m *RunManifest) SetSelection(sel correlation.Selection) {
	m.SelectedCount = len(sel.Selected)
	m.NoticeCount = len(sel.Notices)
}

// SetRuntime sets the execution time
func (m *RunManifest) SetRuntime(ms int64) {
	m.RuntimeMs = ms
}

// ComputeFingerprint hashes everything that determines the run's output.
// Two runs over the same table and config share a fingerprint.
func (m *RunManifest) ComputeFingerprint() core.Hash {
	var outcomes []string
	for outcome, count := range m.OutcomeCounts {
		outcomes = append(outcomes, fmt.Sprintf("%s=%d", outcome, count))
	}
	sort.Strings(outcomes)

	data := fmt.Sprintf("%s|%d|%d|%g|%d|%d|%d|%v|%d|%d",
		m.TableFingerprint,
		m.RowCount,
		m.ColumnCount,
		m.Config.SignificanceThreshold,
		m.Config.MaxSelected,
		m.Config.MinRowsForPlot,
		m.PairsEvaluated,
		outcomes,
		m.SelectedCount,
		m.NoticeCount,
	)

	m.Fingerprint = core.NewHash([]byte(data))
	return m.Fingerprint
}
