package ports

import (
	"context"
	"time"

	"corrscreen/domain/core"
	"corrscreen/domain/correlation"
)

// RunRecord is the persisted outcome of one screening run
type RunRecord struct {
	RunID            core.RunID           `db:"run_id" json:"run_id"`
	Source           string               `db:"source" json:"source"`
	TableFingerprint string               `db:"table_fingerprint" json:"table_fingerprint"`
	Fingerprint      string               `db:"fingerprint" json:"fingerprint"`
	RowCount         int                  `db:"row_count" json:"row_count"`
	ColumnCount      int                  `db:"column_count" json:"column_count"`
	PairsEvaluated   int                  `db:"pairs_evaluated" json:"pairs_evaluated"`
	SelectedCount    int                  `db:"selected_count" json:"selected_count"`
	NoticeCount      int                  `db:"notice_count" json:"notice_count"`
	RuntimeMs        int64                `db:"runtime_ms" json:"runtime_ms"`
	CreatedAt        time.Time            `db:"created_at" json:"created_at"`
	Selected         []correlation.Result `db:"-" json:"selected"`
}

// RunLedgerWriter provides append-only write access to run records
type RunLedgerWriter interface {
	StoreRun(ctx context.Context, record RunRecord) error
}

// RunLedgerReader provides read-only access to stored runs
type RunLedgerReader interface {
	GetRun(ctx context.Context, runID core.RunID) (*RunRecord, error)
	// ListRuns returns runs newest first, without their selected pairs
	ListRuns(ctx context.Context, limit int) ([]RunRecord, error)
}

// RunLedger combines read and write access
type RunLedger interface {
	RunLedgerWriter
	RunLedgerReader
}
