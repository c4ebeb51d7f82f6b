package sqlite

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"

	"corrscreen/domain/core"
	"corrscreen/domain/correlation"
	"corrscreen/internal/errors"
	"corrscreen/ports"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id            TEXT PRIMARY KEY,
	source            TEXT NOT NULL,
	table_fingerprint TEXT NOT NULL,
	fingerprint       TEXT NOT NULL,
	row_count         INTEGER NOT NULL,
	column_count      INTEGER NOT NULL,
	pairs_evaluated   INTEGER NOT NULL,
	selected_count    INTEGER NOT NULL,
	notice_count      INTEGER NOT NULL,
	runtime_ms        INTEGER NOT NULL,
	created_at        TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS selected_pairs (
	run_id      TEXT NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
	pair_rank   INTEGER NOT NULL,
	x           TEXT NOT NULL,
	y           TEXT NOT NULL,
	coefficient REAL NOT NULL,
	p_value     TEXT NOT NULL,
	raw_p_value REAL NOT NULL,
	row_count   INTEGER NOT NULL,
	PRIMARY KEY (run_id, pair_rank)
);
`

// RunLedger stores run records in a SQLite database file
type RunLedger struct {
	db *sqlx.DB
}

// selectedPairRow is one row of selected_pairs
type selectedPairRow struct {
	Rank        int     `db:"pair_rank"`
	X           string  `db:"x"`
	Y           string  `db:"y"`
	Coefficient float64 `db:"coefficient"`
	PValue      string  `db:"p_value"`
	RawPValue   float64 `db:"raw_p_value"`
	RowCount    int     `db:"row_count"`
}

// Open opens (creating if needed) the ledger at path and applies the schema
func Open(ctx context.Context, path string) (*RunLedger, error) {
	db, err := sqlx.ConnectContext(ctx, "sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, errors.IOError(path, err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "failed to migrate ledger %s", path)
	}
	return &RunLedger{db: db}, nil
}

// NewRunLedger wraps an already migrated database
func NewRunLedger(db *sqlx.DB) *RunLedger {
	return &RunLedger{db: db}
}

var _ ports.RunLedger = (*RunLedger)(nil)

// Close closes the database
func (l *RunLedger) Close() error {
	return l.db.Close()
}

// StoreRun inserts the run and its selected pairs in one transaction
func (l *RunLedger) StoreRun(ctx context.Context, record ports.RunRecord) error {
	tx, err := l.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO runs (run_id, source, table_fingerprint, fingerprint, row_count, column_count,
			pairs_evaluated, selected_count, notice_count, runtime_ms, created_at)
		VALUES (:run_id, :source, :table_fingerprint, :fingerprint, :row_count, :column_count,
			:pairs_evaluated, :selected_count, :notice_count, :runtime_ms, :created_at)
	`, record)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", record.RunID, err)
	}

	for i, res := range record.Selected {
		row := selectedPairRow{
			Rank:        i + 1,
			X:           res.Pair.X.String(),
			Y:           res.Pair.Y.String(),
			Coefficient: res.Coefficient,
			PValue:      res.PValue.StringFixed(correlation.PValuePlaces),
			RawPValue:   res.RawPValue,
			RowCount:    res.RowCount,
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO selected_pairs (run_id, pair_rank, x, y, coefficient, p_value, raw_p_value, row_count)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, record.RunID, row.Rank, row.X, row.Y, row.Coefficient, row.PValue, row.RawPValue, row.RowCount)
		if err != nil {
			return fmt.Errorf("insert pair %d of run %s: %w", row.Rank, record.RunID, err)
		}
	}

	return tx.Commit()
}

// GetRun retrieves a run with its selected pairs in rank order
func (l *RunLedger) GetRun(ctx context.Context, runID core.RunID) (*ports.RunRecord, error) {
	var record ports.RunRecord
	err := l.db.GetContext(ctx, &record, `
		SELECT run_id, source, table_fingerprint, fingerprint, row_count, column_count,
			pairs_evaluated, selected_count, notice_count, runtime_ms, created_at
		FROM runs
		WHERE run_id = ?
	`, runID)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NotFound(fmt.Sprintf("run %s", runID))
	}
	if err != nil {
		return nil, err
	}

	var rows []selectedPairRow
	err = l.db.SelectContext(ctx, &rows, `
		SELECT pair_rank, x, y, coefficient, p_value, raw_p_value, row_count
		FROM selected_pairs
		WHERE run_id = ?
		ORDER BY pair_rank
	`, runID)
	if err != nil {
		return nil, err
	}

	record.Selected = make([]correlation.Result, 0, len(rows))
	for _, row := range rows {
		p, err := decimal.NewFromString(row.PValue)
		if err != nil {
			return nil, fmt.Errorf("run %s pair %d: %w", runID, row.Rank, err)
		}
		record.Selected = append(record.Selected, correlation.Result{
			Pair:        correlation.ColumnPair{X: core.VariableKey(row.X), Y: core.VariableKey(row.Y)},
			Coefficient: row.Coefficient,
			PValue:      p,
			Outcome:     correlation.OutcomeSignificant,
			RawPValue:   row.RawPValue,
			RowCount:    row.RowCount,
		})
	}
	return &record, nil
}

// ListRuns returns stored runs newest first. A limit <= 0 returns all runs.
func (l *RunLedger) ListRuns(ctx context.Context, limit int) ([]ports.RunRecord, error) {
	query := `
		SELECT run_id, source, table_fingerprint, fingerprint, row_count, column_count,
			pairs_evaluated, selected_count, notice_count, runtime_ms, created_at
		FROM runs
		ORDER BY created_at DESC, run_id DESC
	`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	records := []ports.RunRecord{}
	if err := l.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, err
	}
	return records, nil
}
