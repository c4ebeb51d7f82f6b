package app

import (
	"context"
	stderrors "errors"
	"path/filepath"
	"strings"
	"time"

	"corrscreen/adapters/excel"
	"corrscreen/adapters/stats/engine"
	"corrscreen/domain/core"
	"corrscreen/domain/correlation"
	"corrscreen/domain/dataset"
	"corrscreen/internal"
	"corrscreen/internal/errors"
	"corrscreen/internal/profiling"
	"corrscreen/ports"

	"go.uber.org/zap"
)

// DefaultHeadRows is the number of aligned rows shown per selected pair
const DefaultHeadRows = 25

// CorrelationService reads a data file and screens its numeric columns
type CorrelationService struct {
	engine   *engine.StatsEngine
	profiler *profiling.Profiler
	ledger   ports.RunLedgerWriter // optional
	logger   *internal.Logger
}

// AnalyzeRequest defines the inputs for one screening run
type AnalyzeRequest struct {
	Reader    excel.ReaderConfig
	Selection correlation.SelectionConfig
	HeadRows  int
}

// PairPlot holds what presentation needs to draw one selected pair
type PairPlot struct {
	Index     int                `json:"index"` // 1-based position in the selection
	Result    correlation.Result `json:"result"`
	Slope     float64            `json:"slope"`
	Intercept float64            `json:"intercept"`
	Points    [][2]float64       `json:"-"`
	Head      [][2]float64       `json:"head"`
	HeadIndex []int              `json:"head_index"` // source row of each Head entry
}

// AnalysisReport contains the complete output of a screening run
type AnalysisReport struct {
	RunID     core.RunID                `json:"run_id"`
	Source    string                    `json:"source"`
	Build     *excel.BuildReport        `json:"build,omitempty"`
	Profiles  []profiling.ColumnProfile `json:"profiles"`
	Analysis  *engine.Analysis          `json:"analysis"`
	Plots     []PairPlot                `json:"plots"`
	RuntimeMs int64                     `json:"runtime_ms"`
}

// NewCorrelationService creates a correlation service
func NewCorrelationService(statsEngine *engine.StatsEngine, logger *internal.Logger) *CorrelationService {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &CorrelationService{
		engine:   statsEngine,
		profiler: profiling.NewProfiler(),
		logger:   logger,
	}
}

// WithLedger makes the service record every run in the given ledger
func (s *CorrelationService) WithLedger(ledger ports.RunLedgerWriter) *CorrelationService {
	s.ledger = ledger
	return s
}

// AnalyzeFile reads, cleans and screens the file named in the request
func (s *CorrelationService) AnalyzeFile(ctx context.Context, req AnalyzeRequest) (*AnalysisReport, error) {
	startTime := time.Now()

	raw, err := excel.NewDataReader(req.Reader, s.logger).ReadData()
	if err != nil {
		return nil, err
	}

	name := strings.TrimSuffix(filepath.Base(req.Reader.FilePath), filepath.Ext(req.Reader.FilePath))
	table, build, err := excel.NewTableBuilder(req.Reader.CoercionConfig).Build(name, raw)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to build table from %s", req.Reader.FilePath)
	}
	s.logger.Info("loaded %s: %d of %d rows kept, %d numeric columns",
		req.Reader.FilePath, table.RowCount(), build.TotalRows, table.ColumnCount())
	if len(build.SkippedColumns) > 0 {
		s.logger.Debug("non-numeric columns skipped: %s", strings.Join(build.SkippedColumns, ", "))
	}

	report, err := s.analyzeTable(ctx, table, req)
	if err != nil {
		return nil, err
	}
	report.Source = req.Reader.FilePath
	report.Build = build
	report.RuntimeMs = time.Since(startTime).Milliseconds()

	if err := s.record(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}

// AnalyzeTable screens an already cleaned table. A table without numeric
// columns produces an empty selection, not an error.
func (s *CorrelationService) AnalyzeTable(ctx context.Context, table *dataset.Table, req AnalyzeRequest) (*AnalysisReport, error) {
	report, err := s.analyzeTable(ctx, table, req)
	if err != nil {
		return nil, err
	}
	if err := s.record(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}

func (s *CorrelationService) analyzeTable(ctx context.Context, table *dataset.Table, req AnalyzeRequest) (*AnalysisReport, error) {
	startTime := time.Now()

	analysis, err := s.engine.Analyze(ctx, table, req.Selection)
	if stderrors.Is(err, core.ErrNoNumericColumns) {
		s.logger.Warn("%s has no numeric columns", table.Name)
		analysis, err = emptyAnalysis(table, req.Selection), nil
	}
	if err != nil {
		if core.IsContractError(err) {
			verr := errors.ValidationError(err.Error())
			verr.Cause = err
			return nil, verr
		}
		return nil, errors.Wrap(err, "correlation analysis failed")
	}

	profiles, err := s.profiler.ProfileTable(table)
	if err != nil {
		return nil, errors.Wrap(err, "column profiling failed")
	}
	for _, profile := range profiles {
		if profile.Constant() {
			s.logger.Debug("column %s is constant; its pairs are degenerate", profile.Key)
		}
	}

	headRows := req.HeadRows
	if headRows <= 0 {
		headRows = DefaultHeadRows
	}

	plots := make([]PairPlot, 0, len(analysis.Selection.Selected))
	for i, res := range analysis.Selection.Selected {
		plot, err := buildPlot(table, res, headRows)
		if err != nil {
			return nil, err
		}
		plot.Index = i + 1
		plots = append(plots, plot)
	}

	s.logger.With(zap.String("run_id", analysis.Manifest.RunID.String())).
		Debug("prepared %d plots, %d notices", len(plots), len(analysis.Selection.Notices))

	return &AnalysisReport{
		RunID:     analysis.Manifest.RunID,
		Source:    table.Name,
		Profiles:  profiles,
		Analysis:  analysis,
		Plots:     plots,
		RuntimeMs: time.Since(startTime).Milliseconds(),
	}, nil
}

// record stores the run when a ledger is configured
func (s *CorrelationService) record(ctx context.Context, report *AnalysisReport) error {
	if s.ledger == nil {
		return nil
	}
	manifest := report.Analysis.Manifest
	rec := ports.RunRecord{
		RunID:            report.RunID,
		Source:           report.Source,
		TableFingerprint: manifest.TableFingerprint.String(),
		Fingerprint:      manifest.Fingerprint.String(),
		RowCount:         manifest.RowCount,
		ColumnCount:      manifest.ColumnCount,
		PairsEvaluated:   manifest.PairsEvaluated,
		SelectedCount:    manifest.SelectedCount,
		NoticeCount:      manifest.NoticeCount,
		RuntimeMs:        report.RuntimeMs,
		CreatedAt:        manifest.CreatedAt.Time().UTC(),
		Selected:         report.Analysis.Selection.Selected,
	}
	if err := s.ledger.StoreRun(ctx, rec); err != nil {
		return errors.Wrapf(err, "failed to store run %s", report.RunID)
	}
	s.logger.Debug("stored run %s", report.RunID)
	return nil
}

func buildPlot(table *dataset.Table, res correlation.Result, headRows int) (PairPlot, error) {
	points, err := table.Head(res.Pair.X, res.Pair.Y, -1)
	if err != nil {
		return PairPlot{}, err
	}
	x := make([]float64, len(points))
	y := make([]float64, len(points))
	for i, p := range points {
		x[i], y[i] = p[0], p[1]
	}
	slope, intercept := engine.FitLine(x, y)

	head := points
	if len(head) > headRows {
		head = head[:headRows]
	}
	index := table.RowLabels()[:len(head)]
	return PairPlot{
		Result:    res,
		Slope:     slope,
		Intercept: intercept,
		Points:    points,
		Head:      head,
		HeadIndex: index,
	}, nil
}

func emptyAnalysis(table *dataset.Table, cfg correlation.SelectionConfig) *engine.Analysis {
	manifest := engine.NewRunManifest(table.Name, table.Fingerprint(), table.RowCount(), 0, cfg)
	manifest.ComputeFingerprint()
	return &engine.Analysis{
		Manifest:  manifest,
		Results:   []correlation.Result{},
		Selection: correlation.Selection{Selected: []correlation.Result{}},
	}
}
