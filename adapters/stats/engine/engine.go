package engine

import (
	"context"
	"runtime"
	"time"

	"corrscreen/domain/core"
	"corrscreen/domain/correlation"
	"corrscreen/domain/dataset"
	"corrscreen/internal"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// StatsEngine runs correlation screening over a table
type StatsEngine struct {
	selector *Selector
	logger   *internal.Logger
	workers  int
}

// Option configures a StatsEngine
type Option func(*StatsEngine)

// WithWorkers bounds the number of pairs evaluated concurrently
func WithWorkers(n int) Option {
	return func(e *StatsEngine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithLogger sets the engine logger
func WithLogger(logger *internal.Logger) Option {
	return func(e *StatsEngine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewStatsEngine creates a new statistical engine
func NewStatsEngine(opts ...Option) *StatsEngine {
	e := &StatsEngine{
		logger:  internal.NewNopLogger(),
		workers: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.selector = NewSelector(e.logger)
	return e
}

// Analysis is the outcome of one screening run
type Analysis struct {
	Manifest  *RunManifest          `json:"manifest"`
	Results   []correlation.Result  `json:"results"` // every pair, strongest first
	Selection correlation.Selection `json:"selection"`
}

// Analyze evaluates every column pair, ranks the results and selects the
// strongest qualifying pairs.
func (e *StatsEngine) Analyze(ctx context.Context, table *dataset.Table, cfg correlation.SelectionConfig) (*Analysis, error) {
	startTime := time.Now()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}

	manifest := NewRunManifest(table.Name, table.Fingerprint(), table.RowCount(), table.ColumnCount(), cfg)
	logger := e.logger.With(zap.String("run_id", manifest.RunID.String()))
	logger.Debug("screening %d columns x %d rows (%d pairs)", table.ColumnCount(), table.RowCount(), PairCount(table.ColumnCount()))

	results, err := e.EvaluatePairs(ctx, table, cfg.SignificanceThreshold)
	if err != nil {
		return nil, err
	}
	for _, res := range results {
		manifest.RecordOutcome(res.Outcome)
	}

	selection, err := e.selector.Select(results, cfg)
	if err != nil {
		return nil, err
	}
	manifest.SetSelection(selection)
	manifest.SetRuntime(time.Since(startTime).Milliseconds())
	manifest.ComputeFingerprint()

	logger.Info("evaluated %d pairs: %d significant, %d not significant, %d degenerate; selected %d",
		manifest.PairsEvaluated,
		manifest.OutcomeCounts[correlation.OutcomeSignificant],
		manifest.OutcomeCounts[correlation.OutcomeNotSignificant],
		manifest.OutcomeCounts[correlation.OutcomeDegenerate],
		manifest.SelectedCount,
	)

	return &Analysis{
		Manifest:  manifest,
		Results:   RankByStrength(results),
		Selection: selection,
	}, nil
}

// EvaluatePairs evaluates all column pairs of the table and returns the
// results in enumeration order, regardless of how many workers ran them.
func (e *StatsEngine) EvaluatePairs(ctx context.Context, table *dataset.Table, threshold float64) ([]correlation.Result, error) {
	evaluator := NewPearsonEvaluator(threshold)
	pairs := EnumeratePairs(table.VariableKeys())
	results := make([]correlation.Result, len(pairs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i, pair := range pairs {
		i, pair := i, pair
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			x, ok := table.GetColumnData(pair.X)
			if !ok {
				return core.NewColumnNotFoundError(pair.X)
			}
			y, ok := table.GetColumnData(pair.Y)
			if !ok {
				return core.NewColumnNotFoundError(pair.Y)
			}

			res, err := evaluator.EvaluatePair(pair, x, y)
			if err != nil {
				return err
			}
			results[i] = res
			e.logger.Trace("%s: outcome=%s r=%.5f p=%s", pair, res.Outcome, res.Coefficient, res.PValue.StringFixed(correlation.PValuePlaces))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Selector exposes the engine's selector
func (e *StatsEngine) Selector() *Selector {
	return e.selector
}
