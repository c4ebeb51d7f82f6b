package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"corrscreen/adapters/sqlite"
	"corrscreen/adapters/stats/engine"
	"corrscreen/app"
	"corrscreen/internal"
	"corrscreen/internal/config"
	"corrscreen/internal/errors"
	"corrscreen/internal/report"

	"github.com/spf13/cobra"
)

const pathPrompt = "Enter the path to your database file: "

func newAnalyzeCmd(cfgFile *string) *cobra.Command {
	var showAll bool

	cmd := &cobra.Command{
		Use:   "analyze [file]",
		Short: "Find and show the strongest significant correlations",
		Long: `Read a CSV or XLSX file, drop every row with a missing value, and evaluate the
Pearson correlation of every pair of numeric columns. Pairs significant at p < 0.05 are
ranked by |r| and the strongest are shown with their regression line, a scatter plot
and the first rows of data. With --plot-dir each shown pair is also saved as
correlation_<n>.png.

Without [file] the path is read from standard input.

Example: corrscreen analyze sales.csv --max-selected 5`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolvePath(args, cmd.InOrStdin(), cmd.OutOrStdout())
			if err != nil {
				return err
			}

			env, err := setup(cmd, *cfgFile)
			if err != nil {
				return err
			}
			defer env.Close()
			cfg := env.cfg

			rep, err := env.service.AnalyzeFile(cmd.Context(), app.AnalyzeRequest{
				Reader:    cfg.Reader(path),
				Selection: cfg.Selection(),
				HeadRows:  cfg.HeadRows,
			})
			if err != nil {
				return err
			}

			opts := report.DefaultOptions()
			opts.ShowAll = showAll
			if err := report.Render(cmd.OutOrStdout(), rep, cfg.Format, opts); err != nil {
				return err
			}

			if cfg.PlotDir != "" {
				paths, err := report.SaveFigures(cfg.PlotDir, rep.Plots)
				if err != nil {
					return err
				}
				env.logger.Info("saved %d figures to %s", len(paths), cfg.PlotDir)
			}
			return nil
		},
	}

	cmd.Flags().Int("max-selected", 0, "Maximum number of pairs to show (default 3)")
	cmd.Flags().Int("min-rows", 0, "Minimum rows needed to show a pair (default 5)")
	cmd.Flags().Int("head-rows", 0, "Rows of data printed per pair (default 25)")
	cmd.Flags().String("plot-dir", "", "Directory to save a PNG scatter plot per shown pair")
	cmd.Flags().BoolVar(&showAll, "all", false, "Also list every evaluated pair")

	return cmd
}

func newPairsCmd(cfgFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "pairs [file]",
		Short: "Summarise the numeric columns and list every pair with its correlation",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolvePath(args, cmd.InOrStdin(), cmd.OutOrStdout())
			if err != nil {
				return err
			}

			env, err := setup(cmd, *cfgFile)
			if err != nil {
				return err
			}
			defer env.Close()
			cfg := env.cfg

			rep, err := env.service.AnalyzeFile(cmd.Context(), app.AnalyzeRequest{
				Reader:    cfg.Reader(path),
				Selection: cfg.Selection(),
				HeadRows:  cfg.HeadRows,
			})
			if err != nil {
				return err
			}

			if cfg.Format == config.FormatJSON {
				return report.RenderJSON(cmd.OutOrStdout(), rep)
			}
			report.RenderProfiles(cmd.OutOrStdout(), rep.Profiles)
			report.RenderResults(cmd.OutOrStdout(), rep.Analysis.Results)
			return nil
		},
	}
}

// runtimeEnv is everything a command needs after configuration
type runtimeEnv struct {
	cfg     *config.Config
	logger  *internal.Logger
	service *app.CorrelationService
	ledger  *sqlite.RunLedger // nil unless configured
}

// Close releases the ledger and flushes the logger
func (e *runtimeEnv) Close() {
	if e.ledger != nil {
		if err := e.ledger.Close(); err != nil {
			e.logger.Warn("failed to close ledger: %v", err)
		}
	}
	_ = e.logger.Sync()
}

// setup loads configuration and wires the logger, engine, ledger and service
func setup(cmd *cobra.Command, cfgFile string) (*runtimeEnv, error) {
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return nil, err
	}

	logger := internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel))
	statsEngine := engine.NewStatsEngine(
		engine.WithWorkers(cfg.Workers),
		engine.WithLogger(logger),
	)
	env := &runtimeEnv{
		cfg:     cfg,
		logger:  logger,
		service: app.NewCorrelationService(statsEngine, logger),
	}

	if cfg.Ledger != "" {
		ledger, err := sqlite.Open(cmd.Context(), cfg.Ledger)
		if err != nil {
			_ = logger.Sync()
			return nil, err
		}
		env.ledger = ledger
		env.service.WithLedger(ledger)
	}
	return env, nil
}

// resolvePath returns the file argument, or prompts for it on in
func resolvePath(args []string, in io.Reader, out io.Writer) (string, error) {
	if len(args) > 0 && strings.TrimSpace(args[0]) != "" {
		return strings.TrimSpace(args[0]), nil
	}

	_, _ = fmt.Fprint(out, pathPrompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", errors.IOError("stdin", err)
	}
	path := strings.TrimSpace(line)
	if path == "" {
		return "", errors.InvalidInput("no file path given")
	}
	return path, nil
}
