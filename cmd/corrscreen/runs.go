package main

import (
	"encoding/json"

	"corrscreen/domain/core"
	"corrscreen/internal/config"
	"corrscreen/internal/errors"
	"corrscreen/internal/report"

	"github.com/spf13/cobra"
)

func newRunsCmd(cfgFile *string) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List runs recorded in the ledger",
		Long: `List the analysis runs recorded in the SQLite ledger given by --ledger
(or CORRSCREEN_LEDGER), newest first.

Example: corrscreen runs --ledger runs.db --limit 10`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := ledgerEnv(cmd, *cfgFile)
			if err != nil {
				return err
			}
			defer env.Close()

			runs, err := env.ledger.ListRuns(cmd.Context(), limit)
			if err != nil {
				return errors.Wrap(err, "failed to list runs")
			}
			if env.cfg.Format == config.FormatJSON {
				return writeJSON(cmd, runs)
			}
			report.RenderRuns(cmd.OutOrStdout(), runs)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to list (0 for all)")

	cmd.AddCommand(&cobra.Command{
		Use:   "show [run-id]",
		Short: "Show one recorded run with its selected pairs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runID, err := core.ParseRunID(args[0])
			if err != nil {
				return errors.InvalidInput(err.Error())
			}

			env, err := ledgerEnv(cmd, *cfgFile)
			if err != nil {
				return err
			}
			defer env.Close()

			run, err := env.ledger.GetRun(cmd.Context(), runID)
			if err != nil {
				return err
			}
			if env.cfg.Format == config.FormatJSON {
				return writeJSON(cmd, run)
			}
			report.RenderRun(cmd.OutOrStdout(), run)
			return nil
		},
	})

	return cmd
}

// ledgerEnv sets up a runtime that must have a ledger
func ledgerEnv(cmd *cobra.Command, cfgFile string) (*runtimeEnv, error) {
	env, err := setup(cmd, cfgFile)
	if err != nil {
		return nil, err
	}
	if env.ledger == nil {
		env.Close()
		return nil, errors.ConfigInvalid("no ledger configured; pass --ledger or set CORRSCREEN_LEDGER")
	}
	return env, nil
}

func writeJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
