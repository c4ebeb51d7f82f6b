package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"corrscreen/internal/config"

	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "corrscreen",
		Short: "Screen a dataset for significant pairwise linear correlations",
		Long: `corrscreen computes the Pearson correlation of every pair of numeric columns in a
CSV or XLSX file, keeps the pairs significant at p < 0.05 and shows the strongest few
with their regression line, a scatter plot and the first rows of data.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default ./corrscreen.yaml or ~/.corrscreen/corrscreen.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: error, warn, info, debug, trace")
	rootCmd.PersistentFlags().String("format", config.FormatText, "Output format: text or json")
	rootCmd.PersistentFlags().Int("workers", 0, "Pairs evaluated concurrently (default: number of CPUs)")
	rootCmd.PersistentFlags().String("sheet", "", "XLSX sheet to read (default: first sheet)")
	rootCmd.PersistentFlags().String("delimiter", "", "CSV delimiter (default: comma, tab for .tsv)")
	rootCmd.PersistentFlags().String("ledger", "", "SQLite file recording every run (disabled when empty)")

	rootCmd.AddCommand(
		newAnalyzeCmd(&cfgFile),
		newPairsCmd(&cfgFile),
		newRunsCmd(&cfgFile),
		newVersionCmd(),
	)

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "corrscreen %s\n", version)
		},
	}
}
