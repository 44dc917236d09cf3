package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"perfgate/adapters/anomaly/heuristic"
	"perfgate/adapters/excel"
	"perfgate/app"
	"perfgate/internal"
	"perfgate/internal/config"
	"perfgate/internal/testkit"
)

func main() {
	// Missing .env is fine; env vars and defaults still apply.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "perfgate",
		Short: "Statistical regression gate for network performance metrics",
	}

	rootCmd.AddCommand(
		newAnalyzeCmd(),
		newDemoCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newAnalyzeCmd() *cobra.Command {
	var metrics []string
	var sheet string
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "analyze [file]",
		Short: "Compare measurement periods from an .xlsx or .csv file",
		Long: `Compare the first two period columns of a spreadsheet and emit the
integrated verdict as JSON.

Layout: first row holds period names, each column holds that period's
samples. The first two columns are the N-1/N comparison groups.

Example: perfgate analyze latency.xlsx --metric latency_p99`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			reader := excel.NewPeriodReader(args[0]).WithSheet(sheet)
			periods, err := reader.ReadPeriods()
			if err != nil {
				return err
			}

			if len(metrics) == 0 {
				metrics = []string{"metric"}
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			service := app.NewAnalysisService(cfg.Workflow, heuristic.NewDetector(), internal.DefaultLogger)
			result, err := service.Run(ctx, app.AnalysisRequest{Periods: periods, Metrics: metrics})
			if err != nil {
				return err
			}

			return printJSON(result)
		},
	}

	cmd.Flags().StringSliceVar(&metrics, "metric", nil, "metric names to compare (repeatable)")
	cmd.Flags().StringVar(&sheet, "sheet", "Sheet1", "worksheet name for .xlsx input")
	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall analysis timeout")
	return cmd
}

func newDemoCmd() *cobra.Command {
	var seed int64
	var shift float64

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run the pipeline on synthetic data",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			baseline := testkit.StableSeries(seed, 120, 100, 2)
			current := testkit.StableSeries(seed+1, 120, 100+shift, 2)

			service := app.NewAnalysisService(cfg.Workflow, heuristic.NewDetector(), internal.DefaultLogger)
			result, err := service.Run(cmd.Context(), app.AnalysisRequest{
				Periods:    testkit.TwoPeriodSet(baseline, current),
				Metrics:    []string{"demo_metric"},
				Timestamps: testkit.MinuteTimestamps(240),
			})
			if err != nil {
				return err
			}

			return printJSON(result)
		},
	}

	cmd.Flags().Int64Var(&seed, "seed", 42, "random seed for the synthetic series")
	cmd.Flags().Float64Var(&shift, "shift", 8, "mean shift injected into period N")
	return cmd
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
