// salesbench - File format benchmark for analytical workloads.
// Generates a synthetic sales dataset, writes it as Parquet, CSV, and
// a native DuckDB database, measures write time, size, and query
// latency per format, and emits a notebook report.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/oDuPrado/Benchmark-case/internal/model"
	"github.com/oDuPrado/Benchmark-case/internal/pipe"
	"github.com/oDuPrado/Benchmark-case/pkg/config"
	"github.com/oDuPrado/Benchmark-case/pkg/telemetry"
	"github.com/oDuPrado/Benchmark-case/pkg/tui"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

// CLI flags
var (
	configPath string
	rowsFlag   int
	seedFlag   int64
	outFlag    string
	noReuse    bool
	parallel   bool
	verbose    bool

	historyLimit int
	inspectPath  string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "salesbench",
	Short: "salesbench - Compare Parquet, CSV, and DuckDB storage",
	Long: `salesbench benchmarks three storage formats against the same synthetic
sales dataset: Apache Parquet, CSV, and a native DuckDB database file.

Each run writes the dataset in all three formats, executes a fixed
catalog of analytical queries against each, and renders a Jupyter
notebook report with the full comparison matrix.

Run without arguments to execute the benchmark with defaults
(1,000,000 rows, seed 42, output under data/).`,
	Version: fmt.Sprintf("%s (%s)", version, commit),
	RunE:    runBench,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full benchmark",
	Long: `Run the full benchmark: generate or reuse the dataset, write all three
format artifacts, execute the query catalog per format, and emit the
notebook report.

Examples:
  salesbench run
  salesbench run --rows 100000 --seed 7
  salesbench run --out /tmp/bench --no-reuse
  salesbench run --config bench.yaml --parallel-writes`,
	RunE: runBench,
}

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Inspect a format artifact",
	Long: `Open a previously written artifact through DuckDB and print row count
and aggregate sanity values. The format is detected from the file
extension (.parquet, .csv, .duckdb).

Examples:
  salesbench inspect -i data/sales.parquet
  salesbench inspect -i data/sales.duckdb`,
	RunE: runInspect,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded benchmark runs",
	RunE:  runHistory,
}

var queriesCmd = &cobra.Command{
	Use:   "queries",
	Short: "Print the fixed query catalog",
	RunE:  runQueries,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")

	for _, cmd := range []*cobra.Command{rootCmd, runCmd} {
		cmd.Flags().IntVar(&rowsFlag, "rows", 0, "Dataset size in rows (default from config)")
		cmd.Flags().Int64Var(&seedFlag, "seed", 0, "Generation seed (default from config)")
		cmd.Flags().StringVarP(&outFlag, "out", "o", "", "Output directory (default from config)")
		cmd.Flags().BoolVar(&noReuse, "no-reuse", false, "Regenerate the dataset even if a canonical artifact exists")
		cmd.Flags().BoolVar(&parallel, "parallel-writes", false, "Write the three formats concurrently")
	}

	inspectCmd.Flags().StringVarP(&inspectPath, "input", "i", "", "Artifact path (required)")
	inspectCmd.MarkFlagRequired("input")

	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "Number of runs to show (0 = all)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(queriesCmd)
}

// loadConfig builds the effective configuration from file, environment,
// and flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	if rowsFlag > 0 {
		cfg.Bench.Rows = rowsFlag
	}
	if seedFlag != 0 {
		cfg.Bench.Seed = seedFlag
	}
	if outFlag != "" {
		cfg.Bench.OutputDir = outFlag
	}
	if noReuse {
		cfg.Bench.Reuse = false
	}
	if parallel {
		cfg.Bench.ParallelWrites = true
	}

	return cfg, nil
}

// signalContext returns a context canceled on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nInterrupted, cleaning up...")
		cancel()
	}()

	return ctx, cancel
}

func runBench(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	tui.PrintHeader(version)

	if verbose {
		fmt.Printf("Rows:        %s\n", tui.FormatNumber(int64(cfg.Bench.Rows)))
		fmt.Printf("Seed:        %d\n", cfg.Bench.Seed)
		fmt.Printf("Output:      %s\n", cfg.Bench.OutputDir)
		fmt.Printf("Reuse:       %v\n", cfg.Bench.Reuse)
		fmt.Printf("Compression: %s\n", cfg.Writer.Compression)
		fmt.Println()
	}

	ctx, cancel := signalContext()
	defer cancel()

	tcfg := telemetry.DefaultConfig("salesbench", version)
	tcfg.Enabled = cfg.Telemetry.Enabled
	if cfg.Telemetry.Endpoint != "" {
		tcfg.Endpoint = cfg.Telemetry.Endpoint
	}
	tracer, shutdown, err := telemetry.Init(ctx, tcfg)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		sctx, scancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer scancel()
		shutdown(sctx)
	}()

	var bar *progressbar.ProgressBar
	hooks := pipe.Hooks{
		OnPhase: tui.PrintPhase,
		OnProgress: func(done, total int) {
			if bar == nil && total > 0 {
				bar = tui.ShowProgress(int64(total), "generating")
			}
			if bar != nil {
				bar.Set(done)
			}
		},
		OnArtifact: tui.PrintArtifact,
		OnCell:     tui.PrintCell,
	}

	res, err := pipe.New(cfg).WithHooks(hooks).WithTracer(tracer).Run(ctx)
	if err != nil {
		return fmt.Errorf("benchmark failed: %w", err)
	}

	tui.PrintSummary(res.Report, res.Output.NotebookPath, res.Elapsed)

	if verbose && len(res.ArchivedKeys) > 0 {
		fmt.Printf("Archived %d objects to s3://%s\n", len(res.ArchivedKeys), cfg.Archive.Bucket)
	}

	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	backend, err := pipe.OpenHistory(cfg)
	if err != nil {
		return fmt.Errorf("failed to open history backend: %w", err)
	}
	defer backend.Close()

	runs, err := backend.List(cmd.Context(), historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Println("No recorded runs.")
		return nil
	}

	fmt.Printf("%-36s  %-20s  %10s  %8s  %s\n", "RUN", "STARTED", "ROWS", "TIME", "ARTIFACTS")
	for _, run := range runs {
		ok := 0
		for _, a := range run.Artifacts {
			if a.OK {
				ok++
			}
		}
		fmt.Printf("%-36s  %-20s  %10s  %8s  %d/%d\n",
			run.ID,
			run.StartedAt.UTC().Format("2006-01-02 15:04:05"),
			tui.FormatNumber(int64(run.Rows)),
			tui.FormatDuration(run.Elapsed),
			ok, len(model.Formats()))
	}
	return nil
}
