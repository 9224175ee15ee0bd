package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/rshade/txbench/internal/config"
	"github.com/rshade/txbench/internal/engine/batch"
	"github.com/rshade/txbench/internal/engine/txn"
	"github.com/rshade/txbench/internal/logging"
	"github.com/rshade/txbench/internal/report"
	"github.com/rshade/txbench/internal/tui"
)

// runFlags holds the benchmark overrides shared by `txbench` and `txbench run`.
type runFlags struct {
	total            int
	batchSize        int
	concurrency      int
	progressInterval int
	seed             uint64
	failureRate      float64
	output           string
	tui              bool
}

// register adds the benchmark flags to cmd.
func (f *runFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.IntVar(&f.total, "total", config.DefaultTotalCount, "number of transactions to simulate")
	fs.IntVar(&f.batchSize, "batch-size", batch.DefaultBatchSize, "transactions per batch")
	fs.IntVar(&f.concurrency, "concurrency", batch.DefaultConcurrency, "maximum batches in flight per wave")
	fs.IntVar(&f.progressInterval, "progress-interval", report.DefaultProgressInterval,
		"print a progress line every N transactions")
	fs.Uint64Var(&f.seed, "seed", 0, "seed for reproducible runs (random when unset)")
	fs.Float64Var(&f.failureRate, "failure-rate", txn.DefaultFailureRate, "probability that a transaction fails")
	fs.StringVarP(&f.output, "output", "o", string(report.FormatText), "summary format: text, json or table")
	fs.BoolVar(&f.tui, "tui", false, "show a live progress bar when stdout is a terminal")
}

// apply copies flags the user actually set onto cfg.
func (f *runFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	fs := cmd.Flags()
	if fs.Changed("total") {
		cfg.Benchmark.TotalCount = f.total
	}
	if fs.Changed("batch-size") {
		cfg.Benchmark.BatchSize = f.batchSize
	}
	if fs.Changed("concurrency") {
		cfg.Benchmark.Concurrency = f.concurrency
	}
	if fs.Changed("progress-interval") {
		cfg.Benchmark.ProgressInterval = f.progressInterval
	}
	if fs.Changed("seed") {
		seed := f.seed
		cfg.Workload.Seed = &seed
	}
	if fs.Changed("failure-rate") {
		cfg.Workload.FailureRate = f.failureRate
	}
	if fs.Changed("output") {
		cfg.Output.Format = f.output
	}
	if fs.Changed("tui") {
		cfg.Output.TUI = f.tui
	}
}

// NewRunCmd creates the run command that executes the benchmark.
func NewRunCmd() *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the transaction benchmark",
		Long: `Simulates total transactions split into fixed-size batches. Batches run
in waves of at most --concurrency; each wave finishes before the next one starts.
Simulated failures are reported and counted but never stop the run.

Press Ctrl+C to stop dispatching further waves; the summary covers the
transactions that completed.`,
		Example: `  # Default run
  txbench run

  # Reproducible run with a table summary
  txbench run --seed 42 --output table`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBenchmark(cmd, &flags)
		},
	}

	flags.register(cmd)

	return cmd
}

// runBenchmark executes one benchmark run with the effective configuration.
// Simulated failures and batch panics do not produce an error; only invalid
// configuration does.
func runBenchmark(cmd *cobra.Command, flags *runFlags) error {
	cfg := *config.GetGlobalConfig()
	flags.apply(cmd, &cfg)

	if err := cfg.Validate(); err != nil {
		return &ConfigError{Err: err}
	}
	format, err := report.ParseFormat(cfg.Output.Format)
	if err != nil {
		return &ConfigError{Err: err}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	runID := logging.GetOrGenerateRunID(ctx)
	log := logging.WithRunID(*logging.FromContext(ctx), runID)

	useTUI := cfg.Output.TUI && isWriterTerminal(cmd.OutOrStdout())

	var notifier txn.Notifier = txn.NewWriterNotifier(cmd.ErrOrStderr())
	if useTUI {
		// Failure lines would corrupt the bar; they are still counted.
		notifier = txn.NewWriterNotifier(io.Discard)
	}

	sim, err := txn.NewSimulator(cfg.Workload.Profile(),
		txn.WithSourceFactory(txn.NewSourceFactory(cfg.Workload.Seed)),
		txn.WithNotifier(notifier),
		txn.WithLogger(logging.ComponentLogger(log, "txn")),
	)
	if err != nil {
		return &ConfigError{Err: err}
	}

	var result *batch.Result
	execute := func(onProgress batch.ProgressCallback) error {
		sched, schedErr := batch.NewScheduler(cfg.Benchmark.BatchSize, cfg.Benchmark.Concurrency,
			batch.WithProgressCallback(onProgress),
			batch.WithLogger(logging.ComponentLogger(log, "scheduler")),
		)
		if schedErr != nil {
			return schedErr
		}
		log.Info().
			Int("total", cfg.Benchmark.TotalCount).
			Int("batch_size", sched.BatchSize()).
			Int("concurrency", sched.Concurrency()).
			Bool("seeded", cfg.Workload.Seed != nil).
			Msg("benchmark starting")
		var runErr error
		result, runErr = sched.Run(ctx, cfg.Benchmark.TotalCount, sim.ProcessBatch)
		return runErr
	}

	if useTUI {
		model := tui.NewProgressModel(runID, cfg.Benchmark.TotalCount, cancel)
		var final tui.ProgressModel
		final, err = tui.RunWithProgress(cmd.InOrStdin(), cmd.OutOrStdout(), model, execute)
		if final.Aborted() {
			log.Warn().Int("processed", final.Snapshot().ProcessedItems).Msg("benchmark stopped from the progress view")
		}
	} else {
		printer := report.NewProgressPrinter(cmd.OutOrStdout(), cfg.Benchmark.ProgressInterval)
		err = execute(printer.Observe)
	}

	interrupted := errors.Is(err, context.Canceled)
	if err != nil && !interrupted {
		return err
	}
	if interrupted {
		log.Warn().Msg("benchmark interrupted; remaining waves were not dispatched")
	}

	if result == nil {
		return errors.New("benchmark produced no result")
	}
	if batchErr := result.Err(); batchErr != nil {
		log.Warn().Err(batchErr).Int("failed_batches", result.FailedBatches()).Msg("some batches failed")
	}

	summary := report.NewSummary(runID, result, sim.Failures(), interrupted)
	log.Info().
		Int("processed", summary.Processed).
		Int64("units_handled", sim.Units()).
		Int64("failed_units", summary.FailedUnits).
		Float64("tps", summary.TPS).
		Msg("benchmark complete")

	return report.WriteSummary(cmd.OutOrStdout(), summary, format)
}
