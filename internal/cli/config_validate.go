package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rshade/txbench/internal/config"
)

// NewConfigValidateCmd creates the config validate command for validating configuration.
func NewConfigValidateCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		Long: `Validates the effective configuration: the config file plus any
TXBENCH_* environment overrides.

This includes:
- Schema version compatibility
- Batch size, concurrency and progress interval bounds
- Workload delay range and failure rate
- Output and logging formats`,
		Example: `  # Validate current configuration
  txbench config validate

  # Validate and show detailed information
  txbench config validate --verbose`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigValidate(cmd, verbose)
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show detailed validation information")

	return cmd
}

// runConfigValidate executes the configuration validation logic.
func runConfigValidate(cmd *cobra.Command, verbose bool) error {
	cfg := config.GetGlobalConfig()

	if err := cfg.Validate(); err != nil {
		return &ConfigError{Err: fmt.Errorf("configuration validation failed: %w", err)}
	}

	cmd.Printf("Configuration is valid\n")

	if verbose {
		printVerboseDetails(cmd, cfg)
	}

	return nil
}

// printVerboseDetails prints detailed configuration information.
func printVerboseDetails(cmd *cobra.Command, cfg *config.Config) {
	cmd.Println()
	cmd.Println("Configuration details:")
	cmd.Printf("  Config file: %s\n", cfg.ConfigPath())
	cmd.Printf("  Total transactions: %d\n", cfg.Benchmark.TotalCount)
	cmd.Printf("  Batch size: %d\n", cfg.Benchmark.BatchSize)
	cmd.Printf("  Concurrency: %d\n", cfg.Benchmark.Concurrency)
	cmd.Printf("  Progress interval: %d\n", cfg.Benchmark.ProgressInterval)
	cmd.Printf("  Delay range: %d-%dus\n", cfg.Workload.MinDelayMicros, cfg.Workload.MaxDelayMicros)
	cmd.Printf("  Failure rate: %g\n", cfg.Workload.FailureRate)
	if cfg.Workload.Seed != nil {
		cmd.Printf("  Seed: %d\n", *cfg.Workload.Seed)
	} else {
		cmd.Println("  Seed: random")
	}
	cmd.Printf("  Output format: %s\n", cfg.Output.Format)
	cmd.Printf("  Logging level: %s\n", cfg.Logging.Level)
	cmd.Printf("  Log file: %s\n", cfg.Logging.File)
}
