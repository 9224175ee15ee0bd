package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rshade/txbench/internal/config"
	"github.com/rshade/txbench/internal/logging"
)

// isTerminal checks if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// isWriterTerminal reports whether w is a terminal. Buffers in tests never are.
func isWriterTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return isTerminal(f)
	}
	return false
}

// NewRootCmd creates the root Cobra command for the txbench CLI.
// Without a subcommand it runs the benchmark, like `txbench run`.
func NewRootCmd(ver string) *cobra.Command {
	return NewRootCmdWithEnv(ver, os.LookupEnv)
}

// NewRootCmdWithEnv creates the root command with an explicit env lookup for testability.
func NewRootCmdWithEnv(ver string, lookupEnv config.LookupEnvFunc) *cobra.Command {
	var (
		logResult *logging.LogPathResult
		flags     runFlags
	)

	cmd := &cobra.Command{
		Use:     "txbench",
		Short:   "Synthetic transaction throughput benchmark",
		Long:    "txbench: simulate batched transaction processing with bounded concurrency and report TPS",
		Version: ver,
		Example: rootCmdExample,
		Args:    cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(configPath, lookupEnv)
			if err != nil {
				return &ConfigError{Err: err}
			}
			if err := cfg.ApplyEnv(lookupEnv); err != nil {
				return &ConfigError{Err: err}
			}
			config.SetGlobalConfig(cfg)

			result := setupLogging(cmd)
			logResult = &result
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return cleanupLogging(cmd, logResult)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBenchmark(cmd, &flags)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	cmd.PersistentFlags().String("config", "", "path to config file (default ~/.txbench/config.yaml)")
	flags.register(cmd)

	cmd.AddCommand(NewRunCmd(), newConfigCmd(lookupEnv), NewVersionCmd(ver))

	return cmd
}

const rootCmdExample = `  # Run the default benchmark (100000 transactions, batches of 1000, 50 at a time)
  txbench

  # Small reproducible run with a JSON summary
  txbench run --total 10000 --batch-size 100 --concurrency 8 --seed 42 --output json

  # Live progress bar
  txbench run --tui

  # Write a config file with the defaults
  txbench config init`

// newConfigCmd creates the config command group with configuration subcommands.
func newConfigCmd(lookupEnv config.LookupEnvFunc) *cobra.Command {
	cmd := &cobra.Command{Use: "config", Short: "Configuration management commands"}
	cmd.AddCommand(NewConfigInitCmd(lookupEnv), NewConfigShowCmd(), NewConfigValidateCmd())
	return cmd
}

// ConfigError marks failures caused by invalid configuration or flags.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error: %v", e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
