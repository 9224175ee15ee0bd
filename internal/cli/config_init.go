package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rshade/txbench/internal/config"
)

// NewConfigInitCmd creates the config init command for initializing configuration.
// lookupEnv resolves TXBENCH_HOME and TXBENCH_CONFIG for the default location.
func NewConfigInitCmd(lookupEnv config.LookupEnvFunc) *cobra.Command {
	var (
		force bool
		path  string
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration file with default values",
		Long: `Creates a new configuration file with default values.

The file is written to ~/.txbench/config.yaml unless TXBENCH_HOME,
TXBENCH_CONFIG or --path point elsewhere.`,
		Example: `  # Create the default configuration
  txbench config init

  # Write to a specific file, overwriting it
  txbench config init --path ./bench.yaml --force`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return initConfig(cmd, config.NewWithEnv(lookupEnv), path, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing configuration file")
	cmd.Flags().StringVar(&path, "path", "", "file to write (default ~/.txbench/config.yaml)")

	return cmd
}

// initConfig writes the default configuration cfg to path or its default location.
func initConfig(cmd *cobra.Command, cfg *config.Config, path string, force bool) error {
	if path != "" {
		cfg.SetConfigPath(path)
	}

	// Check if config already exists and force isn't set
	if !force {
		if _, err := os.Stat(cfg.ConfigPath()); err == nil {
			return errors.New("configuration file already exists, use --force to overwrite")
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("cannot access config path %s: %w", cfg.ConfigPath(), err)
		}
	}

	if err := cfg.Save(); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	cmd.Printf("Configuration initialized successfully\n")
	cmd.Printf("Configuration file: %s\n", cfg.ConfigPath())

	return nil
}
