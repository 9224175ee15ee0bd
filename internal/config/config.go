// Package config loads, validates and persists txbench configuration.
//
// Precedence, lowest to highest: built-in defaults, the YAML config file,
// TXBENCH_* environment variables, then CLI flags (applied by package cli).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"

	"github.com/rshade/txbench/internal/engine/batch"
	"github.com/rshade/txbench/internal/engine/txn"
	"github.com/rshade/txbench/internal/logging"
	"github.com/rshade/txbench/internal/report"
)

// SchemaVersion is written by `config init` and accepted by SupportedSchema.
const SchemaVersion = "1.0.0"

// SupportedSchema is the semver constraint config files must satisfy.
const SupportedSchema = "^1"

// DefaultTotalCount is the number of simulated transactions per run.
const DefaultTotalCount = 100_000

const configFileMode = 0o600

// Config is the complete txbench configuration.
type Config struct {
	Version   string          `yaml:"version"`
	Benchmark BenchmarkConfig `yaml:"benchmark"`
	Workload  WorkloadConfig  `yaml:"workload"`
	Output    OutputConfig    `yaml:"output"`
	Logging   LoggingConfig   `yaml:"logging"`

	configPath string
}

// BenchmarkConfig holds the scheduler constants.
type BenchmarkConfig struct {
	TotalCount       int `yaml:"total_count"`
	BatchSize        int `yaml:"batch_size"`
	Concurrency      int `yaml:"concurrency"`
	ProgressInterval int `yaml:"progress_interval"`
}

// WorkloadConfig holds the per-transaction simulation profile.
type WorkloadConfig struct {
	MinDelayMicros int     `yaml:"min_delay_us"`
	MaxDelayMicros int     `yaml:"max_delay_us"`
	FailureRate    float64 `yaml:"failure_rate"`
	// Seed makes runs reproducible when set; nil means a random seed per batch.
	Seed *uint64 `yaml:"seed,omitempty"`
}

// OutputConfig controls how results are presented.
type OutputConfig struct {
	Format string `yaml:"format"`
	TUI    bool   `yaml:"tui"`
}

// New returns a configuration populated with defaults, located through the
// process environment.
func New() *Config {
	return NewWithEnv(os.LookupEnv)
}

// NewWithEnv returns a configuration populated with defaults whose file
// location is resolved from TXBENCH_CONFIG and TXBENCH_HOME via lookup.
func NewWithEnv(lookup LookupEnvFunc) *Config {
	path, err := DefaultConfigPath(lookup)
	if err != nil {
		path = ""
	}

	return &Config{
		Version: SchemaVersion,
		Benchmark: BenchmarkConfig{
			TotalCount:       DefaultTotalCount,
			BatchSize:        batch.DefaultBatchSize,
			Concurrency:      batch.DefaultConcurrency,
			ProgressInterval: report.DefaultProgressInterval,
		},
		Workload: WorkloadConfig{
			MinDelayMicros: txn.DefaultMinDelay,
			MaxDelayMicros: txn.DefaultMaxDelay,
			FailureRate:    txn.DefaultFailureRate,
		},
		Output: OutputConfig{
			Format: string(report.FormatText),
		},
		Logging: LoggingConfig{
			Level:  logging.DefaultLevel,
			Format: logging.FormatConsole,
		},
		configPath: path,
	}
}

// Load reads the YAML file at path over the defaults.
// An empty path means the default location, where a missing file is not an error.
// An explicitly named file must exist. lookup resolves the default location.
func Load(path string, lookup LookupEnvFunc) (*Config, error) {
	cfg := NewWithEnv(lookup)

	explicit := path != ""
	if !explicit {
		path = cfg.configPath
	}
	if path == "" {
		return cfg, nil
	}
	cfg.configPath = path

	//nolint:gosec // The config path is chosen by the user.
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	return cfg, nil
}

// ConfigPath returns the file this configuration is loaded from and saved to.
func (c *Config) ConfigPath() string {
	return c.configPath
}

// SetConfigPath changes where Save writes.
func (c *Config) SetConfigPath(path string) {
	c.configPath = path
}

// Save writes the configuration as YAML, creating parent directories.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.New("no config path set")
	}

	if err := os.MkdirAll(filepath.Dir(c.configPath), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(c.configPath, data, configFileMode); err != nil {
		return fmt.Errorf("failed to write config %s: %w", c.configPath, err)
	}
	return nil
}

// Validate checks every section and returns the first problem found.
func (c *Config) Validate() error {
	if err := validateSchema(c.Version); err != nil {
		return err
	}

	b := c.Benchmark
	switch {
	case b.TotalCount < 0:
		return fmt.Errorf("benchmark.total_count must be >= 0, got %d", b.TotalCount)
	case b.BatchSize < batch.MinBatchSize:
		return fmt.Errorf("benchmark.batch_size must be >= %d, got %d", batch.MinBatchSize, b.BatchSize)
	case b.Concurrency < batch.MinConcurrency:
		return fmt.Errorf("benchmark.concurrency must be >= %d, got %d", batch.MinConcurrency, b.Concurrency)
	case b.ProgressInterval < 1:
		return fmt.Errorf("benchmark.progress_interval must be >= 1, got %d", b.ProgressInterval)
	}

	if err := c.Workload.Profile().Validate(); err != nil {
		return fmt.Errorf("workload: %w", err)
	}

	if _, err := report.ParseFormat(c.Output.Format); err != nil {
		return fmt.Errorf("output.format: %w", err)
	}

	return c.Logging.Validate()
}

// Profile converts the workload section into a simulator profile.
func (w WorkloadConfig) Profile() txn.Profile {
	return txn.Profile{
		MinDelay:    w.MinDelayMicros,
		MaxDelay:    w.MaxDelayMicros,
		Tick:        time.Microsecond,
		FailureRate: w.FailureRate,
	}
}

// validateSchema checks the config file version against SupportedSchema.
// An empty version is treated as the current schema.
func validateSchema(version string) error {
	if version == "" {
		return nil
	}

	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("invalid config version %q: %w", version, err)
	}

	constraint, err := semver.NewConstraint(SupportedSchema)
	if err != nil {
		return fmt.Errorf("invalid schema constraint: %w", err)
	}

	if !constraint.Check(v) {
		return fmt.Errorf("config version %s is not supported (want %s)", v, SupportedSchema)
	}
	return nil
}
