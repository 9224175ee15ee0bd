package config

import (
	"fmt"
	"strconv"
)

// Environment variables read by ApplyEnv.
const (
	EnvTotalCount       = "TXBENCH_TOTAL_COUNT"
	EnvBatchSize        = "TXBENCH_BATCH_SIZE"
	EnvConcurrency      = "TXBENCH_CONCURRENCY"
	EnvProgressInterval = "TXBENCH_PROGRESS_INTERVAL"
	EnvSeed             = "TXBENCH_SEED"
	EnvFailureRate      = "TXBENCH_FAILURE_RATE"
	EnvOutputFormat     = "TXBENCH_OUTPUT_FORMAT"
	EnvLogLevel         = "TXBENCH_LOG_LEVEL"
	EnvLogFormat        = "TXBENCH_LOG_FORMAT"
	EnvHome             = "TXBENCH_HOME"
	EnvConfig           = "TXBENCH_CONFIG"
)

// LookupEnvFunc reads one environment variable. os.LookupEnv is the production value.
type LookupEnvFunc func(key string) (string, bool)

// ApplyEnv overrides fields from environment variables found by lookup.
func (c *Config) ApplyEnv(lookup LookupEnvFunc) error {
	ints := []struct {
		key string
		dst *int
	}{
		{EnvTotalCount, &c.Benchmark.TotalCount},
		{EnvBatchSize, &c.Benchmark.BatchSize},
		{EnvConcurrency, &c.Benchmark.Concurrency},
		{EnvProgressInterval, &c.Benchmark.ProgressInterval},
	}
	for _, e := range ints {
		if v, ok := lookup(e.key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s: %w", e.key, err)
			}
			*e.dst = n
		}
	}

	if v, ok := lookup(EnvSeed); ok && v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvSeed, err)
		}
		c.Workload.Seed = &seed
	}

	if v, ok := lookup(EnvFailureRate); ok && v != "" {
		rate, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvFailureRate, err)
		}
		c.Workload.FailureRate = rate
	}

	if v, ok := lookup(EnvOutputFormat); ok && v != "" {
		c.Output.Format = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Logging.Level = v
	}
	if v, ok := lookup(EnvLogFormat); ok && v != "" {
		c.Logging.Format = v
	}

	return nil
}
