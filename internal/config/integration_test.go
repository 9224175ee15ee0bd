package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGlobalConfig(t *testing.T) {
	ResetGlobalConfigForTest()
	t.Cleanup(ResetGlobalConfigForTest)

	cfg := GetGlobalConfig()
	require.NotNil(t, cfg)
	assert.Equal(t, "text", cfg.Output.Format)

	// Subsequent calls return the same instance
	assert.Same(t, cfg, GetGlobalConfig())

	custom := New()
	custom.Benchmark.TotalCount = 7
	SetGlobalConfig(custom)
	assert.Same(t, custom, GetGlobalConfig())
	assert.Equal(t, custom.Logging, GetLoggingConfig())

	ResetGlobalConfigForTest()
	assert.NotSame(t, custom, GetGlobalConfig())
}

func TestGetConfigDir(t *testing.T) {
	t.Run("TXBENCH_HOME", func(t *testing.T) {
		dir := t.TempDir()
		lookup := envLookup(map[string]string{EnvHome: dir})

		got, err := GetConfigDir(lookup)
		require.NoError(t, err)
		assert.Equal(t, dir, got)

		path, err := DefaultConfigPath(lookup)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "config.yaml"), path)
	})

	t.Run("TXBENCH_CONFIG", func(t *testing.T) {
		path, err := DefaultConfigPath(envLookup(map[string]string{EnvConfig: "/etc/txbench.yaml"}))
		require.NoError(t, err)
		assert.Equal(t, "/etc/txbench.yaml", path)
	})

	t.Run("ProcessEnvIgnored", func(t *testing.T) {
		t.Setenv(EnvHome, "/should/not/be/used")
		dir := t.TempDir()

		got, err := GetConfigDir(envLookup(map[string]string{EnvHome: dir}))
		require.NoError(t, err)
		assert.Equal(t, dir, got)
	})

	t.Run("HomeDefault", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("HOME", home)

		got, err := GetConfigDir(envLookup(nil))
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(home, ".txbench"), got)
	})
}

func TestEnsureLogDir(t *testing.T) {
	ResetGlobalConfigForTest()
	t.Cleanup(ResetGlobalConfigForTest)

	require.NoError(t, EnsureLogDir(), "no file configured is a no-op")

	logFile := filepath.Join(t.TempDir(), "nested", "logs", "txbench.log")
	GetGlobalConfig().Logging.File = logFile
	require.NoError(t, EnsureLogDir())

	info, err := os.Stat(filepath.Dir(logFile))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
