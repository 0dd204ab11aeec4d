package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"VERIFY_BASE_URL", "VERIFY_OUTPUT_DIR", "VERIFY_DEFAULT_TIMEOUT_MS",
	"VERIFY_NAVIGATION_TIMEOUT_MS", "VERIFY_ENGINE", "VERIFY_HEADLESS",
	"VERIFY_INSTALL_BROWSERS", "CHROME_BIN", "VERIFY_LOG_LEVEL",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestFromEnvDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, DefaultOutputDir, cfg.OutputDir)
	assert.Equal(t, 5*time.Second, cfg.DefaultTimeout)
	assert.Equal(t, 30*time.Second, cfg.NavigationTimeout)
	assert.Equal(t, "playwright", cfg.Engine)
	assert.True(t, cfg.Headless)
	assert.False(t, cfg.InstallBrowsers)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.LogLevelSet)
}

func TestFromEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("VERIFY_BASE_URL", "http://127.0.0.1:4000/")
	t.Setenv("VERIFY_OUTPUT_DIR", "out")
	t.Setenv("VERIFY_DEFAULT_TIMEOUT_MS", "1500")
	t.Setenv("VERIFY_ENGINE", "Rod")
	t.Setenv("VERIFY_HEADLESS", "false")
	t.Setenv("VERIFY_LOG_LEVEL", "DEBUG")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:4000/", cfg.BaseURL)
	assert.Equal(t, "out", cfg.OutputDir)
	assert.Equal(t, 1500*time.Millisecond, cfg.DefaultTimeout)
	assert.Equal(t, "rod", cfg.Engine)
	assert.False(t, cfg.Headless)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.LogLevelSet)
}

func TestFromEnvInvalid(t *testing.T) {
	tests := map[string]string{
		"VERIFY_DEFAULT_TIMEOUT_MS":    "soon",
		"VERIFY_NAVIGATION_TIMEOUT_MS": "-1",
		"VERIFY_HEADLESS":              "maybe",
		"VERIFY_BASE_URL":              "localhost:5173",
		"VERIFY_LOG_LEVEL":             "loud",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)
			_, err := FromEnv()
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	// godotenv never overrides variables that are already set, even empty
	require.NoError(t, os.Unsetenv("VERIFY_OUTPUT_DIR"))
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("VERIFY_OUTPUT_DIR=from-dotenv\n"), 0o644))
	wd, wdErr := os.Getwd()
	require.NoError(t, wdErr)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.OutputDir)
}
