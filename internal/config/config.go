package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultBaseURL   = "http://localhost:5173/"
	DefaultOutputDir = "jules-scratch/verification"
)

type Config struct {
	BaseURL           string
	OutputDir         string
	DefaultTimeout    time.Duration
	NavigationTimeout time.Duration
	Engine            string
	Headless          bool
	InstallBrowsers   bool
	BrowserBin        string
	LogLevel          string
	// LogLevelSet reports whether VERIFY_LOG_LEVEL was given explicitly.
	LogLevelSet bool
}

// Load reads .env from the working directory if present, then the
// environment.
func Load() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables alone.
func FromEnv() (*Config, error) {
	defaultTimeout, err := getEnvMillis("VERIFY_DEFAULT_TIMEOUT_MS", 5000)
	if err != nil {
		return nil, err
	}
	navTimeout, err := getEnvMillis("VERIFY_NAVIGATION_TIMEOUT_MS", 30000)
	if err != nil {
		return nil, err
	}
	headless, err := getEnvBool("VERIFY_HEADLESS", true)
	if err != nil {
		return nil, err
	}
	install, err := getEnvBool("VERIFY_INSTALL_BROWSERS", false)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		BaseURL:           getEnv("VERIFY_BASE_URL", DefaultBaseURL),
		OutputDir:         getEnv("VERIFY_OUTPUT_DIR", DefaultOutputDir),
		DefaultTimeout:    defaultTimeout,
		NavigationTimeout: navTimeout,
		Engine:            strings.ToLower(getEnv("VERIFY_ENGINE", "playwright")),
		Headless:          headless,
		InstallBrowsers:   install,
		BrowserBin:        getEnv("CHROME_BIN", ""),
		LogLevel:          strings.ToLower(getEnv("VERIFY_LOG_LEVEL", "info")),
		LogLevelSet:       getEnv("VERIFY_LOG_LEVEL", "") != "",
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return fmt.Errorf("VERIFY_BASE_URL must be an http(s) URL, got %q", c.BaseURL)
	}
	if c.OutputDir == "" {
		return fmt.Errorf("VERIFY_OUTPUT_DIR must not be empty")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("VERIFY_LOG_LEVEL must be one of debug, info, warn, error, got %q", c.LogLevel)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvMillis(key string, defaultValue int) (time.Duration, error) {
	value := getEnv(key, "")
	if value == "" {
		return time.Duration(defaultValue) * time.Millisecond, nil
	}
	ms, err := strconv.Atoi(value)
	if err != nil || ms <= 0 {
		return 0, fmt.Errorf("%s must be a positive number of milliseconds, got %q", key, value)
	}
	return time.Duration(ms) * time.Millisecond, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := getEnv(key, "")
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean, got %q", key, value)
	}
	return b, nil
}
