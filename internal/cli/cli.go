// Package cli wires configuration, logging, the browser engine and the
// runner together for the command-line tools.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"uiverify/internal/config"
	"uiverify/internal/engine"
	"uiverify/internal/logging"
	"uiverify/internal/runner"
	"uiverify/internal/scenario"
)

// Overrides replace configuration values for a single invocation.
type Overrides struct {
	Engine   string
	Headless *bool
}

// Harness is a configured runner plus its logger.
type Harness struct {
	Config *config.Config
	Logger *slog.Logger
	Runner *runner.Runner
}

// NewHarness builds a Harness from cfg, logging to logOut.
func NewHarness(cfg *config.Config, logOut io.Writer, ov Overrides) (*Harness, error) {
	if ov.Engine != "" {
		cfg.Engine = ov.Engine
	}
	if ov.Headless != nil {
		cfg.Headless = *ov.Headless
	}
	logger := logging.New(logOut, cfg.LogLevel)
	driver, err := engine.New(cfg.Engine, engine.Options{
		InstallBrowsers: cfg.InstallBrowsers,
		BrowserBin:      cfg.BrowserBin,
		Logger:          logger,
	})
	if err != nil {
		return nil, err
	}
	return newHarness(cfg, logger, driver), nil
}

func newHarness(cfg *config.Config, logger *slog.Logger, driver runner.Driver) *Harness {
	r := runner.New(driver, runner.Options{
		Headless:          cfg.Headless,
		OutputDir:         cfg.OutputDir,
		DefaultTimeout:    cfg.DefaultTimeout,
		NavigationTimeout: cfg.NavigationTimeout,
		Logger:            logger,
	})
	return &Harness{Config: cfg, Logger: logger, Runner: r}
}

// Resolve returns the built-in scenario called nameOrPath, or parses it as a
// YAML scenario file when no built-in has that name.
func (h *Harness) Resolve(nameOrPath string) (runner.Scenario, error) {
	if sc, err := scenario.Builtin(nameOrPath, h.Config.BaseURL); err == nil {
		return sc, nil
	}
	if _, err := os.Stat(nameOrPath); err != nil {
		return runner.Scenario{}, fmt.Errorf("%q is neither a built-in scenario nor a readable file", nameOrPath)
	}
	return scenario.ParseFile(nameOrPath, h.Config.BaseURL)
}

// SignalContext is canceled on SIGINT or SIGTERM.
func SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// RunBuiltin runs one built-in scenario with configuration from the
// environment and returns the process exit code. The built-in scripts are
// silent on success apart from their success line, so logging defaults to
// warn unless VERIFY_LOG_LEVEL is set.
func RunBuiltin(name string) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 1
	}
	if !cfg.LogLevelSet {
		cfg.LogLevel = "warn"
	}
	h, err := NewHarness(cfg, os.Stderr, Overrides{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "setup: %v\n", err)
		return 1
	}

	ctx, cancel := SignalContext()
	defer cancel()
	return h.RunBuiltin(ctx, name, os.Stdout, os.Stderr)
}

// RunBuiltin runs the built-in scenario name, printing its success line to
// stdout and failures to stderr, and returns the process exit code.
func (h *Harness) RunBuiltin(ctx context.Context, name string, stdout, stderr io.Writer) int {
	sc, err := scenario.Builtin(name, h.Config.BaseURL)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}
	res, err := h.Runner.Run(ctx, sc)
	if err != nil {
		fmt.Fprintf(stderr, "%s failed: %v\n", name, err)
		return runner.ExitCode(err)
	}
	PrintSuccess(stdout, sc, res)
	return 0
}

// PrintSuccess writes sc's success line for res to w. Scenarios without a
// success message print nothing.
func PrintSuccess(w io.Writer, sc runner.Scenario, res runner.Result) {
	if line := sc.SuccessLine(res.Screenshot); line != "" {
		fmt.Fprintln(w, line)
	}
}
