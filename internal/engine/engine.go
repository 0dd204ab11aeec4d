// Package engine provides browser-automation backends for the runner.
package engine

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"uiverify/internal/runner"
)

// Engine names accepted by New.
const (
	// Playwright drives chromium through playwright-go.
	Playwright = "playwright"
	// Rod drives a local chromium over the DevTools protocol with go-rod.
	Rod = "rod"
)

// Options tune engine start-up.
type Options struct {
	// InstallBrowsers downloads the playwright driver and chromium before launch.
	InstallBrowsers bool
	// BrowserBin overrides the browser executable (rod only).
	BrowserBin string
	Logger     *slog.Logger
}

// New returns the driver registered under name.
func New(name string, opts Options) (runner.Driver, error) {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", Playwright:
		return &playwrightDriver{opts: opts}, nil
	case Rod:
		return &rodDriver{opts: opts}, nil
	default:
		return nil, fmt.Errorf("unknown engine %q (available: %s)", name, strings.Join(Names(), ", "))
	}
}

// Names lists the available engines.
func Names() []string {
	names := []string{Playwright, Rod}
	sort.Strings(names)
	return names
}

func millis(d time.Duration) float64 {
	return float64(d.Milliseconds())
}
