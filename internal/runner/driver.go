package runner

import (
	"context"
	"time"
)

// Viewport is the page size in CSS pixels.
type Viewport struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// SessionOptions configure a browser session.
type SessionOptions struct {
	Headless          bool
	Viewport          *Viewport // nil keeps the engine default
	NavigationTimeout time.Duration
	ActionTimeout     time.Duration
}

// Driver starts browser sessions.
type Driver interface {
	Name() string
	Open(ctx context.Context, opts SessionOptions) (Session, error)
}

// Session is one browser process with a single page. Visible and Count
// must not wait: polling is the runner's job.
type Session interface {
	Navigate(ctx context.Context, url string) error
	Visible(ctx context.Context, loc Locator) (bool, error)
	Count(ctx context.Context, loc Locator) (int, error)
	Fill(ctx context.Context, loc Locator, value string) error
	Click(ctx context.Context, loc Locator) error
	Screenshot(ctx context.Context) ([]byte, error)
	Close() error
}
