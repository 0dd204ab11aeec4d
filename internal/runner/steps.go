package runner

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Env is what a step sees while it runs.
type Env struct {
	Session        Session
	DefaultTimeout time.Duration
	OutputDir      string
	Logger         *slog.Logger

	// screenshot holds the path written by the last Screenshot step.
	screenshot string
}

// Step is one action in a scenario.
type Step interface {
	Describe() string
	Run(ctx context.Context, env *Env) error
}

// Navigate loads url in the page.
type Navigate struct {
	URL string
}

func (s Navigate) Describe() string { return fmt.Sprintf("navigate(%s)", s.URL) }

func (s Navigate) Run(ctx context.Context, env *Env) error {
	env.Logger.Info("navigating", "scope", "browser", "url", s.URL)
	if err := env.Session.Navigate(ctx, s.URL); err != nil {
		if KindOf(err) == nil {
			return Classify(ErrNavigation, err)
		}
		return err
	}
	return nil
}

// WaitVisible blocks until Locator is visible. A zero Timeout uses the
// configured default.
type WaitVisible struct {
	Locator Locator
	Timeout time.Duration
}

func (s WaitVisible) Describe() string { return fmt.Sprintf("wait-visible(%s)", s.Locator) }

func (s WaitVisible) Run(ctx context.Context, env *Env) error {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = env.DefaultTimeout
	}
	err := PollUntil(ctx, PollInterval, timeout, func(ctx context.Context) (bool, error) {
		return env.Session.Visible(ctx, s.Locator)
	})
	if err != nil {
		return err
	}
	env.Logger.Info("element visible", "scope", "assert", "locator", s.Locator.String())
	return nil
}

// Fill sets the value of a single input element.
type Fill struct {
	Locator Locator
	Value   string
}

func (s Fill) Describe() string { return fmt.Sprintf("fill(%s)", s.Locator) }

func (s Fill) Run(ctx context.Context, env *Env) error {
	if err := resolveOne(ctx, env.Session, s.Locator); err != nil {
		return err
	}
	if err := env.Session.Fill(ctx, s.Locator, s.Value); err != nil {
		return classifyAction(err)
	}
	env.Logger.Info("filled", "scope", "action", "locator", s.Locator.String())
	return nil
}

// Click dispatches a click on a single interactive element.
type Click struct {
	Locator Locator
}

func (s Click) Describe() string { return fmt.Sprintf("click(%s)", s.Locator) }

func (s Click) Run(ctx context.Context, env *Env) error {
	if err := resolveOne(ctx, env.Session, s.Locator); err != nil {
		return err
	}
	if err := env.Session.Click(ctx, s.Locator); err != nil {
		return classifyAction(err)
	}
	env.Logger.Info("clicked", "scope", "action", "locator", s.Locator.String())
	return nil
}

// Screenshot captures the rendered page to Path. Relative paths resolve
// against the output directory; an existing file is replaced.
type Screenshot struct {
	Path string
}

func (s Screenshot) Describe() string { return fmt.Sprintf("screenshot(%s)", s.Path) }

func (s Screenshot) Run(ctx context.Context, env *Env) error {
	path := s.Path
	if !filepath.IsAbs(path) && env.OutputDir != "" {
		path = filepath.Join(env.OutputDir, path)
	}
	data, err := env.Session.Screenshot(ctx)
	if err != nil {
		return Classify(ErrIO, fmt.Errorf("capture: %w", err))
	}
	if err := writeFileAtomic(path, data); err != nil {
		return Classify(ErrIO, err)
	}
	env.screenshot = path
	env.Logger.Info("screenshot written", "scope", "artifact", "path", path, "bytes", len(data))
	return nil
}

func resolveOne(ctx context.Context, sess Session, loc Locator) error {
	n, err := sess.Count(ctx, loc)
	if err != nil {
		return classifyAction(err)
	}
	switch {
	case n == 0:
		return Classify(ErrElementNotFound, fmt.Errorf("no element matches %s", loc))
	case n > 1 && !loc.First:
		return Classify(ErrElementNotFound, fmt.Errorf("%d elements match %s", n, loc))
	}
	return nil
}

// classifyAction treats an untagged engine failure on fill or click as the
// element being unusable.
func classifyAction(err error) error {
	if KindOf(err) != nil {
		return err
	}
	return Classify(ErrElementNotFound, err)
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".screenshot-*.png")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
