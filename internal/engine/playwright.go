package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/playwright-community/playwright-go"

	"uiverify/internal/runner"
)

type playwrightDriver struct {
	opts Options
}

func (d *playwrightDriver) Name() string { return Playwright }

func (d *playwrightDriver) Open(ctx context.Context, opts runner.SessionOptions) (runner.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if d.opts.InstallBrowsers {
		d.opts.Logger.Info("installing playwright browsers", "scope", "runner")
		if err := playwright.Install(&playwright.RunOptions{Browsers: []string{"chromium"}}); err != nil {
			return nil, fmt.Errorf("install playwright: %w", err)
		}
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("start playwright: %w", err)
	}
	s := &playwrightSession{pw: pw}

	s.browser, err = pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		Args:     []string{"--disable-dev-shm-usage"},
	})
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	var ctxOpts playwright.BrowserNewContextOptions
	if opts.Viewport != nil {
		ctxOpts.Viewport = &playwright.Size{Width: opts.Viewport.Width, Height: opts.Viewport.Height}
	}
	s.bctx, err = s.browser.NewContext(ctxOpts)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("new context: %w", err)
	}
	s.page, err = s.bctx.NewPage()
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("new page: %w", err)
	}
	if opts.ActionTimeout > 0 {
		s.page.SetDefaultTimeout(millis(opts.ActionTimeout))
	}
	if opts.NavigationTimeout > 0 {
		s.page.SetDefaultNavigationTimeout(millis(opts.NavigationTimeout))
	}
	return s, nil
}

type playwrightSession struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	bctx    playwright.BrowserContext
	page    playwright.Page

	closeOnce sync.Once
	closeErr  error
}

func (s *playwrightSession) locator(loc runner.Locator) (playwright.Locator, error) {
	if err := loc.Validate(); err != nil {
		return nil, err
	}
	var l playwright.Locator
	switch loc.Kind {
	case runner.ByCSS:
		l = s.page.Locator(loc.Value)
	case runner.ByLabel:
		l = s.page.GetByLabel(loc.Value)
	case runner.ByRole:
		var opts playwright.PageGetByRoleOptions
		if loc.Name != "" {
			opts.Name = loc.Name
		}
		l = s.page.GetByRole(playwright.AriaRole(loc.Value), opts)
	case runner.ByText:
		l = s.page.GetByText(loc.Value)
	}
	if loc.First {
		l = l.First()
	}
	return l, nil
}

func (s *playwrightSession) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.page.Goto(url); err != nil {
		return runner.Classify(runner.ErrNavigation, err)
	}
	return nil
}

func (s *playwrightSession) Visible(ctx context.Context, loc runner.Locator) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	l, err := s.locator(loc)
	if err != nil {
		return false, err
	}
	visible, err := l.IsVisible()
	if err != nil {
		return false, classifyPlaywright(err)
	}
	return visible, nil
}

func (s *playwrightSession) Count(ctx context.Context, loc runner.Locator) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	l, err := s.locator(loc)
	if err != nil {
		return 0, err
	}
	return l.Count()
}

func (s *playwrightSession) Fill(ctx context.Context, loc runner.Locator, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l, err := s.locator(loc)
	if err != nil {
		return err
	}
	return classifyPlaywright(l.Fill(value))
}

func (s *playwrightSession) Click(ctx context.Context, loc runner.Locator) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l, err := s.locator(loc)
	if err != nil {
		return err
	}
	return classifyPlaywright(l.Click())
}

func (s *playwrightSession) Screenshot(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.page.Screenshot(playwright.PageScreenshotOptions{
		Type: playwright.ScreenshotTypePng,
	})
}

func (s *playwrightSession) Close() error {
	s.closeOnce.Do(func() {
		var errs []error
		if s.browser != nil {
			// closing the browser also closes its contexts and pages
			if err := s.browser.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close browser: %w", err))
			}
		}
		if s.pw != nil {
			if err := s.pw.Stop(); err != nil {
				errs = append(errs, fmt.Errorf("stop playwright: %w", err))
			}
		}
		s.closeErr = errors.Join(errs...)
	})
	return s.closeErr
}

// classifyPlaywright maps playwright failures onto runner failure kinds.
// Strict mode violations mean the locator was ambiguous.
func classifyPlaywright(err error) error {
	switch {
	case err == nil:
		return nil
	case strings.Contains(err.Error(), "strict mode violation"):
		return runner.Classify(runner.ErrElementNotFound, err)
	case errors.Is(err, playwright.ErrTimeout):
		return runner.Classify(runner.ErrElementNotFound, err)
	default:
		return err
	}
}
