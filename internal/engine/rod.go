package engine

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"uiverify/internal/runner"
)

type rodDriver struct {
	opts Options
}

func (d *rodDriver) Name() string { return Rod }

func (d *rodDriver) Open(ctx context.Context, opts runner.SessionOptions) (runner.Session, error) {
	l := launcher.New().Context(ctx)
	if d.opts.BrowserBin != "" {
		l = l.Bin(d.opts.BrowserBin)
	}
	l = l.Headless(opts.Headless).
		Set("no-sandbox").
		Set("disable-gpu").
		Set("disable-dev-shm-usage")

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}
	s := &rodSession{launcher: l, navTimeout: opts.NavigationTimeout}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		s.Close()
		return nil, fmt.Errorf("connect to browser: %w", err)
	}
	s.browser = browser
	s.page, err = s.browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("create page: %w", err)
	}
	if opts.Viewport != nil {
		err = s.page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
			Width:             opts.Viewport.Width,
			Height:            opts.Viewport.Height,
			DeviceScaleFactor: 1,
		})
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("set viewport: %w", err)
		}
	}
	return s, nil
}

type rodSession struct {
	launcher   *launcher.Launcher
	browser    *rod.Browser
	page       *rod.Page
	navTimeout time.Duration

	closeOnce sync.Once
	closeErr  error
}

func (s *rodSession) Navigate(ctx context.Context, url string) error {
	p := s.page.Context(ctx)
	if s.navTimeout > 0 {
		p = p.Timeout(s.navTimeout)
	}
	if err := p.Navigate(url); err != nil {
		return runner.Classify(runner.ErrNavigation, err)
	}
	if err := p.WaitLoad(); err != nil {
		return runner.Classify(runner.ErrNavigation, err)
	}
	return nil
}

// find resolves loc without waiting.
func (s *rodSession) find(ctx context.Context, loc runner.Locator) (rod.Elements, error) {
	if err := loc.Validate(); err != nil {
		return nil, err
	}
	p := s.page.Context(ctx)
	if loc.Kind == runner.ByCSS {
		return p.Elements(loc.Value)
	}
	return p.ElementsX(xpathFor(loc))
}

func (s *rodSession) one(ctx context.Context, loc runner.Locator) (*rod.Element, error) {
	els, err := s.find(ctx, loc)
	if err != nil {
		return nil, err
	}
	switch {
	case len(els) == 0:
		return nil, runner.Classify(runner.ErrElementNotFound, fmt.Errorf("no element matches %s", loc))
	case len(els) > 1 && !loc.First:
		return nil, runner.Classify(runner.ErrElementNotFound, fmt.Errorf("%d elements match %s", len(els), loc))
	}
	return els.First(), nil
}

func (s *rodSession) Visible(ctx context.Context, loc runner.Locator) (bool, error) {
	els, err := s.find(ctx, loc)
	if err != nil {
		return false, err
	}
	if len(els) == 0 {
		return false, nil
	}
	if len(els) > 1 && !loc.First {
		return false, runner.Classify(runner.ErrElementNotFound, fmt.Errorf("%d elements match %s", len(els), loc))
	}
	visible, err := els.First().Visible()
	if err != nil {
		// detached between lookup and check
		return false, nil
	}
	return visible, nil
}

func (s *rodSession) Count(ctx context.Context, loc runner.Locator) (int, error) {
	els, err := s.find(ctx, loc)
	if err != nil {
		return 0, err
	}
	return len(els), nil
}

func (s *rodSession) Fill(ctx context.Context, loc runner.Locator, value string) error {
	el, err := s.one(ctx, loc)
	if err != nil {
		return err
	}
	el = el.Context(ctx)
	if err := el.SelectAllText(); err != nil {
		return err
	}
	return el.Input(value)
}

func (s *rodSession) Click(ctx context.Context, loc runner.Locator) error {
	el, err := s.one(ctx, loc)
	if err != nil {
		return err
	}
	return el.Context(ctx).Click(proto.InputMouseButtonLeft, 1)
}

func (s *rodSession) Screenshot(ctx context.Context) ([]byte, error) {
	return s.page.Context(ctx).Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
}

func (s *rodSession) Close() error {
	s.closeOnce.Do(func() {
		if s.browser != nil {
			s.closeErr = s.browser.Close()
		}
		if s.launcher != nil {
			s.launcher.Kill()
			s.launcher.Cleanup()
		}
	})
	return s.closeErr
}

// xpathFor translates the non-CSS locator kinds to XPath 1.0, roughly
// following the matching rules of playwright's getBy* locators.
func xpathFor(loc runner.Locator) string {
	v := xpathLiteral(loc.Value)
	switch loc.Kind {
	case runner.ByLabel:
		return fmt.Sprintf(
			"//*[@id = //label[contains(normalize-space(.), %[1]s)]/@for]"+
				" | //label[contains(normalize-space(.), %[1]s)]//*[self::input or self::textarea or self::select]"+
				" | //*[@aria-label = %[1]s]", v)
	case runner.ByText:
		return fmt.Sprintf(
			"//body//*[not(self::script or self::style)][contains(normalize-space(.), %[1]s)]"+
				"[not(.//*[contains(normalize-space(.), %[1]s)])]", v)
	case runner.ByRole:
		base := roleXPath(loc.Value)
		if loc.Name == "" {
			return base
		}
		n := xpathLiteral(loc.Name)
		return fmt.Sprintf("(%s)[contains(normalize-space(.), %[2]s) or @aria-label = %[2]s or @value = %[2]s]", base, n)
	default:
		return loc.Value
	}
}

func roleXPath(role string) string {
	r := xpathLiteral(role)
	switch role {
	case "button":
		return "//button | //input[@type='button' or @type='submit' or @type='reset'] | //*[@role='button']"
	case "heading":
		return "//h1 | //h2 | //h3 | //h4 | //h5 | //h6 | //*[@role='heading']"
	case "link":
		return "//a[@href] | //*[@role='link']"
	case "textbox":
		return "//input[not(@type) or @type='text' or @type='email' or @type='search'] | //textarea | //*[@role='textbox']"
	case "list":
		return "//ul | //ol | //*[@role='list']"
	default:
		return "//*[@role=" + r + "]"
	}
}

func xpathLiteral(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	parts := strings.Split(s, "'")
	return "concat('" + strings.Join(parts, `', "'", '`) + "')"
}
