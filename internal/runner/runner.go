package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Scenario is a named, strictly ordered list of steps.
type Scenario struct {
	Name           string
	Viewport       *Viewport
	Steps          []Step
	SuccessMessage string // printed after a successful run; {path} is the screenshot path
}

// SuccessLine renders the success message for a run that wrote screenshot.
// It is empty when the scenario has no message.
func (sc Scenario) SuccessLine(screenshot string) string {
	return strings.ReplaceAll(sc.SuccessMessage, "{path}", screenshot)
}

// Options configure a run.
type Options struct {
	Headless          bool
	OutputDir         string
	DefaultTimeout    time.Duration // WaitVisible steps without their own timeout
	NavigationTimeout time.Duration
	Logger            *slog.Logger
}

// Result describes a finished run.
type Result struct {
	RunID      string       `json:"run_id"`
	Scenario   string       `json:"scenario"`
	Engine     string       `json:"engine"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Screenshot string       `json:"screenshot,omitempty"`
	Steps      []StepRecord `json:"steps"`
	Error      string       `json:"error,omitempty"`
}

// StepRecord is the outcome of one executed step.
type StepRecord struct {
	Step     string        `json:"step"`
	Duration time.Duration `json:"duration_ns"`
	Error    string        `json:"error,omitempty"`
}

// Runner executes scenarios against sessions opened by a Driver.
type Runner struct {
	driver Driver
	opts   Options
}

// New returns a Runner. Zero timeouts get the library defaults.
func New(driver Driver, opts Options) *Runner {
	if opts.DefaultTimeout <= 0 {
		opts.DefaultTimeout = 5 * time.Second
	}
	if opts.NavigationTimeout <= 0 {
		opts.NavigationTimeout = 30 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Runner{driver: driver, opts: opts}
}

// Run opens one browser session, executes sc's steps in order and closes
// the session. The first failing step aborts the run and is returned as a
// *StepError.
func (r *Runner) Run(ctx context.Context, sc Scenario) (res Result, err error) {
	if len(sc.Steps) == 0 {
		return Result{}, errors.New("scenario has no steps")
	}
	res = Result{
		RunID:     uuid.NewString(),
		Scenario:  sc.Name,
		Engine:    r.driver.Name(),
		StartedAt: time.Now(),
	}
	logger := r.opts.Logger.With("run_id", res.RunID, "scenario", sc.Name)
	defer func() {
		res.FinishedAt = time.Now()
		if err != nil {
			res.Error = err.Error()
		}
	}()

	logger.Info("launching browser", "scope", "runner", "engine", r.driver.Name(), "headless", r.opts.Headless)
	sess, err := r.driver.Open(ctx, SessionOptions{
		Headless:          r.opts.Headless,
		Viewport:          sc.Viewport,
		NavigationTimeout: r.opts.NavigationTimeout,
		ActionTimeout:     r.opts.DefaultTimeout,
	})
	if err != nil {
		return res, fmt.Errorf("open session: %w", Classify(ErrLaunch, err))
	}
	sess = &onceSession{Session: sess}
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			logger.Warn("close session", "scope", "runner", "error", cerr.Error())
		}
	}()

	env := &Env{
		Session:        sess,
		DefaultTimeout: r.opts.DefaultTimeout,
		OutputDir:      r.opts.OutputDir,
		Logger:         logger,
	}
	for i, step := range sc.Steps {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		start := time.Now()
		serr := step.Run(ctx, env)
		rec := StepRecord{Step: step.Describe(), Duration: time.Since(start)}
		if serr != nil {
			rec.Error = serr.Error()
			res.Steps = append(res.Steps, rec)
			if ctx.Err() != nil && KindOf(serr) == nil {
				return res, serr
			}
			logger.Error("step failed", "scope", "runner", "step", rec.Step, "error", serr.Error())
			return res, stepError(i, step, serr)
		}
		res.Steps = append(res.Steps, rec)
	}
	res.Screenshot = env.screenshot

	logger.Info("run finished", "scope", "runner", "steps", len(res.Steps))
	return res, nil
}

func stepError(i int, step Step, err error) *StepError {
	kind := KindOf(err)
	if kind == nil {
		kind = defaultKind(step)
	}
	return &StepError{Index: i, Step: step.Describe(), Kind: kind, Err: err}
}

func defaultKind(step Step) error {
	switch step.(type) {
	case Navigate, *Navigate:
		return ErrNavigation
	case WaitVisible, *WaitVisible:
		return ErrTimeout
	case Screenshot, *Screenshot:
		return ErrIO
	default:
		return ErrElementNotFound
	}
}

// onceSession releases the wrapped session exactly once.
type onceSession struct {
	Session
	once sync.Once
	err  error
}

func (s *onceSession) Close() error {
	s.once.Do(func() { s.err = s.Session.Close() })
	return s.err
}
