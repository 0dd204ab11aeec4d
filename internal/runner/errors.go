package runner

import (
	"errors"
	"fmt"
)

// Failure kinds. A failed run returns an error that matches exactly one of
// these through errors.Is.
var (
	ErrTimeout         = errors.New("timeout")
	ErrNavigation      = errors.New("navigation failed")
	ErrElementNotFound = errors.New("element not found")
	ErrIO              = errors.New("io error")
	ErrLaunch          = errors.New("browser launch failed")
)

// StepError reports the step that aborted a run.
type StepError struct {
	Index int    // zero-based position in the scenario
	Step  string // Describe() of the failing step
	Kind  error  // one of the Err* kinds above
	Err   error
}

func (e *StepError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("step %d %s: %v: %v", e.Index+1, e.Step, e.Kind, e.Err)
	}
	return fmt.Sprintf("step %d %s: %v", e.Index+1, e.Step, e.Kind)
}

func (e *StepError) Unwrap() error { return e.Err }

func (e *StepError) Is(target error) bool { return target == e.Kind }

// kindError tags an engine or step error with its failure kind. Engines
// return these so the runner does not need to know about engine error types.
type kindError struct {
	kind error
	err  error
}

func (e *kindError) Error() string {
	if e.err == nil {
		return e.kind.Error()
	}
	return e.err.Error()
}

func (e *kindError) Unwrap() error { return e.err }

func (e *kindError) Is(target error) bool { return target == e.kind }

// Classify tags err with kind. A nil err yields the bare kind.
func Classify(kind, err error) error {
	if err == nil {
		return kind
	}
	return &kindError{kind: kind, err: err}
}

// KindOf returns the failure kind carried by err, or nil if it has none.
func KindOf(err error) error {
	for _, kind := range []error{ErrTimeout, ErrNavigation, ErrElementNotFound, ErrIO, ErrLaunch} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

// ExitCode maps a run error to a process exit status.
func ExitCode(err error) int {
	switch KindOf(err) {
	case nil:
		if err == nil {
			return 0
		}
		return 1
	case ErrTimeout:
		return 2
	case ErrNavigation:
		return 3
	case ErrElementNotFound:
		return 4
	case ErrIO:
		return 5
	default:
		return 1
	}
}
