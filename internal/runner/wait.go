package runner

import (
	"context"
	"fmt"
	"time"

	"k8s.io/apimachinery/pkg/util/wait"
)

// PollInterval is how often a wait condition is re-evaluated.
const PollInterval = 100 * time.Millisecond

// Condition reports whether the awaited state holds. A non-nil error stops
// the poll immediately.
type Condition func(ctx context.Context) (bool, error)

// PollUntil evaluates cond now and then every interval until it returns true,
// returns an error, or timeout elapses. Expiry yields ErrTimeout; cancellation
// of ctx yields the context error.
func PollUntil(ctx context.Context, interval, timeout time.Duration, cond Condition) error {
	if timeout <= 0 {
		return fmt.Errorf("poll: non-positive timeout %s", timeout)
	}
	err := wait.PollUntilContextTimeout(ctx, interval, timeout, true, wait.ConditionWithContextFunc(cond))
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if wait.Interrupted(err) {
		return Classify(ErrTimeout, fmt.Errorf("condition not met within %s", timeout))
	}
	return err
}
