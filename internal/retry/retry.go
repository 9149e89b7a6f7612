// Package retry runs an operation a bounded number of times with a fixed
// pause between attempts. It is used to open the clipboard, which another
// process may be holding for a few milliseconds.
package retry

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Default acquire policy: one attempt plus five retries, 50ms apart.
const (
	DefaultAttempts = 6
	DefaultInterval = 50 * time.Millisecond
)

// Policy bounds a retry loop.
type Policy struct {
	Attempts int
	Interval time.Duration
	// Sleep waits between attempts; nil uses a context-aware timer.
	Sleep func(context.Context, time.Duration) error
}

// DefaultPolicy returns the clipboard acquire policy.
func DefaultPolicy() Policy {
	return Policy{Attempts: DefaultAttempts, Interval: DefaultInterval}
}

// ExhaustedError is returned when every attempt failed. Err is the error of
// the final attempt.
type ExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("gave up after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error { return e.Err }

// Do calls fn until it succeeds, the policy is exhausted or ctx is done.
func Do[T any](ctx context.Context, p Policy, fn func() (T, error)) (T, error) {
	p = p.withDefaults()

	var (
		zero    T
		lastErr error
	)
	for attempt := 1; attempt <= p.Attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		v, err := fn()
		if err == nil {
			return v, nil
		}
		lastErr = err

		if attempt == p.Attempts {
			break
		}
		slog.Debug("retrying", "attempt", attempt, "max", p.Attempts, "delay", p.Interval, "err", err)
		if err := p.Sleep(ctx, p.Interval); err != nil {
			return zero, err
		}
	}
	return zero, &ExhaustedError{Attempts: p.Attempts, Err: lastErr}
}

func (p Policy) withDefaults() Policy {
	if p.Attempts <= 0 {
		p.Attempts = DefaultAttempts
	}
	if p.Interval < 0 {
		p.Interval = 0
	}
	if p.Sleep == nil {
		p.Sleep = Sleep
	}
	return p
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
