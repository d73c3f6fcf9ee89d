// Package wait provides a bounded poll-until-ready primitive.
//
// A Predicate queries some external state. It returns a value and a nil
// error once the state is what the caller is waiting for, an error marked
// with NotReady or Retryable while it is not there yet, and any other error
// when something unexpected happened. Until keeps calling the predicate
// until it succeeds, fails unexpectedly, the timeout elapses or the context
// is cancelled.
package wait

import (
	"context"
	"fmt"
	"time"

	"github.com/golang/glog"
)

const (
	// DefaultTimeout is used when Config.Timeout is zero.
	DefaultTimeout = 10 * time.Second
	// DefaultInterval is used when Config.Interval is zero.
	DefaultInterval = 500 * time.Millisecond
)

// Config bounds a single wait.
type Config struct {
	// Timeout is the maximum total duration of the wait.
	Timeout time.Duration
	// Interval is the delay between two evaluations of the predicate.
	Interval time.Duration
}

// WithDefaults returns a copy of c where zero fields are replaced by
// DefaultTimeout and DefaultInterval.
func (c Config) WithDefaults() Config {
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Interval == 0 {
		c.Interval = DefaultInterval
	}
	return c
}

// Validate reports whether c can be used for a wait.
func (c Config) Validate() error {
	if c.Timeout < 0 {
		return fmt.Errorf("wait timeout must be positive, got %v", c.Timeout)
	}
	if c.Interval < 0 {
		return fmt.Errorf("wait interval must be positive, got %v", c.Interval)
	}
	return nil
}

// Predicate is evaluated by Until.
type Predicate[T any] func(ctx context.Context) (T, error)

// Condition is a predicate that only reports whether it holds.
type Condition func(ctx context.Context) (bool, error)

// Until evaluates p immediately and then every cfg.Interval until it
// succeeds or cfg.Timeout elapses. description names what is being waited
// for and ends up in the TimeoutError.
//
// An error returned by p that is not marked with NotReady or Retryable is
// returned as is, without calling p again. If the wait times out, the
// returned error is a *TimeoutError. If ctx is done first, the returned
// error matches ErrCancelled.
func Until[T any](ctx context.Context, cfg Config, description string, p Predicate[T]) (T, error) {
	var zero T

	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return zero, err
	}
	if err := ctx.Err(); err != nil {
		return zero, cancelled(err)
	}

	start := time.Now()
	deadline := start.Add(cfg.Timeout)

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	var last error
	for attempt := 1; ; attempt++ {
		v, err := p(ctx)
		if err == nil {
			glog.V(3).Infof("wait: %s satisfied after %d attempt(s) in %v", description, attempt, time.Since(start))
			return v, nil
		}
		if !IsNotReady(err) {
			// The context may have been cancelled while p was running, in
			// which case p usually reports the context error.
			if ctxErr := ctx.Err(); ctxErr != nil {
				return zero, cancelled(ctxErr)
			}
			return zero, err
		}
		last = err
		glog.V(3).Infof("wait: %s not satisfied on attempt %d: %v", description, attempt, err)

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return zero, &TimeoutError{
				Condition: description,
				Timeout:   cfg.Timeout,
				Elapsed:   time.Since(start),
				Attempts:  attempt,
				Last:      last,
			}
		}

		delay := cfg.Interval
		if delay > remaining {
			delay = remaining
		}
		if timer == nil {
			timer = time.NewTimer(delay)
		} else {
			timer.Reset(delay)
		}

		select {
		case <-ctx.Done():
			return zero, cancelled(ctx.Err())
		case <-timer.C:
		}
	}
}

// Poll is Until for conditions that only report whether they hold. A false
// result is treated as not ready.
func Poll(ctx context.Context, cfg Config, description string, c Condition) error {
	_, err := Until(ctx, cfg, description, func(ctx context.Context) (struct{}, error) {
		ok, err := c(ctx)
		if err != nil {
			return struct{}{}, err
		}
		if !ok {
			return struct{}{}, NotReady("condition returned false")
		}
		return struct{}{}, nil
	})
	return err
}
