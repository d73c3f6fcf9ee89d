package wait

import (
	"errors"
	"fmt"
	"time"
)

// ErrCancelled is matched by the error Until returns when its context is
// done before the wait ends.
var ErrCancelled = errors.New("wait cancelled")

func cancelled(cause error) error {
	return fmt.Errorf("%w: %w", ErrCancelled, cause)
}

// TimeoutError is returned by Until when the predicate was never satisfied.
type TimeoutError struct {
	// Condition is the description given to Until.
	Condition string
	// Timeout is the configured timeout.
	Timeout time.Duration
	// Elapsed is the time spent waiting.
	Elapsed time.Duration
	// Attempts is the number of times the predicate was evaluated.
	Attempts int
	// Last is the reason given by the last evaluation.
	Last error
}

func (e *TimeoutError) Error() string {
	msg := fmt.Sprintf("timed out after %v (timeout %v, %d attempts) waiting for %s",
		e.Elapsed.Round(time.Millisecond), e.Timeout, e.Attempts, e.Condition)
	if e.Last != nil {
		msg += ": " + e.Last.Error()
	}
	return msg
}

// Unwrap returns the last not-ready reason, so that errors.Is(err,
// browser.ErrNotVisible) works on a timeout.
func (e *TimeoutError) Unwrap() error {
	return e.Last
}

// IsTimeout reports whether err is or wraps a *TimeoutError.
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}

// notReadyError marks an error as "condition not satisfied yet".
type notReadyError struct {
	err error
}

func (e *notReadyError) Error() string { return e.err.Error() }
func (e *notReadyError) Unwrap() error { return e.err }

// NotReady returns an error telling Until that the condition does not hold
// yet and should be evaluated again.
func NotReady(format string, args ...interface{}) error {
	return &notReadyError{err: fmt.Errorf(format, args...)}
}

// Retryable marks err as transient. Until retries the predicate instead of
// returning err. A nil err stays nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	if IsNotReady(err) {
		return err
	}
	return &notReadyError{err: err}
}

// IsNotReady reports whether err was produced by NotReady or Retryable.
// A *TimeoutError is never "not ready", even though it wraps the last
// not-ready reason, so nested waits do not retry each other's timeouts.
func IsNotReady(err error) bool {
	for err != nil {
		switch err.(type) {
		case *notReadyError:
			return true
		case *TimeoutError:
			return false
		}
		err = errors.Unwrap(err)
	}
	return false
}
