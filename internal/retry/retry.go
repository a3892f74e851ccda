// Package retry re-runs transient-prone operations with linear backoff.
// Errors wrapped Permanent stop the loop immediately; everything else is
// treated as retryable, so callers classify before (or while) failing.
package retry

import (
	"context"
	"errors"
	"time"

	"marlin/internal/logger"
)

// Options bound the retry budget: at most Retries+1 attempts, sleeping
// Backoff*attempt between them.
type Options struct {
	Retries int
	Backoff time.Duration
}

// DefaultOptions mirror the broker submission budget.
func DefaultOptions() Options {
	return Options{Retries: 3, Backoff: 500 * time.Millisecond}
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as non-retryable. Do unwraps the marker before
// returning, so callers see the original error.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err carries the non-retryable marker.
func IsPermanent(err error) bool {
	var pe *permanentError
	return errors.As(err, &pe)
}

// Do invokes fn until it succeeds, returns a permanent error, exhausts the
// retry budget, or ctx is done. The backoff sleep is ctx-aware.
func Do(ctx context.Context, opts Options, fn func() error) error {
	var lastErr error
	for attempt := 0; ; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		var pe *permanentError
		if errors.As(lastErr, &pe) {
			return pe.err
		}
		if attempt >= opts.Retries {
			return lastErr
		}
		sleep := opts.Backoff * time.Duration(attempt+1)
		logger.Debugf("retry: attempt %d failed, sleeping %s: %v", attempt+1, sleep, lastErr)
		timer := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// DoValue is Do for operations that produce a value.
func DoValue[T any](ctx context.Context, opts Options, fn func() (T, error)) (T, error) {
	var out T
	err := Do(ctx, opts, func() error {
		v, err := fn()
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}
