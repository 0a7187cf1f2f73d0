package crawl

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// FetchFunc is the signature for a fetch function.
type FetchFunc func(ctx context.Context, url string) (string, error)

// DefaultRetryDelays returns the backoff delays for fetch retries: 1s, 2s, 4s.
func DefaultRetryDelays() []time.Duration {
	return ExponentialDelays(time.Second, 3)
}

// ExponentialDelays returns n delays starting at base and doubling each time.
func ExponentialDelays(base time.Duration, n int) []time.Duration {
	delays := make([]time.Duration, n)
	for i := range delays {
		delays[i] = base << i
	}
	return delays
}

// permanentError marks an error that must not be retried.
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent wraps err so that Retry returns it immediately.
// Retry unwraps the marker, so callers see err itself.
func Permanent(err error) error {
	var perm *permanentError
	if err == nil || errors.As(err, &perm) {
		return err
	}
	return &permanentError{err: err}
}

// FetchWithRetryDelays fetches url, retrying failures after each of the
// given delays. See Retry.
func FetchWithRetryDelays(ctx context.Context, url string, fetch FetchFunc, logger *slog.Logger, delays []time.Duration) (string, error) {
	return Retry(ctx, url, func(ctx context.Context) (string, error) {
		return fetch(ctx, url)
	}, logger, delays)
}

// Retry calls op until it succeeds, sleeping delays[i] before attempt i+2.
// Errors wrapped with Permanent stop immediately. After the last attempt the
// final error is returned as-is. The logger, if not nil, records each retry.
func Retry[T any](ctx context.Context, name string, op func(ctx context.Context) (T, error), logger *slog.Logger, delays []time.Duration) (T, error) {
	var zero T
	maxAttempts := len(delays) + 1 // 1 initial + N retries

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		v, err := op(ctx)
		if err == nil {
			return v, nil
		}

		var perm *permanentError
		if errors.As(err, &perm) {
			return zero, perm.err
		}
		lastErr = err

		// Don't retry after the last attempt
		if attempt >= maxAttempts-1 {
			break
		}

		if err := ctx.Err(); err != nil {
			return zero, err
		}

		if logger != nil {
			logger.Debug("retry", "target", name, "attempt", attempt+2, "err", err)
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delays[attempt]):
		}
	}

	return zero, lastErr
}
