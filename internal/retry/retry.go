package retry

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"time"

	"ytpulse/internal/logging"
)

type options struct {
	sleeper func(context.Context, time.Duration) error
	rnd     func() float64
	logger  *slog.Logger
	op      string
	onRetry func(attempt int, delay time.Duration, err error)
}

// Option customizes a single Do invocation.
type Option func(*options)

// WithSleeper overrides how backoff waits are performed (useful for tests).
func WithSleeper(sleeper func(context.Context, time.Duration) error) Option {
	return func(o *options) {
		if sleeper != nil {
			o.sleeper = sleeper
		}
	}
}

// WithRand overrides the jitter source. The function must return values in [0,1).
func WithRand(rnd func() float64) Option {
	return func(o *options) {
		if rnd != nil {
			o.rnd = rnd
		}
	}
}

// WithLogger logs each scheduled retry at debug level under op.
func WithLogger(logger *slog.Logger, op string) Option {
	return func(o *options) {
		o.logger = logger
		o.op = op
	}
}

// WithOnRetry registers a callback invoked before each backoff wait.
func WithOnRetry(fn func(attempt int, delay time.Duration, err error)) Option {
	return func(o *options) {
		o.onRetry = fn
	}
}

// Do calls op until it succeeds, fails permanently, or the policy is exhausted.
// The returned error is the last error produced by op, unchanged.
func Do[T any](ctx context.Context, policy Policy, op func(context.Context) (T, error), opts ...Option) (T, error) {
	o := options{sleeper: Sleep, rnd: rand.Float64}
	for _, opt := range opts {
		opt(&o)
	}

	var zero T
	attempts := policy.Attempts()
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			delay := policy.Delay(attempt, o.rnd)
			if o.onRetry != nil {
				o.onRetry(attempt, delay, lastErr)
			}
			if o.logger != nil {
				o.logger.Debug("retrying upstream call",
					logging.String("op", o.op),
					logging.Int("attempt", attempt+1),
					logging.Int("max_attempts", attempts),
					logging.Duration("delay", delay),
					logging.Error(lastErr),
				)
			}
			if err := o.sleeper(ctx, delay); err != nil {
				return zero, err
			}
		}
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		value, err := runAttempt(ctx, policy.AttemptTimeout, op)
		if err == nil {
			return value, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return zero, lastErr
		}
		if !IsRetryable(err) {
			return zero, lastErr
		}
	}
	return zero, lastErr
}

func runAttempt[T any](ctx context.Context, timeout time.Duration, op func(context.Context) (T, error)) (T, error) {
	if timeout <= 0 {
		return op(ctx)
	}
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	value, err := op(attemptCtx)
	if err != nil && ctx.Err() == nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
		return value, &attemptTimeoutError{err: err}
	}
	return value, err
}

// Sleep waits for delay or until ctx is done.
func Sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
