package resilience

import (
	"context"
	"errors"
	"time"
)

// RetryPolicy bounds attempts of a fallible call.
type RetryPolicy struct {
	// MaxAttempts counts the first call; values below 1 mean 1.
	MaxAttempts int
	// AttemptTimeout caps every attempt; zero means no per-attempt cap.
	AttemptTimeout time.Duration
	// Backoff is multiplied by the attempt number between attempts.
	Backoff time.Duration
	// Retryable decides whether an error is worth another attempt.
	// Nil retries everything except context cancellation.
	Retryable func(error) bool
}

// Retry runs fn until it succeeds, the policy is exhausted, or ctx is done.
// It returns the last error produced by fn, or ctx.Err() when the caller gave up.
func Retry(ctx context.Context, policy RetryPolicy, fn func(context.Context) error) error {
	attempts := policy.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return lastErr
			}
			return err
		}

		lastErr = runAttempt(ctx, policy.AttemptTimeout, fn)
		if lastErr == nil {
			return nil
		}
		if !policy.shouldRetry(lastErr) || attempt == attempts {
			return lastErr
		}

		wait := time.Duration(attempt) * policy.Backoff
		var openErr *CircuitOpenError
		if errors.As(lastErr, &openErr) && openErr.RetryAfter > wait {
			wait = openErr.RetryAfter
		}
		if !SleepWithContext(ctx, wait) {
			return lastErr
		}
	}
	return lastErr
}

func runAttempt(ctx context.Context, timeout time.Duration, fn func(context.Context) error) error {
	if timeout <= 0 {
		return fn(ctx)
	}
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fn(attemptCtx)
}

func (p RetryPolicy) shouldRetry(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	if p.Retryable == nil {
		return true
	}
	return p.Retryable(err)
}

// SleepWithContext waits for delay or returns false early if ctx is done.
func SleepWithContext(ctx context.Context, delay time.Duration) bool {
	if delay <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
