package vkapi

import (
	"context"
	"time"
)

// RetryPolicy describes how a transient failure is retried.
// Attempts counts the first call; 2 means "retry once".
type RetryPolicy struct {
	Attempts int
	Backoff  time.Duration

	// OnRetry runs before each wait, e.g. to tell the user to hold on.
	OnRetry func(ctx context.Context, attempt int, err error)
}

// Retry runs fn and repeats it while it fails with a transient error and attempts remain.
// Fatal errors are returned immediately.
func Retry[T any](ctx context.Context, policy RetryPolicy, fn func(ctx context.Context) (T, error)) (T, error) {
	attempts := policy.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var (
		result T
		err    error
	)
	for attempt := 1; attempt <= attempts; attempt++ {
		result, err = fn(ctx)
		if err == nil || !IsTransient(err) || attempt == attempts {
			return result, err
		}

		if policy.OnRetry != nil {
			policy.OnRetry(ctx, attempt, err)
		}

		timer := time.NewTimer(policy.Backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			var zero T
			return zero, ctx.Err()
		case <-timer.C:
		}
	}
	return result, err
}
