package storage

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"
)

const (
	// maxStorageAttempts is the total number of tries for every durable store operation
	maxStorageAttempts = 3

	backoffUnit = time.Second
)

// linearBackoff waits attempt * unit between tries
func linearBackoff(unit time.Duration) retry.Backoff {
	attempt := 0
	return retry.BackoffFunc(func() (time.Duration, bool) {
		attempt++
		return time.Duration(attempt) * unit, false
	})
}

// withRetry is a function that is used to run a durable store operation with a
// bounded number of retries, only errors marked with retry.RetryableError are
// tried again, everything else is surfaced immediately
func withRetry(ctx context.Context, op func(ctx context.Context) error) error {
	b := retry.WithMaxRetries(maxStorageAttempts-1, linearBackoff(backoffUnit))
	return retry.Do(ctx, b, op)
}
