package store

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryPolicy retries transient persistence failures with a constant
// backoff. Used for create operations during game initialization;
// turn-processing writes are never retried.
type RetryPolicy struct {
	MaxAttempts uint64
	BaseDelay   time.Duration
}

// DefaultRetry is the bootstrap policy: 3 attempts, 250ms apart.
var DefaultRetry = RetryPolicy{MaxAttempts: 3, BaseDelay: 250 * time.Millisecond}

// Do runs op, retrying on error up to MaxAttempts total attempts.
// Context cancellation stops the retry loop.
func (p RetryPolicy) Do(ctx context.Context, op func() error) error {
	bo := backoff.WithMaxRetries(backoff.NewConstantBackOff(p.BaseDelay), p.MaxAttempts-1)
	return backoff.Retry(op, backoff.WithContext(bo, ctx))
}
