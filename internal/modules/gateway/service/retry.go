package service

import (
	"context"
	"fmt"
	"time"

	"hedge_bot/pkg/logger"

	"github.com/cenkalti/backoff/v4"
)

// Error marks a gateway call that failed after exhausting its retries.
// Callers treat it as recoverable: fall back to defaults or skip the cycle.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return fmt.Sprintf("gateway %s: %v", e.Op, e.Err) }
func (e *Error) Unwrap() error { return e.Err }

// withRetry runs fn under exponential backoff with a bounded attempt count.
func (c *Client) withRetry(ctx context.Context, op string, fn func() error) error {
	attempts := c.maxAttempts
	if attempts <= 0 {
		attempts = 3
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 200 * time.Millisecond
	bo.MaxInterval = 5 * time.Second

	policy := backoff.WithContext(backoff.WithMaxRetries(bo, uint64(attempts-1)), ctx)

	err := backoff.RetryNotify(fn, policy, func(err error, wait time.Duration) {
		logger.Error("[GATEWAY] %s failed, retry in %s: %v", op, wait, err)
	})
	if err != nil {
		return &Error{Op: op, Err: err}
	}
	return nil
}
