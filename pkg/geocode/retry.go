package geocode

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// retry runs fn up to the configured attempt ceiling, backing off
// exponentially between attempts. Only transient failures are retried.
func (c *client) retry(ctx context.Context, fn func(context.Context) error) error {
	var err error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			delay := c.baseDelay << (attempt - 2)
			zap.L().Debug("geocode retrying",
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
				zap.Error(err))
			select {
			case <-ctx.Done():
				return newFailure(KindTransport, ctx.Err())
			case <-time.After(delay):
			}
		}

		err = fn(ctx)
		if err == nil || !IsTransient(err) {
			return err
		}
	}
	return err
}
