package util

import (
	"context"
	"fmt"
	"time"
)

// Retry calls fn up to maxAttempts times with exponential backoff starting
// at baseDelay, respecting context cancellation between attempts. It is only
// suitable for idempotent operations; order submissions must not go through
// it. The last error is returned annotated with the attempt count.
func Retry(ctx context.Context, maxAttempts int, baseDelay time.Duration, fn func() error) error {
	var err error
	delay := baseDelay

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}

		if attempt == maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}

	return fmt.Errorf("after %d attempts: %w", maxAttempts, err)
}
