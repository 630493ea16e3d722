package backoff

import (
	"context"
	"fmt"
	"time"

	"github.com/datazip-inc/tsvingest/utils/logger"
)

// Retry executes f up to attempts times, doubling the wait between attempts starting at
// sleep. It stops early when shouldRetry rejects an error or ctx is done, and returns the
// last error seen.
func Retry(ctx context.Context, attempts int, sleep time.Duration, f func() error, shouldRetry func(error) bool) error {
	if attempts < 1 {
		attempts = 1
	}
	if sleep <= 0 {
		sleep = time.Second
	}
	var lastErr error
	for cur := 0; cur < attempts; cur++ {
		err := f()
		if err == nil {
			return nil
		}
		lastErr = err
		if !shouldRetry(err) {
			return err
		}
		if cur == attempts-1 {
			break
		}

		logger.Warnf("attempt %d/%d failed, retrying in %s: %s", cur+1, attempts, sleep, err)
		select {
		case <-ctx.Done():
			return fmt.Errorf("%s: %w", lastErr, ctx.Err())
		case <-time.After(sleep):
		}
		sleep *= 2
	}
	return lastErr
}
