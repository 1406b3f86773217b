package retry

import (
	"context"
	"fmt"
	"time"
)

// Config controls the retry loop. Attempts is the total number of tries,
// not the number of retries after the first failure.
type Config struct {
	Attempts int
	Delay    time.Duration
	Backoff  bool // linear backoff: delay * attempt number
}

// Do runs fn until it succeeds or the attempt budget is spent. The delay
// between attempts is fixed unless Backoff is set.
func Do(ctx context.Context, cfg Config, fn func() error) error {
	var lastErr error

	for attempt := 1; attempt <= cfg.Attempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		if attempt == cfg.Attempts {
			return fmt.Errorf("failed after %d attempts: %w", cfg.Attempts, lastErr)
		}

		delay := cfg.Delay
		if cfg.Backoff {
			delay = time.Duration(attempt) * cfg.Delay
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	return lastErr
}
