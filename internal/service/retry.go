package service

import (
	"context"
	"time"

	"github.com/hollis/supportdesk/internal/domain"
)

// withBackoff retries fn on retryable failures with exponential backoff,
// up to attempts total calls. Non-retryable errors return immediately.
func withBackoff(ctx context.Context, attempts int, base time.Duration, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil || !domain.IsRetryable(err) {
			return err
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-time.After(base << i):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}
