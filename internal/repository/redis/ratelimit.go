package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/hollis/supportdesk/internal/domain"
)

// RateLimiter throttles callers with a fixed one-minute window per key.
// Counters live in window-stamped keys so a stale counter can never leak
// into the next window even if the expiry write was lost.
type RateLimiter struct {
	client *Client
	limit  int64
	now    func() time.Time
}

func NewRateLimiter(client *Client, requestsPerMinute, burst int) *RateLimiter {
	return &RateLimiter{
		client: client,
		limit:  int64(requestsPerMinute + burst),
		now:    time.Now,
	}
}

// Allow counts one request for key and reports whether it fits the current
// window, how many requests remain and when the window resets.
func (r *RateLimiter) Allow(ctx context.Context, key string) (bool, int, time.Time, error) {
	windowStart := r.now().Truncate(time.Minute)
	windowEnd := windowStart.Add(time.Minute)
	counter := fmt.Sprintf("ratelimit:%s:%d", key, windowStart.Unix())

	pipe := r.client.rdb.Pipeline()
	incr := pipe.Incr(ctx, counter)
	// Two minutes covers clock skew between instances; the stamp in the
	// key is what actually scopes the window.
	pipe.Expire(ctx, counter, 2*time.Minute)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, time.Time{}, domain.Transient(fmt.Errorf("rate limit incr: %w", err))
	}

	count := incr.Val()
	remaining := r.limit - count
	if remaining < 0 {
		remaining = 0
	}
	return count <= r.limit, int(remaining), windowEnd, nil
}
