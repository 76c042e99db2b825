package middleware

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/hollis/supportdesk/internal/api/response"
	"github.com/hollis/supportdesk/internal/repository/redis"
)

// RateLimitMiddleware throttles inbound messages per caller.
type RateLimitMiddleware struct {
	limiter *redis.RateLimiter
}

func NewRateLimitMiddleware(limiter *redis.RateLimiter) *RateLimitMiddleware {
	return &RateLimitMiddleware{limiter: limiter}
}

// Limit enforces the per-minute budget, keyed by user id header when
// present, remote address otherwise.
func (m *RateLimitMiddleware) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("X-User-ID")
		if key == "" {
			key = r.RemoteAddr
		}

		allowed, remaining, reset, err := m.limiter.Allow(r.Context(), key)
		if err != nil {
			// Rate limiting is best effort; an unreachable limiter does
			// not block traffic.
			log.Warn().Err(err).Msg("rate limit check failed")
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))
		w.Header().Set("X-RateLimit-Reset", reset.Format(http.TimeFormat))

		if !allowed {
			response.Error(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		next.ServeHTTP(w, r)
	})
}
