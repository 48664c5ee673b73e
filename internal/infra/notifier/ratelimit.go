package notifier

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimiter paces outgoing webhook requests with a token bucket so
// the dispatcher stays under Discord's per-webhook rate limit even
// before the API answers with a 429.
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter allows bursts of up to burst requests, refilled at
// requestsPerSecond.
func NewRateLimiter(requestsPerSecond float64, burst int) *RateLimiter {
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

// Allow blocks until a token is available or ctx is done, returning the
// context error in the latter case. Call it before each request.
func (r *RateLimiter) Allow(ctx context.Context) error {
	return r.limiter.Wait(ctx)
}
