package httpclient

import (
	"golang.org/x/time/rate"
)

// RateLimitConfig configures client-level rate limiting. Each attempt
// (including retries) consumes one token; attempts wait for a token,
// respecting the call context.
type RateLimitConfig struct {
	// RequestsPerSecond is the maximum sustained attempt rate.
	RequestsPerSecond float64

	// Burst is the number of attempts allowed in a spike above the
	// sustained rate. Zero means no burst headroom beyond one token.
	Burst int
}

func newLimiter(cfg *RateLimitConfig) *rate.Limiter {
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
}
