package httpclient

import (
	"errors"
	"net"
	"syscall"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
)

// BreakerConfig configures the optional circuit breaker. One logical call
// (the whole retry sequence) counts as one breaker request.
//
// States follow gobreaker: closed (normal), open (rejecting immediately),
// half-open (probing recovery with up to MaxRequests calls).
type BreakerConfig struct {
	// MaxRequests is the number of calls allowed through while half-open.
	// Zero allows exactly one probe.
	MaxRequests uint32

	// Interval is the cyclic period over which the closed-state counters
	// reset. Zero means the counters never reset while closed.
	Interval time.Duration

	// Timeout is how long the breaker stays open before probing.
	Timeout time.Duration

	// FailureThreshold is the minimum number of calls in a counting window
	// before FailureRatio can trip the breaker.
	FailureThreshold uint32

	// FailureRatio trips the breaker once the failure rate reaches this
	// fraction (0.0–1.0), provided FailureThreshold calls were seen.
	FailureRatio float64

	// ConsecutiveFailures trips the breaker after this many failures in a
	// row. Zero disables the rule.
	ConsecutiveFailures uint32

	// OnStateChange is invoked on every state transition.
	OnStateChange func(name string, from, to gobreaker.State)
}

// DefaultBreakerConfig returns a local breaker tuned to fail fast and
// recover fast: 10s counting interval, 10s open timeout, trip at 50%
// failures over at least 20 calls or 5 consecutive failures.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:         1,
		Interval:            10 * time.Second,
		Timeout:             10 * time.Second,
		FailureThreshold:    20,
		FailureRatio:        0.5,
		ConsecutiveFailures: 5,
	}
}

func newBreaker(name string, cfg BreakerConfig) *gobreaker.CircuitBreaker[*Response] {
	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 1
	}
	return gobreaker.NewCircuitBreaker[*Response](gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if cfg.ConsecutiveFailures > 0 && counts.ConsecutiveFailures >= cfg.ConsecutiveFailures {
				return true
			}
			if counts.Requests < threshold {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= cfg.FailureRatio
		},
		IsSuccessful: func(err error) bool {
			return !isBreakerFailure(err)
		},
		OnStateChange: cfg.OnStateChange,
	})
}

// isBreakerFailure classifies outcomes for the breaker. Network faults and
// exhausted retries count against it; application-level error statuses that
// came back inside the attempt budget do not.
func isBreakerFailure(err error) bool {
	if err == nil {
		return false
	}
	var exhausted *RetriesExhaustedError
	if errors.As(err, &exhausted) {
		return true
	}
	return isNetworkError(err)
}

func isNetworkError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ETIMEDOUT)
}
