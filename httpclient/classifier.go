package httpclient

import (
	"context"
	"net/http"
)

// attemptOutcome is the tagged result of a single attempt, consumed directly
// by the retry controller's state machine. Expected retry signals are never
// modeled as raised faults.
type attemptOutcome int

const (
	// outcomeSuccess terminates the call with the attempt's response.
	outcomeSuccess attemptOutcome = iota

	// outcomeRetry schedules another attempt if any remain.
	outcomeRetry

	// outcomeFatal terminates the call immediately with the attempt's error.
	outcomeFatal
)

// defaultRetryStatuses is the default retryable status set.
func defaultRetryStatuses() map[int]struct{} {
	return map[int]struct{}{
		http.StatusTooManyRequests:     {},
		http.StatusInternalServerError: {},
		http.StatusBadGateway:          {},
		http.StatusServiceUnavailable:  {},
		http.StatusGatewayTimeout:      {},
	}
}

// classifyAttempt maps an attempt result to an outcome.
//
// Policy is strictly status-set-driven for HTTP-level results: a status in
// the retryable set retries, every other status is an ordinary response.
// Any fault (connection, TLS, DNS, timeout, decode) retries, unless the
// parent context is already done, in which case further attempts would run
// against a dead context and the fault is terminal. Per-attempt deadline
// expiry does not trip that check and retries like any other fault.
func classifyAttempt(ctx context.Context, resp *Response, err error, retryStatuses map[int]struct{}) attemptOutcome {
	if err != nil {
		if ctx.Err() != nil {
			return outcomeFatal
		}
		return outcomeRetry
	}
	if _, ok := retryStatuses[resp.StatusCode]; ok {
		return outcomeRetry
	}
	return outcomeSuccess
}
