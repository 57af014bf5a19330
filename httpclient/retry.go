package httpclient

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/otel/trace"
)

// maxBackoffInterval caps the exponential delay schedule. For realistic
// attempt counts the cap never engages and the schedule stays exactly
// factor × 2^(n-1).
const maxBackoffInterval = 5 * time.Minute

// newBackoff builds the delay schedule for one logical call. With zero
// jitter the sequence is deterministic: factor, factor×2, factor×4, …
func newBackoff(factor time.Duration, jitter float64) backoff.BackOff {
	return &backoff.ExponentialBackOff{
		InitialInterval:     factor,
		RandomizationFactor: jitter,
		Multiplier:          2,
		MaxInterval:         maxBackoffInterval,
	}
}

// attemptFunc performs one full request/response exchange.
type attemptFunc func(ctx context.Context, attempt int) (*Response, error)

// runWithRetry drives the retry state machine for one logical call.
//
// Attempts are numbered 1..maxRetries (maxRetries is the total attempt
// count). A success outcome returns immediately. A retryable outcome sleeps
// the backoff delay and tries again; when attempts run out the last fault or
// retryable-status response is surfaced via *RetriesExhaustedError. No delay
// is slept after the final attempt. The caller holds the client lock during
// the delay, so other calls on the same client queue behind it.
func (c *Client) runWithRetry(ctx context.Context, method string, fn attemptFunc) (*Response, error) {
	b := newBackoff(c.cfg.backoffFactor, c.cfg.retryJitter)
	span := trace.SpanFromContext(ctx)

	var (
		lastResp *Response
		lastErr  error
	)

	for attempt := 1; ; attempt++ {
		resp, err := fn(ctx, attempt)

		switch classifyAttempt(ctx, resp, err, c.cfg.retryStatuses) {
		case outcomeSuccess:
			return resp, nil
		case outcomeFatal:
			return nil, err
		}

		lastResp, lastErr = resp, err
		if err == nil {
			lastErr = &StatusError{StatusCode: resp.StatusCode, Status: resp.Status, URL: resp.URL}
		}

		if attempt >= c.cfg.maxRetries {
			return lastResp, &RetriesExhaustedError{Attempts: attempt, Err: lastErr}
		}

		delay := b.NextBackOff()
		c.metrics.recordRetry(method)
		recordRetryEvent(span, attempt, lastErr, delay)
		c.logger.Debug().
			Int("attempt", attempt).
			Int("max_retries", c.cfg.maxRetries).
			Dur("backoff", delay).
			Err(lastErr).
			Msg("retrying request")

		if serr := sleepContext(ctx, delay); serr != nil {
			return lastResp, serr
		}
	}
}

// sleepContext blocks for d or until ctx is done, whichever comes first.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
