package httpclient

import (
	"context"
	"errors"
	"net"
	"syscall"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultBreakerConfig(t *testing.T) {
	cfg := DefaultBreakerConfig()

	assert.Equal(t, uint32(1), cfg.MaxRequests)
	assert.Equal(t, 10*time.Second, cfg.Interval)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, uint32(20), cfg.FailureThreshold)
	assert.InDelta(t, 0.5, cfg.FailureRatio, 0.001)
	assert.Equal(t, uint32(5), cfg.ConsecutiveFailures)
}

func TestIsBreakerFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "given nil error, then not a failure", err: nil, want: false},
		{name: "given exhausted retries, then failure", err: &RetriesExhaustedError{Attempts: 3, Err: errors.New("x")}, want: true},
		{name: "given connection refused, then failure", err: syscall.ECONNREFUSED, want: true},
		{name: "given connection reset, then failure", err: syscall.ECONNRESET, want: true},
		{name: "given net timeout, then failure", err: &net.DNSError{IsTimeout: true}, want: true},
		{name: "given plain application error, then not a failure", err: errors.New("validation failed"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isBreakerFailure(tt.err))
		})
	}
}

func TestNewBreaker_TripsOnConsecutiveFailures(t *testing.T) {
	var transitions []gobreaker.State
	cfg := DefaultBreakerConfig()
	cfg.ConsecutiveFailures = 2
	cfg.OnStateChange = func(_ string, _, to gobreaker.State) {
		transitions = append(transitions, to)
	}

	cb := newBreaker("test", cfg)
	fail := func() (*Response, error) {
		return nil, &RetriesExhaustedError{Attempts: 1, Err: errors.New("down")}
	}

	_, err := cb.Execute(fail)
	require.Error(t, err)
	_, err = cb.Execute(fail)
	require.Error(t, err)

	// Third call is rejected without running.
	_, err = cb.Execute(fail)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Contains(t, transitions, gobreaker.StateOpen)
}

func TestNewBreaker_IgnoresApplicationStatuses(t *testing.T) {
	cfg := DefaultBreakerConfig()
	cfg.ConsecutiveFailures = 2

	cb := newBreaker("test", cfg)
	for i := 0; i < 10; i++ {
		resp, err := cb.Execute(func() (*Response, error) {
			// A 404 inside the attempt budget comes back as a plain response.
			return &Response{StatusCode: 404}, nil
		})
		require.NoError(t, err)
		assert.Equal(t, 404, resp.StatusCode)
	}
}

func TestClient_BreakerRejectsWhenOpen(t *testing.T) {
	mock := NewMockTransport().StubError(syscall.ECONNREFUSED)
	cfg := DefaultBreakerConfig()
	cfg.ConsecutiveFailures = 1

	client := newRetryTestClient(t, mock, WithMaxRetries(1), WithBreaker(cfg))

	_, err := client.Get(context.Background(), "http://down.test/")
	require.Error(t, err)

	attemptsBefore := mock.RequestCount()
	_, err = client.Get(context.Background(), "http://down.test/")
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, attemptsBefore, mock.RequestCount())
}
