package httpclient

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_RunsOnEveryRequest(t *testing.T) {
	mock := NewMockTransport().StubResponse(200, "ok")
	client := newTestClient(t,
		WithTransport(mock),
		WithMiddleware(APIKey("X-Api-Key", "k-123")),
	)

	_, err := client.Get(context.Background(), "http://example.test/a")
	require.NoError(t, err)
	assert.Equal(t, "k-123", mock.LastRequest().Header.Get("X-Api-Key"))

	_, err = client.Get(context.Background(), "http://example.test/b")
	require.NoError(t, err)
	assert.Equal(t, "k-123", mock.LastRequest().Header.Get("X-Api-Key"))
}

func TestMiddleware_RunsPerAttempt(t *testing.T) {
	var calls int
	mock := NewMockTransport().
		EnqueueResponse(503, "busy").
		EnqueueResponse(200, "ok")
	client := newRetryTestClient(t, mock,
		WithMiddleware(func(req *http.Request) { calls++ }),
	)

	_, err := client.Get(context.Background(), "http://example.test/a")
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestAddMiddleware_AppendsAtRuntime(t *testing.T) {
	mock := NewMockTransport().StubResponse(200, "ok")
	client := newTestClient(t, WithTransport(mock))

	_, err := client.Get(context.Background(), "http://example.test/a")
	require.NoError(t, err)
	assert.Empty(t, mock.LastRequest().Header.Get("X-Trace"))

	client.AddMiddleware(func(req *http.Request) {
		req.Header.Set("X-Trace", "on")
	})

	_, err = client.Get(context.Background(), "http://example.test/b")
	require.NoError(t, err)
	assert.Equal(t, "on", mock.LastRequest().Header.Get("X-Trace"))
}

func TestMiddleware_OrderAndOverride(t *testing.T) {
	mock := NewMockTransport().StubResponse(200, "ok")
	client := newTestClient(t,
		WithTransport(mock),
		WithBasicAuth("user", "secret"),
		WithMiddleware(BearerAuth("tok-1"), BearerAuth("tok-2")),
	)

	_, err := client.Get(context.Background(), "http://example.test/a")
	require.NoError(t, err)
	// Middleware runs after header building, last registration wins.
	assert.Equal(t, "Bearer tok-2", mock.LastRequest().Header.Get("Authorization"))
}

func TestMiddlewareHelpers(t *testing.T) {
	mock := NewMockTransport().StubResponse(200, "ok")
	var n int
	client := newTestClient(t,
		WithTransport(mock),
		WithMiddleware(
			UserAgent("custom-agent/9"),
			CorrelationID("X-Request-Id", func() string {
				n++
				return fmt.Sprintf("req-%d", n)
			}),
		),
	)

	_, err := client.Get(context.Background(), "http://example.test/a")
	require.NoError(t, err)
	assert.Equal(t, "custom-agent/9", mock.LastRequest().Header.Get("User-Agent"))
	assert.Equal(t, "req-1", mock.LastRequest().Header.Get("X-Request-Id"))

	_, err = client.Get(context.Background(), "http://example.test/b")
	require.NoError(t, err)
	assert.Equal(t, "req-2", mock.LastRequest().Header.Get("X-Request-Id"))
}
