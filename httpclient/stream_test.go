package httpclient

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func streamServer(t *testing.T, payload []byte) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write(payload)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestStreamResponse_ExactChunks(t *testing.T) {
	payload := bytes.Repeat([]byte("x"), 1024)
	server := streamServer(t, payload)
	client := newTestClient(t)

	stream, err := client.StreamResponse(context.Background(), server.URL, 128)
	require.NoError(t, err)
	defer stream.Close()

	assert.Equal(t, 200, stream.StatusCode())

	var chunks int
	var got []byte
	for {
		chunk, err := stream.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		assert.Len(t, chunk, 128)
		chunks++
		got = append(got, chunk...)
	}

	assert.Equal(t, 8, chunks)
	assert.Equal(t, payload, got)
}

func TestStreamResponse_ShortFinalChunk(t *testing.T) {
	payload := bytes.Repeat([]byte("y"), 300)
	server := streamServer(t, payload)
	client := newTestClient(t)

	stream, err := client.StreamResponse(context.Background(), server.URL, 128)
	require.NoError(t, err)
	defer stream.Close()

	var sizes []int
	for {
		chunk, err := stream.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		sizes = append(sizes, len(chunk))
	}

	assert.Equal(t, []int{128, 128, 44}, sizes)
}

func TestStreamResponse_EmptyBody(t *testing.T) {
	server := streamServer(t, nil)
	client := newTestClient(t)

	stream, err := client.StreamResponse(context.Background(), server.URL, 128)
	require.NoError(t, err)
	defer stream.Close()

	_, err = stream.Next()
	assert.Equal(t, io.EOF, err)
}

func TestStreamResponse_NextAfterEOFKeepsReturningEOF(t *testing.T) {
	server := streamServer(t, []byte("tiny"))
	client := newTestClient(t)

	stream, err := client.StreamResponse(context.Background(), server.URL, 128)
	require.NoError(t, err)

	chunk, err := stream.Next()
	require.NoError(t, err)
	assert.Equal(t, []byte("tiny"), chunk)

	_, err = stream.Next()
	assert.Equal(t, io.EOF, err)
	_, err = stream.Next()
	assert.Equal(t, io.EOF, err)
}

func TestStreamResponse_NextAfterCloseReturnsConsumed(t *testing.T) {
	server := streamServer(t, bytes.Repeat([]byte("z"), 1024))
	client := newTestClient(t)

	stream, err := client.StreamResponse(context.Background(), server.URL, 128)
	require.NoError(t, err)

	_, err = stream.Next()
	require.NoError(t, err)

	require.NoError(t, stream.Close())
	require.NoError(t, stream.Close())

	_, err = stream.Next()
	assert.ErrorIs(t, err, ErrStreamConsumed)
}

func TestStreamResponse_DefaultChunkSize(t *testing.T) {
	payload := bytes.Repeat([]byte("a"), DefaultChunkSize+10)
	server := streamServer(t, payload)
	client := newTestClient(t)

	stream, err := client.StreamResponse(context.Background(), server.URL, 0)
	require.NoError(t, err)
	defer stream.Close()

	chunk, err := stream.Next()
	require.NoError(t, err)
	assert.Len(t, chunk, DefaultChunkSize)
}

func TestStreamResponse_TruncatedBodySurfacesError(t *testing.T) {
	// The handler advertises more bytes than it writes, so the connection
	// drops mid-body.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "1024")
		w.Write(bytes.Repeat([]byte("t"), 100))
	}))
	defer server.Close()

	client := newTestClient(t)
	stream, err := client.StreamResponse(context.Background(), server.URL, 64)
	require.NoError(t, err)
	defer stream.Close()

	var sawErr error
	for {
		_, err := stream.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			sawErr = err
			break
		}
	}

	require.Error(t, sawErr, "truncated body must not end as a clean io.EOF")
	assert.ErrorIs(t, sawErr, io.ErrUnexpectedEOF)

	// The failed stream cannot be resumed.
	_, err = stream.Next()
	assert.ErrorIs(t, err, ErrStreamConsumed)
}

func TestStreamResponse_NotRetried(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(503)
	}))
	defer server.Close()

	client := newTestClient(t)
	stream, err := client.StreamResponse(context.Background(), server.URL, 128)
	require.NoError(t, err)
	defer stream.Close()

	// The retryable status comes back as-is, after exactly one exchange.
	assert.Equal(t, 503, stream.StatusCode())
	assert.Equal(t, 1, hits)
}
