package httpclient

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownload(t *testing.T) {
	payload := []byte("file contents here")
	server := streamServer(t, payload)
	client := newTestClient(t)

	dest := filepath.Join(t.TempDir(), "out.bin")
	err := client.Download(context.Background(), server.URL, dest)
	require.NoError(t, err)

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestDownload_RetriesLikeBufferedRequests(t *testing.T) {
	payload := []byte("eventually")
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if hits == 1 {
			w.WriteHeader(503)
			return
		}
		w.Write(payload)
	}))
	defer server.Close()

	client := newTestClient(t)
	dest := filepath.Join(t.TempDir(), "out.bin")
	err := client.Download(context.Background(), server.URL, dest)
	require.NoError(t, err)

	assert.Equal(t, 2, hits)
	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestDownloadStream(t *testing.T) {
	payload := bytes.Repeat([]byte("d"), 1000)
	server := streamServer(t, payload)
	client := newTestClient(t)

	var progress []int64
	dest := filepath.Join(t.TempDir(), "out.bin")
	err := client.DownloadStream(context.Background(), server.URL, dest, 256,
		func(written int64) { progress = append(progress, written) })
	require.NoError(t, err)

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	// Monotonic totals, one per chunk, ending at the full size.
	assert.Equal(t, []int64{256, 512, 768, 1000}, progress)
}

func TestDownloadStream_TruncatedBodyFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "4096")
		w.Write(bytes.Repeat([]byte("t"), 512))
	}))
	defer server.Close()

	client := newTestClient(t)
	dest := filepath.Join(t.TempDir(), "out.bin")
	err := client.DownloadStream(context.Background(), server.URL, dest, 256, nil)

	require.Error(t, err)
}

func TestDownloadStream_NilProgress(t *testing.T) {
	payload := []byte("no callback")
	server := streamServer(t, payload)
	client := newTestClient(t)

	dest := filepath.Join(t.TempDir(), "out.bin")
	err := client.DownloadStream(context.Background(), server.URL, dest, 4, nil)
	require.NoError(t, err)

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}
