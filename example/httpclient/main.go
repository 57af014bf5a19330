// Command httpclient demonstrates the courier HTTP client against a local
// test server: retried GETs, JSON and form POSTs, a multipart upload, a
// streamed download, and cookie persistence, with Prometheus metrics served
// on :2112.
package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/parakeet-labs/courier-go/httpclient"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	server := demoServer()
	defer server.Close()

	go func() {
		http.Handle("/metrics", promhttp.Handler())
		http.ListenAndServe(":2112", nil)
	}()

	workDir, err := os.MkdirTemp("", "courier-demo-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(workDir)

	logger := zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger()

	client, err := httpclient.New(
		httpclient.WithTimeout(5*time.Second),
		httpclient.WithMaxRetries(3),
		httpclient.WithBackoffFactor(200*time.Millisecond),
		httpclient.WithCookieFile(filepath.Join(workDir, "cookies.txt")),
		httpclient.WithMetrics(httpclient.NewMetrics()),
		httpclient.WithLogger(logger),
		httpclient.WithDebug(true),
	)
	if err != nil {
		return err
	}

	ctx := context.Background()

	// GET with query parameters. The first two attempts hit a flaky
	// endpoint that answers 503; the retry controller rides through.
	resp, err := client.Get(ctx, server.URL+"/flaky",
		httpclient.WithQuery(map[string]string{"page": "1"}),
	)
	if err != nil {
		return err
	}
	fmt.Printf("GET /flaky -> %d %s\n", resp.StatusCode, resp.Text)

	// POST with a JSON body (the default for structured fields).
	resp, err = client.Post(ctx, server.URL+"/echo",
		httpclient.Fields(map[string]any{"name": "ada", "role": "engineer"}),
	)
	if err != nil {
		return err
	}
	fmt.Printf("POST /echo -> %d %s\n", resp.StatusCode, resp.Text)

	// Same fields, form-encoded this time.
	resp, err = client.Post(ctx, server.URL+"/echo",
		httpclient.Fields(map[string]any{"name": "ada"}),
		httpclient.WithHeader("Content-Type", "application/x-www-form-urlencoded"),
	)
	if err != nil {
		return err
	}
	fmt.Printf("POST /echo (form) -> %d %s\n", resp.StatusCode, resp.Text)

	// Multipart upload with one field and one file.
	reportPath := filepath.Join(workDir, "report.txt")
	if err := os.WriteFile(reportPath, []byte("quarterly numbers\n"), 0o600); err != nil {
		return err
	}
	resp, err = client.PostMultipart(ctx, server.URL+"/upload",
		map[string]string{"title": "Q3"},
		map[string]string{"report": reportPath},
	)
	if err != nil {
		return err
	}
	fmt.Printf("POST /upload -> %d %s\n", resp.StatusCode, resp.Text)

	// Streamed download with progress reporting.
	destPath := filepath.Join(workDir, "archive.bin")
	err = client.DownloadStream(ctx, server.URL+"/archive", destPath, 16*1024,
		func(written int64) {
			fmt.Printf("  downloaded %d bytes\r", written)
		},
	)
	if err != nil {
		return err
	}
	info, err := os.Stat(destPath)
	if err != nil {
		return err
	}
	fmt.Printf("\nGET /archive -> %d bytes on disk\n", info.Size())

	// The session cookie the server set on the first call survived every
	// exchange and is on disk next to the download.
	fmt.Printf("cookies: %v\n", client.Cookies())
	return nil
}

// demoServer serves the endpoints the demo calls.
func demoServer() *httptest.Server {
	var flakyHits int
	mux := http.NewServeMux()

	mux.HandleFunc("/flaky", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "demo-session", Path: "/"})
		flakyHits++
		if flakyHits < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"attempt":%d,"page":%q}`, flakyHits, r.URL.Query().Get("page"))
	})

	mux.HandleFunc("/echo", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "received %s body", r.Header.Get("Content-Type"))
	})

	mux.HandleFunc("/upload", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		file := "none"
		for name := range r.MultipartForm.File {
			file = name
		}
		fmt.Fprintf(w, "title=%s file=%s", r.FormValue("title"), file)
	})

	mux.HandleFunc("/archive", func(w http.ResponseWriter, r *http.Request) {
		chunk := make([]byte, 1024)
		for i := 0; i < 256; i++ {
			w.Write(chunk)
		}
	})

	return httptest.NewServer(mux)
}
