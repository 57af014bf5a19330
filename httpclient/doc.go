// Package httpclient provides a general-purpose HTTP client with retries,
// cookie persistence, redirect control, basic authentication, streaming
// downloads, and multipart uploads behind a single configurable client.
//
// # Quick Start
//
//	client, err := httpclient.New(
//	    httpclient.WithTimeout(10*time.Second),
//	    httpclient.WithMaxRetries(3),
//	)
//	if err != nil {
//	    return err
//	}
//
//	resp, err := client.Get(ctx, "https://api.example.com/users",
//	    httpclient.WithQuery(map[string]string{"page": "1"}),
//	)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(resp.StatusCode, resp.Text)
//
// # Request Bodies
//
// Bodies are built explicitly as raw bytes or structured fields:
//
//	// Structured fields, serialized according to Content-Type
//	resp, err := client.Post(ctx, url, httpclient.Fields(map[string]any{"a": 1}))
//
//	// Raw bytes, passed through unchanged
//	resp, err := client.Post(ctx, url, httpclient.Raw(payload))
//
// A Fields body with a missing or unrecognized Content-Type header is
// serialized as JSON and the header is forced to "application/json". Set
// the header to "application/x-www-form-urlencoded" to get form encoding.
//
// # Retries
//
// Every buffered operation runs through a retry controller. A transport
// fault, a response-decoding fault, or a status code in the retryable set
// (429, 500, 502, 503, 504 by default) triggers another attempt with
// exponential backoff: backoff factor × 2^(attempt-1) between attempts.
// WithMaxRetries sets the total attempt count per logical call, default 3.
//
// The retry policy is method-blind: POST is retried the same way as GET.
// Callers issuing non-idempotent requests against endpoints without
// idempotency keys should set WithMaxRetries(1) or narrow the status set
// with WithRetryStatuses.
//
// Streaming operations (StreamResponse, DownloadStream) perform exactly one
// exchange and are never retried: a fault mid-stream cannot be replayed
// without re-issuing the whole request, so it propagates immediately.
//
// # Concurrency
//
// One client serializes all buffered exchanges through a client-wide lock.
// Concurrent calls on the same client block and run one at a time, which
// keeps the cookie jar and its on-disk persistence free of races. Separate
// clients are fully independent. Streaming reads hold no client-wide lock.
//
// # Cookies
//
// Each client owns an RFC 6265 cookie jar. With WithCookieFile the jar is
// loaded at construction and rewritten after every completed exchange in
// the Netscape cookies.txt text format, guarded by a file lock so that
// clients in different processes never interleave writes.
//
// # Observability
//
// Debug logging uses zerolog (WithDebug). Prometheus metrics (WithMetrics)
// and OpenTelemetry spans (WithTracerProvider) are optional and no-ops when
// not configured.
package httpclient

// Version is the library version, reported in the default User-Agent.
const Version = "1.0.0"
