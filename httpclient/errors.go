package httpclient

import (
	"errors"
	"fmt"
)

// ErrStreamConsumed is returned by BodyStream.Next after the stream has been
// closed without reaching its natural end. Streams are single-pass and
// cannot be restarted.
var ErrStreamConsumed = errors.New("httpclient: stream already consumed")

// StatusError reports a non-success HTTP status. It is returned by
// Response.RequireSuccess and wrapped by RetriesExhaustedError when the
// final attempt of a logical call produced a retryable status.
type StatusError struct {
	// StatusCode is the HTTP status code.
	StatusCode int

	// Status is the reason phrase, e.g. "Service Unavailable".
	Status string

	// URL is the final URL that produced the status.
	URL string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("httpclient: HTTP %d %s (%s)", e.StatusCode, e.Status, e.URL)
}

// DecodeError reports a failure reversing the response Content-Encoding.
// Decode faults are fatal to the current attempt and retried like transport
// faults.
type DecodeError struct {
	// Encoding is the Content-Encoding value that failed to decode.
	Encoding string

	// Err is the underlying decompression error.
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("httpclient: decoding %q response body: %v", e.Encoding, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// RetriesExhaustedError is returned after the retry controller has used all
// attempts for a logical call. Err carries the last observed fault, or a
// *StatusError when the last attempt completed with a retryable status. In
// the latter case the last Response is also returned to the caller alongside
// this error.
type RetriesExhaustedError struct {
	// Attempts is the number of attempts performed.
	Attempts int

	// Err is the last fault or retryable-status error observed.
	Err error
}

func (e *RetriesExhaustedError) Error() string {
	return fmt.Sprintf("httpclient: retries exhausted after %d attempts: %v", e.Attempts, e.Err)
}

func (e *RetriesExhaustedError) Unwrap() error { return e.Err }
