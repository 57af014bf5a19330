package httpclient

import (
	"net/http"

	json "github.com/goccy/go-json"
)

// Response is the immutable result of a completed exchange. It is fully
// buffered: the body has been read, the Content-Encoding reversed, and the
// connection released before the Response is handed to the caller.
type Response struct {
	// StatusCode is the HTTP status code.
	StatusCode int

	// Status is the reason phrase, e.g. "OK".
	Status string

	// Header is the response header mapping.
	Header http.Header

	// URL is the final URL after any redirects.
	URL string

	// Text is the decoded response body.
	Text string

	// Content is the raw response body before Content-Encoding reversal.
	Content []byte

	// Cookies is a name → value snapshot of the client's cookie jar taken
	// when the exchange completed.
	Cookies map[string]string
}

// OK reports whether the status code is in the 2xx range.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// IsSuccess is an alias for OK.
func (r *Response) IsSuccess() bool {
	return r.OK()
}

// JSON parses the decoded body as JSON. It returns nil when the body is not
// well-formed JSON.
func (r *Response) JSON() any {
	var v any
	if err := json.Unmarshal([]byte(r.Text), &v); err != nil {
		return nil
	}
	return v
}

// JSONSafe parses the decoded body as JSON, returning def on any fault.
// It never fails.
func (r *Response) JSONSafe(def any) any {
	var v any
	if err := json.Unmarshal([]byte(r.Text), &v); err != nil {
		return def
	}
	return v
}

// Decode unmarshals the decoded body into v.
func (r *Response) Decode(v any) error {
	return json.Unmarshal([]byte(r.Text), v)
}

// RequireSuccess returns a *StatusError when the status code is outside the
// 2xx range, nil otherwise.
func (r *Response) RequireSuccess() error {
	if r.OK() {
		return nil
	}
	return &StatusError{StatusCode: r.StatusCode, Status: r.Status, URL: r.URL}
}
