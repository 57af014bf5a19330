package httpclient

import (
	"context"
	"io"
	"net/http"
)

// BodyStream is a lazy, finite, single-pass sequence of response body
// chunks. It is produced by Client.StreamResponse and holds one open
// transport exchange; no client-wide lock is held while reading.
//
// Streams are never retried: a fault mid-stream propagates immediately from
// Next, because the exchange cannot be replayed without re-issuing the whole
// request.
type BodyStream struct {
	resp      *http.Response
	cancel    context.CancelFunc
	chunkSize int
	done      bool
	closed    bool
}

// StatusCode returns the HTTP status code of the underlying exchange.
func (s *BodyStream) StatusCode() int {
	return s.resp.StatusCode
}

// Header returns the response headers of the underlying exchange.
func (s *BodyStream) Header() http.Header {
	return s.resp.Header
}

// Next returns the next chunk, at most chunkSize bytes. It returns io.EOF
// at the clean end of the body and ErrStreamConsumed after Close. Any other
// error from the body, including a connection drop before the advertised
// Content-Length, propagates immediately; a truncated body is never
// reported as a clean end. The returned slice is owned by the caller.
func (s *BodyStream) Next() ([]byte, error) {
	if s.done {
		return nil, io.EOF
	}
	if s.closed {
		return nil, ErrStreamConsumed
	}

	buf := make([]byte, s.chunkSize)
	var n int
	for n < s.chunkSize {
		nn, err := s.resp.Body.Read(buf[n:])
		n += nn
		if err == io.EOF {
			// Clean end. A short final chunk is returned now and the
			// next call yields io.EOF.
			s.finish()
			if n == 0 {
				return nil, io.EOF
			}
			return buf[:n], nil
		}
		if err != nil {
			s.Close()
			return nil, err
		}
	}
	return buf[:n], nil
}

// Close releases the connection. It is safe to call multiple times and
// after the stream has ended.
func (s *BodyStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	err := s.resp.Body.Close()
	if s.cancel != nil {
		s.cancel()
	}
	return err
}

func (s *BodyStream) finish() {
	s.resp.Body.Close()
	if s.cancel != nil {
		s.cancel()
	}
	s.done = true
}

// StreamResponse opens one exchange and returns the body as a lazy chunk
// stream. The retry controller is bypassed entirely. The per-call timeout
// covers the whole stream consumption; Close must be called unless the
// stream is read to io.EOF.
func (c *Client) StreamResponse(ctx context.Context, urlStr string, chunkSize int, opts ...RequestOption) (*BodyStream, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	ro := buildRequestOptions(opts)
	urlStr = appendQuery(urlStr, ro.query)
	headers := c.buildHeaders(ro.headers)

	timeout := ro.timeout
	if timeout == 0 {
		timeout = c.cfg.timeout
	}
	var cancel context.CancelFunc
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, timeout)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		if cancel != nil {
			cancel()
		}
		return nil, err
	}
	for k, vv := range headers {
		req.Header[k] = vv
	}
	c.applyMiddleware(req)
	c.logRequest(req)

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		if cancel != nil {
			cancel()
		}
		return nil, err
	}

	return &BodyStream{
		resp:      httpResp,
		cancel:    cancel,
		chunkSize: chunkSize,
	}, nil
}

// DefaultChunkSize is the chunk size used when a streaming operation is
// given a non-positive one.
const DefaultChunkSize = 8192
