package httpclient

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// requestOptions holds per-call settings.
type requestOptions struct {
	query   map[string]string
	headers map[string]string
	timeout time.Duration
}

// RequestOption adjusts a single call.
type RequestOption func(*requestOptions)

// WithQuery appends URL-encoded query parameters before dispatch.
func WithQuery(params map[string]string) RequestOption {
	return func(ro *requestOptions) {
		if ro.query == nil {
			ro.query = make(map[string]string, len(params))
		}
		for k, v := range params {
			ro.query[k] = v
		}
	}
}

// WithHeaders sets per-call headers. They overlay the client defaults; the
// last value wins on conflict.
func WithHeaders(headers map[string]string) RequestOption {
	return func(ro *requestOptions) {
		for k, v := range headers {
			ro.setHeader(k, v)
		}
	}
}

// WithHeader sets one per-call header.
func WithHeader(key, value string) RequestOption {
	return func(ro *requestOptions) {
		ro.setHeader(key, value)
	}
}

// WithRequestTimeout overrides the client timeout for this call. The
// timeout applies per attempt, enforced by the transport's deadline.
func WithRequestTimeout(d time.Duration) RequestOption {
	return func(ro *requestOptions) {
		ro.timeout = d
	}
}

func (ro *requestOptions) setHeader(key, value string) {
	if ro.headers == nil {
		ro.headers = make(map[string]string)
	}
	ro.headers[key] = value
}

func (ro *requestOptions) hasHeader(key string) bool {
	for k := range ro.headers {
		if strings.EqualFold(k, key) {
			return true
		}
	}
	return false
}

func buildRequestOptions(opts []RequestOption) requestOptions {
	var ro requestOptions
	for _, opt := range opts {
		opt(&ro)
	}
	return ro
}

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, urlStr string, opts ...RequestOption) (*Response, error) {
	return c.do(ctx, http.MethodGet, urlStr, nil, buildRequestOptions(opts))
}

// Post issues a POST request. When a body is present and the call sets no
// Content-Type, it defaults to "application/json".
func (c *Client) Post(ctx context.Context, urlStr string, body *Body, opts ...RequestOption) (*Response, error) {
	ro := buildRequestOptions(opts)
	if body != nil && !ro.hasHeader("Content-Type") {
		ro.setHeader("Content-Type", "application/json")
	}
	return c.do(ctx, http.MethodPost, urlStr, body, ro)
}

// Put issues a PUT request.
func (c *Client) Put(ctx context.Context, urlStr string, body *Body, opts ...RequestOption) (*Response, error) {
	return c.do(ctx, http.MethodPut, urlStr, body, buildRequestOptions(opts))
}

// Patch issues a PATCH request.
func (c *Client) Patch(ctx context.Context, urlStr string, body *Body, opts ...RequestOption) (*Response, error) {
	return c.do(ctx, http.MethodPatch, urlStr, body, buildRequestOptions(opts))
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, urlStr string, opts ...RequestOption) (*Response, error) {
	return c.do(ctx, http.MethodDelete, urlStr, nil, buildRequestOptions(opts))
}

// Head issues a HEAD request.
func (c *Client) Head(ctx context.Context, urlStr string, opts ...RequestOption) (*Response, error) {
	return c.do(ctx, http.MethodHead, urlStr, nil, buildRequestOptions(opts))
}

// do is the single execution pipeline behind every buffered operation:
// build headers → serialize body → acquire the client lock → retry
// controller around (transport exchange → decode) → release lock → persist
// cookies → return. Non-retryable error statuses come back as ordinary
// responses; call Response.RequireSuccess to turn them into errors.
func (c *Client) do(ctx context.Context, method, urlStr string, body *Body, ro requestOptions) (*Response, error) {
	urlStr = appendQuery(urlStr, ro.query)

	headers := c.buildHeaders(ro.headers)
	payload, err := body.serialize(headers)
	if err != nil {
		return nil, err
	}

	timeout := ro.timeout
	if timeout == 0 {
		timeout = c.cfg.timeout
	}

	ctx, span := c.startSpan(ctx, method, urlStr)
	defer span.End()

	c.metrics.requestStarted(method)
	start := time.Now()

	exec := func() (*Response, error) {
		c.mu.Lock()
		defer c.mu.Unlock()
		return c.runWithRetry(ctx, method, func(ctx context.Context, _ int) (*Response, error) {
			return c.exchange(ctx, method, urlStr, headers, payload, timeout)
		})
	}

	var resp *Response
	if c.breaker != nil {
		resp, err = c.breaker.Execute(exec)
	} else {
		resp, err = exec()
	}

	c.metrics.requestFinished(method, resp, err, time.Since(start))
	endSpan(span, resp, err)

	if perr := c.jar.persist(); perr != nil {
		if err == nil {
			return resp, perr
		}
		c.logger.Warn().Err(perr).Msg("cookie persistence failed")
	}
	return resp, err
}

// exchange performs one attempt: one full request/response cycle including
// body buffering and Content-Encoding reversal.
func (c *Client) exchange(ctx context.Context, method, urlStr string, headers http.Header, payload []byte, timeout time.Duration) (*Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	attemptCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(attemptCtx, method, urlStr, bodyReader)
	if err != nil {
		return nil, err
	}
	for k, vv := range headers {
		req.Header[k] = vv
	}
	c.applyMiddleware(req)
	c.logRequest(req)

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, err
	}

	decoded, err := decodeContent(httpResp.Header, raw)
	if err != nil {
		return nil, err
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Status:     reasonPhrase(httpResp),
		Header:     httpResp.Header,
		URL:        httpResp.Request.URL.String(),
		Text:       string(decoded),
		Content:    raw,
		Cookies:    c.jar.Snapshot(),
	}
	c.logResponse(resp)
	return resp, nil
}

// appendQuery URL-encodes params and appends them to urlStr.
func appendQuery(urlStr string, params map[string]string) string {
	if len(params) == 0 {
		return urlStr
	}
	values := make(url.Values, len(params))
	for k, v := range params {
		values.Set(k, v)
	}
	sep := "?"
	if strings.Contains(urlStr, "?") {
		sep = "&"
	}
	return urlStr + sep + values.Encode()
}

// reasonPhrase extracts the reason phrase from an http.Response status line.
func reasonPhrase(resp *http.Response) string {
	reason := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if reason == "" {
		return http.StatusText(resp.StatusCode)
	}
	return reason
}
