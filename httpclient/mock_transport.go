package httpclient

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"regexp"
	"sync"
)

// MockTransport is a configurable http.RoundTripper for testing. Plug it in
// with WithTransport. Two stubbing styles are supported and may be mixed:
// ordered steps (EnqueueResponse / EnqueueError), consumed one per attempt,
// and fallback stubs (StubResponse / StubPath / StubFunc) that answer once
// the queue is drained. Ordered steps make retry sequences easy to script:
//
//	mock := httpclient.NewMockTransport().
//	    EnqueueResponse(503, "busy").
//	    EnqueueResponse(200, `{"ok":true}`)
type MockTransport struct {
	mu          sync.RWMutex
	queue       []step
	stubs       []stub
	defaultResp *responseSpec
	defaultErr  error
	requests    []*http.Request
	requestHook func(*http.Request)
}

type step struct {
	resp *responseSpec
	err  error
}

type stub struct {
	matcher func(*http.Request) bool
	resp    *responseSpec
	err     error
}

type responseSpec struct {
	statusCode int
	body       string
	header     http.Header
}

// NewMockTransport creates an empty MockTransport.
func NewMockTransport() *MockTransport {
	return &MockTransport{}
}

// EnqueueResponse appends an ordered response step. Steps are consumed one
// per attempt, in FIFO order, before any fallback stub is consulted.
func (m *MockTransport) EnqueueResponse(statusCode int, body string) *MockTransport {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, step{resp: &responseSpec{statusCode: statusCode, body: body}})
	return m
}

// EnqueueResponseHeader appends an ordered response step carrying headers.
func (m *MockTransport) EnqueueResponseHeader(statusCode int, body string, header http.Header) *MockTransport {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, step{resp: &responseSpec{statusCode: statusCode, body: body, header: header}})
	return m
}

// EnqueueError appends an ordered transport-fault step.
func (m *MockTransport) EnqueueError(err error) *MockTransport {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, step{err: err})
	return m
}

// StubResponse answers every otherwise-unmatched request with the given
// response.
func (m *MockTransport) StubResponse(statusCode int, body string) *MockTransport {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultResp = &responseSpec{statusCode: statusCode, body: body}
	return m
}

// StubResponseHeader is StubResponse with response headers.
func (m *MockTransport) StubResponseHeader(statusCode int, body string, header http.Header) *MockTransport {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultResp = &responseSpec{statusCode: statusCode, body: body, header: header}
	return m
}

// StubError answers every otherwise-unmatched request with the given error.
func (m *MockTransport) StubError(err error) *MockTransport {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultErr = err
	return m
}

// StubPath answers requests whose URL path matches exactly.
func (m *MockTransport) StubPath(path string, statusCode int, body string) *MockTransport {
	return m.StubFunc(func(req *http.Request) bool {
		return req.URL.Path == path
	}, statusCode, body)
}

// StubPathRegex answers requests whose URL path matches the pattern.
func (m *MockTransport) StubPathRegex(pattern string, statusCode int, body string) *MockTransport {
	re := regexp.MustCompile(pattern)
	return m.StubFunc(func(req *http.Request) bool {
		return re.MatchString(req.URL.Path)
	}, statusCode, body)
}

// StubMethod answers requests with the given method.
func (m *MockTransport) StubMethod(method string, statusCode int, body string) *MockTransport {
	return m.StubFunc(func(req *http.Request) bool {
		return req.Method == method
	}, statusCode, body)
}

// StubFunc answers requests matching the predicate. First match wins.
func (m *MockTransport) StubFunc(matcher func(*http.Request) bool, statusCode int, body string) *MockTransport {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stubs = append(m.stubs, stub{
		matcher: matcher,
		resp:    &responseSpec{statusCode: statusCode, body: body},
	})
	return m
}

// StubFuncError answers requests matching the predicate with an error.
func (m *MockTransport) StubFuncError(matcher func(*http.Request) bool, err error) *MockTransport {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stubs = append(m.stubs, stub{matcher: matcher, err: err})
	return m
}

// OnRequest sets a hook invoked for every request, before the stub lookup.
func (m *MockTransport) OnRequest(fn func(*http.Request)) *MockTransport {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestHook = fn
	return m
}

// RoundTrip implements http.RoundTripper.
func (m *MockTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	hook := m.requestHook
	var next *step
	if len(m.queue) > 0 {
		next = &m.queue[0]
		m.queue = m.queue[1:]
	}
	m.mu.Unlock()

	if hook != nil {
		hook(req)
	}

	if next != nil {
		if next.err != nil {
			return nil, next.err
		}
		return next.resp.build(req), nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, s := range m.stubs {
		if s.matcher(req) {
			if s.err != nil {
				return nil, s.err
			}
			return s.resp.build(req), nil
		}
	}

	if m.defaultErr != nil {
		return nil, m.defaultErr
	}
	if m.defaultResp != nil {
		return m.defaultResp.build(req), nil
	}

	return nil, errors.New("no stub found for request: " + req.Method + " " + req.URL.String())
}

// Requests returns a copy of every request seen by the transport.
func (m *MockTransport) Requests() []*http.Request {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*http.Request{}, m.requests...)
}

// RequestCount returns the number of requests seen.
func (m *MockTransport) RequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.requests)
}

// LastRequest returns the most recent request, or nil.
func (m *MockTransport) LastRequest() *http.Request {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.requests) == 0 {
		return nil
	}
	return m.requests[len(m.requests)-1]
}

// Reset clears recorded requests, queued steps, and stubs.
func (m *MockTransport) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = nil
	m.queue = nil
	m.stubs = nil
	m.defaultResp = nil
	m.defaultErr = nil
	m.requestHook = nil
}

// build materializes a fresh *http.Response so each attempt gets its own
// readable body.
func (rs *responseSpec) build(req *http.Request) *http.Response {
	header := make(http.Header)
	for k, vv := range rs.header {
		header[k] = append([]string(nil), vv...)
	}
	return &http.Response{
		StatusCode:    rs.statusCode,
		Status:        http.StatusText(rs.statusCode),
		Header:        header,
		Body:          io.NopCloser(bytes.NewBufferString(rs.body)),
		ContentLength: int64(len(rs.body)),
		Request:       req,
	}
}
