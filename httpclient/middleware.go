package httpclient

import "net/http"

// Middleware transforms an outgoing request in place before dispatch. The
// chain runs in registration order on every attempt. Middleware is a
// request-only hook: it cannot short-circuit the call or see the response.
//
// Common uses: injecting tokens, correlation IDs, or tenant headers.
type Middleware func(req *http.Request)

// AddMiddleware appends middleware to the chain at runtime. Safe for
// concurrent use.
func (c *Client) AddMiddleware(m Middleware) {
	c.mwMu.Lock()
	defer c.mwMu.Unlock()
	c.middleware = append(c.middleware, m)
}

func (c *Client) applyMiddleware(req *http.Request) {
	c.mwMu.RLock()
	chain := c.middleware
	c.mwMu.RUnlock()
	for _, m := range chain {
		m(req)
	}
}

// BearerAuth returns middleware that sets a Bearer token. The chain runs
// after header building, so this replaces a configured Basic-Auth header.
func BearerAuth(token string) Middleware {
	return func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

// APIKey returns middleware that sets an API key header.
func APIKey(headerName, key string) Middleware {
	return func(req *http.Request) {
		req.Header.Set(headerName, key)
	}
}

// UserAgent returns middleware that overrides the User-Agent header.
func UserAgent(ua string) Middleware {
	return func(req *http.Request) {
		req.Header.Set("User-Agent", ua)
	}
}

// CorrelationID returns middleware that stamps each request with an ID from
// idFunc, e.g. uuid.NewString.
func CorrelationID(headerName string, idFunc func() string) Middleware {
	return func(req *http.Request) {
		req.Header.Set(headerName, idFunc())
	}
}
