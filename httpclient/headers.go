package httpclient

import (
	"encoding/base64"
	"net/http"
)

// buildHeaders merges client default headers with per-call headers and
// injects the Basic-Auth header when credentials are configured.
//
// Merge order: defaults first, per-call overlay (case-insensitive key match,
// last value wins), then auth. The auth header always overrides a
// caller-supplied Authorization header.
func (c *Client) buildHeaders(callHeaders map[string]string) http.Header {
	h := make(http.Header, len(c.cfg.defaultHeaders)+len(callHeaders)+1)
	for k, v := range c.cfg.defaultHeaders {
		h.Set(k, v)
	}
	for k, v := range callHeaders {
		h.Set(k, v)
	}
	if c.cfg.hasAuth {
		h.Set("Authorization", basicAuthHeader(c.cfg.username, c.cfg.password))
	}
	return h
}

func basicAuthHeader(username, password string) string {
	credentials := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
	return "Basic " + credentials
}
