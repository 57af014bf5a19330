package httpclient

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"
)

// bodySnippetLimit caps the response body bytes included in debug logs.
const bodySnippetLimit = 200

// logRequest logs the outgoing request line and headers at debug level.
func (c *Client) logRequest(req *http.Request) {
	if !c.cfg.debug {
		return
	}
	c.logger.Debug().
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Dict("headers", headerDict(req.Header)).
		Msg("http request")
}

// logResponse logs the completed exchange with a truncated body snippet.
func (c *Client) logResponse(resp *Response) {
	if !c.cfg.debug {
		return
	}
	snippet := strings.TrimSpace(resp.Text)
	if len(snippet) > bodySnippetLimit {
		snippet = snippet[:bodySnippetLimit] + "..."
	}
	c.logger.Debug().
		Int("status", resp.StatusCode).
		Str("reason", resp.Status).
		Str("url", resp.URL).
		Dict("headers", headerDict(resp.Header)).
		Str("body", snippet).
		Msg("http response")
}

func headerDict(h http.Header) *zerolog.Event {
	d := zerolog.Dict()
	for k, vv := range h {
		d.Str(k, strings.Join(vv, ", "))
	}
	return d
}
