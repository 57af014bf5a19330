package httpclient

import (
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
)

// buildTransport creates an http.Transport from the configuration.
// Automatic decompression stays disabled: the response decoder owns
// Content-Encoding reversal so that decode faults are visible to the
// retry controller.
func buildTransport(cfg *config) (*http.Transport, error) {
	hc := cfg.httpConfig

	dialer := &net.Dialer{
		Timeout:   hc.DialTimeout,
		KeepAlive: hc.KeepAlive,
	}

	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          hc.MaxIdleConns,
		MaxIdleConnsPerHost:   hc.MaxIdleConnsPerHost,
		MaxConnsPerHost:       hc.MaxConnsPerHost,
		IdleConnTimeout:       hc.IdleConnTimeout,
		TLSHandshakeTimeout:   hc.TLSHandshakeTimeout,
		ExpectContinueTimeout: hc.ExpectContinueTimeout,
		ResponseHeaderTimeout: hc.ResponseHeaderTimeout,
		WriteBufferSize:       hc.WriteBufferSize,
		ReadBufferSize:        hc.ReadBufferSize,
		DisableKeepAlives:     hc.DisableKeepAlives,
		DisableCompression:    true,
		TLSClientConfig:       hc.TLSConfig,
	}

	if len(cfg.proxies) > 0 {
		proxy, err := proxyFunc(cfg.proxies)
		if err != nil {
			return nil, err
		}
		transport.Proxy = proxy
	} else {
		transport.Proxy = http.ProxyFromEnvironment
	}

	return transport, nil
}

// proxyFunc builds a proxy selector from a scheme → proxy URL mapping.
func proxyFunc(proxies map[string]string) (func(*http.Request) (*url.URL, error), error) {
	parsed := make(map[string]*url.URL, len(proxies))
	for scheme, raw := range proxies {
		u, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("httpclient: invalid proxy URL for scheme %q: %w", scheme, err)
		}
		parsed[strings.ToLower(scheme)] = u
	}

	return func(req *http.Request) (*url.URL, error) {
		if u, ok := parsed[strings.ToLower(req.URL.Scheme)]; ok {
			return u, nil
		}
		return nil, nil
	}, nil
}

// redirectPolicy returns the CheckRedirect function for the configured
// redirect behavior. When following is disabled the first redirect response
// is handed back to the caller as-is.
func redirectPolicy(follow bool) func(req *http.Request, via []*http.Request) error {
	if follow {
		return nil
	}
	return func(_ *http.Request, _ []*http.Request) error {
		return http.ErrUseLastResponse
	}
}
