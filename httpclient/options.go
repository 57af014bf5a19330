package httpclient

import (
	"crypto/tls"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// Config holds the HTTP transport configuration. Use DefaultConfig() for a
// properly initialized configuration, then modify specific fields as needed.
//
// Note that response compression is always handled by this library (the
// default headers advertise "gzip, deflate" and the response decoder reverses
// the encoding), so the underlying transport's automatic decompression is
// kept disabled regardless of this configuration.
type Config struct {
	// DialTimeout is the maximum time to wait for a TCP connection
	// to be established.
	// Default: 5s
	DialTimeout time.Duration

	// KeepAlive specifies the TCP keep-alive probe interval.
	// Default: 30s
	KeepAlive time.Duration

	// MaxIdleConns controls the maximum number of idle connections
	// across all hosts combined.
	// Default: 100
	MaxIdleConns int

	// MaxIdleConnsPerHost controls the maximum idle connections kept
	// per host.
	// Default: 20
	MaxIdleConnsPerHost int

	// MaxConnsPerHost limits the total number of connections per host.
	// Zero means unlimited.
	// Default: 100
	MaxConnsPerHost int

	// IdleConnTimeout is how long an idle connection remains in the pool
	// before being closed.
	// Default: 90s
	IdleConnTimeout time.Duration

	// TLSHandshakeTimeout is the maximum time to wait for a TLS handshake.
	// Default: 10s
	TLSHandshakeTimeout time.Duration

	// ExpectContinueTimeout is how long to wait for a "100 Continue"
	// response when the "Expect: 100-continue" header is sent.
	// Default: 1s
	ExpectContinueTimeout time.Duration

	// ResponseHeaderTimeout is the time to wait for response headers after
	// the request is fully written. Zero disables it (the per-call timeout
	// still applies).
	// Default: 0
	ResponseHeaderTimeout time.Duration

	// WriteBufferSize is the size of the connection write buffer.
	// Default: 64KB
	WriteBufferSize int

	// ReadBufferSize is the size of the connection read buffer.
	// Default: 64KB
	ReadBufferSize int

	// DisableKeepAlives disables HTTP keep-alives, forcing a new connection
	// for each request.
	// Default: false
	DisableKeepAlives bool

	// TLSConfig specifies the TLS configuration. If nil, platform trust
	// defaults are used.
	TLSConfig *tls.Config
}

// DefaultConfig returns a balanced transport configuration suitable for most
// use cases.
func DefaultConfig() Config {
	return Config{
		DialTimeout:           5 * time.Second,
		KeepAlive:             30 * time.Second,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   20,
		MaxConnsPerHost:       100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		WriteBufferSize:       64 * 1024,
		ReadBufferSize:        64 * 1024,
	}
}

// config holds the full client configuration assembled from Options.
type config struct {
	httpConfig      Config
	timeout         time.Duration
	proxies         map[string]string
	username        string
	password        string
	hasAuth         bool
	followRedirects bool
	cookieFile      string
	defaultHeaders  map[string]string
	maxRetries      int
	backoffFactor   time.Duration
	retryJitter     float64
	retryStatuses   map[int]struct{}
	debug           bool
	logger          *zerolog.Logger
	transport       http.RoundTripper
	middleware      []Middleware
	rateLimit       *RateLimitConfig
	breaker         *BreakerConfig
	metrics         *Metrics
	tracerProvider  trace.TracerProvider
}

func newClientConfig(opts ...Option) *config {
	cfg := &config{
		httpConfig:      DefaultConfig(),
		timeout:         DefaultTimeout,
		followRedirects: true,
		maxRetries:      DefaultMaxRetries,
		backoffFactor:   DefaultBackoffFactor,
		retryStatuses:   defaultRetryStatuses(),
		defaultHeaders: map[string]string{
			"User-Agent":      "courier/" + Version,
			"Accept-Encoding": "gzip, deflate",
			"Accept":          "*/*",
			"Connection":      "keep-alive",
		},
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.maxRetries < 1 {
		cfg.maxRetries = 1
	}
	if cfg.backoffFactor <= 0 {
		cfg.backoffFactor = DefaultBackoffFactor
	}
	return cfg
}

// Defaults for client construction.
const (
	// DefaultTimeout is the per-call timeout applied when neither the
	// client nor the call specifies one.
	DefaultTimeout = 10 * time.Second

	// DefaultMaxRetries is the default total number of attempts per
	// logical call.
	DefaultMaxRetries = 3

	// DefaultBackoffFactor is the base delay multiplier for exponential
	// backoff between attempts.
	DefaultBackoffFactor = 1 * time.Second
)

// Option configures the client.
type Option func(*config)

// WithConfig sets the HTTP transport configuration. Use DefaultConfig() as a
// starting point, then customize as needed.
func WithConfig(c Config) Option {
	return func(cfg *config) {
		cfg.httpConfig = c
	}
}

// WithTimeout sets the default per-call timeout. Individual calls can
// override it with WithRequestTimeout. The timeout is enforced as a
// per-attempt deadline by the transport layer.
func WithTimeout(d time.Duration) Option {
	return func(cfg *config) {
		cfg.timeout = d
	}
}

// WithProxies sets proxy URLs keyed by target scheme, e.g.
//
//	httpclient.WithProxies(map[string]string{
//	    "http":  "http://proxy.internal:3128",
//	    "https": "http://proxy.internal:3128",
//	})
//
// Without this option, proxy settings are taken from the environment
// (HTTP_PROXY, HTTPS_PROXY, NO_PROXY).
func WithProxies(proxies map[string]string) Option {
	return func(cfg *config) {
		cfg.proxies = proxies
	}
}

// WithBasicAuth configures Basic authentication. The resulting Authorization
// header is injected into every request and overrides any caller-supplied
// Authorization header.
func WithBasicAuth(username, password string) Option {
	return func(cfg *config) {
		cfg.username = username
		cfg.password = password
		cfg.hasAuth = true
	}
}

// WithFollowRedirects controls redirect following (default true). When
// disabled, the first redirect response is returned as-is rather than
// followed.
func WithFollowRedirects(follow bool) Option {
	return func(cfg *config) {
		cfg.followRedirects = follow
	}
}

// WithCookieFile enables cookie persistence. The jar is loaded from path at
// construction if the file exists and is non-empty, and rewritten after
// every completed exchange. The file uses the Netscape cookies.txt format.
func WithCookieFile(path string) Option {
	return func(cfg *config) {
		cfg.cookieFile = path
	}
}

// WithDefaultHeaders replaces the built-in default header set. Per-call
// headers overlay these, last value wins.
func WithDefaultHeaders(headers map[string]string) Option {
	return func(cfg *config) {
		cfg.defaultHeaders = headers
	}
}

// WithMaxRetries sets the total number of attempts per logical call
// (default 3). This counts the initial attempt: WithMaxRetries(1) disables
// retrying. Values below 1 are clamped to 1.
func WithMaxRetries(n int) Option {
	return func(cfg *config) {
		cfg.maxRetries = n
	}
}

// WithBackoffFactor sets the base delay for exponential backoff between
// attempts (default 1s). The delay before attempt n+1 is factor × 2^(n-1).
func WithBackoffFactor(d time.Duration) Option {
	return func(cfg *config) {
		cfg.backoffFactor = d
	}
}

// WithRetryStatuses replaces the retryable status set
// (default 429, 500, 502, 503, 504).
func WithRetryStatuses(statuses ...int) Option {
	return func(cfg *config) {
		set := make(map[int]struct{}, len(statuses))
		for _, s := range statuses {
			set[s] = struct{}{}
		}
		cfg.retryStatuses = set
	}
}

// WithRetryJitter adds randomization to backoff delays. A factor of 0.5
// means each delay varies ±50%. Zero (the default) keeps the deterministic
// factor × 2^(n-1) schedule.
func WithRetryJitter(factor float64) Option {
	return func(cfg *config) {
		cfg.retryJitter = factor
	}
}

// WithDebug enables debug logging of requests and responses.
func WithDebug(debug bool) Option {
	return func(cfg *config) {
		cfg.debug = debug
	}
}

// WithLogger sets the logger used for debug output. Without this option a
// zerolog logger writing to stderr is used.
func WithLogger(logger zerolog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = &logger
	}
}

// WithTransport replaces the underlying round tripper. Proxy and TLS
// settings from the configuration do not apply to a caller-supplied
// transport. Primarily useful with MockTransport in tests.
func WithTransport(rt http.RoundTripper) Option {
	return func(cfg *config) {
		cfg.transport = rt
	}
}

// WithMiddleware appends request middleware. Middleware runs in order on
// every outgoing request before dispatch; see Middleware.
func WithMiddleware(ms ...Middleware) Option {
	return func(cfg *config) {
		cfg.middleware = append(cfg.middleware, ms...)
	}
}

// WithRateLimit enables client-level rate limiting. Each attempt waits for
// a token before dispatch, respecting the call context.
func WithRateLimit(requestsPerSecond float64, burst int) Option {
	return func(cfg *config) {
		cfg.rateLimit = &RateLimitConfig{
			RequestsPerSecond: requestsPerSecond,
			Burst:             burst,
		}
	}
}

// WithBreaker enables a circuit breaker around each logical call (the whole
// retry sequence counts as one breaker request). Use DefaultBreakerConfig()
// as a starting point.
func WithBreaker(bc BreakerConfig) Option {
	return func(cfg *config) {
		cfg.breaker = &bc
	}
}

// WithMetrics attaches a Prometheus metrics collector. Without this option
// no metrics are recorded.
func WithMetrics(m *Metrics) Option {
	return func(cfg *config) {
		cfg.metrics = m
	}
}

// WithTracerProvider sets the OpenTelemetry tracer provider. Without this
// option the global provider is used, which is a no-op unless an SDK is
// installed.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(cfg *config) {
		cfg.tracerProvider = tp
	}
}
