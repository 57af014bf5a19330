package httpclient

import (
	"net/http"
	"os"
	"sync"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

// Client is a configurable HTTP client. It owns its configuration, cookie
// jar, logger, and serialization lock; nothing is shared through package
// globals. All buffered exchanges on one client run one at a time under the
// client-wide lock; separate clients are fully independent.
//
//	client, err := httpclient.New(
//	    httpclient.WithBasicAuth("user", "secret"),
//	    httpclient.WithCookieFile("/var/lib/app/cookies.txt"),
//	)
type Client struct {
	cfg        *config
	httpClient *http.Client
	jar        *CookieJar
	logger     zerolog.Logger
	tracer     trace.Tracer

	// mu serializes buffered exchanges. Streaming operations do not take it.
	mu sync.Mutex

	// mwMu guards the middleware chain, which AddMiddleware may grow at
	// runtime.
	mwMu       sync.RWMutex
	middleware []Middleware

	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[*Response]
	metrics *Metrics
}

// New creates a Client. All options are optional; the zero configuration
// gives a 10s timeout, redirect following, 3 attempts with 1s backoff
// factor, and an in-memory cookie jar.
//
// New fails when a configured proxy URL is invalid or the cookie file
// cannot be read.
func New(opts ...Option) (*Client, error) {
	cfg := newClientConfig(opts...)

	jar, err := newCookieJar(cfg.cookieFile)
	if err != nil {
		return nil, err
	}

	transport := cfg.transport
	if transport == nil {
		transport, err = buildTransport(cfg)
		if err != nil {
			return nil, err
		}
	}

	var logger zerolog.Logger
	if cfg.logger != nil {
		logger = *cfg.logger
	} else {
		logger = zerolog.New(os.Stderr).With().Timestamp().Str("component", "httpclient").Logger()
	}
	if cfg.debug {
		logger = logger.Level(zerolog.DebugLevel)
	} else {
		logger = logger.Level(zerolog.InfoLevel)
	}

	tp := cfg.tracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}

	c := &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Transport:     transport,
			Jar:           jar,
			CheckRedirect: redirectPolicy(cfg.followRedirects),
		},
		jar:        jar,
		logger:     logger,
		tracer:     tp.Tracer(tracerScope),
		middleware: cfg.middleware,
		metrics:    cfg.metrics,
	}
	if cfg.rateLimit != nil {
		c.limiter = newLimiter(cfg.rateLimit)
	}
	if cfg.breaker != nil {
		c.breaker = newBreaker("httpclient", *cfg.breaker)
	}
	return c, nil
}

// Cookies returns a name → value snapshot of the client's cookie jar.
func (c *Client) Cookies() map[string]string {
	return c.jar.Snapshot()
}

// HTTP returns the underlying *http.Client for advanced use. Requests made
// through it bypass the retry controller, header builder, and middleware,
// but share the cookie jar and transport.
func (c *Client) HTTP() *http.Client {
	return c.httpClient
}
