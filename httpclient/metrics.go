package httpclient

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics is a Prometheus collector for the client's request lifecycle.
// Attach it with WithMetrics; a nil *Metrics records nothing. One Metrics
// instance may be shared by several clients. Safe for concurrent use.
type Metrics struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	requestsInFlight *prometheus.GaugeVec
	retriesTotal     *prometheus.CounterVec
	retriesExhausted *prometheus.CounterVec
}

// NewMetrics creates a collector registered on the default registerer.
func NewMetrics() *Metrics {
	return NewMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewMetricsWithRegisterer creates a collector on the supplied registerer.
func NewMetricsWithRegisterer(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		requestsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "courier_requests_total",
				Help: "Total number of logical HTTP calls completed",
			},
			[]string{"method", "status"},
		),
		requestDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "courier_request_duration_seconds",
				Help:    "Duration of logical HTTP calls, all attempts included",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "status"},
		),
		requestsInFlight: promauto.With(reg).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "courier_requests_in_flight",
				Help: "Number of logical HTTP calls currently in flight",
			},
			[]string{"method"},
		),
		retriesTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "courier_retries_total",
				Help: "Total number of retry attempts scheduled",
			},
			[]string{"method"},
		),
		retriesExhausted: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "courier_retries_exhausted_total",
				Help: "Total number of logical HTTP calls that used every attempt",
			},
			[]string{"method"},
		),
	}
}

func (m *Metrics) requestStarted(method string) {
	if m == nil {
		return
	}
	m.requestsInFlight.WithLabelValues(method).Inc()
}

func (m *Metrics) requestFinished(method string, resp *Response, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requestsInFlight.WithLabelValues(method).Dec()

	status := "error"
	if resp != nil {
		status = strconv.Itoa(resp.StatusCode)
	}
	m.requestsTotal.WithLabelValues(method, status).Inc()
	m.requestDuration.WithLabelValues(method, status).Observe(elapsed.Seconds())
	if err != nil {
		var exhausted *RetriesExhaustedError
		if errors.As(err, &exhausted) {
			m.retriesExhausted.WithLabelValues(method).Inc()
		}
	}
}

func (m *Metrics) recordRetry(method string) {
	if m == nil {
		return
	}
	m.retriesTotal.WithLabelValues(method).Inc()
}
