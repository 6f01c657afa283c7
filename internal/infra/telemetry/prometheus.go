package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics is the client-side metrics surface. Components accept the
// interface so tests can pass a nop implementation.
type Metrics interface {
	ObserveRequest(resource string, duration time.Duration, httpStatus int, err error)
	ObserveCacheRead(namespace, outcome string)
	ObserveCacheInvalidation(namespace string, keys int)
	ObservePollerTransition(armed bool)
	ObservePollerTick()
}

type PrometheusMetrics struct {
	requestDuration   *prometheus.HistogramVec
	requestFailures   *prometheus.CounterVec
	cacheReads        *prometheus.CounterVec
	cacheInvalidation *prometheus.CounterVec
	pollerArmed       prometheus.Gauge
	pollerTicks       prometheus.Counter
}

const (
	CacheOutcomeHit   = "hit"
	CacheOutcomeStale = "stale"
	CacheOutcomeMiss  = "miss"
	CacheOutcomeError = "error"
)

func NewPrometheusMetrics(registerer prometheus.Registerer) *PrometheusMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registerer)

	return &PrometheusMetrics{
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "agentctl_request_duration_seconds",
				Help:    "Duration of platform API requests in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"resource", "status"},
		),
		requestFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agentctl_request_failures_total",
				Help: "Total number of failed platform API requests",
			},
			[]string{"resource", "http_status"},
		),
		cacheReads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agentctl_cache_reads_total",
				Help: "Query cache read outcomes",
			},
			[]string{"namespace", "outcome"},
		),
		cacheInvalidation: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agentctl_cache_invalidations_total",
				Help: "Cache keys invalidated by mutations",
			},
			[]string{"namespace"},
		),
		pollerArmed: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "agentctl_poller_armed",
				Help: "Whether the adaptive poller currently has a timer armed",
			},
		),
		pollerTicks: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "agentctl_poller_ticks_total",
				Help: "Total adaptive poller interval ticks",
			},
		),
	}
}

func (p *PrometheusMetrics) ObserveRequest(resource string, duration time.Duration, httpStatus int, err error) {
	status := "success"
	if err != nil {
		status = "error"
		p.requestFailures.WithLabelValues(resource, httpStatusLabel(httpStatus)).Inc()
	}
	p.requestDuration.WithLabelValues(resource, status).Observe(duration.Seconds())
}

func (p *PrometheusMetrics) ObserveCacheRead(namespace, outcome string) {
	p.cacheReads.WithLabelValues(namespace, outcome).Inc()
}

func (p *PrometheusMetrics) ObserveCacheInvalidation(namespace string, keys int) {
	p.cacheInvalidation.WithLabelValues(namespace).Add(float64(keys))
}

func (p *PrometheusMetrics) ObservePollerTransition(armed bool) {
	if armed {
		p.pollerArmed.Set(1)
		return
	}
	p.pollerArmed.Set(0)
}

func (p *PrometheusMetrics) ObservePollerTick() {
	p.pollerTicks.Inc()
}

func httpStatusLabel(status int) string {
	switch {
	case status == 0:
		return "none"
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	default:
		return "other"
	}
}

// NopMetrics discards all observations.
type NopMetrics struct{}

func (NopMetrics) ObserveRequest(string, time.Duration, int, error) {}
func (NopMetrics) ObserveCacheRead(string, string)                  {}
func (NopMetrics) ObserveCacheInvalidation(string, int)             {}
func (NopMetrics) ObservePollerTransition(bool)                     {}
func (NopMetrics) ObservePollerTick()                               {}

var (
	_ Metrics = (*PrometheusMetrics)(nil)
	_ Metrics = NopMetrics{}
)
