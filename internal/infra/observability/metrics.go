package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds the Prometheus metrics exposed by the client.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the local /metrics endpoint can serve it.
	Registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	transportErrors *prometheus.CounterVec
	cacheHits       *prometheus.CounterVec
	cacheMisses     *prometheus.CounterVec
	submissions     *prometheus.CounterVec
	refreshes       *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// client metrics in it. A private registry avoids "duplicate collector"
// panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "peerbr_request_duration_seconds",
				Help:    "Duration of platform API requests by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		transportErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "peerbr_transport_errors_total",
				Help: "Total failed platform API requests.",
			},
			[]string{"operation"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "peerbr_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "peerbr_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		submissions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "peerbr_flow_submissions_total",
				Help: "Total flow submissions by flow and outcome.",
			},
			[]string{"flow", "outcome"},
		),
		refreshes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "peerbr_account_refreshes_total",
				Help: "Total account refreshes by outcome.",
			},
			[]string{"outcome"},
		),
	}
}

// RecordRequestDuration records the duration of an API operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrTransportError increments the transport error counter.
func (m *Metrics) IncrTransportError(operation string) {
	m.transportErrors.WithLabelValues(operation).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// IncrSubmission counts a flow submission outcome
// ("success", "validation_error", "request_error", "busy").
func (m *Metrics) IncrSubmission(flow, outcome string) {
	m.submissions.WithLabelValues(flow, outcome).Inc()
}

// IncrRefresh counts an account refresh outcome ("success" or "error").
func (m *Metrics) IncrRefresh(outcome string) {
	m.refreshes.WithLabelValues(outcome).Inc()
}

// Stats is a point-in-time summary shown by the terminal client.
type Stats struct {
	RefreshesOK     float64
	RefreshesFailed float64
	Invested        float64
	Deposits        float64
	CacheHitRate    float64
}

// Snapshot gathers current counter values into a Stats summary.
func (m *Metrics) Snapshot() Stats {
	hits := getCounterValue(m.cacheHits, "account") + getCounterValue(m.cacheHits, "categories")
	misses := getCounterValue(m.cacheMisses, "account") + getCounterValue(m.cacheMisses, "categories")

	hitRate := float64(0)
	if hits+misses > 0 {
		hitRate = hits / (hits + misses)
	}

	return Stats{
		RefreshesOK:     getCounterValue(m.refreshes, "success"),
		RefreshesFailed: getCounterValue(m.refreshes, "error"),
		Invested:        getCounterValue(m.submissions, "invest", "success"),
		Deposits:        getCounterValue(m.submissions, "deposit", "success"),
		CacheHitRate:    hitRate,
	}
}

// getCounterValue extracts the current float64 value from a CounterVec
// for the given labels.
func getCounterValue(cv *prometheus.CounterVec, labels ...string) float64 {
	counter := cv.WithLabelValues(labels...)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
