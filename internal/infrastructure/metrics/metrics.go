package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/iho/ledgerreplay/internal/domain"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Rebuild metrics
	RebuildsTotal   *prometheus.CounterVec
	RebuildDuration *prometheus.HistogramVec
	RebuildEntries  *prometheus.HistogramVec
	SkippedRecords  *prometheus.CounterVec

	// Source change metrics
	SourceEvents *prometheus.CounterVec

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	HTTPInFlight prometheus.Gauge

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec
}

// New creates all metrics and registers them with the default registerer.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates all metrics and registers them with reg.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		// Rebuild metrics
		RebuildsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledgerreplay_rebuilds_total",
				Help: "Total ledger rebuilds by subject kind and status",
			},
			[]string{"kind", "status"},
		),
		RebuildDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ledgerreplay_rebuild_duration_seconds",
				Help:    "Duration of ledger rebuilds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind"},
		),
		RebuildEntries: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ledgerreplay_rebuild_entries",
				Help:    "Number of entries written per rebuild",
				Buckets: []float64{0, 10, 50, 100, 500, 1000, 5000, 10000},
			},
			[]string{"kind"},
		),
		SkippedRecords: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledgerreplay_skipped_records_total",
				Help: "Source records skipped or coerced during replay",
			},
			[]string{"kind", "reason", "source_type"},
		),

		// Source change metrics
		SourceEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledgerreplay_source_events_total",
				Help: "Source change notifications received",
			},
			[]string{"source_type", "action"},
		),

		// API metrics
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledgerreplay_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ledgerreplay_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		HTTPInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "ledgerreplay_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		}),

		// Rate limiting metrics
		RateLimitHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledgerreplay_rate_limit_hits_total",
				Help: "Total rate limit hits",
			},
			[]string{"ip"},
		),
	}
}

// ObserveRebuild records the outcome of one rebuild.
func (m *Metrics) ObserveRebuild(kind domain.SubjectKind, status string, duration time.Duration, entries int) {
	m.RebuildsTotal.WithLabelValues(string(kind), status).Inc()
	m.RebuildDuration.WithLabelValues(string(kind)).Observe(duration.Seconds())
	if status == "ok" {
		m.RebuildEntries.WithLabelValues(string(kind)).Observe(float64(entries))
	}
}

// IncSkipped counts one skipped or coerced source record.
func (m *Metrics) IncSkipped(kind domain.SubjectKind, reason string, sourceType domain.SourceType) {
	m.SkippedRecords.WithLabelValues(string(kind), reason, string(sourceType)).Inc()
}

// IncSourceEvent counts one source change notification.
func (m *Metrics) IncSourceEvent(sourceType domain.SourceType, action string) {
	m.SourceEvents.WithLabelValues(string(sourceType), action).Inc()
}

// IncRateLimitHit counts one request rejected by the rate limiter.
func (m *Metrics) IncRateLimitHit(ip string) {
	m.RateLimitHits.WithLabelValues(ip).Inc()
}
