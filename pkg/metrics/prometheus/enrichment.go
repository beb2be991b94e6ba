package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/marmos91/glasshouse/pkg/metrics"
)

func init() {
	metrics.RegisterEnrichmentMetricsConstructor(newEnrichmentMetrics)
}

type enrichmentMetrics struct {
	lookups        *prometheus.CounterVec
	lookupErrors   *prometheus.CounterVec
	lookupDuration *prometheus.HistogramVec
	rateLimited    *prometheus.CounterVec
}

func newEnrichmentMetrics() metrics.EnrichmentMetrics {
	reg := metrics.GetRegistry()

	return &enrichmentMetrics{
		lookups: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "glasshouse_enrichment_lookups_total",
				Help: "Total number of reputation/geolocation lookups, by provider and answering tier.",
			},
			[]string{"provider", "source"},
		),
		lookupErrors: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "glasshouse_enrichment_lookup_errors_total",
				Help: "Total number of failed reputation/geolocation lookups, by provider.",
			},
			[]string{"provider"},
		),
		lookupDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "glasshouse_enrichment_lookup_duration_seconds",
				Help:    "Duration of reputation/geolocation lookups, by provider and answering tier.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"provider", "source"},
		),
		rateLimited: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "glasshouse_enrichment_rate_limited_total",
				Help: "Total number of 429 responses received from an enrichment provider.",
			},
			[]string{"provider"},
		),
	}
}

func (m *enrichmentMetrics) RecordLookup(provider, source string, duration time.Duration, err error) {
	m.lookups.WithLabelValues(provider, source).Inc()
	m.lookupDuration.WithLabelValues(provider, source).Observe(duration.Seconds())
	if err != nil {
		m.lookupErrors.WithLabelValues(provider).Inc()
	}
}

func (m *enrichmentMetrics) RecordRateLimited(provider string, _ time.Duration) {
	m.rateLimited.WithLabelValues(provider).Inc()
}
