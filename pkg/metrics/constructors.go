package metrics

// newPrometheusSessionMetrics and newPrometheusEnrichmentMetrics are
// implemented in pkg/metrics/prometheus. The indirection avoids an import
// cycle (prometheus.New*Metrics needs metrics.IsEnabled/GetRegistry) while
// keeping NewSessionMetrics/NewEnrichmentMetrics as the single call site
// the rest of glasshouse depends on.
var (
	newPrometheusSessionMetrics    func() SessionMetrics
	newPrometheusEnrichmentMetrics func() EnrichmentMetrics
)

// RegisterSessionMetricsConstructor is called by pkg/metrics/prometheus
// during package initialization.
func RegisterSessionMetricsConstructor(constructor func() SessionMetrics) {
	newPrometheusSessionMetrics = constructor
}

// RegisterEnrichmentMetricsConstructor is called by pkg/metrics/prometheus
// during package initialization.
func RegisterEnrichmentMetricsConstructor(constructor func() EnrichmentMetrics) {
	newPrometheusEnrichmentMetrics = constructor
}

// NewSessionMetrics returns a Prometheus-backed SessionMetrics, or nil if
// metrics are disabled (InitRegistry not called).
func NewSessionMetrics() SessionMetrics {
	if !IsEnabled() {
		return nil
	}
	return newPrometheusSessionMetrics()
}

// NewEnrichmentMetrics returns a Prometheus-backed EnrichmentMetrics, or
// nil if metrics are disabled (InitRegistry not called).
func NewEnrichmentMetrics() EnrichmentMetrics {
	if !IsEnabled() {
		return nil
	}
	return newPrometheusEnrichmentMetrics()
}
