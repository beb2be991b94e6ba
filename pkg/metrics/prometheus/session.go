// Package prometheus implements glasshouse's metrics interfaces on top of
// github.com/prometheus/client_golang, registered into the registry
// pkg/metrics.InitRegistry creates.
package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/marmos91/glasshouse/pkg/metrics"
)

func init() {
	metrics.RegisterSessionMetricsConstructor(newSessionMetrics)
}

type sessionMetrics struct {
	connectionsAccepted *prometheus.CounterVec
	connectionsClosed   *prometheus.CounterVec
	connectionDuration  *prometheus.HistogramVec
	activeSessions      prometheus.Gauge
	authAttempts        *prometheus.CounterVec
	commandsExecuted    *prometheus.CounterVec
	fileUploads         prometheus.Counter
	fileUploadBytes     prometheus.Histogram
	tarpitDelays        prometheus.Histogram
}

func newSessionMetrics() metrics.SessionMetrics {
	reg := metrics.GetRegistry()

	return &sessionMetrics{
		connectionsAccepted: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "glasshouse_connections_accepted_total",
				Help: "Total number of SSH connections accepted, by listener address.",
			},
			[]string{"listen_addr"},
		),
		connectionsClosed: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "glasshouse_connections_closed_total",
				Help: "Total number of SSH connections closed, by listener address.",
			},
			[]string{"listen_addr"},
		),
		connectionDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "glasshouse_connection_duration_seconds",
				Help:    "Duration of SSH connections from accept to close.",
				Buckets: []float64{0.1, 1, 5, 15, 30, 60, 300, 900, 3600},
			},
			[]string{"listen_addr"},
		),
		activeSessions: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "glasshouse_active_sessions",
				Help: "Current number of open SSH sessions.",
			},
		),
		authAttempts: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "glasshouse_auth_attempts_total",
				Help: "Total number of authentication attempts, by method and outcome.",
			},
			[]string{"method", "accepted"},
		),
		commandsExecuted: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "glasshouse_commands_executed_total",
				Help: "Total number of shell commands dispatched, by resolved builtin name.",
			},
			[]string{"command"},
		),
		fileUploads: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "glasshouse_file_uploads_total",
				Help: "Total number of files uploaded over SFTP.",
			},
		),
		fileUploadBytes: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "glasshouse_file_upload_bytes",
				Help:    "Distribution of SFTP upload sizes in bytes.",
				Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
			},
		),
		tarpitDelays: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "glasshouse_tarpit_delay_seconds",
				Help:    "Distribution of delays applied by the tarpit writer.",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
			},
		),
	}
}

func (m *sessionMetrics) RecordConnectionAccepted(listenAddr string) {
	m.connectionsAccepted.WithLabelValues(listenAddr).Inc()
}

func (m *sessionMetrics) RecordConnectionClosed(listenAddr string, duration time.Duration) {
	m.connectionsClosed.WithLabelValues(listenAddr).Inc()
	m.connectionDuration.WithLabelValues(listenAddr).Observe(duration.Seconds())
}

func (m *sessionMetrics) SetActiveSessions(count int) {
	m.activeSessions.Set(float64(count))
}

func (m *sessionMetrics) RecordAuthAttempt(method string, accepted bool) {
	m.authAttempts.WithLabelValues(method, boolLabel(accepted)).Inc()
}

func (m *sessionMetrics) RecordCommand(name string) {
	m.commandsExecuted.WithLabelValues(name).Inc()
}

func (m *sessionMetrics) RecordFileUpload(bytes int64) {
	m.fileUploads.Inc()
	m.fileUploadBytes.Observe(float64(bytes))
}

func (m *sessionMetrics) RecordTarpitDelay(delay time.Duration) {
	m.tarpitDelays.Observe(delay.Seconds())
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
