package prometheus

import (
	"testing"
	"time"

	"github.com/marmos91/glasshouse/pkg/metrics"
)

func withRegistry(t *testing.T) {
	t.Helper()
	metrics.Reset()
	metrics.InitRegistry()
	t.Cleanup(metrics.Reset)
}

func TestNewSessionMetrics_Disabled_ReturnsNil(t *testing.T) {
	metrics.Reset()
	if m := metrics.NewSessionMetrics(); m != nil {
		t.Fatal("expected nil SessionMetrics when metrics are disabled")
	}
}

func TestNewSessionMetrics_Enabled_RecordsCounters(t *testing.T) {
	withRegistry(t)

	m := metrics.NewSessionMetrics()
	if m == nil {
		t.Fatal("expected non-nil SessionMetrics once InitRegistry was called")
	}

	m.RecordConnectionAccepted(":2222")
	m.RecordConnectionClosed(":2222", 3*time.Second)
	m.SetActiveSessions(4)
	m.RecordAuthAttempt("password", true)
	m.RecordCommand("ls")
	m.RecordFileUpload(1024)
	m.RecordTarpitDelay(500 * time.Millisecond)

	mfs, err := metrics.GetRegistry().Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}

	want := map[string]bool{
		"glasshouse_connections_accepted_total": false,
		"glasshouse_connections_closed_total":   false,
		"glasshouse_active_sessions":            false,
		"glasshouse_auth_attempts_total":        false,
		"glasshouse_commands_executed_total":    false,
		"glasshouse_file_uploads_total":         false,
		"glasshouse_tarpit_delay_seconds":       false,
	}
	for _, mf := range mfs {
		if _, ok := want[mf.GetName()]; ok {
			want[mf.GetName()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("expected metric %s to be registered", name)
		}
	}
}
