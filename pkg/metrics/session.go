package metrics

import "time"

// SessionMetrics observes the lifecycle of SSH connections and the shell
// commands executed within them. Pass nil to disable collection.
type SessionMetrics interface {
	// RecordConnectionAccepted increments the accepted-connections counter
	// for the given listener address.
	RecordConnectionAccepted(listenAddr string)

	// RecordConnectionClosed records a connection's end, including its
	// total duration.
	RecordConnectionClosed(listenAddr string, duration time.Duration)

	// SetActiveSessions updates the current number of open sessions.
	SetActiveSessions(count int)

	// RecordAuthAttempt records one authentication attempt.
	//
	//   - method: "password" or "publickey"
	//   - accepted: whether the server's accept policy let the session through
	RecordAuthAttempt(method string, accepted bool)

	// RecordCommand records one shell command dispatched, by the builtin
	// name resolved (or "unknown" when no handler matched).
	RecordCommand(name string)

	// RecordFileUpload records one SFTP upload, with its size in bytes.
	RecordFileUpload(bytes int64)

	// RecordTarpitDelay records one write delayed by the tarpit writer,
	// with the delay actually applied.
	RecordTarpitDelay(delay time.Duration)
}

// RecordConnectionAccepted is a nil-safe helper mirroring the method of
// the same name, for call sites that only hold an interface value that
// might be nil from a disabled metrics configuration.
func RecordConnectionAccepted(m SessionMetrics, listenAddr string) {
	if m != nil {
		m.RecordConnectionAccepted(listenAddr)
	}
}

// RecordConnectionClosed is the nil-safe counterpart of SessionMetrics.RecordConnectionClosed.
func RecordConnectionClosed(m SessionMetrics, listenAddr string, duration time.Duration) {
	if m != nil {
		m.RecordConnectionClosed(listenAddr, duration)
	}
}

// SetActiveSessions is the nil-safe counterpart of SessionMetrics.SetActiveSessions.
func SetActiveSessions(m SessionMetrics, count int) {
	if m != nil {
		m.SetActiveSessions(count)
	}
}

// RecordAuthAttempt is the nil-safe counterpart of SessionMetrics.RecordAuthAttempt.
func RecordAuthAttempt(m SessionMetrics, method string, accepted bool) {
	if m != nil {
		m.RecordAuthAttempt(method, accepted)
	}
}

// RecordCommand is the nil-safe counterpart of SessionMetrics.RecordCommand.
func RecordCommand(m SessionMetrics, name string) {
	if m != nil {
		m.RecordCommand(name)
	}
}

// RecordFileUpload is the nil-safe counterpart of SessionMetrics.RecordFileUpload.
func RecordFileUpload(m SessionMetrics, bytes int64) {
	if m != nil {
		m.RecordFileUpload(bytes)
	}
}

// RecordTarpitDelay is the nil-safe counterpart of SessionMetrics.RecordTarpitDelay.
func RecordTarpitDelay(m SessionMetrics, delay time.Duration) {
	if m != nil {
		m.RecordTarpitDelay(delay)
	}
}
