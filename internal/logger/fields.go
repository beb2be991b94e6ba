package logger

import "log/slog"

// Standard field keys for structured logging across the honeypot.
// Use these keys consistently so log aggregation and querying stays uniform
// across the SSH session runtime, the persistence actor, and the
// reputation/geolocation clients.
const (
	// Distributed tracing
	KeyTraceID = "trace_id"
	KeySpanID  = "span_id"

	// Connection / session identity
	KeyRemoteIP   = "remote_ip"
	KeyRemotePort = "remote_port"
	KeyUsername   = "username"
	KeyAuthID     = "auth_id"
	KeySessionID  = "session_id"
	KeyProcedure  = "procedure"

	// Authentication
	KeyAuthMethod = "auth_method"
	KeyAccepted   = "accepted"

	// Shell / command dispatch
	KeyCommand = "command"
	KeyHandler = "handler"
	KeyCwd     = "cwd"

	// Filesystem
	KeyPath       = "path"
	KeyTargetPath = "target_path"

	// File uploads (SFTP)
	KeyFilename     = "filename"
	KeySize         = "size"
	KeySHA256       = "sha256"
	KeyClaimedMIME  = "claimed_mime"
	KeyDetectedMIME = "detected_mime"
	KeyMismatch     = "format_mismatch"
	KeyEntropy      = "entropy"

	// Persistence actor
	KeyQueueDepth = "queue_depth"
	KeyTable      = "table"

	// Reputation / geolocation enrichment
	KeyIP          = "ip"
	KeySource      = "source"
	KeyCacheHit    = "cache_hit"
	KeyAbuseScore  = "abuse_score"
	KeyCountry     = "country"
	KeyRetryAfter  = "retry_after"
	KeyRateLimited = "rate_limited"

	// Operation metadata
	KeyDurationMs = "duration_ms"
	KeyUptime     = "uptime"
	KeyError      = "error"
)

func TraceID(id string) slog.Attr     { return slog.String(KeyTraceID, id) }
func SpanID(id string) slog.Attr      { return slog.String(KeySpanID, id) }
func RemoteIP(ip string) slog.Attr    { return slog.String(KeyRemoteIP, ip) }
func RemotePort(p int) slog.Attr      { return slog.Int(KeyRemotePort, p) }
func Username(u string) slog.Attr     { return slog.String(KeyUsername, u) }
func AuthID(id string) slog.Attr      { return slog.String(KeyAuthID, id) }
func SessionID(id string) slog.Attr   { return slog.String(KeySessionID, id) }
func Procedure(p string) slog.Attr    { return slog.String(KeyProcedure, p) }
func AuthMethod(m string) slog.Attr   { return slog.String(KeyAuthMethod, m) }
func Accepted(ok bool) slog.Attr      { return slog.Bool(KeyAccepted, ok) }
func Command(c string) slog.Attr      { return slog.String(KeyCommand, c) }
func Handler(h string) slog.Attr      { return slog.String(KeyHandler, h) }
func Cwd(p string) slog.Attr          { return slog.String(KeyCwd, p) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func TargetPath(p string) slog.Attr   { return slog.String(KeyTargetPath, p) }
func Filename(f string) slog.Attr     { return slog.String(KeyFilename, f) }
func Size(s int64) slog.Attr          { return slog.Int64(KeySize, s) }
func SHA256(h string) slog.Attr       { return slog.String(KeySHA256, h) }
func ClaimedMIME(m string) slog.Attr  { return slog.String(KeyClaimedMIME, m) }
func DetectedMIME(m string) slog.Attr { return slog.String(KeyDetectedMIME, m) }
func Mismatch(b bool) slog.Attr       { return slog.Bool(KeyMismatch, b) }
func Entropy(e float64) slog.Attr     { return slog.Float64(KeyEntropy, e) }
func QueueDepth(n int) slog.Attr      { return slog.Int(KeyQueueDepth, n) }
func Table(t string) slog.Attr        { return slog.String(KeyTable, t) }
func IP(ip string) slog.Attr          { return slog.String(KeyIP, ip) }
func Source(s string) slog.Attr       { return slog.String(KeySource, s) }
func CacheHit(hit bool) slog.Attr     { return slog.Bool(KeyCacheHit, hit) }
func AbuseScore(s int) slog.Attr      { return slog.Int(KeyAbuseScore, s) }
func Country(c string) slog.Attr      { return slog.String(KeyCountry, c) }
func RetryAfter(s int) slog.Attr      { return slog.Int(KeyRetryAfter, s) }
func RateLimited(b bool) slog.Attr    { return slog.Bool(KeyRateLimited, b) }
func DurationMs(ms float64) slog.Attr { return slog.Float64(KeyDurationMs, ms) }
func Uptime(u string) slog.Attr       { return slog.String(KeyUptime, u) }
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}
