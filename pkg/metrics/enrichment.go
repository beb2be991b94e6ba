package metrics

import "time"

// EnrichmentMetrics observes the reputation and geolocation lookup clients,
// distinguishing cache hits from outbound API calls so the two tiers' cost
// and health can be told apart. Pass nil to disable collection.
type EnrichmentMetrics interface {
	// RecordLookup records one completed lookup.
	//
	//   - provider: "abuseipdb" or "ip-api"
	//   - source: "memory", "store" or "api" — which tier answered
	//   - duration: time taken to answer, including any API round trip
	//   - err: non-nil if the lookup failed (API error, rate limited, timeout)
	RecordLookup(provider, source string, duration time.Duration, err error)

	// RecordRateLimited records one 429 response from provider, with the
	// retry-after duration the server reported (zero when none was given).
	RecordRateLimited(provider string, retryAfter time.Duration)
}

// RecordLookup is the nil-safe counterpart of EnrichmentMetrics.RecordLookup.
func RecordLookup(m EnrichmentMetrics, provider, source string, duration time.Duration, err error) {
	if m != nil {
		m.RecordLookup(provider, source, duration, err)
	}
}

// RecordRateLimited is the nil-safe counterpart of EnrichmentMetrics.RecordRateLimited.
func RecordRateLimited(m EnrichmentMetrics, provider string, retryAfter time.Duration) {
	if m != nil {
		m.RecordRateLimited(provider, retryAfter)
	}
}
