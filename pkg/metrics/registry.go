// Package metrics defines the interfaces glasshouse's connection, shell,
// reputation and geolocation layers collect observability through. Each
// interface is optional: callers pass nil to disable collection with zero
// overhead, and the Prometheus-backed implementations live under
// pkg/metrics/prometheus to keep this package free of the client_golang
// dependency for callers who never enable metrics.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	mu       sync.RWMutex
	enabled  bool
	registry *prometheus.Registry
)

// InitRegistry creates the process-wide Prometheus registry metrics are
// collected into. Must be called before any New*Metrics constructor if
// metrics collection is wanted; otherwise every constructor returns nil.
func InitRegistry() *prometheus.Registry {
	mu.Lock()
	defer mu.Unlock()

	registry = prometheus.NewRegistry()
	enabled = true
	return registry
}

// IsEnabled reports whether InitRegistry has been called.
func IsEnabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return enabled
}

// GetRegistry returns the registry created by InitRegistry, or nil if
// metrics are disabled.
func GetRegistry() *prometheus.Registry {
	mu.RLock()
	defer mu.RUnlock()
	return registry
}

// Reset clears the registry. Exists for tests that need metrics enabled
// across multiple independent cases without panicking on duplicate
// collector registration.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	registry = nil
	enabled = false
}
