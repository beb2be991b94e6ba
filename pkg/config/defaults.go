package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ApplyDefaults fills unset fields with sensible defaults after a config
// file (or environment) has been unmarshaled, and before validation runs.
func ApplyDefaults(cfg *Config) {
	applyCoreDefaults(cfg)
	applyTarpitDefaults(&cfg.Tarpit)
	cfg.Database.ApplyDefaults()
	applyReputationDefaults(&cfg.Reputation)
	applyGeolocationDefaults(&cfg.Geolocation)
	applyLoggingDefaults(&cfg.Logging)
	applyTelemetryDefaults(&cfg.Telemetry)
	applyMetricsDefaults(&cfg.Metrics)
	applyHTTPDefaults(&cfg.HTTP)
}

func applyCoreDefaults(cfg *Config) {
	if len(cfg.Interfaces) == 0 {
		cfg.Interfaces = []string{":2222"}
	}
	if cfg.Hostname == "" {
		cfg.Hostname = "ubuntu-web01"
	}
	if cfg.ServerID == "" {
		cfg.ServerID = "glasshouse-01"
	}
	if cfg.KeyFolder == "" {
		cfg.KeyFolder = filepath.Join(dataDir(), "keys")
	}
	if cfg.ServerVersion == "" {
		cfg.ServerVersion = "SSH-2.0-OpenSSH_8.2p1 Ubuntu-4ubuntu0.4"
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = 30 * time.Second
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
	// SO_REUSEPORT/SO_REUSEADDR default to enabled; the Disable* fields
	// carry the opt-out so the bool zero value (false) means "on".
}

func applyTarpitDefaults(cfg *TarpitConfig) {
	if cfg.Delay == 0 {
		cfg.Delay = 200 * time.Millisecond
	}
	if cfg.QueueDepth == 0 {
		cfg.QueueDepth = 1000
	}
}

func applyReputationDefaults(cfg *ReputationConfig) {
	if cfg.CacheCleanupIntervalHours == 0 {
		cfg.CacheCleanupIntervalHours = 24
	}
	if cfg.MaxAge == 0 {
		// 7 days matches abuseipdb's own cache freshness window. This is
		// distinct from the 90-day maxAgeInDays query parameter sent to
		// the AbuseIPDB API itself, which controls how far back their
		// report aggregation looks, not how long we trust our cache.
		cfg.MaxAge = 7 * 24 * time.Hour
	}
}

func applyGeolocationDefaults(cfg *GeolocationConfig) {
	if cfg.MaxAge == 0 {
		cfg.MaxAge = 24 * time.Hour
	}
}

func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)
	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

func applyTelemetryDefaults(cfg *TelemetryConfig) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "localhost:4317"
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 1.0
	}
	applyProfilingDefaults(&cfg.Profiling)
}

func applyProfilingDefaults(cfg *ProfilingConfig) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "http://localhost:4040"
	}
	if len(cfg.ProfileTypes) == 0 {
		cfg.ProfileTypes = []string{"cpu", "alloc_objects", "alloc_space", "inuse_objects", "inuse_space", "goroutines"}
	}
}

func applyMetricsDefaults(cfg *MetricsConfig) {
	if cfg.Addr == "" {
		cfg.Addr = ":9090"
	}
}

func applyHTTPDefaults(cfg *HTTPConfig) {
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
}

func dataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "glasshouse")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "glasshouse")
	}
	return filepath.Join(home, ".local", "share", "glasshouse")
}

// GetDefaultConfig returns a fully defaulted configuration, used when no
// config file is present.
func GetDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
