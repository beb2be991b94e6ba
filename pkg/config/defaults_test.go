package config

import "testing"

func TestApplyDefaults_Tarpit(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Tarpit.QueueDepth != 1000 {
		t.Errorf("expected default tarpit queue depth 1000, got %d", cfg.Tarpit.QueueDepth)
	}
	if cfg.Tarpit.Delay == 0 {
		t.Error("expected a default tarpit delay")
	}
}

func TestApplyDefaults_ReputationAndGeolocation(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Reputation.CacheCleanupIntervalHours != 24 {
		t.Errorf("expected default cache cleanup interval 24h, got %d", cfg.Reputation.CacheCleanupIntervalHours)
	}
	if cfg.Reputation.MaxAge <= 0 {
		t.Error("expected a positive default reputation max age")
	}
	if cfg.Geolocation.MaxAge <= 0 {
		t.Error("expected a positive default geolocation max age")
	}
}

func TestApplyDefaults_LoggingNormalizesLevel(t *testing.T) {
	cfg := &Config{Logging: LoggingConfig{Level: "debug"}}
	ApplyDefaults(cfg)

	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("expected level to be uppercased, got %q", cfg.Logging.Level)
	}
}

func TestApplyDefaults_DoesNotOverrideExplicitValues(t *testing.T) {
	cfg := &Config{Interfaces: []string{":22"}, ServerID: "custom-id"}
	ApplyDefaults(cfg)

	if cfg.Interfaces[0] != ":22" {
		t.Errorf("expected explicit interface to survive defaults, got %v", cfg.Interfaces)
	}
	if cfg.ServerID != "custom-id" {
		t.Errorf("expected explicit server_id to survive defaults, got %q", cfg.ServerID)
	}
}
