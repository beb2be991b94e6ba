package config

import (
	"strings"
	"testing"
)

func TestValidate_ValidConfig(t *testing.T) {
	cfg := GetDefaultConfig()
	if err := Validate(cfg); err != nil {
		t.Errorf("expected default config to pass validation, got: %v", err)
	}
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Logging.Level = "INVALID"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error for invalid log level")
	}
	if !strings.Contains(err.Error(), "oneof") {
		t.Errorf("expected 'oneof' validation error, got: %v", err)
	}
}

func TestValidate_EmptyInterfaces(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Interfaces = nil

	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for empty interfaces list")
	}
}

func TestValidate_MissingServerID(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.ServerID = ""

	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for missing server_id")
	}
}

func TestValidate_ZeroShutdownTimeout(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.ShutdownTimeout = 0

	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for zero shutdown timeout")
	}
}
