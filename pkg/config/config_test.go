package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_DefaultConfigWhenFileMissing(t *testing.T) {
	tmpDir := t.TempDir()
	nonExistent := filepath.Join(tmpDir, "nonexistent.yaml")

	cfg, err := Load(nonExistent)
	if err != nil {
		t.Fatalf("expected no error loading default config, got: %v", err)
	}
	if len(cfg.Interfaces) != 1 || cfg.Interfaces[0] != ":2222" {
		t.Errorf("expected default interface :2222, got %v", cfg.Interfaces)
	}
	if cfg.ShutdownTimeout != 30*time.Second {
		t.Errorf("expected default shutdown timeout 30s, got %v", cfg.ShutdownTimeout)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("expected default log format text, got %q", cfg.Logging.Format)
	}
}

func TestLoad_FromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	content := `
interfaces:
  - ":2022"
server_id: "honeypot-eu-1"
logging:
  level: "DEBUG"
database:
  type: sqlite
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if len(cfg.Interfaces) != 1 || cfg.Interfaces[0] != ":2022" {
		t.Errorf("expected interface :2022, got %v", cfg.Interfaces)
	}
	if cfg.ServerID != "honeypot-eu-1" {
		t.Errorf("expected server_id honeypot-eu-1, got %q", cfg.ServerID)
	}
	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("expected log level DEBUG, got %q", cfg.Logging.Level)
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "sub", "config.yaml")

	cfg := GetDefaultConfig()
	cfg.ServerID = "roundtrip-test"

	if err := SaveConfig(cfg, configPath); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	info, err := os.Stat(configPath)
	if err != nil {
		t.Fatalf("expected config file to exist: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("expected config file mode 0600, got %v", info.Mode().Perm())
	}

	loaded, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to reload saved config: %v", err)
	}
	if loaded.ServerID != "roundtrip-test" {
		t.Errorf("expected server_id to survive round trip, got %q", loaded.ServerID)
	}
}

func TestDefaultConfigExists(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	if DefaultConfigExists() {
		t.Fatal("expected no default config to exist in a fresh XDG_CONFIG_HOME")
	}
}
