package commands

import (
	"path/filepath"
	"testing"
)

func TestGetDefaultStateDir(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", "/var/lib/state")

	want := filepath.Join("/var/lib/state", "glasshouse")
	if got := GetDefaultStateDir(); got != want {
		t.Errorf("GetDefaultStateDir() = %q, want %q", got, want)
	}
}

func TestGetDefaultPidFile(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", "/var/lib/state")

	want := filepath.Join("/var/lib/state", "glasshouse", "glasshouse.pid")
	if got := GetDefaultPidFile(); got != want {
		t.Errorf("GetDefaultPidFile() = %q, want %q", got, want)
	}
}

func TestGetDefaultLogFile(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", "/var/lib/state")

	want := filepath.Join("/var/lib/state", "glasshouse", "glasshouse.log")
	if got := GetDefaultLogFile(); got != want {
		t.Errorf("GetDefaultLogFile() = %q, want %q", got, want)
	}
}
