package sshserver

import (
	"testing"
	"time"
)

func TestStripPort(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"ipv4 with port", "203.0.113.9:52341", "203.0.113.9"},
		{"ipv6 with port", "[2001:db8::1]:22", "[2001:db8::1]"},
		{"no port", "203.0.113.9", "203.0.113.9"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripPort(tt.input); got != tt.want {
				t.Errorf("stripPort(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRandDuration(t *testing.T) {
	for i := 0; i < 100; i++ {
		d := randDuration(10*time.Millisecond, 50*time.Millisecond)
		if d < 10*time.Millisecond || d >= 50*time.Millisecond {
			t.Fatalf("randDuration out of range: %v", d)
		}
	}

	if got := randDuration(5*time.Millisecond, 5*time.Millisecond); got != 5*time.Millisecond {
		t.Errorf("randDuration with equal bounds = %v, want %v", got, 5*time.Millisecond)
	}
}

func TestFirstWord(t *testing.T) {
	tests := []struct{ line, want string }{
		{"ls -la /tmp", "ls"},
		{"whoami", "whoami"},
		{"", ""},
		{"  cat", "cat"},
	}
	for _, tt := range tests {
		if got := firstWord(tt.line); got != tt.want {
			t.Errorf("firstWord(%q) = %q, want %q", tt.line, got, tt.want)
		}
	}
}

func TestParseSubsystemName(t *testing.T) {
	payload := append([]byte{0, 0, 0, 4}, []byte("sftp")...)
	if got := parseSubsystemName(payload); got != "sftp" {
		t.Errorf("parseSubsystemName = %q, want sftp", got)
	}

	if got := parseSubsystemName([]byte{0, 0}); got != "" {
		t.Errorf("parseSubsystemName with short payload = %q, want empty", got)
	}

	if got := parseSubsystemName([]byte{0, 0, 0, 99, 'x'}); got != "" {
		t.Errorf("parseSubsystemName with length exceeding payload = %q, want empty", got)
	}
}

func TestSha256Hex(t *testing.T) {
	got := sha256Hex([]byte("abc"))
	want := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got != want {
		t.Errorf("sha256Hex(abc) = %s, want %s", got, want)
	}
}
