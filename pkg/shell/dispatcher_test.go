package shell

import (
	"strings"
	"testing"

	"github.com/marmos91/glasshouse/pkg/filesystem"
)

func newTestContext() *Context {
	fs := filesystem.New()
	fs.CreateDirectory("/", "/home", "root", "root")
	fs.CreateDirectory("/", "/home/user", "user", "user")
	return NewContext("user", "ubuntu-web01", fs, "auth-1")
}

func TestDispatcherCdThenPwd(t *testing.T) {
	d := NewDispatcher(NewDefaultRegistry())
	ctx := newTestContext()

	out := d.Execute("cd /home/user", ctx)
	if out != "" {
		t.Fatalf("expected cd to print nothing, got %q", out)
	}

	out = d.Execute("pwd", ctx)
	if out != "/home/user\r\n" {
		t.Fatalf("unexpected pwd output: %q", out)
	}
}

func TestDispatcherUnknownCommand(t *testing.T) {
	d := NewDispatcher(NewDefaultRegistry())
	ctx := newTestContext()

	out := d.Execute("frobnicate --now", ctx)
	if out != "bash: frobnicate: command not found\r\n" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestDispatcherEmptyLine(t *testing.T) {
	d := NewDispatcher(NewDefaultRegistry())
	ctx := newTestContext()

	if out := d.Execute("", ctx); out != "" {
		t.Fatalf("expected empty output for empty line, got %q", out)
	}
	if out := d.Execute("   ", ctx); out != "" {
		t.Fatalf("expected empty output for blank line, got %q", out)
	}
}

func TestDispatcherGrepPipe(t *testing.T) {
	d := NewDispatcher(NewDefaultRegistry())
	ctx := newTestContext()

	out := d.Execute("ls -a /home | grep user", ctx)
	for _, line := range strings.Split(strings.TrimRight(out, "\n"), "\n") {
		if line == "" {
			continue
		}
		if !strings.Contains(line, "user") {
			t.Fatalf("grep leaked non-matching line: %q", line)
		}
	}
}

func TestDispatcherUnknownPipeStageIgnored(t *testing.T) {
	d := NewDispatcher(NewDefaultRegistry())
	ctx := newTestContext()

	out := d.Execute("pwd | sort", ctx)
	if out != "/home/user\r\n" {
		t.Fatalf("expected unknown pipe stage to be ignored, got %q", out)
	}
}
