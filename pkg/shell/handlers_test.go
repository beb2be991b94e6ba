package shell

import (
	"strings"
	"testing"
)

func TestEchoHandlerDefault(t *testing.T) {
	ctx := newTestContext()
	out := echoHandler{}.Execute("hello world", ctx)
	if out != "hello world\r\n" {
		t.Fatalf("unexpected echo output: %q", out)
	}
}

func TestEchoHandlerNoNewline(t *testing.T) {
	ctx := newTestContext()
	out := echoHandler{}.Execute("-n hi", ctx)
	if out != "hi" {
		t.Fatalf("unexpected echo -n output: %q", out)
	}
}

func TestEchoHandlerEscapes(t *testing.T) {
	ctx := newTestContext()
	out := echoHandler{}.Execute(`-e "a\tb"`, ctx)
	if out != "a\tb\r\n" {
		t.Fatalf("unexpected echo -e output: %q", out)
	}
}

func TestEchoHandlerBackslashCStopsOutput(t *testing.T) {
	ctx := newTestContext()
	out := echoHandler{}.Execute(`-e "one\ctwo"`, ctx)
	if out != "one" {
		t.Fatalf("expected \\c to truncate output, got %q", out)
	}
}

func TestCatHandlerMissingFile(t *testing.T) {
	ctx := newTestContext()
	out := catHandler{}.Execute("/no/such/file", ctx)
	if out != "cat: /no/such/file: No such file or directory\r\n" {
		t.Fatalf("unexpected cat error output: %q", out)
	}
}

func TestCatHandlerDirectory(t *testing.T) {
	ctx := newTestContext()
	out := catHandler{}.Execute("/home", ctx)
	if out != "cat: /home: Is a directory\r\n" {
		t.Fatalf("unexpected cat directory output: %q", out)
	}
}

func TestCatHandlerReturnsContentVerbatim(t *testing.T) {
	ctx := newTestContext()
	ctx.FS.CreateFile("/", "/home/user/notes.txt", "user", "user", []byte("hello\n"), 0644)

	out := catHandler{}.Execute("/home/user/notes.txt", ctx)
	if out != "hello\n" {
		t.Fatalf("expected verbatim content with no appended CRLF, got %q", out)
	}
}

func TestCdHandlerHome(t *testing.T) {
	ctx := newTestContext()
	ctx.Cwd = "/home/user"

	out := cdHandler{}.Execute("", ctx)
	if out != "" {
		t.Fatalf("expected empty output on success, got %q", out)
	}
	if ctx.Cwd != ctx.Home() {
		t.Fatalf("expected cwd to be home, got %q", ctx.Cwd)
	}
}

func TestCdHandlerNotADirectory(t *testing.T) {
	ctx := newTestContext()
	ctx.FS.CreateFile("/", "/home/user/file.txt", "user", "user", []byte("x"), 0644)

	out := cdHandler{}.Execute("/home/user/file.txt", ctx)
	if out != "bash: cd: /home/user/file.txt: Not a directory\r\n" {
		t.Fatalf("unexpected cd output: %q", out)
	}
}

func TestUnameHandlerDefaultPrintsKernelName(t *testing.T) {
	ctx := newTestContext()
	out := unameHandler{}.Execute("", ctx)
	if out != "Linux\r\n" {
		t.Fatalf("unexpected uname output: %q", out)
	}
}

func TestUnameHandlerAllIncludesHostname(t *testing.T) {
	ctx := newTestContext()
	out := unameHandler{}.Execute("-a", ctx)
	if !strings.Contains(out, ctx.Hostname) {
		t.Fatalf("expected uname -a to include hostname, got %q", out)
	}
}

func TestLsHandlerListsDirectory(t *testing.T) {
	ctx := newTestContext()
	ctx.FS.CreateFile("/", "/home/user/a.txt", "user", "user", []byte("x"), 0644)

	out := lsHandler{}.Execute("/home/user", ctx)
	if !strings.Contains(out, "a.txt") {
		t.Fatalf("expected listing to contain a.txt, got %q", out)
	}
}

func TestLsHandlerLongFormatShowsPermissions(t *testing.T) {
	ctx := newTestContext()
	out := lsHandler{}.Execute("-l /home", ctx)
	if !strings.HasPrefix(out, "d") {
		t.Fatalf("expected long listing to start with directory bit, got %q", out)
	}
}

func TestLsHandlerMissingPath(t *testing.T) {
	ctx := newTestContext()
	out := lsHandler{}.Execute("/nope", ctx)
	if out != "ls: cannot access '/nope': No such file or directory\r\n" {
		t.Fatalf("unexpected ls error output: %q", out)
	}
}

func TestPsHandlerSimpleHasHeader(t *testing.T) {
	ctx := newTestContext()
	out := psHandler{}.Execute("", ctx)
	if !strings.HasPrefix(out, "  PID TTY") {
		t.Fatalf("expected ps header, got %q", out)
	}
}

func TestPsHandlerAuxHasLongHeader(t *testing.T) {
	ctx := newTestContext()
	out := psHandler{}.Execute("aux", ctx)
	if !strings.Contains(out, "%CPU") {
		t.Fatalf("expected ps aux header with %%CPU, got %q", out)
	}
}

func TestFreeHandlerDefaultShowsKB(t *testing.T) {
	ctx := newTestContext()
	out := freeHandler{}.Execute("", ctx)
	if !strings.Contains(out, "Mem:") || !strings.Contains(out, "Swap:") {
		t.Fatalf("expected Mem:/Swap: lines, got %q", out)
	}
	if !strings.Contains(out, "kB") {
		t.Fatalf("expected kB unit by default, got %q", out)
	}
}

func TestFreeHandlerWideHasWiderColumns(t *testing.T) {
	ctx := newTestContext()
	narrow := freeHandler{}.Execute("", ctx)
	wide := freeHandler{}.Execute("-w", ctx)
	narrowHeader := strings.SplitN(narrow, "\r\n", 2)[0]
	wideHeader := strings.SplitN(wide, "\r\n", 2)[0]
	if len(wideHeader) <= len(narrowHeader) {
		t.Fatalf("expected wide header to be wider than narrow: wide=%d narrow=%d", len(wideHeader), len(narrowHeader))
	}
}

func TestFreeHandlerTotalFlag(t *testing.T) {
	ctx := newTestContext()
	out := freeHandler{}.Execute("-t", ctx)
	if !strings.Contains(out, "Total:") {
		t.Fatalf("expected Total: line with -t, got %q", out)
	}
}

func TestExitHandlerIsDisconnect(t *testing.T) {
	if !IsDisconnectCommand("exit") || !IsDisconnectCommand("logout") {
		t.Fatal("expected exit and logout to be disconnect commands")
	}
	if IsDisconnectCommand("ls") {
		t.Fatal("did not expect ls to be a disconnect command")
	}
}
