package posix

import (
	"strings"
	"testing"
)

func TestCutDispatch(t *testing.T) {
	out := Dispatch("cut", []string{"-d", ":", "-f", "1"}, "root:x:0\n")
	if out.ExitCode != 0 || out.Stdout != "root\n" {
		t.Fatalf("got %+v", out)
	}
}

func TestSortDispatch(t *testing.T) {
	out := Dispatch("sort", []string{"-r"}, "a\nc\nb\n")
	if out.Stdout != "c\nb\na\n" {
		t.Fatalf("got %q", out.Stdout)
	}
}

func TestWcDispatch(t *testing.T) {
	out := Dispatch("wc", []string{"-l"}, "a\nb\nc\n")
	if strings.TrimSpace(out.Stdout) != "3" {
		t.Fatalf("got %q", out.Stdout)
	}
}

func TestBasenameDirnameDispatch(t *testing.T) {
	out := Dispatch("basename", []string{"/a/b/c.go"}, "")
	if strings.TrimSpace(out.Stdout) != "c.go" {
		t.Fatalf("got %q", out.Stdout)
	}
	out = Dispatch("dirname", []string{"/a/b/c.go"}, "")
	if strings.TrimSpace(out.Stdout) != "/a/b" {
		t.Fatalf("got %q", out.Stdout)
	}
}

func TestEchoDispatch(t *testing.T) {
	out := Dispatch("echo", []string{"-n", "hi"}, "")
	if out.Stdout != "hi" {
		t.Fatalf("got %q", out.Stdout)
	}
}

func TestPrintfDispatch(t *testing.T) {
	out := Dispatch("printf", []string{"%s=%d\\n", "x", "5"}, "")
	if out.Stdout != "x=5\n" {
		t.Fatalf("got %q", out.Stdout)
	}
}

func TestDdDispatch(t *testing.T) {
	out := Dispatch("dd", []string{"conv=ucase"}, "hello")
	if out.Stdout != "HELLO" {
		t.Fatalf("got %q", out.Stdout)
	}
	if !strings.Contains(out.Stderr, "records in") {
		t.Fatalf("expected records summary on stderr, got %q", out.Stderr)
	}
}

func TestOdDispatch(t *testing.T) {
	out := Dispatch("od", []string{"-x"}, "A")
	if !strings.Contains(out.Stdout, "41") {
		t.Fatalf("expected hex dump of 'A' (0x41), got %q", out.Stdout)
	}
}

func TestUnknownCommand(t *testing.T) {
	out := Dispatch("nope", nil, "")
	if out.ExitCode != 127 {
		t.Fatalf("expected exit 127 for unknown command")
	}
}
