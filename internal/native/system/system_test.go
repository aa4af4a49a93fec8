package system

import (
	"strings"
	"testing"
)

func TestYesDefaultWord(t *testing.T) {
	out := Dispatch("yes", nil, nil)
	lines := strings.Split(strings.TrimRight(out.Stdout, "\n"), "\n")
	if len(lines) != maxYesLines {
		t.Fatalf("expected %d lines, got %d", maxYesLines, len(lines))
	}
	if lines[0] != "y" {
		t.Fatalf("expected default word 'y', got %q", lines[0])
	}
}

func TestYesCustomWord(t *testing.T) {
	out := Dispatch("yes", []string{"nope"}, nil)
	if !strings.HasPrefix(out.Stdout, "nope\n") {
		t.Fatalf("got %q", out.Stdout[:10])
	}
}

func TestWhoamiHostname(t *testing.T) {
	if out := Dispatch("whoami", nil, nil); strings.TrimSpace(out.Stdout) == "" {
		t.Fatalf("expected non-empty whoami")
	}
	if out := Dispatch("hostname", nil, nil); strings.TrimSpace(out.Stdout) == "" {
		t.Fatalf("expected non-empty hostname")
	}
}

func TestPrintenvSingleVar(t *testing.T) {
	out := Dispatch("printenv", []string{"FOO"}, map[string]string{"FOO": "bar"})
	if out.Stdout != "bar\n" {
		t.Fatalf("got %q", out.Stdout)
	}
}

func TestPrintenvMissingVar(t *testing.T) {
	out := Dispatch("printenv", []string{"MISSING"}, map[string]string{})
	if out.ExitCode != 1 {
		t.Fatalf("expected exit 1 for missing var")
	}
}

func TestPrintenvAll(t *testing.T) {
	out := Dispatch("printenv", nil, map[string]string{"A": "1"})
	if !strings.Contains(out.Stdout, "A=1") {
		t.Fatalf("got %q", out.Stdout)
	}
}

func TestUnknownSystemCommand(t *testing.T) {
	out := Dispatch("nope", nil, nil)
	if out.ExitCode != 127 {
		t.Fatalf("expected exit 127, got %d", out.ExitCode)
	}
}
