package shared

import "testing"

func TestOkAddsTrailingNewline(t *testing.T) {
	out := Ok("hello")
	if out.Stdout != "hello\n" || out.ExitCode != 0 {
		t.Fatalf("got %+v", out)
	}
	if Ok("").Stdout != "" {
		t.Fatalf("expected empty stdout to stay empty")
	}
	if Ok("already\n").Stdout != "already\n" {
		t.Fatalf("should not double newline")
	}
}

func TestOkRawLeavesStdoutUntouched(t *testing.T) {
	if OkRaw("no newline").Stdout != "no newline" {
		t.Fatalf("OkRaw must not append a newline")
	}
}

func TestFail(t *testing.T) {
	out := Fail(2, "boom")
	if out.ExitCode != 2 || out.Stderr != "boom\n" {
		t.Fatalf("got %+v", out)
	}
}

func TestParseFlags(t *testing.T) {
	flags, positional := ParseFlags([]string{"-r", "foo", "--force", "bar", "-"})
	if len(flags) != 2 || flags[0] != "-r" || flags[1] != "--force" {
		t.Fatalf("flags = %v", flags)
	}
	if len(positional) != 3 || positional[2] != "-" {
		t.Fatalf("positional = %v", positional)
	}
}

func TestHasFlag(t *testing.T) {
	flags := []string{"-r", "-f"}
	if !HasFlag(flags, "-f") {
		t.Fatalf("expected -f present")
	}
	if HasFlag(flags, "-v") {
		t.Fatalf("did not expect -v")
	}
}

func TestFlagValue(t *testing.T) {
	if v, ok := FlagValue([]string{"-n", "3"}, "-n"); !ok || v != "3" {
		t.Fatalf("got %q %v", v, ok)
	}
	if v, ok := FlagValue([]string{"--name=bob"}, "--name"); !ok || v != "bob" {
		t.Fatalf("got %q %v", v, ok)
	}
	if v, ok := FlagValue([]string{"-n3"}, "-n"); !ok || v != "3" {
		t.Fatalf("got %q %v", v, ok)
	}
	if _, ok := FlagValue([]string{"-x"}, "-n"); ok {
		t.Fatalf("expected no match")
	}
}

func TestParseInt(t *testing.T) {
	if ParseInt("42", -1) != 42 {
		t.Fatalf("expected 42")
	}
	if ParseInt("nope", -1) != -1 {
		t.Fatalf("expected default on parse failure")
	}
}

func TestExpandEscapes(t *testing.T) {
	got := ExpandEscapes(`a\nb\tc\\d`)
	want := "a\nb\tc\\d"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestGlobMatch(t *testing.T) {
	cases := []struct {
		pattern, name string
		want          bool
	}{
		{"*.py", "main.py", true},
		{"*.py", "main.go", false},
		{"test_?.go", "test_a.go", true},
		{"test_?.go", "test_ab.go", false},
		{"*", "anything", true},
	}
	for _, c := range cases {
		if got := GlobMatch(c.pattern, c.name); got != c.want {
			t.Errorf("GlobMatch(%q, %q) = %v, want %v", c.pattern, c.name, got, c.want)
		}
	}
}
