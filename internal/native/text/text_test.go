package text

import (
	"context"
	"strings"
	"testing"
	"time"

	"tierroute/internal/contracts"
	"tierroute/internal/native/shared"
)

type memFS struct{ files map[string]string }

func newMemFS() *memFS { return &memFS{files: map[string]string{}} }

func (f *memFS) Read(ctx context.Context, path string) ([]byte, error) {
	data, ok := f.files[path]
	if !ok {
		return nil, errNotFound(path)
	}
	return []byte(data), nil
}
func (f *memFS) Write(ctx context.Context, path string, data []byte) error {
	f.files[path] = string(data)
	return nil
}
func (f *memFS) List(ctx context.Context, path string, withFileTypes bool) ([]contracts.DirEntry, error) {
	return nil, nil
}
func (f *memFS) Stat(ctx context.Context, path string) (contracts.FileInfo, error) {
	return contracts.FileInfo{}, nil
}
func (f *memFS) Exists(ctx context.Context, path string) bool {
	_, ok := f.files[path]
	return ok
}
func (f *memFS) Mkdir(ctx context.Context, path string, recursive bool) error { return nil }
func (f *memFS) Rmdir(ctx context.Context, path string) error                 { return nil }
func (f *memFS) Rm(ctx context.Context, path string, recursive bool) error {
	delete(f.files, path)
	return nil
}
func (f *memFS) CopyFile(ctx context.Context, src, dst string) error       { return nil }
func (f *memFS) Rename(ctx context.Context, oldPath, newPath string) error { return nil }
func (f *memFS) Utimes(ctx context.Context, path string, atime, mtime time.Time) error {
	return nil
}
func (f *memFS) Truncate(ctx context.Context, path string, size int64) error { return nil }
func (f *memFS) Chmod(ctx context.Context, path string, mode uint32) error   { return nil }
func (f *memFS) Chown(ctx context.Context, path string, uid, gid int) error  { return nil }
func (f *memFS) Symlink(ctx context.Context, target, linkPath string) error { return nil }
func (f *memFS) Link(ctx context.Context, target, linkPath string) error    { return nil }
func (f *memFS) Readlink(ctx context.Context, path string) (string, error)  { return "", nil }

type notFoundErr struct{ path string }

func (e notFoundErr) Error() string { return e.path + ": not found" }
func errNotFound(path string) error { return notFoundErr{path} }

func TestSedSubstitution(t *testing.T) {
	out := Dispatch(context.Background(), "sed", []string{"s/foo/bar/"}, "foo baz foo\n", contracts.ExecOptions{}, shared.Deps{})
	if out.Stdout != "bar baz foo\n" {
		t.Fatalf("got %q", out.Stdout)
	}
}

func TestSedGlobalFlag(t *testing.T) {
	out := Dispatch(context.Background(), "sed", []string{"s/foo/bar/g"}, "foo foo\n", contracts.ExecOptions{}, shared.Deps{})
	if out.Stdout != "bar bar\n" {
		t.Fatalf("got %q", out.Stdout)
	}
}

func TestSedRejectsNonSubstitution(t *testing.T) {
	out := Dispatch(context.Background(), "sed", []string{"5d"}, "x\n", contracts.ExecOptions{}, shared.Deps{})
	if out.ExitCode == 0 {
		t.Fatalf("expected unsupported sed script to fail")
	}
}

func TestAwkPrintField(t *testing.T) {
	out := Dispatch(context.Background(), "awk", []string{"{print $2}"}, "a b c\nd e f\n", contracts.ExecOptions{}, shared.Deps{})
	if out.Stdout != "b\ne\n" {
		t.Fatalf("got %q", out.Stdout)
	}
}

func TestAwkPassthroughUnsupported(t *testing.T) {
	out := Dispatch(context.Background(), "awk", []string{"{print NF}"}, "hi\n", contracts.ExecOptions{}, shared.Deps{})
	if out.Stdout != "hi\n" {
		t.Fatalf("expected passthrough, got %q", out.Stdout)
	}
}

func TestDiffIdenticalFiles(t *testing.T) {
	fs := newMemFS()
	fs.files["a.txt"] = "same\n"
	fs.files["b.txt"] = "same\n"
	out := Dispatch(context.Background(), "diff", []string{"a.txt", "b.txt"}, "", contracts.ExecOptions{}, shared.Deps{FS: fs})
	if out.ExitCode != 0 {
		t.Fatalf("expected exit 0 for identical files, got %+v", out)
	}
}

func TestDiffDifferentFiles(t *testing.T) {
	fs := newMemFS()
	fs.files["a.txt"] = "one\n"
	fs.files["b.txt"] = "two\n"
	out := Dispatch(context.Background(), "diff", []string{"a.txt", "b.txt"}, "", contracts.ExecOptions{}, shared.Deps{FS: fs})
	if out.ExitCode != 1 {
		t.Fatalf("expected exit 1 for differing files, got %+v", out)
	}
	if !strings.Contains(out.Stdout, "-one") || !strings.Contains(out.Stdout, "+two") {
		t.Fatalf("got %q", out.Stdout)
	}
}

func TestPatchApply(t *testing.T) {
	fs := newMemFS()
	fs.files["a.txt"] = "one\ntwo\n"
	diffText := "--- a.txt\n+++ a.txt\n-one\n+ONE\n"
	out := Dispatch(context.Background(), "patch", []string{"a.txt"}, diffText, contracts.ExecOptions{}, shared.Deps{FS: fs})
	if out.ExitCode != 0 {
		t.Fatalf("unexpected failure: %+v", out)
	}
	if !strings.Contains(fs.files["a.txt"], "ONE") {
		t.Fatalf("expected patched content, got %q", fs.files["a.txt"])
	}
}

func TestTeeWritesAndEchoes(t *testing.T) {
	fs := newMemFS()
	out := Dispatch(context.Background(), "tee", []string{"out.txt"}, "hello", contracts.ExecOptions{}, shared.Deps{FS: fs})
	if out.Stdout != "hello" {
		t.Fatalf("expected stdin echoed, got %q", out.Stdout)
	}
	if fs.files["out.txt"] != "hello" {
		t.Fatalf("expected file written, got %q", fs.files["out.txt"])
	}
}

func TestXargsInvokesExecutorPerToken(t *testing.T) {
	var calls []string
	deps := shared.Deps{Exec: func(ctx context.Context, line string, opts contracts.ExecOptions) (contracts.ExecutionResult, error) {
		calls = append(calls, line)
		return contracts.ExecutionResult{Stdout: line + "\n", ExitCode: 0}, nil
	}}
	out := Dispatch(context.Background(), "xargs", []string{"echo"}, "a b", contracts.ExecOptions{}, deps)
	if len(calls) != 2 {
		t.Fatalf("expected one invocation per token, got %v", calls)
	}
	if out.ExitCode != 0 {
		t.Fatalf("unexpected failure: %+v", out)
	}
}

func TestUnknownTextCommand(t *testing.T) {
	out := Dispatch(context.Background(), "nope", nil, "", contracts.ExecOptions{}, shared.Deps{})
	if out.ExitCode != 127 {
		t.Fatalf("expected exit 127, got %d", out.ExitCode)
	}
}
