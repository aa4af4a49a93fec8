package router

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go.uber.org/goleak"
	"golang.org/x/sync/errgroup"

	"tierroute/internal/config"
	"tierroute/internal/contracts"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("database/sql.(*DB).connectionOpener"),
	)
}

// TestConcurrentExecuteIsRaceFree fires many concurrent Execute calls
// against a shared Router, mixing commands from several native capability
// classes, and
// asserts independent calls interleave freely with no data race on the
// classification cache, metrics recorder, or collaborator bindings
// (spec.md §5, run with `go test -race`).
func TestConcurrentExecuteIsRaceFree(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Metrics.Enabled = true
	r, err := New(Options{Config: cfg, FS: newFakeFS()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	lines := []string{
		"echo hello",
		"true",
		"pwd",
		"wc -l",
		"sort",
		"cat missing.txt",
		"expr 1 + 2",
		"uuidgen",
		"whoami",
	}

	var g errgroup.Group
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for i := 0; i < 200; i++ {
		line := lines[i%len(lines)]
		g.Go(func() error {
			_, err := r.Execute(ctx, line, contracts.ExecOptions{Stdin: "a\nb\n"})
			if err != nil {
				return fmt.Errorf("execute %q: %w", line, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent execution failed: %v", err)
	}

	snap := r.GetMetrics()
	if snap.TotalClassifications == 0 {
		t.Fatalf("expected metrics to have recorded classifications")
	}
}

// fakeFS is a minimal in-memory contracts.FsCapability stand-in so fs-class
// commands in the concurrency test have something to dispatch against
// without touching the real filesystem.
type fakeFS struct {
	files map[string]string
}

func newFakeFS() *fakeFS { return &fakeFS{files: map[string]string{}} }

func (f *fakeFS) Read(ctx context.Context, path string) ([]byte, error) {
	if data, ok := f.files[path]; ok {
		return []byte(data), nil
	}
	return nil, fmt.Errorf("not found: %s", path)
}
func (f *fakeFS) Write(ctx context.Context, path string, data []byte) error { return nil }
func (f *fakeFS) List(ctx context.Context, path string, withFileTypes bool) ([]contracts.DirEntry, error) {
	return nil, nil
}
func (f *fakeFS) Stat(ctx context.Context, path string) (contracts.FileInfo, error) {
	return contracts.FileInfo{}, fmt.Errorf("not found: %s", path)
}
func (f *fakeFS) Exists(ctx context.Context, path string) bool {
	_, ok := f.files[path]
	return ok
}
func (f *fakeFS) Mkdir(ctx context.Context, path string, recursive bool) error { return nil }
func (f *fakeFS) Rmdir(ctx context.Context, path string) error                { return nil }
func (f *fakeFS) Rm(ctx context.Context, path string, recursive bool) error   { return nil }
func (f *fakeFS) CopyFile(ctx context.Context, src, dst string) error         { return nil }
func (f *fakeFS) Rename(ctx context.Context, oldPath, newPath string) error   { return nil }
func (f *fakeFS) Utimes(ctx context.Context, path string, atime, mtime time.Time) error {
	return nil
}
func (f *fakeFS) Truncate(ctx context.Context, path string, size int64) error { return nil }
func (f *fakeFS) Chmod(ctx context.Context, path string, mode uint32) error   { return nil }
func (f *fakeFS) Chown(ctx context.Context, path string, uid, gid int) error  { return nil }
func (f *fakeFS) Symlink(ctx context.Context, target, linkPath string) error  { return nil }
func (f *fakeFS) Link(ctx context.Context, target, linkPath string) error     { return nil }
func (f *fakeFS) Readlink(ctx context.Context, path string) (string, error) {
	return "", fmt.Errorf("not a symlink: %s", path)
}
