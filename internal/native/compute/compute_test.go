package compute

import (
	"context"
	"strings"
	"testing"
	"time"

	"tierroute/internal/contracts"
	"tierroute/internal/native/shared"
)

func TestTrueFalse(t *testing.T) {
	if out := Dispatch(context.Background(), "true", nil, "", "", contracts.ExecOptions{}, shared.Deps{}); out.ExitCode != 0 {
		t.Fatalf("true should exit 0")
	}
	if out := Dispatch(context.Background(), "false", nil, "", "", contracts.ExecOptions{}, shared.Deps{}); out.ExitCode != 1 {
		t.Fatalf("false should exit 1")
	}
}

func TestPwd(t *testing.T) {
	out := Dispatch(context.Background(), "pwd", nil, "", "/workdir", contracts.ExecOptions{}, shared.Deps{})
	if strings.TrimSpace(out.Stdout) != "/workdir" {
		t.Fatalf("got %q", out.Stdout)
	}
}

func TestSeq(t *testing.T) {
	out := Dispatch(context.Background(), "seq", []string{"1", "2", "5"}, "", "", contracts.ExecOptions{}, shared.Deps{})
	if strings.TrimSpace(out.Stdout) != "1\n3\n5" {
		t.Fatalf("got %q", out.Stdout)
	}
}

func TestExpr(t *testing.T) {
	out := Dispatch(context.Background(), "expr", []string{"2", "+", "3", "*", "4"}, "", "", contracts.ExecOptions{}, shared.Deps{})
	if strings.TrimSpace(out.Stdout) != "14" {
		t.Fatalf("got %q", out.Stdout)
	}
}

func TestBc(t *testing.T) {
	out := Dispatch(context.Background(), "bc", nil, "(2+3)*4", "", contracts.ExecOptions{}, shared.Deps{})
	if strings.TrimSpace(out.Stdout) != "20" {
		t.Fatalf("got %q", out.Stdout)
	}
}

func TestTimeoutExceeded(t *testing.T) {
	deps := shared.Deps{Exec: func(ctx context.Context, line string, opts contracts.ExecOptions) (contracts.ExecutionResult, error) {
		select {
		case <-time.After(time.Second):
			return contracts.ExecutionResult{}, nil
		case <-ctx.Done():
			return contracts.ExecutionResult{}, ctx.Err()
		}
	}}
	out := Dispatch(context.Background(), "timeout", []string{"0.01", "sleep", "1"}, "", "", contracts.ExecOptions{}, deps)
	if out.ExitCode != 124 {
		t.Fatalf("expected exit 124 on timeout, got %+v", out)
	}
}

func TestTimeoutCompletes(t *testing.T) {
	deps := shared.Deps{Exec: func(ctx context.Context, line string, opts contracts.ExecOptions) (contracts.ExecutionResult, error) {
		return contracts.ExecutionResult{Stdout: "done", ExitCode: 0}, nil
	}}
	out := Dispatch(context.Background(), "timeout", []string{"5", "echo", "hi"}, "", "", contracts.ExecOptions{}, deps)
	if out.ExitCode != 0 || out.Stdout != "done" {
		t.Fatalf("got %+v", out)
	}
}

func TestRev(t *testing.T) {
	out := Dispatch(context.Background(), "rev", nil, "abc", "", contracts.ExecOptions{}, shared.Deps{})
	if out.Stdout != "cba\n" {
		t.Fatalf("got %q", out.Stdout)
	}
}

func TestComputeDuplicatesMatchSharedLogic(t *testing.T) {
	out := Dispatch(context.Background(), "wc", []string{"-l"}, "a\nb\n", "", contracts.ExecOptions{}, shared.Deps{})
	if strings.TrimSpace(out.Stdout) != "2" {
		t.Fatalf("got %q", out.Stdout)
	}
}
