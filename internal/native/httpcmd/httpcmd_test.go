package httpcmd

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tierroute/internal/contracts"
)

func TestCurlGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("hello"))
	}))
	defer srv.Close()

	out := Dispatch(context.Background(), "curl", []string{srv.URL}, contracts.ExecOptions{}, nil)
	if out.ExitCode != 0 {
		t.Fatalf("unexpected failure: %+v", out)
	}
	if out.Stdout != "hello" {
		t.Fatalf("got %q", out.Stdout)
	}
}

func TestCurlPostWithData(t *testing.T) {
	var gotMethod, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		buf := make([]byte, 64)
		n, _ := r.Body.Read(buf)
		gotBody = string(buf[:n])
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	out := Dispatch(context.Background(), "curl", []string{"-d", "payload", srv.URL}, contracts.ExecOptions{}, nil)
	if out.ExitCode != 0 {
		t.Fatalf("unexpected failure: %+v", out)
	}
	if gotMethod != "POST" {
		t.Fatalf("expected -d to imply POST, got %q", gotMethod)
	}
	if gotBody != "payload" {
		t.Fatalf("expected request body 'payload', got %q", gotBody)
	}
}

func TestCurlNon2xxIsNonZeroExit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(500)
	}))
	defer srv.Close()

	out := Dispatch(context.Background(), "curl", []string{srv.URL}, contracts.ExecOptions{}, nil)
	if out.ExitCode == 0 {
		t.Fatalf("expected non-zero exit for a 500 response")
	}
}

func TestCurlIncludeHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("body"))
	}))
	defer srv.Close()

	out := Dispatch(context.Background(), "curl", []string{"-i", srv.URL}, contracts.ExecOptions{}, nil)
	if !strings.Contains(out.Stdout, "HTTP/1.1") {
		t.Fatalf("expected headers in output, got %q", out.Stdout)
	}
	if !strings.Contains(out.Stdout, "body") {
		t.Fatalf("expected body in output, got %q", out.Stdout)
	}
}

func TestCurlMissingURL(t *testing.T) {
	out := Dispatch(context.Background(), "curl", nil, contracts.ExecOptions{}, nil)
	if out.ExitCode == 0 {
		t.Fatalf("expected failure with no URL")
	}
}

func TestUnknownHttpCommand(t *testing.T) {
	out := Dispatch(context.Background(), "nope", nil, contracts.ExecOptions{}, nil)
	if out.ExitCode != 127 {
		t.Fatalf("expected exit 127, got %d", out.ExitCode)
	}
}
