// Package httpcmd implements the native http-class commands: curl, wget
// (spec.md §4.7 "http").
package httpcmd

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"tierroute/internal/contracts"
	"tierroute/internal/native/shared"
)

// Dispatch runs curl or wget.
func Dispatch(ctx context.Context, name string, argv []string, opts contracts.ExecOptions, fsCap contracts.FsCapability) shared.Output {
	switch name {
	case "curl", "wget":
		return run(ctx, argv, opts, fsCap)
	default:
		return shared.Fail(127, "command not found: "+name)
	}
}

func run(ctx context.Context, argv []string, opts contracts.ExecOptions, fsCap contracts.FsCapability) shared.Output {
	flags, positional := shared.ParseFlags(argv)
	if len(positional) == 0 {
		return shared.Output{ExitCode: 2, Stderr: "curl: no URL specified\n"}
	}
	url := positional[len(positional)-1]
	if !strings.Contains(url, "://") {
		url = "https://" + url
	}

	method := "GET"
	if m, ok := shared.FlagValue(argv, "-X"); ok {
		method = m
	}

	var body io.Reader
	if d, ok := shared.FlagValue(argv, "-d"); ok {
		body = strings.NewReader(d)
		if method == "GET" {
			method = "POST"
		}
	} else if d, ok := shared.FlagValue(argv, "--data"); ok {
		body = strings.NewReader(d)
		if method == "GET" {
			method = "POST"
		}
	} else if d, ok := shared.FlagValue(argv, "--data-raw"); ok {
		body = strings.NewReader(d)
		if method == "GET" {
			method = "POST"
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return shared.Fail(1, "curl: "+err.Error())
	}

	for i, a := range argv {
		if (a == "-H" || a == "--header") && i+1 < len(argv) {
			parts := strings.SplitN(argv[i+1], ":", 2)
			if len(parts) == 2 {
				req.Header.Set(strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]))
			}
		}
	}
	if u, ok := shared.FlagValue(argv, "-u"); ok {
		enc := base64.StdEncoding.EncodeToString([]byte(u))
		req.Header.Set("Authorization", "Basic "+enc)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return shared.Fail(1, "curl: "+err.Error())
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return shared.Fail(1, "curl: "+err.Error())
	}

	headOnly := shared.HasFlag(flags, "-I")
	includeHeaders := shared.HasFlag(flags, "-i") || headOnly

	var out strings.Builder
	if includeHeaders {
		fmt.Fprintf(&out, "HTTP/1.1 %s\n", resp.Status)
		for k, vs := range resp.Header {
			for _, v := range vs {
				fmt.Fprintf(&out, "%s: %s\n", k, v)
			}
		}
		out.WriteString("\n")
	}
	if !headOnly {
		out.Write(data)
	}

	outputPath, hasOut := shared.FlagValue(argv, "-o")
	if shared.HasFlag(flags, "-O") {
		segments := strings.Split(url, "/")
		outputPath = segments[len(segments)-1]
		hasOut = true
	}
	if hasOut && outputPath != "-" && fsCap != nil {
		if werr := fsCap.Write(ctx, outputPath, []byte(out.String())); werr != nil {
			return shared.Fail(1, "curl: "+werr.Error())
		}
		if resp.StatusCode >= 400 {
			return shared.Output{ExitCode: 1}
		}
		return shared.Output{ExitCode: 0}
	}

	if resp.StatusCode >= 400 {
		return shared.Output{Stdout: out.String(), ExitCode: 1}
	}
	return shared.Output{Stdout: out.String(), ExitCode: 0}
}
