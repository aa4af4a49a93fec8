package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"tierroute/internal/contracts"
	"tierroute/internal/tokenizer"
)

// runRPC implements the Tier-2 RPC lane (spec.md §4.7 "Tier 2 (RPC)"): the
// service-binding fetcher form, or the HTTP endpoint form as a fallback.
func (r *Router) runRPC(ctx context.Context, line string, opts contracts.ExecOptions, cl contracts.Classification) (contracts.ExecutionResult, error) {
	r.mu.RLock()
	svc, ok := r.rpcServices[string(cl.Capability)]
	r.mu.RUnlock()
	if !ok {
		return contracts.ExecutionResult{}, fmt.Errorf("no RPC service registered for %s", cl.Capability)
	}

	req := contracts.RPCRequest{
		Command: line,
		Cwd:     opts.Cwd,
		Env:     opts.Env,
		Timeout: opts.Timeout.Milliseconds(),
	}

	var resp contracts.RPCResponse
	if svc.Fetcher != nil {
		var err error
		resp, err = svc.Fetcher.Fetch(ctx, req)
		if err != nil {
			return contracts.ExecutionResult{}, err // lane-infrastructure failure: triggers fallback
		}
	} else if svc.Endpoint != "" {
		var httpErr error
		resp, httpErr = postRPC(ctx, svc.Endpoint+"/execute", req)
		if httpErr != nil {
			return contracts.ExecutionResult{}, httpErr
		}
	} else {
		return contracts.ExecutionResult{}, fmt.Errorf("RPC service %s has neither fetcher nor endpoint", svc.Name)
	}

	return contracts.ExecutionResult{
		Input: line, Stdout: resp.Stdout, Stderr: resp.Stderr, ExitCode: resp.ExitCode,
		CommandIntent: tokenizer.CommandName(line),
	}, nil
}

func postRPC(ctx context.Context, url string, req contracts.RPCRequest) (contracts.RPCResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return contracts.RPCResponse{}, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return contracts.RPCResponse{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(httpReq)
	if err != nil {
		return contracts.RPCResponse{}, err // network error: triggers fallback
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return contracts.RPCResponse{}, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Command-semantic failure, not a lane-infrastructure failure: does
		// not trigger fallback (spec.md §4.7 "Tier 2 (RPC)").
		return contracts.RPCResponse{Stderr: "RPC error: " + string(raw), ExitCode: 1}, nil
	}

	var out contracts.RPCResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return contracts.RPCResponse{Stderr: "RPC error: malformed response", ExitCode: 1}, nil
	}
	return out, nil
}

// runPolyglot implements the Tier-2.5 polyglot lane (spec.md §4.7
// "Tier 2.5 (Polyglot)").
func (r *Router) runPolyglot(ctx context.Context, line string, opts contracts.ExecOptions, cl contracts.Classification) (contracts.ExecutionResult, error) {
	language := string(cl.Capability)
	worker, ok := r.languageWorkers[language]
	if !ok {
		return contracts.ExecutionResult{}, fmt.Errorf("no language worker registered for %s", language)
	}
	res, err := worker.Execute(ctx, line, language, opts)
	if err != nil {
		return contracts.ExecutionResult{}, err
	}
	res.Input = line
	res.CommandIntent = tokenizer.CommandName(line)
	return res, nil
}

// runLoader implements the Tier-3 loader lane (spec.md §4.7 "Tier 3
// (Loader)").
func (r *Router) runLoader(ctx context.Context, line string, opts contracts.ExecOptions, cl contracts.Classification) (contracts.ExecutionResult, error) {
	binding, ok := r.loaderBindings[string(cl.Capability)]
	if !ok {
		return contracts.ExecutionResult{}, fmt.Errorf("no loader registered for %s", cl.Capability)
	}
	name := tokenizer.CommandName(line)
	module, err := binding.Load(ctx, name)
	if err != nil {
		return contracts.ExecutionResult{}, err
	}
	argv := tokenizer.Argv(line)
	out, err := module.Run(ctx, argv)
	if err != nil {
		return contracts.ExecutionResult{}, err
	}
	return contracts.ExecutionResult{
		Input: line, Stdout: out + "\n", ExitCode: 0, CommandIntent: name,
	}, nil
}

// runSandbox implements the Tier-4 sandbox lane (spec.md §4.7 "Tier 4
// (Sandbox)").
func (r *Router) runSandbox(ctx context.Context, line string, opts contracts.ExecOptions, cl contracts.Classification) (contracts.ExecutionResult, error) {
	if r.sandbox == nil {
		return contracts.ExecutionResult{}, fmt.Errorf("no sandbox binding configured")
	}
	res, err := r.sandbox.Execute(ctx, line, opts)
	if err != nil {
		return contracts.ExecutionResult{}, err
	}
	res.Input = line
	res.Classification = cl
	res.Classification.Reason = cl.Reason + " (Tier 4: Sandbox)"
	return res, nil
}
