// Package router implements the Tier Router (spec.md §4.6): the top-level
// executor handling input redirection, delegating to the Pipeline
// Executor, dispatching classified segments to their lane, and applying
// cross-tier fallback.
package router

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"go.uber.org/zap"

	"tierroute/internal/classify"
	"tierroute/internal/config"
	"tierroute/internal/contracts"
	"tierroute/internal/logging"
	"tierroute/internal/metrics"
	"tierroute/internal/native/compute"
	"tierroute/internal/native/crypto"
	"tierroute/internal/native/data"
	"tierroute/internal/native/extended"
	"tierroute/internal/native/fs"
	"tierroute/internal/native/httpcmd"
	"tierroute/internal/native/posix"
	"tierroute/internal/native/shared"
	"tierroute/internal/native/system"
	"tierroute/internal/native/text"
	"tierroute/internal/pipeline"
	"tierroute/internal/tokenizer"
)

var redirectRE = regexp.MustCompile(`^(.+?)\s*<\s*(\S+)\s*$`)

// Options supplies every collaborator the router may dispatch to. Only
// Config is required; everything else is an optional embedder-supplied
// binding. Absent collaborators degrade gracefully per spec.md §3/§4.6
// (e.g. no FS means every fs-class command downgrades to sandbox).
type Options struct {
	Config *config.RouterConfig

	FS              contracts.FsCapability
	Sandbox         contracts.SandboxBinding
	LanguageRouter  contracts.LanguageRouter
	SafetyAnalyzer  contracts.SafetyAnalyzer
	LanguageWorkers map[string]contracts.LanguageWorkerBinding
	LoaderBindings  map[string]contracts.WorkerLoaderBinding
	RPCFetchers     map[string]contracts.RPCFetcher // service name -> fetcher-form binding
}

// Router is the public embeddable executor (spec.md §6).
type Router struct {
	mu              sync.RWMutex // guards cfg and rpcServices against ReloadConfig
	cfg             *config.RouterConfig
	classifier      *classify.Classifier
	metrics         *metrics.Recorder
	log             *zap.SugaredLogger
	fsCap           contracts.FsCapability
	sandbox         contracts.SandboxBinding
	rpcServices     map[string]contracts.RpcServiceBinding
	loaderBindings  map[string]contracts.WorkerLoaderBinding
	languageWorkers map[string]contracts.LanguageWorkerBinding
}

// New builds a Router and its Classifier from Options.
func New(opts Options) (*Router, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	rpcServices := make(map[string]contracts.RpcServiceBinding, len(cfg.RPCServices))
	for name, svcCfg := range cfg.RPCServices {
		rpcServices[name] = contracts.RpcServiceBinding{
			Name:     name,
			Endpoint: svcCfg.Endpoint,
			Fetcher:  opts.RPCFetchers[name],
			Commands: svcCfg.Commands,
		}
	}

	r := &Router{
		cfg:             cfg,
		metrics:         metrics.New(cfg.Metrics.Enabled),
		log:             logging.For("router"),
		fsCap:           opts.FS,
		sandbox:         opts.Sandbox,
		rpcServices:     rpcServices,
		loaderBindings:  opts.LoaderBindings,
		languageWorkers: opts.LanguageWorkers,
	}

	classifierOpts := classify.Options{
		CacheCapacity:   cfg.Cache.Capacity,
		FsAvailable:     func() bool { return r.fsCap != nil },
		RPCServices:     rpcServices,
		LoaderBindings:  opts.LoaderBindings,
		LanguageWorkers: opts.LanguageWorkers,
		LanguageRouter:  opts.LanguageRouter,
		SafetyAnalyzer:  opts.SafetyAnalyzer,
		AttachExecutor:  r.attachExecutor,
	}
	c, err := classify.New(classifierOpts, r.metrics)
	if err != nil {
		return nil, err
	}
	r.classifier = c
	return r, nil
}

// Execute is the public entry point (spec.md §4.6 "execute").
func (r *Router) Execute(ctx context.Context, line string, opts contracts.ExecOptions) (contracts.ExecutionResult, error) {
	if m := redirectRE.FindStringSubmatch(line); m != nil {
		left, filePath := m[1], m[2]
		if r.fsCap == nil {
			return contracts.ExecutionResult{Input: line, ExitCode: 1, Stderr: "cannot open " + filePath + "\n"}, nil
		}
		data, err := r.fsCap.Read(ctx, filePath)
		if err != nil {
			return contracts.ExecutionResult{Input: line, ExitCode: 1, Stderr: "cannot open " + filePath + "\n"}, nil
		}
		redirectedOpts := opts
		redirectedOpts.Stdin = string(data)
		return r.Execute(ctx, left, redirectedOpts)
	}

	return pipeline.Execute(ctx, line, opts, r.executeSingle)
}

// ClassifyCommand exposes the classifier directly (spec.md §6
// "classifyCommand").
func (r *Router) ClassifyCommand(line string) contracts.Classification {
	return r.classifier.Classify(line)
}

// IsTierAvailable implements spec.md §6's predicate.
func (r *Router) IsTierAvailable(tier contracts.Tier, command string) bool {
	if tier == contracts.TierSandbox {
		return r.sandbox != nil
	}
	return r.classifier.IsTierAvailable(tier, command)
}

// EnableMetrics / DisableMetrics / GetMetrics / ResetMetrics / ClearCaches
// / GetCacheStats implement the remaining spec.md §6 surface.
func (r *Router) EnableMetrics()  { r.metrics.SetEnabled(true) }
func (r *Router) DisableMetrics() { r.metrics.SetEnabled(false) }
func (r *Router) GetMetrics() metrics.Snapshot {
	return r.metrics.Snapshot()
}
func (r *Router) ResetMetrics()  { r.metrics.Reset() }
func (r *Router) ClearCaches()   { r.classifier.ClearCache() }
func (r *Router) GetCacheStats() (size int, capacity int) {
	size, _ = r.classifier.CacheStats()
	r.mu.RLock()
	defer r.mu.RUnlock()
	return size, r.cfg.Cache.Capacity
}

// ReloadConfig rebuilds the router's RPC service bindings (endpoint and
// command-set overrides) from a freshly loaded RouterConfig, keeping the
// fetcher-form bindings supplied to New. It is the callback configwatch
// invokes on a debounced config file change (cmd/tierroutectl's
// "serve-config-watch"); classification routing itself is unaffected, only
// which endpoint/fetcher a Tier-2 command resolves to.
func (r *Router) ReloadConfig(cfg *config.RouterConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rpcServices := make(map[string]contracts.RpcServiceBinding, len(cfg.RPCServices))
	for name, svcCfg := range cfg.RPCServices {
		rpcServices[name] = contracts.RpcServiceBinding{
			Name:     name,
			Endpoint: svcCfg.Endpoint,
			Fetcher:  r.rpcServices[name].Fetcher,
			Commands: svcCfg.Commands,
		}
	}
	r.cfg = cfg
	r.rpcServices = rpcServices
	r.log.Infow("rpc bindings reloaded", "services", len(rpcServices))
}

// Spawn implements spec.md §4.6 "spawn": streaming processes are only
// supported via a sandbox binding with spawn support.
func (r *Router) Spawn(ctx context.Context, command string, args []string, opts contracts.ExecOptions) (contracts.SpawnHandle, error) {
	spawner, ok := r.sandbox.(contracts.SandboxSpawner)
	if r.sandbox == nil || !ok {
		return nil, fmt.Errorf("spawn requires a sandbox binding with spawn support")
	}
	return spawner.Spawn(ctx, command, args, opts)
}

// executeSingle classifies and dispatches one non-pipeline command line,
// applying the cross-tier fallback policy (spec.md §4.6 step 3, §7).
func (r *Router) executeSingle(ctx context.Context, line string, opts contracts.ExecOptions) (contracts.ExecutionResult, error) {
	cl := r.classifier.Classify(line)
	executor := r.fallbackExecutorFor(cl)
	if executor == nil {
		return contracts.ExecutionResult{}, fmt.Errorf("no executor available for classification %+v", cl)
	}

	res, err := executor.Execute(ctx, line, opts)
	if err != nil {
		if cl.Tier < contracts.TierSandbox && r.sandbox != nil {
			r.log.Warnw("lane infrastructure failure, falling back to sandbox", "tier", cl.Tier, "error", err)
			return r.runSandboxFallback(ctx, line, opts, cl)
		}
		return contracts.ExecutionResult{}, err
	}
	res.Classification = cl

	if cl.Handler == contracts.HandlerPolyglot && res.ExitCode != 0 &&
		strings.Contains(res.Stderr, "Network error") && r.sandbox != nil {
		r.log.Warnw("polyglot network error, falling back to sandbox", "language", cl.Capability)
		return r.runSandboxFallback(ctx, line, opts, cl)
	}
	return res, nil
}

func (r *Router) runSandboxFallback(ctx context.Context, line string, opts contracts.ExecOptions, from contracts.Classification) (contracts.ExecutionResult, error) {
	res, err := r.sandbox.Execute(ctx, line, opts)
	if err != nil {
		return contracts.ExecutionResult{}, err
	}
	res.Classification = contracts.Classification{
		Tier: contracts.TierSandbox, Handler: contracts.HandlerSandbox,
		Capability: contracts.CapContainer,
		Reason:     fmt.Sprintf("fallback from tier %d (Tier 4: Sandbox)", from.Tier),
	}
	return res, nil
}

// runNative dispatches a Tier-1 classification to the matching
// sub-dispatcher by capability tag.
func (r *Router) runNative(ctx context.Context, line string, opts contracts.ExecOptions, cl contracts.Classification) (contracts.ExecutionResult, error) {
	name := tokenizer.CommandName(line)
	argv := tokenizer.Argv(line)
	deps := shared.Deps{FS: r.fsCap, Exec: r.Execute}

	var out shared.Output
	switch cl.Capability {
	case contracts.CapFS:
		out = fs.Dispatch(ctx, name, argv, opts.Stdin, opts.Cwd, r.fsCap)
	case contracts.CapHTTP:
		out = httpcmd.Dispatch(ctx, name, argv, opts, r.fsCap)
	case contracts.CapData:
		out = data.Dispatch(ctx, name, argv, opts.Stdin, opts.Env)
	case contracts.CapCrypto:
		out = crypto.Dispatch(ctx, name, argv, opts.Stdin, opts.Cwd, r.fsCap)
	case contracts.CapText:
		out = text.Dispatch(ctx, name, argv, opts.Stdin, opts, deps)
	case contracts.CapPosix:
		out = posix.Dispatch(name, argv, opts.Stdin)
	case contracts.CapSystem:
		out = system.Dispatch(name, argv, opts.Env)
	case contracts.CapExtended:
		out = extended.Dispatch(ctx, name, argv, opts.Stdin, opts, deps)
	case contracts.CapCompute:
		out = compute.Dispatch(ctx, name, argv, opts.Stdin, opts.Cwd, opts, deps)
	case contracts.CapNpm:
		out = npmNative(argv)
	default:
		out = shared.Fail(127, "no native dispatcher for capability "+string(cl.Capability))
	}

	return contracts.ExecutionResult{
		Input: line, Stdout: out.Stdout, Stderr: out.Stderr, ExitCode: out.ExitCode,
		CommandIntent: name,
	}, nil
}

func npmNative(argv []string) shared.Output {
	if len(argv) == 0 {
		return shared.Fail(1, "npm: missing subcommand")
	}
	return shared.Ok("{}")
}
