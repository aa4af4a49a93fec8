package router

import (
	"context"

	"tierroute/internal/contracts"
)

// The five Executor Adapters (spec.md §4.8): tiny objects carrying a
// back-reference to the Router plus enough of the classification to
// dispatch, so callers can do classification.Executor.Execute(...)
// polymorphically instead of switching on tier.

type nativeExecutor struct {
	router *Router
	cl     contracts.Classification
}

func (e nativeExecutor) Execute(ctx context.Context, line string, opts contracts.ExecOptions) (contracts.ExecutionResult, error) {
	return e.router.runNative(ctx, line, opts, e.cl)
}
func (e nativeExecutor) CanExecute(line string) bool { return true }

type rpcExecutor struct {
	router *Router
	cl     contracts.Classification
}

func (e rpcExecutor) Execute(ctx context.Context, line string, opts contracts.ExecOptions) (contracts.ExecutionResult, error) {
	return e.router.runRPC(ctx, line, opts, e.cl)
}
func (e rpcExecutor) CanExecute(line string) bool { return true }

type loaderExecutor struct {
	router *Router
	cl     contracts.Classification
}

func (e loaderExecutor) Execute(ctx context.Context, line string, opts contracts.ExecOptions) (contracts.ExecutionResult, error) {
	return e.router.runLoader(ctx, line, opts, e.cl)
}
func (e loaderExecutor) CanExecute(line string) bool { return true }

type sandboxExecutor struct {
	router *Router
	cl     contracts.Classification
}

func (e sandboxExecutor) Execute(ctx context.Context, line string, opts contracts.ExecOptions) (contracts.ExecutionResult, error) {
	return e.router.runSandbox(ctx, line, opts, e.cl)
}
func (e sandboxExecutor) CanExecute(line string) bool { return true }

type polyglotExecutor struct {
	router *Router
	cl     contracts.Classification
}

func (e polyglotExecutor) Execute(ctx context.Context, line string, opts contracts.ExecOptions) (contracts.ExecutionResult, error) {
	return e.router.runPolyglot(ctx, line, opts, e.cl)
}
func (e polyglotExecutor) CanExecute(line string) bool { return true }

// attachExecutor is passed to classify.Options.AttachExecutor so the
// classifier can bind an adapter without importing this package.
func (r *Router) attachExecutor(cl contracts.Classification) contracts.Executor {
	switch cl.Handler {
	case contracts.HandlerNative:
		return nativeExecutor{router: r, cl: cl}
	case contracts.HandlerRPC:
		return rpcExecutor{router: r, cl: cl}
	case contracts.HandlerLoader:
		return loaderExecutor{router: r, cl: cl}
	case contracts.HandlerPolyglot:
		return polyglotExecutor{router: r, cl: cl}
	case contracts.HandlerSandbox:
		return sandboxExecutor{router: r, cl: cl}
	default:
		return nil
	}
}

// fallbackExecutorFor implements spec.md §9's "keep the switch as a
// fallback path" note: a classification without a bound Executor (e.g.
// constructed by a test, or deserialized) still dispatches correctly.
func (r *Router) fallbackExecutorFor(cl contracts.Classification) contracts.Executor {
	if cl.Executor != nil {
		return cl.Executor
	}
	return r.attachExecutor(cl)
}
