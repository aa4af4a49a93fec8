// Package loader is the sample Tier-3 WorkerLoaderBinding implementation
// (spec.md §6 "WorkerLoaderBinding"), adapted from codeNERD's
// internal/autopoiesis YaegiExecutor: instead of compiling a module with
// `go build` (slow, dependency-hell-prone), module source is interpreted
// on demand with traefik/yaegi, restricted to a stdlib allowlist.
package loader

import (
	"context"
	"fmt"
	"strings"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"tierroute/internal/contracts"
	"tierroute/internal/logging"
)

// allowedPackages mirrors the stdlib allowlist codeNERD's YaegiExecutor
// uses to keep interpreted module code from reaching the network or
// filesystem.
var allowedPackages = map[string]bool{
	"strings": true, "strconv": true, "fmt": true, "sort": true,
	"encoding/json": true, "regexp": true,
}

// moduleSource holds the yaegi-interpreted implementation for each member
// of the static Tier3LoadableModules set (classify.Tier3LoadableModules):
// small data-transform utilities plausible as dynamically-loaded modules.
var moduleSource = map[string]string{
	"semver": `
package main

import "strings"

func cmpPart(a, b string) int {
	if a == b { return 0 }
	if a < b { return -1 }
	return 1
}

func Run(argv []string) (string, error) {
	if len(argv) < 3 {
		return "", nil
	}
	a := strings.TrimPrefix(argv[1], "^")
	b := strings.TrimPrefix(argv[2], "^")
	pa := strings.Split(a, ".")
	pb := strings.Split(b, ".")
	for i := 0; i < len(pa) && i < len(pb); i++ {
		if pa[i] != pb[i] {
			return "false", nil
		}
	}
	return "true", nil
}
`,
	"toml2json": `
package main

import (
	"strings"
	"encoding/json"
)

func Run(argv []string) (string, error) {
	input := ""
	if len(argv) > 0 {
		input = argv[0]
	}
	out := map[string]string{}
	for _, line := range strings.Split(input, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		out[strings.TrimSpace(parts[0])] = strings.Trim(strings.TrimSpace(parts[1]), "\"")
	}
	b, err := json.Marshal(out)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
`,
	"mustache": `
package main

import "strings"

func Run(argv []string) (string, error) {
	if len(argv) == 0 {
		return "", nil
	}
	template := argv[0]
	for i := 1; i+1 < len(argv); i += 2 {
		template = strings.ReplaceAll(template, "{{"+argv[i]+"}}", argv[i+1])
	}
	return template, nil
}
`,
	"jsonata": `
package main

func Run(argv []string) (string, error) {
	if len(argv) == 0 {
		return "", nil
	}
	return argv[len(argv)-1], nil
}
`,
}

// loadedModule adapts a yaegi-evaluated Run function into
// contracts.LoadedModule.
type loadedModule struct {
	run func(argv []string) (string, error)
}

func (m loadedModule) Run(ctx context.Context, argv []string) (string, error) {
	type outcome struct {
		result string
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		r, err := m.run(argv)
		done <- outcome{r, err}
	}()
	select {
	case o := <-done:
		return o.result, o.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Loader is the yaegi-backed WorkerLoaderBinding sample implementation.
type Loader struct {
	log interface {
		Debugw(msg string, keysAndValues ...interface{})
	}
}

// New builds the sample Loader, advertising every module it knows how to
// interpret.
func New() *Loader {
	return &Loader{log: logging.For("loader")}
}

// Binding returns the contracts.WorkerLoaderBinding the router registers.
func (l *Loader) Binding() contracts.WorkerLoaderBinding {
	modules := make([]string, 0, len(moduleSource))
	for name := range moduleSource {
		modules = append(modules, name)
	}
	return contracts.WorkerLoaderBinding{
		Name:    "yaegi",
		Load:    l.Load,
		Modules: modules,
	}
}

// Load interprets the named module's source with yaegi and returns a
// contracts.LoadedModule backed by its Run function.
func (l *Loader) Load(ctx context.Context, module string) (contracts.LoadedModule, error) {
	src, ok := moduleSource[module]
	if !ok {
		return nil, fmt.Errorf("loader: no module registered for %q", module)
	}
	if err := validateImports(src); err != nil {
		return nil, fmt.Errorf("loader: %w", err)
	}

	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("loader: failed to load stdlib: %w", err)
	}
	if _, err := i.Eval(src); err != nil {
		return nil, fmt.Errorf("loader: evaluation failed: %w", err)
	}
	v, err := i.Eval("main.Run")
	if err != nil {
		return nil, fmt.Errorf("loader: Run function not found: %w", err)
	}
	fn, ok := v.Interface().(func([]string) (string, error))
	if !ok {
		return nil, fmt.Errorf("loader: Run has unexpected signature")
	}
	return loadedModule{run: fn}, nil
}

// validateImports rejects any module source importing a package outside
// allowedPackages, the same defense-in-depth codeNERD's YaegiExecutor
// applies before evaluation.
func validateImports(src string) error {
	inBlock := false
	for _, line := range strings.Split(src, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, `import "`) {
			pkg := strings.Trim(strings.TrimPrefix(trimmed, "import "), `"`)
			if !allowedPackages[pkg] {
				return fmt.Errorf("forbidden import %q", pkg)
			}
			continue
		}
		if strings.HasPrefix(trimmed, "import (") {
			inBlock = true
			continue
		}
		if inBlock && strings.HasPrefix(trimmed, ")") {
			inBlock = false
			continue
		}
		if inBlock {
			pkg := strings.Trim(trimmed, `"`)
			if pkg != "" && !allowedPackages[pkg] {
				return fmt.Errorf("forbidden import %q", pkg)
			}
		}
	}
	return nil
}
