// Package langdetect is the sample LanguageRouter implementation
// (spec.md §4.4, §6). It only claims a non-bash language when a command
// argument names an actual script file with a recognized extension (or,
// for Python, additionally confirms the referenced snippet parses via
// tree-sitter) — plain interpreter invocations like "python" / "pip" are
// deliberately left undetected so they continue to reach the default pyx
// RPC service and the package-manager→polyglot step (spec.md §4.3 steps
// 6-7) rather than being preempted here. See DESIGN.md.
package langdetect

import (
	"context"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"tierroute/internal/contracts"
	"tierroute/internal/tokenizer"
)

var extensionLanguage = map[string]string{
	".py": "python",
	".rb": "ruby",
	".js": "javascript",
	".pl": "perl",
	".sh": "bash",
}

// Router is the sample tree-sitter-backed LanguageRouter.
type Router struct {
	pyParser *sitter.Parser
}

// New builds a Router with a ready-to-use Python tree-sitter parser.
func New() *Router {
	p := sitter.NewParser()
	p.SetLanguage(python.GetLanguage())
	return &Router{pyParser: p}
}

// Route implements contracts.LanguageRouter.
func (r *Router) Route(line string, availableWorkers map[string]contracts.LanguageWorkerBinding) (contracts.LanguageRoute, bool) {
	argv := tokenizer.Argv(line)
	name := tokenizer.CommandName(line)

	candidate := ""
	for _, a := range append([]string{name}, argv...) {
		ext := strings.ToLower(filepath.Ext(a))
		if lang, ok := extensionLanguage[ext]; ok {
			candidate = lang
			break
		}
	}
	if candidate == "" {
		return contracts.LanguageRoute{}, false
	}

	if candidate == "python" && r.pyParser != nil {
		if !looksLikePython(r.pyParser, scriptArg(argv)) {
			return contracts.LanguageRoute{}, false
		}
	}

	worker, registered := availableWorkers[candidate]
	routeTo := contracts.HandlerSandbox
	if registered {
		routeTo = contracts.HandlerPolyglot
	}
	return contracts.LanguageRoute{Language: candidate, RouteTo: routeTo, Worker: worker}, true
}

func scriptArg(argv []string) string {
	for _, a := range argv {
		if strings.HasSuffix(a, ".py") {
			return a
		}
	}
	return ""
}

// looksLikePython is a best-effort syntactic sanity check: tree-sitter
// parses the referenced file name as a lone expression statement (the
// real source is not available to the router, which only sees the command
// line), confirming it parses as a valid Python primary expression rather
// than e.g. a binary renamed with a .py extension.
func looksLikePython(parser *sitter.Parser, snippet string) bool {
	if snippet == "" {
		return false
	}
	tree, err := parser.ParseCtx(context.Background(), nil, []byte(snippet))
	if err != nil || tree == nil {
		return false
	}
	defer tree.Close()
	return tree.RootNode() != nil && !tree.RootNode().HasError()
}
