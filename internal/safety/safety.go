// Package safety is the sample SafetyAnalyzer implementation (spec.md
// §4.3 step 5b, §6 "SafetyAnalyzer"). It classifies a command line against
// a small Mangle Datalog program: a handful of base facts describing the
// command's shape feed rules that derive a risk tier, and the derived tier
// picks the contracts.SandboxStrategy the Tier Classifier attaches before
// routing to the sandbox lane. Adapted from codeNERD's Mangle Go
// integration boilerplate (.codex/skills/mangle-programming).
package safety

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/mangle/analysis"
	"github.com/google/mangle/ast"
	_ "github.com/google/mangle/builtin"
	"github.com/google/mangle/engine"
	"github.com/google/mangle/factstore"
	"github.com/google/mangle/parse"

	"tierroute/internal/contracts"
	"tierroute/internal/tokenizer"
)

// program derives risk(Level) facts from base facts describing the
// command line (command, has_flag, arg_is_root, arg_has_pipe_to_shell).
// rm -rf, -r and -f together with a "/" argument, piping into sh/bash, and
// sudo/su are high risk; curl, wget, nc and dd are medium risk; a line
// with no derived risk fact is low risk.
const program = `
	Decl has_flag(Flag.Name<n>).
	Decl command(Name.Name<n>).
	Decl arg_is_root(Value.Name<n>).
	Decl arg_has_pipe_to_shell().

	risk(/high) :- has_flag(/r), has_flag(/f), arg_is_root(/root).
	risk(/high) :- command(/rm), has_flag(/rf).
	risk(/high) :- arg_has_pipe_to_shell().
	risk(/high) :- command(/sudo).
	risk(/high) :- command(/su).
	risk(/medium) :- command(/curl).
	risk(/medium) :- command(/wget).
	risk(/medium) :- command(/nc).
	risk(/medium) :- command(/dd).
	risk(/low) :- command(/_anything_never_matches_).
`

// Analyzer is the sample Mangle-backed SafetyAnalyzer.
type Analyzer struct {
	programInfo *analysis.ProgramInfo
}

// New parses and analyzes the fixed risk program once, so Analyze only
// has to add per-line facts and re-evaluate to a fixed point.
func New() (*Analyzer, error) {
	unit, err := parse.Unit(strings.NewReader(program))
	if err != nil {
		return nil, fmt.Errorf("safety: parse error: %w", err)
	}
	info, err := analysis.AnalyzeOneUnit(unit, nil)
	if err != nil {
		return nil, fmt.Errorf("safety: analysis error: %w", err)
	}
	return &Analyzer{programInfo: info}, nil
}

// Analyze implements contracts.SafetyAnalyzer. It builds a fresh fact
// store per call (command lines are independent, and the store is not
// safe to reuse across concurrent Analyze calls) from the line's shape,
// evaluates the program to a fixed point, and maps the derived risk atom
// to a SandboxStrategy.
func (a *Analyzer) Analyze(line string) contracts.SandboxStrategy {
	store := factstore.NewSimpleInMemoryStore()

	name := tokenizer.CommandName(line)
	argv := tokenizer.Argv(line)

	if name != "" {
		store.Add(ast.NewAtom("command", ast.Name("/"+name)))
	}

	flags := map[string]bool{}
	for _, a := range argv {
		switch {
		case a == "-rf" || a == "-fr":
			flags["rf"] = true
		case a == "-r" || a == "-R" || a == "--recursive":
			flags["r"] = true
		case a == "-f" || a == "--force":
			flags["f"] = true
		case a == "/" || a == "/*":
			store.Add(ast.NewAtom("arg_is_root", ast.Name("/root")))
		}
	}
	for f := range flags {
		store.Add(ast.NewAtom("has_flag", ast.Name("/"+f)))
	}
	if strings.Contains(line, "| sh") || strings.Contains(line, "|sh") ||
		strings.Contains(line, "| bash") || strings.Contains(line, "|bash") {
		store.Add(ast.NewAtom("arg_has_pipe_to_shell"))
	}

	if _, err := engine.EvalProgramWithStats(a.programInfo, store); err != nil {
		return defaultStrategy(line, "medium")
	}

	level := "low"
	pred := ast.PredicateSym{Symbol: "risk", Arity: 1}
	query := ast.NewQuery(pred)
	_ = store.GetFacts(query, func(atom ast.Atom) error {
		if c, ok := atom.Args[0].(ast.Constant); ok && c.Type == ast.NameType {
			switch c.Symbol {
			case "/high":
				level = "high"
			case "/medium":
				if level != "high" {
					level = "medium"
				}
			}
		}
		return nil
	})

	return defaultStrategy(line, level)
}

func defaultStrategy(line, level string) contracts.SandboxStrategy {
	switch level {
	case "high":
		return contracts.SandboxStrategy{
			NetworkPolicy: "none",
			FilesystemRO:  true,
			MaxCPUSeconds: 5,
			MaxMemoryMB:   128,
			Reason:        "derived risk tier " + level + " for: " + truncate(line, 80),
		}
	case "medium":
		return contracts.SandboxStrategy{
			NetworkPolicy: "restricted",
			FilesystemRO:  false,
			MaxCPUSeconds: 15,
			MaxMemoryMB:   256,
			Reason:        "derived risk tier " + level + " for: " + truncate(line, 80),
		}
	default:
		return contracts.SandboxStrategy{
			NetworkPolicy: "full",
			FilesystemRO:  false,
			MaxCPUSeconds: 30,
			MaxMemoryMB:   512,
			Reason:        "derived risk tier " + level + " for: " + truncate(line, 80),
		}
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..." + strconv.Itoa(len(s)-n) + " more bytes"
}
