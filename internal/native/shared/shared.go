// Package shared holds helpers and the cross-cutting dependency bundle
// reused by every native sub-dispatcher (internal/native/*), mirroring how
// codeNERD's internal/tools/shell package centralized exec.CommandContext
// plumbing for its individual tool implementations.
package shared

import (
	"context"
	"strconv"
	"strings"

	"tierroute/internal/contracts"
)

// Output is the normalized result every native command sub-dispatcher
// returns, before the router wraps it into a contracts.ExecutionResult.
type Output struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Ok builds a successful Output, appending a trailing newline to stdout
// when non-empty and not already newline-terminated.
func Ok(stdout string) Output {
	return Output{Stdout: withTrailingNewline(stdout), ExitCode: 0}
}

// OkRaw builds a successful Output without newline normalization, for
// commands (echo -n, printf) that manage their own trailing newline.
func OkRaw(stdout string) Output {
	return Output{Stdout: stdout, ExitCode: 0}
}

// Fail builds a failing Output with the given exit code and stderr message.
func Fail(exitCode int, stderr string) Output {
	return Output{Stderr: withTrailingNewline(stderr), ExitCode: exitCode}
}

func withTrailingNewline(s string) string {
	if s == "" || strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}

// Deps bundles the collaborators a native command may need beyond its own
// argv/stdin: the filesystem capability (fs-class commands) and a callback
// into the router (xargs, env <subcommand>, timeout) for recursive
// execution of an inner command line.
type Deps struct {
	FS   contracts.FsCapability
	Exec func(ctx context.Context, line string, opts contracts.ExecOptions) (contracts.ExecutionResult, error)
}

// ParseFlags does a minimal getopt-ish scan: it partitions argv into flags
// (tokens starting with '-', collected verbatim) and positional args. It
// does not combine short flags or consume flag values — each native
// dispatcher interprets its own small flag set explicitly, since the
// commands here intentionally cover a narrow, fixed surface (spec.md §1).
func ParseFlags(argv []string) (flags []string, positional []string) {
	for _, a := range argv {
		if strings.HasPrefix(a, "-") && a != "-" {
			flags = append(flags, a)
		} else {
			positional = append(positional, a)
		}
	}
	return flags, positional
}

// HasFlag reports whether any of names appears verbatim in flags.
func HasFlag(flags []string, names ...string) bool {
	for _, f := range flags {
		for _, n := range names {
			if f == n {
				return true
			}
		}
	}
	return false
}

// FlagValue returns the value following a flag of the given name in argv,
// supporting both "-n 3" and "-n3"/"--name=value" forms.
func FlagValue(argv []string, name string) (string, bool) {
	for i, a := range argv {
		if a == name && i+1 < len(argv) {
			return argv[i+1], true
		}
		if strings.HasPrefix(a, name+"=") {
			return strings.TrimPrefix(a, name+"="), true
		}
		if strings.HasPrefix(name, "--") == false && strings.HasPrefix(a, name) && len(a) > len(name) {
			return strings.TrimPrefix(a, name), true
		}
	}
	return "", false
}

// ParseInt parses a base-10 integer, defaulting on failure.
func ParseInt(s string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return v
}

// ExpandEscapes interprets the backslash escape sequences shared by echo,
// printf, and the compute-class duplicates: \n \t \r \a \b \f \v \\.
func ExpandEscapes(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i == len(s)-1 {
			b.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'a':
			b.WriteByte('\a')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'v':
			b.WriteByte('\v')
		case '\\':
			b.WriteByte('\\')
		default:
			b.WriteByte('\\')
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// GlobMatch implements the narrow glob dialect find -name needs: '*' and
// '?' only, no character classes or brace expansion.
func GlobMatch(pattern, name string) bool {
	return globMatch([]rune(pattern), []rune(name))
}

func globMatch(pattern, name []rune) bool {
	if len(pattern) == 0 {
		return len(name) == 0
	}
	switch pattern[0] {
	case '*':
		if globMatch(pattern[1:], name) {
			return true
		}
		for len(name) > 0 {
			name = name[1:]
			if globMatch(pattern[1:], name) {
				return true
			}
		}
		return len(pattern) == 1
	case '?':
		if len(name) == 0 {
			return false
		}
		return globMatch(pattern[1:], name[1:])
	default:
		if len(name) == 0 || name[0] != pattern[0] {
			return false
		}
		return globMatch(pattern[1:], name[1:])
	}
}
