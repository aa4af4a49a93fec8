// Package text implements the native text-processing-class commands: sed
// (substitution form only), awk ({print $N}), diff, patch, tee, xargs
// (spec.md §4.7 "text").
package text

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"tierroute/internal/contracts"
	"tierroute/internal/native/shared"
)

// Dispatch runs one text-class command.
func Dispatch(ctx context.Context, name string, argv []string, stdin string, opts contracts.ExecOptions, deps shared.Deps) shared.Output {
	switch name {
	case "sed":
		return sed(ctx, argv, stdin, deps)
	case "awk":
		return awk(argv, stdin)
	case "diff":
		return diff(ctx, argv, stdin, deps)
	case "patch":
		return patch(ctx, argv, stdin, deps)
	case "tee":
		return tee(ctx, argv, stdin, deps)
	case "xargs":
		return xargs(ctx, argv, stdin, opts, deps)
	default:
		return shared.Fail(127, "command not found: "+name)
	}
}

// sed supports only the substitution form s/pattern/replacement/flags.
func sed(ctx context.Context, argv []string, stdin string, deps shared.Deps) shared.Output {
	_, positional := shared.ParseFlags(argv)
	if len(positional) == 0 {
		return shared.Fail(1, "sed: missing script")
	}
	expr, files := positional[0], positional[1:]
	if !strings.HasPrefix(expr, "s") {
		return shared.Fail(1, "sed: only the s/pattern/replacement/flags form is supported")
	}
	delim := expr[1]
	parts := strings.Split(expr[2:], string(delim))
	if len(parts) < 2 {
		return shared.Fail(1, "sed: malformed expression")
	}
	pattern, replacement := parts[0], parts[1]
	flags := ""
	if len(parts) > 2 {
		flags = parts[2]
	}

	reFlags := ""
	if strings.Contains(flags, "i") {
		reFlags = "(?i)"
	}
	re, err := regexp.Compile(reFlags + pattern)
	if err != nil {
		return shared.Fail(1, "sed: invalid pattern: "+err.Error())
	}
	goRepl := regexp.MustCompile(`\$(\d)`).ReplaceAllString(replacement, `$${$1}`)

	apply := func(content string) string {
		if strings.Contains(flags, "g") {
			return re.ReplaceAllString(content, goRepl)
		}
		done := false
		return re.ReplaceAllStringFunc(content, func(m string) string {
			if done {
				return m
			}
			done = true
			return re.ReplaceAllString(m, goRepl)
		})
	}

	if len(files) == 0 {
		return shared.OkRaw(apply(stdin))
	}
	if deps.FS == nil {
		return shared.Fail(1, "FsCapability not available")
	}
	var out strings.Builder
	for _, f := range files {
		data, err := deps.FS.Read(ctx, f)
		if err != nil {
			return shared.Fail(1, "sed: "+f+": "+err.Error())
		}
		out.WriteString(apply(string(data)))
	}
	return shared.OkRaw(out.String())
}

// awk supports only {print $N} (1-indexed fields, whitespace-split) and
// falls back to passthrough for anything else.
func awk(argv []string, stdin string) shared.Output {
	_, positional := shared.ParseFlags(argv)
	if len(positional) == 0 {
		return shared.OkRaw(stdin)
	}
	program := positional[0]
	re := regexp.MustCompile(`^\{\s*print\s+\$(\d+)\s*\}$`)
	m := re.FindStringSubmatch(strings.TrimSpace(program))
	if m == nil {
		return shared.OkRaw(stdin)
	}
	field, _ := strconv.Atoi(m[1])

	var out strings.Builder
	for _, line := range strings.Split(strings.TrimSuffix(stdin, "\n"), "\n") {
		fields := strings.Fields(line)
		if field >= 1 && field <= len(fields) {
			out.WriteString(fields[field-1])
		}
		out.WriteString("\n")
	}
	return shared.OkRaw(out.String())
}

func diff(ctx context.Context, argv []string, stdin string, deps shared.Deps) shared.Output {
	_, paths := shared.ParseFlags(argv)
	if len(paths) < 2 {
		return shared.Fail(1, "diff: missing operand")
	}
	if deps.FS == nil {
		return shared.Fail(1, "FsCapability not available")
	}
	a, err := deps.FS.Read(ctx, paths[0])
	if err != nil {
		return shared.Fail(2, "diff: "+paths[0]+": "+err.Error())
	}
	b, err := deps.FS.Read(ctx, paths[1])
	if err != nil {
		return shared.Fail(2, "diff: "+paths[1]+": "+err.Error())
	}
	out := unifiedDiff(paths[0], paths[1], string(a), string(b))
	if out == "" {
		return shared.Output{ExitCode: 0}
	}
	return shared.Output{Stdout: out, ExitCode: 1}
}

func unifiedDiff(nameA, nameB, a, b string) string {
	linesA := strings.Split(a, "\n")
	linesB := strings.Split(b, "\n")
	if a == b {
		return ""
	}
	var out strings.Builder
	fmt.Fprintf(&out, "--- %s\n+++ %s\n", nameA, nameB)
	for _, l := range linesA {
		if !contains(linesB, l) {
			out.WriteString("-" + l + "\n")
		}
	}
	for _, l := range linesB {
		if !contains(linesA, l) {
			out.WriteString("+" + l + "\n")
		}
	}
	return out.String()
}

func contains(lines []string, target string) bool {
	for _, l := range lines {
		if l == target {
			return true
		}
	}
	return false
}

// patch applies a unified diff (as produced above or any compatible one)
// against the named file. Only +/- line application at -p0 is supported;
// -R reverses add/remove, --dry-run reports without writing.
func patch(ctx context.Context, argv []string, stdin string, deps shared.Deps) shared.Output {
	flags, paths := shared.ParseFlags(argv)
	if len(paths) == 0 {
		return shared.Fail(1, "patch: missing target file")
	}
	if deps.FS == nil {
		return shared.Fail(1, "FsCapability not available")
	}
	target := paths[0]
	original, err := deps.FS.Read(ctx, target)
	if err != nil {
		return shared.Fail(1, "patch: "+target+": "+err.Error())
	}
	reverse := shared.HasFlag(flags, "-R")
	dryRun := shared.HasFlag(flags, "--dry-run")

	lines := strings.Split(string(original), "\n")
	var adds, removes []string
	for _, l := range strings.Split(stdin, "\n") {
		switch {
		case strings.HasPrefix(l, "+++") || strings.HasPrefix(l, "---"):
			continue
		case strings.HasPrefix(l, "+"):
			adds = append(adds, strings.TrimPrefix(l, "+"))
		case strings.HasPrefix(l, "-"):
			removes = append(removes, strings.TrimPrefix(l, "-"))
		}
	}
	if reverse {
		adds, removes = removes, adds
	}

	var result []string
	removeSet := make(map[string]bool)
	for _, r := range removes {
		removeSet[r] = true
	}
	for _, l := range lines {
		if removeSet[l] {
			continue
		}
		result = append(result, l)
	}
	result = append(result, adds...)

	if dryRun {
		return shared.Output{ExitCode: 0}
	}
	if err := deps.FS.Write(ctx, target, []byte(strings.Join(result, "\n"))); err != nil {
		return shared.Fail(1, "patch: "+err.Error())
	}
	return shared.Output{ExitCode: 0}
}

func tee(ctx context.Context, argv []string, stdin string, deps shared.Deps) shared.Output {
	flags, paths := shared.ParseFlags(argv)
	appendMode := shared.HasFlag(flags, "-a")
	if deps.FS != nil {
		for _, p := range paths {
			content := []byte(stdin)
			if appendMode {
				if existing, err := deps.FS.Read(ctx, p); err == nil {
					content = append(existing, content...)
				}
			}
			if err := deps.FS.Write(ctx, p, content); err != nil {
				return shared.Fail(1, "tee: "+p+": "+err.Error())
			}
		}
	}
	return shared.OkRaw(stdin)
}

// xargs recursively invokes the router once per whitespace-split stdin
// token, appending the token as the final argument of the supplied
// command template.
func xargs(ctx context.Context, argv []string, stdin string, opts contracts.ExecOptions, deps shared.Deps) shared.Output {
	if deps.Exec == nil {
		return shared.Fail(1, "xargs: no executor available")
	}
	_, positional := shared.ParseFlags(argv)
	if len(positional) == 0 {
		return shared.Fail(1, "xargs: missing command")
	}
	base := strings.Join(positional, " ")
	tokens := strings.Fields(stdin)

	var out, errOut strings.Builder
	exit := 0
	for _, tok := range tokens {
		res, err := deps.Exec(ctx, base+" "+tok, opts)
		if err != nil {
			return shared.Fail(1, "xargs: "+err.Error())
		}
		out.WriteString(res.Stdout)
		errOut.WriteString(res.Stderr)
		if res.ExitCode != 0 {
			exit = res.ExitCode
		}
	}
	return shared.Output{Stdout: out.String(), Stderr: errOut.String(), ExitCode: exit}
}
