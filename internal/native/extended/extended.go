// Package extended implements the native extended-utils-class commands:
// env, id, uname, tac (spec.md §4.7 "extended").
package extended

import (
	"context"
	"strings"

	"tierroute/internal/contracts"
	"tierroute/internal/native/shared"
)

// Dispatch runs one extended-class command.
func Dispatch(ctx context.Context, name string, argv []string, stdin string, opts contracts.ExecOptions, deps shared.Deps) shared.Output {
	switch name {
	case "env":
		return env(ctx, argv, opts, deps)
	case "id":
		return shared.Ok("uid=1000(edge) gid=1000(edge) groups=1000(edge)")
	case "uname":
		return uname(argv)
	case "tac":
		return tac(stdin)
	default:
		return shared.Fail(127, "command not found: "+name)
	}
}

// env with no subcommand prints the merged environment; with a subcommand
// it delegates execution back to the router with VAR=value assignments
// merged into its env, per spec.md §4.7.
func env(ctx context.Context, argv []string, opts contracts.ExecOptions, deps shared.Deps) shared.Output {
	merged := make(map[string]string, len(opts.Env))
	for k, v := range opts.Env {
		merged[k] = v
	}

	i := 0
	for i < len(argv) {
		parts := strings.SplitN(argv[i], "=", 2)
		if len(parts) == 2 && isAssignment(parts[0]) {
			merged[parts[0]] = parts[1]
			i++
			continue
		}
		break
	}

	if i >= len(argv) {
		var lines []string
		for k, v := range merged {
			lines = append(lines, k+"="+v)
		}
		return shared.Ok(strings.Join(lines, "\n"))
	}

	if deps.Exec == nil {
		return shared.Fail(1, "env: no executor available for subcommand")
	}
	subline := strings.Join(argv[i:], " ")
	newOpts := opts
	newOpts.Env = merged
	res, err := deps.Exec(ctx, subline, newOpts)
	if err != nil {
		return shared.Fail(1, "env: "+err.Error())
	}
	return shared.Output{Stdout: res.Stdout, Stderr: res.Stderr, ExitCode: res.ExitCode}
}

func isAssignment(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		if i == 0 && !(r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')) {
			return false
		}
		if i > 0 && !(r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')) {
			return false
		}
	}
	return true
}

func uname(argv []string) shared.Output {
	flags, _ := shared.ParseFlags(argv)
	if shared.HasFlag(flags, "-a") {
		return shared.Ok("Linux tierroute 6.0.0 tierroute/edge-runtime x86_64 GNU/Linux")
	}
	return shared.Ok("Linux")
}

func tac(stdin string) shared.Output {
	lines := strings.Split(strings.TrimSuffix(stdin, "\n"), "\n")
	for i, j := 0, len(lines)-1; i < j; i, j = i+1, j-1 {
		lines[i], lines[j] = lines[j], lines[i]
	}
	return shared.Ok(strings.Join(lines, "\n"))
}
