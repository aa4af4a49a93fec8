// Package system implements the native system-utils-class commands: yes,
// whoami, hostname, printenv (spec.md §4.7 "system").
package system

import (
	"strings"

	"tierroute/internal/native/shared"
)

// maxYesLines caps yes output to prevent unbounded allocation in an
// embedded in-process command (spec.md §5 "resource policy").
const maxYesLines = 1000

// Dispatch runs one system-class command.
func Dispatch(name string, argv []string, env map[string]string) shared.Output {
	switch name {
	case "yes":
		return yes(argv)
	case "whoami":
		return shared.Ok("edge-runtime")
	case "hostname":
		return shared.Ok("tierroute")
	case "printenv":
		return printenv(argv, env)
	default:
		return shared.Fail(127, "command not found: "+name)
	}
}

func yes(argv []string) shared.Output {
	_, positional := shared.ParseFlags(argv)
	word := "y"
	if len(positional) > 0 {
		word = strings.Join(positional, " ")
	}
	lines := make([]string, maxYesLines)
	for i := range lines {
		lines[i] = word
	}
	return shared.Ok(strings.Join(lines, "\n"))
}

func printenv(argv []string, env map[string]string) shared.Output {
	flags, positional := shared.ParseFlags(argv)
	nullSep := shared.HasFlag(flags, "-0", "--null")
	sep := "\n"
	if nullSep {
		sep = "\x00"
	}

	if len(positional) == 1 {
		v, ok := env[positional[0]]
		if !ok {
			return shared.Output{ExitCode: 1}
		}
		return shared.OkRaw(v + sep)
	}

	var pairs []string
	for k, v := range env {
		pairs = append(pairs, k+"="+v)
	}
	return shared.OkRaw(strings.Join(pairs, sep) + sep)
}
