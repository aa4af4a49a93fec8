// Package compute implements the native compute-class commands (spec.md
// §4.7 "compute"): true, false, pwd, seq, expr, bc, sleep, timeout, rev,
// plus the duplicated posix/text utilities for embedders without stdin/fs
// wired in (date, basename, dirname, wc, sort, uniq, tr, cut — delegated
// to internal/native/shared so there is exactly one implementation of each
// algorithm, per DESIGN.md's resolution of the posix/compute overlap).
package compute

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"tierroute/internal/contracts"
	"tierroute/internal/native/shared"
)

// Dispatch runs one compute-class command.
func Dispatch(ctx context.Context, name string, argv []string, stdin string, cwd string, opts contracts.ExecOptions, deps shared.Deps) shared.Output {
	switch name {
	case "true":
		return shared.Output{ExitCode: 0}
	case "false":
		return shared.Output{ExitCode: 1}
	case "pwd":
		return shared.Ok(cwd)
	case "seq":
		return seq(argv)
	case "expr":
		return exprCmd(argv)
	case "bc":
		return bcCmd(stdin)
	case "sleep":
		return sleepCmd(ctx, argv)
	case "timeout":
		return timeoutCmd(ctx, argv, stdin, opts, deps)
	case "rev":
		return shared.Ok(strings.TrimSuffix(shared.Rev(stdin), "\n"))
	case "date":
		return shared.Ok(shared.FormatDate(time.Now(), dateFormat(argv)))
	case "basename":
		return basenameDup(argv)
	case "dirname":
		return dirnameDup(argv)
	case "wc":
		return wcDup(argv, stdin)
	case "sort":
		return sortDup(argv, stdin)
	case "uniq":
		return uniqDup(argv, stdin)
	case "tr":
		return trDup(argv, stdin)
	case "cut":
		return cutDup(argv, stdin)
	default:
		return shared.Fail(127, "command not found: "+name)
	}
}

func seq(argv []string) shared.Output {
	_, positional := shared.ParseFlags(argv)
	var start, step, end int
	switch len(positional) {
	case 1:
		start, step, end = 1, 1, shared.ParseInt(positional[0], 1)
	case 2:
		start, step = shared.ParseInt(positional[0], 1), 1
		end = shared.ParseInt(positional[1], start)
	case 3:
		start = shared.ParseInt(positional[0], 1)
		step = shared.ParseInt(positional[1], 1)
		end = shared.ParseInt(positional[2], start)
	default:
		return shared.Fail(1, "seq: missing operand")
	}
	if step == 0 {
		return shared.Fail(1, "seq: step cannot be zero")
	}
	var lines []string
	if step > 0 {
		for i := start; i <= end; i += step {
			lines = append(lines, strconv.Itoa(i))
		}
	} else {
		for i := start; i >= end; i += step {
			lines = append(lines, strconv.Itoa(i))
		}
	}
	return shared.Ok(strings.Join(lines, "\n"))
}

// exprCmd and bcCmd both route through the restricted arithmetic parser in
// arith.go rather than any general expression evaluator, per spec.md §9's
// explicit "do not eval attacker-controlled text" design note.
func exprCmd(argv []string) shared.Output {
	_, positional := shared.ParseFlags(argv)
	result, err := evalArith(strings.Join(positional, " "))
	if err != nil {
		return shared.Fail(2, "expr: "+err.Error())
	}
	return shared.Ok(formatNumber(result))
}

func bcCmd(stdin string) shared.Output {
	result, err := evalArith(strings.TrimSpace(stdin))
	if err != nil {
		return shared.Fail(1, "bc: "+err.Error())
	}
	return shared.Ok(formatNumber(result))
}

func formatNumber(f float64) string {
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func sleepCmd(ctx context.Context, argv []string) shared.Output {
	_, positional := shared.ParseFlags(argv)
	if len(positional) == 0 {
		return shared.Fail(1, "sleep: missing operand")
	}
	seconds, err := strconv.ParseFloat(positional[0], 64)
	if err != nil {
		return shared.Fail(1, "sleep: invalid duration")
	}
	select {
	case <-time.After(time.Duration(seconds * float64(time.Second))):
		return shared.Output{ExitCode: 0}
	case <-ctx.Done():
		return shared.Fail(1, "sleep: interrupted")
	}
}

// timeoutCmd races deps.Exec for the inner command against the given
// duration, returning exit 124 on timeout per spec.md §4.7.
func timeoutCmd(ctx context.Context, argv []string, stdin string, opts contracts.ExecOptions, deps shared.Deps) shared.Output {
	_, positional := shared.ParseFlags(argv)
	if len(positional) < 2 {
		return shared.Output{ExitCode: 125, Stderr: "timeout: missing operand\n"}
	}
	duration, err := strconv.ParseFloat(positional[0], 64)
	if err != nil {
		return shared.Output{ExitCode: 125, Stderr: "timeout: invalid duration\n"}
	}
	if deps.Exec == nil {
		return shared.Fail(1, "timeout: no executor available")
	}
	inner := strings.Join(positional[1:], " ")

	timeoutCtx, cancel := context.WithTimeout(ctx, time.Duration(duration*float64(time.Second)))
	defer cancel()

	type outcome struct {
		res contracts.ExecutionResult
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		innerOpts := opts
		innerOpts.Stdin = stdin
		res, err := deps.Exec(timeoutCtx, inner, innerOpts)
		done <- outcome{res, err}
	}()

	select {
	case o := <-done:
		if o.err != nil {
			return shared.Fail(1, "timeout: "+o.err.Error())
		}
		return shared.Output{Stdout: o.res.Stdout, Stderr: o.res.Stderr, ExitCode: o.res.ExitCode}
	case <-timeoutCtx.Done():
		return shared.Output{ExitCode: 124, Stderr: fmt.Sprintf("timeout: %s exceeded\n", positional[0])}
	}
}

func dateFormat(argv []string) string {
	_, positional := shared.ParseFlags(argv)
	for _, p := range positional {
		if strings.HasPrefix(p, "+") {
			return p
		}
	}
	return ""
}

func basenameDup(argv []string) shared.Output {
	_, positional := shared.ParseFlags(argv)
	if len(positional) == 0 {
		return shared.Fail(1, "basename: missing operand")
	}
	suffix := ""
	if len(positional) > 1 {
		suffix = positional[1]
	}
	return shared.Ok(shared.Basename(positional[0], suffix))
}

func dirnameDup(argv []string) shared.Output {
	_, positional := shared.ParseFlags(argv)
	if len(positional) == 0 {
		return shared.Fail(1, "dirname: missing operand")
	}
	return shared.Ok(shared.Dirname(positional[0]))
}

func wcDup(argv []string, stdin string) shared.Output {
	flags, _ := shared.ParseFlags(argv)
	lines, words, bytes := shared.WcCounts(stdin)
	switch {
	case shared.HasFlag(flags, "-l"):
		return shared.Ok(strconv.Itoa(lines))
	case shared.HasFlag(flags, "-w"):
		return shared.Ok(strconv.Itoa(words))
	case shared.HasFlag(flags, "-c"):
		return shared.Ok(strconv.Itoa(bytes))
	default:
		return shared.Ok(fmt.Sprintf("%d %d %d", lines, words, bytes))
	}
}

func sortDup(argv []string, stdin string) shared.Output {
	flags, _ := shared.ParseFlags(argv)
	key := 0
	if v, ok := shared.FlagValue(argv, "-k"); ok {
		key = shared.ParseInt(strings.SplitN(v, ",", 2)[0], 0)
	}
	return shared.OkRaw(shared.SortLines(stdin,
		shared.HasFlag(flags, "-r"), shared.HasFlag(flags, "-n"), shared.HasFlag(flags, "-u"), key))
}

func uniqDup(argv []string, stdin string) shared.Output {
	flags, _ := shared.ParseFlags(argv)
	skip := 0
	if v, ok := shared.FlagValue(argv, "-f"); ok {
		skip = shared.ParseInt(v, 0)
	}
	return shared.OkRaw(shared.UniqLines(stdin,
		shared.HasFlag(flags, "-c"), shared.HasFlag(flags, "-d"), shared.HasFlag(flags, "-u"),
		shared.HasFlag(flags, "-i"), skip))
}

func trDup(argv []string, stdin string) shared.Output {
	flags, positional := shared.ParseFlags(argv)
	if len(positional) == 0 {
		return shared.Fail(1, "tr: missing operand")
	}
	set2 := ""
	if len(positional) > 1 {
		set2 = positional[1]
	}
	return shared.OkRaw(shared.TrChars(stdin, positional[0], set2,
		shared.HasFlag(flags, "-d"), shared.HasFlag(flags, "-s"), shared.HasFlag(flags, "-c")))
}

func cutDup(argv []string, stdin string) shared.Output {
	delim := "\t"
	if d, ok := shared.FlagValue(argv, "-d"); ok {
		delim = d
	}
	charMode := false
	fieldSpec, ok := shared.FlagValue(argv, "-f")
	if !ok {
		if cs, ok2 := shared.FlagValue(argv, "-c"); ok2 {
			fieldSpec = cs
			charMode = true
		}
	}
	if fieldSpec == "" {
		return shared.Fail(1, "cut: you must specify -f or -c")
	}
	return shared.OkRaw(shared.Cut(stdin, delim, shared.ParseFieldList(fieldSpec), charMode))
}
