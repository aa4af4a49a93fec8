// Package posix implements the native posix-utils-class commands
// (spec.md §4.7 "posix"). date/basename/dirname/wc/sort/uniq/tr/cut/
// echo/printf are implemented in internal/native/shared so the compute
// sub-dispatcher can reuse the same logic for its duplicate set.
package posix

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"tierroute/internal/native/shared"
)

// Dispatch runs one posix-class command.
func Dispatch(name string, argv []string, stdin string) shared.Output {
	switch name {
	case "cut":
		return cut(argv, stdin)
	case "sort":
		return sortCmd(argv, stdin)
	case "tr":
		return tr(argv, stdin)
	case "uniq":
		return uniq(argv, stdin)
	case "wc":
		return wc(argv, stdin)
	case "basename":
		return basenameCmd(argv)
	case "dirname":
		return dirnameCmd(argv)
	case "echo":
		return echoCmd(argv)
	case "printf":
		return printfCmd(argv)
	case "date":
		return dateCmd(argv)
	case "dd":
		return dd(argv, stdin)
	case "od":
		return od(argv, stdin)
	default:
		return shared.Fail(127, "command not found: "+name)
	}
}

func cut(argv []string, stdin string) shared.Output {
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

func sortCmd(argv []string, stdin string) shared.Output {
	flags, _ := shared.ParseFlags(argv)
	key := 0
	if v, ok := shared.FlagValue(argv, "-k"); ok {
		key = shared.ParseInt(strings.SplitN(v, ",", 2)[0], 0)
	}
	return shared.OkRaw(shared.SortLines(stdin,
		shared.HasFlag(flags, "-r"),
		shared.HasFlag(flags, "-n"),
		shared.HasFlag(flags, "-u"),
		key))
}

func tr(argv []string, stdin string) shared.Output {
	flags, positional := shared.ParseFlags(argv)
	if len(positional) == 0 {
		return shared.Fail(1, "tr: missing operand")
	}
	set1 := positional[0]
	set2 := ""
	if len(positional) > 1 {
		set2 = positional[1]
	}
	return shared.OkRaw(shared.TrChars(stdin, set1, set2,
		shared.HasFlag(flags, "-d"),
		shared.HasFlag(flags, "-s"),
		shared.HasFlag(flags, "-c")))
}

func uniq(argv []string, stdin string) shared.Output {
	flags, _ := shared.ParseFlags(argv)
	skip := 0
	if v, ok := shared.FlagValue(argv, "-f"); ok {
		skip = shared.ParseInt(v, 0)
	}
	return shared.OkRaw(shared.UniqLines(stdin,
		shared.HasFlag(flags, "-c"),
		shared.HasFlag(flags, "-d"),
		shared.HasFlag(flags, "-u"),
		shared.HasFlag(flags, "-i"),
		skip))
}

func wc(argv []string, stdin string) shared.Output {
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

func basenameCmd(argv []string) shared.Output {
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

func dirnameCmd(argv []string) shared.Output {
	_, positional := shared.ParseFlags(argv)
	if len(positional) == 0 {
		return shared.Fail(1, "dirname: missing operand")
	}
	return shared.Ok(shared.Dirname(positional[0]))
}

func echoCmd(argv []string) shared.Output {
	noNewline, interpret := false, false
	// Strip recognized flags from the front of argv; echo's flags must
	// precede its operands.
	var args []string
	for i, a := range argv {
		if a == "-n" || a == "-e" || a == "-E" || a == "-en" || a == "-ne" {
			noNewline = noNewline || a == "-n" || a == "-en" || a == "-ne"
			interpret = interpret || a == "-e" || a == "-en" || a == "-ne"
			continue
		}
		args = argv[i:]
		break
	}
	return shared.OkRaw(shared.FormatEcho(args, noNewline, interpret))
}

func printfCmd(argv []string) shared.Output {
	_, positional := shared.ParseFlags(argv)
	if len(positional) == 0 {
		return shared.Fail(1, "printf: missing format")
	}
	return shared.OkRaw(shared.FormatPrintf(positional[0], positional[1:]))
}

func dateCmd(argv []string) shared.Output {
	flags, positional := shared.ParseFlags(argv)
	now := time.Now()
	if shared.HasFlag(flags, "-u") {
		now = now.UTC()
	}
	format := ""
	for _, p := range positional {
		if strings.HasPrefix(p, "+") {
			format = p
		}
	}
	return shared.Ok(shared.FormatDate(now, format))
}

// dd applies bs=/count=/skip=/conv=ucase|lcase to the supplied stdin,
// writes the result to stdout, and emits the canonical records summary on
// stderr. if=, of=, seek=, ibs= and obs= are not read: input always comes
// from stdin and output always goes to stdout.
func dd(argv []string, stdin string) shared.Output {
	bs := 512
	if v, ok := shared.FlagValue(argv, "bs="); ok {
		bs = shared.ParseInt(v, 512)
	}
	count := -1
	if v, ok := shared.FlagValue(argv, "count="); ok {
		count = shared.ParseInt(v, -1)
	}
	skip := 0
	if v, ok := shared.FlagValue(argv, "skip="); ok {
		skip = shared.ParseInt(v, 0)
	}
	conv, _ := shared.FlagValue(argv, "conv=")

	data := []byte(stdin)
	start := skip * bs
	if start > len(data) {
		start = len(data)
	}
	data = data[start:]
	if count >= 0 && count*bs < len(data) {
		data = data[:count*bs]
	}
	out := string(data)
	switch conv {
	case "ucase":
		out = strings.ToUpper(out)
	case "lcase":
		out = strings.ToLower(out)
	}

	recordsIn := (len(data) + bs - 1) / bs
	if bs == 0 {
		recordsIn = 0
	}
	summary := fmt.Sprintf("%d+0 records in\n%d+0 records out\n", recordsIn, recordsIn)
	return shared.Output{Stdout: out, Stderr: summary, ExitCode: 0}
}

// od implements a narrow octal/hex/decimal/char dump.
func od(argv []string, stdin string) shared.Output {
	flags, _ := shared.ParseFlags(argv)
	data := []byte(stdin)

	format := "o"
	if shared.HasFlag(flags, "-x") {
		format = "x"
	} else if shared.HasFlag(flags, "-d") {
		format = "d"
	} else if shared.HasFlag(flags, "-c") {
		format = "c"
	}

	var out strings.Builder
	width := 16
	for i := 0; i < len(data); i += width {
		end := i + width
		if end > len(data) {
			end = len(data)
		}
		fmt.Fprintf(&out, "%07o", i)
		for _, b := range data[i:end] {
			switch format {
			case "x":
				fmt.Fprintf(&out, " %02x", b)
			case "d":
				fmt.Fprintf(&out, " %3d", b)
			case "c":
				fmt.Fprintf(&out, " %c", b)
			default:
				fmt.Fprintf(&out, " %03o", b)
			}
		}
		out.WriteString("\n")
	}
	fmt.Fprintf(&out, "%07o\n", len(data))
	return shared.Ok(out.String())
}
