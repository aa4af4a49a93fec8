// Package fs implements the native fs-class command sub-dispatcher
// (spec.md §4.7 "fs"). Every command here requires a configured
// contracts.FsCapability; the classifier guarantees one is present before
// routing to this package, but Dispatch defends against a nil one anyway.
package fs

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"tierroute/internal/contracts"
	"tierroute/internal/native/shared"
)

// Dispatch runs one fs-class command.
func Dispatch(ctx context.Context, name string, argv []string, stdin string, cwd string, fsCap contracts.FsCapability) shared.Output {
	if fsCap == nil {
		return shared.Fail(1, "FsCapability not available")
	}
	switch name {
	case "cat":
		return cat(ctx, argv, stdin, fsCap)
	case "ls":
		return ls(ctx, argv, fsCap)
	case "head":
		return headTail(ctx, argv, stdin, fsCap, true)
	case "tail":
		return headTail(ctx, argv, stdin, fsCap, false)
	case "test", "[":
		return test(ctx, argv, fsCap)
	case "stat":
		return statCmd(ctx, argv, fsCap)
	case "readlink":
		return readlink(ctx, argv, fsCap)
	case "find":
		return find(ctx, argv, fsCap)
	case "grep":
		return grep(ctx, argv, stdin, fsCap)
	case "mkdir":
		return mkdir(ctx, argv, fsCap)
	case "rmdir":
		return rmdir(ctx, argv, fsCap)
	case "rm":
		return rm(ctx, argv, fsCap)
	case "cp":
		return cp(ctx, argv, fsCap)
	case "mv":
		return mv(ctx, argv, fsCap)
	case "touch":
		return touch(ctx, argv, fsCap)
	case "truncate":
		return truncateCmd(ctx, argv, fsCap)
	case "ln":
		return ln(ctx, argv, fsCap)
	case "chmod":
		return chmod(ctx, argv, fsCap)
	case "chown":
		return chown(ctx, argv, fsCap)
	default:
		return shared.Fail(127, "command not found: "+name)
	}
}

func cat(ctx context.Context, argv []string, stdin string, fsCap contracts.FsCapability) shared.Output {
	_, paths := shared.ParseFlags(argv)
	if len(paths) == 0 {
		return shared.OkRaw(stdin)
	}
	var b strings.Builder
	for _, p := range paths {
		data, err := fsCap.Read(ctx, p)
		if err != nil {
			return shared.Fail(1, "cat: "+p+": "+err.Error())
		}
		b.Write(data)
	}
	return shared.OkRaw(b.String())
}

func ls(ctx context.Context, argv []string, fsCap contracts.FsCapability) shared.Output {
	flags, paths := shared.ParseFlags(argv)
	path := "."
	if len(paths) > 0 {
		path = paths[0]
	}
	entries, err := fsCap.List(ctx, path, true)
	if err != nil {
		return shared.Fail(1, "ls: "+path+": "+err.Error())
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		n := e.Name
		if shared.HasFlag(flags, "-F") && e.IsDirectory {
			n += "/"
		}
		names = append(names, n)
	}
	sort.Strings(names)
	if shared.HasFlag(flags, "-1") {
		return shared.Ok(strings.Join(names, "\n"))
	}
	return shared.Ok(strings.Join(names, "  "))
}

func headTail(ctx context.Context, argv []string, stdin string, fsCap contracts.FsCapability, head bool) shared.Output {
	flags, _ := shared.ParseFlags(argv)
	var paths []string
	for i := 0; i < len(argv); i++ {
		if argv[i] == "-n" {
			i++ // the count following -n is not a file
			continue
		}
		if !strings.HasPrefix(argv[i], "-") || argv[i] == "-" {
			paths = append(paths, argv[i])
		}
	}
	n := 10
	if v, ok := shared.FlagValue(argv, "-n"); ok {
		n = shared.ParseInt(v, 10)
	}
	quiet := shared.HasFlag(flags, "-q")

	readLines := func(content string) []string {
		content = strings.TrimSuffix(content, "\n")
		if content == "" {
			return nil
		}
		return strings.Split(content, "\n")
	}

	var bodies [][2]string // [path, content]
	if len(paths) == 0 {
		bodies = append(bodies, [2]string{"", stdin})
	} else {
		for _, p := range paths {
			data, err := fsCap.Read(ctx, p)
			if err != nil {
				return shared.Fail(1, "head/tail: "+p+": "+err.Error())
			}
			bodies = append(bodies, [2]string{p, string(data)})
		}
	}

	var out strings.Builder
	for i, body := range bodies {
		if !quiet && len(bodies) > 1 {
			if i > 0 {
				out.WriteString("\n")
			}
			fmt.Fprintf(&out, "==> %s <==\n", body[0])
		}
		lines := readLines(body[1])
		selected := selectLines(lines, n, head)
		out.WriteString(strings.Join(selected, "\n"))
		if len(selected) > 0 {
			out.WriteString("\n")
		}
	}
	return shared.OkRaw(out.String())
}

func selectLines(lines []string, n int, head bool) []string {
	if n < 0 {
		// "-n -N": exclude last N (head) or start from Nth from end (tail).
		n = -n
		if head {
			if n >= len(lines) {
				return nil
			}
			return lines[:len(lines)-n]
		}
		if n >= len(lines) {
			return lines
		}
		return lines[len(lines)-n:]
	}
	if head {
		if n >= len(lines) {
			return lines
		}
		return lines[:n]
	}
	if n >= len(lines) {
		return lines
	}
	return lines[len(lines)-n:]
}

func test(ctx context.Context, argv []string, fsCap contracts.FsCapability) shared.Output {
	if len(argv) < 2 {
		return shared.Output{ExitCode: 2, Stderr: "test: missing argument\n"}
	}
	op, path := argv[0], argv[1]
	exists := fsCap.Exists(ctx, path)
	switch op {
	case "-e":
		return boolExit(exists)
	case "-f":
		if !exists {
			return boolExit(false)
		}
		info, err := fsCap.Stat(ctx, path)
		return boolExit(err == nil && !info.IsDir)
	case "-d":
		if !exists {
			return boolExit(false)
		}
		info, err := fsCap.Stat(ctx, path)
		return boolExit(err == nil && info.IsDir)
	default:
		return shared.Output{ExitCode: 2, Stderr: "test: unsupported operator " + op + "\n"}
	}
}

func boolExit(ok bool) shared.Output {
	if ok {
		return shared.Output{ExitCode: 0}
	}
	return shared.Output{ExitCode: 1}
}

func statCmd(ctx context.Context, argv []string, fsCap contracts.FsCapability) shared.Output {
	_, paths := shared.ParseFlags(argv)
	if len(paths) == 0 {
		return shared.Fail(1, "stat: missing operand")
	}
	info, err := fsCap.Stat(ctx, paths[0])
	if err != nil {
		return shared.Fail(1, "stat: "+paths[0]+": "+err.Error())
	}
	kind := "regular file"
	if info.IsDir {
		kind = "directory"
	}
	return shared.Ok(fmt.Sprintf("File: %s\nSize: %d\nType: %s\nModify: %s",
		paths[0], info.Size, kind, info.Mtime.Format("2006-01-02 15:04:05")))
}

func readlink(ctx context.Context, argv []string, fsCap contracts.FsCapability) shared.Output {
	_, paths := shared.ParseFlags(argv)
	if len(paths) == 0 {
		return shared.Fail(1, "readlink: missing operand")
	}
	target, err := fsCap.Readlink(ctx, paths[0])
	if err != nil {
		return shared.Fail(1, "readlink: "+paths[0]+": "+err.Error())
	}
	return shared.Ok(target)
}

func find(ctx context.Context, argv []string, fsCap contracts.FsCapability) shared.Output {
	_, paths := shared.ParseFlags(argv)
	root := "."
	if len(paths) > 0 {
		root = paths[0]
	}
	namePattern, _ := shared.FlagValue(argv, "-name")
	typeFilter, _ := shared.FlagValue(argv, "-type")

	var results []string
	var walk func(string) error
	walk = func(dir string) error {
		entries, err := fsCap.List(ctx, dir, true)
		if err != nil {
			return err
		}
		for _, e := range entries {
			full := strings.TrimSuffix(dir, "/") + "/" + e.Name
			if namePattern == "" || shared.GlobMatch(namePattern, e.Name) {
				if typeFilter == "" || (typeFilter == "d") == e.IsDirectory {
					results = append(results, full)
				}
			}
			if e.IsDirectory {
				if err := walk(full); err != nil {
					return err
				}
			}
		}
		return nil
	}
	if err := walk(root); err != nil {
		return shared.Fail(1, "find: "+root+": "+err.Error())
	}
	sort.Strings(results)
	return shared.Ok(strings.Join(results, "\n"))
}

func grep(ctx context.Context, argv []string, stdin string, fsCap contracts.FsCapability) shared.Output {
	flags, positional := shared.ParseFlags(argv)
	if len(positional) == 0 {
		return shared.Output{ExitCode: 2, Stderr: "grep: missing pattern\n"}
	}
	pattern := positional[0]
	paths := positional[1:]

	ignoreCase := shared.HasFlag(flags, "-i")
	numbered := shared.HasFlag(flags, "-n")
	invert := shared.HasFlag(flags, "-v")

	reFlags := ""
	if ignoreCase {
		reFlags = "(?i)"
	}
	re, err := regexp.Compile(reFlags + pattern)
	if err != nil {
		return shared.Fail(2, "grep: invalid pattern: "+err.Error())
	}

	matchAny := false
	var out strings.Builder

	scan := func(label string, content string) {
		lines := strings.Split(strings.TrimSuffix(content, "\n"), "\n")
		for i, line := range lines {
			matched := re.MatchString(line)
			if invert {
				matched = !matched
			}
			if !matched {
				continue
			}
			matchAny = true
			if label != "" {
				out.WriteString(label + ":")
			}
			if numbered {
				out.WriteString(strconv.Itoa(i+1) + ":")
			}
			out.WriteString(line + "\n")
		}
	}

	if len(paths) == 0 {
		scan("", stdin)
	} else {
		multi := len(paths) > 1
		for _, p := range paths {
			data, err := fsCap.Read(ctx, p)
			if err != nil {
				return shared.Fail(1, "grep: "+p+": "+err.Error())
			}
			label := ""
			if multi {
				label = p
			}
			scan(label, string(data))
		}
	}

	if !matchAny {
		return shared.Output{ExitCode: 1}
	}
	return shared.Output{Stdout: out.String(), ExitCode: 0}
}

func mkdir(ctx context.Context, argv []string, fsCap contracts.FsCapability) shared.Output {
	flags, paths := shared.ParseFlags(argv)
	recursive := shared.HasFlag(flags, "-p")
	for _, p := range paths {
		if err := fsCap.Mkdir(ctx, p, recursive); err != nil {
			return shared.Fail(1, "mkdir: "+p+": "+err.Error())
		}
	}
	return shared.Output{ExitCode: 0}
}

func rmdir(ctx context.Context, argv []string, fsCap contracts.FsCapability) shared.Output {
	_, paths := shared.ParseFlags(argv)
	for _, p := range paths {
		if err := fsCap.Rmdir(ctx, p); err != nil {
			return shared.Fail(1, "rmdir: "+p+": "+err.Error())
		}
	}
	return shared.Output{ExitCode: 0}
}

func rm(ctx context.Context, argv []string, fsCap contracts.FsCapability) shared.Output {
	flags, paths := shared.ParseFlags(argv)
	recursive := shared.HasFlag(flags, "-r", "-rf", "-fr", "-R")
	force := shared.HasFlag(flags, "-f", "-rf", "-fr")
	for _, p := range paths {
		if err := fsCap.Rm(ctx, p, recursive); err != nil {
			if force {
				continue
			}
			return shared.Fail(1, "rm: "+p+": "+err.Error())
		}
	}
	return shared.Output{ExitCode: 0}
}

func cp(ctx context.Context, argv []string, fsCap contracts.FsCapability) shared.Output {
	_, paths := shared.ParseFlags(argv)
	if len(paths) < 2 {
		return shared.Fail(1, "cp: missing destination operand")
	}
	src, dst := paths[0], paths[1]
	if err := fsCap.CopyFile(ctx, src, dst); err != nil {
		return shared.Fail(1, "cp: "+src+": "+err.Error())
	}
	return shared.Output{ExitCode: 0}
}

func mv(ctx context.Context, argv []string, fsCap contracts.FsCapability) shared.Output {
	_, paths := shared.ParseFlags(argv)
	if len(paths) < 2 {
		return shared.Fail(1, "mv: missing destination operand")
	}
	src, dst := paths[0], paths[1]
	if err := fsCap.Rename(ctx, src, dst); err != nil {
		return shared.Fail(1, "mv: "+src+": "+err.Error())
	}
	return shared.Output{ExitCode: 0}
}

func touch(ctx context.Context, argv []string, fsCap contracts.FsCapability) shared.Output {
	_, paths := shared.ParseFlags(argv)
	for _, p := range paths {
		now := time.Now()
		if err := fsCap.Utimes(ctx, p, now, now); err != nil {
			if werr := fsCap.Write(ctx, p, []byte{}); werr != nil {
				return shared.Fail(1, "touch: "+p+": "+werr.Error())
			}
		}
	}
	return shared.Output{ExitCode: 0}
}

func truncateCmd(ctx context.Context, argv []string, fsCap contracts.FsCapability) shared.Output {
	_, paths := shared.ParseFlags(argv)
	size := int64(0)
	if v, ok := shared.FlagValue(argv, "-s"); ok {
		n, _ := strconv.ParseInt(v, 10, 64)
		size = n
	}
	if len(paths) == 0 {
		return shared.Fail(1, "truncate: missing operand")
	}
	if err := fsCap.Truncate(ctx, paths[0], size); err != nil {
		return shared.Fail(1, "truncate: "+paths[0]+": "+err.Error())
	}
	return shared.Output{ExitCode: 0}
}

func ln(ctx context.Context, argv []string, fsCap contracts.FsCapability) shared.Output {
	flags, paths := shared.ParseFlags(argv)
	if len(paths) < 2 {
		return shared.Fail(1, "ln: missing destination operand")
	}
	target, link := paths[0], paths[1]
	var err error
	if shared.HasFlag(flags, "-s") {
		err = fsCap.Symlink(ctx, target, link)
	} else {
		err = fsCap.Link(ctx, target, link)
	}
	if err != nil {
		return shared.Fail(1, "ln: "+err.Error())
	}
	return shared.Output{ExitCode: 0}
}

func chmod(ctx context.Context, argv []string, fsCap contracts.FsCapability) shared.Output {
	_, positional := shared.ParseFlags(argv)
	if len(positional) < 2 {
		return shared.Fail(1, "chmod: missing operand")
	}
	modeStr, paths := positional[0], positional[1:]
	if !strings.HasPrefix(modeStr, "0") {
		return shared.Fail(1, "chmod: symbolic modes are not supported, use an octal mode")
	}
	mode, err := strconv.ParseUint(modeStr, 8, 32)
	if err != nil {
		return shared.Fail(1, "chmod: invalid mode: "+modeStr)
	}
	for _, p := range paths {
		if err := fsCap.Chmod(ctx, p, uint32(mode)); err != nil {
			return shared.Fail(1, "chmod: "+p+": "+err.Error())
		}
	}
	return shared.Output{ExitCode: 0}
}

func chown(ctx context.Context, argv []string, fsCap contracts.FsCapability) shared.Output {
	_, positional := shared.ParseFlags(argv)
	if len(positional) < 2 {
		return shared.Fail(1, "chown: missing operand")
	}
	spec, paths := positional[0], positional[1:]
	uid, gid := 0, 0
	if parts := strings.SplitN(spec, ":", 2); len(parts) == 2 {
		uid, _ = strconv.Atoi(parts[0])
		gid, _ = strconv.Atoi(parts[1])
	} else {
		uid, _ = strconv.Atoi(spec)
	}
	for _, p := range paths {
		if err := fsCap.Chown(ctx, p, uid, gid); err != nil {
			return shared.Fail(1, "chown: "+p+": "+err.Error())
		}
	}
	return shared.Output{ExitCode: 0}
}
