package shared

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// Cut implements cut -d -f (and -c for character ranges), shared by the
// posix and compute sub-dispatchers (spec.md §4.7's "duplicates ... for
// embedders without stdin/fs" note).
func Cut(content, delim string, fields []int, charMode bool) string {
	var out strings.Builder
	lines := strings.Split(strings.TrimSuffix(content, "\n"), "\n")
	for _, line := range lines {
		if charMode {
			runes := []rune(line)
			var sel []rune
			for _, f := range fields {
				if f >= 1 && f <= len(runes) {
					sel = append(sel, runes[f-1])
				}
			}
			out.WriteString(string(sel))
		} else {
			parts := strings.Split(line, delim)
			var sel []string
			for _, f := range fields {
				if f >= 1 && f <= len(parts) {
					sel = append(sel, parts[f-1])
				}
			}
			out.WriteString(strings.Join(sel, delim))
		}
		out.WriteString("\n")
	}
	return out.String()
}

// ParseFieldList parses "1,3,5" or "2-4" cut/-k style field specs.
func ParseFieldList(spec string) []int {
	var fields []int
	for _, part := range strings.Split(spec, ",") {
		if strings.Contains(part, "-") {
			bounds := strings.SplitN(part, "-", 2)
			lo := ParseInt(bounds[0], 1)
			hi := ParseInt(bounds[1], lo)
			for i := lo; i <= hi; i++ {
				fields = append(fields, i)
			}
		} else {
			fields = append(fields, ParseInt(part, 0))
		}
	}
	return fields
}

// SortLines implements sort: -r (reverse), -n (numeric), -u (unique),
// -k N (1-indexed whitespace field key). Per spec.md §9's open question,
// -u dedups by the comparison key (after -k is applied), not the raw line.
func SortLines(content string, reverse, numeric, unique bool, key int) string {
	lines := strings.Split(strings.TrimSuffix(content, "\n"), "\n")
	if len(lines) == 1 && lines[0] == "" {
		return ""
	}

	keyOf := func(l string) string {
		if key <= 0 {
			return l
		}
		fields := strings.Fields(l)
		if key <= len(fields) {
			return fields[key-1]
		}
		return ""
	}

	sort.SliceStable(lines, func(i, j int) bool {
		a, b := keyOf(lines[i]), keyOf(lines[j])
		if numeric {
			na, _ := strconv.ParseFloat(strings.TrimSpace(a), 64)
			nb, _ := strconv.ParseFloat(strings.TrimSpace(b), 64)
			return na < nb
		}
		return a < b
	})
	if reverse {
		for i, j := 0, len(lines)-1; i < j; i, j = i+1, j-1 {
			lines[i], lines[j] = lines[j], lines[i]
		}
	}
	if unique {
		var deduped []string
		seen := make(map[string]bool)
		for _, l := range lines {
			k := keyOf(l)
			if !seen[k] {
				seen[k] = true
				deduped = append(deduped, l)
			}
		}
		lines = deduped
	}
	return strings.Join(lines, "\n") + "\n"
}

// TrChars implements tr SET1 [SET2] with -d (delete), -s (squeeze),
// -c (complement), and a-z style ranges expanded in both sets.
func TrChars(content, set1, set2 string, del, squeeze, complement bool) string {
	expand := func(spec string) []rune {
		var out []rune
		runes := []rune(spec)
		for i := 0; i < len(runes); i++ {
			if i+2 < len(runes) && runes[i+1] == '-' {
				for c := runes[i]; c <= runes[i+2]; c++ {
					out = append(out, c)
				}
				i += 2
				continue
			}
			out = append(out, runes[i])
		}
		return out
	}

	from := expand(set1)
	to := expand(set2)
	fromSet := make(map[rune]bool, len(from))
	for _, r := range from {
		fromSet[r] = true
	}
	member := func(r rune) bool {
		in := fromSet[r]
		if complement {
			return !in
		}
		return in
	}

	var out strings.Builder
	var lastWritten rune = -1
	for _, r := range content {
		if del && member(r) {
			continue
		}
		result := r
		if !del && len(from) > 0 && member(r) && !complement {
			idx := indexRune(from, r)
			if len(to) > 0 {
				if idx < len(to) {
					result = to[idx]
				} else {
					result = to[len(to)-1]
				}
			}
		} else if !del && complement && member(r) && len(to) > 0 {
			result = to[len(to)-1]
		}
		if squeeze && result == lastWritten && member(r) {
			continue
		}
		out.WriteRune(result)
		lastWritten = result
	}
	return out.String()
}

func indexRune(rs []rune, target rune) int {
	for i, r := range rs {
		if r == target {
			return i
		}
	}
	return -1
}

// UniqLines implements uniq: -c (count prefix), -d (dupes only),
// -u (uniques only), -i (case-insensitive), -f N (skip N leading fields).
func UniqLines(content string, count, dupesOnly, uniquesOnly, ignoreCase bool, skipFields int) string {
	lines := strings.Split(strings.TrimSuffix(content, "\n"), "\n")
	key := func(l string) string {
		if skipFields > 0 {
			fields := strings.Fields(l)
			if skipFields < len(fields) {
				l = strings.Join(fields[skipFields:], " ")
			} else {
				l = ""
			}
		}
		if ignoreCase {
			return strings.ToLower(l)
		}
		return l
	}

	var out strings.Builder
	i := 0
	for i < len(lines) {
		j := i + 1
		for j < len(lines) && key(lines[j]) == key(lines[i]) {
			j++
		}
		runLen := j - i
		if (dupesOnly && runLen < 2) || (uniquesOnly && runLen > 1) {
			i = j
			continue
		}
		if count {
			out.WriteString(strconv.Itoa(runLen) + " " + lines[i] + "\n")
		} else {
			out.WriteString(lines[i] + "\n")
		}
		i = j
	}
	return out.String()
}

// WcCounts implements wc: returns lines, words, bytes.
func WcCounts(content string) (lines, words, bytes int) {
	bytes = len(content)
	words = len(strings.Fields(content))
	lines = strings.Count(content, "\n")
	if content != "" && !strings.HasSuffix(content, "\n") {
		lines++
	}
	return
}

// Basename implements basename, optionally stripping a trailing suffix.
func Basename(path, suffix string) string {
	path = strings.TrimRight(path, "/")
	if path == "" {
		return "/"
	}
	idx := strings.LastIndex(path, "/")
	name := path
	if idx >= 0 {
		name = path[idx+1:]
	}
	if suffix != "" && strings.HasSuffix(name, suffix) && name != suffix {
		name = strings.TrimSuffix(name, suffix)
	}
	return name
}

// Dirname implements dirname.
func Dirname(path string) string {
	path = strings.TrimRight(path, "/")
	idx := strings.LastIndex(path, "/")
	if idx < 0 {
		return "."
	}
	if idx == 0 {
		return "/"
	}
	return path[:idx]
}

// Rev reverses each line's runes.
func Rev(content string) string {
	lines := strings.Split(strings.TrimSuffix(content, "\n"), "\n")
	for i, l := range lines {
		runes := []rune(l)
		for a, b := 0, len(runes)-1; a < b; a, b = a+1, b-1 {
			runes[a], runes[b] = runes[b], runes[a]
		}
		lines[i] = string(runes)
	}
	return strings.Join(lines, "\n") + "\n"
}

// FormatDate implements date's +FORMAT directive subset: %Y %m %d %H %M %S.
func FormatDate(t time.Time, format string) string {
	if format == "" {
		return t.Format("Mon Jan  2 15:04:05 MST 2006")
	}
	replacer := strings.NewReplacer(
		"%Y", t.Format("2006"),
		"%m", t.Format("01"),
		"%d", t.Format("02"),
		"%H", t.Format("15"),
		"%M", t.Format("04"),
		"%S", t.Format("05"),
	)
	return replacer.Replace(strings.TrimPrefix(format, "+"))
}

// FormatEcho implements echo's -n/-e/-E handling.
func FormatEcho(args []string, noNewline, interpret bool) string {
	joined := strings.Join(args, " ")
	if interpret {
		joined = ExpandEscapes(joined)
	}
	if noNewline {
		return joined
	}
	return joined + "\n"
}

// FormatPrintf implements a %s/%d-and-escapes subset of printf.
func FormatPrintf(format string, args []string) string {
	format = ExpandEscapes(format)
	var out strings.Builder
	argIdx := 0
	for i := 0; i < len(format); i++ {
		if format[i] != '%' || i == len(format)-1 {
			out.WriteByte(format[i])
			continue
		}
		i++
		switch format[i] {
		case 's':
			if argIdx < len(args) {
				out.WriteString(args[argIdx])
				argIdx++
			}
		case 'd':
			if argIdx < len(args) {
				out.WriteString(strconv.Itoa(ParseInt(args[argIdx], 0)))
				argIdx++
			}
		case '%':
			out.WriteByte('%')
		default:
			out.WriteByte('%')
			out.WriteByte(format[i])
		}
	}
	return out.String()
}
