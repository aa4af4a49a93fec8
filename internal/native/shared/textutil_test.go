package shared

import (
	"testing"
	"time"
)

func TestCut(t *testing.T) {
	got := Cut("a:b:c\nd:e:f\n", ":", []int{1, 3}, false)
	if got != "a:c\nd:f\n" {
		t.Fatalf("got %q", got)
	}
}

func TestCutCharMode(t *testing.T) {
	got := Cut("hello\n", "", []int{1, 2}, true)
	if got != "he\n" {
		t.Fatalf("got %q", got)
	}
}

func TestParseFieldList(t *testing.T) {
	got := ParseFieldList("1,3-5")
	want := []int{1, 3, 4, 5}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v want %v", got, want)
		}
	}
}

func TestSortLinesDefault(t *testing.T) {
	got := SortLines("banana\napple\ncherry\n", false, false, false, 0)
	if got != "apple\nbanana\ncherry\n" {
		t.Fatalf("got %q", got)
	}
}

func TestSortLinesReverseNumeric(t *testing.T) {
	got := SortLines("10\n2\n33\n", true, true, false, 0)
	if got != "33\n10\n2\n" {
		t.Fatalf("got %q", got)
	}
}

func TestSortLinesUniqueByKey(t *testing.T) {
	got := SortLines("b 1\na 1\na 2\n", false, false, true, 2)
	if got != "b 1\na 2\n" {
		t.Fatalf("got %q", got)
	}
}

func TestTrCharsBasic(t *testing.T) {
	got := TrChars("hello", "a-z", "A-Z", false, false, false)
	if got != "HELLO" {
		t.Fatalf("got %q", got)
	}
}

func TestTrCharsDelete(t *testing.T) {
	got := TrChars("h3ll0", "0-9", "", true, false, false)
	if got != "hll" {
		t.Fatalf("got %q", got)
	}
}

func TestTrCharsSqueeze(t *testing.T) {
	got := TrChars("aaabbbccc", "a-z", "", false, true, false)
	if got != "abc" {
		t.Fatalf("got %q", got)
	}
}

func TestUniqLines(t *testing.T) {
	got := UniqLines("a\na\nb\nb\nb\nc\n", false, false, false, false, 0)
	if got != "a\nb\nc\n" {
		t.Fatalf("got %q", got)
	}
}

func TestUniqLinesCount(t *testing.T) {
	got := UniqLines("a\na\nb\n", true, false, false, false, 0)
	if got != "2 a\n1 b\n" {
		t.Fatalf("got %q", got)
	}
}

func TestUniqLinesDupesOnly(t *testing.T) {
	got := UniqLines("a\na\nb\n", false, true, false, false, 0)
	if got != "a\n" {
		t.Fatalf("got %q", got)
	}
}

func TestWcCounts(t *testing.T) {
	lines, words, bytes := WcCounts("hello world\nfoo\n")
	if lines != 2 || words != 3 || bytes != len("hello world\nfoo\n") {
		t.Fatalf("got lines=%d words=%d bytes=%d", lines, words, bytes)
	}
}

func TestBasename(t *testing.T) {
	if Basename("/a/b/c.txt", "") != "c.txt" {
		t.Fatalf("basename failed")
	}
	if Basename("/a/b/c.txt", ".txt") != "c" {
		t.Fatalf("basename suffix strip failed")
	}
}

func TestDirname(t *testing.T) {
	if Dirname("/a/b/c.txt") != "/a/b" {
		t.Fatalf("dirname failed")
	}
	if Dirname("nofile") != "." {
		t.Fatalf("dirname default failed")
	}
}

func TestRev(t *testing.T) {
	got := Rev("abc\ndef\n")
	if got != "cba\nfed\n" {
		t.Fatalf("got %q", got)
	}
}

func TestFormatDate(t *testing.T) {
	tm := time.Date(2026, 7, 31, 9, 5, 3, 0, time.UTC)
	got := FormatDate(tm, "+%Y-%m-%d %H:%M:%S")
	if got != "2026-07-31 09:05:03" {
		t.Fatalf("got %q", got)
	}
}

func TestFormatEcho(t *testing.T) {
	if FormatEcho([]string{"a", "b"}, false, false) != "a b\n" {
		t.Fatalf("echo default failed")
	}
	if FormatEcho([]string{"a"}, true, false) != "a" {
		t.Fatalf("-n should suppress newline")
	}
	if FormatEcho([]string{`a\tb`}, false, true) != "a\tb\n" {
		t.Fatalf("-e should interpret escapes")
	}
}

func TestFormatPrintf(t *testing.T) {
	got := FormatPrintf("%s is %d\\n", []string{"age", "5"})
	if got != "age is 5\n" {
		t.Fatalf("got %q", got)
	}
}
