package layout

import (
	"reflect"
	"testing"
	"unicode/utf8"
)

// fixed measures every rune as 1pt.
func fixed(s string) float64 { return float64(utf8.RuneCountInString(s)) }

func TestWrap(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width float64
		want  []string
	}{
		{"fits", "one two", 10, []string{"one two"}},
		{"greedy", "aa bb cc dd", 5, []string{"aa bb", "cc dd"}},
		{"exact boundary", "abc de", 6, []string{"abc de"}},
		{"one over", "abc def", 6, []string{"abc", "def"}},
		{"newlines", "a\nb c", 10, []string{"a", "b c"}},
		{"blank line", "a\n\nb", 10, []string{"a", "", "b"}},
		{"collapses spaces", "a    b", 10, []string{"a b"}},
		{"long word", "abcdefgh", 3, []string{"abc", "def", "gh"}},
		{"long word after text", "x abcdefgh y", 3, []string{"x", "abc", "def", "gh", "y"}},
		{"empty", "", 10, []string{""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Wrap(tt.text, tt.width, fixed)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Wrap(%q, %v) = %q, want %q", tt.text, tt.width, got, tt.want)
			}
		})
	}
}

func TestWrap_LinesNeverExceedWidth(t *testing.T) {
	text := "the quick brown fox jumps over the lazy dog and keeps running far away"
	for width := 4.0; width < 30; width++ {
		for _, line := range Wrap(text, width, fixed) {
			if fixed(line) > width {
				t.Fatalf("width %v: line %q is %v wide", width, line, fixed(line))
			}
		}
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		n     int
		width float64
		want  []string
	}{
		{"under limit", []string{"aa", "bb"}, 3, 4, []string{"aa", "bb"}},
		{"at limit", []string{"aa", "bb"}, 2, 4, []string{"aa", "bb"}},
		{"cut full line", []string{"aaaa", "bbbb", "cccc"}, 2, 4, []string{"aaaa", "bbb…"}},
		{"short last line", []string{"aa", "b", "c"}, 2, 4, []string{"aa", "b…"}},
		{"trailing space trimmed", []string{"ab cd", "ef"}, 1, 4, []string{"ab…"}},
		{"zero means one", []string{"a", "b"}, 0, 4, []string{"a…"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Clamp(tt.lines, tt.n, tt.width, fixed)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Clamp(%q, %d) = %q, want %q", tt.lines, tt.n, got, tt.want)
			}
			for _, line := range got {
				if fixed(line) > tt.width {
					t.Fatalf("line %q exceeds width %v", line, tt.width)
				}
			}
		})
	}
}
