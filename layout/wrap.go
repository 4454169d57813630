package layout

import "strings"

// MeasureFunc returns the width of text in points.
type MeasureFunc func(text string) float64

// Wrap breaks text into lines no wider than width using a greedy fill: a
// word joins the current line while measure(line+" "+word) <= width.
// Literal newlines always start a new line and an empty input line yields
// an empty output line. A single word wider than width is split between
// characters.
func Wrap(text string, width float64, measure MeasureFunc) []string {
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		line := ""
		for _, word := range words {
			if line == "" {
				if measure(word) <= width {
					line = word
					continue
				}
				parts := splitWord(word, width, measure)
				lines = append(lines, parts[:len(parts)-1]...)
				line = parts[len(parts)-1]
				continue
			}
			candidate := line + " " + word
			if measure(candidate) <= width {
				line = candidate
				continue
			}
			lines = append(lines, line)
			if measure(word) <= width {
				line = word
				continue
			}
			parts := splitWord(word, width, measure)
			lines = append(lines, parts[:len(parts)-1]...)
			line = parts[len(parts)-1]
		}
		lines = append(lines, line)
	}
	return lines
}

// splitWord breaks an over-long word between characters. Every piece holds
// at least one character, so the result is never empty.
func splitWord(word string, width float64, measure MeasureFunc) []string {
	var (
		parts []string
		cur   []rune
	)
	for _, r := range word {
		if len(cur) > 0 && measure(string(append(cur, r))) > width {
			parts = append(parts, string(cur))
			cur = cur[:0]
		}
		cur = append(cur, r)
	}
	return append(parts, string(cur))
}

// Ellipsis marks text cut by Clamp.
const Ellipsis = "…"

// Clamp keeps at most n lines. When lines are dropped the last kept line
// is shortened until it fits width with Ellipsis appended. n below 1 is
// treated as 1.
func Clamp(lines []string, n int, width float64, measure MeasureFunc) []string {
	n = max(n, 1)
	if len(lines) <= n {
		return lines
	}
	out := append([]string(nil), lines[:n]...)
	last := []rune(out[n-1])
	for len(last) > 0 && measure(strings.TrimRight(string(last), " ")+Ellipsis) > width {
		last = last[:len(last)-1]
	}
	out[n-1] = strings.TrimRight(string(last), " ") + Ellipsis
	return out
}
