package fonts

import (
	"unicode"

	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"
)

// Glyph is one shaped glyph. Advance is in 1/1000 em as produced by the
// shaper, which may differ from the hmtx width when kerning applies. Text is
// set on the first glyph of each cluster only.
type Glyph struct {
	ID      uint16
	Advance float64
	Text    []rune
}

// Shape runs HarfBuzz over text and returns glyphs in visual order. The
// direction follows the dominant script of the text; rtl forces right to
// left for runs with no strong script.
func (f *Font) Shape(text string, rtl bool) []Glyph {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}
	script := detectScript(runes)
	dir := scriptDirection(script)
	if rtl && script == language.Common {
		dir = di.DirectionRTL
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	out := f.shaper.Shape(shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: dir,
		Face:      f.face,
		Size:      fixed.Int26_6(1000 * 64),
		Script:    script,
		Language:  language.DefaultLanguage(),
	})

	glyphs := make([]Glyph, 0, len(out.Glyphs))
	seen := make(map[int]bool, len(out.Glyphs))
	for _, g := range out.Glyphs {
		gid := uint16(0)
		if g.GlyphID <= 0xFFFF {
			gid = uint16(g.GlyphID)
		}
		sg := Glyph{ID: gid, Advance: float64(g.XAdvance) / 64.0}
		if !seen[g.ClusterIndex] {
			seen[g.ClusterIndex] = true
			end := g.ClusterIndex + g.RuneCount
			if end > len(runes) {
				end = len(runes)
			}
			if g.ClusterIndex < end {
				sg.Text = runes[g.ClusterIndex:end]
			}
		}
		glyphs = append(glyphs, sg)
	}
	return glyphs
}

// Measure returns the shaped width of text at size, in points.
func (f *Font) Measure(text string, size float64) float64 {
	return Advance(f.Shape(text, false)) * size / 1000
}

// Advance sums glyph advances in 1/1000 em.
func Advance(glyphs []Glyph) float64 {
	var sum float64
	for _, g := range glyphs {
		sum += g.Advance
	}
	return sum
}

// IsRTLText reports whether the dominant script of text is written right to
// left.
func IsRTLText(text string) bool {
	return scriptDirection(detectScript([]rune(text))) == di.DirectionRTL
}

func scriptDirection(script language.Script) di.Direction {
	switch script {
	case language.Arabic, language.Hebrew, language.Syriac, language.Thaana, language.Nko:
		return di.DirectionRTL
	default:
		return di.DirectionLTR
	}
}

// detectScript returns the most frequent script among runes, or
// language.Common when only digits, spaces and punctuation are present.
func detectScript(runes []rune) language.Script {
	counts := make(map[language.Script]int)
	best, bestCount := language.Common, 0
	for _, r := range runes {
		s := scriptFromRune(r)
		if s == language.Unknown {
			continue
		}
		counts[s]++
		if counts[s] > bestCount {
			best, bestCount = s, counts[s]
		}
	}
	return best
}

func scriptFromRune(r rune) language.Script {
	switch {
	case unicode.Is(unicode.Arabic, r):
		return language.Arabic
	case unicode.Is(unicode.Hebrew, r):
		return language.Hebrew
	case unicode.Is(unicode.Syriac, r):
		return language.Syriac
	case unicode.Is(unicode.Thaana, r):
		return language.Thaana
	case unicode.Is(unicode.Latin, r):
		return language.Latin
	case unicode.Is(unicode.Cyrillic, r):
		return language.Cyrillic
	case unicode.Is(unicode.Greek, r):
		return language.Greek
	case unicode.Is(unicode.Devanagari, r):
		return language.Devanagari
	case unicode.Is(unicode.Thai, r):
		return language.Thai
	case unicode.Is(unicode.Han, r):
		return language.Han
	case unicode.Is(unicode.Hiragana, r):
		return language.Hiragana
	case unicode.Is(unicode.Katakana, r):
		return language.Katakana
	case unicode.Is(unicode.Hangul, r):
		return language.Hangul
	}
	return language.Unknown
}
