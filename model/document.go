// Package model defines the document model shared by every composer: a
// Document with ordered sections, a parallel slide view and the resolved
// image assets referenced by keyword.
//
// Documents arrive already parsed from an upstream collaborator. The
// composers call Normalize before use so that a sparse model (no sections,
// blank paragraphs, nil bullet lists) still produces a complete artifact.
package model

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Placeholder strings substituted for missing content.
const (
	UntitledTitle      = "Untitled Document"
	PlaceholderHeading = "Overview"
	PlaceholderText    = "No content provided."
)

// maxDerivedBullets caps bullets synthesised from a paragraph when a slide
// is derived from a section without bullets.
const maxDerivedBullets = 5

// Document is the canonical input to the PDF, Word and slide composers.
type Document struct {
	Title    string    `json:"title"`
	Author   string    `json:"author"`
	Language string    `json:"language"`
	Sections []Section `json:"sections"`
	Slides   []Slide   `json:"slides,omitempty"`
}

// Section is one heading with its body text, bullets and optional image.
type Section struct {
	Heading      string   `json:"heading"`
	Paragraph    string   `json:"paragraph"`
	Bullets      []string `json:"bullets"`
	ImageKeyword string   `json:"imageKeyword,omitempty"`
}

// Slide is the presentation view of a section. Slides map to sections by
// index; callers that edit one are expected to mirror the edit.
type Slide struct {
	Title        string   `json:"title"`
	Bullets      []string `json:"bullets"`
	ImageKeyword string   `json:"imageKeyword,omitempty"`
}

// AuthorOr returns the author, or fallback when the author is blank.
func (d *Document) AuthorOr(fallback string) string {
	if a := strings.TrimSpace(d.Author); a != "" {
		return a
	}
	return fallback
}

// IsRTL reports whether the document language is written right-to-left.
func (d *Document) IsRTL() bool {
	return IsRTLLanguage(d.Language)
}

// Keywords returns the distinct image keywords referenced by sections and
// slides, in first-seen order.
func (d *Document) Keywords() []string {
	seen := make(map[string]bool)
	var out []string
	add := func(k string) {
		k = strings.TrimSpace(k)
		if k == "" || seen[k] {
			return
		}
		seen[k] = true
		out = append(out, k)
	}
	for _, s := range d.Sections {
		add(s.ImageKeyword)
	}
	for _, s := range d.Slides {
		add(s.ImageKeyword)
	}
	return out
}

// Normalize returns a copy of d with defaults applied: a title, at least one
// section, placeholder text for empty paragraphs, trimmed bullets, and a
// slide list derived from the sections when none was supplied. All text is
// converted to Unicode NFC. d itself is not modified.
func Normalize(d Document) Document {
	out := Document{
		Title:    clean(d.Title),
		Author:   clean(d.Author),
		Language: clean(d.Language),
	}
	if out.Title == "" {
		out.Title = UntitledTitle
	}

	for i, s := range d.Sections {
		sec := Section{
			Heading:      clean(s.Heading),
			Paragraph:    cleanBlock(s.Paragraph),
			Bullets:      cleanList(s.Bullets),
			ImageKeyword: strings.TrimSpace(s.ImageKeyword),
		}
		if sec.Heading == "" {
			sec.Heading = "Section " + strconv.Itoa(i+1)
		}
		if sec.Paragraph == "" {
			sec.Paragraph = PlaceholderText
		}
		out.Sections = append(out.Sections, sec)
	}
	if len(out.Sections) == 0 {
		out.Sections = []Section{{
			Heading:   PlaceholderHeading,
			Paragraph: PlaceholderText,
			Bullets:   []string{},
		}}
	}

	for _, s := range d.Slides {
		out.Slides = append(out.Slides, Slide{
			Title:        clean(s.Title),
			Bullets:      cleanList(s.Bullets),
			ImageKeyword: strings.TrimSpace(s.ImageKeyword),
		})
	}
	if len(out.Slides) == 0 {
		out.Slides = DeriveSlides(out.Sections)
	}
	return out
}

// DeriveSlides builds one slide per section. A section without bullets
// contributes the leading sentences of its paragraph instead.
func DeriveSlides(sections []Section) []Slide {
	slides := make([]Slide, 0, len(sections))
	for _, s := range sections {
		bullets := append([]string(nil), s.Bullets...)
		if len(bullets) == 0 {
			bullets = sentences(s.Paragraph, maxDerivedBullets)
		}
		if bullets == nil {
			bullets = []string{}
		}
		slides = append(slides, Slide{
			Title:        s.Heading,
			Bullets:      bullets,
			ImageKeyword: s.ImageKeyword,
		})
	}
	return slides
}

func clean(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}

// cleanBlock normalises a paragraph but keeps interior newlines, which the
// composers turn into explicit line breaks.
func cleanBlock(s string) string {
	s = strings.ReplaceAll(norm.NFC.String(s), "\r\n", "\n")
	return strings.Trim(s, " \t\r\n")
}

func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if c := clean(it); c != "" {
			out = append(out, c)
		}
	}
	return out
}

func sentences(text string, limit int) []string {
	var out []string
	start := 0
	runes := []rune(text)
	for i, r := range runes {
		if len(out) == limit {
			break
		}
		end := r == '.' || r == '!' || r == '?' || r == '\n'
		if end && (i+1 == len(runes) || unicode.IsSpace(runes[i+1])) {
			if s := strings.TrimSpace(string(runes[start : i+1])); s != "" {
				out = append(out, s)
			}
			start = i + 1
		}
	}
	if len(out) < limit && start < len(runes) {
		if s := strings.TrimSpace(string(runes[start:])); s != "" {
			out = append(out, s)
		}
	}
	return out
}
