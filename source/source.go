// Package source reads document models from JSON, Markdown and HTML.
//
// JSON is the canonical form produced by upstream collaborators. The
// Markdown and HTML readers map a small, predictable subset of each format
// onto the model: the first top-level heading is the title, the next
// heading level opens sections, paragraphs are joined with newlines, list
// items become bullets and the first image's alt text (or file stem)
// becomes the section image keyword.
package source

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/wudi/docforge/model"
)

// ErrUnknownFormat is returned when a file extension maps to no reader.
var ErrUnknownFormat = errors.New("unknown source format")

// Format names an input format.
type Format string

const (
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// DetectFormat maps a file name to a format by extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".md", ".markdown":
		return FormatMarkdown, nil
	case ".html", ".htm":
		return FormatHTML, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownFormat, path)
}

// Load reads and parses the file at path, choosing the reader by extension.
func Load(path string) (model.Document, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return model.Document{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Document{}, fmt.Errorf("read source: %w", err)
	}
	return Parse(format, data)
}

// Parse dispatches to the reader for format.
func Parse(format Format, data []byte) (model.Document, error) {
	switch format {
	case FormatJSON:
		return ParseJSON(bytes.NewReader(data))
	case FormatMarkdown:
		return ParseMarkdown(data), nil
	case FormatHTML:
		return ParseHTML(bytes.NewReader(data))
	}
	return model.Document{}, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// ParseJSON decodes a document. Unknown fields are rejected so that typos
// in hand-written inputs surface instead of silently dropping content.
func ParseJSON(r io.Reader) (model.Document, error) {
	var doc model.Document
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return model.Document{}, fmt.Errorf("decode json document: %w", err)
	}
	return doc, nil
}

// LanguageName turns a BCP 47 tag such as "ar" or "he-IL" into its English
// display name ("Arabic", "Hebrew"), which is what the model's language
// field carries. Unparseable tags are returned unchanged.
func LanguageName(tag string) string {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return ""
	}
	t, err := language.Parse(tag)
	if err != nil {
		return tag
	}
	base, _ := t.Base()
	if name := display.English.Languages().Name(base); name != "" {
		return name
	}
	return tag
}

// docBuilder accumulates sections while a reader walks its input.
type docBuilder struct {
	doc     model.Document
	current *model.Section
	paras   []string
}

func (b *docBuilder) setTitle(s string) {
	if b.doc.Title == "" {
		b.doc.Title = strings.TrimSpace(s)
		return
	}
	b.openSection(s)
}

func (b *docBuilder) openSection(heading string) {
	b.flush()
	b.doc.Sections = append(b.doc.Sections, model.Section{Heading: strings.TrimSpace(heading)})
	b.current = &b.doc.Sections[len(b.doc.Sections)-1]
}

// ensureSection opens an untitled section for content that appears before
// the first section heading.
func (b *docBuilder) ensureSection() {
	if b.current == nil {
		b.openSection("")
	}
}

func (b *docBuilder) addParagraph(s string) {
	s = strings.TrimSpace(s)
	if s == "" {
		return
	}
	if b.current == nil && b.doc.Author == "" && strings.HasPrefix(s, "By ") {
		b.doc.Author = strings.TrimSpace(strings.TrimPrefix(s, "By "))
		return
	}
	b.ensureSection()
	b.paras = append(b.paras, s)
}

func (b *docBuilder) addBullet(s string) {
	if s = strings.TrimSpace(s); s == "" {
		return
	}
	b.ensureSection()
	b.current.Bullets = append(b.current.Bullets, s)
}

func (b *docBuilder) addImage(keyword string) {
	if keyword = strings.TrimSpace(keyword); keyword == "" {
		return
	}
	b.ensureSection()
	if b.current.ImageKeyword == "" {
		b.current.ImageKeyword = keyword
	}
}

func (b *docBuilder) flush() {
	if b.current != nil && len(b.paras) > 0 {
		b.current.Paragraph = strings.Join(b.paras, "\n")
	}
	b.paras = nil
}

func (b *docBuilder) finish() model.Document {
	b.flush()
	return b.doc
}

// imageKeyword prefers alt text and falls back to the file stem of dest.
func imageKeyword(alt, dest string) string {
	if alt = strings.TrimSpace(alt); alt != "" {
		return alt
	}
	base := filepath.Base(dest)
	return strings.ReplaceAll(strings.TrimSuffix(base, filepath.Ext(base)), "-", " ")
}
