package model

import (
	"reflect"
	"testing"
)

func TestNormalize_EmptyDocumentGetsPlaceholder(t *testing.T) {
	doc := Normalize(Document{})
	if doc.Title != UntitledTitle {
		t.Fatalf("title = %q", doc.Title)
	}
	if len(doc.Sections) != 1 {
		t.Fatalf("expected placeholder section, got %d", len(doc.Sections))
	}
	sec := doc.Sections[0]
	if sec.Heading != PlaceholderHeading || sec.Paragraph != PlaceholderText {
		t.Fatalf("unexpected placeholder: %+v", sec)
	}
	if sec.Bullets == nil {
		t.Fatalf("bullets must never be nil")
	}
	if len(doc.Slides) != 1 || doc.Slides[0].Title != PlaceholderHeading {
		t.Fatalf("slides not derived: %+v", doc.Slides)
	}
}

func TestNormalize_DefaultsPerSection(t *testing.T) {
	in := Document{
		Title: "  Plan ",
		Sections: []Section{
			{Heading: "", Paragraph: "  ", Bullets: []string{" a ", "", "b"}},
			{Heading: "Two", Paragraph: "line one\r\nline two", ImageKeyword: " cat "},
		},
	}
	doc := Normalize(in)
	if doc.Title != "Plan" {
		t.Fatalf("title = %q", doc.Title)
	}
	if doc.Sections[0].Heading != "Section 1" {
		t.Fatalf("heading = %q", doc.Sections[0].Heading)
	}
	if doc.Sections[0].Paragraph != PlaceholderText {
		t.Fatalf("paragraph = %q", doc.Sections[0].Paragraph)
	}
	if !reflect.DeepEqual(doc.Sections[0].Bullets, []string{"a", "b"}) {
		t.Fatalf("bullets = %#v", doc.Sections[0].Bullets)
	}
	if doc.Sections[1].Paragraph != "line one\nline two" {
		t.Fatalf("newlines not preserved: %q", doc.Sections[1].Paragraph)
	}
	if doc.Sections[1].ImageKeyword != "cat" {
		t.Fatalf("keyword = %q", doc.Sections[1].ImageKeyword)
	}
	if in.Sections[0].Heading != "" {
		t.Fatalf("input mutated")
	}
}

func TestDeriveSlides(t *testing.T) {
	slides := DeriveSlides([]Section{
		{Heading: "A", Bullets: []string{"x", "y"}, ImageKeyword: "k"},
		{Heading: "B", Paragraph: "First. Second! Third? Fourth. Fifth. Sixth."},
	})
	if len(slides) != 2 {
		t.Fatalf("got %d slides", len(slides))
	}
	if !reflect.DeepEqual(slides[0].Bullets, []string{"x", "y"}) || slides[0].ImageKeyword != "k" {
		t.Fatalf("slide 0 = %+v", slides[0])
	}
	want := []string{"First.", "Second!", "Third?", "Fourth.", "Fifth."}
	if !reflect.DeepEqual(slides[1].Bullets, want) {
		t.Fatalf("slide 1 bullets = %#v", slides[1].Bullets)
	}
}

func TestKeywords(t *testing.T) {
	doc := Document{
		Sections: []Section{{ImageKeyword: "a"}, {ImageKeyword: ""}, {ImageKeyword: "b"}},
		Slides:   []Slide{{ImageKeyword: "a"}, {ImageKeyword: "c"}},
	}
	if got := doc.Keywords(); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("keywords = %v", got)
	}
}

func TestIsRTLLanguage(t *testing.T) {
	tests := []struct {
		lang string
		want bool
	}{
		{"Arabic", true},
		{"arabic (Egypt)", true},
		{"HEBREW", true},
		{"Persian", true},
		{"Farsi", true},
		{"Urdu", true},
		{"العربية", true},
		{"English", false},
		{"", false},
		{"French", false},
	}
	for _, tt := range tests {
		if got := IsRTLLanguage(tt.lang); got != tt.want {
			t.Fatalf("IsRTLLanguage(%q) = %v, want %v", tt.lang, got, tt.want)
		}
	}
}

func TestSniffFormat(t *testing.T) {
	tests := []struct {
		data []byte
		want ImageFormat
	}{
		{[]byte{0xFF, 0xD8, 0xFF}, FormatJPEG},
		{[]byte{0x89, 'P', 'N', 'G'}, FormatPNG},
		{[]byte("RIFF....WEBP"), FormatPNG},
		{nil, FormatPNG},
	}
	for _, tt := range tests {
		if got := SniffFormat(tt.data); got != tt.want {
			t.Fatalf("SniffFormat(%v) = %s, want %s", tt.data, got, tt.want)
		}
	}
	if FormatJPEG.Extension() != "jpeg" || FormatPNG.ContentType() != "image/png" {
		t.Fatalf("unexpected format metadata")
	}
}

func TestImagesLookup(t *testing.T) {
	imgs := Images{
		"ok":    {Data: []byte{0xFF, 0xD8}, Width: 10, Height: 5, Format: FormatPNG},
		"empty": {Width: 10, Height: 10},
	}
	a, ok := imgs.Lookup("ok")
	if !ok {
		t.Fatalf("expected asset")
	}
	if a.Format != FormatJPEG {
		t.Fatalf("format must be re-sniffed, got %s", a.Format)
	}
	if _, ok := imgs.Lookup("empty"); ok {
		t.Fatalf("asset without data must not resolve")
	}
	if _, ok := imgs.Lookup("missing"); ok {
		t.Fatalf("missing keyword must not resolve")
	}
	if got := a.Caption("sunset"); got != "Image: sunset" {
		t.Fatalf("caption = %q", got)
	}
}
