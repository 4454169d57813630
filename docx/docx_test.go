package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"io"
	"strings"
	"testing"

	"github.com/wudi/docforge/model"
	"github.com/wudi/docforge/observability"
	"github.com/wudi/docforge/ooxml"
)

var jpegBytes = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F'}

func unzip(t *testing.T, data []byte) map[string]string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("zip: %v", err)
	}
	out := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", f.Name, err)
		}
		b, _ := io.ReadAll(rc)
		rc.Close()
		out[f.Name] = string(b)
	}
	return out
}

func compose(t *testing.T, doc model.Document, images model.Images) map[string]string {
	t.Helper()
	out, err := Compose(doc, images)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if err := ooxml.Validate(out); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	return unzip(t, out)
}

func documentRels(t *testing.T, files map[string]string) ooxml.Relationships {
	t.Helper()
	var rels ooxml.Relationships
	if err := xml.Unmarshal([]byte(files["word/_rels/document.xml.rels"]), &rels); err != nil {
		t.Fatalf("parse rels: %v", err)
	}
	return rels
}

func TestCompose_PlanScenario(t *testing.T) {
	doc := model.Document{
		Title:    "Plan",
		Author:   "Ana",
		Language: "English",
		Sections: []model.Section{{
			Heading:   "Intro",
			Paragraph: strings.Repeat("word ", 600),
			Bullets:   []string{"one", "two", "three"},
		}},
	}
	files := compose(t, doc, nil)
	body := files["word/document.xml"]

	if n := strings.Count(body, `<w:pStyle w:val="Heading1"/>`); n != 1 {
		t.Fatalf("expected one Heading1, got %d", n)
	}
	if !strings.Contains(body, `<w:t xml:space="preserve">Intro</w:t>`) {
		t.Fatalf("heading text missing")
	}
	if n := strings.Count(body, `<w:numId w:val="1"/>`); n != 3 {
		t.Fatalf("expected 3 numbered paragraphs, got %d", n)
	}
	if !strings.Contains(body, `<w:pStyle w:val="Title"/>`) || !strings.Contains(body, "By Ana") {
		t.Fatalf("title block missing")
	}
	if !strings.Contains(body, `<w:pBdr><w:bottom`) {
		t.Fatalf("separator missing")
	}
	if strings.Contains(body, "<w:bidi/>") || strings.Contains(body, "<w:rtl/>") {
		t.Fatalf("LTR document carries RTL flags")
	}

	rels := documentRels(t, files)
	wantTypes := []string{ooxml.RelStyles, ooxml.RelNumbering, ooxml.RelSettings}
	if len(rels.Relationship) != len(wantTypes) {
		t.Fatalf("expected %d rels, got %+v", len(wantTypes), rels.Relationship)
	}
	for i, rel := range rels.Relationship {
		if rel.Type != wantTypes[i] {
			t.Fatalf("rel %s has type %s, want %s", rel.ID, rel.Type, wantTypes[i])
		}
	}

	ct := files["[Content_Types].xml"]
	if strings.Contains(ct, `Extension="jpeg"`) || strings.Contains(ct, `Extension="png"`) {
		t.Fatalf("unexpected image defaults: %s", ct)
	}
	if !strings.Contains(files["word/numbering.xml"], `<w:num w:numId="1">`) {
		t.Fatalf("numbering instance missing")
	}
}

func TestCompose_JPEGOnly(t *testing.T) {
	doc := model.Document{
		Title: "Trip",
		Sections: []model.Section{
			{Heading: "Lake", Paragraph: "Water.", ImageKeyword: "lake"},
			{Heading: "Road", Paragraph: "Asphalt.", ImageKeyword: "road"},
		},
	}
	images := model.Images{"lake": model.NewImageAsset(jpegBytes, 40, 30)}
	files := compose(t, doc, images)

	ct := files["[Content_Types].xml"]
	if strings.Count(ct, `Extension="jpeg"`) != 1 || strings.Contains(ct, `Extension="png"`) {
		t.Fatalf("unexpected defaults: %s", ct)
	}
	if _, ok := files["word/media/image1.jpeg"]; !ok {
		t.Fatalf("media part missing")
	}

	rels := documentRels(t, files)
	var imageRels []ooxml.Relationship
	for _, rel := range rels.Relationship {
		if rel.Type == ooxml.RelImage {
			imageRels = append(imageRels, rel)
		}
	}
	if len(imageRels) != 1 || imageRels[0].ID != "rId3" || imageRels[0].Target != "media/image1.jpeg" {
		t.Fatalf("unexpected image rels: %+v", imageRels)
	}
	last := rels.Relationship[len(rels.Relationship)-1]
	if last.ID != "rId4" || last.Type != ooxml.RelSettings {
		t.Fatalf("settings should be last, got %+v", last)
	}

	body := files["word/document.xml"]
	if !strings.Contains(body, `<a:blip r:embed="rId3"/>`) {
		t.Fatalf("blip reference missing")
	}
	if !strings.Contains(body, `<wp:extent cx="4572000" cy="2743200"/>`) {
		t.Fatalf("unexpected picture extent")
	}
	if !strings.Contains(body, `<w:rPr><w:i/></w:rPr><w:t xml:space="preserve">Image: lake</w:t>`) {
		t.Fatalf("italic caption missing")
	}
}

func TestCompose_RTL(t *testing.T) {
	doc := model.Document{
		Title:    "تقرير",
		Language: "Arabic",
		Sections: []model.Section{{Heading: "مقدمة", Paragraph: "سطر\nسطر", Bullets: []string{"أ"}, ImageKeyword: "x"}},
	}
	files := compose(t, doc, model.Images{"x": model.NewImageAsset(jpegBytes, 10, 10)})
	body := files["word/document.xml"]

	paragraphs := strings.Count(body, "<w:p>")
	if paragraphs == 0 || strings.Count(body, "<w:bidi/>") != paragraphs {
		t.Fatalf("expected w:bidi on all %d paragraphs, got %d", paragraphs, strings.Count(body, "<w:bidi/>"))
	}
	runs := strings.Count(body, "<w:r>")
	if runs == 0 || strings.Count(body, "<w:rtl/>") != runs {
		t.Fatalf("expected w:rtl on all %d runs, got %d", runs, strings.Count(body, "<w:rtl/>"))
	}
	if !strings.Contains(body, "<w:br/>") {
		t.Fatalf("line break missing")
	}
}

func TestCompose_EmptyDocument(t *testing.T) {
	files := compose(t, model.Document{}, nil)
	body := files["word/document.xml"]
	if !strings.Contains(body, model.PlaceholderText) || !strings.Contains(body, model.UntitledTitle) {
		t.Fatalf("expected placeholders in %s", body)
	}
	if !strings.Contains(files["docProps/core.xml"], model.UntitledTitle) {
		t.Fatalf("core properties missing title")
	}
}

func TestCompose_LogsPartCounts(t *testing.T) {
	var buf bytes.Buffer
	logger := observability.NewTextLogger(&buf, observability.LevelDebug)
	if _, err := Compose(model.Document{Title: "x"}, nil, WithLogger(logger)); err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if !strings.Contains(buf.String(), "docx composed") || !strings.Contains(buf.String(), observability.MetricPartCount+"=") {
		t.Fatalf("unexpected log output %q", buf.String())
	}
}

func TestCompose_Deterministic(t *testing.T) {
	doc := model.Document{Title: "Same", Sections: []model.Section{{Heading: "A", Paragraph: "B"}}}
	a, _ := Compose(doc, nil)
	b, _ := Compose(doc, nil)
	if !bytes.Equal(a, b) {
		t.Fatalf("expected identical output")
	}
}
