package pptx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/wudi/docforge/model"
	"github.com/wudi/docforge/ooxml"
)

var pngBytes = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n'}

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

func slideRels(t *testing.T, files map[string]string, n int) ooxml.Relationships {
	t.Helper()
	var rels ooxml.Relationships
	name := fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", n)
	if err := xml.Unmarshal([]byte(files[name]), &rels); err != nil {
		t.Fatalf("parse %s: %v", name, err)
	}
	return rels
}

func bullets(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("point %d", i+1)
	}
	return out
}

func TestBulletFontSize(t *testing.T) {
	tests := []struct {
		n    int
		want float64
	}{
		{0, 16}, {5, 16}, {8, 16}, {9, 13}, {12, 13}, {13, 11}, {40, 11},
	}
	for _, tt := range tests {
		if got := BulletFontSize(tt.n); got != tt.want {
			t.Fatalf("BulletFontSize(%d) = %v, want %v", tt.n, got, tt.want)
		}
	}
}

func TestCompose_SlidesAndSizes(t *testing.T) {
	doc := model.Document{
		Title:  "Deck",
		Author: "Ana",
		Slides: []model.Slide{
			{Title: "Five", Bullets: bullets(5)},
			{Title: "Nine", Bullets: bullets(9)},
			{Title: "Thirteen", Bullets: bullets(13)},
		},
	}
	files := compose(t, doc, nil)

	for i := 1; i <= 5; i++ {
		if _, ok := files[fmt.Sprintf("ppt/slides/slide%d.xml", i)]; !ok {
			t.Fatalf("slide%d.xml missing", i)
		}
	}
	if _, ok := files["ppt/slides/slide6.xml"]; ok {
		t.Fatalf("unexpected slide6.xml")
	}

	if !strings.Contains(files["ppt/slides/slide1.xml"], "<a:t>Deck</a:t>") ||
		!strings.Contains(files["ppt/slides/slide1.xml"], "<a:t>Ana</a:t>") {
		t.Fatalf("title slide text missing")
	}
	if !strings.Contains(files["ppt/slides/slide5.xml"], "<a:t>"+ClosingText+"</a:t>") {
		t.Fatalf("closing slide text missing")
	}

	for slide, sz := range map[int]string{2: "1600", 3: "1300", 4: "1100"} {
		body := files[fmt.Sprintf("ppt/slides/slide%d.xml", slide)]
		if !strings.Contains(body, `sz="`+sz+`"`) {
			t.Fatalf("slide%d: expected sz=%s", slide, sz)
		}
		if strings.Count(body, `<a:buChar char="•"/>`) == 0 {
			t.Fatalf("slide%d: bullets missing", slide)
		}
	}

	pres := files["ppt/presentation.xml"]
	if !strings.Contains(pres, `<p:sldSz cx="12192000" cy="6858000"/>`) {
		t.Fatalf("unexpected slide size in %s", pres)
	}
	if strings.Count(pres, "<p:sldId ") != 5 {
		t.Fatalf("expected 5 slide ids")
	}
	if !strings.Contains(files["docProps/app.xml"], "<Slides>5</Slides>") {
		t.Fatalf("app properties missing slide count")
	}
}

func TestCompose_ShapeIDsUnique(t *testing.T) {
	files := compose(t, model.Document{Title: "x", Sections: []model.Section{{Heading: "h", Bullets: []string{"a"}}}}, nil)
	for name, body := range files {
		if !strings.HasPrefix(name, "ppt/slides/slide") {
			continue
		}
		seen := make(map[string]bool)
		for _, part := range strings.Split(body, `<p:cNvPr id="`)[1:] {
			id := part[:strings.IndexByte(part, '"')]
			if seen[id] {
				t.Fatalf("%s: duplicate shape id %s", name, id)
			}
			seen[id] = true
		}
	}
}

func TestCompose_Picture(t *testing.T) {
	doc := model.Document{
		Title: "Deck",
		Slides: []model.Slide{
			{Title: "With", Bullets: []string{"a"}, ImageKeyword: "fox"},
			{Title: "Without", Bullets: []string{"b"}},
			{Title: "Again", Bullets: []string{"c"}, ImageKeyword: "fox"},
		},
	}
	files := compose(t, doc, model.Images{"fox": model.NewImageAsset(pngBytes, 20, 10)})

	with := slideRels(t, files, 2)
	if len(with.Relationship) != 2 {
		t.Fatalf("expected layout and image rels, got %+v", with.Relationship)
	}
	if with.Relationship[0].Type != ooxml.RelSlideLayout || with.Relationship[1].ID != "rId2" ||
		with.Relationship[1].Type != ooxml.RelImage || with.Relationship[1].Target != "../media/image1.png" {
		t.Fatalf("unexpected rels: %+v", with.Relationship)
	}
	body := files["ppt/slides/slide2.xml"]
	if !strings.Contains(body, `<a:blip r:embed="rId2"/>`) {
		t.Fatalf("picture missing")
	}
	if !strings.Contains(body, `cx="5486400"`) {
		t.Fatalf("body box should be 6in wide with a picture")
	}

	without := slideRels(t, files, 3)
	if len(without.Relationship) != 1 || without.Relationship[0].ID != "rId1" {
		t.Fatalf("unexpected rels: %+v", without.Relationship)
	}
	if strings.Contains(files["ppt/slides/slide3.xml"], "<p:pic>") {
		t.Fatalf("unexpected picture on slide without image")
	}

	media := 0
	for name := range files {
		if strings.HasPrefix(name, "ppt/media/") {
			media++
		}
	}
	if media != 1 {
		t.Fatalf("expected the repeated image to be stored once, got %d files", media)
	}
	ct := files["[Content_Types].xml"]
	if strings.Count(ct, `Extension="png"`) != 1 || strings.Contains(ct, `Extension="jpeg"`) {
		t.Fatalf("unexpected defaults: %s", ct)
	}
}

func TestCompose_NoImages(t *testing.T) {
	files := compose(t, model.Document{Title: "x"}, nil)
	for name, body := range files {
		if strings.HasPrefix(name, "ppt/media/") {
			t.Fatalf("unexpected media %s", name)
		}
		if strings.HasSuffix(name, ".rels") && strings.Contains(body, ooxml.RelImage) {
			t.Fatalf("unexpected image relationship in %s", name)
		}
	}
}

func TestCompose_RTL(t *testing.T) {
	doc := model.Document{
		Title:    "عرض",
		Language: "Arabic",
		Slides:   []model.Slide{{Title: "مقدمة", Bullets: []string{"أ", "ب"}}, {Title: "فارغ"}},
	}
	files := compose(t, doc, nil)
	for i := 1; i <= 4; i++ {
		body := files[fmt.Sprintf("ppt/slides/slide%d.xml", i)]
		paragraphs := strings.Count(body, "<a:p>")
		if paragraphs == 0 || strings.Count(body, `algn="r" rtl="1"`) != paragraphs {
			t.Fatalf("slide%d: expected RTL on all %d paragraphs", i, paragraphs)
		}
	}

	ltr := compose(t, model.Document{Title: "x", Language: "English"}, nil)
	for name, body := range ltr {
		if strings.Contains(body, `rtl="1"`) {
			t.Fatalf("%s: LTR deck carries RTL flags", name)
		}
	}
}

func TestCompose_DerivedSlides(t *testing.T) {
	doc := model.Document{
		Title: "Derived",
		Sections: []model.Section{
			{Heading: "One", Paragraph: "First sentence. Second sentence."},
			{Heading: "Two", Bullets: []string{"x"}},
		},
	}
	files := compose(t, doc, nil)
	if !strings.Contains(files["ppt/slides/slide2.xml"], "<a:t>One</a:t>") ||
		!strings.Contains(files["ppt/slides/slide2.xml"], "First sentence.") {
		t.Fatalf("derived slide content missing")
	}
	if !strings.Contains(files["ppt/slides/slide4.xml"], ClosingText) {
		t.Fatalf("closing slide should follow the derived slides")
	}
}
