package builder

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"strings"
	"testing"

	"github.com/wudi/docforge/contentstream"
	"github.com/wudi/docforge/fonts"
	"golang.org/x/image/font/gofont/goregular"
	"rsc.io/pdf"
)

func readPDF(t *testing.T, data []byte) *pdf.Reader {
	t.Helper()
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("read pdf: %v", err)
	}
	return r
}

func pageOps(t *testing.T, r *pdf.Reader, num int) []contentstream.Operation {
	t.Helper()
	rc := r.Page(num).V.Key("Contents").Reader()
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read contents: %v", err)
	}
	ops, err := contentstream.Parse(data)
	if err != nil {
		t.Fatalf("parse contents: %v", err)
	}
	return ops
}

func newBuilder(t *testing.T) PDFBuilder {
	t.Helper()
	f, err := fonts.GoRegular()
	if err != nil {
		t.Fatalf("load font: %v", err)
	}
	return NewBuilder().RegisterFont("F1", f)
}

func operators(ops []contentstream.Operation) []string {
	out := make([]string, len(ops))
	for i, op := range ops {
		out[i] = op.Operator
	}
	return out
}

func TestBuilder_DrawTextEmbedsType0Font(t *testing.T) {
	b := newBuilder(t)
	b.NewPage(200, 200).
		DrawText("Hello", 10, 20, TextOptions{FontSize: 16, Color: contentstream.Gray(0.2)}).
		Finish()
	b.SetInfo(Info{Title: "Greeting", Author: "Zoë", Producer: "docforge"}).SetLanguage("en")

	out, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	r := readPDF(t, out)
	if r.NumPage() != 1 {
		t.Fatalf("expected one page, got %d", r.NumPage())
	}

	font := r.Page(1).V.Key("Resources").Key("Font").Key("F1")
	if font.Key("Subtype").Name() != "Type0" || font.Key("Encoding").Name() != "Identity-H" {
		t.Fatalf("expected Type0 Identity-H font, got %v", font)
	}
	cid := font.Key("DescendantFonts").Index(0)
	if cid.Key("Subtype").Name() != "CIDFontType2" {
		t.Fatalf("descendant subtype = %s", cid.Key("Subtype").Name())
	}
	if cid.Key("FontDescriptor").Key("FontFile2").IsNull() {
		t.Fatalf("font program not embedded")
	}
	if font.Key("ToUnicode").IsNull() {
		t.Fatalf("missing ToUnicode")
	}
	if base := font.Key("BaseFont").Name(); !strings.Contains(base, "+") {
		t.Fatalf("expected subset tag in %q", base)
	}

	ops := pageOps(t, r, 1)
	got := strings.Join(operators(ops), " ")
	if !strings.HasPrefix(got, "BT Tf rg Tm") || !strings.HasSuffix(got, "ET") {
		t.Fatalf("unexpected operators: %s", got)
	}
	marks, err := contentstream.Trace(ops)
	if err != nil {
		t.Fatalf("Trace: %v", err)
	}
	if len(marks) != 1 || marks[0].Origin.X != 10 || marks[0].Origin.Y != 20 || marks[0].FontSize != 16 {
		t.Fatalf("unexpected text mark: %+v", marks)
	}
	if len(marks[0].Text) != 10 {
		t.Fatalf("expected 5 two-byte glyph codes, got %d bytes", len(marks[0].Text))
	}

	info := r.Trailer().Key("Info")
	if info.Key("Title").Text() != "Greeting" || info.Key("Author").Text() != "Zoë" {
		t.Fatalf("info not written: %v", info)
	}
	if r.Trailer().Key("Root").Key("Lang").Text() != "en" {
		t.Fatalf("catalog Lang missing")
	}
}

func TestBuilder_KerningUsesTJ(t *testing.T) {
	f, err := fonts.GoRegular()
	if err != nil {
		t.Fatalf("load font: %v", err)
	}
	glyphs := f.Shape("AVAWAY", false)
	elems := kerned(f, glyphs)
	var codes int
	for _, e := range elems {
		codes += len(e.Glyphs)
	}
	if codes != len(glyphs)*2 {
		t.Fatalf("kerned lost glyphs: %d bytes for %d glyphs", codes, len(glyphs))
	}
	// Net advance of the TJ array must equal the shaped advance.
	var net float64
	for _, e := range elems {
		for i := 0; i+1 < len(e.Glyphs); i += 2 {
			net += float64(f.Width(uint16(e.Glyphs[i])<<8 | uint16(e.Glyphs[i+1])))
		}
		net -= e.Adjust
	}
	if diff := net - fonts.Advance(glyphs); diff > 0.5*float64(len(glyphs)) || diff < -0.5*float64(len(glyphs)) {
		t.Fatalf("TJ advance %.2f differs from shaped %.2f", net, fonts.Advance(glyphs))
	}
}

func TestBuilder_ShapesAndImages(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 4, 2))
	src.Set(0, 0, color.NRGBA{R: 255, A: 128})
	var pngBuf bytes.Buffer
	if err := png.Encode(&pngBuf, src); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	var jpgBuf bytes.Buffer
	if err := jpeg.Encode(&jpgBuf, image.NewRGBA(image.Rect(0, 0, 8, 8)), nil); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}

	b := newBuilder(t)
	pngImg, err := b.AddImage(pngBuf.Bytes())
	if err != nil {
		t.Fatalf("AddImage png: %v", err)
	}
	again, _ := b.AddImage(append([]byte(nil), pngBuf.Bytes()...))
	if again != pngImg {
		t.Fatalf("identical images should share a handle")
	}
	jpgImg, err := b.AddImage(jpgBuf.Bytes())
	if err != nil {
		t.Fatalf("AddImage jpeg: %v", err)
	}
	if _, err := b.AddImage([]byte("not an image")); err == nil {
		t.Fatalf("expected error for corrupt image")
	}

	b.NewPage(300, 300).
		DrawLine(10, 10, 100, 10, LineOptions{LineWidth: 0.5}).
		DrawRectangle(0, 250, 300, 50, RectOptions{Fill: true, FillColor: contentstream.RGB8(30, 60, 120)}).
		DrawImage(pngImg, 20, 100, 80, 40).
		DrawImage(jpgImg, 150, 100, 0, 0).
		Finish()
	out, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	r := readPDF(t, out)
	xobjects := r.Page(1).V.Key("Resources").Key("XObject")
	im1 := xobjects.Key("Im1")
	if im1.Key("Width").Int64() != 4 || im1.Key("SMask").IsNull() {
		t.Fatalf("png image should carry an SMask: %v", im1)
	}
	if xobjects.Key("Im2").Key("Filter").Name() != "DCTDecode" {
		t.Fatalf("jpeg should be DCTDecode")
	}
	if !r.Page(1).V.Key("Resources").Key("Font").IsNull() {
		t.Fatalf("page without text should not reference fonts")
	}

	marks, err := contentstream.Trace(pageOps(t, r, 1))
	if err != nil {
		t.Fatalf("Trace: %v", err)
	}
	var images, paths int
	for _, m := range marks {
		switch m.Kind {
		case contentstream.MarkImage:
			images++
			if m.XObject == "Im1" && (m.Box.X != 20 || m.Box.Y != 100 || m.Box.W != 80 || m.Box.H != 40) {
				t.Fatalf("image box = %+v", m.Box)
			}
			if m.XObject == "Im2" && (m.Box.W != 8 || m.Box.H != 8) {
				t.Fatalf("zero size should default to pixel size, got %+v", m.Box)
			}
		case contentstream.MarkPath:
			paths++
		}
	}
	if images != 2 || paths != 2 {
		t.Fatalf("expected 2 images and 2 paths, got %d and %d", images, paths)
	}
}

func TestBuilder_FontErrorSurfacesFromBuild(t *testing.T) {
	b := NewBuilder().RegisterTrueTypeFont("Bad", []byte("garbage"))
	b.NewPage(100, 100).Finish()
	if _, err := b.Build(); err == nil || !strings.Contains(err.Error(), "Bad") {
		t.Fatalf("expected font error, got %v", err)
	}
}

func TestBuilder_RegisterTrueTypeFont(t *testing.T) {
	b := NewBuilder().RegisterTrueTypeFont("Body", goregular.TTF)
	b.NewPage(100, 100).DrawText("ok", 10, 10, TextOptions{Font: "Body"}).Finish()
	if _, err := b.Build(); err != nil {
		t.Fatalf("Build: %v", err)
	}
}

func TestBuilder_Errors(t *testing.T) {
	if _, err := NewBuilder().Build(); err == nil {
		t.Fatalf("expected error for empty document")
	}
	b := NewBuilder()
	b.NewPage(100, 100).DrawText("x", 0, 0, TextOptions{}).Finish()
	if _, err := b.Build(); err == nil {
		t.Fatalf("expected error when no font is registered")
	}
}

func TestBuilder_Deterministic(t *testing.T) {
	build := func() []byte {
		b := newBuilder(t)
		b.NewPage(200, 200).DrawText("Same text", 10, 100, TextOptions{}).Finish()
		b.NewPage(200, 200).DrawText("Second page", 10, 100, TextOptions{}).Finish()
		out, err := b.Build()
		if err != nil {
			t.Fatalf("Build: %v", err)
		}
		return out
	}
	a, c := build(), build()
	if !bytes.Equal(a, c) {
		t.Fatalf("builds differ")
	}
	if n := readPDF(t, a).NumPage(); n != 2 {
		t.Fatalf("expected 2 pages, got %d", n)
	}
}
