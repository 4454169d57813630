package fonts

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
)

func TestLoadTrueType_Metrics(t *testing.T) {
	f, err := GoBold()
	if err != nil {
		t.Fatalf("GoBold: %v", err)
	}
	if f.Name == "" || strings.ContainsAny(f.Name, " /()") {
		t.Fatalf("unexpected base name %q", f.Name)
	}
	d := f.Descriptor
	if d.Ascent <= 0 || d.Descent >= 0 {
		t.Fatalf("ascent/descent signs wrong: %+v", d)
	}
	if d.BBox[2] <= d.BBox[0] || d.BBox[3] <= d.BBox[1] {
		t.Fatalf("bbox not ordered: %v", d.BBox)
	}
	if f.LineHeight(10) <= 0 {
		t.Fatalf("line height must be positive")
	}
	if !f.Covers('A') {
		t.Fatalf("Go fonts cover Latin")
	}
}

func TestLoadTrueType_Errors(t *testing.T) {
	if _, err := LoadTrueType("x", nil); err == nil {
		t.Fatalf("expected error for empty data")
	}
	if _, err := LoadTrueType("x", []byte("not a font at all")); err == nil {
		t.Fatalf("expected error for garbage")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "body.ttf")
	if err := os.WriteFile(path, goregular.TTF, 0o644); err != nil {
		t.Fatalf("write font: %v", err)
	}
	f, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if !f.Covers('g') {
		t.Fatalf("loaded font should cover Latin")
	}
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.ttf")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestEncodeAndToUnicode(t *testing.T) {
	f, err := GoRegular()
	if err != nil {
		t.Fatalf("GoRegular: %v", err)
	}
	glyphs := f.Shape("AB", false)
	enc := f.Encode(glyphs)
	if len(enc) != 4 {
		t.Fatalf("expected 2 bytes per glyph, got %d", len(enc))
	}
	gid := uint16(enc[0])<<8 | uint16(enc[1])
	if gid != glyphs[0].ID {
		t.Fatalf("encoded gid %d, shaped %d", gid, glyphs[0].ID)
	}
	used := f.UsedGlyphs()
	if used[0] != 0 || len(used) != 3 {
		t.Fatalf("used glyphs = %v", used)
	}
	cmap := string(f.ToUnicode())
	if !strings.Contains(cmap, "<0041>") || !strings.Contains(cmap, "<0042>") {
		t.Fatalf("ToUnicode missing mappings:\n%s", cmap)
	}
	if !strings.Contains(cmap, "2 beginbfchar") {
		t.Fatalf("expected two bfchar entries:\n%s", cmap)
	}
}

func TestWidthRuns(t *testing.T) {
	f, err := GoRegular()
	if err != nil {
		t.Fatalf("GoRegular: %v", err)
	}
	f.Encode(f.Shape("abc", false))
	runs := f.WidthRuns()
	total := 0
	for _, r := range runs {
		total += len(r.Widths)
		for i, w := range r.Widths {
			if w != f.Width(r.First+uint16(i)) {
				t.Fatalf("width mismatch at %d", r.First+uint16(i))
			}
		}
	}
	if total < 3 {
		t.Fatalf("expected widths for a, b and c, got %d", total)
	}
}

func TestSubsetTrueType(t *testing.T) {
	f, err := GoRegular()
	if err != nil {
		t.Fatalf("GoRegular: %v", err)
	}
	f.Encode(f.Shape("Hello", false))
	sub := f.Program()
	if len(sub) >= len(goregular.TTF) {
		t.Fatalf("subset (%d) not smaller than original (%d)", len(sub), len(goregular.TTF))
	}
	if !bytes.Equal(sub[:4], []byte{0, 1, 0, 0}) {
		t.Fatalf("bad sfnt version %x", sub[:4])
	}
	parsed, err := sfnt.Parse(sub)
	if err != nil {
		t.Fatalf("subset does not parse: %v", err)
	}
	var buf sfnt.Buffer
	gid, err := parsed.GlyphIndex(&buf, 'H')
	if err != nil || gid == 0 {
		t.Fatalf("cmap lookup for H failed: %v %v", gid, err)
	}
	if _, err := parsed.LoadGlyph(&buf, gid, 1<<6*12, nil); err != nil {
		t.Fatalf("kept glyph does not load: %v", err)
	}
}
