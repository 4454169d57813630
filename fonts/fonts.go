// Package fonts loads TrueType fonts for embedding as Type0/Identity-H
// composite fonts, shapes text with HarfBuzz and tracks the glyphs a document
// actually uses so that widths, ToUnicode and the embedded program can be
// reduced to that set.
package fonts

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"

	gofont "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/shaping"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// ErrNoGlyphs is returned for font programs that define no glyphs.
var ErrNoGlyphs = errors.New("font has no glyphs")

// Descriptor holds the FontDescriptor metrics in 1/1000 em.
type Descriptor struct {
	Ascent      float64
	Descent     float64
	CapHeight   float64
	ItalicAngle float64
	StemV       float64
	Flags       int
	BBox        [4]float64
}

// Font is a parsed TrueType font. A Font may be shared between goroutines;
// shaping and glyph bookkeeping are serialised internally.
type Font struct {
	Name       string
	Data       []byte
	Descriptor Descriptor

	widths map[uint16]int

	mu     sync.Mutex
	face   *gofont.Face
	shaper shaping.HarfbuzzShaper
	used   map[uint16][]rune
}

// LoadTrueType parses a TrueType/OpenType font with glyf outlines and
// extracts the metrics needed for a CIDFontType2 with a FontFile2 stream.
func LoadTrueType(name string, data []byte) (*Font, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("truetype font data is empty")
	}
	sf, err := sfnt.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse truetype: %w", err)
	}
	if sf.NumGlyphs() == 0 {
		return nil, ErrNoGlyphs
	}
	unitsPerEm := sf.UnitsPerEm()
	if unitsPerEm == 0 {
		return nil, fmt.Errorf("invalid unitsPerEm")
	}
	face, err := gofont.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("load face: %w", err)
	}

	buf := &sfnt.Buffer{}
	ppem := fixed.Int26_6(unitsPerEm << 6)

	baseName := strings.TrimSpace(name)
	if ps, _ := sf.Name(buf, sfnt.NameIDPostScript); ps != "" {
		baseName = ps
	}
	if baseName == "" {
		baseName = "CustomTT"
	}

	metrics, _ := sf.Metrics(buf, ppem, xfont.HintingNone)
	bounds, _ := sf.Bounds(buf, ppem, xfont.HintingNone)
	capHeight := scaleFixed(metrics.CapHeight, unitsPerEm)
	if capHeight == 0 {
		capHeight = scaleFixed(metrics.Ascent, unitsPerEm)
	}
	italic := 0.0
	if post := sf.PostTable(); post != nil {
		italic = post.ItalicAngle
	}
	flags := 32 // nonsymbolic
	if italic != 0 {
		flags |= 64
	}

	return &Font{
		Name: sanitizeName(baseName),
		Data: data,
		Descriptor: Descriptor{
			Ascent:      scaleFixed(metrics.Ascent, unitsPerEm),
			Descent:     -scaleFixed(metrics.Descent, unitsPerEm),
			CapHeight:   capHeight,
			ItalicAngle: italic,
			StemV:       80,
			Flags:       flags,
			BBox: [4]float64{
				scaleFixed(bounds.Min.X, unitsPerEm),
				-scaleFixed(bounds.Max.Y, unitsPerEm),
				scaleFixed(bounds.Max.X, unitsPerEm),
				-scaleFixed(bounds.Min.Y, unitsPerEm),
			},
		},
		widths: glyphWidths(sf, buf, unitsPerEm, ppem),
		face:   face,
		used:   make(map[uint16][]rune),
	}, nil
}

// LoadFile reads and parses a TrueType font from disk. The file name
// without extension is used when the font carries no PostScript name.
func LoadFile(path string) (*Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read font: %w", err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return LoadTrueType(name, data)
}

// GoRegular returns the embedded Go Regular font.
func GoRegular() (*Font, error) { return LoadTrueType("GoRegular", goregular.TTF) }

// GoBold returns the embedded Go Bold font.
func GoBold() (*Font, error) { return LoadTrueType("GoBold", gobold.TTF) }

// Width returns the advance of gid in 1/1000 em.
func (f *Font) Width(gid uint16) int {
	if w, ok := f.widths[gid]; ok {
		return w
	}
	return f.DefaultWidth()
}

// DefaultWidth is the advance of the .notdef glyph, used as /DW.
func (f *Font) DefaultWidth() int {
	if w := f.widths[0]; w > 0 {
		return w
	}
	return 1000
}

// Covers reports whether the font maps r to a real glyph.
func (f *Font) Covers(r rune) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.face.NominalGlyph(r)
	return ok
}

// LineHeight returns ascent minus descent at size, in points.
func (f *Font) LineHeight(size float64) float64 {
	return (f.Descriptor.Ascent - f.Descriptor.Descent) * size / 1000
}

func glyphWidths(font *sfnt.Font, buf *sfnt.Buffer, unitsPerEm sfnt.Units, ppem fixed.Int26_6) map[uint16]int {
	n := font.NumGlyphs()
	widths := make(map[uint16]int, n)
	for i := 0; i < n; i++ {
		adv, err := font.GlyphAdvance(buf, sfnt.GlyphIndex(i), ppem, xfont.HintingNone)
		if err != nil {
			continue
		}
		widths[uint16(i)] = int(math.Round(scaleFixed(adv, unitsPerEm)))
	}
	return widths
}

func scaleFixed(val fixed.Int26_6, unitsPerEm sfnt.Units) float64 {
	return float64(val) * 1000.0 / (64.0 * float64(unitsPerEm))
}

// sanitizeName strips characters that are not allowed in a PDF name token.
func sanitizeName(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if r > 0x20 && r < 0x7F && !strings.ContainsRune("()<>[]{}/%#", r) {
			sb.WriteRune(r)
		}
	}
	if sb.Len() == 0 {
		return "CustomTT"
	}
	return sb.String()
}
