package builder

import (
	"crypto/sha1"

	"github.com/wudi/docforge/fonts"
	"github.com/wudi/docforge/optimize"
	"github.com/wudi/docforge/writer"
)

// writeFont emits a Type0 font with an Identity-H encoding over a
// CIDFontType2 descendant. Glyph IDs are preserved by subsetting, so CIDs
// map to GIDs one to one.
func writeFont(doc *writer.Document, f *fonts.Font) writer.Ref {
	program := f.Program()
	baseName := f.Name
	if len(program) < len(f.Data) {
		baseName = subsetTag(f.UsedGlyphs()) + "+" + f.Name
	}

	fontFile := doc.Add(&writer.Stream{
		Dict: writer.Dict{"Length1": writer.Int(len(program))},
		Data: program,
	})
	d := f.Descriptor
	descriptor := doc.Add(writer.Dict{
		"Type":        writer.Name("FontDescriptor"),
		"FontName":    writer.Name(baseName),
		"Flags":       writer.Int(d.Flags),
		"FontBBox":    realArray(d.BBox[:]...),
		"ItalicAngle": writer.Real(d.ItalicAngle),
		"Ascent":      writer.Real(d.Ascent),
		"Descent":     writer.Real(d.Descent),
		"CapHeight":   writer.Real(d.CapHeight),
		"StemV":       writer.Real(d.StemV),
		"FontFile2":   fontFile,
	})

	var widths writer.Array
	for _, run := range f.WidthRuns() {
		ws := make(writer.Array, len(run.Widths))
		for i, w := range run.Widths {
			ws[i] = writer.Int(w)
		}
		widths = append(widths, writer.Int(run.First), ws)
	}
	cid := writer.Dict{
		"Type":     writer.Name("Font"),
		"Subtype":  writer.Name("CIDFontType2"),
		"BaseFont": writer.Name(baseName),
		"CIDSystemInfo": writer.Dict{
			"Registry":   writer.Text("Adobe"),
			"Ordering":   writer.Text("Identity"),
			"Supplement": writer.Int(0),
		},
		"FontDescriptor": descriptor,
		"DW":             writer.Int(f.DefaultWidth()),
		"CIDToGIDMap":    writer.Name("Identity"),
	}
	if len(widths) > 0 {
		cid["W"] = widths
	}
	cidRef := doc.Add(cid)
	toUnicode := doc.Add(&writer.Stream{Dict: writer.Dict{}, Data: f.ToUnicode()})

	return doc.Add(writer.Dict{
		"Type":            writer.Name("Font"),
		"Subtype":         writer.Name("Type0"),
		"BaseFont":        writer.Name(baseName),
		"Encoding":        writer.Name("Identity-H"),
		"DescendantFonts": writer.Array{cidRef},
		"ToUnicode":       toUnicode,
	})
}

// subsetTag derives the six-letter subset prefix from the glyph set so
// that the same text always yields the same name.
func subsetTag(gids []uint16) string {
	h := sha1.New()
	for _, g := range gids {
		h.Write([]byte{byte(g >> 8), byte(g)})
	}
	sum := h.Sum(nil)
	tag := make([]byte, 6)
	for i := range tag {
		tag[i] = 'A' + sum[i]%26
	}
	return string(tag)
}

func writeImage(doc *writer.Document, img *optimize.Image) writer.Ref {
	dict := writer.Dict{
		"Type":             writer.Name("XObject"),
		"Subtype":          writer.Name("Image"),
		"Width":            writer.Int(img.Width),
		"Height":           writer.Int(img.Height),
		"ColorSpace":       writer.Name(img.ColorSpace),
		"BitsPerComponent": writer.Int(img.BitsPerComponent),
	}
	if img.Filter != "" {
		dict["Filter"] = writer.Name(img.Filter)
	}
	if len(img.Decode) > 0 {
		dict["Decode"] = realArray(img.Decode...)
	}
	if img.SMask != nil {
		dict["SMask"] = doc.Add(&writer.Stream{
			Dict: writer.Dict{
				"Type":             writer.Name("XObject"),
				"Subtype":          writer.Name("Image"),
				"Width":            writer.Int(img.Width),
				"Height":           writer.Int(img.Height),
				"ColorSpace":       writer.Name("DeviceGray"),
				"BitsPerComponent": writer.Int(8),
			},
			Data: img.SMask,
		})
	}
	return doc.Add(&writer.Stream{Dict: dict, Data: img.Data})
}

func realArray(vals ...float64) writer.Array {
	out := make(writer.Array, len(vals))
	for i, v := range vals {
		out[i] = writer.Real(v)
	}
	return out
}
