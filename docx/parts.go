package docx

import (
	"strconv"

	"github.com/wudi/docforge/ooxml"
	"github.com/wudi/docforge/units"
)

// Type sizes in points.
const (
	bodySize     = 11.0
	titleSize    = 28.0
	subtitleSize = 14.0
	headingSize  = 18.0
	captionSize  = 8.0
)

const (
	accentHex = "1F3A60"
	mutedHex  = "737373"
	bodyFont  = "Calibri"
	// Arabic, Hebrew and Persian runs fall back to the complex-script font.
	complexFont = "Arial"
)

func halfPoints(pt float64) string { return strconv.Itoa(units.HalfPoints(pt)) }

// runFonts writes the size and font of a style for both Latin and complex
// script runs.
func runFonts(w *ooxml.Writer, size float64, bold, italic bool, color string) {
	w.Open("w:rPr")
	w.Empty("w:rFonts", "w:ascii", bodyFont, "w:hAnsi", bodyFont, "w:cs", complexFont)
	if bold {
		w.Empty("w:b").Empty("w:bCs")
	}
	if italic {
		w.Empty("w:i").Empty("w:iCs")
	}
	if color != "" {
		w.Empty("w:color", "w:val", color)
	}
	w.Empty("w:sz", "w:val", halfPoints(size)).Empty("w:szCs", "w:val", halfPoints(size))
	w.Close()
}

func styles() []byte {
	w := ooxml.NewWriter()
	w.Open("w:styles", "xmlns:w", nsMain)

	w.Open("w:docDefaults")
	w.Open("w:rPrDefault")
	runFonts(w, bodySize, false, false, "")
	w.Close()
	w.Open("w:pPrDefault").Open("w:pPr").
		Empty("w:spacing", "w:after", "160", "w:line", "276", "w:lineRule", "auto").
		Close().Close()
	w.Close()

	style := func(id, name string, pPr func(), size float64, bold, italic bool, color string) {
		attrs := []string{"w:type", "paragraph", "w:styleId", id}
		if id == "Normal" {
			attrs = append(attrs, "w:default", "1")
		}
		w.Open("w:style", attrs...)
		w.Empty("w:name", "w:val", name)
		if id != "Normal" {
			w.Empty("w:basedOn", "w:val", "Normal")
			w.Empty("w:next", "w:val", "Normal")
		}
		w.Empty("w:qFormat")
		if pPr != nil {
			w.Open("w:pPr")
			pPr()
			w.Close()
		}
		runFonts(w, size, bold, italic, color)
		w.Close()
	}

	style("Normal", "Normal", nil, bodySize, false, false, "")
	style("Title", "Title", func() {
		w.Empty("w:spacing", "w:after", "120")
	}, titleSize, true, false, accentHex)
	style("Subtitle", "Subtitle", func() {
		w.Empty("w:spacing", "w:after", "240")
	}, subtitleSize, false, false, mutedHex)
	style("Heading1", "heading 1", func() {
		w.Empty("w:keepNext")
		w.Empty("w:spacing", "w:before", "360", "w:after", "120")
		w.Empty("w:outlineLvl", "w:val", "0")
	}, headingSize, true, false, accentHex)
	style("ListParagraph", "List Paragraph", func() {
		w.Empty("w:spacing", "w:after", "60")
		w.Empty("w:ind", "w:left", "720")
	}, bodySize, false, false, "")
	style("Caption", "caption", func() {
		w.Empty("w:jc", "w:val", "center")
	}, captionSize, false, true, mutedHex)

	return w.Bytes()
}

// numbering defines the one bullet list every ListParagraph points at.
func numbering() []byte {
	w := ooxml.NewWriter()
	w.Open("w:numbering", "xmlns:w", nsMain)
	w.Open("w:abstractNum", "w:abstractNumId", "0")
	w.Empty("w:multiLevelType", "w:val", "singleLevel")
	w.Open("w:lvl", "w:ilvl", "0")
	w.Empty("w:start", "w:val", "1")
	w.Empty("w:numFmt", "w:val", "bullet")
	w.Empty("w:lvlText", "w:val", "•")
	w.Empty("w:lvlJc", "w:val", "left")
	w.Open("w:pPr").Empty("w:ind", "w:left", "720", "w:hanging", "360").Close()
	w.Close() // w:lvl
	w.Close() // w:abstractNum
	w.Open("w:num", "w:numId", strconv.Itoa(BulletNumID))
	w.Empty("w:abstractNumId", "w:val", "0")
	w.Close()
	return w.Bytes()
}

func settings() []byte {
	w := ooxml.NewWriter()
	w.Open("w:settings", "xmlns:w", nsMain)
	w.Empty("w:zoom", "w:percent", "100")
	w.Empty("w:defaultTabStop", "w:val", "720")
	w.Empty("w:characterSpacingControl", "w:val", "doNotCompress")
	w.Open("w:compat")
	w.Empty("w:compatSetting",
		"w:name", "compatibilityMode",
		"w:uri", "http://schemas.microsoft.com/office/word",
		"w:val", "15")
	w.Close()
	return w.Bytes()
}
