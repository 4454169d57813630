package pptx

import (
	"strconv"

	"github.com/wudi/docforge/model"
	"github.com/wudi/docforge/ooxml"
	"github.com/wudi/docforge/units"
)

const nsPresentation = "http://schemas.openxmlformats.org/presentationml/2006/main"

// Palette.
const (
	darkHex   = "1F3A60"
	accentHex = "F2A900"
	lightHex  = "FFFFFF"
	mutedHex  = "D9D9D9"
	bodyHex   = "262626"
)

// Geometry of the content slide, in EMU.
var (
	edge          = units.InchesToEMU(0.5)
	bandHeight    = units.InchesToEMU(1.2)
	bodyTop       = units.InchesToEMU(1.5)
	bodyWithImage = units.InchesToEMU(6)
	pictureWidth  = units.InchesToEMU(5.8)
	pictureHeight = units.InchesToEMU(5)
)

type rect struct{ x, y, cx, cy int64 }

// textRun is one formatted run of a text box paragraph.
type textRun struct {
	text  string
	size  float64
	bold  bool
	color string
}

// slideWriter writes one slide and hands out shape IDs. ID 1 is the shape
// tree group itself.
type slideWriter struct {
	w      *ooxml.Writer
	rtl    bool
	nextID int
}

func (c *composer) newSlide(background string) *slideWriter {
	s := &slideWriter{w: ooxml.NewWriter(), rtl: c.rtl, nextID: 2}
	s.w.Open("p:sld",
		"xmlns:a", ooxml.NSDrawingML,
		"xmlns:r", ooxml.NSOfficeRels,
		"xmlns:p", nsPresentation)
	s.w.Open("p:cSld")
	if background != "" {
		s.w.Open("p:bg").Open("p:bgPr")
		solidFill(s.w, background)
		s.w.Empty("a:effectLst")
		s.w.Close().Close()
	}
	s.w.Open("p:spTree")
	s.w.Open("p:nvGrpSpPr").
		Empty("p:cNvPr", "id", "1", "name", "").
		Empty("p:cNvGrpSpPr").
		Empty("p:nvPr").
		Close()
	s.w.Open("p:grpSpPr").Open("a:xfrm").
		Empty("a:off", "x", "0", "y", "0").
		Empty("a:ext", "cx", "0", "cy", "0").
		Empty("a:chOff", "x", "0", "y", "0").
		Empty("a:chExt", "cx", "0", "cy", "0").
		Close().Close()
	return s
}

func (s *slideWriter) finish() []byte {
	s.w.Close() // p:spTree
	s.w.Close() // p:cSld
	s.w.Open("p:clrMapOvr").Empty("a:masterClrMapping").Close()
	return s.w.Bytes()
}

func (s *slideWriter) id() string {
	id := strconv.Itoa(s.nextID)
	s.nextID++
	return id
}

func solidFill(w *ooxml.Writer, hex string) {
	w.Open("a:solidFill").Empty("a:srgbClr", "val", hex).Close()
}

func emu(v int64) string { return strconv.FormatInt(v, 10) }

func xfrm(w *ooxml.Writer, r rect) {
	w.Open("a:xfrm").
		Empty("a:off", "x", emu(r.x), "y", emu(r.y)).
		Empty("a:ext", "cx", emu(r.cx), "cy", emu(r.cy)).
		Close()
}

// band draws a filled rectangle without text.
func (s *slideWriter) band(name string, r rect, fill string) {
	w := s.w
	w.Open("p:sp")
	w.Open("p:nvSpPr").
		Empty("p:cNvPr", "id", s.id(), "name", name).
		Empty("p:cNvSpPr").
		Empty("p:nvPr").
		Close()
	w.Open("p:spPr")
	xfrm(w, r)
	w.Open("a:prstGeom", "prst", "rect").Empty("a:avLst").Close()
	solidFill(w, fill)
	w.Open("a:ln").Empty("a:noFill").Close()
	w.Close()
	w.Close()
}

// paragraphProps writes the a:pPr of a paragraph. Right-to-left decks align
// every paragraph right.
func (s *slideWriter) paragraphProps(align string, bullet bool) {
	var attrs []string
	if bullet {
		attrs = append(attrs, "marL", "342900", "indent", "-342900")
	}
	if s.rtl {
		attrs = append(attrs, "algn", "r", "rtl", "1")
	} else if align != "" {
		attrs = append(attrs, "algn", align)
	}
	if !bullet {
		s.w.Empty("a:pPr", attrs...)
		return
	}
	s.w.Open("a:pPr", attrs...).
		Empty("a:buFont", "typeface", "Arial").
		Empty("a:buChar", "char", "•").
		Close()
}

func (s *slideWriter) run(r textRun) {
	w := s.w
	attrs := []string{"lang", "en-US", "sz", strconv.Itoa(units.CentiPoints(r.size))}
	if r.bold {
		attrs = append(attrs, "b", "1")
	}
	attrs = append(attrs, "dirty", "0")
	w.Open("a:r")
	w.Open("a:rPr", attrs...)
	solidFill(w, r.color)
	w.Empty("a:latin", "typeface", "Calibri")
	w.Empty("a:cs", "typeface", "Arial")
	w.Close()
	w.Element("a:t", r.text)
	w.Close()
}

// textBox draws a text box with one paragraph per run. An empty run list
// still produces one empty paragraph.
func (s *slideWriter) textBox(name string, r rect, anchor, align string, bullet bool, runs []textRun) {
	w := s.w
	w.Open("p:sp")
	w.Open("p:nvSpPr").
		Empty("p:cNvPr", "id", s.id(), "name", name).
		Empty("p:cNvSpPr", "txBox", "1").
		Empty("p:nvPr").
		Close()
	w.Open("p:spPr")
	xfrm(w, r)
	w.Open("a:prstGeom", "prst", "rect").Empty("a:avLst").Close()
	w.Empty("a:noFill")
	w.Close()

	w.Open("p:txBody")
	w.Open("a:bodyPr", "wrap", "square", "lIns", "91440", "tIns", "45720", "rIns", "91440", "bIns", "45720", "anchor", anchor).
		Empty("a:normAutofit").
		Close()
	w.Empty("a:lstStyle")
	if len(runs) == 0 {
		w.Open("a:p")
		s.paragraphProps(align, false)
		w.Empty("a:endParaRPr", "lang", "en-US", "dirty", "0")
		w.Close()
	}
	for _, run := range runs {
		w.Open("a:p")
		s.paragraphProps(align, bullet)
		s.run(run)
		w.Close()
	}
	w.Close() // p:txBody
	w.Close() // p:sp
}

func (s *slideWriter) picture(name, rid string, r rect) {
	w := s.w
	w.Open("p:pic")
	w.Open("p:nvPicPr").
		Empty("p:cNvPr", "id", s.id(), "name", name).
		Open("p:cNvPicPr").Empty("a:picLocks", "noChangeAspect", "1").Close().
		Empty("p:nvPr").
		Close()
	w.Open("p:blipFill").
		Empty("a:blip", "r:embed", rid).
		Open("a:stretch").Empty("a:fillRect").Close().
		Close()
	w.Open("p:spPr")
	xfrm(w, r)
	w.Open("a:prstGeom", "prst", "rect").Empty("a:avLst").Close()
	w.Close()
	w.Close()
}

func (c *composer) titleSlide(title, author string) []byte {
	s := c.newSlide(darkHex)
	inner := SlideWidth - 2*edge
	s.textBox("Title", rect{edge, units.InchesToEMU(2.2), inner, units.InchesToEMU(1.4)}, "b", "ctr", false,
		[]textRun{{text: title, size: 40, bold: true, color: lightHex}})
	barWidth := units.InchesToEMU(2)
	s.band("Accent", rect{(SlideWidth - barWidth) / 2, units.InchesToEMU(3.75), barWidth, units.InchesToEMU(0.06)}, accentHex)
	s.textBox("Author", rect{edge, units.InchesToEMU(4), inner, units.InchesToEMU(0.7)}, "t", "ctr", false,
		[]textRun{{text: author, size: 20, color: mutedHex}})
	return s.finish()
}

// contentSlide draws the header band with the title and the bullet body.
// pictureRel is the relationship ID of the slide image, or empty.
func (c *composer) contentSlide(slide model.Slide, pictureRel string) []byte {
	s := c.newSlide("")
	s.band("Header", rect{0, 0, SlideWidth, bandHeight}, darkHex)
	s.textBox("Title", rect{edge, units.InchesToEMU(0.15), SlideWidth - 2*edge, bandHeight - units.InchesToEMU(0.3)}, "ctr", "", false,
		[]textRun{{text: slide.Title, size: 28, bold: true, color: lightHex}})

	size := BulletFontSize(len(slide.Bullets))
	runs := make([]textRun, 0, len(slide.Bullets))
	for _, b := range slide.Bullets {
		runs = append(runs, textRun{text: b, size: size, color: bodyHex})
	}
	bodyWidth := SlideWidth - 2*edge
	if pictureRel != "" {
		bodyWidth = bodyWithImage
	}
	s.textBox("Body", rect{edge, bodyTop, bodyWidth, SlideHeight - bodyTop - edge}, "t", "", true, runs)

	if pictureRel != "" {
		s.picture("Picture", pictureRel, rect{SlideWidth - edge - pictureWidth, bodyTop, pictureWidth, pictureHeight})
	}
	return s.finish()
}

func (c *composer) closingSlide() []byte {
	s := c.newSlide(darkHex)
	s.textBox("Closing", rect{edge, units.InchesToEMU(3), SlideWidth - 2*edge, units.InchesToEMU(1.5)}, "ctr", "ctr", false,
		[]textRun{{text: ClosingText, size: 44, bold: true, color: lightHex}})
	return s.finish()
}
