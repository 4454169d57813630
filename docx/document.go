package docx

import (
	"strconv"
	"strings"

	"github.com/wudi/docforge/model"
	"github.com/wudi/docforge/ooxml"
	"github.com/wudi/docforge/units"
)

const (
	nsMain    = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsDrawing = "http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing"
)

// paragraph describes the pPr of one w:p.
type paragraph struct {
	style     string
	numbered  bool
	separator bool
	center    bool
}

// run describes the rPr of one w:r.
type run struct {
	italic bool
}

func (c *composer) document(doc model.Document, images model.Images) ([]byte, error) {
	w := ooxml.NewWriter()
	w.Open("w:document",
		"xmlns:w", nsMain,
		"xmlns:r", ooxml.NSOfficeRels,
		"xmlns:wp", nsDrawing,
		"xmlns:a", ooxml.NSDrawingML,
		"xmlns:pic", ooxml.NSPicture)
	w.Open("w:body")

	c.textParagraph(w, paragraph{style: "Title"}, run{}, doc.Title)
	c.textParagraph(w, paragraph{style: "Subtitle"}, run{}, "By "+doc.AuthorOr(c.cfg.Brand))
	c.openParagraph(w, paragraph{separator: true})
	w.Close()

	for _, s := range doc.Sections {
		c.textParagraph(w, paragraph{style: "Heading1"}, run{}, s.Heading)
		c.textParagraph(w, paragraph{}, run{}, s.Paragraph)
		for _, b := range s.Bullets {
			c.textParagraph(w, paragraph{style: "ListParagraph", numbered: true}, run{}, b)
		}
		asset, ok := images.Lookup(s.ImageKeyword)
		if !ok {
			continue
		}
		rid, err := c.addImage(asset)
		if err != nil {
			return nil, err
		}
		c.picture(w, rid, c.images)
		c.textParagraph(w, paragraph{style: "Caption", center: true}, run{italic: true}, asset.Caption(s.ImageKeyword))
	}

	c.sectionProperties(w)
	return w.Bytes(), nil
}

// openParagraph opens a w:p and writes its properties. In a right-to-left
// document every paragraph carries w:bidi.
func (c *composer) openParagraph(w *ooxml.Writer, p paragraph) {
	w.Open("w:p")
	if p.style == "" && !p.numbered && !p.separator && !p.center && !c.rtl {
		return
	}
	w.Open("w:pPr")
	if p.style != "" {
		w.Empty("w:pStyle", "w:val", p.style)
	}
	if p.numbered {
		w.Open("w:numPr").
			Empty("w:ilvl", "w:val", "0").
			Empty("w:numId", "w:val", strconv.Itoa(BulletNumID)).
			Close()
	}
	if p.separator {
		w.Open("w:pBdr").
			Empty("w:bottom", "w:val", "single", "w:sz", "6", "w:space", "1", "w:color", accentHex).
			Close()
	}
	if c.rtl {
		w.Empty("w:bidi")
	}
	if p.center {
		w.Empty("w:jc", "w:val", "center")
	}
	w.Close()
}

// openRun opens a w:r and writes its properties. In a right-to-left
// document every run carries w:rtl.
func (c *composer) openRun(w *ooxml.Writer, r run) {
	w.Open("w:r")
	if !r.italic && !c.rtl {
		return
	}
	w.Open("w:rPr")
	if r.italic {
		w.Empty("w:i")
	}
	if c.rtl {
		w.Empty("w:rtl")
	}
	w.Close()
}

// textParagraph writes one paragraph holding text in a single run. Line
// breaks in text become w:br elements.
func (c *composer) textParagraph(w *ooxml.Writer, p paragraph, r run, text string) {
	c.openParagraph(w, p)
	c.openRun(w, r)
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			w.Empty("w:br")
		}
		w.Element("w:t", line, "xml:space", "preserve")
	}
	w.Close() // w:r
	w.Close() // w:p
}

// picture writes a centred paragraph with an inline drawing of the image
// behind rid.
func (c *composer) picture(w *ooxml.Writer, rid string, n int) {
	cx := strconv.FormatInt(ImageWidthEMU, 10)
	cy := strconv.FormatInt(ImageHeightEMU, 10)
	id := strconv.Itoa(n)
	name := "Picture " + id

	c.openParagraph(w, paragraph{center: true})
	c.openRun(w, run{})
	w.Open("w:drawing")
	w.Open("wp:inline", "distT", "0", "distB", "0", "distL", "0", "distR", "0")
	w.Empty("wp:extent", "cx", cx, "cy", cy)
	w.Empty("wp:docPr", "id", id, "name", name)
	w.Open("a:graphic")
	w.Open("a:graphicData", "uri", ooxml.NSPicture)
	w.Open("pic:pic")
	w.Open("pic:nvPicPr").
		Empty("pic:cNvPr", "id", id, "name", name).
		Empty("pic:cNvPicPr").
		Close()
	w.Open("pic:blipFill").
		Empty("a:blip", "r:embed", rid).
		Open("a:stretch").Empty("a:fillRect").Close().
		Close()
	w.Open("pic:spPr")
	w.Open("a:xfrm").
		Empty("a:off", "x", "0", "y", "0").
		Empty("a:ext", "cx", cx, "cy", cy).
		Close()
	w.Open("a:prstGeom", "prst", "rect").Empty("a:avLst").Close()
	w.Close() // pic:spPr
	w.Close() // pic:pic
	w.Close() // a:graphicData
	w.Close() // a:graphic
	w.Close() // wp:inline
	w.Close() // w:drawing
	w.Close() // w:r
	w.Close() // w:p
}

// sectionProperties sets the page size and margins from the config.
func (c *composer) sectionProperties(w *ooxml.Writer) {
	tw := func(pt float64) string { return strconv.Itoa(units.PointsToTwips(pt)) }
	margin := tw(c.cfg.Margin)
	w.Open("w:sectPr")
	w.Empty("w:pgSz", "w:w", tw(c.cfg.PageWidth), "w:h", tw(c.cfg.PageHeight))
	w.Empty("w:pgMar",
		"w:top", margin, "w:right", margin, "w:bottom", margin, "w:left", margin,
		"w:header", "720", "w:footer", "720", "w:gutter", "0")
	w.Close()
}
