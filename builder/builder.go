// Package builder provides a fluent API for assembling PDF pages from text,
// lines, rectangles and images, and serialising them with the writer package.
package builder

import (
	"fmt"
	"sort"

	"github.com/wudi/docforge/contentstream"
	"github.com/wudi/docforge/fonts"
	"github.com/wudi/docforge/optimize"
	"github.com/wudi/docforge/writer"
)

// PDFBuilder provides a fluent API for PDF construction.
type PDFBuilder interface {
	NewPage(width, height float64) PageBuilder
	SetInfo(info Info) PDFBuilder
	SetLanguage(lang string) PDFBuilder
	SetCompression(compress bool) PDFBuilder
	SetMaxImagePixels(n int) PDFBuilder
	RegisterFont(name string, font *fonts.Font) PDFBuilder
	RegisterTrueTypeFont(name string, data []byte) PDFBuilder
	// AddImage prepares encoded image bytes for drawing. Identical bytes
	// share one XObject.
	AddImage(data []byte) (Image, error)
	PageCount() int
	Build() ([]byte, error)
}

// PageBuilder provides a fluent API for page construction.
type PageBuilder interface {
	DrawText(text string, x, y float64, opts TextOptions) PageBuilder
	DrawLine(x1, y1, x2, y2 float64, opts LineOptions) PageBuilder
	DrawRectangle(x, y, width, height float64, opts RectOptions) PageBuilder
	DrawImage(img Image, x, y, width, height float64) PageBuilder
	Index() int
	Finish() PDFBuilder
}

// Info is the document information dictionary.
type Info struct {
	Title    string
	Author   string
	Subject  string
	Creator  string
	Producer string
}

// TextOptions configures text drawing. x is the left edge of the shaped run
// and y its baseline.
type TextOptions struct {
	Font     string
	FontSize float64
	Color    contentstream.Color
	// RTL shapes runs without a strong script right to left.
	RTL bool
}

// LineOptions configures line drawing.
type LineOptions struct {
	StrokeColor contentstream.Color
	LineWidth   float64
	LineCap     contentstream.LineCap
}

// RectOptions configures rectangle drawing (defaults to stroke if neither
// fill nor stroke is set).
type RectOptions struct {
	StrokeColor contentstream.Color
	FillColor   contentstream.Color
	LineWidth   float64
	Fill        bool
	Stroke      bool
}

// Image is a handle to an image registered with AddImage.
type Image struct {
	name   string
	Width  int // pixels
	Height int // pixels
}

type imageResource struct {
	name string
	img  *optimize.Image
}

type builderImpl struct {
	pages       []*pageBuilderImpl
	info        Info
	lang        string
	compress    bool
	fonts       map[string]*fonts.Font
	fontOrder   []string
	defaultFont string
	images      *optimize.Cache
	imageByKey  map[string]*imageResource
	imageOrder  []*imageResource
	fontErr     error
}

type pageBuilderImpl struct {
	parent   *builderImpl
	index    int
	width    float64
	height   float64
	content  contentstream.Writer
	fonts    map[string]bool
	xobjects map[string]bool
}

const defaultFontSize = 12

// NewBuilder constructs a PDFBuilder. Compression is on by default.
func NewBuilder() PDFBuilder {
	return &builderImpl{
		compress:   true,
		fonts:      make(map[string]*fonts.Font),
		images:     optimize.NewCache(0),
		imageByKey: make(map[string]*imageResource),
	}
}

func (b *builderImpl) NewPage(w, h float64) PageBuilder {
	p := &pageBuilderImpl{
		parent:   b,
		index:    len(b.pages),
		width:    w,
		height:   h,
		fonts:    make(map[string]bool),
		xobjects: make(map[string]bool),
	}
	b.pages = append(b.pages, p)
	return p
}

func (b *builderImpl) SetInfo(info Info) PDFBuilder {
	b.info = info
	return b
}

func (b *builderImpl) SetLanguage(lang string) PDFBuilder {
	b.lang = lang
	return b
}

func (b *builderImpl) SetCompression(compress bool) PDFBuilder {
	b.compress = compress
	return b
}

func (b *builderImpl) SetMaxImagePixels(n int) PDFBuilder {
	b.images = optimize.NewCache(n)
	return b
}

func (b *builderImpl) RegisterFont(name string, font *fonts.Font) PDFBuilder {
	if font == nil {
		return b
	}
	if _, ok := b.fonts[name]; !ok {
		b.fontOrder = append(b.fontOrder, name)
	}
	b.fonts[name] = font
	if b.defaultFont == "" {
		b.defaultFont = name
	}
	return b
}

func (b *builderImpl) RegisterTrueTypeFont(name string, data []byte) PDFBuilder {
	font, err := fonts.LoadTrueType(name, data)
	if err != nil {
		if b.fontErr == nil {
			b.fontErr = fmt.Errorf("register font %s: %w", name, err)
		}
		return b
	}
	return b.RegisterFont(name, font)
}

func (b *builderImpl) AddImage(data []byte) (Image, error) {
	img, key, err := b.images.Prepare(data)
	if err != nil {
		return Image{}, err
	}
	res, ok := b.imageByKey[key]
	if !ok {
		res = &imageResource{name: fmt.Sprintf("Im%d", len(b.imageOrder)+1), img: img}
		b.imageByKey[key] = res
		b.imageOrder = append(b.imageOrder, res)
	}
	return Image{name: res.name, Width: img.Width, Height: img.Height}, nil
}

func (b *builderImpl) PageCount() int { return len(b.pages) }

func (b *builderImpl) fontForName(name string) (*fonts.Font, string) {
	if name == "" {
		name = b.defaultFont
	}
	if f, ok := b.fonts[name]; ok {
		return f, name
	}
	if f, ok := b.fonts[b.defaultFont]; ok {
		return f, b.defaultFont
	}
	return nil, ""
}

func (p *pageBuilderImpl) DrawText(text string, x, y float64, opts TextOptions) PageBuilder {
	if text == "" {
		return p
	}
	font, name := p.parent.fontForName(opts.Font)
	if font == nil {
		if p.parent.fontErr == nil {
			p.parent.fontErr = fmt.Errorf("no font registered for %q", opts.Font)
		}
		return p
	}
	size := opts.FontSize
	if size <= 0 {
		size = defaultFontSize
	}
	p.fonts[name] = true

	glyphs := font.Shape(text, opts.RTL)
	p.content.BeginText().
		SetFont(name, size).
		SetFillColor(opts.Color).
		SetTextMatrix(1, 0, 0, 1, x, y)
	if elems := kerned(font, glyphs); len(elems) == 1 {
		p.content.ShowText(elems[0].Glyphs)
	} else {
		p.content.ShowTextAdjusted(elems)
	}
	p.content.EndText()
	return p
}

// kerned splits glyphs into TJ elements wherever the shaped advance differs
// from the width the viewer will apply from /W.
func kerned(font *fonts.Font, glyphs []fonts.Glyph) []contentstream.TJElement {
	var elems []contentstream.TJElement
	start := 0
	for i, g := range glyphs {
		adjust := float64(font.Width(g.ID)) - g.Advance
		if adjust > -0.5 && adjust < 0.5 {
			continue
		}
		elems = append(elems,
			contentstream.TJElement{Glyphs: font.Encode(glyphs[start : i+1])},
			contentstream.TJElement{Adjust: adjust},
		)
		start = i + 1
	}
	if start < len(glyphs) || len(elems) == 0 {
		elems = append(elems, contentstream.TJElement{Glyphs: font.Encode(glyphs[start:])})
	}
	return elems
}

func (p *pageBuilderImpl) DrawLine(x1, y1, x2, y2 float64, opts LineOptions) PageBuilder {
	width := opts.LineWidth
	if width <= 0 {
		width = 1
	}
	p.content.Save().
		SetStrokeColor(opts.StrokeColor).
		SetLineWidth(width)
	if opts.LineCap != contentstream.LineCapButt {
		p.content.SetLineCap(opts.LineCap)
	}
	p.content.MoveTo(x1, y1).LineTo(x2, y2).Stroke().Restore()
	return p
}

func (p *pageBuilderImpl) DrawRectangle(x, y, width, height float64, opts RectOptions) PageBuilder {
	if !opts.Stroke && !opts.Fill {
		opts.Stroke = true
	}
	p.content.Save()
	if opts.Fill {
		p.content.SetFillColor(opts.FillColor)
	}
	if opts.Stroke {
		p.content.SetStrokeColor(opts.StrokeColor)
		if opts.LineWidth > 0 {
			p.content.SetLineWidth(opts.LineWidth)
		}
	}
	p.content.Rect(x, y, width, height)
	switch {
	case opts.Fill && opts.Stroke:
		p.content.FillStroke()
	case opts.Fill:
		p.content.Fill()
	default:
		p.content.Stroke()
	}
	p.content.Restore()
	return p
}

func (p *pageBuilderImpl) DrawImage(img Image, x, y, width, height float64) PageBuilder {
	if img.name == "" {
		return p
	}
	if width == 0 {
		width = float64(img.Width)
	}
	if height == 0 {
		height = float64(img.Height)
	}
	p.xobjects[img.name] = true
	p.content.Save().
		Transform(width, 0, 0, height, x, y).
		DrawXObject(img.name).
		Restore()
	return p
}

func (p *pageBuilderImpl) Index() int { return p.index }

func (p *pageBuilderImpl) Finish() PDFBuilder { return p.parent }

func (b *builderImpl) Build() ([]byte, error) {
	if b.fontErr != nil {
		return nil, b.fontErr
	}
	if len(b.pages) == 0 {
		return nil, fmt.Errorf("document has no pages")
	}

	doc := writer.New()
	catalog := doc.Reserve()
	pagesRef := doc.Reserve()

	pageRefs := make([]writer.Ref, len(b.pages))
	for i := range b.pages {
		pageRefs[i] = doc.Reserve()
	}

	fontRefs := make(map[string]writer.Ref)
	for _, name := range b.fontOrder {
		if b.fontUsed(name) {
			fontRefs[name] = writeFont(doc, b.fonts[name])
		}
	}
	imageRefs := make(map[string]writer.Ref)
	for _, res := range b.imageOrder {
		imageRefs[res.name] = writeImage(doc, res.img)
	}

	kids := make(writer.Array, len(b.pages))
	for i, p := range b.pages {
		resources := writer.Dict{}
		if len(p.fonts) > 0 {
			fd := writer.Dict{}
			for _, name := range sortedKeys(p.fonts) {
				fd[writer.Name(name)] = fontRefs[name]
			}
			resources["Font"] = fd
		}
		if len(p.xobjects) > 0 {
			xd := writer.Dict{}
			for _, name := range sortedKeys(p.xobjects) {
				xd[writer.Name(name)] = imageRefs[name]
			}
			resources["XObject"] = xd
		}
		contents := doc.Add(&writer.Stream{Dict: writer.Dict{}, Data: append([]byte(nil), p.content.Bytes()...)})
		doc.Set(pageRefs[i], writer.Dict{
			"Type":      writer.Name("Page"),
			"Parent":    pagesRef,
			"MediaBox":  writer.Array{writer.Int(0), writer.Int(0), writer.Real(p.width), writer.Real(p.height)},
			"Resources": resources,
			"Contents":  contents,
		})
		kids[i] = pageRefs[i]
	}
	doc.Set(pagesRef, writer.Dict{
		"Type":  writer.Name("Pages"),
		"Kids":  kids,
		"Count": writer.Int(len(b.pages)),
	})

	cat := writer.Dict{
		"Type":  writer.Name("Catalog"),
		"Pages": pagesRef,
	}
	if b.lang != "" {
		cat["Lang"] = writer.UTF16Text(b.lang)
	}
	if b.info.Title != "" {
		cat["ViewerPreferences"] = writer.Dict{"DisplayDocTitle": writer.Bool(true)}
	}
	doc.Set(catalog, cat)
	doc.Root = catalog
	if info := b.infoDict(); len(info) > 0 {
		doc.Info = doc.Add(info)
	}

	return doc.Bytes(writer.Config{Version: writer.PDF17, Compress: b.compress})
}

func (b *builderImpl) fontUsed(name string) bool {
	for _, p := range b.pages {
		if p.fonts[name] {
			return true
		}
	}
	return false
}

func (b *builderImpl) infoDict() writer.Dict {
	d := writer.Dict{}
	set := func(key, val string) {
		if val != "" {
			d[writer.Name(key)] = writer.UTF16Text(val)
		}
	}
	set("Title", b.info.Title)
	set("Author", b.info.Author)
	set("Subject", b.info.Subject)
	set("Creator", b.info.Creator)
	set("Producer", b.info.Producer)
	return d
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
