// Package layout flows a document model onto fixed-size PDF pages: a title
// page followed by the sections, with greedy word wrap, page breaks before
// any line that would cross the bottom margin, and scaled images.
package layout

import (
	"fmt"
	"strconv"

	"github.com/wudi/docforge/builder"
	"github.com/wudi/docforge/config"
	"github.com/wudi/docforge/contentstream"
	"github.com/wudi/docforge/fonts"
	"github.com/wudi/docforge/model"
	"github.com/wudi/docforge/observability"
)

// Typography and spacing, in points.
const (
	TitleSize      = 28.0
	AuthorSize     = 14.0
	LabelSize      = 11.0
	HeadingSize    = 18.0
	BodySize       = 11.0
	CaptionSize    = 8.0
	FooterSize     = 9.0
	HeadingLeading = 1.3
	BodyLeading    = 1.5

	// HeadingReserve is the space a heading needs below the cursor; less
	// than this and the heading moves to a new page.
	HeadingReserve = 80.0
	// MaxImageHeight caps the drawn height of section images.
	MaxImageHeight = 200.0
	// CaptionAllowance is reserved under an image for its caption.
	CaptionAllowance = 20.0
	SectionGap       = 24.0
	BulletIndent     = 18.0
	BandHeight       = 96.0
	ruleGap          = 10.0

	// headingTail is the space between the last heading line and the
	// following text, rule included.
	headingTail = 4 + ruleGap
	// titleTail is the height of the byline, divider and language label
	// drawn under the title.
	titleTail = AuthorSize + AuthorSize*BodyLeading + 8 + 2*LabelSize
)

// BulletPrefix is prepended to each bullet before wrapping.
const BulletPrefix = "  •  "

// Font resource names.
const (
	FontRegular = "F1"
	FontBold    = "F2"
)

var (
	textColor    = contentstream.Gray(0.1)
	mutedColor   = contentstream.Gray(0.45)
	ruleColor    = contentstream.Gray(0.75)
	accentColor  = contentstream.RGB8(31, 58, 96)
	onAccentText = contentstream.Gray(1)
)

// Engine lays out one document. It holds the page cursor and is not reused
// across documents.
type Engine struct {
	b      builder.PDFBuilder
	cfg    *config.Config
	logger observability.Logger

	regular *fonts.Font
	bold    *fonts.Font
	rtl     bool

	// Cursor state. y is the offset from the top edge of the page.
	page         builder.PageBuilder
	y            float64
	contentPages []builder.PageBuilder
}

// Option configures an Engine.
type Option func(*Engine)

// WithConfig sets page geometry, brand and image limits.
func WithConfig(cfg *config.Config) Option {
	return func(e *Engine) {
		if cfg != nil {
			e.cfg = cfg
		}
	}
}

// WithLogger sets the logger used for skipped images and page counts.
func WithLogger(l observability.Logger) Option {
	return func(e *Engine) { e.logger = observability.OrNop(l) }
}

// WithFonts replaces the embedded Go fonts. A nil font keeps the default.
func WithFonts(regular, bold *fonts.Font) Option {
	return func(e *Engine) {
		if regular != nil {
			e.regular = regular
		}
		if bold != nil {
			e.bold = bold
		}
	}
}

// NewEngine creates an engine writing to a fresh builder.
func NewEngine(opts ...Option) (*Engine, error) {
	e := &Engine{cfg: config.Default(), logger: observability.NopLogger{}}
	for _, opt := range opts {
		opt(e)
	}
	if e.regular == nil {
		f, err := fonts.GoRegular()
		if err != nil {
			return nil, fmt.Errorf("load regular font: %w", err)
		}
		e.regular = f
	}
	if e.bold == nil {
		f, err := fonts.GoBold()
		if err != nil {
			return nil, fmt.Errorf("load bold font: %w", err)
		}
		e.bold = f
	}
	e.b = builder.NewBuilder().
		RegisterFont(FontRegular, e.regular).
		RegisterFont(FontBold, e.bold).
		SetCompression(e.cfg.Compress).
		SetMaxImagePixels(e.cfg.MaxImagePixels)
	return e, nil
}

// Render lays out doc and returns the PDF bytes. The document is
// normalised first, so an empty model still yields a title page and one
// placeholder section.
func Render(doc model.Document, images model.Images, opts ...Option) ([]byte, error) {
	e, err := NewEngine(opts...)
	if err != nil {
		return nil, err
	}
	return e.Render(doc, images)
}

// Render lays out doc on the engine's builder.
func (e *Engine) Render(doc model.Document, images model.Images) ([]byte, error) {
	doc = model.Normalize(doc)
	e.rtl = doc.IsRTL()
	author := doc.AuthorOr(e.cfg.Brand)

	e.b.SetInfo(builder.Info{
		Title:    doc.Title,
		Author:   author,
		Creator:  e.cfg.Brand,
		Producer: "docforge",
	})
	if doc.Language != "" {
		e.b.SetLanguage(doc.Language)
	}

	e.drawTitlePage(doc.Title, author, doc.Language)
	e.newPage()
	for _, s := range doc.Sections {
		e.drawSection(s, images)
	}
	e.drawFooters()

	out, err := e.b.Build()
	if err != nil {
		return nil, fmt.Errorf("build pdf: %w", err)
	}
	e.logger.Debug("pdf rendered",
		observability.Int(observability.MetricPageCount, e.b.PageCount()),
		observability.Int(observability.MetricOutputBytes, len(out)))
	return out, nil
}

func (e *Engine) contentWidth() float64 { return e.cfg.PageWidth - 2*e.cfg.Margin }

func (e *Engine) bottom() float64 { return e.cfg.PageHeight - e.cfg.Margin }

func (e *Engine) remaining() float64 { return e.bottom() - e.y }

// newPage starts a content page and resets the cursor to the top margin.
func (e *Engine) newPage() {
	if e.page != nil {
		e.page.Finish()
	}
	e.page = e.b.NewPage(e.cfg.PageWidth, e.cfg.PageHeight)
	e.contentPages = append(e.contentPages, e.page)
	e.y = e.cfg.Margin
}

// ensure starts a new page when height does not fit above the bottom
// margin. A fresh page is never broken again.
func (e *Engine) ensure(height float64) {
	if e.y+height > e.bottom() && e.y > e.cfg.Margin {
		e.newPage()
	}
}

// pdfY converts a top offset to PDF user space.
func (e *Engine) pdfY(top float64) float64 { return e.cfg.PageHeight - top }

func (e *Engine) drawTitlePage(title, author, language string) {
	p := e.b.NewPage(e.cfg.PageWidth, e.cfg.PageHeight)
	w, h := e.cfg.PageWidth, e.cfg.PageHeight

	p.DrawRectangle(0, h-BandHeight, w, BandHeight, builder.RectOptions{Fill: true, FillColor: accentColor})
	p.DrawText(e.cfg.Brand, e.cfg.Margin, h-BandHeight/2-LabelSize/2, builder.TextOptions{
		Font: FontBold, FontSize: LabelSize, Color: onAccentText,
	})

	// The title starts at 38% of the page height and rises toward the band
	// when it is too long; what still does not fit above the byline is cut.
	lh := TitleSize * HeadingLeading
	measure := func(s string) float64 { return e.bold.Measure(s, TitleSize) }
	top := BandHeight + e.cfg.Margin/2
	floor := e.bottom() - titleTail
	lines := Clamp(Wrap(title, e.contentWidth(), measure), int((floor-top)/lh), e.contentWidth(), measure)
	y := max(top, min(h*0.38, floor-float64(len(lines))*lh))
	for _, line := range lines {
		p.DrawText(line, (w-measure(line))/2, e.pdfY(y+TitleSize), builder.TextOptions{
			Font: FontBold, FontSize: TitleSize, Color: textColor, RTL: e.rtl,
		})
		y += lh
	}

	y += AuthorSize
	byline := "By " + author
	p.DrawText(byline, (w-e.regular.Measure(byline, AuthorSize))/2, e.pdfY(y+AuthorSize), builder.TextOptions{
		Font: FontRegular, FontSize: AuthorSize, Color: textColor, RTL: e.rtl,
	})
	y += AuthorSize * BodyLeading

	p.DrawLine(w/2-40, e.pdfY(y+8), w/2+40, e.pdfY(y+8), builder.LineOptions{StrokeColor: accentColor, LineWidth: 1.5})
	y += 8 + LabelSize

	if language != "" {
		label := "Language: " + language
		p.DrawText(label, (w-e.regular.Measure(label, LabelSize))/2, e.pdfY(y+LabelSize), builder.TextOptions{
			Font: FontRegular, FontSize: LabelSize, Color: mutedColor,
		})
	}
	p.Finish()
}

func (e *Engine) drawSection(s model.Section, images model.Images) {
	e.drawHeading(s.Heading)
	e.drawParagraph(s.Paragraph)
	for _, bullet := range s.Bullets {
		e.drawBullet(bullet)
	}
	if asset, ok := images.Lookup(s.ImageKeyword); ok {
		e.drawImage(s.ImageKeyword, asset)
	}
	e.y += SectionGap
}

// drawHeading keeps the wrapped heading and its rule on one page. The
// heading moves to a new page when less than max(HeadingReserve, its
// height) remains, and is clamped to the lines a fresh page can hold.
func (e *Engine) drawHeading(text string) {
	lh := HeadingSize * HeadingLeading
	measure := func(s string) float64 { return e.bold.Measure(s, HeadingSize) }
	fit := int((e.bottom() - e.cfg.Margin - headingTail) / lh)
	lines := Clamp(Wrap(text, e.contentWidth(), measure), fit, e.contentWidth(), measure)

	height := float64(len(lines))*lh + headingTail
	if e.y > e.cfg.Margin && e.remaining() < max(HeadingReserve, height) {
		e.newPage()
	}
	for _, line := range lines {
		e.drawLine(line, FontBold, HeadingSize, textColor, measure(line), 0)
		e.y += lh
	}
	e.y += headingTail - ruleGap
	e.page.DrawLine(e.cfg.Margin, e.pdfY(e.y), e.cfg.PageWidth-e.cfg.Margin, e.pdfY(e.y), builder.LineOptions{
		StrokeColor: ruleColor, LineWidth: 0.5,
	})
	e.y += ruleGap
}

// drawParagraph wraps text at the content width and draws it line by line,
// breaking the page before any line that would overflow.
func (e *Engine) drawParagraph(text string) {
	lh := BodySize * BodyLeading
	for _, line := range Wrap(text, e.contentWidth(), e.measureBody) {
		e.ensure(lh)
		if line != "" {
			e.drawLine(line, FontRegular, BodySize, textColor, e.measureBody(line), 0)
		}
		e.y += lh
	}
	e.y += BodySize * 0.5
}

// drawBullet wraps a bullet at the content width less the indent. The
// first line carries the bullet prefix; continuation lines align with the
// text after it.
func (e *Engine) drawBullet(text string) {
	lh := BodySize * BodyLeading
	prefixW := e.measureBody(BulletPrefix)
	for i, line := range Wrap(text, e.bulletWidth(prefixW), e.measureBody) {
		e.ensure(lh)
		if i == 0 {
			line = BulletPrefix + line
			e.drawLine(line, FontRegular, BodySize, textColor, e.measureBody(line), 0)
		} else if line != "" {
			e.drawLine(line, FontRegular, BodySize, textColor, e.measureBody(line), prefixW)
		}
		e.y += lh
	}
	e.y += BodySize * 0.25
}

// bulletWidth is the wrap width for bullet text behind a prefix prefixW
// wide. The indent is a minimum; a wider prefix takes its own width.
func (e *Engine) bulletWidth(prefixW float64) float64 {
	return e.contentWidth() - max(BulletIndent, prefixW)
}

func (e *Engine) measureBody(s string) float64 { return e.regular.Measure(s, BodySize) }

// drawLine draws one line whose top is the cursor. RTL lines are aligned
// to the right edge of the content box and indented from it.
func (e *Engine) drawLine(text, font string, size float64, color contentstream.Color, width, indent float64) {
	x := e.cfg.Margin + indent
	if e.rtl {
		x = e.cfg.PageWidth - e.cfg.Margin - indent - width
	}
	e.page.DrawText(text, x, e.pdfY(e.y+size), builder.TextOptions{
		Font: font, FontSize: size, Color: color, RTL: e.rtl,
	})
}

func (e *Engine) drawImage(keyword string, asset model.ImageAsset) {
	img, err := e.b.AddImage(asset.Data)
	if err != nil {
		e.logger.Warn("skipping image",
			observability.String("keyword", keyword),
			observability.Error("error", err))
		return
	}
	scale := min(e.contentWidth()/float64(asset.Width), MaxImageHeight/float64(asset.Height))
	dw, dh := float64(asset.Width)*scale, float64(asset.Height)*scale

	e.ensure(dh + CaptionAllowance)
	x := e.cfg.Margin + (e.contentWidth()-dw)/2
	e.page.DrawImage(img, x, e.pdfY(e.y+dh), dw, dh)
	e.y += dh + 4

	caption := asset.Caption(keyword)
	cw := e.regular.Measure(caption, CaptionSize)
	e.page.DrawText(caption, e.cfg.Margin+(e.contentWidth()-cw)/2, e.pdfY(e.y+CaptionSize), builder.TextOptions{
		Font: FontRegular, FontSize: CaptionSize, Color: mutedColor,
	})
	e.y += CaptionAllowance - 4
}

// drawFooters numbers content pages "n / N" below the bottom margin. The
// title page counts toward N but carries no footer.
func (e *Engine) drawFooters() {
	total := strconv.Itoa(e.b.PageCount())
	for _, p := range e.contentPages {
		label := strconv.Itoa(p.Index()+1) + " / " + total
		x := (e.cfg.PageWidth - e.regular.Measure(label, FooterSize)) / 2
		p.DrawText(label, x, e.cfg.Margin/2, builder.TextOptions{
			Font: FontRegular, FontSize: FooterSize, Color: mutedColor,
		})
	}
	if e.page != nil {
		e.page.Finish()
	}
}
