// Package pptx composes PresentationML slide decks from the document model:
// a dark title slide, one content slide per model slide and a closing
// slide. Every slide uses the single blank layout through rId1; a slide
// with a picture references it through rId2.
package pptx

import (
	"fmt"

	"github.com/wudi/docforge/config"
	"github.com/wudi/docforge/model"
	"github.com/wudi/docforge/observability"
	"github.com/wudi/docforge/ooxml"
)

// MIMEType is the media type of a finished deck.
const MIMEType = "application/vnd.openxmlformats-officedocument.presentationml.presentation"

// Part content types.
const (
	ContentTypePresentation = "application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml"
	ContentTypeSlide        = "application/vnd.openxmlformats-officedocument.presentationml.slide+xml"
	ContentTypeSlideLayout  = "application/vnd.openxmlformats-officedocument.presentationml.slideLayout+xml"
	ContentTypeSlideMaster  = "application/vnd.openxmlformats-officedocument.presentationml.slideMaster+xml"
	ContentTypeTheme        = "application/vnd.openxmlformats-officedocument.theme+xml"
	ContentTypePresProps    = "application/vnd.openxmlformats-officedocument.presentationml.presProps+xml"
	ContentTypeViewProps    = "application/vnd.openxmlformats-officedocument.presentationml.viewProps+xml"
	ContentTypeTableStyles  = "application/vnd.openxmlformats-officedocument.presentationml.tableStyles+xml"
)

// Slide size, 13.333 x 7.5 inches.
const (
	SlideWidth  int64 = 12192000
	SlideHeight int64 = 6858000
)

// ClosingText is shown on the last slide.
const ClosingText = "Thank You"

const (
	presentationPart = "ppt/presentation.xml"
	masterPart       = "ppt/slideMasters/slideMaster1.xml"
	layoutPart       = "ppt/slideLayouts/slideLayout1.xml"
	themePart        = "ppt/theme/theme1.xml"
)

// BulletFontSize returns the body text size in points for a slide with n
// bullets: 11 above twelve bullets, 13 above eight, 16 otherwise.
func BulletFontSize(n int) float64 {
	switch {
	case n > 12:
		return 11
	case n > 8:
		return 13
	default:
		return 16
	}
}

// Option configures a composition.
type Option func(*composer)

// WithConfig sets the brand shown on the title slide.
func WithConfig(cfg *config.Config) Option {
	return func(c *composer) {
		if cfg != nil {
			c.cfg = cfg
		}
	}
}

// WithLogger sets the logger used for part counts.
func WithLogger(l observability.Logger) Option {
	return func(c *composer) { c.logger = observability.OrNop(l) }
}

type composer struct {
	cfg    *config.Config
	logger observability.Logger

	rtl   bool
	pkg   *ooxml.Package
	media map[string]string // keyword to media file name
}

// Compose renders doc as a .pptx package. Slides come from doc.Slides, or
// from the sections when the document has none.
func Compose(doc model.Document, images model.Images, opts ...Option) ([]byte, error) {
	c := &composer{
		cfg:    config.Default(),
		logger: observability.NopLogger{},
		media:  make(map[string]string),
	}
	for _, opt := range opts {
		opt(c)
	}
	doc = model.Normalize(doc)
	c.rtl = doc.IsRTL()
	c.pkg = ooxml.New()

	var slides [][]byte
	slideRels := make([]*ooxml.Relationships, 0, len(doc.Slides)+2)
	add := func(body []byte, rels *ooxml.Relationships) {
		slides = append(slides, body)
		slideRels = append(slideRels, rels)
	}

	author := doc.AuthorOr(c.cfg.Brand)
	add(c.titleSlide(doc.Title, author), layoutRels())
	for _, s := range doc.Slides {
		rels := layoutRels()
		var picture string
		if asset, ok := images.Lookup(s.ImageKeyword); ok {
			file, err := c.addImage(s.ImageKeyword, asset)
			if err != nil {
				return nil, fmt.Errorf("assemble pptx: %w", err)
			}
			picture = rels.Add(ooxml.RelImage, "../media/"+file)
		}
		add(c.contentSlide(s, picture), rels)
	}
	add(c.closingSlide(), layoutRels())

	presRels := ooxml.NewRelationships()
	presRels.Add(ooxml.RelSlideMaster, "slideMasters/slideMaster1.xml")
	slideIDs := make([]string, len(slides))
	for i := range slides {
		slideIDs[i] = presRels.Add(ooxml.RelSlide, fmt.Sprintf("slides/slide%d.xml", i+1))
	}
	presRels.Add(ooxml.RelPresProps, "presProps.xml")
	presRels.Add(ooxml.RelViewProps, "viewProps.xml")
	presRels.Add(ooxml.RelTheme, "theme/theme1.xml")
	presRels.Add(ooxml.RelTableStyles, "tableStyles.xml")

	masterRels := ooxml.NewRelationships()
	masterRels.Add(ooxml.RelSlideLayout, "../slideLayouts/slideLayout1.xml")
	masterRels.Add(ooxml.RelTheme, "../theme/theme1.xml")

	layoutOwnRels := ooxml.NewRelationships()
	layoutOwnRels.Add(ooxml.RelSlideMaster, "../slideMasters/slideMaster1.xml")

	steps := []func() error{
		func() error {
			return c.pkg.SetMainPart(presentationPart, ContentTypePresentation, presentation("rId1", slideIDs))
		},
		func() error { return c.pkg.AddRelationships(presentationPart, presRels) },
		func() error { return c.pkg.AddPart(masterPart, ContentTypeSlideMaster, slideMaster()) },
		func() error { return c.pkg.AddRelationships(masterPart, masterRels) },
		func() error { return c.pkg.AddPart(layoutPart, ContentTypeSlideLayout, slideLayout()) },
		func() error { return c.pkg.AddRelationships(layoutPart, layoutOwnRels) },
		func() error { return c.pkg.AddPart(themePart, ContentTypeTheme, theme()) },
		func() error { return c.pkg.AddPart("ppt/presProps.xml", ContentTypePresProps, presProps()) },
		func() error { return c.pkg.AddPart("ppt/viewProps.xml", ContentTypeViewProps, viewProps()) },
		func() error { return c.pkg.AddPart("ppt/tableStyles.xml", ContentTypeTableStyles, tableStyles()) },
	}
	for i := range slides {
		name := fmt.Sprintf("ppt/slides/slide%d.xml", i+1)
		body, rels := slides[i], slideRels[i]
		steps = append(steps,
			func() error { return c.pkg.AddPart(name, ContentTypeSlide, body) },
			func() error { return c.pkg.AddRelationships(name, rels) },
		)
	}
	steps = append(steps, func() error {
		return c.pkg.SetProperties(
			ooxml.CoreProperties{Title: doc.Title, Creator: author, Language: doc.Language},
			ooxml.AppProperties{Application: c.cfg.Brand, Slides: len(slides)},
		)
	})
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, fmt.Errorf("assemble pptx: %w", err)
		}
	}

	out, err := c.pkg.Build()
	if err != nil {
		return nil, fmt.Errorf("build pptx: %w", err)
	}
	c.logger.Debug("pptx composed",
		observability.Int("slides", len(slides)),
		observability.Int(observability.MetricPartCount, len(c.pkg.Parts)),
		observability.Int(observability.MetricMediaCount, len(c.pkg.Media)),
		observability.Int(observability.MetricOutputBytes, len(out)))
	return out, nil
}

// layoutRels returns a slide relationship table with the layout as rId1.
func layoutRels() *ooxml.Relationships {
	r := ooxml.NewRelationships()
	r.Add(ooxml.RelSlideLayout, "../slideLayouts/slideLayout1.xml")
	return r
}

// addImage stores the asset once per keyword and returns its file name
// under ppt/media.
func (c *composer) addImage(keyword string, asset model.ImageAsset) (string, error) {
	if file, ok := c.media[keyword]; ok {
		return file, nil
	}
	file := fmt.Sprintf("image%d.%s", len(c.media)+1, asset.Format.Extension())
	if _, err := c.pkg.AddMedia("ppt/media/"+file, asset.Data); err != nil {
		return "", err
	}
	c.media[keyword] = file
	return file, nil
}
