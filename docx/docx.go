// Package docx composes WordprocessingML packages from the document model.
//
// The body is a title, an author line and a separator rule followed by one
// Heading1 block per section with its paragraph, bullet list and optional
// inline picture. Relationship IDs are fixed: rId1 is the style sheet, rId2
// the numbering definitions, then one ID per embedded image in section
// order, and the settings part last.
package docx

import (
	"fmt"

	"github.com/wudi/docforge/config"
	"github.com/wudi/docforge/model"
	"github.com/wudi/docforge/observability"
	"github.com/wudi/docforge/ooxml"
	"github.com/wudi/docforge/units"
)

// MIMEType is the media type of a finished package.
const MIMEType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// Part content types.
const (
	ContentTypeDocument  = "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"
	ContentTypeStyles    = "application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"
	ContentTypeNumbering = "application/vnd.openxmlformats-officedocument.wordprocessingml.numbering+xml"
	ContentTypeSettings  = "application/vnd.openxmlformats-officedocument.wordprocessingml.settings+xml"
)

// Part names.
const (
	documentPart  = "word/document.xml"
	stylesPart    = "word/styles.xml"
	numberingPart = "word/numbering.xml"
	settingsPart  = "word/settings.xml"
)

// Inline pictures are drawn at 5 x 3 inches.
var (
	ImageWidthEMU  = units.InchesToEMU(5)
	ImageHeightEMU = units.InchesToEMU(3)
)

// BulletNumID is the single numbering instance shared by every bullet.
const BulletNumID = 1

// Option configures a composition.
type Option func(*composer)

// WithConfig sets the brand and page geometry.
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

	rtl    bool
	pkg    *ooxml.Package
	rels   *ooxml.Relationships
	images int
}

// Compose renders doc as a .docx package. The document is normalised
// first, so an empty model still yields a title and a placeholder section.
// Images are embedded as given; a keyword missing from images is skipped.
func Compose(doc model.Document, images model.Images, opts ...Option) ([]byte, error) {
	c := &composer{cfg: config.Default(), logger: observability.NopLogger{}}
	for _, opt := range opts {
		opt(c)
	}
	doc = model.Normalize(doc)
	c.rtl = doc.IsRTL()
	c.pkg = ooxml.New()
	c.rels = ooxml.NewRelationships()
	c.rels.Add(ooxml.RelStyles, "styles.xml")
	c.rels.Add(ooxml.RelNumbering, "numbering.xml")

	body, err := c.document(doc, images)
	if err != nil {
		return nil, err
	}
	c.rels.Add(ooxml.RelSettings, "settings.xml")

	author := doc.AuthorOr(c.cfg.Brand)
	steps := []func() error{
		func() error { return c.pkg.SetMainPart(documentPart, ContentTypeDocument, body) },
		func() error { return c.pkg.AddPart(stylesPart, ContentTypeStyles, styles()) },
		func() error { return c.pkg.AddPart(numberingPart, ContentTypeNumbering, numbering()) },
		func() error { return c.pkg.AddPart(settingsPart, ContentTypeSettings, settings()) },
		func() error { return c.pkg.AddRelationships(documentPart, c.rels) },
		func() error {
			return c.pkg.SetProperties(
				ooxml.CoreProperties{Title: doc.Title, Creator: author, Language: doc.Language},
				ooxml.AppProperties{Application: c.cfg.Brand},
			)
		},
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, fmt.Errorf("assemble docx: %w", err)
		}
	}

	out, err := c.pkg.Build()
	if err != nil {
		return nil, fmt.Errorf("build docx: %w", err)
	}
	c.logger.Debug("docx composed",
		observability.Int(observability.MetricPartCount, len(c.pkg.Parts)),
		observability.Int(observability.MetricMediaCount, len(c.pkg.Media)),
		observability.Int(observability.MetricOutputBytes, len(out)))
	return out, nil
}

// addImage stores the asset as word/media/imageN.ext and returns the
// relationship ID that references it.
func (c *composer) addImage(asset model.ImageAsset) (string, error) {
	c.images++
	file := fmt.Sprintf("image%d.%s", c.images, asset.Format.Extension())
	if _, err := c.pkg.AddMedia("word/media/"+file, asset.Data); err != nil {
		return "", err
	}
	return c.rels.Add(ooxml.RelImage, "media/"+file), nil
}
