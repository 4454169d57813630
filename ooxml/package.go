package ooxml

import (
	"archive/zip"
	"bytes"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/wudi/docforge/model"
)

// Part is one XML part of the package. A part with a content type gets an
// Override in [Content_Types].xml; one without relies on a Default.
type Part struct {
	Name        string
	ContentType string
	Data        []byte
}

// Media is an embedded binary such as an image.
type Media struct {
	Name   string
	Format model.ImageFormat
	Data   []byte
}

// Extension returns the file extension of the media name, without dot.
func (m Media) Extension() string {
	return strings.TrimPrefix(path.Ext(m.Name), ".")
}

// Package collects the parts of one OPC archive. It is not safe for
// concurrent use; every composition owns its own Package.
type Package struct {
	Parts []Part
	Media []Media
	// Relationships is the package-level table written to _rels/.rels.
	Relationships *Relationships

	names map[string]bool
}

// New returns an empty package.
func New() *Package {
	return &Package{
		Relationships: NewRelationships(),
		names:         make(map[string]bool),
	}
}

func (p *Package) claim(name string) error {
	if name == "" {
		return ErrEmptyPartName
	}
	if p.names == nil {
		p.names = make(map[string]bool)
	}
	if p.names[name] || name == contentTypesName || name == RelsPartName("") {
		return fmt.Errorf("%w: %s", ErrDuplicatePart, name)
	}
	p.names[name] = true
	return nil
}

// AddPart stores an XML part.
func (p *Package) AddPart(name, contentType string, data []byte) error {
	if err := p.claim(name); err != nil {
		return err
	}
	p.Parts = append(p.Parts, Part{Name: name, ContentType: contentType, Data: data})
	return nil
}

// AddRelationships stores the relationship table of owner.
func (p *Package) AddRelationships(owner string, rels *Relationships) error {
	data, err := rels.Marshal()
	if err != nil {
		return err
	}
	return p.AddPart(RelsPartName(owner), "", data)
}

// AddMedia stores a binary under name. The format is sniffed from data.
func (p *Package) AddMedia(name string, data []byte) (Media, error) {
	if err := p.claim(name); err != nil {
		return Media{}, err
	}
	m := Media{Name: name, Format: model.SniffFormat(data), Data: data}
	p.Media = append(p.Media, m)
	return m, nil
}

// SetMainPart stores the main document part and links it from the package
// relationships.
func (p *Package) SetMainPart(name, contentType string, data []byte) error {
	if err := p.AddPart(name, contentType, data); err != nil {
		return err
	}
	p.Relationships.Add(RelOfficeDocument, name)
	return nil
}

// ContentTypes derives the manifest from the stored parts and media.
func (p *Package) ContentTypes() *ContentTypes {
	ct := &ContentTypes{Namespace: NSContentTypes}
	ct.AddDefault("rels", ContentTypeRels)
	ct.AddDefault("xml", ContentTypeXML)
	for _, m := range p.Media {
		ct.AddDefault(m.Extension(), m.Format.ContentType())
	}
	for _, part := range p.Parts {
		if part.ContentType != "" {
			ct.AddOverride(part.Name, part.ContentType)
		}
	}
	return ct
}

const contentTypesName = "[Content_Types].xml"

// zipEpoch is stamped on every entry so identical input gives identical
// bytes.
var zipEpoch = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

// Build assembles the archive in memory. The bytes are returned only once
// the zip writer has been closed successfully.
func (p *Package) Build() ([]byte, error) {
	ctData, err := p.ContentTypes().Marshal()
	if err != nil {
		return nil, err
	}
	relsData, err := p.Relationships.Marshal()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	write := func(name string, method uint16, data []byte) error {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: method, Modified: zipEpoch})
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", name, err)
		}
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
		return nil
	}

	if err := write(contentTypesName, zip.Deflate, ctData); err != nil {
		return nil, err
	}
	if err := write(RelsPartName(""), zip.Deflate, relsData); err != nil {
		return nil, err
	}
	for _, part := range p.Parts {
		if err := write(part.Name, zip.Deflate, part.Data); err != nil {
			return nil, err
		}
	}
	for _, m := range p.Media {
		if err := write(m.Name, zip.Store, m.Data); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to close zip: %w", err)
	}
	return buf.Bytes(), nil
}
