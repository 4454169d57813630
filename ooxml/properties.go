package ooxml

import (
	"strconv"
	"time"
)

// CoreProperties fills docProps/core.xml.
type CoreProperties struct {
	Title    string
	Creator  string
	Language string
	// Created is omitted when zero so that output stays reproducible.
	Created time.Time
}

// AppProperties fills docProps/app.xml.
type AppProperties struct {
	Application string
	// Slides is written only for presentations.
	Slides int
}

// SetProperties stores both docProps parts and links them from the package
// relationships.
func (p *Package) SetProperties(core CoreProperties, app AppProperties) error {
	if err := p.AddPart("docProps/core.xml", ContentTypeCore, core.marshal()); err != nil {
		return err
	}
	if err := p.AddPart("docProps/app.xml", ContentTypeApp, app.marshal()); err != nil {
		return err
	}
	p.Relationships.Add(RelCoreProps, "docProps/core.xml")
	p.Relationships.Add(RelExtendedProps, "docProps/app.xml")
	return nil
}

func (c CoreProperties) marshal() []byte {
	w := NewWriter()
	w.Open("cp:coreProperties",
		"xmlns:cp", "http://schemas.openxmlformats.org/package/2006/metadata/core-properties",
		"xmlns:dc", "http://purl.org/dc/elements/1.1/",
		"xmlns:dcterms", "http://purl.org/dc/terms/",
		"xmlns:xsi", "http://www.w3.org/2001/XMLSchema-instance")
	w.Element("dc:title", c.Title)
	if c.Creator != "" {
		w.Element("dc:creator", c.Creator)
		w.Element("cp:lastModifiedBy", c.Creator)
	}
	if c.Language != "" {
		w.Element("dc:language", c.Language)
	}
	if !c.Created.IsZero() {
		stamp := c.Created.UTC().Format(time.RFC3339)
		w.Element("dcterms:created", stamp, "xsi:type", "dcterms:W3CDTF")
		w.Element("dcterms:modified", stamp, "xsi:type", "dcterms:W3CDTF")
	}
	return w.Bytes()
}

func (a AppProperties) marshal() []byte {
	w := NewWriter()
	w.Open("Properties",
		"xmlns", "http://schemas.openxmlformats.org/officeDocument/2006/extended-properties",
		"xmlns:vt", "http://schemas.openxmlformats.org/officeDocument/2006/docPropsVTypes")
	w.Element("Application", a.Application)
	if a.Slides > 0 {
		w.Element("Slides", strconv.Itoa(a.Slides))
	}
	return w.Bytes()
}
