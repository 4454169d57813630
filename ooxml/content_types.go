package ooxml

import (
	"encoding/xml"
	"fmt"
)

// ContentTypes is the [Content_Types].xml manifest.
type ContentTypes struct {
	XMLName   xml.Name   `xml:"Types"`
	Namespace string     `xml:"xmlns,attr"`
	Defaults  []Default  `xml:"Default"`
	Overrides []Override `xml:"Override"`
}

// Default maps a file extension to a content type.
type Default struct {
	Extension   string `xml:"Extension,attr"`
	ContentType string `xml:"ContentType,attr"`
}

// Override assigns a content type to one part.
type Override struct {
	PartName    string `xml:"PartName,attr"`
	ContentType string `xml:"ContentType,attr"`
}

// AddDefault declares ext unless it is already declared.
func (c *ContentTypes) AddDefault(ext, contentType string) {
	for _, d := range c.Defaults {
		if d.Extension == ext {
			return
		}
	}
	c.Defaults = append(c.Defaults, Default{Extension: ext, ContentType: contentType})
}

// AddOverride assigns contentType to the part at name.
func (c *ContentTypes) AddOverride(name, contentType string) {
	c.Overrides = append(c.Overrides, Override{PartName: "/" + name, ContentType: contentType})
}

// HasDefault reports whether ext is declared.
func (c *ContentTypes) HasDefault(ext string) bool {
	for _, d := range c.Defaults {
		if d.Extension == ext {
			return true
		}
	}
	return false
}

// Marshal renders the manifest.
func (c *ContentTypes) Marshal() ([]byte, error) {
	if c.Namespace == "" {
		c.Namespace = NSContentTypes
	}
	out, err := xml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal content types: %w", err)
	}
	return append([]byte(XMLHeader), out...), nil
}
