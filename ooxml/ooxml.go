// Package ooxml assembles Open Packaging Conventions archives: parts,
// media, relationship tables and the [Content_Types].xml manifest. It knows
// nothing about word processing or presentations; the docx and pptx
// packages feed it parts.
package ooxml

import (
	"encoding/base64"
	"encoding/xml"
	"errors"
	"strings"
)

// XMLHeader starts every XML part.
const XMLHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

// Namespaces.
const (
	NSContentTypes  = "http://schemas.openxmlformats.org/package/2006/content-types"
	NSRelationships = "http://schemas.openxmlformats.org/package/2006/relationships"
	NSOfficeRels    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	NSDrawingML     = "http://schemas.openxmlformats.org/drawingml/2006/main"
	NSPicture       = "http://schemas.openxmlformats.org/drawingml/2006/picture"
)

// Relationship types.
const (
	RelOfficeDocument = NSOfficeRels + "/officeDocument"
	RelImage          = NSOfficeRels + "/image"
	RelStyles         = NSOfficeRels + "/styles"
	RelNumbering      = NSOfficeRels + "/numbering"
	RelSettings       = NSOfficeRels + "/settings"
	RelSlide          = NSOfficeRels + "/slide"
	RelSlideLayout    = NSOfficeRels + "/slideLayout"
	RelSlideMaster    = NSOfficeRels + "/slideMaster"
	RelTheme          = NSOfficeRels + "/theme"
	RelPresProps      = NSOfficeRels + "/presProps"
	RelViewProps      = NSOfficeRels + "/viewProps"
	RelTableStyles    = NSOfficeRels + "/tableStyles"
	RelExtendedProps  = NSOfficeRels + "/extended-properties"
	RelCoreProps      = "http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties"
)

// Content types shared by both composers.
const (
	ContentTypeRels = "application/vnd.openxmlformats-package.relationships+xml"
	ContentTypeXML  = "application/xml"
	ContentTypeCore = "application/vnd.openxmlformats-package.core-properties+xml"
	ContentTypeApp  = "application/vnd.openxmlformats-officedocument.extended-properties+xml"
)

var (
	// ErrDuplicatePart is returned when two parts share a name.
	ErrDuplicatePart = errors.New("duplicate part name")
	// ErrEmptyPartName is returned for parts or media without a name.
	ErrEmptyPartName = errors.New("empty part name")
)

// EscapeText escapes s for use as XML character data.
func EscapeText(s string) string {
	var sb strings.Builder
	_ = xml.EscapeText(&sb, []byte(s))
	return sb.String()
}

// EscapeAttr escapes s for use inside a double-quoted attribute value.
// xml.EscapeText already covers quotes, tabs and newlines.
func EscapeAttr(s string) string {
	return EscapeText(s)
}

// Base64 encodes a finished package for transports that cannot carry
// binary.
func Base64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}
