package ooxml

import (
	"encoding/xml"
	"fmt"
	"path"
)

// Relationship is one entry of a .rels part.
type Relationship struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr,omitempty"`
}

// Relationships is the relationship table of one part. IDs are allocated
// sequentially as rId1, rId2, ... in the order relationships are added, so
// callers reserve fixed slots simply by adding those first.
type Relationships struct {
	XMLName      xml.Name       `xml:"Relationships"`
	Namespace    string         `xml:"xmlns,attr"`
	Relationship []Relationship `xml:"Relationship"`
}

// NewRelationships returns an empty table.
func NewRelationships() *Relationships {
	return &Relationships{Namespace: NSRelationships}
}

// Add appends a relationship and returns its ID.
func (r *Relationships) Add(relType, target string) string {
	id := fmt.Sprintf("rId%d", len(r.Relationship)+1)
	r.Relationship = append(r.Relationship, Relationship{ID: id, Type: relType, Target: target})
	return id
}

// Lookup returns the relationship with the given ID.
func (r *Relationships) Lookup(id string) (Relationship, bool) {
	for _, rel := range r.Relationship {
		if rel.ID == id {
			return rel, true
		}
	}
	return Relationship{}, false
}

// OfType returns the relationships of relType, in order.
func (r *Relationships) OfType(relType string) []Relationship {
	var out []Relationship
	for _, rel := range r.Relationship {
		if rel.Type == relType {
			out = append(out, rel)
		}
	}
	return out
}

// Len returns the number of relationships.
func (r *Relationships) Len() int { return len(r.Relationship) }

// Marshal renders the table as a .rels part.
func (r *Relationships) Marshal() ([]byte, error) {
	if r.Namespace == "" {
		r.Namespace = NSRelationships
	}
	out, err := xml.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("marshal relationships: %w", err)
	}
	return append([]byte(XMLHeader), out...), nil
}

// RelsPartName returns the .rels part that holds the relationships of
// owner: word/document.xml becomes word/_rels/document.xml.rels. The empty
// owner names the package-level _rels/.rels.
func RelsPartName(owner string) string {
	if owner == "" {
		return "_rels/.rels"
	}
	dir, file := path.Split(owner)
	return dir + "_rels/" + file + ".rels"
}

// OwnerOf is the inverse of RelsPartName. ok is false when name is not a
// .rels part.
func OwnerOf(name string) (owner string, ok bool) {
	if name == "_rels/.rels" {
		return "", true
	}
	dir, file := path.Split(name)
	if path.Ext(file) != ".rels" || path.Base(dir) != "_rels" {
		return "", false
	}
	parent := path.Dir(path.Clean(dir))
	owner = file[:len(file)-len(".rels")]
	if parent != "." {
		owner = parent + "/" + owner
	}
	return owner, true
}

// ResolveTarget resolves a relationship target relative to its owner part.
func ResolveTarget(owner, target string) string {
	if len(target) > 0 && target[0] == '/' {
		return target[1:]
	}
	return path.Clean(path.Join(path.Dir(owner), target))
}
