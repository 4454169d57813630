// Package writer serialises a set of PDF objects into a complete file with
// a classic cross-reference table.
package writer

import (
	"bytes"
	"compress/zlib"
	"crypto/sha1"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
)

type PDFVersion string

const (
	PDF14 PDFVersion = "1.4"
	PDF17 PDFVersion = "1.7"
)

// Config controls serialisation.
type Config struct {
	Version PDFVersion
	// Compress applies FlateDecode to streams that have no filter yet.
	Compress bool
}

// Document is an arena of indirect objects. Object numbers are assigned in
// allocation order starting at 1.
type Document struct {
	objects []Object
	Root    Ref
	Info    Ref
}

// New returns an empty document.
func New() *Document { return &Document{} }

// Reserve allocates an object number to be filled later with Set.
func (d *Document) Reserve() Ref {
	d.objects = append(d.objects, nil)
	return Ref{Num: len(d.objects)}
}

// Add allocates a number for obj.
func (d *Document) Add(obj Object) Ref {
	d.objects = append(d.objects, obj)
	return Ref{Num: len(d.objects)}
}

// Set fills a reserved object.
func (d *Document) Set(ref Ref, obj Object) {
	if ref.Num >= 1 && ref.Num <= len(d.objects) {
		d.objects[ref.Num-1] = obj
	}
}

// Len returns the number of allocated objects.
func (d *Document) Len() int { return len(d.objects) }

// Write serialises the document. The whole file is assembled in memory and
// written to out in a single call, so a failure never leaves partial output
// behind in the buffer.
func (d *Document) Write(out io.Writer, cfg Config) error {
	if d.Root.Num == 0 {
		return errors.New("document has no catalog")
	}
	version := cfg.Version
	if version == "" {
		version = PDF17
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-" + string(version) + "\n%\xE2\xE3\xCF\xD3\n")

	offsets := make([]int, len(d.objects))
	for i, obj := range d.objects {
		if obj == nil {
			return fmt.Errorf("object %d reserved but never set", i+1)
		}
		if s, ok := obj.(*Stream); ok && cfg.Compress {
			if _, filtered := s.Dict["Filter"]; !filtered {
				c, err := deflate(s.Data)
				if err != nil {
					return fmt.Errorf("compress object %d: %w", i+1, err)
				}
				// Compress only when it helps.
				if len(c) < len(s.Data) {
					obj = &Stream{Dict: withFilter(s.Dict), Data: c}
				}
			}
		}
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n", i+1)
		obj.write(&buf)
		buf.WriteString("\nendobj\n")
	}

	id := documentID(buf.Bytes())
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(d.objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}

	trailer := Dict{
		"Size": Int(len(d.objects) + 1),
		"Root": d.Root,
		"ID":   Array{HexString(id), HexString(id)},
	}
	if d.Info.Num != 0 {
		trailer["Info"] = d.Info
	}
	buf.WriteString("trailer\n")
	trailer.write(&buf)
	fmt.Fprintf(&buf, "\nstartxref\n%d\n%%%%EOF\n", xref)

	_, err := out.Write(buf.Bytes())
	return err
}

// Bytes serialises the document into a new slice.
func (d *Document) Bytes(cfg Config) ([]byte, error) {
	var buf bytes.Buffer
	if err := d.Write(&buf, cfg); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// documentID derives the file identifier from the body so identical input
// yields identical output.
func documentID(body []byte) []byte {
	sum := sha1.Sum(body)
	id := uuid.NewSHA1(uuid.NameSpaceOID, sum[:])
	return id[:]
}

func deflate(data []byte) ([]byte, error) {
	var b bytes.Buffer
	w := zlib.NewWriter(&b)
	if _, err := w.Write(data); err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

func withFilter(d Dict) Dict {
	out := make(Dict, len(d)+1)
	for k, v := range d {
		out[k] = v
	}
	out["Filter"] = Name("FlateDecode")
	return out
}
