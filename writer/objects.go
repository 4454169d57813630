package writer

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"

	"github.com/wudi/docforge/contentstream"
)

// Object is a PDF object that can serialise itself.
type Object interface {
	write(b *bytes.Buffer)
}

// Ref identifies an indirect object.
type Ref struct {
	Num int
}

func (r Ref) String() string { return fmt.Sprintf("%d 0 R", r.Num) }

func (r Ref) write(b *bytes.Buffer) { b.WriteString(r.String()) }

type (
	// Name is a PDF name, written with a leading slash.
	Name string
	// Int is an integer number.
	Int int64
	// Real is a real number written with at most four decimals.
	Real float64
	// Bool is a boolean.
	Bool bool
	// Text is a literal string; bytes outside printable ASCII are escaped.
	Text string
	// HexString is a string written in hex form.
	HexString []byte
	// Array is a PDF array.
	Array []Object
)

func (n Name) write(b *bytes.Buffer) {
	b.WriteByte('/')
	for i := 0; i < len(n); i++ {
		c := n[i]
		if c < '!' || c > '~' || c == '#' || bytes.IndexByte([]byte("()<>[]{}/%"), c) >= 0 {
			fmt.Fprintf(b, "#%02X", c)
			continue
		}
		b.WriteByte(c)
	}
}

func (i Int) write(b *bytes.Buffer) { b.WriteString(strconv.FormatInt(int64(i), 10)) }

func (r Real) write(b *bytes.Buffer) { b.WriteString(contentstream.FormatNumber(float64(r))) }

func (v Bool) write(b *bytes.Buffer) {
	if v {
		b.WriteString("true")
		return
	}
	b.WriteString("false")
}

func (s Text) write(b *bytes.Buffer) {
	b.WriteByte('(')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '\\', '(', ')':
			b.WriteByte('\\')
			b.WriteByte(c)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if c < 0x20 || c >= 0x7F {
				fmt.Fprintf(b, "\\%03o", c)
			} else {
				b.WriteByte(c)
			}
		}
	}
	b.WriteByte(')')
}

func (h HexString) write(b *bytes.Buffer) {
	b.WriteByte('<')
	b.WriteString(hex.EncodeToString(h))
	b.WriteByte('>')
}

func (a Array) write(b *bytes.Buffer) {
	b.WriteByte('[')
	for i, o := range a {
		if i > 0 {
			b.WriteByte(' ')
		}
		writeObject(b, o)
	}
	b.WriteByte(']')
}

// Dict is a PDF dictionary. Keys are written in sorted order so output is
// deterministic.
type Dict map[Name]Object

func (d Dict) write(b *bytes.Buffer) {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	b.WriteString("<<")
	for _, k := range keys {
		Name(k).write(b)
		b.WriteByte(' ')
		writeObject(b, d[Name(k)])
	}
	b.WriteString(">>")
}

// Stream is a dictionary followed by data. Length is set on write.
type Stream struct {
	Dict Dict
	Data []byte
}

func (s *Stream) write(b *bytes.Buffer) {
	d := make(Dict, len(s.Dict)+1)
	for k, v := range s.Dict {
		d[k] = v
	}
	d["Length"] = Int(len(s.Data))
	d.write(b)
	b.WriteString("\nstream\n")
	b.Write(s.Data)
	b.WriteString("\nendstream")
}

func writeObject(b *bytes.Buffer, o Object) {
	if o == nil {
		b.WriteString("null")
		return
	}
	o.write(b)
}

// UTF16Text encodes s as a UTF-16BE text string with a byte order mark,
// which PDF requires for text outside PDFDocEncoding.
func UTF16Text(s string) Object {
	ascii := true
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			ascii = false
			break
		}
	}
	if ascii {
		return Text(s)
	}
	out := []byte{0xFE, 0xFF}
	for _, r := range s {
		if r >= 0x10000 {
			r -= 0x10000
			hi, lo := 0xD800+(r>>10), 0xDC00+(r&0x3FF)
			out = append(out, byte(hi>>8), byte(hi), byte(lo>>8), byte(lo))
			continue
		}
		out = append(out, byte(r>>8), byte(r))
	}
	return HexString(out)
}
