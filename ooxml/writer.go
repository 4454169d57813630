package ooxml

import "bytes"

// Writer is a small buffered XML writer for content parts. Attributes are
// passed as key/value pairs and escaped; an odd trailing key is ignored.
//
//	w := NewWriter()
//	w.Open("w:p").Empty("w:pStyle", "w:val", "Title").Close()
type Writer struct {
	buf   bytes.Buffer
	stack []string
}

// NewWriter returns a writer that has already emitted the XML header.
func NewWriter() *Writer {
	w := &Writer{}
	w.buf.WriteString(XMLHeader)
	return w
}

func (w *Writer) tag(name string, attrs []string) {
	w.buf.WriteByte('<')
	w.buf.WriteString(name)
	for i := 0; i+1 < len(attrs); i += 2 {
		w.buf.WriteByte(' ')
		w.buf.WriteString(attrs[i])
		w.buf.WriteString(`="`)
		w.buf.WriteString(EscapeAttr(attrs[i+1]))
		w.buf.WriteByte('"')
	}
}

// Open starts an element that a later Close ends.
func (w *Writer) Open(name string, attrs ...string) *Writer {
	w.tag(name, attrs)
	w.buf.WriteByte('>')
	w.stack = append(w.stack, name)
	return w
}

// Empty writes a self-closing element.
func (w *Writer) Empty(name string, attrs ...string) *Writer {
	w.tag(name, attrs)
	w.buf.WriteString("/>")
	return w
}

// Close ends the innermost open element.
func (w *Writer) Close() *Writer {
	if len(w.stack) == 0 {
		return w
	}
	name := w.stack[len(w.stack)-1]
	w.stack = w.stack[:len(w.stack)-1]
	w.buf.WriteString("</")
	w.buf.WriteString(name)
	w.buf.WriteByte('>')
	return w
}

// Text writes escaped character data.
func (w *Writer) Text(s string) *Writer {
	w.buf.WriteString(EscapeText(s))
	return w
}

// Element writes <name attrs>text</name>.
func (w *Writer) Element(name, text string, attrs ...string) *Writer {
	return w.Open(name, attrs...).Text(text).Close()
}

// Raw writes s unescaped. It is meant for fixed markup.
func (w *Writer) Raw(s string) *Writer {
	w.buf.WriteString(s)
	return w
}

// Depth returns the number of open elements.
func (w *Writer) Depth() int { return len(w.stack) }

// Bytes closes any open elements and returns the document.
func (w *Writer) Bytes() []byte {
	for len(w.stack) > 0 {
		w.Close()
	}
	return w.buf.Bytes()
}
