// Package contentstream writes and reads PDF page content streams.
package contentstream

import (
	"bytes"
	"encoding/hex"
	"math"
	"strconv"
)

// Writer accumulates content-stream operators. The zero value is ready to
// use. Methods return the writer so calls can be chained.
type Writer struct {
	buf bytes.Buffer
}

// Bytes returns the stream written so far.
func (w *Writer) Bytes() []byte { return w.buf.Bytes() }

// Len returns the number of bytes written.
func (w *Writer) Len() int { return w.buf.Len() }

func (w *Writer) op(operator string, operands ...float64) *Writer {
	for _, v := range operands {
		w.buf.WriteString(FormatNumber(v))
		w.buf.WriteByte(' ')
	}
	w.buf.WriteString(operator)
	w.buf.WriteByte('\n')
	return w
}

// Save pushes the graphics state (q).
func (w *Writer) Save() *Writer { return w.op("q") }

// Restore pops the graphics state (Q).
func (w *Writer) Restore() *Writer { return w.op("Q") }

// Transform concatenates a matrix to the CTM (cm).
func (w *Writer) Transform(a, b, c, d, e, f float64) *Writer {
	return w.op("cm", a, b, c, d, e, f)
}

// SetLineWidth sets the stroke width (w).
func (w *Writer) SetLineWidth(width float64) *Writer { return w.op("w", width) }

// SetLineCap sets the line cap (J).
func (w *Writer) SetLineCap(c LineCap) *Writer { return w.op("J", float64(c)) }

// SetStrokeColor sets the RGB stroke colour (RG).
func (w *Writer) SetStrokeColor(c Color) *Writer { return w.op("RG", c.R, c.G, c.B) }

// SetFillColor sets the RGB fill colour (rg).
func (w *Writer) SetFillColor(c Color) *Writer { return w.op("rg", c.R, c.G, c.B) }

// MoveTo begins a subpath (m).
func (w *Writer) MoveTo(x, y float64) *Writer { return w.op("m", x, y) }

// LineTo appends a line segment (l).
func (w *Writer) LineTo(x, y float64) *Writer { return w.op("l", x, y) }

// Rect appends a rectangle (re).
func (w *Writer) Rect(x, y, width, height float64) *Writer {
	return w.op("re", x, y, width, height)
}

// Stroke strokes the path (S).
func (w *Writer) Stroke() *Writer { return w.op("S") }

// Fill fills the path (f).
func (w *Writer) Fill() *Writer { return w.op("f") }

// FillStroke fills and strokes the path (B).
func (w *Writer) FillStroke() *Writer { return w.op("B") }

// BeginText starts a text object (BT).
func (w *Writer) BeginText() *Writer { return w.op("BT") }

// EndText ends a text object (ET).
func (w *Writer) EndText() *Writer { return w.op("ET") }

// SetFont selects a font resource and size (Tf).
func (w *Writer) SetFont(name string, size float64) *Writer {
	w.buf.WriteByte('/')
	w.buf.WriteString(name)
	w.buf.WriteByte(' ')
	return w.op("Tf", size)
}

// SetTextMatrix sets the text matrix (Tm).
func (w *Writer) SetTextMatrix(a, b, c, d, e, f float64) *Writer {
	return w.op("Tm", a, b, c, d, e, f)
}

// ShowText shows an encoded string (Tj). The string is written in hex.
func (w *Writer) ShowText(encoded []byte) *Writer {
	writeHex(&w.buf, encoded)
	w.buf.WriteByte(' ')
	return w.op("Tj")
}

// ShowTextAdjusted shows a TJ array.
func (w *Writer) ShowTextAdjusted(elems []TJElement) *Writer {
	w.buf.WriteByte('[')
	for i, e := range elems {
		if i > 0 {
			w.buf.WriteByte(' ')
		}
		if e.Glyphs != nil {
			writeHex(&w.buf, e.Glyphs)
		} else {
			w.buf.WriteString(FormatNumber(e.Adjust))
		}
	}
	w.buf.WriteString("] ")
	return w.op("TJ")
}

// DrawXObject paints a named XObject (Do).
func (w *Writer) DrawXObject(name string) *Writer {
	w.buf.WriteByte('/')
	w.buf.WriteString(name)
	w.buf.WriteByte(' ')
	return w.op("Do")
}

func writeHex(buf *bytes.Buffer, data []byte) {
	buf.WriteByte('<')
	dst := make([]byte, hex.EncodedLen(len(data)))
	hex.Encode(dst, data)
	buf.Write(bytes.ToUpper(dst))
	buf.WriteByte('>')
}

// FormatNumber writes v with at most four decimals and no exponent, which
// is the form PDF number tokens require.
func FormatNumber(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	r := math.Round(v*10000) / 10000
	if r == 0 {
		return "0"
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}
