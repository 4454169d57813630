package contentstream

// LineCap represents the line cap style (J operator).
type LineCap int

const (
	LineCapButt LineCap = iota
	LineCapRound
	LineCapSquare
)

// Color is an RGB colour with components in [0, 1].
type Color struct {
	R, G, B float64
}

// Gray returns the grey colour with intensity v.
func Gray(v float64) Color { return Color{v, v, v} }

// RGB8 builds a colour from 0-255 components.
func RGB8(r, g, b uint8) Color {
	return Color{float64(r) / 255, float64(g) / 255, float64(b) / 255}
}

// TJElement is one entry of a TJ array: either encoded glyph bytes or a
// horizontal adjustment in thousandths of text space (positive moves left).
type TJElement struct {
	Glyphs []byte
	Adjust float64
}
