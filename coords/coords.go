// Package coords provides the affine transforms of PDF user space.
package coords

// Matrix is a PDF transformation matrix [a b c d e f].
type Matrix [6]float64

// Identity returns the identity matrix.
func Identity() Matrix { return Matrix{1, 0, 0, 1, 0, 0} }

// Translate returns a translation by (tx, ty).
func Translate(tx, ty float64) Matrix { return Matrix{1, 0, 0, 1, tx, ty} }

// Scale returns a scaling by (sx, sy).
func Scale(sx, sy float64) Matrix { return Matrix{sx, 0, 0, sy, 0, 0} }

// Multiply returns m × o, i.e. m applied first.
func (m Matrix) Multiply(o Matrix) Matrix {
	return Matrix{
		m[0]*o[0] + m[1]*o[2],
		m[0]*o[1] + m[1]*o[3],
		m[2]*o[0] + m[3]*o[2],
		m[2]*o[1] + m[3]*o[3],
		m[4]*o[0] + m[5]*o[2] + o[4],
		m[4]*o[1] + m[5]*o[3] + o[5],
	}
}

// Point is a position in user space.
type Point struct{ X, Y float64 }

// Transform applies m to p.
func (m Matrix) Transform(p Point) Point {
	return Point{X: m[0]*p.X + m[2]*p.Y + m[4], Y: m[1]*p.X + m[3]*p.Y + m[5]}
}

// Rect is an axis-aligned rectangle with its lower-left corner at (X, Y).
type Rect struct {
	X, Y, W, H float64
}

// Top returns the upper edge.
func (r Rect) Top() float64 { return r.Y + r.H }

// Right returns the right edge.
func (r Rect) Right() float64 { return r.X + r.W }

// Bounds returns the rectangle covering the unit square mapped through m.
func (m Matrix) Bounds() Rect {
	pts := []Point{
		m.Transform(Point{0, 0}),
		m.Transform(Point{1, 0}),
		m.Transform(Point{0, 1}),
		m.Transform(Point{1, 1}),
	}
	minX, minY, maxX, maxY := pts[0].X, pts[0].Y, pts[0].X, pts[0].Y
	for _, p := range pts[1:] {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}
