package coords

import "testing"

func TestMultiplyOrder(t *testing.T) {
	m := Scale(2, 3).Multiply(Translate(10, 20))
	p := m.Transform(Point{1, 1})
	if p.X != 12 || p.Y != 23 {
		t.Fatalf("got %+v", p)
	}
}

func TestBounds(t *testing.T) {
	r := Matrix{100, 0, 0, 50, 72, 600}.Bounds()
	if r != (Rect{X: 72, Y: 600, W: 100, H: 50}) {
		t.Fatalf("got %+v", r)
	}
	if r.Top() != 650 || r.Right() != 172 {
		t.Fatalf("edges %v %v", r.Top(), r.Right())
	}
}
