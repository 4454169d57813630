package contentstream

import (
	"errors"

	"github.com/wudi/docforge/coords"
)

// MarkKind classifies a painted mark.
type MarkKind int

const (
	MarkText MarkKind = iota
	MarkImage
	MarkPath
)

// Mark is something a content stream paints. For text, Origin is the
// baseline start and Text holds the shown bytes; for images and paths, Box
// is the painted area.
type Mark struct {
	Kind     MarkKind
	OpIndex  int
	Origin   coords.Point
	Box      coords.Rect
	Font     string
	FontSize float64
	Text     []byte
	XObject  string
}

// GraphicsState is the subset of PDF graphics state the tracer follows.
type GraphicsState struct {
	CTM   coords.Matrix
	stack []coords.Matrix
}

// Save pushes the CTM.
func (gs *GraphicsState) Save() { gs.stack = append(gs.stack, gs.CTM) }

// Restore pops the CTM.
func (gs *GraphicsState) Restore() error {
	n := len(gs.stack)
	if n == 0 {
		return errors.New("state stack empty")
	}
	gs.CTM = gs.stack[n-1]
	gs.stack = gs.stack[:n-1]
	return nil
}

// TextState tracks the selected font and text matrix inside BT/ET.
type TextState struct {
	Font       string
	FontSize   float64
	TextMatrix coords.Matrix
}

// Trace executes ops virtually and returns the marks they paint, in order.
func Trace(ops []Operation) ([]Mark, error) {
	gs := &GraphicsState{CTM: coords.Identity()}
	ts := &TextState{TextMatrix: coords.Identity()}
	var (
		marks []Mark
		path  []coords.Point
		rects []coords.Rect
	)
	flushPath := func(i int) {
		minX, minY, maxX, maxY := 0.0, 0.0, 0.0, 0.0
		first := true
		grow := func(p coords.Point) {
			p = gs.CTM.Transform(p)
			if first {
				minX, minY, maxX, maxY = p.X, p.Y, p.X, p.Y
				first = false
				return
			}
			minX, maxX = min(minX, p.X), max(maxX, p.X)
			minY, maxY = min(minY, p.Y), max(maxY, p.Y)
		}
		for _, p := range path {
			grow(p)
		}
		for _, r := range rects {
			grow(coords.Point{X: r.X, Y: r.Y})
			grow(coords.Point{X: r.Right(), Y: r.Top()})
		}
		if !first {
			marks = append(marks, Mark{Kind: MarkPath, OpIndex: i, Box: coords.Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}})
		}
		path, rects = nil, nil
	}

	for i, op := range ops {
		nums := numbers(op.Operands)
		switch op.Operator {
		case "q":
			gs.Save()
		case "Q":
			if err := gs.Restore(); err != nil {
				return nil, err
			}
		case "cm":
			if len(nums) == 6 {
				m := coords.Matrix{nums[0], nums[1], nums[2], nums[3], nums[4], nums[5]}
				gs.CTM = m.Multiply(gs.CTM)
			}
		case "BT":
			ts.TextMatrix = coords.Identity()
		case "Tf":
			if len(op.Operands) == 2 {
				if n, ok := op.Operands[0].(Name); ok {
					ts.Font = string(n)
				}
				if s, ok := op.Operands[1].(Number); ok {
					ts.FontSize = float64(s)
				}
			}
		case "Tm":
			if len(nums) == 6 {
				ts.TextMatrix = coords.Matrix{nums[0], nums[1], nums[2], nums[3], nums[4], nums[5]}
			}
		case "Tj", "TJ":
			var text []byte
			for _, o := range op.Operands {
				switch v := o.(type) {
				case String:
					text = append(text, v...)
				case Array:
					for _, e := range v {
						if s, ok := e.(String); ok {
							text = append(text, s...)
						}
					}
				}
			}
			origin := ts.TextMatrix.Multiply(gs.CTM).Transform(coords.Point{})
			marks = append(marks, Mark{Kind: MarkText, OpIndex: i, Origin: origin, Font: ts.Font, FontSize: ts.FontSize, Text: text})
		case "m", "l":
			if len(nums) == 2 {
				path = append(path, coords.Point{X: nums[0], Y: nums[1]})
			}
		case "re":
			if len(nums) == 4 {
				rects = append(rects, coords.Rect{X: nums[0], Y: nums[1], W: nums[2], H: nums[3]})
			}
		case "S", "s", "f", "F", "f*", "B", "B*", "b", "b*":
			flushPath(i)
		case "n":
			path, rects = nil, nil
		case "Do":
			name := ""
			if len(op.Operands) == 1 {
				if n, ok := op.Operands[0].(Name); ok {
					name = string(n)
				}
			}
			marks = append(marks, Mark{Kind: MarkImage, OpIndex: i, Box: gs.CTM.Bounds(), XObject: name})
		}
	}
	return marks, nil
}

func numbers(ops []Operand) []float64 {
	out := make([]float64, 0, len(ops))
	for _, o := range ops {
		if n, ok := o.(Number); ok {
			out = append(out, float64(n))
		}
	}
	return out
}
