package contentstream

import (
	"bytes"
	"testing"
)

func TestFormatNumber(t *testing.T) {
	tests := map[float64]string{
		0:         "0",
		72:        "72",
		595.28:    "595.28",
		0.000001:  "0",
		-1.5:      "-1.5",
		1.0 / 3.0: "0.3333",
		1e7:       "10000000",
	}
	for in, want := range tests {
		if got := FormatNumber(in); got != want {
			t.Fatalf("FormatNumber(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestWriterRoundTrip(t *testing.T) {
	var w Writer
	w.Save().
		SetFillColor(Color{R: 1}).
		Rect(10, 20, 30, 40).
		Fill().
		Restore().
		BeginText().
		SetFont("F1", 12).
		SetTextMatrix(1, 0, 0, 1, 72, 700).
		ShowText([]byte{0x00, 0x2B}).
		ShowTextAdjusted([]TJElement{{Glyphs: []byte{0, 1}}, {Adjust: -12.5}, {Glyphs: []byte{0, 2}}}).
		EndText().
		Save().
		Transform(100, 0, 0, 50, 72, 500).
		DrawXObject("Im1").
		Restore()

	ops, err := Parse(w.Bytes())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	var names []string
	for _, op := range ops {
		names = append(names, op.Operator)
	}
	want := []string{"q", "rg", "re", "f", "Q", "BT", "Tf", "Tm", "Tj", "TJ", "ET", "q", "cm", "Do", "Q"}
	if len(names) != len(want) {
		t.Fatalf("operators = %v", names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("operator %d = %s, want %s", i, names[i], want[i])
		}
	}
	if s, ok := ops[8].Operands[0].(String); !ok || !bytes.Equal(s, []byte{0x00, 0x2B}) {
		t.Fatalf("Tj operand = %#v", ops[8].Operands)
	}
	arr, ok := ops[9].Operands[0].(Array)
	if !ok || len(arr) != 3 || arr[1].(Number) != -12.5 {
		t.Fatalf("TJ operand = %#v", ops[9].Operands)
	}
}

func TestParseLiteralAndErrors(t *testing.T) {
	ops, err := Parse([]byte(`(a\(b\)c \101) Tj % comment
/Name 1 Tf`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := string(ops[0].Operands[0].(String)); got != "a(b)c A" {
		t.Fatalf("literal = %q", got)
	}
	if ops[1].Operands[0].(Name) != "Name" {
		t.Fatalf("name operand = %#v", ops[1].Operands[0])
	}
	if _, err := Parse([]byte("1 2")); err == nil {
		t.Fatalf("expected dangling operand error")
	}
	if _, err := Parse([]byte("[1 2 Tj")); err == nil {
		t.Fatalf("expected unterminated array error")
	}
}

func TestTrace(t *testing.T) {
	var w Writer
	w.Save().Transform(1, 0, 0, 1, 10, 10).
		BeginText().SetFont("F2", 18).SetTextMatrix(1, 0, 0, 1, 72, 700).ShowText([]byte{0, 5}).EndText().
		Restore().
		Save().SetLineWidth(0.5).MoveTo(72, 650).LineTo(523, 650).Stroke().Restore().
		Save().Transform(200, 0, 0, 100, 72, 400).DrawXObject("Im1").Restore()

	ops, err := Parse(w.Bytes())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	marks, err := Trace(ops)
	if err != nil {
		t.Fatalf("Trace: %v", err)
	}
	if len(marks) != 3 {
		t.Fatalf("expected 3 marks, got %d", len(marks))
	}
	text := marks[0]
	if text.Kind != MarkText || text.Font != "F2" || text.FontSize != 18 {
		t.Fatalf("text mark = %+v", text)
	}
	if text.Origin.X != 82 || text.Origin.Y != 710 {
		t.Fatalf("text origin = %+v", text.Origin)
	}
	if line := marks[1]; line.Kind != MarkPath || line.Box.Y != 650 || line.Box.W != 451 {
		t.Fatalf("line mark = %+v", line)
	}
	if img := marks[2]; img.Kind != MarkImage || img.XObject != "Im1" || img.Box.Top() != 500 {
		t.Fatalf("image mark = %+v", img)
	}
}

func TestTrace_UnbalancedRestore(t *testing.T) {
	if _, err := Trace([]Operation{{Operator: "Q"}}); err == nil {
		t.Fatalf("expected error for unbalanced Q")
	}
}
