package fonts

import (
	"testing"

	"github.com/go-text/typesetting/language"
)

func TestDetectScript(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect language.Script
	}{
		{"Latin", "Hello World", language.Latin},
		{"Arabic", "مرحبا بالعالم", language.Arabic},
		{"Hebrew", "שלום עולם", language.Hebrew},
		{"Cyrillic", "Привет мир", language.Cyrillic},
		{"Greek", "Γειά σου Κόσμε", language.Greek},
		{"Latin dominant", "Hello World مرحبا", language.Latin},
		{"Arabic dominant", "مرحبا بالعالم Hello", language.Arabic},
		{"Han", "你好世界", language.Han},
		{"Digits only", "12 / 34", language.Common},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := detectScript([]rune(tc.input)); got != tc.expect {
				t.Errorf("expected %v, got %v", tc.expect, got)
			}
		})
	}
}

func TestIsRTLText(t *testing.T) {
	if !IsRTLText("שלום עולם") || IsRTLText("hello") {
		t.Fatalf("unexpected direction detection")
	}
}

func TestShape_ClusterText(t *testing.T) {
	f, err := GoRegular()
	if err != nil {
		t.Fatalf("GoRegular: %v", err)
	}
	glyphs := f.Shape("Hi there", false)
	if len(glyphs) != 8 {
		t.Fatalf("expected 8 glyphs, got %d", len(glyphs))
	}
	var text []rune
	for _, g := range glyphs {
		if g.ID == 0 {
			t.Fatalf("Latin text should not map to .notdef")
		}
		text = append(text, g.Text...)
	}
	if string(text) != "Hi there" {
		t.Fatalf("cluster text = %q", string(text))
	}
}

func TestMeasure(t *testing.T) {
	f, err := GoRegular()
	if err != nil {
		t.Fatalf("GoRegular: %v", err)
	}
	short := f.Measure("word", 12)
	long := f.Measure("word word", 12)
	if short <= 0 || long <= short {
		t.Fatalf("measure not monotonic: %v %v", short, long)
	}
	if double := f.Measure("word", 24); double < 2*short-0.01 || double > 2*short+0.01 {
		t.Fatalf("measure should scale with size: %v vs %v", double, short)
	}
	if f.Measure("", 12) != 0 {
		t.Fatalf("empty text should have zero width")
	}
}
