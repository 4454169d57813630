package docforge

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"sync"
	"testing"

	"rsc.io/pdf"

	"github.com/wudi/docforge/config"
	"github.com/wudi/docforge/images"
	"github.com/wudi/docforge/model"
	"github.com/wudi/docforge/observability"
	"github.com/wudi/docforge/ooxml"
)

func planDoc() model.Document {
	return model.Document{
		Title:    "Plan",
		Author:   "Ana",
		Language: "English",
		Sections: []model.Section{{
			Heading:   "Intro",
			Paragraph: strings.TrimSpace(strings.Repeat("pagination engine flows text onto fixed pages with margins and breaks ", 55)),
			Bullets:   []string{"one", "two", "three"},
		}},
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		f    Format
		name string
		mime string
	}{
		{PDF, "pdf", "application/pdf"},
		{DOCX, "docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
		{PPTX, "pptx", "application/vnd.openxmlformats-officedocument.presentationml.presentation"},
	}
	for _, tt := range tests {
		if tt.f.String() != tt.name || tt.f.Extension() != tt.name || tt.f.MIMEType() != tt.mime {
			t.Fatalf("%d: got %s %s %s", tt.f, tt.f, tt.f.Extension(), tt.f.MIMEType())
		}
		for _, in := range []string{tt.name, "." + strings.ToUpper(tt.name)} {
			got, err := ParseFormat(in)
			if err != nil || got != tt.f {
				t.Fatalf("ParseFormat(%q) = %v, %v", in, got, err)
			}
		}
	}
	if _, err := ParseFormat("xlsx"); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
	if Format(9).String() != "Format(9)" || Format(9).MIMEType() != "application/octet-stream" {
		t.Fatalf("unexpected fallback names")
	}
}

func TestGenerate_PDF(t *testing.T) {
	out, err := Generate(context.Background(), PDF, planDoc(), nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF-1.7")) {
		t.Fatalf("unexpected header %q", out[:8])
	}
	r, err := pdf.NewReader(bytes.NewReader(out), int64(len(out)))
	if err != nil {
		t.Fatalf("read pdf: %v", err)
	}
	if n := r.NumPage(); n < 3 {
		t.Fatalf("expected at least 3 pages for a 605-word paragraph, got %d", n)
	}
}

func TestGenerateAll(t *testing.T) {
	doc := planDoc()
	doc.Sections[0].ImageKeyword = "logo"
	jpeg := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0, 0x10}
	imgs := model.Images{"logo": model.NewImageAsset(jpeg, 4, 4)}

	out, err := GenerateAll(context.Background(), doc, imgs, nil)
	if err != nil {
		t.Fatalf("GenerateAll: %v", err)
	}
	if len(out) != len(Formats) {
		t.Fatalf("expected %d artifacts, got %d", len(Formats), len(out))
	}
	for _, f := range []Format{DOCX, PPTX} {
		if err := ooxml.Validate(out[f]); err != nil {
			t.Fatalf("%s: %v", f, err)
		}
	}
}

func TestGenerateAll_IndependentFailures(t *testing.T) {
	cfg := config.Default()
	cfg.RegularFont = "/does/not/exist.ttf"

	out, err := New(WithConfig(cfg)).GenerateAll(context.Background(), planDoc(), nil, PDF, DOCX, DOCX)
	if err == nil {
		t.Fatalf("expected the PDF to fail")
	}
	var gerr *GenerateError
	if !errors.As(err, &gerr) || gerr.Format != PDF {
		t.Fatalf("expected a PDF GenerateError, got %v", err)
	}
	if !strings.Contains(err.Error(), "generate pdf: regular font") {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if _, ok := out[PDF]; ok {
		t.Fatalf("failed format should not be returned")
	}
	if len(out) != 1 || out[DOCX] == nil {
		t.Fatalf("DOCX should still be produced once, got %d artifacts", len(out))
	}
}

func TestGenerateAll_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out, err := GenerateAll(ctx, planDoc(), nil, []Format{PDF, PPTX})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected no artifacts, got %d", len(out))
	}
}

func TestGenerate_UnknownFormat(t *testing.T) {
	_, err := Generate(context.Background(), Format(7), planDoc(), nil)
	var gerr *GenerateError
	if !errors.As(err, &gerr) || !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("expected wrapped ErrUnknownFormat, got %v", err)
	}
}

type recordingTracer struct {
	mu    sync.Mutex
	spans []*recordingSpan
}

type recordingSpan struct {
	name     string
	tags     map[string]interface{}
	err      error
	finished bool
}

func (r *recordingTracer) StartSpan(ctx context.Context, name string) (context.Context, observability.Span) {
	s := &recordingSpan{name: name, tags: make(map[string]interface{})}
	r.mu.Lock()
	r.spans = append(r.spans, s)
	r.mu.Unlock()
	return ctx, s
}

func (s *recordingSpan) SetTag(k string, v interface{}) { s.tags[k] = v }
func (s *recordingSpan) SetError(err error)             { s.err = err }
func (s *recordingSpan) Finish()                        { s.finished = true }

func TestGenerate_TracesAndLogs(t *testing.T) {
	tracer := &recordingTracer{}
	var buf bytes.Buffer
	g := New(WithTracer(tracer), WithLogger(observability.NewTextLogger(&buf, observability.LevelInfo)))
	if _, err := g.Generate(context.Background(), PPTX, planDoc(), nil); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(tracer.spans) != 1 {
		t.Fatalf("expected one span, got %d", len(tracer.spans))
	}
	s := tracer.spans[0]
	if s.name != observability.SpanGenerate || s.tags["format"] != "pptx" || !s.finished || s.err != nil {
		t.Fatalf("unexpected span %+v", s)
	}
	if !strings.Contains(buf.String(), "document generated") || !strings.Contains(buf.String(), "format=pptx") {
		t.Fatalf("unexpected log %q", buf.String())
	}
}

func TestResolveAndGenerate(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n'}
	doc := model.Document{
		Title:    "Pics",
		Sections: []model.Section{{Heading: "A", Paragraph: "x", ImageKeyword: "fox"}},
	}
	resolver := images.MapResolver{"fox": model.NewImageAsset(png, 2, 2), "unused": model.NewImageAsset(png, 2, 2)}
	out, err := New().ResolveAndGenerate(context.Background(), resolver, doc, DOCX)
	if err != nil {
		t.Fatalf("ResolveAndGenerate: %v", err)
	}
	if err := ooxml.Validate(out[DOCX]); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !bytes.Contains(out[DOCX], []byte("word/media/image1.png")) {
		t.Fatalf("resolved image was not embedded")
	}
}

func TestEncode(t *testing.T) {
	data := []byte("%PDF-1.7\n\x00\xff")
	dec, err := base64.StdEncoding.DecodeString(Encode(data))
	if err != nil || !bytes.Equal(dec, data) {
		t.Fatalf("round trip failed: %v", err)
	}
}
