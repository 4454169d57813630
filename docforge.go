// Package docforge turns one document model into PDF, Word and slide deck
// files. The three composers are independent: each takes the normalised
// document and the resolved image map and returns finished bytes.
//
//	out, err := docforge.Generate(ctx, docforge.PDF, doc, images)
//
// Image keywords are resolved before composition, either by the caller or
// through ResolveAndGenerate with an images.Resolver.
package docforge

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/wudi/docforge/config"
	"github.com/wudi/docforge/docx"
	"github.com/wudi/docforge/fonts"
	"github.com/wudi/docforge/images"
	"github.com/wudi/docforge/layout"
	"github.com/wudi/docforge/model"
	"github.com/wudi/docforge/observability"
	"github.com/wudi/docforge/ooxml"
	"github.com/wudi/docforge/pptx"
)

// Format selects an output artifact.
type Format int

const (
	PDF Format = iota
	DOCX
	PPTX
)

// Formats lists every supported format in a stable order.
var Formats = []Format{PDF, DOCX, PPTX}

// ErrUnknownFormat is returned by ParseFormat and Generate for values
// outside Formats.
var ErrUnknownFormat = errors.New("unknown format")

func (f Format) String() string {
	switch f {
	case PDF:
		return "pdf"
	case DOCX:
		return "docx"
	case PPTX:
		return "pptx"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// MIMEType returns the media type of the format.
func (f Format) MIMEType() string {
	switch f {
	case PDF:
		return "application/pdf"
	case DOCX:
		return docx.MIMEType
	case PPTX:
		return pptx.MIMEType
	default:
		return "application/octet-stream"
	}
}

// Extension returns the file extension, without dot.
func (f Format) Extension() string {
	switch f {
	case PDF, DOCX, PPTX:
		return f.String()
	default:
		return "bin"
	}
}

// ParseFormat accepts a format name or extension, case-insensitively and
// with an optional leading dot.
func ParseFormat(s string) (Format, error) {
	name := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "."))
	for _, f := range Formats {
		if f.String() == name {
			return f, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// GenerateError reports a structural failure while producing one format.
type GenerateError struct {
	Format Format
	Err    error
}

func (e *GenerateError) Error() string {
	return fmt.Sprintf("generate %s: %v", e.Format, e.Err)
}

func (e *GenerateError) Unwrap() error { return e.Err }

// Generator produces artifacts with a shared configuration. It holds no
// per-document state and may be used from several goroutines.
type Generator struct {
	cfg    *config.Config
	logger observability.Logger
	tracer observability.Tracer
}

// Option configures a Generator.
type Option func(*Generator)

// WithConfig sets the configuration passed to every composer.
func WithConfig(cfg *config.Config) Option {
	return func(g *Generator) {
		if cfg != nil {
			g.cfg = cfg
		}
	}
}

// WithLogger sets the logger passed to every composer.
func WithLogger(l observability.Logger) Option {
	return func(g *Generator) { g.logger = observability.OrNop(l) }
}

// WithTracer wraps every generation in a span.
func WithTracer(t observability.Tracer) Option {
	return func(g *Generator) {
		if t != nil {
			g.tracer = t
		}
	}
}

// New returns a Generator. Without options it uses config.Default and logs
// nothing.
func New(opts ...Option) *Generator {
	g := &Generator{
		cfg:    config.Default(),
		logger: observability.NopLogger{},
		tracer: observability.NopTracer(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate produces one format. Failures are returned as *GenerateError.
func (g *Generator) Generate(ctx context.Context, f Format, doc model.Document, imgs model.Images) ([]byte, error) {
	_, span := g.tracer.StartSpan(ctx, observability.SpanGenerate)
	defer span.Finish()
	span.SetTag("format", f.String())

	start := time.Now()
	out, err := g.compose(f, doc, imgs)
	if err != nil {
		err = &GenerateError{Format: f, Err: err}
		span.SetError(err)
		return nil, err
	}
	span.SetTag(observability.MetricOutputBytes, len(out))
	g.logger.Info("document generated",
		observability.String("format", f.String()),
		observability.Int(observability.MetricOutputBytes, len(out)),
		observability.Duration(observability.MetricGenerateDur, time.Since(start)))
	return out, nil
}

func (g *Generator) compose(f Format, doc model.Document, imgs model.Images) ([]byte, error) {
	logger := g.logger.With(observability.String("format", f.String()))
	switch f {
	case PDF:
		regular, bold, err := g.loadFonts()
		if err != nil {
			return nil, err
		}
		return layout.Render(doc, imgs,
			layout.WithConfig(g.cfg),
			layout.WithLogger(logger),
			layout.WithFonts(regular, bold))
	case DOCX:
		return docx.Compose(doc, imgs, docx.WithConfig(g.cfg), docx.WithLogger(logger))
	case PPTX:
		return pptx.Compose(doc, imgs, pptx.WithConfig(g.cfg), pptx.WithLogger(logger))
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, f)
	}
}

// loadFonts reads the configured TrueType files. Fonts track the glyphs a
// document uses, so every PDF gets fresh instances. A nil result keeps the
// embedded default.
func (g *Generator) loadFonts() (regular, bold *fonts.Font, err error) {
	if g.cfg.RegularFont != "" {
		if regular, err = fonts.LoadFile(g.cfg.RegularFont); err != nil {
			return nil, nil, fmt.Errorf("regular font: %w", err)
		}
	}
	if g.cfg.BoldFont != "" {
		if bold, err = fonts.LoadFile(g.cfg.BoldFont); err != nil {
			return nil, nil, fmt.Errorf("bold font: %w", err)
		}
	}
	return regular, bold, nil
}

// GenerateAll produces every requested format in parallel, or all formats
// when none are given. Each format succeeds or fails on its own: the map
// holds every artifact that was produced and the error joins the failures.
// A cancelled context stops formats that have not started yet.
func (g *Generator) GenerateAll(ctx context.Context, doc model.Document, imgs model.Images, formats ...Format) (map[Format][]byte, error) {
	if len(formats) == 0 {
		formats = Formats
	}
	formats = dedupe(formats)

	var (
		mu   sync.Mutex
		wg   sync.WaitGroup
		out  = make(map[Format][]byte, len(formats))
		errs = make([]error, len(formats))
	)
	for i, f := range formats {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := ctx.Err(); err != nil {
				errs[i] = &GenerateError{Format: f, Err: err}
				return
			}
			data, err := g.Generate(ctx, f, doc, imgs)
			if err != nil {
				errs[i] = err
				return
			}
			mu.Lock()
			out[f] = data
			mu.Unlock()
		}()
	}
	wg.Wait()
	return out, errors.Join(errs...)
}

// ResolveAndGenerate resolves the document's image keywords with r and
// then produces the requested formats. The resolver finishes before any
// composer starts.
func (g *Generator) ResolveAndGenerate(ctx context.Context, r images.Resolver, doc model.Document, formats ...Format) (map[Format][]byte, error) {
	var imgs model.Images
	if r != nil {
		var err error
		if imgs, err = r.Resolve(ctx, doc.Keywords()); err != nil {
			return nil, fmt.Errorf("resolve images: %w", err)
		}
	}
	return g.GenerateAll(ctx, doc, imgs, formats...)
}

func dedupe(formats []Format) []Format {
	seen := make(map[Format]bool, len(formats))
	out := formats[:0:0]
	for _, f := range formats {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}

// Generate produces one format with a Generator built from opts.
func Generate(ctx context.Context, f Format, doc model.Document, imgs model.Images, opts ...Option) ([]byte, error) {
	return New(opts...).Generate(ctx, f, doc, imgs)
}

// GenerateAll produces formats in parallel with a Generator built from
// opts. See Generator.GenerateAll.
func GenerateAll(ctx context.Context, doc model.Document, imgs model.Images, formats []Format, opts ...Option) (map[Format][]byte, error) {
	return New(opts...).GenerateAll(ctx, doc, imgs, formats...)
}

// Encode returns data as standard base64, for transports that cannot
// carry binary.
func Encode(data []byte) string {
	return ooxml.Base64(data)
}
