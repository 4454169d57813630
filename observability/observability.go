package observability

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"
)

type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	With(fields ...Field) Logger
}

type Field interface {
	Key() string
	Value() interface{}
}

type stringField struct{ key, val string }

func (f stringField) Key() string        { return f.key }
func (f stringField) Value() interface{} { return f.val }

type intField struct {
	key string
	val int
}

func (f intField) Key() string        { return f.key }
func (f intField) Value() interface{} { return f.val }

type int64Field struct {
	key string
	val int64
}

func (f int64Field) Key() string        { return f.key }
func (f int64Field) Value() interface{} { return f.val }

type floatField struct {
	key string
	val float64
}

func (f floatField) Key() string        { return f.key }
func (f floatField) Value() interface{} { return f.val }

type durationField struct {
	key string
	val time.Duration
}

func (f durationField) Key() string        { return f.key }
func (f durationField) Value() interface{} { return f.val }

type errorField struct {
	key string
	err error
}

func (f errorField) Key() string        { return f.key }
func (f errorField) Value() interface{} { return f.err }

func String(key, value string) Field                 { return stringField{key, value} }
func Int(key string, value int) Field                { return intField{key, value} }
func Int64(key string, value int64) Field            { return int64Field{key, value} }
func Float(key string, value float64) Field          { return floatField{key, value} }
func Duration(key string, value time.Duration) Field { return durationField{key, value} }
func Error(key string, err error) Field              { return errorField{key, err} }

type NopLogger struct{}

func (NopLogger) Debug(string, ...Field) {}
func (NopLogger) Info(string, ...Field)  {}
func (NopLogger) Warn(string, ...Field)  {}
func (NopLogger) Error(string, ...Field) {}
func (NopLogger) With(...Field) Logger   { return NopLogger{} }

// OrNop returns l, or a NopLogger when l is nil.
func OrNop(l Logger) Logger {
	if l == nil {
		return NopLogger{}
	}
	return l
}

// Level orders log severities.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelOff
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelOff:
		return "OFF"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps "debug", "info", "warn", "error" and "off" to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	case "off":
		return LevelOff, nil
	}
	return LevelInfo, fmt.Errorf("invalid log level %q", s)
}

// TextLogger writes one line per entry:
//
//	2006-01-02 15:04:05 [WARN] image skipped keyword=cat err=...
//
// Fields are sorted by key. TextLogger is safe for concurrent use; loggers
// derived through With share the writer lock.
type TextLogger struct {
	w      io.Writer
	level  Level
	fields []Field
	mu     *sync.Mutex
	now    func() time.Time
}

// NewTextLogger creates a logger that drops entries below level.
func NewTextLogger(w io.Writer, level Level) *TextLogger {
	if w == nil {
		w = io.Discard
	}
	return &TextLogger{w: w, level: level, mu: &sync.Mutex{}, now: time.Now}
}

func (l *TextLogger) Debug(msg string, fields ...Field) { l.log(LevelDebug, msg, fields) }
func (l *TextLogger) Info(msg string, fields ...Field)  { l.log(LevelInfo, msg, fields) }
func (l *TextLogger) Warn(msg string, fields ...Field)  { l.log(LevelWarn, msg, fields) }
func (l *TextLogger) Error(msg string, fields ...Field) { l.log(LevelError, msg, fields) }

func (l *TextLogger) With(fields ...Field) Logger {
	merged := make([]Field, 0, len(l.fields)+len(fields))
	merged = append(merged, l.fields...)
	merged = append(merged, fields...)
	return &TextLogger{w: l.w, level: l.level, fields: merged, mu: l.mu, now: l.now}
}

func (l *TextLogger) log(level Level, msg string, fields []Field) {
	if level < l.level || l.level == LevelOff {
		return
	}
	all := make([]Field, 0, len(l.fields)+len(fields))
	all = append(all, l.fields...)
	all = append(all, fields...)
	sort.SliceStable(all, func(i, j int) bool { return all[i].Key() < all[j].Key() })

	var sb strings.Builder
	sb.WriteString(l.now().Format("2006-01-02 15:04:05"))
	sb.WriteString(" [")
	sb.WriteString(level.String())
	sb.WriteString("] ")
	sb.WriteString(msg)
	for _, f := range all {
		fmt.Fprintf(&sb, " %s=%v", f.Key(), f.Value())
	}
	sb.WriteByte('\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	io.WriteString(l.w, sb.String())
}

// Tracer provides tracing hooks around generation calls.
type Tracer interface {
	StartSpan(ctx context.Context, name string) (context.Context, Span)
}

// Span represents a tracing span.
type Span interface {
	SetTag(key string, value interface{})
	SetError(err error)
	Finish()
}

type nopTracer struct{}

func (nopTracer) StartSpan(ctx context.Context, _ string) (context.Context, Span) {
	return ctx, nopSpan{}
}

// NopTracer returns a tracer that does nothing.
func NopTracer() Tracer { return nopTracer{} }

type nopSpan struct{}

func (nopSpan) SetTag(string, interface{}) {}
func (nopSpan) SetError(error)             {}
func (nopSpan) Finish()                    {}

// Standard span and metric names emitted by the library.
const (
	SpanGenerate      = "docforge.generate"
	MetricPageCount   = "pdf.pages.count"
	MetricPartCount   = "ooxml.parts.count"
	MetricMediaCount  = "ooxml.media.count"
	MetricOutputBytes = "docforge.output.bytes"
	MetricGenerateDur = "docforge.generate.duration"
)
