// Package config holds the rendering configuration shared by the CLI and
// the library entry points.
//
// Values are resolved in order: Default, then an optional TOML file (Load),
// then DOCFORGE_* environment variables (FromEnvironment). Validate is run
// by callers after the last override.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/wudi/docforge/observability"
	"github.com/wudi/docforge/units"
)

// DefaultBrand is shown as the author when a document has none.
const DefaultBrand = "AI Writer"

// A4 page size and margin in points.
const (
	A4Width       = 595.28
	A4Height      = 841.89
	DefaultMargin = 72.0
)

// Config contains all configuration options for document generation.
type Config struct {
	// Page geometry for PDF output, in points.
	PageWidth  float64
	PageHeight float64
	Margin     float64
	// Brand replaces an empty author.
	Brand string
	// RegularFont and BoldFont are optional TrueType paths. The embedded Go
	// fonts are used when empty.
	RegularFont string
	BoldFont    string
	// MaxImagePixels caps the longest side of decoded raster images embedded
	// into PDF output. 0 disables downscaling.
	MaxImagePixels int
	// Compress enables Flate compression of PDF streams.
	Compress bool
	// LogLevel controls verbosity (debug, info, warn, error, off).
	LogLevel string
	// ResolverConcurrency caps parallel image lookups.
	ResolverConcurrency int
	// ResolverRate limits image lookups per second. 0 means unlimited.
	ResolverRate float64
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		PageWidth:           A4Width,
		PageHeight:          A4Height,
		Margin:              DefaultMargin,
		Brand:               DefaultBrand,
		MaxImagePixels:      2000,
		Compress:            true,
		LogLevel:            "info",
		ResolverConcurrency: 4,
	}
}

// fileConfig mirrors Config for TOML decoding. Lengths are strings so that
// files can say "1in" or "20mm".
type fileConfig struct {
	Page struct {
		Width  string `toml:"width"`
		Height string `toml:"height"`
		Margin string `toml:"margin"`
	} `toml:"page"`
	Brand string `toml:"brand"`
	Fonts struct {
		Regular string `toml:"regular"`
		Bold    string `toml:"bold"`
	} `toml:"fonts"`
	Images struct {
		MaxPixels *int `toml:"max_pixels"`
	} `toml:"images"`
	Compress *bool `toml:"compress"`
	Log      struct {
		Level string `toml:"level"`
	} `toml:"log"`
	Resolver struct {
		Concurrency *int     `toml:"concurrency"`
		Rate        *float64 `toml:"rate"`
	} `toml:"resolver"`
}

// Load reads a TOML file and applies it over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse applies TOML data over the defaults.
func Parse(data []byte) (*Config, error) {
	var fc fileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	c := Default()
	for _, l := range []struct {
		raw string
		dst *float64
	}{
		{fc.Page.Width, &c.PageWidth},
		{fc.Page.Height, &c.PageHeight},
		{fc.Page.Margin, &c.Margin},
	} {
		if l.raw == "" {
			continue
		}
		v, err := units.ParseLength(l.raw)
		if err != nil {
			return nil, fmt.Errorf("decode config: %w", err)
		}
		*l.dst = v
	}
	if fc.Brand != "" {
		c.Brand = fc.Brand
	}
	if fc.Fonts.Regular != "" {
		c.RegularFont = fc.Fonts.Regular
	}
	if fc.Fonts.Bold != "" {
		c.BoldFont = fc.Fonts.Bold
	}
	if fc.Images.MaxPixels != nil {
		c.MaxImagePixels = *fc.Images.MaxPixels
	}
	if fc.Compress != nil {
		c.Compress = *fc.Compress
	}
	if fc.Log.Level != "" {
		c.LogLevel = fc.Log.Level
	}
	if fc.Resolver.Concurrency != nil {
		c.ResolverConcurrency = *fc.Resolver.Concurrency
	}
	if fc.Resolver.Rate != nil {
		c.ResolverRate = *fc.Resolver.Rate
	}
	return c, nil
}

// FromEnvironment returns a copy of base with DOCFORGE_* variables applied.
// Unparseable values are ignored.
func FromEnvironment(base *Config) *Config {
	if base == nil {
		base = Default()
	}
	c := *base

	// DOCFORGE_PAGE_WIDTH, DOCFORGE_PAGE_HEIGHT, DOCFORGE_MARGIN
	for key, dst := range map[string]*float64{
		"DOCFORGE_PAGE_WIDTH":  &c.PageWidth,
		"DOCFORGE_PAGE_HEIGHT": &c.PageHeight,
		"DOCFORGE_MARGIN":      &c.Margin,
	} {
		if val := os.Getenv(key); val != "" {
			if v, err := units.ParseLength(val); err == nil {
				*dst = v
			}
		}
	}

	// DOCFORGE_BRAND
	if val := os.Getenv("DOCFORGE_BRAND"); val != "" {
		c.Brand = val
	}

	// DOCFORGE_FONT_REGULAR, DOCFORGE_FONT_BOLD
	if val := os.Getenv("DOCFORGE_FONT_REGULAR"); val != "" {
		c.RegularFont = val
	}
	if val := os.Getenv("DOCFORGE_FONT_BOLD"); val != "" {
		c.BoldFont = val
	}

	// DOCFORGE_MAX_IMAGE_PIXELS
	if val := os.Getenv("DOCFORGE_MAX_IMAGE_PIXELS"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			c.MaxImagePixels = n
		}
	}

	// DOCFORGE_COMPRESS
	if val := os.Getenv("DOCFORGE_COMPRESS"); val != "" {
		c.Compress = parseBool(val)
	}

	// DOCFORGE_LOG_LEVEL
	if val := os.Getenv("DOCFORGE_LOG_LEVEL"); val != "" {
		c.LogLevel = val
	}

	// DOCFORGE_RESOLVER_CONCURRENCY, DOCFORGE_RESOLVER_RATE
	if val := os.Getenv("DOCFORGE_RESOLVER_CONCURRENCY"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			c.ResolverConcurrency = n
		}
	}
	if val := os.Getenv("DOCFORGE_RESOLVER_RATE"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			c.ResolverRate = f
		}
	}
	return &c
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	var errs []error
	if c.PageWidth <= 0 || c.PageHeight <= 0 {
		errs = append(errs, errors.New("page size must be positive"))
	}
	if c.Margin < 0 {
		errs = append(errs, errors.New("margin cannot be negative"))
	}
	if 2*c.Margin >= c.PageWidth || 2*c.Margin >= c.PageHeight {
		errs = append(errs, errors.New("margins leave no content area"))
	}
	if c.MaxImagePixels < 0 {
		errs = append(errs, errors.New("max image pixels cannot be negative"))
	}
	if _, err := observability.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.ResolverConcurrency <= 0 {
		errs = append(errs, errors.New("resolver concurrency must be positive"))
	}
	if c.ResolverRate < 0 {
		errs = append(errs, errors.New("resolver rate cannot be negative"))
	}
	return errors.Join(errs...)
}

// Logger builds a text logger on w at the configured level.
func (c *Config) Logger(w io.Writer) observability.Logger {
	level, err := observability.ParseLevel(c.LogLevel)
	if err != nil {
		level = observability.LevelInfo
	}
	return observability.NewTextLogger(w, level)
}

func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on"
}
