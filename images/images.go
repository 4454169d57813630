// Package images resolves image keywords to binary assets before any
// composer runs. Composers only read the resulting model.Images map; a
// keyword missing from the map means "no image" and is never an error.
package images

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/wudi/docforge/model"
)

// ErrNotFound is returned by a Fetcher when nothing matches a keyword.
var ErrNotFound = errors.New("image not found")

// Resolver maps a set of keywords to resolved assets.
type Resolver interface {
	Resolve(ctx context.Context, keywords []string) (model.Images, error)
}

// Fetcher resolves a single keyword.
type Fetcher interface {
	Fetch(ctx context.Context, keyword string) (model.ImageAsset, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, keyword string) (model.ImageAsset, error)

func (f FetcherFunc) Fetch(ctx context.Context, keyword string) (model.ImageAsset, error) {
	return f(ctx, keyword)
}

// MapResolver serves assets from memory.
type MapResolver model.Images

// Resolve returns the entries of m named by keywords.
func (m MapResolver) Resolve(ctx context.Context, keywords []string) (model.Images, error) {
	out := make(model.Images)
	for _, k := range keywords {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if a, ok := m[k]; ok {
			out[k] = a
		}
	}
	return out, nil
}

// Fetch implements Fetcher.
func (m MapResolver) Fetch(_ context.Context, keyword string) (model.ImageAsset, error) {
	if a, ok := m[keyword]; ok {
		return a, nil
	}
	return model.ImageAsset{}, ErrNotFound
}

// Probe decodes only the image header and returns its pixel size. JPEG, PNG,
// GIF, BMP, TIFF and WebP are understood.
func Probe(data []byte) (width, height int, err error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("probe image: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return 0, 0, fmt.Errorf("probe image: invalid size %dx%d", cfg.Width, cfg.Height)
	}
	return cfg.Width, cfg.Height, nil
}

// FromBytes builds an asset from raw bytes, probing the pixel size. The
// format is the magic-byte sniff from model.SniffFormat, not the decoder
// that recognised the header.
func FromBytes(data []byte, credit string) (model.ImageAsset, error) {
	w, h, err := Probe(data)
	if err != nil {
		return model.ImageAsset{}, err
	}
	a := model.NewImageAsset(data, w, h)
	a.Credit = credit
	return a, nil
}
