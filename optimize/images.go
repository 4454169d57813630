// Package optimize prepares raster images for PDF embedding: JPEG data is
// passed through as DCTDecode when possible, everything else is decoded to
// 8-bit RGB with an optional soft mask, and oversized images are downscaled.
package optimize

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	_ "image/gif"
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/wudi/docforge/model"
)

// ErrEmptyImage is returned for images with no pixels.
var ErrEmptyImage = errors.New("image has no pixels")

// JPEGQuality is used when a JPEG has to be re-encoded after downscaling.
const JPEGQuality = 85

// Image is an image XObject ready to be written.
type Image struct {
	Width, Height    int
	ColorSpace       string // DeviceRGB, DeviceGray or DeviceCMYK
	BitsPerComponent int
	// Filter is "DCTDecode" for JPEG data, or empty for raw samples.
	Filter string
	Data   []byte
	// Decode is set for inverted (Adobe) CMYK JPEGs.
	Decode []float64
	// SMask holds 8-bit alpha samples when the source has transparency.
	SMask []byte
}

// Prepare converts encoded image bytes for embedding. maxPixels caps the
// longest side; 0 disables downscaling. The format sniff decides whether
// the JPEG pass-through is attempted; decoding itself accepts any
// registered format.
func Prepare(data []byte, maxPixels int) (*Image, error) {
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}
	if model.SniffFormat(data) == model.FormatJPEG {
		return prepareJPEG(data, maxPixels)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return FromImage(Downscale(img, maxPixels))
}

func prepareJPEG(data []byte, maxPixels int) (*Image, error) {
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode jpeg: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, ErrEmptyImage
	}
	if !tooLarge(cfg.Width, cfg.Height, maxPixels) {
		out := &Image{
			Width:            cfg.Width,
			Height:           cfg.Height,
			BitsPerComponent: 8,
			Filter:           "DCTDecode",
			Data:             data,
			ColorSpace:       "DeviceRGB",
		}
		switch cfg.ColorModel {
		case color.GrayModel:
			out.ColorSpace = "DeviceGray"
		case color.CMYKModel:
			out.ColorSpace = "DeviceCMYK"
			out.Decode = []float64{1, 0, 1, 0, 1, 0, 1, 0}
		}
		return out, nil
	}

	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode jpeg: %w", err)
	}
	img = Downscale(img, maxPixels)
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	b := img.Bounds()
	cs := "DeviceRGB"
	if isGray(img) {
		cs = "DeviceGray"
	}
	return &Image{
		Width:            b.Dx(),
		Height:           b.Dy(),
		ColorSpace:       cs,
		BitsPerComponent: 8,
		Filter:           "DCTDecode",
		Data:             buf.Bytes(),
	}, nil
}

// Downscale shrinks img so that its longest side is at most maxPixels,
// preserving the aspect ratio. Smaller images are returned unchanged.
func Downscale(img image.Image, maxPixels int) image.Image {
	b := img.Bounds()
	if !tooLarge(b.Dx(), b.Dy(), maxPixels) {
		return img
	}
	w, h := b.Dx(), b.Dy()
	var tw, th int
	if w >= h {
		tw, th = maxPixels, h*maxPixels/w
	} else {
		tw, th = w*maxPixels/h, maxPixels
	}
	tw, th = max(tw, 1), max(th, 1)
	dst := image.NewNRGBA(image.Rect(0, 0, tw, th))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// FromImage converts img to RGB samples, attaching an alpha soft mask only
// when some pixel is not fully opaque.
func FromImage(src image.Image) (*Image, error) {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return nil, ErrEmptyImage
	}

	nrgba := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(nrgba, nrgba.Bounds(), src, b.Min, draw.Src)

	pixels := make([]byte, 0, w*h*3)
	alpha := make([]byte, 0, w*h)
	hasAlpha := false
	for i := 0; i < w*h; i++ {
		px := nrgba.Pix[i*4 : i*4+4]
		pixels = append(pixels, px[0], px[1], px[2])
		alpha = append(alpha, px[3])
		if px[3] < 255 {
			hasAlpha = true
		}
	}

	out := &Image{
		Width:            w,
		Height:           h,
		ColorSpace:       "DeviceRGB",
		BitsPerComponent: 8,
		Data:             pixels,
	}
	if hasAlpha {
		out.SMask = alpha
	}
	return out, nil
}

func tooLarge(w, h, maxPixels int) bool {
	return maxPixels > 0 && (w > maxPixels || h > maxPixels)
}

func isGray(img image.Image) bool {
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		return true
	}
	return false
}
