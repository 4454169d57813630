package model

// ImageFormat is the encoding of an embedded image as detected from its
// leading bytes.
type ImageFormat string

const (
	FormatJPEG ImageFormat = "jpeg"
	FormatPNG  ImageFormat = "png"
)

// Extension returns the file extension (without dot) used for media parts.
func (f ImageFormat) Extension() string {
	if f == FormatJPEG {
		return "jpeg"
	}
	return "png"
}

// ContentType returns the MIME type of the format.
func (f ImageFormat) ContentType() string {
	if f == FormatJPEG {
		return "image/jpeg"
	}
	return "image/png"
}

// SniffFormat inspects the first two bytes: FF D8 is JPEG and anything else
// is treated as PNG. Other encodings (WebP, GIF) are therefore tagged PNG;
// the OOXML content types rely on this rule being applied consistently.
func SniffFormat(data []byte) ImageFormat {
	if len(data) >= 2 && data[0] == 0xFF && data[1] == 0xD8 {
		return FormatJPEG
	}
	return FormatPNG
}

// ImageAsset is a resolved image. The resolver owns fetching; composers only
// read Data for the duration of one generation call.
type ImageAsset struct {
	Data   []byte
	Width  int // pixels
	Height int // pixels
	Format ImageFormat
	// Credit is an optional attribution shown under the image.
	Credit string
}

// NewImageAsset wraps data with its sniffed format and pixel size.
func NewImageAsset(data []byte, width, height int) ImageAsset {
	return ImageAsset{Data: data, Width: width, Height: height, Format: SniffFormat(data)}
}

// Valid reports whether the asset carries bytes and a usable pixel size.
func (a ImageAsset) Valid() bool {
	return len(a.Data) > 0 && a.Width > 0 && a.Height > 0
}

// Caption returns the attribution line for the asset.
func (a ImageAsset) Caption(keyword string) string {
	if a.Credit != "" {
		return a.Credit
	}
	return "Image: " + keyword
}

// Images maps image keywords to resolved assets. A keyword absent from the
// map has no image.
type Images map[string]ImageAsset

// Lookup returns the asset for keyword when one resolved with usable data.
// The format is always re-sniffed from the bytes.
func (m Images) Lookup(keyword string) (ImageAsset, bool) {
	if keyword == "" || m == nil {
		return ImageAsset{}, false
	}
	a, ok := m[keyword]
	if !ok || !a.Valid() {
		return ImageAsset{}, false
	}
	a.Format = SniffFormat(a.Data)
	return a, true
}
