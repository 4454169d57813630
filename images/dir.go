package images

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/wudi/docforge/model"
)

// DefaultExtensions are tried in order when looking up a keyword on disk.
var DefaultExtensions = []string{".jpg", ".jpeg", ".png", ".webp", ".gif", ".bmp", ".tiff"}

// DirResolver looks keywords up as files in a local directory. The keyword
// "Mountain Lake" matches mountain-lake.jpg, mountain-lake.png and so on. A
// sibling file with the ".credit" extension supplies the caption.
type DirResolver struct {
	Dir        string
	Extensions []string
}

// NewDirResolver returns a resolver rooted at dir.
func NewDirResolver(dir string) *DirResolver {
	return &DirResolver{Dir: dir, Extensions: DefaultExtensions}
}

// Fetch implements Fetcher.
func (d *DirResolver) Fetch(ctx context.Context, keyword string) (model.ImageAsset, error) {
	if err := ctx.Err(); err != nil {
		return model.ImageAsset{}, err
	}
	slug := Slug(keyword)
	if slug == "" {
		return model.ImageAsset{}, ErrNotFound
	}
	exts := d.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	for _, ext := range exts {
		path := filepath.Join(d.Dir, slug+ext)
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return model.ImageAsset{}, fmt.Errorf("read %s: %w", path, err)
		}
		credit := ""
		if b, err := os.ReadFile(filepath.Join(d.Dir, slug+".credit")); err == nil {
			credit = strings.TrimSpace(string(b))
		}
		a, err := FromBytes(data, credit)
		if err != nil {
			return model.ImageAsset{}, fmt.Errorf("%s: %w", path, err)
		}
		return a, nil
	}
	return model.ImageAsset{}, ErrNotFound
}

// Resolve fetches keywords one at a time. Wrap the resolver in a
// BatchResolver for parallel lookups.
func (d *DirResolver) Resolve(ctx context.Context, keywords []string) (model.Images, error) {
	return NewBatchResolver(d, WithConcurrency(1)).Resolve(ctx, keywords)
}

// Slug lower-cases keyword and joins its words with hyphens. Characters
// other than letters and digits separate words.
func Slug(keyword string) string {
	var sb strings.Builder
	sep := false
	for _, r := range strings.ToLower(keyword) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if sep && sb.Len() > 0 {
				sb.WriteByte('-')
			}
			sb.WriteRune(r)
			sep = false
			continue
		}
		sep = true
	}
	return sb.String()
}
