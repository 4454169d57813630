package optimize

import (
	"crypto/sha256"
	"encoding/hex"
)

// Cache deduplicates prepared images by content hash so that an asset used
// by several sections is decoded and embedded once. It is not safe for
// concurrent use; each PDF build owns one.
type Cache struct {
	maxPixels int
	entries   map[string]cacheEntry
}

type cacheEntry struct {
	img *Image
	err error
}

// NewCache returns a cache preparing images with the given pixel limit.
func NewCache(maxPixels int) *Cache {
	return &Cache{maxPixels: maxPixels, entries: make(map[string]cacheEntry)}
}

// Prepare returns the prepared image for data and its content key. Failures
// are cached too, so a corrupt asset is decoded only once.
func (c *Cache) Prepare(data []byte) (*Image, string, error) {
	key := Key(data)
	if e, ok := c.entries[key]; ok {
		return e.img, key, e.err
	}
	img, err := Prepare(data, c.maxPixels)
	c.entries[key] = cacheEntry{img: img, err: err}
	return img, key, err
}

// Len returns the number of distinct images seen.
func (c *Cache) Len() int { return len(c.entries) }

// Key is the hex SHA-256 of data.
func Key(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
