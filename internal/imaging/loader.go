package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"io"
	"os"
	"sync"

	"github.com/disintegration/imaging"
)

// ErrEmptyImage is returned when a decoded image has no pixels.
var ErrEmptyImage = errors.New("image has zero width or height")

// Decode turns uploaded bytes into a normalized pixel buffer.
//
// The result is always a freshly allocated *image.NRGBA whose bounds start at
// (0, 0), so later stages can index pixels without consulting Bounds().Min.
// EXIF orientation in JPEG uploads is applied, which matters for phone
// photographs of signs.
//
// # Errors
//
//   - Returns error if the bytes are not a PNG, JPEG, or GIF image
//   - Returns ErrEmptyImage if the decoded image has no pixels
func Decode(data []byte) (*image.NRGBA, error) {
	return DecodeReader(bytes.NewReader(data))
}

// DecodeReader is Decode for an io.Reader.
func DecodeReader(r io.Reader) (*image.NRGBA, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return Normalize(img)
}

// Normalize copies img into a 0-origin NRGBA buffer after checking that it
// has pixels.
func Normalize(img image.Image) (*image.NRGBA, error) {
	if img == nil {
		return nil, ErrEmptyImage
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, ErrEmptyImage
	}
	return imaging.Clone(img), nil
}

// ImageCache provides thread-safe caching of decoded images keyed by path.
//
// The MCP tools address images by file path and typically run several tools
// against the same photograph, so decoding once and reusing the buffer avoids
// redundant disk reads. Cached buffers are shared between callers and must be
// treated as read-only; every pipeline stage that draws works on a copy.
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]*image.NRGBA
}

// NewImageCache creates and initializes a new empty image cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]*image.NRGBA),
	}
}

// Load retrieves an image from the cache or decodes it from disk.
//
// The image is cached using the exact path string provided. Different paths to
// the same file (e.g., relative vs absolute) result in separate cache entries.
func (c *ImageCache) Load(path string) (*image.NRGBA, error) {
	c.mu.RLock()
	if img, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, err := DecodeReader(f)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.images[path] = img
	c.mu.Unlock()

	return img, nil
}

// Clear removes all images from the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]*image.NRGBA)
	c.mu.Unlock()
}

// Evict removes a specific image from the cache by its path.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}
