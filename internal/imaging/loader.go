package imaging

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// ImageCache provides thread-safe caching of decoded images keyed by path.
//
// The MCP server uses it so repeated detect/remove calls on the same file do
// not decode it again. Cached images remain in memory until Evict or Clear.
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]image.Image
}

// NewImageCache creates and initializes a new empty image cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]image.Image),
	}
}

// Load retrieves an image from the cache or decodes it from disk if not cached.
//
// The image is cached using the exact path string provided. Different paths to
// the same file (relative vs absolute) result in separate cache entries.
func (c *ImageCache) Load(path string) (image.Image, error) {
	c.mu.RLock()
	if img, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	img, err := Decode(path)
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
	c.images = make(map[string]image.Image)
	c.mu.Unlock()
}

// Evict removes a specific image from the cache by its path.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// Len reports the number of cached images.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// inputExts lists the extensions Decode understands.
var inputExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
	".webp": true,
}

// IsSupported reports whether path has an extension Decode can read.
func IsSupported(path string) bool {
	return inputExts[strings.ToLower(filepath.Ext(path))]
}

// Decode reads and decodes an image file.
//
// EXIF orientation is applied so that the pixel grid matches what viewers
// display. Supported formats are PNG, JPEG, GIF, BMP, TIFF and WebP.
func Decode(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, err := imaging.Decode(f, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// OutputPath returns the path a cleaned image should be encoded to.
//
// Only pixels inside the mask may change, so formats whose encoder alters
// other pixels are rewritten to PNG: JPEG is lossy, GIF is palette-quantized
// and WebP cannot be encoded at all. PNG, BMP and TIFF keep their extension.
func OutputPath(path string) string {
	ext := filepath.Ext(path)
	format, err := imaging.FormatFromExtension(ext)
	if err != nil || format == imaging.JPEG || format == imaging.GIF {
		return strings.TrimSuffix(path, ext) + ".png"
	}
	return path
}

// Encode writes img to path in the format implied by its extension.
//
// The image is first written to a temporary file in the destination directory
// and renamed into place only after encoding succeeded, so a failed encode
// never leaves a truncated output behind.
func Encode(path string, img image.Image) error {
	format, err := imaging.FormatFromFilename(path)
	if err != nil {
		return fmt.Errorf("failed to encode image: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".partial-*"+filepath.Ext(path))
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	tmpPath := tmp.Name()

	if err := imaging.Encode(tmp, img, format, imaging.JPEGQuality(95)); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to encode image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write output file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

// ToNRGBA returns a copy of img as an *image.NRGBA with its origin at (0,0).
func ToNRGBA(img image.Image) *image.NRGBA {
	return imaging.Clone(img)
}
