package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
)

// ImageCache provides thread-safe caching of loaded vehicle photographs so
// repeated tool calls on the same file do not decode it again.
//
// Images are keyed by the exact path string. Photos are rotated according to
// their EXIF orientation tag when the cache was created with auto-orientation
// enabled (the default), so plate coordinates refer to the upright image.
//
// # Memory Management
//
// Cached images remain in memory until explicitly removed via Evict() or Clear().
//
// # Example Usage
//
//	cache := imaging.NewImageCache()
//	img, err := cache.Load("/path/to/car.jpg")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := detection.DetectPlate(img)
type ImageCache struct {
	mu         sync.RWMutex
	images     map[string]image.Image
	autoOrient bool
}

// CacheOption configures an ImageCache.
type CacheOption func(*ImageCache)

// WithAutoOrientation controls whether EXIF orientation is applied on load.
func WithAutoOrientation(enabled bool) CacheOption {
	return func(c *ImageCache) {
		c.autoOrient = enabled
	}
}

// NewImageCache creates and initializes a new empty image cache.
// Auto-orientation is enabled unless overridden by an option.
func NewImageCache(opts ...CacheOption) *ImageCache {
	c := &ImageCache{
		images:     make(map[string]image.Image),
		autoOrient: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load retrieves an image from the cache or loads it from disk if not cached.
//
// Supported formats are those understood by github.com/disintegration/imaging:
// JPEG, PNG, GIF, TIFF and BMP.
//
// # Errors
//
//   - Returns "failed to open image" if the file does not exist or cannot be read
//   - Returns "failed to decode image" if the file is not a supported image
func (c *ImageCache) Load(path string) (image.Image, error) {
	c.mu.RLock()
	if img, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	img, err := imaging.Open(path, imaging.AutoOrientation(c.autoOrient))
	if err != nil {
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) {
			return nil, fmt.Errorf("failed to open image: %w", err)
		}
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	c.mu.Lock()
	c.images[path] = img
	c.mu.Unlock()

	return img, nil
}

// Len returns the number of cached images.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// Clear removes all images from the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]image.Image)
	c.mu.Unlock()
}

// Evict removes a specific image from the cache by its path.
// If the path is not in the cache, this method does nothing.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// DecodeBase64 decodes an image supplied inline, either as bare standard
// base64 or as a data URL ("data:image/jpeg;base64,...").
//
// When autoOrient is true the EXIF orientation tag of JPEG input is applied.
func DecodeBase64(data string, autoOrient bool) (image.Image, error) {
	data = strings.TrimSpace(data)
	if strings.HasPrefix(data, "data:") {
		comma := strings.IndexByte(data, ',')
		if comma < 0 || !strings.HasSuffix(data[:comma], ";base64") {
			return nil, fmt.Errorf("unsupported data URL: expected ';base64,' payload")
		}
		data = data[comma+1:]
	}
	if data == "" {
		return nil, fmt.Errorf("empty image data")
	}

	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 image data: %w", err)
	}

	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(autoOrient))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// ImageInfo contains metadata about a loaded image file.
type ImageInfo struct {
	// Width is the image width in pixels, after orientation is applied.
	Width int `json:"width"`

	// Height is the image height in pixels, after orientation is applied.
	Height int `json:"height"`

	// Format is the format implied by the file extension: "png", "jpeg",
	// "gif", "tiff", "bmp", or "unknown".
	Format string `json:"format"`

	// ColorDepth indicates the bit depth per channel: "8-bit" or "16-bit".
	ColorDepth string `json:"color_depth"`

	// HasAlpha reports whether any decoded pixel is not fully opaque.
	HasAlpha bool `json:"has_alpha"`

	// FileSizeBytes is the size of the image file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadImageInfo loads an image through the cache and returns its metadata.
//
// # Format Detection
//
// The format comes from imaging.FormatFromFilename, so it reflects the file
// extension rather than the file contents.
//
// # Color Depth Detection
//
// Color depth is determined by the decoded image type:
//   - *image.RGBA64, *image.NRGBA64, *image.Gray16 -> "16-bit"
//   - All other types -> "8-bit"
func LoadImageInfo(cache *ImageCache, path string) (*ImageInfo, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	format := "unknown"
	if f, err := imaging.FormatFromFilename(filepath.Base(path)); err == nil {
		format = strings.ToLower(f.String())
	}

	colorDepth := "8-bit"
	switch img.(type) {
	case *image.RGBA64, *image.NRGBA64, *image.Gray16:
		colorDepth = "16-bit"
	}

	// Every standard image type reports Opaque; PNGs stored as RGBA are
	// common even when no pixel is transparent.
	hasAlpha := false
	if o, ok := img.(interface{ Opaque() bool }); ok {
		hasAlpha = !o.Opaque()
	}

	bounds := img.Bounds()
	return &ImageInfo{
		Width:         bounds.Dx(),
		Height:        bounds.Dy(),
		Format:        format,
		ColorDepth:    colorDepth,
		HasAlpha:      hasAlpha,
		FileSizeBytes: stat.Size(),
	}, nil
}

// DimensionsResult contains the width and height of an image.
type DimensionsResult struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// GetDimensions returns the dimensions of an image without additional metadata.
// The image is loaded into the cache if not already present.
func GetDimensions(cache *ImageCache, path string) (*DimensionsResult, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	return &DimensionsResult{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}, nil
}
