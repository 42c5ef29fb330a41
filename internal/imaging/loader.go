package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif" // Register GIF format decoder
	"net/url"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
)

// ImageCache provides thread-safe caching of decoded images referenced by
// charts and plugins.
//
// A source is either a file path or a data URL ("data:image/png;base64,...").
// Once a source is decoded, subsequent Load calls for the same source return
// the cached copy.
//
// # Memory Management
//
// Cached images remain in memory until explicitly removed via Evict() or
// Clear(). Every render backend owns its own cache, so dropping the backend
// releases its images.
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

// Load retrieves an image from the cache or decodes it if not cached.
//
// Parameters:
//   - src: A file path, or a data URL carrying base64 or percent-encoded
//     image bytes. Supported formats are PNG, JPEG, GIF, BMP and TIFF.
//
// # Errors
//
//   - Returns error if the file does not exist or cannot be read
//   - Returns error if the data URL is malformed
//   - Returns error if the bytes are not a supported image format
func (c *ImageCache) Load(src string) (image.Image, error) {
	c.mu.RLock()
	if img, ok := c.images[src]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	var (
		img image.Image
		err error
	)
	if strings.HasPrefix(src, "data:") {
		var data []byte
		data, _, err = DecodeDataURL(src)
		if err == nil {
			img, _, err = Decode(data)
		}
	} else {
		img, err = imaging.Open(src)
		if err != nil {
			err = fmt.Errorf("failed to open image: %w", err)
		}
	}
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.images[src] = img
	c.mu.Unlock()

	return img, nil
}

// Clear removes all images from the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]image.Image)
	c.mu.Unlock()
}

// Evict removes a specific image from the cache. Unknown sources are ignored.
func (c *ImageCache) Evict(src string) {
	c.mu.Lock()
	delete(c.images, src)
	c.mu.Unlock()
}

// Len returns the number of cached images.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// Decode decodes encoded image bytes and reports the format name
// ("png", "jpeg", "gif", ...).
func Decode(data []byte) (image.Image, string, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	return img, format, nil
}

// DecodeDataURL splits a data URL into its payload and media type.
func DecodeDataURL(s string) ([]byte, string, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return nil, "", fmt.Errorf("not a data URL")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, "", fmt.Errorf("malformed data URL: missing ','")
	}

	mediaType, isBase64 := strings.CutSuffix(meta, ";base64")
	if isBase64 {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, "", fmt.Errorf("malformed data URL: %w", err)
		}
		return data, mediaType, nil
	}

	unescaped, err := url.PathUnescape(payload)
	if err != nil {
		return nil, "", fmt.Errorf("malformed data URL: %w", err)
	}
	return []byte(unescaped), mediaType, nil
}

// ImageInfo contains metadata about an encoded image.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is the decoded format: "png", "jpeg", "gif", ...
	Format string `json:"format"`

	// HasAlpha indicates whether the decoded image carries an alpha channel.
	HasAlpha bool `json:"has_alpha"`

	// SizeBytes is the length of the encoded data.
	SizeBytes int `json:"size_bytes"`
}

// Inspect decodes data and describes it.
func Inspect(data []byte) (*ImageInfo, image.Image, error) {
	img, format, err := Decode(data)
	if err != nil {
		return nil, nil, err
	}

	hasAlpha := false
	switch img.(type) {
	case *image.RGBA, *image.NRGBA, *image.RGBA64, *image.NRGBA64:
		hasAlpha = true
	}

	b := img.Bounds()
	return &ImageInfo{
		Width:     b.Dx(),
		Height:    b.Dy(),
		Format:    format,
		HasAlpha:  hasAlpha,
		SizeBytes: len(data),
	}, img, nil
}
