package canvas

import (
	"fmt"
	"image"

	"github.com/ironsheep/chart-canvas-mcp/internal/imaging"
	"github.com/ironsheep/chart-canvas-mcp/internal/modcache"
)

// ModuleID is the identifier the canvas backend is registered under.
const ModuleID = "canvas"

func init() {
	modcache.Register(ModuleID, func(*modcache.Loader) (any, error) {
		return NewBackend()
	})
}

// ImageSource loads images referenced by path or data URL.
type ImageSource interface {
	Load(src string) (image.Image, error)
}

// Backend creates canvases and owns the fonts they draw text with. Fonts
// registered on one Backend are invisible to every other Backend.
type Backend struct {
	fonts  *fontRegistry
	images ImageSource
}

// BackendOption configures a Backend.
type BackendOption func(*Backend)

// WithImageSource overrides where LoadImage reads images from.
func WithImageSource(src ImageSource) BackendOption {
	return func(b *Backend) {
		b.images = src
	}
}

// NewBackend creates a backend with the built-in Go fonts registered under
// the "go" family. They are also the fallback for unknown families.
func NewBackend(opts ...BackendOption) (*Backend, error) {
	fonts, err := newFontRegistry()
	if err != nil {
		return nil, fmt.Errorf("load built-in fonts: %w", err)
	}
	b := &Backend{fonts: fonts, images: imaging.NewImageCache()}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// RegisterFont makes the font file at path available to subsequent draws
// under opts.Family. It must be called before the canvases that use it draw
// text.
func (b *Backend) RegisterFont(path string, opts FontOptions) error {
	return b.fonts.register(path, opts)
}

// CreateCanvas creates a w x h surface of type t.
func (b *Backend) CreateCanvas(w, h int, t Type) (*Canvas, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("invalid canvas size %dx%d", w, h)
	}
	switch t {
	case "":
		t = TypeImage
	case TypeImage, TypePDF, TypeSVG:
	default:
		return nil, fmt.Errorf("unknown canvas type %q", t)
	}
	return newCanvas(b, w, h, t), nil
}

// LoadImage loads an image by file path or data URL.
func (b *Backend) LoadImage(src string) (image.Image, error) {
	return b.images.Load(src)
}
