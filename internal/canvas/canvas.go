package canvas

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"io"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
)

// Type selects the kind of surface a Canvas draws on.
type Type string

const (
	TypeImage Type = "image"
	TypePDF   Type = "pdf"
	TypeSVG   Type = "svg"
)

// ParseType maps a user-facing surface type to a Type. The empty string is
// TypeImage.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "image":
		return TypeImage, nil
	case "pdf":
		return TypePDF, nil
	case "svg":
		return TypeSVG, nil
	}
	return "", fmt.Errorf("unknown canvas type %q", s)
}

// Output formats.
const (
	MimePNG  = "image/png"
	MimeJPEG = "image/jpeg"
	MimePDF  = "application/pdf"
	MimeSVG  = "image/svg+xml"
	MimeRaw  = "raw"
)

// DefaultJPEGQuality matches the browser default of 0.75.
const DefaultJPEGQuality = 75

// ErrUnsupportedFormat is returned when a canvas cannot produce the requested
// output format.
var ErrUnsupportedFormat = errors.New("unsupported output format")

// DefaultMime returns the format produced when no format is requested.
func (t Type) DefaultMime() string {
	switch t {
	case TypePDF:
		return MimePDF
	case TypeSVG:
		return MimeSVG
	}
	return MimePNG
}

// Canvas is a single-use off-screen drawing surface.
type Canvas struct {
	width, height int
	typ           Type
	backend       *Backend

	mu      sync.Mutex
	ctx     *Context
	painter painter
	raster  *rasterPainter
	vector  *vectorPainter
	err     error
}

func newCanvas(b *Backend, w, h int, t Type) *Canvas {
	c := &Canvas{width: w, height: h, typ: t, backend: b}
	if t == TypeImage {
		c.raster = newRasterPainter(w, h)
		c.painter = c.raster
	} else {
		c.vector = newVectorPainter(w, h)
		c.painter = c.vector
	}
	c.ctx = newContext(c)
	return c
}

func (c *Canvas) Width() int  { return c.width }
func (c *Canvas) Height() int { return c.height }
func (c *Canvas) Type() Type  { return c.typ }

// GetContext returns the canvas' 2D drawing context. Every call returns the
// same context.
func (c *Canvas) GetContext() *Context {
	return c.ctx
}

// Backend returns the backend that created the canvas.
func (c *Canvas) Backend() *Backend {
	return c.backend
}

// record keeps the first paint failure for the next encode.
func (c *Canvas) record(err error) {
	if err == nil {
		return
	}
	c.mu.Lock()
	if c.err == nil {
		c.err = err
	}
	c.mu.Unlock()
}

func (c *Canvas) paintErr() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Image returns a copy of the current pixels of an image canvas.
func (c *Canvas) Image() (*image.RGBA, error) {
	if c.raster == nil {
		return nil, fmt.Errorf("%w: %s canvas has no pixels", ErrUnsupportedFormat, c.typ)
	}
	return c.raster.snapshot(), nil
}

// Close releases the pixel buffer of an image canvas. Encoders created before
// Close keep working on their own snapshot.
func (c *Canvas) Close() error {
	if c.raster != nil {
		c.raster.close()
	}
	return nil
}

// ToBuffer encodes the canvas. An empty mime selects the type's default.
//
// Image canvases produce image/png, image/jpeg or raw; PDF and SVG canvases
// produce only their own format.
func (c *Canvas) ToBuffer(mime string) ([]byte, error) {
	if mime == "" {
		mime = c.typ.DefaultMime()
	}
	if err := c.paintErr(); err != nil {
		return nil, err
	}
	enc, err := c.encoder(mime)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := enc(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ToDataURL encodes the canvas as a base64 data URL.
func (c *Canvas) ToDataURL(mime string) (string, error) {
	if mime == "" {
		mime = c.typ.DefaultMime()
	}
	if mime == MimeRaw {
		return "", fmt.Errorf("%w: %s as data URL", ErrUnsupportedFormat, mime)
	}
	data, err := c.ToBuffer(mime)
	if err != nil {
		return "", err
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// encoder captures the canvas contents now and returns a function that
// writes them in the requested format. Drawing after encoder returns does
// not change what the function writes.
func (c *Canvas) encoder(mime string) (func(io.Writer) error, error) {
	switch c.typ {
	case TypeImage:
		switch mime {
		case MimePNG:
			img := c.raster.snapshot()
			return func(w io.Writer) error { return imaging.Encode(w, img, imaging.PNG) }, nil
		case MimeJPEG:
			img := c.raster.snapshot()
			return func(w io.Writer) error {
				return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(DefaultJPEGQuality))
			}, nil
		case MimeRaw:
			img := c.raster.snapshot()
			return func(w io.Writer) error {
				_, err := w.Write(rawARGB32(img))
				return err
			}, nil
		}
	case TypePDF:
		if mime == MimePDF {
			ops := c.vector.recording()
			return func(w io.Writer) error { return writePDF(w, c.width, c.height, ops) }, nil
		}
	case TypeSVG:
		if mime == MimeSVG {
			ops := c.vector.recording()
			return func(w io.Writer) error { return writeSVG(w, c.width, c.height, ops) }, nil
		}
	}
	return nil, fmt.Errorf("%w: %q on %s canvas", ErrUnsupportedFormat, mime, c.typ)
}

// rawARGB32 converts premultiplied RGBA pixels to 32-bit ARGB words in native
// byte order, rows top to bottom.
func rawARGB32(img *image.RGBA) []byte {
	b := img.Bounds()
	out := make([]byte, 0, b.Dx()*b.Dy()*4)
	var word [4]byte
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[(y-b.Min.Y)*img.Stride:]
		for x := 0; x < b.Dx(); x++ {
			p := row[x*4 : x*4+4]
			v := uint32(p[3])<<24 | uint32(p[0])<<16 | uint32(p[1])<<8 | uint32(p[2])
			binary.NativeEndian.PutUint32(word[:], v)
			out = append(out, word[:]...)
		}
	}
	return out
}
