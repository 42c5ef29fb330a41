package canvas

import (
	"fmt"
	"io"
)

// CreatePNGStream returns a stream of the canvas encoded as PNG.
func (c *Canvas) CreatePNGStream() (io.ReadCloser, error) {
	return c.createStream(MimePNG)
}

// CreateJPEGStream returns a stream of the canvas encoded as JPEG.
func (c *Canvas) CreateJPEGStream() (io.ReadCloser, error) {
	return c.createStream(MimeJPEG)
}

// CreatePDFStream returns a stream of a PDF canvas.
func (c *Canvas) CreatePDFStream() (io.ReadCloser, error) {
	return c.createStream(MimePDF)
}

// CreateStream returns a stream for mime, which must be PNG, JPEG or PDF.
func (c *Canvas) CreateStream(mime string) (io.ReadCloser, error) {
	switch mime {
	case MimePNG, MimeJPEG, MimePDF:
		return c.createStream(mime)
	}
	return nil, fmt.Errorf("%w: %q stream", ErrUnsupportedFormat, mime)
}

// createStream snapshots the canvas and starts encoding in the background.
// The stream is returned before any byte is written; encode failures surface
// as the error of the reader's final Read.
func (c *Canvas) createStream(mime string) (io.ReadCloser, error) {
	if err := c.paintErr(); err != nil {
		return nil, err
	}
	enc, err := c.encoder(mime)
	if err != nil {
		return nil, err
	}

	pr, pw := io.Pipe()
	go func() {
		pw.CloseWithError(enc(pw))
	}()
	return pr, nil
}
