package canvas

import (
	"image"
	"image/draw"

	"github.com/anthonynsimon/bild/blend"
	"github.com/anthonynsimon/bild/clone"
	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
)

type strokeStyle struct {
	color gg.RGBA
	width float64
	dash  []float64
}

type textRun struct {
	text  string
	x, y  float64 // device-space baseline origin
	font  Font    // size already scaled to device space
	face  text.Face
	entry *fontEntry
	color gg.RGBA
}

type imageRun struct {
	img        image.Image
	x, y, w, h float64
	alpha      float64
}

// painter is the paint target behind a Canvas. Paths arrive in device space.
type painter interface {
	fillPath(p *gg.Path, c gg.RGBA, op string) error
	strokePath(p *gg.Path, s strokeStyle, op string) error
	fillText(t textRun, op string) error
	drawImage(r imageRun, op string) error
	clear(r image.Rectangle) error
}

// rasterPainter paints immediately onto a gg context.
type rasterPainter struct {
	dc            *gg.Context
	width, height int
}

func newRasterPainter(w, h int) *rasterPainter {
	return &rasterPainter{dc: gg.NewContext(w, h), width: w, height: h}
}

// paint runs draw directly for source-over. For destination-over, draw goes
// to a separate layer and the existing surface is composited on top of it.
func (p *rasterPainter) paint(op string, draw func(dc *gg.Context) error) error {
	if op != CompositeDestinationOver {
		return draw(p.dc)
	}

	layer := gg.NewContext(p.width, p.height)
	defer layer.Close()
	if err := draw(layer); err != nil {
		return err
	}
	merged := blend.Normal(layer.Image(), p.dc.Image())
	p.replace(merged)
	return nil
}

func (p *rasterPainter) replace(img image.Image) {
	old := p.dc
	p.dc = gg.NewContextForImage(img)
	_ = old.Close()
}

func setPath(dc *gg.Context, path *gg.Path) {
	dc.Identity()
	dc.ClearPath()
	for _, el := range path.Elements() {
		switch e := el.(type) {
		case gg.MoveTo:
			dc.MoveTo(e.Point.X, e.Point.Y)
		case gg.LineTo:
			dc.LineTo(e.Point.X, e.Point.Y)
		case gg.QuadTo:
			dc.QuadraticTo(e.Control.X, e.Control.Y, e.Point.X, e.Point.Y)
		case gg.CubicTo:
			dc.CubicTo(e.Control1.X, e.Control1.Y, e.Control2.X, e.Control2.Y, e.Point.X, e.Point.Y)
		case gg.Close:
			dc.ClosePath()
		}
	}
}

func (p *rasterPainter) fillPath(path *gg.Path, c gg.RGBA, op string) error {
	if c.A <= 0 {
		return nil
	}
	return p.paint(op, func(dc *gg.Context) error {
		setPath(dc, path)
		dc.SetColor(c.Color())
		return dc.Fill()
	})
}

func (p *rasterPainter) strokePath(path *gg.Path, s strokeStyle, op string) error {
	if s.color.A <= 0 || s.width <= 0 {
		return nil
	}
	return p.paint(op, func(dc *gg.Context) error {
		setPath(dc, path)
		dc.SetColor(s.color.Color())
		dc.SetLineWidth(s.width)
		if len(s.dash) > 0 {
			dc.SetDash(s.dash...)
		} else {
			dc.ClearDash()
		}
		return dc.Stroke()
	})
}

func (p *rasterPainter) fillText(t textRun, op string) error {
	if t.color.A <= 0 {
		return nil
	}
	return p.paint(op, func(dc *gg.Context) error {
		dc.Identity()
		dc.SetFont(t.face)
		dc.SetColor(t.color.Color())
		dc.DrawString(t.text, t.x, t.y)
		return nil
	})
}

func (p *rasterPainter) drawImage(r imageRun, op string) error {
	if r.alpha <= 0 {
		return nil
	}
	return p.paint(op, func(dc *gg.Context) error {
		dc.Identity()
		dc.DrawImageEx(gg.ImageBufFromImage(r.img), gg.DrawImageOptions{
			X:         r.x,
			Y:         r.y,
			DstWidth:  r.w,
			DstHeight: r.h,
			Opacity:   r.alpha,
		})
		return nil
	})
}

func (p *rasterPainter) clear(r image.Rectangle) error {
	full := image.Rect(0, 0, p.width, p.height)
	r = r.Intersect(full)
	if r.Empty() {
		return nil
	}
	if r == full {
		p.dc.Clear()
		return nil
	}
	img := clone.AsRGBA(p.dc.Image())
	draw.Draw(img, r, image.Transparent, image.Point{}, draw.Src)
	p.replace(img)
	return nil
}

// snapshot returns a private copy of the current pixels.
func (p *rasterPainter) snapshot() *image.RGBA {
	return clone.AsRGBA(p.dc.Image())
}

func (p *rasterPainter) close() {
	_ = p.dc.Close()
}
