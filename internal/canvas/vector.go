package canvas

import (
	"image"

	"github.com/gogpu/gg"
)

type opKind int

const (
	opFill opKind = iota
	opStroke
	opText
	opImage
)

// vectorOp is one recorded paint operation of a vector surface.
type vectorOp struct {
	kind   opKind
	path   *gg.Path
	color  gg.RGBA
	stroke strokeStyle
	text   textRun
	image  imageRun
}

// vectorPainter records operations for later serialisation to PDF or SVG.
type vectorPainter struct {
	width, height int
	ops           []vectorOp
}

func newVectorPainter(w, h int) *vectorPainter {
	return &vectorPainter{width: w, height: h}
}

// add appends op, or places it beneath everything recorded so far for
// destination-over.
func (p *vectorPainter) add(op vectorOp, composite string) error {
	if composite == CompositeDestinationOver {
		p.ops = append([]vectorOp{op}, p.ops...)
		return nil
	}
	p.ops = append(p.ops, op)
	return nil
}

func (p *vectorPainter) fillPath(path *gg.Path, c gg.RGBA, op string) error {
	if c.A <= 0 {
		return nil
	}
	return p.add(vectorOp{kind: opFill, path: path, color: c}, op)
}

func (p *vectorPainter) strokePath(path *gg.Path, s strokeStyle, op string) error {
	if s.color.A <= 0 || s.width <= 0 {
		return nil
	}
	return p.add(vectorOp{kind: opStroke, path: path, stroke: s}, op)
}

func (p *vectorPainter) fillText(t textRun, op string) error {
	if t.color.A <= 0 {
		return nil
	}
	return p.add(vectorOp{kind: opText, text: t}, op)
}

func (p *vectorPainter) drawImage(r imageRun, op string) error {
	if r.alpha <= 0 {
		return nil
	}
	return p.add(vectorOp{kind: opImage, image: r}, op)
}

// clear drops the recording when the whole page is cleared. Vector output has
// no way to erase part of what is beneath, so partial clears are ignored.
func (p *vectorPainter) clear(r image.Rectangle) error {
	if r.Min.X <= 0 && r.Min.Y <= 0 && r.Max.X >= p.width && r.Max.Y >= p.height {
		p.ops = p.ops[:0:0]
	}
	return nil
}

// recording returns a copy of the operation list that later paints cannot
// modify.
func (p *vectorPainter) recording() []vectorOp {
	return append([]vectorOp(nil), p.ops...)
}
