package canvas

import (
	"image"
	"math"
	"strings"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
)

// Composite operations understood by SetGlobalCompositeOperation.
const (
	CompositeSourceOver      = "source-over"
	CompositeDestinationOver = "destination-over"
)

const defaultFont = "10px sans-serif"

type drawState struct {
	fill, stroke           gg.RGBA
	fillStyle, strokeStyle string
	lineWidth              float64
	dash                   []float64
	alpha                  float64
	composite              string
	font                   Font
	fontSpec               string
	textAlign              string
	textBaseline           string
	matrix                 gg.Matrix
}

func initialState() drawState {
	font, _ := ParseFont(defaultFont)
	return drawState{
		fill:         gg.RGBA{A: 1},
		stroke:       gg.RGBA{A: 1},
		fillStyle:    "#000000",
		strokeStyle:  "#000000",
		lineWidth:    1,
		alpha:        1,
		composite:    CompositeSourceOver,
		font:         font,
		fontSpec:     defaultFont,
		textAlign:    "start",
		textBaseline: "alphabetic",
		matrix:       gg.Identity(),
	}
}

// TextMetrics is the result of MeasureText.
type TextMetrics struct {
	Width                    float64
	ActualBoundingBoxAscent  float64
	ActualBoundingBoxDescent float64
}

// Context is the 2D drawing API of a Canvas. It follows the HTML canvas
// model: styles and transforms live in a save/restore stack, and path
// coordinates are transformed when they are added to the path.
//
// Invalid style values are ignored, as in the browser API. Paint failures are
// kept on the canvas and reported by the next encode.
type Context struct {
	canvas *Canvas
	st     drawState
	stack  []drawState
	path   *gg.Path
}

func newContext(c *Canvas) *Context {
	return &Context{canvas: c, st: initialState(), path: gg.NewPath()}
}

// Canvas returns the canvas this context draws on.
func (ctx *Context) Canvas() *Canvas {
	return ctx.canvas
}

// Save pushes the current drawing state.
func (ctx *Context) Save() {
	saved := ctx.st
	saved.dash = append([]float64(nil), ctx.st.dash...)
	ctx.stack = append(ctx.stack, saved)
}

// Restore pops the last saved drawing state. It is a no-op on an empty stack.
func (ctx *Context) Restore() {
	if len(ctx.stack) == 0 {
		return
	}
	ctx.st = ctx.stack[len(ctx.stack)-1]
	ctx.stack = ctx.stack[:len(ctx.stack)-1]
}

func (ctx *Context) SetFillStyle(style string) {
	if c, err := ParseColor(style); err == nil {
		ctx.st.fill = c
		ctx.st.fillStyle = style
	}
}

func (ctx *Context) FillStyle() string { return ctx.st.fillStyle }

func (ctx *Context) SetStrokeStyle(style string) {
	if c, err := ParseColor(style); err == nil {
		ctx.st.stroke = c
		ctx.st.strokeStyle = style
	}
}

func (ctx *Context) StrokeStyle() string { return ctx.st.strokeStyle }

func (ctx *Context) SetLineWidth(w float64) {
	if w > 0 && !math.IsInf(w, 0) && !math.IsNaN(w) {
		ctx.st.lineWidth = w
	}
}

func (ctx *Context) LineWidth() float64 { return ctx.st.lineWidth }

// SetLineDash sets the dash pattern. An odd-length pattern is repeated to
// make it even; a pattern with negative entries is ignored.
func (ctx *Context) SetLineDash(segments []float64) {
	for _, s := range segments {
		if s < 0 || math.IsNaN(s) {
			return
		}
	}
	dash := append([]float64(nil), segments...)
	if len(dash)%2 == 1 {
		dash = append(dash, dash...)
	}
	ctx.st.dash = dash
}

func (ctx *Context) LineDash() []float64 { return append([]float64(nil), ctx.st.dash...) }

func (ctx *Context) SetGlobalAlpha(a float64) {
	if a >= 0 && a <= 1 {
		ctx.st.alpha = a
	}
}

func (ctx *Context) GlobalAlpha() float64 { return ctx.st.alpha }

// SetGlobalCompositeOperation selects how new drawing combines with the
// existing content. Unsupported operations are ignored.
func (ctx *Context) SetGlobalCompositeOperation(op string) {
	switch op {
	case CompositeSourceOver, CompositeDestinationOver:
		ctx.st.composite = op
	}
}

func (ctx *Context) GlobalCompositeOperation() string { return ctx.st.composite }

// SetFont sets the font from CSS shorthand, e.g. "bold 12px Helvetica".
func (ctx *Context) SetFont(spec string) {
	if f, err := ParseFont(spec); err == nil {
		ctx.st.font = f
		ctx.st.fontSpec = spec
	}
}

func (ctx *Context) Font() string { return ctx.st.fontSpec }

func (ctx *Context) SetTextAlign(align string) {
	switch align {
	case "start", "end", "left", "right", "center":
		ctx.st.textAlign = align
	}
}

func (ctx *Context) SetTextBaseline(baseline string) {
	switch baseline {
	case "alphabetic", "top", "hanging", "middle", "ideographic", "bottom":
		ctx.st.textBaseline = baseline
	}
}

// Transforms

func (ctx *Context) Translate(x, y float64) {
	ctx.st.matrix = ctx.st.matrix.Multiply(gg.Translate(x, y))
}

func (ctx *Context) Scale(x, y float64) {
	ctx.st.matrix = ctx.st.matrix.Multiply(gg.Scale(x, y))
}

func (ctx *Context) Rotate(angle float64) {
	ctx.st.matrix = ctx.st.matrix.Multiply(gg.Rotate(angle))
}

// Transform multiplies the current matrix by [a c e; b d f].
func (ctx *Context) Transform(a, b, c, d, e, f float64) {
	ctx.st.matrix = ctx.st.matrix.Multiply(gg.Matrix{A: a, B: c, C: e, D: b, E: d, F: f})
}

// SetTransform replaces the current matrix with [a c e; b d f].
func (ctx *Context) SetTransform(a, b, c, d, e, f float64) {
	ctx.st.matrix = gg.Matrix{A: a, B: c, C: e, D: b, E: d, F: f}
}

func (ctx *Context) ResetTransform() {
	ctx.st.matrix = gg.Identity()
}

// Paths

func (ctx *Context) BeginPath() {
	ctx.path = gg.NewPath()
}

func (ctx *Context) ClosePath() {
	if ctx.path.HasCurrentPoint() {
		ctx.path.Close()
	}
}

func (ctx *Context) pt(x, y float64) gg.Point {
	return ctx.st.matrix.TransformPoint(gg.Pt(x, y))
}

func (ctx *Context) MoveTo(x, y float64) {
	p := ctx.pt(x, y)
	ctx.path.MoveTo(p.X, p.Y)
}

func (ctx *Context) LineTo(x, y float64) {
	p := ctx.pt(x, y)
	if !ctx.path.HasCurrentPoint() {
		ctx.path.MoveTo(p.X, p.Y)
		return
	}
	ctx.path.LineTo(p.X, p.Y)
}

func (ctx *Context) QuadraticCurveTo(cpx, cpy, x, y float64) {
	if !ctx.path.HasCurrentPoint() {
		ctx.MoveTo(cpx, cpy)
	}
	c, p := ctx.pt(cpx, cpy), ctx.pt(x, y)
	ctx.path.QuadraticTo(c.X, c.Y, p.X, p.Y)
}

func (ctx *Context) BezierCurveTo(cp1x, cp1y, cp2x, cp2y, x, y float64) {
	if !ctx.path.HasCurrentPoint() {
		ctx.MoveTo(cp1x, cp1y)
	}
	c1, c2, p := ctx.pt(cp1x, cp1y), ctx.pt(cp2x, cp2y), ctx.pt(x, y)
	ctx.path.CubicTo(c1.X, c1.Y, c2.X, c2.Y, p.X, p.Y)
}

// Rect adds a closed rectangle subpath.
func (ctx *Context) Rect(x, y, w, h float64) {
	ctx.MoveTo(x, y)
	ctx.LineTo(x+w, y)
	ctx.LineTo(x+w, y+h)
	ctx.LineTo(x, y+h)
	ctx.ClosePath()
	ctx.MoveTo(x, y)
}

// Arc adds a circular arc centred on (x, y). Angles are in radians measured
// clockwise from the positive x axis. If the path already has a current point
// a straight line joins it to the start of the arc.
func (ctx *Context) Arc(x, y, r, start, end float64, anticlockwise bool) {
	if r < 0 {
		return
	}
	sweep := arcSweep(start, end, anticlockwise)

	sx, sy := x+r*math.Cos(start), y+r*math.Sin(start)
	if ctx.path.HasCurrentPoint() {
		ctx.LineTo(sx, sy)
	} else {
		ctx.MoveTo(sx, sy)
	}
	if sweep == 0 || r == 0 {
		return
	}

	segments := int(math.Ceil(math.Abs(sweep) / (math.Pi / 2)))
	step := sweep / float64(segments)
	a1 := start
	for i := 0; i < segments; i++ {
		a2 := a1 + step
		k := 4.0 / 3.0 * math.Tan((a2-a1)/4)
		cos1, sin1 := math.Cos(a1), math.Sin(a1)
		cos2, sin2 := math.Cos(a2), math.Sin(a2)
		c1 := ctx.pt(x+r*(cos1-k*sin1), y+r*(sin1+k*cos1))
		c2 := ctx.pt(x+r*(cos2+k*sin2), y+r*(sin2-k*cos2))
		p := ctx.pt(x+r*cos2, y+r*sin2)
		ctx.path.CubicTo(c1.X, c1.Y, c2.X, c2.Y, p.X, p.Y)
		a1 = a2
	}
}

func arcSweep(start, end float64, anticlockwise bool) float64 {
	const full = 2 * math.Pi
	if !anticlockwise {
		if end-start >= full {
			return full
		}
		s := math.Mod(end-start, full)
		if s < 0 {
			s += full
		}
		return s
	}
	if start-end >= full {
		return -full
	}
	s := math.Mod(start-end, full)
	if s < 0 {
		s += full
	}
	return -s
}

// Painting

func (ctx *Context) withAlpha(c gg.RGBA) gg.RGBA {
	c.A *= ctx.st.alpha
	return c
}

// lineScale approximates how the current transform scales lengths.
func (ctx *Context) lineScale() float64 {
	m := ctx.st.matrix
	det := m.A*m.E - m.B*m.D
	return math.Sqrt(math.Abs(det))
}

func (ctx *Context) Fill() {
	if len(ctx.path.Elements()) == 0 {
		return
	}
	ctx.canvas.record(ctx.canvas.painter.fillPath(ctx.path.Clone(), ctx.withAlpha(ctx.st.fill), ctx.st.composite))
}

func (ctx *Context) Stroke() {
	if len(ctx.path.Elements()) == 0 {
		return
	}
	scale := ctx.lineScale()
	dash := make([]float64, len(ctx.st.dash))
	for i, d := range ctx.st.dash {
		dash[i] = d * scale
	}
	ctx.canvas.record(ctx.canvas.painter.strokePath(ctx.path.Clone(), strokeStyle{
		color: ctx.withAlpha(ctx.st.stroke),
		width: ctx.st.lineWidth * scale,
		dash:  dash,
	}, ctx.st.composite))
}

func (ctx *Context) rectPath(x, y, w, h float64) *gg.Path {
	p := gg.NewPath()
	for i, c := range [][2]float64{{x, y}, {x + w, y}, {x + w, y + h}, {x, y + h}} {
		pt := ctx.pt(c[0], c[1])
		if i == 0 {
			p.MoveTo(pt.X, pt.Y)
		} else {
			p.LineTo(pt.X, pt.Y)
		}
	}
	p.Close()
	return p
}

// FillRect paints a rectangle without touching the current path.
func (ctx *Context) FillRect(x, y, w, h float64) {
	if w == 0 || h == 0 {
		return
	}
	ctx.canvas.record(ctx.canvas.painter.fillPath(ctx.rectPath(x, y, w, h), ctx.withAlpha(ctx.st.fill), ctx.st.composite))
}

// StrokeRect outlines a rectangle without touching the current path.
func (ctx *Context) StrokeRect(x, y, w, h float64) {
	ctx.canvas.record(ctx.canvas.painter.strokePath(ctx.rectPath(x, y, w, h), strokeStyle{
		color: ctx.withAlpha(ctx.st.stroke),
		width: ctx.st.lineWidth * ctx.lineScale(),
		dash:  append([]float64(nil), ctx.st.dash...),
	}, ctx.st.composite))
}

// ClearRect makes a rectangle fully transparent. The rectangle is transformed
// and then cleared by its device-space bounding box.
func (ctx *Context) ClearRect(x, y, w, h float64) {
	bounds := pathBounds(ctx.rectPath(x, y, w, h))
	ctx.canvas.record(ctx.canvas.painter.clear(bounds))
}

func pathBounds(p *gg.Path) image.Rectangle {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	visit := func(pt gg.Point) {
		minX, minY = math.Min(minX, pt.X), math.Min(minY, pt.Y)
		maxX, maxY = math.Max(maxX, pt.X), math.Max(maxY, pt.Y)
	}
	for _, el := range p.Elements() {
		switch e := el.(type) {
		case gg.MoveTo:
			visit(e.Point)
		case gg.LineTo:
			visit(e.Point)
		}
	}
	if math.IsInf(minX, 0) {
		return image.Rectangle{}
	}
	return image.Rect(int(math.Floor(minX)), int(math.Floor(minY)), int(math.Ceil(maxX)), int(math.Ceil(maxY)))
}

// Text

func (ctx *Context) face() (text.Face, *fontEntry) {
	return ctx.canvas.backend.fonts.face(ctx.st.font)
}

// MeasureText measures s in the current font, in user-space units.
func (ctx *Context) MeasureText(s string) TextMetrics {
	face, _ := ctx.face()
	w, _ := text.Measure(s, face)
	m := face.Metrics()
	return TextMetrics{
		Width:                    w,
		ActualBoundingBoxAscent:  m.Ascent,
		ActualBoundingBoxDescent: m.Descent,
	}
}

// FillText draws s with its anchor at (x, y) according to the current text
// alignment and baseline. Rotation in the transform is not applied to glyphs.
func (ctx *Context) FillText(s string, x, y float64) {
	if strings.TrimSpace(s) == "" {
		return
	}
	face, _ := ctx.face()
	w, _ := text.Measure(s, face)
	m := face.Metrics()

	switch ctx.st.textAlign {
	case "center":
		x -= w / 2
	case "right", "end":
		x -= w
	}
	switch ctx.st.textBaseline {
	case "top", "hanging":
		y += m.Ascent
	case "middle":
		y += (m.Ascent - m.Descent) / 2
	case "bottom", "ideographic":
		y -= m.Descent
	}

	scale := ctx.lineScale()
	font := ctx.st.font
	font.Size *= scale
	scaled, entry := ctx.canvas.backend.fonts.face(font)
	origin := ctx.pt(x, y)

	ctx.canvas.record(ctx.canvas.painter.fillText(textRun{
		text:  s,
		x:     origin.X,
		y:     origin.Y,
		font:  font,
		face:  scaled,
		entry: entry,
		color: ctx.withAlpha(ctx.st.fill),
	}, ctx.st.composite))
}

// DrawImage draws img scaled into the rectangle (x, y, w, h). Zero w or h
// use the image's own size.
func (ctx *Context) DrawImage(img image.Image, x, y, w, h float64) {
	if img == nil {
		return
	}
	b := img.Bounds()
	if w == 0 {
		w = float64(b.Dx())
	}
	if h == 0 {
		h = float64(b.Dy())
	}
	scale := ctx.lineScale()
	origin := ctx.pt(x, y)
	ctx.canvas.record(ctx.canvas.painter.drawImage(imageRun{
		img:   img,
		x:     origin.X,
		y:     origin.Y,
		w:     w * scale,
		h:     h * scale,
		alpha: ctx.st.alpha,
	}, ctx.st.composite))
}
