package chart

import (
	"math"
	"slices"
)

const (
	categoryPercentage = 0.8
	barPercentage      = 0.9
	pointRadius        = 3
)

func borderWidth(ds Dataset, fallback float64) float64 {
	if ds.BorderWidth != nil {
		return *ds.BorderWidth
	}
	return fallback
}

// barController draws bars growing from the base line.
type barController struct{}

func (barController) Type() string { return "bar" }
func (barController) Axes() Axes   { return AxesBars }

// bar returns the rectangle of point i of dataset di at the given progress,
// and where its value end lies along the value axis.
func (b barController) bar(c *Chart, di, i int, progress float64) (x, y, w, h, end float64, ok bool) {
	s := c.scales
	if s == nil {
		return 0, 0, 0, 0, 0, false
	}
	group := c.VisibleDatasets(b)
	slot := slices.Index(group, di)
	ds := c.config.Data.Datasets[di]
	if slot < 0 || i >= len(ds.Data) {
		return 0, 0, 0, 0, 0, false
	}

	category := s.Band() * categoryPercentage
	stack := category / float64(len(group))
	thickness := stack * barPercentage
	base := s.BasePixel()
	start := s.IndexPixel(i) - category/2 + float64(slot)*stack + (stack-thickness)/2
	end = base + (s.ValuePixel(ds.Data[i])-base)*progress
	if s.horizontal {
		return math.Min(base, end), start, math.Abs(end-base), thickness, end, true
	}
	return start, math.Min(base, end), thickness, math.Abs(end-base), end, true
}

func (b barController) DrawDataset(c *Chart, di int, progress float64) {
	ds := c.config.Data.Datasets[di]
	width := borderWidth(ds, 0)
	ctx := c.ctx
	for i := range ds.Data {
		x, y, w, h, end, ok := b.bar(c, di, i, progress)
		if !ok {
			return
		}
		fill, stroke := c.DatasetColors(di, i)
		ctx.SetFillStyle(fill)
		ctx.FillRect(x, y, w, h)

		if width <= 0 || h == 0 || w == 0 {
			continue
		}
		// The border skips the side resting on the base line.
		base := c.scales.BasePixel()
		ctx.SetStrokeStyle(stroke)
		ctx.SetLineWidth(width)
		ctx.BeginPath()
		if c.scales.horizontal {
			ctx.MoveTo(base, y)
			ctx.LineTo(end, y)
			ctx.LineTo(end, y+h)
			ctx.LineTo(base, y+h)
		} else {
			ctx.MoveTo(x, base)
			ctx.LineTo(x, end)
			ctx.LineTo(x+w, end)
			ctx.LineTo(x+w, base)
		}
		ctx.Stroke()
	}
}

// Position is the middle of the bar's value end.
func (b barController) Position(c *Chart, di, i int) (float64, float64, bool) {
	x, y, w, h, end, ok := b.bar(c, di, i, 1)
	if !ok {
		return 0, 0, false
	}
	if c.scales.horizontal {
		return end, y + h/2, true
	}
	return x + w/2, end, true
}

// lineController draws a polyline through the points, optionally filled to
// the base line and smoothed by the dataset tension.
type lineController struct{}

func (lineController) Type() string { return "line" }
func (lineController) Axes() Axes   { return AxesPoints }

func (lineController) points(c *Chart, di int, progress float64) [][2]float64 {
	s := c.scales
	ds := c.config.Data.Datasets[di]
	if s == nil || len(ds.Data) == 0 {
		return nil
	}
	base := s.BasePixel()
	pts := make([][2]float64, len(ds.Data))
	for i, v := range ds.Data {
		idx := s.IndexPixel(i)
		val := base + (s.ValuePixel(v)-base)*progress
		if s.horizontal {
			pts[i] = [2]float64{val, idx}
		} else {
			pts[i] = [2]float64{idx, val}
		}
	}
	return pts
}

func (l lineController) Position(c *Chart, di, i int) (float64, float64, bool) {
	pts := l.points(c, di, 1)
	if i < 0 || i >= len(pts) {
		return 0, 0, false
	}
	return pts[i][0], pts[i][1], true
}

func (l lineController) DrawDataset(c *Chart, di int, progress float64) {
	pts := l.points(c, di, progress)
	if len(pts) == 0 {
		return
	}
	ds := c.config.Data.Datasets[di]
	s := c.scales
	base := s.BasePixel()

	ctx := c.ctx
	fill, stroke := c.DatasetColors(di, 0)
	trace := func() {
		ctx.MoveTo(pts[0][0], pts[0][1])
		for i := 1; i < len(pts); i++ {
			if ds.Tension <= 0 {
				ctx.LineTo(pts[i][0], pts[i][1])
				continue
			}
			c1, c2 := controlPoints(pts, i, ds.Tension)
			ctx.BezierCurveTo(c1[0], c1[1], c2[0], c2[1], pts[i][0], pts[i][1])
		}
	}

	if ds.Fill {
		ctx.BeginPath()
		trace()
		last := pts[len(pts)-1]
		if s.horizontal {
			ctx.LineTo(base, last[1])
			ctx.LineTo(base, pts[0][1])
		} else {
			ctx.LineTo(last[0], base)
			ctx.LineTo(pts[0][0], base)
		}
		ctx.ClosePath()
		ctx.SetFillStyle(fill)
		ctx.Fill()
	}

	ctx.BeginPath()
	trace()
	ctx.SetStrokeStyle(stroke)
	ctx.SetLineWidth(borderWidth(ds, 3))
	ctx.Stroke()

	for i, p := range pts {
		pf, ps := c.DatasetColors(di, i)
		ctx.BeginPath()
		ctx.Arc(p[0], p[1], pointRadius, 0, 2*math.Pi, false)
		ctx.ClosePath()
		ctx.SetFillStyle(pf)
		ctx.Fill()
		ctx.SetStrokeStyle(ps)
		ctx.SetLineWidth(1)
		ctx.Stroke()
	}
}

// controlPoints returns Catmull-Rom style control points for the segment
// ending at pts[i].
func controlPoints(pts [][2]float64, i int, tension float64) ([2]float64, [2]float64) {
	p0 := pts[max(i-2, 0)]
	p1 := pts[i-1]
	p2 := pts[i]
	p3 := pts[min(i+1, len(pts)-1)]
	k := tension / 2
	c1 := [2]float64{p1[0] + (p2[0]-p0[0])*k, p1[1] + (p2[1]-p0[1])*k}
	c2 := [2]float64{p2[0] - (p3[0]-p1[0])*k, p2[1] - (p3[1]-p1[1])*k}
	return c1, c2
}

// arcController draws pie and doughnut charts. Several datasets become
// concentric rings; the sweep grows with the animation progress.
type arcController struct {
	kind   string
	cutout float64
}

func (a arcController) Type() string { return a.kind }
func (arcController) Axes() Axes    { return AxesNone }

// ring returns the centre and radii of dataset di's ring and the sum of its
// absolute values.
func (a arcController) ring(c *Chart, di int) (cx, cy, r0, r1, total float64, ok bool) {
	rings := c.VisibleDatasets(a)
	ring := slices.Index(rings, di)
	if ring < 0 {
		return 0, 0, 0, 0, 0, false
	}
	area := c.area
	cx, cy = (area.Left+area.Right)/2, (area.Top+area.Bottom)/2
	outer := math.Max(0, math.Min(area.Width(), area.Height())/2-1)
	inner := outer * a.cutout
	thickness := (outer - inner) / float64(len(rings))
	// The first dataset is the outermost ring.
	r1 = outer - float64(ring)*thickness
	r0 = r1 - thickness

	for _, v := range c.config.Data.Datasets[di].Data {
		total += math.Abs(v)
	}
	return cx, cy, r0, r1, total, total > 0
}

// Position is the centroid of the slice, halfway across the ring.
func (a arcController) Position(c *Chart, di, i int) (float64, float64, bool) {
	cx, cy, r0, r1, total, ok := a.ring(c, di)
	data := c.config.Data.Datasets[di].Data
	if !ok || i < 0 || i >= len(data) {
		return 0, 0, false
	}
	angle := -math.Pi / 2
	for _, v := range data[:i] {
		angle += 2 * math.Pi * math.Abs(v) / total
	}
	angle += math.Pi * math.Abs(data[i]) / total
	r := (math.Max(r0, 0) + r1) / 2
	return cx + r*math.Cos(angle), cy + r*math.Sin(angle), true
}

func (a arcController) DrawDataset(c *Chart, di int, progress float64) {
	cx, cy, r0, r1, total, ok := a.ring(c, di)
	if !ok {
		return
	}
	ds := c.config.Data.Datasets[di]
	ctx := c.ctx
	width := borderWidth(ds, 2)
	angle := -math.Pi / 2
	for i, v := range ds.Data {
		sweep := 2 * math.Pi * math.Abs(v) / total * progress
		fill, stroke := c.DatasetColors(di, i)
		if len(ds.BorderColor) == 0 {
			stroke = "#fff"
		}

		ctx.BeginPath()
		ctx.Arc(cx, cy, r1, angle, angle+sweep, false)
		if r0 > 0 {
			ctx.Arc(cx, cy, r0, angle+sweep, angle, true)
		} else {
			ctx.LineTo(cx, cy)
		}
		ctx.ClosePath()
		ctx.SetFillStyle(fill)
		ctx.Fill()
		if width > 0 {
			ctx.SetStrokeStyle(stroke)
			ctx.SetLineWidth(width)
			ctx.Stroke()
		}
		angle += sweep
	}
}
