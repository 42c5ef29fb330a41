package chart

import (
	"math"
	"strconv"
)

const (
	defaultGridColor = "rgba(0,0,0,0.1)"
	tickPadding      = 5
	maxTickCount     = 11

	// tickLimit bounds the ticks generated from an explicit step size.
	tickLimit = 1000
)

// Scales maps data to pixels on cartesian charts: a category scale along the
// index axis and a linear scale along the value axis.
type Scales struct {
	area       Rect
	horizontal bool
	offset     bool
	labels     []string

	min, max, step float64
	ticks          []float64

	indexOpts, valueOpts ScaleOptions
}

func newScales(c *Chart, avail Rect) *Scales {
	cfg := c.config
	s := &Scales{horizontal: cfg.Options.IndexAxis == "y"}
	indexID, valueID := "x", "y"
	if s.horizontal {
		indexID, valueID = "y", "x"
	}
	s.indexOpts, s.valueOpts = cfg.Options.Scales[indexID], cfg.Options.Scales[valueID]

	// Category labels, padded with indexes when data outruns them.
	count := len(cfg.Data.Labels)
	lo, hi := math.Inf(1), math.Inf(-1)
	beginAtZero := s.valueOpts.BeginAtZero
	for i, ds := range cfg.Data.Datasets {
		axes := c.datasetController(i).Axes()
		if ds.Hidden || axes == AxesNone {
			continue
		}
		if axes == AxesBars {
			s.offset = true
			beginAtZero = true
		}
		count = max(count, len(ds.Data))
		for _, v := range ds.Data {
			lo, hi = math.Min(lo, v), math.Max(hi, v)
		}
	}
	s.labels = append([]string(nil), cfg.Data.Labels...)
	for i := len(s.labels); i < count; i++ {
		s.labels = append(s.labels, strconv.Itoa(i))
	}

	if math.IsInf(lo, 1) {
		lo, hi = 0, 1
	}
	if beginAtZero {
		lo, hi = math.Min(lo, 0), math.Max(hi, 0)
	}
	if lo == hi {
		hi++
		if !beginAtZero {
			lo--
		}
	}

	fontSize := c.lib.Defaults.Font.Size
	ctx := c.ctx
	ctx.Save()
	defer ctx.Restore()
	ctx.SetFont(c.Font(0, ""))

	length := avail.Height()
	if s.horizontal {
		length = avail.Width()
	}
	maxTicks := min(maxTickCount, max(2, int(length/(fontSize*3))))
	if s.valueOpts.Min != nil {
		lo = *s.valueOpts.Min
	}
	if s.valueOpts.Max != nil {
		hi = *s.valueOpts.Max
	}
	if hi <= lo {
		hi = lo + 1
	}
	step := s.valueOpts.Ticks.StepSize
	if step > 0 && (hi-lo)/step > tickLimit {
		c.Logger().Warn("tick step size too small, choosing one", "stepSize", step, "min", lo, "max", hi, "limit", tickLimit)
		step = 0
	}
	s.min, s.max, s.step = niceRange(lo, hi, maxTicks, step)
	if s.valueOpts.Min != nil {
		s.min = *s.valueOpts.Min
	}
	if s.valueOpts.Max != nil {
		s.max = *s.valueOpts.Max
	}
	if s.max <= s.min {
		s.max = s.min + s.step
	}
	for i := 0; i <= tickLimit; i++ {
		v := s.min + float64(i)*s.step
		if v > s.max+s.step*1e-9 {
			break
		}
		s.ticks = append(s.ticks, v)
	}

	widest := func(labels []string) float64 {
		w := 0.0
		for _, l := range labels {
			w = math.Max(w, ctx.MeasureText(l).Width)
		}
		return w
	}
	valueLabels := make([]string, len(s.ticks))
	for i, t := range s.ticks {
		valueLabels[i] = formatTick(t, s.step)
	}

	s.area = avail
	band := fontSize + 2*tickPadding
	if !s.horizontal {
		if displayed(s.valueOpts.Display) {
			s.area.Left += widest(valueLabels) + 2*tickPadding
		}
		if displayed(s.indexOpts.Display) {
			s.area.Bottom -= band
		}
		s.area.Top += fontSize / 2
		s.area.Right -= fontSize / 2
	} else {
		if displayed(s.indexOpts.Display) {
			s.area.Left += widest(s.labels) + 2*tickPadding
		}
		if displayed(s.valueOpts.Display) {
			s.area.Bottom -= band
		}
		s.area.Top += fontSize / 2
		s.area.Right -= widest(valueLabels[len(valueLabels)-1:]) / 2
	}
	return s
}

func displayed(v *bool) bool { return v == nil || *v }

// niceRange widens [lo, hi] to round tick boundaries with at most maxTicks
// ticks. A positive step is used as given.
func niceRange(lo, hi float64, maxTicks int, step float64) (float64, float64, float64) {
	if step <= 0 {
		span := niceNum(hi-lo, false)
		step = niceNum(span/float64(maxTicks-1), true)
	}
	return math.Floor(lo/step) * step, math.Ceil(hi/step) * step, step
}

func niceNum(x float64, round bool) float64 {
	exp := math.Floor(math.Log10(x))
	f := x / math.Pow(10, exp)
	var nf float64
	switch {
	case round && f < 1.5, !round && f <= 1:
		nf = 1
	case round && f < 3, !round && f <= 2:
		nf = 2
	case round && f < 7, !round && f <= 5:
		nf = 5
	default:
		nf = 10
	}
	return nf * math.Pow(10, exp)
}

func formatTick(v, step float64) string {
	decimals := 0
	if step < 1 {
		decimals = int(math.Ceil(-math.Log10(step) - 1e-9))
	}
	if math.Abs(v) < step*1e-9 {
		v = 0
	}
	return strconv.FormatFloat(v, 'f', decimals, 64)
}

// Area is the chart area inside the axes.
func (s *Scales) Area() Rect              { return s.area }
func (s *Scales) Horizontal() bool        { return s.horizontal }
func (s *Scales) Labels() []string        { return s.labels }
func (s *Scales) Ticks() []float64        { return s.ticks }
func (s *Scales) Range() (lo, hi float64) { return s.min, s.max }

// Band is the size of one category along the index axis.
func (s *Scales) Band() float64 {
	n := len(s.labels)
	if n == 0 {
		n = 1
	}
	length := s.indexLength()
	if s.offset {
		return length / float64(n)
	}
	if n == 1 {
		return length
	}
	return length / float64(n-1)
}

func (s *Scales) indexLength() float64 {
	if s.horizontal {
		return s.area.Height()
	}
	return s.area.Width()
}

// IndexPixel returns the centre of category i along the index axis.
func (s *Scales) IndexPixel(i int) float64 {
	pos := float64(i) * s.Band()
	if s.offset || len(s.labels) <= 1 {
		pos += s.Band() / 2
	}
	if s.horizontal {
		return s.area.Top + pos
	}
	return s.area.Left + pos
}

// ValuePixel returns the position of v along the value axis.
func (s *Scales) ValuePixel(v float64) float64 {
	t := (v - s.min) / (s.max - s.min)
	if s.horizontal {
		return s.area.Left + t*s.area.Width()
	}
	return s.area.Bottom - t*s.area.Height()
}

// BasePixel is where bars start: zero, clamped into the visible range.
func (s *Scales) BasePixel() float64 {
	return s.ValuePixel(math.Max(s.min, math.Min(s.max, 0)))
}

func (s *Scales) draw(c *Chart) {
	ctx := c.ctx
	a := s.area
	textColor := c.lib.Defaults.Color

	ctx.Save()
	defer ctx.Restore()
	ctx.SetLineWidth(1)

	line := func(x1, y1, x2, y2 float64, color string) {
		ctx.SetStrokeStyle(color)
		ctx.BeginPath()
		ctx.MoveTo(x1, y1)
		ctx.LineTo(x2, y2)
		ctx.Stroke()
	}
	gridColor := func(o ScaleOptions) string {
		if o.Grid.Color != "" {
			return o.Grid.Color
		}
		return defaultGridColor
	}
	tickColor := func(o ScaleOptions) string {
		if o.Ticks.Color != "" {
			return o.Ticks.Color
		}
		return textColor
	}

	// Value axis.
	if displayed(s.valueOpts.Grid.Display) {
		for _, t := range s.ticks {
			p := s.ValuePixel(t)
			if s.horizontal {
				line(p, a.Top, p, a.Bottom, gridColor(s.valueOpts))
			} else {
				line(a.Left, p, a.Right, p, gridColor(s.valueOpts))
			}
		}
	}
	if displayed(s.valueOpts.Display) {
		ctx.SetFont(c.Font(0, ""))
		ctx.SetFillStyle(tickColor(s.valueOpts))
		for _, t := range s.ticks {
			p, label := s.ValuePixel(t), formatTick(t, s.step)
			if s.horizontal {
				ctx.SetTextAlign("center")
				ctx.SetTextBaseline("top")
				ctx.FillText(label, p, a.Bottom+tickPadding)
			} else {
				ctx.SetTextAlign("right")
				ctx.SetTextBaseline("middle")
				ctx.FillText(label, a.Left-tickPadding, p)
			}
		}
	}

	// Index axis.
	if displayed(s.indexOpts.Grid.Display) {
		n := len(s.labels)
		for i := 0; i <= n; i++ {
			var p float64
			switch {
			case s.offset:
				p = s.IndexPixel(i) - s.Band()/2
			case i < n:
				p = s.IndexPixel(i)
			default:
				continue
			}
			if s.horizontal {
				line(a.Left, p, a.Right, p, gridColor(s.indexOpts))
			} else {
				line(p, a.Top, p, a.Bottom, gridColor(s.indexOpts))
			}
		}
	}
	if displayed(s.indexOpts.Display) {
		ctx.SetFont(c.Font(0, ""))
		ctx.SetFillStyle(tickColor(s.indexOpts))
		for i, label := range s.labels {
			p := s.IndexPixel(i)
			if s.horizontal {
				ctx.SetTextAlign("right")
				ctx.SetTextBaseline("middle")
				ctx.FillText(label, a.Left-tickPadding, p)
			} else {
				ctx.SetTextAlign("center")
				ctx.SetTextBaseline("top")
				ctx.FillText(label, p, a.Bottom+tickPadding)
			}
		}
	}
}
