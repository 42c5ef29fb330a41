package chart

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"math"
	"slices"

	"github.com/hashicorp/go-hclog"

	"github.com/ironsheep/chart-canvas-mcp/internal/canvas"
)

// FrameRate is the number of frames per second of the virtual animation
// clock.
const FrameRate = 60

// Rect is an axis-aligned rectangle in canvas pixels.
type Rect struct {
	Left, Top, Right, Bottom float64
}

func (r Rect) Width() float64  { return r.Right - r.Left }
func (r Rect) Height() float64 { return r.Bottom - r.Top }

// Chart is one chart bound to a canvas context. It is drawn synchronously by
// New and must be destroyed once its canvas has been encoded.
type Chart struct {
	id     int
	lib    *Library
	ctx    *canvas.Context
	canvas *canvas.Canvas
	config *Config
	ctrl   Controller

	plugins   []Plugin
	state     map[string]any
	area      Rect
	scales    *Scales
	destroyed bool
}

// New creates a chart for cfg on ctx, lays it out and draws it. With
// animation enabled every frame of the virtual clock is drawn before New
// returns; the animation callbacks on cfg.Options.Animation observe each one.
//
// The chart works on its own copy of the datasets, so plugins that restyle
// them never change cfg.
func (l *Library) New(ctx *canvas.Context, cfg *Config) (*Chart, error) {
	if ctx == nil {
		return nil, errors.New("chart: nil context")
	}
	if cfg == nil {
		return nil, errors.New("chart: nil configuration")
	}
	ctrl, ok := l.Controller(cfg.Type)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownChartType, cfg.Type)
	}
	for i, ds := range cfg.Data.Datasets {
		if ds.Type == "" {
			continue
		}
		if _, ok := l.Controller(ds.Type); !ok {
			return nil, fmt.Errorf("dataset %d: %w: %q", i, ErrUnknownChartType, ds.Type)
		}
	}

	c := &Chart{
		lib:    l,
		ctx:    ctx,
		canvas: ctx.Canvas(),
		config: ownConfig(cfg),
		ctrl:   ctrl,
		state:  make(map[string]any),
	}
	for _, p := range append(l.Plugins(), cfg.Plugins...) {
		if c.PluginEnabled(p.ID()) {
			c.plugins = append(c.plugins, p)
		}
	}
	l.track(c)

	notify(c, func(h BeforeInitHook) { h.BeforeInit(c) })
	notify(c, func(h AfterInitHook) { h.AfterInit(c) })
	c.Update()
	c.render()
	return c, nil
}

// ownConfig copies cfg far enough that rewriting dataset colours on the copy
// leaves cfg as it was. Data values are shared; nothing writes to them.
func ownConfig(cfg *Config) *Config {
	own := *cfg
	own.Data.Datasets = slices.Clone(cfg.Data.Datasets)
	for i := range own.Data.Datasets {
		ds := &own.Data.Datasets[i]
		ds.BackgroundColor = slices.Clone(ds.BackgroundColor)
		ds.BorderColor = slices.Clone(ds.BorderColor)
	}
	return &own
}

// notify calls fn for every active plugin implementing hook H, in order. It
// stops early once the chart has been destroyed.
func notify[H any](c *Chart, fn func(H)) {
	for _, p := range c.plugins {
		if c.destroyed {
			return
		}
		if h, ok := p.(H); ok {
			fn(h)
		}
	}
}

func (c *Chart) ID() int { return c.id }

// Canvas returns the canvas the chart draws on, or nil once the chart has
// been destroyed.
func (c *Chart) Canvas() *canvas.Canvas {
	if c.destroyed {
		return nil
	}
	return c.canvas
}

// Context returns the drawing context, or nil once the chart has been
// destroyed.
func (c *Chart) Context() *canvas.Context {
	if c.destroyed {
		return nil
	}
	return c.ctx
}

func (c *Chart) Config() *Config        { return c.config }
func (c *Chart) Library() *Library      { return c.lib }
func (c *Chart) Width() float64         { return float64(c.canvas.Width()) }
func (c *Chart) Height() float64        { return float64(c.canvas.Height()) }
func (c *Chart) ChartArea() Rect        { return c.area }
func (c *Chart) Scales() *Scales        { return c.scales }
func (c *Chart) Destroyed() bool        { return c.destroyed }
func (c *Chart) Controller() Controller { return c.ctrl }

// Destroy releases the chart. Its canvas is detached and afterDestroy hooks
// run. Destroying twice is a no-op.
func (c *Chart) Destroy() {
	if c.destroyed {
		return
	}
	notify(c, func(h AfterDestroyHook) { h.AfterDestroy(c) })
	c.destroyed = true
	c.lib.untrack(c)
}

// State returns the per-chart value a plugin stored under key.
func (c *Chart) State(key string) any { return c.state[key] }

// SetState stores a per-chart value for a plugin. Plugins are shared between
// charts, so anything computed during layout belongs here. A nil value
// removes the key.
func (c *Chart) SetState(key string, v any) {
	if v == nil {
		delete(c.state, key)
		return
	}
	c.state[key] = v
}

// Logger returns the library environment's logger, or a logger that
// discards everything when none is set.
func (c *Chart) Logger() hclog.Logger {
	if l := c.lib.Environment().Logger; l != nil {
		return l
	}
	return hclog.NewNullLogger()
}

// LoadImage loads an image through the library environment.
func (c *Chart) LoadImage(src string) (image.Image, error) {
	env := c.lib.Environment()
	if env.Images == nil {
		return nil, errors.New("chart: no image loader in environment")
	}
	return env.Images.LoadImage(src)
}

// PluginEnabled reports whether the plugin with the given ID runs for this
// chart. Setting its options to false disables it.
func (c *Chart) PluginEnabled(id string) bool {
	if v, ok := c.lib.Defaults.Plugins[id].(bool); ok && !v {
		return false
	}
	if v, ok := c.config.Options.Plugins[id].(bool); ok && !v {
		return false
	}
	return true
}

// PluginOptions decodes the options for plugin id into dst. Library defaults
// are applied first, then the chart's own options, so fields missing from
// both keep whatever dst already held.
func (c *Chart) PluginOptions(id string, dst any) error {
	for _, src := range []any{c.lib.Defaults.Plugins[id], c.config.Options.Plugins[id]} {
		switch src.(type) {
		case nil, bool:
			continue
		}
		b, err := json.Marshal(src)
		if err != nil {
			return fmt.Errorf("plugin %s options: %w", id, err)
		}
		if err := json.Unmarshal(b, dst); err != nil {
			return fmt.Errorf("plugin %s options: %w", id, err)
		}
	}
	return nil
}

// Update recomputes the layout.
func (c *Chart) Update() {
	if c.destroyed {
		return
	}
	notify(c, func(h BeforeUpdateHook) { h.BeforeUpdate(c) })

	pad := c.config.Options.Layout.Padding
	area := Rect{Left: pad.Left, Top: pad.Top, Right: c.Width() - pad.Right, Bottom: c.Height() - pad.Bottom}
	for _, p := range c.plugins {
		if box, ok := p.(LayoutBox); ok {
			area = box.Fit(c, area)
		}
	}
	c.scales = nil
	if c.ctrl.Axes() != AxesNone {
		c.scales = newScales(c, area)
		area = c.scales.area
	}
	c.area = area

	notify(c, func(h AfterUpdateHook) { h.AfterUpdate(c) })
}

// animation resolves the chart's animation settings against the library
// defaults.
func (c *Chart) animation() Animation {
	anim := c.lib.Defaults.Animation
	if a := c.config.Options.Animation; a != nil {
		if a.Disabled {
			return Animation{Disabled: true, OnProgress: a.OnProgress, OnComplete: a.OnComplete}
		}
		if a.Duration > 0 {
			anim.Duration = a.Duration
		}
		if a.Easing != "" {
			anim.Easing = a.Easing
		}
		anim.OnProgress = a.OnProgress
		anim.OnComplete = a.OnComplete
	}
	if anim.Duration <= 0 {
		anim.Disabled = true
	}
	return anim
}

// render draws the chart once, or once per frame of the virtual clock, then
// fires afterRender and the completion callback.
func (c *Chart) render() {
	anim := c.animation()
	if anim.Disabled {
		c.draw(1)
	} else {
		ease := easing(anim.Easing)
		frames := FrameCount(anim.Duration)
		for i := 1; i <= frames && !c.destroyed; i++ {
			elapsed := math.Min(float64(i)*1000/FrameRate, anim.Duration)
			c.draw(ease(elapsed / anim.Duration))
			if anim.OnProgress != nil && !c.destroyed {
				anim.OnProgress(AnimationEvent{Chart: c, CurrentStep: elapsed, NumSteps: anim.Duration, Initial: true})
			}
		}
	}
	if c.destroyed {
		return
	}
	notify(c, func(h AfterRenderHook) { h.AfterRender(c) })
	if anim.OnComplete != nil && !c.destroyed {
		anim.OnComplete(AnimationEvent{Chart: c, CurrentStep: anim.Duration, NumSteps: anim.Duration, Initial: true})
	}
}

// draw paints one frame at the given animation progress (0 to 1).
func (c *Chart) draw(progress float64) {
	if c.destroyed {
		return
	}
	ctx := c.ctx
	ctx.ClearRect(0, 0, c.Width(), c.Height())

	notify(c, func(h BeforeDrawHook) { h.BeforeDraw(c) })
	for _, p := range c.plugins {
		if box, ok := p.(LayoutBox); ok && !c.destroyed {
			box.DrawBox(c)
		}
	}
	if c.scales != nil && !c.destroyed {
		c.scales.draw(c)
	}

	notify(c, func(h BeforeDatasetsDrawHook) { h.BeforeDatasetsDraw(c) })
	// Later datasets are painted first so the first dataset ends up on top.
	for i := len(c.config.Data.Datasets) - 1; i >= 0 && !c.destroyed; i-- {
		if c.config.Data.Datasets[i].Hidden {
			continue
		}
		notify(c, func(h BeforeDatasetDrawHook) { h.BeforeDatasetDraw(c, i) })
		if c.destroyed {
			return
		}
		ctx.Save()
		c.datasetController(i).DrawDataset(c, i, progress)
		ctx.Restore()
		notify(c, func(h AfterDatasetDrawHook) { h.AfterDatasetDraw(c, i) })
	}
	notify(c, func(h AfterDatasetsDrawHook) { h.AfterDatasetsDraw(c) })
	notify(c, func(h AfterDrawHook) { h.AfterDraw(c) })
}

func (c *Chart) datasetController(i int) Controller {
	if t := c.config.Data.Datasets[i].Type; t != "" {
		if ctrl, ok := c.lib.Controller(t); ok {
			return ctrl
		}
	}
	return c.ctrl
}

// VisibleDatasets returns the indexes of the datasets ctrl draws that are not
// hidden.
func (c *Chart) VisibleDatasets(ctrl Controller) []int {
	var out []int
	for i, ds := range c.config.Data.Datasets {
		if ds.Hidden || c.datasetController(i).Type() != ctrl.Type() {
			continue
		}
		out = append(out, i)
	}
	return out
}

// ElementPosition returns where point i of dataset di was drawn at full
// progress. ok is false when the dataset's controller cannot tell, or the
// point is hidden or out of range.
func (c *Chart) ElementPosition(di, i int) (x, y float64, ok bool) {
	if di < 0 || di >= len(c.config.Data.Datasets) || c.config.Data.Datasets[di].Hidden {
		return 0, 0, false
	}
	p, isPositioner := c.datasetController(di).(Positioner)
	if !isPositioner {
		return 0, 0, false
	}
	return p.Position(c, di, i)
}

// DatasetColors returns the fill and stroke colours for point i of dataset
// di. Unset colours come from the palette: per dataset on cartesian charts,
// per point on radial ones.
func (c *Chart) DatasetColors(di, i int) (fill, stroke string) {
	ds := c.config.Data.Datasets[di]
	fill, stroke = ds.BackgroundColor.At(i), ds.BorderColor.At(i)

	pick := di
	if c.datasetController(di).Axes() == AxesNone {
		pick = i
	}
	palette := c.lib.Defaults.Palette
	var auto string
	if len(palette) > 0 {
		auto = palette[pick%len(palette)]
	}
	if fill == "" {
		fill = auto
	}
	if stroke == "" {
		stroke = auto
	}
	if fill == "" {
		fill = c.lib.Defaults.BackgroundColor
	}
	if stroke == "" {
		stroke = c.lib.Defaults.BorderColor
	}
	return fill, stroke
}

// Font returns CSS font shorthand at the given size and weight using the
// library's default family. Zero size and empty weight use the defaults.
func (c *Chart) Font(size float64, weight string) string {
	f := c.lib.Defaults.Font
	if size <= 0 {
		size = f.Size
	}
	if weight == "" {
		weight = f.Weight
	}
	return fmt.Sprintf("%s %s %gpx %s", f.Style, weight, size, f.Family)
}
