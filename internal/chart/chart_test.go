package chart

import (
	"errors"
	"fmt"
	"image/color"
	"testing"

	"github.com/ironsheep/chart-canvas-mcp/internal/canvas"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContext(t *testing.T, w, h int) *canvas.Context {
	t.Helper()
	b, err := canvas.NewBackend()
	require.NoError(t, err)
	cv, err := b.CreateCanvas(w, h, canvas.TypeImage)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cv.Close() })
	return cv.GetContext()
}

func pixelAt(t *testing.T, cv *canvas.Canvas, x, y int) color.NRGBA {
	t.Helper()
	img, err := cv.Image()
	require.NoError(t, err)
	return color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
}

func barConfig(anim *Animation) *Config {
	return &Config{
		Type: "bar",
		Data: Data{
			Labels: []string{"a", "b"},
			Datasets: []Dataset{
				{Label: "first", Data: []float64{1, 2}},
				{Label: "second", Data: []float64{3, 4}},
			},
		},
		Options: Options{Animation: anim},
	}
}

// recorder logs every hook it sees.
type recorder struct {
	id     string
	events []string
}

func (r *recorder) ID() string                        { return r.id }
func (r *recorder) BeforeInit(*Chart)                 { r.log("beforeInit") }
func (r *recorder) AfterInit(*Chart)                  { r.log("afterInit") }
func (r *recorder) BeforeUpdate(*Chart)               { r.log("beforeUpdate") }
func (r *recorder) AfterUpdate(*Chart)                { r.log("afterUpdate") }
func (r *recorder) BeforeDraw(*Chart)                 { r.log("beforeDraw") }
func (r *recorder) BeforeDatasetsDraw(*Chart)         { r.log("beforeDatasetsDraw") }
func (r *recorder) BeforeDatasetDraw(_ *Chart, i int) { r.log(fmt.Sprintf("beforeDatasetDraw:%d", i)) }
func (r *recorder) AfterDatasetDraw(_ *Chart, i int)  { r.log(fmt.Sprintf("afterDatasetDraw:%d", i)) }
func (r *recorder) AfterDatasetsDraw(*Chart)          { r.log("afterDatasetsDraw") }
func (r *recorder) AfterDraw(*Chart)                  { r.log("afterDraw") }
func (r *recorder) AfterRender(*Chart)                { r.log("afterRender") }
func (r *recorder) AfterDestroy(*Chart)               { r.log("afterDestroy") }

func (r *recorder) log(e string) { r.events = append(r.events, e) }

func (r *recorder) count(e string) int {
	n := 0
	for _, got := range r.events {
		if got == e {
			n++
		}
	}
	return n
}

func TestHookOrder(t *testing.T) {
	lib := NewLibrary()
	rec := &recorder{id: "recorder"}
	require.NoError(t, lib.Register(rec))

	c, err := lib.New(newTestContext(t, 200, 100), barConfig(&Animation{Disabled: true}))
	require.NoError(t, err)
	c.Destroy()

	assert.Equal(t, []string{
		"beforeInit", "afterInit",
		"beforeUpdate", "afterUpdate",
		"beforeDraw", "beforeDatasetsDraw",
		"beforeDatasetDraw:1", "afterDatasetDraw:1",
		"beforeDatasetDraw:0", "afterDatasetDraw:0",
		"afterDatasetsDraw", "afterDraw",
		"afterRender",
		"afterDestroy",
	}, rec.events)
}

func TestInlinePluginsRunAfterRegistered(t *testing.T) {
	lib := NewLibrary()
	var order []string
	require.NoError(t, lib.Register(PluginFunc{Name: "registered", OnAfterDraw: func(*Chart) { order = append(order, "registered") }}))

	cfg := barConfig(&Animation{Disabled: true})
	cfg.Plugins = []Plugin{PluginFunc{Name: "inline", OnAfterDraw: func(*Chart) { order = append(order, "inline") }}}
	c, err := lib.New(newTestContext(t, 100, 100), cfg)
	require.NoError(t, err)
	defer c.Destroy()

	assert.Equal(t, []string{"registered", "inline"}, order)
}

func TestAnimationFrames(t *testing.T) {
	lib := NewLibrary()
	rec := &recorder{id: "recorder"}
	require.NoError(t, lib.Register(rec))

	var steps []float64
	var sequence []string
	anim := &Animation{
		Duration: 1000,
		OnProgress: func(e AnimationEvent) {
			steps = append(steps, e.CurrentStep)
			assert.Equal(t, 1000.0, e.NumSteps)
		},
		OnComplete: func(e AnimationEvent) {
			sequence = append(sequence, rec.events[len(rec.events)-1], "complete")
		},
	}
	c, err := lib.New(newTestContext(t, 100, 100), barConfig(anim))
	require.NoError(t, err)
	defer c.Destroy()

	assert.Len(t, steps, 60)
	assert.Equal(t, 60, rec.count("afterDraw"))
	assert.Equal(t, 1, rec.count("afterRender"))
	assert.InDelta(t, 1000.0/60, steps[0], 1e-9)
	assert.Equal(t, 1000.0, steps[len(steps)-1])
	assert.Equal(t, []string{"afterRender", "complete"}, sequence)
}

func TestAnimationUsesLibraryDefaults(t *testing.T) {
	lib := NewLibrary()
	lib.Defaults.Animation.Duration = 100
	frames := 0
	cfg := barConfig(&Animation{OnProgress: func(AnimationEvent) { frames++ }})

	c, err := lib.New(newTestContext(t, 100, 100), cfg)
	require.NoError(t, err)
	defer c.Destroy()
	assert.Equal(t, FrameCount(100), frames)
}

func TestDisabledAnimationStillCompletes(t *testing.T) {
	lib := NewLibrary()
	progress, complete := 0, 0
	anim := &Animation{
		Disabled:   true,
		OnProgress: func(AnimationEvent) { progress++ },
		OnComplete: func(AnimationEvent) { complete++ },
	}
	c, err := lib.New(newTestContext(t, 100, 100), barConfig(anim))
	require.NoError(t, err)
	defer c.Destroy()

	assert.Zero(t, progress)
	assert.Equal(t, 1, complete)
}

func TestDestroyDuringInit(t *testing.T) {
	lib := NewLibrary()
	rec := &recorder{id: "recorder"}
	require.NoError(t, lib.Register(
		PluginFunc{Name: "destroyer", OnAfterInit: func(c *Chart) { c.Destroy() }},
		rec,
	))

	c, err := lib.New(newTestContext(t, 100, 100), barConfig(nil))
	require.NoError(t, err)

	assert.True(t, c.Destroyed())
	assert.Nil(t, c.Canvas())
	assert.Nil(t, c.Context())
	assert.Zero(t, lib.Instances())
	assert.Equal(t, []string{"beforeInit", "afterDestroy"}, rec.events)
}

func TestInstancesTracked(t *testing.T) {
	lib := NewLibrary()
	cfg := barConfig(&Animation{Disabled: true})

	a, err := lib.New(newTestContext(t, 50, 50), cfg)
	require.NoError(t, err)
	b, err := lib.New(newTestContext(t, 50, 50), cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, lib.Instances())
	assert.NotEqual(t, a.ID(), b.ID())

	a.Destroy()
	a.Destroy()
	assert.Equal(t, 1, lib.Instances())
	b.Destroy()
	assert.Zero(t, lib.Instances())
}

func TestUnknownChartType(t *testing.T) {
	lib := NewLibrary()
	ctx := newTestContext(t, 50, 50)

	_, err := lib.New(ctx, &Config{Type: "radar"})
	assert.True(t, errors.Is(err, ErrUnknownChartType))

	cfg := barConfig(nil)
	cfg.Data.Datasets[1].Type = "bubble"
	_, err = lib.New(ctx, cfg)
	assert.True(t, errors.Is(err, ErrUnknownChartType))
	assert.Zero(t, lib.Instances())

	_, err = lib.New(nil, barConfig(nil))
	assert.Error(t, err)
	_, err = lib.New(ctx, nil)
	assert.Error(t, err)
}

func TestPluginDisabledByOptions(t *testing.T) {
	lib := NewLibrary()
	rec := &recorder{id: "recorder"}
	require.NoError(t, lib.Register(rec))

	cfg := barConfig(&Animation{Disabled: true})
	cfg.Options.Plugins = map[string]any{"recorder": false}
	c, err := lib.New(newTestContext(t, 50, 50), cfg)
	require.NoError(t, err)
	c.Destroy()

	assert.Empty(t, rec.events)
}

func TestPluginOptionsMerge(t *testing.T) {
	lib := NewLibrary()
	lib.Defaults.Plugins["custom"] = map[string]any{"a": 1, "b": 2}

	cfg := barConfig(&Animation{Disabled: true})
	cfg.Options.Plugins = map[string]any{"custom": map[string]any{"b": 3}}
	c, err := lib.New(newTestContext(t, 50, 50), cfg)
	require.NoError(t, err)
	defer c.Destroy()

	var opts struct {
		A int `json:"a"`
		B int `json:"b"`
		C int `json:"c"`
	}
	opts.C = 9
	require.NoError(t, c.PluginOptions("custom", &opts))
	assert.Equal(t, 1, opts.A)
	assert.Equal(t, 3, opts.B)
	assert.Equal(t, 9, opts.C)
}

func TestBarPixels(t *testing.T) {
	lib := NewLibrary()
	ctx := newTestContext(t, 200, 200)
	cfg := &Config{
		Type: "bar",
		Data: Data{
			Labels:   []string{"only"},
			Datasets: []Dataset{{Data: []float64{10}, BackgroundColor: ColorList{"#ff0000"}}},
		},
		Options: Options{
			Animation: &Animation{Disabled: true},
			Plugins:   map[string]any{LegendID: false},
		},
	}
	c, err := lib.New(ctx, cfg)
	require.NoError(t, err)

	lo, hi := c.Scales().Range()
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 10.0, hi)

	area := c.ChartArea()
	got := pixelAt(t, ctx.Canvas(), int((area.Left+area.Right)/2), int((area.Top+area.Bottom)/2))
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, got)

	corner := pixelAt(t, ctx.Canvas(), 199, 0)
	assert.Zero(t, corner.A, "background stays transparent")
	c.Destroy()
}

func TestPaletteFallback(t *testing.T) {
	lib := NewLibrary()
	cfg := barConfig(&Animation{Disabled: true})
	cfg.Data.Datasets[1].BorderColor = ColorList{"#000"}
	c, err := lib.New(newTestContext(t, 50, 50), cfg)
	require.NoError(t, err)
	defer c.Destroy()

	fill, stroke := c.DatasetColors(0, 1)
	assert.Equal(t, lib.Defaults.Palette[0], fill)
	assert.Equal(t, lib.Defaults.Palette[0], stroke)

	fill, stroke = c.DatasetColors(1, 0)
	assert.Equal(t, lib.Defaults.Palette[1], fill)
	assert.Equal(t, "#000", stroke)
}

func TestPiePalettePerPoint(t *testing.T) {
	lib := NewLibrary()
	cfg := &Config{
		Type: "pie",
		Data: Data{
			Labels:   []string{"a", "b", "c"},
			Datasets: []Dataset{{Data: []float64{1, 2, 3}}},
		},
		Options: Options{Animation: &Animation{Disabled: true}},
	}
	c, err := lib.New(newTestContext(t, 100, 100), cfg)
	require.NoError(t, err)
	defer c.Destroy()

	assert.Nil(t, c.Scales())
	fill, _ := c.DatasetColors(0, 2)
	assert.Equal(t, lib.Defaults.Palette[2], fill)
}

func TestLegendAndTitleReserveSpace(t *testing.T) {
	lib := NewLibrary()
	top := func(plugins map[string]any) float64 {
		cfg := barConfig(&Animation{Disabled: true})
		cfg.Options.Plugins = plugins
		c, err := lib.New(newTestContext(t, 300, 200), cfg)
		require.NoError(t, err)
		defer c.Destroy()
		return c.ChartArea().Top
	}

	bare := top(map[string]any{LegendID: false})
	withLegend := top(nil)
	withTitle := top(map[string]any{TitleID: map[string]any{"display": true, "text": "Sales"}})

	assert.Greater(t, withLegend, bare)
	assert.Greater(t, withTitle, withLegend)
}

func TestLegendBottom(t *testing.T) {
	lib := NewLibrary()
	cfg := barConfig(&Animation{Disabled: true})
	cfg.Options.Plugins = map[string]any{LegendID: map[string]any{"position": "bottom"}}
	c, err := lib.New(newTestContext(t, 300, 200), cfg)
	require.NoError(t, err)
	defer c.Destroy()

	layout, ok := c.State(LegendID).(*legendLayout)
	require.True(t, ok)
	assert.Equal(t, 200.0, layout.box.Bottom)
	assert.Len(t, layout.rows[0], 2)
}

type countingController struct {
	drawn []int
}

func (*countingController) Type() string { return "counting" }
func (*countingController) Axes() Axes   { return AxesNone }

func (cc *countingController) DrawDataset(_ *Chart, index int, _ float64) {
	cc.drawn = append(cc.drawn, index)
}

func TestCustomController(t *testing.T) {
	lib := NewLibrary()
	ctrl := &countingController{}
	require.NoError(t, lib.Register(ctrl))
	assert.Contains(t, lib.ChartTypes(), "counting")

	cfg := &Config{
		Type:    "counting",
		Data:    Data{Datasets: []Dataset{{Data: []float64{1}}, {Data: []float64{2}, Hidden: true}, {Data: []float64{3}}}},
		Options: Options{Animation: &Animation{Disabled: true}},
	}
	c, err := lib.New(newTestContext(t, 50, 50), cfg)
	require.NoError(t, err)
	defer c.Destroy()

	assert.Equal(t, []int{2, 0}, ctrl.drawn)
	assert.Equal(t, []int{0, 2}, c.VisibleDatasets(ctrl))
}

func TestChartFont(t *testing.T) {
	lib := NewLibrary()
	lib.Defaults.Font.Family = "go"
	c, err := lib.New(newTestContext(t, 50, 50), barConfig(&Animation{Disabled: true}))
	require.NoError(t, err)
	defer c.Destroy()

	assert.Equal(t, "normal normal 12px go", c.Font(0, ""))
	assert.Equal(t, "normal bold 20px go", c.Font(20, "bold"))
}

func TestElementPosition(t *testing.T) {
	lib := NewLibrary()
	cfg := &Config{
		Type: "bar",
		Data: Data{
			Labels: []string{"a", "b"},
			Datasets: []Dataset{
				{Data: []float64{10, 5}},
				{Type: "line", Data: []float64{5, 10}},
				{Data: []float64{1, 1}, Hidden: true},
			},
		},
		Options: Options{Animation: &Animation{Disabled: true}, Plugins: map[string]any{LegendID: false}},
	}
	c, err := lib.New(newTestContext(t, 200, 200), cfg)
	require.NoError(t, err)
	defer c.Destroy()

	s := c.Scales()
	area := c.ChartArea()

	x, y, ok := c.ElementPosition(0, 0)
	require.True(t, ok)
	assert.InDelta(t, s.IndexPixel(0), x, 1e-9)
	assert.InDelta(t, area.Top, y, 1e-9)

	x, y, ok = c.ElementPosition(1, 1)
	require.True(t, ok)
	assert.InDelta(t, s.IndexPixel(1), x, 1e-9)
	assert.InDelta(t, area.Top, y, 1e-9)

	_, _, ok = c.ElementPosition(2, 0)
	assert.False(t, ok)
	_, _, ok = c.ElementPosition(0, 5)
	assert.False(t, ok)
	_, _, ok = c.ElementPosition(7, 0)
	assert.False(t, ok)
}

func TestPieElementPosition(t *testing.T) {
	lib := NewLibrary()
	cfg := &Config{
		Type: "doughnut",
		Data: Data{
			Labels:   []string{"a", "b"},
			Datasets: []Dataset{{Data: []float64{1, 1}}},
		},
		Options: Options{Animation: &Animation{Disabled: true}, Plugins: map[string]any{LegendID: false}},
	}
	c, err := lib.New(newTestContext(t, 200, 200), cfg)
	require.NoError(t, err)
	defer c.Destroy()

	// Half and half: the first slice sits on the right, the second on the left.
	x0, y0, ok := c.ElementPosition(0, 0)
	require.True(t, ok)
	x1, y1, ok := c.ElementPosition(0, 1)
	require.True(t, ok)
	assert.Greater(t, x0, 100.0)
	assert.Less(t, x1, 100.0)
	assert.InDelta(t, 100, y0, 1e-6)
	assert.InDelta(t, 100, y1, 1e-6)
}
