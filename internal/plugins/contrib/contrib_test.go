package contrib

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/chart-canvas-mcp/internal/canvas"
	"github.com/ironsheep/chart-canvas-mcp/internal/chart"
	"github.com/ironsheep/chart-canvas-mcp/internal/modcache"
	"github.com/ironsheep/chart-canvas-mcp/internal/plugins"
)

type fixture struct {
	lib *chart.Library
	cv  *canvas.Canvas
}

// newFixture loads groups from the modules this package registers into a
// fresh library whose environment loads images through a canvas backend.
func newFixture(t *testing.T, groups plugins.Groups) *fixture {
	t.Helper()
	backend, err := canvas.NewBackend()
	require.NoError(t, err)
	lib := chart.NewLibrary(chart.WithEnvironment(chart.Environment{Images: backend}))
	require.NoError(t, plugins.Load(context.Background(), modcache.NewLoader(nil), lib, groups, nil))

	cv, err := backend.CreateCanvas(200, 200, canvas.TypeImage)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cv.Close() })
	return &fixture{lib: lib, cv: cv}
}

func (f *fixture) render(t *testing.T, cfg *chart.Config) *chart.Chart {
	t.Helper()
	c, err := f.lib.New(f.cv.GetContext(), cfg)
	require.NoError(t, err)
	t.Cleanup(c.Destroy)
	return c
}

func (f *fixture) pixel(t *testing.T, x, y int) color.NRGBA {
	t.Helper()
	img, err := f.cv.Image()
	require.NoError(t, err)
	return color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
}

// inked reports whether any pixel in r is not fully transparent.
func (f *fixture) inked(t *testing.T, r image.Rectangle) bool {
	t.Helper()
	img, err := f.cv.Image()
	require.NoError(t, err)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a != 0 {
				return true
			}
		}
	}
	return false
}

func barConfig(extra map[string]any) *chart.Config {
	opts := map[string]any{chart.LegendID: false}
	for k, v := range extra {
		opts[k] = v
	}
	return &chart.Config{
		Type: "bar",
		Data: chart.Data{
			Labels:   []string{"a"},
			Datasets: []chart.Dataset{{Data: []float64{5, 10}}},
		},
		Options: chart.Options{
			Animation: &chart.Animation{Disabled: true},
			Plugins:   opts,
		},
	}
}

func TestAnnotationLine(t *testing.T) {
	f := newFixture(t, plugins.Groups{RequireChartJSLegacy: []string{AnnotationModule}})
	_, ok := f.lib.Plugin(AnnotationID)
	require.True(t, ok)

	c := f.render(t, barConfig(map[string]any{
		AnnotationID: map[string]any{
			"annotations": []any{
				map[string]any{"type": "line", "scaleID": "y", "value": 5, "borderColor": "#0000ff", "borderWidth": 4},
			},
		},
	}))

	area := c.ChartArea()
	y := int(c.Scales().ValuePixel(5))
	assert.Equal(t, color.NRGBA{B: 255, A: 255}, f.pixel(t, int(area.Left)+2, y))
}

func TestAnnotationBox(t *testing.T) {
	f := newFixture(t, plugins.Groups{RequireChartJSLegacy: []string{AnnotationModule}})
	c := f.render(t, barConfig(map[string]any{
		AnnotationID: map[string]any{
			"annotations": []any{
				map[string]any{"type": "box", "yMin": 0, "yMax": 2, "backgroundColor": "#00ff00"},
			},
		},
	}))

	s := c.Scales()
	area := c.ChartArea()
	y := int((s.ValuePixel(0) + s.ValuePixel(2)) / 2)
	assert.Equal(t, color.NRGBA{G: 255, A: 255}, f.pixel(t, int(area.Right)-2, y))
}

func TestColorSchemes(t *testing.T) {
	f := newFixture(t, plugins.Groups{GlobalVariableLegacy: []string{ColorSchemesModule}})
	cfg := barConfig(map[string]any{ColorSchemesID: map[string]any{"scheme": "brewer.Set1"}})
	cfg.Data.Datasets = append(cfg.Data.Datasets, chart.Dataset{Data: []float64{1}, BorderColor: chart.ColorList{"#123456"}})
	datasets := f.render(t, cfg).Config().Data.Datasets

	first := datasets[0]
	assert.Equal(t, chart.ColorList{"#E41A1C"}, first.BorderColor)
	assert.Equal(t, chart.ColorList{"rgba(228, 26, 28, 0.5)"}, first.BackgroundColor)

	second := datasets[1]
	assert.Equal(t, chart.ColorList{"#123456"}, second.BorderColor)
	assert.Equal(t, chart.ColorList{"rgba(55, 126, 184, 0.5)"}, second.BackgroundColor)
}

func TestColorSchemesLeaveConfigUntouched(t *testing.T) {
	f := newFixture(t, plugins.Groups{GlobalVariableLegacy: []string{ColorSchemesModule}})
	cfg := barConfig(map[string]any{ColorSchemesID: map[string]any{"override": false}})
	cfg.Data.Datasets = append(cfg.Data.Datasets, chart.Dataset{Data: []float64{1}, BorderColor: chart.ColorList{"#123456"}})

	first := f.render(t, cfg).Config().Data.Datasets
	assert.NotEmpty(t, first[0].BackgroundColor)

	assert.Empty(t, cfg.Data.Datasets[0].BackgroundColor)
	assert.Empty(t, cfg.Data.Datasets[0].BorderColor)
	assert.Empty(t, cfg.Data.Datasets[1].BackgroundColor)
	assert.Equal(t, chart.ColorList{"#123456"}, cfg.Data.Datasets[1].BorderColor)

	// A second render still sees uncoloured datasets and picks the same
	// scheme colours.
	second := f.render(t, cfg).Config().Data.Datasets
	assert.Equal(t, first[0].BackgroundColor, second[0].BackgroundColor)
	assert.Equal(t, first[1].BackgroundColor, second[1].BackgroundColor)
}

func TestColorSchemesRadial(t *testing.T) {
	f := newFixture(t, plugins.Groups{GlobalVariableLegacy: []string{ColorSchemesModule}})
	cfg := &chart.Config{
		Type: "pie",
		Data: chart.Data{Labels: []string{"a", "b", "c"}, Datasets: []chart.Dataset{{Data: []float64{1, 2, 3}}}},
		Options: chart.Options{
			Animation: &chart.Animation{Disabled: true},
			Plugins:   map[string]any{ColorSchemesID: map[string]any{"scheme": "office.Office6", "reverse": true}},
		},
	}
	c := f.render(t, cfg)
	assert.Equal(t, chart.ColorList{"#70AD47", "#5B9BD5", "#FFC000"}, c.Config().Data.Datasets[0].BackgroundColor)
	assert.Empty(t, cfg.Data.Datasets[0].BackgroundColor)
}

func TestScheme(t *testing.T) {
	p, ok := Scheme(DefaultScheme)
	require.True(t, ok)
	assert.Len(t, p, 10)

	p, ok = Scheme("hue.3")
	require.True(t, ok)
	require.Len(t, p, 3)
	assert.NotEqual(t, p[0], p[1])

	for _, name := range []string{"nope", "hue.0", "hue.x", "hue.1000"} {
		_, ok := Scheme(name)
		assert.False(t, ok, name)
	}
}

func TestColorSchemesNeedsGlobal(t *testing.T) {
	lib := chart.NewLibrary()
	err := plugins.Load(context.Background(), modcache.NewLoader(nil), lib, plugins.Groups{RequireLegacy: []string{ColorSchemesModule}}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, plugins.ErrPluginLoad)
}

func TestDataLabels(t *testing.T) {
	above := func(t *testing.T, groups plugins.Groups) bool {
		f := newFixture(t, groups)
		cfg := barConfig(nil)
		cfg.Data.Datasets = []chart.Dataset{{Data: []float64{5}}}
		cfg.Options.Scales = map[string]chart.ScaleOptions{
			"y": {Max: ptr(10.0), Grid: chart.GridOptions{Display: ptr(false)}},
		}
		c := f.render(t, cfg)

		x, y, ok := c.ElementPosition(0, 0)
		require.True(t, ok)
		return f.inked(t, image.Rect(int(x)-10, int(y)-18, int(x)+10, int(y)-4))
	}

	assert.False(t, above(t, plugins.Groups{}))
	assert.True(t, above(t, plugins.Groups{Modern: []any{DataLabelsModule}}))
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "12.5", formatValue(12.5, nil))
	two := 2
	assert.Equal(t, "3.14", formatValue(3.14159, &two))
}

func redPNG(t *testing.T) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+3] = 255, 255
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestWatermarkImage(t *testing.T) {
	f := newFixture(t, plugins.Groups{RequireLegacy: []string{WatermarkModule}})
	f.render(t, barConfig(map[string]any{
		WatermarkID: map[string]any{"image": redPNG(t), "opacity": 1, "position": "top-left", "padding": 0, "width": 8, "height": 8},
	}))
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, f.pixel(t, 3, 3))
}

func TestWatermarkText(t *testing.T) {
	f := newFixture(t, plugins.Groups{RequireLegacy: []string{WatermarkModule}})
	f.render(t, barConfig(map[string]any{
		WatermarkID: map[string]any{"text": "DRAFT", "opacity": 1, "position": "top-right"},
	}))
	assert.True(t, f.inked(t, image.Rect(120, 0, 200, 30)))
}

func TestWatermarkMissingImage(t *testing.T) {
	f := newFixture(t, plugins.Groups{RequireLegacy: []string{WatermarkModule}})
	f.render(t, barConfig(map[string]any{
		WatermarkID: map[string]any{"image": "/nonexistent/logo.png", "position": "top-left", "padding": 0},
	}))
	assert.Zero(t, f.pixel(t, 2, 2).A)
}

func ptr[T any](v T) *T { return &v }
