package chart

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(`{
		"type": "line",
		"data": {
			"labels": ["Jan", "Feb"],
			"datasets": [
				{"label": "one", "data": [1, 2], "backgroundColor": "red", "borderWidth": 0},
				{"type": "bar", "data": [3, 4], "borderColor": ["#000", "#fff"], "hidden": true}
			]
		},
		"options": {
			"animation": false,
			"indexAxis": "y",
			"layout": {"padding": 8},
			"scales": {"y": {"beginAtZero": true, "min": -5, "grid": {"display": false}}},
			"plugins": {"legend": false, "title": {"display": true, "text": "Hello"}}
		}
	}`))
	require.NoError(t, err)

	assert.Equal(t, "line", cfg.Type)
	assert.Equal(t, []string{"Jan", "Feb"}, cfg.Data.Labels)
	require.Len(t, cfg.Data.Datasets, 2)

	first := cfg.Data.Datasets[0]
	assert.Equal(t, ColorList{"red"}, first.BackgroundColor)
	require.NotNil(t, first.BorderWidth)
	assert.Zero(t, *first.BorderWidth)

	second := cfg.Data.Datasets[1]
	assert.Equal(t, "bar", second.Type)
	assert.Equal(t, ColorList{"#000", "#fff"}, second.BorderColor)
	assert.True(t, second.Hidden)

	require.NotNil(t, cfg.Options.Animation)
	assert.True(t, cfg.Options.Animation.Disabled)
	assert.Equal(t, "y", cfg.Options.IndexAxis)
	assert.Equal(t, Padding{8, 8, 8, 8}, cfg.Options.Layout.Padding)

	y := cfg.Options.Scales["y"]
	assert.True(t, y.BeginAtZero)
	require.NotNil(t, y.Min)
	assert.Equal(t, -5.0, *y.Min)
	require.NotNil(t, y.Grid.Display)
	assert.False(t, *y.Grid.Display)

	assert.Equal(t, false, cfg.Options.Plugins["legend"])
}

func TestParseConfigInvalid(t *testing.T) {
	for _, in := range []string{
		`not json`,
		`{"data": {"datasets": [{"data": ["a"]}]}}`,
		`{"data": {"datasets": [{"backgroundColor": 12}]}}`,
	} {
		_, err := ParseConfig([]byte(in))
		assert.Error(t, err, in)
	}
}

func TestPaddingObject(t *testing.T) {
	var p Padding
	require.NoError(t, json.Unmarshal([]byte(`{"top": 1, "left": 4}`), &p))
	assert.Equal(t, Padding{Top: 1, Left: 4}, p)
}

func TestAnimationJSON(t *testing.T) {
	var a Animation
	require.NoError(t, json.Unmarshal([]byte(`{"duration": 500, "easing": "linear"}`), &a))
	assert.Equal(t, 500.0, a.Duration)
	assert.Equal(t, "linear", a.Easing)
	assert.False(t, a.Disabled)

	require.NoError(t, json.Unmarshal([]byte(`true`), &a))
	assert.Zero(t, a.Duration)
	assert.False(t, a.Disabled)

	b, err := json.Marshal(Animation{Disabled: true})
	require.NoError(t, err)
	assert.JSONEq(t, `false`, string(b))

	b, err = json.Marshal(Animation{Duration: 250})
	require.NoError(t, err)
	assert.JSONEq(t, `{"duration": 250}`, string(b))
}

func TestColorListAt(t *testing.T) {
	assert.Equal(t, "", ColorList(nil).At(3))
	l := ColorList{"a", "b"}
	assert.Equal(t, "a", l.At(0))
	assert.Equal(t, "b", l.At(1))
	assert.Equal(t, "a", l.At(2))
}

func TestRegister(t *testing.T) {
	lib := NewLibrary()
	base := len(lib.Plugins())

	first := PluginFunc{Name: "p"}
	require.NoError(t, lib.Register(first))
	require.NoError(t, lib.Register(first))
	assert.Len(t, lib.Plugins(), base+1)

	replacement := &recorder{id: "p"}
	require.NoError(t, lib.Register(replacement))
	got, ok := lib.Plugin("p")
	require.True(t, ok)
	assert.Same(t, replacement, got)
	assert.Len(t, lib.Plugins(), base+1)

	lib.Unregister("p")
	_, ok = lib.Plugin("p")
	assert.False(t, ok)
}

type bundle []any

func (b bundle) Items() []any { return b }

func TestRegisterCollections(t *testing.T) {
	lib := NewLibrary()
	require.NoError(t, lib.Register(
		[]any{PluginFunc{Name: "a"}, PluginFunc{Name: "b"}},
		bundle{PluginFunc{Name: "c"}, &countingController{}},
	))
	for _, id := range []string{"a", "b", "c"} {
		_, ok := lib.Plugin(id)
		assert.True(t, ok, id)
	}
	_, ok := lib.Controller("counting")
	assert.True(t, ok)
}

func TestRegisterRejects(t *testing.T) {
	lib := NewLibrary()
	assert.True(t, errors.Is(lib.Register("not a plugin"), ErrNotRegistrable))
	assert.True(t, errors.Is(lib.Register(PluginFunc{}), ErrNotRegistrable))
	assert.True(t, errors.Is(lib.Register([]any{PluginFunc{Name: "ok"}, 42}), ErrNotRegistrable))
}

func TestLibrariesAreIndependent(t *testing.T) {
	a, b := NewLibrary(), NewLibrary()
	a.Defaults.Color = "#123456"
	require.NoError(t, a.Register(PluginFunc{Name: "only-a"}))

	assert.Equal(t, "#666", b.Defaults.Color)
	_, ok := b.Plugin("only-a")
	assert.False(t, ok)
	assert.Equal(t, []string{"bar", "doughnut", "line", "pie"}, b.ChartTypes())
}

func TestFrameCount(t *testing.T) {
	tests := []struct {
		duration float64
		want     int
	}{
		{0, 0},
		{-10, 0},
		{1, 1},
		{16, 1},
		{17, 2},
		{500, 30},
		{1000, 60},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FrameCount(tt.duration), "duration %v", tt.duration)
	}
}

func TestEasingsEndpoints(t *testing.T) {
	for name, f := range easings {
		assert.InDelta(t, 0, f(0), 1e-9, name)
		assert.InDelta(t, 1, f(1), 1e-9, name)
	}
	assert.InDelta(t, 0.5, easing("easeInOutQuad")(0.5), 1e-9)
	assert.InDelta(t, easings["easeOutQuart"](0.3), easing("bogus")(0.3), 1e-12)
}

func TestNiceRange(t *testing.T) {
	lo, hi, step := niceRange(0, 19, 6, 0)
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 20.0, hi)
	assert.Equal(t, 5.0, step)

	lo, hi, step = niceRange(-3, 7, 6, 2)
	assert.Equal(t, -4.0, lo)
	assert.Equal(t, 8.0, hi)
	assert.Equal(t, 2.0, step)
}

func TestFormatTick(t *testing.T) {
	assert.Equal(t, "5", formatTick(5, 1))
	assert.Equal(t, "0.5", formatTick(0.5, 0.5))
	assert.Equal(t, "0.25", formatTick(0.25, 0.05))
	assert.Equal(t, "0", formatTick(-1e-17, 1))
}
