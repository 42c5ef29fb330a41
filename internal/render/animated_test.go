package render

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/chart-canvas-mcp/internal/canvas"
	"github.com/ironsheep/chart-canvas-mcp/internal/chart"
	"github.com/ironsheep/chart-canvas-mcp/internal/plugins"
)

func newAnimated(t *testing.T) *AnimatedService {
	t.Helper()
	svc, err := NewAnimated(Options{Width: 100, Height: 100})
	require.NoError(t, err)
	return svc
}

func TestAnimated_DataURLFrames(t *testing.T) {
	svc := newAnimated(t)
	cfg := barConfig()
	cfg.Options.Animation = &chart.Animation{Duration: 200}

	frames, err := svc.RenderToDataURL(context.Background(), cfg, "")
	require.NoError(t, err)
	require.Len(t, frames, chart.FrameCount(200)+2)
	for _, f := range frames {
		assert.True(t, strings.HasPrefix(f, "data:image/png;base64,"))
	}
	assert.Zero(t, svc.Service().Library().Instances())
}

func TestAnimated_BufferFrames(t *testing.T) {
	svc := newAnimated(t)
	cfg := barConfig()
	cfg.Options.Animation = &chart.Animation{Duration: 100}

	frames, err := svc.RenderToBuffer(context.Background(), cfg, canvas.MimeJPEG)
	require.NoError(t, err)
	require.Len(t, frames, chart.FrameCount(100)+2)
	for _, f := range frames {
		assert.True(t, bytes.HasPrefix(f, []byte{0xFF, 0xD8}))
	}
}

func TestAnimated_DefaultDuration(t *testing.T) {
	svc := newAnimated(t)
	cfg := barConfig()
	cfg.Options.Animation = &chart.Animation{Disabled: true}

	frames, err := svc.RenderToDataURL(context.Background(), cfg, canvas.MimePNG)
	require.NoError(t, err)
	assert.Len(t, frames, chart.FrameCount(DefaultAnimationDuration)+2)
}

func TestAnimated_ChainsCallbacks(t *testing.T) {
	svc := newAnimated(t)
	var progress, complete int
	var lastStep float64
	cfg := barConfig()
	cfg.Options.Animation = &chart.Animation{
		Duration: 100,
		OnProgress: func(ev chart.AnimationEvent) {
			progress++
			lastStep = ev.CurrentStep
		},
		OnComplete: func(ev chart.AnimationEvent) {
			complete++
			assert.False(t, ev.Chart.Destroyed(), "caller sees the chart before it is destroyed")
		},
	}

	_, err := svc.RenderToDataURL(context.Background(), cfg, "")
	require.NoError(t, err)
	assert.Equal(t, chart.FrameCount(100), progress)
	assert.Equal(t, 100.0, lastStep)
	assert.Equal(t, 1, complete)
}

func TestAnimated_LeavesConfigUntouched(t *testing.T) {
	svc := newAnimated(t)
	cfg := barConfig()
	cfg.Options.Plugins["custom"] = map[string]any{"nested": []any{1.0}}

	_, err := svc.RenderToDataURL(context.Background(), cfg, "")
	require.NoError(t, err)
	assert.Nil(t, cfg.Options.Animation)
	assert.Nil(t, cfg.Options.Responsive)
	assert.Empty(t, cfg.Plugins)
	assert.NotContains(t, cfg.Options.Plugins, plugins.AnimationCaptureID)
	assert.Equal(t, map[string]any{"nested": []any{1.0}}, cfg.Options.Plugins["custom"])
}

func TestAnimated_InlinePluginsKept(t *testing.T) {
	svc := newAnimated(t)
	draws := 0
	cfg := barConfig()
	cfg.Options.Animation = &chart.Animation{Duration: 50}
	cfg.Plugins = []chart.Plugin{chart.PluginFunc{Name: "counter", OnAfterDraw: func(*chart.Chart) { draws++ }}}

	frames, err := svc.RenderToDataURL(context.Background(), cfg, "")
	require.NoError(t, err)
	assert.Equal(t, chart.FrameCount(50), draws)
	assert.Len(t, frames, draws+2)
	assert.Len(t, cfg.Plugins, 1)
}

func TestAnimated_Errors(t *testing.T) {
	svc := newAnimated(t)

	_, err := svc.RenderToBuffer(context.Background(), barConfig(), "image/gif")
	assert.ErrorIs(t, err, ErrUnsupportedOutputFormat)

	_, err = svc.RenderToDataURL(context.Background(), nil, "")
	assert.ErrorIs(t, err, ErrInvalidConfiguration)

	cfg := barConfig()
	cfg.Plugins = []chart.Plugin{chart.PluginFunc{Name: "destroyer", OnAfterInit: func(c *chart.Chart) { c.Destroy() }}}
	_, err = svc.RenderToDataURL(context.Background(), cfg, "")
	assert.ErrorIs(t, err, ErrSurfaceUnavailable)
}
