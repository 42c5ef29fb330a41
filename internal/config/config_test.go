package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/chart-canvas-mcp/internal/plugins"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const tomlConfig = `
width = 400
height = 300
type = "svg"
background = "white"
log_level = "debug"

[plugins]
requireChartJSLegacy = ["chartjs-plugin-annotation"]
modern = ["chartjs-plugin-datalabels"]

[[fonts]]
path = "/fonts/Inter.ttf"
family = "Inter"
weight = "bold"

[animation]
mime_type = "image/jpeg"
`

const yamlConfig = `
width: 400
height: 300
type: svg
background: white
log_level: debug
plugins:
  requireChartJSLegacy: [chartjs-plugin-annotation]
  modern: [chartjs-plugin-datalabels]
fonts:
  - path: /fonts/Inter.ttf
    family: Inter
    weight: bold
animation:
  mime_type: image/jpeg
`

func TestLoad(t *testing.T) {
	want := &Config{
		Width:      400,
		Height:     300,
		Type:       "svg",
		Background: "white",
		LogLevel:   "debug",
		Plugins: plugins.Groups{
			RequireChartJSLegacy: []string{"chartjs-plugin-annotation"},
			Modern:               []any{"chartjs-plugin-datalabels"},
		},
		Fonts:     []Font{{Path: "/fonts/Inter.ttf", Family: "Inter", Weight: "bold"}},
		Animation: Animation{MimeType: "image/jpeg"},
	}

	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"toml", "chart.toml", tomlConfig},
		{"yaml", "chart.yaml", yamlConfig},
		{"yml", "chart.YML", yamlConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(writeFile(t, tt.file, tt.content))
			require.NoError(t, err)
			assert.Equal(t, want, got)
			assert.Equal(t, hclog.Debug, got.Level())
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	for _, name := range []string{"empty.toml", "empty.yaml"} {
		t.Run(name, func(t *testing.T) {
			got, err := Load(writeFile(t, name, ""))
			require.NoError(t, err)
			assert.Equal(t, Default(), got)
			assert.Equal(t, DefaultWidth, got.Width)
			assert.Equal(t, DefaultHeight, got.Height)
			assert.Equal(t, DefaultAnimationMime, got.Animation.MimeType)
			assert.Equal(t, hclog.Info, got.Level())
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"unknown toml key", "c.toml", "widht = 10\n"},
		{"unknown yaml key", "c.yaml", "widht: 10\n"},
		{"bad type", "c.toml", `type = "webgl"`},
		{"bad background", "c.toml", `background = "nope"`},
		{"bad level", "c.yaml", "log_level: loud\n"},
		{"negative width", "c.yaml", "width: -4\n"},
		{"font without family", "c.toml", "[[fonts]]\npath = \"/a.ttf\"\n"},
		{"malformed", "c.toml", "width = \n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.file, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoad_UnknownFormat(t *testing.T) {
	_, err := Load(writeFile(t, "chart.json", "{}"))
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRenderOptions(t *testing.T) {
	c := Default()
	c.Background = "#fff"
	c.Plugins.RequireLegacy = []string{"chartjs-plugin-watermark"}

	opts := c.RenderOptions(hclog.NewNullLogger())
	assert.Equal(t, DefaultWidth, opts.Width)
	assert.Equal(t, DefaultHeight, opts.Height)
	assert.Equal(t, "#fff", opts.BackgroundColour)
	assert.Equal(t, c.Plugins, opts.Plugins)
	assert.NotNil(t, opts.Logger)
}

func TestFontOptions(t *testing.T) {
	f := Font{Path: "/x.ttf", Family: "X", Weight: "bold", Style: "italic"}
	o := f.Options()
	assert.Equal(t, "X", o.Family)
	assert.Equal(t, "bold", o.Weight)
	assert.Equal(t, "italic", o.Style)
}
