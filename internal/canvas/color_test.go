package canvas

import (
	"testing"

	"github.com/gogpu/gg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want gg.RGBA
	}{
		{"#fff", gg.RGBA{R: 1, G: 1, B: 1, A: 1}},
		{"#FF0000", gg.RGBA{R: 1, A: 1}},
		{"#00ff0080", gg.RGBA{G: 1, A: 128.0 / 255}},
		{"#00f8", gg.RGBA{B: 1, A: 136.0 / 255}},
		{"rgb(255, 0, 0)", gg.RGBA{R: 1, A: 1}},
		{"rgba(255, 99, 132, 0.2)", gg.RGBA{R: 1, G: 99.0 / 255, B: 132.0 / 255, A: 0.2}},
		{"rgb(0 0 255 / 50%)", gg.RGBA{B: 1, A: 0.5}},
		{"rgb(100%, 0%, 0%)", gg.RGBA{R: 1, A: 1}},
		{"hsl(120, 100%, 50%)", gg.RGBA{G: 1, A: 1}},
		{"hsla(240, 100%, 50%, 0.3)", gg.RGBA{B: 1, A: 0.3}},
		{"transparent", gg.RGBA{}},
		{"white", gg.RGBA{R: 1, G: 1, B: 1, A: 1}},
		{"  Black ", gg.RGBA{A: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			require.NoError(t, err)
			assert.InDelta(t, tt.want.R, got.R, 1e-6, "R")
			assert.InDelta(t, tt.want.G, got.G, 1e-6, "G")
			assert.InDelta(t, tt.want.B, got.B, 1e-6, "B")
			assert.InDelta(t, tt.want.A, got.A, 1e-6, "A")
		})
	}
}

func TestParseColorInvalid(t *testing.T) {
	for _, in := range []string{"", "#12", "#12345", "#ggg", "rgb(1,2)", "rgb(1,2,3", "hsl(x, 1%, 1%)", "notacolour"} {
		_, err := ParseColor(in)
		assert.Error(t, err, in)
	}
}

func TestMustParseColorPanics(t *testing.T) {
	assert.Panics(t, func() { MustParseColor("nope") })
	assert.NotPanics(t, func() { MustParseColor("red") })
}
