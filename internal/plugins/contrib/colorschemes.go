package contrib

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/chart-canvas-mcp/internal/chart"
	"github.com/ironsheep/chart-canvas-mcp/internal/modcache"
)

// ColorSchemesModule registers the colour scheme plugin on the library
// published as the "Chart" global. Load it through the globalVariableLegacy
// group.
const ColorSchemesModule = "chartjs-plugin-colorschemes"

// ColorSchemesID is the plugin ID and options key of the colour scheme
// plugin.
const ColorSchemesID = "colorschemes"

// DefaultScheme is used when the options name no scheme.
const DefaultScheme = "tableau.Tableau10"

func init() {
	modcache.Register(ColorSchemesModule, func(l *modcache.Loader) (any, error) {
		v, ok := l.Global("Chart")
		if !ok {
			return nil, errors.New("global Chart is not defined")
		}
		lib, ok := v.(*chart.Library)
		if !ok {
			return nil, fmt.Errorf("global Chart is %T, not a chart library", v)
		}
		p := &ColorSchemes{}
		if err := lib.Register(p); err != nil {
			return nil, err
		}
		return p, nil
	})
}

var schemes = map[string][]string{
	"tableau.Tableau10": {"#4E79A7", "#F28E2B", "#E15759", "#76B7B2", "#59A14F", "#EDC948", "#B07AA1", "#FF9DA7", "#9C755F", "#BAB0AC"},
	"brewer.Set1":       {"#E41A1C", "#377EB8", "#4DAF4A", "#984EA3", "#FF7F00", "#FFFF33", "#A65628", "#F781BF", "#999999"},
	"brewer.Paired":     {"#A6CEE3", "#1F78B4", "#B2DF8A", "#33A02C", "#FB9A99", "#E31A1C", "#FDBF6F", "#FF7F00", "#CAB2D6", "#6A3D9A", "#FFFF99", "#B15928"},
	"office.Office6":    {"#4472C4", "#ED7D31", "#A5A5A5", "#FFC000", "#5B9BD5", "#70AD47"},
}

// Scheme returns the colours of a named scheme as hex strings. Besides the
// fixed schemes, "hue.N" yields N colours at evenly spaced hues.
func Scheme(name string) ([]string, bool) {
	if p, ok := schemes[name]; ok {
		return p, true
	}
	n, found := strings.CutPrefix(name, "hue.")
	if !found {
		return nil, false
	}
	count, err := strconv.Atoi(n)
	if err != nil || count <= 0 || count > 360 {
		return nil, false
	}
	out := make([]string, count)
	for i := range out {
		out[i] = colorful.Hcl(float64(i)*360/float64(count), 0.6, 0.65).Clamped().Hex()
	}
	return out, true
}

type colorSchemeOptions struct {
	Scheme    string   `json:"scheme"`
	FillAlpha *float64 `json:"fillAlpha"`
	Override  bool     `json:"override"`
	Reverse   bool     `json:"reverse"`
}

// ColorSchemes colours datasets from a named palette before layout. Datasets
// that already set colours keep them unless override is set.
type ColorSchemes struct{}

func (*ColorSchemes) ID() string { return ColorSchemesID }

func (*ColorSchemes) BeforeUpdate(c *chart.Chart) {
	opts := colorSchemeOptions{Scheme: DefaultScheme}
	if err := c.PluginOptions(ColorSchemesID, &opts); err != nil {
		return
	}
	palette, ok := Scheme(opts.Scheme)
	if !ok || len(palette) == 0 {
		return
	}
	alpha := 0.5
	if opts.FillAlpha != nil {
		alpha = *opts.FillAlpha
	}
	pick := func(i int) string {
		if opts.Reverse {
			return palette[len(palette)-1-i%len(palette)]
		}
		return palette[i%len(palette)]
	}

	radial := c.Controller().Axes() == chart.AxesNone
	datasets := c.Config().Data.Datasets
	for di := range datasets {
		ds := &datasets[di]
		if radial {
			if opts.Override || len(ds.BackgroundColor) == 0 {
				ds.BackgroundColor = make(chart.ColorList, len(ds.Data))
				for i := range ds.Data {
					ds.BackgroundColor[i] = pick(i)
				}
			}
			continue
		}
		border := pick(di)
		if opts.Override || len(ds.BorderColor) == 0 {
			ds.BorderColor = chart.ColorList{border}
		}
		if opts.Override || len(ds.BackgroundColor) == 0 {
			ds.BackgroundColor = chart.ColorList{withAlpha(border, alpha)}
		}
	}
}

func withAlpha(hex string, alpha float64) string {
	c, err := colorful.Hex(hex)
	if err != nil {
		return hex
	}
	r, g, b := c.RGB255()
	return fmt.Sprintf("rgba(%d, %d, %d, %g)", r, g, b, alpha)
}
