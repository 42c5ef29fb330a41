package contrib

import (
	"fmt"

	"github.com/ironsheep/chart-canvas-mcp/internal/chart"
	"github.com/ironsheep/chart-canvas-mcp/internal/modcache"
)

// AnnotationModule registers the annotation plugin on the library it finds
// under "chart.js". Load it through the requireChartJSLegacy group.
const AnnotationModule = "chartjs-plugin-annotation"

// AnnotationID is the plugin ID and options key of the annotation plugin.
const AnnotationID = "annotation"

func init() {
	modcache.Register(AnnotationModule, func(l *modcache.Loader) (any, error) {
		exports, err := l.Require(chart.ModuleID)
		if err != nil {
			return nil, err
		}
		lib, ok := exports.(*chart.Library)
		if !ok {
			return nil, fmt.Errorf("%s exports %T, not a chart library", chart.ModuleID, exports)
		}
		p := &Annotation{}
		if err := lib.Register(p); err != nil {
			return nil, err
		}
		return p, nil
	})
}

// AnnotationSpec is one entry of options.plugins.annotation.annotations.
// Coordinates are data values: category indexes on the index axis and
// values on the value axis.
type AnnotationSpec struct {
	// Type is "line" or "box".
	Type string `json:"type"`

	// Line annotations.
	ScaleID string  `json:"scaleID"`
	Value   float64 `json:"value"`

	// Box annotations. Missing bounds extend to the chart area edge.
	XMin *float64 `json:"xMin"`
	XMax *float64 `json:"xMax"`
	YMin *float64 `json:"yMin"`
	YMax *float64 `json:"yMax"`

	BackgroundColor string    `json:"backgroundColor"`
	BorderColor     string    `json:"borderColor"`
	BorderWidth     *float64  `json:"borderWidth"`
	BorderDash      []float64 `json:"borderDash"`
	Label           string    `json:"label"`
}

type annotationOptions struct {
	Annotations []AnnotationSpec `json:"annotations"`
}

// Annotation draws reference lines and shaded boxes over the datasets of
// cartesian charts.
type Annotation struct{}

func (*Annotation) ID() string { return AnnotationID }

func (*Annotation) AfterDatasetsDraw(c *chart.Chart) {
	s := c.Scales()
	ctx := c.Context()
	if s == nil || ctx == nil {
		return
	}
	var opts annotationOptions
	if err := c.PluginOptions(AnnotationID, &opts); err != nil {
		return
	}
	area := c.ChartArea()

	ctx.Save()
	defer ctx.Restore()
	for _, a := range opts.Annotations {
		width := 2.0
		if a.BorderWidth != nil {
			width = *a.BorderWidth
		}
		ctx.SetLineWidth(width)
		ctx.SetLineDash(a.BorderDash)
		ctx.SetStrokeStyle(orDefault(a.BorderColor, "rgba(0,0,0,0.5)"))

		switch a.Type {
		case "line":
			p := axisPixel(s, a.ScaleID, a.Value)
			ctx.BeginPath()
			if a.ScaleID == "y" {
				ctx.MoveTo(area.Left, p)
				ctx.LineTo(area.Right, p)
			} else {
				ctx.MoveTo(p, area.Top)
				ctx.LineTo(p, area.Bottom)
			}
			if width > 0 {
				ctx.Stroke()
			}
			if a.Label != "" {
				drawAnnotationLabel(c, a, p)
			}
		case "box":
			x1, x2 := bound(s, "x", a.XMin, area.Left), bound(s, "x", a.XMax, area.Right)
			y1, y2 := bound(s, "y", a.YMin, area.Bottom), bound(s, "y", a.YMax, area.Top)
			x, y := min(x1, x2), min(y1, y2)
			w, h := max(x1, x2)-x, max(y1, y2)-y
			ctx.SetFillStyle(orDefault(a.BackgroundColor, "rgba(0,0,0,0.1)"))
			ctx.FillRect(x, y, w, h)
			if width > 0 && a.BorderColor != "" {
				ctx.StrokeRect(x, y, w, h)
			}
		}
	}
}

func drawAnnotationLabel(c *chart.Chart, a AnnotationSpec, p float64) {
	ctx := c.Context()
	area := c.ChartArea()
	ctx.SetFont(c.Font(0, "bold"))
	ctx.SetFillStyle(orDefault(a.BorderColor, c.Library().Defaults.Color))
	if a.ScaleID == "y" {
		ctx.SetTextAlign("right")
		ctx.SetTextBaseline("bottom")
		ctx.FillText(a.Label, area.Right-4, p-4)
		return
	}
	ctx.SetTextAlign("left")
	ctx.SetTextBaseline("top")
	ctx.FillText(a.Label, p+4, area.Top+4)
}

// axisPixel maps a data value on the scale with the given ID to a pixel
// along that axis. "y" is always the vertical axis on screen.
func axisPixel(s *chart.Scales, scaleID string, v float64) float64 {
	vertical := scaleID == "y"
	if vertical == s.Horizontal() {
		// Index axis: interpolate between category centres.
		return s.IndexPixel(0) + v*s.Band()
	}
	return s.ValuePixel(v)
}

func bound(s *chart.Scales, scaleID string, v *float64, edge float64) float64 {
	if v == nil {
		return edge
	}
	return axisPixel(s, scaleID, *v)
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
