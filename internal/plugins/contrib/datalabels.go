package contrib

import (
	"strconv"

	"github.com/ironsheep/chart-canvas-mcp/internal/chart"
	"github.com/ironsheep/chart-canvas-mcp/internal/modcache"
)

// DataLabelsModule exports the data label plugin. Load it through the
// modern group.
const DataLabelsModule = "chartjs-plugin-datalabels"

// DataLabelsID is the plugin ID and options key of the data label plugin.
const DataLabelsID = "datalabels"

func init() {
	modcache.Register(DataLabelsModule, func(*modcache.Loader) (any, error) {
		return &DataLabels{}, nil
	})
}

type dataLabelOptions struct {
	Display   *bool   `json:"display"`
	Color     string  `json:"color"`
	Align     string  `json:"align"`
	Offset    float64 `json:"offset"`
	Precision *int    `json:"precision"`
	Suffix    string  `json:"suffix"`
	Font      struct {
		Size   float64 `json:"size"`
		Weight string  `json:"weight"`
	} `json:"font"`
}

// DataLabels writes each data value next to the element that shows it:
// above bars and points, or at the centre of pie slices.
type DataLabels struct{}

func (*DataLabels) ID() string { return DataLabelsID }

func (*DataLabels) AfterDatasetsDraw(c *chart.Chart) {
	ctx := c.Context()
	if ctx == nil {
		return
	}
	opts := dataLabelOptions{Align: "end", Offset: 4}
	if err := c.PluginOptions(DataLabelsID, &opts); err != nil {
		return
	}
	if opts.Display != nil && !*opts.Display {
		return
	}

	radial := c.Controller().Axes() == chart.AxesNone
	horizontal := c.Scales() != nil && c.Scales().Horizontal()

	ctx.Save()
	defer ctx.Restore()
	ctx.SetFont(c.Font(opts.Font.Size, opts.Font.Weight))
	ctx.SetFillStyle(orDefault(opts.Color, c.Library().Defaults.Color))

	for di, ds := range c.Config().Data.Datasets {
		for i, v := range ds.Data {
			x, y, ok := c.ElementPosition(di, i)
			if !ok {
				continue
			}
			text := formatValue(v, opts.Precision) + opts.Suffix
			switch {
			case radial || opts.Align == "center":
				ctx.SetTextAlign("center")
				ctx.SetTextBaseline("middle")
			case horizontal:
				ctx.SetTextAlign("left")
				ctx.SetTextBaseline("middle")
				if v < 0 {
					ctx.SetTextAlign("right")
					x -= opts.Offset
				} else {
					x += opts.Offset
				}
			default:
				ctx.SetTextAlign("center")
				ctx.SetTextBaseline("bottom")
				if v < 0 {
					ctx.SetTextBaseline("top")
					y += opts.Offset
				} else {
					y -= opts.Offset
				}
			}
			ctx.FillText(text, x, y)
		}
	}
}

func formatValue(v float64, precision *int) string {
	if precision == nil {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strconv.FormatFloat(v, 'f', *precision, 64)
}
