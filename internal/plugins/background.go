package plugins

import (
	"github.com/ironsheep/chart-canvas-mcp/internal/chart"
)

// BackgroundFillID is the plugin ID of BackgroundFill.
const BackgroundFillID = "chartjs-plugin-chartjs-node-canvas-background-colour"

// BackgroundFill paints a solid colour beneath everything else drawn on the
// chart, so encoded images are not transparent.
type BackgroundFill struct {
	width, height float64
	colour        string
}

// NewBackgroundFill returns a fill covering a width x height surface with
// colour, which may be any CSS colour the canvas accepts.
func NewBackgroundFill(width, height int, colour string) *BackgroundFill {
	return &BackgroundFill{width: float64(width), height: float64(height), colour: colour}
}

func (*BackgroundFill) ID() string { return BackgroundFillID }

func (b *BackgroundFill) Colour() string { return b.colour }

// BeforeDraw fills the whole surface beneath what is already there.
func (b *BackgroundFill) BeforeDraw(c *chart.Chart) {
	ctx := c.Context()
	if ctx == nil {
		return
	}
	ctx.Save()
	ctx.SetGlobalCompositeOperation("destination-over")
	ctx.SetFillStyle(b.colour)
	ctx.FillRect(0, 0, b.width, b.height)
	ctx.Restore()
}
