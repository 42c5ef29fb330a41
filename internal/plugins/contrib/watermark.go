package contrib

import (
	"image"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/chart-canvas-mcp/internal/chart"
	"github.com/ironsheep/chart-canvas-mcp/internal/modcache"
)

// WatermarkModule exports the watermark plugin without registering it.
// Load it through the requireLegacy group.
const WatermarkModule = "chartjs-plugin-watermark"

// WatermarkID is the plugin ID and options key of the watermark plugin.
const WatermarkID = "watermark"

func init() {
	modcache.Register(WatermarkModule, func(*modcache.Loader) (any, error) {
		return &Watermark{}, nil
	})
}

type watermarkOptions struct {
	// Image is a file path or data URL, resolved through the chart's image
	// loader.
	Image string `json:"image"`
	// Text is drawn when no image is set.
	Text     string  `json:"text"`
	Color    string  `json:"color"`
	Opacity  float64 `json:"opacity"`
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	Position string  `json:"position"`
	Padding  float64 `json:"padding"`
}

// Watermark stamps an image or a line of text in a corner of the chart
// after each frame is drawn.
type Watermark struct{}

func (*Watermark) ID() string { return WatermarkID }

func (*Watermark) AfterDraw(c *chart.Chart) {
	ctx := c.Context()
	if ctx == nil {
		return
	}
	opts := watermarkOptions{Opacity: 0.3, Position: "bottom-right", Padding: 10, Width: 64, Height: 64}
	if err := c.PluginOptions(WatermarkID, &opts); err != nil || (opts.Image == "" && opts.Text == "") {
		return
	}

	ctx.Save()
	defer ctx.Restore()
	ctx.SetGlobalAlpha(opts.Opacity)

	if opts.Image != "" {
		img, err := watermarkImage(c, opts)
		if err != nil {
			return
		}
		b := img.Bounds()
		w, h := float64(b.Dx()), float64(b.Dy())
		x, y := corner(c, opts, w, h)
		ctx.DrawImage(img, x, y, w, h)
		return
	}

	ctx.SetFont(c.Font(0, "bold"))
	ctx.SetFillStyle(orDefault(opts.Color, "#000"))
	ctx.SetTextBaseline("top")
	ctx.SetTextAlign("left")
	m := ctx.MeasureText(opts.Text)
	x, y := corner(c, opts, m.Width, c.Library().Defaults.Font.Size)
	ctx.FillText(opts.Text, x, y)
}

// watermarkImage loads the image once per chart and fits it inside the
// configured box, keeping its aspect ratio.
func watermarkImage(c *chart.Chart, opts watermarkOptions) (image.Image, error) {
	if img, ok := c.State(WatermarkID).(image.Image); ok {
		return img, nil
	}
	src, err := c.LoadImage(opts.Image)
	if err != nil {
		return nil, err
	}
	img := image.Image(imaging.Fit(src, max(1, opts.Width), max(1, opts.Height), imaging.Lanczos))
	c.SetState(WatermarkID, img)
	return img, nil
}

func corner(c *chart.Chart, opts watermarkOptions, w, h float64) (float64, float64) {
	pad := opts.Padding
	x, y := c.Width()-w-pad, c.Height()-h-pad
	switch opts.Position {
	case "top-left":
		x, y = pad, pad
	case "top-right":
		y = pad
	case "bottom-left":
		x = pad
	case "center":
		x, y = (c.Width()-w)/2, (c.Height()-h)/2
	}
	return x, y
}
