package imaging

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"sort"

	"github.com/lucasb-eyer/go-colorful"
)

// RGBA is a straight (non-premultiplied) 8-bit color.
type RGBA struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	A uint8 `json:"a"`
}

// HSL is a color in hue (degrees), saturation and lightness (percent).
type HSL struct {
	H int `json:"h"`
	S int `json:"s"`
	L int `json:"l"`
}

// ColorResult describes one sampled pixel.
//
// Rendered canvases store premultiplied pixels; every field here is
// un-premultiplied so that a translucent background reads back as the color
// that was requested. Hex omits alpha; see RGBA.A.
type ColorResult struct {
	Hex  string `json:"hex"`
	RGBA RGBA   `json:"rgba"`
	HSL  HSL    `json:"hsl"`
}

// SampleColor returns the color at pixel (x, y).
//
// Parameters:
//   - img: The rendered image to sample from.
//   - x, y: 0-based coordinates with origin at the top-left.
//
// # Errors
//
//   - Returns error if (x, y) lies outside the image bounds
func SampleColor(img image.Image, x, y int) (*ColorResult, error) {
	if !image.Pt(x, y).In(img.Bounds()) {
		return nil, fmt.Errorf("coordinates (%d,%d) outside image bounds %v", x, y, img.Bounds())
	}
	c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
	return newColorResult(c), nil
}

func newColorResult(c color.NRGBA) *ColorResult {
	cf := colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
	h, s, l := cf.Hsl()
	if math.IsNaN(h) {
		h = 0
	}
	return &ColorResult{
		Hex:  fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B),
		RGBA: RGBA{R: c.R, G: c.G, B: c.B, A: c.A},
		HSL:  HSL{H: int(math.Round(h)) % 360, S: int(math.Round(s * 100)), L: int(math.Round(l * 100))},
	}
}

// LabeledPoint is a pixel coordinate with an optional label echoed in the
// result.
type LabeledPoint struct {
	X     int    `json:"x"`
	Y     int    `json:"y"`
	Label string `json:"label,omitempty"`
}

// LabeledColor is the color found at a LabeledPoint.
type LabeledColor struct {
	LabeledPoint
	Color ColorResult `json:"color"`
}

// SampleColors samples every point in order. The first out-of-bounds point
// fails the whole call.
func SampleColors(img image.Image, points []LabeledPoint) ([]LabeledColor, error) {
	out := make([]LabeledColor, 0, len(points))
	for i, p := range points {
		c, err := SampleColor(img, p.X, p.Y)
		if err != nil {
			return nil, fmt.Errorf("point %d: %w", i, err)
		}
		out = append(out, LabeledColor{LabeledPoint: p, Color: *c})
	}
	return out, nil
}

// Region is a rectangle with (X1,Y1) inclusive and (X2,Y2) exclusive.
type Region struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// Rect converts r to an image.Rectangle.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X1, r.Y1, r.X2, r.Y2)
}

// ColorFrequency is one entry of a DominantColors result.
type ColorFrequency struct {
	Hex        string  `json:"hex"`
	Percentage float64 `json:"percentage"`
	RGBA       RGBA    `json:"rgba"`
}

// DominantColors returns up to count of the most frequent colors in img, or in
// region when it is non-nil. Each channel is quantized to a multiple of 16
// before counting, alpha included, so that anti-aliased edges fold into their
// neighbors. Ties are broken by hex so the order is deterministic.
func DominantColors(img image.Image, count int, region *Region) ([]ColorFrequency, error) {
	bounds := img.Bounds()
	if region != nil {
		r := region.Rect()
		if r.Empty() {
			return nil, fmt.Errorf("invalid region %+v", *region)
		}
		bounds = r.Intersect(bounds)
		if bounds.Empty() {
			return nil, fmt.Errorf("region %+v outside image bounds", *region)
		}
	}
	if count <= 0 {
		return nil, fmt.Errorf("count must be positive, got %d", count)
	}

	counts := make(map[color.NRGBA]int)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			c.R, c.G, c.B, c.A = c.R&0xF0, c.G&0xF0, c.B&0xF0, c.A&0xF0
			counts[c]++
		}
	}

	total := float64(bounds.Dx() * bounds.Dy())
	colors := make([]ColorFrequency, 0, len(counts))
	for c, n := range counts {
		res := newColorResult(c)
		colors = append(colors, ColorFrequency{
			Hex:        res.Hex,
			Percentage: float64(n) / total * 100,
			RGBA:       res.RGBA,
		})
	}
	sort.Slice(colors, func(i, j int) bool {
		if colors[i].Percentage != colors[j].Percentage {
			return colors[i].Percentage > colors[j].Percentage
		}
		return colors[i].Hex < colors[j].Hex
	})
	if len(colors) > count {
		colors = colors[:count]
	}
	return colors, nil
}
