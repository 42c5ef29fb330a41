package canvas

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/gogpu/gg"
	colorful "github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

// ParseColor parses a CSS colour value.
//
// Supported forms:
//   - hex: "#rgb", "#rgba", "#rrggbb", "#rrggbbaa"
//   - functional: "rgb(255, 99, 132)", "rgba(255,99,132,0.2)", "rgb(255 99 132 / 50%)"
//   - hsl: "hsl(120, 100%, 50%)", "hsla(120, 100%, 50%, 0.3)"
//   - keywords: "transparent" and the CSS named colours ("white", "rebeccapurple", ...)
//
// The returned colour is not premultiplied.
func ParseColor(s string) (gg.RGBA, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch {
	case v == "":
		return gg.RGBA{}, fmt.Errorf("empty colour")
	case v == "transparent":
		return gg.RGBA{}, nil
	case strings.HasPrefix(v, "#"):
		return parseHex(v)
	case strings.HasPrefix(v, "rgb"):
		return parseRGBFunc(v)
	case strings.HasPrefix(v, "hsl"):
		return parseHSLFunc(v)
	}

	if c, ok := colornames.Map[v]; ok {
		return gg.RGBA{
			R: float64(c.R) / 255,
			G: float64(c.G) / 255,
			B: float64(c.B) / 255,
			A: float64(c.A) / 255,
		}, nil
	}
	return gg.RGBA{}, fmt.Errorf("unrecognised colour %q", s)
}

// MustParseColor is ParseColor for literals known to be valid.
func MustParseColor(s string) gg.RGBA {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

func parseHex(v string) (gg.RGBA, error) {
	digits := v[1:]
	alpha := 1.0

	switch len(digits) {
	case 3, 6:
	case 4, 8:
		n := len(digits) / 4
		a, err := strconv.ParseUint(digits[len(digits)-n:], 16, 8)
		if err != nil {
			return gg.RGBA{}, fmt.Errorf("invalid hex colour %q: %w", v, err)
		}
		if n == 1 {
			a *= 17
		}
		alpha = float64(a) / 255
		digits = digits[:len(digits)-n]
	default:
		return gg.RGBA{}, fmt.Errorf("invalid hex colour %q: expected 3, 4, 6 or 8 digits", v)
	}

	c, err := colorful.Hex("#" + digits)
	if err != nil {
		return gg.RGBA{}, fmt.Errorf("invalid hex colour %q: %w", v, err)
	}
	return gg.RGBA{R: c.R, G: c.G, B: c.B, A: alpha}, nil
}

// functionArgs splits "name(a, b, c / d)" into its arguments. Commas, spaces
// and the slash before alpha are all accepted as separators.
func functionArgs(v string) ([]string, error) {
	open := strings.IndexByte(v, '(')
	if open < 0 || !strings.HasSuffix(v, ")") {
		return nil, fmt.Errorf("malformed colour function %q", v)
	}
	body := v[open+1 : len(v)-1]
	body = strings.NewReplacer(",", " ", "/", " ").Replace(body)
	args := strings.Fields(body)
	if len(args) != 3 && len(args) != 4 {
		return nil, fmt.Errorf("colour function %q: expected 3 or 4 arguments, got %d", v, len(args))
	}
	return args, nil
}

func parseRGBFunc(v string) (gg.RGBA, error) {
	args, err := functionArgs(v)
	if err != nil {
		return gg.RGBA{}, err
	}

	var ch [3]float64
	for i := 0; i < 3; i++ {
		n, err := parseNumber(args[i], 255)
		if err != nil {
			return gg.RGBA{}, fmt.Errorf("colour %q: %w", v, err)
		}
		ch[i] = clamp01(n / 255)
	}

	a := 1.0
	if len(args) == 4 {
		if a, err = parseNumber(args[3], 1); err != nil {
			return gg.RGBA{}, fmt.Errorf("colour %q: %w", v, err)
		}
	}
	return gg.RGBA{R: ch[0], G: ch[1], B: ch[2], A: clamp01(a)}, nil
}

func parseHSLFunc(v string) (gg.RGBA, error) {
	args, err := functionArgs(v)
	if err != nil {
		return gg.RGBA{}, err
	}

	h, err := strconv.ParseFloat(strings.TrimSuffix(args[0], "deg"), 64)
	if err != nil {
		return gg.RGBA{}, fmt.Errorf("colour %q: invalid hue: %w", v, err)
	}
	s, err := parseNumber(args[1], 1)
	if err != nil {
		return gg.RGBA{}, fmt.Errorf("colour %q: %w", v, err)
	}
	l, err := parseNumber(args[2], 1)
	if err != nil {
		return gg.RGBA{}, fmt.Errorf("colour %q: %w", v, err)
	}

	a := 1.0
	if len(args) == 4 {
		if a, err = parseNumber(args[3], 1); err != nil {
			return gg.RGBA{}, fmt.Errorf("colour %q: %w", v, err)
		}
	}

	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	c := colorful.Hsl(h, clamp01(s), clamp01(l)).Clamped()
	return gg.RGBA{R: c.R, G: c.G, B: c.B, A: clamp01(a)}, nil
}

// parseNumber parses a plain number or a percentage of full.
func parseNumber(s string, full float64) (float64, error) {
	if strings.HasSuffix(s, "%") {
		p, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
		if err != nil {
			return 0, fmt.Errorf("invalid percentage %q", s)
		}
		return p / 100 * full, nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return n, nil
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
