package chart

import "math"

// FrameCount returns how many frames the virtual clock draws for an
// animation of the given duration in milliseconds. Any positive duration
// draws at least one frame.
func FrameCount(durationMS float64) int {
	if durationMS <= 0 {
		return 0
	}
	return max(1, int(math.Ceil(durationMS*FrameRate/1000-1e-9)))
}

var easings = map[string]func(t float64) float64{
	"linear":         func(t float64) float64 { return t },
	"easeInQuad":     func(t float64) float64 { return t * t },
	"easeOutQuad":    func(t float64) float64 { return -t * (t - 2) },
	"easeInOutQuad":  inOut(func(t float64) float64 { return t * t }),
	"easeInCubic":    func(t float64) float64 { return t * t * t },
	"easeOutCubic":   func(t float64) float64 { return 1 - math.Pow(1-t, 3) },
	"easeInOutCubic": inOut(func(t float64) float64 { return t * t * t }),
	"easeInQuart":    func(t float64) float64 { return t * t * t * t },
	"easeOutQuart":   func(t float64) float64 { return 1 - math.Pow(1-t, 4) },
	"easeInOutQuart": inOut(func(t float64) float64 { return t * t * t * t }),
	"easeOutSine":    func(t float64) float64 { return math.Sin(t * math.Pi / 2) },
}

// inOut builds a symmetric ease-in-out curve from an ease-in curve.
func inOut(in func(float64) float64) func(float64) float64 {
	return func(t float64) float64 {
		if t < 0.5 {
			return in(t*2) / 2
		}
		return 1 - in((1-t)*2)/2
	}
}

// easing looks up an easing function by name. Unknown names use
// easeOutQuart.
func easing(name string) func(float64) float64 {
	if f, ok := easings[name]; ok {
		return f
	}
	return easings["easeOutQuart"]
}
