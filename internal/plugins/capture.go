package plugins

import (
	"errors"
	"fmt"
	"maps"

	"github.com/ironsheep/chart-canvas-mcp/internal/canvas"
	"github.com/ironsheep/chart-canvas-mcp/internal/chart"
)

// AnimationCaptureID is the plugin ID of AnimationCapture and the key its
// options are read from in options.plugins.
const AnimationCaptureID = "chartjs-plugin-chartjs-node-canvas-animation"

// How captured frames are encoded.
const (
	RenderBuffer  = "buffer"
	RenderDataURL = "dataurl"
)

// ErrNoCanvas is reported when a frame is due but the chart no longer has a
// canvas.
var ErrNoCanvas = errors.New("chart has no canvas")

// CaptureOptions select the encoding of captured frames.
type CaptureOptions struct {
	MimeType   string `json:"mimeType"`
	RenderType string `json:"renderType"`
}

// DefaultCaptureOptions returns PNG data URLs.
func DefaultCaptureOptions() CaptureOptions {
	return CaptureOptions{MimeType: canvas.MimePNG, RenderType: RenderDataURL}
}

// Frame is one captured frame. Data is set for buffer captures, DataURL for
// data URL captures.
type Frame struct {
	Data    []byte
	DataURL string
}

// AnimationCapture encodes the canvas as the animation progresses: once
// before the first dataset is drawn, after every frame, and once more when
// rendering finishes, at which point done receives every frame. If an
// encode fails, done receives the error instead and capture stops.
//
// An AnimationCapture records a single chart and is meant to be passed as an
// inline plugin.
type AnimationCapture struct {
	done func([]Frame, error)

	frames      []Frame
	draws       int
	firstCaught bool
	finished    bool
}

// NewAnimationCapture returns a capture plugin reporting to done.
func NewAnimationCapture(done func(frames []Frame, err error)) *AnimationCapture {
	return &AnimationCapture{done: done}
}

func (*AnimationCapture) ID() string { return AnimationCaptureID }

// Draws returns how many frames have been drawn so far.
func (a *AnimationCapture) Draws() int { return a.draws }

func (a *AnimationCapture) BeforeDatasetDraw(c *chart.Chart, _ int) {
	if a.firstCaught {
		return
	}
	a.firstCaught = true
	a.capture(c)
}

func (a *AnimationCapture) AfterDraw(c *chart.Chart) {
	a.capture(c)
	a.draws++
}

func (a *AnimationCapture) AfterRender(c *chart.Chart) {
	if !a.capture(c) {
		return
	}
	a.finish(a.frames, nil)
}

func (a *AnimationCapture) capture(c *chart.Chart) bool {
	if a.finished {
		return false
	}
	frame, err := encodeFrame(c)
	if err != nil {
		a.finish(nil, err)
		return false
	}
	a.frames = append(a.frames, frame)
	return true
}

func (a *AnimationCapture) finish(frames []Frame, err error) {
	a.finished = true
	if a.done != nil {
		a.done(frames, err)
	}
}

func encodeFrame(c *chart.Chart) (Frame, error) {
	opts := DefaultCaptureOptions()
	if err := c.PluginOptions(AnimationCaptureID, &opts); err != nil {
		return Frame{}, err
	}
	cv := c.Canvas()
	if cv == nil {
		return Frame{}, ErrNoCanvas
	}
	switch opts.RenderType {
	case RenderBuffer:
		data, err := cv.ToBuffer(opts.MimeType)
		return Frame{Data: data}, err
	case RenderDataURL:
		url, err := cv.ToDataURL(opts.MimeType)
		return Frame{DataURL: url}, err
	}
	return Frame{}, fmt.Errorf("unknown render type %q", opts.RenderType)
}

// IncludeOptions returns a shallow copy of cfg whose options carry opts
// under the capture plugin's ID, merged over any options already there. cfg
// itself is not modified.
func IncludeOptions(cfg *chart.Config, opts CaptureOptions) *chart.Config {
	out := *cfg
	out.Options.Plugins = maps.Clone(cfg.Options.Plugins)
	if out.Options.Plugins == nil {
		out.Options.Plugins = make(map[string]any)
	}

	merged := map[string]any{}
	if existing, ok := out.Options.Plugins[AnimationCaptureID].(map[string]any); ok {
		maps.Copy(merged, existing)
	}
	if opts.MimeType != "" {
		merged["mimeType"] = opts.MimeType
	}
	if opts.RenderType != "" {
		merged["renderType"] = opts.RenderType
	}
	out.Options.Plugins[AnimationCaptureID] = merged
	return &out
}
