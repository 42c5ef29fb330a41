package render

import (
	"context"
	"fmt"
	"slices"

	"github.com/jinzhu/copier"

	"github.com/ironsheep/chart-canvas-mcp/internal/canvas"
	"github.com/ironsheep/chart-canvas-mcp/internal/chart"
	"github.com/ironsheep/chart-canvas-mcp/internal/plugins"
)

// DefaultAnimationDuration is the animation length, in milliseconds, used
// when a configuration does not set one.
const DefaultAnimationDuration = 1000

// AnimatedService renders every frame of a chart's animation. It is built
// from the same Options as Service and shares its isolation guarantees.
type AnimatedService struct {
	svc *Service
}

// NewAnimated builds an AnimatedService. See New for how opts are used.
func NewAnimated(opts Options) (*AnimatedService, error) {
	svc, err := New(opts)
	if err != nil {
		return nil, err
	}
	return &AnimatedService{svc: svc}, nil
}

// RegisterFont makes a font file available to charts this service renders.
func (a *AnimatedService) RegisterFont(path string, opts canvas.FontOptions) error {
	return a.svc.RegisterFont(path, opts)
}

// Service returns the still renderer sharing this service's library.
func (a *AnimatedService) Service() *Service { return a.svc }

// RenderToBuffer renders cfg with animation and returns every frame encoded
// as mime. The empty mime selects the surface's default format.
//
// cfg is not modified. Its animation callbacks still run, once per frame and
// once on completion.
func (a *AnimatedService) RenderToBuffer(ctx context.Context, cfg *chart.Config, mime string) ([][]byte, error) {
	frames, err := a.render(ctx, cfg, plugins.CaptureOptions{MimeType: a.mime(mime), RenderType: plugins.RenderBuffer})
	if err != nil {
		return nil, err
	}
	out := make([][]byte, len(frames))
	for i, f := range frames {
		out[i] = f.Data
	}
	return out, nil
}

// RenderToDataURL is RenderToBuffer with each frame as a base64 data URL.
func (a *AnimatedService) RenderToDataURL(ctx context.Context, cfg *chart.Config, mime string) ([]string, error) {
	frames, err := a.render(ctx, cfg, plugins.CaptureOptions{MimeType: a.mime(mime), RenderType: plugins.RenderDataURL})
	if err != nil {
		return nil, err
	}
	out := make([]string, len(frames))
	for i, f := range frames {
		out[i] = f.DataURL
	}
	return out, nil
}

func (a *AnimatedService) mime(mime string) string {
	if mime == "" {
		return a.svc.typ.DefaultMime()
	}
	return mime
}

func (a *AnimatedService) render(ctx context.Context, cfg *chart.Config, opts plugins.CaptureOptions) ([]plugins.Frame, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: nil chart configuration", ErrInvalidConfiguration)
	}
	return async(ctx, func() ([]plugins.Frame, error) {
		var (
			frames   []plugins.Frame
			frameErr error
			reported bool
		)
		capture := plugins.NewAnimationCapture(func(f []plugins.Frame, err error) {
			frames, frameErr, reported = f, err, true
		})

		animated, err := a.animatedConfig(cfg, capture)
		if err != nil {
			return nil, err
		}
		c, cv, err := a.svc.newChart(plugins.IncludeOptions(animated, opts))
		if err != nil {
			return nil, err
		}
		a.svc.teardown(c, cv)

		if !reported {
			return nil, ErrSurfaceUnavailable
		}
		if frameErr != nil {
			return nil, frameErr
		}
		a.svc.logger.Trace("animation captured", "chart", c.ID(), "frames", len(frames), "draws", capture.Draws())
		return frames, nil
	})
}

// animatedConfig returns a deep copy of cfg set up for a captured animation:
// not responsive, animation enabled with a default duration, the capture
// plugin appended to the inline plugins and the chart destroyed once the
// animation completes.
func (a *AnimatedService) animatedConfig(cfg *chart.Config, capture *plugins.AnimationCapture) (*chart.Config, error) {
	var out chart.Config
	if err := copier.CopyWithOption(&out, cfg, copier.Option{DeepCopy: true}); err != nil {
		return nil, fmt.Errorf("copy chart configuration: %w", err)
	}
	out.Plugins = append(slices.Clone(cfg.Plugins), capture)

	responsive := false
	out.Options.Responsive = &responsive

	anim := chart.Animation{}
	if src := cfg.Options.Animation; src != nil {
		anim.Duration, anim.Easing = src.Duration, src.Easing
		anim.OnProgress, anim.OnComplete = src.OnProgress, src.OnComplete
	}
	if anim.Duration <= 0 {
		anim.Duration = DefaultAnimationDuration
	}
	onProgress, onComplete := anim.OnProgress, anim.OnComplete
	anim.OnProgress = func(ev chart.AnimationEvent) {
		if onProgress != nil {
			onProgress(ev)
		}
		a.svc.logger.Trace("animation progress", "chart", ev.Chart.ID(), "step", ev.CurrentStep, "of", ev.NumSteps)
	}
	anim.OnComplete = func(ev chart.AnimationEvent) {
		if onComplete != nil {
			onComplete(ev)
		}
		ev.Chart.Destroy()
	}
	out.Options.Animation = &anim
	return &out, nil
}
