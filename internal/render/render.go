package render

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/hashicorp/go-hclog"

	"github.com/ironsheep/chart-canvas-mcp/internal/canvas"
	"github.com/ironsheep/chart-canvas-mcp/internal/chart"
	"github.com/ironsheep/chart-canvas-mcp/internal/modcache"
	"github.com/ironsheep/chart-canvas-mcp/internal/plugins"
)

var (
	// ErrInvalidConfiguration is returned for bad service options and for
	// chart configurations the library rejects.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrPluginLoad is returned by New when a configured plugin cannot be
	// loaded. The wrapped *plugins.LoadError names the group and plugin.
	ErrPluginLoad = plugins.ErrPluginLoad

	// ErrSurfaceUnavailable is returned when a chart no longer has a canvas
	// to encode once it has been created.
	ErrSurfaceUnavailable = errors.New("chart has no drawing surface")

	// ErrUnsupportedOutputFormat is returned when the surface cannot produce
	// the requested format.
	ErrUnsupportedOutputFormat = canvas.ErrUnsupportedFormat
)

// ChartCallback customises the service's private chart library once, after
// plugins are loaded and before anything is rendered.
type ChartCallback func(lib *chart.Library) error

// Options configure a Service.
type Options struct {
	// Width and Height are the surface size in pixels. Both are required.
	Width  int
	Height int

	ChartCallback ChartCallback

	// Type is "", "pdf" or "svg". The empty string is an image surface.
	Type string

	// BackgroundColour, when set, is painted beneath every chart.
	BackgroundColour string

	Plugins plugins.Groups

	// Loader resolves the canvas, chart library and plugin modules. nil
	// uses a loader over modcache.Default.
	Loader *modcache.Loader

	Logger hclog.Logger
}

// Service renders chart configurations to encoded images. Each Service owns
// its own canvas backend and chart library, so fonts, plugins and defaults
// set up on one are never seen by another.
//
// A Service is safe for concurrent use once New returns. Renders never write
// to the configuration they are given, so one *chart.Config may be rendered
// from several goroutines at once.
type Service struct {
	width, height int
	typ           canvas.Type

	backend *canvas.Backend
	lib     *chart.Library
	logger  hclog.Logger
}

// New validates opts and builds the service's private chart environment:
// a freshly loaded canvas backend and chart library, the configured plugins,
// the chart callback and finally the background fill.
//
// # Errors
//
// ErrInvalidConfiguration for bad options, ErrPluginLoad when a plugin fails
// to load, or the chart callback's error wrapped.
func New(opts Options) (*Service, error) {
	logger := opts.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	logger = logger.Named("render")

	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("%w: width and height must be positive, got %dx%d", ErrInvalidConfiguration, opts.Width, opts.Height)
	}
	typ, err := canvas.ParseType(opts.Type)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}
	if opts.BackgroundColour != "" {
		if _, err := canvas.ParseColor(opts.BackgroundColour); err != nil {
			return nil, fmt.Errorf("%w: background colour: %w", ErrInvalidConfiguration, err)
		}
	}

	loader := opts.Loader
	if loader == nil {
		loader = modcache.NewLoader(nil)
	}
	backend, err := freshRequire[*canvas.Backend](loader, canvas.ModuleID)
	if err != nil {
		return nil, err
	}
	lib, err := freshRequire[*chart.Library](loader, chart.ModuleID)
	if err != nil {
		return nil, err
	}
	lib.SetEnvironment(chart.Environment{Images: backend, Logger: logger.Named("chart")})

	if err := plugins.Load(context.Background(), loader, lib, opts.Plugins, logger.Named("plugins")); err != nil {
		return nil, err
	}
	if opts.ChartCallback != nil {
		if err := opts.ChartCallback(lib); err != nil {
			return nil, fmt.Errorf("chart callback: %w", err)
		}
	}
	if opts.BackgroundColour != "" {
		if err := lib.Register(plugins.NewBackgroundFill(opts.Width, opts.Height, opts.BackgroundColour)); err != nil {
			return nil, err
		}
	}

	logger.Debug("service ready", "width", opts.Width, "height", opts.Height, "type", string(typ), "plugins", opts.Plugins.Len())
	return &Service{
		width:   opts.Width,
		height:  opts.Height,
		typ:     typ,
		backend: backend,
		lib:     lib,
		logger:  logger,
	}, nil
}

func freshRequire[T any](l *modcache.Loader, id string) (T, error) {
	var zero T
	v, err := l.FreshRequire(id)
	if err != nil {
		return zero, fmt.Errorf("load %s: %w", id, err)
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("load %s: module exports %T, want %T", id, v, zero)
	}
	return t, nil
}

func (s *Service) Width() int              { return s.width }
func (s *Service) Height() int             { return s.height }
func (s *Service) Type() canvas.Type       { return s.typ }
func (s *Service) Library() *chart.Library { return s.lib }

// RegisterFont makes a font file available to charts this service renders.
// Register fonts before rendering any chart that uses them.
func (s *Service) RegisterFont(path string, opts canvas.FontOptions) error {
	if err := s.backend.RegisterFont(path, opts); err != nil {
		return err
	}
	s.logger.Debug("font registered", "path", path, "family", opts.Family)
	return nil
}

// RenderToBuffer renders cfg and encodes it as mime. The empty mime selects
// the surface's default format. Rendering and encoding run on their own
// goroutine; if ctx ends first its error is returned and the result is
// dropped.
func (s *Service) RenderToBuffer(ctx context.Context, cfg *chart.Config, mime string) ([]byte, error) {
	return async(ctx, func() ([]byte, error) {
		return s.RenderToBufferSync(cfg, mime)
	})
}

// RenderToBufferSync is RenderToBuffer on the calling goroutine.
func (s *Service) RenderToBufferSync(cfg *chart.Config, mime string) ([]byte, error) {
	c, cv, err := s.renderChart(cfg)
	if err != nil {
		return nil, err
	}
	defer s.teardown(c, cv)
	return cv.ToBuffer(mime)
}

// RenderToDataURL renders cfg and encodes it as a base64 data URL. It waits
// on ctx like RenderToBuffer.
func (s *Service) RenderToDataURL(ctx context.Context, cfg *chart.Config, mime string) (string, error) {
	return async(ctx, func() (string, error) {
		return s.RenderToDataURLSync(cfg, mime)
	})
}

// RenderToDataURLSync is RenderToDataURL on the calling goroutine.
func (s *Service) RenderToDataURLSync(cfg *chart.Config, mime string) (string, error) {
	c, cv, err := s.renderChart(cfg)
	if err != nil {
		return "", err
	}
	defer s.teardown(c, cv)
	return cv.ToDataURL(mime)
}

// RenderToStream renders cfg and returns a stream of it encoded as mime,
// which must be PNG, JPEG or PDF. The stream is returned before any byte is
// encoded; the chart is torn down after RenderToStream returns.
func (s *Service) RenderToStream(cfg *chart.Config, mime string) (io.ReadCloser, error) {
	c, cv, err := s.renderChart(cfg)
	if err != nil {
		return nil, err
	}
	if mime == "" {
		mime = s.typ.DefaultMime()
	}
	r, err := cv.CreateStream(mime)
	if err != nil {
		s.teardown(c, cv)
		return nil, err
	}
	go s.teardown(c, cv)
	return r, nil
}

// renderChart draws cfg on a new surface with responsive sizing and
// animation switched off. The flags are set on a copy; cfg is not modified.
func (s *Service) renderChart(cfg *chart.Config) (*chart.Chart, *canvas.Canvas, error) {
	if cfg == nil {
		return nil, nil, fmt.Errorf("%w: nil chart configuration", ErrInvalidConfiguration)
	}
	static := *cfg
	responsive := false
	static.Options.Responsive = &responsive
	static.Options.Animation = &chart.Animation{Disabled: true}
	return s.draw(&static)
}

// draw creates a surface and a chart bound to it. The caller owns both and
// must pass them to teardown.
func (s *Service) draw(cfg *chart.Config) (*chart.Chart, *canvas.Canvas, error) {
	c, cv, err := s.newChart(cfg)
	if err != nil {
		return nil, nil, err
	}
	if c.Canvas() == nil {
		s.teardown(c, cv)
		return nil, nil, ErrSurfaceUnavailable
	}
	s.logger.Trace("chart drawn", "chart", c.ID(), "type", cfg.Type)
	return c, cv, nil
}

func (s *Service) newChart(cfg *chart.Config) (*chart.Chart, *canvas.Canvas, error) {
	cv, err := s.backend.CreateCanvas(s.width, s.height, s.typ)
	if err != nil {
		return nil, nil, err
	}
	c, err := s.lib.New(cv.GetContext(), cfg)
	if err != nil {
		_ = cv.Close()
		if errors.Is(err, chart.ErrUnknownChartType) {
			return nil, nil, fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
		}
		return nil, nil, err
	}
	return c, cv, nil
}

func (s *Service) teardown(c *chart.Chart, cv *canvas.Canvas) {
	c.Destroy()
	if err := cv.Close(); err != nil {
		s.logger.Warn("close canvas", "chart", c.ID(), "error", err)
	}
}

type result[T any] struct {
	v   T
	err error
}

// async runs fn on a new goroutine and waits for it or for ctx, whichever
// finishes first.
func async[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	done := make(chan result[T], 1)
	go func() {
		v, err := fn()
		done <- result[T]{v, err}
	}()
	select {
	case r := <-done:
		return r.v, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
