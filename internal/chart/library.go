package chart

import (
	"errors"
	"fmt"
	"image"
	"slices"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/ironsheep/chart-canvas-mcp/internal/modcache"
)

// Module identifiers the library registers under.
const (
	ModuleID     = "chart.js"
	AutoModuleID = "chart.js/auto"
)

func init() {
	modcache.Register(ModuleID, func(*modcache.Loader) (any, error) {
		return NewLibrary(), nil
	})
	modcache.Alias(AutoModuleID, ModuleID)
}

var (
	// ErrUnknownChartType is returned when a configuration names a chart
	// type no controller is registered for.
	ErrUnknownChartType = errors.New("unknown chart type")

	// ErrNotRegistrable is returned by Register for values that are neither
	// plugins nor controllers.
	ErrNotRegistrable = errors.New("value is not a plugin or controller")
)

// ImageLoader resolves image references used by plugins (logos, patterns).
type ImageLoader interface {
	LoadImage(src string) (image.Image, error)
}

// Environment carries the ambient dependencies charts may need while
// drawing.
type Environment struct {
	Images ImageLoader
	Logger hclog.Logger
}

// Defaults are the library-wide style defaults. They are read by every chart
// the library creates and may be changed freely until the first chart is
// created.
type Defaults struct {
	Responsive          bool
	MaintainAspectRatio bool

	Color           string
	BorderColor     string
	BackgroundColor string
	Font            FontDefaults
	Animation       Animation

	// Palette colours datasets that set no colours of their own.
	Palette []string

	// Plugins holds default options per plugin ID, merged beneath
	// Options.Plugins.
	Plugins map[string]any
}

type FontDefaults struct {
	Family string
	Size   float64
	Style  string
	Weight string
}

func newDefaults() *Defaults {
	return &Defaults{
		Responsive:          true,
		MaintainAspectRatio: true,
		Color:               "#666",
		BorderColor:         "rgba(0,0,0,0.1)",
		BackgroundColor:     "rgba(0,0,0,0.1)",
		Font: FontDefaults{
			Family: "'Helvetica Neue', 'Helvetica', 'Arial', sans-serif",
			Size:   12,
			Style:  "normal",
			Weight: "normal",
		},
		Animation: Animation{Duration: 1000, Easing: "easeOutQuart"},
		Palette: []string{
			"rgb(54, 162, 235)",
			"rgb(255, 99, 132)",
			"rgb(255, 159, 64)",
			"rgb(255, 205, 86)",
			"rgb(75, 192, 192)",
			"rgb(153, 102, 255)",
			"rgb(201, 203, 207)",
		},
		Plugins: make(map[string]any),
	}
}

// Library is one charting-library instance: its defaults, plugin and
// controller registries, and the charts it has created that are still alive.
// Libraries share nothing with each other.
type Library struct {
	Defaults *Defaults

	mu          sync.RWMutex
	plugins     []Plugin
	controllers map[string]Controller
	instances   map[int]*Chart
	nextID      int
	env         Environment
}

// LibraryOption configures a Library.
type LibraryOption func(*Library)

// WithEnvironment sets the environment charts are created with.
func WithEnvironment(env Environment) LibraryOption {
	return func(l *Library) {
		l.env = env
	}
}

// NewLibrary creates a library with the built-in bar, line, pie and doughnut
// controllers and the title and legend plugins.
func NewLibrary(opts ...LibraryOption) *Library {
	l := &Library{
		Defaults:    newDefaults(),
		controllers: make(map[string]Controller),
		instances:   make(map[int]*Chart),
	}
	for _, c := range []Controller{barController{}, lineController{}, arcController{kind: "pie"}, arcController{kind: "doughnut", cutout: 0.5}} {
		l.controllers[c.Type()] = c
	}
	l.plugins = []Plugin{&titlePlugin{}, &legendPlugin{}}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Register adds plugins and controllers. Each item may be a Controller, a
// Plugin, a []any of those, or a Registrable. A plugin whose ID is already
// registered replaces the existing one in place, so registering the same
// plugin twice is harmless.
func (l *Library) Register(items ...any) error {
	for _, item := range items {
		switch v := item.(type) {
		case Controller:
			l.mu.Lock()
			l.controllers[v.Type()] = v
			l.mu.Unlock()
		case Plugin:
			if v.ID() == "" {
				return fmt.Errorf("%w: plugin has an empty ID", ErrNotRegistrable)
			}
			l.mu.Lock()
			if i := slices.IndexFunc(l.plugins, func(p Plugin) bool { return p.ID() == v.ID() }); i >= 0 {
				l.plugins[i] = v
			} else {
				l.plugins = append(l.plugins, v)
			}
			l.mu.Unlock()
		case []any:
			if err := l.Register(v...); err != nil {
				return err
			}
		case Registrable:
			if err := l.Register(v.Items()...); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: %T", ErrNotRegistrable, item)
		}
	}
	return nil
}

// Unregister removes the plugin with the given ID, if any.
func (l *Library) Unregister(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.plugins = slices.DeleteFunc(l.plugins, func(p Plugin) bool { return p.ID() == id })
}

// Plugins returns the registered plugins in registration order.
func (l *Library) Plugins() []Plugin {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.plugins)
}

// Plugin looks up a registered plugin by ID.
func (l *Library) Plugin(id string) (Plugin, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, p := range l.plugins {
		if p.ID() == id {
			return p, true
		}
	}
	return nil, false
}

// Controller looks up the controller for a chart type.
func (l *Library) Controller(chartType string) (Controller, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	c, ok := l.controllers[chartType]
	return c, ok
}

// ChartTypes returns the registered chart types, sorted.
func (l *Library) ChartTypes() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	types := make([]string, 0, len(l.controllers))
	for t := range l.controllers {
		types = append(types, t)
	}
	slices.Sort(types)
	return types
}

// Instances returns the number of charts created and not yet destroyed.
func (l *Library) Instances() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.instances)
}

func (l *Library) SetEnvironment(env Environment) {
	l.mu.Lock()
	l.env = env
	l.mu.Unlock()
}

func (l *Library) Environment() Environment {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.env
}

func (l *Library) track(c *Chart) {
	l.mu.Lock()
	l.nextID++
	c.id = l.nextID
	l.instances[c.id] = c
	l.mu.Unlock()
}

func (l *Library) untrack(c *Chart) {
	l.mu.Lock()
	delete(l.instances, c.id)
	l.mu.Unlock()
}
