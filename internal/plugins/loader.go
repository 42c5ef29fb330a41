package plugins

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/ironsheep/chart-canvas-mcp/internal/chart"
	"github.com/ironsheep/chart-canvas-mcp/internal/modcache"
)

// Group names a plugin loading convention.
type Group string

const (
	GroupRequireChartJSLegacy Group = "requireChartJSLegacy"
	GroupGlobalVariableLegacy Group = "globalVariableLegacy"
	GroupModern               Group = "modern"
	GroupRequireLegacy        Group = "requireLegacy"
)

// GlobalName is the global the charting library is published under for the
// globalVariableLegacy group.
const GlobalName = "Chart"

// ErrPluginLoad is wrapped by every error Load returns.
var ErrPluginLoad = errors.New("plugin load failed")

// Groups lists the plugins to load, grouped by the convention each one
// follows. Within a group, plugins load in order.
type Groups struct {
	// RequireChartJSLegacy plugins Require "chart.js" and register
	// themselves on what they get back.
	RequireChartJSLegacy []string `json:"requireChartJSLegacy,omitempty" toml:"requireChartJSLegacy" yaml:"requireChartJSLegacy"`

	// GlobalVariableLegacy plugins read the library from the "Chart"
	// global and register themselves on it.
	GlobalVariableLegacy []string `json:"globalVariableLegacy,omitempty" toml:"globalVariableLegacy" yaml:"globalVariableLegacy"`

	// Modern entries are module identifiers or chart.Plugin values. Their
	// exports are registered by the loader.
	Modern []any `json:"modern,omitempty" toml:"modern" yaml:"modern"`

	// RequireLegacy plugins export something registrable without touching
	// the library themselves.
	RequireLegacy []string `json:"requireLegacy,omitempty" toml:"requireLegacy" yaml:"requireLegacy"`
}

// Len returns the total number of entries across all groups.
func (g Groups) Len() int {
	return len(g.RequireChartJSLegacy) + len(g.GlobalVariableLegacy) + len(g.Modern) + len(g.RequireLegacy)
}

// LoadError reports the plugin that failed to load. It matches both
// ErrPluginLoad and the underlying cause with errors.Is.
type LoadError struct {
	Group Group
	ID    string
	Err   error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%v: %s plugin %q: %v", ErrPluginLoad, e.Group, e.ID, e.Err)
}

func (e *LoadError) Unwrap() []error {
	return []error{ErrPluginLoad, e.Err}
}

// Load applies the plugin groups to lib in fixed order: requireChartJSLegacy,
// globalVariableLegacy, modern, requireLegacy. The first failure stops the
// load. A nil logger discards output.
//
// Parameters:
//   - ctx: checked between plugins; a cancelled context abandons the load
//   - l: the loader plugin modules resolve through
//   - lib: the library instance plugins end up registered on
//   - g: the plugin groups
//
// # Errors
//
// Every error is a *LoadError naming the group and plugin.
func Load(ctx context.Context, l *modcache.Loader, lib *chart.Library, g Groups, logger hclog.Logger) error {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if g.Len() == 0 {
		return nil
	}

	steps := []struct {
		group Group
		run   func(context.Context, *modcache.Loader, *chart.Library, Groups, hclog.Logger) error
	}{
		{GroupRequireChartJSLegacy, loadRequireChartJSLegacy},
		{GroupGlobalVariableLegacy, loadGlobalVariableLegacy},
		{GroupModern, loadModern},
		{GroupRequireLegacy, loadRequireLegacy},
	}
	for _, step := range steps {
		if err := step.run(ctx, l, lib, g, logger.With("group", string(step.group))); err != nil {
			return err
		}
	}
	return nil
}

func loadRequireChartJSLegacy(ctx context.Context, l *modcache.Loader, lib *chart.Library, g Groups, logger hclog.Logger) error {
	if len(g.RequireChartJSLegacy) == 0 {
		return nil
	}
	err := l.WithModule(chart.ModuleID, lib, func(scoped *modcache.Loader) error {
		for _, id := range g.RequireChartJSLegacy {
			if err := ctx.Err(); err != nil {
				return &LoadError{Group: GroupRequireChartJSLegacy, ID: id, Err: err}
			}
			_, err := scoped.Require(id)
			// Evicted whether or not the load succeeded.
			scoped.Evict(id)
			if err != nil {
				return &LoadError{Group: GroupRequireChartJSLegacy, ID: id, Err: err}
			}
			logger.Debug("plugin loaded", "id", id)
		}
		return nil
	})
	var le *LoadError
	if err != nil && !errors.As(err, &le) {
		return &LoadError{Group: GroupRequireChartJSLegacy, ID: chart.ModuleID, Err: err}
	}
	return err
}

func loadGlobalVariableLegacy(ctx context.Context, l *modcache.Loader, lib *chart.Library, g Groups, logger hclog.Logger) error {
	if len(g.GlobalVariableLegacy) == 0 {
		return nil
	}
	return l.WithGlobal(GlobalName, lib, func(scoped *modcache.Loader) error {
		for _, id := range g.GlobalVariableLegacy {
			if err := ctx.Err(); err != nil {
				return &LoadError{Group: GroupGlobalVariableLegacy, ID: id, Err: err}
			}
			if _, err := scoped.FreshRequire(id); err != nil {
				return &LoadError{Group: GroupGlobalVariableLegacy, ID: id, Err: err}
			}
			logger.Debug("plugin loaded", "id", id)
		}
		return nil
	})
}

func loadModern(ctx context.Context, l *modcache.Loader, lib *chart.Library, g Groups, logger hclog.Logger) error {
	for _, entry := range g.Modern {
		id := entryID(entry)
		if err := ctx.Err(); err != nil {
			return &LoadError{Group: GroupModern, ID: id, Err: err}
		}
		var exports any
		switch v := entry.(type) {
		case string:
			var err error
			if exports, err = l.FreshRequire(v); err != nil {
				return &LoadError{Group: GroupModern, ID: id, Err: err}
			}
		case chart.Plugin:
			exports = v
		default:
			return &LoadError{Group: GroupModern, ID: id, Err: fmt.Errorf("%w: %T", chart.ErrNotRegistrable, entry)}
		}
		if err := lib.Register(exports); err != nil {
			return &LoadError{Group: GroupModern, ID: id, Err: err}
		}
		logger.Debug("plugin loaded", "id", id)
	}
	return nil
}

func loadRequireLegacy(ctx context.Context, l *modcache.Loader, lib *chart.Library, g Groups, logger hclog.Logger) error {
	for _, id := range g.RequireLegacy {
		if err := ctx.Err(); err != nil {
			return &LoadError{Group: GroupRequireLegacy, ID: id, Err: err}
		}
		exports, err := l.FreshRequire(id)
		if err != nil {
			return &LoadError{Group: GroupRequireLegacy, ID: id, Err: err}
		}
		if err := lib.Register(exports); err != nil {
			return &LoadError{Group: GroupRequireLegacy, ID: id, Err: err}
		}
		logger.Debug("plugin loaded", "id", id)
	}
	return nil
}

func entryID(entry any) string {
	switch v := entry.(type) {
	case string:
		return v
	case chart.Plugin:
		return v.ID()
	}
	return fmt.Sprintf("%T", entry)
}
