package server

import (
	"fmt"
	"maps"

	"github.com/hashicorp/go-hclog"

	"github.com/ironsheep/chart-canvas-mcp/internal/canvas"
	"github.com/ironsheep/chart-canvas-mcp/internal/chart"
	"github.com/ironsheep/chart-canvas-mcp/internal/config"
	"github.com/ironsheep/chart-canvas-mcp/internal/plugins"
	"github.com/ironsheep/chart-canvas-mcp/internal/render"
)

// session holds the renderer settings chart_configure changes.
type session struct {
	Width         int            `json:"width"`
	Height        int            `json:"height"`
	Type          string         `json:"type,omitempty"`
	Background    string         `json:"background,omitempty"`
	Plugins       plugins.Groups `json:"plugins"`
	Defaults      *chartDefaults `json:"defaults,omitempty"`
	AnimationMime string         `json:"animation_mime_type"`
}

func sessionFromConfig(cfg *config.Config) session {
	return session{
		Width:         cfg.Width,
		Height:        cfg.Height,
		Type:          cfg.Type,
		Background:    cfg.Background,
		Plugins:       cfg.Plugins,
		AnimationMime: cfg.Animation.MimeType,
	}
}

func (s session) renderOptions(logger hclog.Logger) render.Options {
	opts := render.Options{
		Width:            s.Width,
		Height:           s.Height,
		Type:             s.Type,
		BackgroundColour: s.Background,
		Plugins:          s.Plugins,
		Logger:           logger,
	}
	if s.Defaults != nil {
		opts.ChartCallback = s.Defaults.apply
	}
	return opts
}

// chartDefaults are library-wide chart defaults. They are what a chart
// callback would set, expressed as data so they can cross the protocol.
type chartDefaults struct {
	Color           string   `json:"color,omitempty"`
	BorderColor     string   `json:"borderColor,omitempty"`
	BackgroundColor string   `json:"backgroundColor,omitempty"`
	Palette         []string `json:"palette,omitempty"`

	Font *struct {
		Family string  `json:"family,omitempty"`
		Size   float64 `json:"size,omitempty"`
		Style  string  `json:"style,omitempty"`
		Weight string  `json:"weight,omitempty"`
	} `json:"font,omitempty"`

	Animation *struct {
		Duration float64 `json:"duration,omitempty"`
		Easing   string  `json:"easing,omitempty"`
	} `json:"animation,omitempty"`

	// Plugins holds default options per plugin ID.
	Plugins map[string]any `json:"plugins,omitempty"`
}

func (d *chartDefaults) apply(lib *chart.Library) error {
	def := lib.Defaults
	for name, c := range map[string]string{"color": d.Color, "borderColor": d.BorderColor, "backgroundColor": d.BackgroundColor} {
		if c == "" {
			continue
		}
		if _, err := canvas.ParseColor(c); err != nil {
			return fmt.Errorf("%w: defaults.%s: %w", render.ErrInvalidConfiguration, name, err)
		}
	}
	if d.Color != "" {
		def.Color = d.Color
	}
	if d.BorderColor != "" {
		def.BorderColor = d.BorderColor
	}
	if d.BackgroundColor != "" {
		def.BackgroundColor = d.BackgroundColor
	}
	if len(d.Palette) > 0 {
		def.Palette = append([]string(nil), d.Palette...)
	}
	if f := d.Font; f != nil {
		if f.Family != "" {
			def.Font.Family = f.Family
		}
		if f.Size > 0 {
			def.Font.Size = f.Size
		}
		if f.Style != "" {
			def.Font.Style = f.Style
		}
		if f.Weight != "" {
			def.Font.Weight = f.Weight
		}
	}
	if a := d.Animation; a != nil {
		if a.Duration > 0 {
			def.Animation.Duration = a.Duration
		}
		if a.Easing != "" {
			def.Animation.Easing = a.Easing
		}
	}
	maps.Copy(def.Plugins, d.Plugins)
	return nil
}
