package chart

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Config is a chart configuration. It decodes from the same JSON shape
// browser chart configurations use.
type Config struct {
	Type    string  `json:"type"`
	Data    Data    `json:"data"`
	Options Options `json:"options"`

	// Plugins are inline plugins that apply to this chart only. They run
	// after the plugins registered on the library.
	Plugins []Plugin `json:"-" copier:"-"`
}

type Data struct {
	Labels   []string  `json:"labels,omitempty"`
	Datasets []Dataset `json:"datasets"`
}

type Dataset struct {
	// Type overrides the chart type for this dataset in mixed charts.
	Type            string    `json:"type,omitempty"`
	Label           string    `json:"label,omitempty"`
	Data            []float64 `json:"data"`
	BackgroundColor ColorList `json:"backgroundColor,omitempty"`
	BorderColor     ColorList `json:"borderColor,omitempty"`
	BorderWidth     *float64  `json:"borderWidth,omitempty"`
	Fill            bool      `json:"fill,omitempty"`
	Tension         float64   `json:"tension,omitempty"`
	Hidden          bool      `json:"hidden,omitempty"`
}

// ColorList is a single colour or one colour per data point. It decodes from
// either a JSON string or an array of strings.
type ColorList []string

func (l *ColorList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*l = ColorList{s}
		return nil
	}
	var list []string
	if err := json.Unmarshal(b, &list); err != nil {
		return fmt.Errorf("colour must be a string or an array of strings: %w", err)
	}
	*l = list
	return nil
}

// At returns the colour for point i, cycling through the list. It returns ""
// for an empty list.
func (l ColorList) At(i int) string {
	if len(l) == 0 {
		return ""
	}
	return l[i%len(l)]
}

type Options struct {
	Responsive          *bool                   `json:"responsive,omitempty"`
	MaintainAspectRatio *bool                   `json:"maintainAspectRatio,omitempty"`
	Animation           *Animation              `json:"animation,omitempty"`
	IndexAxis           string                  `json:"indexAxis,omitempty"`
	Scales              map[string]ScaleOptions `json:"scales,omitempty"`
	Layout              Layout                  `json:"layout,omitempty"`

	// Plugins holds per-plugin options keyed by plugin ID. The value false
	// disables the plugin for the chart.
	Plugins map[string]any `json:"plugins,omitempty"`
}

type ScaleOptions struct {
	Display     *bool       `json:"display,omitempty"`
	BeginAtZero bool        `json:"beginAtZero,omitempty"`
	Min         *float64    `json:"min,omitempty"`
	Max         *float64    `json:"max,omitempty"`
	Grid        GridOptions `json:"grid,omitempty"`
	Ticks       TickOptions `json:"ticks,omitempty"`
}

type GridOptions struct {
	Display *bool  `json:"display,omitempty"`
	Color   string `json:"color,omitempty"`
}

type TickOptions struct {
	Color    string  `json:"color,omitempty"`
	StepSize float64 `json:"stepSize,omitempty"`
}

type Layout struct {
	Padding Padding `json:"padding,omitempty"`
}

// Padding decodes from a single number or a {top, right, bottom, left}
// object.
type Padding struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

func (p *Padding) UnmarshalJSON(b []byte) error {
	var n float64
	if err := json.Unmarshal(b, &n); err == nil {
		*p = Padding{n, n, n, n}
		return nil
	}
	type plain Padding
	return json.Unmarshal(b, (*plain)(p))
}

// Animation configures the chart's animation clock. It decodes from false
// (disabled), true (defaults) or an object.
type Animation struct {
	Disabled bool    `json:"-"`
	Duration float64 `json:"duration,omitempty"`
	Easing   string  `json:"easing,omitempty"`

	OnProgress func(AnimationEvent) `json:"-" copier:"-"`
	OnComplete func(AnimationEvent) `json:"-" copier:"-"`
}

// AnimationEvent is passed to the animation callbacks. CurrentStep and
// NumSteps are in milliseconds of virtual time.
type AnimationEvent struct {
	Chart       *Chart
	CurrentStep float64
	NumSteps    float64
	Initial     bool
}

func (a *Animation) UnmarshalJSON(b []byte) error {
	switch string(bytes.TrimSpace(b)) {
	case "false":
		*a = Animation{Disabled: true}
		return nil
	case "true", "null":
		*a = Animation{}
		return nil
	}
	type plain Animation
	var v plain
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*a = Animation(v)
	return nil
}

func (a Animation) MarshalJSON() ([]byte, error) {
	if a.Disabled {
		return []byte("false"), nil
	}
	type plain Animation
	return json.Marshal(plain(a))
}

// ParseConfig decodes a JSON chart configuration.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid chart configuration: %w", err)
	}
	return &cfg, nil
}
