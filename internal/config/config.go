// Package config loads the server's rendering defaults from a TOML or YAML
// file.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/ironsheep/chart-canvas-mcp/internal/canvas"
	"github.com/ironsheep/chart-canvas-mcp/internal/plugins"
	"github.com/ironsheep/chart-canvas-mcp/internal/render"
)

// Defaults applied to fields a file leaves unset.
const (
	DefaultWidth         = 800
	DefaultHeight        = 600
	DefaultLogLevel      = "info"
	DefaultAnimationMime = canvas.MimePNG
)

// ErrUnknownFormat is returned for files that are neither TOML nor YAML.
var ErrUnknownFormat = errors.New("unknown config file format")

// Config holds the rendering defaults the server starts with. Every field
// can be overridden per session with the chart_configure tool.
type Config struct {
	Width      int            `toml:"width" yaml:"width" json:"width"`
	Height     int            `toml:"height" yaml:"height" json:"height"`
	Type       string         `toml:"type" yaml:"type" json:"type,omitempty"`
	Background string         `toml:"background" yaml:"background" json:"background,omitempty"`
	Plugins    plugins.Groups `toml:"plugins" yaml:"plugins" json:"plugins"`
	Fonts      []Font         `toml:"fonts" yaml:"fonts" json:"fonts,omitempty"`
	LogLevel   string         `toml:"log_level" yaml:"log_level" json:"log_level"`
	Animation  Animation      `toml:"animation" yaml:"animation" json:"animation"`
}

// Font is a font file registered with every renderer the server builds.
type Font struct {
	Path   string `toml:"path" yaml:"path" json:"path"`
	Family string `toml:"family" yaml:"family" json:"family"`
	Weight string `toml:"weight" yaml:"weight" json:"weight,omitempty"`
	Style  string `toml:"style" yaml:"style" json:"style,omitempty"`
}

func (f Font) Options() canvas.FontOptions {
	return canvas.FontOptions{Family: f.Family, Weight: f.Weight, Style: f.Style}
}

type Animation struct {
	// MimeType is the frame format used when a request names none.
	MimeType string `toml:"mime_type" yaml:"mime_type" json:"mime_type"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.Width == 0 {
		c.Width = DefaultWidth
	}
	if c.Height == 0 {
		c.Height = DefaultHeight
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.Animation.MimeType == "" {
		c.Animation.MimeType = DefaultAnimationMime
	}
}

// decoder decodes one configuration document strictly: unknown keys are an
// error.
type decoder func(r io.Reader, v any) error

var decoders = map[string]decoder{
	".toml": func(r io.Reader, v any) error {
		d := toml.NewDecoder(r)
		d.DisallowUnknownFields()
		return d.Decode(v)
	},
	".yaml": decodeYAML,
	".yml":  decodeYAML,
}

func decodeYAML(r io.Reader, v any) error {
	d := yaml.NewDecoder(r)
	d.KnownFields(true)
	err := d.Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// Load reads the configuration at path. The format follows the file
// extension: .toml, .yaml or .yml.
//
// # Errors
//
//   - ErrUnknownFormat for any other extension
//   - decode errors, including unknown keys, wrapped with the path
//   - validation errors from Validate
func Load(path string) (*Config, error) {
	ext := strings.ToLower(filepath.Ext(path))
	dec, ok := decoders[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	c := &Config{}
	if err := dec(bufio.NewReader(f), c); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Validate checks the fields that would otherwise only fail when the first
// renderer is built.
func (c *Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("width and height must be positive, got %dx%d", c.Width, c.Height)
	}
	if _, err := canvas.ParseType(c.Type); err != nil {
		return err
	}
	if c.Background != "" {
		if _, err := canvas.ParseColor(c.Background); err != nil {
			return fmt.Errorf("background: %w", err)
		}
	}
	if hclog.LevelFromString(c.LogLevel) == hclog.NoLevel {
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	for i, f := range c.Fonts {
		if f.Path == "" || f.Family == "" {
			return fmt.Errorf("fonts[%d]: path and family are required", i)
		}
	}
	return nil
}

// Level returns the configured log level.
func (c *Config) Level() hclog.Level {
	return hclog.LevelFromString(c.LogLevel)
}

// RenderOptions returns the renderer options this configuration describes.
func (c *Config) RenderOptions(logger hclog.Logger) render.Options {
	return render.Options{
		Width:            c.Width,
		Height:           c.Height,
		Type:             c.Type,
		BackgroundColour: c.Background,
		Plugins:          c.Plugins,
		Logger:           logger,
	}
}
