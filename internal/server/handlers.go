package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ironsheep/chart-canvas-mcp/internal/canvas"
	"github.com/ironsheep/chart-canvas-mcp/internal/chart"
	"github.com/ironsheep/chart-canvas-mcp/internal/config"
	"github.com/ironsheep/chart-canvas-mcp/internal/imaging"
	"github.com/ironsheep/chart-canvas-mcp/internal/modcache"
	"github.com/ironsheep/chart-canvas-mcp/internal/plugins"
	"github.com/ironsheep/chart-canvas-mcp/internal/render"
)

// errInvalidParams marks tool arguments that are malformed or missing. Tool
// calls failing with it are answered with -32602 rather than -32000.
var errInvalidParams = errors.New("invalid params")

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "chart_render_buffer").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Bad arguments and chart configurations the renderer rejects return
// -32602; every other tool failure returns -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.logger.Debug("tool failed", "tool", params.Name, "error", err)
		if errors.Is(err, errInvalidParams) || errors.Is(err, render.ErrInvalidConfiguration) {
			return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
		}
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Renderer setup
	case "chart_configure":
		return s.handleChartConfigure(args)
	case "chart_register_font":
		return s.handleChartRegisterFont(args)
	case "chart_modules":
		return s.handleChartModules(args)

	// Rendering
	case "chart_render_buffer":
		return s.handleChartRenderBuffer(ctx, args)
	case "chart_render_data_url":
		return s.handleChartRenderDataURL(ctx, args)
	case "chart_render_file":
		return s.handleChartRenderFile(args)
	case "chart_render_animation":
		return s.handleChartRenderAnimation(ctx, args)

	// Inspection
	case "chart_sample_color":
		return s.handleChartSampleColor(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

func decodeArgs(args json.RawMessage, dst any) error {
	if len(args) == 0 {
		args = []byte("{}")
	}
	if err := json.Unmarshal(args, dst); err != nil {
		return fmt.Errorf("%w: %w", errInvalidParams, err)
	}
	return nil
}

// === Renderer Setup Handlers ===

type chartConfigureArgs struct {
	Width      *int            `json:"width"`
	Height     *int            `json:"height"`
	Type       *string         `json:"type"`
	Background *string         `json:"background"`
	Plugins    *plugins.Groups `json:"plugins"`
	Defaults   *chartDefaults  `json:"defaults"`
	Reset      bool            `json:"reset"`
}

// handleChartConfigure rebuilds the renderer. Omitted fields keep their
// current values; reset starts from the server's configuration file instead.
func (s *Server) handleChartConfigure(args json.RawMessage) (interface{}, error) {
	var a chartConfigureArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	_, next := s.current()
	if a.Reset {
		next = sessionFromConfig(s.cfg)
	}
	if a.Width != nil {
		next.Width = *a.Width
	}
	if a.Height != nil {
		next.Height = *a.Height
	}
	if a.Type != nil {
		next.Type = *a.Type
	}
	if a.Background != nil {
		next.Background = *a.Background
	}
	if a.Plugins != nil {
		next.Plugins = *a.Plugins
	}
	if a.Defaults != nil {
		next.Defaults = a.Defaults
	}

	if err := s.configure(next); err != nil {
		return nil, err
	}
	renderer, cur := s.current()
	return map[string]interface{}{
		"settings":    cur,
		"plugins":     pluginIDs(renderer.Service().Library()),
		"chart_types": renderer.Service().Library().ChartTypes(),
	}, nil
}

type chartRegisterFontArgs struct {
	Path   string `json:"path"`
	Family string `json:"family"`
	Weight string `json:"weight"`
	Style  string `json:"style"`
}

func (s *Server) handleChartRegisterFont(args json.RawMessage) (interface{}, error) {
	var a chartRegisterFontArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" || a.Family == "" {
		return nil, fmt.Errorf("%w: path and family are required", errInvalidParams)
	}
	f := config.Font{Path: a.Path, Family: a.Family, Weight: a.Weight, Style: a.Style}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.renderer.RegisterFont(f.Path, f.Options()); err != nil {
		return nil, err
	}
	s.fonts = append(s.fonts, f)
	return map[string]interface{}{
		"registered": true,
		"path":       f.Path,
		"family":     f.Family,
		"fonts":      len(s.fonts),
	}, nil
}

func (s *Server) handleChartModules(json.RawMessage) (interface{}, error) {
	renderer, _ := s.current()
	lib := renderer.Service().Library()
	return map[string]interface{}{
		"modules":     modcache.Default.Modules(),
		"plugins":     pluginIDs(lib),
		"chart_types": lib.ChartTypes(),
	}, nil
}

func pluginIDs(lib *chart.Library) []string {
	ps := lib.Plugins()
	ids := make([]string, len(ps))
	for i, p := range ps {
		ids[i] = p.ID()
	}
	return ids
}

// === Rendering Handlers ===

type chartRenderArgs struct {
	Config   json.RawMessage `json:"config"`
	MimeType string          `json:"mime_type"`
}

func (a chartRenderArgs) chartConfig() (*chart.Config, error) {
	if len(a.Config) == 0 {
		return nil, fmt.Errorf("%w: config is required", errInvalidParams)
	}
	cfg, err := chart.ParseConfig(a.Config)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errInvalidParams, err)
	}
	return cfg, nil
}

// RenderResult describes one encoded chart. Width and Height are
// filled in when the output is a raster image.
type RenderResult struct {
	MimeType  string `json:"mime_type"`
	SizeBytes int    `json:"size_bytes"`
	Width     int    `json:"width,omitempty"`
	Height    int    `json:"height,omitempty"`
	Data      string `json:"data"`
}

func (s *Server) handleChartRenderBuffer(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a chartRenderArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	cfg, err := a.chartConfig()
	if err != nil {
		return nil, err
	}
	renderer, _ := s.current()
	svc := renderer.Service()
	data, err := svc.RenderToBuffer(ctx, cfg, a.MimeType)
	if err != nil {
		return nil, err
	}

	res := &RenderResult{
		MimeType:  a.MimeType,
		SizeBytes: len(data),
		Data:      base64.StdEncoding.EncodeToString(data),
	}
	if res.MimeType == "" {
		res.MimeType = svc.Type().DefaultMime()
	}
	if info, _, err := imaging.Inspect(data); err == nil {
		res.Width, res.Height = info.Width, info.Height
	}
	return res, nil
}

func (s *Server) handleChartRenderDataURL(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a chartRenderArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	cfg, err := a.chartConfig()
	if err != nil {
		return nil, err
	}
	renderer, _ := s.current()
	url, err := renderer.Service().RenderToDataURL(ctx, cfg, a.MimeType)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"data_url": url,
		"length":   len(url),
	}, nil
}

type chartRenderFileArgs struct {
	chartRenderArgs
	Path string `json:"path"`
}

// handleChartRenderFile streams the encoded chart straight to disk.
func (s *Server) handleChartRenderFile(args json.RawMessage) (interface{}, error) {
	var a chartRenderFileArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("%w: path is required", errInvalidParams)
	}
	cfg, err := a.chartConfig()
	if err != nil {
		return nil, err
	}
	if a.MimeType == "" {
		a.MimeType = mimeForPath(a.Path)
	}

	renderer, _ := s.current()
	stream, err := renderer.Service().RenderToStream(cfg, a.MimeType)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	f, err := os.Create(a.Path)
	if err != nil {
		return nil, err
	}
	n, err := io.Copy(f, stream)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(a.Path)
		return nil, fmt.Errorf("write %s: %w", a.Path, err)
	}
	// A sample taken from the previous render of this file is stale now.
	s.cache.Evict(a.Path)
	return map[string]interface{}{
		"path":       a.Path,
		"mime_type":  a.MimeType,
		"size_bytes": n,
	}, nil
}

// mimeForPath picks the stream format from a file extension. Unknown
// extensions leave the choice to the renderer.
func mimeForPath(path string) string {
	switch filepath.Ext(path) {
	case ".png":
		return canvas.MimePNG
	case ".jpg", ".jpeg":
		return canvas.MimeJPEG
	case ".pdf":
		return canvas.MimePDF
	}
	return ""
}

type chartRenderAnimationArgs struct {
	chartRenderArgs
	RenderType string `json:"render_type"`
}

func (s *Server) handleChartRenderAnimation(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a chartRenderAnimationArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	cfg, err := a.chartConfig()
	if err != nil {
		return nil, err
	}
	renderer, cur := s.current()
	if a.MimeType == "" {
		a.MimeType = cur.AnimationMime
	}

	var frames []string
	switch a.RenderType {
	case "", plugins.RenderDataURL:
		a.RenderType = plugins.RenderDataURL
		frames, err = renderer.RenderToDataURL(ctx, cfg, a.MimeType)
	case plugins.RenderBuffer:
		var bufs [][]byte
		bufs, err = renderer.RenderToBuffer(ctx, cfg, a.MimeType)
		frames = make([]string, len(bufs))
		for i, b := range bufs {
			frames[i] = base64.StdEncoding.EncodeToString(b)
		}
	default:
		return nil, fmt.Errorf("%w: render_type must be %q or %q", errInvalidParams, plugins.RenderDataURL, plugins.RenderBuffer)
	}
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"mime_type":   a.MimeType,
		"render_type": a.RenderType,
		"frame_count": len(frames),
		"frames":      frames,
	}, nil
}

// === Inspection Handlers ===

type chartSampleColorArgs struct {
	// Image is a file path or data URL, typically the output of a render.
	Image    string                 `json:"image"`
	X        *int                   `json:"x"`
	Y        *int                   `json:"y"`
	Points   []imaging.LabeledPoint `json:"points"`
	Dominant int                    `json:"dominant"`
	Region   *imaging.Region        `json:"region"`
}

func (s *Server) handleChartSampleColor(args json.RawMessage) (interface{}, error) {
	var a chartSampleColorArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Image == "" {
		return nil, fmt.Errorf("%w: image is required", errInvalidParams)
	}
	if (a.X == nil) != (a.Y == nil) {
		return nil, fmt.Errorf("%w: x and y must be given together", errInvalidParams)
	}
	if a.X == nil && len(a.Points) == 0 && a.Dominant <= 0 {
		return nil, fmt.Errorf("%w: give x and y, points, or dominant", errInvalidParams)
	}

	img, err := s.cache.Load(a.Image)
	if err != nil {
		return nil, err
	}

	result := map[string]interface{}{
		"width":  img.Bounds().Dx(),
		"height": img.Bounds().Dy(),
	}
	if a.X != nil {
		c, err := imaging.SampleColor(img, *a.X, *a.Y)
		if err != nil {
			return nil, err
		}
		result["color"] = c
	}
	if len(a.Points) > 0 {
		colors, err := imaging.SampleColors(img, a.Points)
		if err != nil {
			return nil, err
		}
		result["colors"] = colors
	}
	if a.Dominant > 0 {
		dom, err := imaging.DominantColors(img, a.Dominant, a.Region)
		if err != nil {
			return nil, err
		}
		result["dominant"] = dom
	}
	return result, nil
}
