package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// chartConfigProperty is the schema of the chart configuration every render
// tool takes.
var chartConfigProperty = map[string]interface{}{
	"type":        "object",
	"description": "Chart configuration: {type, data: {labels, datasets}, options}. Chart types: bar, line, pie, doughnut.",
	"properties": map[string]interface{}{
		"type": map[string]interface{}{"type": "string"},
		"data": map[string]interface{}{"type": "object"},
		"options": map[string]interface{}{
			"type":        "object",
			"description": "Chart options. options.plugins holds per-plugin options keyed by plugin ID; false disables a plugin.",
		},
	},
	"required": []string{"type", "data"},
}

var pluginGroupsProperty = map[string]interface{}{
	"type":        "object",
	"description": "Plugin modules to load, by loading convention. Groups load in the order listed here.",
	"properties": map[string]interface{}{
		"requireChartJSLegacy": stringArray("Plugins that require chart.js and register themselves"),
		"globalVariableLegacy": stringArray("Plugins that read the global Chart and register themselves"),
		"modern":               stringArray("Plugins whose exports are registered by the loader"),
		"requireLegacy":        stringArray("Plugins whose exports are registered by the loader, loaded last"),
	},
}

func stringArray(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "array",
		"items":       map[string]interface{}{"type": "string"},
		"description": description,
	}
}

func mimeProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"enum":        []string{"image/png", "image/jpeg", "raw", "application/pdf", "image/svg+xml"},
		"description": description,
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Renderer setup
		{
			Name:        "chart_configure",
			Description: "Rebuild the chart renderer with a new surface size, surface type, background colour, plugin set or library defaults. Omitted fields keep their current values.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"width": map[string]interface{}{
						"type":        "integer",
						"description": "Surface width in pixels",
					},
					"height": map[string]interface{}{
						"type":        "integer",
						"description": "Surface height in pixels",
					},
					"type": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"", "pdf", "svg"},
						"description": "Surface type. Empty for raster images",
					},
					"background": map[string]interface{}{
						"type":        "string",
						"description": "CSS colour painted beneath every chart. Empty for transparent",
					},
					"plugins": pluginGroupsProperty,
					"defaults": map[string]interface{}{
						"type":        "object",
						"description": "Library-wide defaults: color, borderColor, backgroundColor, palette, font {family, size, style, weight}, animation {duration, easing}, plugins",
					},
					"reset": map[string]interface{}{
						"type":        "boolean",
						"description": "Start from the server's configuration file instead of the current settings",
						"default":     false,
					},
				},
			},
		},
		{
			Name:        "chart_register_font",
			Description: "Register a TrueType or OpenType font file so charts can use its family in font settings.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the font file",
					},
					"family": map[string]interface{}{
						"type":        "string",
						"description": "Family name charts refer to the font by",
					},
					"weight": map[string]interface{}{
						"type":        "string",
						"description": "CSS weight, e.g. normal, bold, 700",
					},
					"style": map[string]interface{}{
						"type":        "string",
						"description": "CSS style: normal or italic",
					},
				},
				"required": []string{"path", "family"},
			},
		},
		{
			Name:        "chart_modules",
			Description: "List the loadable modules, the plugins registered on the current renderer and the supported chart types.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},

		// Rendering
		{
			Name:        "chart_render_buffer",
			Description: "Render a chart and return the encoded bytes as base64.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"config":    chartConfigProperty,
					"mime_type": mimeProperty("Output format. Defaults to the surface type's format"),
				},
				"required": []string{"config"},
			},
		},
		{
			Name:        "chart_render_data_url",
			Description: "Render a chart and return it as a data URL.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"config":    chartConfigProperty,
					"mime_type": mimeProperty("Output format. Defaults to the surface type's format"),
				},
				"required": []string{"config"},
			},
		},
		{
			Name:        "chart_render_file",
			Description: "Render a chart and stream it to a file. Supports PNG, JPEG and PDF.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"config": chartConfigProperty,
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path of the file to write",
					},
					"mime_type": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"image/png", "image/jpeg", "application/pdf"},
						"description": "Output format. Defaults from the file extension",
					},
				},
				"required": []string{"config", "path"},
			},
		},
		{
			Name:        "chart_render_animation",
			Description: "Render every frame of a chart's animation. Returns one image per frame at 60 frames per second of animation time, plus the first and final frames.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"config":    chartConfigProperty,
					"mime_type": mimeProperty("Frame format. Defaults to the configured animation format"),
					"render_type": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"dataurl", "buffer"},
						"description": "dataurl returns data URLs, buffer returns base64 bytes",
						"default":     "dataurl",
					},
				},
				"required": []string{"config"},
			},
		},

		// Inspection
		{
			Name:        "chart_sample_color",
			Description: "Read colours back out of a rendered chart: one pixel, several labelled points, or the dominant colours of a region.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"image": map[string]interface{}{
						"type":        "string",
						"description": "Path or data URL of the rendered image",
					},
					"x": map[string]interface{}{
						"type":        "integer",
						"description": "X coordinate (0-based, from left)",
					},
					"y": map[string]interface{}{
						"type":        "integer",
						"description": "Y coordinate (0-based, from top)",
					},
					"points": map[string]interface{}{
						"type": "array",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"x":     map[string]interface{}{"type": "integer"},
								"y":     map[string]interface{}{"type": "integer"},
								"label": map[string]interface{}{"type": "string"},
							},
							"required": []string{"x", "y"},
						},
						"description": "Points to sample",
					},
					"dominant": map[string]interface{}{
						"type":        "integer",
						"description": "Number of dominant colours to return",
					},
					"region": map[string]interface{}{
						"type":        "object",
						"description": "Limits dominant colours to a region; (x1,y1) inclusive, (x2,y2) exclusive",
						"properties": map[string]interface{}{
							"x1": map[string]interface{}{"type": "integer"},
							"y1": map[string]interface{}{"type": "integer"},
							"x2": map[string]interface{}{"type": "integer"},
							"y2": map[string]interface{}{"type": "integer"},
						},
						"required": []string{"x1", "y1", "x2", "y2"},
					},
				},
				"required": []string{"image"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
