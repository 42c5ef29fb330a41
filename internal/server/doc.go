// Package server implements the MCP (Model Context Protocol) server for chart
// rendering.
//
// This package provides a JSON-RPC 2.0 server that renders chart
// configurations to PNG, JPEG, raw pixels, PDF or SVG, and reads colours
// back out of the results so a client can check what it drew.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Renderer setup:
//   - chart_configure: Rebuild the renderer (size, surface type, background, plugins, defaults)
//   - chart_register_font: Register a font file
//   - chart_modules: List loadable modules, registered plugins and chart types
//
// Rendering:
//   - chart_render_buffer: Encoded bytes as base64
//   - chart_render_data_url: Data URL
//   - chart_render_file: Stream to a file on disk
//   - chart_render_animation: One image per animation frame
//
// Inspection:
//   - chart_sample_color: Pixel colours and dominant colours of a rendered image
//
// # Renderer Lifecycle
//
// The server holds one renderer built from the configuration file. Because a
// chart callback cannot cross the protocol, chart_configure takes library
// defaults as data instead and builds a replacement renderer with them; if
// building fails the previous renderer stays in use. Fonts registered with
// chart_register_font are carried over to every replacement.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32602 for malformed arguments or chart configurations, -32000
//     for any other tool failure, -32601 for unknown methods
//   - message: Human-readable error description
//   - data: The Go error string
//
// # Usage
//
//	srv, err := server.New(cfg, server.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	return srv.Run(ctx)
package server
