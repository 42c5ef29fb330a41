package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/ironsheep/chart-canvas-mcp/internal/config"
	"github.com/ironsheep/chart-canvas-mcp/internal/imaging"
	"github.com/ironsheep/chart-canvas-mcp/internal/render"
)

// ServerName is reported in the initialize handshake.
const ServerName = "chart-canvas-mcp"

// Server handles MCP protocol communication
type Server struct {
	cfg     *config.Config
	logger  hclog.Logger
	version string
	cache   *imaging.ImageCache

	// mu guards the renderer, which chart_configure replaces.
	mu       sync.RWMutex
	session  session
	renderer *render.AnimatedService
	fonts    []config.Font
}

// MCPRequest represents an incoming JSON-RPC request
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an outgoing JSON-RPC response
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents a JSON-RPC error
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger the server and its renderers log to.
func WithLogger(logger hclog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithVersion sets the version reported in the initialize handshake.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.version = v
	}
}

// New creates a server whose renderer starts from cfg. A nil cfg uses
// config.Default().
//
// # Errors
//
// Returned when the initial renderer cannot be built (bad plugins, bad
// surface type) or a configured font cannot be registered.
func New(cfg *config.Config, opts ...Option) (*Server, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	s := &Server{
		cfg:     cfg,
		logger:  hclog.NewNullLogger(),
		version: "dev",
		cache:   imaging.NewImageCache(),
		fonts:   append([]config.Font(nil), cfg.Fonts...),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Named("server")

	if err := s.configure(sessionFromConfig(cfg)); err != nil {
		return nil, err
	}
	return s, nil
}

// Run serves MCP requests from stdin, writing responses to stdout, until
// stdin closes or ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.Serve(ctx, os.Stdin, os.Stdout)
}

// Serve reads one JSON-RPC request per line from r and writes responses to
// w.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	// Chart configurations with inline images get large
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 16*1024*1024)

	encoder := json.NewEncoder(w)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.logger.Warn("failed to parse request", "error", err)
			continue
		}

		resp := s.handleRequest(ctx, &req)
		if resp != nil {
			if err := encoder.Encode(resp); err != nil {
				s.logger.Error("failed to encode response", "method", req.Method, "error", err)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}

	return nil
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(ctx context.Context, req *MCPRequest) *MCPResponse {
	s.logger.Debug("request", "method", req.Method, "id", req.ID)
	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		// Client acknowledgment, no response needed
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(ctx, req)
	case "ping":
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  map[string]interface{}{},
		}
	default:
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error: &MCPError{
				Code:    -32601,
				Message: fmt.Sprintf("Method not found: %s", req.Method),
			},
		}
	}
}

// handleInitialize responds to the initialize request
func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": "2024-11-05",
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    ServerName,
				"version": s.version,
			},
		},
	}
}

// current returns the renderer and the settings it was built from.
func (s *Server) current() (*render.AnimatedService, session) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.renderer, s.session
}

// configure builds a renderer for next and swaps it in. Fonts registered so
// far are registered again on the new renderer. On error the current
// renderer stays in place.
func (s *Server) configure(next session) error {
	opts := next.renderOptions(s.logger)
	renderer, err := render.NewAnimated(opts)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.fonts {
		if err := renderer.RegisterFont(f.Path, f.Options()); err != nil {
			return fmt.Errorf("font %s: %w", f.Path, err)
		}
	}
	s.renderer, s.session = renderer, next
	s.logger.Info("renderer configured", "width", next.Width, "height", next.Height, "type", next.Type, "plugins", next.Plugins.Len())
	return nil
}
