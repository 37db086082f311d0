package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"io"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ironsheep/signboard-mcp/internal/detection"
	"github.com/ironsheep/signboard-mcp/internal/imaging"
	"github.com/ironsheep/signboard-mcp/internal/logging"
	"github.com/ironsheep/signboard-mcp/internal/pipeline"
)

// Runner runs the full signboard pipeline. *pipeline.Pipeline satisfies it.
type Runner interface {
	Run(ctx context.Context, img image.Image, target string) (*pipeline.Outcome, error)
}

// Deps are the components the tools call into.
type Deps struct {
	Pipeline       Runner
	Strategy       detection.Strategy
	FallbackOrigin image.Point
	BlurKernel     int
	Extractor      pipeline.TextExtractor
	Compositor     pipeline.Compositor

	// OCRInfo reports the OCR backend status for signboard_ocr_info.
	OCRInfo func() interface{}

	// Version is reported in the initialize handshake.
	Version string
}

// Server handles MCP protocol communication
type Server struct {
	cache  *imaging.ImageCache
	deps   Deps
	logger zerolog.Logger
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

// New creates a new MCP server instance. logger should write to stderr;
// stdout carries the protocol.
func New(deps Deps, logger zerolog.Logger) *Server {
	if deps.Version == "" {
		deps.Version = "dev"
	}
	return &Server{
		cache:  imaging.NewImageCache(),
		deps:   deps,
		logger: logger,
	}
}

// Run reads requests from r, one per line, and writes responses to w until r
// is exhausted or ctx is cancelled.
func (s *Server) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	// Increase buffer size for large requests
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	encoder := json.NewEncoder(w)
	defer s.cache.Clear()

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
			s.logger.Warn().Err(err).Msg("failed to parse request")
			continue
		}

		reqCtx := logging.WithRequestID(s.logger.WithContext(ctx), uuid.NewString())
		resp := s.handleRequest(reqCtx, &req)
		if resp != nil {
			if err := encoder.Encode(resp); err != nil {
				s.logger.Error().Err(err).Msg("failed to encode response")
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
	logging.FromContext(ctx).Debug().Str("method", req.Method).Msg("mcp request")

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
				"name":    "signboard-mcp",
				"version": s.deps.Version,
			},
		},
	}
}
