package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/ironsheep/signboard-mcp/internal/detection"
	"github.com/ironsheep/signboard-mcp/internal/imaging"
	"github.com/ironsheep/signboard-mcp/internal/logging"
	"github.com/ironsheep/signboard-mcp/internal/pipeline"
	"github.com/ironsheep/signboard-mcp/internal/translate"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "signboard_translate").
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
// Tool execution errors return a JSON-RPC error response with code -32000.
// For pipeline failures the data field is "<Reason>: <detail>".
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		logging.FromContext(ctx).Warn().Str("tool", params.Name).Err(err).Msg("tool execution failed")
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
	case "signboard_translate":
		return s.handleTranslate(ctx, args)
	case "signboard_detect_region":
		return s.handleDetectRegion(args)
	case "signboard_prepare_ocr":
		return s.handlePrepareOCR(args)
	case "signboard_extract_text":
		return s.handleExtractText(ctx, args)
	case "signboard_overlay":
		return s.handleOverlay(args)
	case "signboard_release_image":
		return s.handleReleaseImage(args)
	case "signboard_languages":
		return translate.SupportedLanguages, nil
	case "signboard_ocr_info":
		if s.deps.OCRInfo == nil {
			return nil, errors.New("OCR info is not available")
		}
		return s.deps.OCRInfo(), nil
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
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// point is image.Point with lower-case JSON keys.
type point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func toPoint(p image.Point) point {
	return point{X: p.X, Y: p.Y}
}

type pathArgs struct {
	Path string `json:"path"`
}

func (s *Server) loadImage(args json.RawMessage) (*image.NRGBA, error) {
	var a pathArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errors.New("path is required")
	}
	return s.cache.Load(a.Path)
}

func (s *Server) locate(args json.RawMessage) (*detection.Region, error) {
	img, err := s.loadImage(args)
	if err != nil {
		return nil, err
	}
	return detection.Locate(img, s.deps.Strategy, s.deps.FallbackOrigin)
}

// === Pipeline Handler ===

type translateArgs struct {
	Path           string `json:"path"`
	TargetLanguage string `json:"target_language"`
}

type translateResult struct {
	Bounds           detection.BoundingBox `json:"bounds"`
	Origin           point                 `json:"origin"`
	Fallback         bool                  `json:"fallback"`
	ExtractedText    string                `json:"extracted_text"`
	DetectedLanguage string                `json:"detected_language"`
	TargetLanguage   string                `json:"target_language"`
	TranslatedText   string                `json:"translated_text"`
	Report           string                `json:"report"`
	Overlay          *imaging.EncodedImage `json:"overlay"`
	AudioBase64      string                `json:"audio_base64"`
	AudioFormat      string                `json:"audio_format"`
}

func (s *Server) handleTranslate(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a translateArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.TargetLanguage == "" {
		a.TargetLanguage = "en"
	}
	img, err := s.loadImage(args)
	if err != nil {
		return nil, &pipeline.Failure{Reason: pipeline.DecodeError, State: pipeline.StateIdle, Err: err}
	}

	out, err := s.deps.Pipeline.Run(ctx, img, a.TargetLanguage)
	if err != nil {
		return nil, err
	}

	overlay, err := imaging.Encode(out.Overlay)
	if err != nil {
		return nil, err
	}

	return &translateResult{
		Bounds:           out.Extraction.Bounds,
		Origin:           toPoint(out.Extraction.Origin),
		Fallback:         out.Extraction.Fallback,
		ExtractedText:    out.Extraction.Text,
		DetectedLanguage: out.Translation.DetectedLanguage,
		TargetLanguage:   out.Translation.TargetLanguage,
		TranslatedText:   out.Translation.TranslatedText,
		Report:           out.Report(),
		Overlay:          overlay,
		AudioBase64:      base64.StdEncoding.EncodeToString(out.Audio),
		AudioFormat:      out.AudioFormat,
	}, nil
}

// === Stage Handlers ===

type regionResult struct {
	Bounds   detection.BoundingBox `json:"bounds"`
	Origin   point                 `json:"origin"`
	Fallback bool                  `json:"fallback"`
	Crop     *imaging.EncodedImage `json:"crop"`
}

func (s *Server) handleDetectRegion(args json.RawMessage) (interface{}, error) {
	region, err := s.locate(args)
	if err != nil {
		return nil, err
	}
	crop, err := imaging.Encode(region.Crop)
	if err != nil {
		return nil, err
	}
	return &regionResult{
		Bounds:   region.Bounds,
		Origin:   toPoint(region.Origin),
		Fallback: region.Fallback,
		Crop:     crop,
	}, nil
}

func (s *Server) handlePrepareOCR(args json.RawMessage) (interface{}, error) {
	region, err := s.locate(args)
	if err != nil {
		return nil, err
	}
	gray, err := imaging.PrepareForOCR(region.Crop, s.deps.BlurKernel)
	if err != nil {
		return nil, err
	}
	return imaging.Encode(gray)
}

type extractResult struct {
	Text     string                `json:"text"`
	Bounds   detection.BoundingBox `json:"bounds"`
	Fallback bool                  `json:"fallback"`
}

func (s *Server) handleExtractText(ctx context.Context, args json.RawMessage) (interface{}, error) {
	if s.deps.Extractor == nil {
		return nil, errors.New("text extraction is not configured")
	}
	region, err := s.locate(args)
	if err != nil {
		return nil, err
	}
	gray, err := imaging.PrepareForOCR(region.Crop, s.deps.BlurKernel)
	if err != nil {
		return nil, err
	}
	text, err := s.deps.Extractor.ExtractText(ctx, gray)
	if err != nil {
		return nil, err
	}
	return &extractResult{
		Text:     strings.TrimSpace(text),
		Bounds:   region.Bounds,
		Fallback: region.Fallback,
	}, nil
}

type overlayArgs struct {
	Path string `json:"path"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
	Text string `json:"text"`
}

func (s *Server) handleOverlay(args json.RawMessage) (interface{}, error) {
	var a overlayArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.loadImage(args)
	if err != nil {
		return nil, err
	}
	out, err := s.deps.Compositor.Render(img, image.Pt(a.X, a.Y), a.Text)
	if err != nil {
		return nil, err
	}
	return imaging.Encode(out)
}

func (s *Server) handleReleaseImage(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errors.New("path is required")
	}
	s.cache.Evict(a.Path)
	return map[string]interface{}{"released": a.Path}, nil
}
