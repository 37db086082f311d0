package server

import "github.com/ironsheep/signboard-mcp/internal/translate"

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the sign photograph (JPEG or PNG)",
	}
}

func languageCodes() []string {
	codes := make([]string, len(translate.SupportedLanguages))
	for i, l := range translate.SupportedLanguages {
		codes[i] = l.Code
	}
	return codes
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Full pipeline
		{
			Name: "signboard_translate",
			Description: "Translate a photographed sign. Locates the text region, reads it with OCR, " +
				"detects the source language, translates it, draws the translation onto the photo " +
				"and synthesizes MP3 speech. Returns the overlay as base64 PNG and the audio as base64 MP3.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"target_language": map[string]interface{}{
						"type":        "string",
						"enum":        languageCodes(),
						"description": "Target language code. Default en",
						"default":     "en",
					},
				},
				"required": []string{"path"},
			},
		},

		// Individual stages
		{
			Name:        "signboard_detect_region",
			Description: "Find the text-bearing region of a sign photo. Returns its bounding box, the overlay anchor and the cropped region as base64 PNG. Falls back to the whole image when nothing is found.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "signboard_prepare_ocr",
			Description: "Return the grayscale, median-filtered crop that is handed to OCR, as base64 PNG. Useful for diagnosing poor recognition.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "signboard_extract_text",
			Description: "Run region detection, preprocessing and OCR only. Returns the recognized text without translating it.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "signboard_overlay",
			Description: "Draw a line of text onto a copy of the image with its baseline just above (x, y). Returns base64 PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"x": map[string]interface{}{
						"type":        "integer",
						"description": "Anchor X coordinate (0-based, from left)",
					},
					"y": map[string]interface{}{
						"type":        "integer",
						"description": "Anchor Y coordinate (0-based, from top)",
					},
					"text": map[string]interface{}{
						"type":        "string",
						"description": "Text to draw",
					},
				},
				"required": []string{"path", "x", "y", "text"},
			},
		},

		{
			Name:        "signboard_release_image",
			Description: "Drop a photo from the server's image cache so the next call re-reads it from disk.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},

		// Information
		{
			Name:        "signboard_languages",
			Description: "List the supported target languages.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "signboard_ocr_info",
			Description: "Report whether the OCR engine is available, its version and configured languages.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
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
