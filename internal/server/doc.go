// Package server implements the MCP (Model Context Protocol) server for the
// signboard translator.
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
// Full pipeline:
//   - signboard_translate: region, OCR, language detection, translation,
//     overlay and speech in one call
//
// Individual stages, for inspecting what the pipeline sees:
//   - signboard_detect_region: bounding box, anchor and crop
//   - signboard_prepare_ocr: the filtered grayscale crop handed to OCR
//   - signboard_extract_text: OCR text without translation
//   - signboard_overlay: draw arbitrary text at an anchor
//
// Cache control:
//   - signboard_release_image: forget a cached photo
//
// Information:
//   - signboard_languages: supported target languages
//   - signboard_ocr_info: Tesseract availability and version
//
// # Image Caching
//
// Images are loaded by path through an imaging.ImageCache and reused across
// tool calls until released or until Run returns.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with code
// -32000. When the pipeline fails, data carries "<Reason>: <detail>" where
// Reason is one of the pipeline reason codes (NoTextDetected,
// TranslationError, ...).
//
// # Logging
//
// Each request gets a fresh request id and a zerolog logger carried in its
// context. The logger must not write to stdout.
package server
