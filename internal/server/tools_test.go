package server

import (
	"testing"
)

func TestGetToolDefinitions(t *testing.T) {
	tools := GetToolDefinitions()

	expectedTools := []string{
		"signboard_translate",
		"signboard_detect_region",
		"signboard_prepare_ocr",
		"signboard_extract_text",
		"signboard_overlay",
		"signboard_release_image",
		"signboard_languages",
		"signboard_ocr_info",
	}

	if len(tools) != len(expectedTools) {
		t.Errorf("got %d tools, want %d", len(tools), len(expectedTools))
	}

	toolMap := make(map[string]Tool)
	for _, tool := range tools {
		toolMap[tool.Name] = tool
	}

	for _, name := range expectedTools {
		if _, ok := toolMap[name]; !ok {
			t.Errorf("Expected tool %s not found", name)
		}
	}
}

func TestToolDefinitions_Structure(t *testing.T) {
	for _, tool := range GetToolDefinitions() {
		t.Run(tool.Name, func(t *testing.T) {
			if tool.Description == "" {
				t.Error("Tool description is empty")
			}
			if tool.InputSchema == nil {
				t.Fatal("Tool InputSchema is nil")
			}
			if tool.InputSchema["type"] != "object" {
				t.Errorf("InputSchema type: got %v, want 'object'", tool.InputSchema["type"])
			}
			if _, ok := tool.InputSchema["properties"]; !ok {
				t.Error("InputSchema missing 'properties' field")
			}
		})
	}
}

func TestToolDefinitions_RequiredPath(t *testing.T) {
	toolsRequiringPath := map[string]bool{
		"signboard_translate":     true,
		"signboard_detect_region": true,
		"signboard_prepare_ocr":   true,
		"signboard_extract_text":  true,
		"signboard_overlay":       true,
		"signboard_release_image": true,
	}

	for _, tool := range GetToolDefinitions() {
		if !toolsRequiringPath[tool.Name] {
			continue
		}
		t.Run(tool.Name, func(t *testing.T) {
			required, ok := tool.InputSchema["required"].([]string)
			if !ok {
				t.Fatal("'required' should be a string slice")
			}
			hasPath := false
			for _, r := range required {
				if r == "path" {
					hasPath = true
				}
			}
			if !hasPath {
				t.Error("'path' should be required")
			}
		})
	}
}

func TestToolDefinitions_TargetLanguageEnum(t *testing.T) {
	for _, tool := range GetToolDefinitions() {
		if tool.Name != "signboard_translate" {
			continue
		}
		props := tool.InputSchema["properties"].(map[string]interface{})
		target := props["target_language"].(map[string]interface{})

		enum, ok := target["enum"].([]string)
		if !ok {
			t.Fatal("target_language should have a string enum")
		}
		want := []string{"en", "hi", "fr", "es", "de", "zh-cn"}
		if len(enum) != len(want) {
			t.Fatalf("enum: got %v, want %v", enum, want)
		}
		for i := range want {
			if enum[i] != want[i] {
				t.Errorf("enum[%d]: got %s, want %s", i, enum[i], want[i])
			}
		}
		if target["default"] != "en" {
			t.Errorf("default: got %v, want en", target["default"])
		}
		return
	}
	t.Fatal("signboard_translate not defined")
}

func TestHandleToolsList(t *testing.T) {
	s := newTestServer(t)
	resp := s.handleToolsList(&MCPRequest{JSONRPC: "2.0", ID: 7})

	if resp.ID != 7 {
		t.Errorf("ID: got %v, want 7", resp.ID)
	}
	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}
	tools, ok := result["tools"].([]Tool)
	if !ok {
		t.Fatal("tools should be a slice of Tool")
	}
	if len(tools) != len(GetToolDefinitions()) {
		t.Errorf("got %d tools", len(tools))
	}
}
