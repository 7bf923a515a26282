package server

import (
	"testing"
)

func TestGetToolDefinitions(t *testing.T) {
	tools := GetToolDefinitions()

	if len(tools) == 0 {
		t.Fatal("GetToolDefinitions returned empty slice")
	}

	expectedTools := []string{
		"image_load",
		"image_dimensions",
		"plate_detect",
		"plate_overlay",
		"plate_stages",
	}

	toolMap := make(map[string]Tool)
	for _, tool := range tools {
		if _, dup := toolMap[tool.Name]; dup {
			t.Errorf("Duplicate tool %s", tool.Name)
		}
		toolMap[tool.Name] = tool
	}

	for _, name := range expectedTools {
		if _, ok := toolMap[name]; !ok {
			t.Errorf("Expected tool %s not found", name)
		}
	}
	if len(tools) != len(expectedTools) {
		t.Errorf("Tool count: got %d, want %d", len(tools), len(expectedTools))
	}
}

func TestToolDefinitions_Structure(t *testing.T) {
	tools := GetToolDefinitions()

	for _, tool := range tools {
		t.Run(tool.Name, func(t *testing.T) {
			if tool.Name == "" {
				t.Error("Tool name is empty")
			}
			if tool.Description == "" {
				t.Error("Tool description is empty")
			}
			if tool.InputSchema == nil {
				t.Fatal("Tool InputSchema is nil")
			}

			if schemaType := tool.InputSchema["type"]; schemaType != "object" {
				t.Errorf("InputSchema type: got %v, want 'object'", schemaType)
			}

			props, ok := tool.InputSchema["properties"].(map[string]interface{})
			if !ok || props == nil {
				t.Error("InputSchema properties should be a non-nil map")
			}
		})
	}
}

func TestToolDefinitions_RequiredPath(t *testing.T) {
	toolsRequiringPath := []string{"image_load", "image_dimensions"}

	toolMap := make(map[string]Tool)
	for _, tool := range GetToolDefinitions() {
		toolMap[tool.Name] = tool
	}

	for _, name := range toolsRequiringPath {
		tool := toolMap[name]
		t.Run(name, func(t *testing.T) {
			required, ok := tool.InputSchema["required"].([]string)
			if !ok {
				t.Fatal("'required' should be a string slice")
			}
			if len(required) != 1 || required[0] != "path" {
				t.Errorf("required: got %v, want [path]", required)
			}
		})
	}
}

func TestToolDefinitions_PlateSources(t *testing.T) {
	// Plate tools take either a path or inline base64, so neither is required
	for _, tool := range GetToolDefinitions() {
		if tool.Name != "plate_detect" && tool.Name != "plate_overlay" && tool.Name != "plate_stages" {
			continue
		}
		t.Run(tool.Name, func(t *testing.T) {
			if _, ok := tool.InputSchema["required"]; ok {
				t.Error("plate tools should not declare required parameters")
			}
			props := tool.InputSchema["properties"].(map[string]interface{})
			for _, name := range []string{"path", "image_base64"} {
				if _, ok := props[name]; !ok {
					t.Errorf("missing %s property", name)
				}
			}
		})
	}
}

func TestToolDefinitions_OptionalDefaults(t *testing.T) {
	toolDefaults := map[string]map[string]interface{}{
		"plate_detect":  {"save": false, "scale": 1.0, "colors": 3, "backend": BackendNative},
		"plate_overlay": {"backend": BackendNative},
	}

	toolMap := make(map[string]Tool)
	for _, tool := range GetToolDefinitions() {
		toolMap[tool.Name] = tool
	}

	for toolName, expectedDefaults := range toolDefaults {
		tool, ok := toolMap[toolName]
		if !ok {
			t.Errorf("Tool %s not found", toolName)
			continue
		}

		props, ok := tool.InputSchema["properties"].(map[string]interface{})
		if !ok {
			t.Errorf("%s: properties should be a map", toolName)
			continue
		}

		for paramName, expectedDefault := range expectedDefaults {
			param, ok := props[paramName].(map[string]interface{})
			if !ok {
				t.Errorf("%s.%s: parameter not found or not a map", toolName, paramName)
				continue
			}

			actualDefault, ok := param["default"]
			if !ok {
				t.Errorf("%s.%s: missing default value", toolName, paramName)
				continue
			}
			if actualDefault != expectedDefault {
				t.Errorf("%s.%s: default got %v (%T), want %v (%T)",
					toolName, paramName, actualDefault, actualDefault, expectedDefault, expectedDefault)
			}
		}
	}
}

func TestToolDefinitions_BackendEnum(t *testing.T) {
	for _, tool := range GetToolDefinitions() {
		props := tool.InputSchema["properties"].(map[string]interface{})
		backend, ok := props["backend"].(map[string]interface{})
		if !ok {
			continue
		}
		enum, ok := backend["enum"].([]string)
		if !ok || len(enum) != 2 || enum[0] != BackendNative || enum[1] != BackendOpenCV {
			t.Errorf("%s: backend enum got %v", tool.Name, backend["enum"])
		}
	}
}

func TestHandleToolsList(t *testing.T) {
	s := New()
	req := &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
	}

	resp := s.handleToolsList(req)

	if resp == nil {
		t.Fatal("handleToolsList returned nil")
	}
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}

	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}

	toolsList, ok := result["tools"].([]Tool)
	if !ok {
		t.Fatal("tools should be a slice of Tool")
	}

	expected := GetToolDefinitions()
	if len(toolsList) != len(expected) {
		t.Errorf("Tool count: got %d, want %d", len(toolsList), len(expected))
	}
}
