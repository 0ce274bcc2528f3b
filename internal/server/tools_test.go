package server

import (
	"context"
	"testing"

	"github.com/ironsheep/watermark-cleaner/internal/config"
)

func TestGetToolDefinitions(t *testing.T) {
	tools := GetToolDefinitions()

	expected := []string{
		"watermark_detect",
		"watermark_remove",
		"watermark_batch",
		"image_dominant_colors",
		"image_cache_clear",
		"ocr_info",
	}
	if len(tools) != len(expected) {
		t.Fatalf("expected %d tools, got %d", len(expected), len(tools))
	}

	names := make(map[string]bool)
	for _, tool := range tools {
		names[tool.Name] = true
	}
	for _, name := range expected {
		if !names[name] {
			t.Errorf("missing tool: %s", name)
		}
	}
}

func TestToolDefinitions_Structure(t *testing.T) {
	for _, tool := range GetToolDefinitions() {
		t.Run(tool.Name, func(t *testing.T) {
			if tool.Description == "" {
				t.Error("tool has empty description")
			}
			if tool.InputSchema["type"] != "object" {
				t.Errorf("schema type: got %v, want object", tool.InputSchema["type"])
			}
			props, ok := tool.InputSchema["properties"].(map[string]interface{})
			if !ok {
				t.Fatal("schema has no properties map")
			}
			required, _ := tool.InputSchema["required"].([]string)
			for _, r := range required {
				if _, ok := props[r]; !ok {
					t.Errorf("required field %q has no property", r)
				}
			}
		})
	}
}

func TestToolDefinitions_StrategyEnum(t *testing.T) {
	for _, tool := range GetToolDefinitions() {
		props := tool.InputSchema["properties"].(map[string]interface{})
		prop, ok := props["strategy"].(map[string]interface{})
		if !ok {
			continue
		}
		enum := prop["enum"].([]string)
		if len(enum) != len(config.Strategies) {
			t.Errorf("%s: strategy enum %v", tool.Name, enum)
		}
	}
}

func TestHandleToolsList(t *testing.T) {
	resp := New().handleRequest(context.Background(), &MCPRequest{JSONRPC: "2.0", ID: 1, Method: "tools/list"})
	if resp == nil || resp.Error != nil {
		t.Fatalf("unexpected response: %+v", resp)
	}
	tools, ok := resp.Result.(map[string]interface{})["tools"].([]Tool)
	if !ok {
		t.Fatal("tools is not []Tool")
	}
	if len(tools) != len(GetToolDefinitions()) {
		t.Errorf("expected %d tools, got %d", len(GetToolDefinitions()), len(tools))
	}
}
