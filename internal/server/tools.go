package server

import "github.com/ironsheep/watermark-cleaner/internal/config"

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func strategyProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"enum":        config.Strategies,
		"description": "Detection strategy. Defaults to the server configuration.",
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Watermark Operations
		{
			Name:        "watermark_detect",
			Description: "Locate overlay text near the bottom edge of an image without modifying it. Returns the regions that would be removed and, optionally, an annotated preview.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"strategy": strategyProperty(),
					"preview": map[string]interface{}{
						"type":        "boolean",
						"description": "Return a base64 PNG with removed regions outlined in green and rejected ones in red. Default false",
						"default":     false,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "watermark_remove",
			Description: "Remove overlay text from an image and write the cleaned copy to output_path. Pixels outside the removed regions are left untouched.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"output_path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path of the cleaned image. Must differ from path. JPEG, GIF and WebP names are written as PNG",
					},
					"strategy": strategyProperty(),
				},
				"required": []string{"path", "output_path"},
			},
		},
		{
			Name:        "watermark_batch",
			Description: "Clean every supported image in a directory and return the manifest.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"input_dir": map[string]interface{}{
						"type":        "string",
						"description": "Directory containing the source images",
					},
					"output_dir": map[string]interface{}{
						"type":        "string",
						"description": "Directory receiving the cleaned images",
					},
					"strategy": strategyProperty(),
					"workers": map[string]interface{}{
						"type":        "integer",
						"description": "Number of images processed concurrently. Defaults to the number of CPUs",
					},
					"prefix": map[string]interface{}{
						"type":        "string",
						"description": "Prefix of output file names. Default \"" + config.DefaultPrefix + "\"",
						"default":     config.DefaultPrefix,
					},
					"dry_run": map[string]interface{}{
						"type":        "boolean",
						"description": "Detect only; write no images. Default false",
						"default":     false,
					},
				},
				"required": []string{"input_dir", "output_dir"},
			},
		},

		// Color Operations
		{
			Name:        "image_dominant_colors",
			Description: "Find the most common colors in an image or region. Useful for choosing an overlay HSV range or a fill color.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"count": map[string]interface{}{
						"type":        "integer",
						"description": "Number of colors to return. Default 5",
						"default":     5,
					},
					"region": map[string]interface{}{
						"type":        "object",
						"description": "Optional region to analyze",
						"properties": map[string]interface{}{
							"x1": map[string]interface{}{"type": "integer"},
							"y1": map[string]interface{}{"type": "integer"},
							"x2": map[string]interface{}{"type": "integer"},
							"y2": map[string]interface{}{"type": "integer"},
						},
					},
				},
				"required": []string{"path"},
			},
		},

		// Cache
		{
			Name:        "image_cache_clear",
			Description: "Drop every decoded image the server holds in memory. Use it after source files change on disk.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},

		// OCR
		{
			Name:        "ocr_info",
			Description: "Report whether Tesseract OCR is compiled in and usable. The color-flood-fill-ocr strategy removes nothing without it.",
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
