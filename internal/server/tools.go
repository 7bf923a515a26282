package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// imageSourceProperties describes the two ways a photograph can be supplied.
func imageSourceProperties() map[string]interface{} {
	return map[string]interface{}{
		"path": map[string]interface{}{
			"type":        "string",
			"description": "Absolute path to the vehicle photograph. Provide either path or image_base64.",
		},
		"image_base64": map[string]interface{}{
			"type":        "string",
			"description": "The photograph as base64 (bare or as a data: URL). Provide either path or image_base64.",
		},
	}
}

// withProperties merges extra properties into the image source properties.
func withProperties(extra map[string]interface{}) map[string]interface{} {
	props := imageSourceProperties()
	for k, v := range extra {
		props[k] = v
	}
	return props
}

var backendProperty = map[string]interface{}{
	"type":        "string",
	"enum":        []string{BackendNative, BackendOpenCV},
	"description": "Detection backend. 'opencv' is only available in builds with the gocv tag. Default 'native'",
	"default":     BackendNative,
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Basic Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions and format. The decoded image is cached for subsequent plate tools.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
				},
				"required": []string{"path"},
			},
		},

		// Plate Detection
		{
			Name: "plate_detect",
			Description: "Locate the license plate in a vehicle photograph and return it as a base64-encoded PNG crop, " +
				"together with its bounding box (relative to the image's top-left pixel) and four-corner outline. " +
				"When no plate-like quadrilateral is found, found is false and message suggests trying a clearer image.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withProperties(map[string]interface{}{
					"save": map[string]interface{}{
						"type":        "boolean",
						"description": "Also write the crop as a PNG into the configured output directory. Default false",
						"default":     false,
					},
					"output_name": map[string]interface{}{
						"type":        "string",
						"description": "Bare file name for the saved crop, no directories (implies save). Default: a generated plate-<uuid>.png",
					},
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Optional scale factor for the returned crop (e.g., 2.0 to double size), at most 8. Default 1.0",
						"default":     1.0,
						"maximum":     maxScale,
					},
					"colors": map[string]interface{}{
						"type":        "integer",
						"description": "Number of dominant plate colors to report. Default 3, 0 to skip",
						"default":     3,
					},
					"backend": backendProperty,
				}),
			},
		},
		{
			Name:        "plate_overlay",
			Description: "Return the photograph with the detected plate outline drawn on it, as a base64-encoded PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withProperties(map[string]interface{}{
					"color": map[string]interface{}{
						"type":        "string",
						"description": "Outline color as hex (e.g., '#00FF00'). Default from configuration",
					},
					"thickness": map[string]interface{}{
						"type":        "integer",
						"description": "Outline width in pixels, at most the image's shorter side. Default from configuration",
						"minimum":     1,
					},
					"backend": backendProperty,
				}),
			},
		},
		{
			Name: "plate_stages",
			Description: "Show the intermediate images of the plate pipeline: the grayscale, noise-reduced photograph and " +
				"its binary edge map, both as base64-encoded PNGs, plus how many outline candidates were examined.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": imageSourceProperties(),
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
