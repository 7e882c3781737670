package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the image file",
	}
}

func roiProperty() map[string]interface{} {
	coord := func(desc string) map[string]interface{} {
		return map[string]interface{}{"type": "integer", "description": desc}
	}
	return map[string]interface{}{
		"type":        "object",
		"description": "Optional region of interest. The frame is cropped to it before processing.",
		"properties": map[string]interface{}{
			"x1": coord("Left edge X coordinate (0-based)"),
			"y1": coord("Top edge Y coordinate (0-based)"),
			"x2": coord("Right edge X coordinate (exclusive)"),
			"y2": coord("Bottom edge Y coordinate (exclusive)"),
		},
		"required": []string{"x1", "y1", "x2", "y2"},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "lane_load",
			Description: "Load a camera frame and return its dimensions and format. The frame is cached for subsequent calls.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "lane_detect",
			Description: "Detect straight lane lines: grayscale, Gaussian blur, Sobel, threshold, Hough voting and k-means clustering. Returns each line in normal form (rho, theta) with its end points clipped to the frame.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"roi":  roiProperty(),
					"clusters": map[string]interface{}{
						"type":        "integer",
						"description": "Number of lines to merge the Hough peaks into. 0 returns every peak. Default from LANE_CLUSTERS (2)",
						"minimum":     0,
					},
					"threshold": map[string]interface{}{
						"type":        "integer",
						"description": "Votes a Hough cell must exceed to count as a line. Default from LANE_HOUGH_THRESHOLD (150)",
						"minimum":     0,
					},
					"overlay": map[string]interface{}{
						"type":        "boolean",
						"description": "Also return the frame with the detected lines drawn in red as base64 PNG",
						"default":     false,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "lane_edges",
			Description: "Return the binarized edge map (Sobel magnitude after Gaussian smoothing and thresholding) as base64 PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"roi":  roiProperty(),
					"cutoff": map[string]interface{}{
						"type":        "integer",
						"description": "Edge magnitude at or above which a pixel is on. Default from LANE_THRESHOLD_CUTOFF (210)",
						"minimum":     1,
						"maximum":     255,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "lane_accumulator",
			Description: "Render the Hough accumulator of a frame as base64 PNG. X is the rho bucket, Y the sampled angle.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"roi":  roiProperty(),
					"style": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"grayscale", "heatmap"},
						"description": "Rendering style. Default grayscale",
						"default":     "grayscale",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "lane_stream",
			Description: "Run the streaming datapath (grayscale and 8-angle Hough over a bounded frame) and return its burst of 16.16 fixed-point words: all rho words, then all theta words.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"roi":  roiProperty(),
					"fit": map[string]interface{}{
						"type":        "boolean",
						"description": "Scale frames larger than the stream maximum down to fit instead of rejecting them",
						"default":     false,
					},
				},
				"required": []string{"path"},
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
