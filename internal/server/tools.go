package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// pathProperty is the schema of the image path argument.
func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the scanned answer sheet",
	}
}

// keyProperty is the schema of an answer key argument.
func keyProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "array",
		"items":       map[string]interface{}{"type": "string"},
		"description": "Correct answer letters in question order, e.g. [\"A\", \"C\", \"B\", \"D\"]. Upper case only.",
	}
}

// layoutProperty is the schema of the optional sheet layout. Omitted fields
// keep their default values.
func layoutProperty() map[string]interface{} {
	integer := func(desc string) map[string]interface{} {
		return map[string]interface{}{"type": "integer", "description": desc}
	}
	number := func(desc string) map[string]interface{} {
		return map[string]interface{}{"type": "number", "description": desc}
	}

	return map[string]interface{}{
		"type":        "object",
		"description": "Optional sheet layout. Omitted fields use the standard 50-question A-D sheet on a 1000x1400 canvas.",
		"properties": map[string]interface{}{
			"canvas_width":   integer("Aligned canvas width in pixels. Default 1000"),
			"canvas_height":  integer("Aligned canvas height in pixels. Default 1400"),
			"questions":      integer("Number of questions. Default 50"),
			"options":        integer("Options per question, 1-26. Default 4"),
			"cell_size":      integer("Side of each square answer cell in pixels. Default 20"),
			"origin_x":       integer("Left edge of option A cells. Default 50"),
			"origin_y":       integer("Top edge of question 1 cells. Default 50"),
			"spacing_x":      integer("Horizontal pitch between options. Default 30"),
			"spacing_y":      integer("Vertical pitch between questions. Default 30"),
			"fill_threshold": number("Dark fraction above which a cell counts as shaded. Default 0.7"),
			"canny_low":      integer("Lower Canny threshold for marker detection. Default 75"),
			"canny_high":     integer("Upper Canny threshold for marker detection. Default 200"),
			"approx_epsilon": number("Polygon approximation tolerance as a fraction of perimeter. Default 0.02"),
			"header_region": map[string]interface{}{
				"type":        "object",
				"description": "Canvas region holding the student name or ID, read by header OCR",
				"properties": map[string]interface{}{
					"x":      integer("Left edge"),
					"y":      integer("Top edge"),
					"width":  integer("Width in pixels"),
					"height": integer("Height in pixels"),
				},
				"required": []string{"x", "y", "width", "height"},
			},
		},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Image information
		{
			Name:        "omr_load",
			Description: "Load a scanned answer sheet and return its dimensions, format, and file size. The decoded image is cached for subsequent calls.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},

		// Pipeline stages
		{
			Name:        "omr_detect_markers",
			Description: "Find the four square corner markers of an answer sheet. Returns the markers (largest first) and the corners ordered top-left, top-right, bottom-right, bottom-left.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":   pathProperty(),
					"layout": layoutProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "omr_align",
			Description: "Warp the sheet so its corner markers land on the corners of the layout canvas. Returns the aligned sheet as base64-encoded PNG plus the detected corners.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":   pathProperty(),
					"layout": layoutProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "omr_extract_answers",
			Description: "Align the sheet and read the shaded option of every question. Returns option indices (0 = A, -1 = blank or multiple marks) and letters. Set include_fractions to see the dark fraction of every cell.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":   pathProperty(),
					"layout": layoutProperty(),
					"include_fractions": map[string]interface{}{
						"type":        "boolean",
						"description": "Include per-cell dark fractions indexed [question][option]. Default false",
						"default":     false,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "omr_score",
			Description: "Score extracted answers against a letter key without touching an image. Only the overlapping prefix of answers and key is compared; -1 never scores.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"answers": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "integer"},
						"description": "Option indices per question, -1 for no mark",
					},
					"key": keyProperty(),
					"options": map[string]interface{}{
						"type":        "integer",
						"description": "Options per question, which bounds the key alphabet. Default 4 (A-D)",
						"default":     4,
					},
				},
				"required": []string{"answers", "key"},
			},
		},

		// Full pipeline
		{
			Name:        "omr_mark_sheet",
			Description: "Load, align, extract, and score an answer sheet in one call. Optionally reads the header region (student name or ID) with OCR.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":   pathProperty(),
					"key":    keyProperty(),
					"layout": layoutProperty(),
					"header_ocr": map[string]interface{}{
						"type":        "boolean",
						"description": "Read layout.header_region with Tesseract. Requires header_region. Default false",
						"default":     false,
					},
					"language": map[string]interface{}{
						"type":        "string",
						"description": "Tesseract language code for header OCR. Default 'eng'",
						"default":     "eng",
					},
				},
				"required": []string{"path", "key"},
			},
		},
		{
			Name:        "omr_overlay",
			Description: "Return the aligned sheet with every answer cell outlined: green for correct, red for wrong (plus the expected cell), blue for marked with no key entry, gray for blank. Returns base64-encoded PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":   pathProperty(),
					"key":    keyProperty(),
					"layout": layoutProperty(),
				},
				"required": []string{"path"},
			},
		},

		// Diagnostic views
		{
			Name:        "omr_edge_detect",
			Description: "Return the Canny edge map used for corner-marker detection as base64-encoded PNG. Useful when markers are not found.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"threshold_low": map[string]interface{}{
						"type":        "integer",
						"description": "Lower threshold for edge detection (0-255). Default 75",
						"default":     75,
					},
					"threshold_high": map[string]interface{}{
						"type":        "integer",
						"description": "Upper threshold for edge detection (0-255). Default 200",
						"default":     200,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "omr_binarize",
			Description: "Return the sheet binarized with a global Otsu threshold as base64-encoded PNG, showing what counts as ink.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
	}
}
