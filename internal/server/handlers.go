package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"log"
	"time"

	"github.com/ironsheep/omr-tools-mcp/internal/detection"
	"github.com/ironsheep/omr-tools-mcp/internal/imaging"
	"github.com/ironsheep/omr-tools-mcp/internal/ocr"
	"github.com/ironsheep/omr-tools-mcp/internal/omr"
)

// errHeaderRegionRequired is returned when header OCR is requested for a
// layout without a header region.
var errHeaderRegionRequired = errors.New("header_ocr requires layout.header_region")

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "omr_load", "omr_mark_sheet").
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
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	start := time.Now()
	result, err := s.executeTool(params.Name, params.Arguments)
	if s.debug {
		log.Printf("tool %s finished in %s (err=%v)", params.Name, time.Since(start), err)
	}
	if err != nil {
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
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Merges the optional layout onto the default sheet layout
//  3. Loads images from cache as needed
//  4. Calls the appropriate omr/detection/imaging/ocr function
//  5. Returns the result or error
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Image information
	case "omr_load":
		return s.handleLoad(args)

	// Pipeline stages
	case "omr_detect_markers":
		return s.handleDetectMarkers(args)
	case "omr_align":
		return s.handleAlign(args)
	case "omr_extract_answers":
		return s.handleExtractAnswers(args)
	case "omr_score":
		return s.handleScore(args)

	// Full pipeline
	case "omr_mark_sheet":
		return s.handleMarkSheet(args)
	case "omr_overlay":
		return s.handleOverlay(args)

	// Diagnostic views
	case "omr_edge_detect":
		return s.handleEdgeDetect(args)
	case "omr_binarize":
		return s.handleBinarize(args)

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

// decodeLayout merges a JSON layout object onto DefaultLayout. Fields absent
// from raw keep their default values; fields given as zero are defaulted by
// WithDefaults, except origins, where zero is meaningful.
func decodeLayout(raw json.RawMessage) (omr.Layout, error) {
	l := omr.DefaultLayout()
	if len(raw) == 0 || string(raw) == "null" {
		return l, nil
	}
	if err := json.Unmarshal(raw, &l); err != nil {
		return omr.Layout{}, fmt.Errorf("invalid layout: %w", err)
	}
	l = l.WithDefaults()
	if err := l.Validate(); err != nil {
		return omr.Layout{}, err
	}
	return l, nil
}

// sheetArgs are the arguments shared by every tool that reads a scan.
type sheetArgs struct {
	Path   string          `json:"path"`
	Layout json.RawMessage `json:"layout,omitempty"`
}

// loadSheet returns the cached image at a.Path and the merged layout.
func (s *Server) loadSheet(a sheetArgs) (image.Image, omr.Layout, error) {
	layout, err := decodeLayout(a.Layout)
	if err != nil {
		return nil, omr.Layout{}, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, omr.Layout{}, err
	}
	return img, layout, nil
}

// === Image Information ===

type loadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleLoad(args json.RawMessage) (interface{}, error) {
	var a loadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

// === Pipeline Stages ===

type detectMarkersResult struct {
	Corners detection.Quad     `json:"corners"`
	Markers []detection.Marker `json:"markers"`
}

func (s *Server) handleDetectMarkers(args json.RawMessage) (interface{}, error) {
	var a sheetArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, layout, err := s.loadSheet(a)
	if err != nil {
		return nil, err
	}

	opts := layout.MarkerOptions()
	corners, markers, err := detection.DetectCorners(img, opts)
	if err != nil {
		if errors.Is(err, detection.ErrMarkersNotFound) {
			candidates := detection.FindCandidates(img, opts)
			quads := 0
			for _, c := range candidates {
				if len(c.Vertices) == 4 {
					quads++
				}
			}
			return nil, fmt.Errorf("%w (%d of %d candidates are quadrilaterals)", err, quads, len(candidates))
		}
		return nil, err
	}

	return &detectMarkersResult{Corners: corners, Markers: markers}, nil
}

type alignResult struct {
	Corners detection.Quad `json:"corners"`
	*imaging.ImageResult
}

func (s *Server) handleAlign(args json.RawMessage) (interface{}, error) {
	var a sheetArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, layout, err := s.loadSheet(a)
	if err != nil {
		return nil, err
	}

	alignment, err := omr.Align(img, layout)
	if err != nil {
		return nil, err
	}
	encoded, err := imaging.EncodePNG(alignment.Image)
	if err != nil {
		return nil, err
	}
	return &alignResult{Corners: alignment.Corners, ImageResult: encoded}, nil
}

type extractAnswersArgs struct {
	sheetArgs
	IncludeFractions bool `json:"include_fractions"`
}

type extractAnswersResult struct {
	Answers   []int       `json:"answers"`
	Letters   []string    `json:"letters"`
	Fractions [][]float64 `json:"fractions,omitempty"`
}

func (s *Server) handleExtractAnswers(args json.RawMessage) (interface{}, error) {
	var a extractAnswersArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, layout, err := s.loadSheet(a.sheetArgs)
	if err != nil {
		return nil, err
	}

	alignment, err := omr.Align(img, layout)
	if err != nil {
		return nil, err
	}
	answers, err := omr.ExtractAnswers(alignment.Image, layout)
	if err != nil {
		return nil, err
	}

	result := &extractAnswersResult{Answers: answers, Letters: omr.Letters(answers)}
	if a.IncludeFractions {
		result.Fractions, err = omr.MeasureCells(alignment.Image, layout)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

type scoreArgs struct {
	Answers []int    `json:"answers"`
	Key     []string `json:"key"`
	Options int      `json:"options"`
}

type scoreResult struct {
	Score   int      `json:"score"`
	Total   int      `json:"total"`
	Letters []string `json:"letters"`
}

func (s *Server) handleScore(args json.RawMessage) (interface{}, error) {
	var a scoreArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Options == 0 {
		a.Options = omr.DefaultOptions
	}

	key, err := omr.DecodeKey(a.Key, a.Options)
	if err != nil {
		return nil, err
	}
	return &scoreResult{
		Score:   omr.CountMatches(a.Answers, key),
		Total:   len(a.Key),
		Letters: omr.Letters(a.Answers),
	}, nil
}

// === Full Pipeline ===

type markSheetArgs struct {
	sheetArgs
	Key       []string `json:"key"`
	HeaderOCR bool     `json:"header_ocr"`
	Language  string   `json:"language"`
}

func (s *Server) handleMarkSheet(args json.RawMessage) (interface{}, error) {
	var a markSheetArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, layout, err := s.loadSheet(a.sheetArgs)
	if err != nil {
		return nil, err
	}

	opts := []omr.Option{omr.WithLayout(layout)}
	if a.HeaderOCR {
		if layout.HeaderRegion == nil {
			return nil, errHeaderRegionRequired
		}
		opts = append(opts, omr.WithHeaderReader(ocr.Reader{Language: a.Language}))
	}
	return omr.MarkImage(img, a.Key, opts...)
}

type overlayArgs struct {
	sheetArgs
	Key []string `json:"key"`
}

func (s *Server) handleOverlay(args json.RawMessage) (interface{}, error) {
	var a overlayArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, layout, err := s.loadSheet(a.sheetArgs)
	if err != nil {
		return nil, err
	}

	// Validate the key before doing any image work
	key, err := omr.DecodeKey(a.Key, layout.Options)
	if err != nil {
		return nil, err
	}

	alignment, err := omr.Align(img, layout)
	if err != nil {
		return nil, err
	}
	answers, err := omr.ExtractAnswers(alignment.Image, layout)
	if err != nil {
		return nil, err
	}
	return omr.Annotate(alignment.Image, layout, answers, key)
}

// === Diagnostic Views ===

type edgeDetectArgs struct {
	Path          string `json:"path"`
	ThresholdLow  int    `json:"threshold_low"`
	ThresholdHigh int    `json:"threshold_high"`
}

func (s *Server) handleEdgeDetect(args json.RawMessage) (interface{}, error) {
	var a edgeDetectArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	defaults := detection.DefaultMarkerOptions()
	if a.ThresholdLow == 0 {
		a.ThresholdLow = defaults.CannyLow
	}
	if a.ThresholdHigh == 0 {
		a.ThresholdHigh = defaults.CannyHigh
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.EdgeDetect(img, a.ThresholdLow, a.ThresholdHigh)
}

func (s *Server) handleBinarize(args json.RawMessage) (interface{}, error) {
	var a loadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.EncodePNG(imaging.Binarize(img))
}
