// Package server implements the MCP (Model Context Protocol) server for
// marking scanned multiple-choice answer sheets.
//
// This package provides a JSON-RPC 2.0 server that exposes the OMR pipeline
// through the MCP protocol, so an MCP client can mark a sheet in one call or
// walk through detection, alignment, and extraction step by step when a scan
// misbehaves.
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
// Image Information:
//   - omr_load: Load a scan and get metadata
//
// Pipeline Stages:
//   - omr_detect_markers: Find and order the four corner markers
//   - omr_align: Warp the sheet onto the layout canvas
//   - omr_extract_answers: Read shaded options, optionally with cell fractions
//   - omr_score: Score answers against a letter key
//
// Full Pipeline:
//   - omr_mark_sheet: Align, extract, score, and optionally OCR the header
//   - omr_overlay: Aligned sheet with color-coded answer cells
//
// Diagnostic Views:
//   - omr_edge_detect: Canny edge map used for marker detection
//   - omr_binarize: Global Otsu black-and-white view
//
// # Layouts
//
// Every tool that reads a scan accepts an optional "layout" object. Fields
// it names replace those of the standard 50-question A-D layout; a field
// given as zero falls back to its default, except the origins.
//
// # Image Caching
//
// The server maintains an in-memory cache of loaded images. Images are cached
// by path and reused across multiple tool calls, avoiding redundant disk I/O.
// The cache persists for the lifetime of the server process.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// # Usage
//
// The server is typically started by an MCP client:
//
//	srv := server.New()
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
