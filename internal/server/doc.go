// Package server implements the MCP (Model Context Protocol) server that
// exposes the watermark pipeline to MCP clients.
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
// Watermark Operations:
//   - watermark_detect: Report the regions a strategy would remove
//   - watermark_remove: Clean one image and write it to disk
//   - watermark_batch: Clean a directory and return the manifest
//
// Color Operations:
//   - image_dominant_colors: Extract color palette
//
// OCR:
//   - ocr_info: Report Tesseract availability
//
// # Image Caching
//
// Decoded source images are cached by path and reused across tool calls.
// Paths written by watermark_remove are evicted so a later call never sees a
// stale decode.
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
//	srv := server.New(server.WithConfig(cfg), server.WithLogger(logger))
//	if err := srv.Run(ctx); err != nil {
//	    logger.Fatal().Err(err).Msg("server failed")
//	}
package server
