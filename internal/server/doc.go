// Package server implements the MCP (Model Context Protocol) server for
// license plate extraction.
//
// This package provides a JSON-RPC 2.0 server that exposes the detection
// pipeline through the MCP protocol, so an MCP client can hand it a vehicle
// photograph and get the plate back as an image.
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
// Basic Image Information:
//   - image_load: Load image and get metadata
//   - image_dimensions: Get width and height
//
// Plate Detection:
//   - plate_detect: Crop the plate, report its box, outline and colors, optionally save it
//   - plate_overlay: Draw the detected outline on the photograph
//   - plate_stages: Return the smoothed and edge images of the pipeline
//
// Plate tools accept the photograph either as a path or inline as
// image_base64. A photograph without a plate is a normal result with
// found=false and a message asking for a clearer image.
//
// # Image Caching
//
// Images loaded by path are cached and reused across tool calls. Inline
// images are decoded per call and never cached.
//
// # Tracing and Logging
//
// Every tool call runs inside an OpenTelemetry span named "tool.<name>",
// recorded with the provider passed to WithTracerProvider or, without one,
// the global provider. The plate tools add plate.backend, plate.found and the
// plate.x/y/width/height box to the span. With log_level
// set to debug, each call's duration is logged to stderr.
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
//	cfg, err := config.Load("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	srv := server.New(server.WithConfig(*cfg))
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
