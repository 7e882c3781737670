// Package server implements the MCP (Model Context Protocol) server for the
// lane detector.
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
//   - lane_load: Load a frame and report its size and format
//   - lane_detect: Run the full pipeline and return lines, optionally drawn
//     over the frame
//   - lane_edges: Return the binarized Sobel edge map
//   - lane_accumulator: Render the Hough accumulator as grayscale or heatmap
//   - lane_stream: Run the streaming datapath and return its word burst
//
// Every tool accepts an optional region of interest; when present the frame
// is cropped before processing and all coordinates in the result are
// relative to the crop.
//
// # Image Caching
//
// Frames are decoded once and cached by path for the lifetime of the
// process. Cached frames are never written to.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with code
// -32000. Pipeline failures carry their error kind (for example
// "invalid_angle_range") in the data field.
package server
