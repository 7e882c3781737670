package server

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ironsheep/lane-tools-mcp/internal/detection"
	apperrors "github.com/ironsheep/lane-tools-mcp/internal/errors"
	"github.com/ironsheep/lane-tools-mcp/internal/imaging"
	"github.com/ironsheep/lane-tools-mcp/internal/logger"
	"github.com/ironsheep/lane-tools-mcp/internal/pipeline"
	"github.com/ironsheep/lane-tools-mcp/internal/stream"
	"github.com/sirupsen/logrus"
)

// overlayColor is the colour detected lines are drawn in.
var overlayColor = imaging.Pixel{R: 255}

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "lane_load", "lane_detect").
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
	entry := logger.WithFields(logrus.Fields{
		"tool":        params.Name,
		"duration_ms": time.Since(start).Milliseconds(),
	})
	if err != nil {
		entry.WithError(err).Warn("tool failed")
		return s.errorResponse(req.ID, -32000, "Tool execution failed", errorData(err))
	}
	entry.Info("tool completed")

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
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "lane_load":
		return s.handleLaneLoad(args)
	case "lane_detect":
		return s.handleLaneDetect(args)
	case "lane_edges":
		return s.handleLaneEdges(args)
	case "lane_accumulator":
		return s.handleLaneAccumulator(args)
	case "lane_stream":
		return s.handleLaneStream(args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message string, data interface{}) *MCPResponse {
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

// errorData exposes the kind of a pipeline failure next to its message.
func errorData(err error) interface{} {
	if kind, ok := apperrors.KindOf(err); ok {
		return map[string]string{
			"kind":  string(kind),
			"error": err.Error(),
		}
	}
	return err.Error()
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// loadFrame fetches a cached frame and crops it to roi when one is given.
func (s *Server) loadFrame(path string, roi *imaging.Region) (*imaging.RGB, error) {
	frame, err := s.cache.Load(path)
	if err != nil {
		return nil, err
	}
	if roi == nil || roi.Empty() {
		return frame, nil
	}
	return imaging.CropRegion(frame, *roi)
}

// === Frame Information ===

type laneLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleLaneLoad(args json.RawMessage) (interface{}, error) {
	var a laneLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadFrameInfo(s.cache, a.Path)
}

// === Detection ===

type laneDetectArgs struct {
	Path      string          `json:"path"`
	ROI       *imaging.Region `json:"roi"`
	Clusters  *int            `json:"clusters"`
	Threshold *int            `json:"threshold"`
	Overlay   bool            `json:"overlay"`
}

// LineResult is one detected line.
type LineResult struct {
	Rho       float64 `json:"rho"`
	Theta     float64 `json:"theta"`
	Direction float64 `json:"direction"`
	Votes     int     `json:"votes"`

	// Members is the number of Hough peaks merged into this line; zero when
	// clustering was skipped.
	Members int `json:"members,omitempty"`

	// Start and End are nil when the line misses the frame.
	Start *detection.Point `json:"start,omitempty"`
	End   *detection.Point `json:"end,omitempty"`
}

// DetectResult is returned by lane_detect.
type DetectResult struct {
	Width      int                `json:"width"`
	Height     int                `json:"height"`
	EdgePixels int                `json:"edge_pixels"`
	PeakCount  int                `json:"peak_count"`
	Lines      []LineResult       `json:"lines"`
	OverlayPNG string             `json:"overlay_png,omitempty"`
	TimingsMS  map[string]float64 `json:"timings_ms"`
}

func newLineResult(n detection.Normal, members, width, height int) LineResult {
	lr := LineResult{
		Rho:       n.Rho,
		Theta:     n.Theta,
		Direction: n.Direction(),
		Votes:     n.Votes,
		Members:   members,
	}
	if a, b, ok := n.Segment(width, height); ok {
		lr.Start, lr.End = &a, &b
	}
	return lr
}

func (s *Server) handleLaneDetect(args json.RawMessage) (interface{}, error) {
	var a laneDetectArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	cfg := s.cfg.Pipeline
	if a.Clusters != nil {
		cfg.Clusters = *a.Clusters
	}
	if a.Threshold != nil {
		cfg.Hough.Threshold = *a.Threshold
	}

	frame, err := s.loadFrame(a.Path, a.ROI)
	if err != nil {
		return nil, err
	}
	res, err := pipeline.Run(frame, cfg)
	if err != nil {
		return nil, err
	}

	out := &DetectResult{
		Width:      frame.Width,
		Height:     frame.Height,
		EdgePixels: res.Edges.CountNonZero(),
		PeakCount:  len(res.Normals),
		Lines:      make([]LineResult, 0),
		TimingsMS:  make(map[string]float64, len(res.Timings)),
	}
	for stage, d := range res.Timings {
		out.TimingsMS[stage] = float64(d.Microseconds()) / 1000
	}
	if res.Clusters != nil {
		for _, c := range res.Clusters {
			out.Lines = append(out.Lines, newLineResult(c.Normal(), len(c.Members), frame.Width, frame.Height))
		}
	} else {
		for _, n := range res.Normals {
			out.Lines = append(out.Lines, newLineResult(n, 0, frame.Width, frame.Height))
		}
	}

	if a.Overlay {
		drawn := detection.Overlay(frame, res.Lines(), overlayColor)
		out.OverlayPNG, err = imaging.EncodePNG(drawn)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

type laneEdgesArgs struct {
	Path   string          `json:"path"`
	ROI    *imaging.Region `json:"roi"`
	Cutoff *int            `json:"cutoff"`
}

// EdgesResult is returned by lane_edges.
type EdgesResult struct {
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	EdgePixels int    `json:"edge_pixels"`
	ImagePNG   string `json:"image_png"`
}

func (s *Server) handleLaneEdges(args json.RawMessage) (interface{}, error) {
	var a laneEdgesArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	cfg := s.cfg.Pipeline
	if a.Cutoff != nil {
		if *a.Cutoff < 1 || *a.Cutoff > 255 {
			return nil, fmt.Errorf("cutoff must be in [1, 255], got %d", *a.Cutoff)
		}
		cfg.Cutoff = uint8(*a.Cutoff)
	}

	frame, err := s.loadFrame(a.Path, a.ROI)
	if err != nil {
		return nil, err
	}
	edges, err := pipeline.Edges(frame, cfg)
	if err != nil {
		return nil, err
	}
	encoded, err := imaging.EncodePNG(edges)
	if err != nil {
		return nil, err
	}
	return &EdgesResult{
		Width:      edges.Width,
		Height:     edges.Height,
		EdgePixels: edges.CountNonZero(),
		ImagePNG:   encoded,
	}, nil
}

type laneAccumulatorArgs struct {
	Path  string          `json:"path"`
	ROI   *imaging.Region `json:"roi"`
	Style string          `json:"style"`
}

// AccumulatorResult is returned by lane_accumulator.
type AccumulatorResult struct {
	RhoBuckets   int     `json:"rho_buckets"`
	ThetaBuckets int     `json:"theta_buckets"`
	Diagonal     float64 `json:"diagonal"`
	MinVotes     int     `json:"min_votes"`
	MaxVotes     int     `json:"max_votes"`
	Style        string  `json:"style"`
	ImagePNG     string  `json:"image_png"`
}

func (s *Server) handleLaneAccumulator(args json.RawMessage) (interface{}, error) {
	var a laneAccumulatorArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Style == "" {
		a.Style = "grayscale"
	}
	if a.Style != "grayscale" && a.Style != "heatmap" {
		return nil, fmt.Errorf("unknown style: %s", a.Style)
	}

	frame, err := s.loadFrame(a.Path, a.ROI)
	if err != nil {
		return nil, err
	}
	cfg := s.cfg.Pipeline
	cfg.Clusters = 0
	res, err := pipeline.Run(frame, cfg)
	if err != nil {
		return nil, err
	}

	var encoded string
	if a.Style == "heatmap" {
		heat, err := detection.Heatmap(res.Space)
		if err != nil {
			return nil, err
		}
		encoded, err = imaging.EncodePNG(heat)
		if err != nil {
			return nil, err
		}
	} else {
		encoded, err = imaging.EncodePNG(res.Visualization)
		if err != nil {
			return nil, err
		}
	}

	min, max := res.Space.Range()
	return &AccumulatorResult{
		RhoBuckets:   res.Space.RhoBuckets,
		ThetaBuckets: res.Space.ThetaBuckets,
		Diagonal:     res.Space.Diagonal,
		MinVotes:     min,
		MaxVotes:     max,
		Style:        a.Style,
		ImagePNG:     encoded,
	}, nil
}

// === Streaming ===

type laneStreamArgs struct {
	Path string          `json:"path"`
	ROI  *imaging.Region `json:"roi"`
	Fit  bool            `json:"fit"`
}

// StreamResult is returned by lane_stream.
type StreamResult struct {
	Width  int                `json:"width"`
	Height int                `json:"height"`
	Words  []stream.Word      `json:"words"`
	Hex    []string           `json:"hex"`
	Lines  []detection.Normal `json:"lines"`
}

func (s *Server) handleLaneStream(args json.RawMessage) (interface{}, error) {
	var a laneStreamArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	frame, err := s.loadFrame(a.Path, a.ROI)
	if err != nil {
		return nil, err
	}
	if a.Fit {
		frame, err = imaging.FitFrame(frame, s.cfg.Stream.MaxWidth, s.cfg.Stream.MaxHeight)
		if err != nil {
			return nil, err
		}
	}

	words, err := stream.Process(context.Background(), frame, s.cfg.Stream)
	if err != nil {
		return nil, err
	}
	lines, err := stream.Decode(words)
	if err != nil {
		return nil, err
	}

	hex := make([]string, len(words))
	for i, w := range words {
		hex[i] = fmt.Sprintf("0x%08X", w.Data)
	}
	return &StreamResult{
		Width:  frame.Width,
		Height: frame.Height,
		Words:  words,
		Hex:    hex,
		Lines:  lines,
	}, nil
}
