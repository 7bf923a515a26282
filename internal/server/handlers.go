package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"log"
	"math"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ironsheep/plate-tools-mcp/internal/detection"
	"github.com/ironsheep/plate-tools-mcp/internal/imaging"
)

// Detection backends selectable per request.
const (
	BackendNative = "native"
	BackendOpenCV = "opencv"
)

// NotFoundMessage is returned to the caller when no plate was located.
const NotFoundMessage = "Could not detect a license plate. Try uploading a clearer image."

const defaultPlateColors = 3

// Limits on caller-controlled output size.
const (
	maxScale      = 8.0
	maxOutputSide = 8192
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "plate_detect").
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
// A plate that cannot be found is not an error; the result reports found=false.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
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

// executeTool dispatches tool execution to the appropriate handler function
// inside a span named after the tool.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	ctx, span := s.tracer.Start(ctx, "tool."+name)
	defer span.End()
	span.SetAttributes(attribute.String("tool.name", name))

	start := time.Now()
	result, err := s.dispatchTool(ctx, name, args)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	if s.cfg.Debug() {
		log.Printf("tool %s finished in %s (err=%v)", name, time.Since(start), err)
	}
	return result, err
}

func (s *Server) dispatchTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Basic Image Information
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)

	// Plate Detection
	case "plate_detect":
		return s.handlePlateDetect(ctx, args)
	case "plate_overlay":
		return s.handlePlateOverlay(ctx, args)
	case "plate_stages":
		return s.handlePlateStages(ctx, args)

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

// decodeArgs unmarshals tool arguments; missing arguments decode as {}.
func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 || string(args) == "null" {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

// === Basic Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

// === Plate Detection Handlers ===

// imageSource selects the photograph: a file path (cached) or inline base64.
type imageSource struct {
	Path        string `json:"path"`
	ImageBase64 string `json:"image_base64"`
}

func (s *Server) loadSource(src imageSource) (image.Image, error) {
	switch {
	case src.Path != "" && src.ImageBase64 != "":
		return nil, errors.New("provide either path or image_base64, not both")
	case src.Path != "":
		return s.cache.Load(src.Path)
	case src.ImageBase64 != "":
		return imaging.DecodeBase64(src.ImageBase64, s.cfg.AutoOrient)
	default:
		return nil, errors.New("an image is required: provide path or image_base64")
	}
}

// detect runs the requested backend and annotates the current span.
func (s *Server) detect(ctx context.Context, img image.Image, backend string) (*detection.DetectionResult, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}

	backend = strings.ToLower(strings.TrimSpace(backend))
	var (
		result *detection.DetectionResult
		err    error
	)
	switch backend {
	case "", BackendNative:
		backend = BackendNative
		result, err = detection.DetectPlate(img)
	case BackendOpenCV:
		result, err = detection.DetectPlateOpenCV(img)
	default:
		return nil, "", fmt.Errorf("unknown backend %q: want %q or %q", backend, BackendNative, BackendOpenCV)
	}
	if err != nil {
		return nil, backend, err
	}

	span := trace.SpanFromContext(ctx)
	span.SetAttributes(
		attribute.String("plate.backend", backend),
		attribute.Bool("plate.found", result.Found),
	)
	if result.Found {
		span.SetAttributes(
			attribute.Int("plate.x", result.Box.X),
			attribute.Int("plate.y", result.Box.Y),
			attribute.Int("plate.width", result.Box.Width),
			attribute.Int("plate.height", result.Box.Height),
		)
	}
	return result, backend, nil
}

type plateDetectArgs struct {
	imageSource
	Save       bool    `json:"save"`
	OutputName string  `json:"output_name"`
	Scale      float64 `json:"scale"`
	Colors     *int    `json:"colors"`
	Backend    string  `json:"backend"`
}

// PlateDetectResult is the plate_detect tool result.
type PlateDetectResult struct {
	Found       bool                     `json:"found"`
	Message     string                   `json:"message,omitempty"`
	Backend     string                   `json:"backend"`
	BoundingBox *detection.BoundingBox   `json:"bounding_box,omitempty"`
	Polygon     detection.Polygon        `json:"polygon,omitempty"`
	Plate       *imaging.EncodedImage    `json:"plate,omitempty"`
	PlateColors []imaging.ColorFrequency `json:"plate_colors,omitempty"`
	SavedPath   string                   `json:"saved_path,omitempty"`
}

func (s *Server) handlePlateDetect(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a plateDetectArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	if a.Scale < 0 || a.Scale > maxScale || math.IsNaN(a.Scale) {
		return nil, fmt.Errorf("invalid scale %g: must be in (0, %g]", a.Scale, maxScale)
	}
	colors := defaultPlateColors
	if a.Colors != nil {
		colors = *a.Colors
	}

	img, err := s.loadSource(a.imageSource)
	if err != nil {
		return nil, err
	}

	result, backend, err := s.detect(ctx, img, a.Backend)
	if err != nil {
		return nil, err
	}
	if !result.Found {
		return &PlateDetectResult{Found: false, Message: NotFoundMessage, Backend: backend}, nil
	}

	box := result.Box
	out := &PlateDetectResult{
		Found:       true,
		Backend:     backend,
		BoundingBox: &box,
		Polygon:     result.Polygon,
		PlateColors: imaging.DominantColors(result.Plate, colors),
	}

	pb := result.Plate.Bounds()
	if side := math.Max(float64(pb.Dx()), float64(pb.Dy())) * a.Scale; side > maxOutputSide {
		return nil, fmt.Errorf("invalid scale %g: scaled plate side %.0f exceeds %d pixels", a.Scale, side, maxOutputSide)
	}

	out.Plate, err = imaging.EncodePNG(imaging.Scale(result.Plate, a.Scale))
	if err != nil {
		return nil, err
	}

	if a.Save || a.OutputName != "" {
		out.SavedPath, err = imaging.SavePNG(result.Plate, s.cfg.OutputDir, a.OutputName)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

type plateOverlayArgs struct {
	imageSource
	Color     string `json:"color"`
	Thickness int    `json:"thickness"`
	Backend   string `json:"backend"`
}

// PlateOverlayResult is the plate_overlay tool result. Image is the input
// photograph, outlined when a plate was found.
type PlateOverlayResult struct {
	Found       bool                   `json:"found"`
	Message     string                 `json:"message,omitempty"`
	Backend     string                 `json:"backend"`
	BoundingBox *detection.BoundingBox `json:"bounding_box,omitempty"`
	Polygon     detection.Polygon      `json:"polygon,omitempty"`
	Image       *imaging.EncodedImage  `json:"image"`
}

func (s *Server) handlePlateOverlay(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a plateOverlayArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Color == "" {
		a.Color = s.cfg.OverlayColor
	}
	if a.Thickness < 0 {
		return nil, fmt.Errorf("invalid thickness %d: must be positive", a.Thickness)
	}
	stroke, err := imaging.ParseColor(a.Color)
	if err != nil {
		return nil, err
	}

	img, err := s.loadSource(a.imageSource)
	if err != nil {
		return nil, err
	}

	// The configured default shrinks to fit; an explicit thickness must fit.
	limit := min(img.Bounds().Dx(), img.Bounds().Dy())
	switch {
	case a.Thickness == 0:
		a.Thickness = min(s.cfg.OverlayThickness, limit)
	case a.Thickness > limit:
		return nil, fmt.Errorf("invalid thickness %d: exceeds the image's shorter side (%d pixels)", a.Thickness, limit)
	}

	result, backend, err := s.detect(ctx, img, a.Backend)
	if err != nil {
		return nil, err
	}

	out := &PlateOverlayResult{Found: result.Found, Backend: backend}
	var pts []image.Point
	if result.Found {
		box := result.Box
		out.BoundingBox = &box
		out.Polygon = result.Polygon
		pts = toImagePoints(result.Polygon)
	} else {
		out.Message = NotFoundMessage
	}

	out.Image, err = imaging.EncodePNG(imaging.DrawPolygon(img, pts, stroke, a.Thickness))
	if err != nil {
		return nil, err
	}
	return out, nil
}

// PlateStagesResult is the plate_stages tool result.
type PlateStagesResult struct {
	Found       bool                   `json:"found"`
	BoundingBox *detection.BoundingBox `json:"bounding_box,omitempty"`
	Candidates  int                    `json:"candidates"`
	Smoothed    *imaging.EncodedImage  `json:"smoothed"`
	Edges       *imaging.EncodedImage  `json:"edges"`
}

func (s *Server) handlePlateStages(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a imageSource
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	img, err := s.loadSource(a)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result, stages, err := detection.DetectPlateStages(img)
	if err != nil {
		return nil, err
	}

	out := &PlateStagesResult{
		Found:      result.Found,
		Candidates: len(stages.Candidates),
	}
	if result.Found {
		box := result.Box
		out.BoundingBox = &box
	}
	if out.Smoothed, err = imaging.EncodePNG(stages.Smoothed); err != nil {
		return nil, err
	}
	if out.Edges, err = imaging.EncodePNG(stages.Edges); err != nil {
		return nil, err
	}
	return out, nil
}

func toImagePoints(poly detection.Polygon) []image.Point {
	pts := make([]image.Point, len(poly))
	for i, p := range poly {
		pts[i] = image.Point{X: p.X, Y: p.Y}
	}
	return pts
}
