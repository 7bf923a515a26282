package detection

import (
	"errors"
	"image"
)

// Pipeline tunables. These were chosen for daylight vehicle photographs and
// are fixed; callers cannot negotiate them per request.
const (
	// BilateralDiameter is the neighbourhood diameter of the smoothing filter.
	BilateralDiameter = 11

	// BilateralSigmaColor controls how strongly intensity differences reduce
	// a neighbour's weight.
	BilateralSigmaColor = 17.0

	// BilateralSigmaSpace controls how strongly distance reduces a
	// neighbour's weight.
	BilateralSigmaSpace = 17.0

	// CannyLowThreshold admits weak edges that connect to strong ones.
	CannyLowThreshold = 30

	// CannyHighThreshold marks definite edges.
	CannyHighThreshold = 200

	// MaxCandidates bounds how many contours, largest first, are examined.
	MaxCandidates = 30

	// ApproxEpsilonFactor scales the contour perimeter into the polygon
	// approximation tolerance.
	ApproxEpsilonFactor = 0.018
)

// Errors returned by the detection pipeline.
var (
	// ErrInvalidInput is returned for nil, empty or malformed images.
	ErrInvalidInput = errors.New("invalid input image")

	// ErrOpenCVUnavailable is returned by DetectPlateOpenCV when the binary
	// was built without the gocv build tag.
	ErrOpenCVUnavailable = errors.New("opencv backend not compiled in (build with -tags gocv)")
)

// Point represents a 2D coordinate in pixel space.
type Point struct {
	X int `json:"x"` // Horizontal position (0 = leftmost)
	Y int `json:"y"` // Vertical position (0 = topmost)
}

// Contour is a closed boundary traced in an edge map. Consecutive points are
// neighbours along the boundary; the last point connects back to the first.
type Contour []Point

// Polygon is a simplified closed outline derived from a Contour.
type Polygon []Point

// BoundingBox is an axis-aligned rectangle relative to the image's top-left
// pixel.
type BoundingBox struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Rect returns the box as an image.Rectangle with origin (0,0).
func (b BoundingBox) Rect() image.Rectangle {
	return image.Rect(b.X, b.Y, b.X+b.Width, b.Y+b.Height)
}

// DetectionResult is the outcome of one pipeline invocation.
//
// When Found is false every other field is zero. When Found is true, Plate
// holds a freshly allocated crop of the input, Box the crop rectangle,
// Contour the accepted boundary and Polygon its four-vertex approximation
// (useful for drawing an overlay).
type DetectionResult struct {
	Found   bool        `json:"found"`
	Plate   image.Image `json:"-"`
	Box     BoundingBox `json:"bounding_box"`
	Contour Contour     `json:"-"`
	Polygon Polygon     `json:"polygon,omitempty"`
}

// Stages exposes the intermediate products of a pipeline run.
type Stages struct {
	// Smoothed is the grayscale, bilateral-filtered input.
	Smoothed *image.Gray

	// Edges is the binary edge map (255 = edge).
	Edges *image.Gray

	// Candidates are the ranked contours handed to the selector.
	Candidates []Contour
}
