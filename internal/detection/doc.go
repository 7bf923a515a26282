// Package detection locates and crops license plates in vehicle photographs
// using classical image processing.
//
// A plate is assumed to be the largest closed outline in the image that can be
// approximated by a quadrilateral. No machine learning is involved and no
// character recognition is attempted.
//
// # Pipeline
//
// DetectPlate runs four stages, each of which is also exported for
// inspection and testing:
//
//  1. Smooth: luma grayscale conversion followed by an edge-preserving
//     bilateral filter (diameter 11, sigma 17/17)
//  2. DetectEdges: Canny with hysteresis thresholds 30 and 200
//  3. FindCandidates: border following over the edge map, ranked by
//     enclosed area, largest first, at most 30 kept
//  4. SelectPlate: the first candidate whose Douglas-Peucker
//     approximation (tolerance 1.8% of the perimeter) has exactly four
//     vertices wins and is cropped to its bounding rectangle
//
// The tunables are package constants and are not configurable per call.
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at the image's top-left pixel, whatever img.Bounds().Min is
//   - X increases rightward
//   - Y increases downward
//   - BoundingBox is inclusive of its top-left pixel; Width and Height count
//     pixels
//
// # Results
//
// Finding nothing is not an error: DetectPlate returns a DetectionResult with
// Found == false. Errors are reserved for unusable input (nil, empty or
// malformed images) and wrap ErrInvalidInput.
//
// # Concurrency
//
// Every call allocates its own buffers and keeps no package state, so
// detections may run concurrently. The bilateral filter additionally spreads
// its rows across GOMAXPROCS goroutines.
//
// # OpenCV Backend
//
// Binaries built with the gocv tag also get DetectPlateOpenCV, which runs the
// same pipeline through OpenCV. Without the tag it returns
// ErrOpenCVUnavailable.
//
// # Limitations
//
// The selector accepts any quadrilateral: windows, signs and box-shaped
// objects larger than the plate win over it. Slanted plates often lose the
// corner pixel of their Canny outline to non-maximum suppression; chain ends
// one pixel short of another edge are bridged before tracing so the outline
// stays closed. Wider breaks, such as a plate partly hidden behind a bumper
// edge, still leave an open chain that is rejected.
package detection
