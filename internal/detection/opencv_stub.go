//go:build !gocv
// +build !gocv

package detection

import "image"

// OpenCVAvailable reports whether DetectPlateOpenCV is backed by OpenCV.
const OpenCVAvailable = false

// DetectPlateOpenCV returns ErrOpenCVUnavailable; build with -tags gocv to
// enable the OpenCV backend.
func DetectPlateOpenCV(img image.Image) (*DetectionResult, error) {
	_ = img
	return nil, ErrOpenCVUnavailable
}
