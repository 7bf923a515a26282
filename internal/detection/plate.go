package detection

import (
	"image"
)

// DetectPlate locates and crops the most plate-like quadrilateral in a
// vehicle photograph.
//
// The call is synchronous, allocates all of its working buffers, and keeps
// no state between invocations, so it is safe to call concurrently on
// different (or the same, unmodified) images.
//
// Returns:
//   - *DetectionResult: Found with the crop, or Found == false.
//   - error: wraps ErrInvalidInput for nil, empty or malformed images.
func DetectPlate(img image.Image) (*DetectionResult, error) {
	result, _, err := DetectPlateStages(img)
	return result, err
}

// DetectPlateStages runs the same pipeline as DetectPlate and additionally
// returns the intermediate images and ranked candidates.
//
// # Pipeline
//
//  1. Smooth: grayscale + bilateral filter
//  2. DetectEdges: Canny
//  3. FindCandidates: border following, rank by area, keep MaxCandidates
//  4. SelectPlate: first candidate approximating to four vertices, cropped
//
// Stages is nil only when the input is rejected.
func DetectPlateStages(img image.Image) (*DetectionResult, *Stages, error) {
	smoothed, err := Smooth(img)
	if err != nil {
		return nil, nil, err
	}

	edges := DetectEdges(smoothed)
	candidates := FindCandidates(edges)

	stages := &Stages{
		Smoothed:   smoothed,
		Edges:      edges,
		Candidates: candidates,
	}

	result, err := SelectPlate(candidates, img)
	if err != nil {
		return nil, stages, err
	}
	return result, stages, nil
}
