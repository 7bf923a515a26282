package detection

import (
	"image"
)

// SelectPlate walks the ranked candidates and accepts the first one whose
// approximated polygon has exactly four vertices.
//
// Candidates are examined strictly in the order given; later quadrilaterals
// are never compared against the accepted one. When no candidate qualifies
// the result has Found == false and a nil error.
//
// The accepted contour is cropped out of img (see Crop).
func SelectPlate(candidates []Contour, img image.Image) (*DetectionResult, error) {
	for _, c := range candidates {
		poly := Approximate(c)
		if len(poly) != 4 {
			continue
		}

		plate, box, err := Crop(img, c)
		if err != nil {
			return nil, err
		}
		return &DetectionResult{
			Found:   true,
			Plate:   plate,
			Box:     box,
			Contour: c,
			Polygon: poly,
		}, nil
	}

	return &DetectionResult{}, nil
}

// Approximate simplifies a contour with a tolerance of ApproxEpsilonFactor
// times its perimeter, so the result does not depend on image resolution.
func Approximate(c Contour) Polygon {
	return ApproxPolygon(c, ApproxEpsilonFactor*ArcLength(c, true))
}
