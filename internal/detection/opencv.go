//go:build gocv
// +build gocv

package detection

import (
	"fmt"
	"image"
	"sort"

	"gocv.io/x/gocv"
)

// OpenCVAvailable reports whether DetectPlateOpenCV is backed by OpenCV.
const OpenCVAvailable = true

// DetectPlateOpenCV runs the plate pipeline through OpenCV instead of the
// native Go implementation. Tunables, ranking and selection rules are the
// same as DetectPlate; the crop is taken from img with Crop so the result
// has the same shape.
func DetectPlateOpenCV(img image.Image) (*DetectionResult, error) {
	if err := validateInput(img); err != nil {
		return nil, err
	}

	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	defer mat.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(mat, &gray, gocv.ColorBGRToGray)

	smoothed := gocv.NewMat()
	defer smoothed.Close()
	gocv.BilateralFilter(gray, &smoothed, BilateralDiameter, BilateralSigmaColor, BilateralSigmaSpace)

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(smoothed, &edges, CannyLowThreshold, CannyHighThreshold)
	if err := bridgeMatGaps(&edges, smoothed); err != nil {
		return nil, err
	}

	contours := gocv.FindContours(edges, gocv.RetrievalList, gocv.ChainApproxSimple)
	defer contours.Close()

	type rankedIndex struct {
		index int
		area  float64
	}
	ranked := make([]rankedIndex, contours.Size())
	for i := range ranked {
		ranked[i] = rankedIndex{index: i, area: gocv.ContourArea(contours.At(i))}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].area > ranked[j].area
	})
	if len(ranked) > MaxCandidates {
		ranked = ranked[:MaxCandidates]
	}

	for _, r := range ranked {
		c := contours.At(r.index)
		perimeter := gocv.ArcLength(c, true)
		approx := gocv.ApproxPolyDP(c, ApproxEpsilonFactor*perimeter, true)
		corners := approx.ToPoints()
		approx.Close()
		if len(corners) != 4 {
			continue
		}

		contour := fromImagePoints(c.ToPoints())
		plate, box, err := Crop(img, contour)
		if err != nil {
			return nil, err
		}
		return &DetectionResult{
			Found:   true,
			Plate:   plate,
			Box:     box,
			Contour: contour,
			Polygon: Polygon(fromImagePoints(corners)),
		}, nil
	}

	return &DetectionResult{}, nil
}

// bridgeMatGaps applies the native corner gap bridging to an OpenCV edge map
// so both backends close slanted outlines alike.
func bridgeMatGaps(edges *gocv.Mat, smoothed gocv.Mat) error {
	src, err := smoothed.ToImage()
	if err != nil {
		return fmt.Errorf("smoothed image conversion failed: %w", err)
	}
	gray, ok := src.(*image.Gray)
	if !ok {
		return fmt.Errorf("smoothed image has unexpected type %T", src)
	}
	pix, err := edges.DataPtrUint8()
	if err != nil {
		return fmt.Errorf("edge map access failed: %w", err)
	}

	width, height := edges.Cols(), edges.Rows()
	state := make([]uint8, width*height)
	for i, v := range pix[:len(state)] {
		if v != 0 {
			state[i] = edgeStrong
		}
	}
	_, _, magnitude := sobel(gray)
	bridgeGaps(state, magnitude, width, height, CannyLowThreshold)
	for i, s := range state {
		if s == edgeStrong {
			pix[i] = 255
		}
	}
	return nil
}

func fromImagePoints(pts []image.Point) Contour {
	c := make(Contour, len(pts))
	for i, p := range pts {
		c[i] = Point{X: p.X, Y: p.Y}
	}
	return c
}
