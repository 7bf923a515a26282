package detection

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// BoundingRect returns the smallest axis-aligned rectangle containing every
// point. Width and height count pixels inclusively, so a single point yields
// a 1x1 box.
func BoundingRect(pts []Point) BoundingBox {
	if len(pts) == 0 {
		return BoundingBox{}
	}

	minX, minY := pts[0].X, pts[0].Y
	maxX, maxY := minX, minY
	for _, p := range pts[1:] {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}

	return BoundingBox{
		X:      minX,
		Y:      minY,
		Width:  maxX - minX + 1,
		Height: maxY - minY + 1,
	}
}

// Crop cuts the bounding rectangle of contour out of img.
//
// Contour coordinates are relative to the image's top-left pixel. The crop is
// upright; no rotation or perspective correction is applied. The returned
// image is a new buffer with origin (0,0).
func Crop(img image.Image, contour Contour) (image.Image, BoundingBox, error) {
	if err := validateInput(img); err != nil {
		return nil, BoundingBox{}, err
	}
	if len(contour) == 0 {
		return nil, BoundingBox{}, fmt.Errorf("%w: empty contour", ErrInvalidInput)
	}

	bounds := img.Bounds()
	box := BoundingRect(contour)
	if box.X < 0 || box.Y < 0 || box.X+box.Width > bounds.Dx() || box.Y+box.Height > bounds.Dy() {
		return nil, BoundingBox{}, fmt.Errorf("%w: contour box %v outside %dx%d image",
			ErrInvalidInput, box.Rect(), bounds.Dx(), bounds.Dy())
	}

	plate := imaging.Crop(img, box.Rect().Add(bounds.Min))
	return plate, box, nil
}
