package detection

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectPlate_FirstQuadrilateralWins(t *testing.T) {
	img := createTestImage(220, 220, color.Black)
	circle := circleOutline(100, 100, 50)
	big := rectangleOutline(10, 10, 110, 60)
	small := rectangleOutline(120, 150, 200, 180)

	result, err := SelectPlate([]Contour{circle, big, small}, img)
	require.NoError(t, err)
	require.True(t, result.Found)

	assert.Equal(t, BoundingBox{X: 10, Y: 10, Width: 101, Height: 51}, result.Box)
	assert.Equal(t, Polygon{{10, 10}, {110, 10}, {110, 60}, {10, 60}}, result.Polygon)
	assert.Equal(t, big, result.Contour)
	assert.Equal(t, image.Rect(0, 0, 101, 51), result.Plate.Bounds())

	// Order decides, not size
	result, err = SelectPlate([]Contour{small, big}, img)
	require.NoError(t, err)
	assert.Equal(t, BoundingBox{X: 120, Y: 150, Width: 81, Height: 31}, result.Box)
}

func TestSelectPlate_NoQuadrilateral(t *testing.T) {
	img := createTestImage(220, 220, color.Black)
	triangle := Contour{{10, 10}, {60, 10}, {35, 50}}

	tests := []struct {
		name       string
		candidates []Contour
	}{
		{"nil", nil},
		{"empty", []Contour{}},
		{"circle and triangle", []Contour{circleOutline(100, 100, 50), triangle}},
		{"single points", []Contour{{{5, 5}}, {{6, 6}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := SelectPlate(tt.candidates, img)
			require.NoError(t, err)
			assert.Equal(t, &DetectionResult{}, result)
		})
	}
}

func TestSelectPlate_OutOfBounds(t *testing.T) {
	img := createTestImage(50, 50, color.Black)

	_, err := SelectPlate([]Contour{rectangleOutline(10, 10, 80, 40)}, img)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestBoundingRect(t *testing.T) {
	tests := []struct {
		name string
		pts  []Point
		want BoundingBox
	}{
		{"empty", nil, BoundingBox{}},
		{"single point", []Point{{4, 7}}, BoundingBox{X: 4, Y: 7, Width: 1, Height: 1}},
		{"horizontal line", []Point{{2, 3}, {9, 3}}, BoundingBox{X: 2, Y: 3, Width: 8, Height: 1}},
		{"skewed quad", []Point{{30, 40}, {130, 30}, {140, 90}, {20, 80}}, BoundingBox{X: 20, Y: 30, Width: 121, Height: 61}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BoundingRect(tt.pts))
		})
	}
}

func TestCrop(t *testing.T) {
	img := createTestImage(40, 30, color.Black)
	img.Set(5, 6, color.RGBA{255, 0, 0, 255})
	img.Set(14, 11, color.RGBA{0, 0, 255, 255})

	plate, box, err := Crop(img, Contour{{5, 6}, {14, 6}, {14, 11}, {5, 11}})
	require.NoError(t, err)

	assert.Equal(t, BoundingBox{X: 5, Y: 6, Width: 10, Height: 6}, box)
	assert.Equal(t, image.Rect(0, 0, 10, 6), plate.Bounds())

	r, _, _, _ := plate.At(0, 0).RGBA()
	assert.Equal(t, uint32(0xffff), r, "top-left corner is inclusive")
	_, _, b, _ := plate.At(9, 5).RGBA()
	assert.Equal(t, uint32(0xffff), b, "bottom-right corner is inclusive")
}

func TestCrop_NonZeroOrigin(t *testing.T) {
	full := createTestImage(60, 60, color.Black)
	full.Set(25, 30, color.White)
	sub := full.SubImage(image.Rect(20, 20, 60, 60))

	plate, box, err := Crop(sub, Contour{{5, 10}, {8, 12}})
	require.NoError(t, err)

	assert.Equal(t, BoundingBox{X: 5, Y: 10, Width: 4, Height: 3}, box)
	r, g, b, _ := plate.At(0, 0).RGBA()
	assert.Equal(t, []uint32{0xffff, 0xffff, 0xffff}, []uint32{r, g, b})
}

func TestCrop_Errors(t *testing.T) {
	img := createTestImage(20, 20, color.Black)

	tests := []struct {
		name    string
		img     image.Image
		contour Contour
	}{
		{"nil image", nil, Contour{{1, 1}}},
		{"empty contour", img, nil},
		{"negative coordinate", img, Contour{{-1, 5}, {5, 5}}},
		{"past right edge", img, Contour{{5, 5}, {20, 5}}},
		{"past bottom edge", img, Contour{{5, 5}, {5, 20}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Crop(tt.img, tt.contour)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}
