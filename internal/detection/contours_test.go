package detection

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// drawRing sets the one-pixel outline of the square [x0,x0+size]x[y0,y0+size]
func drawRing(edges *image.Gray, x0, y0, size int) {
	for i := 0; i <= size; i++ {
		edges.Pix[edges.PixOffset(x0+i, y0)] = 255
		edges.Pix[edges.PixOffset(x0+i, y0+size)] = 255
		edges.Pix[edges.PixOffset(x0, y0+i)] = 255
		edges.Pix[edges.PixOffset(x0+size, y0+i)] = 255
	}
}

func TestTraceContours_Empty(t *testing.T) {
	edges := image.NewGray(image.Rect(0, 0, 20, 20))
	assert.Empty(t, traceContours(edges))
	assert.Empty(t, FindCandidates(edges))
}

func TestFindCandidates_Nil(t *testing.T) {
	assert.Empty(t, FindCandidates(nil))
}

func TestTraceContours_IsolatedPixel(t *testing.T) {
	edges := image.NewGray(image.Rect(0, 0, 10, 10))
	edges.Pix[edges.PixOffset(6, 4)] = 255

	contours := traceContours(edges)
	require.Len(t, contours, 1)
	assert.Equal(t, Contour{{X: 6, Y: 4}}, contours[0])
}

func TestTraceContours_Ring(t *testing.T) {
	edges := image.NewGray(image.Rect(0, 0, 20, 20))
	drawRing(edges, 5, 5, 10)

	contours := traceContours(edges)
	require.Len(t, contours, 2, "outer border and hole border")

	// Outer border is found first and compresses to its corners
	outer := contours[0]
	assert.Equal(t, Contour{{5, 5}, {5, 15}, {15, 15}, {15, 5}}, outer)
	assert.Equal(t, 100.0, ContourArea(outer))

	// The hole border runs along the inside of the same pixels, cutting the corners
	hole := contours[1]
	assert.Len(t, hole, 8)
	assert.Equal(t, 98.0, ContourArea(hole))
	assert.Equal(t, BoundingBox{X: 5, Y: 5, Width: 11, Height: 11}, BoundingRect(hole))
}

func TestTraceContours_FilledBlock(t *testing.T) {
	edges := image.NewGray(image.Rect(0, 0, 12, 12))
	for y := 3; y < 8; y++ {
		for x := 2; x < 9; x++ {
			edges.Pix[edges.PixOffset(x, y)] = 255
		}
	}

	contours := traceContours(edges)
	require.Len(t, contours, 1, "a solid block has no hole")
	assert.Equal(t, BoundingBox{X: 2, Y: 3, Width: 7, Height: 5}, BoundingRect(contours[0]))
	assert.Len(t, contours[0], 4)
}

func TestTraceContours_NonZeroOrigin(t *testing.T) {
	edges := image.NewGray(image.Rect(10, 20, 40, 50))
	drawRing(edges, 15, 25, 6)

	contours := traceContours(edges)
	require.NotEmpty(t, contours)
	assert.Equal(t, BoundingBox{X: 5, Y: 5, Width: 7, Height: 7}, BoundingRect(contours[0]))
}

func TestFindCandidates_RankedAndCapped(t *testing.T) {
	edges := image.NewGray(image.Rect(0, 0, 400, 200))
	k := 0
	for row := 0; row < 4; row++ {
		for col := 0; col < 10; col++ {
			drawRing(edges, col*40+2, row*50+2, 3+k%7)
			k++
		}
	}

	require.Len(t, traceContours(edges), 80)

	candidates := FindCandidates(edges)
	require.Len(t, candidates, MaxCandidates)

	for i := 1; i < len(candidates); i++ {
		assert.GreaterOrEqual(t, ContourArea(candidates[i-1]), ContourArea(candidates[i]),
			"candidate %d is larger than its predecessor", i)
	}
	assert.Equal(t, 81.0, ContourArea(candidates[0]))
}

func TestRankContours_StableTies(t *testing.T) {
	square := func(x0, size int) Contour {
		return Contour{{x0, 0}, {x0, size}, {x0 + size, size}, {x0 + size, 0}}
	}
	a := square(0, 5)
	b := square(10, 5)
	c := square(20, 5)
	big := square(30, 8)
	line := Contour{{0, 50}, {10, 50}}

	ranked := rankContours([]Contour{a, line, b, big, c}, 10)
	assert.Equal(t, []Contour{big, a, b, c, line}, ranked)

	ranked = rankContours([]Contour{a, line, b, big, c}, 2)
	assert.Equal(t, []Contour{big, a}, ranked)
}

func TestCompressChain(t *testing.T) {
	tests := []struct {
		name string
		in   Contour
		want Contour
	}{
		{
			name: "short chain unchanged",
			in:   Contour{{0, 0}, {1, 0}},
			want: Contour{{0, 0}, {1, 0}},
		},
		{
			name: "square outline",
			in: Contour{
				{0, 0}, {0, 1}, {0, 2}, {1, 2}, {2, 2}, {2, 1}, {2, 0}, {1, 0},
			},
			want: Contour{{0, 0}, {0, 2}, {2, 2}, {2, 0}},
		},
		{
			name: "diagonal run",
			in:   Contour{{0, 0}, {1, 1}, {2, 2}, {3, 3}, {2, 3}, {1, 3}, {0, 3}, {0, 2}, {0, 1}},
			want: Contour{{0, 0}, {3, 3}, {0, 3}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, compressChain(tt.in))
		})
	}
}
