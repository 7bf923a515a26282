package detection

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// edgeColumns returns the x coordinates of edge pixels in row y
func edgeColumns(edges *image.Gray, y int) []int {
	var cols []int
	for x := 0; x < edges.Bounds().Dx(); x++ {
		if edges.GrayAt(x, y).Y != 0 {
			cols = append(cols, x)
		}
	}
	return cols
}

func TestDetectEdges_Uniform(t *testing.T) {
	gray := createGrayImage(50, 40, func(x, y int) uint8 { return 128 })

	edges := DetectEdges(gray)
	require.Equal(t, image.Rect(0, 0, 50, 40), edges.Bounds())
	for _, v := range edges.Pix {
		require.Zero(t, v)
	}
}

func TestDetectEdges_VerticalStep(t *testing.T) {
	gray := createGrayImage(100, 20, func(x, y int) uint8 {
		if x >= 50 {
			return 255
		}
		return 0
	})

	edges := DetectEdges(gray)
	for y := 0; y < 20; y++ {
		assert.Equal(t, []int{49}, edgeColumns(edges, y), "row %d", y)
	}
}

func TestDetectEdges_Binary(t *testing.T) {
	img := createPlateImage(80, 60, 20, 15, 60, 45)
	smoothed, err := Smooth(img)
	require.NoError(t, err)

	edges := DetectEdges(smoothed)
	count := 0
	for _, v := range edges.Pix {
		require.True(t, v == 0 || v == 255, "edge map must be binary, got %d", v)
		if v == 255 {
			count++
		}
	}
	assert.Positive(t, count)
}

func TestDetectEdges_Hysteresis(t *testing.T) {
	// A contrast of 10 gives a gradient of 40: above the low threshold,
	// below the high one.
	weakOnly := createGrayImage(50, 40, func(x, y int) uint8 {
		if x >= 25 {
			return 10
		}
		return 0
	})
	edges := DetectEdges(weakOnly)
	for _, v := range edges.Pix {
		require.Zero(t, v, "isolated weak edges must be discarded")
	}

	// Same weak step in the lower half, joined to a strong step above it
	joined := createGrayImage(50, 40, func(x, y int) uint8 {
		if x < 25 {
			return 0
		}
		if y < 20 {
			return 100
		}
		return 10
	})
	edges = DetectEdges(joined)
	assert.Equal(t, uint8(255), edges.GrayAt(24, 5).Y, "strong edge")
	assert.Equal(t, []int{24}, edgeColumns(edges, 30), "weak edge connected to a strong one")
}

func TestDetectEdges_NonZeroOrigin(t *testing.T) {
	full := createGrayImage(120, 20, func(x, y int) uint8 {
		if x >= 70 {
			return 255
		}
		return 0
	})
	sub := full.SubImage(image.Rect(20, 0, 120, 20)).(*image.Gray)

	edges := DetectEdges(sub)
	require.Equal(t, image.Rect(0, 0, 100, 20), edges.Bounds())
	assert.Equal(t, []int{49}, edgeColumns(edges, 10))
}

func TestDetectEdges_Nil(t *testing.T) {
	assert.Nil(t, DetectEdges(nil))
}

// edgeState parses rows of '#' (strong) and '.' (none) into a state grid
func edgeState(rows ...string) ([]uint8, int, int) {
	width, height := len(rows[0]), len(rows)
	state := make([]uint8, width*height)
	for y, row := range rows {
		for x, c := range row {
			if c == '#' {
				state[y*width+x] = edgeStrong
			}
		}
	}
	return state, width, height
}

func TestBridgeGaps_CornerGap(t *testing.T) {
	// A horizontal chain ending above a descending one, one pixel apart
	state, width, height := edgeState(
		"........",
		"........",
		"........",
		".######.",
		"........",
		"......#.",
		".....#..",
		".....#..",
		".....#..",
	)
	magnitude := make([]int, width*height)
	magnitude[4*width+5] = 50
	magnitude[4*width+6] = 300
	magnitude[4*width+7] = 100

	bridgeGaps(state, magnitude, width, height, CannyLowThreshold)

	assert.Equal(t, edgeStrong, state[4*width+6], "strongest gap pixel is promoted")
	assert.Equal(t, edgeNone, state[4*width+5])
	assert.Equal(t, edgeNone, state[4*width+7])
}

func TestBridgeGaps_WeakGapStaysOpen(t *testing.T) {
	state, width, height := edgeState(
		"........",
		".######.",
		"........",
		"......#.",
		".....#..",
	)
	magnitude := make([]int, width*height)
	for i := range magnitude {
		magnitude[i] = CannyLowThreshold
	}
	before := append([]uint8(nil), state...)

	bridgeGaps(state, magnitude, width, height, CannyLowThreshold)
	assert.Equal(t, before, state)
}

func TestBridgeGaps_LineEndUnchanged(t *testing.T) {
	state, width, height := edgeState(
		"..........",
		".########.",
		"..........",
	)
	magnitude := make([]int, width*height)
	for i := range magnitude {
		magnitude[i] = 1000
	}
	before := append([]uint8(nil), state...)

	bridgeGaps(state, magnitude, width, height, CannyLowThreshold)
	assert.Equal(t, before, state, "a straight chain has nothing to bridge to")
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0, clamp(-3, 0, 9))
	assert.Equal(t, 9, clamp(12, 0, 9))
	assert.Equal(t, 4, clamp(4, 0, 9))
}
