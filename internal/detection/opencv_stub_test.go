//go:build !gocv
// +build !gocv

package detection

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectPlateOpenCV_Unavailable(t *testing.T) {
	assert.False(t, OpenCVAvailable)

	result, err := DetectPlateOpenCV(createPlateImage(160, 120, 40, 30, 120, 70))
	assert.ErrorIs(t, err, ErrOpenCVUnavailable)
	assert.Nil(t, result)
}
