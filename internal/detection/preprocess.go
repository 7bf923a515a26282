package detection

import (
	"fmt"
	"image"
	"math"
	"reflect"

	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/parallel"
)

// ITU-R BT.601 luma weights.
const (
	lumaR = 0.299
	lumaG = 0.587
	lumaB = 0.114
)

// Smooth converts a colour image to grayscale and applies an edge-preserving
// bilateral filter (diameter BilateralDiameter, sigmas BilateralSigmaColor and
// BilateralSigmaSpace).
//
// The returned image always has its origin at (0,0) and never shares memory
// with img.
func Smooth(img image.Image) (*image.Gray, error) {
	if err := validateInput(img); err != nil {
		return nil, err
	}

	gray := toGray(img)
	return bilateralFilter(gray, BilateralDiameter, BilateralSigmaColor, BilateralSigmaSpace), nil
}

// validateInput rejects images the pipeline cannot process.
func validateInput(img image.Image) error {
	if isNilImage(img) {
		return fmt.Errorf("%w: nil image", ErrInvalidInput)
	}

	b := img.Bounds()
	if b.Empty() {
		return fmt.Errorf("%w: empty bounds %v", ErrInvalidInput, b)
	}

	switch m := img.(type) {
	case *image.RGBA:
		return checkPlane("pixel", len(m.Pix), m.Stride, b.Dx()*4, b.Dy())
	case *image.NRGBA:
		return checkPlane("pixel", len(m.Pix), m.Stride, b.Dx()*4, b.Dy())
	case *image.RGBA64:
		return checkPlane("pixel", len(m.Pix), m.Stride, b.Dx()*8, b.Dy())
	case *image.NRGBA64:
		return checkPlane("pixel", len(m.Pix), m.Stride, b.Dx()*8, b.Dy())
	case *image.CMYK:
		return checkPlane("pixel", len(m.Pix), m.Stride, b.Dx()*4, b.Dy())
	case *image.Gray:
		return checkPlane("pixel", len(m.Pix), m.Stride, b.Dx(), b.Dy())
	case *image.Gray16:
		return checkPlane("pixel", len(m.Pix), m.Stride, b.Dx()*2, b.Dy())
	case *image.Alpha:
		return checkPlane("pixel", len(m.Pix), m.Stride, b.Dx(), b.Dy())
	case *image.Alpha16:
		return checkPlane("pixel", len(m.Pix), m.Stride, b.Dx()*2, b.Dy())
	case *image.Paletted:
		return checkPaletted(m)
	case *image.YCbCr:
		return checkYCbCr(m)
	case *image.NYCbCrA:
		if err := checkYCbCr(&m.YCbCr); err != nil {
			return err
		}
		return checkPlane("alpha", len(m.A), m.AStride, b.Dx(), b.Dy())
	}
	return nil
}

// checkPlane verifies that a buffer of size bytes with the given stride holds
// rows of rowBytes for height rows.
func checkPlane(plane string, size, stride, rowBytes, height int) error {
	need := (height-1)*stride + rowBytes
	if stride < rowBytes || size < need {
		return fmt.Errorf("%w: %s buffer holds %d bytes with stride %d, needs %d",
			ErrInvalidInput, plane, size, stride, need)
	}
	return nil
}

func checkPaletted(m *image.Paletted) error {
	b := m.Rect
	if err := checkPlane("pixel", len(m.Pix), m.Stride, b.Dx(), b.Dy()); err != nil {
		return err
	}
	if len(m.Palette) == 0 {
		return fmt.Errorf("%w: empty palette", ErrInvalidInput)
	}
	for y := 0; y < b.Dy(); y++ {
		for _, idx := range m.Pix[y*m.Stride : y*m.Stride+b.Dx()] {
			if int(idx) >= len(m.Palette) {
				return fmt.Errorf("%w: palette index %d out of range (%d colours)",
					ErrInvalidInput, idx, len(m.Palette))
			}
		}
	}
	return nil
}

func checkYCbCr(m *image.YCbCr) error {
	r := m.Rect
	if err := checkPlane("luma", len(m.Y), m.YStride, r.Dx(), r.Dy()); err != nil {
		return err
	}

	cw, ch := r.Dx(), r.Dy()
	switch m.SubsampleRatio {
	case image.YCbCrSubsampleRatio422:
		cw = (r.Max.X+1)/2 - r.Min.X/2
	case image.YCbCrSubsampleRatio420:
		cw = (r.Max.X+1)/2 - r.Min.X/2
		ch = (r.Max.Y+1)/2 - r.Min.Y/2
	case image.YCbCrSubsampleRatio440:
		ch = (r.Max.Y+1)/2 - r.Min.Y/2
	case image.YCbCrSubsampleRatio411:
		cw = (r.Max.X+3)/4 - r.Min.X/4
	case image.YCbCrSubsampleRatio410:
		cw = (r.Max.X+3)/4 - r.Min.X/4
		ch = (r.Max.Y+1)/2 - r.Min.Y/2
	}
	if err := checkPlane("Cb", len(m.Cb), m.CStride, cw, ch); err != nil {
		return err
	}
	return checkPlane("Cr", len(m.Cr), m.CStride, cw, ch)
}

// isNilImage reports whether img is nil or holds a nil pointer of any type.
func isNilImage(img image.Image) bool {
	if img == nil {
		return true
	}
	v := reflect.ValueOf(img)
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return v.IsNil()
	}
	return false
}

// toGray computes BT.601 luma for every pixel and returns it as a zero-origin
// single-channel image.
func toGray(img image.Image) *image.Gray {
	// bild returns the luma replicated across R, G and B of an RGBA image
	// with the source bounds; keep the R channel.
	lum := effect.GrayscaleWithWeights(img, lumaR, lumaG, lumaB)
	b := lum.Bounds()
	width, height := b.Dx(), b.Dy()

	gray := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		src := lum.Pix[y*lum.Stride:]
		dst := gray.Pix[y*gray.Stride:]
		for x := 0; x < width; x++ {
			dst[x] = src[x*4]
		}
	}
	return gray
}

// bilateralTap is one offset inside the circular filter window.
type bilateralTap struct {
	dx, dy int
	weight float64
}

// bilateralFilter smooths a zero-origin grayscale image while preserving
// strong intensity transitions.
//
// Each output pixel is the weighted mean of the neighbours within a circle of
// radius diameter/2, weighted by exp(-d²/2σs²)·exp(-Δ²/2σc²) where d is the
// spatial distance and Δ the intensity difference to the centre pixel.
// Borders are reflected without repeating the edge pixel (…2 1 | 0 1 2…).
//
// Rows are processed in parallel; each row is written by exactly one worker
// and the per-pixel summation order is fixed, so the output is deterministic.
func bilateralFilter(src *image.Gray, diameter int, sigmaColor, sigmaSpace float64) *image.Gray {
	width, height := src.Rect.Dx(), src.Rect.Dy()
	dst := image.NewGray(image.Rect(0, 0, width, height))

	radius := diameter / 2
	colorCoeff := -0.5 / (sigmaColor * sigmaColor)
	spaceCoeff := -0.5 / (sigmaSpace * sigmaSpace)

	var colorWeight [256]float64
	for i := range colorWeight {
		colorWeight[i] = math.Exp(float64(i*i) * colorCoeff)
	}

	taps := make([]bilateralTap, 0, diameter*diameter)
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			r2 := float64(dx*dx + dy*dy)
			if math.Sqrt(r2) > float64(radius) {
				continue
			}
			taps = append(taps, bilateralTap{dx: dx, dy: dy, weight: math.Exp(r2 * spaceCoeff)})
		}
	}

	parallel.Line(height, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < width; x++ {
				center := int(src.Pix[y*src.Stride+x])
				var sum, wsum float64
				for _, t := range taps {
					px := reflect101(x+t.dx, width)
					py := reflect101(y+t.dy, height)
					v := int(src.Pix[py*src.Stride+px])
					diff := v - center
					if diff < 0 {
						diff = -diff
					}
					w := t.weight * colorWeight[diff]
					sum += w * float64(v)
					wsum += w
				}
				dst.Pix[y*dst.Stride+x] = uint8(math.Round(sum / wsum))
			}
		}
	})

	return dst
}

// reflect101 maps an out-of-range index back into [0, n) by mirroring around
// the first and last elements.
func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		} else {
			i = 2*n - 2 - i
		}
	}
	return i
}
