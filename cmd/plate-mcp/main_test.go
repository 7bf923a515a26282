package main

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/ironsheep/plate-tools-mcp/internal/config"
)

func writePNG(t *testing.T, img image.Image) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "car.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode: %v", err)
	}
	return path
}

func solid(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestExtract(t *testing.T) {
	img := solid(160, 120, color.Black)
	for y := 30; y < 70; y++ {
		for x := 40; x < 120; x++ {
			img.Set(x, y, color.White)
		}
	}
	input := writePNG(t, img)
	output := filepath.Join(t.TempDir(), "out", "plate.png")

	cfg := config.Default()
	path, err := extract(&cfg, input, output)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if path != output {
		t.Errorf("path: got %q, want %q", path, output)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("output missing: %v", err)
	}
	defer f.Close()
	crop, err := png.Decode(f)
	if err != nil {
		t.Fatalf("output is not a PNG: %v", err)
	}
	if w := crop.Bounds().Dx(); w < 78 || w > 82 {
		t.Errorf("crop width: got %d, want about 80", w)
	}
}

func TestExtract_NoPlate(t *testing.T) {
	input := writePNG(t, solid(64, 48, color.Gray{Y: 100}))
	output := filepath.Join(t.TempDir(), defaultOutput)

	cfg := config.Default()
	if _, err := extract(&cfg, input, output); err != errNoPlate {
		t.Fatalf("err: got %v, want errNoPlate", err)
	}
	if _, err := os.Stat(output); !os.IsNotExist(err) {
		t.Errorf("no file should be written, stat err = %v", err)
	}
}

func TestExtract_MissingInput(t *testing.T) {
	cfg := config.Default()
	if _, err := extract(&cfg, filepath.Join(t.TempDir(), "absent.png"), defaultOutput); err == nil {
		t.Fatal("expected error for missing input")
	}
}
