package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

// EncodedImage is an image serialized for transport in a JSON response.
type EncodedImage struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// EncodePNG serializes img as a base64 PNG.
func EncodePNG(img image.Image) (*EncodedImage, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	bounds := img.Bounds()
	return &EncodedImage{
		Width:       bounds.Dx(),
		Height:      bounds.Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

// Scale resizes img by factor using Lanczos resampling. A factor of 1 or less
// than or equal to zero returns img unchanged. Each side is at least one
// pixel.
func Scale(img image.Image, factor float64) image.Image {
	if factor == 1.0 || factor <= 0 {
		return img
	}

	bounds := img.Bounds()
	width := int(float64(bounds.Dx()) * factor)
	height := int(float64(bounds.Dy()) * factor)
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	return imaging.Resize(img, width, height, imaging.Lanczos)
}

// SavePNG writes img as a PNG file into dir, creating the directory when
// needed, and returns the written path.
//
// An empty name gets a random "plate-<uuid>.png" file name. A name without
// an extension gets ".png" appended; any other extension is rejected. The
// name must be a bare file name so the file always lands directly in dir.
func SavePNG(img image.Image, dir, name string) (string, error) {
	if name == "" {
		name = "plate-" + uuid.NewString() + ".png"
	}
	if err := checkFileName(name); err != nil {
		return "", err
	}
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case "":
		name += ".png"
	case ".png":
	default:
		return "", fmt.Errorf("unsupported output extension %q: only .png is written", ext)
	}

	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(dir, name)
	if err := imaging.Save(img, path); err != nil {
		return "", fmt.Errorf("failed to save image: %w", err)
	}
	return path, nil
}

// checkFileName rejects names that would resolve outside their directory.
func checkFileName(name string) error {
	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) ||
		filepath.IsAbs(name) || filepath.Base(name) != name || filepath.VolumeName(name) != "" {
		return fmt.Errorf("invalid output name %q: must be a file name without directories", name)
	}
	return nil
}
