// Package imaging provides image I/O and presentation helpers for the MCP
// server: loading and caching photographs, decoding inline base64 uploads,
// encoding and saving crops, drawing detection overlays, and summarizing a
// crop's colors.
//
// Decoding, encoding, resizing and cloning go through
// github.com/disintegration/imaging, which also applies EXIF orientation so
// that coordinates reported by the detection package refer to the upright
// photograph. Color parsing and conversion use github.com/lucasb-eyer/go-colorful.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based and relative to the
// image's top-left pixel:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//
// Images returned by this package always have their origin at (0,0).
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. The remaining functions
// are stateless and never modify their input images.
package imaging
