// Package imaging holds the image plumbing shared by the pipeline stages:
// decoding, cropping, encoding, grayscale conversion, OCR preparation and
// colour parsing.
//
// Decoded images are normalized to *image.NRGBA with bounds starting at
// (0,0), so callers can treat pixel coordinates as plain offsets.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For regions, the top-left corner is inclusive and the bottom-right is
//     exclusive, as with image.Rectangle
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Individual operations are
// stateless and never modify their input, so they can be called concurrently
// on the same image.
//
// # Error Handling
//
// Functions return errors for invalid inputs such as:
//   - Regions outside the image bounds or with no area
//   - Undecodable or empty images
//   - File I/O errors during image loading
//   - Encoding errors during image output
//
// # Performance Considerations
//
// ImageCache keeps every loaded image in memory until Evict or Clear is
// called. Long-running MCP sessions that touch many photos should evict.
package imaging
