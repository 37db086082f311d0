// Package detection locates the text-bearing region of a sign photograph.
//
// A Strategy reports at most one BoundingBox per image. Two are provided:
//
//   - ContourStrategy: the largest dark filled contour after a global
//     threshold. This is the default and suits dark lettering or a dark
//     plate on a light background.
//   - EdgeDensityStrategy: sliding windows scored by edge density and
//     horizontal structure, for signs where colour alone does not separate
//     the text.
//
// Locate wraps a strategy, crops the original image to the winning box and
// falls back to the whole image when nothing is found.
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//   - Bounding boxes use inclusive top-left and exclusive bottom-right
//
// # Limitations
//
// Both strategies are axis-aligned and single-region. Rotated or perspective
// distorted signs produce a loose box, and signs with several separate text
// blocks yield only the largest (or most text-like) one.
package detection
