// Package imaging provides the low-level image operations behind answer-sheet
// marking.
//
// This package implements decoding, grayscale conversion, Canny edge detection,
// Otsu binarization, perspective transforms, and annotated PNG output. All
// operations work with standard Go image.Image types and use a coordinate system
// where (0,0) is at the top-left corner, X increases rightward, and Y increases
// downward.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - Rectangles follow image.Rectangle: Min is inclusive, Max is exclusive
//
// Planes produced by GrayPlane and CannyEdges are always anchored at (0,0),
// regardless of the bounds of the source image.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Individual image operations
// are stateless and can be called concurrently on different images.
//
// # Error Handling
//
// Loading distinguishes a missing file (ErrImageNotFound) from unreadable data
// (ErrImageDecode). Transform construction reports degenerate point sets with
// ErrSingularTransform instead of producing undefined numeric output.
package imaging
