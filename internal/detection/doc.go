// Package detection locates the corner markers of a scanned answer sheet.
//
// Printed answer sheets carry a solid square near each corner. Detection finds
// those squares in an arbitrary scan or photograph so the sheet can be
// rectified onto a fixed canvas.
//
// # Pipeline
//
//  1. Edge detection: Canny edges on the luminance plane, dilated by one pixel
//  2. Contours: 8-connected components of edge pixels, keeping only outer
//     contours (components not nested inside another component's bounding box)
//  3. Shape analysis: convex hull, area, perimeter, and Douglas-Peucker
//     polygon approximation
//  4. Selection: the four largest candidates that approximate to exactly four
//     vertices
//  5. Ordering: the outer vertex of each marker becomes the top-left,
//     top-right, bottom-right, or bottom-left sheet corner
//
// Quadrilateral filtering happens before the count check, so FindMarkers
// either returns exactly four markers or ErrMarkersNotFound.
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//
// Vertices and corners are imaging.Point values so they feed directly into
// imaging.PerspectiveTransform.
//
// # Limitations
//
// Corner ordering is positional. A sheet photographed upside down is ordered
// by where its markers appear in the image, not by its printed orientation.
// Markers must be the largest quadrilaterals on the page; a dark page border
// captured in a photograph encloses the markers and hides them.
package detection
