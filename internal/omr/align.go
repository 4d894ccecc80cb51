package omr

import (
	"fmt"
	"image"

	"github.com/ironsheep/omr-tools-mcp/internal/detection"
	"github.com/ironsheep/omr-tools-mcp/internal/imaging"
)

// Alignment is a scan rectified onto the layout canvas.
type Alignment struct {
	// Image is the rectified sheet, exactly CanvasWidth x CanvasHeight.
	Image *image.NRGBA

	// Corners are the sheet corners found in the scan.
	Corners detection.Quad

	// Markers are the four detected corner markers.
	Markers []detection.Marker

	// Transform maps scan coordinates onto the canvas.
	Transform imaging.Homography
}

// Align finds the corner markers of img and warps the sheet onto the layout
// canvas.
//
// The top-left, top-right, bottom-right, and bottom-left corners map to
// (0,0), (W-1,0), (W-1,H-1), and (0,H-1) respectively. Canvas pixels that
// fall outside the scan are black.
func Align(img image.Image, layout Layout) (*Alignment, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}

	corners, markers, err := detection.DetectCorners(img, layout.MarkerOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to align sheet: %w", err)
	}

	w := float64(layout.CanvasWidth - 1)
	h := float64(layout.CanvasHeight - 1)
	dst := [4]imaging.Point{{X: 0, Y: 0}, {X: w, Y: 0}, {X: w, Y: h}, {X: 0, Y: h}}

	transform, err := imaging.PerspectiveTransform(corners.Points(), dst)
	if err != nil {
		return nil, fmt.Errorf("failed to align sheet: %w", err)
	}

	warped, err := imaging.WarpPerspective(img, transform, layout.CanvasWidth, layout.CanvasHeight)
	if err != nil {
		return nil, fmt.Errorf("failed to align sheet: %w", err)
	}

	return &Alignment{
		Image:     warped,
		Corners:   corners,
		Markers:   markers,
		Transform: transform,
	}, nil
}
