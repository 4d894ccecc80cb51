package omr

import (
	"fmt"
	"image"

	"github.com/ironsheep/omr-tools-mcp/internal/detection"
)

// MaxOptions is the largest option count a key alphabet can label (A..Z).
const MaxOptions = 26

// Region is a rectangle on the aligned canvas.
type Region struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Rect converts the region to an image.Rectangle.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Layout describes the geometry of an answer sheet after alignment.
//
// All pixel values refer to the aligned canvas, not the raw scan. The cell of
// option o in question q is the CellSize square at
// (OriginX + o*SpacingX, OriginY + q*SpacingY).
type Layout struct {
	CanvasWidth  int `json:"canvas_width"`
	CanvasHeight int `json:"canvas_height"`

	Questions int `json:"questions"`
	Options   int `json:"options"`

	CellSize int `json:"cell_size"`
	OriginX  int `json:"origin_x"`
	OriginY  int `json:"origin_y"`
	SpacingX int `json:"spacing_x"`
	SpacingY int `json:"spacing_y"`

	// FillThreshold is the dark-pixel fraction a cell must exceed to count as
	// shaded.
	FillThreshold float64 `json:"fill_threshold"`

	// Marker detection parameters.
	CannyLow      int     `json:"canny_low"`
	CannyHigh     int     `json:"canny_high"`
	ApproxEpsilon float64 `json:"approx_epsilon"`

	// HeaderRegion, when set, is handed to a HeaderReader after alignment.
	HeaderRegion *Region `json:"header_region,omitempty"`
}

// DefaultLayout returns the standard 50-question, four-option sheet on a
// 1000x1400 canvas.
//
// Rows from question 45 onward start below the bottom of the canvas; their
// cells are empty and always read as NoMark.
func DefaultLayout() Layout {
	return Layout{
		CanvasWidth:   1000,
		CanvasHeight:  1400,
		Questions:     50,
		Options:       4,
		CellSize:      20,
		OriginX:       50,
		OriginY:       50,
		SpacingX:      30,
		SpacingY:      30,
		FillThreshold: 0.7,
		CannyLow:      75,
		CannyHigh:     200,
		ApproxEpsilon: 0.02,
	}
}

// WithDefaults fills zero-valued fields from DefaultLayout. Origins are left
// untouched since zero is a valid origin.
func (l Layout) WithDefaults() Layout {
	d := DefaultLayout()
	if l.CanvasWidth == 0 {
		l.CanvasWidth = d.CanvasWidth
	}
	if l.CanvasHeight == 0 {
		l.CanvasHeight = d.CanvasHeight
	}
	if l.Questions == 0 {
		l.Questions = d.Questions
	}
	if l.Options == 0 {
		l.Options = d.Options
	}
	if l.CellSize == 0 {
		l.CellSize = d.CellSize
	}
	if l.SpacingX == 0 {
		l.SpacingX = d.SpacingX
	}
	if l.SpacingY == 0 {
		l.SpacingY = d.SpacingY
	}
	if l.FillThreshold == 0 {
		l.FillThreshold = d.FillThreshold
	}
	if l.CannyLow == 0 {
		l.CannyLow = d.CannyLow
	}
	if l.CannyHigh == 0 {
		l.CannyHigh = d.CannyHigh
	}
	if l.ApproxEpsilon == 0 {
		l.ApproxEpsilon = d.ApproxEpsilon
	}
	return l
}

// Validate reports the first invalid field, wrapped in ErrInvalidLayout.
func (l Layout) Validate() error {
	switch {
	case l.CanvasWidth <= 0 || l.CanvasHeight <= 0:
		return fmt.Errorf("%w: canvas %dx%d", ErrInvalidLayout, l.CanvasWidth, l.CanvasHeight)
	case l.Questions <= 0:
		return fmt.Errorf("%w: questions must be positive, got %d", ErrInvalidLayout, l.Questions)
	case l.Options <= 0 || l.Options > MaxOptions:
		return fmt.Errorf("%w: options must be 1..%d, got %d", ErrInvalidLayout, MaxOptions, l.Options)
	case l.CellSize <= 0:
		return fmt.Errorf("%w: cell size must be positive, got %d", ErrInvalidLayout, l.CellSize)
	case l.SpacingX <= 0 || l.SpacingY <= 0:
		return fmt.Errorf("%w: spacing must be positive, got %dx%d", ErrInvalidLayout, l.SpacingX, l.SpacingY)
	case l.FillThreshold <= 0 || l.FillThreshold > 1:
		return fmt.Errorf("%w: fill threshold must be in (0,1], got %g", ErrInvalidLayout, l.FillThreshold)
	case l.CannyLow < 0 || l.CannyLow > l.CannyHigh:
		return fmt.Errorf("%w: canny thresholds %d/%d", ErrInvalidLayout, l.CannyLow, l.CannyHigh)
	case l.ApproxEpsilon <= 0:
		return fmt.Errorf("%w: approx epsilon must be positive, got %g", ErrInvalidLayout, l.ApproxEpsilon)
	case l.HeaderRegion != nil && (l.HeaderRegion.Width <= 0 || l.HeaderRegion.Height <= 0):
		return fmt.Errorf("%w: header region %+v", ErrInvalidLayout, *l.HeaderRegion)
	}
	return nil
}

// CellRect returns the cell of the given question and option on the canvas.
func (l Layout) CellRect(question, option int) image.Rectangle {
	x := l.OriginX + option*l.SpacingX
	y := l.OriginY + question*l.SpacingY
	return image.Rect(x, y, x+l.CellSize, y+l.CellSize)
}

// MarkerOptions returns the detection parameters of the layout.
func (l Layout) MarkerOptions() detection.MarkerOptions {
	return detection.MarkerOptions{
		CannyLow:      l.CannyLow,
		CannyHigh:     l.CannyHigh,
		ApproxEpsilon: l.ApproxEpsilon,
	}
}
