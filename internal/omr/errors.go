package omr

import (
	"errors"

	"github.com/ironsheep/omr-tools-mcp/internal/detection"
	"github.com/ironsheep/omr-tools-mcp/internal/imaging"
)

var (
	// ErrInvalidLayout is returned when a Layout fails validation.
	ErrInvalidLayout = errors.New("invalid sheet layout")

	// ErrUnknownKeyLetter is returned when an answer key holds a letter
	// outside the option alphabet.
	ErrUnknownKeyLetter = errors.New("unknown answer key letter")
)

// Re-exported so callers of this package can classify pipeline failures
// without importing the lower layers.
var (
	ErrImageNotFound     = imaging.ErrImageNotFound
	ErrImageDecode       = imaging.ErrImageDecode
	ErrMarkersNotFound   = detection.ErrMarkersNotFound
	ErrDegenerateCorners = detection.ErrDegenerateCorners
	ErrSingularTransform = imaging.ErrSingularTransform
)
