package omr

import (
	"fmt"
	"image"

	"github.com/ironsheep/omr-tools-mcp/internal/detection"
	"github.com/ironsheep/omr-tools-mcp/internal/imaging"
)

// HeaderReader reads free text, such as a student name or ID, from a region
// of the aligned sheet.
type HeaderReader interface {
	ReadHeader(img image.Image, r image.Rectangle) (string, error)
}

// Result is the outcome of marking one sheet.
type Result struct {
	// Score is the number of questions answered as in the key.
	Score int `json:"score"`

	// Total is the length of the key.
	Total int `json:"total"`

	// Answers holds one option index or NoMark per question.
	Answers []int `json:"answers"`

	// Letters is Answers for display, with "None" for NoMark.
	Letters []string `json:"letters"`

	// Corners are the sheet corners found in the scan.
	Corners detection.Quad `json:"corners"`

	// Header is the text read from the layout's header region, if any.
	Header string `json:"header,omitempty"`
}

type config struct {
	layout Layout
	header HeaderReader
}

// Option configures MarkSheet and MarkImage.
type Option func(*config)

// WithLayout marks the sheet using l instead of DefaultLayout.
func WithLayout(l Layout) Option {
	return func(c *config) { c.layout = l }
}

// WithHeaderReader reads the layout's HeaderRegion with h after alignment.
// Without a HeaderRegion the reader is not called.
func WithHeaderReader(h HeaderReader) Option {
	return func(c *config) { c.header = h }
}

// MarkSheet loads the scan at path, aligns it, extracts the answers, and
// scores them against key.
//
// A missing file fails with ErrImageNotFound before any processing. No
// partial result is returned on error.
func MarkSheet(path string, key []string, opts ...Option) (*Result, error) {
	img, err := imaging.LoadImage(path)
	if err != nil {
		return nil, err
	}
	return MarkImage(img, key, opts...)
}

// MarkImage is MarkSheet for an image that is already decoded.
func MarkImage(img image.Image, key []string, opts ...Option) (*Result, error) {
	cfg := config{layout: DefaultLayout()}
	for _, opt := range opts {
		opt(&cfg)
	}

	alignment, err := Align(img, cfg.layout)
	if err != nil {
		return nil, err
	}

	answers, err := ExtractAnswers(alignment.Image, cfg.layout)
	if err != nil {
		return nil, err
	}

	keyIdx, err := DecodeKey(key, cfg.layout.Options)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Score:   CountMatches(answers, keyIdx),
		Total:   len(key),
		Answers: answers,
		Letters: Letters(answers),
		Corners: alignment.Corners,
	}

	if cfg.header != nil && cfg.layout.HeaderRegion != nil {
		text, err := cfg.header.ReadHeader(alignment.Image, cfg.layout.HeaderRegion.Rect())
		if err != nil {
			return nil, fmt.Errorf("failed to read header: %w", err)
		}
		result.Header = text
	}

	return result, nil
}
