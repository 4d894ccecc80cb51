package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/ironsheep/omr-tools-mcp/internal/imaging"
)

// DefaultLanguage is the Tesseract language used when none is given.
const DefaultLanguage = "eng"

// DefaultScale enlarges header crops before recognition. Handwriting on a
// 1000 pixel wide canvas is small for Tesseract.
const DefaultScale = 2.0

// Bounds represents a rectangular bounding box in pixel coordinates.
type Bounds struct {
	X1 int `json:"x1"` // Left edge
	Y1 int `json:"y1"` // Top edge
	X2 int `json:"x2"` // Right edge
	Y2 int `json:"y2"` // Bottom edge
}

// TextRegion represents a word with its location and OCR confidence.
type TextRegion struct {
	// Text is the recognized word.
	Text string `json:"text"`

	// Confidence is the OCR confidence score (0.0 to 1.0).
	Confidence float64 `json:"confidence"`

	// Bounds is the bounding box around the word in the source image.
	Bounds Bounds `json:"bounds"`
}

// OCRResult contains the results of text extraction.
type OCRResult struct {
	// FullText is all recognized text with original spacing and newlines.
	FullText string `json:"full_text"`

	// Regions contains individual words with their bounding boxes and confidence scores.
	// May be empty if bounding box extraction fails (text will still be in FullText).
	Regions []TextRegion `json:"regions"`
}

// Recognize performs OCR on an in-memory image.
//
// The image is PNG-encoded and handed to Tesseract from memory; no temporary
// file is written. Word bounding boxes are relative to img's top-left pixel.
//
// If word-level bounding box extraction fails (which can happen with some
// Tesseract configurations), the full text is still returned with an empty
// Regions slice.
func Recognize(img image.Image, language string) (*OCRResult, error) {
	if language == "" {
		language = DefaultLanguage
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image for OCR: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(language); err != nil {
		return nil, fmt.Errorf("failed to set language: %w", err)
	}

	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return &OCRResult{FullText: text, Regions: []TextRegion{}}, nil
	}

	regions := make([]TextRegion, 0, len(boxes))
	for _, box := range boxes {
		if box.Word == "" {
			continue
		}
		regions = append(regions, TextRegion{
			Text:       box.Word,
			Confidence: float64(box.Confidence) / 100.0,
			Bounds: Bounds{
				X1: box.Box.Min.X,
				Y1: box.Box.Min.Y,
				X2: box.Box.Max.X,
				Y2: box.Box.Max.Y,
			},
		})
	}

	return &OCRResult{FullText: text, Regions: regions}, nil
}

// ExtractTextFromRegion performs OCR on a rectangular region of an image.
//
// The region is cropped and enlarged by scale (values <= 0 mean 1) before
// recognition. Returned word bounds are mapped back to the coordinates of
// the original image: a word found at (10, 20) in a region starting at
// (100, 50) with scale 1 is reported at (110, 70).
func ExtractTextFromRegion(img image.Image, r image.Rectangle, language string, scale float64) (*OCRResult, error) {
	if scale <= 0 {
		scale = 1
	}

	cropped, err := imaging.Crop(img, r, scale)
	if err != nil {
		return nil, err
	}

	result, err := Recognize(cropped, language)
	if err != nil {
		return nil, err
	}

	for i := range result.Regions {
		b := &result.Regions[i].Bounds
		b.X1 = r.Min.X + int(float64(b.X1)/scale)
		b.Y1 = r.Min.Y + int(float64(b.Y1)/scale)
		b.X2 = r.Min.X + int(float64(b.X2)/scale)
		b.Y2 = r.Min.Y + int(float64(b.Y2)/scale)
	}

	return result, nil
}

// Reader reads the header region of an aligned answer sheet.
type Reader struct {
	// Language is the Tesseract language code; empty means DefaultLanguage.
	Language string

	// Scale enlarges the region before recognition; zero means DefaultScale.
	Scale float64
}

// ReadHeader returns the text in r with surrounding whitespace trimmed and
// internal line breaks collapsed to single spaces.
func (rd Reader) ReadHeader(img image.Image, r image.Rectangle) (string, error) {
	scale := rd.Scale
	if scale == 0 {
		scale = DefaultScale
	}

	result, err := ExtractTextFromRegion(img, r, rd.Language, scale)
	if err != nil {
		return "", err
	}
	return strings.Join(strings.Fields(result.FullText), " "), nil
}

// Version returns the version of the linked Tesseract library.
func Version() string {
	client := gosseract.NewClient()
	defer client.Close()
	return client.Version()
}
