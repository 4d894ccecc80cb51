package omr

import (
	"image"

	"github.com/ironsheep/omr-tools-mcp/internal/imaging"
)

// NoMark is the answer for a question with no shaded option, or with more
// than one.
const NoMark = -1

// ExtractAnswers reads the shaded option of every question on an aligned
// sheet.
//
// Each cell is binarized with its own inverted Otsu threshold and counts as
// shaded when its dark fraction exceeds layout.FillThreshold. A question with
// exactly one shaded option yields that option's index. No shaded option
// yields NoMark, and so does a second shaded option, in which case the
// remaining options of the question are not examined.
func ExtractAnswers(aligned image.Image, layout Layout) ([]int, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}

	gray := imaging.GrayPlane(aligned)
	area := layout.CellSize * layout.CellSize
	answers := make([]int, layout.Questions)

	for q := range answers {
		answers[q] = NoMark
		for opt := 0; opt < layout.Options; opt++ {
			if imaging.DarkFraction(gray, layout.CellRect(q, opt), area) <= layout.FillThreshold {
				continue
			}
			if answers[q] != NoMark {
				answers[q] = NoMark
				break
			}
			answers[q] = opt
		}
	}

	return answers, nil
}

// MeasureCells returns the dark fraction of every cell, indexed
// [question][option]. It examines every option regardless of ambiguity and
// is meant for diagnostics.
func MeasureCells(aligned image.Image, layout Layout) ([][]float64, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}

	gray := imaging.GrayPlane(aligned)
	area := layout.CellSize * layout.CellSize
	fractions := make([][]float64, layout.Questions)

	for q := range fractions {
		fractions[q] = make([]float64, layout.Options)
		for opt := range fractions[q] {
			fractions[q][opt] = imaging.DarkFraction(gray, layout.CellRect(q, opt), area)
		}
	}

	return fractions, nil
}
