package omr

import (
	"image"
	"strconv"

	"github.com/ironsheep/omr-tools-mcp/internal/imaging"
)

// Overlay colors.
const (
	ColorCorrect  = "#2ECC40"
	ColorWrong    = "#FF4136"
	ColorUnscored = "#0074D9"
	ColorBlank    = "#AAAAAA"
)

// OverlayBoxes builds the annotation for a marked sheet.
//
// The chosen cell of every answered question is outlined: green when it
// matches the key, red when it does not, blue when the key is too short to
// score it. For wrong or unanswered questions the expected cell is outlined
// as well, green for wrong answers and gray for blanks. Each row in the
// canvas is labeled with its 1-based question number. key may be nil.
func OverlayBoxes(layout Layout, answers, key []int) []imaging.CellBox {
	canvas := image.Rect(0, 0, layout.CanvasWidth, layout.CanvasHeight)
	var boxes []imaging.CellBox

	for q, answer := range answers {
		if !layout.CellRect(q, 0).Overlaps(canvas) {
			continue
		}

		label := strconv.Itoa(q + 1)
		hasKey := q < len(key)

		switch {
		case answer != NoMark && !hasKey:
			boxes = append(boxes, imaging.CellBox{Rect: layout.CellRect(q, answer), Color: ColorUnscored})
		case answer != NoMark && answer == key[q]:
			boxes = append(boxes, imaging.CellBox{Rect: layout.CellRect(q, answer), Color: ColorCorrect})
		case answer != NoMark:
			boxes = append(boxes,
				imaging.CellBox{Rect: layout.CellRect(q, answer), Color: ColorWrong},
				imaging.CellBox{Rect: layout.CellRect(q, key[q]), Color: ColorCorrect})
		case hasKey:
			boxes = append(boxes, imaging.CellBox{Rect: layout.CellRect(q, key[q]), Color: ColorBlank})
		}

		boxes = append(boxes, imaging.CellBox{Rect: labelRect(layout, q), Color: ColorBlank, Label: label})
	}

	return boxes
}

// Annotate draws OverlayBoxes over an aligned sheet.
func Annotate(aligned image.Image, layout Layout, answers, key []int) (*imaging.ImageResult, error) {
	return imaging.Annotate(aligned, OverlayBoxes(layout, answers, key))
}

// labelRect is a zero-size anchor left of the first cell of a row, so the
// label is drawn without an outline of its own.
func labelRect(layout Layout, question int) image.Rectangle {
	r := layout.CellRect(question, 0)
	return image.Rect(r.Min.X-4, r.Min.Y, r.Min.X-4, r.Max.Y)
}
