package imaging

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// DefaultOverlayColor is used when a CellBox carries an unparseable color.
const DefaultOverlayColor = "#FF4136"

// CellBox is one rectangle to outline on an annotated sheet.
type CellBox struct {
	// Rect is the outlined region in image coordinates.
	Rect image.Rectangle

	// Color is a hex color such as "#2ECC40". Invalid values fall back to
	// DefaultOverlayColor.
	Color string

	// Label is drawn just left of the rectangle when non-empty. A box with an
	// empty Rect draws only its label.
	Label string
}

// Annotate draws the given boxes over a copy of img and returns it as base64 PNG.
//
// Outlines are 2 pixels thick and drawn just outside each rectangle, so the
// pixels that were measured stay visible. Labels use the 7x13 basic font.
func Annotate(img image.Image, boxes []CellBox) (*ImageResult, error) {
	bounds := img.Bounds()
	result := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(result, result.Bounds(), img, bounds.Min, draw.Src)

	for _, box := range boxes {
		c := parseOverlayColor(box.Color)
		if !box.Rect.Empty() {
			outline(result, box.Rect.Inset(-2), 2, c)
		}
		if box.Label != "" {
			drawLabel(result, box.Rect.Min.X-7*len(box.Label)-4, box.Rect.Min.Y+box.Rect.Dy()/2+4, box.Label, c)
		}
	}

	return EncodePNG(result)
}

// parseOverlayColor converts a hex color using go-colorful.
func parseOverlayColor(hex string) color.RGBA {
	c, err := colorful.Hex(hex)
	if err != nil {
		c, _ = colorful.Hex(DefaultOverlayColor)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// outline strokes the border of r with the given thickness, clipped to img.
func outline(img *image.RGBA, r image.Rectangle, thickness int, c color.RGBA) {
	src := image.NewUniform(c)
	edges := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+thickness),
		image.Rect(r.Min.X, r.Max.Y-thickness, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+thickness, r.Max.Y),
		image.Rect(r.Max.X-thickness, r.Min.Y, r.Max.X, r.Max.Y),
	}
	for _, e := range edges {
		draw.Draw(img, e.Intersect(img.Bounds()), src, image.Point{}, draw.Src)
	}
}

// drawLabel draws text with its baseline at (x, y).
func drawLabel(img *image.RGBA, x, y int, text string, c color.RGBA) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}
