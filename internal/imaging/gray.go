package imaging

import (
	"image"

	"github.com/disintegration/imaging"
)

// GrayPlane converts img to an 8-bit luminance plane anchored at (0,0).
//
// Luminance uses the ITU-R BT.601 weights applied by imaging.Grayscale
// (0.299*R + 0.587*G + 0.114*B). A *image.Gray that already starts at the
// origin is returned as-is.
func GrayPlane(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok && g.Rect.Min == (image.Point{}) {
		return g
	}

	src := imaging.Grayscale(img)
	width, height := src.Bounds().Dx(), src.Bounds().Dy()
	dst := image.NewGray(image.Rect(0, 0, width, height))

	for y := 0; y < height; y++ {
		srcRow := src.Pix[y*src.Stride : y*src.Stride+width*4]
		dstRow := dst.Pix[y*dst.Stride : y*dst.Stride+width]
		for x := range dstRow {
			dstRow[x] = srcRow[x*4]
		}
	}
	return dst
}
