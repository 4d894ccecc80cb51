package imaging

import (
	"image"

	"github.com/anthonynsimon/bild/segment"
)

// Histogram counts the luminance values of gray inside r.
// The rectangle is clipped to the plane; the second return value is the
// number of pixels counted.
func Histogram(gray *image.Gray, r image.Rectangle) ([256]int, int) {
	var hist [256]int
	r = r.Intersect(gray.Rect)
	if r.Empty() {
		return hist, 0
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		start := gray.PixOffset(r.Min.X, y)
		for _, v := range gray.Pix[start : start+r.Dx()] {
			hist[v]++
		}
	}
	return hist, r.Dx() * r.Dy()
}

// OtsuThreshold selects the luminance level that maximizes the between-class
// variance of hist.
//
// Pixels at or below the returned level form the dark class. The first level
// reaching the maximum variance wins, and a histogram with a single populated
// bin (a uniform region) yields 0.
func OtsuThreshold(hist [256]int) uint8 {
	total := 0
	var mu float64
	for i, c := range hist {
		total += c
		mu += float64(i) * float64(c)
	}
	if total == 0 {
		return 0
	}
	scale := 1.0 / float64(total)
	mu *= scale

	const eps = 1.1920929e-07 // float32 epsilon
	var q1, mu1, maxSigma float64
	level := 0

	for i := 0; i < 256; i++ {
		p := float64(hist[i]) * scale
		mu1 *= q1
		q1 += p
		q2 := 1.0 - q1

		if min(q1, q2) < eps || max(q1, q2) > 1.0-eps {
			continue
		}

		mu1 = (mu1 + float64(i)*p) / q1
		mu2 := (mu - q1*mu1) / q2
		sigma := q1 * q2 * (mu1 - mu2) * (mu1 - mu2)
		if sigma > maxSigma {
			maxSigma = sigma
			level = i
		}
	}

	return uint8(level)
}

// DarkFraction binarizes the region r of gray with an inverted Otsu threshold
// and returns the share of ink pixels.
//
// A pixel is ink when its value is at or below the Otsu level of the region.
// The count is divided by nominalArea rather than by the clipped region size,
// so a cell hanging off the edge of the plane can only lose ink. A region that
// lies entirely outside the plane yields 0. A non-positive nominalArea falls
// back to the area of r.
func DarkFraction(gray *image.Gray, r image.Rectangle, nominalArea int) float64 {
	if nominalArea <= 0 {
		nominalArea = r.Dx() * r.Dy()
	}
	hist, n := Histogram(gray, r)
	if n == 0 || nominalArea <= 0 {
		return 0
	}

	level := int(OtsuThreshold(hist))
	ink := 0
	for v := 0; v <= level; v++ {
		ink += hist[v]
	}
	return float64(ink) / float64(nominalArea)
}

// Binarize renders img as a black-and-white plane using a global Otsu level.
// Ink (at or below the level) is black, paper is white.
func Binarize(img image.Image) *image.Gray {
	gray := GrayPlane(img)
	hist, _ := Histogram(gray, gray.Rect)
	level := OtsuThreshold(hist)
	if level == 255 {
		return image.NewGray(gray.Rect)
	}
	return segment.Threshold(gray, level+1)
}
