package imaging

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

// ErrSingularTransform is returned when four point pairs do not determine a
// perspective transform, e.g. when three source points are collinear.
var ErrSingularTransform = errors.New("perspective transform is singular")

// Point is a sub-pixel image coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Homography is a row-major 3x3 projective matrix with H[8] normalized to 1.
type Homography [9]float64

// Apply maps p through h. The second return value is false when p maps to the
// line at infinity.
func (h Homography) Apply(p Point) (Point, bool) {
	w := h[6]*p.X + h[7]*p.Y + h[8]
	if math.Abs(w) < 1e-12 {
		return Point{}, false
	}
	return Point{
		X: (h[0]*p.X + h[1]*p.Y + h[2]) / w,
		Y: (h[3]*p.X + h[4]*p.Y + h[5]) / w,
	}, true
}

// Invert returns the inverse transform.
func (h Homography) Invert() (Homography, error) {
	a, b, c := h[0], h[1], h[2]
	d, e, f := h[3], h[4], h[5]
	g, k, l := h[6], h[7], h[8]

	det := a*(e*l-f*k) - b*(d*l-f*g) + c*(d*k-e*g)
	if math.Abs(det) < 1e-12 {
		return Homography{}, ErrSingularTransform
	}

	inv := Homography{
		(e*l - f*k) / det, (c*k - b*l) / det, (b*f - c*e) / det,
		(f*g - d*l) / det, (a*l - c*g) / det, (c*d - a*f) / det,
		(d*k - e*g) / det, (b*g - a*k) / det, (a*e - b*d) / det,
	}
	if math.Abs(inv[8]) > 1e-12 {
		s := inv[8]
		for i := range inv {
			inv[i] /= s
		}
	}
	return inv, nil
}

// PerspectiveTransform computes the projective transform mapping each src[i]
// onto dst[i].
//
// The eight unknowns (H[8] fixed to 1) are solved from the standard 8x8
// linear system:
//
//	x' = (h0*x + h1*y + h2) / (h6*x + h7*y + 1)
//	y' = (h3*x + h4*y + h5) / (h6*x + h7*y + 1)
//
// using Gaussian elimination with partial pivoting. Degenerate point sets
// return ErrSingularTransform.
func PerspectiveTransform(src, dst [4]Point) (Homography, error) {
	var m [8][9]float64
	for i := 0; i < 4; i++ {
		x, y := src[i].X, src[i].Y
		u, v := dst[i].X, dst[i].Y
		m[2*i] = [9]float64{x, y, 1, 0, 0, 0, -x * u, -y * u, u}
		m[2*i+1] = [9]float64{0, 0, 0, x, y, 1, -x * v, -y * v, v}
	}

	// Scale-aware tolerance: coordinates are pixels, products reach ~1e7.
	const tol = 1e-9

	for col := 0; col < 8; col++ {
		pivot := col
		for row := col + 1; row < 8; row++ {
			if math.Abs(m[row][col]) > math.Abs(m[pivot][col]) {
				pivot = row
			}
		}
		if math.Abs(m[pivot][col]) < tol {
			return Homography{}, fmt.Errorf("%w: pivot %d vanished", ErrSingularTransform, col)
		}
		m[col], m[pivot] = m[pivot], m[col]

		for row := 0; row < 8; row++ {
			if row == col {
				continue
			}
			factor := m[row][col] / m[col][col]
			if factor == 0 {
				continue
			}
			for k := col; k < 9; k++ {
				m[row][k] -= factor * m[col][k]
			}
		}
	}

	var h Homography
	for i := 0; i < 8; i++ {
		h[i] = m[i][8] / m[i][i]
	}
	h[8] = 1

	for _, v := range h {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Homography{}, ErrSingularTransform
		}
	}
	if _, err := h.Invert(); err != nil {
		return Homography{}, err
	}
	return h, nil
}

// WarpPerspective resamples img onto a width x height canvas through h, which
// maps source coordinates to canvas coordinates.
//
// Each canvas pixel is inverse-mapped into the source and sampled bilinearly.
// Samples falling outside the source read as opaque black.
func WarpPerspective(img image.Image, h Homography, width, height int) (*image.NRGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid canvas size %dx%d", width, height)
	}
	inv, err := h.Invert()
	if err != nil {
		return nil, err
	}

	src := imaging.Clone(img)
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			p, ok := inv.Apply(Point{X: float64(x), Y: float64(y)})
			c := color.NRGBA{A: 255}
			if ok {
				c = sampleBilinear(src, p.X, p.Y)
			}
			off := dst.PixOffset(x, y)
			dst.Pix[off+0] = c.R
			dst.Pix[off+1] = c.G
			dst.Pix[off+2] = c.B
			dst.Pix[off+3] = c.A
		}
	}

	return dst, nil
}

// sampleBilinear interpolates src at (fx, fy). Neighbors outside src
// contribute opaque black.
func sampleBilinear(src *image.NRGBA, fx, fy float64) color.NRGBA {
	width, height := src.Rect.Dx(), src.Rect.Dy()
	if fx <= -1 || fy <= -1 || fx >= float64(width) || fy >= float64(height) {
		return color.NRGBA{A: 255}
	}

	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	ax := fx - float64(x0)
	ay := fy - float64(y0)

	var acc [4]float64
	weights := [4]float64{(1 - ax) * (1 - ay), ax * (1 - ay), (1 - ax) * ay, ax * ay}
	offsets := [4][2]int{{0, 0}, {1, 0}, {0, 1}, {1, 1}}

	for i, o := range offsets {
		w := weights[i]
		if w == 0 {
			continue
		}
		px, py := x0+o[0], y0+o[1]
		if px < 0 || py < 0 || px >= width || py >= height {
			acc[3] += 255 * w
			continue
		}
		off := py*src.Stride + px*4
		acc[0] += float64(src.Pix[off+0]) * w
		acc[1] += float64(src.Pix[off+1]) * w
		acc[2] += float64(src.Pix[off+2]) * w
		acc[3] += float64(src.Pix[off+3]) * w
	}

	return color.NRGBA{
		R: uint8(math.Round(acc[0])),
		G: uint8(math.Round(acc[1])),
		B: uint8(math.Round(acc[2])),
		A: uint8(math.Round(acc[3])),
	}
}
