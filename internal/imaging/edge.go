package imaging

import (
	"image"
	"math"
)

// CannyEdges performs Canny edge detection on a luminance plane.
//
// The result is a plane of the same size where 255 marks an edge pixel and 0
// marks everything else.
//
// Parameters:
//   - gray: Source luminance plane, anchored at (0,0) (see GrayPlane).
//   - thresholdLow: Low hysteresis threshold on the 0-255 gradient scale.
//     Pixels below it are never edges.
//   - thresholdHigh: High hysteresis threshold. Pixels at or above it are
//     strong edges and seed edge tracking.
//
// # Algorithm
//
//  1. Gaussian blur: 5x5 kernel to reduce scanner noise
//
//  2. Gradient computation: Sobel operators for X and Y gradients
//     magnitude = |Gx| + |Gy| (L1, the scale OpenCV's default Canny
//     thresholds are expressed in)
//
//  3. Non-maximum suppression: Thin edges to 1-pixel width by keeping only
//     local maxima in the gradient direction (quantized to 4 sectors)
//
//  4. Hysteresis: weak pixels (between the two thresholds) are kept only when
//     they are 8-connected, directly or through other weak pixels, to a strong
//     pixel
//
// Buffers are flat float32 slices; a full-page 300 DPI scan is close to nine
// million pixels.
func CannyEdges(gray *image.Gray, thresholdLow, thresholdHigh int) *image.Gray {
	width := gray.Rect.Dx()
	height := gray.Rect.Dy()
	result := image.NewGray(image.Rect(0, 0, width, height))
	if width < 3 || height < 3 {
		return result
	}

	plane := make([]float32, width*height)
	for y := 0; y < height; y++ {
		row := gray.Pix[y*gray.Stride : y*gray.Stride+width]
		for x, v := range row {
			plane[y*width+x] = float32(v)
		}
	}

	blurred := gaussianBlur(plane, width, height)

	magnitude := make([]float32, width*height)
	sector := make([]uint8, width*height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			ym := clamp(y-1, 0, height-1) * width
			yp := clamp(y+1, 0, height-1) * width
			yc := y * width
			xm := clamp(x-1, 0, width-1)
			xp := clamp(x+1, 0, width-1)

			gx := (blurred[ym+xp] + 2*blurred[yc+xp] + blurred[yp+xp]) -
				(blurred[ym+xm] + 2*blurred[yc+xm] + blurred[yp+xm])
			gy := (blurred[yp+xm] + 2*blurred[yp+x] + blurred[yp+xp]) -
				(blurred[ym+xm] + 2*blurred[ym+x] + blurred[ym+xp])

			idx := yc + x
			magnitude[idx] = gradientMagnitude(gx, gy)
			sector[idx] = gradientSector(gx, gy)
		}
	}

	// Non-maximum suppression
	suppressed := make([]float32, width*height)
	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			idx := y*width + x
			mag := magnitude[idx]
			if mag == 0 {
				continue
			}

			var n1, n2 float32
			switch sector[idx] {
			case 0: // horizontal gradient, compare left/right
				n1, n2 = magnitude[idx-1], magnitude[idx+1]
			case 1: // 45° (y grows downward)
				n1, n2 = magnitude[idx-width-1], magnitude[idx+width+1]
			case 2: // vertical gradient, compare up/down
				n1, n2 = magnitude[idx-width], magnitude[idx+width]
			default: // 135°
				n1, n2 = magnitude[idx-width+1], magnitude[idx+width-1]
			}

			if mag >= n1 && mag >= n2 {
				suppressed[idx] = mag
			}
		}
	}

	// Double threshold and edge tracking by hysteresis
	low := float32(thresholdLow)
	high := float32(thresholdHigh)
	stack := make([]int, 0, 1024)

	for idx, v := range suppressed {
		if v >= high && result.Pix[idx] == 0 {
			result.Pix[idx] = 255
			stack = append(stack, idx)
		}

		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			cx, cy := cur%width, cur/width

			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := cx+dx, cy+dy
					if nx < 0 || nx >= width || ny < 0 || ny >= height {
						continue
					}
					n := ny*width + nx
					if result.Pix[n] == 0 && suppressed[n] >= low {
						result.Pix[n] = 255
						stack = append(stack, n)
					}
				}
			}
		}
	}

	return result
}

// EdgeDetect runs CannyEdges on any image and returns the edge map as base64 PNG.
//
// Recommended starting points:
//   - Clean printed sheets: thresholdLow=75, thresholdHigh=200
//   - Phone photographs: thresholdLow=50, thresholdHigh=150
func EdgeDetect(img image.Image, thresholdLow, thresholdHigh int) (*ImageResult, error) {
	return EncodePNG(CannyEdges(GrayPlane(img), thresholdLow, thresholdHigh))
}

// gradientMagnitude is the L1 norm of a Sobel gradient.
func gradientMagnitude(gx, gy float32) float32 {
	if gx < 0 {
		gx = -gx
	}
	if gy < 0 {
		gy = -gy
	}
	return gx + gy
}

// gradientSector quantizes a gradient direction into one of four sectors:
// 0 (horizontal), 1 (45°), 2 (vertical), 3 (135°).
func gradientSector(gx, gy float32) uint8 {
	angle := math.Atan2(float64(gy), float64(gx))
	if angle < 0 {
		angle += math.Pi
	}
	switch {
	case angle < math.Pi/8 || angle >= 7*math.Pi/8:
		return 0
	case angle < 3*math.Pi/8:
		return 1
	case angle < 5*math.Pi/8:
		return 2
	default:
		return 3
	}
}

// gaussianBlur applies a 5x5 Gaussian blur to reduce noise before edge detection.
//
// Uses a standard 5x5 Gaussian kernel with sigma ≈ 1.4:
//
//	1  4  7  4  1
//	4 16 26 16  4
//	7 26 41 26  7
//	4 16 26 16  4
//	1  4  7  4  1
//
// Total kernel sum = 273, used for normalization.
// Border pixels use clamped (replicated) edge values.
func gaussianBlur(plane []float32, width, height int) []float32 {
	kernel := [5][5]float32{
		{1, 4, 7, 4, 1},
		{4, 16, 26, 16, 4},
		{7, 26, 41, 26, 7},
		{4, 16, 26, 16, 4},
		{1, 4, 7, 4, 1},
	}
	const kernelSum = 273.0

	result := make([]float32, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var sum float32
			for ky := -2; ky <= 2; ky++ {
				py := clamp(y+ky, 0, height-1) * width
				for kx := -2; kx <= 2; kx++ {
					px := clamp(x+kx, 0, width-1)
					sum += plane[py+px] * kernel[ky+2][kx+2]
				}
			}
			result[y*width+x] = sum / kernelSum
		}
	}
	return result
}

// clamp constrains an integer value to the range [min, max].
// Used for boundary handling in convolution operations.
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
