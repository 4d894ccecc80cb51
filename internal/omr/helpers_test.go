package omr

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/ironsheep/omr-tools-mcp/internal/imaging"
)

// cell identifies one option of one question.
type cell struct{ q, opt int }

// blankCanvas returns a white aligned canvas for layout.
func blankCanvas(l Layout) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, l.CanvasWidth, l.CanvasHeight))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	return img
}

// shade paints r black.
func shade(img *image.RGBA, r image.Rectangle) {
	draw.Draw(img, r, image.NewUniform(color.Black), image.Point{}, draw.Src)
}

// testLayout is a small sheet with generous spacing, so shaded cells stay
// well apart after a slightly imperfect alignment.
func testLayout() Layout {
	return Layout{
		CanvasWidth:   400,
		CanvasHeight:  600,
		Questions:     10,
		Options:       4,
		CellSize:      20,
		OriginX:       80,
		OriginY:       80,
		SpacingX:      40,
		SpacingY:      45,
		FillThreshold: 0.7,
		CannyLow:      75,
		CannyHigh:     200,
		ApproxEpsilon: 0.02,
	}
}

// renderScan draws a scan of a sheet: the canvas of l placed margin pixels
// inside a white page, 40 pixel corner markers flush with the canvas corners,
// and each shaded cell painted pad pixels larger than the cell on every side.
func renderScan(l Layout, margin, pad int, shaded []cell) *image.RGBA {
	const markerSize = 40
	w, h := l.CanvasWidth, l.CanvasHeight

	img := image.NewRGBA(image.Rect(0, 0, w+2*margin, h+2*margin))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	origin := image.Pt(margin, margin)
	for _, r := range []image.Rectangle{
		image.Rect(0, 0, markerSize, markerSize),
		image.Rect(w-markerSize, 0, w, markerSize),
		image.Rect(w-markerSize, h-markerSize, w, h),
		image.Rect(0, h-markerSize, markerSize, h),
	} {
		shade(img, r.Add(origin))
	}

	for _, c := range shaded {
		shade(img, l.CellRect(c.q, c.opt).Inset(-pad).Add(origin))
	}
	return img
}

// skewScan photographs page at an angle: the page corners land on quad
// (TL, TR, BR, BL) inside a white width x height frame. Pixels are sampled
// nearest-neighbor through the inverse perspective mapping.
func skewScan(t *testing.T, page *image.RGBA, quad [4]imaging.Point, width, height int) *image.RGBA {
	t.Helper()

	pw, ph := float64(page.Rect.Dx()), float64(page.Rect.Dy())
	corners := [4]imaging.Point{{X: 0, Y: 0}, {X: pw, Y: 0}, {X: pw, Y: ph}, {X: 0, Y: ph}}
	toPage, err := imaging.PerspectiveTransform(quad, corners)
	if err != nil {
		t.Fatalf("PerspectiveTransform failed: %v", err)
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			p, ok := toPage.Apply(imaging.Point{X: float64(x) + 0.5, Y: float64(y) + 0.5})
			if !ok || p.X < 0 || p.Y < 0 || p.X >= pw || p.Y >= ph {
				continue
			}
			img.Set(x, y, page.At(int(p.X), int(p.Y)))
		}
	}
	return img
}

// writeScan encodes img as a PNG in a temp dir and returns its path.
func writeScan(t *testing.T, img image.Image) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sheet.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return path
}
