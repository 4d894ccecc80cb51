package detection

import (
	"image"
	"math"
	"testing"

	"github.com/ironsheep/omr-tools-mcp/internal/imaging"
)

func maskFromRows(rows []string) ([]bool, int, int) {
	height := len(rows)
	width := len(rows[0])
	mask := make([]bool, width*height)
	for y, row := range rows {
		for x, ch := range row {
			mask[y*width+x] = ch == '#'
		}
	}
	return mask, width, height
}

func TestFindComponents(t *testing.T) {
	mask, w, h := maskFromRows([]string{
		"###.......",
		"#.#.......",
		"###....#..",
		"........#.",
		".......#.#",
		"..........",
	})

	components := findComponents(mask, w, h, 1)
	if len(components) != 2 {
		t.Fatalf("got %d components, want 2", len(components))
	}

	if len(components[0].pixels) != 8 {
		t.Errorf("ring: got %d pixels, want 8", len(components[0].pixels))
	}
	if components[0].bounds != (Bounds{X1: 0, Y1: 0, X2: 2, Y2: 2}) {
		t.Errorf("ring bounds: got %+v", components[0].bounds)
	}

	// Diagonal neighbors join through 8-connectivity
	if len(components[1].pixels) != 4 {
		t.Errorf("diagonal component: got %d pixels, want 4", len(components[1].pixels))
	}
}

func TestFindComponents_MinPixels(t *testing.T) {
	mask, w, h := maskFromRows([]string{
		"#....",
		".....",
		"..###",
	})

	components := findComponents(mask, w, h, 2)
	if len(components) != 1 {
		t.Fatalf("got %d components, want 1 (single pixel dropped)", len(components))
	}
}

func TestOutermost(t *testing.T) {
	components := []component{
		{bounds: Bounds{X1: 0, Y1: 0, X2: 100, Y2: 100}},
		{bounds: Bounds{X1: 10, Y1: 10, X2: 20, Y2: 20}},
		{bounds: Bounds{X1: 90, Y1: 90, X2: 120, Y2: 120}},
		{bounds: Bounds{X1: 200, Y1: 0, X2: 220, Y2: 20}},
		{bounds: Bounds{X1: 200, Y1: 0, X2: 220, Y2: 20}},
	}

	kept := outermost(components)
	if len(kept) != 3 {
		t.Fatalf("got %d components, want 3", len(kept))
	}
	if kept[0].bounds != components[0].bounds || kept[1].bounds != components[2].bounds ||
		kept[2].bounds != components[3].bounds {
		t.Errorf("unexpected survivors: %+v", kept)
	}
}

func TestConvexHull(t *testing.T) {
	var points []image.Point
	// Filled 5x5 block: only the four corners are hull vertices
	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			points = append(points, image.Point{X: x, Y: y})
		}
	}

	hull := convexHull(points)
	if len(hull) != 4 {
		t.Fatalf("hull has %d vertices, want 4: %v", len(hull), hull)
	}
	if a := polygonArea(hull); a != 16 {
		t.Errorf("hull area: got %v, want 16", a)
	}
}

func TestConvexHull_FewPoints(t *testing.T) {
	hull := convexHull([]image.Point{{X: 1, Y: 2}, {X: 3, Y: 4}})
	if len(hull) != 2 || hull[0] != (imaging.Point{X: 1, Y: 2}) {
		t.Errorf("got %v", hull)
	}
}

func TestPolygonAreaAndPerimeter(t *testing.T) {
	square := []imaging.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}}
	if a := polygonArea(square); a != 100 {
		t.Errorf("area: got %v, want 100", a)
	}
	if p := perimeter(square); p != 40 {
		t.Errorf("perimeter: got %v, want 40", p)
	}

	// Orientation does not matter
	reversed := []imaging.Point{square[3], square[2], square[1], square[0]}
	if a := polygonArea(reversed); a != 100 {
		t.Errorf("reversed area: got %v, want 100", a)
	}

	if polygonArea(square[:2]) != 0 {
		t.Error("two points enclose no area")
	}
}

func TestApproxPolygon(t *testing.T) {
	tests := []struct {
		name    string
		poly    []imaging.Point
		epsilon float64
		want    int
	}{
		{
			name: "square with chamfered corners",
			poly: []imaging.Point{
				{X: 1, Y: 0}, {X: 49, Y: 0}, {X: 50, Y: 1}, {X: 50, Y: 49},
				{X: 49, Y: 50}, {X: 1, Y: 50}, {X: 0, Y: 49}, {X: 0, Y: 1},
			},
			epsilon: 4,
			want:    4,
		},
		{
			name: "tight epsilon keeps chamfers",
			poly: []imaging.Point{
				{X: 1, Y: 0}, {X: 49, Y: 0}, {X: 50, Y: 1}, {X: 50, Y: 49},
				{X: 49, Y: 50}, {X: 1, Y: 50}, {X: 0, Y: 49}, {X: 0, Y: 1},
			},
			epsilon: 0.1,
			want:    8,
		},
		{
			name:    "triangle",
			poly:    []imaging.Point{{X: 0, Y: 0}, {X: 40, Y: 0}, {X: 20, Y: 30}},
			epsilon: 1,
			want:    3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := approxPolygon(tt.poly, tt.epsilon)
			if len(got) != tt.want {
				t.Errorf("got %d vertices, want %d: %v", len(got), tt.want, got)
			}
		})
	}
}

func TestApproxPolygon_StartOnChamfer(t *testing.T) {
	// Hull of a dilated marker outline: each corner is cut by three
	// vertices, and vertex 0 lies on the top-left cut.
	hull := []imaging.Point{
		{X: 28, Y: 32}, {X: 29, Y: 29}, {X: 32, Y: 28},
		{X: 68, Y: 28}, {X: 71, Y: 29}, {X: 72, Y: 32},
		{X: 72, Y: 68}, {X: 71, Y: 71}, {X: 68, Y: 72},
		{X: 32, Y: 72}, {X: 29, Y: 71}, {X: 28, Y: 68},
	}

	got := approxPolygon(hull, 0.02*perimeter(hull))
	if len(got) != 4 {
		t.Fatalf("got %d vertices, want 4: %v", len(got), got)
	}

	// One vertex per corner, each within the corner's cut
	corners := []imaging.Point{{X: 28, Y: 28}, {X: 72, Y: 28}, {X: 72, Y: 72}, {X: 28, Y: 72}}
	for _, c := range corners {
		near := 0
		for _, v := range got {
			if math.Abs(v.X-c.X) <= 4 && math.Abs(v.Y-c.Y) <= 4 {
				near++
			}
		}
		if near != 1 {
			t.Errorf("corner (%v, %v): %d vertices nearby, want 1: %v", c.X, c.Y, near, got)
		}
	}
}

func TestSegmentDistance(t *testing.T) {
	a := imaging.Point{X: 0, Y: 0}
	b := imaging.Point{X: 10, Y: 0}

	tests := []struct {
		p    imaging.Point
		want float64
	}{
		{imaging.Point{X: 5, Y: 3}, 3},
		{imaging.Point{X: -4, Y: 3}, 5},
		{imaging.Point{X: 13, Y: 4}, 5},
	}
	for _, tt := range tests {
		if got := segmentDistance(tt.p, a, b); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("segmentDistance(%v): got %v, want %v", tt.p, got, tt.want)
		}
	}

	if got := segmentDistance(imaging.Point{X: 3, Y: 4}, a, a); math.Abs(got-5) > 1e-9 {
		t.Errorf("zero-length segment: got %v, want 5", got)
	}
}
