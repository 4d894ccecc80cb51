package detection

import (
	"image"
	"math"
	"sort"

	"github.com/ironsheep/omr-tools-mcp/internal/imaging"
)

// minComponentPixels discards specks of edge noise.
const minComponentPixels = 10

// Bounds represents a rectangular bounding box in pixel coordinates.
//
// (X1, Y1) is the top-left pixel and (X2, Y2) the bottom-right pixel, both
// inclusive.
type Bounds struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// contains reports whether o lies entirely within b.
func (b Bounds) contains(o Bounds) bool {
	return o.X1 >= b.X1 && o.Y1 >= b.Y1 && o.X2 <= b.X2 && o.Y2 <= b.Y2
}

// component is one 8-connected group of foreground pixels.
type component struct {
	pixels []image.Point
	bounds Bounds
}

// findComponents groups the foreground pixels of mask into 8-connected
// components. Components smaller than minPixels are dropped.
//
// mask is a row-major width x height slice where true marks foreground.
func findComponents(mask []bool, width, height, minPixels int) []component {
	visited := make([]bool, len(mask))
	var components []component

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			idx := y*width + x
			if !mask[idx] || visited[idx] {
				continue
			}
			c := floodFill(mask, visited, x, y, width, height)
			if len(c.pixels) >= minPixels {
				components = append(components, c)
			}
		}
	}

	return components
}

// floodFill collects the component containing (startX, startY).
//
// Uses an explicit stack rather than recursion; a marker outline on a 300 DPI
// scan easily runs to thousands of pixels.
func floodFill(mask, visited []bool, startX, startY, width, height int) component {
	c := component{bounds: Bounds{X1: startX, Y1: startY, X2: startX, Y2: startY}}
	stack := []image.Point{{X: startX, Y: startY}}
	visited[startY*width+startX] = true

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		c.pixels = append(c.pixels, p)

		c.bounds.X1 = min(c.bounds.X1, p.X)
		c.bounds.Y1 = min(c.bounds.Y1, p.Y)
		c.bounds.X2 = max(c.bounds.X2, p.X)
		c.bounds.Y2 = max(c.bounds.Y2, p.Y)

		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				nx, ny := p.X+dx, p.Y+dy
				if nx < 0 || nx >= width || ny < 0 || ny >= height {
					continue
				}
				n := ny*width + nx
				if mask[n] && !visited[n] {
					visited[n] = true
					stack = append(stack, image.Point{X: nx, Y: ny})
				}
			}
		}
	}

	return c
}

// outermost keeps only components whose bounding box is not contained in the
// bounding box of another component. The inner rim of a thick printed frame
// and the contents of a box never compete with the box itself.
func outermost(components []component) []component {
	kept := make([]component, 0, len(components))
	for i, c := range components {
		nested := false
		for j, o := range components {
			if i == j || !o.bounds.contains(c.bounds) {
				continue
			}
			// Identical boxes: keep the first one only
			if c.bounds == o.bounds && i < j {
				continue
			}
			nested = true
			break
		}
		if !nested {
			kept = append(kept, c)
		}
	}
	return kept
}

// convexHull returns the convex hull of points in traversal order using
// Andrew's monotone chain. Collinear points are dropped.
func convexHull(points []image.Point) []imaging.Point {
	if len(points) < 3 {
		out := make([]imaging.Point, len(points))
		for i, p := range points {
			out[i] = imaging.Point{X: float64(p.X), Y: float64(p.Y)}
		}
		return out
	}

	sorted := make([]image.Point, len(points))
	copy(sorted, points)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].X != sorted[j].X {
			return sorted[i].X < sorted[j].X
		}
		return sorted[i].Y < sorted[j].Y
	})

	cross := func(o, a, b image.Point) int {
		return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
	}

	lower := make([]image.Point, 0, len(sorted))
	for _, p := range sorted {
		for len(lower) >= 2 && cross(lower[len(lower)-2], lower[len(lower)-1], p) <= 0 {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, p)
	}

	upper := make([]image.Point, 0, len(sorted))
	for i := len(sorted) - 1; i >= 0; i-- {
		p := sorted[i]
		for len(upper) >= 2 && cross(upper[len(upper)-2], upper[len(upper)-1], p) <= 0 {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, p)
	}

	chain := append(lower[:len(lower)-1], upper[:len(upper)-1]...)
	hull := make([]imaging.Point, len(chain))
	for i, p := range chain {
		hull[i] = imaging.Point{X: float64(p.X), Y: float64(p.Y)}
	}
	return hull
}

// polygonArea returns the unsigned area of a closed polygon (shoelace formula).
func polygonArea(poly []imaging.Point) float64 {
	if len(poly) < 3 {
		return 0
	}
	var sum float64
	for i := range poly {
		j := (i + 1) % len(poly)
		sum += poly[i].X*poly[j].Y - poly[j].X*poly[i].Y
	}
	return math.Abs(sum) / 2
}

// perimeter returns the length of a closed polygon.
func perimeter(poly []imaging.Point) float64 {
	if len(poly) < 2 {
		return 0
	}
	var total float64
	for i := range poly {
		j := (i + 1) % len(poly)
		total += math.Hypot(poly[j].X-poly[i].X, poly[j].Y-poly[i].Y)
	}
	return total
}

// approxPolygon simplifies a closed polygon with the Douglas-Peucker algorithm.
//
// The polygon is split at a far-apart vertex pair: A, the vertex farthest
// from vertex 0, and B, the vertex farthest from A. Each of the two chains
// between them is simplified independently, so every removed vertex lies
// within epsilon of the simplified outline. Vertex 0 itself has no special
// standing and is dropped like any other when it sits on a chamfer.
func approxPolygon(poly []imaging.Point, epsilon float64) []imaging.Point {
	n := len(poly)
	if n < 3 {
		return poly
	}

	a := farthestVertex(poly, 0)
	b := farthestVertex(poly, a)
	if a == b {
		return poly
	}

	// Rotate so the outline starts at A; B then sits at index k
	ring := make([]imaging.Point, 0, n+1)
	ring = append(ring, poly[a:]...)
	ring = append(ring, poly[:a]...)
	ring = append(ring, poly[a])
	k := (b - a + n) % n

	first := simplifyChain(ring[:k+1], epsilon)
	second := simplifyChain(ring[k:], epsilon)

	// Drop the shared endpoints so every vertex appears once
	out := make([]imaging.Point, 0, len(first)+len(second))
	out = append(out, first[:len(first)-1]...)
	out = append(out, second[:len(second)-1]...)
	return out
}

// farthestVertex returns the index of the vertex farthest from poly[from].
func farthestVertex(poly []imaging.Point, from int) int {
	p := poly[from]
	best, bestDist := from, -1.0
	for i, q := range poly {
		if d := math.Hypot(q.X-p.X, q.Y-p.Y); d > bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// simplifyChain is the open-chain Douglas-Peucker step. Both endpoints are
// always kept.
func simplifyChain(chain []imaging.Point, epsilon float64) []imaging.Point {
	if len(chain) <= 2 {
		return append([]imaging.Point{}, chain...)
	}

	a, b := chain[0], chain[len(chain)-1]
	split, maxDist := 0, -1.0
	for i := 1; i < len(chain)-1; i++ {
		d := segmentDistance(chain[i], a, b)
		if d > maxDist {
			split, maxDist = i, d
		}
	}

	if maxDist <= epsilon {
		return []imaging.Point{a, b}
	}

	left := simplifyChain(chain[:split+1], epsilon)
	right := simplifyChain(chain[split:], epsilon)
	return append(left[:len(left)-1], right...)
}

// segmentDistance returns the distance from p to the segment a-b.
func segmentDistance(p, a, b imaging.Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return math.Hypot(p.X-a.X, p.Y-a.Y)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / lenSq
	t = math.Max(0, math.Min(1, t))
	return math.Hypot(p.X-(a.X+t*dx), p.Y-(a.Y+t*dy))
}
