package detection

import (
	"errors"
	"fmt"
	"image"
	"math"
	"sort"

	"github.com/anthonynsimon/bild/effect"

	"github.com/ironsheep/omr-tools-mcp/internal/imaging"
)

var (
	// ErrMarkersNotFound is returned when fewer than four quadrilateral
	// markers survive detection.
	ErrMarkersNotFound = errors.New("could not detect four corner markers")

	// ErrDegenerateCorners is returned when the ordered corners coincide or
	// enclose no area.
	ErrDegenerateCorners = errors.New("corner markers are degenerate")
)

// MarkerOptions tunes corner-marker detection.
type MarkerOptions struct {
	// CannyLow and CannyHigh are the hysteresis thresholds on the 0-255
	// gradient scale.
	CannyLow  int `json:"canny_low"`
	CannyHigh int `json:"canny_high"`

	// ApproxEpsilon is the polygon approximation tolerance as a fraction of
	// each candidate's perimeter.
	ApproxEpsilon float64 `json:"approx_epsilon"`
}

// DefaultMarkerOptions returns the thresholds used for printed answer sheets.
func DefaultMarkerOptions() MarkerOptions {
	return MarkerOptions{CannyLow: 75, CannyHigh: 200, ApproxEpsilon: 0.02}
}

// Marker is a detected quadrilateral corner-marker candidate.
type Marker struct {
	// Vertices are the four approximated polygon corners in traversal order.
	Vertices []imaging.Point `json:"vertices"`

	// Area is the enclosed area of the candidate's convex outline in square
	// pixels.
	Area float64 `json:"area"`

	// Bounds is the bounding box of the edge pixels forming the candidate.
	Bounds Bounds `json:"bounds"`

	// Center is the mean of the four vertices.
	Center imaging.Point `json:"center"`
}

// Quad is a corner set ordered clockwise from the top-left.
type Quad struct {
	TopLeft     imaging.Point `json:"top_left"`
	TopRight    imaging.Point `json:"top_right"`
	BottomRight imaging.Point `json:"bottom_right"`
	BottomLeft  imaging.Point `json:"bottom_left"`
}

// Points returns the corners in TL, TR, BR, BL order.
func (q Quad) Points() [4]imaging.Point {
	return [4]imaging.Point{q.TopLeft, q.TopRight, q.BottomRight, q.BottomLeft}
}

// Candidate is an outer contour together with its polygon approximation.
// Only candidates with four vertices can become markers.
type Candidate struct {
	Vertices []imaging.Point `json:"vertices"`
	Area     float64         `json:"area"`
	Bounds   Bounds          `json:"bounds"`
}

// FindCandidates returns every outer contour of the edge map, approximated to
// a polygon and sorted by area (largest first).
//
// # Algorithm
//
//  1. Canny edges on the luminance plane
//  2. Dilation by one pixel (bild) so that hairline gaps at marker corners
//     close before grouping
//  3. 8-connected components of edge pixels; components whose bounding box
//     lies inside another component's bounding box are dropped, leaving the
//     outer contours only
//  4. Convex hull of each component, with area and perimeter
//  5. Douglas-Peucker approximation with epsilon = ApproxEpsilon * perimeter
func FindCandidates(img image.Image, opts MarkerOptions) []Candidate {
	gray := imaging.GrayPlane(img)
	edges := imaging.CannyEdges(gray, opts.CannyLow, opts.CannyHigh)
	dilated := effect.Dilate(edges, 1)

	width, height := edges.Rect.Dx(), edges.Rect.Dy()
	mask := make([]bool, width*height)
	for y := 0; y < height; y++ {
		row := dilated.Pix[y*dilated.Stride : y*dilated.Stride+width*4]
		for x := 0; x < width; x++ {
			mask[y*width+x] = row[x*4] > 0
		}
	}

	components := outermost(findComponents(mask, width, height, minComponentPixels))

	candidates := make([]Candidate, 0, len(components))
	for _, c := range components {
		hull := convexHull(c.pixels)
		area := polygonArea(hull)
		if area == 0 {
			continue
		}
		candidates = append(candidates, Candidate{
			Vertices: approxPolygon(hull, opts.ApproxEpsilon*perimeter(hull)),
			Area:     area,
			Bounds:   c.bounds,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Area > candidates[j].Area
	})
	return candidates
}

// FindMarkers detects the four corner markers of an answer sheet.
//
// Candidates from FindCandidates that approximate to exactly four vertices
// are kept, and the four with the largest area become the markers. When fewer
// than four quadrilaterals exist the result is ErrMarkersNotFound; counting
// happens after the quadrilateral filter, so a sheet either yields four
// usable markers or fails here.
func FindMarkers(img image.Image, opts MarkerOptions) ([]Marker, error) {
	var markers []Marker
	for _, c := range FindCandidates(img, opts) {
		if len(c.Vertices) != 4 {
			continue
		}
		markers = append(markers, Marker{
			Vertices: c.Vertices,
			Area:     c.Area,
			Bounds:   c.Bounds,
			Center:   centroid(c.Vertices),
		})
		if len(markers) == 4 {
			return markers, nil
		}
	}

	return nil, fmt.Errorf("%w: found %d quadrilateral(s)", ErrMarkersNotFound, len(markers))
}

// OrderCorners picks the sheet corners from the marker vertices.
//
// Each corner is the point farthest from the centroid of all points in its
// diagonal direction: top-left maximizes -dx-dy, top-right dx-dy, bottom-right
// dx+dy, and bottom-left -dx+dy (Y grows downward). With one square marker
// near each sheet corner this selects the outer vertex of each marker.
//
// The ordering assumes the sheet is roughly upright. A sheet rotated by more
// than 45 degrees is ordered by its on-image position, not by its printed
// orientation.
//
// ErrDegenerateCorners is returned for fewer than four points, coinciding
// corners, or corners enclosing (almost) no area.
func OrderCorners(points []imaging.Point) (Quad, error) {
	if len(points) < 4 {
		return Quad{}, fmt.Errorf("%w: need at least 4 points, got %d", ErrDegenerateCorners, len(points))
	}

	c := centroid(points)
	scores := [4]func(dx, dy float64) float64{
		func(dx, dy float64) float64 { return -dx - dy },
		func(dx, dy float64) float64 { return dx - dy },
		func(dx, dy float64) float64 { return dx + dy },
		func(dx, dy float64) float64 { return -dx + dy },
	}

	var corners [4]imaging.Point
	for k, score := range scores {
		best := math.Inf(-1)
		for _, p := range points {
			if s := score(p.X-c.X, p.Y-c.Y); s > best {
				best = s
				corners[k] = p
			}
		}
	}

	for i := 0; i < 4; i++ {
		for j := i + 1; j < 4; j++ {
			if corners[i] == corners[j] {
				return Quad{}, fmt.Errorf("%w: corners %d and %d coincide at (%.0f, %.0f)",
					ErrDegenerateCorners, i, j, corners[i].X, corners[i].Y)
			}
		}
	}
	if polygonArea(corners[:]) < 1 {
		return Quad{}, fmt.Errorf("%w: corners enclose no area", ErrDegenerateCorners)
	}

	return Quad{
		TopLeft:     corners[0],
		TopRight:    corners[1],
		BottomRight: corners[2],
		BottomLeft:  corners[3],
	}, nil
}

// DetectCorners runs FindMarkers and orders the vertices of all four markers.
func DetectCorners(img image.Image, opts MarkerOptions) (Quad, []Marker, error) {
	markers, err := FindMarkers(img, opts)
	if err != nil {
		return Quad{}, nil, err
	}

	points := make([]imaging.Point, 0, 16)
	for _, m := range markers {
		points = append(points, m.Vertices...)
	}

	quad, err := OrderCorners(points)
	if err != nil {
		return Quad{}, markers, err
	}
	return quad, markers, nil
}

func centroid(points []imaging.Point) imaging.Point {
	var c imaging.Point
	for _, p := range points {
		c.X += p.X
		c.Y += p.Y
	}
	n := float64(len(points))
	return imaging.Point{X: c.X / n, Y: c.Y / n}
}
