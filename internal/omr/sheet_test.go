package omr

import (
	"errors"
	"image"
	"io/fs"
	"math"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/ironsheep/omr-tools-mcp/internal/imaging"
)

func TestAlign(t *testing.T) {
	l := testLayout()
	scan := renderScan(l, 30, 0, nil)
	// Reference dot well inside the markers, at canvas (200, 300)
	shade(scan, image.Rect(227, 327, 233, 333))

	a, err := Align(scan, l)
	if err != nil {
		t.Fatalf("Align failed: %v", err)
	}

	if a.Image.Bounds().Dx() != l.CanvasWidth || a.Image.Bounds().Dy() != l.CanvasHeight {
		t.Fatalf("aligned size: got %v, want %dx%d", a.Image.Bounds(), l.CanvasWidth, l.CanvasHeight)
	}
	if len(a.Markers) != 4 {
		t.Errorf("got %d markers, want 4", len(a.Markers))
	}

	p, ok := a.Transform.Apply(imaging.Point{X: 230, Y: 330})
	if !ok {
		t.Fatal("dot mapped to infinity")
	}
	if math.Abs(p.X-200) > 4 || math.Abs(p.Y-300) > 4 {
		t.Errorf("dot landed at (%.1f, %.1f), want near (200, 300)", p.X, p.Y)
	}

	c := a.Image.NRGBAAt(int(math.Round(p.X)), int(math.Round(p.Y)))
	if c.R > 100 {
		t.Errorf("aligned dot pixel: got R=%d, want dark", c.R)
	}

	// Corners map onto the canvas corners
	corners := a.Corners.Points()
	want := [4]imaging.Point{{X: 0, Y: 0}, {X: 399, Y: 0}, {X: 399, Y: 599}, {X: 0, Y: 599}}
	for i := range corners {
		got, _ := a.Transform.Apply(corners[i])
		if math.Abs(got.X-want[i].X) > 1e-6 || math.Abs(got.Y-want[i].Y) > 1e-6 {
			t.Errorf("corner %d: got (%.3f, %.3f), want (%.0f, %.0f)", i, got.X, got.Y, want[i].X, want[i].Y)
		}
	}
}

func TestAlign_Errors(t *testing.T) {
	l := testLayout()

	blank := blankCanvas(l)
	if _, err := Align(blank, l); !errors.Is(err, ErrMarkersNotFound) {
		t.Errorf("blank scan: got %v, want ErrMarkersNotFound", err)
	}

	bad := l
	bad.CanvasWidth = 0
	if _, err := Align(renderScan(l, 30, 0, nil), bad); !errors.Is(err, ErrInvalidLayout) {
		t.Errorf("invalid layout: got %v, want ErrInvalidLayout", err)
	}
}

func TestMarkImage(t *testing.T) {
	l := testLayout()
	scan := renderScan(l, 30, 5, []cell{
		{0, 0},
		{1, 1},
		{2, 2},
		{3, 3},
		{4, 0}, {4, 2}, // ambiguous
		{6, 1},
		{9, 3},
	})
	key := []string{"A", "B", "C", "A", "A", "A", "B", "C", "D", "D"}

	res, err := MarkImage(scan, key, WithLayout(l))
	if err != nil {
		t.Fatalf("MarkImage failed: %v", err)
	}

	wantAnswers := []int{0, 1, 2, 3, NoMark, NoMark, 1, NoMark, NoMark, 3}
	if !reflect.DeepEqual(res.Answers, wantAnswers) {
		t.Errorf("Answers: got %v, want %v", res.Answers, wantAnswers)
	}
	wantLetters := []string{"A", "B", "C", "D", "None", "None", "B", "None", "None", "D"}
	if !reflect.DeepEqual(res.Letters, wantLetters) {
		t.Errorf("Letters: got %v, want %v", res.Letters, wantLetters)
	}
	if res.Score != 5 {
		t.Errorf("Score: got %d, want 5", res.Score)
	}
	if res.Total != 10 {
		t.Errorf("Total: got %d, want 10", res.Total)
	}
}

func TestMarkSheet_DefaultLayout(t *testing.T) {
	l := DefaultLayout()
	// Alternate rows only, so padded cells never touch
	path := writeScan(t, renderScan(l, 30, 3, []cell{
		{0, 0},
		{2, 2},
		{4, 1}, {4, 3},
		{44, 3},
	}))

	key := make([]string, 0, 50)
	for i := 0; i < 12; i++ {
		key = append(key, "A", "C", "B", "D")
	}
	key = append(key, "A", "B")

	res, err := MarkSheet(path, key)
	if err != nil {
		t.Fatalf("MarkSheet failed: %v", err)
	}

	if len(res.Answers) != 50 {
		t.Fatalf("got %d answers, want 50", len(res.Answers))
	}
	want := map[int]int{0: 0, 2: 2, 4: NoMark, 44: 3}
	for q, a := range res.Answers {
		w, ok := want[q]
		if !ok {
			w = NoMark
		}
		if a != w {
			t.Errorf("question %d: got %d, want %d", q, a, w)
		}
	}

	// key[0] = A matches; key[2] = B and key[44] = A do not
	if res.Score != 1 || res.Total != 50 {
		t.Errorf("score: got %d/%d, want 1/50", res.Score, res.Total)
	}
}

func TestMarkImage_PerspectiveScan(t *testing.T) {
	l := testLayout()
	page := renderScan(l, 0, 5, []cell{
		{0, 0},
		{1, 3},
		{3, 1},
		{5, 2}, {5, 3}, // ambiguous
		{8, 2},
		{9, 0},
	})

	// Keystoned and rotated a little; no two sides are parallel
	quad := [4]imaging.Point{{X: 60, Y: 40}, {X: 470, Y: 70}, {X: 520, Y: 700}, {X: 30, Y: 650}}
	scan := skewScan(t, page, quad, 560, 760)

	res, err := MarkImage(scan, []string{"A", "D", "A", "B", "A", "C", "A", "A", "C", "B"}, WithLayout(l))
	if err != nil {
		t.Fatalf("MarkImage failed: %v", err)
	}

	wantAnswers := []int{0, 3, NoMark, 1, NoMark, NoMark, NoMark, NoMark, 2, 0}
	if !reflect.DeepEqual(res.Answers, wantAnswers) {
		t.Errorf("Answers: got %v, want %v", res.Answers, wantAnswers)
	}
	// q0, q1, q3, q8 match; q9 is A against B
	if res.Score != 4 {
		t.Errorf("Score: got %d, want 4", res.Score)
	}

	got := res.Corners.Points()
	for i, want := range quad {
		if math.Abs(got[i].X-want.X) > 6 || math.Abs(got[i].Y-want.Y) > 6 {
			t.Errorf("corner %d: got (%.1f, %.1f), want near (%.0f, %.0f)", i, got[i].X, got[i].Y, want.X, want.Y)
		}
	}
}

func TestMarkSheet_NotFound(t *testing.T) {
	_, err := MarkSheet(filepath.Join(t.TempDir(), "missing.png"), []string{"A"})
	if !errors.Is(err, ErrImageNotFound) {
		t.Errorf("got %v, want ErrImageNotFound", err)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("got %v, want fs.ErrNotExist in chain", err)
	}
}

func TestMarkImage_UnknownKeyLetter(t *testing.T) {
	l := testLayout()
	scan := renderScan(l, 30, 5, []cell{{0, 0}})

	res, err := MarkImage(scan, []string{"A", "Q"}, WithLayout(l))
	if !errors.Is(err, ErrUnknownKeyLetter) {
		t.Errorf("got %v, want ErrUnknownKeyLetter", err)
	}
	if res != nil {
		t.Error("no partial result on error")
	}
}

type fakeHeader struct {
	text string
	err  error
	got  image.Rectangle
	size image.Point
}

func (f *fakeHeader) ReadHeader(img image.Image, r image.Rectangle) (string, error) {
	f.got = r
	f.size = img.Bounds().Size()
	return f.text, f.err
}

func TestMarkImage_Header(t *testing.T) {
	l := testLayout()
	l.HeaderRegion = &Region{X: 60, Y: 10, Width: 280, Height: 40}
	scan := renderScan(l, 30, 5, nil)

	h := &fakeHeader{text: "Jordan Lee 1042"}
	res, err := MarkImage(scan, nil, WithLayout(l), WithHeaderReader(h))
	if err != nil {
		t.Fatalf("MarkImage failed: %v", err)
	}
	if res.Header != "Jordan Lee 1042" {
		t.Errorf("Header: got %q", res.Header)
	}
	if h.got != image.Rect(60, 10, 340, 50) {
		t.Errorf("header region: got %v", h.got)
	}
	if h.size != image.Pt(400, 600) {
		t.Errorf("reader saw %v, want the aligned canvas", h.size)
	}

	h.err = errors.New("tesseract unavailable")
	if _, err := MarkImage(scan, nil, WithLayout(l), WithHeaderReader(h)); !errors.Is(err, h.err) {
		t.Errorf("got %v, want header error", err)
	}

	// Without a region the reader is never consulted
	l.HeaderRegion = nil
	idle := &fakeHeader{text: "unused"}
	res, err = MarkImage(scan, nil, WithLayout(l), WithHeaderReader(idle))
	if err != nil {
		t.Fatalf("MarkImage failed: %v", err)
	}
	if res.Header != "" || idle.got != (image.Rectangle{}) {
		t.Error("reader called without a header region")
	}
}
