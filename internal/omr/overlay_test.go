package omr

import (
	"testing"
)

func TestOverlayBoxes(t *testing.T) {
	l := testLayout()
	l.Questions = 5

	answers := []int{0, 1, NoMark, 2, 3}
	key := []int{0, 2, 1, 3}

	boxes := OverlayBoxes(l, answers, key)

	count := func(color string) int {
		n := 0
		for _, b := range boxes {
			if b.Color == color && !b.Rect.Empty() {
				n++
			}
		}
		return n
	}

	// q0 correct; q1 wrong + expected; q3 wrong + expected
	if got := count(ColorCorrect); got != 3 {
		t.Errorf("green boxes: got %d, want 3", got)
	}
	if got := count(ColorWrong); got != 2 {
		t.Errorf("red boxes: got %d, want 2", got)
	}
	// q2 blank with a key entry
	if got := count(ColorBlank); got != 1 {
		t.Errorf("gray boxes: got %d, want 1", got)
	}
	// q4 has no key entry
	if got := count(ColorUnscored); got != 1 {
		t.Errorf("blue boxes: got %d, want 1", got)
	}

	labels := 0
	for _, b := range boxes {
		if b.Label != "" {
			labels++
		}
	}
	if labels != 5 {
		t.Errorf("labels: got %d, want 5", labels)
	}
}

func TestOverlayBoxes_SkipsRowsOffCanvas(t *testing.T) {
	l := DefaultLayout()
	answers := make([]int, l.Questions)
	for i := range answers {
		answers[i] = NoMark
	}

	labels := 0
	for _, b := range OverlayBoxes(l, answers, nil) {
		if b.Label != "" {
			labels++
		}
	}
	if labels != 45 {
		t.Errorf("labels: got %d, want 45", labels)
	}
}

func TestAnnotate(t *testing.T) {
	l := testLayout()
	canvas := blankCanvas(l)
	shade(canvas, l.CellRect(0, 1))

	res, err := Annotate(canvas, l, []int{1}, []int{1})
	if err != nil {
		t.Fatalf("Annotate failed: %v", err)
	}
	if res.Width != 400 || res.Height != 600 || res.MimeType != "image/png" {
		t.Errorf("unexpected result: %dx%d %s", res.Width, res.Height, res.MimeType)
	}
}
