package omr

import (
	"errors"
	"image"
	"testing"
)

func TestExtractAnswers_SingleMarkPerQuestion(t *testing.T) {
	l := DefaultLayout()
	l.Questions = 45 // rows that fit on the 1400 pixel canvas
	canvas := blankCanvas(l)

	for q := 0; q < l.Questions; q++ {
		shade(canvas, l.CellRect(q, q%l.Options))
	}

	answers, err := ExtractAnswers(canvas, l)
	if err != nil {
		t.Fatalf("ExtractAnswers failed: %v", err)
	}
	if len(answers) != l.Questions {
		t.Fatalf("got %d answers, want %d", len(answers), l.Questions)
	}
	for q, a := range answers {
		if a != q%l.Options {
			t.Errorf("question %d: got %d, want %d", q, a, q%l.Options)
		}
	}
}

func TestExtractAnswers_RowsBelowCanvas(t *testing.T) {
	l := DefaultLayout()
	canvas := blankCanvas(l)
	for q := 0; q < l.Questions; q++ {
		shade(canvas, l.CellRect(q, 1))
	}

	answers, err := ExtractAnswers(canvas, l)
	if err != nil {
		t.Fatalf("ExtractAnswers failed: %v", err)
	}
	if len(answers) != 50 {
		t.Fatalf("got %d answers, want 50", len(answers))
	}
	for q, a := range answers {
		want := 1
		if q >= 45 {
			want = NoMark
		}
		if a != want {
			t.Errorf("question %d: got %d, want %d", q, a, want)
		}
	}
}

func TestExtractAnswers_DoubleMark(t *testing.T) {
	l := DefaultLayout()

	for a := 0; a < l.Options; a++ {
		for b := a + 1; b < l.Options; b++ {
			canvas := blankCanvas(l)
			shade(canvas, l.CellRect(0, a))
			shade(canvas, l.CellRect(0, b))
			shade(canvas, l.CellRect(1, b))

			answers, err := ExtractAnswers(canvas, l)
			if err != nil {
				t.Fatalf("ExtractAnswers failed: %v", err)
			}
			if answers[0] != NoMark {
				t.Errorf("options %d+%d: got %d, want NoMark", a, b, answers[0])
			}
			if answers[1] != b {
				t.Errorf("options %d+%d: next question got %d, want %d", a, b, answers[1], b)
			}
		}
	}
}

func TestExtractAnswers_Blank(t *testing.T) {
	l := DefaultLayout()

	answers, err := ExtractAnswers(blankCanvas(l), l)
	if err != nil {
		t.Fatalf("ExtractAnswers failed: %v", err)
	}
	for q, a := range answers {
		if a != NoMark {
			t.Errorf("question %d: got %d, want NoMark", q, a)
		}
	}
}

func TestExtractAnswers_FillThreshold(t *testing.T) {
	l := DefaultLayout()

	tests := []struct {
		name string
		rows int // shaded rows of the 20 pixel cell
		want int
	}{
		{"60 percent", 12, NoMark},
		{"70 percent is not above threshold", 14, NoMark},
		{"75 percent", 15, 2},
		{"full", 20, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			canvas := blankCanvas(l)
			r := l.CellRect(0, 2)
			shade(canvas, image.Rect(r.Min.X, r.Max.Y-tt.rows, r.Max.X, r.Max.Y))

			answers, err := ExtractAnswers(canvas, l)
			if err != nil {
				t.Fatalf("ExtractAnswers failed: %v", err)
			}
			if answers[0] != tt.want {
				t.Errorf("got %d, want %d", answers[0], tt.want)
			}
		})
	}
}

func TestExtractAnswers_InvalidLayout(t *testing.T) {
	l := DefaultLayout()
	l.Options = 0

	if _, err := ExtractAnswers(blankCanvas(DefaultLayout()), l); !errors.Is(err, ErrInvalidLayout) {
		t.Errorf("got %v, want ErrInvalidLayout", err)
	}
}

func TestMeasureCells(t *testing.T) {
	l := DefaultLayout()
	canvas := blankCanvas(l)
	shade(canvas, l.CellRect(0, 0))
	shade(canvas, l.CellRect(0, 3))

	fractions, err := MeasureCells(canvas, l)
	if err != nil {
		t.Fatalf("MeasureCells failed: %v", err)
	}
	if len(fractions) != 50 || len(fractions[0]) != 4 {
		t.Fatalf("shape: got %dx%d, want 50x4", len(fractions), len(fractions[0]))
	}

	// Every option is measured, including those after an ambiguity
	want := []float64{1, 0, 0, 1}
	for opt, f := range fractions[0] {
		if f != want[opt] {
			t.Errorf("option %d: got %v, want %v", opt, f, want[opt])
		}
	}
}
