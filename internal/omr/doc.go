// Package omr marks scanned multiple-choice answer sheets.
//
// Marking is a forward pipeline with no shared state:
//
//	scan -> Align -> aligned canvas -> ExtractAnswers -> answers -> CountMatches -> score
//
// Align locates the four corner markers and rectifies the sheet onto the
// canvas described by a Layout. ExtractAnswers walks the layout's cell grid and
// classifies each cell by its dark-pixel fraction. DecodeKey and CountMatches
// compare the answers with a letter key. MarkSheet and MarkImage run all
// steps and return a Result.
//
// # Layout
//
// Sheet geometry is never hardcoded in the pipeline. DefaultLayout describes
// the standard sheet: a 1000x1400 canvas, 50 questions of four options, 20
// pixel cells starting at (50,50) on a 30 pixel pitch, and a fill threshold
// of 0.7.
//
// # Answers and Scores
//
// An answer is an option index (0 for A) or NoMark. Blank and multiply
// shaded questions are both NoMark and never score. Keys are compared over
// the overlapping prefix of answers and key, so a short key scores only the
// questions it covers.
//
// # Errors
//
// Failures are returned, never partially applied. The sentinels re-exported
// here (ErrImageNotFound, ErrMarkersNotFound, ErrDegenerateCorners,
// ErrSingularTransform) and the package's own ErrInvalidLayout and
// ErrUnknownKeyLetter can be tested with errors.Is.
//
// Every call is independent; marking many sheets concurrently needs no
// coordination.
package omr
