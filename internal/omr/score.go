package omr

import (
	"fmt"
)

// DefaultOptions is the option count of the standard A-D sheet.
const DefaultOptions = 4

// NoneLetter is how NoMark is displayed.
const NoneLetter = "None"

// Letter returns the display letter of an option index: 0 is "A", 1 is "B",
// and so on. NoMark and other negative values return NoneLetter.
func Letter(option int) string {
	if option < 0 || option >= MaxOptions {
		return NoneLetter
	}
	return string(rune('A' + option))
}

// Letters maps extracted answers to display letters.
func Letters(answers []int) []string {
	out := make([]string, len(answers))
	for i, a := range answers {
		out[i] = Letter(a)
	}
	return out
}

// DecodeKey converts key letters to option indices for a sheet with the given
// number of options.
//
// Letters are upper case and case-sensitive; with four options the alphabet
// is exactly A, B, C, D. Any other entry is rejected with ErrUnknownKeyLetter
// naming its position. The whole key is checked, including entries beyond the
// last question that will never be compared.
func DecodeKey(key []string, options int) ([]int, error) {
	if options <= 0 || options > MaxOptions {
		return nil, fmt.Errorf("%w: options must be 1..%d, got %d", ErrInvalidLayout, MaxOptions, options)
	}

	indices := make([]int, len(key))
	for i, letter := range key {
		if len(letter) != 1 || letter[0] < 'A' || int(letter[0]-'A') >= options {
			return nil, fmt.Errorf("%w: %q at position %d (want A-%s)",
				ErrUnknownKeyLetter, letter, i+1, Letter(options-1))
		}
		indices[i] = int(letter[0] - 'A')
	}
	return indices, nil
}

// CountMatches counts positions where the answer equals the key index and is
// not NoMark.
//
// Comparison runs over the shorter of the two slices. Answers past the end of
// the key, or key entries past the last answer, are ignored.
func CountMatches(answers, key []int) int {
	n := min(len(answers), len(key))
	score := 0
	for i := 0; i < n; i++ {
		if answers[i] != NoMark && answers[i] == key[i] {
			score++
		}
	}
	return score
}

// Score decodes an A-D key and counts matching answers.
func Score(answers []int, key []string) (int, error) {
	indices, err := DecodeKey(key, DefaultOptions)
	if err != nil {
		return 0, err
	}
	return CountMatches(answers, indices), nil
}
