// Command marksheet marks one scanned answer sheet against the built-in key
// and prints the score and the extracted answers.
//
// Usage: marksheet [path]
//
// The path defaults to sample_sheet.png in the working directory.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/ironsheep/omr-tools-mcp/internal/omr"
)

const defaultPath = "sample_sheet.png"

// answerKey is the reference key: A C B D repeated twelve times, then A B.
func answerKey() []string {
	key := make([]string, 0, 50)
	for i := 0; i < 12; i++ {
		key = append(key, "A", "C", "B", "D")
	}
	return append(key, "A", "B")
}

func main() {
	path := defaultPath
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	res, err := omr.MarkSheet(path, answerKey())
	if err != nil {
		// Failures are reported, not signalled through the exit status
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Printf("Student Score: %d/%d\n", res.Score, res.Total)
	fmt.Printf("Student Answers: %s\n", formatAnswers(res.Letters))
}

// formatAnswers renders letters as a quoted list, e.g. ['A', 'None', 'C'].
func formatAnswers(letters []string) string {
	quoted := make([]string, len(letters))
	for i, l := range letters {
		quoted[i] = "'" + l + "'"
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
