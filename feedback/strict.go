package feedback

import (
	"fmt"

	"golang.org/x/exp/slices"
)

// EvaluateStrict computes feedback the way the game does for repeated letters:
// greens are marked first, then each remaining guess letter takes a yellow from
// the pool of solution letters that were not matched, left to right.
func EvaluateStrict(word, solution string) Feedback {
	if len(word) != len(solution) {
		panic(fmt.Errorf("%w: %q vs %q", ErrLengthMismatch, word, solution))
	}
	fb := make(Feedback, len(word))

	// solution letters not hinted at by a green
	unmatched := make([]byte, 0, len(solution))
	for i := 0; i < len(word); i++ {
		if word[i] == solution[i] {
			fb[i] = Green
			continue
		}
		unmatched = append(unmatched, solution[i])
	}

	for i := 0; i < len(word); i++ {
		if fb[i] == Green {
			continue
		}
		if j := slices.Index(unmatched, word[i]); j >= 0 {
			fb[i] = Yellow
			unmatched = slices.Delete(unmatched, j, j+1)
		}
	}
	return fb
}
