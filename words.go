package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/exp/slices"

	"github.com/bent101/wordle-mcts/feedback"
	"github.com/bent101/wordle-mcts/guess"
)

// loadDictionary reads one word per line, keeping the lowercase ASCII words of
// the given length in file order, without duplicates.
func loadDictionary(path string, length int) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dictionary: %w", err)
	}
	defer f.Close()

	var words []string
	seen := make(map[string]bool)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		w := strings.TrimSpace(sc.Text())
		if len(w) != length || !isClean(w) || seen[w] {
			continue
		}
		seen[w] = true
		words = append(words, w)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read dictionary: %w", err)
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("dictionary %s has no %d letter words", path, length)
	}
	return words, nil
}

func isClean(word string) bool {
	for i := 0; i < len(word); i++ {
		if word[i] < 'a' || word[i] > 'z' {
			return false
		}
	}
	return word != ""
}

// replay applies guesses already played, each written as word:marks, and
// returns the resulting candidate set and turn.
func replay(dict []string, played []string, length int) (guess.Guess, int, error) {
	g := guess.New(len(dict))
	for _, p := range played {
		word, marks, ok := strings.Cut(p, ":")
		if !ok {
			return g, 0, fmt.Errorf("guess %q: want word:marks", p)
		}
		if len(word) != length || !isClean(word) {
			return g, 0, fmt.Errorf("guess %q: want a %d letter lowercase word", p, length)
		}
		fb, err := feedback.Parse(marks)
		if err != nil {
			return g, 0, fmt.Errorf("guess %q: %w", p, err)
		}
		if len(fb) != length {
			return g, 0, fmt.Errorf("guess %q: %w", p, feedback.ErrLengthMismatch)
		}
		if fb.AllGreen() && !slices.Contains(dict, word) {
			return g, 0, fmt.Errorf("guess %q: solved word is not in the dictionary", p)
		}
		g = g.Refine(word, fb, dict)
	}
	return g, len(played), nil
}
