// Package guess holds the candidate set: the dictionary words that are still
// consistent with every piece of feedback seen so far.
package guess

import (
	"fmt"
	"strings"

	"github.com/bits-and-blooms/bitset"
	"golang.org/x/exp/slices"

	"github.com/bent101/wordle-mcts/feedback"
)

// Guess is a membership vector over the dictionary, one bit per word. A Guess
// is never modified after construction; Refine returns a new one.
type Guess struct {
	bits *bitset.BitSet
}

// New returns the candidate set in which every one of size words is possible.
func New(size int) Guess {
	b := bitset.New(uint(size))
	b.FlipRange(0, uint(size))
	return Guess{bits: b}
}

// FromString parses the '1'/'0' form produced by String.
func FromString(s string) Guess {
	b := bitset.New(uint(len(s)))
	for i := 0; i < len(s); i++ {
		if s[i] == '1' {
			b.Set(uint(i))
		}
	}
	return Guess{bits: b}
}

// String encodes the set as one '1' or '0' per dictionary word.
func (g Guess) String() string {
	var sb strings.Builder
	n := g.bits.Len()
	sb.Grow(int(n))
	for i := uint(0); i < n; i++ {
		if g.bits.Test(i) {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

// Key returns a compact binary identity of the set, suitable as a map key.
func (g Guess) Key() string {
	data, err := g.bits.MarshalBinary()
	if err != nil {
		panic(fmt.Errorf("encode candidate set: %w", err))
	}
	return string(data)
}

// FromKey is the inverse of Key.
func FromKey(key string) (Guess, error) {
	b := &bitset.BitSet{}
	if err := b.UnmarshalBinary([]byte(key)); err != nil {
		return Guess{}, fmt.Errorf("decode candidate set: %w", err)
	}
	return Guess{bits: b}, nil
}

func (g Guess) Len() int { return int(g.bits.Len()) }

func (g Guess) NumSolutions() int { return int(g.bits.Count()) }

func (g Guess) Contains(i int) bool { return g.bits.Test(uint(i)) }

func (g Guess) Equal(other Guess) bool { return g.bits.Equal(other.bits) }

// Solutions lists the possible words in dictionary order.
func (g Guess) Solutions(dict []string) []string {
	out := make([]string, 0, g.bits.Count())
	for i, ok := g.bits.NextSet(0); ok; i, ok = g.bits.NextSet(i + 1) {
		out = append(out, dict[i])
	}
	return out
}

// Refine keeps the words consistent with having guessed word and observed fb.
// An all green feedback collapses the set to word itself.
func (g Guess) Refine(word string, fb feedback.Feedback, dict []string) Guess {
	if fb.AllGreen() {
		i := slices.Index(dict, word)
		if i < 0 {
			panic(fmt.Sprintf("word %q not found in dictionary", word))
		}
		b := bitset.New(uint(len(dict)))
		b.Set(uint(i))
		return Guess{bits: b}
	}

	b := g.bits.Clone()
	for i, ok := g.bits.NextSet(0); ok; i, ok = g.bits.NextSet(i + 1) {
		if !consistent(dict[i], word, fb) {
			b.Clear(i)
		}
	}
	return Guess{bits: b}
}

func consistent(w, word string, fb feedback.Feedback) bool {
	for j, m := range fb {
		switch m {
		case feedback.Black:
			if w[j] == word[j] {
				return false
			}
		case feedback.Green:
			if w[j] != word[j] {
				return false
			}
		case feedback.Yellow:
			if !containsElsewhere(w, word[j], j) {
				return false
			}
		}
	}
	return true
}

func containsElsewhere(w string, c byte, pos int) bool {
	for k := 0; k < len(w); k++ {
		if k != pos && w[k] == c {
			return true
		}
	}
	return false
}
