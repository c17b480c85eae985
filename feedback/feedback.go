package feedback

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidMark    = errors.New("invalid feedback mark")
	ErrLengthMismatch = errors.New("word and solution lengths differ")
)

// Mark is the hint for a single letter of a guess.
type Mark uint8

const (
	Black  Mark = iota // letter absent from the solution
	Yellow             // letter present at another position
	Green              // letter at this exact position
)

func (m Mark) Byte() byte {
	switch m {
	case Green:
		return 'g'
	case Yellow:
		return 'y'
	default:
		return 'b'
	}
}

// Feedback holds one Mark per letter of the guessed word.
type Feedback []Mark

// Code packs a feedback as a base 3 number, first letter most significant.
type Code uint32

// MaxLength is the longest feedback whose Code fits below the cache's unset marker.
const MaxLength = 20

// Evaluate computes feedback for word against solution. A letter is Green when
// the solution has it at the same position, Yellow when the solution contains it
// anywhere else and Black otherwise. Duplicate letters are not counted, so a
// letter repeated in word can be Yellow more than once.
func Evaluate(word, solution string) Feedback {
	if len(word) != len(solution) {
		panic(fmt.Errorf("%w: %q vs %q", ErrLengthMismatch, word, solution))
	}
	fb := make(Feedback, len(word))
	for i := 0; i < len(word); i++ {
		switch {
		case solution[i] == word[i]:
			fb[i] = Green
		case strings.IndexByte(solution, word[i]) >= 0:
			fb[i] = Yellow
		}
	}
	return fb
}

// Parse reads a feedback string of g, y and b characters.
func Parse(s string) (Feedback, error) {
	fb := make(Feedback, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case 'g':
			fb[i] = Green
		case 'y':
			fb[i] = Yellow
		case 'b':
			fb[i] = Black
		default:
			return nil, fmt.Errorf("%w %q in %q", ErrInvalidMark, s[i], s)
		}
	}
	return fb, nil
}

func (fb Feedback) String() string {
	var sb strings.Builder
	sb.Grow(len(fb))
	for _, m := range fb {
		sb.WriteByte(m.Byte())
	}
	return sb.String()
}

func (fb Feedback) AllGreen() bool {
	for _, m := range fb {
		if m != Green {
			return false
		}
	}
	return true
}

func (fb Feedback) Code() Code {
	var c Code
	for _, m := range fb {
		c = c*3 + Code(m)
	}
	return c
}

// FromCode unpacks a code produced by Feedback.Code for a word of the given length.
func FromCode(c Code, length int) Feedback {
	fb := make(Feedback, length)
	for i := length - 1; i >= 0; i-- {
		fb[i] = Mark(c % 3)
		c /= 3
	}
	return fb
}
