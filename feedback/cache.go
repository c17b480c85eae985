package feedback

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/schollz/progressbar/v3"
)

// Evaluator computes the feedback for a guessed word against an assumed solution.
type Evaluator interface {
	Evaluate(word, solution string) Feedback
}

// Func adapts an evaluation function to the Evaluator interface.
type Func func(word, solution string) Feedback

func (f Func) Evaluate(word, solution string) Feedback { return f(word, solution) }

const unset = ^Code(0)

// Cache is a word x solution table of feedback codes over a fixed dictionary.
// It is never written after construction, so one Cache is shared by all search
// workers. Pairs missing from the table are computed with the fallback function.
type Cache struct {
	words  []string
	index  map[string]int
	codes  []Code
	length int
	eval   Func
}

// NewCache returns an empty cache over words. Every lookup falls through to eval
// until the table is filled by Precompute or Import.
func NewCache(words []string, eval Func) *Cache {
	c := &Cache{
		words: words,
		index: make(map[string]int, len(words)),
		codes: make([]Code, len(words)*len(words)),
		eval:  eval,
	}
	for i, w := range words {
		c.index[w] = i
	}
	if len(words) > 0 {
		c.length = len(words[0])
	}
	for i := range c.codes {
		c.codes[i] = unset
	}
	return c
}

// Precompute evaluates every guess-solution pair of words, one goroutine per guess.
func Precompute(words []string, eval Func, bar *progressbar.ProgressBar) *Cache {
	c := NewCache(words, eval)

	var wg sync.WaitGroup
	for i, word := range words {
		i, word := i, word
		wg.Add(1)
		go func() {
			defer wg.Done()
			row := c.codes[i*len(words) : (i+1)*len(words)]
			for j, solution := range words {
				row[j] = eval(word, solution).Code()
			}
			if bar != nil {
				bar.Add(1)
			}
		}()
	}
	wg.Wait()

	return c
}

func (c *Cache) Len() int { return len(c.words) }

func (c *Cache) lookup(word, solution string) (Code, bool) {
	i, ok := c.index[word]
	if !ok {
		return 0, false
	}
	j, ok := c.index[solution]
	if !ok {
		return 0, false
	}
	code := c.codes[i*len(c.words)+j]
	return code, code != unset
}

func (c *Cache) Evaluate(word, solution string) Feedback {
	if code, ok := c.lookup(word, solution); ok {
		return FromCode(code, len(word))
	}
	return c.eval(word, solution)
}

// Export writes one "word,solution,marks" line per filled entry.
func (c *Cache) Export(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for i, word := range c.words {
		for j, solution := range c.words {
			code := c.codes[i*len(c.words)+j]
			if code == unset {
				continue
			}
			if _, err := fmt.Fprintf(bw, "%s,%s,%s\n", word, solution, FromCode(code, c.length)); err != nil {
				return fmt.Errorf("write cache entry: %w", err)
			}
		}
	}
	return bw.Flush()
}

// Import reads "word,solution,marks" lines into a cache over words. Lines naming
// a word outside the dictionary are ignored. An unknown mark character or a
// marks string of the wrong length fails the whole import.
func Import(r io.Reader, words []string, eval Func) (*Cache, error) {
	c := NewCache(words, eval)

	sc := bufio.NewScanner(r)
	for n := 1; sc.Scan(); n++ {
		line := sc.Text()
		if line == "" {
			continue
		}
		fields := strings.Split(line, ",")
		if len(fields) != 3 {
			return nil, fmt.Errorf("cache line %d: want 3 fields, got %d", n, len(fields))
		}
		i, ok := c.index[fields[0]]
		if !ok {
			continue
		}
		j, ok := c.index[fields[1]]
		if !ok {
			continue
		}
		fb, err := Parse(fields[2])
		if err != nil {
			return nil, fmt.Errorf("cache line %d: %w", n, err)
		}
		if len(fb) != c.length {
			return nil, fmt.Errorf("cache line %d: %w", n, ErrLengthMismatch)
		}
		c.codes[i*len(words)+j] = fb.Code()
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read cache: %w", err)
	}
	return c, nil
}
