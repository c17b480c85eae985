// Package mcts refines a state space for one assumed solution with Monte Carlo
// Tree Search and picks the best guess from accumulated statistics.
package mcts

import (
	"math"

	"github.com/bent101/wordle-mcts/feedback"
	"github.com/bent101/wordle-mcts/guess"
	"github.com/bent101/wordle-mcts/tree"
)

const (
	Exploration    = math.Sqrt2
	UnvisitedScore = 1000.0
)

// Rand is the source of uniform choices; *frand.RNG and *rand.Rand satisfy it.
type Rand interface {
	Intn(n int) int
}

// Engine explores the game tree for a fixed true solution.
type Engine struct {
	Dict       []string
	Eval       feedback.Evaluator
	Solution   string
	MaxGuesses int
	Rand       Rand
}

// Score is the UCB1 value of n as a child of a node visited parentSims times.
func Score(n *tree.Node, parentSims int) float64 {
	if n.NumSimulations == 0 {
		return UnvisitedScore
	}
	sims := float64(n.NumSimulations)
	return n.CumulativeScore/sims + Exploration*math.Sqrt(math.Log(float64(parentSims))/sims)
}

// Init makes sure the root (root, "") and one child per candidate word exist.
// Nodes not sized for Dict are dropped first.
func (e *Engine) Init(s tree.StateSpace, root guess.Guess, turn int) *tree.Node {
	s.Prune(len(e.Dict))
	n := s.Ensure(root, "", func() *tree.Node {
		return &tree.Node{Guess: root, Turn: turn}
	})
	e.expand(s, n, turn)
	return n
}

// Explore runs iterations rounds of selection, expansion, rollout and
// backpropagation from root, which is reached at the given turn.
func (e *Engine) Explore(s tree.StateSpace, root guess.Guess, turn, iterations int) tree.StateSpace {
	e.Init(s, root, turn)
	rootKey := tree.NewKey(root, "")
	for n := 0; n < iterations; n++ {
		e.iterate(s, rootKey, turn)
	}
	return s
}

func (e *Engine) iterate(s tree.StateSpace, rootKey tree.Key, turn int) {
	node := s[rootKey]
	path := []tree.Key{rootKey}

	// Selection. Depth is bounded by turns since a guess can leave the
	// candidate set unchanged and the same keys can be reached again.
	for turn < e.MaxGuesses && node.NumSimulations > 0 {
		words := node.Guess.Solutions(e.Dict)
		if len(words) <= 1 {
			break
		}
		set := node.Guess.Key()
		children := make([]tree.Key, len(words))
		expanded := true
		for i, w := range words {
			children[i] = tree.Key{Set: set, Word: w}
			if _, ok := s[children[i]]; !ok {
				expanded = false
				break
			}
		}
		if !expanded {
			break
		}

		parentSims := node.NumSimulations
		best := MaxBy(children, func(k tree.Key) float64 {
			return Score(s[k], parentSims)
		})
		path = append(path, best)
		node = s[best]
		turn++
	}

	var score float64
	if turn < e.MaxGuesses && node.Guess.NumSolutions() > 1 {
		words := e.expand(s, node, turn)
		w := words[e.Rand.Intn(len(words))]
		k := tree.NewKey(node.Guess, w)
		path = append(path, k)
		score = e.rollout(s[k].Guess, turn+1)
	} else {
		score = e.outcome(node.Guess, turn)
	}

	for i := len(path) - 1; i >= 0; i-- {
		n := s[path[i]]
		n.CumulativeScore += score
		n.NumSimulations++
	}
}

// expand creates the missing children of n and returns its candidate words.
func (e *Engine) expand(s tree.StateSpace, n *tree.Node, turn int) []string {
	words := n.Guess.Solutions(e.Dict)
	for _, w := range words {
		s.Ensure(n.Guess, w, func() *tree.Node {
			return &tree.Node{
				Guess: n.Guess.Refine(w, e.Eval.Evaluate(w, e.Solution), e.Dict),
				Turn:  turn + 1,
			}
		})
	}
	return words
}

// rollout plays uniformly random candidate words until one candidate is left
// or the guesses run out.
func (e *Engine) rollout(g guess.Guess, turn int) float64 {
	for turn < e.MaxGuesses && g.NumSolutions() > 1 {
		words := g.Solutions(e.Dict)
		w := words[e.Rand.Intn(len(words))]
		g = g.Refine(w, e.Eval.Evaluate(w, e.Solution), e.Dict)
		turn++
	}
	return e.outcome(g, turn)
}

// outcome scores a final position: the guesses left over on a win, zero otherwise.
func (e *Engine) outcome(g guess.Guess, turn int) float64 {
	if g.NumSolutions() == 1 {
		return float64(e.MaxGuesses - turn)
	}
	return 0
}

// BestWord returns the root candidate with the highest mean score, preferring
// the earliest word in dictionary order on ties. Unvisited candidates are
// ignored; ok is false when no candidate was visited.
func BestWord(s tree.StateSpace, root guess.Guess, dict []string) (word string, ok bool) {
	type candidate struct {
		word string
		mean float64
	}
	var visited []candidate
	for _, w := range root.Solutions(dict) {
		if n, found := s.Get(root, w); found && n.NumSimulations > 0 {
			visited = append(visited, candidate{word: w, mean: n.Mean()})
		}
	}
	if len(visited) == 0 {
		return "", false
	}
	return MaxBy(visited, func(c candidate) float64 { return c.mean }).word, true
}
