// Package tree stores MCTS statistics as a flat map keyed by
// (candidate set, guessed word) instead of linked nodes, so state spaces can be
// persisted by value and merged by key.
package tree

import "github.com/bent101/wordle-mcts/guess"

// Key identifies a node: the candidate set before guessing and the word guessed
// from it. The empty word is the pre-guess node for that candidate set.
type Key struct {
	Set  string // guess.Guess.Key of the parent candidate set
	Word string
}

func NewKey(g guess.Guess, word string) Key {
	return Key{Set: g.Key(), Word: word}
}

// Node holds the accumulated statistics of one (candidate set, word) pair.
type Node struct {
	Guess           guess.Guess // candidate set after the guess and its feedback
	CumulativeScore float64
	NumSimulations  int
	Turn            int
}

// Mean is the average rollout score, or zero when the node was never visited.
func (n *Node) Mean() float64 {
	if n.NumSimulations == 0 {
		return 0
	}
	return n.CumulativeScore / float64(n.NumSimulations)
}

type StateSpace map[Key]*Node

func New() StateSpace { return make(StateSpace) }

func (s StateSpace) Get(parent guess.Guess, word string) (*Node, bool) {
	n, ok := s[NewKey(parent, word)]
	return n, ok
}

func (s StateSpace) Put(parent guess.Guess, word string, n *Node) {
	s[NewKey(parent, word)] = n
}

// Ensure returns the node for (parent, word), creating it with build when it
// does not exist yet. Existing statistics are left untouched.
func (s StateSpace) Ensure(parent guess.Guess, word string, build func() *Node) *Node {
	k := NewKey(parent, word)
	if n, ok := s[k]; ok {
		return n
	}
	n := build()
	s[k] = n
	return n
}

// Absorb adds the statistics of other into s. Keys missing from s are copied
// over; for shared keys only the score and simulation count change.
func (s StateSpace) Absorb(other StateSpace) {
	for k, n := range other {
		if m, ok := s[k]; ok {
			m.CumulativeScore += n.CumulativeScore
			m.NumSimulations += n.NumSimulations
			continue
		}
		cp := *n
		s[k] = &cp
	}
}

// Merge sums the statistics of all spaces into a new state space without
// modifying the inputs. The order of spaces does not change the statistics.
func Merge(spaces ...StateSpace) StateSpace {
	out := New()
	for _, s := range spaces {
		out.Absorb(s)
	}
	return out
}

// Prune drops every node whose parent or own candidate set is not over a
// dictionary of size words, e.g. one loaded from a state file written for
// another dictionary. It returns the number of nodes dropped.
func (s StateSpace) Prune(size int) int {
	dropped := 0
	for k, n := range s {
		parent, err := guess.FromKey(k.Set)
		if err != nil || parent.Len() != size || n.Guess.Len() != size {
			delete(s, k)
			dropped++
		}
	}
	return dropped
}
