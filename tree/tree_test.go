package tree

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bent101/wordle-mcts/guess"
)

func sample() StateSpace {
	root := guess.FromString("111")
	s := New()
	s.Put(root, "", &Node{Guess: root, CumulativeScore: 12, NumSimulations: 4, Turn: 0})
	s.Put(root, "abc", &Node{Guess: guess.FromString("100"), CumulativeScore: 5, NumSimulations: 1, Turn: 1})
	s.Put(root, "bca", &Node{Guess: guess.FromString("011"), CumulativeScore: 7.5, NumSimulations: 3, Turn: 1})
	return s
}

func TestEnsureKeepsExisting(t *testing.T) {
	s := sample()
	root := guess.FromString("111")

	n := s.Ensure(root, "abc", func() *Node {
		t.Fatal("build called for existing node")
		return nil
	})
	assert.Equal(t, 1, n.NumSimulations)

	created := s.Ensure(root, "cab", func() *Node { return &Node{Guess: guess.FromString("001"), Turn: 1} })
	got, ok := s.Get(root, "cab")
	require.True(t, ok)
	assert.Same(t, created, got)
}

func TestMergeSumsStatistics(t *testing.T) {
	a := sample()
	b := sample()
	root := guess.FromString("111")
	b.Put(root, "cab", &Node{Guess: guess.FromString("001"), CumulativeScore: 2, NumSimulations: 2, Turn: 1})

	merged := Merge(a, b)
	require.Len(t, merged, 4)

	n, ok := merged.Get(root, "")
	require.True(t, ok)
	assert.Equal(t, 24.0, n.CumulativeScore)
	assert.Equal(t, 8, n.NumSimulations)

	n, _ = merged.Get(root, "bca")
	assert.Equal(t, 15.0, n.CumulativeScore)
	assert.Equal(t, 6, n.NumSimulations)
	assert.Equal(t, "011", n.Guess.String())

	n, _ = merged.Get(root, "cab")
	assert.Equal(t, 2, n.NumSimulations)

	// inputs are not modified
	n, _ = a.Get(root, "")
	assert.Equal(t, 4, n.NumSimulations)
}

func TestMergeOrderIndependent(t *testing.T) {
	root := guess.FromString("111")
	a, b, c := sample(), sample(), New()
	c.Put(root, "abc", &Node{Guess: guess.FromString("100"), CumulativeScore: 1, NumSimulations: 9, Turn: 1})

	orders := []StateSpace{
		Merge(a, b, c),
		Merge(c, b, a),
		Merge(Merge(a, b), c),
		Merge(a, Merge(b, c)),
	}
	for _, m := range orders[1:] {
		require.Len(t, m, len(orders[0]))
		for k, n := range orders[0] {
			assert.Equal(t, n.CumulativeScore, m[k].CumulativeScore)
			assert.Equal(t, n.NumSimulations, m[k].NumSimulations)
		}
	}
}

func TestWriteRead(t *testing.T) {
	s := sample()
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, s))
	assert.Contains(t, buf.String(), "111,bca,011,7.5,3,1\n")
	assert.Contains(t, buf.String(), "111,,111,12,4,0\n")

	back, skipped, err := Read(&buf)
	require.NoError(t, err)
	assert.Zero(t, skipped)
	require.Len(t, back, len(s))
	for k, n := range s {
		m, ok := back[k]
		require.True(t, ok)
		assert.Equal(t, n.Guess.String(), m.Guess.String())
		assert.Equal(t, n.CumulativeScore, m.CumulativeScore)
		assert.Equal(t, n.NumSimulations, m.NumSimulations)
		assert.Equal(t, n.Turn, m.Turn)
	}
}

func TestReadSkipsCorruptLines(t *testing.T) {
	in := strings.Join([]string{
		"111,,111,12,4,0",
		"111,abc,100,5,lots,1",
		"111,bca,011,7.5,3,1",
		"111,cab,001,1",
		"111,cba,001,x,1,1",
		"1x1,cba,001,1,1,1",
		"111,cab,01,1,1,1",
		"11,cab,111,1,1,1",
	}, "\n")

	s, skipped, err := Read(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, 6, skipped)
	require.Len(t, s, 2)

	root := guess.FromString("111")
	_, ok := s.Get(root, "")
	assert.True(t, ok)
	_, ok = s.Get(root, "bca")
	assert.True(t, ok)
	_, ok = s.Get(root, "abc")
	assert.False(t, ok)
}

func TestAbsorb(t *testing.T) {
	root := guess.FromString("111")
	agg := New()
	agg.Absorb(sample())
	agg.Absorb(sample())

	n, ok := agg.Get(root, "abc")
	require.True(t, ok)
	assert.Equal(t, 10.0, n.CumulativeScore)
	assert.Equal(t, 2, n.NumSimulations)
}

func TestPrune(t *testing.T) {
	s := sample()
	small := guess.FromString("11")
	s.Put(small, "", &Node{Guess: small, NumSimulations: 2})
	s.Put(guess.FromString("111"), "cab", &Node{Guess: guess.FromString("10"), NumSimulations: 1})

	assert.Equal(t, 2, s.Prune(3))
	assert.Len(t, s, 3)
	_, ok := s.Get(small, "")
	assert.False(t, ok)
	_, ok = s.Get(guess.FromString("111"), "cab")
	assert.False(t, ok)

	assert.Equal(t, 0, s.Prune(3))
	assert.Equal(t, 3, s.Prune(2))
	assert.Empty(t, s)
}
