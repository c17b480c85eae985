package tree

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/bent101/wordle-mcts/guess"
)

const numFields = 6

// Write encodes one line per node:
//
//	candidate_set,word,node_candidate_set,cumulative_score,num_simulations,turn
func Write(w io.Writer, s StateSpace) error {
	bw := bufio.NewWriter(w)
	for k, n := range s {
		parent, err := guess.FromKey(k.Set)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(bw, "%s,%s,%s,%s,%d,%d\n",
			parent, k.Word, n.Guess,
			strconv.FormatFloat(n.CumulativeScore, 'g', -1, 64),
			n.NumSimulations, n.Turn)
		if err != nil {
			return fmt.Errorf("write node: %w", err)
		}
	}
	return bw.Flush()
}

// Read decodes a state space written by Write. Lines with the wrong number of
// fields, unparsable numbers or candidate sets of different sizes are skipped;
// only a failing reader is an error.
func Read(r io.Reader) (StateSpace, int, error) {
	s := New()
	skipped := 0

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	for sc.Scan() {
		k, n, ok := parseLine(sc.Text())
		if !ok {
			skipped++
			continue
		}
		s[k] = n
	}
	if err := sc.Err(); err != nil {
		return nil, skipped, fmt.Errorf("read state space: %w", err)
	}
	return s, skipped, nil
}

func parseLine(line string) (Key, *Node, bool) {
	fields := strings.Split(line, ",")
	if len(fields) != numFields {
		return Key{}, nil, false
	}
	score, err := strconv.ParseFloat(fields[3], 64)
	if err != nil {
		return Key{}, nil, false
	}
	sims, err := strconv.Atoi(fields[4])
	if err != nil || sims < 0 {
		return Key{}, nil, false
	}
	turn, err := strconv.Atoi(fields[5])
	if err != nil || turn < 0 {
		return Key{}, nil, false
	}
	if !isMembership(fields[0]) || !isMembership(fields[2]) || len(fields[0]) != len(fields[2]) {
		return Key{}, nil, false
	}

	return NewKey(guess.FromString(fields[0]), fields[1]), &Node{
		Guess:           guess.FromString(fields[2]),
		CumulativeScore: score,
		NumSimulations:  sims,
		Turn:            turn,
	}, true
}

func isMembership(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] != '0' && s[i] != '1' {
			return false
		}
	}
	return true
}
