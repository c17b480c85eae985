// Package solver runs one MCTS exploration per plausible solution, in batches
// of parallel workers, and merges the results to recommend the next guess.
package solver

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"
	"lukechampine.com/frand"

	"github.com/bent101/wordle-mcts/feedback"
	"github.com/bent101/wordle-mcts/guess"
	"github.com/bent101/wordle-mcts/mcts"
	"github.com/bent101/wordle-mcts/store"
	"github.com/bent101/wordle-mcts/tree"
)

var (
	ErrNoCandidates  = errors.New("no candidate words left")
	ErrNoGuessesLeft = errors.New("no guesses left")
)

type Solver struct {
	Dict       []string
	Eval       feedback.Evaluator // shared by all workers, read only
	Store      *store.Store
	Iterations int // per solution
	Threads    int
	MaxGuesses int
	Progress   bool

	// NewRand returns the random source of one worker. Defaults to frand.
	NewRand func() mcts.Rand
}

type Result struct {
	Word  string
	Space tree.StateSpace // aggregate over all explored solutions
}

// Search explores every solution still possible in root, which is reached at
// the given turn, and returns the root word with the best aggregate mean.
func (s *Solver) Search(ctx context.Context, root guess.Guess, turn int) (Result, error) {
	logger := zerolog.Ctx(ctx)

	if turn >= s.MaxGuesses {
		return Result{}, fmt.Errorf("%w: turn %d of %d", ErrNoGuessesLeft, turn, s.MaxGuesses)
	}
	solutions := root.Solutions(s.Dict)
	switch len(solutions) {
	case 0:
		return Result{}, ErrNoCandidates
	case 1:
		logger.Info().Str("word", solutions[0]).Msg("single candidate left")
		return Result{Word: solutions[0], Space: tree.New()}, nil
	}
	frand.Shuffle(len(solutions), func(i, j int) {
		solutions[i], solutions[j] = solutions[j], solutions[i]
	})

	threads := max(s.Threads, 1)
	bar := s.progressBar(len(solutions))
	defer bar.Close()

	logger.Info().Int("solutions", len(solutions)).Int("threads", threads).
		Int("iterations", s.Iterations).Msg("starting search")

	aggregate := tree.New()
	for start := 0; start < len(solutions); start += threads {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		batch := solutions[start:min(start+threads, len(solutions))]
		spaces := make([]tree.StateSpace, len(batch))

		g, gctx := errgroup.WithContext(ctx)
		for i, solution := range batch {
			i, solution := i, solution
			g.Go(func() error {
				space, err := s.explore(gctx, root, turn, solution)
				if err != nil {
					return fmt.Errorf("explore %s: %w", solution, err)
				}
				spaces[i] = space
				bar.Add(1)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return Result{}, err
		}

		for _, space := range spaces {
			aggregate.Absorb(space)
		}
		logger.Debug().Int("done", start+len(batch)).Int("nodes", len(aggregate)).Msg("batch merged")
	}

	word, ok := mcts.BestWord(aggregate, root, s.Dict)
	if !ok {
		return Result{}, fmt.Errorf("no root candidate was visited in %d iterations", s.Iterations)
	}
	logger.Info().Str("word", word).Int("nodes", len(aggregate)).Msg("search done")
	return Result{Word: word, Space: aggregate}, nil
}

// explore is one worker: load the persisted state space of solution, refine it
// and persist it again.
func (s *Solver) explore(ctx context.Context, root guess.Guess, turn int, solution string) (tree.StateSpace, error) {
	space := s.Store.Load(ctx, solution)
	if n := space.Prune(len(s.Dict)); n > 0 {
		zerolog.Ctx(ctx).Warn().Str("solution", solution).Int("nodes", n).
			Msg("dropped nodes from another dictionary")
	}

	e := &mcts.Engine{
		Dict:       s.Dict,
		Eval:       s.Eval,
		Solution:   solution,
		MaxGuesses: s.MaxGuesses,
		Rand:       s.newRand(),
	}
	space = e.Explore(space, root, turn, s.Iterations)

	if err := s.Store.Save(ctx, solution, space); err != nil {
		return nil, err
	}
	zerolog.Ctx(ctx).Debug().Str("solution", solution).Int("nodes", len(space)).Msg("explored")
	return space, nil
}

func (s *Solver) newRand() mcts.Rand {
	if s.NewRand != nil {
		return s.NewRand()
	}
	return frand.New()
}

func (s *Solver) progressBar(n int) *progressbar.ProgressBar {
	if s.Progress {
		return progressbar.Default(int64(n), "exploring solutions")
	}
	return progressbar.DefaultSilent(int64(n))
}
