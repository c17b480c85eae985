// Package store persists one state space per assumed solution under a
// directory, as dir/<solution>.csv while in use and dir/<solution>.zst at rest.
package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/bent101/wordle-mcts/tree"
)

type Store struct {
	Dir      string
	Archiver Archiver
}

func New(dir string, a Archiver) *Store {
	if a == nil {
		a = Nop{}
	}
	return &Store{Dir: dir, Archiver: a}
}

func (s *Store) path(solution string) string {
	return filepath.Join(s.Dir, solution+csvExt)
}

// Load returns the persisted state space of solution. A missing or unreadable
// archive is not an error: the search starts over from an empty state space.
func (s *Store) Load(ctx context.Context, solution string) tree.StateSpace {
	logger := zerolog.Ctx(ctx).With().Str("solution", solution).Logger()

	if err := s.Archiver.Decompress(s.Dir, solution); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logger.Warn().Err(err).Msg("dropping unreadable archive")
		}
		return tree.New()
	}

	f, err := os.Open(s.path(solution))
	if err != nil {
		logger.Warn().Err(err).Msg("dropping unreadable state space")
		return tree.New()
	}
	defer f.Close()

	space, skipped, err := tree.Read(f)
	if err != nil {
		logger.Warn().Err(err).Msg("dropping unreadable state space")
		return tree.New()
	}
	if skipped > 0 {
		logger.Warn().Int("lines", skipped).Msg("skipped malformed state space lines")
	}
	logger.Debug().Int("nodes", len(space)).Msg("loaded state space")
	return space
}

// Save writes the state space of solution and compresses it.
func (s *Store) Save(ctx context.Context, solution string, space tree.StateSpace) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	path := s.path(solution)
	tmp := path + ".tmp"
	if err := writeSpace(tmp, space); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename state space: %w", err)
	}

	if err := s.Archiver.Compress(s.Dir, solution); err != nil {
		return fmt.Errorf("compress state space %s: %w", solution, err)
	}
	zerolog.Ctx(ctx).Debug().Str("solution", solution).Int("nodes", len(space)).Msg("saved state space")
	return nil
}

func writeSpace(path string, space tree.StateSpace) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("create state space: %w", err)
	}
	defer f.Close()

	if err := tree.Write(f, space); err != nil {
		return fmt.Errorf("write state space: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync state space: %w", err)
	}
	return f.Close()
}
