package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/bent101/wordle-mcts/config"
	"github.com/bent101/wordle-mcts/feedback"
)

func newCacheCmd(configPath *string, flags *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "cache",
		Short: "Precompute the feedback cache and write it to the cache file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, *configPath, *flags)
			if err != nil {
				return err
			}
			ctx, err := withLogger(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			dict, err := loadDictionary(cfg.Dictionary, cfg.Length)
			if err != nil {
				return err
			}
			_, err = precompute(ctx, cfg, dict)
			return err
		},
	}
}

// loadCache reads the feedback cache from disk, computing and saving it first
// if the file does not exist yet. A malformed cache file is an error.
func loadCache(ctx context.Context, cfg config.Config, dict []string) (*feedback.Cache, error) {
	logger := zerolog.Ctx(ctx)
	path := cfg.CachePath()

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Info().Str("path", path).Msg("cache file not found, will calculate from scratch")
		return precompute(ctx, cfg, dict)
	}
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	defer f.Close()

	start := time.Now()
	c, err := feedback.Import(f, dict, evaluator(cfg))
	if err != nil {
		return nil, fmt.Errorf("load cache %s: %w", path, err)
	}
	logger.Info().Int("words", c.Len()).Dur("took", time.Since(start)).Msg("loaded feedback cache")
	return c, nil
}

func precompute(ctx context.Context, cfg config.Config, dict []string) (*feedback.Cache, error) {
	logger := zerolog.Ctx(ctx)

	var bar *progressbar.ProgressBar
	if cfg.Progress {
		bar = progressbar.Default(int64(len(dict)), "calculating feedback")
	} else {
		bar = progressbar.DefaultSilent(int64(len(dict)))
	}
	c := feedback.Precompute(dict, evaluator(cfg), bar)
	_ = bar.Close()

	start := time.Now()
	path := cfg.CachePath()
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create cache: %w", err)
	}
	defer f.Close()
	if err := c.Export(f); err != nil {
		return nil, fmt.Errorf("save cache %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("save cache %s: %w", path, err)
	}
	logger.Info().Str("path", path).Dur("took", time.Since(start)).Msg("saved feedback cache")
	return c, nil
}
