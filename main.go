package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/bent101/wordle-mcts/config"
	"github.com/bent101/wordle-mcts/feedback"
	"github.com/bent101/wordle-mcts/solver"
	"github.com/bent101/wordle-mcts/store"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := config.Default()
	var configPath string

	root := &cobra.Command{
		Use:   "wordle-mcts [guess:marks ...]",
		Short: "Recommend the next Wordle guess with Monte Carlo Tree Search",
		Long: `Recommend the next Wordle guess with Monte Carlo Tree Search.

Each argument is a guess already played together with its feedback, one of
g (green), y (yellow) or b (black) per letter, e.g. "crane:bbgyb".`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, configPath, flags)
			if err != nil {
				return err
			}
			ctx, err := withLogger(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			return run(ctx, cfg, args, cmd.OutOrStdout())
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "YAML config file")
	pf.StringVarP(&flags.Dictionary, "dict", "d", flags.Dictionary, "Path to word list")
	pf.StringVarP(&flags.Cache, "cache", "c", flags.Cache, "Feedback cache file")
	pf.StringVarP(&flags.StateDir, "state-space", "s", flags.StateDir, "Path to state space folder")
	pf.IntVarP(&flags.Iterations, "iterations", "i", flags.Iterations, "Number of iterations per solution")
	pf.IntVarP(&flags.Threads, "thread", "t", flags.Threads, "Number of threads used")
	pf.IntVarP(&flags.Length, "length", "l", flags.Length, "Word length")
	pf.IntVarP(&flags.MaxGuesses, "max-guess", "m", flags.MaxGuesses, "Max number of guesses")
	pf.StringVar(&flags.Archiver, "archiver", flags.Archiver, "State space archiver: builtin, tar or none")
	pf.BoolVar(&flags.StrictDuplicates, "strict-duplicates", flags.StrictDuplicates, "Count repeated letters like the game does")
	pf.StringVar(&flags.Export, "export", flags.Export, "Write root statistics to this parquet file")
	pf.BoolVar(&flags.Progress, "progress", flags.Progress, "Show progress bars")
	pf.StringVar(&flags.LogLevel, "log-level", flags.LogLevel, "Log level: debug, info, warn or error")

	root.AddCommand(newCacheCmd(&configPath, &flags))
	return root
}

// resolveConfig layers the config file, if any, over the defaults and the
// explicitly set flags over both.
func resolveConfig(cmd *cobra.Command, path string, flags config.Config) (config.Config, error) {
	cfg := config.Default()
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return cfg, err
		}
	}

	cmd.Flags().Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "dict":
			cfg.Dictionary = flags.Dictionary
		case "cache":
			cfg.Cache = flags.Cache
		case "state-space":
			cfg.StateDir = flags.StateDir
		case "iterations":
			cfg.Iterations = flags.Iterations
		case "thread":
			cfg.Threads = flags.Threads
		case "length":
			cfg.Length = flags.Length
		case "max-guess":
			cfg.MaxGuesses = flags.MaxGuesses
		case "archiver":
			cfg.Archiver = flags.Archiver
		case "strict-duplicates":
			cfg.StrictDuplicates = flags.StrictDuplicates
		case "export":
			cfg.Export = flags.Export
		case "progress":
			cfg.Progress = flags.Progress
		case "log-level":
			cfg.LogLevel = flags.LogLevel
		}
	})
	return cfg, cfg.Validate()
}

func withLogger(ctx context.Context, cfg config.Config) (context.Context, error) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return ctx, fmt.Errorf("log level: %w", err)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).With().Timestamp().Logger()
	return logger.WithContext(ctx), nil
}

func evaluator(cfg config.Config) feedback.Func {
	if cfg.StrictDuplicates {
		return feedback.EvaluateStrict
	}
	return feedback.Evaluate
}

func archiver(name string) store.Archiver {
	switch name {
	case config.ArchiverTar:
		return store.ExecTar{}
	case config.ArchiverNone:
		return store.Nop{}
	default:
		return store.TarZstd{}
	}
}

func run(ctx context.Context, cfg config.Config, args []string, out io.Writer) error {
	logger := zerolog.Ctx(ctx)

	dict, err := loadDictionary(cfg.Dictionary, cfg.Length)
	if err != nil {
		return err
	}
	logger.Info().Int("words", len(dict)).Str("path", cfg.Dictionary).Msg("loaded dictionary")

	cache, err := loadCache(ctx, cfg, dict)
	if err != nil {
		return err
	}

	root, turn, err := replay(dict, args, cfg.Length)
	if err != nil {
		return err
	}

	s := &solver.Solver{
		Dict:       dict,
		Eval:       cache,
		Store:      store.New(cfg.StatePath(), archiver(cfg.Archiver)),
		Iterations: cfg.Iterations,
		Threads:    cfg.Threads,
		MaxGuesses: cfg.MaxGuesses,
		Progress:   cfg.Progress,
	}
	res, err := s.Search(ctx, root, turn)
	if err != nil {
		return err
	}

	if cfg.Export != "" {
		if err := store.ExportRoot(cfg.Export, store.RootStats(res.Space, root, dict)); err != nil {
			return err
		}
		logger.Info().Str("path", cfg.Export).Msg("exported root statistics")
	}

	_, err = fmt.Fprintln(out, res.Word)
	return err
}
