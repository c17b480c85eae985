package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/bent101/wordle-mcts/feedback"
)

var ErrInvalid = errors.New("invalid config")

const (
	ArchiverBuiltin = "builtin"
	ArchiverTar     = "tar"
	ArchiverNone    = "none"
)

type Config struct {
	Dictionary       string `yaml:"dictionary"`
	Cache            string `yaml:"cache"`
	StateDir         string `yaml:"state_dir"`
	Iterations       int    `yaml:"iterations"`
	Threads          int    `yaml:"threads"`
	Length           int    `yaml:"length"`
	MaxGuesses       int    `yaml:"max_guesses"`
	Archiver         string `yaml:"archiver"`
	StrictDuplicates bool   `yaml:"strict_duplicates"`
	Export           string `yaml:"export"`
	Progress         bool   `yaml:"progress"`
	LogLevel         string `yaml:"log_level"`
}

func Default() Config {
	return Config{
		Dictionary: "./official.txt",
		Cache:      "./cache.txt",
		StateDir:   "./state",
		Iterations: 100,
		Threads:    4,
		Length:     5,
		MaxGuesses: 6,
		Archiver:   ArchiverBuiltin,
		Progress:   true,
		LogLevel:   "info",
	}
}

// Load reads a YAML file over the defaults. Keys missing from the file keep
// their default value.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch {
	case c.Iterations <= 0:
		return fmt.Errorf("%w: iterations must be positive, got %d", ErrInvalid, c.Iterations)
	case c.Threads <= 0:
		return fmt.Errorf("%w: threads must be positive, got %d", ErrInvalid, c.Threads)
	case c.Length <= 0 || c.Length > feedback.MaxLength:
		return fmt.Errorf("%w: length must be between 1 and %d, got %d", ErrInvalid, feedback.MaxLength, c.Length)
	case c.MaxGuesses <= 0:
		return fmt.Errorf("%w: max_guesses must be positive, got %d", ErrInvalid, c.MaxGuesses)
	}
	switch c.Archiver {
	case ArchiverBuiltin, ArchiverTar, ArchiverNone:
	default:
		return fmt.Errorf("%w: unknown archiver %q", ErrInvalid, c.Archiver)
	}
	return nil
}

const strictSuffix = "strict"

// CachePath is the feedback cache file of the configured evaluation mode.
// Strict mode keeps its own file next to Cache, e.g. cache.strict.txt.
func (c Config) CachePath() string {
	if !c.StrictDuplicates {
		return c.Cache
	}
	ext := filepath.Ext(c.Cache)
	return strings.TrimSuffix(c.Cache, ext) + "." + strictSuffix + ext
}

// StatePath is the state space directory of the configured evaluation mode.
// Strict mode statistics live in a subdirectory of StateDir.
func (c Config) StatePath() string {
	if !c.StrictDuplicates {
		return c.StateDir
	}
	return filepath.Join(c.StateDir, strictSuffix)
}
