// Package config holds the flat, read-only options a rename run is driven by
// and loads them from defaults, a config file, the environment and flags.
package config

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"github.com/substantialcattle5/bulkmv/internal/arena"
	"github.com/substantialcattle5/bulkmv/internal/constants"
)

// Options is fixed for the duration of one run.
type Options struct {
	// Fatal aborts on the first conflict or error instead of reporting all.
	Fatal bool `mapstructure:"fatal" yaml:"fatal"`
	// Implicit permits overwriting paths outside the declared rename set.
	Implicit bool `mapstructure:"implicit" yaml:"implicit"`
	// AutoSolve deletes a redundant source when two sources with identical
	// content are renamed to the same target.
	AutoSolve bool `mapstructure:"autosolve" yaml:"autosolve"`
	// Sort orders the old list before it is edited and diffed.
	Sort bool `mapstructure:"sort" yaml:"sort"`

	Quiet     bool `mapstructure:"quiet" yaml:"quiet"`
	Verbose   bool `mapstructure:"verbose" yaml:"verbose"`
	DryRun    bool `mapstructure:"dry_run" yaml:"dry_run"`
	AssumeYes bool `mapstructure:"assume_yes" yaml:"assume_yes"`

	Workers   int    `mapstructure:"workers" yaml:"workers"`
	Editor    string `mapstructure:"editor" yaml:"editor"`
	ArenaSize string `mapstructure:"arena_size" yaml:"arena_size"`

	arenaBytes int
}

var (
	ErrQuietVerbose = errors.New("quiet and verbose are mutually exclusive")
	ErrWorkers      = errors.New("workers must not be negative")
)

// Default returns the built-in options.
func Default() Options {
	return Options{
		Sort:       true,
		ArenaSize:  constants.DefaultArenaSize,
		arenaBytes: 1 << 20,
	}
}

// Validate checks option combinations and parses the arena size.
func (o *Options) Validate() error {
	if o.Quiet && o.Verbose {
		return ErrQuietVerbose
	}
	if o.Workers < 0 {
		return fmt.Errorf("%w: %d", ErrWorkers, o.Workers)
	}
	size, err := humanize.ParseBytes(o.ArenaSize)
	if err != nil {
		return fmt.Errorf("invalid arena_size %q: %w", o.ArenaSize, err)
	}
	if size == 0 || size > arena.MaxPush {
		return fmt.Errorf("arena_size %s out of range (1 B to %s)",
			o.ArenaSize, humanize.IBytes(arena.MaxPush))
	}
	o.arenaBytes = int(size)
	return nil
}

// ArenaBytes returns the parsed segment size for path arenas.
func (o Options) ArenaBytes() int {
	if o.arenaBytes == 0 {
		return 1 << 20
	}
	return o.arenaBytes
}

// YAML renders the options as a config file.
func (o Options) YAML() ([]byte, error) {
	data, err := yaml.Marshal(o)
	if err != nil {
		return nil, fmt.Errorf("error marshaling config: %w", err)
	}
	return data, nil
}
