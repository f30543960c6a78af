// Package config loads the TOML campaign configuration accepted by
// peacock-fuzz. No CLI flag overrides a value read from the file.
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Campaign holds the settings of a single fuzzing campaign, read from a TOML
// file (or Default when no file is given).
type Campaign struct {
	// CorpusDir is the directory the corpus/crash SQLite store lives in.
	CorpusDir string `toml:"corpus_dir"`

	// Seed is the initial RNG seed handed to the interpreter/emitted code's
	// SeedGenerator. A zero value lets the RNG fall back to its own default.
	Seed uint64 `toml:"seed"`

	// Capacity is the maximum walk length (slot count) a mutated sequence may
	// grow to.
	Capacity int `toml:"capacity"`

	// StatusAddr is the listen address of the optional status HTTP server.
	// Empty disables the server.
	StatusAddr string `toml:"status_addr"`

	// Target is the path to the forkserver-compatible binary under test.
	Target string `toml:"target"`
}

// Default returns the configuration used when no campaign file is supplied.
func Default() Campaign {
	return Campaign{
		CorpusDir: "corpus",
		Capacity:  4096,
	}
}

// Load reads a campaign configuration from the TOML file at path. A path of
// "" returns Default() unchanged.
func Load(path string) (Campaign, error) {
	if path == "" {
		return Default(), nil
	}

	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Campaign{}, fmt.Errorf("campaign config %q: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that the campaign config is usable to start a run.
func (c Campaign) Validate() error {
	if c.CorpusDir == "" {
		return fmt.Errorf("corpus_dir must not be empty")
	}
	if c.Capacity <= 0 {
		return fmt.Errorf("capacity must be positive, got %d", c.Capacity)
	}
	if c.Target == "" {
		return fmt.Errorf("target must name a forkserver-compatible binary")
	}
	return nil
}
