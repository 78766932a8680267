package config

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Default values for configuration.
const (
	DefaultLives     = 3
	DefaultHints     = 3
	DefaultTimeLimit = 60 * time.Second
)

// Environment variable names.
const (
	EnvLives       = "GREPMASTER_LIVES"
	EnvHints       = "GREPMASTER_HINTS"
	EnvBasicSyntax = "GREPMASTER_BASIC_SYNTAX"
)

//go:embed packs/default.yaml
var defaultPack []byte

// DefaultPack returns an empty pack with default settings.
func DefaultPack() *Pack {
	return &Pack{
		Settings: Settings{
			Lives:        DefaultLives,
			Hints:        DefaultHints,
			ShowSolution: true,
		},
		Levels: []Level{},
	}
}

// Default returns the bundled challenge pack.
func Default() (*Pack, error) {
	pack, err := Parse(defaultPack)
	if err != nil {
		return nil, fmt.Errorf("bundled pack: %w", err)
	}
	return pack, nil
}

// DefaultPackYAML returns the raw bundled pack.
func DefaultPackYAML() []byte {
	out := make([]byte, len(defaultPack))
	copy(out, defaultPack)
	return out
}

// applyEnvironmentOverrides applies environment variable overrides to the settings.
func (p *Pack) applyEnvironmentOverrides() error {
	if v := os.Getenv(EnvLives); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvLives, err)
		}
		p.Settings.Lives = n
	}

	if v := os.Getenv(EnvHints); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvHints, err)
		}
		p.Settings.Hints = n
	}

	if v := os.Getenv(EnvBasicSyntax); v != "" {
		p.Settings.BasicSyntax = v
	}

	return nil
}
