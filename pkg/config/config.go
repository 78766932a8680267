package config

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ccollicutt/grepmaster/pkg/matcher"
	"github.com/ccollicutt/grepmaster/pkg/parser"
)

// Load reads and validates a challenge pack file.
func Load(_ context.Context, path string) (*Pack, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided pack path is expected
	if err != nil {
		return nil, fmt.Errorf("reading pack file: %w", err)
	}

	return Parse(data)
}

// Parse decodes and validates a challenge pack. Environment overrides are
// applied before validation.
func Parse(data []byte) (*Pack, error) {
	pack := DefaultPack()
	if err := yaml.Unmarshal(data, pack); err != nil {
		return nil, fmt.Errorf("parsing pack file: %w", err)
	}

	if err := pack.applyEnvironmentOverrides(); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}

	if err := Validate(pack); err != nil {
		return nil, fmt.Errorf("validating pack: %w", err)
	}

	return pack, nil
}

// Validate checks a pack for errors and fills in defaults.
func Validate(pack *Pack) error {
	if err := validateSettings(&pack.Settings); err != nil {
		return fmt.Errorf("settings: %w", err)
	}

	if len(pack.Levels) == 0 {
		return errors.New("levels: at least one level is required")
	}

	levelIDs := make(map[int]bool)
	challengeIDs := make(map[int]bool)

	for li := range pack.Levels {
		level := &pack.Levels[li]
		if err := validateLevel(level, levelIDs); err != nil {
			return fmt.Errorf("levels[%d] (%s): %w", li, level.Title, err)
		}

		for ci := range level.Challenges {
			ch := &level.Challenges[ci]
			if err := validateChallenge(ch, challengeIDs); err != nil {
				return fmt.Errorf("levels[%d].challenges[%d] (%s): %w", li, ci, ch.Title, err)
			}
		}
	}

	return nil
}

func validateSettings(s *Settings) error {
	if s.Lives < 1 {
		return fmt.Errorf("lives must be >= 1, got %d", s.Lives)
	}

	if s.Hints < 0 {
		return fmt.Errorf("hints must be >= 0, got %d", s.Hints)
	}

	syntax, err := matcher.ParseBasicSyntax(s.BasicSyntax)
	if err != nil {
		return fmt.Errorf("basic_syntax: %w", err)
	}
	s.BasicSyntax = string(syntax)

	return nil
}

func validateLevel(level *Level, seen map[int]bool) error {
	if level.Title == "" {
		return errors.New("title is required")
	}

	if seen[level.ID] {
		return fmt.Errorf("duplicate level id %d", level.ID)
	}
	seen[level.ID] = true

	if len(level.Challenges) == 0 {
		return errors.New("at least one challenge is required")
	}

	return nil
}

func validateChallenge(ch *Challenge, seen map[int]bool) error {
	if ch.Title == "" {
		return errors.New("title is required")
	}

	if seen[ch.ID] {
		return fmt.Errorf("duplicate challenge id %d", ch.ID)
	}
	seen[ch.ID] = true

	if len(ch.Files) == 0 {
		return errors.New("files: at least one file is required")
	}

	names := make(map[string]bool, len(ch.Files))
	for _, f := range ch.Files {
		if f.Name == "" {
			return errors.New("files: file name must not be empty")
		}
		if names[f.Name] {
			return fmt.Errorf("files: duplicate file %q", f.Name)
		}
		names[f.Name] = true
	}

	if ch.CorrectCommand == "" {
		return errors.New("correct_command is required")
	}

	if _, err := parser.Parse(ch.CorrectCommand); err != nil {
		return fmt.Errorf("correct_command: %w", err)
	}

	if ch.Points < 0 {
		return fmt.Errorf("points must be >= 0, got %d", ch.Points)
	}

	if ch.TimeLimit < 0 {
		return fmt.Errorf("time_limit must not be negative, got %v", ch.TimeLimit)
	}
	if ch.TimeLimit == 0 {
		ch.TimeLimit = DefaultTimeLimit
	}

	return nil
}
