// Package config provides loading and validation of grepmaster challenge packs.
package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ccollicutt/grepmaster/pkg/fileset"
	"github.com/ccollicutt/grepmaster/pkg/matcher"
)

// Pack is the root structure of a challenge pack loaded from YAML.
type Pack struct {
	Settings Settings `yaml:"settings"`
	Levels   []Level  `yaml:"levels"`
}

// Settings controls a play session.
type Settings struct {
	// Lives is the number of mistakes allowed per challenge before the
	// player drops back a level.
	Lives int `yaml:"lives"`

	// Hints is the number of hints available per challenge.
	Hints int `yaml:"hints"`

	// ShowSolution allows the player to reveal a challenge's solution.
	ShowSolution bool `yaml:"show_solution"`

	// BasicSyntax selects how patterns are read without -E: "literal" or
	// "posix".
	BasicSyntax string `yaml:"basic_syntax,omitempty"`
}

// Syntax returns the parsed basic syntax. It is only valid after Validate.
func (s Settings) Syntax() matcher.BasicSyntax {
	syntax, err := matcher.ParseBasicSyntax(s.BasicSyntax)
	if err != nil {
		return matcher.BasicLiteral
	}
	return syntax
}

// Level groups challenges of increasing difficulty.
type Level struct {
	ID          int         `yaml:"id"`
	Title       string      `yaml:"title"`
	Description string      `yaml:"description,omitempty"`
	Challenges  []Challenge `yaml:"challenges"`
}

// Challenge is a single grep exercise.
type Challenge struct {
	ID          int    `yaml:"id"`
	Title       string `yaml:"title"`
	Description string `yaml:"description,omitempty"`

	// Files are searched by the player's command, in declaration order.
	Files Files `yaml:"files"`

	// CorrectCommand is a reference solution, shown on request.
	CorrectCommand string `yaml:"correct_command"`

	// ExpectedOutput is what a correct command prints.
	ExpectedOutput []string `yaml:"expected_output"`

	Hints     []string      `yaml:"hints,omitempty"`
	TimeLimit time.Duration `yaml:"time_limit,omitempty"`
	Points    int           `yaml:"points"`
}

// FileSet returns the challenge files as a FileSet.
func (c *Challenge) FileSet() *fileset.FileSet {
	return fileset.New(c.Files...)
}

// Files is an ordered list of named files. In YAML it is written as a
// mapping from file name to content and keeps the mapping's order.
type Files []fileset.File

// UnmarshalYAML decodes a mapping node, preserving key order.
func (f *Files) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: files must be a mapping of file name to content", node.Line)
	}

	files := make(Files, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]

		var name, content string
		if err := key.Decode(&name); err != nil {
			return fmt.Errorf("line %d: file name: %w", key.Line, err)
		}
		if err := value.Decode(&content); err != nil {
			return fmt.Errorf("line %d: file %q: %w", value.Line, name, err)
		}
		files = append(files, fileset.File{Name: name, Content: content})
	}

	*f = files
	return nil
}

// MarshalYAML encodes the files as a mapping in order.
func (f Files) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, file := range f {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: file.Name},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: file.Content, Style: yaml.LiteralStyle},
		)
	}
	return node, nil
}

// Names returns the file names in order.
func (f Files) Names() []string {
	names := make([]string, len(f))
	for i, file := range f {
		names[i] = file.Name
	}
	return names
}

// Position locates a challenge in a pack.
type Position struct {
	Level     int // index into Pack.Levels
	Challenge int // index into Level.Challenges
}

// Level returns the level at p.
func (p *Pack) Level(pos Position) *Level {
	return &p.Levels[pos.Level]
}

// Challenge returns the challenge at pos.
func (p *Pack) Challenge(pos Position) *Challenge {
	return &p.Levels[pos.Level].Challenges[pos.Challenge]
}

// FindChallenge returns the position of the challenge with the given id.
func (p *Pack) FindChallenge(id int) (Position, bool) {
	for li := range p.Levels {
		for ci := range p.Levels[li].Challenges {
			if p.Levels[li].Challenges[ci].ID == id {
				return Position{Level: li, Challenge: ci}, true
			}
		}
	}
	return Position{}, false
}

// FindLevel returns the index of the level with the given id.
func (p *Pack) FindLevel(id int) (int, bool) {
	for i := range p.Levels {
		if p.Levels[i].ID == id {
			return i, true
		}
	}
	return 0, false
}

// Positions returns every challenge position in play order.
func (p *Pack) Positions() []Position {
	var out []Position
	for li := range p.Levels {
		for ci := range p.Levels[li].Challenges {
			out = append(out, Position{Level: li, Challenge: ci})
		}
	}
	return out
}

// NumChallenges returns the total number of challenges.
func (p *Pack) NumChallenges() int {
	n := 0
	for i := range p.Levels {
		n += len(p.Levels[i].Challenges)
	}
	return n
}
