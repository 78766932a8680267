package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"github.com/ccollicutt/grepmaster/pkg/matcher"
)

const validPack = `
settings:
  lives: 5
  hints: 1
  show_solution: false
levels:
  - id: 1
    title: Basics
    challenges:
      - id: 7
        title: Find errors
        files:
          b.log: |
            ERROR one
            INFO two
          a.log: "ERROR three"
        correct_command: grep ERROR b.log a.log
        expected_output:
          - "b.log:ERROR one"
          - "a.log:ERROR three"
        hints: ["look for ERROR"]
        time_limit: 30s
        points: 100
      - id: 8
        title: Count
        files:
          c.log: "x"
        correct_command: grep -c x c.log
        expected_output: ["1"]
        points: 50
`

func TestLoad_ValidPack(t *testing.T) {
	path := writeTempFile(t, "pack.yaml", validPack)
	pack, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if pack.Settings.Lives != 5 {
		t.Errorf("Lives = %d, want 5", pack.Settings.Lives)
	}
	if pack.Settings.Hints != 1 {
		t.Errorf("Hints = %d, want 1", pack.Settings.Hints)
	}
	if pack.Settings.ShowSolution {
		t.Error("ShowSolution = true, want false")
	}
	if pack.Settings.Syntax() != matcher.BasicLiteral {
		t.Errorf("Syntax() = %q, want literal", pack.Settings.Syntax())
	}
	if len(pack.Levels) != 1 || len(pack.Levels[0].Challenges) != 2 {
		t.Fatalf("unexpected pack shape: %+v", pack.Levels)
	}

	ch := pack.Levels[0].Challenges[0]
	if diff := cmp.Diff([]string{"b.log", "a.log"}, ch.Files.Names()); diff != "" {
		t.Errorf("file order mismatch (-want +got):\n%s", diff)
	}
	if ch.Files[0].Content != "ERROR one\nINFO two\n" {
		t.Errorf("b.log content = %q", ch.Files[0].Content)
	}
	if ch.TimeLimit != 30*time.Second {
		t.Errorf("TimeLimit = %v, want 30s", ch.TimeLimit)
	}
	if got := pack.Levels[0].Challenges[1].TimeLimit; got != DefaultTimeLimit {
		t.Errorf("default TimeLimit = %v, want %v", got, DefaultTimeLimit)
	}

	content, ok := ch.FileSet().Content("a.log")
	if !ok || content != "ERROR three" {
		t.Errorf("FileSet().Content(a.log) = %q, %v", content, ok)
	}
}

func TestLoad_DefaultSettings(t *testing.T) {
	content := `
levels:
  - id: 1
    title: L
    challenges:
      - id: 1
        title: C
        files: {f: x}
        correct_command: grep x f
        expected_output: [x]
`
	pack, err := Load(context.Background(), writeTempFile(t, "pack.yaml", content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := Settings{Lives: DefaultLives, Hints: DefaultHints, ShowSolution: true, BasicSyntax: "literal"}
	if diff := cmp.Diff(want, pack.Settings); diff != "" {
		t.Errorf("Settings mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load(context.Background(), "/nonexistent/pack.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeTempFile(t, "invalid.yaml", `invalid: yaml: content: [`)
	_, err := Load(context.Background(), path)
	if err == nil {
		t.Error("Load() expected error for invalid YAML")
	}
}

func TestLoad_FilesMustBeMapping(t *testing.T) {
	content := `
levels:
  - id: 1
    title: L
    challenges:
      - id: 1
        title: C
        files: [a, b]
        correct_command: grep x a
`
	_, err := Load(context.Background(), writeTempFile(t, "pack.yaml", content))
	if err == nil || !strings.Contains(err.Error(), "files must be a mapping") {
		t.Errorf("Load() error = %v, want mapping error", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *Pack)
		wantErr string
	}{
		{
			name:    "no levels",
			mutate:  func(p *Pack) { p.Levels = nil },
			wantErr: "levels: at least one level is required",
		},
		{
			name:    "zero lives",
			mutate:  func(p *Pack) { p.Settings.Lives = 0 },
			wantErr: "settings: lives must be >= 1",
		},
		{
			name:    "negative hints",
			mutate:  func(p *Pack) { p.Settings.Hints = -1 },
			wantErr: "settings: hints must be >= 0",
		},
		{
			name:    "unknown basic syntax",
			mutate:  func(p *Pack) { p.Settings.BasicSyntax = "pcre" },
			wantErr: "settings: basic_syntax",
		},
		{
			name:    "level without title",
			mutate:  func(p *Pack) { p.Levels[0].Title = "" },
			wantErr: "levels[0] (): title is required",
		},
		{
			name:    "level without challenges",
			mutate:  func(p *Pack) { p.Levels[0].Challenges = nil },
			wantErr: "levels[0] (Basics): at least one challenge is required",
		},
		{
			name: "duplicate level id",
			mutate: func(p *Pack) {
				dup := p.Levels[0]
				dup.Challenges = []Challenge{validChallenge(99)}
				p.Levels = append(p.Levels, dup)
			},
			wantErr: "levels[1] (Basics): duplicate level id 1",
		},
		{
			name:    "duplicate challenge id",
			mutate:  func(p *Pack) { p.Levels[0].Challenges[1].ID = 7 },
			wantErr: "levels[0].challenges[1] (Count): duplicate challenge id 7",
		},
		{
			name:    "challenge without files",
			mutate:  func(p *Pack) { p.Levels[0].Challenges[0].Files = nil },
			wantErr: "files: at least one file is required",
		},
		{
			name: "duplicate file",
			mutate: func(p *Pack) {
				ch := &p.Levels[0].Challenges[0]
				ch.Files = append(ch.Files, ch.Files[0])
			},
			wantErr: `files: duplicate file "b.log"`,
		},
		{
			name:    "missing command",
			mutate:  func(p *Pack) { p.Levels[0].Challenges[0].CorrectCommand = "" },
			wantErr: "correct_command is required",
		},
		{
			name:    "command not grep",
			mutate:  func(p *Pack) { p.Levels[0].Challenges[0].CorrectCommand = "cat b.log" },
			wantErr: `correct_command: Command must start with "grep"`,
		},
		{
			name:    "negative points",
			mutate:  func(p *Pack) { p.Levels[0].Challenges[0].Points = -5 },
			wantErr: "points must be >= 0",
		},
		{
			name:    "negative time limit",
			mutate:  func(p *Pack) { p.Levels[0].Challenges[0].TimeLimit = -time.Second },
			wantErr: "time_limit must not be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pack := mustParse(t, validPack)
			tt.mutate(pack)

			err := Validate(pack)
			if err == nil {
				t.Fatal("Validate() expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want it to contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestParse_EnvironmentOverrides(t *testing.T) {
	t.Setenv(EnvLives, "9")
	t.Setenv(EnvHints, "0")
	t.Setenv(EnvBasicSyntax, "posix")

	pack, err := Parse([]byte(validPack))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if pack.Settings.Lives != 9 {
		t.Errorf("Lives = %d, want 9", pack.Settings.Lives)
	}
	if pack.Settings.Hints != 0 {
		t.Errorf("Hints = %d, want 0", pack.Settings.Hints)
	}
	if pack.Settings.Syntax() != matcher.BasicPOSIX {
		t.Errorf("Syntax() = %q, want posix", pack.Settings.Syntax())
	}
}

func TestParse_InvalidEnvironment(t *testing.T) {
	t.Setenv(EnvLives, "lots")

	_, err := Parse([]byte(validPack))
	if err == nil || !strings.Contains(err.Error(), EnvLives) {
		t.Errorf("Parse() error = %v, want %s error", err, EnvLives)
	}
}

func TestDefault(t *testing.T) {
	pack, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}

	if len(pack.Levels) != 5 {
		t.Errorf("levels = %d, want 5", len(pack.Levels))
	}
	if pack.NumChallenges() != 15 {
		t.Errorf("challenges = %d, want 15", pack.NumChallenges())
	}
	if pack.Settings.Syntax() != matcher.BasicPOSIX {
		t.Errorf("Syntax() = %q, want posix", pack.Settings.Syntax())
	}

	for i, pos := range pack.Positions() {
		ch := pack.Challenge(pos)
		if ch.ID != i+1 {
			t.Errorf("challenge %d has id %d", i, ch.ID)
		}
		if len(ch.Hints) == 0 {
			t.Errorf("challenge %d has no hints", ch.ID)
		}
	}

	pos, ok := pack.FindChallenge(12)
	if !ok {
		t.Fatal("FindChallenge(12) not found")
	}
	if diff := cmp.Diff([]string{"script1.js", "script2.js", "script3.js"}, pack.Challenge(pos).Files.Names()); diff != "" {
		t.Errorf("challenge 12 files (-want +got):\n%s", diff)
	}
	if pack.Level(pos).ID != 4 {
		t.Errorf("challenge 12 level = %d, want 4", pack.Level(pos).ID)
	}
}

func TestPack_Find(t *testing.T) {
	pack := mustParse(t, validPack)

	if _, ok := pack.FindChallenge(100); ok {
		t.Error("FindChallenge(100) found a challenge")
	}
	if i, ok := pack.FindLevel(1); !ok || i != 0 {
		t.Errorf("FindLevel(1) = %d, %v", i, ok)
	}
	if _, ok := pack.FindLevel(2); ok {
		t.Error("FindLevel(2) found a level")
	}
	want := []Position{{Level: 0, Challenge: 0}, {Level: 0, Challenge: 1}}
	if diff := cmp.Diff(want, pack.Positions()); diff != "" {
		t.Errorf("Positions() mismatch (-want +got):\n%s", diff)
	}
}

func TestFiles_MarshalKeepsOrder(t *testing.T) {
	pack := mustParse(t, validPack)

	data, err := yaml.Marshal(pack.Levels[0].Challenges[0].Files)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var files Files
	if err := yaml.Unmarshal(data, &files); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if diff := cmp.Diff(pack.Levels[0].Challenges[0].Files, files); diff != "" {
		t.Errorf("files mismatch (-want +got):\n%s", diff)
	}
}

func TestDefaultPackYAML(t *testing.T) {
	data := DefaultPackYAML()
	data[0] = 'X'
	if DefaultPackYAML()[0] == 'X' {
		t.Error("DefaultPackYAML() returned the shared buffer")
	}
}

func mustParse(t *testing.T, content string) *Pack {
	t.Helper()
	pack, err := Parse([]byte(content))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return pack
}

func validChallenge(id int) Challenge {
	return Challenge{
		ID:             id,
		Title:          "extra",
		Files:          Files{{Name: "f", Content: "x"}},
		CorrectCommand: "grep x f",
		ExpectedOutput: []string{"x"},
	}
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write temp file: %v", err)
	}
	return path
}
