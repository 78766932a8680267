// Package challenge runs grep practice sessions: it evaluates submitted
// commands against a challenge's files, checks answers, and keeps score.
package challenge

import (
	"strings"

	"github.com/ccollicutt/grepmaster/pkg/fileset"
	"github.com/ccollicutt/grepmaster/pkg/matcher"
	"github.com/ccollicutt/grepmaster/pkg/parser"
)

// Normalize trims every line and drops empty lines and context separators.
func Normalize(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || line == matcher.Separator {
			continue
		}
		out = append(out, line)
	}
	return out
}

// CheckAnswer reports whether output answers a challenge expecting expected.
// Both sides are normalized. Each output line must equal its expected line
// or end with it, so a correct answer may carry extra prefixes.
func CheckAnswer(output, expected []string) bool {
	got := Normalize(output)
	want := Normalize(expected)
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] && !strings.HasSuffix(got[i], want[i]) {
			return false
		}
	}
	return true
}

// Evaluate parses raw and runs it against files. A command without file
// operands searches every file in the set, in order.
func Evaluate(m *matcher.Matcher, raw string, files *fileset.FileSet) (*parser.Command, []string, error) {
	cmd, err := parser.Parse(raw)
	if err != nil {
		return nil, nil, err
	}

	names := cmd.Files
	if !cmd.HasFiles() {
		names = files.Names()
	}

	out, err := m.Evaluate(cmd.Pattern, cmd.Flags, names, files)
	if err != nil {
		return cmd, nil, err
	}
	return cmd, out, nil
}
