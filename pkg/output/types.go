// Package output provides formatting for grep evaluation results and styled
// console output for play sessions.
package output

import (
	"strconv"
	"strings"
	"time"

	"github.com/ccollicutt/grepmaster/pkg/matcher"
	"github.com/ccollicutt/grepmaster/pkg/parser"
)

// Report is the result of evaluating one grep command.
type Report struct {
	// Command is the raw command line.
	Command string `json:"command"`

	Pattern string   `json:"pattern,omitempty"`
	Flags   []string `json:"flags,omitempty"`
	Files   []string `json:"files,omitempty"`

	// Lines is what grep printed, diagnostics included.
	Lines []string `json:"lines"`

	// Error is set when the command did not parse or its pattern did not
	// compile.
	Error string `json:"error,omitempty"`

	// Matched reports whether any line was selected.
	Matched bool `json:"matched"`

	// Challenge is set when the command was checked against a challenge.
	Challenge *ChallengeResult `json:"challenge,omitempty"`

	Metadata Metadata `json:"metadata"`
}

// ChallengeResult is the verdict of a command checked against a challenge.
type ChallengeResult struct {
	ID       int      `json:"id"`
	Title    string   `json:"title"`
	Passed   bool     `json:"passed"`
	Expected []string `json:"expected"`
}

// Metadata provides context about the evaluation.
type Metadata struct {
	// Source is where the files came from: a pack path or "filesystem".
	Source string `json:"source"`

	// BasicSyntax is how patterns without -E were read.
	BasicSyntax string `json:"basic_syntax"`

	EvaluatedAt time.Time     `json:"evaluated_at"`
	Duration    time.Duration `json:"duration"`
}

// NewReport creates a Report for a command and its evaluation. cmd may be nil
// when parsing failed. files are the names that were searched.
func NewReport(raw string, cmd *parser.Command, files, lines []string, err error) *Report {
	report := &Report{
		Command: raw,
		Files:   files,
		Lines:   lines,
	}
	if report.Lines == nil {
		report.Lines = []string{}
	}

	if cmd != nil {
		report.Pattern = cmd.Pattern
		report.Flags = cmd.Flags
	}

	if err != nil {
		report.Error = err.Error()
		return report
	}

	count := cmd != nil && cmd.Options().Count
	report.Matched = selected(lines, files, count)
	return report
}

// HasError returns true if the evaluation failed.
func (r *Report) HasError() bool {
	return r.Error != ""
}

// selected reports whether lines hold any selected line. Diagnostics for
// missing files and context separators do not count, and in count mode only
// a non-zero count does.
func selected(lines, files []string, count bool) bool {
	diagnostics := make(map[string]bool, len(files))
	for _, name := range files {
		diagnostics[matcher.NotFoundLine(name)] = true
	}

	for _, line := range lines {
		if diagnostics[line] || line == matcher.Separator {
			continue
		}
		if !count {
			return true
		}
		n := line[strings.LastIndexByte(line, ':')+1:]
		if v, err := strconv.Atoi(n); err == nil && v > 0 {
			return true
		}
	}
	return false
}
