// Package matcher evaluates a parsed grep command against in-memory files and
// produces the lines grep would print.
package matcher

import "fmt"

// Separator is printed between non-contiguous context groups of one file.
const Separator = "--"

// FileSource gives read-only access to file contents by name.
type FileSource interface {
	Content(name string) (string, bool)
}

// BasicSyntax selects how patterns are read when -E is absent.
type BasicSyntax string

const (
	// BasicLiteral treats the pattern as a literal substring.
	BasicLiteral BasicSyntax = "literal"

	// BasicPOSIX reads the pattern as a POSIX basic regular expression
	// (\| alternation, \{m,n\} intervals, bracket expressions).
	BasicPOSIX BasicSyntax = "posix"
)

// ParseBasicSyntax validates a basic syntax name. The empty string selects
// BasicLiteral.
func ParseBasicSyntax(s string) (BasicSyntax, error) {
	switch BasicSyntax(s) {
	case "", BasicLiteral:
		return BasicLiteral, nil
	case BasicPOSIX:
		return BasicPOSIX, nil
	default:
		return "", fmt.Errorf("invalid basic syntax %q (must be literal or posix)", s)
	}
}

// MatchResult is one selected line of a file.
type MatchResult struct {
	// Index is the 0-based line index.
	Index int

	// Bodies holds the text printed for the line: the whole line, or each
	// extracted match in only-matching mode.
	Bodies []string
}
