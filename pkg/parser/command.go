// Package parser turns a typed grep command line into a Command.
//
// Only the shape of the command is checked here: the program name and the
// presence of a pattern. Flag spelling, flag compatibility and file existence
// are left to the match engine.
package parser

import "errors"

// Program is the only command name Parse accepts.
const Program = "grep"

var (
	// ErrInvalidInvocation is returned when the command does not start with grep.
	ErrInvalidInvocation = errors.New(`Command must start with "grep"`)

	// ErrMissingPattern is returned when no pattern token follows the flags.
	ErrMissingPattern = errors.New("Missing search pattern")
)

// Command is a parsed grep invocation.
type Command struct {
	// Flags holds the flag tokens in the order they were typed, normalised
	// through the option table (clusters expanded, long forms shortened,
	// values fused as in "-C2"). Unknown flags are kept verbatim.
	Flags []string

	// Pattern is the search pattern with one layer of matching quotes removed.
	Pattern string

	// Files lists the file operands in the order given. An empty list means
	// the caller should search every loaded file.
	Files []string
}

// Options decodes the command's flags.
func (c *Command) Options() Options {
	return DecodeOptions(c.Flags)
}

// HasFiles reports whether the command named any file operands.
func (c *Command) HasFiles() bool {
	return len(c.Files) > 0
}
