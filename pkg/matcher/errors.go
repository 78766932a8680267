package matcher

import (
	"errors"
	"fmt"
)

// ErrInvalidPattern matches any *PatternError via errors.Is.
var ErrInvalidPattern = errors.New("invalid regex pattern")

// PatternError reports a pattern that did not compile. It aborts the whole
// evaluation.
type PatternError struct {
	Pattern string
	Err     error
}

func (e *PatternError) Error() string {
	return "Invalid regex pattern: " + e.Pattern
}

func (e *PatternError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrInvalidPattern.
func (e *PatternError) Is(target error) bool {
	return target == ErrInvalidPattern
}

// NotFoundLine is the diagnostic printed in place of a missing file's output.
func NotFoundLine(name string) string {
	return fmt.Sprintf("grep: %s: No such file or directory", name)
}
