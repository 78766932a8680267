package output

import (
	"context"
	"fmt"
	"io"
)

// TextFormatter prints the lines as grep would, plus an optional verdict.
type TextFormatter struct {
	opts FormatOptions
}

// NewTextFormatter creates a new text formatter with the given options.
func NewTextFormatter(opts FormatOptions) *TextFormatter {
	return &TextFormatter{opts: opts}
}

// Name returns the format name.
func (f *TextFormatter) Name() string {
	return "text"
}

// Format renders the report as text. Errors are left to the caller, which
// prints them on stderr.
func (f *TextFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	if f.opts.Verbose {
		fmt.Fprintf(w, "$ %s\n", report.Command)
	}

	if !f.opts.Quiet {
		for _, line := range report.Lines {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
	}

	if report.Challenge != nil {
		f.formatChallenge(report.Challenge, w)
	}

	if f.opts.Verbose && !report.HasError() {
		fmt.Fprintf(w, "--- %d line(s) in %s\n", len(report.Lines), report.Metadata.Duration.Round(1e3))
	}

	return nil
}

func (f *TextFormatter) formatChallenge(ch *ChallengeResult, w io.Writer) {
	if ch.Passed {
		fmt.Fprintf(w, "PASS challenge %d: %s\n", ch.ID, ch.Title)
		return
	}

	fmt.Fprintf(w, "FAIL challenge %d: %s\n", ch.ID, ch.Title)
	if f.opts.Quiet {
		return
	}
	fmt.Fprintln(w, "  expected:")
	for _, line := range ch.Expected {
		fmt.Fprintf(w, "    %s\n", line)
	}
}
