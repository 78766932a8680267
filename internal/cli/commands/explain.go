package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/grepmaster/pkg/matcher"
	"github.com/ccollicutt/grepmaster/pkg/parser"
)

// ExplainOptions holds options for the explain command
type ExplainOptions struct {
	BasicSyntax string
}

// NewExplainCommand creates the explain command
func NewExplainCommand() *cobra.Command {
	opts := &ExplainOptions{}

	cmd := &cobra.Command{
		Use:   "explain <grep command>",
		Short: "Explain how a grep command is understood",
		Long: `Explain how a grep command is understood.

Shows the parsed pattern and files, what each flag does, which flags are
ignored, and the regular expression the pattern compiles to.

Example:
  grepmaster explain "grep -inC2 'error' app.log"
  grepmaster explain --basic-syntax posix "grep 'a\|b' app.log"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExplain(cmd.OutOrStdout(), strings.Join(args, " "), opts)
		},
	}

	cmd.Flags().StringVar(&opts.BasicSyntax, "basic-syntax", string(matcher.BasicLiteral), "How patterns without -E are read (literal|posix)")

	return cmd
}

func runExplain(w io.Writer, raw string, opts *ExplainOptions) error {
	syntax, err := matcher.ParseBasicSyntax(opts.BasicSyntax)
	if err != nil {
		return err
	}

	cmd, err := parser.Parse(raw)
	if err != nil {
		return fmt.Errorf("parse failed: %w", err)
	}
	o := cmd.Options()

	fmt.Fprintf(w, "Pattern: %s\n", cmd.Pattern)
	if cmd.HasFiles() {
		fmt.Fprintf(w, "Files:   %s\n", strings.Join(cmd.Files, " "))
	} else {
		fmt.Fprintln(w, "Files:   (every loaded file)")
	}

	fmt.Fprintln(w, "\nFlags:")
	known := 0
	for _, flag := range cmd.Flags {
		info, ok := parser.Describe(flag)
		if !ok {
			continue
		}
		known++
		help := info.Help
		if info.TakesValue {
			help = fmt.Sprintf("%s (%d)", help, info.Value)
		}
		fmt.Fprintf(w, "  %-5s %-16s %s\n", flag, info.Long, help)
	}
	if known == 0 {
		fmt.Fprintln(w, "  (none)")
	}

	if len(o.Unknown) > 0 {
		fmt.Fprintln(w, "\nIgnored flags:")
		for _, flag := range o.Unknown {
			fmt.Fprintf(w, "  %s\n", flag)
		}
	}

	fmt.Fprintf(w, "\nMode:    %s\n", describeMode(o, syntax))
	if o.HasContext() && !o.OnlyMatching && !o.Count {
		fmt.Fprintf(w, "Context: %d before, %d after\n", o.BeforeRadius(), o.AfterRadius())
	}
	fmt.Fprintf(w, "Output:  %s\n", describeOutput(o, cmd))

	m := matcher.New(matcher.WithBasicSyntax(syntax))
	re, err := m.Compile(cmd.Pattern, o)
	if err != nil {
		fmt.Fprintln(w, "Regexp:  (invalid)")
		return err
	}
	fmt.Fprintf(w, "Regexp:  %s\n", re.String())
	return nil
}

func describeMode(o parser.Options, syntax matcher.BasicSyntax) string {
	var parts []string
	switch {
	case o.Extended:
		parts = append(parts, "extended regular expression")
	case syntax == matcher.BasicPOSIX:
		parts = append(parts, "POSIX basic regular expression")
	default:
		parts = append(parts, "literal string")
	}

	if o.IgnoreCase {
		parts = append(parts, "case-insensitive")
	} else {
		parts = append(parts, "case-sensitive")
	}
	if o.WordRegexp {
		parts = append(parts, "whole words")
	}
	if o.Invert {
		parts = append(parts, "inverted")
	}
	return strings.Join(parts, ", ")
}

func describeOutput(o parser.Options, cmd *parser.Command) string {
	switch {
	case o.Count:
		return "one count per file"
	case o.OnlyMatching && o.Invert:
		return "nothing (-o with -v extracts no text)"
	case o.OnlyMatching:
		return "each matched part on its own line"
	}

	var parts []string
	if o.WithFilename || len(cmd.Files) > 1 {
		parts = append(parts, "file name")
	}
	if o.LineNumbers {
		parts = append(parts, "line number")
	}
	if len(parts) == 0 {
		return "selected lines"
	}
	return "selected lines prefixed with " + strings.Join(parts, " and ")
}
