package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ccollicutt/grepmaster/pkg/challenge"
	"github.com/ccollicutt/grepmaster/pkg/fileset"
	"github.com/ccollicutt/grepmaster/pkg/matcher"
	"github.com/ccollicutt/grepmaster/pkg/output"
	"github.com/ccollicutt/grepmaster/pkg/parser"
)

// RunOptions holds command-line options for the run command.
type RunOptions struct {
	Output      string
	Quiet       bool
	Pack        string
	Challenge   int
	BasicSyntax string
}

// NewRunCommand creates the run command.
func NewRunCommand(g *Globals) *cobra.Command {
	opts := &RunOptions{}

	cmd := &cobra.Command{
		Use:   "run <grep command>",
		Short: "Evaluate a grep command",
		Long: `Evaluate a grep command the way the game does.

The command is searched against files on disk (globs are expanded), or,
with --challenge, against the files of a challenge in a pack. The whole
command may be given as one quoted argument, or after -- as separate words.

Examples:
  grepmaster run "grep -n ERROR app.log"
  grepmaster run -- grep -c -i warning *.log
  grepmaster run --challenge 4 "grep -c failed error.log"

Exit codes:
  0 - Lines were selected (or the challenge was solved)
  1 - No lines were selected (or the answer was wrong)
  2 - Parse, pattern or runtime error`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd, args, opts, g)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Verdict only, no output lines")
	cmd.Flags().StringVar(&opts.Pack, "pack", "", "Challenge pack file (default: bundled pack)")
	cmd.Flags().IntVar(&opts.Challenge, "challenge", 0, "Check the command against this challenge id")
	cmd.Flags().StringVar(&opts.BasicSyntax, "basic-syntax", string(matcher.BasicLiteral),
		"How patterns without -E are read (literal|posix); a pack's setting wins unless given")

	return cmd
}

func runRun(cmd *cobra.Command, args []string, opts *RunOptions, g *Globals) error {
	ctx := contextOf(cmd.Context())
	log := g.logger()

	formatter, err := output.NewFormatter(opts.Output, output.FormatOptions{
		Verbose: g != nil && g.Verbose,
		Quiet:   opts.Quiet,
	})
	if err != nil {
		return err
	}

	syntax, err := matcher.ParseBasicSyntax(opts.BasicSyntax)
	if err != nil {
		return err
	}

	if opts.Pack != "" && opts.Challenge == 0 {
		return errors.New("--pack requires --challenge")
	}

	raw := strings.Join(args, " ")
	start := time.Now()

	var report *output.Report
	if opts.Challenge != 0 {
		report, err = evaluateChallenge(ctx, raw, opts, syntax, cmd.Flags().Changed("basic-syntax"))
	} else {
		report, err = evaluateFiles(ctx, raw, syntax, log)
	}
	if err != nil {
		return err
	}
	report.Metadata.EvaluatedAt = start
	report.Metadata.Duration = time.Since(start)

	log.Debug("command evaluated",
		zap.String("command", raw),
		zap.String("source", report.Metadata.Source),
		zap.Int("lines", len(report.Lines)),
		zap.Bool("matched", report.Matched),
	)

	return writeReport(ctx, cmd.OutOrStdout(), formatter, report)
}

// writeReport renders report and sets the exit code. A text report with an
// evaluation error is returned as an error so it lands on stderr; JSON keeps
// the error inside the document.
func writeReport(ctx context.Context, w io.Writer, formatter output.Formatter, report *output.Report) error {
	if report.HasError() && formatter.Name() == "text" {
		return errors.New(report.Error)
	}

	if err := formatter.Format(ctx, report, w); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}

	switch {
	case report.HasError():
		ExitCode = 2
	case report.Challenge != nil && !report.Challenge.Passed:
		ExitCode = 1
	case report.Challenge == nil && !report.Matched:
		ExitCode = 1
	default:
		ExitCode = 0
	}
	return nil
}

// evaluateFiles runs raw against the files it names on disk.
func evaluateFiles(ctx context.Context, raw string, syntax matcher.BasicSyntax, log *zap.Logger) (*output.Report, error) {
	m := matcher.New(matcher.WithBasicSyntax(syntax))
	meta := output.Metadata{Source: "filesystem", BasicSyntax: string(syntax)}

	cmd, err := parser.Parse(raw)
	if err != nil {
		report := output.NewReport(raw, nil, nil, nil, err)
		report.Metadata = meta
		return report, nil
	}
	if !cmd.HasFiles() {
		return nil, errors.New("no files to search: name at least one file after the pattern")
	}

	set, operands, missing, err := fileset.Load(ctx, cmd.Files)
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		log.Debug("files not found", zap.Strings("files", missing))
	}

	lines, err := m.Evaluate(cmd.Pattern, cmd.Flags, operands, set)
	report := output.NewReport(raw, cmd, operands, lines, err)
	report.Metadata = meta
	return report, nil
}

// evaluateChallenge runs raw against a challenge's files and checks the
// answer. A command without files searches every challenge file.
func evaluateChallenge(ctx context.Context, raw string, opts *RunOptions, syntax matcher.BasicSyntax, syntaxGiven bool) (*output.Report, error) {
	pack, source, err := loadPack(ctx, opts.Pack)
	if err != nil {
		return nil, err
	}

	pos, ok := pack.FindChallenge(opts.Challenge)
	if !ok {
		return nil, fmt.Errorf("challenge %d not found in %s", opts.Challenge, source)
	}
	ch := pack.Challenge(pos)

	if !syntaxGiven {
		syntax = pack.Settings.Syntax()
	}
	m := matcher.New(matcher.WithBasicSyntax(syntax))

	cmd, lines, err := challenge.Evaluate(m, raw, ch.FileSet())

	var files []string
	if cmd != nil {
		files = cmd.Files
		if !cmd.HasFiles() {
			files = ch.Files.Names()
		}
	}

	report := output.NewReport(raw, cmd, files, lines, err)
	report.Metadata = output.Metadata{Source: source, BasicSyntax: string(syntax)}
	report.Challenge = &output.ChallengeResult{
		ID:       ch.ID,
		Title:    ch.Title,
		Passed:   err == nil && challenge.CheckAnswer(lines, ch.ExpectedOutput),
		Expected: ch.ExpectedOutput,
	}
	return report, nil
}
