package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ccollicutt/grepmaster/pkg/challenge"
)

// DefaultDebounce is how long validate --watch waits for writes to settle.
const DefaultDebounce = 300 * time.Millisecond

// ValidateOptions holds options for the validate command.
type ValidateOptions struct {
	Watch    bool
	Debounce time.Duration
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(g *Globals) *cobra.Command {
	opts := &ValidateOptions{}

	cmd := &cobra.Command{
		Use:   "validate [pack-file]",
		Short: "Validate a challenge pack",
		Long: `Validate a challenge pack without playing it.

Checks:
  - YAML syntax
  - Required fields and unique ids
  - Settings (lives, hints, basic_syntax)
  - Every correct_command parses
  - Every correct_command produces its expected_output

Without a file the bundled pack is validated. With --watch the pack is
validated again each time the file changes, until interrupted.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, args, opts, g)
		},
	}

	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Validate again whenever the pack file changes")
	cmd.Flags().DurationVar(&opts.Debounce, "debounce", DefaultDebounce, "Quiet period before validating after a change")

	return cmd
}

func runValidate(cmd *cobra.Command, args []string, opts *ValidateOptions, g *Globals) error {
	ctx := contextOf(cmd.Context())
	w := cmd.OutOrStdout()

	var path string
	if len(args) > 0 {
		path = args[0]
	}

	if !opts.Watch {
		return validatePack(ctx, w, path)
	}
	if path == "" {
		return errors.New("--watch needs a pack file")
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	pw, err := newPackWatcher(path, g.logger())
	if err != nil {
		return err
	}
	defer pw.Close()

	report := func() {
		if err := validatePack(ctx, w, path); err != nil {
			fmt.Fprintf(w, "\nError: %v\n", err)
		}
		fmt.Fprintf(w, "\nWatching %s for changes (Ctrl-C to stop)...\n", path)
	}

	report()
	return pw.Run(ctx, opts.Debounce, report)
}

// validatePack loads, validates and verifies one pack, printing a report.
func validatePack(ctx context.Context, w io.Writer, path string) error {
	name := path
	if name == "" {
		name = "bundled pack"
	}
	fmt.Fprintf(w, "Validating %s...\n", name)

	pack, _, err := loadPack(ctx, path)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	fmt.Fprintf(w, "\nPack valid!\n")
	fmt.Fprintf(w, "  Levels:       %d\n", len(pack.Levels))
	fmt.Fprintf(w, "  Challenges:   %d\n", pack.NumChallenges())
	fmt.Fprintf(w, "  Basic syntax: %s\n", pack.Settings.Syntax())

	results, err := challenge.VerifyPack(ctx, pack)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "\nSolutions:\n")
	for _, v := range results {
		status := "PASS"
		if !v.Passed {
			status = "FAIL"
		}
		fmt.Fprintf(w, "  [%s] %d.%d %s\n", status, v.Level, v.Challenge, v.Title)
		if v.Passed {
			continue
		}
		fmt.Fprintf(w, "         command: %s\n", v.Command)
		if v.Err != nil {
			fmt.Fprintf(w, "         error:   %v\n", v.Err)
			continue
		}
		fmt.Fprintf(w, "         output:\n")
		for _, line := range v.Output {
			fmt.Fprintf(w, "           %s\n", line)
		}
	}

	if failed := challenge.Failed(results); len(failed) > 0 {
		return fmt.Errorf("%d of %d solution(s) do not produce their expected output", len(failed), len(results))
	}
	return nil
}

// packWatcher reports debounced changes to one file. The parent directory is
// watched so that editors which save by renaming are still seen.
type packWatcher struct {
	watcher *fsnotify.Watcher
	target  string
	logger  *zap.Logger
}

func newPackWatcher(path string, logger *zap.Logger) (*packWatcher, error) {
	target, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(target); err != nil {
		return nil, fmt.Errorf("cannot watch pack: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(target), err)
	}

	return &packWatcher{watcher: watcher, target: target, logger: logger}, nil
}

// Run calls onChange once writes to the file have been quiet for debounce.
// It returns when ctx is done.
func (pw *packWatcher) Run(ctx context.Context, debounce time.Duration, onChange func()) error {
	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-pw.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != pw.target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				pw.logger.Debug("ignoring pack event", zap.String("op", event.Op.String()))
				continue
			}
			pw.logger.Debug("pack changed", zap.String("op", event.Op.String()))
			timer.Reset(debounce)

		case <-timer.C:
			onChange()

		case err, ok := <-pw.watcher.Errors:
			if !ok {
				return nil
			}
			pw.logger.Warn("watch error", zap.Error(err))
		}
	}
}

// Close stops watching.
func (pw *packWatcher) Close() error {
	return pw.watcher.Close()
}
