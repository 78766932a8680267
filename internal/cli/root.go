// Package cli provides the command-line interface for grepmaster.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ccollicutt/grepmaster/internal/cli/commands"
	"github.com/ccollicutt/grepmaster/internal/cli/plugins"
)

// Execute runs the root command and returns the exit code.
func Execute() int {
	return run(os.Args[1:], os.Stderr, plugins.DefaultFinder())
}

func run(args []string, stderr io.Writer, finder *plugins.Finder) int {
	rootCmd := NewRootCommand()
	rootCmd.SetArgs(args)

	// An unknown first word may name a plugin.
	command := pluginCandidate(rootCmd, args)
	if command != "" {
		if pluginPath, err := finder.Find(command); err == nil {
			return plugins.Execute(pluginPath, args[1:])
		}
	}

	commands.ExitCode = 0
	if err := rootCmd.Execute(); err != nil {
		if command != "" {
			_, _ = fmt.Fprintln(stderr, plugins.FormatNotFoundError(command))
			return 2
		}
		// SilenceErrors keeps cobra from printing this itself.
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	return commands.ExitCode
}

// pluginCandidate returns the first argument when it is not a flag and not
// a built-in command.
func pluginCandidate(rootCmd *cobra.Command, args []string) string {
	if len(args) == 0 || args[0] == "" || args[0][0] == '-' {
		return ""
	}
	if isBuiltinCommand(rootCmd, args[0]) {
		return ""
	}
	return args[0]
}

// isBuiltinCommand checks if a command name is a built-in cobra command.
func isBuiltinCommand(rootCmd *cobra.Command, name string) bool {
	for _, cmd := range rootCmd.Commands() {
		if cmd.Name() == name || cmd.HasAlias(name) {
			return true
		}
	}
	return name == "help" || name == "completion"
}

// NewRootCommand creates the root cobra command.
func NewRootCommand() *cobra.Command {
	g := &commands.Globals{Logger: zap.NewNop()}

	rootCmd := &cobra.Command{
		Use:   "grepmaster",
		Short: "Learn grep by solving challenges",
		Long: `grepmaster teaches grep through short challenges.

Each challenge gives you a few small files and asks for a grep command that
prints exactly the expected lines. Commands are evaluated by a built-in
simulator that supports -i -n -v -c -w -E -o -H and -A/-B/-C.

  grepmaster play               Play the bundled challenges
  grepmaster run "grep ..."     Evaluate a command against files on disk
  grepmaster explain "grep ..." Show how a command is understood
  grepmaster validate pack.yaml Check a custom challenge pack

PLUGINS:
  Unknown commands are looked up as plugins: standalone binaries named
  grepmaster-<command>, searched for in the directory of the grepmaster
  binary, then ~/.grepmaster/plugins/, then PATH.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(g.Verbose)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			g.Logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if g.Logger != nil {
				_ = g.Logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().BoolVar(&g.Verbose, "verbose", false, "Debug logging and extra output detail")

	rootCmd.AddCommand(commands.NewRunCommand(g))
	rootCmd.AddCommand(commands.NewExplainCommand())
	rootCmd.AddCommand(commands.NewPlayCommand(g))
	rootCmd.AddCommand(commands.NewValidateCommand(g))
	rootCmd.AddCommand(commands.NewVersionCommand())

	return rootCmd
}

// newLogger builds the stderr logger. Only warnings and errors are shown
// unless verbose is set, so logs stay out of the way of play sessions.
func newLogger(verbose bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return config.Build()
}
