// Package plugins provides exec-based plugin support for grepmaster.
// Plugins are separate binaries named grepmaster-<command> that are
// discovered and executed when an unknown command is invoked, the way
// kubectl and git find theirs.
package plugins

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Prefix is prepended to a command name to form the plugin binary name.
const Prefix = "grepmaster-"

// KnownPlugins maps plugin commands to a description of where to get them.
// They get a more helpful not-found message.
var KnownPlugins = map[string]string{}

// ErrPluginNotFound is returned when no plugin binary can be located.
var ErrPluginNotFound = errors.New("plugin not found")

// Finder locates plugin binaries.
type Finder struct {
	// Dirs are searched in order before PATH.
	Dirs []string

	// SearchPath enables the final lookup in PATH.
	SearchPath bool
}

// DefaultFinder searches, in order:
//  1. The directory of the grepmaster binary
//  2. ~/.grepmaster/plugins/
//  3. PATH
func DefaultFinder() *Finder {
	f := &Finder{SearchPath: true}
	if execPath, err := os.Executable(); err == nil {
		f.Dirs = append(f.Dirs, filepath.Dir(execPath))
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		f.Dirs = append(f.Dirs, filepath.Join(homeDir, ".grepmaster", "plugins"))
	}
	return f
}

// FindPlugin looks up a plugin with the DefaultFinder.
func FindPlugin(command string) (string, error) {
	return DefaultFinder().Find(command)
}

// Find returns the full path of the plugin binary for command.
func (f *Finder) Find(command string) (string, error) {
	if command == "" || strings.ContainsAny(command, `/\`) {
		return "", ErrPluginNotFound
	}
	name := Prefix + command

	for _, dir := range f.Dirs {
		candidate := filepath.Join(dir, name)
		if isExecutable(candidate) {
			return candidate, nil
		}
	}

	if f.SearchPath {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}

	return "", ErrPluginNotFound
}

// Execute runs a plugin with the process's standard streams and returns its
// exit code.
func Execute(pluginPath string, args []string) int {
	return Run(pluginPath, args, os.Stdin, os.Stdout, os.Stderr)
}

// Run runs a plugin with the given streams and returns its exit code.
func Run(pluginPath string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cmd := exec.Command(pluginPath, args...) // #nosec G204 -- plugin paths come from Find
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode()
		}
		fmt.Fprintf(stderr, "Error executing plugin: %v\n", err)
		return 1
	}
	return 0
}

// FormatNotFoundError returns the message shown for an unknown command that
// is not an installed plugin either.
func FormatNotFoundError(command string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "unknown command %q for \"grepmaster\"\n", command)

	if info, ok := KnownPlugins[command]; ok {
		fmt.Fprintf(&sb, "\n%q is available as a plugin.\n%s\n\nInstall the plugin binary as one of:\n", command, info)
	} else {
		sb.WriteString("\nIf this is a plugin, install the binary as one of:\n")
	}

	fmt.Fprintf(&sb, "  - %s%s in the same directory as grepmaster\n", Prefix, command)
	fmt.Fprintf(&sb, "  - ~/.grepmaster/plugins/%s%s\n", Prefix, command)
	fmt.Fprintf(&sb, "  - %s%s anywhere in your PATH\n", Prefix, command)
	sb.WriteString("\nRun 'grepmaster --help' for usage.")

	return sb.String()
}

// isExecutable reports whether path is a regular file with an execute bit.
func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular() && info.Mode()&0o111 != 0
}
