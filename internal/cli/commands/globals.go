package commands

import (
	"context"

	"go.uber.org/zap"

	"github.com/ccollicutt/grepmaster/pkg/config"
)

// ExitCode is set by commands to indicate the result
var ExitCode = 0

// Globals holds state shared by every command. The root command fills it in
// before a command runs.
type Globals struct {
	Verbose bool
	Logger  *zap.Logger
}

func (g *Globals) logger() *zap.Logger {
	if g == nil || g.Logger == nil {
		return zap.NewNop()
	}
	return g.Logger
}

// loadPack loads the pack at path, or the bundled pack when path is empty.
// The returned source names where the pack came from.
func loadPack(ctx context.Context, path string) (pack *config.Pack, source string, err error) {
	if path == "" {
		pack, err = config.Default()
		return pack, "default pack", err
	}
	pack, err = config.Load(ctx, path)
	return pack, path, err
}

func contextOf(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
