package challenge

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/ccollicutt/grepmaster/pkg/config"
	"github.com/ccollicutt/grepmaster/pkg/matcher"
)

// Verification is the outcome of running one challenge's reference command.
type Verification struct {
	Level     int
	Challenge int
	Title     string
	Command   string
	Output    []string
	Err       error
	Passed    bool
}

// VerifyPack runs every challenge's correct_command against its own files
// and checks the result against expected_output. Challenges are evaluated
// concurrently; results are returned in pack order. The error is non-nil only
// when ctx is cancelled.
func VerifyPack(ctx context.Context, pack *config.Pack) ([]Verification, error) {
	m := matcher.New(matcher.WithBasicSyntax(pack.Settings.Syntax()))
	positions := pack.Positions()
	results := make([]Verification, len(positions))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, pos := range positions {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			ch := pack.Challenge(pos)
			v := Verification{
				Level:     pack.Level(pos).ID,
				Challenge: ch.ID,
				Title:     ch.Title,
				Command:   ch.CorrectCommand,
			}
			_, v.Output, v.Err = Evaluate(m, ch.CorrectCommand, ch.FileSet())
			v.Passed = v.Err == nil && CheckAnswer(v.Output, ch.ExpectedOutput)

			results[i] = v
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Failed returns the verifications that did not pass.
func Failed(results []Verification) []Verification {
	var out []Verification
	for _, v := range results {
		if !v.Passed {
			out = append(out, v)
		}
	}
	return out
}
