// grepmaster - learn grep by solving challenges
//
// grepmaster evaluates grep commands with a built-in simulator and checks
// them against small challenge files.
package main

import (
	"os"

	"github.com/ccollicutt/grepmaster/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
