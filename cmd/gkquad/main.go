// Command gkquad integrates functions with an adaptive Gauss-Kronrod rule.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/gkquad/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
