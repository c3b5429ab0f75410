// Command imgsweep finds, lists and saves the images a page shows.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/imgsweep/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
