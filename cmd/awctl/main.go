// Command awctl drives the ActivityWatch native bridge from a desktop shell.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/awbridge/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		if !cli.Printed(err) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(cli.ExitCode(err))
	}
}
