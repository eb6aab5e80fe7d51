// Command cmdtrack records command invocations and reports usage counts.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/cmdtrack/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	if err != nil {
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) || !exitErr.Reported {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
	}
	os.Exit(cli.GetExitCode(err))
}
