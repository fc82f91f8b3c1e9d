// Package main provides the amlctl CLI entrypoint.
//
// Usage:
//
//	amlctl [global options] <command> [options]
//
// Exit codes:
//   - 0: success
//   - 1: the daemon reported a failure
//   - 2: usage or config error
//   - 3: timed out waiting for completion
//   - 4: interrupted while waiting
//   - 5: pipe or response channel failure
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/amlctl/cli/cmd"
)

// Commit is set via ldflags at build time.
var commit = "unknown"

func main() {
	app := cmd.NewApp(commit)
	app.ExitErrHandler = exitErrHandler

	if err := app.Run(os.Args); err != nil {
		// Only reached for errors ExitErrHandler never saw, such as bad
		// global flags.
		os.Exit(cmd.ExitUsage)
	}
}

// exitErrHandler prints the error and exits with its code.
func exitErrHandler(_ *cli.Context, err error) {
	if err == nil {
		return
	}
	code := exitStatus(os.Stderr, err)
	os.Exit(code)
}

// exitStatus writes err's message to w and returns the exit code.
// cli.Exit codes pass through; anything else is a usage error from flag
// parsing.
func exitStatus(w io.Writer, err error) int {
	var exitCoder cli.ExitCoder
	if errors.As(err, &exitCoder) {
		code := exitCoder.ExitCode()
		msg := exitCoder.Error()

		// cli.Exit("", N).Error() is "exit status N"; nothing to say.
		if msg != "" && msg != fmt.Sprintf("exit status %d", code) {
			fmt.Fprintln(w, msg)
		}
		return code
	}

	fmt.Fprintf(w, "Error: %v\n", err)
	return cmd.ExitUsage
}
