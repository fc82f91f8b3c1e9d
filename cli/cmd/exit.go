package cmd

import (
	"errors"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/amlctl/dispatch"
)

// Exit codes.
const (
	ExitSuccess     = 0
	ExitFailed      = 1 // daemon reported failure
	ExitUsage       = 2 // bad flags, arguments or config
	ExitTimedOut    = 3
	ExitInterrupted = 4
	ExitIO          = 5 // channel or pipe failure
)

// ExitCode maps a dispatch error to a process exit code.
func ExitCode(err error) int {
	var completionErr *dispatch.CompletionError
	switch {
	case err == nil:
		return ExitSuccess
	case errors.As(err, &completionErr), errors.Is(err, dispatch.ErrBadCompletion):
		return ExitFailed
	case errors.Is(err, dispatch.ErrTimedOut):
		return ExitTimedOut
	case errors.Is(err, dispatch.ErrInterrupted):
		return ExitInterrupted
	default:
		return ExitIO
	}
}

// exitError wraps a dispatch error for urfave/cli.
func exitError(err error) error {
	if err == nil {
		return nil
	}
	return cli.Exit(err.Error(), ExitCode(err))
}

// usageError reports bad input with ExitUsage.
func usageError(err error) error {
	if err == nil {
		return nil
	}
	return cli.Exit(err.Error(), ExitUsage)
}
