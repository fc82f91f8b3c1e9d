package dispatch

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/pithecene-io/amlctl/fifo"
)

// Sentinel errors returned by Send. Channel-level kinds are shared with
// package fifo so either name matches with errors.Is.
var (
	// ErrNoResponseChannel indicates the response channel could not be
	// created; the command was not sent.
	ErrNoResponseChannel = errors.New("cannot create response channel")

	// ErrBadCompletion indicates the daemon reported a negative code.
	ErrBadCompletion = errors.New("bad completion code")

	ErrIO               = fifo.ErrIO
	ErrPathTooLong      = fifo.ErrPathTooLong
	ErrInterrupted      = fifo.ErrInterrupted
	ErrTimedOut         = fifo.ErrTimedOut
	ErrNoResponse       = fifo.ErrNoResponse
	ErrDaemonNotRunning = fifo.ErrDaemonNotRunning
)

// CompletionError carries a positive completion code from the daemon. The
// code is an errno, so errors.Is(err, unix.EBUSY) and similar match.
type CompletionError struct {
	Code    int32
	Message string
}

func (e *CompletionError) Error() string {
	return fmt.Sprintf("command failed: %s (errno %d)", e.Message, e.Code)
}

// Errno returns the completion code as an errno.
func (e *CompletionError) Errno() unix.Errno {
	return unix.Errno(e.Code)
}

// Unwrap exposes the errno for errors.Is.
func (e *CompletionError) Unwrap() error {
	return e.Errno()
}

// badCompletion wraps ErrBadCompletion with the code that caused it.
func badCompletion(code int32, msg string) error {
	return fmt.Errorf("%w: code %d: %s", ErrBadCompletion, code, msg)
}
