// Package fifo implements the named-pipe transport between amlctl clients and
// the AML daemon: the shared command channel and the per-request response
// channels that carry completions back.
//
// Errors returned by this package are classified with sentinel kinds so
// callers can use errors.Is rather than string matching.
package fifo

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// Sentinel errors for channel failure classification.
var (
	// ErrIO indicates an open, create, write or read syscall failure.
	ErrIO = errors.New("channel i/o error")

	// ErrPathTooLong indicates a configured or derived path exceeds PathMax.
	ErrPathTooLong = errors.New("path too long")

	// ErrInterrupted indicates a wait was cancelled by the caller.
	ErrInterrupted = errors.New("interrupted")

	// ErrTimedOut indicates a bounded wait expired.
	ErrTimedOut = errors.New("timed out")

	// ErrNoResponse indicates the response channel closed before a full
	// header arrived. It is an ErrIO.
	ErrNoResponse = fmt.Errorf("no response delivered: %w", ErrIO)

	// ErrDaemonNotRunning indicates the command channel has no reader.
	// It is an ErrIO.
	ErrDaemonNotRunning = fmt.Errorf("daemon not running: %w", ErrIO)
)

// ChannelError wraps an OS error with channel classification.
type ChannelError struct {
	// Kind is the sentinel error for classification (e.g., ErrTimedOut).
	Kind error
	// Op is the operation that failed (e.g., "mkfifo", "open", "read").
	Op string
	// Path is the channel path involved, if any.
	Path string
	// Err is the underlying error. May be nil.
	Err error
}

func (e *ChannelError) Error() string {
	msg := e.Op
	if e.Path != "" {
		msg += " " + e.Path
	}
	msg += ": " + e.Kind.Error()
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error for errors.Is/As chain traversal.
func (e *ChannelError) Unwrap() error {
	return e.Err
}

// Is reports whether the error matches the target sentinel.
func (e *ChannelError) Is(target error) bool {
	return errors.Is(e.Kind, target)
}

func newChannelError(kind error, op, path string, err error) *ChannelError {
	return &ChannelError{Kind: kind, Op: op, Path: path, Err: err}
}

// isNoReader reports whether a non-blocking write open failed only because
// no process has the FIFO open for reading yet. Linux reports this as ENXIO.
func isNoReader(err error) bool {
	return errors.Is(err, unix.ENXIO)
}
