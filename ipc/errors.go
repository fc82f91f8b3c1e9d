// Package ipc implements the fixed-layout records exchanged with the AML
// daemon: the Command written to the command channel and the completion
// header written back on a response channel.
package ipc

import (
	"errors"
	"fmt"
)

// FrameErrorKind classifies record decoding errors.
type FrameErrorKind int

const (
	// FrameErrorPartial indicates a short read of a fixed-size record.
	FrameErrorPartial FrameErrorKind = iota
	// FrameErrorBadMagic indicates a Command without CommandMagic.
	FrameErrorBadMagic
	// FrameErrorDecode indicates a structurally invalid record.
	FrameErrorDecode
)

func (k FrameErrorKind) String() string {
	switch k {
	case FrameErrorPartial:
		return "partial"
	case FrameErrorBadMagic:
		return "bad_magic"
	case FrameErrorDecode:
		return "decode"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// FrameError represents a record decoding error.
type FrameError struct {
	Kind FrameErrorKind
	Msg  string
	Err  error
}

func (e *FrameError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *FrameError) Unwrap() error {
	return e.Err
}

// IsPartial reports whether err is a short-record FrameError.
func IsPartial(err error) bool {
	var frameErr *FrameError
	return errors.As(err, &frameErr) && frameErr.Kind == FrameErrorPartial
}

// IsBadMagic reports whether err is a FrameError for a foreign record.
func IsBadMagic(err error) bool {
	var frameErr *FrameError
	return errors.As(err, &frameErr) && frameErr.Kind == FrameErrorBadMagic
}
