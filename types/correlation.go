package types

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// MaxExitPathLen is the buffer size the daemon reserves for a response
// channel path. Callers must pick an exit directory short enough that
// Path fits; it is not checked at runtime.
const MaxExitPathLen = 128

// exitFIFOTemplate names a response channel by pid, thread id and seq.
const exitFIFOTemplate = ".EXIT-FIFO-p%dt%d.%d"

// CorrelationID names one in-flight request across processes and threads.
// It is embedded verbatim in every Command on the wire.
//
// A PID of 0 means the requester does not want a completion.
type CorrelationID struct {
	PID      int64
	ThreadID int32
	Seq      int32
}

// NewCorrelationID mints an ID for the calling process and OS thread.
func NewCorrelationID(seq int32) CorrelationID {
	return CorrelationID{
		PID:      int64(os.Getpid()),
		ThreadID: int32(unix.Gettid()),
		Seq:      seq,
	}
}

// IsSentinel reports whether no response was requested (or one was already
// delivered).
func (id CorrelationID) IsSentinel() bool {
	return id.PID == 0
}

// Consume marks the ID as used so a second completion cannot be written.
func (id *CorrelationID) Consume() {
	id.PID = 0
}

// Name returns the response channel file name for the ID.
func (id CorrelationID) Name() string {
	return fmt.Sprintf(exitFIFOTemplate, id.PID, id.ThreadID, id.Seq)
}

// Path returns the response channel path inside dir.
// Two distinct IDs never produce the same path for the same dir.
func (id CorrelationID) Path(dir string) string {
	return filepath.Join(dir, id.Name())
}

func (id CorrelationID) String() string {
	return fmt.Sprintf("p%dt%d.%d", id.PID, id.ThreadID, id.Seq)
}
