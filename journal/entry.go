// Package journal keeps a local, append-only record of dispatched commands.
//
// Each entry is one length-prefixed msgpack frame. Several processes may
// append to the same journal: a frame is written with a single write to a
// file opened O_APPEND.
package journal

import "time"

// Outcome values recorded for a dispatched command.
const (
	OutcomeSent              = "sent" // not waited for
	OutcomeCompleted         = "completed"
	OutcomeFailed            = "failed" // positive completion code
	OutcomeBadCompletion     = "bad_completion"
	OutcomeTimedOut          = "timed_out"
	OutcomeInterrupted       = "interrupted"
	OutcomeDaemonNotRunning  = "daemon_not_running"
	OutcomeNoResponseChannel = "no_response_channel"
	OutcomePathTooLong       = "path_too_long"
	OutcomeIOError           = "io_error"
)

// Entry records one dispatched command and how it ended.
type Entry struct {
	Time       time.Time `msgpack:"time" json:"time" yaml:"time"`
	Command    string    `msgpack:"cmd" json:"command" yaml:"command"`
	Eq         int32     `msgpack:"eq" json:"eq" yaml:"eq"`
	Slot       int32     `msgpack:"slot" json:"slot" yaml:"slot"`
	VSN        string    `msgpack:"vsn,omitempty" json:"vsn,omitempty" yaml:"vsn,omitempty"`
	RequestID  string    `msgpack:"id" json:"request_id" yaml:"request_id"`
	Wait       string    `msgpack:"wait" json:"wait" yaml:"wait"`
	Outcome    string    `msgpack:"outcome" json:"outcome" yaml:"outcome"`
	Code       int32     `msgpack:"code" json:"code" yaml:"code"`
	Message    string    `msgpack:"msg,omitempty" json:"message,omitempty" yaml:"message,omitempty"`
	Error      string    `msgpack:"err,omitempty" json:"error,omitempty" yaml:"error,omitempty"`
	DurationMs int64     `msgpack:"dur_ms" json:"duration_ms" yaml:"duration_ms"`
}

// Failed reports whether the entry ended in anything but success or a
// fire-and-forget send.
func (e *Entry) Failed() bool {
	return e.Outcome != OutcomeCompleted && e.Outcome != OutcomeSent
}
