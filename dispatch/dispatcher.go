// Package dispatch sends commands to the AML daemon and, when asked, waits
// for their completion.
//
// A synchronous Send provisions a response channel named by a fresh
// CorrelationID, writes the command, waits on the channel and removes it on
// every exit path.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/pithecene-io/amlctl/adapter"
	"github.com/pithecene-io/amlctl/fifo"
	"github.com/pithecene-io/amlctl/journal"
	"github.com/pithecene-io/amlctl/log"
	"github.com/pithecene-io/amlctl/metrics"
	"github.com/pithecene-io/amlctl/types"
)

// sequence numbers synchronous requests process-wide. Goroutines share OS
// threads, so (pid, tid) alone does not keep concurrent requests apart.
var sequence atomic.Int32

func nextSeq() int32 {
	return sequence.Add(1) - 1
}

// Recorder persists one entry per dispatched command.
type Recorder interface {
	Append(e *journal.Entry) error
}

// Dispatcher sends commands on the daemon's command channel.
//
// Logger, Metrics, Journal and Adapter are optional.
type Dispatcher struct {
	// FS is the filesystem to use. Nil means fifo.OSFS.
	FS fifo.FS
	// CommandDir is the daemon home holding the command pipe.
	CommandDir string
	// ExitDir holds response channels. Empty means os.TempDir().
	ExitDir string
	// ExitMode is the response channel mode. Zero means fifo.DefaultMode.
	ExitMode os.FileMode

	Logger  *log.Logger
	Metrics *metrics.Collector
	Journal Recorder
	Adapter adapter.Adapter
}

// Result describes a dispatched command.
type Result struct {
	// ID is the correlation ID stamped on a synchronous command. It is
	// the zero value for NoWait.
	ID types.CorrelationID
	// Completion is the decoded daemon response, if one was read.
	Completion types.Completion
	// Waited reports whether Send waited on a response channel.
	Waited   bool
	Duration time.Duration
}

// Send dispatches cmd and, unless wait is NoWait, waits for its completion.
//
// Errors, matched with errors.Is or errors.As:
//   - ErrPathTooLong: CommandDir is too long; nothing was touched
//   - ErrNoResponseChannel: the response channel could not be created;
//     the command was not sent
//   - ErrDaemonNotRunning, ErrIO: the command could not be written
//   - ErrTimedOut, ErrInterrupted, ErrNoResponse: no completion was read
//   - ErrBadCompletion: the daemon reported a negative code
//   - *CompletionError: the daemon reported a positive errno
func (d *Dispatcher) Send(ctx context.Context, cmd *types.Command, wait WaitMode) (res Result, err error) {
	start := time.Now()
	defer func() {
		res.Duration = time.Since(start)
		d.record(ctx, cmd, wait, &res, err)
	}()

	if err := fifo.ValidateCommandDir(d.CommandDir); err != nil {
		return res, err
	}
	cmd.Magic = types.CommandMagic

	if wait.IsNone() {
		cmd.ExitID.PID = 0
		return res, d.send(cmd)
	}

	channels := &fifo.Channels{FS: d.FS, Dir: d.ExitDir, Mode: d.ExitMode}
	id := types.NewCorrelationID(nextSeq())
	cmd.ExitID = id
	res.ID = id

	ch, err := channels.Create(id)
	if err != nil {
		d.Metrics.IncChannelFailure()
		return res, fmt.Errorf("%w: %w", ErrNoResponseChannel, err)
	}
	d.Metrics.IncChannelCreated()
	defer d.closeChannel(ch)

	if err := d.send(cmd); err != nil {
		return res, err
	}

	res.Waited = true
	completion, err := channels.ReadResponse(ctx, id, wait.Timeout())
	if err != nil {
		d.countWaitFailure(err)
		return res, err
	}
	res.Completion = completion

	switch {
	case completion.Code < 0:
		d.Metrics.IncBadCompletion()
		return res, badCompletion(completion.Code, completion.Message)
	case completion.Code > 0:
		d.Metrics.IncDomainFailure()
		return res, &CompletionError{Code: completion.Code, Message: completion.Message}
	}
	d.Metrics.IncCompletion()
	return res, nil
}

func (d *Dispatcher) send(cmd *types.Command) error {
	ch := &fifo.CommandChannel{FS: d.FS, Path: fifo.CommandChannelPath(d.CommandDir)}
	if err := ch.Send(cmd); err != nil {
		d.Metrics.IncSendFailure()
		return err
	}
	d.Metrics.IncCommandSent(cmd.Cmd.String())
	return nil
}

func (d *Dispatcher) closeChannel(ch *fifo.ResponseChannel) {
	if err := ch.Close(); err != nil {
		d.Logger.Warn("response channel not removed", map[string]any{
			"path":  ch.Path(),
			"error": err.Error(),
		})
		return
	}
	d.Metrics.IncChannelRemoved()
}

func (d *Dispatcher) countWaitFailure(err error) {
	switch {
	case errors.Is(err, ErrTimedOut):
		d.Metrics.IncTimeout()
	case errors.Is(err, ErrInterrupted):
		d.Metrics.IncInterrupt()
	default:
		d.Metrics.IncNoResponse()
	}
}

// Outcome classifies the result of Send for journals and events.
func Outcome(wait WaitMode, err error) string {
	var completionErr *CompletionError
	switch {
	case err == nil && wait.IsNone():
		return journal.OutcomeSent
	case err == nil:
		return journal.OutcomeCompleted
	case errors.As(err, &completionErr):
		return journal.OutcomeFailed
	case errors.Is(err, ErrBadCompletion):
		return journal.OutcomeBadCompletion
	case errors.Is(err, ErrTimedOut):
		return journal.OutcomeTimedOut
	case errors.Is(err, ErrInterrupted):
		return journal.OutcomeInterrupted
	case errors.Is(err, ErrNoResponseChannel):
		return journal.OutcomeNoResponseChannel
	case errors.Is(err, ErrPathTooLong):
		return journal.OutcomePathTooLong
	case errors.Is(err, ErrDaemonNotRunning):
		return journal.OutcomeDaemonNotRunning
	default:
		return journal.OutcomeIOError
	}
}

// record logs the result and hands it to the journal and the adapter.
func (d *Dispatcher) record(ctx context.Context, cmd *types.Command, wait WaitMode, res *Result, err error) {
	outcome := Outcome(wait, err)
	logger := d.Logger.WithRequest(cmd.Cmd, res.ID)
	fields := map[string]any{
		"eq":          cmd.Eq,
		"wait":        wait.String(),
		"outcome":     outcome,
		"code":        res.Completion.Code,
		"duration_ms": res.Duration.Milliseconds(),
	}
	if err != nil {
		fields["error"] = err.Error()
		logger.Warn("command failed", fields)
	} else {
		logger.Info("command dispatched", fields)
	}

	entry := &journal.Entry{
		Time:       time.Now().UTC(),
		Command:    cmd.Cmd.String(),
		Eq:         cmd.Eq,
		Slot:       cmd.Slot,
		VSN:        cmd.VSNString(),
		Wait:       wait.String(),
		Outcome:    outcome,
		Code:       res.Completion.Code,
		Message:    res.Completion.Message,
		DurationMs: res.Duration.Milliseconds(),
	}
	if !res.ID.IsSentinel() {
		entry.RequestID = res.ID.String()
	}
	if err != nil {
		entry.Error = err.Error()
	}

	if d.Journal != nil {
		if jerr := d.Journal.Append(entry); jerr != nil {
			logger.Warn("journal append failed", map[string]any{"error": jerr.Error()})
		}
	}
	if d.Adapter != nil && !wait.IsNone() {
		d.publish(ctx, entry, logger)
	}
}

func (d *Dispatcher) publish(ctx context.Context, e *journal.Entry, logger *log.Logger) {
	host, _ := os.Hostname()
	event := &adapter.CommandCompletedEvent{
		EventType:  adapter.EventType,
		Command:    e.Command,
		Eq:         e.Eq,
		Slot:       e.Slot,
		VSN:        e.VSN,
		RequestID:  e.RequestID,
		Outcome:    e.Outcome,
		Code:       e.Code,
		Message:    e.Message,
		Error:      e.Error,
		Host:       host,
		Timestamp:  e.Time.Format(time.RFC3339),
		DurationMs: e.DurationMs,
	}
	// An interrupted wait still gets reported.
	if err := d.Adapter.Publish(context.WithoutCancel(ctx), event); err != nil {
		logger.Warn("completion event not published", map[string]any{"error": err.Error()})
	}
}
