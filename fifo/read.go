package fifo

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"
	"time"

	"github.com/pithecene-io/amlctl/iox"
	"github.com/pithecene-io/amlctl/ipc"
	"github.com/pithecene-io/amlctl/types"
)

const (
	// pokeInterval spaces the wake-up opens issued while a cancelled read
	// is unwinding.
	pokeInterval = 10 * time.Millisecond
	// unwindLimit bounds how long a cancelled read waits for its reader
	// goroutine before abandoning it.
	unwindLimit = 5 * time.Second
)

var errReadAborted = errors.New("read aborted")

type readResult struct {
	completion types.Completion
	err        error
}

// pendingRead lets a cancelling caller reach the file a reader goroutine
// has opened.
type pendingRead struct {
	mu      sync.Mutex
	closer  io.Closer
	aborted bool
}

// attach records c as the open file. It returns false if the read was
// already aborted, in which case the goroutine must stop.
func (p *pendingRead) attach(c io.Closer) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.aborted {
		return false
	}
	p.closer = c
	return true
}

// abort marks the read as abandoned and closes the file if one is open.
// Closing a pollable FIFO unblocks a pending Read.
func (p *pendingRead) abort() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.aborted = true
	if p.closer != nil {
		iox.DiscardClose(p.closer)
	}
}

// ReadResponse waits for the completion written to id's channel.
//
// A positive timeout bounds the wait and yields ErrTimedOut when it expires.
// A zero or negative timeout waits until ctx is done. Cancellation of ctx
// yields ErrInterrupted, or ErrTimedOut when ctx carried the deadline.
// A channel closed before a full header arrives yields ErrNoResponse.
func (c *Channels) ReadResponse(ctx context.Context, id types.CorrelationID, timeout time.Duration) (types.Completion, error) {
	path := c.Path(id)
	if id.IsSentinel() {
		return types.Completion{}, newChannelError(ErrIO, "read", "", errSentinelID)
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := ctx.Err(); err != nil {
		return types.Completion{}, cancelError(err, path)
	}

	fsys := orOS(c.FS)
	p := &pendingRead{}
	done := make(chan readResult, 1)
	go func() {
		completion, err := readOnce(fsys, path, p)
		done <- readResult{completion: completion, err: err}
	}()

	select {
	case r := <-done:
		return r.completion, r.err
	case <-ctx.Done():
	}

	p.abort()
	r, ok := unwind(fsys, path, done)
	if ok && r.err == nil {
		// The completion arrived while the wait was being cancelled.
		return r.completion, nil
	}
	return types.Completion{}, cancelError(ctx.Err(), path)
}

// readOnce opens path for reading, blocking until a writer opens it, then
// reads one header and its message.
func readOnce(fsys FS, path string, p *pendingRead) (types.Completion, error) {
	f, err := fsys.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return types.Completion{}, newChannelError(ErrIO, "open", path, err)
	}
	closer := iox.NewOnceCloser(f)
	defer iox.DiscardClose(closer)
	if !p.attach(closer) {
		return types.Completion{}, errReadAborted
	}

	var hdr [ipc.HeaderSize]byte
	if _, err := io.ReadFull(f, hdr[:]); err != nil {
		return types.Completion{}, newChannelError(ErrNoResponse, "read", path, err)
	}
	h, err := ipc.DecodeHeader(hdr[:])
	if err != nil {
		return types.Completion{}, newChannelError(ErrNoResponse, "read", path, err)
	}

	msg := make([]byte, h.MessageLen())
	n, err := io.ReadFull(f, msg)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return types.Completion{}, newChannelError(ErrIO, "read", path, err)
	}
	return types.Completion{Code: h.Code, Message: ipc.DecodeMessage(msg[:n])}, nil
}

// unwind waits for an aborted reader goroutine to finish. A goroutine
// blocked in open is released by briefly opening the write end. It reports
// false if the goroutine did not finish within unwindLimit.
func unwind(fsys FS, path string, done <-chan readResult) (readResult, bool) {
	ticker := time.NewTicker(pokeInterval)
	defer ticker.Stop()
	limit := time.NewTimer(unwindLimit)
	defer limit.Stop()

	for {
		poke(fsys, path)
		select {
		case r := <-done:
			return r, true
		case <-limit.C:
			return readResult{}, false
		case <-ticker.C:
		}
	}
}

// poke opens and immediately closes the write end of path. With no reader
// waiting the open fails with ENXIO, which is ignored.
func poke(fsys FS, path string) {
	f, err := fsys.OpenFile(path, writeNonBlock, 0)
	if err != nil {
		return
	}
	iox.DiscardClose(f)
}

func cancelError(err error, path string) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return newChannelError(ErrTimedOut, "read", path, err)
	}
	return newChannelError(ErrInterrupted, "read", path, err)
}
