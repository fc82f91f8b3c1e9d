// Package responder is a stand-in for the daemon end of the protocol. It
// reads commands from the command pipe and answers synchronous ones on
// their response channels. It never executes a command.
package responder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/pithecene-io/amlctl/fifo"
	"github.com/pithecene-io/amlctl/ipc"
	"github.com/pithecene-io/amlctl/log"
	"github.com/pithecene-io/amlctl/metrics"
	"github.com/pithecene-io/amlctl/types"
)

// Handler decides the completion for one command.
type Handler interface {
	Handle(ctx context.Context, cmd *types.Command) types.Completion
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, cmd *types.Command) types.Completion

// Handle calls f.
func (f HandlerFunc) Handle(ctx context.Context, cmd *types.Command) types.Completion {
	return f(ctx, cmd)
}

// Completed answers every command with code 0.
var Completed = HandlerFunc(func(context.Context, *types.Command) types.Completion {
	return types.Completion{}
})

// Server reads the command pipe under Home.
type Server struct {
	// Home is the daemon home holding the command pipe.
	Home string
	// FS is the filesystem to use. Nil means fifo.OSFS.
	FS fifo.FS
	// Mode is used when the command pipe has to be created.
	Mode os.FileMode
	// Writer delivers completions. Its Logger and Metrics default to the
	// server's.
	Writer *fifo.Writer
	// Handler decides completions. Nil means Completed.
	Handler Handler

	Logger  *log.Logger
	Metrics *metrics.Collector
}

// Serve reads commands until ctx is done. Each command is handled on its
// own goroutine; Serve waits for outstanding completions before returning.
func (s *Server) Serve(ctx context.Context) error {
	if err := fifo.ValidateCommandDir(s.Home); err != nil {
		return err
	}
	path := fifo.CommandChannelPath(s.Home)
	r, err := fifo.OpenCommandReader(s.FS, path, s.Mode)
	if err != nil {
		return err
	}

	writer := s.writer()
	handler := s.Handler
	if handler == nil {
		handler = Completed
	}

	stop := context.AfterFunc(ctx, func() { _ = r.Close() })
	defer stop()

	s.Logger.Info("responder listening", map[string]any{"path": path})

	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		cmd, err := r.Next()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, os.ErrClosed) {
				_ = r.Close()
				return nil
			}
			if ipc.IsBadMagic(err) {
				s.Metrics.IncBadRecord()
				s.Logger.Warn("discarding record", map[string]any{"error": err.Error()})
				continue
			}
			_ = r.Close()
			return fmt.Errorf("read command pipe: %w", err)
		}

		s.Metrics.IncCommandReceived()
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.handle(ctx, handler, writer, cmd)
		}()
	}
}

func (s *Server) handle(ctx context.Context, h Handler, w *fifo.Writer, cmd *types.Command) {
	logger := s.Logger.WithRequest(cmd.Cmd, cmd.ExitID)
	logger.Info("command received", map[string]any{
		"eq":   cmd.Eq,
		"slot": cmd.Slot,
		"vsn":  cmd.VSNString(),
	})

	c := h.Handle(ctx, cmd)
	if cmd.ExitID.IsSentinel() {
		return
	}
	w.WriteResponse(ctx, &cmd.ExitID, c.Code, c.Message)
}

func (s *Server) writer() *fifo.Writer {
	w := &fifo.Writer{FS: s.FS}
	if s.Writer != nil {
		*w = *s.Writer
	}
	if w.FS == nil {
		w.FS = s.FS
	}
	if w.Logger == nil {
		w.Logger = s.Logger
	}
	if w.Metrics == nil {
		w.Metrics = s.Metrics
	}
	return w
}
