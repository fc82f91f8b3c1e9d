package dispatch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/pithecene-io/amlctl/adapter"
	"github.com/pithecene-io/amlctl/fifo"
	"github.com/pithecene-io/amlctl/ipc"
	"github.com/pithecene-io/amlctl/journal"
	"github.com/pithecene-io/amlctl/types"
)

// reply is what the fake daemon answers; skip means never answer.
type reply struct {
	code int32
	msg  string
	skip bool
}

// fakeDaemon reads the command pipe under home and answers each command
// through a response Writer.
type fakeDaemon struct {
	mu       sync.Mutex
	received []types.Command
}

func startDaemon(t *testing.T, home, exitDir string, answer func(*types.Command) reply) *fakeDaemon {
	t.Helper()
	r, err := fifo.OpenCommandReader(nil, fifo.CommandChannelPath(home), 0)
	if err != nil {
		t.Fatalf("open command pipe: %v", err)
	}

	d := &fakeDaemon{}
	w := &fifo.Writer{Dir: exitDir, RetryCount: 500, RetryInterval: 10 * time.Millisecond}
	var wg sync.WaitGroup
	done := make(chan struct{})

	go func() {
		defer close(done)
		for {
			cmd, err := r.Next()
			if err != nil {
				if ipc.IsBadMagic(err) {
					continue
				}
				return
			}
			d.mu.Lock()
			d.received = append(d.received, *cmd)
			d.mu.Unlock()

			rep := answer(cmd)
			if rep.skip {
				continue
			}
			wg.Add(1)
			go func(id types.CorrelationID) {
				defer wg.Done()
				w.WriteResponse(context.Background(), &id, rep.code, rep.msg)
			}(cmd.ExitID)
		}
	}()

	t.Cleanup(func() {
		_ = r.Close()
		<-done
		wg.Wait()
	})
	return d
}

func (d *fakeDaemon) commands() []types.Command {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]types.Command(nil), d.received...)
}

// countingFS counts filesystem operations and delegates to fifo.OSFS.
type countingFS struct {
	mu        sync.Mutex
	ops       int
	mkfifoErr error
}

func (c *countingFS) count() {
	c.mu.Lock()
	c.ops++
	c.mu.Unlock()
}

func (c *countingFS) total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ops
}

func (c *countingFS) Mkfifo(path string, mode os.FileMode) error {
	c.count()
	if c.mkfifoErr != nil {
		return c.mkfifoErr
	}
	return fifo.OSFS{}.Mkfifo(path, mode)
}

func (c *countingFS) OpenFile(name string, flag int, perm os.FileMode) (fifo.File, error) {
	c.count()
	return fifo.OSFS{}.OpenFile(name, flag, perm)
}

func (c *countingFS) Remove(name string) error {
	c.count()
	return fifo.OSFS{}.Remove(name)
}

func (c *countingFS) Stat(name string) (os.FileInfo, error) {
	c.count()
	return fifo.OSFS{}.Stat(name)
}

// memJournal captures journal entries.
type memJournal struct {
	mu      sync.Mutex
	entries []journal.Entry
}

func (m *memJournal) Append(e *journal.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, *e)
	return nil
}

// memAdapter captures published events.
type memAdapter struct {
	mu     sync.Mutex
	events []adapter.CommandCompletedEvent
}

func (m *memAdapter) Publish(_ context.Context, e *adapter.CommandCompletedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, *e)
	return nil
}

func (m *memAdapter) Close() error { return nil }

// assertNoChannels fails if any response channel is left in dir.
func assertNoChannels(t *testing.T, dir string) {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, ".EXIT-FIFO-*"))
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 0 {
		t.Errorf("response channels left behind: %v", matches)
	}
}

func labelCommand() *types.Command {
	cmd := types.NewCommand(types.CmdLabel, 30)
	cmd.Slot = 12
	cmd.BlockSize = 256 << 10
	cmd.Flags = types.LabelSlot
	cmd.SetVSN("ABC123")
	return cmd
}
