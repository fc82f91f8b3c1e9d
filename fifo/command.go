package fifo

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pithecene-io/amlctl/iox"
	"github.com/pithecene-io/amlctl/ipc"
	"github.com/pithecene-io/amlctl/types"
)

// CommandChannelName is the command pipe file name inside the daemon home.
const CommandChannelName = "FIFO_CMD"

// PathMax is the platform path length limit, terminator included.
const PathMax = 1024

// CommandChannelPath returns the command pipe path for a daemon home dir.
func CommandChannelPath(dir string) string {
	return filepath.Join(dir, CommandChannelName)
}

// ValidateCommandDir checks that dir plus the command pipe name fits in
// PathMax. It performs no I/O.
func ValidateCommandDir(dir string) error {
	n := len(dir) + len("/"+CommandChannelName)
	if n >= PathMax {
		return newChannelError(ErrPathTooLong, "validate", dir,
			fmt.Errorf("%d bytes exceeds limit of %d", n, PathMax-1))
	}
	return nil
}

// CommandChannel is the client end of the daemon's command pipe.
type CommandChannel struct {
	// FS is the filesystem to use. Nil means OSFS.
	FS FS
	// Path is the command pipe, usually CommandChannelPath(home).
	Path string
}

// Send writes cmd as one record in a single write. A pipe with no reader
// fails with ErrDaemonNotRunning; every other failure is an ErrIO.
func (c *CommandChannel) Send(cmd *types.Command) error {
	b, err := ipc.EncodeCommand(cmd)
	if err != nil {
		return newChannelError(ErrIO, "encode", c.Path, err)
	}

	f, err := orOS(c.FS).OpenFile(c.Path, writeNonBlock, 0)
	if err != nil {
		if isNoReader(err) {
			return newChannelError(ErrDaemonNotRunning, "open", c.Path, err)
		}
		return newChannelError(ErrIO, "open", c.Path, err)
	}
	defer iox.DiscardClose(f)

	n, err := f.Write(b)
	if err != nil {
		return newChannelError(ErrIO, "write", c.Path, err)
	}
	if n != len(b) {
		return newChannelError(ErrIO, "write", c.Path, io.ErrShortWrite)
	}
	return nil
}

// CommandReader is the daemon end of the command pipe.
type CommandReader struct {
	path   string
	closer *iox.OnceCloser
	dec    *ipc.CommandDecoder
}

// OpenCommandReader opens the command pipe at path for reading, creating it
// with mode if it does not exist.
//
// The pipe is opened read-write so the open does not block and reads never
// see end-of-file between clients.
func OpenCommandReader(fsys FS, path string, mode os.FileMode) (*CommandReader, error) {
	fsys = orOS(fsys)

	info, err := fsys.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if mode == 0 {
			mode = DefaultMode
		}
		if err := fsys.Mkfifo(path, mode); err != nil {
			return nil, newChannelError(ErrIO, "mkfifo", path, err)
		}
	case err != nil:
		return nil, newChannelError(ErrIO, "stat", path, err)
	case info.Mode()&fs.ModeNamedPipe == 0:
		return nil, newChannelError(ErrIO, "stat", path, fmt.Errorf("not a named pipe: %s", info.Mode()))
	}

	f, err := fsys.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, newChannelError(ErrIO, "open", path, err)
	}
	return &CommandReader{
		path:   path,
		closer: iox.NewOnceCloser(f),
		dec:    ipc.NewCommandDecoder(f),
	}, nil
}

// Path returns the command pipe path.
func (r *CommandReader) Path() string { return r.path }

// Next blocks until one record arrives and returns it. A record with a bad
// magic is reported as an *ipc.FrameError; the stream stays aligned, so the
// caller may keep reading. After Close, Next returns an error matching
// os.ErrClosed.
func (r *CommandReader) Next() (*types.Command, error) {
	return r.dec.ReadCommand()
}

// Close closes the pipe, unblocking a pending Next.
func (r *CommandReader) Close() error {
	return r.closer.Close()
}
