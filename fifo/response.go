package fifo

import (
	"errors"
	"io/fs"
	"os"
	"sync"

	"github.com/pithecene-io/amlctl/types"
)

// DefaultMode is the response channel permission mode. The daemon and its
// clients run as different principals, so the pipe is world read/write.
const DefaultMode os.FileMode = 0o666

// errSentinelID is returned when a sentinel CorrelationID reaches an
// operation that would touch the filesystem.
var errSentinelID = errors.New("correlation id is the no-response sentinel")

// Channels manages response channels inside one directory.
type Channels struct {
	// FS is the filesystem to use. Nil means OSFS.
	FS FS
	// Dir holds the response channels. Empty means os.TempDir().
	Dir string
	// Mode is the channel permission mode. Zero means DefaultMode.
	Mode os.FileMode
}

func (c *Channels) dir() string {
	if c.Dir == "" {
		return os.TempDir()
	}
	return c.Dir
}

func (c *Channels) mode() os.FileMode {
	if c.Mode == 0 {
		return DefaultMode
	}
	return c.Mode
}

// Path returns the channel path for id.
func (c *Channels) Path(id types.CorrelationID) string {
	return id.Path(c.dir())
}

// Create makes the named pipe for id and returns a handle whose Close
// removes it. Create refuses sentinel IDs without touching the filesystem.
//
// An existing path fails with an error matching both ErrIO and fs.ErrExist.
func (c *Channels) Create(id types.CorrelationID) (*ResponseChannel, error) {
	if id.IsSentinel() {
		return nil, newChannelError(ErrIO, "mkfifo", "", errSentinelID)
	}
	path := c.Path(id)
	if err := orOS(c.FS).Mkfifo(path, c.mode()); err != nil {
		return nil, newChannelError(ErrIO, "mkfifo", path, err)
	}
	return &ResponseChannel{ID: id, path: path, fs: orOS(c.FS)}, nil
}

// Remove unlinks the channel for id. A sentinel ID is never removed.
func (c *Channels) Remove(id types.CorrelationID) error {
	if id.IsSentinel() {
		return nil
	}
	return remove(orOS(c.FS), c.Path(id))
}

func remove(fsys FS, path string) error {
	if err := fsys.Remove(path); err != nil {
		return newChannelError(ErrIO, "remove", path, err)
	}
	return nil
}

// ResponseChannel is one created response pipe. The requester owns it and
// must Close it on every exit path, typically with defer.
type ResponseChannel struct {
	ID types.CorrelationID

	path string
	fs   FS

	once sync.Once
	err  error
}

// Path returns the filesystem path of the channel.
func (r *ResponseChannel) Path() string { return r.path }

// Close removes the channel. Only the first call touches the filesystem;
// later calls return the first result. A path that is already gone is not
// an error.
func (r *ResponseChannel) Close() error {
	r.once.Do(func() {
		err := remove(r.fs, r.path)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			r.err = err
		}
	})
	return r.err
}
