package fifo

import (
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// File is the subset of *os.File the channels use.
type File interface {
	io.Reader
	io.Writer
	io.Closer
}

// FS is the filesystem surface used by the channels. Tests substitute a spy
// to assert which operations were attempted.
type FS interface {
	Mkfifo(path string, mode os.FileMode) error
	OpenFile(name string, flag int, perm os.FileMode) (File, error)
	Remove(name string) error
	Stat(name string) (os.FileInfo, error)
}

// chmod is replaced in tests to exercise the cleanup path.
var chmod = os.Chmod

// OSFS is the FS backed by the host filesystem.
type OSFS struct{}

// Mkfifo creates a named pipe and sets its permissions to mode exactly,
// regardless of the process umask. A pipe whose mode cannot be set is
// removed again.
func (OSFS) Mkfifo(path string, mode os.FileMode) error {
	if err := unix.Mkfifo(path, uint32(mode.Perm())); err != nil {
		return &os.PathError{Op: "mkfifo", Path: path, Err: err}
	}
	if err := chmod(path, mode.Perm()); err != nil {
		_ = os.Remove(path)
		return err
	}
	return nil
}

func (OSFS) OpenFile(name string, flag int, perm os.FileMode) (File, error) {
	f, err := os.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (OSFS) Remove(name string) error { return os.Remove(name) }

func (OSFS) Stat(name string) (os.FileInfo, error) { return os.Stat(name) }

// orOS returns fsys, or OSFS when fsys is nil.
func orOS(fsys FS) FS {
	if fsys == nil {
		return OSFS{}
	}
	return fsys
}

// writeNonBlock opens the write end of a FIFO without waiting for a reader.
const writeNonBlock = os.O_WRONLY | unix.O_NONBLOCK
