package fifo

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// spyFS records calls and delegates to OSFS unless a failure is injected.
type spyFS struct {
	mu sync.Mutex

	mkfifos []string
	opens   []string
	removes []string

	openErr   error
	mkfifoErr error
}

func (s *spyFS) Mkfifo(path string, mode os.FileMode) error {
	s.mu.Lock()
	s.mkfifos = append(s.mkfifos, path)
	err := s.mkfifoErr
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return OSFS{}.Mkfifo(path, mode)
}

func (s *spyFS) OpenFile(name string, flag int, perm os.FileMode) (File, error) {
	s.mu.Lock()
	s.opens = append(s.opens, name)
	err := s.openErr
	s.mu.Unlock()
	if err != nil {
		return nil, &os.PathError{Op: "open", Path: name, Err: err}
	}
	return OSFS{}.OpenFile(name, flag, perm)
}

func (s *spyFS) Remove(name string) error {
	s.mu.Lock()
	s.removes = append(s.removes, name)
	s.mu.Unlock()
	return OSFS{}.Remove(name)
}

func (s *spyFS) Stat(name string) (os.FileInfo, error) {
	return OSFS{}.Stat(name)
}

func (s *spyFS) openCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.opens)
}

func (s *spyFS) removeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.removes)
}

func TestOSFSMkfifo_SetsModeDespiteUmask(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipe")
	if err := (OSFS{}).Mkfifo(path, 0o666); err != nil {
		t.Fatalf("Mkfifo failed: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode()&fs.ModeNamedPipe == 0 {
		t.Errorf("mode = %v, want a named pipe", info.Mode())
	}
	if info.Mode().Perm() != 0o666 {
		t.Errorf("perm = %v, want 0666", info.Mode().Perm())
	}
}

func TestOSFSMkfifo_ChmodFailureRemovesPipe(t *testing.T) {
	chmodErr := errors.New("chmod refused")
	orig := chmod
	chmod = func(string, os.FileMode) error { return chmodErr }
	t.Cleanup(func() { chmod = orig })

	path := filepath.Join(t.TempDir(), "pipe")
	if err := (OSFS{}).Mkfifo(path, DefaultMode); !errors.Is(err, chmodErr) {
		t.Fatalf("error = %v, want chmod error", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("pipe left behind after chmod failure: stat err = %v", err)
	}
}
