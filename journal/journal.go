package journal

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/pithecene-io/amlctl/iox"
)

// Journal appends entries to a file.
type Journal struct {
	mu   sync.Mutex
	file *os.File
	path string
}

// Open opens the journal at path for appending, creating it and its parent
// directory if needed.
func Open(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("journal: create directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("journal: open: %w", err)
	}
	return &Journal{file: f, path: path}, nil
}

// Path returns the journal file path.
func (j *Journal) Path() string { return j.path }

// Append writes e as one frame.
func (j *Journal) Append(e *Entry) error {
	frame, err := EncodeFrame(e)
	if err != nil {
		return err
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	if _, err := j.file.Write(frame); err != nil {
		return fmt.Errorf("journal: append: %w", err)
	}
	return nil
}

// Close closes the journal file.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.file.Close()
}

// ReadFile returns every entry in the journal at path. A truncated final
// frame stops the read; the entries before it are returned together with
// the partial-frame error so callers can warn and carry on.
func ReadFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("journal: open: %w", err)
	}
	defer iox.DiscardClose(f)
	return ReadAll(f)
}

// ReadAll decodes entries from r until end of stream or the first error.
func ReadAll(r io.Reader) ([]Entry, error) {
	dec := NewDecoder(r)
	var entries []Entry
	for {
		e, err := dec.Next()
		if err == io.EOF {
			return entries, nil
		}
		if err != nil {
			return entries, err
		}
		entries = append(entries, *e)
	}
}
