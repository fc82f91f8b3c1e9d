// Package iox provides I/O helpers for resource cleanup.
package iox

import (
	"io"
	"sync"
)

// DiscardClose closes c and discards the error.
// Use in defer statements where close errors are unactionable:
//
//	defer iox.DiscardClose(f)
func DiscardClose(c io.Closer) { _ = c.Close() }

// CloseFunc returns a cleanup function that closes c.
// Designed for t.Cleanup and b.Cleanup registration:
//
//	t.Cleanup(iox.CloseFunc(client))
func CloseFunc(c io.Closer) func() {
	return func() { _ = c.Close() }
}

// DiscardErr calls fn and discards the returned error.
// Use for non-Close cleanup calls (e.g. Flush) where errors are unactionable:
//
//	defer iox.DiscardErr(w.Flush)
func DiscardErr(fn func() error) { _ = fn() }

// OnceCloser wraps an io.Closer so that Close runs at most once.
// Later calls return the first call's error. The zero value is not usable;
// construct with NewOnceCloser.
type OnceCloser struct {
	c    io.Closer
	once sync.Once
	err  error
}

// NewOnceCloser returns a closer that closes c on first use only.
func NewOnceCloser(c io.Closer) *OnceCloser {
	return &OnceCloser{c: c}
}

// Close closes the wrapped closer the first time it is called.
func (o *OnceCloser) Close() error {
	o.once.Do(func() { o.err = o.c.Close() })
	return o.err
}
