package iox

import (
	"errors"
	"testing"
)

type spyCloser struct{ closed bool }

func (s *spyCloser) Close() error { s.closed = true; return errors.New("ignored") }

func TestDiscardClose(t *testing.T) {
	s := &spyCloser{}
	DiscardClose(s)
	if !s.closed {
		t.Fatal("Close was not called")
	}
}

func TestCloseFunc(t *testing.T) {
	s := &spyCloser{}
	fn := CloseFunc(s)
	if s.closed {
		t.Fatal("Close called before invoking returned func")
	}
	fn()
	if !s.closed {
		t.Fatal("Close was not called")
	}
}

func TestDiscardErr(t *testing.T) {
	called := false
	DiscardErr(func() error {
		called = true
		return errors.New("ignored")
	})
	if !called {
		t.Fatal("fn was not called")
	}
}

type countingCloser struct{ n int }

func (c *countingCloser) Close() error { c.n++; return errors.New("first") }

func TestOnceCloser(t *testing.T) {
	c := &countingCloser{}
	oc := NewOnceCloser(c)

	err1 := oc.Close()
	err2 := oc.Close()
	DiscardClose(oc)

	if c.n != 1 {
		t.Fatalf("Close called %d times, want 1", c.n)
	}
	if err1 == nil || err2 != err1 {
		t.Errorf("errors = %v, %v; want the first error repeated", err1, err2)
	}
}
