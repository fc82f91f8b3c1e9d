package dispatch

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type waitKind int

const (
	waitNone waitKind = iota
	waitForever
	waitBounded
)

// WaitMode selects whether and how long Send waits for a completion.
// The zero value is NoWait.
type WaitMode struct {
	kind    waitKind
	timeout time.Duration
}

var (
	// NoWait sends the command and returns without a response channel.
	NoWait = WaitMode{kind: waitNone}
	// WaitForever waits until the completion arrives or ctx is done.
	WaitForever = WaitMode{kind: waitForever}
)

// WaitFor waits at most d. A non-positive d is raised to one second so a
// bounded wait never turns into an unbounded one.
func WaitFor(d time.Duration) WaitMode {
	if d <= 0 {
		d = time.Second
	}
	return WaitMode{kind: waitBounded, timeout: d}
}

// WaitSeconds waits at most n seconds.
func WaitSeconds(n int) WaitMode {
	return WaitFor(time.Duration(n) * time.Second)
}

// IsNone reports whether the mode is NoWait.
func (w WaitMode) IsNone() bool { return w.kind == waitNone }

// IsForever reports whether the mode is WaitForever.
func (w WaitMode) IsForever() bool { return w.kind == waitForever }

// Timeout returns the wait bound, or 0 when the wait is not bounded.
func (w WaitMode) Timeout() time.Duration {
	if w.kind != waitBounded {
		return 0
	}
	return w.timeout
}

func (w WaitMode) String() string {
	switch w.kind {
	case waitForever:
		return "forever"
	case waitBounded:
		return w.timeout.String()
	default:
		return "none"
	}
}

// ParseWaitMode parses "none", "forever", a number of seconds ("30") or a
// duration ("30s", "10m").
func ParseWaitMode(s string) (WaitMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "", "none", "no", "nowait":
		return NoWait, nil
	case "forever", "-1":
		return WaitForever, nil
	}

	if n, err := strconv.Atoi(s); err == nil {
		if n <= 0 {
			return NoWait, fmt.Errorf("invalid wait %q: seconds must be positive (use none or forever)", s)
		}
		return WaitSeconds(n), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return NoWait, fmt.Errorf("invalid wait %q: want none, forever, seconds or a duration", s)
	}
	if d <= 0 {
		return NoWait, fmt.Errorf("invalid wait %q: duration must be positive", s)
	}
	return WaitFor(d), nil
}
