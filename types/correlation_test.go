package types

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCorrelationID_PathTemplate(t *testing.T) {
	id := CorrelationID{PID: 4242, ThreadID: 17, Seq: 3}
	got := id.Path("/tmp")
	want := "/tmp/.EXIT-FIFO-p4242t17.3"
	if got != want {
		t.Errorf("Path() = %q, want %q", got, want)
	}
}

func TestCorrelationID_PathUniqueness(t *testing.T) {
	ids := []CorrelationID{
		{PID: 1, ThreadID: 23, Seq: 4},
		{PID: 12, ThreadID: 3, Seq: 4},
		{PID: 123, ThreadID: 0, Seq: 4},
		{PID: 1, ThreadID: 2, Seq: 34},
		{PID: 1, ThreadID: 23, Seq: 0},
		{PID: 1, ThreadID: 234, Seq: 0},
		{PID: 1, ThreadID: -1, Seq: 0},
		{PID: 1, ThreadID: 1, Seq: -1},
	}

	seen := make(map[string]CorrelationID, len(ids))
	for _, id := range ids {
		p := id.Path("/var/tmp")
		if prev, dup := seen[p]; dup {
			t.Fatalf("ids %v and %v both map to %q", prev, id, p)
		}
		seen[p] = id
	}
}

func TestCorrelationID_PathFitsBuffer(t *testing.T) {
	id := CorrelationID{PID: 1<<22 - 1, ThreadID: 1<<22 - 1, Seq: 1<<31 - 1}
	if n := len(id.Path("/tmp")); n >= MaxExitPathLen {
		t.Errorf("path length %d exceeds %d", n, MaxExitPathLen)
	}
}

func TestNewCorrelationID(t *testing.T) {
	id := NewCorrelationID(5)
	if id.PID != int64(os.Getpid()) {
		t.Errorf("PID = %d, want %d", id.PID, os.Getpid())
	}
	if id.ThreadID == 0 {
		t.Error("ThreadID is zero")
	}
	if id.Seq != 5 {
		t.Errorf("Seq = %d, want 5", id.Seq)
	}
	if id.IsSentinel() {
		t.Error("fresh id reported as sentinel")
	}
	if !strings.HasPrefix(filepath.Base(id.Path("/x")), ".EXIT-FIFO-p") {
		t.Errorf("unexpected name %q", id.Name())
	}
}

func TestCorrelationID_Consume(t *testing.T) {
	id := CorrelationID{PID: 10, ThreadID: 11, Seq: 0}
	id.Consume()
	if !id.IsSentinel() {
		t.Error("Consume did not set the sentinel")
	}
	if id.ThreadID != 11 {
		t.Errorf("Consume changed ThreadID to %d", id.ThreadID)
	}
}
