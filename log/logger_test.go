package log

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/pithecene-io/amlctl/types"
)

func TestLogger_WithRequest(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf).WithRequest(types.CmdLabel, types.CorrelationID{PID: 7, ThreadID: 8, Seq: 9})

	l.Info("command sent", map[string]any{"eq": 30})

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("invalid JSON %q: %v", buf.String(), err)
	}
	if entry["message"] != "command sent" {
		t.Errorf("message = %v", entry["message"])
	}
	if entry["level"] != "info" {
		t.Errorf("level = %v", entry["level"])
	}
	if entry["cmd"] != "label" {
		t.Errorf("cmd = %v", entry["cmd"])
	}
	if entry["pid"] != float64(7) || entry["tid"] != float64(8) || entry["seq"] != float64(9) {
		t.Errorf("correlation fields = %v/%v/%v", entry["pid"], entry["tid"], entry["seq"])
	}
	fields, ok := entry["fields"].(map[string]any)
	if !ok || fields["eq"] != float64(30) {
		t.Errorf("fields = %v", entry["fields"])
	}
}

func TestLogger_NilIsSafe(t *testing.T) {
	var l *Logger
	l.Info("ignored", nil)
	l.WithRequest(types.CmdAudit, types.CorrelationID{}).Warn("ignored", nil)
	l.Sugar().Infof("ignored %d", 1)
	if err := l.Sync(); err != nil {
		t.Errorf("Sync on nil logger: %v", err)
	}
}

func TestParseLevel(t *testing.T) {
	for _, lvl := range []string{"", "debug", "info", "warn", "warning", "error", "DEBUG"} {
		if _, err := ParseLevel(lvl); err != nil {
			t.Errorf("ParseLevel(%q): %v", lvl, err)
		}
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestNewLogger_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	lvl, err := ParseLevel("warn")
	if err != nil {
		t.Fatal(err)
	}
	l := newLoggerWithWriter(&buf, lvl)
	l.Info("hidden", nil)
	if buf.Len() != 0 {
		t.Errorf("info entry written at warn level: %q", buf.String())
	}
	l.Warn("shown", nil)
	if buf.Len() == 0 {
		t.Error("warn entry not written")
	}
}
