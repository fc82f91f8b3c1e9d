package cmd

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"golang.org/x/sys/unix"

	"github.com/pithecene-io/amlctl/dispatch"
	"github.com/pithecene-io/amlctl/journal"
	"github.com/pithecene-io/amlctl/types"
)

func hasFlag(names []string, want string) bool {
	for _, n := range names {
		if n == want {
			return true
		}
	}
	return false
}

func TestReadOnlyFlags_IncludesTUI(t *testing.T) {
	var names []string
	for _, f := range ReadOnlyFlags() {
		names = append(names, f.Names()[0])
	}
	if !hasFlag(names, "tui") {
		t.Error("ReadOnlyFlags should include --tui flag for explicit error handling")
	}
}

func TestDispatchFlags_IncludesWaitAndExtras(t *testing.T) {
	var names []string
	for _, f := range DispatchFlags(eqFlag("eq")) {
		names = append(names, f.Names()[0])
	}
	for _, want := range []string{"wait", "quiet", "format", "no-color", "eq"} {
		if !hasFlag(names, want) {
			t.Errorf("DispatchFlags missing --%s", want)
		}
	}
}

func TestNewApp_CommandNamesUnique(t *testing.T) {
	app := NewApp("test")
	seen := make(map[string]bool)
	for _, c := range app.Commands {
		if seen[c.Name] {
			t.Errorf("duplicate command %q", c.Name)
		}
		seen[c.Name] = true
	}
	for _, want := range []string{
		"label", "mount", "unload", "import", "add-vsn", "export", "audit",
		"clean", "move", "state", "tapealert", "sef", "catalog",
		"preview-delete", "load-unavail", "timeout", "history", "stats", "version",
	} {
		if !seen[want] {
			t.Errorf("missing command %q", want)
		}
	}
}

func TestValidateBlockSize(t *testing.T) {
	tests := []struct {
		kib     int
		want    int32
		wantErr bool
	}{
		{0, 0, false},
		{16, 16 << 10, false},
		{256, 256 << 10, false},
		{2048, 2048 << 10, false},
		{8, 0, true},
		{100, 0, true},
		{4096, 0, true},
		{-16, 0, true},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.kib), func(t *testing.T) {
			got, err := ValidateBlockSize(tt.kib)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateBlockSize(%d) error = %v, wantErr %v", tt.kib, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ValidateBlockSize(%d) = %d, want %d", tt.kib, got, tt.want)
			}
		})
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"completion error", &dispatch.CompletionError{Code: int32(unix.EBUSY), Message: "busy"}, ExitFailed},
		{"bad completion", fmt.Errorf("%w: code -1", dispatch.ErrBadCompletion), ExitFailed},
		{"timed out", dispatch.ErrTimedOut, ExitTimedOut},
		{"interrupted", dispatch.ErrInterrupted, ExitInterrupted},
		{"daemon not running", dispatch.ErrDaemonNotRunning, ExitIO},
		{"no response channel", fmt.Errorf("%w: exists", dispatch.ErrNoResponseChannel), ExitIO},
		{"path too long", dispatch.ErrPathTooLong, ExitIO},
		{"other", errors.New("boom"), ExitIO},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestResolveClass(t *testing.T) {
	tests := []struct {
		in      string
		want    types.DeviceClass
		wantErr bool
	}{
		{"tape", types.ClassTape, false},
		{"OPTICAL", types.ClassOptical, false},
		{"li", types.ClassTape, false},
		{"od", types.ClassOptical, false},
		{"robot", types.ClassRobot, false},
		{"floppy", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ResolveClass(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ResolveClass(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ResolveClass(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseHeaders(t *testing.T) {
	got, err := parseHeaders(map[string]string{"X-Base": "1", "X-Over": "old"}, []string{"X-Over=new", "Authorization=Bearer a=b"})
	if err != nil {
		t.Fatalf("parseHeaders: %v", err)
	}
	if got["X-Base"] != "1" || got["X-Over"] != "new" || got["Authorization"] != "Bearer a=b" {
		t.Errorf("parseHeaders = %v", got)
	}

	if _, err := parseHeaders(nil, []string{"novalue"}); err == nil {
		t.Error("expected error for header without =")
	}
	if _, err := parseHeaders(nil, []string{"=v"}); err == nil {
		t.Error("expected error for empty header key")
	}
	if got, _ := parseHeaders(nil, nil); got != nil {
		t.Errorf("no headers should yield nil, got %v", got)
	}
}

func TestFilterEntries(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	entries := []journal.Entry{
		{Time: base, Command: "label", Outcome: journal.OutcomeCompleted},
		{Time: base.Add(time.Second), Command: "unload", Outcome: journal.OutcomeTimedOut},
		{Time: base.Add(2 * time.Second), Command: "label", Outcome: journal.OutcomeFailed},
		{Time: base.Add(3 * time.Second), Command: "label", Outcome: journal.OutcomeSent},
	}

	tests := []struct {
		name    string
		command string
		failed  bool
		limit   int
		want    int
	}{
		{"all", "", false, 0, 4},
		{"label only", "label", false, 0, 3},
		{"failed only", "", true, 0, 2},
		{"failed label", "label", true, 0, 1},
		{"limit", "", false, 2, 2},
		{"limit above count", "", false, 10, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterEntries(entries, tt.command, tt.failed, tt.limit)
			if len(got) != tt.want {
				t.Errorf("FilterEntries = %d entries, want %d", len(got), tt.want)
			}
		})
	}

	// The limit keeps the newest entries.
	last := FilterEntries(entries, "", false, 1)
	if len(last) != 1 || last[0].Outcome != journal.OutcomeSent {
		t.Errorf("limit 1 should keep the last entry, got %+v", last)
	}
}
