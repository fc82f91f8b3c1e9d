package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/amlctl/cli/cmd"
)

func TestExitErrHandler_NilError(t *testing.T) {
	// Should not panic or exit on nil error
	exitErrHandler(nil, nil)
}

func TestExitStatus_ExitCoder(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{"success no message", cli.Exit("", cmd.ExitSuccess), 0, ""},
		{"daemon failure", cli.Exit("command failed: device busy (errno 16)", cmd.ExitFailed), 1, "device busy"},
		{"usage", cli.Exit("mount needs exactly one of --vsn or --slot", cmd.ExitUsage), 2, "--vsn"},
		{"timeout", cli.Exit("timed out", cmd.ExitTimedOut), 3, "timed out"},
		{"interrupted", cli.Exit("interrupted", cmd.ExitInterrupted), 4, "interrupted"},
		{"io", cli.Exit("daemon not running", cmd.ExitIO), 5, "daemon not running"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if got := exitStatus(&buf, tt.err); got != tt.wantCode {
				t.Errorf("exitStatus() = %d, want %d", got, tt.wantCode)
			}
			if tt.wantMsg == "" {
				if buf.Len() != 0 {
					t.Errorf("expected no output, got %q", buf.String())
				}
				return
			}
			if !strings.Contains(buf.String(), tt.wantMsg) {
				t.Errorf("output %q does not contain %q", buf.String(), tt.wantMsg)
			}
		})
	}
}

func TestExitStatus_WrappedExitCoder(t *testing.T) {
	wrapped := errors.Join(errors.New("context"), cli.Exit("inner error", 42))

	var buf bytes.Buffer
	if got := exitStatus(&buf, wrapped); got != 42 {
		t.Errorf("exitStatus() = %d, want 42", got)
	}
}

func TestExitStatus_RegularErrorIsUsage(t *testing.T) {
	var buf bytes.Buffer
	got := exitStatus(&buf, errors.New(`Required flag "eq" not set`))
	if got != cmd.ExitUsage {
		t.Errorf("exitStatus() = %d, want %d", got, cmd.ExitUsage)
	}
	if !strings.HasPrefix(buf.String(), "Error: ") {
		t.Errorf("output = %q, want Error: prefix", buf.String())
	}
}

func TestExitStatus_MessageSuppression(t *testing.T) {
	var buf bytes.Buffer
	exitStatus(&buf, cli.Exit("", 3))
	if buf.Len() != 0 {
		t.Errorf("empty cli.Exit message printed %q", buf.String())
	}
}
