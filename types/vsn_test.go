package types

import (
	"errors"
	"strings"
	"testing"
)

func TestParseVSN(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"ABC123", false},
		{"A", false},
		{"VOL-01.X", false},
		{"!\"%&'()*+,-./:;<=>?_", false},
		{strings.Repeat("Z", MaxVSNLen), false},
		{strings.Repeat("Z", MaxVSNLen+1), true},
		{"abc123", true},
		{"ABC 123", true},
		{"ABC#1", true},
		{"ABC\x00", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			v, err := ParseVSN(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseVSN(%q) = %q, want error", tt.in, v)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseVSN(%q) error: %v", tt.in, err)
			}
			if string(v) != tt.in {
				t.Errorf("ParseVSN(%q) = %q", tt.in, v)
			}
		})
	}
}

func TestParseVSN_Empty(t *testing.T) {
	if _, err := ParseVSN(""); !errors.Is(err, ErrEmptyVSN) {
		t.Errorf("ParseVSN(\"\") error = %v, want ErrEmptyVSN", err)
	}
}

func TestCommand_VSNFields(t *testing.T) {
	cmd := NewCommand(CmdLabel, 30)
	cmd.SetVSN(VSN(strings.Repeat("A", MaxVSNLen)))
	cmd.SetOldVSN("OLD001")

	if got := cmd.VSNString(); got != strings.Repeat("A", MaxVSNLen) {
		t.Errorf("VSNString() = %q", got)
	}
	if cmd.VSN[VSNFieldLen-1] != 0 {
		t.Error("VSN field is not terminated")
	}
	if got := cmd.OldVSNString(); got != "OLD001" {
		t.Errorf("OldVSNString() = %q", got)
	}
}
