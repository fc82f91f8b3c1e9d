package types

import (
	"strings"
	"testing"
)

func TestCommandCode_RoundTripNames(t *testing.T) {
	for code := CmdMount; code <= CmdLoadUnavail; code++ {
		if !code.Valid() {
			t.Fatalf("code %d not valid", code)
		}
		parsed, err := ParseCommandCode(code.String())
		if err != nil {
			t.Fatalf("ParseCommandCode(%q): %v", code.String(), err)
		}
		if parsed != code {
			t.Errorf("ParseCommandCode(%q) = %v, want %v", code.String(), parsed, code)
		}
	}
}

func TestCommandCode_Unknown(t *testing.T) {
	if CommandCode(0).Valid() {
		t.Error("code 0 reported valid")
	}
	if got := CommandCode(99).String(); got != "cmd(99)" {
		t.Errorf("String() = %q", got)
	}
	if _, err := ParseCommandCode("format"); err == nil {
		t.Error("expected error for unknown command name")
	}
}

func TestNewCommand_Defaults(t *testing.T) {
	cmd := NewCommand(CmdUnload, 40)
	if cmd.Magic != CommandMagic {
		t.Errorf("Magic = %#x", cmd.Magic)
	}
	if cmd.Slot != NoSlot || cmd.DSlot != NoSlot {
		t.Errorf("slots = %d/%d, want NoSlot", cmd.Slot, cmd.DSlot)
	}
	if !cmd.ExitID.IsSentinel() {
		t.Error("new command should not request a response")
	}
}

func TestCommand_SetInfoTruncates(t *testing.T) {
	cmd := NewCommand(CmdImport, 1)
	cmd.SetInfo(strings.Repeat("x", 500))
	if got := len(cmd.InfoString()); got != InfoFieldLen-1 {
		t.Errorf("info length = %d, want %d", got, InfoFieldLen-1)
	}

	cmd.SetInfo("BC0001")
	if got := cmd.InfoString(); got != "BC0001" {
		t.Errorf("InfoString() = %q after reset", got)
	}
}

func TestParseMedia(t *testing.T) {
	code, err := ParseMedia("li")
	if err != nil {
		t.Fatal(err)
	}
	if MediaClass(code) != ClassTape {
		t.Errorf("li class = %v, want tape", MediaClass(code))
	}

	code, err = ParseMedia("mo")
	if err != nil {
		t.Fatal(err)
	}
	if MediaClass(code) != ClassOptical {
		t.Errorf("mo class = %v, want optical", MediaClass(code))
	}

	if code, err = ParseMedia(""); err != nil || code != 0 {
		t.Errorf("ParseMedia(\"\") = %d, %v", code, err)
	}
	if code, err = ParseMedia("0x0205"); err != nil || code != 0x0205 {
		t.Errorf("ParseMedia(0x0205) = %#x, %v", code, err)
	}
	if _, err = ParseMedia("floppy"); err == nil {
		t.Error("expected error for unknown media")
	}
}

func TestParseDeviceState(t *testing.T) {
	for _, name := range []string{"on", "ro", "idle", "unavail", "off", "down"} {
		s, err := ParseDeviceState(name)
		if err != nil {
			t.Fatalf("ParseDeviceState(%q): %v", name, err)
		}
		if s.String() != name {
			t.Errorf("round trip %q -> %q", name, s.String())
		}
	}
	if _, err := ParseDeviceState("broken"); err == nil {
		t.Error("expected error")
	}
}
