package types

import (
	"bytes"
	"fmt"
	"strings"
)

// CommandMagic tags every Command record written to the command channel.
// Readers reject records that do not carry it.
const CommandMagic uint32 = 0x414D4C43 // "AMLC"

// Fixed field capacities of the Command record.
const (
	VSNFieldLen  = 32
	InfoFieldLen = 128
)

// NoSlot marks a slot field as unset.
const NoSlot int32 = -1

// CommandCode identifies the request kind carried by a Command.
type CommandCode int32

// Command codes understood by the daemon.
const (
	CmdMount        CommandCode = iota + 1 // mount by VSN
	CmdMountSlot                           // mount by slot
	CmdUnload                              // unload a drive or library
	CmdLabel                               // label media
	CmdSetState                            // change device state
	CmdAudit                               // audit a slot
	CmdRemoveVSN                           // export by VSN
	CmdRemoveSlot                          // export by slot
	CmdRemoveEq                            // export by equipment
	CmdTapeAlert                           // tape-alert action
	CmdImport                              // import into a library
	CmdDeletePreview                       // delete a preview entry
	CmdClean                               // clean a drive
	CmdCatalog                             // catalog flag update
	CmdMove                                // move media between slots
	CmdAddVSN                              // add a VSN to the catalog
	CmdSEF                                 // SEF sysevent state
	CmdLoadUnavail                         // load on an unavailable drive
)

var commandNames = map[CommandCode]string{
	CmdMount:         "mount",
	CmdMountSlot:     "mount_slot",
	CmdUnload:        "unload",
	CmdLabel:         "label",
	CmdSetState:      "set_state",
	CmdAudit:         "audit",
	CmdRemoveVSN:     "remove_vsn",
	CmdRemoveSlot:    "remove_slot",
	CmdRemoveEq:      "remove_eq",
	CmdTapeAlert:     "tapealert",
	CmdImport:        "import",
	CmdDeletePreview: "delete_preview",
	CmdClean:         "clean",
	CmdCatalog:       "catalog",
	CmdMove:          "move",
	CmdAddVSN:        "add_vsn",
	CmdSEF:           "sef",
	CmdLoadUnavail:   "load_unavail",
}

func (c CommandCode) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return fmt.Sprintf("cmd(%d)", int32(c))
}

// Valid reports whether c is a known command code.
func (c CommandCode) Valid() bool {
	_, ok := commandNames[c]
	return ok
}

// ParseCommandCode parses a command name as printed by String.
func ParseCommandCode(s string) (CommandCode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for code, name := range commandNames {
		if name == s {
			return code, nil
		}
	}
	return 0, fmt.Errorf("unknown command %q", s)
}

// Label flags (CmdLabel).
const (
	LabelErase   uint32 = 1 << iota // erase media before labeling
	LabelRelabel                    // media is already labeled
	LabelSlot                       // eq/slot address a library slot
)

// Unload flags (CmdUnload).
const (
	UnloadSlot uint32 = 1 << iota // unload the given slot rather than the drive
)

// Import and add-VSN flags (CmdImport, CmdAddVSN).
const (
	ImportAudit   uint32 = 1 << iota // audit after import
	ImportStrange                    // media carries a foreign label
	ImportBarcode                    // Info holds a barcode instead of a VSN
)

// Export flags (CmdRemoveVSN, CmdRemoveSlot, CmdRemoveEq).
const (
	ExportOneStep uint32 = 1 << iota // one-step export through the mailbox
)

// Catalog flags (CmdCatalog). Value holds the bits to apply.
const (
	CatalogSet   uint32 = 1 << iota // set the bits in Value
	CatalogClear                    // clear the bits in Value
)

// Command is the fixed-layout record sent on the command channel.
// Field order and sizes are the wire layout; see ipc.EncodeCommand.
// Which fields are meaningful depends on Cmd.
type Command struct {
	Magic     uint32
	Cmd       CommandCode
	ExitID    CorrelationID
	Eq        int32
	Slot      int32
	Part      int32
	DSlot     int32
	Flags     uint32
	Media     int32
	BlockSize int32
	State     int32
	VSN       [VSNFieldLen]byte
	OldVSN    [VSNFieldLen]byte
	Info      [InfoFieldLen]byte
	Value     uint64
}

// NewCommand returns a Command for code with magic stamped and slots unset.
func NewCommand(code CommandCode, eq int32) *Command {
	return &Command{
		Magic: CommandMagic,
		Cmd:   code,
		Eq:    eq,
		Slot:  NoSlot,
		DSlot: NoSlot,
	}
}

// SetVSN stores a validated VSN.
func (c *Command) SetVSN(v VSN) {
	c.VSN = v.field()
}

// SetOldVSN stores a validated VSN in the OldVSN field.
func (c *Command) SetOldVSN(v VSN) {
	c.OldVSN = v.field()
}

// SetInfo stores free-form text, truncated to leave a terminator.
func (c *Command) SetInfo(s string) {
	c.Info = [InfoFieldLen]byte{}
	copy(c.Info[:InfoFieldLen-1], s)
}

// VSNString returns the VSN field as a string.
func (c *Command) VSNString() string { return cString(c.VSN[:]) }

// OldVSNString returns the OldVSN field as a string.
func (c *Command) OldVSNString() string { return cString(c.OldVSN[:]) }

// InfoString returns the Info field as a string.
func (c *Command) InfoString() string { return cString(c.Info[:]) }

func cString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}
