package cmd

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/amlctl/types"
)

func eqFlag(usage string) *cli.IntFlag {
	return &cli.IntFlag{Name: "eq", Aliases: []string{"e"}, Usage: usage, Required: true}
}

func slotFlag(usage string) *cli.IntFlag {
	return &cli.IntFlag{Name: "slot", Aliases: []string{"s"}, Usage: usage}
}

var (
	partFlag  = &cli.IntFlag{Name: "part", Usage: "Partition (side) of two-sided media"}
	vsnFlag   = &cli.StringFlag{Name: "vsn", Aliases: []string{"v"}, Usage: "Volume serial number"}
	mediaFlag = &cli.StringFlag{Name: "media", Aliases: []string{"m"}, Usage: "Media type (li, lt, ti, od, ... or a numeric code)"}
)

// int32Arg reads an int flag that must fit an int32 and be non-negative.
func int32Arg(c *cli.Context, name string) (int32, error) {
	n := c.Int(name)
	if n < 0 || n > math.MaxInt32 {
		return 0, fmt.Errorf("--%s %d out of range", name, n)
	}
	return int32(n), nil
}

// newCommand starts a command for --eq.
func newCommand(c *cli.Context, code types.CommandCode) (*types.Command, error) {
	eq, err := int32Arg(c, "eq")
	if err != nil {
		return nil, err
	}
	return types.NewCommand(code, eq), nil
}

// setSlot copies --slot and --part into cmd when --slot is set.
func setSlot(c *cli.Context, cmd *types.Command) (bool, error) {
	if !c.IsSet("slot") {
		return false, nil
	}
	slot, err := int32Arg(c, "slot")
	if err != nil {
		return false, err
	}
	cmd.Slot = slot
	if c.IsSet("part") {
		if cmd.Part, err = int32Arg(c, "part"); err != nil {
			return false, err
		}
	}
	return true, nil
}

// setVSN validates --vsn (or another flag) into cmd when set.
func setVSN(c *cli.Context, name string, cmd *types.Command) (bool, error) {
	if !c.IsSet(name) {
		return false, nil
	}
	v, err := types.ParseVSN(c.String(name))
	if err != nil {
		return false, fmt.Errorf("--%s: %w", name, err)
	}
	cmd.SetVSN(v)
	return true, nil
}

// setMedia parses --media into cmd and returns its device class.
func setMedia(c *cli.Context, cmd *types.Command) (types.DeviceClass, error) {
	media, err := types.ParseMedia(c.String("media"))
	if err != nil {
		return 0, fmt.Errorf("--media: %w", err)
	}
	cmd.Media = media
	return classOf(media), nil
}

// classOf returns the device class for a media code, or ClassOther when no
// media was named.
func classOf(media int32) types.DeviceClass {
	if media == 0 {
		return types.ClassOther
	}
	return types.MediaClass(media)
}

// MountCommand loads media by VSN or by slot.
func MountCommand() *cli.Command {
	return &cli.Command{
		Name:  "mount",
		Usage: "Load media into a drive by VSN or slot",
		Flags: DispatchFlags(
			eqFlag("Library equipment number"),
			vsnFlag,
			slotFlag("Library slot"),
			partFlag,
			mediaFlag,
		),
		Action: dispatchAction(buildMount),
	}
}

func buildMount(c *cli.Context) (*types.Command, types.DeviceClass, error) {
	if c.IsSet("vsn") == c.IsSet("slot") {
		return nil, 0, errors.New("mount needs exactly one of --vsn or --slot")
	}
	code := types.CmdMount
	if c.IsSet("slot") {
		code = types.CmdMountSlot
	}
	cmd, err := newCommand(c, code)
	if err != nil {
		return nil, 0, err
	}
	if _, err := setVSN(c, "vsn", cmd); err != nil {
		return nil, 0, err
	}
	if _, err := setSlot(c, cmd); err != nil {
		return nil, 0, err
	}
	class, err := setMedia(c, cmd)
	return cmd, class, err
}

// UnloadCommand unloads a drive, or a library slot with --slot.
func UnloadCommand() *cli.Command {
	return &cli.Command{
		Name:  "unload",
		Usage: "Unload a drive or library slot",
		Flags: DispatchFlags(
			eqFlag("Drive or library equipment number"),
			slotFlag("Unload this slot of the library"),
		),
		Action: dispatchAction(buildUnload),
	}
}

func buildUnload(c *cli.Context) (*types.Command, types.DeviceClass, error) {
	cmd, err := newCommand(c, types.CmdUnload)
	if err != nil {
		return nil, 0, err
	}
	ok, err := setSlot(c, cmd)
	if err != nil {
		return nil, 0, err
	}
	if ok {
		cmd.Flags |= types.UnloadSlot
	}
	return cmd, types.ClassOther, nil
}

// StateCommand changes a device's state.
func StateCommand() *cli.Command {
	return &cli.Command{
		Name:      "state",
		Usage:     "Set device state (on, ro, idle, unavail, off, down)",
		ArgsUsage: "<state>",
		Flags:     DispatchFlags(eqFlag("Device equipment number")),
		Action:    dispatchAction(buildState),
	}
}

func buildState(c *cli.Context) (*types.Command, types.DeviceClass, error) {
	if c.NArg() != 1 {
		return nil, 0, errors.New("state needs exactly one argument: on, ro, idle, unavail, off or down")
	}
	st, err := types.ParseDeviceState(c.Args().First())
	if err != nil {
		return nil, 0, err
	}
	cmd, err := newCommand(c, types.CmdSetState)
	if err != nil {
		return nil, 0, err
	}
	cmd.State = int32(st)
	return cmd, types.ClassOther, nil
}

// AuditCommand audits a library, or one slot with --slot.
func AuditCommand() *cli.Command {
	return &cli.Command{
		Name:  "audit",
		Usage: "Audit a library or one of its slots",
		Flags: DispatchFlags(
			eqFlag("Library equipment number"),
			slotFlag("Audit only this slot"),
			partFlag,
		),
		Action: dispatchAction(buildAudit),
	}
}

func buildAudit(c *cli.Context) (*types.Command, types.DeviceClass, error) {
	cmd, err := newCommand(c, types.CmdAudit)
	if err != nil {
		return nil, 0, err
	}
	if _, err := setSlot(c, cmd); err != nil {
		return nil, 0, err
	}
	return cmd, types.ClassOther, nil
}

// ExportCommand removes media by VSN, by slot, or from a drive.
func ExportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export media by VSN, slot, or from the given equipment",
		Flags: DispatchFlags(
			eqFlag("Library or drive equipment number"),
			vsnFlag,
			slotFlag("Library slot"),
			mediaFlag,
			&cli.BoolFlag{Name: "one-step", Usage: "One-step export through the mailbox"},
		),
		Action: dispatchAction(buildExport),
	}
}

func buildExport(c *cli.Context) (*types.Command, types.DeviceClass, error) {
	if c.IsSet("vsn") && c.IsSet("slot") {
		return nil, 0, errors.New("export takes --vsn or --slot, not both")
	}
	code := types.CmdRemoveEq
	switch {
	case c.IsSet("vsn"):
		code = types.CmdRemoveVSN
	case c.IsSet("slot"):
		code = types.CmdRemoveSlot
	}
	cmd, err := newCommand(c, code)
	if err != nil {
		return nil, 0, err
	}
	if _, err := setVSN(c, "vsn", cmd); err != nil {
		return nil, 0, err
	}
	if _, err := setSlot(c, cmd); err != nil {
		return nil, 0, err
	}
	if c.Bool("one-step") {
		cmd.Flags |= types.ExportOneStep
	}
	class, err := setMedia(c, cmd)
	return cmd, class, err
}

func importFlags() []cli.Flag {
	return []cli.Flag{
		eqFlag("Library equipment number"),
		vsnFlag,
		&cli.StringFlag{Name: "barcode", Aliases: []string{"b"}, Usage: "Barcode, when the media has no VSN yet"},
		mediaFlag,
		&cli.BoolFlag{Name: "audit", Usage: "Audit the media after import"},
		&cli.BoolFlag{Name: "strange", Usage: "Media carries a foreign label"},
	}
}

// ImportCommand imports media into a library.
func ImportCommand() *cli.Command {
	return &cli.Command{
		Name:   "import",
		Usage:  "Import media into a library",
		Flags:  DispatchFlags(importFlags()...),
		Action: dispatchAction(buildImport(types.CmdImport)),
	}
}

// AddVSNCommand adds a catalog entry without moving media.
func AddVSNCommand() *cli.Command {
	return &cli.Command{
		Name:   "add-vsn",
		Usage:  "Add a VSN or barcode to a library catalog",
		Flags:  DispatchFlags(append(importFlags(), slotFlag("Catalog slot"))...),
		Action: dispatchAction(buildImport(types.CmdAddVSN)),
	}
}

func buildImport(code types.CommandCode) commandBuilder {
	return func(c *cli.Context) (*types.Command, types.DeviceClass, error) {
		if c.IsSet("vsn") == c.IsSet("barcode") {
			return nil, 0, fmt.Errorf("%s needs exactly one of --vsn or --barcode", code)
		}
		cmd, err := newCommand(c, code)
		if err != nil {
			return nil, 0, err
		}
		if _, err := setVSN(c, "vsn", cmd); err != nil {
			return nil, 0, err
		}
		if c.IsSet("barcode") {
			bc := c.String("barcode")
			if bc == "" || len(bc) >= types.InfoFieldLen {
				return nil, 0, fmt.Errorf("--barcode must be 1 to %d characters", types.InfoFieldLen-1)
			}
			cmd.SetInfo(bc)
			cmd.Flags |= types.ImportBarcode
		}
		if code == types.CmdAddVSN {
			if _, err := setSlot(c, cmd); err != nil {
				return nil, 0, err
			}
		}
		if c.Bool("audit") {
			cmd.Flags |= types.ImportAudit
		}
		if c.Bool("strange") {
			cmd.Flags |= types.ImportStrange
		}
		class, err := setMedia(c, cmd)
		return cmd, class, err
	}
}

// CleanCommand cleans a drive.
func CleanCommand() *cli.Command {
	return &cli.Command{
		Name:   "clean",
		Usage:  "Clean a drive",
		Flags:  DispatchFlags(eqFlag("Drive equipment number")),
		Action: dispatchAction(buildSimple(types.CmdClean)),
	}
}

func buildSimple(code types.CommandCode) commandBuilder {
	return func(c *cli.Context) (*types.Command, types.DeviceClass, error) {
		cmd, err := newCommand(c, code)
		return cmd, types.ClassOther, err
	}
}

// MoveCommand moves media between slots of a library.
func MoveCommand() *cli.Command {
	return &cli.Command{
		Name:  "move",
		Usage: "Move media from one library slot to another",
		Flags: DispatchFlags(
			eqFlag("Library equipment number"),
			&cli.IntFlag{Name: "slot", Aliases: []string{"s"}, Usage: "Source slot", Required: true},
			&cli.IntFlag{Name: "to", Usage: "Destination slot", Required: true},
		),
		Action: dispatchAction(buildMove),
	}
}

func buildMove(c *cli.Context) (*types.Command, types.DeviceClass, error) {
	cmd, err := newCommand(c, types.CmdMove)
	if err != nil {
		return nil, 0, err
	}
	if _, err := setSlot(c, cmd); err != nil {
		return nil, 0, err
	}
	if cmd.DSlot, err = int32Arg(c, "to"); err != nil {
		return nil, 0, err
	}
	if cmd.DSlot == cmd.Slot {
		return nil, 0, errors.New("move: --slot and --to are the same slot")
	}
	return cmd, types.ClassOther, nil
}

// onOff parses an "on" or "off" argument.
func onOff(c *cli.Context) (bool, error) {
	if c.NArg() != 1 {
		return false, fmt.Errorf("%s needs exactly one argument: on or off", c.Command.Name)
	}
	switch c.Args().First() {
	case "on":
		return true, nil
	case "off":
		return false, nil
	}
	return false, fmt.Errorf("%s: want on or off, got %q", c.Command.Name, c.Args().First())
}

// TapeAlertCommand turns tape-alert polling on or off for a device.
func TapeAlertCommand() *cli.Command {
	return &cli.Command{
		Name:      "tapealert",
		Usage:     "Enable or disable TapeAlert for a device",
		ArgsUsage: "on|off",
		Flags:     DispatchFlags(eqFlag("Device equipment number")),
		Action:    dispatchAction(buildToggle(types.CmdTapeAlert)),
	}
}

// SEFCommand turns SEF sysevent reporting on or off, with an optional
// polling interval.
func SEFCommand() *cli.Command {
	return &cli.Command{
		Name:      "sef",
		Usage:     "Enable or disable SEF reporting for a device",
		ArgsUsage: "on|off",
		Flags: DispatchFlags(
			eqFlag("Device equipment number"),
			&cli.DurationFlag{Name: "interval", Usage: "SEF polling interval (on only)"},
		),
		Action: dispatchAction(buildToggle(types.CmdSEF)),
	}
}

// buildToggle stores on/off in State and, for SEF, the interval in
// seconds in Value.
func buildToggle(code types.CommandCode) commandBuilder {
	return func(c *cli.Context) (*types.Command, types.DeviceClass, error) {
		on, err := onOff(c)
		if err != nil {
			return nil, 0, err
		}
		cmd, err := newCommand(c, code)
		if err != nil {
			return nil, 0, err
		}
		if on {
			cmd.State = 1
		}
		if code == types.CmdSEF && c.IsSet("interval") {
			if !on {
				return nil, 0, errors.New("sef: --interval only applies with on")
			}
			iv := c.Duration("interval")
			if iv < time.Second {
				return nil, 0, fmt.Errorf("sef: --interval %s is below one second", iv)
			}
			cmd.Value = uint64(iv.Seconds())
		}
		return cmd, types.ClassOther, nil
	}
}

// CatalogCommand sets or clears catalog flag bits for a slot.
func CatalogCommand() *cli.Command {
	return &cli.Command{
		Name:  "catalog",
		Usage: "Set or clear catalog flags on a library slot",
		Flags: DispatchFlags(
			eqFlag("Library equipment number"),
			&cli.IntFlag{Name: "slot", Aliases: []string{"s"}, Usage: "Library slot", Required: true},
			partFlag,
			&cli.StringFlag{Name: "set", Usage: "Flag bits to set (e.g. 0x40)"},
			&cli.StringFlag{Name: "clear", Usage: "Flag bits to clear"},
		),
		Action: dispatchAction(buildCatalog),
	}
}

func buildCatalog(c *cli.Context) (*types.Command, types.DeviceClass, error) {
	if c.IsSet("set") == c.IsSet("clear") {
		return nil, 0, errors.New("catalog needs exactly one of --set or --clear")
	}
	cmd, err := newCommand(c, types.CmdCatalog)
	if err != nil {
		return nil, 0, err
	}
	if _, err := setSlot(c, cmd); err != nil {
		return nil, 0, err
	}
	name, flag := "set", types.CatalogSet
	if c.IsSet("clear") {
		name, flag = "clear", types.CatalogClear
	}
	bits, err := strconv.ParseUint(c.String(name), 0, 64)
	if err != nil || bits == 0 {
		return nil, 0, fmt.Errorf("--%s: want non-zero flag bits, got %q", name, c.String(name))
	}
	cmd.Flags |= flag
	cmd.Value = bits
	return cmd, types.ClassOther, nil
}

// PreviewDeleteCommand removes a pending entry from the preview queue.
func PreviewDeleteCommand() *cli.Command {
	return &cli.Command{
		Name:  "preview-delete",
		Usage: "Delete a pending preview (mount) request",
		Flags: DispatchFlags(
			&cli.IntFlag{Name: "eq", Aliases: []string{"e"}, Usage: "Equipment the request targets (0 for any)"},
			&cli.StringFlag{Name: "vsn", Aliases: []string{"v"}, Usage: "Volume serial number", Required: true},
			mediaFlag,
		),
		Action: dispatchAction(buildMediaVSN(types.CmdDeletePreview)),
	}
}

// LoadUnavailCommand loads media into a drive that is in the unavail state.
func LoadUnavailCommand() *cli.Command {
	return &cli.Command{
		Name:  "load-unavail",
		Usage: "Load media into an unavailable drive",
		Flags: DispatchFlags(
			eqFlag("Drive equipment number"),
			&cli.StringFlag{Name: "vsn", Aliases: []string{"v"}, Usage: "Volume serial number", Required: true},
			mediaFlag,
		),
		Action: dispatchAction(buildMediaVSN(types.CmdLoadUnavail)),
	}
}

func buildMediaVSN(code types.CommandCode) commandBuilder {
	return func(c *cli.Context) (*types.Command, types.DeviceClass, error) {
		cmd, err := newCommand(c, code)
		if err != nil {
			return nil, 0, err
		}
		if _, err := setVSN(c, "vsn", cmd); err != nil {
			return nil, 0, err
		}
		class, err := setMedia(c, cmd)
		return cmd, class, err
	}
}
