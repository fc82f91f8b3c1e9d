package cmd

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/amlctl/types"
)

// blockSizesKiB are the block sizes a tape label may request.
var blockSizesKiB = []int{16, 32, 64, 128, 256, 512, 1024, 2048}

// LabelCommand writes a label on media in a drive or library slot.
func LabelCommand() *cli.Command {
	return &cli.Command{
		Name:  "label",
		Usage: "Label media in a drive, or in a library slot with --slot",
		Flags: DispatchFlags(
			eqFlag("Drive or library equipment number"),
			slotFlag("Library slot holding the media"),
			partFlag,
			&cli.StringFlag{Name: "vsn", Aliases: []string{"v"}, Usage: "New volume serial number", Required: true},
			&cli.StringFlag{Name: "old-vsn", Usage: "Current VSN (required with --relabel)"},
			mediaFlag,
			&cli.IntFlag{Name: "block-size", Aliases: []string{"B"}, Usage: "Tape block size in KiB: 16, 32, ... 2048"},
			&cli.StringFlag{Name: "info", Usage: "Optical label information"},
			&cli.BoolFlag{Name: "erase", Usage: "Erase media before labeling"},
			&cli.BoolFlag{Name: "relabel", Aliases: []string{"V"}, Usage: "Media is already labeled"},
		),
		Action: dispatchAction(buildLabel),
	}
}

// ValidateBlockSize checks a block size in KiB and returns it in bytes.
// Zero leaves the choice to the daemon.
func ValidateBlockSize(kib int) (int32, error) {
	if kib == 0 {
		return 0, nil
	}
	for _, s := range blockSizesKiB {
		if s == kib {
			return int32(kib << 10), nil
		}
	}
	return 0, fmt.Errorf("invalid block size %d: must be one of %v KiB", kib, blockSizesKiB)
}

func buildLabel(c *cli.Context) (*types.Command, types.DeviceClass, error) {
	cmd, err := newCommand(c, types.CmdLabel)
	if err != nil {
		return nil, 0, err
	}

	if _, err := setVSN(c, "vsn", cmd); err != nil {
		return nil, 0, err
	}

	if c.Bool("relabel") {
		if !c.IsSet("old-vsn") {
			return nil, 0, errors.New("--relabel requires --old-vsn")
		}
		old, err := types.ParseVSN(c.String("old-vsn"))
		if err != nil {
			return nil, 0, fmt.Errorf("--old-vsn: %w", err)
		}
		cmd.SetOldVSN(old)
		cmd.Flags |= types.LabelRelabel
	} else if c.IsSet("old-vsn") {
		return nil, 0, errors.New("--old-vsn only applies with --relabel")
	}

	slotted, err := setSlot(c, cmd)
	if err != nil {
		return nil, 0, err
	}
	if slotted {
		cmd.Flags |= types.LabelSlot
	}
	if c.Bool("erase") {
		cmd.Flags |= types.LabelErase
	}

	class, err := setMedia(c, cmd)
	if err != nil {
		return nil, 0, err
	}

	if c.IsSet("block-size") {
		if class == types.ClassOptical {
			return nil, 0, errors.New("--block-size applies to tape only")
		}
		if cmd.BlockSize, err = ValidateBlockSize(c.Int("block-size")); err != nil {
			return nil, 0, err
		}
	}
	if c.IsSet("info") {
		if len(c.String("info")) >= types.InfoFieldLen {
			return nil, 0, fmt.Errorf("--info must be shorter than %d characters", types.InfoFieldLen)
		}
		cmd.SetInfo(c.String("info"))
	}
	return cmd, class, nil
}
