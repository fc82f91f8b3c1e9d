package types

import (
	"fmt"
	"strconv"
	"strings"
)

// DeviceClass groups device and media types by family.
// Values occupy the high byte of a media code.
type DeviceClass int32

// ClassMask extracts the DeviceClass from a media code.
const ClassMask int32 = 0xff00

// Device classes.
const (
	ClassDisk    DeviceClass = 0x0100
	ClassTape    DeviceClass = 0x0200
	ClassOptical DeviceClass = 0x0300
	ClassRobot   DeviceClass = 0x0400
	ClassOther   DeviceClass = 0x0f00
)

var classNames = map[DeviceClass]string{
	ClassDisk:    "disk",
	ClassTape:    "tape",
	ClassOptical: "optical",
	ClassRobot:   "robot",
	ClassOther:   "other",
}

func (c DeviceClass) String() string {
	if name, ok := classNames[c]; ok {
		return name
	}
	return fmt.Sprintf("class(%#x)", int32(c))
}

// ParseDeviceClass parses a class name as printed by String.
func ParseDeviceClass(s string) (DeviceClass, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for class, name := range classNames {
		if name == s {
			return class, nil
		}
	}
	return 0, fmt.Errorf("unknown device class %q", s)
}

// Media codes for the media types amlctl can name. The low byte
// distinguishes types within a class.
var mediaCodes = map[string]int32{
	"md": int32(ClassDisk) | 0x01,
	"lt": int32(ClassTape) | 0x01, // DLT
	"li": int32(ClassTape) | 0x02, // LTO
	"ti": int32(ClassTape) | 0x03, // T10000
	"sg": int32(ClassTape) | 0x04, // STK 9840
	"ib": int32(ClassTape) | 0x05, // IBM 3590
	"m2": int32(ClassTape) | 0x06, // IBM 3592
	"od": int32(ClassOptical) | 0x01,
	"mo": int32(ClassOptical) | 0x02,
	"o2": int32(ClassOptical) | 0x03, // 12-inch WORM
}

// ParseMedia maps a media name (e.g. "li") or a numeric code to a media code.
// The empty string yields 0, meaning "daemon default".
func ParseMedia(s string) (int32, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, nil
	}
	if code, ok := mediaCodes[s]; ok {
		return code, nil
	}
	n, err := strconv.ParseInt(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("unknown media type %q", s)
	}
	return int32(n), nil
}

// MediaClass returns the DeviceClass a media code belongs to.
func MediaClass(media int32) DeviceClass {
	return DeviceClass(media & ClassMask)
}

// DeviceState is the target state of a set-state command.
type DeviceState int32

// Device states, ordered from most to least available.
const (
	StateOn DeviceState = iota
	StateRO
	StateIdle
	StateUnavail
	StateOff
	StateDown
)

var stateNames = map[DeviceState]string{
	StateOn:      "on",
	StateRO:      "ro",
	StateIdle:    "idle",
	StateUnavail: "unavail",
	StateOff:     "off",
	StateDown:    "down",
}

func (s DeviceState) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int32(s))
}

// ParseDeviceState parses a state name as printed by String.
func ParseDeviceState(s string) (DeviceState, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for state, name := range stateNames {
		if name == s {
			return state, nil
		}
	}
	return 0, fmt.Errorf("unknown device state %q", s)
}
