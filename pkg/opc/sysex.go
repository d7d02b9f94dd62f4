package opc

import "fmt"

// SysExOp is the first data byte of a system exclusive message.
type SysExOp byte

// System exclusive operations.
const (
	SysExBrightness SysExOp = 0x00
	SysExDithering  SysExOp = 0x01
)

// SysEx is a decoded system exclusive message.
type SysEx struct {
	Op    SysExOp
	Value byte
}

// Brightness returns Value scaled to [0,1].
func (s SysEx) Brightness() float64 {
	return float64(s.Value) / 255
}

// Dithering returns Value as a switch.
func (s SysEx) Dithering() bool {
	return s.Value != 0
}

// ParseSysEx decodes the data of a system exclusive message.
func ParseSysEx(data []byte) (SysEx, error) {
	if len(data) < 2 {
		return SysEx{}, fmt.Errorf("sysex too short: %d bytes", len(data))
	}
	s := SysEx{Op: SysExOp(data[0]), Value: data[1]}
	switch s.Op {
	case SysExBrightness, SysExDithering:
		return s, nil
	}
	return s, fmt.Errorf("unknown sysex op %#02x", byte(s.Op))
}

// BrightnessMessage encodes a brightness change, clamped to [0,1].
func BrightnessMessage(channel byte, brightness float64) *Message {
	switch {
	case !(brightness > 0):
		brightness = 0
	case brightness > 1:
		brightness = 1
	}
	return &Message{
		Channel: channel,
		Command: CmdSysEx,
		Data:    []byte{byte(SysExBrightness), byte(brightness*255 + 0.5)},
	}
}

// DitheringMessage encodes a dithering switch.
func DitheringMessage(channel byte, on bool) *Message {
	var v byte
	if on {
		v = 1
	}
	return &Message{Channel: channel, Command: CmdSysEx, Data: []byte{byte(SysExDithering), v}}
}
